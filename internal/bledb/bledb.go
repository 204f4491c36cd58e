// Package bledb names well-known Bluetooth SIG attribute types.
package bledb

import (
	"strings"

	"github.com/go-ble/ble"
)

// sigBaseSuffix is the tail of the Bluetooth base UUID
// 0000xxxx-0000-1000-8000-00805f9b34fb in normalized form.
const sigBaseSuffix = "00001000800000805f9b34fb"

// NormalizeUUID lowercases a UUID, strips dashes, braces and a 0x prefix, and
// shortens UUIDs built on the Bluetooth base to their 16-bit form.
func NormalizeUUID(uuid string) string {
	u := strings.ToLower(strings.TrimSpace(uuid))
	u = strings.TrimPrefix(u, "0x")
	u = strings.NewReplacer("-", "", "{", "", "}", "").Replace(u)
	if len(u) == 32 && strings.HasPrefix(u, "0000") && strings.HasSuffix(u, sigBaseSuffix) {
		return u[4:8]
	}
	return u
}

// LookupService returns the name of a known service UUID, or "".
func LookupService(uuid string) string {
	return services[NormalizeUUID(uuid)]
}

// LookupCharacteristic returns the name of a known characteristic UUID, or "".
func LookupCharacteristic(uuid string) string {
	return characteristics[NormalizeUUID(uuid)]
}

// LookupDescriptor returns the name of a known descriptor or declaration UUID, or "".
func LookupDescriptor(uuid string) string {
	return descriptors[NormalizeUUID(uuid)]
}

// Lookup resolves u against every table.
func Lookup(u ble.UUID) string {
	key := NormalizeUUID(u.String())
	if name, ok := descriptors[key]; ok {
		return name
	}
	if name, ok := services[key]; ok {
		return name
	}
	return characteristics[key]
}

var services = map[string]string{
	"1800":                             "Generic Access",
	"1801":                             "Generic Attribute",
	"1802":                             "Immediate Alert",
	"1803":                             "Link Loss",
	"1804":                             "Tx Power",
	"1805":                             "Current Time Service",
	"1806":                             "Reference Time Update Service",
	"1807":                             "Next DST Change Service",
	"1808":                             "Glucose",
	"1809":                             "Health Thermometer",
	"180a":                             "Device Information",
	"180d":                             "Heart Rate",
	"180e":                             "Phone Alert Status Service",
	"180f":                             "Battery Service",
	"1810":                             "Blood Pressure",
	"1811":                             "Alert Notification Service",
	"1812":                             "Human Interface Device",
	"1813":                             "Scan Parameters",
	"1814":                             "Running Speed and Cadence",
	"1815":                             "Cycling Speed and Cadence",
	"181a":                             "Environmental Sensing",
	"181c":                             "User Data",
	"6e400001b5a3f393e0a9e50e24dcca9e": "Nordic UART Service",
}

var descriptors = map[string]string{
	"2800": "Primary Service",
	"2801": "Secondary Service",
	"2802": "Include",
	"2803": "Characteristic",
	"2900": "Characteristic Extended Properties",
	"2901": "Characteristic User Descriptor",
	"2902": "Client Characteristic Configuration",
	"2903": "Server Characteristic Configuration",
	"2904": "Characteristic Presentation Format",
	"2905": "Characteristic Aggregate Format",
	"2906": "Valid Range",
	"2907": "External Report Reference",
	"2908": "Report Reference",
}

var characteristics = map[string]string{
	"2a00":                             "Device Name",
	"2a01":                             "Appearance",
	"2a02":                             "Peripheral Privacy Flag",
	"2a03":                             "Reconnection Address",
	"2a04":                             "Peripheral Preferred Connection Parameters",
	"2a05":                             "Service Changed",
	"2a06":                             "Alert Level",
	"2a07":                             "Tx Power Level",
	"2a08":                             "Date Time",
	"2a19":                             "Battery Level",
	"2a1c":                             "Temperature Measurement",
	"2a1d":                             "Temperature Type",
	"2a23":                             "System ID",
	"2a24":                             "Model Number String",
	"2a25":                             "Serial Number String",
	"2a26":                             "Firmware Revision String",
	"2a27":                             "Hardware Revision String",
	"2a28":                             "Software Revision String",
	"2a29":                             "Manufacturer Name String",
	"2a2b":                             "Current Time",
	"2a37":                             "Heart Rate Measurement",
	"2a38":                             "Body Sensor Location",
	"2a39":                             "Heart Rate Control Point",
	"2a6e":                             "Temperature",
	"2a6f":                             "Humidity",
	"6e400002b5a3f393e0a9e50e24dcca9e": "Nordic UART RX",
	"6e400003b5a3f393e0a9e50e24dcca9e": "Nordic UART TX",
}
