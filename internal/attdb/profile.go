package attdb

import (
	"github.com/go-ble/ble"
)

// Profile rebuilds the GATT hierarchy described by the table. Characteristic
// properties are derived from literal permission words; symbolic words yield
// no properties. Service handle ranges come from declaration record indices.
func (db *Database) Profile() *ble.Profile {
	profile := &ble.Profile{}
	var (
		svc  *ble.Service
		char *ble.Characteristic
	)
	for _, r := range db.records {
		switch r.Kind {
		case ServiceDeclaration:
			if svc != nil {
				svc.EndHandle = uint16(r.Index - 1)
			}
			svc = &ble.Service{
				UUID:   append(ble.UUID(nil), r.Value...),
				Handle: uint16(r.Index),
			}
			char = nil
			profile.Services = append(profile.Services, svc)
		case CharacteristicValue:
			if svc == nil {
				continue
			}
			char = &ble.Characteristic{
				UUID:        append(ble.UUID(nil), r.UUID...),
				ValueHandle: uint16(r.Index),
				Handle:      uint16(r.Index - 1),
				EndHandle:   uint16(r.Index),
			}
			if perms, ok := r.Perm.Permissions(); ok {
				char.Property = perms.Properties()
			}
			svc.Characteristics = append(svc.Characteristics, char)
		case UserDescription:
			if char == nil {
				continue
			}
			char.Descriptors = append(char.Descriptors, &ble.Descriptor{
				UUID:   UserDescriptionUUID,
				Handle: uint16(r.Index),
				Value:  append([]byte(nil), r.Value...),
			})
			char.EndHandle = uint16(r.Index)
		}
	}
	if svc != nil {
		svc.EndHandle = uint16(len(db.records) - 1)
	}
	return profile
}
