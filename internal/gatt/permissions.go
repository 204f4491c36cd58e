package gatt

import (
	"fmt"
	"strings"

	"github.com/go-ble/ble"
)

// Level is the privilege required for an operation. Levels are ordered.
type Level uint8

const (
	Disabled Level = iota
	Enabled
	Unauthenticated
	Authenticated
	Secure
)

func (l Level) String() string {
	switch l {
	case Disabled:
		return "disabled"
	case Enabled:
		return "enabled"
	case Unauthenticated:
		return "unauth"
	case Authenticated:
		return "auth"
	case Secure:
		return "secure"
	default:
		return fmt.Sprintf("level(%d)", uint8(l))
	}
}

// UUIDLength is the uuid-length class stored in bits 18-19.
type UUIDLength uint8

const (
	UUIDLen16 UUIDLength = iota
	UUIDLen32
	UUIDLen128
	UUIDLenRFU
)

func (u UUIDLength) String() string {
	switch u {
	case UUIDLen16:
		return "16"
	case UUIDLen32:
		return "32"
	case UUIDLen128:
		return "128"
	default:
		return "rfu"
	}
}

// Bit offsets of the ATT permission word.
const (
	readShift         = 0
	writeShift        = 3
	indicationShift   = 6
	notificationShift = 9
	extPropsBit       = 12
	broadcastBit      = 13
	encKey16Bit       = 14
	writeCommandBit   = 15
	writeSignedBit    = 16
	writeRequestBit   = 17
	uuidLenShift      = 18

	levelMask   = 0x7
	uuidLenMask = 0x3
)

// Permissions is the decoded form of an ATT permission word.
type Permissions struct {
	Read         Level
	Write        Level
	Indication   Level
	Notification Level

	ExtendedProperties bool
	Broadcast          bool
	EncryptionKey16    bool
	WriteCommand       bool
	WriteSigned        bool
	WriteRequest       bool

	UUIDLength UUIDLength
}

// ReadOnly is the permission of declaration and description records.
var ReadOnly = Permissions{Read: Enabled}

// Encode packs p into the 32-bit ATT permission word.
func (p Permissions) Encode() uint32 {
	var bits uint32
	bits |= uint32(p.Read&levelMask) << readShift
	bits |= uint32(p.Write&levelMask) << writeShift
	bits |= uint32(p.Indication&levelMask) << indicationShift
	bits |= uint32(p.Notification&levelMask) << notificationShift
	bits |= boolBit(p.ExtendedProperties, extPropsBit)
	bits |= boolBit(p.Broadcast, broadcastBit)
	bits |= boolBit(p.EncryptionKey16, encKey16Bit)
	bits |= boolBit(p.WriteCommand, writeCommandBit)
	bits |= boolBit(p.WriteSigned, writeSignedBit)
	bits |= boolBit(p.WriteRequest, writeRequestBit)
	bits |= uint32(p.UUIDLength&uuidLenMask) << uuidLenShift
	return bits
}

// Decode unpacks an ATT permission word. Bits above 19 are ignored.
func Decode(bits uint32) Permissions {
	return Permissions{
		Read:               Level(bits >> readShift & levelMask),
		Write:              Level(bits >> writeShift & levelMask),
		Indication:         Level(bits >> indicationShift & levelMask),
		Notification:       Level(bits >> notificationShift & levelMask),
		ExtendedProperties: bits&(1<<extPropsBit) != 0,
		Broadcast:          bits&(1<<broadcastBit) != 0,
		EncryptionKey16:    bits&(1<<encKey16Bit) != 0,
		WriteCommand:       bits&(1<<writeCommandBit) != 0,
		WriteSigned:        bits&(1<<writeSignedBit) != 0,
		WriteRequest:       bits&(1<<writeRequestBit) != 0,
		UUIDLength:         UUIDLength(bits >> uuidLenShift & uuidLenMask),
	}
}

func boolBit(set bool, bit uint) uint32 {
	if set {
		return 1 << bit
	}
	return 0
}

func (p Permissions) IsReadable() bool {
	return p.Read != Disabled
}

func (p Permissions) IsWritable() bool {
	return p.Write != Disabled
}

// Properties maps the permission word onto GATT characteristic properties.
func (p Permissions) Properties() ble.Property {
	var props ble.Property
	if p.Broadcast {
		props |= ble.CharBroadcast
	}
	if p.IsReadable() {
		props |= ble.CharRead
	}
	if p.WriteCommand {
		props |= ble.CharWriteNR
	}
	if p.IsWritable() {
		props |= ble.CharWrite
	}
	if p.Notification != Disabled {
		props |= ble.CharNotify
	}
	if p.Indication != Disabled {
		props |= ble.CharIndicate
	}
	if p.WriteSigned {
		props |= ble.CharSignedWrite
	}
	if p.ExtendedProperties {
		props |= ble.CharExtended
	}
	return props
}

func (p Permissions) String() string {
	parts := []string{
		"read=" + p.Read.String(),
		"write=" + p.Write.String(),
		"indication=" + p.Indication.String(),
		"notification=" + p.Notification.String(),
	}
	for _, f := range []struct {
		set  bool
		name string
	}{
		{p.ExtendedProperties, "ext_props"},
		{p.Broadcast, "broadcast"},
		{p.EncryptionKey16, "enc_key_16"},
		{p.WriteCommand, "write_command"},
		{p.WriteSigned, "write_signed"},
		{p.WriteRequest, "write_request"},
	} {
		if f.set {
			parts = append(parts, f.name)
		}
	}
	parts = append(parts, "uuid_len="+p.UUIDLength.String())
	return strings.Join(parts, " ")
}

// category groups mutually exclusive flags.
type category struct {
	name    string
	matches func(flag string) bool
}

var categories = []category{
	{"read", func(f string) bool { return strings.HasPrefix(f, "READ_") }},
	{"write", func(f string) bool { return strings.HasPrefix(f, "WRITE_") && !strings.HasSuffix(f, "_ACCEPTED") }},
	{"indication", func(f string) bool { return strings.HasPrefix(f, "INDICATION_") }},
	{"notification", func(f string) bool { return strings.HasPrefix(f, "NOTIFICATION_") }},
	{"uuid length", func(f string) bool { return strings.HasPrefix(f, "UUID_LEN_") }},
}

var levelSuffixes = map[string]Level{
	"ENABLED": Enabled,
	"UNAUTH":  Unauthenticated,
	"AUTH":    Authenticated,
	"SECURE":  Secure,
}

var flagSetters = map[string]func(*Permissions){
	"EXTENDED_PROPERTIES_PRESENT": func(p *Permissions) { p.ExtendedProperties = true },
	"BROADCAST_PERMISSION":        func(p *Permissions) { p.Broadcast = true },
	"ENCRYPTION_KEY_16_BYTES":     func(p *Permissions) { p.EncryptionKey16 = true },
	"WRITE_COMMAND_ACCEPTED":      func(p *Permissions) { p.WriteCommand = true },
	"WRITE_SIGNED_ACCEPTED":       func(p *Permissions) { p.WriteSigned = true },
	"WRITE_REQUEST_ACCEPTED":      func(p *Permissions) { p.WriteRequest = true },
	"UUID_LEN_16":                 func(p *Permissions) { p.UUIDLength = UUIDLen16 },
	"UUID_LEN_32":                 func(p *Permissions) { p.UUIDLength = UUIDLen32 },
	"UUID_LEN_128":                func(p *Permissions) { p.UUIDLength = UUIDLen128 },
}

// ParseFlags validates a flag-set and folds it into Permissions.
// Category exclusivity is checked before flag names, so `READ_FOO | READ_AUTH`
// reports the duplicate read category.
func ParseFlags(flags []string) (Permissions, error) {
	for _, c := range categories {
		count := 0
		for _, f := range flags {
			if c.matches(f) {
				count++
			}
		}
		if count > 1 {
			return Permissions{}, fmt.Errorf("%w: defined multiple %s permissions: [%s]",
				ErrDuplicatePermission, c.name, strings.Join(flags, " | "))
		}
	}

	var p Permissions
	for _, f := range flags {
		if set, ok := flagSetters[f]; ok {
			set(&p)
			continue
		}
		if !setLevel(&p, f) {
			return Permissions{}, fmt.Errorf("%w: %s in [%s]", ErrUnknownPermission, f, strings.Join(flags, " | "))
		}
	}
	return p, nil
}

// HasUUIDLengthFlag reports whether the flag-set names a uuid-length class.
func HasUUIDLengthFlag(flags []string) bool {
	for _, f := range flags {
		if strings.HasPrefix(f, "UUID_LEN_") {
			return true
		}
	}
	return false
}

func setLevel(p *Permissions, flag string) bool {
	prefix, suffix, ok := strings.Cut(flag, "_")
	if !ok {
		return false
	}
	level, ok := levelSuffixes[suffix]
	if !ok {
		return false
	}
	switch prefix {
	case "READ":
		p.Read = level
	case "WRITE":
		p.Write = level
	case "INDICATION":
		p.Indication = level
	case "NOTIFICATION":
		p.Notification = level
	default:
		return false
	}
	return true
}

// Word is a permission word that is either known at compile time or a symbolic
// reference emitted verbatim.
type Word struct {
	Bits uint32
	Ref  string
}

// WordOf returns the literal word for p.
func WordOf(p Permissions) Word {
	return Word{Bits: p.Encode()}
}

func (w Word) IsSymbolic() bool {
	return w.Ref != ""
}

// Permissions decodes a literal word. ok is false for symbolic words.
func (w Word) Permissions() (p Permissions, ok bool) {
	if w.IsSymbolic() {
		return Permissions{}, false
	}
	return Decode(w.Bits), true
}

func (w Word) String() string {
	if w.IsSymbolic() {
		return w.Ref
	}
	return fmt.Sprintf("0x%05X", w.Bits)
}
