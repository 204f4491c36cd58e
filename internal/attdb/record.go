package attdb

import (
	"fmt"

	"github.com/go-ble/ble"
	"github.com/srg/attdb/internal/gatt"
)

// Reserved attribute types.
var (
	PrimaryServiceUUID  = ble.UUID16(0x2800)
	CharacteristicUUID  = ble.UUID16(0x2803)
	UserDescriptionUUID = ble.UUID16(0x2901)
)

// TriggerIndication is OR'd into a value record's max length when the
// application handles reads or writes for it. The host stack expects the flag
// in this position rather than in the permission word.
const TriggerIndication uint16 = 1 << 15

// Kind identifies the role of an attribute record.
type Kind int

const (
	ServiceDeclaration Kind = iota
	CharacteristicDeclaration
	CharacteristicValue
	UserDescription
)

func (k Kind) String() string {
	switch k {
	case ServiceDeclaration:
		return "service"
	case CharacteristicDeclaration:
		return "char-decl"
	case CharacteristicValue:
		return "char-value"
	case UserDescription:
		return "user-desc"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Record is one row of the compiled attribute table.
type Record struct {
	Index     int
	Kind      Kind
	Owner     string // service or characteristic name, empty for explicit entries
	UUID      ble.UUID
	Perm      gatt.Word
	MaxLength gatt.Length
	Trigger   bool
	Length    uint16
	Value     []byte
}

func (r *Record) clone() Record {
	out := *r
	out.UUID = append(ble.UUID(nil), r.UUID...)
	out.Value = append([]byte(nil), r.Value...)
	return out
}

// UUIDSize is the byte width of the record's type UUID.
func (r *Record) UUIDSize() int {
	return r.UUID.Len()
}

// MaxLengthWord returns the packed max-length field. ok is false when the
// length is deferred and can only be rendered symbolically.
func (r *Record) MaxLengthWord() (word uint16, ok bool) {
	if r.MaxLength.IsDeferred() {
		return 0, false
	}
	word = r.MaxLength.Value()
	if r.Trigger {
		word |= TriggerIndication
	}
	return word, true
}

func (r *Record) String() string {
	return fmt.Sprintf("#%d %s %s perm=%s max=%s len=%d", r.Index, r.Kind, gatt.FormatUUID(r.UUID), r.Perm, r.maxLengthString(), r.Length)
}

func (r *Record) maxLengthString() string {
	if word, ok := r.MaxLengthWord(); ok {
		return fmt.Sprintf("0x%04X", word)
	}
	if r.Trigger {
		return fmt.Sprintf("0x%04X|%s", TriggerIndication, r.MaxLength.Ref())
	}
	return r.MaxLength.Ref()
}
