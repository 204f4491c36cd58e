package gatt

import (
	"math"

	"github.com/go-ble/ble"
	"github.com/srg/attdb/internal/dsl"
)

// EntryKind tags an explicit database entry.
type EntryKind int

const (
	ServiceEntry EntryKind = iota + 1
	CharacteristicEntry
)

func (k EntryKind) String() string {
	switch k {
	case ServiceEntry:
		return "service"
	case CharacteristicEntry:
		return "characteristic"
	default:
		return "unknown"
	}
}

// Entry is one element of the explicit-entry grammar. Entries carry no names and
// no handler references.
type Entry struct {
	Kind            EntryKind
	Pos             dsl.Pos
	UUID            ble.UUID
	Length          Length
	Perm            Word
	UserDescription *string
}

// RecordCount is the number of attribute records the entry occupies.
func (e *Entry) RecordCount() int {
	switch {
	case e.Kind == ServiceEntry:
		return 1
	case e.UserDescription != nil:
		return 3
	default:
		return 2
	}
}

// EntriesFromRecords validates the explicit-entry list.
func EntriesFromRecords(list []*dsl.Records) ([]*Entry, error) {
	entries := make([]*Entry, 0, len(list))
	for _, recs := range list {
		e, err := entryFromRecords(recs)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// entryBuilder applies fields in declaration order. `etype` must precede the
// fields whose validity depends on it.
type entryBuilder struct {
	entry   Entry
	hasUUID bool
	hasLen  bool
	hasPerm bool

	permFlags dsl.Flags
}

func entryFromRecords(recs *dsl.Records) (*Entry, error) {
	b := &entryBuilder{entry: Entry{Pos: recs.Pos}}
	for _, f := range recs.Fields() {
		if err := b.apply(f); err != nil {
			return nil, err
		}
	}
	return b.build(recs.Pos)
}

func (b *entryBuilder) apply(f *dsl.Field) error {
	switch f.Key {
	case "etype":
		return b.setType(f)
	case "uuid16":
		return b.setUUID(f, 2)
	case "uuid128":
		return b.setUUID(f, 16)
	case "length":
		if err := b.requireCharacteristic(f); err != nil {
			return err
		}
		l, err := lengthFromValue(f)
		if err != nil {
			return err
		}
		b.entry.Length, b.hasLen = l, true
	case "perm":
		if err := b.requireCharacteristic(f); err != nil {
			return err
		}
		w, err := wordFromValue(f)
		if err != nil {
			return err
		}
		b.entry.Perm, b.hasPerm = w, true
		if f.Value.Kind == dsl.KindFlags {
			b.permFlags = f.Value.Flags
		}
	case "user_description":
		if err := b.requireCharacteristic(f); err != nil {
			return err
		}
		if err := expectKind(f, dsl.KindString); err != nil {
			return err
		}
		desc := f.Value.Str
		b.entry.UserDescription = &desc
	default:
		return dsl.Errorf(f.KeyPos, ErrUnknownField, "unknown field `%s` in entry", f.Key)
	}
	return nil
}

func (b *entryBuilder) setType(f *dsl.Field) error {
	if b.entry.Kind != 0 {
		return dsl.Errorf(f.KeyPos, ErrInvalidValue, "entry type is already set")
	}
	if f.Value.Kind != dsl.KindPath || !f.Value.Path.IsSingle() {
		return dsl.Errorf(f.Value.Pos, ErrInvalidValue, "`etype`: expected `service` or `characteristic`, got %s", f.Value.Describe())
	}
	switch f.Value.Path.Text {
	case "service":
		b.entry.Kind = ServiceEntry
	case "characteristic":
		b.entry.Kind = CharacteristicEntry
	default:
		return dsl.Errorf(f.Value.Pos, ErrInvalidValue, "unknown entry type `%s`", f.Value.Path.Text)
	}
	return nil
}

func (b *entryBuilder) setUUID(f *dsl.Field, size int) error {
	if b.hasUUID {
		return dsl.Errorf(f.KeyPos, ErrInvalidValue, "uuid is already set")
	}
	u, err := UUIDFromValue(f.Key, f.Value)
	if err != nil {
		return err
	}
	if u.Len() != size {
		return dsl.Errorf(f.Value.Pos, ErrInvalidUUID, "`%s`: expected a %d-bit UUID, got %d bits", f.Key, size*8, u.Len()*8)
	}
	b.entry.UUID, b.hasUUID = u, true
	return nil
}

func (b *entryBuilder) requireCharacteristic(f *dsl.Field) error {
	switch b.entry.Kind {
	case 0:
		return dsl.Errorf(f.KeyPos, ErrInvalidValue, "`%s` before `etype`: entry type not set", f.Key)
	case ServiceEntry:
		return dsl.Errorf(f.KeyPos, ErrInvalidValue, "cannot set `%s` for service", f.Key)
	}
	return nil
}

func (b *entryBuilder) build(pos dsl.Pos) (*Entry, error) {
	if b.entry.Kind == 0 {
		return nil, dsl.Errorf(pos, ErrMissingField, "missing `etype` in entry")
	}
	if !b.hasUUID {
		return nil, dsl.Errorf(pos, ErrMissingField, "missing `uuid16` or `uuid128` in %s entry", b.entry.Kind)
	}
	if b.entry.Kind == CharacteristicEntry {
		if !b.hasLen {
			return nil, dsl.Errorf(pos, ErrMissingField, "missing `length` in characteristic entry")
		}
		if !b.hasPerm {
			return nil, dsl.Errorf(pos, ErrMissingField, "missing `perm` in characteristic entry")
		}
	}
	if b.permFlags != nil && Is128(b.entry.UUID) && !HasUUIDLengthFlag(b.permFlags) {
		p := Decode(b.entry.Perm.Bits)
		p.UUIDLength = UUIDLen128
		b.entry.Perm = WordOf(p)
	}
	e := b.entry
	return &e, nil
}

// wordFromValue accepts a flag group, a raw integer word or a symbolic path.
func wordFromValue(f *dsl.Field) (Word, error) {
	switch f.Value.Kind {
	case dsl.KindFlags:
		p, err := ParseFlags(f.Value.Flags)
		if err != nil {
			return Word{}, dsl.WrapError(f.Value.Pos, err)
		}
		return WordOf(p), nil
	case dsl.KindInt:
		if f.Value.Int > math.MaxUint32 {
			return Word{}, dsl.Errorf(f.Value.Pos, ErrInvalidValue, "`%s`: %s does not fit 32 bits", f.Key, f.Value.Raw)
		}
		return Word{Bits: uint32(f.Value.Int)}, nil
	case dsl.KindPath:
		return Word{Ref: f.Value.Path.GoExpr()}, nil
	}
	return Word{}, dsl.Errorf(f.Value.Pos, ErrInvalidValue,
		"`%s`: expected flags, integer literal or path, got %s", f.Key, f.Value.Kind)
}
