package attdb

import (
	"errors"
	"math"

	"github.com/go-ble/ble"
	"github.com/sirupsen/logrus"
	"github.com/srg/attdb/internal/dsl"
	"github.com/srg/attdb/internal/gatt"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// MaxRecords is the table capacity: record indices and the service index array
// are 8-bit in the host ABI.
const MaxRecords = math.MaxUint8

var (
	ErrMissingReadHandler   = errors.New("missing read handler")
	ErrMissingWriteHandler  = errors.New("missing write handler")
	ErrDuplicateName        = errors.New("duplicate characteristic name")
	ErrLengthOverflow       = errors.New("length overflows max-length field")
	ErrTooManyRecords       = errors.New("too many attribute records")
	ErrOrphanCharacteristic = errors.New("characteristic outside a service")
)

// Builder compiles a service tree or an entry list into a Database.
type Builder struct {
	logger    *logrus.Logger
	constants map[string]uint16
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger used to trace emitted records.
func WithLogger(logger *logrus.Logger) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}

// WithConstants sets the values used to resolve deferred lengths.
func WithConstants(constants map[string]uint16) Option {
	return func(b *Builder) {
		b.constants = constants
	}
}

// NewBuilder creates a Builder. Without WithLogger it logs nothing.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = logrus.New()
		b.logger.SetLevel(logrus.PanicLevel)
	}
	return b
}

// Build compiles services with a default Builder.
func Build(services []*gatt.Service) (*Database, error) {
	return NewBuilder().Build(services)
}

// table is the growing output of a single Build call.
type table struct {
	b  *Builder
	db *Database
}

func (b *Builder) newTable() *table {
	return &table{
		b: b,
		db: &Database{
			names: orderedmap.New[string, uint16](),
		},
	}
}

func (t *table) next() int {
	return len(t.db.records)
}

func (t *table) emit(pos dsl.Pos, r *Record) error {
	if t.next() >= MaxRecords {
		return dsl.Errorf(pos, ErrTooManyRecords, "attribute table is limited to %d records", MaxRecords)
	}
	r.Index = t.next()
	t.db.records = append(t.db.records, r)
	t.b.logger.WithFields(logrus.Fields{
		"index": r.Index,
		"kind":  r.Kind.String(),
		"owner": r.Owner,
		"uuid":  gatt.FormatUUID(r.UUID),
		"perm":  r.Perm.String(),
		"max":   r.maxLengthString(),
		"len":   r.Length,
	}).Debug("Emitted attribute record")
	return nil
}

func (t *table) finish() *Database {
	t.db.serviceStarts = append(t.db.serviceStarts, t.next())
	t.b.logger.WithFields(logrus.Fields{
		"records":  t.next(),
		"services": len(t.db.serviceStarts) - 1,
		"read":     len(t.db.reads),
		"write":    len(t.db.writes),
	}).Debug("Attribute table built")
	return t.db
}

// checkCapacity fails at pos once the running record count exceeds MaxRecords.
func checkCapacity(pos dsl.Pos, count int) error {
	if count > MaxRecords {
		return dsl.Errorf(pos, ErrTooManyRecords, "attribute table needs %d records (limit %d)", count, MaxRecords)
	}
	return nil
}

// Build walks services in declaration order and emits their records.
func (b *Builder) Build(services []*gatt.Service) (*Database, error) {
	total := 0
	for _, svc := range services {
		total += svc.RecordCount()
		if err := checkCapacity(svc.Pos, total); err != nil {
			return nil, err
		}
	}

	t := b.newTable()
	for _, svc := range services {
		if err := t.service(svc.Pos, svc.Name, svc.UUID); err != nil {
			return nil, err
		}
		for _, c := range svc.Characteristics {
			if err := t.characteristic(c); err != nil {
				return nil, err
			}
		}
	}
	return t.finish(), nil
}

func (t *table) service(pos dsl.Pos, name string, uuid ble.UUID) error {
	t.db.serviceStarts = append(t.db.serviceStarts, t.next())
	return t.emit(pos, &Record{
		Kind:      ServiceDeclaration,
		Owner:     name,
		UUID:      PrimaryServiceUUID,
		Perm:      gatt.WordOf(gatt.ReadOnly),
		MaxLength: gatt.LiteralLength(uint16(uuid.Len())),
		Length:    uint16(uuid.Len()),
		Value:     append([]byte(nil), uuid...),
	})
}

func (t *table) declaration(pos dsl.Pos, owner string) error {
	return t.emit(pos, &Record{
		Kind:      CharacteristicDeclaration,
		Owner:     owner,
		UUID:      CharacteristicUUID,
		Perm:      gatt.WordOf(gatt.ReadOnly),
		MaxLength: gatt.LiteralLength(0),
	})
}

func (t *table) description(pos dsl.Pos, owner, text string) error {
	value := []byte(text)
	if len(value) > math.MaxUint16 {
		return dsl.Errorf(pos, ErrLengthOverflow, "user description of `%s` is %d bytes long", owner, len(value))
	}
	return t.emit(pos, &Record{
		Kind:      UserDescription,
		Owner:     owner,
		UUID:      UserDescriptionUUID,
		Perm:      gatt.WordOf(gatt.ReadOnly),
		MaxLength: gatt.LiteralLength(uint16(len(value))),
		Length:    uint16(len(value)),
		Value:     value,
	})
}

func (t *table) valueLength(pos dsl.Pos, owner string, l gatt.Length) (gatt.Length, error) {
	l = l.Resolve(t.b.constants)
	if !l.IsDeferred() && l.Value()&TriggerIndication != 0 {
		return l, dsl.Errorf(pos, ErrLengthOverflow,
			"length %d of `%s` collides with the trigger-indication bit (max %d)", l.Value(), owner, TriggerIndication-1)
	}
	return l, nil
}

func (t *table) characteristic(c *gatt.Characteristic) error {
	if err := t.declaration(c.Pos, c.Name); err != nil {
		return err
	}

	index := uint16(t.next())
	if prev, dup := t.db.names.Set(c.Name, index); dup {
		return dsl.Errorf(c.Pos, ErrDuplicateName, "characteristic `%s` already defined (value record %d)", c.Name, prev)
	}

	trigger := false
	if c.Permissions.IsReadable() {
		if c.ReadHandler == "" {
			return dsl.Errorf(c.Pos, ErrMissingReadHandler, "characteristic `%s` has read permission but no read handler", c.Name)
		}
		t.db.reads = append(t.db.reads, Route{Index: index, Handler: c.ReadHandler, Characteristic: c.Name})
		trigger = true
	}
	if c.Permissions.IsWritable() {
		if c.WriteHandler == "" {
			return dsl.Errorf(c.Pos, ErrMissingWriteHandler, "characteristic `%s` has write permission but no write handler", c.Name)
		}
		t.db.writes = append(t.db.writes, Route{Index: index, Handler: c.WriteHandler, Characteristic: c.Name})
		trigger = true
	}

	length, err := t.valueLength(c.Pos, c.Name, c.Length)
	if err != nil {
		return err
	}
	if err := t.emit(c.Pos, &Record{
		Kind:      CharacteristicValue,
		Owner:     c.Name,
		UUID:      c.UUID,
		Perm:      gatt.WordOf(c.Permissions),
		MaxLength: length,
		Trigger:   trigger,
	}); err != nil {
		return err
	}

	if c.HasUserDescription() {
		return t.description(c.Pos, c.Name, *c.UserDescription)
	}
	return nil
}

// BuildEntries compiles the explicit-entry form. Entries are emitted in literal
// order; there is no name map and no dispatch list, and every characteristic
// value record carries the trigger-indication flag. A characteristic entry
// before the first service entry would fall outside every service range and is
// rejected.
func (b *Builder) BuildEntries(entries []*gatt.Entry) (*Database, error) {
	total := 0
	for _, e := range entries {
		total += e.RecordCount()
		if err := checkCapacity(e.Pos, total); err != nil {
			return nil, err
		}
	}

	t := b.newTable()
	for _, e := range entries {
		switch e.Kind {
		case gatt.ServiceEntry:
			if err := t.service(e.Pos, "", e.UUID); err != nil {
				return nil, err
			}
		case gatt.CharacteristicEntry:
			if len(t.db.serviceStarts) == 0 {
				return nil, dsl.Errorf(e.Pos, ErrOrphanCharacteristic,
					"characteristic entry %s precedes the first service entry", gatt.FormatUUID(e.UUID))
			}
			if err := t.entryCharacteristic(e); err != nil {
				return nil, err
			}
		}
	}
	return t.finish(), nil
}

func (t *table) entryCharacteristic(e *gatt.Entry) error {
	if err := t.declaration(e.Pos, ""); err != nil {
		return err
	}
	length, err := t.valueLength(e.Pos, gatt.FormatUUID(e.UUID), e.Length)
	if err != nil {
		return err
	}
	if err := t.emit(e.Pos, &Record{
		Kind:      CharacteristicValue,
		UUID:      e.UUID,
		Perm:      e.Perm,
		MaxLength: length,
		Trigger:   true,
	}); err != nil {
		return err
	}
	if e.UserDescription != nil {
		return t.description(e.Pos, "", *e.UserDescription)
	}
	return nil
}
