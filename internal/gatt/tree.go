package gatt

import (
	"math"

	"github.com/srg/attdb/internal/dsl"
)

var (
	serviceKeys        = []string{"uuid", "characteristics"}
	characteristicKeys = []string{"uuid", "permissions", "length", "user_description", "read_handler", "write_handler"}
)

// ServicesFromRecords validates a nested-record tree and converts it into services.
// Every top-level field is a service; its `characteristics` field holds one
// record per characteristic.
func ServicesFromRecords(root *dsl.Records) ([]*Service, error) {
	var services []*Service
	for _, field := range root.Fields() {
		recs, err := expectRecords(field)
		if err != nil {
			return nil, err
		}
		svc, err := serviceFromRecords(field.Key, recs)
		if err != nil {
			return nil, err
		}
		services = append(services, svc)
	}
	return services, nil
}

func serviceFromRecords(name string, recs *dsl.Records) (*Service, error) {
	if err := checkKeys("service", name, recs, serviceKeys); err != nil {
		return nil, err
	}

	uuidField, err := requireField("service", name, recs, "uuid")
	if err != nil {
		return nil, err
	}
	uuid, err := UUIDFromValue(uuidField.Key, uuidField.Value)
	if err != nil {
		return nil, err
	}

	charsField, err := requireField("service", name, recs, "characteristics")
	if err != nil {
		return nil, err
	}
	if charsField.Value.Kind != dsl.KindRecords {
		return nil, dsl.Errorf(charsField.Value.Pos, ErrInvalidValue,
			"`characteristics`: expected characteristics records, got %s", charsField.Value.Kind)
	}

	svc := &Service{Name: name, Pos: recs.Pos, UUID: uuid}
	for _, field := range charsField.Value.Records.Fields() {
		charRecs, err := expectRecords(field)
		if err != nil {
			return nil, err
		}
		c, err := characteristicFromRecords(field.Key, charRecs)
		if err != nil {
			return nil, err
		}
		svc.Characteristics = append(svc.Characteristics, c)
	}
	return svc, nil
}

func characteristicFromRecords(name string, recs *dsl.Records) (*Characteristic, error) {
	if err := checkKeys("characteristic", name, recs, characteristicKeys); err != nil {
		return nil, err
	}
	c := &Characteristic{Name: name, Pos: recs.Pos}

	uuidField, err := requireField("characteristic", name, recs, "uuid")
	if err != nil {
		return nil, err
	}
	if c.UUID, err = UUIDFromValue(uuidField.Key, uuidField.Value); err != nil {
		return nil, err
	}

	permField, err := requireField("characteristic", name, recs, "permissions")
	if err != nil {
		return nil, err
	}
	if err := expectKind(permField, dsl.KindFlags); err != nil {
		return nil, err
	}
	if c.Permissions, err = ParseFlags(permField.Value.Flags); err != nil {
		return nil, dsl.WrapError(permField.Value.Pos, err)
	}
	if Is128(c.UUID) && !HasUUIDLengthFlag(permField.Value.Flags) {
		c.Permissions.UUIDLength = UUIDLen128
	}

	lengthField, err := requireField("characteristic", name, recs, "length")
	if err != nil {
		return nil, err
	}
	if c.Length, err = lengthFromValue(lengthField); err != nil {
		return nil, err
	}

	if f, ok := recs.Get("user_description"); ok {
		if err := expectKind(f, dsl.KindString); err != nil {
			return nil, err
		}
		desc := f.Value.Str
		c.UserDescription = &desc
	}
	if f, ok := recs.Get("read_handler"); ok {
		if err := expectKind(f, dsl.KindPath); err != nil {
			return nil, err
		}
		c.ReadHandler = f.Value.Path.GoExpr()
	}
	if f, ok := recs.Get("write_handler"); ok {
		if err := expectKind(f, dsl.KindPath); err != nil {
			return nil, err
		}
		c.WriteHandler = f.Value.Path.GoExpr()
	}
	return c, nil
}

func lengthFromValue(f *dsl.Field) (Length, error) {
	switch f.Value.Kind {
	case dsl.KindInt:
		if f.Value.Int > math.MaxUint16 {
			return Length{}, dsl.Errorf(f.Value.Pos, ErrInvalidValue, "`%s`: %s does not fit 16 bits", f.Key, f.Value.Raw)
		}
		return LiteralLength(uint16(f.Value.Int)), nil
	case dsl.KindPath:
		return DeferredLength(f.Value.Path.GoExpr()), nil
	}
	return Length{}, dsl.Errorf(f.Value.Pos, ErrInvalidValue,
		"`%s`: expected integer literal or path, got %s", f.Key, f.Value.Kind)
}

func checkKeys(what, name string, recs *dsl.Records, allowed []string) error {
	for _, f := range recs.Fields() {
		if !contains(allowed, f.Key) {
			return dsl.Errorf(f.KeyPos, ErrUnknownField, "unknown field `%s` in %s `%s`", f.Key, what, name)
		}
	}
	return nil
}

func requireField(what, name string, recs *dsl.Records, key string) (*dsl.Field, error) {
	f, ok := recs.Get(key)
	if !ok {
		return nil, dsl.Errorf(recs.Pos, ErrMissingField, "missing `%s` in %s `%s`", key, what, name)
	}
	return f, nil
}

func expectRecords(f *dsl.Field) (*dsl.Records, error) {
	if f.Value.Kind != dsl.KindRecords {
		return nil, dsl.Errorf(f.Value.Pos, ErrInvalidValue, "`%s`: expected record, got %s", f.Key, f.Value.Kind)
	}
	return f.Value.Records, nil
}

func expectKind(f *dsl.Field, kind dsl.Kind) error {
	if f.Value.Kind != kind {
		return dsl.Errorf(f.Value.Pos, ErrInvalidValue, "`%s`: expected %s, got %s", f.Key, kind, f.Value.Kind)
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
