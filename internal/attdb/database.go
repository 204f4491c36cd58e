package attdb

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Route binds a characteristic value record to an external handler reference.
type Route struct {
	Index          uint16
	Handler        string
	Characteristic string
}

// NamedIndex is one entry of the characteristic name map.
type NamedIndex struct {
	Name  string
	Index uint16
}

// Database is a compiled attribute table. It is immutable once built; all
// accessors return copies.
type Database struct {
	records       []*Record
	serviceStarts []int
	names         *orderedmap.OrderedMap[string, uint16]
	reads         []Route
	writes        []Route
}

// Len returns the number of attribute records.
func (db *Database) Len() int {
	return len(db.records)
}

// Record returns the record at index i.
func (db *Database) Record(i int) (Record, bool) {
	if i < 0 || i >= len(db.records) {
		return Record{}, false
	}
	return db.records[i].clone(), true
}

// Records returns all records in table order.
func (db *Database) Records() []Record {
	out := make([]Record, len(db.records))
	for i, r := range db.records {
		out[i] = r.clone()
	}
	return out
}

// ServiceStarts returns the first record index of each service followed by a
// sentinel equal to Len.
func (db *Database) ServiceStarts() []int {
	out := make([]int, len(db.serviceStarts))
	copy(out, db.serviceStarts)
	return out
}

// ServiceCount returns the number of services.
func (db *Database) ServiceCount() int {
	return len(db.serviceStarts) - 1
}

// Index returns the value-record index of the named characteristic.
func (db *Database) Index(name string) (uint16, bool) {
	return db.names.Get(name)
}

// Names returns the characteristic name map in declaration order.
func (db *Database) Names() []NamedIndex {
	out := make([]NamedIndex, 0, db.names.Len())
	for pair := db.names.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, NamedIndex{Name: pair.Key, Index: pair.Value})
	}
	return out
}

// ReadRoutes returns the read-dispatch list in table order.
func (db *Database) ReadRoutes() []Route {
	return append([]Route(nil), db.reads...)
}

// WriteRoutes returns the write-dispatch list in table order.
func (db *Database) WriteRoutes() []Route {
	return append([]Route(nil), db.writes...)
}
