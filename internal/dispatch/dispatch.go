// Package dispatch turns the read and write lists of a compiled database into
// routing tables and binds them to runtime handlers.
package dispatch

import (
	"errors"
	"fmt"

	"github.com/srg/attdb/internal/attdb"
	"github.com/srg/attdb/pkg/gatts"
)

var ErrUnboundHandler = errors.New("unbound handler")

// Case is one arm of a dispatch switch.
type Case struct {
	Index          uint16
	Handler        string
	Characteristic string
}

// Table holds the read and write routes of one database keyed by attribute
// index. Indices absent from a table fall through to the default policy.
type Table struct {
	reads   []Case
	writes  []Case
	byRead  map[uint16]string
	byWrite map[uint16]string
}

// NewTable builds routing tables from db.
func NewTable(db *attdb.Database) *Table {
	t := &Table{
		byRead:  make(map[uint16]string),
		byWrite: make(map[uint16]string),
	}
	for _, r := range db.ReadRoutes() {
		t.reads = append(t.reads, Case(r))
		t.byRead[r.Index] = r.Handler
	}
	for _, r := range db.WriteRoutes() {
		t.writes = append(t.writes, Case(r))
		t.byWrite[r.Index] = r.Handler
	}
	return t
}

// ReadCases returns the read switch arms in table order.
func (t *Table) ReadCases() []Case {
	return append([]Case(nil), t.reads...)
}

// WriteCases returns the write switch arms in table order.
func (t *Table) WriteCases() []Case {
	return append([]Case(nil), t.writes...)
}

// ReadHandler returns the handler reference routed for idx.
func (t *Table) ReadHandler(idx uint16) (string, bool) {
	h, ok := t.byRead[idx]
	return h, ok
}

// WriteHandler returns the handler reference routed for idx.
func (t *Table) WriteHandler(idx uint16) (string, bool) {
	h, ok := t.byWrite[idx]
	return h, ok
}

// Empty reports whether neither table has a route.
func (t *Table) Empty() bool {
	return len(t.reads) == 0 && len(t.writes) == 0
}

// Handlers resolves handler references to runtime functions.
type Handlers struct {
	Read  map[string]gatts.ReadHandler
	Write map[string]gatts.WriteHandler
}

// Bind builds a router for the table. Every reference in the table must be
// resolvable in h.
func (t *Table) Bind(h Handlers) (*gatts.Router, error) {
	router := gatts.NewRouter()
	var errs []error
	for _, c := range t.reads {
		fn, ok := h.Read[c.Handler]
		if !ok {
			errs = append(errs, fmt.Errorf("%w: read handler %s for characteristic `%s` (index %d)", ErrUnboundHandler, c.Handler, c.Characteristic, c.Index))
			continue
		}
		router.HandleRead(c.Index, fn)
	}
	for _, c := range t.writes {
		fn, ok := h.Write[c.Handler]
		if !ok {
			errs = append(errs, fmt.Errorf("%w: write handler %s for characteristic `%s` (index %d)", ErrUnboundHandler, c.Handler, c.Characteristic, c.Index))
			continue
		}
		router.HandleWrite(c.Index, fn)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return router, nil
}
