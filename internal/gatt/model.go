package gatt

import (
	"fmt"
	"strconv"

	"github.com/go-ble/ble"
	"github.com/srg/attdb/internal/dsl"
)

// Length is a characteristic length: a literal or a deferred reference
// (for example the size of a host type) resolved by the surrounding build.
type Length struct {
	value uint16
	ref   string
}

// LiteralLength returns a length known at compile time.
func LiteralLength(n uint16) Length {
	return Length{value: n}
}

// DeferredLength returns a length that is emitted verbatim as ref.
func DeferredLength(ref string) Length {
	return Length{ref: ref}
}

func (l Length) IsDeferred() bool {
	return l.ref != ""
}

// Value returns the literal length. It is zero for deferred lengths.
func (l Length) Value() uint16 {
	return l.value
}

// Ref returns the deferred reference, or "" for literals.
func (l Length) Ref() string {
	return l.ref
}

// Resolve replaces a deferred reference found in constants with its literal value.
func (l Length) Resolve(constants map[string]uint16) Length {
	if !l.IsDeferred() {
		return l
	}
	if n, ok := constants[l.ref]; ok {
		return LiteralLength(n)
	}
	return l
}

func (l Length) String() string {
	if l.IsDeferred() {
		return l.ref
	}
	return strconv.Itoa(int(l.value))
}

// Characteristic is one leaf of the service tree.
type Characteristic struct {
	Name            string
	Pos             dsl.Pos
	Permissions     Permissions
	UUID            ble.UUID
	Length          Length
	UserDescription *string
	ReadHandler     string
	WriteHandler    string
}

// HasUserDescription reports whether a user-description record is emitted.
func (c *Characteristic) HasUserDescription() bool {
	return c.UserDescription != nil
}

// RecordCount is the number of attribute records the characteristic occupies.
func (c *Characteristic) RecordCount() int {
	if c.HasUserDescription() {
		return 3
	}
	return 2
}

func (c *Characteristic) String() string {
	return fmt.Sprintf("characteristic `%s` (%s)", c.Name, FormatUUID(c.UUID))
}

// Service is a primary service and its characteristics in declaration order.
type Service struct {
	Name            string
	Pos             dsl.Pos
	UUID            ble.UUID
	Characteristics []*Characteristic
}

// RecordCount is the number of attribute records the service occupies.
func (s *Service) RecordCount() int {
	n := 1
	for _, c := range s.Characteristics {
		n += c.RecordCount()
	}
	return n
}
