// Package gatts is the runtime side of a compiled attribute database: the
// descriptor layout handed to the host stack, the request and response
// messages exchanged with a custom profile task, and handler dispatch.
package gatts

import (
	"fmt"

	"github.com/go-ble/ble"
)

// ErrAppError is the first ATT error code reserved for the application.
const ErrAppError ble.ATTError = 0x80

// Desc is one attribute record in the layout the host stack consumes.
type Desc struct {
	UUID      []byte
	UUIDSize  uint8
	Perm      uint32
	MaxLength uint16
	Length    uint16
	Value     []byte
}

// ValueRequest asks the application for the current value of an attribute.
type ValueRequest struct {
	ConnIdx uint8
	AttIdx  uint16
}

// AttInfoRequest asks the application for the length of an attribute.
type AttInfoRequest struct {
	ConnIdx uint8
	AttIdx  uint16
}

// WriteIndication carries a peer write to an attribute.
type WriteIndication struct {
	ConnIdx uint8
	Handle  uint16
	Offset  uint16
	Value   []byte
}

// Length is the number of bytes written.
func (w WriteIndication) Length() uint16 {
	return uint16(len(w.Value))
}

// Op identifies which request a Response answers.
type Op int

const (
	OpValue Op = iota
	OpAttInfo
)

func (o Op) String() string {
	switch o {
	case OpValue:
		return "value"
	case OpAttInfo:
		return "att-info"
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

// Response answers a ValueRequest or an AttInfoRequest.
type Response struct {
	Op      Op
	ConnIdx uint8
	AttIdx  uint16
	Length  uint16
	Status  ble.ATTError
	Value   []byte
}

// Responder delivers responses back to the host stack.
type Responder interface {
	Send(rsp Response) error
}

// ResponderFunc adapts a function to Responder.
type ResponderFunc func(rsp Response) error

func (f ResponderFunc) Send(rsp Response) error {
	return f(rsp)
}

// ReadHandler answers a value request through rsp.
type ReadHandler func(req ValueRequest, rsp Responder) error

// WriteHandler consumes a write indication.
type WriteHandler func(ind WriteIndication)

// Dispatcher routes profile messages to application handlers.
type Dispatcher interface {
	ServeValue(req ValueRequest, rsp Responder) error
	ServeWrite(ind WriteIndication)
	ServeAttInfo(req AttInfoRequest, rsp Responder) error
}

// DefaultRead rejects a value request for an attribute the application does
// not handle.
func DefaultRead(req ValueRequest, rsp Responder) error {
	return rsp.Send(Response{
		Op:      OpValue,
		ConnIdx: req.ConnIdx,
		AttIdx:  req.AttIdx,
		Status:  ErrAppError,
	})
}

// DefaultAttInfo answers every attribute info request with a zero length.
func DefaultAttInfo(req AttInfoRequest, rsp Responder) error {
	return rsp.Send(Response{
		Op:      OpAttInfo,
		ConnIdx: req.ConnIdx,
		AttIdx:  req.AttIdx,
		Status:  ble.ErrWriteNotPerm,
	})
}

// DefaultWrite drops writes to attributes without a handler.
func DefaultWrite(WriteIndication) {}
