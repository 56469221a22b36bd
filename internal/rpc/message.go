package rpc

import (
	"fmt"
	"math"
)

// RequestID correlates a Message with its Response.
type RequestID uint64

// Reserved ids. Ordinary requests are numbered from 1 and never reach them.
const (
	// HandshakeID is the id of the ActionInit message.
	HandshakeID RequestID = 0

	// ControlReady is the id of the Store Owner's readiness signal.
	ControlReady RequestID = math.MaxUint64

	// ControlError is the id of the Store Owner's handshake failure signal.
	ControlError RequestID = math.MaxUint64 - 1
)

// Reserved reports whether id belongs to the handshake.
func (id RequestID) Reserved() bool {
	return id == HandshakeID || id == ControlReady || id == ControlError
}

func (id RequestID) String() string {
	switch id {
	case HandshakeID:
		return "handshake"
	case ControlReady:
		return "control-ready"
	case ControlError:
		return "control-error"
	default:
		return fmt.Sprintf("%d", uint64(id))
	}
}

// Action is the closed set of request kinds a Store Owner understands.
type Action int

const (
	// ActionInit opens the store and applies migrations.
	ActionInit Action = iota + 1
	// ActionExec runs one statement and returns its rows.
	ActionExec
	// ActionExport returns a database image of the whole store.
	ActionExport
)

func (a Action) String() string {
	switch a {
	case ActionInit:
		return "init"
	case ActionExec:
		return "exec"
	case ActionExport:
		return "export"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Params carries the arguments of an ActionExec message.
type Params struct {
	Statement string
	Args      []Value
}

// Message is a request sent to the Store Owner.
type Message struct {
	ID     RequestID
	Action Action
	Params Params
}

// Response is the Store Owner's answer to a Message, or a control signal.
// Exactly one of Rows/Snapshot/Error is meaningful for a given action.
type Response struct {
	ID       RequestID
	Rows     []Row
	Snapshot []byte
	Error    string
}

// Failed reports whether the response carries a store-reported error.
func (r Response) Failed() bool {
	return r.Error != ""
}
