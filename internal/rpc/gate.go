package rpc

// GateState is the readiness of a Proxy's store connection.
type GateState int

const (
	Uninitialized GateState = iota
	Initializing
	Ready
	Failed
)

func (s GateState) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initializing:
		return "initializing"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// gate tracks the one-time handshake. Guarded by Proxy.mu.
type gate struct {
	state GateState
	// done is closed when the handshake leaves Initializing.
	done chan struct{}
	err  error
}

// begin moves Uninitialized → Initializing. Returns false in any other state.
func (g *gate) begin() bool {
	if g.state != Uninitialized {
		return false
	}
	g.state = Initializing
	g.done = make(chan struct{})
	return true
}

// ready moves Initializing → Ready. Returns false in any other state.
func (g *gate) ready() bool {
	if g.state != Initializing {
		return false
	}
	g.state = Ready
	close(g.done)
	return true
}

// fail moves Initializing or Ready → Failed and records err.
// The first recorded failure wins; returns false if already Failed.
func (g *gate) fail(err error) bool {
	switch g.state {
	case Failed:
		return false
	case Initializing:
		g.state = Failed
		g.err = err
		close(g.done)
		return true
	default:
		g.state = Failed
		g.err = err
		return true
	}
}
