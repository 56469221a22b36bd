package rpc

// Conn is the asynchronous channel to a Store Owner.
//
// Send must not block on the Store Owner doing work; it only hands the
// message over. Responses delivers answers and control signals in any
// order. Faults delivers store-level failures that invalidate the whole
// connection. Both channels are closed when the Store Owner stops.
//
// Close asks the Store Owner to stop and returns without waiting for it;
// the Proxy calls it while holding its own lock.
type Conn interface {
	Send(msg Message) error
	Responses() <-chan Response
	Faults() <-chan error
	Close() error
}

// Spawner starts a Store Owner and returns the connection to it.
// A Proxy calls its Spawner at most once.
type Spawner func() (Conn, error)
