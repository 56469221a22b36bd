package rpc

import "sync/atomic"

// idClock hands out strictly increasing correlation ids starting at 1.
//
// Thread-safety: safe for concurrent use. The Proxy also holds its mutex
// while allocating so that id order equals send order.
type idClock struct {
	seq atomic.Uint64
}

// Next returns the next correlation id.
func (c *idClock) Next() RequestID {
	return RequestID(c.seq.Add(1))
}

// Current returns the last id handed out, or 0.
func (c *idClock) Current() RequestID {
	return RequestID(c.seq.Load())
}
