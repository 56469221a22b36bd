package storeowner

import (
	"sync"

	"github.com/roach88/plotboard/internal/rpc"
)

// inbox is the Store Owner's unbounded FIFO of pending messages.
//
// Senders never block on the owner doing work: Enqueue appends and signals.
// The owner's loop drains with TryDequeue and parks on Wait.
type inbox struct {
	mu       sync.Mutex
	messages []rpc.Message
	closed   bool
	signal   chan struct{} // buffered, size 1
}

func newInbox() *inbox {
	return &inbox{
		messages: make([]rpc.Message, 0, 64),
		signal:   make(chan struct{}, 1),
	}
}

// Enqueue appends msg. Returns false if the inbox is closed.
func (q *inbox) Enqueue(msg rpc.Message) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.messages = append(q.messages, msg)

	// Buffer of 1 coalesces signals.
	select {
	case q.signal <- struct{}{}:
	default:
	}
	return true
}

// TryDequeue removes the front message without blocking.
func (q *inbox) TryDequeue() (rpc.Message, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.messages) == 0 {
		return rpc.Message{}, false
	}

	msg := q.messages[0]
	// Release the params for GC.
	q.messages[0] = rpc.Message{}
	if len(q.messages) == 1 {
		q.messages = q.messages[:0]
	} else {
		q.messages = q.messages[1:]
	}
	return msg, true
}

// Wait returns a channel that receives when messages may be available and
// is closed by Close.
func (q *inbox) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the number of queued messages.
func (q *inbox) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.messages)
}

// Close rejects further messages and wakes the waiter. Queued messages can
// still be drained.
func (q *inbox) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}
