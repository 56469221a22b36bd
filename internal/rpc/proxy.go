package rpc

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultInitTimeout bounds the handshake when no WithInitTimeout is given.
const DefaultInitTimeout = 10 * time.Second

// pendingRequest is the settle side of one outstanding Future.
type pendingRequest struct {
	action    Action
	statement string
	resolve   func(Response) bool
	reject    func(error) bool
}

// Proxy is the caller's handle on one Store Owner.
//
// Each Proxy owns its own pending-request table and readiness gate; there is
// no process-wide state. A Proxy pairs with exactly one Store Owner for its
// whole life.
//
// Thread-safety: all methods are safe for concurrent use. A dispatcher
// goroutine started by Initialize settles futures as responses arrive.
type Proxy struct {
	spawn   Spawner
	timeout time.Duration
	logger  zerolog.Logger
	ids     idClock

	mu      sync.Mutex
	gate    gate
	conn    Conn
	pending map[RequestID]pendingRequest
	stats   Stats
}

// Stats counts proxy activity. Returned by value from Proxy.Stats.
type Stats struct {
	Sent     int
	Resolved int
	Rejected int
	// Stray counts responses whose id matched no pending request.
	Stray int
	// DoubleSettle counts settle attempts on an already settled future.
	DoubleSettle int
}

// Option configures a Proxy.
type Option func(*Proxy)

// WithInitTimeout bounds how long Initialize waits for the ready signal.
func WithInitTimeout(d time.Duration) Option {
	return func(p *Proxy) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithLogger sets the logger used for handshake and fault diagnostics.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Proxy) {
		p.logger = l
	}
}

// NewProxy creates a Proxy that will start its Store Owner with spawn on the
// first Initialize call.
func NewProxy(spawn Spawner, opts ...Option) *Proxy {
	p := &Proxy{
		spawn:   spawn,
		timeout: DefaultInitTimeout,
		logger:  zerolog.Nop(),
		pending: make(map[RequestID]pendingRequest),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// State returns the current gate state.
func (p *Proxy) State() GateState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.gate.state
}

// Pending returns the number of outstanding requests.
func (p *Proxy) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending)
}

// Stats returns a snapshot of the proxy counters.
func (p *Proxy) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// Initialize spawns the Store Owner and performs the handshake.
//
// Only the first call spawns; every later or concurrent call waits for the
// same outcome. Returns nil once Ready, or an *InitializationError. After a
// failure every call returns the recorded error without retrying.
//
// Cancelling ctx abandons this caller's wait only. The handshake itself is
// bounded by the init timeout.
func (p *Proxy) Initialize(ctx context.Context) error {
	p.mu.Lock()
	if p.gate.begin() {
		if err := p.startLocked(); err != nil {
			p.mu.Unlock()
			return err
		}
	}
	switch p.gate.state {
	case Ready:
		p.mu.Unlock()
		return nil
	case Failed:
		err := p.gate.err
		p.mu.Unlock()
		return err
	}
	done := p.gate.done
	p.mu.Unlock()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.gate.state == Ready {
		return nil
	}
	return p.gate.err
}

// startLocked spawns the Store Owner, starts the dispatcher and sends the
// init message. Caller holds p.mu and has moved the gate to Initializing.
func (p *Proxy) startLocked() error {
	p.logger.Debug().Dur("timeout", p.timeout).Msg("spawning store owner")

	conn, err := p.spawn()
	if err != nil {
		ierr := &InitializationError{Message: "spawn store owner", Cause: err}
		p.gate.fail(ierr)
		p.logger.Error().Err(err).Msg("store owner spawn failed")
		return ierr
	}
	p.conn = conn

	go p.dispatch(conn)

	if err := conn.Send(Message{ID: HandshakeID, Action: ActionInit}); err != nil {
		ierr := &InitializationError{Message: "send init", Cause: err}
		p.failLocked(conn, ierr, err)
		return ierr
	}
	return nil
}

// Execute sends one statement to the Store Owner.
//
// The returned Future resolves with the statement's rows, or rejects with:
//   - *NotReadyError if the gate is not Ready (nothing is sent)
//   - *ExecutionError if the store reports a failure for this statement
//   - *TransportError if the connection faults before the response arrives
func (p *Proxy) Execute(statement string, params ...Value) *Future[[]Row] {
	f := newFuture[[]Row]()
	p.send(Message{
		Action: ActionExec,
		Params: Params{Statement: statement, Args: params},
	}, pendingRequest{
		resolve: func(r Response) bool { return f.resolve(r.Rows) },
		reject:  f.reject,
	})
	return f
}

// ExportSnapshot asks the Store Owner for an image of the whole store.
// Readiness and failure semantics are the same as Execute.
func (p *Proxy) ExportSnapshot() *Future[[]byte] {
	f := newFuture[[]byte]()
	p.send(Message{Action: ActionExport}, pendingRequest{
		resolve: func(r Response) bool { return f.resolve(r.Snapshot) },
		reject:  f.reject,
	})
	return f
}

// send allocates an id, records the pending request and hands the message
// to the connection, all under p.mu so that id order equals send order.
func (p *Proxy) send(msg Message, pr pendingRequest) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.gate.state != Ready {
		pr.reject(&NotReadyError{State: p.gate.state, Cause: p.gate.err})
		return
	}

	msg.ID = p.ids.Next()
	pr.action = msg.Action
	pr.statement = msg.Params.Statement
	p.pending[msg.ID] = pr
	p.stats.Sent++

	if err := p.conn.Send(msg); err != nil {
		// The message never left; the connection is gone for every request.
		p.failLocked(p.conn, &TransportError{ID: msg.ID, Cause: err}, err)
	}
}

// Close stops the Store Owner. Pending requests reject with TransportError
// and the gate becomes Failed. Safe to call more than once.
func (p *Proxy) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil {
		if p.gate.state == Uninitialized {
			p.gate.state = Failed
			p.gate.err = &NotReadyError{State: Uninitialized, Cause: ErrClosed}
		}
		return nil
	}
	conn := p.conn
	p.failLocked(conn, ErrClosed, ErrClosed)
	return nil
}

// dispatch routes responses and faults from conn until it closes or the
// handshake times out.
func (p *Proxy) dispatch(conn Conn) {
	timer := time.NewTimer(p.timeout)
	defer timer.Stop()
	timeout := timer.C

	responses := conn.Responses()
	faults := conn.Faults()

	for {
		select {
		case resp, ok := <-responses:
			if !ok {
				p.fault(conn, errors.New("store owner stopped"))
				return
			}
			if !p.handle(conn, resp) {
				return
			}
			if timeout != nil && p.State() != Initializing {
				timer.Stop()
				timeout = nil
			}

		case err, ok := <-faults:
			if !ok {
				faults = nil
				continue
			}
			p.fault(conn, err)
			return

		case <-timeout:
			p.mu.Lock()
			if p.gate.state == Initializing {
				p.logger.Error().Dur("timeout", p.timeout).Msg("store handshake timed out")
				p.failLocked(conn, &InitializationError{Cause: ErrInitTimeout}, ErrInitTimeout)
				p.mu.Unlock()
				return
			}
			p.mu.Unlock()
			timeout = nil
		}
	}
}

// handle processes one response. Returns false when the dispatcher should
// stop because the connection has been failed.
func (p *Proxy) handle(conn Conn, resp Response) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch resp.ID {
	case ControlReady:
		if p.gate.ready() {
			p.logger.Info().Msg("store ready")
		} else {
			p.logger.Warn().Stringer("state", p.gate.state).Msg("unexpected ready signal")
		}
		return true

	case ControlError:
		if p.gate.state == Initializing {
			p.logger.Error().Str("error", resp.Error).Msg("store initialization failed")
			p.failLocked(conn, &InitializationError{Message: resp.Error}, errors.New(resp.Error))
			return false
		}
		// A control error outside the handshake means the owner is unusable.
		p.logger.Error().Str("error", resp.Error).Msg("store owner reported fault")
		p.failLocked(conn, &TransportError{Cause: errors.New(resp.Error)}, errors.New(resp.Error))
		return false
	}

	pr, ok := p.pending[resp.ID]
	if !ok {
		p.stats.Stray++
		p.logger.Warn().Stringer("id", resp.ID).Msg("response for unknown request")
		return true
	}
	delete(p.pending, resp.ID)

	var settled bool
	if resp.Failed() {
		settled = pr.reject(&ExecutionError{
			ID:        resp.ID,
			Action:    pr.action,
			Statement: pr.statement,
			Message:   resp.Error,
		})
		p.stats.Rejected++
	} else {
		settled = pr.resolve(resp)
		p.stats.Resolved++
	}
	if !settled {
		p.stats.DoubleSettle++
	}
	return true
}

// fault fails the connection after a store-level error.
func (p *Proxy) fault(conn Conn, cause error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn != conn || p.gate.state == Failed {
		return
	}
	p.logger.Error().Err(cause).Int("pending", len(p.pending)).Msg("store transport fault")

	var gateErr error = &TransportError{Cause: cause}
	if p.gate.state == Initializing {
		gateErr = &InitializationError{Cause: cause}
	}
	p.failLocked(conn, gateErr, cause)
}

// failLocked moves the gate to Failed with gateErr, rejects every pending
// request with a TransportError carrying cause, clears the pending set and
// closes conn. Caller holds p.mu.
func (p *Proxy) failLocked(conn Conn, gateErr, cause error) {
	p.gate.fail(gateErr)

	for id, pr := range p.pending {
		if pr.reject(&TransportError{ID: id, Cause: cause}) {
			p.stats.Rejected++
		} else {
			p.stats.DoubleSettle++
		}
	}
	clear(p.pending)

	if conn != nil {
		if err := conn.Close(); err != nil {
			p.logger.Debug().Err(err).Msg("close store connection")
		}
	}
}

// Exec is a convenience wrapper that sends a statement and waits for it.
func (p *Proxy) Exec(ctx context.Context, statement string, params ...Value) ([]Row, error) {
	rows, err := p.Execute(statement, params...).Wait(ctx)
	if err != nil {
		return nil, fmt.Errorf("exec: %w", err)
	}
	return rows, nil
}
