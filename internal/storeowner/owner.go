package storeowner

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/roach88/plotboard/internal/rpc"
)

// ErrStopped is returned by Send after the owner has been closed.
var ErrStopped = errors.New("store owner stopped")

var errNotOpen = errors.New("database not initialized")

// Option configures an Owner.
type Option func(*Owner)

// WithLogger sets the owner's logger.
func WithLogger(l zerolog.Logger) Option {
	return func(o *Owner) {
		o.logger = l
	}
}

// Owner is a running Store Owner. It implements rpc.Conn.
//
// Thread-safety: Send, Close, Responses and Faults are safe for concurrent
// use. Everything else, including the *sql.DB, belongs to the run goroutine.
type Owner struct {
	path   string
	logger zerolog.Logger

	inbox     *inbox
	responses chan rpc.Response
	faults    chan error

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	db *sql.DB

	// beforeHandle runs ahead of every message; nil outside tests.
	beforeHandle func(rpc.Message)
}

// Start launches a Store Owner for the database file at path. The file is
// not touched until the owner receives an init message.
func Start(path string, opts ...Option) (*Owner, error) {
	if path == "" {
		return nil, errors.New("storeowner: empty database path")
	}

	ctx, cancel := context.WithCancel(context.Background())
	o := &Owner{
		path:      path,
		logger:    zerolog.Nop(),
		inbox:     newInbox(),
		responses: make(chan rpc.Response, 16),
		faults:    make(chan error, 1),
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = o.logger.With().Str("component", "storeowner").Logger()

	go o.run()
	return o, nil
}

// Spawner returns an rpc.Spawner that starts an Owner for path.
func Spawner(path string, opts ...Option) rpc.Spawner {
	return func() (rpc.Conn, error) {
		return Start(path, opts...)
	}
}

// Send queues msg. It never waits for the owner to process anything.
func (o *Owner) Send(msg rpc.Message) error {
	if !o.inbox.Enqueue(msg) {
		return ErrStopped
	}
	return nil
}

func (o *Owner) Responses() <-chan rpc.Response { return o.responses }

func (o *Owner) Faults() <-chan error { return o.faults }

// Close stops the owner without waiting for it. Queued messages are dropped.
// Use Wait to block until the database is closed.
func (o *Owner) Close() error {
	o.cancel()
	o.inbox.Close()
	return nil
}

// Wait blocks until the run goroutine has exited and the database is closed.
func (o *Owner) Wait() {
	<-o.done
}

func (o *Owner) run() {
	defer o.shutdown()

	for {
		if o.ctx.Err() != nil {
			return
		}
		if msg, ok := o.inbox.TryDequeue(); ok {
			if !o.handle(msg) {
				// Faulted. Stay parked until the peer closes us so the fault
				// is observed before the channels close.
				<-o.ctx.Done()
				return
			}
			continue
		}

		select {
		case <-o.ctx.Done():
			return
		case _, open := <-o.inbox.Wait():
			if !open && o.inbox.Len() == 0 {
				return
			}
		}
	}
}

func (o *Owner) shutdown() {
	if o.db != nil {
		if err := o.db.Close(); err != nil {
			o.logger.Warn().Err(err).Msg("close database")
		}
		o.db = nil
	}
	close(o.responses)
	close(o.faults)
	close(o.done)
	o.logger.Debug().Msg("stopped")
}

// handle processes one message. Returns false after a fault.
func (o *Owner) handle(msg rpc.Message) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic handling %s request %s: %v", msg.Action, msg.ID, r)
			o.logger.Error().Err(err).Msg("store owner fault")
			o.fault(err)
			ok = false
		}
	}()

	if o.beforeHandle != nil {
		o.beforeHandle(msg)
	}

	switch msg.Action {
	case rpc.ActionInit:
		o.handleInit()
	case rpc.ActionExec:
		o.emit(o.exec(msg))
	case rpc.ActionExport:
		o.emit(o.export(msg))
	default:
		o.emit(rpc.Response{ID: msg.ID, Error: fmt.Sprintf("unknown action %s", msg.Action)})
	}
	return true
}

func (o *Owner) handleInit() {
	if o.db == nil {
		db, err := openDB(o.path)
		if err != nil {
			o.logger.Error().Err(err).Str("path", o.path).Msg("initialization failed")
			o.emit(rpc.Response{ID: rpc.ControlError, Error: err.Error()})
			return
		}
		o.db = db

		if version, dirty, err := schemaVersion(db); err == nil {
			o.logger.Info().Str("path", o.path).Uint("schema", version).Bool("dirty", dirty).Msg("database ready")
		}
	}
	o.emit(rpc.Response{ID: rpc.ControlReady})
}

func (o *Owner) exec(msg rpc.Message) rpc.Response {
	if o.db == nil {
		return rpc.Response{ID: msg.ID, Error: errNotOpen.Error()}
	}
	rows, err := query(o.ctx, o.db, msg.Params.Statement, msg.Params.Args)
	if err != nil {
		o.logger.Debug().Err(err).Stringer("id", msg.ID).Str("statement", msg.Params.Statement).Msg("statement failed")
		return rpc.Response{ID: msg.ID, Error: err.Error()}
	}
	return rpc.Response{ID: msg.ID, Rows: rows}
}

func (o *Owner) export(msg rpc.Message) rpc.Response {
	if o.db == nil {
		return rpc.Response{ID: msg.ID, Error: errNotOpen.Error()}
	}
	img, err := exportImage(o.ctx, o.db)
	if err != nil {
		o.logger.Warn().Err(err).Msg("export failed")
		return rpc.Response{ID: msg.ID, Error: err.Error()}
	}
	o.logger.Debug().Int("bytes", len(img)).Msg("exported snapshot")
	return rpc.Response{ID: msg.ID, Snapshot: img}
}

func (o *Owner) emit(resp rpc.Response) {
	select {
	case o.responses <- resp:
	case <-o.ctx.Done():
	}
}

func (o *Owner) fault(err error) {
	select {
	case o.faults <- err:
	case <-o.ctx.Done():
	}
}
