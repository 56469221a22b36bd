// Package controller holds the in-memory board for one project and keeps it
// in step with the store.
package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/roach88/plotboard/internal/board"
	"github.com/roach88/plotboard/internal/reorder"
)

// ErrNotLoaded is returned by operations that need a board before Load.
var ErrNotLoaded = errors.New("board not loaded")

// Store is the persistence the controller needs. *repository.Repository
// implements it.
type Store interface {
	LoadBoard(ctx context.Context, projectID string) (*board.Board, error)
	ApplyChanges(ctx context.Context, changes []reorder.Change) error
	SetActOrdinals(ctx context.Context, changes []reorder.ActChange) error
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the controller logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

// Controller applies moves to a project's board.
//
// The in-memory board is replaced before the store is written, so readers
// see the result of a move immediately. If persisting fails the in-memory
// board is kept and the error returned; Reload brings it back in line with
// the store.
//
// Thread-safety: safe for concurrent use. Moves are serialized.
type Controller struct {
	store     Store
	projectID string
	logger    zerolog.Logger

	mu    sync.Mutex
	board *board.Board
}

// New creates a Controller for projectID. Call Load before moving scenes.
func New(store Store, projectID string, opts ...Option) *Controller {
	c := &Controller{
		store:     store,
		projectID: projectID,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With().Str("project", projectID).Logger()
	return c
}

// ProjectID returns the project this controller manages.
func (c *Controller) ProjectID() string {
	return c.projectID
}

// Load reads the board from the store, replacing any board in memory.
func (c *Controller) Load(ctx context.Context) error {
	b, err := c.store.LoadBoard(ctx, c.projectID)
	if err != nil {
		return fmt.Errorf("load board: %w", err)
	}

	c.mu.Lock()
	c.board = b
	c.mu.Unlock()

	c.logger.Debug().Int("acts", len(b.Acts())).Int("scenes", b.Len()).Msg("board loaded")
	return nil
}

// Reload is Load under the name callers use after a failed write.
func (c *Controller) Reload(ctx context.Context) error {
	return c.Load(ctx)
}

// Board returns the current board, or nil before Load. The board must not
// be mutated.
func (c *Controller) Board() *board.Board {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.board
}

// Move applies mv. A move the engine cannot resolve is returned with its
// NoOp reason set and nothing is written.
func (c *Controller) Move(ctx context.Context, mv reorder.Move) (reorder.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.board == nil {
		return reorder.Result{}, ErrNotLoaded
	}

	res := reorder.Apply(c.board, mv)
	if !res.Applied() {
		c.logger.Debug().Str("scene", mv.SceneID).Str("act", mv.TargetActID).Str("reason", string(res.NoOp)).Msg("move ignored")
		return res, nil
	}

	c.board = res.Board
	if len(res.Changes) == 0 {
		return res, nil
	}

	if err := c.store.ApplyChanges(ctx, res.Changes); err != nil {
		c.logger.Error().Err(err).Str("scene", mv.SceneID).Msg("persist move failed")
		return res, fmt.Errorf("persist move: %w", err)
	}

	ev := c.logger.Debug().Str("scene", mv.SceneID).Str("act", mv.TargetActID).Int("changes", len(res.Changes))
	if res.Anchor != nil {
		ev = ev.Str("anchor", res.Anchor.SceneID)
	}
	ev.Msg("scene moved")
	return res, nil
}

// Drop resolves a raw drop (over may be a scene or an act id) and applies
// it. Returns reorder.NoOpUnknownTarget when neither id resolves.
func (c *Controller) Drop(ctx context.Context, activeID, overID string) (reorder.Result, error) {
	b := c.Board()
	if b == nil {
		return reorder.Result{}, ErrNotLoaded
	}
	mv, ok := reorder.ResolveDrop(b, activeID, overID)
	if !ok {
		reason := reorder.NoOpUnknownTarget
		if _, known := b.ActOf(activeID); !known {
			reason = reorder.NoOpUnknownScene
		}
		return reorder.Result{Board: b, NoOp: reason}, nil
	}
	return c.Move(ctx, mv)
}

// MoveAct moves an act to a new ordinal and persists the renumbering.
func (c *Controller) MoveAct(ctx context.Context, actID string, number int) (reorder.ActResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.board == nil {
		return reorder.ActResult{}, ErrNotLoaded
	}

	res := reorder.MoveAct(c.board, actID, number)
	if !res.Applied() || len(res.Changes) == 0 {
		return res, nil
	}

	c.board = res.Board
	if err := c.store.SetActOrdinals(ctx, res.Changes); err != nil {
		return res, fmt.Errorf("persist act move: %w", err)
	}
	c.logger.Debug().Str("act", actID).Int("number", number).Msg("act moved")
	return res, nil
}
