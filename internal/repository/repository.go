package repository

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/plotboard/internal/board"
	"github.com/roach88/plotboard/internal/ids"
	"github.com/roach88/plotboard/internal/rpc"
)

var (
	// ErrNotFound is returned when the addressed project, act or scene does
	// not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalid is returned for input rejected before reaching the store.
	ErrInvalid = errors.New("invalid input")
)

// Executor sends statements to the store. *rpc.Proxy implements it.
type Executor interface {
	Execute(statement string, params ...rpc.Value) *rpc.Future[[]rpc.Row]
}

// Option configures a Repository.
type Option func(*Repository)

// WithIDs sets the identifier generator (default ids.UUIDv7).
func WithIDs(g ids.Generator) Option {
	return func(r *Repository) {
		r.ids = g
	}
}

// WithLogger sets the repository logger.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Repository) {
		r.logger = l
	}
}

// Repository reads and writes projects, acts and scenes.
//
// Thread-safety: safe for concurrent use if the Executor is.
type Repository struct {
	exec   Executor
	ids    ids.Generator
	logger zerolog.Logger
}

// New creates a Repository over exec.
func New(exec Executor, opts ...Option) *Repository {
	r := &Repository{
		exec:   exec,
		ids:    ids.UUIDv7{},
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// normalizeText NFC-normalizes and trims user-entered text.
func normalizeText(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}

func normalizePayload(p board.Payload) (board.Payload, error) {
	p.Title = normalizeText(p.Title)
	p.Location = normalizeText(p.Location)
	p.TimeOfDay = strings.ToUpper(normalizeText(p.TimeOfDay))
	p.HeroImageURL = strings.TrimSpace(p.HeroImageURL)

	if p.Title == "" {
		return p, fmt.Errorf("%w: scene title is empty", ErrInvalid)
	}
	if !board.ValidTimeOfDay(p.TimeOfDay) {
		return p, fmt.Errorf("%w: time of day %q (want one of %s)", ErrInvalid, p.TimeOfDay, strings.Join(board.TimesOfDay, ", "))
	}
	return p, nil
}

// textOrNull maps "" to NULL for optional columns.
func textOrNull(s string) rpc.Value {
	if s == "" {
		return rpc.Null{}
	}
	return rpc.Text(s)
}

func validRatio(r float64) bool {
	return r >= 0 && !math.IsNaN(r) && !math.IsInf(r, 0)
}

// await waits for f and wraps a failure with op.
func await(ctx context.Context, op string, f *rpc.Future[[]rpc.Row]) ([]rpc.Row, error) {
	rows, err := f.Wait(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return rows, nil
}

// awaitAll waits for every future and joins the failures.
func awaitAll(ctx context.Context, op string, futures []*rpc.Future[[]rpc.Row]) error {
	var errs []error
	for _, f := range futures {
		if _, err := f.Wait(ctx); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return fmt.Errorf("%s: %w", op, ctxErr)
			}
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s: %w", op, errors.Join(errs...))
	}
	return nil
}
