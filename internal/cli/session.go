package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/roach88/plotboard/internal/logging"
	"github.com/roach88/plotboard/internal/repository"
	"github.com/roach88/plotboard/internal/rpc"
	"github.com/roach88/plotboard/internal/storeowner"
)

// session is an open store for one command invocation.
type session struct {
	proxy *rpc.Proxy
	owner *storeowner.Owner
	repo  *repository.Repository
}

// openSession spawns a Store Owner on the configured database and waits
// for it to become ready.
func openSession(ctx context.Context, opts *RootOptions) (*session, error) {
	s := &session{}
	path := opts.Config.Database.Path

	spawn := func() (rpc.Conn, error) {
		o, err := storeowner.Start(path, storeowner.WithLogger(opts.Logger))
		if err != nil {
			return nil, err
		}
		s.owner = o
		return o, nil
	}

	s.proxy = rpc.NewProxy(spawn,
		rpc.WithInitTimeout(opts.Config.Database.InitTimeout),
		rpc.WithLogger(logging.Component(opts.Logger, "proxy")),
	)
	if err := s.proxy.Initialize(ctx); err != nil {
		s.Close()
		return nil, err
	}
	opts.Logger.Debug().Str("db", path).Msg("store opened")

	s.repo = repository.New(s.proxy, repository.WithLogger(logging.Component(opts.Logger, "repository")))
	return s, nil
}

// Close stops the Store Owner and waits for it to release the database.
func (s *session) Close() {
	_ = s.proxy.Close()
	if s.owner != nil {
		s.owner.Wait()
	}
}

// withStore runs fn against an open session and reports any error through
// the command's formatter.
func withStore(cmd *cobra.Command, opts *RootOptions, op string, fn func(context.Context, *session, *OutputFormatter) error) error {
	f := opts.formatter(cmd)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	s, err := openSession(ctx, opts)
	if err != nil {
		return f.Fail("open store", err)
	}
	defer s.Close()

	if err := fn(ctx, s, f); err != nil {
		return f.Fail(op, err)
	}
	return nil
}
