// Package testutil starts real Store Owners for tests in other packages.
package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/plotboard/internal/rpc"
	"github.com/roach88/plotboard/internal/storeowner"
)

// Context returns a context cancelled after 10s or at test cleanup.
func Context(t testing.TB) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// Store is a ready proxy over a Store Owner on a temporary database.
type Store struct {
	Proxy *rpc.Proxy
	Path  string
	owner *storeowner.Owner
}

// OpenStore starts a Store Owner on a fresh database file and initializes a
// proxy for it. Both are stopped at test cleanup.
func OpenStore(t testing.TB, opts ...rpc.Option) *Store {
	t.Helper()

	s := &Store{Path: filepath.Join(t.TempDir(), "board.db")}
	spawn := func() (rpc.Conn, error) {
		o, err := storeowner.Start(s.Path)
		if err != nil {
			return nil, err
		}
		s.owner = o
		return o, nil
	}

	s.Proxy = rpc.NewProxy(spawn, opts...)
	require.NoError(t, s.Proxy.Initialize(Context(t)))
	t.Cleanup(s.Close)
	return s
}

// Close stops the proxy and waits for the Store Owner to release the file.
// Safe to call more than once.
func (s *Store) Close() {
	_ = s.Proxy.Close()
	if s.owner != nil {
		s.owner.Wait()
	}
}
