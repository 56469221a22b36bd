package storeowner

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
)

// exportImage returns a self-contained SQLite image of db. The image is
// written with VACUUM INTO to a scratch directory and read back.
func exportImage(ctx context.Context, db *sql.DB) ([]byte, error) {
	dir, err := os.MkdirTemp("", "plotboard-export-*")
	if err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(dir)

	target := filepath.Join(dir, "snapshot.sqlite3")
	if _, err := db.ExecContext(ctx, "VACUUM INTO ?", target); err != nil {
		return nil, fmt.Errorf("vacuum into: %w", err)
	}

	img, err := os.ReadFile(target)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return img, nil
}
