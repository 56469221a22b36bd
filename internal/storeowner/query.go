package storeowner

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/plotboard/internal/rpc"
)

// query runs one statement and collects every result row. Statements that
// return no rows (INSERT, UPDATE, DDL) yield an empty, non-nil slice.
func query(ctx context.Context, db *sql.DB, statement string, params []rpc.Value) ([]rpc.Row, error) {
	args := make([]any, len(params))
	for i, p := range params {
		args[i] = rpc.DriverValue(p)
	}

	rows, err := db.QueryContext(ctx, statement, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	out := make([]rpc.Row, 0)
	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for rows.Next() {
		for i := range vals {
			vals[i] = nil
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		row := make(rpc.Row, len(cols))
		for i, col := range cols {
			v, err := rpc.FromDriver(vals[i])
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", col, err)
			}
			row[col] = v
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
