package rpc

import (
	"fmt"
	"time"
)

// Value is a sealed interface over the SQLite storage classes.
// Only Null, Integer, Real, Text and Blob implement it.
type Value interface {
	storageClass() string
}

// Null is SQL NULL.
type Null struct{}

func (Null) storageClass() string { return "null" }

// Integer is a 64-bit signed integer.
type Integer int64

func (Integer) storageClass() string { return "integer" }

// Real is a 64-bit float.
type Real float64

func (Real) storageClass() string { return "real" }

// Text is a UTF-8 string.
type Text string

func (Text) storageClass() string { return "text" }

// Blob is raw bytes.
type Blob []byte

func (Blob) storageClass() string { return "blob" }

// Kind returns the storage class name of v ("null", "integer", ...).
func Kind(v Value) string {
	if v == nil {
		return "null"
	}
	return v.storageClass()
}

// DriverValue converts v into an argument for database/sql.
func DriverValue(v Value) any {
	switch x := v.(type) {
	case nil, Null:
		return nil
	case Integer:
		return int64(x)
	case Real:
		return float64(x)
	case Text:
		return string(x)
	case Blob:
		return []byte(x)
	default:
		panic(fmt.Sprintf("rpc: unknown value type %T", v))
	}
}

// FromDriver converts a value scanned by database/sql into a Value.
// Timestamps are rendered in SQLite's "YYYY-MM-DD HH:MM:SS" form.
func FromDriver(x any) (Value, error) {
	switch v := x.(type) {
	case nil:
		return Null{}, nil
	case int64:
		return Integer(v), nil
	case int:
		return Integer(v), nil
	case float64:
		return Real(v), nil
	case bool:
		if v {
			return Integer(1), nil
		}
		return Integer(0), nil
	case string:
		return Text(v), nil
	case []byte:
		b := make([]byte, len(v))
		copy(b, v)
		return Blob(b), nil
	case time.Time:
		return Text(v.UTC().Format("2006-01-02 15:04:05")), nil
	default:
		return nil, fmt.Errorf("unsupported column type %T", x)
	}
}

// Row is one result row keyed by column name.
type Row map[string]Value

// Text returns the column as a string. NULL and missing columns yield "".
func (r Row) Text(col string) string {
	switch v := r[col].(type) {
	case Text:
		return string(v)
	case Blob:
		return string(v)
	case Integer:
		return fmt.Sprintf("%d", int64(v))
	case Real:
		return fmt.Sprintf("%g", float64(v))
	default:
		return ""
	}
}

// Int returns the column as an int64. NULL and non-numeric values yield 0.
func (r Row) Int(col string) int64 {
	switch v := r[col].(type) {
	case Integer:
		return int64(v)
	case Real:
		return int64(v)
	default:
		return 0
	}
}

// Real returns the column as a float64. NULL and non-numeric values yield 0.
func (r Row) Real(col string) float64 {
	switch v := r[col].(type) {
	case Real:
		return float64(v)
	case Integer:
		return float64(v)
	default:
		return 0
	}
}

// IsNull reports whether the column is NULL or absent.
func (r Row) IsNull(col string) bool {
	switch r[col].(type) {
	case nil, Null:
		return true
	default:
		return false
	}
}
