package dbx

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSON stores a value of type T as a JSON text column.
// A NULL or empty column scans into the zero value of T.
type JSON[T any] struct {
	V T
}

// Value implements driver.Valuer.
func (j JSON[T]) Value() (driver.Value, error) {
	b, err := json.Marshal(j.V)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (j *JSON[T]) Scan(src any) error {
	var zero T
	switch v := src.(type) {
	case nil:
		j.V = zero
		return nil
	case string:
		return j.unmarshal([]byte(v))
	case []byte:
		return j.unmarshal(v)
	default:
		return fmt.Errorf("dbx.JSON: unsupported source type %T", src)
	}
}

func (j *JSON[T]) unmarshal(b []byte) error {
	var zero T
	if len(b) == 0 {
		j.V = zero
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("dbx.JSON: %w", err)
	}
	j.V = v
	return nil
}
