package db

import (
	"database/sql"
	"database/sql/driver"
	"fmt"

	"modernc.org/sqlite"

	"github.com/whereismy/whereismy/internal/vector"
)

func init() {
	// Expose cosine distance to SQL so nearest-neighbor queries can rank with
	// ORDER BY vec_cosine_distance(vector, ?), the way pgvector's <=> works.
	// Deterministic registration lets SQLite cache and reuse results.
	sqlite.MustRegisterDeterministicScalarFunction("vec_cosine_distance", 2,
		func(ctx *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
			a, aok := args[0].([]byte)
			b, bok := args[1].([]byte)
			if !aok || !bok {
				// NULL operand: no defined distance.
				return nil, nil
			}
			va, err := vector.Decode(a)
			if err != nil {
				return nil, fmt.Errorf("left operand: %w", err)
			}
			vb, err := vector.Decode(b)
			if err != nil {
				return nil, fmt.Errorf("right operand: %w", err)
			}
			return vector.CosineDistance(va, vb), nil
		})
}

// Open opens a SQLite database connection and configures pragmas.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Set pragmas for performance and correctness. Foreign keys must be on so
	// that deleting a referenced category or location is rejected.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA synchronous=NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", p, err)
		}
	}

	return db, nil
}
