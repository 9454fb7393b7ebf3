package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/whereismy/whereismy/internal/model"
)

// CreateLocation creates a new location.
func CreateLocation(ctx context.Context, db *sql.DB, name, address string) (*model.Location, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO locations (name, address) VALUES (?, ?)`, name, address)
	if err != nil {
		if isConstraintErr(err) {
			return nil, fmt.Errorf("%w: location %q already exists", model.ErrConflict, name)
		}
		return nil, fmt.Errorf("creating location: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting location id: %w", err)
	}
	return GetLocation(ctx, db, id)
}

// GetLocation returns a location by ID.
func GetLocation(ctx context.Context, db *sql.DB, id int64) (*model.Location, error) {
	l := &model.Location{}
	err := db.QueryRowContext(ctx,
		`SELECT id, name, address, created_at FROM locations WHERE id = ?`, id,
	).Scan(&l.ID, &l.Name, &l.Address, &l.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting location: %w", err)
	}
	return l, nil
}

// ListLocations returns all locations ordered by name.
func ListLocations(ctx context.Context, db *sql.DB) ([]model.Location, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, address, created_at FROM locations ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing locations: %w", err)
	}
	defer rows.Close()

	var locations []model.Location
	for rows.Next() {
		var l model.Location
		if err := rows.Scan(&l.ID, &l.Name, &l.Address, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning location: %w", err)
		}
		locations = append(locations, l)
	}
	return locations, rows.Err()
}

// UpdateLocation updates a location's name and address.
func UpdateLocation(ctx context.Context, db *sql.DB, id int64, name, address string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE locations SET name = ?, address = ? WHERE id = ?`, name, address, id)
	if err != nil {
		if isConstraintErr(err) {
			return fmt.Errorf("%w: location %q already exists", model.ErrConflict, name)
		}
		return fmt.Errorf("updating location: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating location: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: location %d", model.ErrNotFound, id)
	}
	return nil
}

// DeleteLocation deletes a location. Fails with a conflict if items still
// reference it.
func DeleteLocation(ctx context.Context, db *sql.DB, id int64) error {
	_, err := db.ExecContext(ctx, `DELETE FROM locations WHERE id = ?`, id)
	if err != nil {
		if isConstraintErr(err) {
			return fmt.Errorf("%w: location %d is still referenced by items", model.ErrConflict, id)
		}
		return fmt.Errorf("deleting location: %w", err)
	}
	return nil
}
