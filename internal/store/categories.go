package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/whereismy/whereismy/internal/model"
)

// CreateCategory creates a new category.
func CreateCategory(ctx context.Context, db *sql.DB, name string) (*model.Category, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO categories (name) VALUES (?)`, name)
	if err != nil {
		if isConstraintErr(err) {
			return nil, fmt.Errorf("%w: category %q already exists", model.ErrConflict, name)
		}
		return nil, fmt.Errorf("creating category: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting category id: %w", err)
	}
	return GetCategory(ctx, db, id)
}

// GetCategory returns a category by ID.
func GetCategory(ctx context.Context, db *sql.DB, id int64) (*model.Category, error) {
	c := &model.Category{}
	err := db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM categories WHERE id = ?`, id,
	).Scan(&c.ID, &c.Name, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting category: %w", err)
	}
	return c, nil
}

// ListCategories returns all categories ordered by name.
func ListCategories(ctx context.Context, db *sql.DB) ([]model.Category, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, created_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// UpdateCategory renames a category.
func UpdateCategory(ctx context.Context, db *sql.DB, id int64, name string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE categories SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		if isConstraintErr(err) {
			return fmt.Errorf("%w: category %q already exists", model.ErrConflict, name)
		}
		return fmt.Errorf("updating category: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating category: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: category %d", model.ErrNotFound, id)
	}
	return nil
}

// DeleteCategory deletes a category. Fails with a conflict if items still
// reference it (foreign keys are enforced).
func DeleteCategory(ctx context.Context, db *sql.DB, id int64) error {
	_, err := db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		if isConstraintErr(err) {
			return fmt.Errorf("%w: category %d is still referenced by items", model.ErrConflict, id)
		}
		return fmt.Errorf("deleting category: %w", err)
	}
	return nil
}

// isConstraintErr reports whether err is a SQLite constraint violation
// (unique or foreign key). The primary result code is the low byte of the
// extended code.
func isConstraintErr(err error) bool {
	var se *sqlite.Error
	return errors.As(err, &se) && se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
}
