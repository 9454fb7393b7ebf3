package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/whereismy/whereismy/internal/model"
	"github.com/whereismy/whereismy/internal/vector"
)

const itemColumns = `i.id, i.author_id, i.category_id, i.location_id, i.type, i.status,
	i.description, i.photo_id, i.photo_mime, i.specific_place, i.contact_method,
	i.contact_info, i.vector, i.created_at, i.archived_at,
	c.name AS category_name, COALESCE(l.name, '') AS location_name`

const itemJoins = `FROM items i
	JOIN categories c ON c.id = i.category_id
	LEFT JOIN locations l ON l.id = i.location_id`

// NewItem carries the fields for item creation.
type NewItem struct {
	AuthorID      int64
	CategoryID    int64
	LocationID    *int64
	Type          string
	Description   string
	PhotoID       string
	SpecificPlace string
	ContactMethod string
	ContactInfo   string
	Vector        []float32
}

// CreateItem inserts a new item in a single statement, so a row is never
// observable without its vector. The creation timestamp is server-assigned UTC.
func CreateItem(ctx context.Context, db *sql.DB, n NewItem) (*model.Item, error) {
	var blob []byte
	if n.Vector != nil {
		var err error
		blob, err = vector.Encode(n.Vector)
		if err != nil {
			return nil, err
		}
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO items (author_id, category_id, location_id, type, description,
		                    photo_id, specific_place, contact_method, contact_info, vector)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		n.AuthorID, n.CategoryID, n.LocationID, n.Type, nullString(n.Description),
		nullString(n.PhotoID), nullString(n.SpecificPlace), n.ContactMethod,
		nullString(n.ContactInfo), blob,
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	return GetItem(ctx, db, id)
}

// GetItem returns an item by ID, including its vector.
func GetItem(ctx context.Context, db *sql.DB, id int64) (*model.Item, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` `+itemJoins+` WHERE i.id = ?`, id)

	item, err := scanItem(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// ItemFilter narrows item listings. Zero values mean no filtering.
type ItemFilter struct {
	Status   string
	Type     string
	AuthorID int64
}

// ListItems returns items matching the filter, newest first.
func ListItems(ctx context.Context, db *sql.DB, f ItemFilter) ([]model.Item, error) {
	where, args := []string{"1 = 1"}, []any{}
	if f.Status != "" {
		where, args = append(where, "i.status = ?"), append(args, f.Status)
	}
	if f.Type != "" {
		where, args = append(where, "i.type = ?"), append(args, f.Type)
	}
	if f.AuthorID != 0 {
		where, args = append(where, "i.author_id = ?"), append(args, f.AuthorID)
	}

	rows, err := db.QueryContext(ctx,
		`SELECT `+itemColumns+` `+itemJoins+`
		 WHERE `+strings.Join(where, " AND ")+`
		 ORDER BY i.created_at DESC, i.id DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// SimilarFilter narrows the candidate set of a nearest-neighbor query.
type SimilarFilter struct {
	Type       string
	ActiveOnly bool
}

// FindSimilar returns up to limit items ordered by ascending cosine distance
// from queryVector. Items without a vector are excluded; ties are broken by
// ascending id, so results are deterministic for a fixed store state. An empty
// candidate set yields an empty result, not an error.
func FindSimilar(ctx context.Context, db *sql.DB, queryVector []float32, limit int, f SimilarFilter) ([]model.Match, error) {
	if limit < 1 {
		return nil, fmt.Errorf("%w: limit must be >= 1, got %d", model.ErrValidation, limit)
	}
	blob, err := vector.Encode(queryVector)
	if err != nil {
		return nil, err
	}

	where, args := []string{"i.vector IS NOT NULL"}, []any{blob}
	if f.Type != "" {
		where, args = append(where, "i.type = ?"), append(args, f.Type)
	}
	if f.ActiveOnly {
		where, args = append(where, "i.status = ?"), append(args, model.ItemStatusActive)
	}
	args = append(args, blob, limit)

	rows, err := db.QueryContext(ctx,
		`SELECT `+itemColumns+`, vec_cosine_distance(i.vector, ?) AS distance
		 `+itemJoins+`
		 WHERE `+strings.Join(where, " AND ")+`
		 ORDER BY vec_cosine_distance(i.vector, ?) ASC, i.id ASC
		 LIMIT ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("finding similar items: %w", err)
	}
	defer rows.Close()

	var matches []model.Match
	for rows.Next() {
		var m model.Match
		item, err := scanItemWith(rows.Scan, &m.Distance)
		if err != nil {
			return nil, fmt.Errorf("scanning match: %w", err)
		}
		m.Item = *item
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// ArchiveItem transitions an ACTIVE item to ARCHIVED and stamps archived_at.
// Returns false without error if the item is already archived or missing.
func ArchiveItem(ctx context.Context, db *sql.DB, id int64) (bool, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE items SET status = ?, archived_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND status = ?`,
		model.ItemStatusArchived, id, model.ItemStatusActive,
	)
	if err != nil {
		return false, fmt.Errorf("archiving item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("archiving item: %w", err)
	}
	return n > 0, nil
}

// UpdateItem applies a partial moderation edit. Only non-nil fields change;
// archiving via a status update stamps archived_at like ArchiveItem does.
func UpdateItem(ctx context.Context, db *sql.DB, id int64, u model.ItemUpdate) error {
	if u.Empty() {
		return nil
	}

	set, args := []string{}, []any{}
	if u.Description != nil {
		set, args = append(set, "description = ?"), append(args, nullString(*u.Description))
	}
	if u.CategoryID != nil {
		set, args = append(set, "category_id = ?"), append(args, *u.CategoryID)
	}
	if u.LocationID != nil {
		if *u.LocationID == 0 {
			set = append(set, "location_id = NULL")
		} else {
			set, args = append(set, "location_id = ?"), append(args, *u.LocationID)
		}
	}
	if u.SpecificPlace != nil {
		set, args = append(set, "specific_place = ?"), append(args, nullString(*u.SpecificPlace))
	}
	if u.ContactMethod != nil {
		set, args = append(set, "contact_method = ?"), append(args, *u.ContactMethod)
	}
	if u.ContactInfo != nil {
		set, args = append(set, "contact_info = ?"), append(args, nullString(*u.ContactInfo))
	}
	if u.Status != nil {
		set, args = append(set, "status = ?"), append(args, *u.Status)
		if *u.Status == model.ItemStatusArchived {
			set = append(set, "archived_at = COALESCE(archived_at, CURRENT_TIMESTAMP)")
		}
	}
	args = append(args, id)

	result, err := db.ExecContext(ctx,
		`UPDATE items SET `+strings.Join(set, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("updating item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating item: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: item %d", model.ErrNotFound, id)
	}
	return nil
}

// UpdateItemVector replaces an item's embedding after a moderation edit of
// its description.
func UpdateItemVector(ctx context.Context, db *sql.DB, id int64, v []float32) error {
	blob, err := vector.Encode(v)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `UPDATE items SET vector = ? WHERE id = ?`, blob, id)
	if err != nil {
		return fmt.Errorf("updating item vector: %w", err)
	}
	return nil
}

// DeleteItem hard-deletes an item. Moderator-only; regular users archive.
func DeleteItem(ctx context.Context, db *sql.DB, id int64) error {
	_, err := db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	return nil
}

// SetItemPhoto stores processed photo bytes for an item.
func SetItemPhoto(ctx context.Context, db *sql.DB, id int64, photo []byte, mime string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE items SET photo = ?, photo_mime = ? WHERE id = ?`, photo, mime, id)
	if err != nil {
		return fmt.Errorf("setting item photo: %w", err)
	}
	return nil
}

// GetItemPhoto returns an item's stored photo bytes and MIME type.
func GetItemPhoto(ctx context.Context, db *sql.DB, id int64) ([]byte, string, error) {
	var photo []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT photo, photo_mime FROM items WHERE id = ?`, id,
	).Scan(&photo, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting item photo: %w", err)
	}
	return photo, mime.String, nil
}

// CountItems returns item counts grouped by status.
func CountItems(ctx context.Context, db *sql.DB) (active, archived int, err error) {
	rows, err := db.QueryContext(ctx, `SELECT status, COUNT(*) FROM items GROUP BY status`)
	if err != nil {
		return 0, 0, fmt.Errorf("counting items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return 0, 0, fmt.Errorf("counting items: %w", err)
		}
		switch status {
		case model.ItemStatusActive:
			active = n
		case model.ItemStatusArchived:
			archived = n
		}
	}
	return active, archived, rows.Err()
}

// scanItem scans the itemColumns column set.
func scanItem(scan func(...any) error) (*model.Item, error) {
	return scanItemWith(scan)
}

// scanItemWith scans the itemColumns column set plus any trailing columns.
func scanItemWith(scan func(...any) error, extra ...any) (*model.Item, error) {
	item := &model.Item{}
	var locationID sql.NullInt64
	var description, photoID, photoMime, place, contactInfo sql.NullString
	var blob []byte
	var archivedAt sql.NullTime

	dest := []any{
		&item.ID, &item.AuthorID, &item.CategoryID, &locationID, &item.Type,
		&item.Status, &description, &photoID, &photoMime, &place,
		&item.ContactMethod, &contactInfo, &blob, &item.CreatedAt, &archivedAt,
		&item.CategoryName, &item.LocationName,
	}
	dest = append(dest, extra...)

	if err := scan(dest...); err != nil {
		return nil, err
	}

	if locationID.Valid {
		item.LocationID = &locationID.Int64
	}
	item.Description = description.String
	item.PhotoID = photoID.String
	item.PhotoMime = photoMime.String
	item.SpecificPlace = place.String
	item.ContactInfo = contactInfo.String
	if archivedAt.Valid {
		item.ArchivedAt = &archivedAt.Time
	}
	if blob != nil {
		v, err := vector.Decode(blob)
		if err != nil {
			return nil, err
		}
		item.Vector = v
	}
	return item, nil
}

// nullString maps "" to NULL so optional text columns stay NULL.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
