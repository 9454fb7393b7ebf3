// Package matching ties the embedding generator and the item store together:
// reports are embedded and persisted, free-text queries are matched against
// stored reports, and the ownership rule for archiving lives here and nowhere
// else.
package matching

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/whereismy/whereismy/internal/embedding"
	"github.com/whereismy/whereismy/internal/model"
	"github.com/whereismy/whereismy/internal/store"
)

// DefaultMatchLimit is used when a caller does not ask for a specific number
// of matches.
const DefaultMatchLimit = 5

// Service implements the lost-and-found workflows on top of the store and an
// embedder. All adapters (bot, API, web panel) go through it.
type Service struct {
	db       *sql.DB
	embedder embedding.Embedder
}

// NewService creates a matching service.
func NewService(db *sql.DB, embedder embedding.Embedder) *Service {
	return &Service{db: db, embedder: embedder}
}

// Report carries the fields of a new lost or found report.
type Report struct {
	AuthorID      int64  `json:"author_id"`
	CategoryID    int64  `json:"category_id"`
	LocationID    *int64 `json:"location_id,omitempty"`
	Type          string `json:"type"`
	Description   string `json:"description"`
	PhotoID       string `json:"photo_id,omitempty"`
	SpecificPlace string `json:"specific_place,omitempty"`
	ContactMethod string `json:"contact_method"`
	ContactInfo   string `json:"contact_info,omitempty"`
}

// ReportItem validates a report, embeds its description and persists it in a
// single insert. Nothing is stored if embedding fails.
func (s *Service) ReportItem(ctx context.Context, r Report) (*model.Item, error) {
	if err := model.ValidateItemType(r.Type); err != nil {
		return nil, err
	}
	if err := model.ValidateContactMethod(r.ContactMethod); err != nil {
		return nil, err
	}
	if strings.TrimSpace(r.Description) == "" {
		return nil, fmt.Errorf("%w: description must not be empty", model.ErrValidation)
	}

	author, err := store.GetUser(ctx, s.db, r.AuthorID)
	if err != nil {
		return nil, err
	}
	if author == nil {
		return nil, fmt.Errorf("%w: user %d", model.ErrNotFound, r.AuthorID)
	}
	category, err := store.GetCategory(ctx, s.db, r.CategoryID)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, fmt.Errorf("%w: category %d", model.ErrNotFound, r.CategoryID)
	}
	if r.LocationID != nil {
		location, err := store.GetLocation(ctx, s.db, *r.LocationID)
		if err != nil {
			return nil, err
		}
		if location == nil {
			return nil, fmt.Errorf("%w: location %d", model.ErrNotFound, *r.LocationID)
		}
	}

	v, err := s.embedder.Embed(ctx, r.Description)
	if err != nil {
		return nil, err
	}

	item, err := store.CreateItem(ctx, s.db, store.NewItem{
		AuthorID:      r.AuthorID,
		CategoryID:    r.CategoryID,
		LocationID:    r.LocationID,
		Type:          r.Type,
		Description:   r.Description,
		PhotoID:       r.PhotoID,
		SpecificPlace: r.SpecificPlace,
		ContactMethod: r.ContactMethod,
		ContactInfo:   r.ContactInfo,
		Vector:        v,
	})
	if err != nil {
		return nil, err
	}

	slog.Info("item reported", "id", item.ID, "type", item.Type, "author", item.AuthorID)
	return item, nil
}

// FindMatches embeds a free-text query and returns up to limit active items
// ordered by ascending cosine distance. typeFilter restricts the candidate set
// to "lost" or "found"; the empty string searches both. A limit below 1 falls
// back to DefaultMatchLimit.
func (s *Service) FindMatches(ctx context.Context, query string, limit int, typeFilter string) ([]model.Match, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query must not be empty", model.ErrValidation)
	}
	if typeFilter != "" {
		if err := model.ValidateItemType(typeFilter); err != nil {
			return nil, err
		}
	}
	if limit < 1 {
		limit = DefaultMatchLimit
	}

	v, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	return store.FindSimilar(ctx, s.db, v, limit, store.SimilarFilter{
		Type:       typeFilter,
		ActiveOnly: true,
	})
}

// MatchesForItem returns active counterpart reports closest to an already
// stored item: found candidates for a lost report and vice versa. The item
// itself can never appear since the counterpart type differs.
func (s *Service) MatchesForItem(ctx context.Context, item *model.Item, limit int) ([]model.Match, error) {
	if item.Vector == nil {
		return nil, nil
	}
	if limit < 1 {
		limit = DefaultMatchLimit
	}
	return store.FindSimilar(ctx, s.db, item.Vector, limit, store.SimilarFilter{
		Type:       model.OppositeType(item.Type),
		ActiveOnly: true,
	})
}

// ArchiveItem archives an item on behalf of requestingUserID. Only the author
// may archive through this path; a missing item and a foreign item both report
// false, so callers cannot distinguish the two. Archiving an already archived
// own item reports true (idempotent).
func (s *Service) ArchiveItem(ctx context.Context, id, requestingUserID int64) (bool, error) {
	item, err := store.GetItem(ctx, s.db, id)
	if err != nil {
		return false, err
	}
	if item == nil || item.AuthorID != requestingUserID {
		return false, nil
	}
	if item.Status == model.ItemStatusArchived {
		return true, nil
	}

	archived, err := store.ArchiveItem(ctx, s.db, id)
	if err != nil {
		return false, err
	}
	if archived {
		slog.Info("item archived", "id", id, "author", requestingUserID)
	}
	return archived, nil
}

// UpdateItem applies a moderation edit. When the description changes the item
// is re-embedded so matching stays consistent with the visible text.
func (s *Service) UpdateItem(ctx context.Context, id int64, u model.ItemUpdate) (*model.Item, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}
	if u.Description != nil && strings.TrimSpace(*u.Description) == "" {
		return nil, fmt.Errorf("%w: description must not be empty", model.ErrValidation)
	}

	var v []float32
	if u.Description != nil {
		var err error
		v, err = s.embedder.Embed(ctx, *u.Description)
		if err != nil {
			return nil, err
		}
	}

	if err := store.UpdateItem(ctx, s.db, id, u); err != nil {
		return nil, err
	}
	if v != nil {
		if err := store.UpdateItemVector(ctx, s.db, id, v); err != nil {
			return nil, err
		}
	}

	return store.GetItem(ctx, s.db, id)
}
