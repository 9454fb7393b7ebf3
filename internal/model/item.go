package model

import (
	"fmt"
	"time"
)

// Item represents a lost or found report.
type Item struct {
	ID            int64      `json:"id"`
	AuthorID      int64      `json:"author_id"`
	CategoryID    int64      `json:"category_id"`
	LocationID    *int64     `json:"location_id,omitempty"`
	Type          string     `json:"type"`
	Status        string     `json:"status"`
	Description   string     `json:"description,omitempty"`
	PhotoID       string     `json:"photo_id,omitempty"`
	PhotoMime     string     `json:"photo_mime,omitempty"`
	SpecificPlace string     `json:"specific_place,omitempty"`
	ContactMethod string     `json:"contact_method"`
	ContactInfo   string     `json:"contact_info,omitempty"`
	Vector        []float32  `json:"-"`
	CreatedAt     time.Time  `json:"created_at"`
	ArchivedAt    *time.Time `json:"archived_at,omitempty"`

	// Joined fields (not always populated).
	CategoryName string `json:"category_name,omitempty"`
	LocationName string `json:"location_name,omitempty"`
}

// Item types.
const (
	ItemTypeFound = "found"
	ItemTypeLost  = "lost"
)

// Item statuses.
const (
	ItemStatusActive   = "active"
	ItemStatusArchived = "archived"
)

// Contact methods.
const (
	ContactLeftAt    = "left_at"
	ContactContactMe = "contact_me"
)

// Enum values are persisted as plain strings and validated here, at the
// application boundary, instead of with database-native enum types.

// ValidateItemType checks that t is a known item type.
func ValidateItemType(t string) error {
	if t != ItemTypeFound && t != ItemTypeLost {
		return fmt.Errorf("%w: unknown item type %q", ErrValidation, t)
	}
	return nil
}

// ValidateItemStatus checks that s is a known item status.
func ValidateItemStatus(s string) error {
	if s != ItemStatusActive && s != ItemStatusArchived {
		return fmt.Errorf("%w: unknown item status %q", ErrValidation, s)
	}
	return nil
}

// ValidateContactMethod checks that m is a known contact method.
func ValidateContactMethod(m string) error {
	if m != ContactLeftAt && m != ContactContactMe {
		return fmt.Errorf("%w: unknown contact method %q", ErrValidation, m)
	}
	return nil
}

// OppositeType returns the counterpart report type: matches for a lost query
// are searched among found reports and vice versa.
func OppositeType(t string) string {
	if t == ItemTypeLost {
		return ItemTypeFound
	}
	return ItemTypeLost
}

// ItemUpdate names exactly the fields a moderation edit changes. Nil fields
// are left untouched.
type ItemUpdate struct {
	Description   *string `json:"description,omitempty"`
	CategoryID    *int64  `json:"category_id,omitempty"`
	LocationID    *int64  `json:"location_id,omitempty"`
	SpecificPlace *string `json:"specific_place,omitempty"`
	ContactMethod *string `json:"contact_method,omitempty"`
	ContactInfo   *string `json:"contact_info,omitempty"`
	Status        *string `json:"status,omitempty"`
}

// Empty reports whether the update changes nothing.
func (u ItemUpdate) Empty() bool {
	return u.Description == nil && u.CategoryID == nil && u.LocationID == nil &&
		u.SpecificPlace == nil && u.ContactMethod == nil && u.ContactInfo == nil &&
		u.Status == nil
}

// Validate checks the enum fields an update touches.
func (u ItemUpdate) Validate() error {
	if u.ContactMethod != nil {
		if err := ValidateContactMethod(*u.ContactMethod); err != nil {
			return err
		}
	}
	if u.Status != nil {
		if err := ValidateItemStatus(*u.Status); err != nil {
			return err
		}
	}
	return nil
}

// Match is an item ranked by cosine distance to a query vector.
type Match struct {
	Item     Item    `json:"item"`
	Distance float64 `json:"distance"`
}
