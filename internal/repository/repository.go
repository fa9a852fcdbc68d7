// Package repository defines the narrow persistence interfaces the
// service layer depends on. The sqlite subpackage is the only
// implementation; tests substitute in-memory mocks.
package repository

import (
	"context"

	"github.com/levkina/flashdeck/internal/model"
)

// SortField selects the catalog sort column.
type SortField string

const (
	SortByUploadDate SortField = "upload_date"
	SortByViews      SortField = "views"
	SortByAdds       SortField = "adds"
)

// Order selects the catalog sort direction.
type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// CardListOptions controls catalog queries. Zero values mean the
// defaults: sort by upload date, descending, no offset, default limit.
type CardListOptions struct {
	SortBy SortField
	Order  Order
	Limit  int
	Offset int
}

// CardRepository persists cards and their counters.
//
// Create fills in the card's ID and upload date; the ID is immutable
// afterwards and is required before tag associations can be attached.
// IncrementViews and IncrementAdds bump the respective display counter
// and return the new value.
type CardRepository interface {
	Create(ctx context.Context, card *model.Card) error
	GetByID(ctx context.Context, id string) (*model.Card, error)
	List(ctx context.Context, opts CardListOptions) ([]model.Card, error)
	ListByTag(ctx context.Context, tagID string) ([]model.Card, error)
	ListByCategory(ctx context.Context, categoryID string) ([]model.Card, error)
	IncrementViews(ctx context.Context, id string) (int64, error)
	IncrementAdds(ctx context.Context, id string) (int64, error)
}

// TagRepository provides lookup-or-create tag records and the
// card-tag association table.
type TagRepository interface {
	// GetOrCreateByName returns the tag with the given (already
	// normalized) name, creating it on first use.
	GetOrCreateByName(ctx context.Context, name string) (*model.Tag, error)
	// Attach links a tag to a card. Attaching the same pair twice is a
	// no-op.
	Attach(ctx context.Context, cardID, tagID string) error
	ListByCard(ctx context.Context, cardID string) ([]model.Tag, error)
	List(ctx context.Context) ([]model.Tag, error)
}

// CategoryRepository provides the category lookup used by the card form
// and catalog filters.
type CategoryRepository interface {
	Create(ctx context.Context, category *model.Category) error
	GetByID(ctx context.Context, id string) (*model.Category, error)
	List(ctx context.Context) ([]model.Category, error)
}

// UserRepository stores admin accounts.
type UserRepository interface {
	Upsert(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}
