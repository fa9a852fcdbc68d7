package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/xid"

	"github.com/levkina/flashdeck/internal/model"
	"github.com/levkina/flashdeck/internal/repository"
)

// TagRepo implements repository.TagRepository on the shared connection
// pool.
type TagRepo struct {
	conn *sql.DB
}

// NewTagRepo creates a TagRepo backed by db.
func NewTagRepo(db *DB) *TagRepo {
	return &TagRepo{conn: db.conn}
}

// compile-time check that *TagRepo implements repository.TagRepository
var _ repository.TagRepository = (*TagRepo)(nil)

// GetOrCreateByName returns the tag with the given name, creating it on
// first use. Callers pass names already normalized to lowercase; the
// UNIQUE constraint on tags.name backs up the lookup-or-create contract,
// so a name maps to at most one record.
func (db *TagRepo) GetOrCreateByName(ctx context.Context, name string) (*model.Tag, error) {
	tag := model.Tag{Name: name}

	err := db.conn.QueryRowContext(ctx,
		`SELECT id FROM tags WHERE name = ?`, name,
	).Scan(&tag.ID)
	if err == nil {
		return &tag, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sqlite: looking up tag %q: %w", name, err)
	}

	tag.ID = xid.New().String()
	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO tags (id, name) VALUES (?, ?)`,
		tag.ID, tag.Name,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: creating tag %q: %w", name, err)
	}

	return &tag, nil
}

// Attach links a tag to a card. INSERT OR IGNORE makes repeated
// attachments of the same pair a no-op, which is what keeps duplicate
// names in one submission from producing duplicate associations.
func (db *TagRepo) Attach(ctx context.Context, cardID, tagID string) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT OR IGNORE INTO card_tags (card_id, tag_id) VALUES (?, ?)`,
		cardID, tagID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: attaching tag %s to card %s: %w", tagID, cardID, err)
	}
	return nil
}

// ListByCard returns a card's tags ordered by name.
func (db *TagRepo) ListByCard(ctx context.Context, cardID string) ([]model.Tag, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT t.id, t.name
		 FROM tags t
		 JOIN card_tags ct ON ct.tag_id = t.id
		 WHERE ct.card_id = ?
		 ORDER BY t.name`,
		cardID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing tags for card %s: %w", cardID, err)
	}
	defer rows.Close()

	return scanTags(rows)
}

// List returns all tags ordered by name, for the catalog sidebar.
func (db *TagRepo) List(ctx context.Context) ([]model.Tag, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, name FROM tags ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing tags: %w", err)
	}
	defer rows.Close()

	return scanTags(rows)
}

func scanTags(rows *sql.Rows) ([]model.Tag, error) {
	var tags []model.Tag
	for rows.Next() {
		var t model.Tag
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("sqlite: scanning tag row: %w", err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating tags: %w", err)
	}
	return tags, nil
}
