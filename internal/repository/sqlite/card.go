package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/levkina/flashdeck/internal/apperror"
	"github.com/levkina/flashdeck/internal/model"
	"github.com/levkina/flashdeck/internal/repository"
)

// CardRepo implements repository.CardRepository on the shared
// connection pool.
type CardRepo struct {
	conn *sql.DB
}

// NewCardRepo creates a CardRepo backed by db.
func NewCardRepo(db *DB) *CardRepo {
	return &CardRepo{conn: db.conn}
}

// compile-time check that *CardRepo implements repository.CardRepository
var _ repository.CardRepository = (*CardRepo)(nil)

const cardColumns = `c.id, c.question, c.answer, c.category_id, c.views, c.adds, c.upload_date, cat.name`

// Create inserts a new card and fills in its generated ID and upload
// date. Tag associations are attached separately (see Attach) because
// they need the ID this call produces.
func (db *CardRepo) Create(ctx context.Context, card *model.Card) error {
	card.ID = xid.New().String()
	card.UploadDate = time.Now()

	var categoryID any
	if card.CategoryID != "" {
		categoryID = card.CategoryID
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO cards (id, question, answer, category_id, views, adds, upload_date)
		 VALUES (?, ?, ?, ?, 0, 0, ?)`,
		card.ID,
		card.Question,
		card.Answer,
		categoryID,
		card.UploadDate,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating card: %w", err)
	}

	return nil
}

// GetByID retrieves a single card with its category and tags.
func (db *CardRepo) GetByID(ctx context.Context, id string) (*model.Card, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+cardColumns+`
		 FROM cards c
		 LEFT JOIN categories cat ON cat.id = c.category_id
		 WHERE c.id = ?`,
		id,
	)

	card, err := scanCard(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("card", id)
		}
		return nil, fmt.Errorf("sqlite: getting card %s: %w", id, err)
	}

	cards := []model.Card{*card}
	if err := db.loadTags(ctx, cards); err != nil {
		return nil, err
	}

	return &cards[0], nil
}

// List retrieves cards for the catalog page, sorted per opts. Tags are
// loaded eagerly in a single extra query so the catalog template can show
// them without per-card round trips.
func (db *CardRepo) List(ctx context.Context, opts repository.CardListOptions) ([]model.Card, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	query := `SELECT ` + cardColumns + `
		 FROM cards c
		 LEFT JOIN categories cat ON cat.id = c.category_id
		 ORDER BY ` + orderClause(opts.SortBy, opts.Order) + `
		 LIMIT ? OFFSET ?`

	rows, err := db.conn.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing cards: %w", err)
	}
	return db.collectCards(ctx, rows)
}

// ListByTag retrieves the cards carrying the given tag, newest first.
func (db *CardRepo) ListByTag(ctx context.Context, tagID string) ([]model.Card, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+cardColumns+`
		 FROM cards c
		 JOIN card_tags ct ON ct.card_id = c.id
		 LEFT JOIN categories cat ON cat.id = c.category_id
		 WHERE ct.tag_id = ?
		 ORDER BY c.upload_date DESC`,
		tagID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing cards by tag %s: %w", tagID, err)
	}
	return db.collectCards(ctx, rows)
}

// ListByCategory retrieves the cards in the given category, newest first.
func (db *CardRepo) ListByCategory(ctx context.Context, categoryID string) ([]model.Card, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+cardColumns+`
		 FROM cards c
		 LEFT JOIN categories cat ON cat.id = c.category_id
		 WHERE c.category_id = ?
		 ORDER BY c.upload_date DESC`,
		categoryID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing cards by category %s: %w", categoryID, err)
	}
	return db.collectCards(ctx, rows)
}

// IncrementViews bumps the view counter and returns the new value.
//
// A single UPDATE keeps this atomic at the statement level; the counter
// is display-only either way.
func (db *CardRepo) IncrementViews(ctx context.Context, id string) (int64, error) {
	return db.incrementCounter(ctx, "views", id)
}

// IncrementAdds bumps the adds counter and returns the new value.
func (db *CardRepo) IncrementAdds(ctx context.Context, id string) (int64, error) {
	return db.incrementCounter(ctx, "adds", id)
}

// incrementCounter updates one of the two counter columns. column is
// always a compile-time constant here, never user input.
func (db *CardRepo) incrementCounter(ctx context.Context, column, id string) (int64, error) {
	result, err := db.conn.ExecContext(ctx,
		fmt.Sprintf(`UPDATE cards SET %s = %s + 1 WHERE id = ?`, column, column),
		id,
	)
	if err != nil {
		return 0, fmt.Errorf("sqlite: incrementing %s for card %s: %w", column, id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return 0, apperror.NotFound("card", id)
	}

	var value int64
	err = db.conn.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT %s FROM cards WHERE id = ?`, column), id,
	).Scan(&value)
	if err != nil {
		return 0, fmt.Errorf("sqlite: reading %s for card %s: %w", column, id, err)
	}

	return value, nil
}

// orderClause builds the ORDER BY expression from a whitelist. Unknown
// values fall back to the defaults so the clause never carries user input.
func orderClause(sortBy repository.SortField, order repository.Order) string {
	column := "c.upload_date"
	switch sortBy {
	case repository.SortByViews:
		column = "c.views"
	case repository.SortByAdds:
		column = "c.adds"
	case repository.SortByUploadDate:
		column = "c.upload_date"
	}

	direction := "DESC"
	if order == repository.OrderAsc {
		direction = "ASC"
	}

	return column + " " + direction
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanCard(s scanner) (*model.Card, error) {
	var (
		card         model.Card
		categoryID   sql.NullString
		categoryName sql.NullString
	)
	err := s.Scan(
		&card.ID,
		&card.Question,
		&card.Answer,
		&categoryID,
		&card.Views,
		&card.Adds,
		&card.UploadDate,
		&categoryName,
	)
	if err != nil {
		return nil, err
	}

	if categoryID.Valid {
		card.CategoryID = categoryID.String
		card.Category = &model.Category{ID: categoryID.String, Name: categoryName.String}
	}

	return &card, nil
}

// collectCards drains rows into a slice and batch-loads tags for the
// whole result set.
func (db *CardRepo) collectCards(ctx context.Context, rows *sql.Rows) ([]model.Card, error) {
	defer rows.Close()

	var cards []model.Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning card row: %w", err)
		}
		cards = append(cards, *card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating cards: %w", err)
	}

	if err := db.loadTags(ctx, cards); err != nil {
		return nil, err
	}

	return cards, nil
}

// loadTags fetches the tags for every card in one query and distributes
// them onto the slice elements.
func (db *CardRepo) loadTags(ctx context.Context, cards []model.Card) error {
	if len(cards) == 0 {
		return nil
	}

	placeholders := make([]string, len(cards))
	args := make([]any, len(cards))
	index := make(map[string]int, len(cards))
	for i := range cards {
		placeholders[i] = "?"
		args[i] = cards[i].ID
		index[cards[i].ID] = i
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT ct.card_id, t.id, t.name
		 FROM card_tags ct
		 JOIN tags t ON t.id = ct.tag_id
		 WHERE ct.card_id IN (`+strings.Join(placeholders, ",")+`)
		 ORDER BY t.name`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("sqlite: loading card tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cardID string
			tag    model.Tag
		)
		if err := rows.Scan(&cardID, &tag.ID, &tag.Name); err != nil {
			return fmt.Errorf("sqlite: scanning card tag row: %w", err)
		}
		if i, ok := index[cardID]; ok {
			cards[i].Tags = append(cards[i].Tags, tag)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("sqlite: iterating card tags: %w", err)
	}

	return nil
}
