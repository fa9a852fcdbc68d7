package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/xid"

	"github.com/levkina/flashdeck/internal/apperror"
	"github.com/levkina/flashdeck/internal/model"
	"github.com/levkina/flashdeck/internal/repository"
)

// CategoryRepo implements repository.CategoryRepository on the shared
// connection pool.
type CategoryRepo struct {
	conn *sql.DB
}

// NewCategoryRepo creates a CategoryRepo backed by db.
func NewCategoryRepo(db *DB) *CategoryRepo {
	return &CategoryRepo{conn: db.conn}
}

// compile-time check that *CategoryRepo implements repository.CategoryRepository
var _ repository.CategoryRepository = (*CategoryRepo)(nil)

// Create inserts a new category and fills in its generated ID.
func (db *CategoryRepo) Create(ctx context.Context, category *model.Category) error {
	category.ID = xid.New().String()
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO categories (id, name) VALUES (?, ?)`,
		category.ID, category.Name,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating category: %w", err)
	}
	return nil
}

// GetByID retrieves a category by ID.
func (db *CategoryRepo) GetByID(ctx context.Context, id string) (*model.Category, error) {
	var c model.Category
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, name FROM categories WHERE id = ?`, id,
	).Scan(&c.ID, &c.Name)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("category", id)
		}
		return nil, fmt.Errorf("sqlite: getting category %s: %w", id, err)
	}
	return &c, nil
}

// List returns all categories ordered by name, for the card
// form's select and the catalog sidebar.
func (db *CategoryRepo) List(ctx context.Context) ([]model.Category, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, name FROM categories ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("sqlite: scanning category row: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating categories: %w", err)
	}
	return categories, nil
}
