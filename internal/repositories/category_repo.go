package repositories

import (
	"context"
	"errors"
	"fmt"

	"estoquehub/internal/common"
	"estoquehub/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	Update(ctx context.Context, category *models.Category) error
	Deactivate(ctx context.Context, id uuid.UUID) error
	// List returns categories with their active item counts.
	List(ctx context.Context, limit, offset int) ([]*models.Category, error)
}

type categoryRepo struct {
	db Database
}

func NewCategoryRepo(db Database) CategoryRepository {
	return &categoryRepo{db: db}
}

func (r *categoryRepo) Create(ctx context.Context, category *models.Category) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO categories (id, name, active, created_at)
		VALUES ($1, $2, true, NOW())
	`, category.ID, category.Name)
	return err
}

func (r *categoryRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	category := &models.Category{}
	err := r.db.QueryRow(ctx, `
		SELECT id, name, active, created_at FROM categories WHERE id = $1
	`, id).Scan(&category.ID, &category.Name, &category.Active, &category.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("category %s: %w", id.String(), common.ErrNotFound)
		}
		return nil, err
	}
	return category, nil
}

func (r *categoryRepo) Update(ctx context.Context, category *models.Category) error {
	_, err := r.db.Exec(ctx, `
		UPDATE categories SET name = $1, active = $2 WHERE id = $3
	`, category.Name, category.Active, category.ID)
	return err
}

func (r *categoryRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `UPDATE categories SET active = false WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("category %s: %w", id.String(), common.ErrNotFound)
	}
	return nil
}

func (r *categoryRepo) List(ctx context.Context, limit, offset int) ([]*models.Category, error) {
	rows, err := r.db.Query(ctx, `
		SELECT c.id, c.name, c.active, c.created_at,
		       COUNT(i.id) FILTER (WHERE i.active = true)
		FROM categories c
		LEFT JOIN items i ON i.category_id = c.id
		GROUP BY c.id, c.name, c.active, c.created_at
		ORDER BY c.name ASC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*models.Category
	for rows.Next() {
		c := &models.Category{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Active, &c.CreatedAt, &c.ItemCount); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}
