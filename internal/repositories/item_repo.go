package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"estoquehub/internal/common"
	"estoquehub/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ItemRepository interface {
	Create(ctx context.Context, item *models.Item) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error)
	GetByBarcode(ctx context.Context, barcode string) (*models.Item, error)
	Update(ctx context.Context, item *models.Item) error
	// Deactivate soft-deletes: items are never physically removed.
	Deactivate(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, activeOnly bool, limit, offset int) ([]*models.Item, error)
	ListIDsByCategory(ctx context.Context, categoryID uuid.UUID) ([]uuid.UUID, error)
	LowStock(ctx context.Context) ([]*models.Item, error)
	Search(ctx context.Context, filter *models.ItemSearchFilter) ([]*models.Item, error)
	// NextBarcode reserves the next scannable code from the barcode sequence.
	NextBarcode(ctx context.Context) (string, error)
	SetPhotoURL(ctx context.Context, id uuid.UUID, photoURL string) error
}

type itemRepo struct {
	db Database
}

func NewItemRepo(db Database) ItemRepository {
	return &itemRepo{db: db}
}

const itemColumns = `id, name, brand, model, serial_number, quantity, min_quantity, location, barcode, category_id, active, condition, photo_url, created_at, updated_at`

func scanItem(row pgx.Row) (*models.Item, error) {
	item := &models.Item{}
	err := row.Scan(&item.ID, &item.Name, &item.Brand, &item.Model, &item.SerialNumber,
		&item.Quantity, &item.MinQuantity, &item.Location, &item.Barcode, &item.CategoryID,
		&item.Active, &item.Condition, &item.PhotoURL, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *itemRepo) Create(ctx context.Context, item *models.Item) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO items (id, name, brand, model, serial_number, quantity, min_quantity, location, barcode, category_id, active, condition, photo_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, true, $11, $12, NOW(), NOW())
	`, item.ID, item.Name, item.Brand, item.Model, item.SerialNumber, item.Quantity,
		item.MinQuantity, item.Location, item.Barcode, item.CategoryID, item.Condition, item.PhotoURL)
	return err
}

func (r *itemRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	row := r.db.QueryRow(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1`, id)
	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("item %s: %w", id.String(), common.ErrNotFound)
		}
		return nil, err
	}
	return item, nil
}

func (r *itemRepo) GetByBarcode(ctx context.Context, barcode string) (*models.Item, error) {
	row := r.db.QueryRow(ctx, `SELECT `+itemColumns+` FROM items WHERE barcode = $1`, barcode)
	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("barcode %s: %w", barcode, common.ErrNotFound)
		}
		return nil, err
	}
	return item, nil
}

func (r *itemRepo) Update(ctx context.Context, item *models.Item) error {
	_, err := r.db.Exec(ctx, `
		UPDATE items
		SET name = $1, brand = $2, model = $3, serial_number = $4, min_quantity = $5,
		    location = $6, category_id = $7, condition = $8, photo_url = $9, updated_at = NOW()
		WHERE id = $10
	`, item.Name, item.Brand, item.Model, item.SerialNumber, item.MinQuantity,
		item.Location, item.CategoryID, item.Condition, item.PhotoURL, item.ID)
	return err
}

func (r *itemRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `UPDATE items SET active = false, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("item %s: %w", id.String(), common.ErrNotFound)
	}
	return nil
}

func (r *itemRepo) List(ctx context.Context, activeOnly bool, limit, offset int) ([]*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items`
	if activeOnly {
		query += ` WHERE active = true`
	}
	query += ` ORDER BY name ASC LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectItems(rows)
}

func (r *itemRepo) ListIDsByCategory(ctx context.Context, categoryID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM items WHERE category_id = $1`, categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *itemRepo) LowStock(ctx context.Context) ([]*models.Item, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+itemColumns+`
		FROM items
		WHERE active = true AND quantity <= min_quantity
		ORDER BY quantity ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectItems(rows)
}

// Search performs filtered item search with dynamic conditions
func (r *itemRepo) Search(ctx context.Context, filter *models.ItemSearchFilter) ([]*models.Item, error) {
	if filter.Limit == 0 {
		filter.Limit = 50
	}

	query := `SELECT ` + itemColumns + ` FROM items WHERE 1=1`
	args := []interface{}{}

	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		n := len(args)
		query += fmt.Sprintf(` AND (name ILIKE $%d OR brand ILIKE $%d OR model ILIKE $%d OR barcode ILIKE $%d)`, n, n, n, n)
	}
	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		query += fmt.Sprintf(` AND category_id = $%d`, len(args))
	}
	if filter.Barcode != nil {
		args = append(args, *filter.Barcode)
		query += fmt.Sprintf(` AND barcode = $%d`, len(args))
	}
	if filter.MinQuantity != nil {
		args = append(args, *filter.MinQuantity)
		query += fmt.Sprintf(` AND quantity >= $%d`, len(args))
	}
	if filter.MaxQuantity != nil {
		args = append(args, *filter.MaxQuantity)
		query += fmt.Sprintf(` AND quantity <= $%d`, len(args))
	}
	if filter.LowStock {
		query += ` AND quantity <= min_quantity`
	}
	if filter.ActiveOnly {
		query += ` AND active = true`
	}

	sortField := "name"
	switch filter.SortBy {
	case "quantity":
		sortField = "quantity"
	case "created_at":
		sortField = "created_at"
	}
	sortOrder := "ASC"
	if strings.ToLower(filter.SortOrder) == "desc" {
		sortOrder = "DESC"
	}
	query += fmt.Sprintf(` ORDER BY %s %s`, sortField, sortOrder)

	args = append(args, filter.Limit)
	query += fmt.Sprintf(` LIMIT $%d`, len(args))
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(` OFFSET $%d`, len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectItems(rows)
}

func (r *itemRepo) NextBarcode(ctx context.Context) (string, error) {
	var seq int64
	if err := r.db.QueryRow(ctx, `SELECT nextval('item_barcode_seq')`).Scan(&seq); err != nil {
		return "", err
	}
	return fmt.Sprintf("ALM-%06d", seq), nil
}

func (r *itemRepo) SetPhotoURL(ctx context.Context, id uuid.UUID, photoURL string) error {
	tag, err := r.db.Exec(ctx, `UPDATE items SET photo_url = $1, updated_at = NOW() WHERE id = $2`, photoURL, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("item %s: %w", id.String(), common.ErrNotFound)
	}
	return nil
}

func collectItems(rows pgx.Rows) ([]*models.Item, error) {
	var items []*models.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
