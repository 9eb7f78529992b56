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

type MovementRepository interface {
	// CreateAndAdjustStock inserts the movement row and applies the stock
	// delta to the item inside one transaction. The availability check and
	// the quantity update sit behind a row lock so concurrent exits cannot
	// both pass the check against a stale quantity.
	CreateAndAdjustStock(ctx context.Context, movement *models.Movement) error

	// List returns movements newest first with denormalized item/user
	// display fields, optionally restricted to one item.
	List(ctx context.Context, itemID *uuid.UUID, limit, offset int) ([]*models.MovementWithRefs, error)

	// ListForRange returns bare movements ascending by creation time,
	// optionally restricted to a set of item ids and a time window. A nil
	// itemIDs slice means no item restriction.
	ListForRange(ctx context.Context, itemIDs []uuid.UUID, filter *models.MovementFilter) ([]*models.Movement, error)
}

type movementRepo struct {
	db Database
}

func NewMovementRepo(db Database) MovementRepository {
	return &movementRepo{db: db}
}

func (r *movementRepo) CreateAndAdjustStock(ctx context.Context, movement *models.Movement) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin movement transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var quantity int
	var active bool
	err = tx.QueryRow(ctx,
		`SELECT quantity, active FROM items WHERE id = $1 FOR UPDATE`,
		movement.ItemID,
	).Scan(&quantity, &active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("item %s: %w", movement.ItemID.String(), common.ErrNotFound)
		}
		return err
	}
	if !active {
		return fmt.Errorf("item %s is inactive: %w", movement.ItemID.String(), common.ErrNotFound)
	}

	newQuantity := quantity
	switch movement.Type {
	case models.MovementEntry:
		newQuantity += movement.Quantity
	case models.MovementExit:
		if movement.Quantity > quantity {
			return &common.InsufficientStockError{
				ItemID:    movement.ItemID,
				Available: quantity,
				Requested: movement.Quantity,
			}
		}
		newQuantity -= movement.Quantity
	default:
		return common.NewValidationError("type", "must be ENTRY or EXIT")
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO movements (id, type, quantity, item_id, user_id, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`, movement.ID, movement.Type, movement.Quantity, movement.ItemID, movement.UserID, movement.Note)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		UPDATE items SET quantity = $1, updated_at = NOW() WHERE id = $2
	`, newQuantity, movement.ItemID)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *movementRepo) List(ctx context.Context, itemID *uuid.UUID, limit, offset int) ([]*models.MovementWithRefs, error) {
	query := `
		SELECT m.id, m.type, m.quantity, m.item_id, m.user_id, m.note, m.created_at,
		       i.name, i.barcode, i.brand, i.model,
		       p.name, p.email
		FROM movements m
		JOIN items i ON i.id = m.item_id
		JOIN profiles p ON p.id = m.user_id
	`
	args := []interface{}{}
	if itemID != nil {
		query += ` WHERE m.item_id = $1`
		args = append(args, *itemID)
	}
	query += fmt.Sprintf(` ORDER BY m.created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var movements []*models.MovementWithRefs
	for rows.Next() {
		m := &models.MovementWithRefs{}
		if err := rows.Scan(
			&m.ID, &m.Type, &m.Quantity, &m.ItemID, &m.UserID, &m.Note, &m.CreatedAt,
			&m.ItemName, &m.ItemBarcode, &m.ItemBrand, &m.ItemModel,
			&m.UserName, &m.UserEmail,
		); err != nil {
			return nil, err
		}
		movements = append(movements, m)
	}
	return movements, rows.Err()
}

func (r *movementRepo) ListForRange(ctx context.Context, itemIDs []uuid.UUID, filter *models.MovementFilter) ([]*models.Movement, error) {
	query := `
		SELECT id, type, quantity, item_id, user_id, note, created_at
		FROM movements
		WHERE 1=1
	`
	args := []interface{}{}

	if itemIDs != nil {
		args = append(args, itemIDs)
		query += fmt.Sprintf(` AND item_id = ANY($%d)`, len(args))
	}
	if filter != nil && filter.StartDate != nil {
		args = append(args, *filter.StartDate)
		query += fmt.Sprintf(` AND created_at >= $%d`, len(args))
	}
	if filter != nil && filter.EndDate != nil {
		args = append(args, *filter.EndDate)
		query += fmt.Sprintf(` AND created_at <= $%d`, len(args))
	}
	query += ` ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var movements []*models.Movement
	for rows.Next() {
		m := &models.Movement{}
		if err := rows.Scan(&m.ID, &m.Type, &m.Quantity, &m.ItemID, &m.UserID, &m.Note, &m.CreatedAt); err != nil {
			return nil, err
		}
		movements = append(movements, m)
	}
	return movements, rows.Err()
}
