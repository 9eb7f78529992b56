package repositories

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"estoquehub/internal/common"
	"estoquehub/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type MaletaRepository interface {
	// CreateWithItens creates the maleta, all its lines, and decrements each
	// referenced item's stock in one transaction. If any single line's
	// quantity is unavailable the whole operation rolls back.
	CreateWithItens(ctx context.Context, maleta *models.Maleta, itens []models.MaletaItemInput) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.Maleta, error)
	List(ctx context.Context, limit, offset int) ([]*models.Maleta, error)
	ListItens(ctx context.Context, maletaID uuid.UUID) ([]*models.MaletaItem, error)

	// Return restores every line's stock and marks the maleta devolvida.
	// Fails with ErrInvalidState when the maleta is already returned.
	Return(ctx context.Context, maletaID uuid.UUID) error

	// MarkOverdue flips every open maleta past its due date to atrasada.
	// Idempotent: a second run with no elapsed time changes nothing.
	MarkOverdue(ctx context.Context) (int64, error)

	Stats(ctx context.Context) (*models.MaletaStats, error)
}

type maletaRepo struct {
	db Database
}

func NewMaletaRepo(db Database) MaletaRepository {
	return &maletaRepo{db: db}
}

func (r *maletaRepo) CreateWithItens(ctx context.Context, maleta *models.Maleta, itens []models.MaletaItemInput) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin maleta transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO maletas (id, usuario_id, data_emprestimo, data_prevista_devolucao, status, observacoes, criado_por, created_at, updated_at)
		VALUES ($1, $2, NOW(), $3, $4, $5, $6, NOW(), NOW())
	`, maleta.ID, maleta.UsuarioID, maleta.DataPrevistaDevolucao, models.MaletaAberta, maleta.Observacoes, maleta.CriadoPor)
	if err != nil {
		return err
	}

	// Lock items in ascending id order so two concurrent maletas sharing
	// items cannot deadlock on each other.
	locked := make([]models.MaletaItemInput, len(itens))
	copy(locked, itens)
	sort.Slice(locked, func(i, j int) bool {
		return locked[i].ItemID.String() < locked[j].ItemID.String()
	})

	for _, line := range locked {
		var quantity int
		var active bool
		err = tx.QueryRow(ctx,
			`SELECT quantity, active FROM items WHERE id = $1 FOR UPDATE`,
			line.ItemID,
		).Scan(&quantity, &active)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("item %s: %w", line.ItemID.String(), common.ErrNotFound)
			}
			return err
		}
		if !active {
			return fmt.Errorf("item %s is inactive: %w", line.ItemID.String(), common.ErrNotFound)
		}
		if line.Quantidade > quantity {
			return &common.InsufficientStockError{
				ItemID:    line.ItemID,
				Available: quantity,
				Requested: line.Quantidade,
			}
		}

		_, err = tx.Exec(ctx, `
			UPDATE items SET quantity = quantity - $1, updated_at = NOW() WHERE id = $2
		`, line.Quantidade, line.ItemID)
		if err != nil {
			return err
		}
	}

	// Insert lines in input order so display order matches the request.
	for _, line := range itens {
		_, err = tx.Exec(ctx, `
			INSERT INTO maleta_itens (id, maleta_id, item_id, quantidade, numero_serie, created_at)
			VALUES ($1, $2, $3, $4, $5, NOW())
		`, uuid.New(), maleta.ID, line.ItemID, line.Quantidade, line.NumeroSerie)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

const maletaColumns = `id, usuario_id, data_emprestimo, data_prevista_devolucao, data_devolucao, status, observacoes, criado_por, created_at, updated_at`

func scanMaleta(row pgx.Row) (*models.Maleta, error) {
	m := &models.Maleta{}
	err := row.Scan(&m.ID, &m.UsuarioID, &m.DataEmprestimo, &m.DataPrevistaDevolucao,
		&m.DataDevolucao, &m.Status, &m.Observacoes, &m.CriadoPor, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *maletaRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Maleta, error) {
	row := r.db.QueryRow(ctx, `SELECT `+maletaColumns+` FROM maletas WHERE id = $1`, id)
	maleta, err := scanMaleta(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("maleta %s: %w", id.String(), common.ErrNotFound)
		}
		return nil, err
	}
	return maleta, nil
}

func (r *maletaRepo) List(ctx context.Context, limit, offset int) ([]*models.Maleta, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+maletaColumns+`
		FROM maletas
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var maletas []*models.Maleta
	for rows.Next() {
		m, err := scanMaleta(rows)
		if err != nil {
			return nil, err
		}
		maletas = append(maletas, m)
	}
	return maletas, rows.Err()
}

func (r *maletaRepo) ListItens(ctx context.Context, maletaID uuid.UUID) ([]*models.MaletaItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT mi.id, mi.maleta_id, mi.item_id, mi.quantidade, mi.numero_serie, mi.created_at,
		       i.name, i.barcode, i.brand, i.model
		FROM maleta_itens mi
		JOIN items i ON i.id = mi.item_id
		WHERE mi.maleta_id = $1
		ORDER BY mi.created_at ASC
	`, maletaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var itens []*models.MaletaItem
	for rows.Next() {
		mi := &models.MaletaItem{}
		if err := rows.Scan(&mi.ID, &mi.MaletaID, &mi.ItemID, &mi.Quantidade, &mi.NumeroSerie,
			&mi.CreatedAt, &mi.ItemNome, &mi.ItemBarcode, &mi.ItemBrand, &mi.ItemModel); err != nil {
			return nil, err
		}
		itens = append(itens, mi)
	}
	return itens, rows.Err()
}

func (r *maletaRepo) Return(ctx context.Context, maletaID uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin return transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var status string
	err = tx.QueryRow(ctx, `SELECT status FROM maletas WHERE id = $1 FOR UPDATE`, maletaID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("maleta %s: %w", maletaID.String(), common.ErrNotFound)
		}
		return err
	}
	if status != models.MaletaAberta && status != models.MaletaAtrasada {
		return fmt.Errorf("maleta %s already %s: %w", maletaID.String(), status, common.ErrInvalidState)
	}

	rows, err := tx.Query(ctx, `SELECT item_id, quantidade FROM maleta_itens WHERE maleta_id = $1`, maletaID)
	if err != nil {
		return err
	}
	type line struct {
		itemID     uuid.UUID
		quantidade int
	}
	var lines []line
	for rows.Next() {
		var l line
		if err := rows.Scan(&l.itemID, &l.quantidade); err != nil {
			rows.Close()
			return err
		}
		lines = append(lines, l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, l := range lines {
		_, err = tx.Exec(ctx, `
			UPDATE items SET quantity = quantity + $1, updated_at = NOW() WHERE id = $2
		`, l.quantidade, l.itemID)
		if err != nil {
			return err
		}
	}

	_, err = tx.Exec(ctx, `
		UPDATE maletas SET status = $1, data_devolucao = NOW(), updated_at = NOW() WHERE id = $2
	`, models.MaletaDevolvida, maletaID)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *maletaRepo) MarkOverdue(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE maletas
		SET status = $1, updated_at = NOW()
		WHERE status = $2 AND data_prevista_devolucao < NOW()
	`, models.MaletaAtrasada, models.MaletaAberta)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *maletaRepo) Stats(ctx context.Context) (*models.MaletaStats, error) {
	stats := &models.MaletaStats{}
	err := r.db.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE status = $1),
			COUNT(*) FILTER (WHERE status = $2)
		FROM maletas
	`, models.MaletaAberta, models.MaletaAtrasada).Scan(&stats.Abertas, &stats.Atrasadas)
	if err != nil {
		return nil, err
	}

	err = r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(mi.quantidade), 0)
		FROM maleta_itens mi
		JOIN maletas m ON m.id = mi.maleta_id
		WHERE m.status IN ($1, $2)
	`, models.MaletaAberta, models.MaletaAtrasada).Scan(&stats.ItensEmprestados)
	if err != nil {
		return nil, err
	}
	return stats, nil
}
