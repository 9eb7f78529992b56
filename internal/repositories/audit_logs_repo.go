package repositories

import (
	"context"
	"fmt"

	"estoquehub/internal/models"
)

type AuditLogsRepository interface {
	Create(ctx context.Context, log *models.AuditLog) error
	List(ctx context.Context, filters *models.AuditLogFilters) ([]*models.AuditLog, error)
}

type auditLogsRepo struct {
	db Database
}

func NewAuditLogsRepo(db Database) AuditLogsRepository {
	return &auditLogsRepo{db: db}
}

func (r *auditLogsRepo) Create(ctx context.Context, log *models.AuditLog) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO audit_logs (id, user_id, user_email, user_name, action, entity, entity_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
	`, log.ID, log.UserID, log.UserEmail, log.UserName, log.Action, log.Entity, log.EntityID, log.Details)
	return err
}

func (r *auditLogsRepo) List(ctx context.Context, filters *models.AuditLogFilters) ([]*models.AuditLog, error) {
	query := `
		SELECT id, user_id, user_email, user_name, action, entity, entity_id, details, created_at
		FROM audit_logs
		WHERE 1=1
	`
	args := []interface{}{}

	if filters.Entity != nil {
		args = append(args, *filters.Entity)
		query += fmt.Sprintf(` AND entity = $%d`, len(args))
	}
	if filters.EntityID != nil {
		args = append(args, *filters.EntityID)
		query += fmt.Sprintf(` AND entity_id = $%d`, len(args))
	}
	if filters.Action != nil {
		args = append(args, *filters.Action)
		query += fmt.Sprintf(` AND action = $%d`, len(args))
	}
	if filters.UserID != nil {
		args = append(args, *filters.UserID)
		query += fmt.Sprintf(` AND user_id = $%d`, len(args))
	}
	if filters.StartDate != nil {
		args = append(args, *filters.StartDate)
		query += fmt.Sprintf(` AND created_at >= $%d`, len(args))
	}
	if filters.EndDate != nil {
		args = append(args, *filters.EndDate)
		query += fmt.Sprintf(` AND created_at <= $%d`, len(args))
	}

	args = append(args, filters.Limit)
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d`, len(args))
	if filters.Offset > 0 {
		args = append(args, filters.Offset)
		query += fmt.Sprintf(` OFFSET $%d`, len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*models.AuditLog
	for rows.Next() {
		l := &models.AuditLog{}
		if err := rows.Scan(&l.ID, &l.UserID, &l.UserEmail, &l.UserName, &l.Action,
			&l.Entity, &l.EntityID, &l.Details, &l.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
