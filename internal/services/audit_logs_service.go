package services

import (
	"context"
	"log"

	"estoquehub/internal/models"
	"estoquehub/internal/repositories"

	"github.com/google/uuid"
)

type AuditLogsService interface {
	// LogActivity records who did what. Best-effort: failures are logged and
	// swallowed so the primary business operation never rolls back over an
	// audit write.
	LogActivity(ctx context.Context, userID uuid.UUID, entity, entityID, action string, details models.JSONB)

	ListAuditLogs(ctx context.Context, filters *models.AuditLogFilters) ([]*models.AuditLog, error)
}

type auditLogsService struct {
	auditLogsRepo repositories.AuditLogsRepository
	profileRepo   repositories.ProfileRepository
}

func NewAuditLogsService(auditLogsRepo repositories.AuditLogsRepository, profileRepo repositories.ProfileRepository) AuditLogsService {
	return &auditLogsService{
		auditLogsRepo: auditLogsRepo,
		profileRepo:   profileRepo,
	}
}

func (s *auditLogsService) LogActivity(ctx context.Context, userID uuid.UUID, entity, entityID, action string, details models.JSONB) {
	if userID == uuid.Nil || entity == "" || action == "" {
		return
	}

	entry := &models.AuditLog{
		ID:     uuid.New(),
		UserID: userID,
		Action: action,
		Entity: entity,
	}
	if entityID != "" {
		entry.EntityID = &entityID
	}
	entry.Details = details

	if profile, err := s.profileRepo.GetByID(ctx, userID); err == nil {
		entry.UserEmail = profile.Email
		entry.UserName = profile.Name
	}

	if err := s.auditLogsRepo.Create(ctx, entry); err != nil {
		log.Printf("Failed to write audit log (%s %s): %v", action, entity, err)
	}
}

func (s *auditLogsService) ListAuditLogs(ctx context.Context, filters *models.AuditLogFilters) ([]*models.AuditLog, error) {
	if filters == nil {
		filters = &models.AuditLogFilters{Limit: 50}
	}
	if filters.Limit <= 0 || filters.Limit > 1000 {
		filters.Limit = 50
	}
	return s.auditLogsRepo.List(ctx, filters)
}
