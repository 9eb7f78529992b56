package services

import (
	"context"
	"fmt"
	"strings"

	"estoquehub/internal/common"
	"estoquehub/internal/models"
	"estoquehub/internal/repositories"

	"github.com/google/uuid"
)

type UpsertUserInput struct {
	Email string
	Name  string
	Role  string
}

type UserService interface {
	CreateUser(ctx context.Context, actor uuid.UUID, input *UpsertUserInput) (*models.Profile, error)
	GetUser(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	UpdateUser(ctx context.Context, actor uuid.UUID, id uuid.UUID, input *UpsertUserInput) (*models.Profile, error)
	DeactivateUser(ctx context.Context, actor uuid.UUID, id uuid.UUID) error
	ListUsers(ctx context.Context, limit, offset int) ([]*models.Profile, error)
}

type userService struct {
	profileRepo repositories.ProfileRepository
	auditSvc    AuditLogsService
}

func NewUserService(profileRepo repositories.ProfileRepository, auditSvc AuditLogsService) UserService {
	return &userService{
		profileRepo: profileRepo,
		auditSvc:    auditSvc,
	}
}

func validateUserInput(input *UpsertUserInput) error {
	if input == nil {
		return common.NewValidationError("body", "request body is required")
	}
	if strings.TrimSpace(input.Email) == "" {
		return common.NewValidationError("email", "email is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return common.NewValidationError("name", "name is required")
	}
	if !models.ValidRole(input.Role) {
		return common.NewValidationError("role", fmt.Sprintf("invalid role %q", input.Role))
	}
	return nil
}

func (s *userService) CreateUser(ctx context.Context, actor uuid.UUID, input *UpsertUserInput) (*models.Profile, error) {
	if err := validateUserInput(input); err != nil {
		return nil, err
	}

	profile := &models.Profile{
		ID:     uuid.New(),
		Email:  strings.ToLower(strings.TrimSpace(input.Email)),
		Name:   strings.TrimSpace(input.Name),
		Role:   input.Role,
		Active: true,
	}
	if err := s.profileRepo.Create(ctx, profile); err != nil {
		return nil, err
	}

	s.auditSvc.LogActivity(ctx, actor, "user", profile.ID.String(), "CREATE", models.JSONB{
		"email": profile.Email,
		"role":  profile.Role,
	})
	return profile, nil
}

func (s *userService) GetUser(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	return s.profileRepo.GetByID(ctx, id)
}

func (s *userService) UpdateUser(ctx context.Context, actor uuid.UUID, id uuid.UUID, input *UpsertUserInput) (*models.Profile, error) {
	if err := validateUserInput(input); err != nil {
		return nil, err
	}

	profile, err := s.profileRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	profile.Email = strings.ToLower(strings.TrimSpace(input.Email))
	profile.Name = strings.TrimSpace(input.Name)
	profile.Role = input.Role

	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return nil, err
	}

	s.auditSvc.LogActivity(ctx, actor, "user", id.String(), "UPDATE", models.JSONB{
		"role": profile.Role,
	})
	return profile, nil
}

func (s *userService) DeactivateUser(ctx context.Context, actor uuid.UUID, id uuid.UUID) error {
	if actor == id {
		return common.NewValidationError("id", "cannot deactivate your own account")
	}
	if err := s.profileRepo.Deactivate(ctx, id); err != nil {
		return err
	}
	s.auditSvc.LogActivity(ctx, actor, "user", id.String(), "DELETE", nil)
	return nil
}

func (s *userService) ListUsers(ctx context.Context, limit, offset int) ([]*models.Profile, error) {
	return s.profileRepo.List(ctx, limit, offset)
}
