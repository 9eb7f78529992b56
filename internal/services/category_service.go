package services

import (
	"context"
	"strings"

	"estoquehub/internal/common"
	"estoquehub/internal/models"
	"estoquehub/internal/repositories"

	"github.com/google/uuid"
)

type CategoryService interface {
	CreateCategory(ctx context.Context, actor uuid.UUID, name string) (*models.Category, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error)
	UpdateCategory(ctx context.Context, actor uuid.UUID, id uuid.UUID, name string) (*models.Category, error)
	DeactivateCategory(ctx context.Context, actor uuid.UUID, id uuid.UUID) error
	ListCategories(ctx context.Context, limit, offset int) ([]*models.Category, error)
}

type categoryService struct {
	categoryRepo repositories.CategoryRepository
	auditSvc     AuditLogsService
}

func NewCategoryService(categoryRepo repositories.CategoryRepository, auditSvc AuditLogsService) CategoryService {
	return &categoryService{
		categoryRepo: categoryRepo,
		auditSvc:     auditSvc,
	}
}

func (s *categoryService) CreateCategory(ctx context.Context, actor uuid.UUID, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, common.NewValidationError("name", "name is required")
	}

	category := &models.Category{
		ID:     uuid.New(),
		Name:   name,
		Active: true,
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}

	s.auditSvc.LogActivity(ctx, actor, "category", category.ID.String(), "CREATE", models.JSONB{
		"name": category.Name,
	})
	return category, nil
}

func (s *categoryService) GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return s.categoryRepo.GetByID(ctx, id)
}

func (s *categoryService) UpdateCategory(ctx context.Context, actor uuid.UUID, id uuid.UUID, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, common.NewValidationError("name", "name is required")
	}

	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	category.Name = name
	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, err
	}

	s.auditSvc.LogActivity(ctx, actor, "category", id.String(), "UPDATE", models.JSONB{
		"name": name,
	})
	return category, nil
}

func (s *categoryService) DeactivateCategory(ctx context.Context, actor uuid.UUID, id uuid.UUID) error {
	if err := s.categoryRepo.Deactivate(ctx, id); err != nil {
		return err
	}
	s.auditSvc.LogActivity(ctx, actor, "category", id.String(), "DELETE", nil)
	return nil
}

func (s *categoryService) ListCategories(ctx context.Context, limit, offset int) ([]*models.Category, error) {
	return s.categoryRepo.List(ctx, limit, offset)
}
