package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"estoquehub/internal/caching"
	"estoquehub/internal/common"
	"estoquehub/internal/models"
	"estoquehub/internal/repositories"

	"github.com/google/uuid"
)

const itemCacheTTL = 5 * time.Minute

type CreateItemInput struct {
	Name         string
	Brand        string
	Model        string
	SerialNumber *string
	Quantity     int
	MinQuantity  int
	Location     string
	CategoryID   *uuid.UUID
	Condition    *string
}

type UpdateItemInput struct {
	Name         string
	Brand        string
	Model        string
	SerialNumber *string
	MinQuantity  int
	Location     string
	CategoryID   *uuid.UUID
	Condition    *string
}

type ItemService interface {
	CreateItem(ctx context.Context, actor uuid.UUID, input *CreateItemInput) (*models.Item, error)
	GetItem(ctx context.Context, id uuid.UUID) (*models.Item, error)
	GetItemByBarcode(ctx context.Context, barcode string) (*models.Item, error)
	UpdateItem(ctx context.Context, actor uuid.UUID, id uuid.UUID, input *UpdateItemInput) (*models.Item, error)
	DeactivateItem(ctx context.Context, actor uuid.UUID, id uuid.UUID) error
	ListItems(ctx context.Context, activeOnly bool, limit, offset int) ([]*models.Item, error)
	SearchItems(ctx context.Context, filter *models.ItemSearchFilter) ([]*models.Item, error)
	LowStockItems(ctx context.Context) ([]*models.Item, error)
	SetItemPhoto(ctx context.Context, actor uuid.UUID, id uuid.UUID, photoURL string) error
}

type itemService struct {
	itemRepo     repositories.ItemRepository
	auditSvc     AuditLogsService
	cacheService caching.CacheService
}

func NewItemService(itemRepo repositories.ItemRepository, auditSvc AuditLogsService, cacheService caching.CacheService) ItemService {
	return &itemService{
		itemRepo:     itemRepo,
		auditSvc:     auditSvc,
		cacheService: cacheService,
	}
}

func (s *itemService) CreateItem(ctx context.Context, actor uuid.UUID, input *CreateItemInput) (*models.Item, error) {
	if input == nil {
		return nil, common.NewValidationError("body", "request body is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, common.NewValidationError("name", "name is required")
	}
	if input.Quantity < 0 {
		return nil, common.NewValidationError("quantity", "quantity cannot be negative")
	}
	if input.MinQuantity < 0 {
		return nil, common.NewValidationError("minQuantity", "minimum quantity cannot be negative")
	}
	if input.Condition != nil && !models.ValidCondition(*input.Condition) {
		return nil, common.NewValidationError("condition", fmt.Sprintf("invalid condition %q", *input.Condition))
	}

	barcode, err := s.itemRepo.NextBarcode(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate barcode: %w", err)
	}

	item := &models.Item{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(input.Name),
		Brand:        strings.TrimSpace(input.Brand),
		Model:        strings.TrimSpace(input.Model),
		SerialNumber: input.SerialNumber,
		Quantity:     input.Quantity,
		MinQuantity:  input.MinQuantity,
		Location:     strings.TrimSpace(input.Location),
		Barcode:      barcode,
		CategoryID:   input.CategoryID,
		Active:       true,
		Condition:    input.Condition,
	}

	if err := s.itemRepo.Create(ctx, item); err != nil {
		return nil, err
	}

	s.auditSvc.LogActivity(ctx, actor, "item", item.ID.String(), "CREATE", models.JSONB{
		"name":    item.Name,
		"barcode": item.Barcode,
	})
	return item, nil
}

func (s *itemService) GetItem(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	if cached, err := s.cacheService.GetItem(ctx, id); err == nil && cached != nil {
		return cached, nil
	}

	item, err := s.itemRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.cacheService.SetItem(ctx, item, itemCacheTTL); err != nil {
		log.Printf("Failed to cache item %s: %v", id, err)
	}
	return item, nil
}

func (s *itemService) GetItemByBarcode(ctx context.Context, barcode string) (*models.Item, error) {
	if strings.TrimSpace(barcode) == "" {
		return nil, common.NewValidationError("barcode", "barcode is required")
	}
	return s.itemRepo.GetByBarcode(ctx, barcode)
}

// UpdateItem never touches quantity; stock only moves through movements
// and maletas so the ledger stays authoritative.
func (s *itemService) UpdateItem(ctx context.Context, actor uuid.UUID, id uuid.UUID, input *UpdateItemInput) (*models.Item, error) {
	if input == nil {
		return nil, common.NewValidationError("body", "request body is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, common.NewValidationError("name", "name is required")
	}
	if input.MinQuantity < 0 {
		return nil, common.NewValidationError("minQuantity", "minimum quantity cannot be negative")
	}
	if input.Condition != nil && !models.ValidCondition(*input.Condition) {
		return nil, common.NewValidationError("condition", fmt.Sprintf("invalid condition %q", *input.Condition))
	}

	item, err := s.itemRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	item.Name = strings.TrimSpace(input.Name)
	item.Brand = strings.TrimSpace(input.Brand)
	item.Model = strings.TrimSpace(input.Model)
	item.SerialNumber = input.SerialNumber
	item.MinQuantity = input.MinQuantity
	item.Location = strings.TrimSpace(input.Location)
	item.CategoryID = input.CategoryID
	item.Condition = input.Condition

	if err := s.itemRepo.Update(ctx, item); err != nil {
		return nil, err
	}

	if err := s.cacheService.DeleteItem(ctx, id); err != nil {
		log.Printf("Failed to invalidate item cache %s: %v", id, err)
	}
	s.auditSvc.LogActivity(ctx, actor, "item", id.String(), "UPDATE", models.JSONB{
		"name": item.Name,
	})
	return item, nil
}

func (s *itemService) DeactivateItem(ctx context.Context, actor uuid.UUID, id uuid.UUID) error {
	if err := s.itemRepo.Deactivate(ctx, id); err != nil {
		return err
	}
	if err := s.cacheService.DeleteItem(ctx, id); err != nil {
		log.Printf("Failed to invalidate item cache %s: %v", id, err)
	}
	s.auditSvc.LogActivity(ctx, actor, "item", id.String(), "DELETE", nil)
	return nil
}

func (s *itemService) ListItems(ctx context.Context, activeOnly bool, limit, offset int) ([]*models.Item, error) {
	return s.itemRepo.List(ctx, activeOnly, limit, offset)
}

func (s *itemService) SearchItems(ctx context.Context, filter *models.ItemSearchFilter) ([]*models.Item, error) {
	if filter == nil {
		filter = &models.ItemSearchFilter{}
	}
	if filter.Limit <= 0 || filter.Limit > 1000 {
		filter.Limit = 50
	}
	return s.itemRepo.Search(ctx, filter)
}

func (s *itemService) LowStockItems(ctx context.Context) ([]*models.Item, error) {
	return s.itemRepo.LowStock(ctx)
}

func (s *itemService) SetItemPhoto(ctx context.Context, actor uuid.UUID, id uuid.UUID, photoURL string) error {
	if err := s.itemRepo.SetPhotoURL(ctx, id, photoURL); err != nil {
		return err
	}
	if err := s.cacheService.DeleteItem(ctx, id); err != nil {
		log.Printf("Failed to invalidate item cache %s: %v", id, err)
	}
	s.auditSvc.LogActivity(ctx, actor, "item", id.String(), "UPDATE", models.JSONB{
		"photo": true,
	})
	return nil
}
