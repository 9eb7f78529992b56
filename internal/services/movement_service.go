package services

import (
	"context"
	"log"
	"sort"
	"time"

	"estoquehub/internal/caching"
	"estoquehub/internal/common"
	"estoquehub/internal/models"
	"estoquehub/internal/repositories"

	"github.com/google/uuid"
)

type RecordMovementInput struct {
	ItemID   uuid.UUID
	Type     string
	Quantity int
	UserID   uuid.UUID
	Note     *string
}

type MovementService interface {
	// Record validates the request and applies the ledger insert plus the
	// stock adjustment as one atomic operation.
	Record(ctx context.Context, input *RecordMovementInput) (uuid.UUID, error)
	List(ctx context.Context, itemID *uuid.UUID, limit, offset int) ([]*models.MovementWithRefs, error)
	// Aggregate buckets the filtered movement window by calendar day and
	// folds a running balance, ascending, starting from zero.
	Aggregate(ctx context.Context, filter *models.MovementFilter) ([]*models.MovementAggregate, error)
}

type movementService struct {
	movementRepo repositories.MovementRepository
	itemRepo     repositories.ItemRepository
	auditSvc     AuditLogsService
	cacheService caching.CacheService
}

func NewMovementService(movementRepo repositories.MovementRepository, itemRepo repositories.ItemRepository, auditSvc AuditLogsService, cacheService caching.CacheService) MovementService {
	return &movementService{
		movementRepo: movementRepo,
		itemRepo:     itemRepo,
		auditSvc:     auditSvc,
		cacheService: cacheService,
	}
}

func (s *movementService) Record(ctx context.Context, input *RecordMovementInput) (uuid.UUID, error) {
	if input.UserID == uuid.Nil {
		return uuid.Nil, common.ErrUnauthenticated
	}
	if input.Quantity <= 0 {
		return uuid.Nil, common.NewValidationError("quantity", "must be positive")
	}
	if input.Type != models.MovementEntry && input.Type != models.MovementExit {
		return uuid.Nil, common.NewValidationError("type", "must be ENTRY or EXIT")
	}
	if input.ItemID == uuid.Nil {
		return uuid.Nil, common.NewValidationError("item_id", "is required")
	}

	movement := &models.Movement{
		ID:       uuid.New(),
		Type:     input.Type,
		Quantity: input.Quantity,
		ItemID:   input.ItemID,
		UserID:   input.UserID,
		Note:     input.Note,
	}

	if err := s.movementRepo.CreateAndAdjustStock(ctx, movement); err != nil {
		return uuid.Nil, err
	}

	// Stock changed under this item; drop its cached copy.
	if cacheErr := s.cacheService.DeleteItem(ctx, input.ItemID); cacheErr != nil {
		log.Printf("Failed to invalidate cache for item %s: %v", input.ItemID.String(), cacheErr)
	}

	s.auditSvc.LogActivity(ctx, input.UserID, "movement", movement.ID.String(), "CREATE", models.JSONB{
		"type":     movement.Type,
		"quantity": movement.Quantity,
		"item_id":  movement.ItemID.String(),
	})

	return movement.ID, nil
}

func (s *movementService) List(ctx context.Context, itemID *uuid.UUID, limit, offset int) ([]*models.MovementWithRefs, error) {
	limit, offset = common.ValidatePaginationParams(limit, offset)
	return s.movementRepo.List(ctx, itemID, limit, offset)
}

func (s *movementService) Aggregate(ctx context.Context, filter *models.MovementFilter) ([]*models.MovementAggregate, error) {
	if filter == nil {
		filter = &models.MovementFilter{}
	}
	if filter.StartDate != nil && filter.EndDate != nil {
		if err := common.ValidateDateRange(*filter.StartDate, *filter.EndDate); err != nil {
			return nil, common.NewValidationError("end_date", err.Error())
		}
	}

	// The end date bound is inclusive of the whole calendar day.
	effective := *filter
	if filter.EndDate != nil {
		end := time.Date(filter.EndDate.Year(), filter.EndDate.Month(), filter.EndDate.Day(),
			23, 59, 59, 999_000_000, filter.EndDate.Location())
		effective.EndDate = &end
	}

	// Item filter always wins over category filter.
	var itemIDs []uuid.UUID
	if filter.ItemID != nil {
		itemIDs = []uuid.UUID{*filter.ItemID}
	} else if filter.CategoryID != nil {
		ids, err := s.itemRepo.ListIDsByCategory(ctx, *filter.CategoryID)
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			// Category with no items is an empty window, not an error.
			return []*models.MovementAggregate{}, nil
		}
		itemIDs = ids
	}

	movements, err := s.movementRepo.ListForRange(ctx, itemIDs, &effective)
	if err != nil {
		return nil, err
	}

	return bucketByDay(movements), nil
}

// bucketByDay groups movements into per-day totals and folds the running
// balance. The balance is relative to the window: the first day starts from
// zero, not from the item's all-time quantity.
func bucketByDay(movements []*models.Movement) []*models.MovementAggregate {
	if len(movements) == 0 {
		return []*models.MovementAggregate{}
	}

	type dayTotals struct {
		entradas int
		saidas   int
	}
	byDay := make(map[string]*dayTotals)

	for _, m := range movements {
		day := m.CreatedAt.Format("2006-01-02")
		totals, ok := byDay[day]
		if !ok {
			totals = &dayTotals{}
			byDay[day] = totals
		}
		if m.Type == models.MovementEntry {
			totals.entradas += m.Quantity
		} else {
			totals.saidas += m.Quantity
		}
	}

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)

	aggregates := make([]*models.MovementAggregate, 0, len(days))
	saldo := 0
	for _, day := range days {
		totals := byDay[day]
		saldo = saldo + totals.entradas - totals.saidas
		aggregates = append(aggregates, &models.MovementAggregate{
			Date:     day,
			Label:    day[8:10] + "/" + day[5:7],
			Entradas: totals.entradas,
			Saidas:   totals.saidas,
			Saldo:    saldo,
		})
	}
	return aggregates
}
