package services

import (
	"context"
	"log"
	"time"

	"estoquehub/internal/caching"
	"estoquehub/internal/common"
	"estoquehub/internal/models"
	"estoquehub/internal/repositories"

	"github.com/google/uuid"
)

type CreateMaletaInput struct {
	UsuarioID             uuid.UUID
	DataPrevistaDevolucao time.Time
	Observacoes           *string
	CriadoPor             uuid.UUID
	Itens                 []models.MaletaItemInput
}

type MaletaService interface {
	Create(ctx context.Context, input *CreateMaletaInput) (uuid.UUID, error)
	Return(ctx context.Context, maletaID, userID uuid.UUID) error
	// List and Get run the overdue sweep first, so no caller ever observes a
	// stale aberta status for a maleta already past its due date.
	List(ctx context.Context, limit, offset int) ([]*models.Maleta, error)
	Get(ctx context.Context, maletaID uuid.UUID) (*models.Maleta, error)
	Stats(ctx context.Context) (*models.MaletaStats, error)
	// SweepOverdue promotes open maletas past their due date to atrasada.
	SweepOverdue(ctx context.Context) (int64, error)
}

type maletaService struct {
	maletaRepo   repositories.MaletaRepository
	profileRepo  repositories.ProfileRepository
	auditSvc     AuditLogsService
	cacheService caching.CacheService
}

func NewMaletaService(maletaRepo repositories.MaletaRepository, profileRepo repositories.ProfileRepository, auditSvc AuditLogsService, cacheService caching.CacheService) MaletaService {
	return &maletaService{
		maletaRepo:   maletaRepo,
		profileRepo:  profileRepo,
		auditSvc:     auditSvc,
		cacheService: cacheService,
	}
}

func (s *maletaService) Create(ctx context.Context, input *CreateMaletaInput) (uuid.UUID, error) {
	if input.CriadoPor == uuid.Nil {
		return uuid.Nil, common.ErrUnauthenticated
	}
	if input.UsuarioID == uuid.Nil {
		return uuid.Nil, common.NewValidationError("usuario_id", "is required")
	}
	if len(input.Itens) == 0 {
		return uuid.Nil, common.NewValidationError("itens", "at least one item is required")
	}
	if input.DataPrevistaDevolucao.IsZero() {
		return uuid.Nil, common.NewValidationError("data_prevista_devolucao", "is required")
	}
	for _, line := range input.Itens {
		if line.ItemID == uuid.Nil {
			return uuid.Nil, common.NewValidationError("itens.item_id", "is required")
		}
		if line.Quantidade <= 0 {
			return uuid.Nil, common.NewValidationError("itens.quantidade", "must be positive")
		}
	}

	maleta := &models.Maleta{
		ID:                    uuid.New(),
		UsuarioID:             input.UsuarioID,
		DataPrevistaDevolucao: input.DataPrevistaDevolucao,
		Observacoes:           input.Observacoes,
		CriadoPor:             input.CriadoPor,
	}

	if err := s.maletaRepo.CreateWithItens(ctx, maleta, input.Itens); err != nil {
		return uuid.Nil, err
	}

	s.invalidateAfterStockChange(ctx, input.Itens)

	s.auditSvc.LogActivity(ctx, input.CriadoPor, "maleta", maleta.ID.String(), "CREATE", models.JSONB{
		"usuario_id": input.UsuarioID.String(),
		"itens":      len(input.Itens),
	})

	return maleta.ID, nil
}

func (s *maletaService) Return(ctx context.Context, maletaID, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return common.ErrUnauthenticated
	}

	if err := s.maletaRepo.Return(ctx, maletaID); err != nil {
		return err
	}

	// Returned quantities change item stock; drop the affected item caches.
	if itens, err := s.maletaRepo.ListItens(ctx, maletaID); err == nil {
		for _, line := range itens {
			if cacheErr := s.cacheService.DeleteItem(ctx, line.ItemID); cacheErr != nil {
				log.Printf("Failed to invalidate cache for item %s: %v", line.ItemID.String(), cacheErr)
			}
		}
	}
	if cacheErr := s.cacheService.DeleteMaletaStats(ctx); cacheErr != nil {
		log.Printf("Failed to invalidate maleta stats cache: %v", cacheErr)
	}

	s.auditSvc.LogActivity(ctx, userID, "maleta", maletaID.String(), "RETURN", nil)

	return nil
}

func (s *maletaService) List(ctx context.Context, limit, offset int) ([]*models.Maleta, error) {
	s.sweepBeforeRead(ctx)

	limit, offset = common.ValidatePaginationParams(limit, offset)
	maletas, err := s.maletaRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	s.resolveProfiles(ctx, maletas)
	return maletas, nil
}

func (s *maletaService) Get(ctx context.Context, maletaID uuid.UUID) (*models.Maleta, error) {
	s.sweepBeforeRead(ctx)

	maleta, err := s.maletaRepo.GetByID(ctx, maletaID)
	if err != nil {
		return nil, err
	}

	itens, err := s.maletaRepo.ListItens(ctx, maletaID)
	if err != nil {
		return nil, err
	}
	maleta.Itens = itens

	s.resolveProfiles(ctx, []*models.Maleta{maleta})
	return maleta, nil
}

func (s *maletaService) Stats(ctx context.Context) (*models.MaletaStats, error) {
	s.sweepBeforeRead(ctx)

	if cached, err := s.cacheService.GetMaletaStats(ctx); cached != nil {
		return cached, nil
	} else if err != nil {
		log.Printf("Maleta stats cache error: %v", err)
	}

	stats, err := s.maletaRepo.Stats(ctx)
	if err != nil {
		return nil, err
	}

	if cacheErr := s.cacheService.SetMaletaStats(ctx, stats, 1*time.Minute); cacheErr != nil {
		log.Printf("Failed to cache maleta stats: %v", cacheErr)
	}
	return stats, nil
}

func (s *maletaService) SweepOverdue(ctx context.Context) (int64, error) {
	updated, err := s.maletaRepo.MarkOverdue(ctx)
	if err != nil {
		return 0, err
	}
	if updated > 0 {
		if cacheErr := s.cacheService.DeleteMaletaStats(ctx); cacheErr != nil {
			log.Printf("Failed to invalidate maleta stats cache: %v", cacheErr)
		}
	}
	return updated, nil
}

// sweepBeforeRead is the lazy catch-up step: a failed sweep logs and moves
// on, because serving slightly stale statuses beats failing the read.
func (s *maletaService) sweepBeforeRead(ctx context.Context) {
	if _, err := s.SweepOverdue(ctx); err != nil {
		log.Printf("Overdue sweep failed before read: %v", err)
	}
}

func (s *maletaService) resolveProfiles(ctx context.Context, maletas []*models.Maleta) {
	idSet := make(map[uuid.UUID]struct{})
	for _, m := range maletas {
		idSet[m.UsuarioID] = struct{}{}
		idSet[m.CriadoPor] = struct{}{}
	}
	ids := make([]uuid.UUID, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	profiles, err := s.profileRepo.GetByIDs(ctx, ids)
	if err != nil {
		log.Printf("Failed to resolve maleta profiles: %v", err)
		return
	}

	for _, m := range maletas {
		if p, ok := profiles[m.UsuarioID]; ok {
			m.UsuarioNome = p.Name
			m.UsuarioEmail = p.Email
		}
		if p, ok := profiles[m.CriadoPor]; ok {
			m.CriadoPorNome = p.Name
		}
	}
}

func (s *maletaService) invalidateAfterStockChange(ctx context.Context, itens []models.MaletaItemInput) {
	for _, line := range itens {
		if cacheErr := s.cacheService.DeleteItem(ctx, line.ItemID); cacheErr != nil {
			log.Printf("Failed to invalidate cache for item %s: %v", line.ItemID.String(), cacheErr)
		}
	}
	if cacheErr := s.cacheService.DeleteMaletaStats(ctx); cacheErr != nil {
		log.Printf("Failed to invalidate maleta stats cache: %v", cacheErr)
	}
}
