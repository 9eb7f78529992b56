package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"estoquehub/internal/common"
	"estoquehub/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type MockMaletaRepository struct {
	mock.Mock
}

func (m *MockMaletaRepository) CreateWithItens(ctx context.Context, maleta *models.Maleta, itens []models.MaletaItemInput) error {
	args := m.Called(ctx, maleta, itens)
	return args.Error(0)
}

func (m *MockMaletaRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Maleta, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Maleta), args.Error(1)
}

func (m *MockMaletaRepository) List(ctx context.Context, limit, offset int) ([]*models.Maleta, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Maleta), args.Error(1)
}

func (m *MockMaletaRepository) ListItens(ctx context.Context, maletaID uuid.UUID) ([]*models.MaletaItem, error) {
	args := m.Called(ctx, maletaID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.MaletaItem), args.Error(1)
}

func (m *MockMaletaRepository) Return(ctx context.Context, maletaID uuid.UUID) error {
	args := m.Called(ctx, maletaID)
	return args.Error(0)
}

func (m *MockMaletaRepository) MarkOverdue(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMaletaRepository) Stats(ctx context.Context) (*models.MaletaStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MaletaStats), args.Error(1)
}

type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileRepository) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileRepository) Update(ctx context.Context, profile *models.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockProfileRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProfileRepository) List(ctx context.Context, limit, offset int) ([]*models.Profile, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*models.Profile), args.Error(1)
}

func (m *MockProfileRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Profile, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]*models.Profile), args.Error(1)
}

type MaletaServiceTestSuite struct {
	suite.Suite
	mockMaletaRepo  *MockMaletaRepository
	mockProfileRepo *MockProfileRepository
	mockAuditSvc    *MockAuditLogsService
	mockCache       *MockCacheService
	service         MaletaService
	usuarioID       uuid.UUID
	criadoPor       uuid.UUID
	itemID          uuid.UUID
	dueDate         time.Time
	ctx             context.Context
}

func (suite *MaletaServiceTestSuite) SetupTest() {
	suite.mockMaletaRepo = &MockMaletaRepository{}
	suite.mockProfileRepo = &MockProfileRepository{}
	suite.mockAuditSvc = &MockAuditLogsService{}
	suite.mockCache = &MockCacheService{}
	suite.service = NewMaletaService(suite.mockMaletaRepo, suite.mockProfileRepo, suite.mockAuditSvc, suite.mockCache)
	suite.usuarioID = uuid.New()
	suite.criadoPor = uuid.New()
	suite.itemID = uuid.New()
	suite.dueDate = time.Now().Add(7 * 24 * time.Hour)
	suite.ctx = context.Background()
}

func (suite *MaletaServiceTestSuite) TearDownTest() {
	suite.mockMaletaRepo.AssertExpectations(suite.T())
	suite.mockProfileRepo.AssertExpectations(suite.T())
	suite.mockAuditSvc.AssertExpectations(suite.T())
	suite.mockCache.AssertExpectations(suite.T())
}

func TestMaletaServiceTestSuite(t *testing.T) {
	suite.Run(t, new(MaletaServiceTestSuite))
}

func (suite *MaletaServiceTestSuite) validInput() *CreateMaletaInput {
	return &CreateMaletaInput{
		UsuarioID:             suite.usuarioID,
		DataPrevistaDevolucao: suite.dueDate,
		CriadoPor:             suite.criadoPor,
		Itens: []models.MaletaItemInput{
			{ItemID: suite.itemID, Quantidade: 2},
		},
	}
}

func (suite *MaletaServiceTestSuite) TestCreate_Success() {
	suite.mockMaletaRepo.On("CreateWithItens", suite.ctx, mock.MatchedBy(func(m *models.Maleta) bool {
		return m.UsuarioID == suite.usuarioID && m.CriadoPor == suite.criadoPor
	}), mock.Anything).Return(nil)
	suite.mockCache.On("DeleteItem", suite.ctx, suite.itemID).Return(nil)
	suite.mockCache.On("DeleteMaletaStats", suite.ctx).Return(nil)
	suite.mockAuditSvc.On("LogActivity", suite.ctx, suite.criadoPor, "maleta", mock.Anything, "CREATE", mock.Anything).Return()

	id, err := suite.service.Create(suite.ctx, suite.validInput())
	assert.NoError(suite.T(), err)
	assert.NotEqual(suite.T(), uuid.Nil, id)
}

func (suite *MaletaServiceTestSuite) TestCreate_Unauthenticated() {
	input := suite.validInput()
	input.CriadoPor = uuid.Nil

	_, err := suite.service.Create(suite.ctx, input)
	assert.ErrorIs(suite.T(), err, common.ErrUnauthenticated)
}

func (suite *MaletaServiceTestSuite) TestCreate_RequiresItens() {
	input := suite.validInput()
	input.Itens = nil

	_, err := suite.service.Create(suite.ctx, input)
	assert.True(suite.T(), common.IsValidation(err))
}

func (suite *MaletaServiceTestSuite) TestCreate_RejectsNonPositiveLineQuantity() {
	input := suite.validInput()
	input.Itens[0].Quantidade = 0

	_, err := suite.service.Create(suite.ctx, input)
	assert.True(suite.T(), common.IsValidation(err))
}

func (suite *MaletaServiceTestSuite) TestCreate_RequiresDueDate() {
	input := suite.validInput()
	input.DataPrevistaDevolucao = time.Time{}

	_, err := suite.service.Create(suite.ctx, input)
	assert.True(suite.T(), common.IsValidation(err))
}

func (suite *MaletaServiceTestSuite) TestCreate_InsufficientStockAborts() {
	stockErr := &common.InsufficientStockError{ItemID: suite.itemID, Available: 1, Requested: 2}
	suite.mockMaletaRepo.On("CreateWithItens", suite.ctx, mock.Anything, mock.Anything).Return(stockErr)

	_, err := suite.service.Create(suite.ctx, suite.validInput())
	assert.True(suite.T(), common.IsInsufficientStock(err))
	// No cache invalidation or audit entry for a rolled-back creation.
	suite.mockCache.AssertNotCalled(suite.T(), "DeleteItem", mock.Anything, mock.Anything)
	suite.mockAuditSvc.AssertNotCalled(suite.T(), "LogActivity", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *MaletaServiceTestSuite) TestReturn_Success() {
	maletaID := uuid.New()
	suite.mockMaletaRepo.On("Return", suite.ctx, maletaID).Return(nil)
	suite.mockMaletaRepo.On("ListItens", suite.ctx, maletaID).Return([]*models.MaletaItem{
		{ItemID: suite.itemID, Quantidade: 2},
	}, nil)
	suite.mockCache.On("DeleteItem", suite.ctx, suite.itemID).Return(nil)
	suite.mockCache.On("DeleteMaletaStats", suite.ctx).Return(nil)
	suite.mockAuditSvc.On("LogActivity", suite.ctx, suite.criadoPor, "maleta", maletaID.String(), "RETURN", mock.Anything).Return()

	err := suite.service.Return(suite.ctx, maletaID, suite.criadoPor)
	assert.NoError(suite.T(), err)
}

func (suite *MaletaServiceTestSuite) TestReturn_AlreadyReturned() {
	maletaID := uuid.New()
	suite.mockMaletaRepo.On("Return", suite.ctx, maletaID).
		Return(fmt.Errorf("maleta %s already devolvida: %w", maletaID.String(), common.ErrInvalidState))

	err := suite.service.Return(suite.ctx, maletaID, suite.criadoPor)
	assert.ErrorIs(suite.T(), err, common.ErrInvalidState)
	suite.mockAuditSvc.AssertNotCalled(suite.T(), "LogActivity", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *MaletaServiceTestSuite) TestReturn_Unauthenticated() {
	err := suite.service.Return(suite.ctx, uuid.New(), uuid.Nil)
	assert.ErrorIs(suite.T(), err, common.ErrUnauthenticated)
}

func (suite *MaletaServiceTestSuite) TestList_SweepsBeforeReading() {
	suite.mockMaletaRepo.On("MarkOverdue", suite.ctx).Return(int64(1), nil)
	suite.mockCache.On("DeleteMaletaStats", suite.ctx).Return(nil)

	maleta := &models.Maleta{ID: uuid.New(), UsuarioID: suite.usuarioID, CriadoPor: suite.criadoPor, Status: models.MaletaAtrasada}
	suite.mockMaletaRepo.On("List", suite.ctx, 50, 0).Return([]*models.Maleta{maleta}, nil)
	suite.mockProfileRepo.On("GetByIDs", suite.ctx, mock.Anything).Return(map[uuid.UUID]*models.Profile{
		suite.usuarioID: {ID: suite.usuarioID, Name: "Ana Souza", Email: "ana@example.com"},
		suite.criadoPor: {ID: suite.criadoPor, Name: "Bruno Lima"},
	}, nil)

	maletas, err := suite.service.List(suite.ctx, 0, 0)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), maletas, 1)
	assert.Equal(suite.T(), "Ana Souza", maletas[0].UsuarioNome)
	assert.Equal(suite.T(), "ana@example.com", maletas[0].UsuarioEmail)
	assert.Equal(suite.T(), "Bruno Lima", maletas[0].CriadoPorNome)
}

func (suite *MaletaServiceTestSuite) TestGet_IncludesItens() {
	maletaID := uuid.New()
	suite.mockMaletaRepo.On("MarkOverdue", suite.ctx).Return(int64(0), nil)

	maleta := &models.Maleta{ID: maletaID, UsuarioID: suite.usuarioID, CriadoPor: suite.criadoPor, Status: models.MaletaAberta}
	suite.mockMaletaRepo.On("GetByID", suite.ctx, maletaID).Return(maleta, nil)
	suite.mockMaletaRepo.On("ListItens", suite.ctx, maletaID).Return([]*models.MaletaItem{
		{ItemID: suite.itemID, Quantidade: 3},
	}, nil)
	suite.mockProfileRepo.On("GetByIDs", suite.ctx, mock.Anything).Return(map[uuid.UUID]*models.Profile{}, nil)

	got, err := suite.service.Get(suite.ctx, maletaID)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), got.Itens, 1)
	assert.Equal(suite.T(), 3, got.Itens[0].Quantidade)
}

func (suite *MaletaServiceTestSuite) TestGet_NotFound() {
	maletaID := uuid.New()
	suite.mockMaletaRepo.On("MarkOverdue", suite.ctx).Return(int64(0), nil)
	suite.mockMaletaRepo.On("GetByID", suite.ctx, maletaID).
		Return(nil, fmt.Errorf("maleta %s: %w", maletaID.String(), common.ErrNotFound))

	_, err := suite.service.Get(suite.ctx, maletaID)
	assert.ErrorIs(suite.T(), err, common.ErrNotFound)
}

func (suite *MaletaServiceTestSuite) TestStats_CacheHitSkipsRepo() {
	suite.mockMaletaRepo.On("MarkOverdue", suite.ctx).Return(int64(0), nil)
	cached := &models.MaletaStats{Abertas: 3, Atrasadas: 1, ItensEmprestados: 12}
	suite.mockCache.On("GetMaletaStats", suite.ctx).Return(cached, nil)

	stats, err := suite.service.Stats(suite.ctx)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), cached, stats)
	suite.mockMaletaRepo.AssertNotCalled(suite.T(), "Stats", mock.Anything)
}

func (suite *MaletaServiceTestSuite) TestStats_CacheMissFetchesAndCaches() {
	suite.mockMaletaRepo.On("MarkOverdue", suite.ctx).Return(int64(0), nil)
	suite.mockCache.On("GetMaletaStats", suite.ctx).Return(nil, nil)

	stats := &models.MaletaStats{Abertas: 2, Atrasadas: 0, ItensEmprestados: 5}
	suite.mockMaletaRepo.On("Stats", suite.ctx).Return(stats, nil)
	suite.mockCache.On("SetMaletaStats", suite.ctx, stats, 1*time.Minute).Return(nil)

	got, err := suite.service.Stats(suite.ctx)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), stats, got)
}

func (suite *MaletaServiceTestSuite) TestSweepOverdue_NoChangesKeepsStatsCache() {
	suite.mockMaletaRepo.On("MarkOverdue", suite.ctx).Return(int64(0), nil)

	updated, err := suite.service.SweepOverdue(suite.ctx)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(0), updated)
	suite.mockCache.AssertNotCalled(suite.T(), "DeleteMaletaStats", mock.Anything)
}

func (suite *MaletaServiceTestSuite) TestSweepOverdue_InvalidatesStatsWhenChanged() {
	suite.mockMaletaRepo.On("MarkOverdue", suite.ctx).Return(int64(2), nil)
	suite.mockCache.On("DeleteMaletaStats", suite.ctx).Return(nil)

	updated, err := suite.service.SweepOverdue(suite.ctx)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(2), updated)
}
