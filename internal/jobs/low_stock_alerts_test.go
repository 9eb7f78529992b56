package jobs

import (
	"context"
	"errors"
	"testing"

	"estoquehub/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockItemRepository struct {
	mock.Mock
}

func (m *MockItemRepository) Create(ctx context.Context, item *models.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Item), args.Error(1)
}

func (m *MockItemRepository) GetByBarcode(ctx context.Context, barcode string) (*models.Item, error) {
	args := m.Called(ctx, barcode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Item), args.Error(1)
}

func (m *MockItemRepository) Update(ctx context.Context, item *models.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockItemRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockItemRepository) List(ctx context.Context, activeOnly bool, limit, offset int) ([]*models.Item, error) {
	args := m.Called(ctx, activeOnly, limit, offset)
	return args.Get(0).([]*models.Item), args.Error(1)
}

func (m *MockItemRepository) ListIDsByCategory(ctx context.Context, categoryID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, categoryID)
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockItemRepository) LowStock(ctx context.Context) ([]*models.Item, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Item), args.Error(1)
}

func (m *MockItemRepository) Search(ctx context.Context, filter *models.ItemSearchFilter) ([]*models.Item, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*models.Item), args.Error(1)
}

func (m *MockItemRepository) NextBarcode(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockItemRepository) SetPhotoURL(ctx context.Context, id uuid.UUID, photoURL string) error {
	args := m.Called(ctx, id, photoURL)
	return args.Error(0)
}

func TestCheckLowStock_BuildsAlertsFromRepo(t *testing.T) {
	repo := &MockItemRepository{}
	svc := NewLowStockAlertService(repo)

	items := []*models.Item{
		{ID: uuid.New(), Name: "Multimeter", Barcode: "ALM-000001", Location: "A1", Quantity: 1, MinQuantity: 3},
		{ID: uuid.New(), Name: "Drill", Barcode: "ALM-000002", Location: "B4", Quantity: 0, MinQuantity: 2},
	}
	repo.On("LowStock", mock.Anything).Return(items, nil)

	alerts, err := svc.CheckLowStock(context.Background())
	assert.NoError(t, err)
	assert.Len(t, alerts, 2)
	assert.Equal(t, "Multimeter", alerts[0].ItemName)
	assert.Equal(t, 1, alerts[0].CurrentStock)
	assert.Equal(t, 3, alerts[0].MinQuantity)
	assert.Equal(t, "ALM-000002", alerts[1].Barcode)

	repo.AssertExpectations(t)
}

func TestCheckLowStock_EmptyIsNoAlerts(t *testing.T) {
	repo := &MockItemRepository{}
	svc := NewLowStockAlertService(repo)

	repo.On("LowStock", mock.Anything).Return([]*models.Item{}, nil)

	alerts, err := svc.CheckLowStock(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestScheduledLowStockCheck_PropagatesRepoError(t *testing.T) {
	repo := &MockItemRepository{}
	svc := NewLowStockAlertService(repo)

	repo.On("LowStock", mock.Anything).Return(nil, errors.New("connection refused"))

	err := svc.ScheduledLowStockCheck(context.Background())
	assert.Error(t, err)
}
