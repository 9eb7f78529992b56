package jobs

import (
	"context"
	"log"

	"estoquehub/internal/repositories"

	"github.com/google/uuid"
)

type LowStockAlertService struct {
	itemRepo repositories.ItemRepository
}

type LowStockAlert struct {
	ItemID       uuid.UUID
	ItemName     string
	Barcode      string
	Location     string
	CurrentStock int
	MinQuantity  int
}

func NewLowStockAlertService(itemRepo repositories.ItemRepository) *LowStockAlertService {
	return &LowStockAlertService{itemRepo: itemRepo}
}

// CheckLowStock returns one alert per active item at or below its own
// minimum quantity.
func (a *LowStockAlertService) CheckLowStock(ctx context.Context) ([]LowStockAlert, error) {
	items, err := a.itemRepo.LowStock(ctx)
	if err != nil {
		log.Printf("Failed to list low stock items: %v", err)
		return nil, err
	}

	alerts := make([]LowStockAlert, 0, len(items))
	for _, item := range items {
		alerts = append(alerts, LowStockAlert{
			ItemID:       item.ID,
			ItemName:     item.Name,
			Barcode:      item.Barcode,
			Location:     item.Location,
			CurrentStock: item.Quantity,
			MinQuantity:  item.MinQuantity,
		})
	}
	return alerts, nil
}

func (a *LowStockAlertService) LogLowStockAlerts(alerts []LowStockAlert) {
	if len(alerts) == 0 {
		log.Println("No low stock alerts to log")
		return
	}

	log.Printf("Low stock alerts (%d items):", len(alerts))
	for _, alert := range alerts {
		log.Printf("- Item '%s' (%s) at %s has %d units (minimum: %d)",
			alert.ItemName,
			alert.Barcode,
			alert.Location,
			alert.CurrentStock,
			alert.MinQuantity)
	}
}

// ScheduledLowStockCheck is what the background scheduler runs.
func (a *LowStockAlertService) ScheduledLowStockCheck(ctx context.Context) error {
	log.Println("Starting scheduled low stock check")

	alerts, err := a.CheckLowStock(ctx)
	if err != nil {
		return err
	}
	a.LogLowStockAlerts(alerts)

	log.Println("Completed scheduled low stock check")
	return nil
}
