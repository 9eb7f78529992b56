package handlers

import (
	"net/http"
	"strconv"
	"time"

	"estoquehub/internal/common"
	"estoquehub/internal/models"
	"estoquehub/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// MovementHandlers handles HTTP requests for the stock ledger
type MovementHandlers struct {
	movementService services.MovementService
}

func NewMovementHandlers(movementService services.MovementService) *MovementHandlers {
	return &MovementHandlers{movementService: movementService}
}

// CreateMovement handles POST /movements
func (h *MovementHandlers) CreateMovement(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req struct {
		ItemID   string  `json:"item_id"`
		Type     string  `json:"type"`
		Quantity int     `json:"quantity"`
		Note     *string `json:"note"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	itemID, err := common.ValidateUUID(req.ItemID, "item_id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	input := &services.RecordMovementInput{
		ItemID:   itemID,
		Type:     req.Type,
		Quantity: req.Quantity,
		UserID:   userID,
		Note:     req.Note,
	}
	if _, err := h.movementService.Record(ctx, input); err != nil {
		return mapServiceError(err)
	}

	return c.NoContent(http.StatusNoContent)
}

// ListMovements handles GET /movements
func (h *MovementHandlers) ListMovements(c echo.Context) error {
	ctx := c.Request().Context()

	var itemID *uuid.UUID
	if raw := c.QueryParam("item_id"); raw != "" {
		id, err := common.ValidateUUID(raw, "item_id")
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		itemID = &id
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, offset = common.ValidatePaginationParams(limit, offset)

	movements, err := h.movementService.List(ctx, itemID, limit, offset)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"movements": movements,
		"count":     len(movements),
	})
}

// AggregateMovements handles GET /movements/aggregate
func (h *MovementHandlers) AggregateMovements(c echo.Context) error {
	ctx := c.Request().Context()

	filter := &models.MovementFilter{}

	if raw := c.QueryParam("item_id"); raw != "" {
		id, err := common.ValidateUUID(raw, "item_id")
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		filter.ItemID = &id
	}
	if raw := c.QueryParam("category_id"); raw != "" {
		id, err := common.ValidateUUID(raw, "category_id")
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		filter.CategoryID = &id
	}

	start, err := parseDateParam(c.QueryParam("start_date"), "start_date")
	if err != nil {
		return err
	}
	filter.StartDate = start

	end, err := parseDateParam(c.QueryParam("end_date"), "end_date")
	if err != nil {
		return err
	}
	filter.EndDate = end

	aggregates, err := h.movementService.Aggregate(ctx, filter)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(http.StatusOK, aggregates)
}

// parseDateParam accepts YYYY-MM-DD or RFC3339 timestamps.
func parseDateParam(raw, field string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return &t, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	return nil, echo.NewHTTPError(http.StatusBadRequest, field+" must be YYYY-MM-DD or RFC3339")
}
