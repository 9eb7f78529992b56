package handlers

import (
	"errors"
	"log"
	"net/http"

	"estoquehub/internal/common"

	"github.com/labstack/echo/v4"
)

// mapServiceError translates the business-rule error taxonomy onto HTTP
// statuses. Anything unrecognized is a 500 with the detail kept server-side.
func mapServiceError(err error) error {
	var verr *common.ValidationError
	if errors.As(err, &verr) {
		return echo.NewHTTPError(http.StatusBadRequest, verr.Error())
	}

	var stockErr *common.InsufficientStockError
	if errors.As(err, &stockErr) {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, map[string]interface{}{
			"message":   stockErr.Error(),
			"item_id":   stockErr.ItemID.String(),
			"available": stockErr.Available,
			"requested": stockErr.Requested,
		})
	}

	switch {
	case errors.Is(err, common.ErrUnauthenticated):
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	case errors.Is(err, common.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Resource not found")
	case errors.Is(err, common.ErrInvalidState):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}

	log.Printf("Internal error: %v", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
}
