package handlers

import (
	"net/http"
	"strconv"

	"estoquehub/internal/common"
	"estoquehub/internal/models"
	"estoquehub/internal/services"

	"github.com/labstack/echo/v4"
)

// AuditLogsHandlers handles the admin-only audit trail endpoints
type AuditLogsHandlers struct {
	auditService services.AuditLogsService
}

func NewAuditLogsHandlers(auditService services.AuditLogsService) *AuditLogsHandlers {
	return &AuditLogsHandlers{auditService: auditService}
}

// ListAuditLogs handles GET /audit-logs
func (h *AuditLogsHandlers) ListAuditLogs(c echo.Context) error {
	filters := &models.AuditLogFilters{}

	if raw := c.QueryParam("entity"); raw != "" {
		filters.Entity = &raw
	}
	if raw := c.QueryParam("entity_id"); raw != "" {
		filters.EntityID = &raw
	}
	if raw := c.QueryParam("action"); raw != "" {
		filters.Action = &raw
	}
	if raw := c.QueryParam("user_id"); raw != "" {
		id, err := common.ValidateUUID(raw, "user_id")
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		filters.UserID = &id
	}

	start, err := parseDateParam(c.QueryParam("start_date"), "start_date")
	if err != nil {
		return err
	}
	filters.StartDate = start

	end, err := parseDateParam(c.QueryParam("end_date"), "end_date")
	if err != nil {
		return err
	}
	filters.EndDate = end

	filters.Limit, _ = strconv.Atoi(c.QueryParam("limit"))
	filters.Offset, _ = strconv.Atoi(c.QueryParam("offset"))
	filters.Limit, filters.Offset = common.ValidatePaginationParams(filters.Limit, filters.Offset)

	logs, err := h.auditService.ListAuditLogs(c.Request().Context(), filters)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"audit_logs": logs,
		"count":      len(logs),
	})
}
