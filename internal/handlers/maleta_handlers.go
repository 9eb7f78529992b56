package handlers

import (
	"net/http"
	"strconv"

	"estoquehub/internal/common"
	"estoquehub/internal/models"
	"estoquehub/internal/services"

	"github.com/labstack/echo/v4"
)

// MaletaHandlers handles HTTP requests for the loan lifecycle
type MaletaHandlers struct {
	maletaService services.MaletaService
}

func NewMaletaHandlers(maletaService services.MaletaService) *MaletaHandlers {
	return &MaletaHandlers{maletaService: maletaService}
}

// CreateMaleta handles POST /maletas
func (h *MaletaHandlers) CreateMaleta(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req struct {
		UsuarioID             string  `json:"usuario_id"`
		DataPrevistaDevolucao string  `json:"data_prevista_devolucao"`
		Observacoes           *string `json:"observacoes"`
		Itens                 []struct {
			ItemID      string  `json:"item_id"`
			Quantidade  int     `json:"quantidade"`
			NumeroSerie *string `json:"numero_serie"`
		} `json:"itens"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	usuarioID, err := common.ValidateUUID(req.UsuarioID, "usuario_id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	due, err := parseDateParam(req.DataPrevistaDevolucao, "data_prevista_devolucao")
	if err != nil {
		return err
	}
	if due == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "data_prevista_devolucao is required")
	}

	itens := make([]models.MaletaItemInput, 0, len(req.Itens))
	for _, line := range req.Itens {
		itemID, err := common.ValidateUUID(line.ItemID, "itens.item_id")
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		itens = append(itens, models.MaletaItemInput{
			ItemID:      itemID,
			Quantidade:  line.Quantidade,
			NumeroSerie: line.NumeroSerie,
		})
	}

	input := &services.CreateMaletaInput{
		UsuarioID:             usuarioID,
		DataPrevistaDevolucao: *due,
		Observacoes:           req.Observacoes,
		CriadoPor:             userID,
		Itens:                 itens,
	}

	maletaID, err := h.maletaService.Create(ctx, input)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(http.StatusCreated, map[string]string{
		"id": maletaID.String(),
	})
}

// ReturnMaleta handles POST /maletas/:id/return
func (h *MaletaHandlers) ReturnMaleta(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	maletaID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.maletaService.Return(ctx, maletaID, userID); err != nil {
		return mapServiceError(err)
	}

	maleta, err := h.maletaService.Get(ctx, maletaID)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(http.StatusOK, maleta)
}

// ListMaletas handles GET /maletas
func (h *MaletaHandlers) ListMaletas(c echo.Context) error {
	ctx := c.Request().Context()

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, offset = common.ValidatePaginationParams(limit, offset)

	maletas, err := h.maletaService.List(ctx, limit, offset)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"maletas": maletas,
		"count":   len(maletas),
	})
}

// GetMaleta handles GET /maletas/:id
func (h *MaletaHandlers) GetMaleta(c echo.Context) error {
	ctx := c.Request().Context()

	maletaID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	maleta, err := h.maletaService.Get(ctx, maletaID)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(http.StatusOK, maleta)
}

// GetMaletaStats handles GET /maletas/stats
func (h *MaletaHandlers) GetMaletaStats(c echo.Context) error {
	stats, err := h.maletaService.Stats(c.Request().Context())
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, stats)
}
