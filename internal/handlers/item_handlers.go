package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"estoquehub/internal/common"
	"estoquehub/internal/models"
	"estoquehub/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const photoURLExpiry = 24 * time.Hour

// ItemHandlers handles HTTP requests for catalog items
type ItemHandlers struct {
	itemService services.ItemService
	minioSvc    services.MinioService
	photoBucket string
}

func NewItemHandlers(itemService services.ItemService, minioSvc services.MinioService, photoBucket string) *ItemHandlers {
	return &ItemHandlers{
		itemService: itemService,
		minioSvc:    minioSvc,
		photoBucket: photoBucket,
	}
}

type itemRequest struct {
	Name         string  `json:"name"`
	Brand        string  `json:"brand"`
	Model        string  `json:"model"`
	SerialNumber *string `json:"serial_number"`
	Quantity     int     `json:"quantity"`
	MinQuantity  int     `json:"min_quantity"`
	Location     string  `json:"location"`
	CategoryID   *string `json:"category_id"`
	Condition    *string `json:"condition"`
}

func (r *itemRequest) categoryUUID() (*uuid.UUID, error) {
	if r.CategoryID == nil || strings.TrimSpace(*r.CategoryID) == "" {
		return nil, nil
	}
	id, err := common.ValidateUUID(*r.CategoryID, "category_id")
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// CreateItem handles POST /items
func (h *ItemHandlers) CreateItem(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req itemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	categoryID, err := req.categoryUUID()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	item, err := h.itemService.CreateItem(ctx, userID, &services.CreateItemInput{
		Name:         req.Name,
		Brand:        req.Brand,
		Model:        req.Model,
		SerialNumber: req.SerialNumber,
		Quantity:     req.Quantity,
		MinQuantity:  req.MinQuantity,
		Location:     req.Location,
		CategoryID:   categoryID,
		Condition:    req.Condition,
	})
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(http.StatusCreated, item)
}

// GetItem handles GET /items/:id
func (h *ItemHandlers) GetItem(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	item, err := h.itemService.GetItem(c.Request().Context(), id)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, item)
}

// GetItemByBarcode handles GET /items/barcode/:barcode
func (h *ItemHandlers) GetItemByBarcode(c echo.Context) error {
	item, err := h.itemService.GetItemByBarcode(c.Request().Context(), c.Param("barcode"))
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, item)
}

// UpdateItem handles PUT /items/:id
func (h *ItemHandlers) UpdateItem(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var req itemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	categoryID, err := req.categoryUUID()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	item, err := h.itemService.UpdateItem(ctx, userID, id, &services.UpdateItemInput{
		Name:         req.Name,
		Brand:        req.Brand,
		Model:        req.Model,
		SerialNumber: req.SerialNumber,
		MinQuantity:  req.MinQuantity,
		Location:     req.Location,
		CategoryID:   categoryID,
		Condition:    req.Condition,
	})
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(http.StatusOK, item)
}

// DeleteItem handles DELETE /items/:id (soft delete)
func (h *ItemHandlers) DeleteItem(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.itemService.DeactivateItem(ctx, userID, id); err != nil {
		return mapServiceError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListItems handles GET /items
func (h *ItemHandlers) ListItems(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, offset = common.ValidatePaginationParams(limit, offset)

	activeOnly := c.QueryParam("include_inactive") != "true"

	items, err := h.itemService.ListItems(c.Request().Context(), activeOnly, limit, offset)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"items": items,
		"count": len(items),
	})
}

// SearchItems handles GET /items/search
func (h *ItemHandlers) SearchItems(c echo.Context) error {
	filter := &models.ItemSearchFilter{
		Query:      c.QueryParam("q"),
		SortBy:     c.QueryParam("sort_by"),
		SortOrder:  c.QueryParam("sort_order"),
		ActiveOnly: c.QueryParam("include_inactive") != "true",
		LowStock:   c.QueryParam("low_stock") == "true",
	}

	if raw := c.QueryParam("category_id"); raw != "" {
		id, err := common.ValidateUUID(raw, "category_id")
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		filter.CategoryID = &id
	}

	filter.Limit, _ = strconv.Atoi(c.QueryParam("limit"))
	filter.Offset, _ = strconv.Atoi(c.QueryParam("offset"))
	filter.Limit, filter.Offset = common.ValidatePaginationParams(filter.Limit, filter.Offset)

	items, err := h.itemService.SearchItems(c.Request().Context(), filter)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"items": items,
		"count": len(items),
	})
}

// LowStockItems handles GET /items/low-stock
func (h *ItemHandlers) LowStockItems(c echo.Context) error {
	items, err := h.itemService.LowStockItems(c.Request().Context())
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"items": items,
		"count": len(items),
	})
}

// UploadItemPhoto handles POST /items/:id/photo (multipart form, field "photo")
func (h *ItemHandlers) UploadItemPhoto(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	// Item must exist before we accept the upload.
	if _, err := h.itemService.GetItem(ctx, id); err != nil {
		return mapServiceError(err)
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "photo file is required")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Failed to read photo file")
	}
	defer src.Close()

	objectName := fmt.Sprintf("items/%s/%d_%s", id.String(), time.Now().Unix(), fileHeader.Filename)
	contentType := fileHeader.Header.Get("Content-Type")

	if err := h.minioSvc.UploadPhoto(ctx, h.photoBucket, objectName, contentType, src, fileHeader.Size); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to store photo")
	}

	photoURL, err := h.minioSvc.GetPresignedURL(ctx, h.photoBucket, objectName, photoURLExpiry)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate photo URL")
	}

	if err := h.itemService.SetItemPhoto(ctx, userID, id, photoURL); err != nil {
		return mapServiceError(err)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"photo_url": photoURL,
	})
}
