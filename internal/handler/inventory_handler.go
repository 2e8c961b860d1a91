package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"repairhub/internal/middleware"
	"repairhub/internal/model"
	"repairhub/internal/tenant"
	"repairhub/pkg/logger"
	"repairhub/prometheus"
)

// InventoryHandler serves tenant-scoped inventory CRUD
type InventoryHandler struct {
	db *gorm.DB
}

// NewInventoryHandler wires the inventory handler
func NewInventoryHandler(db *gorm.DB) *InventoryHandler {
	return &InventoryHandler{db: db}
}

// InventoryRequest defines the structure for inventory item requests
type InventoryRequest struct {
	Name        string  `json:"name"`
	SKU         string  `json:"sku"`
	Category    string  `json:"category"`
	Quantity    int     `json:"quantity"`
	MinQuantity int     `json:"min_quantity"`
	CostPrice   float64 `json:"cost_price"`
	SalePrice   float64 `json:"sale_price"`
}

// ListItems returns the caller organization's inventory, optionally only
// items at or below their minimum stock level
func (h *InventoryHandler) ListItems(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordTenantOperation("inventory", "list")
	orgID, _ := middleware.CallerOrganization(c)

	query := h.db.Where("organization_id = ?", orgID)
	if category := c.QueryParam("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if lowStock := c.QueryParam("low_stock"); lowStock != "" {
		if low, err := strconv.ParseBool(lowStock); err == nil && low {
			query = query.Where("quantity <= min_quantity")
		}
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var items []model.InventoryItem
	if result := query.Order("name ASC").Find(&items); result.Error != nil {
		log.Error("Failed to list inventory", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve inventory"})
	}

	return c.JSON(http.StatusOK, items)
}

// GetItem returns a single inventory item within the caller's organization
func (h *InventoryHandler) GetItem(c echo.Context) error {
	orgID, _ := middleware.CallerOrganization(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item ID"})
	}

	var item model.InventoryItem
	result := h.db.Where("id = ? AND organization_id = ?", id, orgID).First(&item)
	if result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "item not found"})
	}

	return c.JSON(http.StatusOK, item)
}

// CreateItem adds an inventory item to the caller's organization
func (h *InventoryHandler) CreateItem(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordTenantOperation("inventory", "create")
	orgID, _ := middleware.CallerOrganization(c)

	var req InventoryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	// SKU uniqueness is per organization
	if req.SKU != "" {
		var count int64
		h.db.Model(&model.InventoryItem{}).
			Where("organization_id = ? AND sku = ?", orgID, req.SKU).Count(&count)
		if count > 0 {
			return c.JSON(http.StatusConflict, echo.Map{"error": "item with this SKU already exists"})
		}
	}

	item := model.InventoryItem{
		OrganizationID: orgID,
		Name:           req.Name,
		SKU:            req.SKU,
		Category:       req.Category,
		Quantity:       req.Quantity,
		MinQuantity:    req.MinQuantity,
		CostPrice:      req.CostPrice,
		SalePrice:      req.SalePrice,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := h.db.Create(&item); result.Error != nil {
		log.Error("Failed to create inventory item", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create item"})
	}

	log.Info("Inventory item created", zap.Uint("item_id", item.ID), zap.String("sku", item.SKU))
	return c.JSON(http.StatusCreated, item)
}

// UpdateItem updates an inventory item after an ownership check
func (h *InventoryHandler) UpdateItem(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordTenantOperation("inventory", "update")
	orgID, isSuperAdmin := middleware.CallerOrganization(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item ID"})
	}

	if !tenant.Owns(h.db, "inventory_items", uint(id), orgID, isSuperAdmin) {
		prometheus.RecordAuthError("ownership_denied")
		return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
	}

	var req InventoryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	result := h.db.Model(&model.InventoryItem{}).Where("id = ?", id).Updates(map[string]interface{}{
		"name":         req.Name,
		"sku":          req.SKU,
		"category":     req.Category,
		"quantity":     req.Quantity,
		"min_quantity": req.MinQuantity,
		"cost_price":   req.CostPrice,
		"sale_price":   req.SalePrice,
	})
	if result.Error != nil {
		log.Error("Failed to update inventory item", zap.Uint64("item_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update item"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Item updated successfully"})
}

// DeleteItem soft-deletes an inventory item after an ownership check
func (h *InventoryHandler) DeleteItem(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordTenantOperation("inventory", "delete")
	orgID, isSuperAdmin := middleware.CallerOrganization(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item ID"})
	}

	if !tenant.Owns(h.db, "inventory_items", uint(id), orgID, isSuperAdmin) {
		prometheus.RecordAuthError("ownership_denied")
		return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if result := h.db.Delete(&model.InventoryItem{}, id); result.Error != nil {
		log.Error("Failed to delete inventory item", zap.Uint64("item_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete item"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Item deleted successfully"})
}
