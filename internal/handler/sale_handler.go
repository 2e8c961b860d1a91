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

// SaleHandler serves tenant-scoped point-of-sale transactions
type SaleHandler struct {
	db *gorm.DB
}

// NewSaleHandler wires the sale handler
func NewSaleHandler(db *gorm.DB) *SaleHandler {
	return &SaleHandler{db: db}
}

// SaleRequest defines the structure for sale creation requests
type SaleRequest struct {
	CustomerID      *uint   `json:"customer_id"`
	InventoryItemID uint    `json:"inventory_item_id"`
	Quantity        int     `json:"quantity"`
	UnitPrice       float64 `json:"unit_price"`
	PaymentMethod   string  `json:"payment_method"`
}

// ListSales returns the caller organization's sales
func (h *SaleHandler) ListSales(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordTenantOperation("sales", "list")
	orgID, _ := middleware.CallerOrganization(c)

	query := h.db.Where("organization_id = ?", orgID)
	if from := c.QueryParam("from"); from != "" {
		if t, err := time.Parse("2006-01-02", from); err == nil {
			query = query.Where("sold_at >= ?", t)
		}
	}
	if to := c.QueryParam("to"); to != "" {
		if t, err := time.Parse("2006-01-02", to); err == nil {
			query = query.Where("sold_at < ?", t.AddDate(0, 0, 1))
		}
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var sales []model.Sale
	if result := query.Order("sold_at DESC").Find(&sales); result.Error != nil {
		log.Error("Failed to list sales", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve sales"})
	}

	return c.JSON(http.StatusOK, sales)
}

// GetSale returns a single sale within the caller's organization
func (h *SaleHandler) GetSale(c echo.Context) error {
	orgID, _ := middleware.CallerOrganization(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid sale ID"})
	}

	var sale model.Sale
	result := h.db.Where("id = ? AND organization_id = ?", id, orgID).First(&sale)
	if result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "sale not found"})
	}

	return c.JSON(http.StatusOK, sale)
}

// CreateSale records a sale and decrements stock in one transaction
func (h *SaleHandler) CreateSale(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordTenantOperation("sales", "create")
	orgID, isSuperAdmin := middleware.CallerOrganization(c)

	user, ok := middleware.CallerUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var req SaleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if req.InventoryItemID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "inventory_item_id is required"})
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	if !tenant.Owns(h.db, "inventory_items", req.InventoryItemID, orgID, isSuperAdmin) {
		prometheus.RecordAuthError("ownership_denied")
		return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
	}
	if req.CustomerID != nil && !tenant.Owns(h.db, "customers", *req.CustomerID, orgID, isSuperAdmin) {
		prometheus.RecordAuthError("ownership_denied")
		return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	tx := h.db.Begin()
	if tx.Error != nil {
		log.Error("Failed to begin transaction", zap.Error(tx.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	var item model.InventoryItem
	if result := tx.First(&item, req.InventoryItemID); result.Error != nil {
		tx.Rollback()
		return c.JSON(http.StatusNotFound, echo.Map{"error": "item not found"})
	}
	if item.Quantity < req.Quantity {
		tx.Rollback()
		return c.JSON(http.StatusConflict, echo.Map{"error": "insufficient stock"})
	}

	unitPrice := req.UnitPrice
	if unitPrice == 0 {
		unitPrice = item.SalePrice
	}

	sale := model.Sale{
		OrganizationID:  orgID,
		CustomerID:      req.CustomerID,
		UserID:          user.ID,
		InventoryItemID: item.ID,
		Quantity:        req.Quantity,
		UnitPrice:       unitPrice,
		Total:           unitPrice * float64(req.Quantity),
		PaymentMethod:   req.PaymentMethod,
		SoldAt:          time.Now(),
	}

	if result := tx.Create(&sale); result.Error != nil {
		tx.Rollback()
		log.Error("Failed to create sale", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create sale"})
	}

	if result := tx.Model(&item).Update("quantity", item.Quantity-req.Quantity); result.Error != nil {
		tx.Rollback()
		log.Error("Failed to decrement stock", zap.Uint("item_id", item.ID), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update stock"})
	}

	if err := tx.Commit().Error; err != nil {
		log.Error("Failed to commit transaction", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "transaction commit failed"})
	}

	log.Info("Sale recorded",
		zap.Uint("sale_id", sale.ID),
		zap.Uint("item_id", item.ID),
		zap.Int("quantity", sale.Quantity),
		zap.Float64("total", sale.Total))
	return c.JSON(http.StatusCreated, sale)
}

// DeleteSale removes a sale after an ownership check. Stock is not restocked
// automatically; corrections go through inventory updates.
func (h *SaleHandler) DeleteSale(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordTenantOperation("sales", "delete")
	orgID, isSuperAdmin := middleware.CallerOrganization(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid sale ID"})
	}

	if !tenant.Owns(h.db, "sales", uint(id), orgID, isSuperAdmin) {
		prometheus.RecordAuthError("ownership_denied")
		return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if result := h.db.Delete(&model.Sale{}, id); result.Error != nil {
		log.Error("Failed to delete sale", zap.Uint64("sale_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete sale"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Sale deleted successfully"})
}
