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

// UnlockHandler serves tenant-scoped carrier unlock jobs
type UnlockHandler struct {
	db *gorm.DB
}

// NewUnlockHandler wires the unlock handler
func NewUnlockHandler(db *gorm.DB) *UnlockHandler {
	return &UnlockHandler{db: db}
}

// UnlockRequestBody defines the structure for unlock creation requests
type UnlockRequestBody struct {
	CustomerID uint    `json:"customer_id"`
	Brand      string  `json:"brand"`
	Model      string  `json:"model"`
	IMEI       string  `json:"imei"`
	Carrier    string  `json:"carrier"`
	Country    string  `json:"country"`
	Price      float64 `json:"price"`
}

func validUnlockStatus(status string) bool {
	switch status {
	case model.UnlockStatusPending, model.UnlockStatusInProgress,
		model.UnlockStatusCompleted, model.UnlockStatusFailed:
		return true
	}
	return false
}

// ListUnlocks returns the caller organization's unlock jobs
func (h *UnlockHandler) ListUnlocks(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordTenantOperation("unlocks", "list")
	orgID, _ := middleware.CallerOrganization(c)

	query := h.db.Where("organization_id = ?", orgID)
	if status := c.QueryParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var unlocks []model.UnlockRequest
	if result := query.Order("created_at DESC").Find(&unlocks); result.Error != nil {
		log.Error("Failed to list unlocks", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve unlocks"})
	}

	return c.JSON(http.StatusOK, unlocks)
}

// GetUnlock returns a single unlock job within the caller's organization
func (h *UnlockHandler) GetUnlock(c echo.Context) error {
	orgID, _ := middleware.CallerOrganization(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid unlock ID"})
	}

	var unlock model.UnlockRequest
	result := h.db.Where("id = ? AND organization_id = ?", id, orgID).First(&unlock)
	if result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "unlock not found"})
	}

	return c.JSON(http.StatusOK, unlock)
}

// CreateUnlock opens an unlock job for a customer
func (h *UnlockHandler) CreateUnlock(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordTenantOperation("unlocks", "create")
	orgID, isSuperAdmin := middleware.CallerOrganization(c)

	var req UnlockRequestBody
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if req.CustomerID == 0 || req.IMEI == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "customer_id and imei are required"})
	}

	if !tenant.Owns(h.db, "customers", req.CustomerID, orgID, isSuperAdmin) {
		prometheus.RecordAuthError("ownership_denied")
		return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
	}

	unlock := model.UnlockRequest{
		OrganizationID: orgID,
		CustomerID:     req.CustomerID,
		Brand:          req.Brand,
		Model:          req.Model,
		IMEI:           req.IMEI,
		Carrier:        req.Carrier,
		Country:        req.Country,
		Status:         model.UnlockStatusPending,
		Price:          req.Price,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := h.db.Create(&unlock); result.Error != nil {
		log.Error("Failed to create unlock", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create unlock"})
	}

	log.Info("Unlock created", zap.Uint("unlock_id", unlock.ID), zap.String("imei", unlock.IMEI))
	return c.JSON(http.StatusCreated, unlock)
}

// UpdateUnlockStatus moves an unlock job through its workflow
func (h *UnlockHandler) UpdateUnlockStatus(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordTenantOperation("unlocks", "update")
	orgID, isSuperAdmin := middleware.CallerOrganization(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid unlock ID"})
	}

	if !tenant.Owns(h.db, "unlock_requests", uint(id), orgID, isSuperAdmin) {
		prometheus.RecordAuthError("ownership_denied")
		return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
	}

	var req struct {
		Status string  `json:"status"`
		Price  float64 `json:"price"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if req.Status != "" && !validUnlockStatus(req.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid unlock status"})
	}

	updates := map[string]interface{}{}
	if req.Status != "" {
		updates["status"] = req.Status
	}
	if req.Price > 0 {
		updates["price"] = req.Price
	}
	if len(updates) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nothing to update"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if result := h.db.Model(&model.UnlockRequest{}).Where("id = ?", id).Updates(updates); result.Error != nil {
		log.Error("Failed to update unlock", zap.Uint64("unlock_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update unlock"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Unlock updated successfully"})
}

// DeleteUnlock soft-deletes an unlock job after an ownership check
func (h *UnlockHandler) DeleteUnlock(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordTenantOperation("unlocks", "delete")
	orgID, isSuperAdmin := middleware.CallerOrganization(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid unlock ID"})
	}

	if !tenant.Owns(h.db, "unlock_requests", uint(id), orgID, isSuperAdmin) {
		prometheus.RecordAuthError("ownership_denied")
		return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if result := h.db.Delete(&model.UnlockRequest{}, id); result.Error != nil {
		log.Error("Failed to delete unlock", zap.Uint64("unlock_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete unlock"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Unlock deleted successfully"})
}
