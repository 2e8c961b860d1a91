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

// RepairHandler serves tenant-scoped repair orders
type RepairHandler struct {
	db *gorm.DB
}

// NewRepairHandler wires the repair handler
func NewRepairHandler(db *gorm.DB) *RepairHandler {
	return &RepairHandler{db: db}
}

// RepairRequest defines the structure for repair creation requests
type RepairRequest struct {
	CustomerID    uint    `json:"customer_id"`
	DeviceID      uint    `json:"device_id"`
	Problem       string  `json:"problem"`
	EstimatedCost float64 `json:"estimated_cost"`
	WarrantyDays  int     `json:"warranty_days"`
}

// RepairUpdateRequest defines the structure for repair status/diagnosis updates
type RepairUpdateRequest struct {
	TechnicianID *uint   `json:"technician_id"`
	Diagnosis    string  `json:"diagnosis"`
	Status       string  `json:"status"`
	FinalCost    float64 `json:"final_cost"`
}

func validRepairStatus(status string) bool {
	switch status {
	case model.RepairStatusReceived, model.RepairStatusDiagnosed, model.RepairStatusInProgress,
		model.RepairStatusCompleted, model.RepairStatusDelivered, model.RepairStatusCancelled:
		return true
	}
	return false
}

// ListRepairs returns the caller organization's repair orders
func (h *RepairHandler) ListRepairs(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordTenantOperation("repairs", "list")
	orgID, _ := middleware.CallerOrganization(c)

	query := h.db.Where("organization_id = ?", orgID)
	if status := c.QueryParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if technicianID := c.QueryParam("technician_id"); technicianID != "" {
		query = query.Where("technician_id = ?", technicianID)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var repairs []model.Repair
	if result := query.Order("received_at DESC").Find(&repairs); result.Error != nil {
		log.Error("Failed to list repairs", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve repairs"})
	}

	return c.JSON(http.StatusOK, repairs)
}

// GetRepair returns a single repair order within the caller's organization
func (h *RepairHandler) GetRepair(c echo.Context) error {
	orgID, _ := middleware.CallerOrganization(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid repair ID"})
	}

	var repair model.Repair
	result := h.db.Where("id = ? AND organization_id = ?", id, orgID).First(&repair)
	if result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "repair not found"})
	}

	return c.JSON(http.StatusOK, repair)
}

// CreateRepair opens a repair order for a customer's device
func (h *RepairHandler) CreateRepair(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordTenantOperation("repairs", "create")
	orgID, isSuperAdmin := middleware.CallerOrganization(c)

	var req RepairRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if req.CustomerID == 0 || req.DeviceID == 0 || req.Problem == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "customer_id, device_id and problem are required"})
	}

	if !tenant.Owns(h.db, "customers", req.CustomerID, orgID, isSuperAdmin) ||
		!tenant.Owns(h.db, "devices", req.DeviceID, orgID, isSuperAdmin) {
		prometheus.RecordAuthError("ownership_denied")
		return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
	}

	repair := model.Repair{
		OrganizationID: orgID,
		CustomerID:     req.CustomerID,
		DeviceID:       req.DeviceID,
		Problem:        req.Problem,
		Status:         model.RepairStatusReceived,
		EstimatedCost:  req.EstimatedCost,
		WarrantyDays:   req.WarrantyDays,
		ReceivedAt:     time.Now(),
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := h.db.Create(&repair); result.Error != nil {
		log.Error("Failed to create repair", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create repair"})
	}

	log.Info("Repair created", zap.Uint("repair_id", repair.ID), zap.Uint("device_id", repair.DeviceID))
	return c.JSON(http.StatusCreated, repair)
}

// UpdateRepair updates status, diagnosis, assignment or final cost of a repair
func (h *RepairHandler) UpdateRepair(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordTenantOperation("repairs", "update")
	orgID, isSuperAdmin := middleware.CallerOrganization(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid repair ID"})
	}

	if !tenant.Owns(h.db, "repairs", uint(id), orgID, isSuperAdmin) {
		prometheus.RecordAuthError("ownership_denied")
		return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
	}

	var req RepairUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	updates := map[string]interface{}{}
	if req.Status != "" {
		if !validRepairStatus(req.Status) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid repair status"})
		}
		updates["status"] = req.Status
		if req.Status == model.RepairStatusDelivered {
			updates["delivered_at"] = time.Now()
		}
	}
	if req.Diagnosis != "" {
		updates["diagnosis"] = req.Diagnosis
	}
	if req.TechnicianID != nil {
		updates["technician_id"] = *req.TechnicianID
	}
	if req.FinalCost > 0 {
		updates["final_cost"] = req.FinalCost
	}
	if len(updates) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nothing to update"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if result := h.db.Model(&model.Repair{}).Where("id = ?", id).Updates(updates); result.Error != nil {
		log.Error("Failed to update repair", zap.Uint64("repair_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update repair"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Repair updated successfully"})
}

// DeleteRepair soft-deletes a repair order after an ownership check
func (h *RepairHandler) DeleteRepair(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordTenantOperation("repairs", "delete")
	orgID, isSuperAdmin := middleware.CallerOrganization(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid repair ID"})
	}

	if !tenant.Owns(h.db, "repairs", uint(id), orgID, isSuperAdmin) {
		prometheus.RecordAuthError("ownership_denied")
		return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if result := h.db.Delete(&model.Repair{}, id); result.Error != nil {
		log.Error("Failed to delete repair", zap.Uint64("repair_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete repair"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Repair deleted successfully"})
}
