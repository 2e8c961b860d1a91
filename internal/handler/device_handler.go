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

// DeviceHandler serves tenant-scoped device CRUD
type DeviceHandler struct {
	db *gorm.DB
}

// NewDeviceHandler wires the device handler
func NewDeviceHandler(db *gorm.DB) *DeviceHandler {
	return &DeviceHandler{db: db}
}

// DeviceRequest defines the structure for device creation/update requests
type DeviceRequest struct {
	CustomerID   uint   `json:"customer_id"`
	Brand        string `json:"brand"`
	Model        string `json:"model"`
	IMEI         string `json:"imei"`
	SerialNumber string `json:"serial_number"`
	Color        string `json:"color"`
	Condition    string `json:"condition"`
}

// ListDevices returns the caller organization's devices
func (h *DeviceHandler) ListDevices(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordTenantOperation("devices", "list")
	orgID, _ := middleware.CallerOrganization(c)

	query := h.db.Where("organization_id = ?", orgID)
	if customerID := c.QueryParam("customer_id"); customerID != "" {
		query = query.Where("customer_id = ?", customerID)
	}
	if imei := c.QueryParam("imei"); imei != "" {
		query = query.Where("imei = ?", imei)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var devices []model.Device
	if result := query.Order("created_at DESC").Find(&devices); result.Error != nil {
		log.Error("Failed to list devices", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve devices"})
	}

	return c.JSON(http.StatusOK, devices)
}

// GetDevice returns a single device within the caller's organization
func (h *DeviceHandler) GetDevice(c echo.Context) error {
	orgID, _ := middleware.CallerOrganization(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid device ID"})
	}

	var device model.Device
	result := h.db.Where("id = ? AND organization_id = ?", id, orgID).First(&device)
	if result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "device not found"})
	}

	return c.JSON(http.StatusOK, device)
}

// CreateDevice registers a customer's device in the caller's organization
func (h *DeviceHandler) CreateDevice(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordTenantOperation("devices", "create")
	orgID, isSuperAdmin := middleware.CallerOrganization(c)

	var req DeviceRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if req.CustomerID == 0 || req.Brand == "" || req.Model == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "customer_id, brand and model are required"})
	}

	// The referenced customer must belong to the same organization
	if !tenant.Owns(h.db, "customers", req.CustomerID, orgID, isSuperAdmin) {
		prometheus.RecordAuthError("ownership_denied")
		return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
	}

	device := model.Device{
		OrganizationID: orgID,
		CustomerID:     req.CustomerID,
		Brand:          req.Brand,
		Model:          req.Model,
		IMEI:           req.IMEI,
		SerialNumber:   req.SerialNumber,
		Color:          req.Color,
		Condition:      req.Condition,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := h.db.Create(&device); result.Error != nil {
		log.Error("Failed to create device", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create device"})
	}

	log.Info("Device created", zap.Uint("device_id", device.ID), zap.String("imei", device.IMEI))
	return c.JSON(http.StatusCreated, device)
}

// UpdateDevice updates a device after an ownership check
func (h *DeviceHandler) UpdateDevice(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordTenantOperation("devices", "update")
	orgID, isSuperAdmin := middleware.CallerOrganization(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid device ID"})
	}

	if !tenant.Owns(h.db, "devices", uint(id), orgID, isSuperAdmin) {
		prometheus.RecordAuthError("ownership_denied")
		return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
	}

	var req DeviceRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	result := h.db.Model(&model.Device{}).Where("id = ?", id).Updates(model.Device{
		Brand:        req.Brand,
		Model:        req.Model,
		IMEI:         req.IMEI,
		SerialNumber: req.SerialNumber,
		Color:        req.Color,
		Condition:    req.Condition,
	})
	if result.Error != nil {
		log.Error("Failed to update device", zap.Uint64("device_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update device"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Device updated successfully"})
}

// DeleteDevice soft-deletes a device after an ownership check
func (h *DeviceHandler) DeleteDevice(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordTenantOperation("devices", "delete")
	orgID, isSuperAdmin := middleware.CallerOrganization(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid device ID"})
	}

	if !tenant.Owns(h.db, "devices", uint(id), orgID, isSuperAdmin) {
		prometheus.RecordAuthError("ownership_denied")
		return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if result := h.db.Delete(&model.Device{}, id); result.Error != nil {
		log.Error("Failed to delete device", zap.Uint64("device_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete device"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Device deleted successfully"})
}
