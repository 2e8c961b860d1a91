package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"repairhub/internal/middleware"
	"repairhub/internal/model"
	"repairhub/pkg/logger"
	"repairhub/prometheus"
)

// SettingsHandler serves per-organization settings. Settings are seeded at
// provisioning time but absence of a key is never an error.
type SettingsHandler struct {
	db *gorm.DB
}

// NewSettingsHandler wires the settings handler
func NewSettingsHandler(db *gorm.DB) *SettingsHandler {
	return &SettingsHandler{db: db}
}

// ListSettings returns the caller organization's settings
func (h *SettingsHandler) ListSettings(c echo.Context) error {
	log := logger.FromEcho(c)
	orgID, _ := middleware.CallerOrganization(c)

	defer prometheus.TrackDBOperation("query")(time.Now())
	var settings []model.OrganizationSetting
	if result := h.db.Where("organization_id = ?", orgID).Order("key ASC").Find(&settings); result.Error != nil {
		log.Error("Failed to list settings", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve settings"})
	}

	return c.JSON(http.StatusOK, settings)
}

// UpsertSetting creates or updates one setting key for the caller's organization
func (h *SettingsHandler) UpsertSetting(c echo.Context) error {
	log := logger.FromEcho(c)
	orgID, _ := middleware.CallerOrganization(c)

	var req struct {
		Key       string `json:"key"`
		Value     string `json:"value"`
		ValueType string `json:"value_type"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if req.Key == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "key is required"})
	}
	if req.ValueType == "" {
		req.ValueType = "string"
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	var setting model.OrganizationSetting
	result := h.db.Where("organization_id = ? AND key = ?", orgID, req.Key).First(&setting)
	if result.Error == nil {
		setting.Value = req.Value
		setting.ValueType = req.ValueType
		if err := h.db.Save(&setting).Error; err != nil {
			log.Error("Failed to update setting", zap.String("key", req.Key), zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update setting"})
		}
		return c.JSON(http.StatusOK, setting)
	}

	setting = model.OrganizationSetting{
		OrganizationID: orgID,
		Key:            req.Key,
		Value:          req.Value,
		ValueType:      req.ValueType,
	}
	if err := h.db.Create(&setting).Error; err != nil {
		log.Error("Failed to create setting", zap.String("key", req.Key), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create setting"})
	}

	return c.JSON(http.StatusCreated, setting)
}
