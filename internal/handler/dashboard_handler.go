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

// DashboardHandler serves aggregate counts for the tenant dashboard
type DashboardHandler struct {
	db *gorm.DB
}

// NewDashboardHandler wires the dashboard handler
func NewDashboardHandler(db *gorm.DB) *DashboardHandler {
	return &DashboardHandler{db: db}
}

// GetStats returns the caller organization's headline numbers
func (h *DashboardHandler) GetStats(c echo.Context) error {
	log := logger.FromEcho(c)
	orgID, _ := middleware.CallerOrganization(c)

	defer prometheus.TrackDBOperation("query")(time.Now())

	var customers, devices, openRepairs, pendingUnlocks int64
	h.db.Model(&model.Customer{}).Where("organization_id = ?", orgID).Count(&customers)
	h.db.Model(&model.Device{}).Where("organization_id = ?", orgID).Count(&devices)
	h.db.Model(&model.Repair{}).
		Where("organization_id = ? AND status NOT IN ?", orgID,
			[]string{model.RepairStatusDelivered, model.RepairStatusCancelled}).
		Count(&openRepairs)
	h.db.Model(&model.UnlockRequest{}).
		Where("organization_id = ? AND status = ?", orgID, model.UnlockStatusPending).
		Count(&pendingUnlocks)

	var salesToday struct {
		Count int64
		Total float64
	}
	startOfDay := time.Now().Truncate(24 * time.Hour)
	row := h.db.Model(&model.Sale{}).
		Select("COUNT(*) AS count, COALESCE(SUM(total), 0) AS total").
		Where("organization_id = ? AND sold_at >= ?", orgID, startOfDay).
		Row()
	if err := row.Scan(&salesToday.Count, &salesToday.Total); err != nil {
		log.Warn("Failed to aggregate today's sales", zap.Error(err))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"customers":       customers,
		"devices":         devices,
		"open_repairs":    openRepairs,
		"pending_unlocks": pendingUnlocks,
		"sales_today": echo.Map{
			"count": salesToday.Count,
			"total": salesToday.Total,
		},
	})
}
