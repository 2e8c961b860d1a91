package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"repairhub/internal/model"
	"repairhub/internal/provisioning"
	"repairhub/pkg/logger"
	"repairhub/prometheus"
)

// AdminHandler serves the super-admin surface: listing signup requests,
// approving them into live tenants and rejecting them with a reason
type AdminHandler struct {
	svc *provisioning.Service
	db  *gorm.DB
}

// NewAdminHandler wires the admin handler
func NewAdminHandler(svc *provisioning.Service, db *gorm.DB) *AdminHandler {
	return &AdminHandler{svc: svc, db: db}
}

// ListRequests returns organization requests, optionally filtered by status
func (h *AdminHandler) ListRequests(c echo.Context) error {
	log := logger.FromEcho(c)

	status := c.QueryParam("status")
	if status != "" && status != model.RequestStatusPending &&
		status != model.RequestStatusApproved && status != model.RequestStatusRejected {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status filter"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	requests, err := h.svc.ListRequests(c.Request().Context(), status)
	if err != nil {
		log.Error("Failed to list organization requests", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve requests"})
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": requests})
}

// ApproveRequest provisions a tenant from a pending request
func (h *AdminHandler) ApproveRequest(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordProvisioning("approve")

	var req struct {
		RequestID uint `json:"requestId"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse approval request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.RequestID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "requestId is required"})
	}

	result, err := h.svc.Approve(c.Request().Context(), req.RequestID)
	if err != nil {
		switch {
		case errors.Is(err, provisioning.ErrRequestNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "organization request not found"})
		case errors.Is(err, provisioning.ErrRequestAlreadyProcessed):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "request has already been processed"})
		case errors.Is(err, provisioning.ErrAuthIdentityCreateFailed),
			errors.Is(err, provisioning.ErrOwnerUserCreateFailed):
			prometheus.RecordProvisioning("compensate")
			log.Error("Provisioning failed after compensation", zap.Uint("request_id", req.RequestID), zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "organization provisioning failed"})
		default:
			log.Error("Provisioning failed", zap.Uint("request_id", req.RequestID), zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "organization provisioning failed"})
		}
	}

	prometheus.ActiveOrganizationsGauge.Inc()
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"organization": result.Organization,
			"user":         result.User,
			"authUser":     result.AuthUser,
		},
	})
}

// RejectRequest marks a pending request rejected with a reason
func (h *AdminHandler) RejectRequest(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordProvisioning("reject")

	var req struct {
		RequestID       uint   `json:"requestId"`
		RejectionReason string `json:"rejectionReason"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse rejection request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.RequestID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "requestId is required"})
	}

	result, err := h.svc.Reject(c.Request().Context(), req.RequestID, req.RejectionReason)
	if err != nil {
		switch {
		case errors.Is(err, provisioning.ErrReasonTooShort):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "rejection reason must be at least 10 characters"})
		case errors.Is(err, provisioning.ErrRequestNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "organization request not found"})
		case errors.Is(err, provisioning.ErrRequestAlreadyProcessed):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "request has already been processed"})
		default:
			log.Error("Rejection failed", zap.Uint("request_id", req.RequestID), zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "rejection failed"})
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"requestId":        result.RequestID,
			"organizationName": result.OrganizationName,
			"rejectionReason":  result.RejectionReason,
		},
	})
}

// ListOrganizations returns all provisioned organizations for the admin dashboard
func (h *AdminHandler) ListOrganizations(c echo.Context) error {
	log := logger.FromEcho(c)

	defer prometheus.TrackDBOperation("query")(time.Now())
	var orgs []model.Organization
	if result := h.db.Order("created_at DESC").Find(&orgs); result.Error != nil {
		log.Error("Failed to list organizations", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve organizations"})
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": orgs})
}
