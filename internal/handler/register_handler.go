package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"repairhub/internal/model"
	"repairhub/internal/provisioning"
	"repairhub/pkg/logger"
	"repairhub/prometheus"
)

// RegisterHandler serves the public signup endpoint
type RegisterHandler struct {
	svc *provisioning.Service
}

// NewRegisterHandler wires the public registration handler
func NewRegisterHandler(svc *provisioning.Service) *RegisterHandler {
	return &RegisterHandler{svc: svc}
}

// Register creates a pending OrganizationRequest from an unauthenticated signup
func (h *RegisterHandler) Register(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.SignupRequestCounter.Inc()

	var req struct {
		Name             string `json:"name"`
		Slug             string `json:"slug"`
		Email            string `json:"email"`
		Phone            string `json:"phone"`
		Address          string `json:"address"`
		OwnerName        string `json:"owner_name"`
		OwnerEmail       string `json:"owner_email"`
		OwnerPhone       string `json:"owner_phone"`
		OwnerPassword    string `json:"owner_password_hash"`
		SubscriptionPlan string `json:"subscription_plan"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse registration request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Name == "" || req.Slug == "" || req.Email == "" || req.OwnerName == "" || req.OwnerEmail == "" {
		log.Warn("Incomplete registration request", zap.String("slug", req.Slug))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name, slug, email, owner_name and owner_email are required"})
	}

	if !model.ValidPlan(req.SubscriptionPlan) {
		log.Warn("Invalid subscription plan", zap.String("plan", req.SubscriptionPlan))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid subscription plan"})
	}

	request, err := h.svc.Register(c.Request().Context(), provisioning.RegistrationInput{
		Name:             req.Name,
		Slug:             req.Slug,
		Email:            req.Email,
		Phone:            req.Phone,
		Address:          req.Address,
		OwnerName:        req.OwnerName,
		OwnerEmail:       req.OwnerEmail,
		OwnerPhone:       req.OwnerPhone,
		OwnerPassword:    req.OwnerPassword,
		SubscriptionPlan: req.SubscriptionPlan,
	})
	if err != nil {
		if errors.Is(err, provisioning.ErrSlugTaken) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "slug already in use"})
		}
		log.Error("Failed to create organization request", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"data": echo.Map{
			"request_id": request.ID,
			"slug":       request.Slug,
			"status":     request.Status,
		},
	})
}
