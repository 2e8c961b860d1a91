package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"repairhub/internal/authprovider"
	"repairhub/internal/middleware"
	"repairhub/internal/model"
	"repairhub/pkg/jwtutil"
	"repairhub/pkg/logger"
	"repairhub/prometheus"
)

// AuthHandler serves login and self-service profile endpoints
type AuthHandler struct {
	db   *gorm.DB
	auth authprovider.Provider
}

// NewAuthHandler wires the auth handler
func NewAuthHandler(db *gorm.DB, auth authprovider.Provider) *AuthHandler {
	return &AuthHandler{db: db, auth: auth}
}

// Login verifies credentials against the auth provider and issues a JWT
// carrying the caller's role and organization
func (h *AuthHandler) Login(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.LoginCounter.Inc()

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Email == "" || req.Password == "" {
		prometheus.RecordAuthError("incomplete_login")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password are required"})
	}

	identity, err := h.auth.VerifyPassword(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, authprovider.ErrInvalidCredentials) {
			log.Warn("Invalid credentials", zap.String("email", req.Email))
			prometheus.RecordAuthError("invalid_credentials")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		log.Error("Credential verification failed", zap.Error(err))
		prometheus.RecordAuthError("provider_failure")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var user model.User
	result := h.db.Where("auth_id = ?", identity.ID).First(&user)
	if result.Error != nil {
		log.Warn("Identity without local profile", zap.String("auth_id", identity.ID))
		prometheus.RecordAuthError("profile_not_found")
		return c.JSON(http.StatusForbidden, echo.Map{"error": "profile not found"})
	}
	if !user.Active {
		prometheus.RecordAuthError("inactive_user")
		return c.JSON(http.StatusForbidden, echo.Map{"error": "account disabled"})
	}

	now := time.Now()
	if err := h.db.Model(&user).Update("last_login_at", now).Error; err != nil {
		// Login still succeeds; the timestamp is informational
		log.Warn("Failed to record last login", zap.Uint("user_id", user.ID), zap.Error(err))
	}

	var orgName string
	if user.OrganizationID != nil {
		var org model.Organization
		if result := h.db.Select("name").First(&org, *user.OrganizationID); result.Error == nil {
			orgName = org.Name
		}
	}

	token, err := jwtutil.GenerateToken(user.ID, user.Email, user.Role, user.OrganizationID, orgName)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	log.Info("User logged in",
		zap.String("email", user.Email),
		zap.String("role", user.Role))

	response := echo.Map{
		"token": token,
		"user": echo.Map{
			"id":    user.ID,
			"email": user.Email,
			"name":  user.Name,
			"role":  user.Role,
		},
	}
	if user.OrganizationID != nil {
		response["organization"] = echo.Map{
			"id":   *user.OrganizationID,
			"name": orgName,
		}
	}

	return c.JSON(http.StatusOK, response)
}

// GetProfile returns the authenticated caller's profile
func (h *AuthHandler) GetProfile(c echo.Context) error {
	user, ok := middleware.CallerUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateProfile updates the caller's name and phone
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	log := logger.FromEcho(c)

	user, ok := middleware.CallerUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var req struct {
		Name  string `json:"name"`
		Phone string `json:"phone"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Phone != "" {
		updates["phone"] = req.Phone
	}
	if len(updates) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nothing to update"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := h.db.Model(user).Updates(updates).Error; err != nil {
		log.Error("Failed to update profile", zap.Uint("user_id", user.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "profile update failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Profile updated successfully", "user": user})
}

// ChangePassword verifies the current password and sets a new one
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	log := logger.FromEcho(c)

	user, ok := middleware.CallerUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "current_password and new_password are required"})
	}
	if len(req.NewPassword) < 8 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "new password must be at least 8 characters"})
	}

	ctx := c.Request().Context()
	if _, err := h.auth.VerifyPassword(ctx, user.Email, req.CurrentPassword); err != nil {
		prometheus.RecordAuthError("invalid_credentials")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "current password is incorrect"})
	}

	if err := h.auth.UpdatePassword(ctx, user.AuthID, req.NewPassword); err != nil {
		log.Error("Failed to update password", zap.Uint("user_id", user.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "password change failed"})
	}

	log.Info("Password changed", zap.Uint("user_id", user.ID))
	return c.JSON(http.StatusOK, echo.Map{"message": "Password changed successfully"})
}
