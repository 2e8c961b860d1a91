package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"repairhub/internal/model"
	"repairhub/pkg/jwtutil"
	"repairhub/pkg/logger"
	"repairhub/prometheus"
)

// Context keys populated by the access guard
const (
	ContextUser         = "user"
	ContextOrganization = "organization_id"
	ContextSuperAdmin   = "is_super_admin"
)

type guardConfig struct {
	roles            []string
	superAdminBypass bool
}

// GuardOption configures the access guard per route group
type GuardOption func(*guardConfig)

// AllowRoles restricts the route to the given roles
func AllowRoles(roles ...string) GuardOption {
	return func(cfg *guardConfig) {
		cfg.roles = roles
	}
}

// WithSuperAdminBypass lets super admins through regardless of the
// configured role allow-list
func WithSuperAdminBypass() GuardOption {
	return func(cfg *guardConfig) {
		cfg.superAdminBypass = true
	}
}

// RequireAuth is the per-request access guard: it resolves WHO is calling
// and under WHAT organization, or short-circuits with an error. It never
// mutates state.
//
// Denials are deliberately distinct: a missing or invalid token is 401,
// a valid token whose identity has no local profile is 403 (the identity
// exists upstream but has no User row, e.g. a mid-approval race), and a
// non-super-admin profile without an organization is 403 as a malformed
// record.
func RequireAuth(db *gorm.DB, opts ...GuardOption) echo.MiddlewareFunc {
	cfg := guardConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromEcho(c)

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				prometheus.RecordAuthError("missing_token")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				prometheus.RecordAuthError("invalid_auth_format")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authorization format, expected Bearer token"})
			}

			claims, err := jwtutil.ValidateToken(parts[1])
			if err != nil {
				log.Error("Invalid JWT token", zap.Error(err))
				prometheus.RecordAuthError("invalid_token")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
			}

			var user model.User
			result := db.First(&user, claims.UserID)
			if result.Error != nil {
				if errors.Is(result.Error, gorm.ErrRecordNotFound) {
					log.Warn("Session without local profile", zap.Uint("user_id", claims.UserID))
					prometheus.RecordAuthError("profile_not_found")
					return c.JSON(http.StatusForbidden, echo.Map{"error": "profile not found"})
				}
				log.Error("Failed to load user profile", zap.Error(result.Error))
				prometheus.RecordAuthError("profile_lookup_failed")
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to resolve profile"})
			}

			if !user.Active {
				prometheus.RecordAuthError("inactive_user")
				return c.JSON(http.StatusForbidden, echo.Map{"error": "account disabled"})
			}

			isSuperAdmin := user.Role == model.RoleSuperAdmin
			if !isSuperAdmin && user.OrganizationID == nil {
				log.Warn("User without organization", zap.Uint("user_id", user.ID))
				prometheus.RecordAuthError("organization_not_found")
				return c.JSON(http.StatusForbidden, echo.Map{"error": "organization not found"})
			}

			if len(cfg.roles) > 0 && !roleAllowed(user.Role, cfg.roles) {
				if !(cfg.superAdminBypass && isSuperAdmin) {
					log.Warn("Insufficient role for route",
						zap.Uint("user_id", user.ID),
						zap.String("role", user.Role))
					prometheus.RecordAuthError("insufficient_permissions")
					return c.JSON(http.StatusForbidden, echo.Map{"error": "insufficient permissions"})
				}
			}

			var orgID uint
			if user.OrganizationID != nil {
				orgID = *user.OrganizationID
			}

			c.Set(ContextUser, &user)
			c.Set(ContextOrganization, orgID)
			c.Set(ContextSuperAdmin, isSuperAdmin)

			return next(c)
		}
	}
}

func roleAllowed(role string, allowed []string) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

// CallerUser returns the authenticated user set by RequireAuth
func CallerUser(c echo.Context) (*model.User, bool) {
	user, ok := c.Get(ContextUser).(*model.User)
	return user, ok
}

// CallerOrganization returns the caller's organization id and whether the
// caller is a super admin (organization id is zero in that case)
func CallerOrganization(c echo.Context) (uint, bool) {
	orgID, _ := c.Get(ContextOrganization).(uint)
	isSuperAdmin, _ := c.Get(ContextSuperAdmin).(bool)
	return orgID, isSuperAdmin
}
