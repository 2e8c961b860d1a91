package jwtutil

import (
	"time"

	"github.com/golang-jwt/jwt/v4"

	"repairhub/pkg/config"
)

var (
	secret     = []byte("repairhubsecretkey")
	expiration = 24 * time.Hour
)

// Initialize configures the signing key and token lifetime from configuration
func Initialize(cfg *config.JWTConfig) {
	if cfg.SigningKey != "" {
		secret = []byte(cfg.SigningKey)
	}
	if cfg.ExpirationHours > 0 {
		expiration = time.Duration(cfg.ExpirationHours) * time.Hour
	}
}

// UserClaims represents the JWT claims for an authenticated session
type UserClaims struct {
	UserID           uint   `json:"user_id"`
	Email            string `json:"email"`
	Role             string `json:"role"`
	OrganizationID   *uint  `json:"organization_id,omitempty"`
	OrganizationName string `json:"organization_name,omitempty"`
	jwt.RegisteredClaims
}

// GenerateToken creates a JWT token with user, role and organization information
func GenerateToken(userID uint, email, role string, organizationID *uint, organizationName string) (string, error) {
	claims := UserClaims{
		UserID:           userID,
		Email:            email,
		Role:             role,
		OrganizationID:   organizationID,
		OrganizationName: organizationName,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ValidateToken validates and parses the JWT token
func ValidateToken(tokenString string) (*UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*UserClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrSignatureInvalid
}
