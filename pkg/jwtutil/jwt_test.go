package jwtutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	orgID := uint(42)
	token, err := GenerateToken(7, "maria@fixitfast.test", "owner", &orgID, "Fix It Fast")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "maria@fixitfast.test", claims.Email)
	assert.Equal(t, "owner", claims.Role)
	require.NotNil(t, claims.OrganizationID)
	assert.Equal(t, uint(42), *claims.OrganizationID)
	assert.Equal(t, "Fix It Fast", claims.OrganizationName)
}

func TestGenerateToken_SuperAdminHasNoOrganization(t *testing.T) {
	token, err := GenerateToken(1, "root@repairhub.test", "super_admin", nil, "")
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Nil(t, claims.OrganizationID)
	assert.Equal(t, "super_admin", claims.Role)
}

func TestValidateToken_RejectsGarbage(t *testing.T) {
	_, err := ValidateToken("not.a.token")
	assert.Error(t, err)
}

func TestValidateToken_RejectsWrongKey(t *testing.T) {
	orgID := uint(1)
	token, err := GenerateToken(2, "tech@shop.test", "technician", &orgID, "Shop")
	require.NoError(t, err)

	original := secret
	secret = []byte("some-other-signing-key")
	defer func() { secret = original }()

	_, err = ValidateToken(token)
	assert.Error(t, err)
}
