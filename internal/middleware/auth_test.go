package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"repairhub/internal/model"
	"repairhub/pkg/jwtutil"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 conn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
	require.NoError(t, err)
	return db, mock
}

func userColumns() []string {
	return []string{
		"id", "auth_id", "organization_id", "role", "name", "email",
		"phone", "active", "last_login_at", "created_at", "updated_at", "deleted_at",
	}
}

func expectUserLookup(mock sqlmock.Sqlmock, rows *sqlmock.Rows) {
	mock.ExpectQuery(`SELECT (.+) FROM "users"`).WillReturnRows(rows)
}

func userRow(id uint, orgID interface{}, role string, active bool) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(userColumns()).
		AddRow(id, "auth-"+role, orgID, role, "Test User", role+"@shop.test",
			"", active, nil, now, now, nil)
}

func runGuard(t *testing.T, db *gorm.DB, token string, opts ...GuardOption) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/customers", nil)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := RequireAuth(db, opts...)(func(c echo.Context) error {
		orgID, isSuperAdmin := CallerOrganization(c)
		return c.JSON(http.StatusOK, echo.Map{
			"organization_id": orgID,
			"is_super_admin":  isSuperAdmin,
		})
	})
	require.NoError(t, handler(c))
	return rec
}

func mustToken(t *testing.T, userID uint, role string, orgID *uint) string {
	t.Helper()
	token, err := jwtutil.GenerateToken(userID, role+"@shop.test", role, orgID, "Fix It Fast")
	require.NoError(t, err)
	return "Bearer " + token
}

func TestRequireAuth_MissingToken(t *testing.T) {
	db, _ := newMockDB(t)
	rec := runGuard(t, db, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuth_MalformedHeader(t *testing.T) {
	db, _ := newMockDB(t)
	rec := runGuard(t, db, "Token abc123")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuth_InvalidToken(t *testing.T) {
	db, _ := newMockDB(t)
	rec := runGuard(t, db, "Bearer not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuth_ProfileNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	expectUserLookup(mock, sqlmock.NewRows(userColumns()))

	rec := runGuard(t, db, mustToken(t, 77, model.RoleOwner, uintPtr(5)))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "profile not found")
}

func TestRequireAuth_InactiveUser(t *testing.T) {
	db, mock := newMockDB(t)
	expectUserLookup(mock, userRow(2, uint(5), model.RoleOwner, false))

	rec := runGuard(t, db, mustToken(t, 2, model.RoleOwner, uintPtr(5)))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "account disabled")
}

func TestRequireAuth_MissingOrganization(t *testing.T) {
	db, mock := newMockDB(t)
	expectUserLookup(mock, userRow(3, nil, model.RoleOwner, true))

	rec := runGuard(t, db, mustToken(t, 3, model.RoleOwner, nil))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "organization not found")
}

func TestRequireAuth_RoleDenied(t *testing.T) {
	db, mock := newMockDB(t)
	expectUserLookup(mock, userRow(4, uint(5), model.RoleTechnician, true))

	rec := runGuard(t, db, mustToken(t, 4, model.RoleTechnician, uintPtr(5)),
		AllowRoles(model.RoleOwner))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "insufficient permissions")
}

func TestRequireAuth_RoleAllowed(t *testing.T) {
	db, mock := newMockDB(t)
	expectUserLookup(mock, userRow(5, uint(9), model.RoleTechnician, true))

	rec := runGuard(t, db, mustToken(t, 5, model.RoleTechnician, uintPtr(9)),
		AllowRoles(model.RoleOwner, model.RoleTechnician))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"organization_id":9`)
	assert.Contains(t, rec.Body.String(), `"is_super_admin":false`)
}

func TestRequireAuth_SuperAdminBypass(t *testing.T) {
	db, mock := newMockDB(t)
	expectUserLookup(mock, userRow(1, nil, model.RoleSuperAdmin, true))

	rec := runGuard(t, db, mustToken(t, 1, model.RoleSuperAdmin, nil),
		AllowRoles(model.RoleOwner, model.RoleTechnician),
		WithSuperAdminBypass())

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"organization_id":0`)
	assert.Contains(t, rec.Body.String(), `"is_super_admin":true`)
}

func TestRequireAuth_SuperAdminWithoutBypassDenied(t *testing.T) {
	db, mock := newMockDB(t)
	expectUserLookup(mock, userRow(1, nil, model.RoleSuperAdmin, true))

	rec := runGuard(t, db, mustToken(t, 1, model.RoleSuperAdmin, nil),
		AllowRoles(model.RoleOwner, model.RoleTechnician))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "insufficient permissions")
}

func uintPtr(v uint) *uint { return &v }
