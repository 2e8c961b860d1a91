package tenant

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
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

func TestOwns_MatchingResource(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT count\(\*\) FROM "customers"`).
		WithArgs(uint(12), uint(3)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	assert.True(t, Owns(db, "customers", 12, 3, false))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOwns_OtherTenantsResource(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT count\(\*\) FROM "customers"`).
		WithArgs(uint(12), uint(4)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	assert.False(t, Owns(db, "customers", 12, 4, false))
}

func TestOwns_MissingResource(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT count\(\*\) FROM "devices"`).
		WithArgs(uint(999), uint(3)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	assert.False(t, Owns(db, "devices", 999, 3, false))
}

func TestOwns_QueryErrorDenies(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT count\(\*\) FROM "repairs"`).
		WillReturnError(errors.New("connection refused"))

	assert.False(t, Owns(db, "repairs", 1, 3, false))
}

func TestOwns_SuperAdminSkipsQuery(t *testing.T) {
	db, mock := newMockDB(t)

	// No query expectation: the super admin path never touches the database
	assert.True(t, Owns(db, "customers", 12, 0, true))
	assert.NoError(t, mock.ExpectationsWereMet())
}
