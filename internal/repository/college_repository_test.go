package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func newCollegeRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestCollegeRepositoryList(t *testing.T) {
	db, mock, cleanup := newCollegeRepoMock(t)
	defer cleanup()

	repo := NewCollegeRepository(db)
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, code, region, created_at FROM colleges ORDER BY name ASC")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "code", "region", "created_at"}).
			AddRow("college-a", "Alpha College", "ALP", "West", now).
			AddRow("college-b", "Beta College", "BET", "East", now))

	records, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "Alpha College", records[0].Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCollegeRepositoryExists(t *testing.T) {
	db, mock, cleanup := newCollegeRepoMock(t)
	defer cleanup()

	repo := NewCollegeRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM colleges WHERE id = $1)")).
		WithArgs("college-a").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM colleges WHERE id = $1)")).
		WithArgs("college-z").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	known, err := repo.Exists(context.Background(), "college-a")
	require.NoError(t, err)
	require.True(t, known)

	known, err = repo.Exists(context.Background(), "college-z")
	require.NoError(t, err)
	require.False(t, known)
	require.NoError(t, mock.ExpectationsWereMet())
}
