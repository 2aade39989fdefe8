package user

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func setupUserMock(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	closer := func() { sqlxDB.Close() }
	return repo, mock, closer
}

func userRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "email", "phone", "password_hash", "role", "gym_id", "is_active", "created_at", "updated_at",
	})
}

func TestCreateUser(t *testing.T) {
	repo, mock, close := setupUserMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users (name, email, phone, password_hash, role)")).
		WithArgs("Ana", "ana@example.com", "11 98888-7777", "hashed", "member").
		WillReturnRows(userRows().AddRow(1, "Ana", "ana@example.com", "11 98888-7777", "hashed", "member", nil, true, time.Now(), time.Now()))

	user, err := repo.Create(context.Background(), "Ana", "ana@example.com", "11 98888-7777", "hashed", "member")
	require.NoError(t, err)
	require.Equal(t, 1, user.ID)
	require.True(t, user.IsActive)
	require.Nil(t, user.GymID)
}

func TestFindByEmail_NotFound(t *testing.T) {
	repo, mock, close := setupUserMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = $1")).
		WithArgs("missing@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByEmail(context.Background(), "missing@example.com")
	require.Error(t, err)
}

func TestEmailTakenByOther(t *testing.T) {
	repo, mock, close := setupUserMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM users WHERE email = $1 AND id != $2)")).
		WithArgs("ana@example.com", 2).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	taken, err := repo.EmailTakenByOther(context.Background(), "ana@example.com", 2)
	require.NoError(t, err)
	require.True(t, taken)
}

func TestUpdateUser_PartialFields(t *testing.T) {
	repo, mock, close := setupUserMock(t)
	defer close()

	phone := "11 90000-1111"

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE users SET phone = $1, updated_at = NOW() WHERE id = $2 RETURNING")).
		WithArgs("11 90000-1111", 1).
		WillReturnRows(userRows().AddRow(1, "Ana", "ana@example.com", "11 90000-1111", "hashed", "member", nil, true, time.Now(), time.Now()))

	user, err := repo.Update(context.Background(), 1, UpdateRequest{Phone: &phone})
	require.NoError(t, err)
	require.Equal(t, "11 90000-1111", user.Phone)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetStats(t *testing.T) {
	repo, mock, close := setupUserMock(t)
	defer close()

	joined := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("COUNT(DISTINCT gym_id) AS unique_gyms_visited")).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"total_checkins", "unique_gyms_visited", "total_hours_trained"}).
			AddRow(42, 3, 51))

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
		WithArgs(1).
		WillReturnRows(userRows().AddRow(1, "Ana", "ana@example.com", "x", "hashed", "member", nil, true, joined, joined))

	stats, err := repo.GetStats(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, 42, stats.TotalCheckins)
	require.Equal(t, 3, stats.UniqueGymsVisited)
	require.Equal(t, 51, stats.TotalHoursTrained)
	require.Equal(t, joined, stats.MemberSince)
}
