package checkin

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

func setupCheckinMock(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	closer := func() { sqlxDB.Close() }
	return repo, mock, closer
}

func checkinRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "user_id", "gym_id", "checkin_time", "checkout_time", "is_active", "created_at",
	})
}

func expectGymLock(mock sqlmock.Sqlmock, gymID, capacity, occupancy int, active bool) {
	mock.ExpectQuery(regexp.QuoteMeta("SELECT max_capacity, current_occupancy, is_active FROM gyms WHERE id = $1 FOR UPDATE")).
		WithArgs(gymID).
		WillReturnRows(sqlmock.NewRows([]string{"max_capacity", "current_occupancy", "is_active"}).
			AddRow(capacity, occupancy, active))
}

func TestCreateWithOccupancy_Success(t *testing.T) {
	repo, mock, close := setupCheckinMock(t)
	defer close()

	mock.ExpectBegin()
	expectGymLock(mock, 3, 80, 12, true)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM checkins WHERE user_id = $1 AND is_active = true)")).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO checkins (user_id, gym_id)")).
		WithArgs(5, 3).
		WillReturnRows(checkinRows().AddRow(1, 5, 3, time.Now(), nil, true, time.Now()))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE gyms SET current_occupancy = $1, updated_at = NOW() WHERE id = $2")).
		WithArgs(13, 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	checkin, occupancy, err := repo.CreateWithOccupancy(context.Background(), 5, 3)
	require.NoError(t, err)
	require.Equal(t, 1, checkin.ID)
	require.True(t, checkin.IsActive)
	require.Equal(t, 13, occupancy)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWithOccupancy_AtCapacity(t *testing.T) {
	repo, mock, close := setupCheckinMock(t)
	defer close()

	// capacity 1 with one visitor already inside
	mock.ExpectBegin()
	expectGymLock(mock, 3, 1, 1, true)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectRollback()

	_, _, err := repo.CreateWithOccupancy(context.Background(), 5, 3)
	require.ErrorIs(t, err, ErrGymAtCapacity)
}

func TestVerifyGym(t *testing.T) {
	repo, mock, close := setupCheckinMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT is_active FROM gyms WHERE id = $1")).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"is_active"}).AddRow(true))
	require.NoError(t, repo.VerifyGym(context.Background(), 3))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT is_active FROM gyms WHERE id = $1")).
		WithArgs(4).
		WillReturnRows(sqlmock.NewRows([]string{"is_active"}).AddRow(false))
	require.ErrorIs(t, repo.VerifyGym(context.Background(), 4), ErrGymNotFound)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT is_active FROM gyms WHERE id = $1")).
		WithArgs(99).
		WillReturnError(sql.ErrNoRows)
	require.ErrorIs(t, repo.VerifyGym(context.Background(), 99), ErrGymNotFound)
}

func TestCreateWithOccupancy_InactiveGym(t *testing.T) {
	repo, mock, close := setupCheckinMock(t)
	defer close()

	mock.ExpectBegin()
	expectGymLock(mock, 3, 80, 12, false)
	mock.ExpectRollback()

	_, _, err := repo.CreateWithOccupancy(context.Background(), 5, 3)
	require.ErrorIs(t, err, ErrGymNotFound)
}

func TestCreateWithOccupancy_MissingGym(t *testing.T) {
	repo, mock, close := setupCheckinMock(t)
	defer close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM gyms WHERE id = $1 FOR UPDATE")).
		WithArgs(99).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, _, err := repo.CreateWithOccupancy(context.Background(), 5, 99)
	require.ErrorIs(t, err, ErrGymNotFound)
}

func TestCreateWithOccupancy_SecondActiveCheckin(t *testing.T) {
	repo, mock, close := setupCheckinMock(t)
	defer close()

	mock.ExpectBegin()
	expectGymLock(mock, 3, 80, 12, true)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	_, _, err := repo.CreateWithOccupancy(context.Background(), 5, 3)
	require.ErrorIs(t, err, ErrActiveCheckinExists)
}

func TestCloseWithOccupancy_Success(t *testing.T) {
	repo, mock, close := setupCheckinMock(t)
	defer close()

	userID := 5
	checkoutTime := time.Now().UTC()
	checkinTime := checkoutTime.Add(-time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM checkins WHERE id = $1 AND user_id = $2 AND is_active = true FOR UPDATE")).
		WithArgs(1, 5).
		WillReturnRows(checkinRows().AddRow(1, 5, 3, checkinTime, nil, true, checkinTime))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE checkins SET checkout_time = $1, is_active = false WHERE id = $2")).
		WithArgs(checkoutTime, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT current_occupancy FROM gyms WHERE id = $1 FOR UPDATE")).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"current_occupancy"}).AddRow(13))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE gyms SET current_occupancy = $1, updated_at = NOW() WHERE id = $2")).
		WithArgs(12, 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	checkin, occupancy, err := repo.CloseWithOccupancy(context.Background(), 1, &userID, checkoutTime)
	require.NoError(t, err)
	require.False(t, checkin.IsActive)
	require.Equal(t, 12, occupancy)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCloseWithOccupancy_FloorsOccupancyAtZero(t *testing.T) {
	repo, mock, close := setupCheckinMock(t)
	defer close()

	checkoutTime := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM checkins WHERE id = $1 AND is_active = true FOR UPDATE")).
		WithArgs(1).
		WillReturnRows(checkinRows().AddRow(1, 5, 3, checkoutTime.Add(-time.Hour), nil, true, checkoutTime))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE checkins SET checkout_time = $1")).
		WithArgs(checkoutTime, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT current_occupancy FROM gyms WHERE id = $1 FOR UPDATE")).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"current_occupancy"}).AddRow(0))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE gyms SET current_occupancy = $1, updated_at = NOW() WHERE id = $2")).
		WithArgs(0, 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	_, occupancy, err := repo.CloseWithOccupancy(context.Background(), 1, nil, checkoutTime)
	require.NoError(t, err)
	require.Equal(t, 0, occupancy)
}

func TestCloseWithOccupancy_NotFound(t *testing.T) {
	repo, mock, close := setupCheckinMock(t)
	defer close()

	userID := 5
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM checkins WHERE id = $1 AND user_id = $2 AND is_active = true FOR UPDATE")).
		WithArgs(1, 5).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, _, err := repo.CloseWithOccupancy(context.Background(), 1, &userID, time.Now())
	require.ErrorIs(t, err, ErrCheckinNotFound)
}

func TestListStaleActive(t *testing.T) {
	repo, mock, close := setupCheckinMock(t)
	defer close()

	cutoff := time.Now().UTC().Add(-4 * time.Hour)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE is_active = true AND checkin_time < $1")).
		WithArgs(cutoff).
		WillReturnRows(checkinRows().AddRow(1, 5, 3, cutoff.Add(-time.Hour), nil, true, cutoff))

	stale, err := repo.ListStaleActive(context.Background(), cutoff)
	require.NoError(t, err)
	require.Len(t, stale, 1)
}
