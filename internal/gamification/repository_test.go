package gamification

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (Repository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func pointsRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "user_id", "total_points", "current_streak", "longest_streak",
		"last_checkin_date", "level", "created_at", "updated_at",
	})
}

func TestGetOrCreatePoints_Existing(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM user_points WHERE user_id = $1`)).
		WithArgs(5).
		WillReturnRows(pointsRows().AddRow(1, 5, 120, 3, 6, nil, 2, time.Now(), nil))

	points, err := repo.GetOrCreatePoints(context.Background(), 5)

	require.NoError(t, err)
	assert.Equal(t, 120, points.TotalPoints)
	assert.Equal(t, 2, points.Level)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrCreatePoints_CreatesOnFirstUse(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM user_points WHERE user_id = $1`)).
		WithArgs(5).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO user_points (user_id, total_points, current_streak, longest_streak, level)`)).
		WithArgs(5).
		WillReturnRows(pointsRows().AddRow(1, 5, 0, 0, 0, nil, 1, time.Now(), nil))

	points, err := repo.GetOrCreatePoints(context.Background(), 5)

	require.NoError(t, err)
	assert.Equal(t, 0, points.TotalPoints)
	assert.Equal(t, 1, points.Level)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAllTimeLeaderboard_TieBrokenByUserID(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY up.total_points DESC, up.user_id ASC`)).
		WithArgs(50).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "name", "points", "level"}).
			AddRow(2, "Ana", 300, 3).
			AddRow(4, "Bruno", 300, 3).
			AddRow(9, "Carla", 120, 2))

	entries, err := repo.AllTimeLeaderboard(context.Background(), 50)

	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, 2, entries[0].UserID)
	assert.Equal(t, 4, entries[1].UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWindowedLeaderboard_FiltersPositiveChanges(t *testing.T) {
	repo, mock := newMockRepo(t)
	since := time.Now().AddDate(0, 0, -7)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE ph.created_at >= $1 AND ph.points_change > 0`)).
		WithArgs(since, 10).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "name", "points"}).
			AddRow(5, "Bruno", 44))

	entries, err := repo.WindowedLeaderboard(context.Background(), since, 10)

	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 44, entries[0].Points)
	assert.Nil(t, entries[0].Level)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAwardAchievement_Insert(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO user_achievements (user_id, achievement_id)`)).
		WithArgs(5, 3).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.AwardAchievement(context.Background(), 5, 3)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetCheckinForUser_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM checkins WHERE id = $1 AND user_id = $2`)).
		WithArgs(99, 5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "gym_id", "checkin_time"}))

	ref, err := repo.GetCheckinForUser(context.Background(), 99, 5)

	assert.ErrorIs(t, err, ErrCheckinNotFound)
	assert.Nil(t, ref)
	assert.NoError(t, mock.ExpectationsWereMet())
}
