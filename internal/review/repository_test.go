package review

import (
	"context"
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

func reviewRow() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "user_id", "gym_id", "rating", "title", "comment", "is_anonymous",
		"is_approved", "helpful_votes", "reported_count", "created_at", "updated_at",
	}).AddRow(1, 5, 3, 4, nil, nil, false, true, 0, 0, time.Now(), nil)
}

func TestCreate_UpdatesGymAggregateInSameTx(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO gym_reviews (user_id, gym_id, rating, title, comment, is_anonymous)`)).
		WithArgs(5, 3, 4, nil, nil, false).
		WillReturnRows(reviewRow())
	mock.ExpectExec(regexp.QuoteMeta(`total_reviews = total_reviews + 1`)).
		WithArgs(4, 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	review, err := repo.Create(context.Background(), 5, 3, CreateRequest{Rating: 4})

	require.NoError(t, err)
	assert.Equal(t, 4, review.Rating)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_GymMissingRollsBack(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO gym_reviews`)).
		WithArgs(5, 99, 4, nil, nil, false).
		WillReturnRows(reviewRow())
	mock.ExpectExec(regexp.QuoteMeta(`total_reviews = total_reviews + 1`)).
		WithArgs(4, 99).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	review, err := repo.Create(context.Background(), 5, 99, CreateRequest{Rating: 4})

	assert.ErrorIs(t, err, ErrGymNotFound)
	assert.Nil(t, review)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByGym_HidesAnonymousAuthors(t *testing.T) {
	repo, mock := newMockRepo(t)

	rows := sqlmock.NewRows([]string{
		"id", "user_id", "gym_id", "rating", "title", "comment", "is_anonymous",
		"is_approved", "helpful_votes", "reported_count", "created_at", "updated_at",
		"author_name",
	}).
		AddRow(2, 7, 3, 5, nil, nil, true, true, 2, 0, time.Now(), nil, "").
		AddRow(1, 5, 3, 4, nil, nil, false, true, 0, 0, time.Now(), nil, "Ana")

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE r.gym_id = $1 AND r.is_approved = true`)).
		WithArgs(3, 50).
		WillReturnRows(rows)

	reviews, err := repo.ListByGym(context.Background(), 3, 0)

	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.Empty(t, reviews[0].AuthorName)
	assert.Equal(t, "Ana", reviews[1].AuthorName)
	assert.NoError(t, mock.ExpectationsWereMet())
}
