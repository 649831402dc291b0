package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/kodcommunity/forum/backend/internal/common"
	"github.com/kodcommunity/forum/backend/internal/models"
)

const (
	voteUpdateSQL = `(?s)^UPDATE "questions" SET .*"voted_users"=array_append\(voted_users, \$\d+::bigint\).*WHERE id = \$\d+ AND NOT \(\$\d+::bigint = ANY\(voted_users\)\) RETURNING .*"votes"`
	voteCountSQL  = `(?s)^SELECT count\(\*\) FROM "questions" WHERE id = \$1`
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	return db, mock
}

func TestApplyVote_Recorded(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewQuestionRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(voteUpdateSQL).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "votes"}).AddRow(5, 2, 4))
	mock.ExpectCommit()

	q, err := repo.ApplyVote(context.Background(), 5, 9, 1, true)
	require.NoError(t, err)
	assert.Equal(t, 5, q.ID)
	assert.Equal(t, 2, q.UserID)
	assert.Equal(t, 4, q.Votes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyVote_AlreadyVoted(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewQuestionRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(voteUpdateSQL).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "votes"}))
	mock.ExpectCommit()
	mock.ExpectQuery(voteCountSQL).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	_, err := repo.ApplyVote(context.Background(), 5, 9, 1, true)
	assert.ErrorIs(t, err, common.ErrAlreadyVoted)
	assert.Equal(t, "You have already voted", common.Message(err, ""))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyVote_MissingQuestion(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewQuestionRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(voteUpdateSQL).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "votes"}))
	mock.ExpectCommit()
	mock.ExpectQuery(voteCountSQL).
		WithArgs(404).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	_, err := repo.ApplyVote(context.Background(), 404, 9, 1, true)
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyVote_DownvoteLeavesVotersAlone(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewQuestionRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`(?s)^UPDATE "questions" SET "updated_at"=\$1,"votes"=votes \+ \$2 WHERE .*ANY\(voted_users\)`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "votes"}).AddRow(5, 2, -1))
	mock.ExpectCommit()

	q, err := repo.ApplyVote(context.Background(), 5, 9, -1, false)
	require.NoError(t, err)
	assert.Equal(t, -1, q.Votes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendMessage_MissingConversationRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewConversationRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`(?s)^UPDATE "conversations" SET .*"unread_count"=unread_count \+ 1.*WHERE id = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.AppendMessage(context.Background(), 77, &models.Message{SenderID: 1, Text: "hi", Time: "10:00"})
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkRead_OtherRecipient(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewNotificationRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`(?s)^UPDATE "notifications" SET "read"=\$1 WHERE id = \$2 AND user_id = \$3`).
		WithArgs(true, 3, 8).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.MarkRead(context.Background(), 3, 8)
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
