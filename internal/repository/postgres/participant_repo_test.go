package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/quiz-api/internal/domain/entity"
	apperrors "github.com/yourusername/quiz-api/internal/pkg/errors"
)

func TestParticipantRepo_UpsertAttempt_RestartKeepsRow(t *testing.T) {
	db := newTestDB(t)
	repo := NewParticipantRepo(db)
	ctx := context.Background()

	firstStart := testEpoch
	first, err := repo.UpsertAttempt(ctx, 7, 1, firstStart, firstStart.Add(10*time.Minute))
	require.NoError(t, err)
	require.NotZero(t, first.ID)

	_, err = repo.SubmitScore(ctx, 7, 1, func(p *entity.Participant) (int, error) { return 6, nil })
	require.NoError(t, err)

	secondStart := testEpoch.Add(30 * time.Minute)
	restarted, err := repo.UpsertAttempt(ctx, 7, 1, secondStart, secondStart.Add(10*time.Minute))
	require.NoError(t, err)

	assert.Equal(t, first.ID, restarted.ID)
	assert.Nil(t, restarted.Score)
	assert.WithinDuration(t, first.CreatedAt, restarted.CreatedAt, time.Second, "created_at берется из сохраненной строки")
	assert.True(t, restarted.UpdatedAt.After(first.CreatedAt))

	stored, err := repo.GetByUserAndQuiz(ctx, 7, 1)
	require.NoError(t, err)
	assert.Equal(t, first.ID, stored.ID)
	assert.Nil(t, stored.Score)
	assert.WithinDuration(t, secondStart, stored.StartTime, time.Second)
	assert.WithinDuration(t, secondStart.Add(10*time.Minute), stored.EndTime, time.Second)

	var count int64
	require.NoError(t, db.Model(&entity.Participant{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestParticipantRepo_UpsertAttempt_SeparateUsers(t *testing.T) {
	repo := NewParticipantRepo(newTestDB(t))
	ctx := context.Background()

	a, err := repo.UpsertAttempt(ctx, 7, 1, testEpoch, testEpoch.Add(time.Minute))
	require.NoError(t, err)
	b, err := repo.UpsertAttempt(ctx, 8, 1, testEpoch, testEpoch.Add(time.Minute))
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
}

func TestParticipantRepo_SubmitScore(t *testing.T) {
	repo := NewParticipantRepo(newTestDB(t))
	ctx := context.Background()

	_, err := repo.UpsertAttempt(ctx, 7, 1, testEpoch, testEpoch.Add(10*time.Minute))
	require.NoError(t, err)

	// Успешная проверка записывает результат и передает в grade текущую строку
	var graded *entity.Participant
	got, err := repo.SubmitScore(ctx, 7, 1, func(p *entity.Participant) (int, error) {
		graded = p
		return 9, nil
	})
	require.NoError(t, err)
	require.NotNil(t, graded)
	assert.Equal(t, uint(7), graded.UserID)
	assert.Nil(t, graded.Score)
	require.NotNil(t, got.Score)
	assert.Equal(t, 9, *got.Score)

	// Ошибка grade откатывает транзакцию, результат не меняется
	gradeErr := apperrors.NewFieldError("answers[0].question_id", "bad", apperrors.ErrValidation)
	_, err = repo.SubmitScore(ctx, 7, 1, func(p *entity.Participant) (int, error) {
		return 0, gradeErr
	})
	assert.True(t, errors.Is(err, apperrors.ErrValidation))

	stored, err := repo.GetByUserAndQuiz(ctx, 7, 1)
	require.NoError(t, err)
	require.NotNil(t, stored.Score)
	assert.Equal(t, 9, *stored.Score)
}

func TestParticipantRepo_SubmitScore_NoAttempt(t *testing.T) {
	repo := NewParticipantRepo(newTestDB(t))

	called := false
	_, err := repo.SubmitScore(context.Background(), 7, 1, func(p *entity.Participant) (int, error) {
		called = true
		return 1, nil
	})

	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	assert.False(t, called)
}
