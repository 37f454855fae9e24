package srs

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexireef/studyhall-api/internal/domain"
)

func TestCalculateNextReviewValidation(t *testing.T) {
	t.Parallel() // Enable parallel execution
	svc := NewDefaultService()
	now := time.Now().UTC()

	_, err := svc.CalculateNextReview(nil, domain.DifficultyEasy, true, now)
	assert.ErrorIs(t, err, ErrNilState)

	state, err := domain.NewReviewState(uuid.New(), uuid.New())
	require.NoError(t, err)

	_, err = svc.CalculateNextReview(state, domain.DifficultyRating("impossible"), true, now)
	assert.ErrorIs(t, err, ErrInvalidRating)
}

func TestCalculateNextReviewDeterministic(t *testing.T) {
	t.Parallel() // Enable parallel execution
	svc := NewDefaultService()
	now := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

	state, err := domain.NewReviewState(uuid.New(), uuid.New())
	require.NoError(t, err)
	state.IntervalDays = 4

	first, err := svc.CalculateNextReview(state, domain.DifficultyMedium, true, now)
	require.NoError(t, err)
	second, err := svc.CalculateNextReview(state, domain.DifficultyMedium, true, now)
	require.NoError(t, err)

	assert.Equal(t, first.IntervalDays, second.IntervalDays)
	assert.Equal(t, first.EaseFactor, second.EaseFactor)
	assert.Equal(t, first.NextDueAt, second.NextDueAt)
}

func TestPostponeReview(t *testing.T) {
	t.Parallel() // Enable parallel execution
	svc := NewDefaultService()
	now := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

	state, err := domain.NewReviewState(uuid.New(), uuid.New())
	require.NoError(t, err)
	due := now.AddDate(0, 0, 2)
	state.NextDueAt = &due

	postponed, err := svc.PostponeReview(state, 3, now)
	require.NoError(t, err)
	require.NotNil(t, postponed.NextDueAt)
	assert.Equal(t, due.AddDate(0, 0, 3), *postponed.NextDueAt)

	// The review counters must not move.
	assert.Equal(t, state.ReviewCount, postponed.ReviewCount)

	_, err = svc.PostponeReview(state, 0, now)
	assert.ErrorIs(t, err, ErrInvalidDays)
}

func TestPostponeReviewNeverReviewed(t *testing.T) {
	t.Parallel() // Enable parallel execution
	svc := NewDefaultService()
	now := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

	state, err := domain.NewReviewState(uuid.New(), uuid.New())
	require.NoError(t, err)
	require.Nil(t, state.NextDueAt)

	postponed, err := svc.PostponeReview(state, 5, now)
	require.NoError(t, err)
	require.NotNil(t, postponed.NextDueAt)
	assert.Equal(t, now.AddDate(0, 0, 5), *postponed.NextDueAt)
}
