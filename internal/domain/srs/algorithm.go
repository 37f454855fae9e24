package srs

import (
	"math"
	"time"

	"github.com/lexireef/studyhall-api/internal/domain"
)

// calculateNewEaseFactor determines the new ease factor based on the
// learner's difficulty rating.
//
// The ease factor represents how quickly an item's review interval grows.
// Each rating applies a fixed adjustment from the params, and the result is
// floored at params.MinEaseFactor so an item can never become impossibly
// frequent.
func calculateNewEaseFactor(
	currentEF float64,
	rating domain.DifficultyRating,
	params *Params,
) float64 {
	newEF := currentEF + params.EaseAdjustment[rating]

	if newEF < params.MinEaseFactor {
		newEF = params.MinEaseFactor
	}

	return newEF
}

// calculateNewInterval determines the new interval in days.
//
// Rounding rule: the raw product is rounded half away from zero
// (math.Round), then floored at 1 day. An "again" rating bypasses this and
// resets the interval to 0, making the item due immediately.
//
// The new ease factor (already adjusted for this rating) feeds the growth
// multipliers, so an item rated easy at ease 2.5 and interval 6 lands on
// round(6 x 2.6 x 1.3) = 20 days.
func calculateNewInterval(
	currentInterval int,
	newEaseFactor float64,
	rating domain.DifficultyRating,
	params *Params,
) int {
	if rating == domain.DifficultyAgain {
		return 0
	}

	var modifier float64
	switch rating {
	case domain.DifficultyHard:
		modifier = params.HardIntervalModifier
	case domain.DifficultyEasy:
		modifier = newEaseFactor * params.EasyBonus
	default:
		// Medium grows by the ease factor directly.
		modifier = newEaseFactor
	}

	interval := int(math.Round(float64(currentInterval) * modifier))
	if interval < 1 {
		interval = 1
	}
	return interval
}

// calculateNextState creates a new ReviewState reflecting one graded answer.
//
// The original state is never mutated: a deep copy is advanced and returned.
// Invariants maintained: ease factor >= MinEaseFactor, interval >= 0, and
// NextDueAt equals LastReviewedAt plus the new interval in days exactly.
func calculateNextState(
	state *domain.ReviewState,
	rating domain.DifficultyRating,
	correct bool,
	now time.Time,
	params *Params,
) *domain.ReviewState {
	next := state.Clone()

	next.ReviewCount++
	reviewedAt := now.UTC()
	next.LastReviewedAt = &reviewedAt

	next.EaseFactor = calculateNewEaseFactor(state.EaseFactor, rating, params)
	next.IntervalDays = calculateNewInterval(state.IntervalDays, next.EaseFactor, rating, params)
	next.LastRating = rating

	due := reviewedAt.AddDate(0, 0, next.IntervalDays)
	next.NextDueAt = &due

	if correct {
		next.CorrectCount++
	} else {
		next.IncorrectCount++
	}

	next.UpdatedAt = reviewedAt

	return next
}
