package srs

import (
	"github.com/lexireef/studyhall-api/internal/domain"
)

// Params defines all configurable parameters for the scheduling algorithm.
type Params struct {
	// Core limits
	MinEaseFactor float64

	// Per-rating ease factor adjustments
	EaseAdjustment map[domain.DifficultyRating]float64

	// HardIntervalModifier is the fixed growth multiplier for "hard" answers;
	// "medium" and "easy" grow by the ease factor instead.
	HardIntervalModifier float64

	// EasyBonus is the extra multiplier applied on top of the ease factor
	// for "easy" answers.
	EasyBonus float64
}

// NewDefaultParams creates a new Params instance with default values.
//
// The defaults implement a simplified SM-2 variant:
//   - "again" drops the ease factor by 0.20 and resets the interval to 0,
//     making the item due immediately.
//   - "hard" drops the ease factor by 0.05 and grows the interval by 1.2.
//   - "medium" keeps the ease factor and grows the interval by it.
//   - "easy" raises the ease factor by 0.10 and grows the interval by the
//     ease factor times a 1.3 bonus.
func NewDefaultParams() *Params {
	return &Params{
		MinEaseFactor: domain.MinEaseFactor,

		EaseAdjustment: map[domain.DifficultyRating]float64{
			domain.DifficultyAgain:  -0.20,
			domain.DifficultyHard:   -0.05,
			domain.DifficultyMedium: 0.0,
			domain.DifficultyEasy:   0.10,
		},

		HardIntervalModifier: 1.2,
		EasyBonus:            1.3,
	}
}
