// Package grading evaluates submitted answers. Everything here is pure:
// given the same card, mode and answer, the outputs are identical, which is
// what lets the session service treat grading as a deterministic step.
package grading

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lexireef/studyhall-api/internal/domain"
)

// Common errors
var (
	// ErrUnknownMode is returned when the study mode is not a concrete,
	// gradeable mode. Mixed sessions resolve each deck entry to a concrete
	// mode at selection time, so mixed never reaches the evaluator.
	ErrUnknownMode = errors.New("study mode cannot be graded")

	// ErrInvalidAnswer is returned when answer metadata is out of range.
	ErrInvalidAnswer = errors.New("invalid answer data")
)

// Confidence score weights. A correct answer starts at CorrectBase; speed
// and declared confidence add up to TimeBonusMax and ConfidenceBonusMax
// respectively, and each hint subtracts HintPenalty. The result is clamped
// to [0, 1].
const (
	CorrectBase        = 0.6
	TimeBonusMax       = 0.2
	ConfidenceBonusMax = 0.2
	HintPenalty        = 0.05

	// MaxConfidenceLevel bounds the learner's declared confidence;
	// 0 means not declared.
	MaxConfidenceLevel = 5
)

// expectedTimeSeconds is the per-mode response-time baseline. Answers faster
// than the baseline earn a proportional share of TimeBonusMax; answers at or
// over it earn nothing.
var expectedTimeSeconds = map[domain.StudyMode]float64{
	domain.StudyModeReview:   5,
	domain.StudyModePractice: 8,
	domain.StudyModeTest:     6,
	domain.StudyModeWrite:    12,
	domain.StudyModeListen:   7,
}

// Answer is one submitted response with its metadata.
type Answer struct {
	Response            string
	ResponseTimeSeconds float64
	HintsUsed           int

	// ConfidenceLevel is the learner's declared confidence, 1 (guessing)
	// to 5 (certain). 0 means not declared.
	ConfidenceLevel int
}

// Validate checks the answer metadata ranges.
func (a Answer) Validate() error {
	if a.ResponseTimeSeconds < 0 {
		return fmt.Errorf("%w: response time cannot be negative", ErrInvalidAnswer)
	}
	if a.HintsUsed < 0 {
		return fmt.Errorf("%w: hints used cannot be negative", ErrInvalidAnswer)
	}
	if a.ConfidenceLevel < 0 || a.ConfidenceLevel > MaxConfidenceLevel {
		return fmt.Errorf("%w: confidence level must be between 0 and %d", ErrInvalidAnswer, MaxConfidenceLevel)
	}
	return nil
}

// Result is the pure grading outcome for one answer.
type Result struct {
	Correct         bool
	ConfidenceScore float64
}

// Evaluate grades an answer against a card under a concrete study mode.
func Evaluate(item *domain.VocabularyItem, mode domain.StudyMode, answer Answer) (Result, error) {
	if item == nil {
		return Result{}, fmt.Errorf("%w: card cannot be nil", ErrInvalidAnswer)
	}

	if !mode.IsConcrete() {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}

	if err := answer.Validate(); err != nil {
		return Result{}, err
	}

	correct := matches(item, mode, answer.Response)

	return Result{
		Correct:         correct,
		ConfidenceScore: confidenceScore(mode, correct, answer),
	}, nil
}

// matches dispatches the per-mode correctness check over the closed mode set.
//
//   - review, write and listen prompt with the definition side and expect
//     the head word. Listen input has already been transcribed by the caller;
//     no audio is handled here.
//   - practice inverts the roles and expects the definition.
//   - test is multiple choice over translations; the designated correct
//     option is the card's translation.
func matches(item *domain.VocabularyItem, mode domain.StudyMode, response string) bool {
	got := Normalize(response)
	if got == "" {
		return false
	}

	switch mode {
	case domain.StudyModePractice:
		return got == Normalize(item.Definition)
	case domain.StudyModeTest:
		return got == Normalize(item.Translation)
	default:
		return got == Normalize(item.Word)
	}
}

// Normalize lowercases a response and collapses all whitespace runs to
// single spaces, so "  Blue   Whale " and "blue whale" compare equal.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// confidenceScore combines correctness, speed, declared confidence and hint
// usage into a score in [0, 1].
func confidenceScore(mode domain.StudyMode, correct bool, answer Answer) float64 {
	score := 0.0
	if correct {
		score = CorrectBase
	}

	baseline := expectedTimeSeconds[mode]
	if answer.ResponseTimeSeconds < baseline {
		score += TimeBonusMax * (baseline - answer.ResponseTimeSeconds) / baseline
	}

	if answer.ConfidenceLevel > 0 {
		score += ConfidenceBonusMax * float64(answer.ConfidenceLevel-1) / float64(MaxConfidenceLevel-1)
	}

	score -= HintPenalty * float64(answer.HintsUsed)

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
