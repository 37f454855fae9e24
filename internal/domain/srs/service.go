package srs

import (
	"errors"
	"time"

	"github.com/lexireef/studyhall-api/internal/domain"
)

// Common errors
var (
	ErrNilState      = errors.New("review state cannot be nil")
	ErrInvalidRating = errors.New("invalid difficulty rating")
	ErrInvalidDays   = errors.New("postpone days must be at least 1")
)

// Service defines the interface for scheduling algorithm operations.
type Service interface {
	// CalculateNextReview computes the new review state after one graded
	// answer. The returned state is a new instance; the input is unchanged.
	CalculateNextReview(
		state *domain.ReviewState,
		rating domain.DifficultyRating,
		correct bool,
		now time.Time,
	) (*domain.ReviewState, error)

	// PostponeReview pushes the next due time forward by a number of days
	// without counting a review.
	PostponeReview(
		state *domain.ReviewState,
		days int,
		now time.Time,
	) (*domain.ReviewState, error)
}

// defaultService is the standard implementation of the Service interface.
type defaultService struct {
	params *Params
}

// NewDefaultService creates a scheduling service with default parameters.
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a scheduling service with custom parameters.
func NewServiceWithParams(params *Params) Service {
	return &defaultService{
		params: params,
	}
}

// CalculateNextReview implements the Service interface.
func (s *defaultService) CalculateNextReview(
	state *domain.ReviewState,
	rating domain.DifficultyRating,
	correct bool,
	now time.Time,
) (*domain.ReviewState, error) {
	if state == nil {
		return nil, ErrNilState
	}

	if !rating.IsValid() {
		return nil, ErrInvalidRating
	}

	return calculateNextState(state, rating, correct, now, s.params), nil
}

// PostponeReview implements the Service interface.
func (s *defaultService) PostponeReview(
	state *domain.ReviewState,
	days int,
	now time.Time,
) (*domain.ReviewState, error) {
	if state == nil {
		return nil, ErrNilState
	}

	if days < 1 {
		return nil, ErrInvalidDays
	}

	next := state.Clone()

	// Never-reviewed items have no due date to push; postponing one anchors
	// the due date at now plus the requested days.
	base := now.UTC()
	if next.NextDueAt != nil {
		base = *next.NextDueAt
	}
	due := base.AddDate(0, 0, days)
	next.NextDueAt = &due
	next.UpdatedAt = now.UTC()

	return next, nil
}
