package stats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lexireef/studyhall-api/internal/store"
)

// TrendDirection classifies how a learner's accuracy moved across a window.
type TrendDirection string

const (
	TrendPositive TrendDirection = "positive"
	TrendNegative TrendDirection = "negative"
	TrendStable   TrendDirection = "stable"
)

// trendThreshold is the accuracy delta, in percentage points, below which a
// change counts as stable.
const trendThreshold = 5.0

// ErrInvalidWindow is returned when a trend or overview window is not a
// positive day count.
var ErrInvalidWindow = errors.New("window must be a positive number of days")

// Streak describes consecutive-day study activity. A day is active when the
// learner answered at least one card on that UTC calendar day.
type Streak struct {
	Current int `json:"current"`
	Longest int `json:"longest"`
}

// Overview aggregates a learner's finalized sessions over a recent window.
type Overview struct {
	WindowDays        int     `json:"window_days"`
	SessionCount      int     `json:"session_count"`
	CardsAnswered     int     `json:"cards_answered"`
	CorrectCount      int     `json:"correct_count"`
	AccuracyPct       float64 `json:"accuracy_pct"`
	TotalStudySeconds float64 `json:"total_study_seconds"`
	CurrentStreakDays int     `json:"current_streak_days"`
	LongestStreakDays int     `json:"longest_streak_days"`
}

// Aggregator answers read-only analytics queries for a learner.
type Aggregator struct {
	summaries store.SummaryStore
	log       store.ReviewLogStore
	clock     func() time.Time
	logger    *slog.Logger
}

// NewAggregator creates a stats aggregator.
func NewAggregator(
	summaries store.SummaryStore,
	reviewLog store.ReviewLogStore,
	clock func() time.Time,
	logger *slog.Logger,
) *Aggregator {
	if summaries == nil {
		panic("summary store cannot be nil")
	}
	if reviewLog == nil {
		panic("review log store cannot be nil")
	}
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Aggregator{
		summaries: summaries,
		log:       reviewLog,
		clock:     clock,
		logger:    logger.With(slog.String("component", "stats_aggregator")),
	}
}

// ComputeStreak returns the learner's current and longest consecutive-day
// streaks. The current streak counts consecutive active days ending today or
// yesterday: a day with no activity yet does not break a streak that was
// alive through yesterday.
func (a *Aggregator) ComputeStreak(ctx context.Context, learnerID uuid.UUID) (Streak, error) {
	days, err := a.log.ActiveDays(ctx, learnerID)
	if err != nil {
		return Streak{}, fmt.Errorf("failed to load active days: %w", err)
	}
	return computeStreak(days, a.clock()), nil
}

// computeStreak works over already-sorted distinct UTC days.
func computeStreak(days []time.Time, now time.Time) Streak {
	if len(days) == 0 {
		return Streak{}
	}

	today := utcDay(now)
	yesterday := today.AddDate(0, 0, -1)

	longest := 1
	run := 1
	for i := 1; i < len(days); i++ {
		if utcDay(days[i]).Sub(utcDay(days[i-1])) == 24*time.Hour {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}

	last := utcDay(days[len(days)-1])
	current := 0
	if last.Equal(today) || last.Equal(yesterday) {
		current = run
	}

	return Streak{Current: current, Longest: longest}
}

// ComputeTrend compares the learner's mean per-day accuracy over the most
// recent windowDays/2 days against the preceding half. Movement within five
// percentage points, or a window with an empty half, is stable.
func (a *Aggregator) ComputeTrend(
	ctx context.Context,
	learnerID uuid.UUID,
	windowDays int,
) (TrendDirection, error) {
	if windowDays <= 0 {
		return "", ErrInvalidWindow
	}

	now := a.clock()
	since := utcDay(now).AddDate(0, 0, -(windowDays - 1))

	activity, err := a.log.DailyActivity(ctx, learnerID, since)
	if err != nil {
		return "", fmt.Errorf("failed to load daily activity: %w", err)
	}

	return computeTrend(activity, now, windowDays), nil
}

func computeTrend(activity []store.DayActivity, now time.Time, windowDays int) TrendDirection {
	half := windowDays / 2
	if half == 0 {
		return TrendStable
	}

	// Recent half covers the last `half` days ending today; the earlier half
	// is everything before that within the window.
	recentStart := utcDay(now).AddDate(0, 0, -(half - 1))

	recent := meanDailyAccuracyPct(activity, func(day time.Time) bool {
		return !day.Before(recentStart)
	})
	earlier := meanDailyAccuracyPct(activity, func(day time.Time) bool {
		return day.Before(recentStart)
	})

	if recent == nil || earlier == nil {
		return TrendStable
	}

	delta := *recent - *earlier
	switch {
	case delta > trendThreshold:
		return TrendPositive
	case delta < -trendThreshold:
		return TrendNegative
	default:
		return TrendStable
	}
}

// meanDailyAccuracyPct averages per-day accuracy, in percentage points, over
// the active days matched by include. Returns nil when no day matches.
func meanDailyAccuracyPct(activity []store.DayActivity, include func(time.Time) bool) *float64 {
	sum := 0.0
	n := 0
	for _, day := range activity {
		if day.Total == 0 || !include(utcDay(day.Day)) {
			continue
		}
		sum += day.Accuracy() * 100
		n++
	}
	if n == 0 {
		return nil
	}
	mean := sum / float64(n)
	return &mean
}

// ComputeOverview aggregates the learner's finalized sessions over the last
// windowDays days, alongside streak figures.
func (a *Aggregator) ComputeOverview(
	ctx context.Context,
	learnerID uuid.UUID,
	windowDays int,
) (Overview, error) {
	if windowDays <= 0 {
		return Overview{}, ErrInvalidWindow
	}

	now := a.clock()
	since := utcDay(now).AddDate(0, 0, -(windowDays - 1))

	summaries, err := a.summaries.ListByLearner(ctx, learnerID, since)
	if err != nil {
		return Overview{}, fmt.Errorf("failed to load session summaries: %w", err)
	}

	streak, err := a.ComputeStreak(ctx, learnerID)
	if err != nil {
		return Overview{}, err
	}

	out := Overview{
		WindowDays:        windowDays,
		CurrentStreakDays: streak.Current,
		LongestStreakDays: streak.Longest,
	}
	answered := 0
	for _, summary := range summaries {
		out.SessionCount++
		answered += summary.CorrectCount + summary.IncorrectCount
		out.CorrectCount += summary.CorrectCount
		out.TotalStudySeconds += summary.Duration.Seconds()
	}
	out.CardsAnswered = answered
	if answered > 0 {
		out.AccuracyPct = float64(out.CorrectCount) / float64(answered) * 100
	}

	return out, nil
}

func utcDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
