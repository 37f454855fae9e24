// Package stats rolls completed sessions and the per-answer activity log up
// into summaries, streaks, and accuracy trends. All computations here are
// pure given their inputs; persistence is reached only through the store
// interfaces.
package stats

import (
	"time"

	"github.com/lexireef/studyhall-api/internal/domain"
)

// Finalize derives the immutable summary for a session that has reached a
// terminal state. It is a pure function of the session's stats at the moment
// of finalization. Accuracy is expressed in percentage points and is zero
// when no cards were answered.
func Finalize(session *domain.Session, now time.Time) *domain.SessionSummary {
	finalizedAt := now.UTC()
	if session.CompletedAt != nil {
		finalizedAt = session.CompletedAt.UTC()
	}

	answered := session.Stats.Answered()
	accuracy := 0.0
	if answered > 0 {
		accuracy = float64(session.Stats.CorrectCount) / float64(answered) * 100
	}

	return &domain.SessionSummary{
		SessionID:      session.ID,
		LearnerID:      session.LearnerID,
		StudyMode:      session.Mode,
		TotalCards:     len(session.Deck),
		CorrectCount:   session.Stats.CorrectCount,
		IncorrectCount: session.Stats.IncorrectCount,
		AccuracyPct:    accuracy,
		Duration:       finalizedAt.Sub(session.CreatedAt.UTC()),
		CreatedAt:      session.CreatedAt.UTC(),
		FinalizedAt:    finalizedAt,
	}
}
