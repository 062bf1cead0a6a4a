// Package summary reduces raw directory, ledger and task records to
// per-employee summaries and fleet-wide daily aggregates.
package summary

import (
	"math"
	"strings"
	"time"

	"emptrack/internal/source"
)

const (
	weekDays  = 7
	monthDays = 30

	// DefaultLateAfter is 10:30 local.
	DefaultLateAfter = 10*time.Hour + 30*time.Minute
)

// Summarizer computes summaries over one source snapshot, anchored at
// the local calendar day of now.
type Summarizer struct {
	snap      source.Snapshot
	now       time.Time
	today     time.Time
	lateAfter time.Duration
}

// New creates a summariser. A non-positive lateAfter selects
// DefaultLateAfter.
func New(snap source.Snapshot, now time.Time, lateAfter time.Duration) *Summarizer {
	if lateAfter <= 0 {
		lateAfter = DefaultLateAfter
	}
	now = now.Local()
	return &Summarizer{
		snap:      snap,
		now:       now,
		today:     dayOf(now),
		lateAfter: lateAfter,
	}
}

// Snapshot returns the snapshot the summariser reads.
func (s *Summarizer) Snapshot() source.Snapshot { return s.snap }

// Today returns local midnight of the anchor day.
func (s *Summarizer) Today() time.Time { return s.today }

// Rating buckets an average performance percentage.
func Rating(avg float64) string {
	switch {
	case avg >= 80:
		return "Excellent"
	case avg >= 60:
		return "Good"
	case avg >= 40:
		return "Fair"
	default:
		return "Needs Improvement"
	}
}

func dayOf(t time.Time) time.Time {
	t = t.Local()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den) * 100
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func sameFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
