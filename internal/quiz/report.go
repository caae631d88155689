package quiz

import (
	"context"
	"fmt"
	"time"

	"github.com/abhisek/studyhall/internal/store"
)

// Report is the read-only summary of a completed quiz.
type Report struct {
	Subject     string    `json:"subject"`
	Score       int       `json:"score"`
	Total       int       `json:"total"`
	Percentage  float64   `json:"percentage"`
	Performance string    `json:"performance"`
	WeakAreas   []string  `json:"weak_areas"`
	CompletedAt time.Time `json:"completed_at"`
}

// PerformanceLabel grades a percentage.
func PerformanceLabel(pct float64) string {
	switch {
	case pct >= 80:
		return "Excellent!"
	case pct >= 60:
		return "Good Job!"
	default:
		return "Keep Practicing!"
	}
}

// Summary renders the score line, e.g. "4/5 (80.0%)".
func (r Report) Summary() string {
	return fmt.Sprintf("%d/%d (%.1f%%)", r.Score, r.Total, r.Percentage)
}

const (
	reportsKey     = "quiz:reports"
	reportCapacity = 20
)

// ReportLog keeps the most recent completed reports, newest first.
type ReportLog struct {
	store store.SessionStore
}

// NewReportLog creates a ReportLog on s.
func NewReportLog(s store.SessionStore) *ReportLog {
	return &ReportLog{store: s}
}

// Append adds r at the front and drops the oldest beyond capacity.
func (l *ReportLog) Append(ctx context.Context, r Report) error {
	reports, err := store.GetList[Report](ctx, l.store, reportsKey)
	if err != nil {
		// A corrupt log is replaced rather than blocking new reports.
		reports = nil
	}
	reports = append([]Report{r}, reports...)
	if len(reports) > reportCapacity {
		reports = reports[:reportCapacity]
	}
	if err := store.SetList(ctx, l.store, reportsKey, reports); err != nil {
		return fmt.Errorf("save quiz reports: %w", err)
	}
	return nil
}

// List returns the stored reports, newest first.
func (l *ReportLog) List(ctx context.Context) ([]Report, error) {
	return store.GetList[Report](ctx, l.store, reportsKey)
}

// Clear removes every stored report.
func (l *ReportLog) Clear(ctx context.Context) error {
	return l.store.Delete(ctx, reportsKey)
}
