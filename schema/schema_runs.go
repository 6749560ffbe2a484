package schema

import "time"

// RunRecord is one persisted collect run, written when run tracking
// is enabled.
type RunRecord struct {
	ID           int64     `json:"run_id"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
	DurationMS   int64     `json:"duration_ms"`
	Sampled      int       `json:"sampled"`
	Succeeded    int       `json:"succeeded"`
	Resumed      int       `json:"resumed"`
	SkippedFetch int       `json:"skipped_fetch"`
	SkippedParse int       `json:"skipped_parse"`
	SkippedEmpty int       `json:"skipped_empty"`
	Workers      int       `json:"workers"`
	Notes        string    `json:"notes"`
}
