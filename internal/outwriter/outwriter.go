// Package outwriter has output and writer logic.
package outwriter

import (
	"time"

	"github.com/claritylab/clarity/internal/contract"
	"github.com/claritylab/clarity/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteFunnel prints the filter funnel using the configured output format.
func (ow *OutWriter) WriteFunnel(funnel schema.FilterFunnel, cfg *contract.Config, duration time.Duration) error {
	return WriteFunnelReport(funnel, cfg, duration)
}

// WriteCollectSummary prints the collector run summary using the configured output format.
func (ow *OutWriter) WriteCollectSummary(summary schema.CollectSummary, cfg *contract.Config) error {
	return WriteCollectSummaryReport(summary, cfg)
}

// WriteAnalysis prints hypothesis test results using the configured output format.
func (ow *OutWriter) WriteAnalysis(results []schema.AnalysisResult, cfg *contract.Config, duration time.Duration) error {
	return WriteAnalysisResults(results, cfg, duration)
}

// WriteRuns prints tracked collector runs using the configured output format.
func (ow *OutWriter) WriteRuns(runs []schema.RunRecord, cfg *contract.Config) error {
	return WriteRunList(runs, cfg)
}

// WriteStatus prints pipeline artifact and store status using the configured output format.
func (ow *OutWriter) WriteStatus(artifacts []schema.ArtifactStatus, stores []schema.StoreStatus, cfg *contract.Config) error {
	return WriteStatusReport(artifacts, stores, cfg)
}
