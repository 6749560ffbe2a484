package core

import (
	"context"
	"time"

	"github.com/claritylab/clarity/internal/contract"
	"github.com/claritylab/clarity/internal/outwriter"
	"github.com/claritylab/clarity/internal/parquet"
)

// ExecuteExtract filters the raw commit table down to qualifying
// commits and writes the result as both CSV and Parquet. The two
// files carry identical rows in identical order.
func ExecuteExtract(_ context.Context, cfg *contract.Config) error {
	start := time.Now()

	funnel, commits, err := runExtraction(cfg)
	if err != nil {
		return err
	}

	if err := WriteFilteredCommitsCSV(commits, cfg.FilteredCSVPath); err != nil {
		return err
	}
	outwriter.NoteArtifact("filtered commits", cfg.FilteredCSVPath)

	if err := parquet.WriteFilteredCommitsParquet(commits, cfg.FilteredParquetPath); err != nil {
		return err
	}
	outwriter.NoteArtifact("filtered commits", cfg.FilteredParquetPath)

	duration := time.Since(start)
	ow := outwriter.NewOutWriter()
	return ow.WriteFunnel(funnel, cfg, duration)
}
