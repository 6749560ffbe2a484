package core

import (
	"context"
	"time"

	"github.com/claritylab/clarity/internal/contract"
	"github.com/claritylab/clarity/internal/outwriter"
)

// ExecuteCount reports how many commits qualify for the study.
// It runs the same filters as extract but writes no artifacts, so it
// serves as a dry run over the raw tables.
func ExecuteCount(_ context.Context, cfg *contract.Config) error {
	start := time.Now()

	funnel, _, err := runExtraction(cfg)
	if err != nil {
		return err
	}

	duration := time.Since(start)
	ow := outwriter.NewOutWriter()
	return ow.WriteFunnel(funnel, cfg, duration)
}
