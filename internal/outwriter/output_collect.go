package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/claritylab/clarity/internal/contract"
	"github.com/claritylab/clarity/schema"
)

// collectOutcome is one rendered row of the collector summary.
type collectOutcome struct {
	Outcome string
	Commits int
}

// buildCollectOutcomes flattens the summary into render rows. Skip
// reasons appear in their declared order so output stays stable.
func buildCollectOutcomes(summary schema.CollectSummary) []collectOutcome {
	outcomes := []collectOutcome{
		{Outcome: "sampled", Commits: summary.Sampled},
		{Outcome: "succeeded", Commits: summary.Succeeded},
		{Outcome: "resumed from checkpoints", Commits: summary.Resumed},
	}
	for _, reason := range schema.AllSkipReasons {
		outcomes = append(outcomes, collectOutcome{
			Outcome: "skipped: " + string(reason),
			Commits: summary.Skipped[reason],
		})
	}
	return outcomes
}

// WriteCollectSummaryReport outputs the collector run summary, dispatching based on the output format configured.
func WriteCollectSummaryReport(summary schema.CollectSummary, cfg *contract.Config) error {
	_, intFmt := createFormatters(cfg.Precision)

	// Dispatcher: Handle different output formats
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, summary)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVCollectSummary(w, summary)
		}, "Wrote CSV")
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCollectSummaryTable(summary, cfg, intFmt, w)
		}, "Wrote table")
	}
}

// writeCollectSummaryTable generates and writes the human-readable summary table.
func writeCollectSummaryTable(summary schema.CollectSummary, cfg *contract.Config, intFmt string, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)

	table.Header([]string{"Outcome", "Commits"})

	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, outcome := range buildCollectOutcomes(summary) {
		data = append(data, []string{
			outcome.Outcome,
			fmt.Sprintf(intFmt, outcome.Commits),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(writer, "File-level failures: %d fetch, %d parse\n", summary.FileFetchFails, summary.FileParseFails); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Collection completed in %v with %d workers. Store backend: %s\n", summary.Duration, cfg.Workers, cfg.StoreBackend); err != nil {
		return err
	}
	return nil
}

// writeCSVCollectSummary writes the summary outcomes in CSV format.
func writeCSVCollectSummary(w io.Writer, summary schema.CollectSummary) error {
	header := []string{"outcome", "commits"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, outcome := range buildCollectOutcomes(summary) {
			rec := []string{outcome.Outcome, strconv.Itoa(outcome.Commits)}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
