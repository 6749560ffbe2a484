package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/claritylab/clarity/internal/contract"
	"github.com/claritylab/clarity/schema"
)

// funnelStage is one rendered row of the filter funnel.
type funnelStage struct {
	Stage   string   `json:"stage"`
	Unit    string   `json:"unit"`
	Count   int      `json:"count"`
	KeptPct *float64 `json:"kept_pct"` // percent of the previous stage, nil across unit changes
}

// funnelReport is the complete render model for the count stage.
type funnelReport struct {
	Stages     []funnelStage `json:"stages"`
	Qualifying int           `json:"qualifying"`
}

// buildFunnelReport flattens the funnel counts into render rows. The
// keyword and owner stages only appear when the matching filter is on.
func buildFunnelReport(funnel schema.FilterFunnel, cfg *contract.Config) funnelReport {
	stages := []funnelStage{
		{Stage: "file-change rows", Unit: "rows", Count: funnel.FileRows},
		{Stage: "merged pull request", Unit: "rows", Count: funnel.MergedRows},
		{Stage: "allowed extension", Unit: "rows", Count: funnel.ExtensionRows},
		{Stage: "non-trivial diff", Unit: "rows", Count: funnel.NontrivialRows},
		{Stage: "distinct commits", Unit: "commits", Count: funnel.Commits},
	}
	if cfg.KeywordMatch {
		stages = append(stages, funnelStage{Stage: "keyword match", Unit: "commits", Count: funnel.KeywordCommits})
	}
	if cfg.ExcludeForks {
		stages = append(stages, funnelStage{Stage: "primary owner", Unit: "commits", Count: funnel.OwnerCommits})
	}
	for i := range stages {
		if i == 0 || stages[i].Unit != stages[i-1].Unit {
			// The first row and the rows-to-commits grouping have no
			// previous count to compare against.
			continue
		}
		if prev := stages[i-1].Count; prev > 0 {
			pct := float64(stages[i].Count) / float64(prev) * 100.0
			stages[i].KeptPct = &pct
		}
	}
	return funnelReport{Stages: stages, Qualifying: stages[len(stages)-1].Count}
}

// WriteFunnelReport outputs the filter funnel, dispatching based on the output format configured.
func WriteFunnelReport(funnel schema.FilterFunnel, cfg *contract.Config, duration time.Duration) error {
	// Create formatters using helper
	fmtFloat, intFmt := createFormatters(cfg.Precision)
	report := buildFunnelReport(funnel, cfg)

	// Dispatcher: Handle different output formats
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, report)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVFunnel(w, report, fmtFloat)
		}, "Wrote CSV")
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeFunnelTable(report, fmtFloat, intFmt, duration, w)
		}, "Wrote table")
	}
}

// writeFunnelTable generates and writes the human-readable funnel table.
func writeFunnelTable(report funnelReport, fmtFloat func(float64) string, intFmt string, duration time.Duration, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)

	table.Header([]string{"Stage", "Unit", "Count", "Kept"})

	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, stage := range report.Stages {
		kept := "-"
		if stage.KeptPct != nil {
			kept = fmtFloat(*stage.KeptPct) + "%"
		}
		data = append(data, []string{
			stage.Stage,
			stage.Unit,
			fmt.Sprintf(intFmt, stage.Count),
			kept,
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(writer, "%d commits qualify for extraction\n", report.Qualifying); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Counted in %v\n", duration); err != nil {
		return err
	}
	return nil
}

// writeCSVFunnel writes the funnel stages in CSV format.
func writeCSVFunnel(w io.Writer, report funnelReport, fmtFloat func(float64) string) error {
	header := []string{"stage", "unit", "count", "kept_pct"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, stage := range report.Stages {
			kept := ""
			if stage.KeptPct != nil {
				kept = fmtFloat(*stage.KeptPct)
			}
			rec := []string{stage.Stage, stage.Unit, strconv.Itoa(stage.Count), kept}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
