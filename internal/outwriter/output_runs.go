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

// WriteRunList outputs tracked collector runs, dispatching based on the output format configured.
func WriteRunList(runs []schema.RunRecord, cfg *contract.Config) error {
	_, intFmt := createFormatters(cfg.Precision)

	// Dispatcher: Handle different output formats
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, runs)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVRuns(w, runs)
		}, "Wrote CSV")
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRunTable(runs, cfg, intFmt, w)
		}, "Wrote table")
	}
}

// writeRunTable generates and writes the human-readable run table.
func writeRunTable(runs []schema.RunRecord, cfg *contract.Config, intFmt string, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)

	table.Header([]string{"Run", "Started", "Duration", "Sampled", "OK", "Resumed", "Skipped", "Workers", "Notes"})

	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	// Run + Started + Duration + counters leave this much for notes.
	notesWidth := GetMaxTableTextWidth(cfg, 60)

	var data [][]string
	for _, r := range runs {
		duration := "-"
		if !r.FinishedAt.IsZero() {
			duration = (time.Duration(r.DurationMS) * time.Millisecond).String()
		}
		skipped := r.SkippedFetch + r.SkippedParse + r.SkippedEmpty
		data = append(data, []string{
			strconv.FormatInt(r.ID, 10),
			r.StartedAt.Format(contract.DateTimeFormat),
			duration,
			fmt.Sprintf(intFmt, r.Sampled),
			fmt.Sprintf(intFmt, r.Succeeded),
			fmt.Sprintf(intFmt, r.Resumed),
			fmt.Sprintf(intFmt, skipped),
			fmt.Sprintf(intFmt, r.Workers),
			contract.TruncatePath(r.Notes, notesWidth),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(writer, "Showing %d runs. Runs backend: %s\n", len(runs), cfg.RunsBackend); err != nil {
		return err
	}
	return nil
}

// writeCSVRuns writes the run records in CSV format.
func writeCSVRuns(w io.Writer, runs []schema.RunRecord) error {
	header := []string{
		"run_id",
		"started_at",
		"finished_at",
		"duration_ms",
		"sampled",
		"succeeded",
		"resumed",
		"skipped_fetch",
		"skipped_parse",
		"skipped_empty",
		"workers",
		"notes",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, r := range runs {
			finished := ""
			if !r.FinishedAt.IsZero() {
				finished = r.FinishedAt.Format(contract.DateTimeFormat)
			}
			rec := []string{
				strconv.FormatInt(r.ID, 10),
				r.StartedAt.Format(contract.DateTimeFormat),
				finished,
				strconv.FormatInt(r.DurationMS, 10),
				strconv.Itoa(r.Sampled),
				strconv.Itoa(r.Succeeded),
				strconv.Itoa(r.Resumed),
				strconv.Itoa(r.SkippedFetch),
				strconv.Itoa(r.SkippedParse),
				strconv.Itoa(r.SkippedEmpty),
				strconv.Itoa(r.Workers),
				r.Notes,
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
