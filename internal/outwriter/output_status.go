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

// statusReport is the complete render model for the status command.
type statusReport struct {
	Artifacts []schema.ArtifactStatus `json:"artifacts"`
	Stores    []schema.StoreStatus    `json:"stores"`
}

// WriteStatusReport outputs artifact and store status, dispatching based on the output format configured.
func WriteStatusReport(artifacts []schema.ArtifactStatus, stores []schema.StoreStatus, cfg *contract.Config) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)
	report := statusReport{Artifacts: artifacts, Stores: stores}

	// Dispatcher: Handle different output formats
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, report)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVStatus(w, report)
		}, "Wrote CSV")
	default:
		// Default to human-readable tables
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeStatusTables(report, cfg, fmtFloat, intFmt, w)
		}, "Wrote table")
	}
}

// writeStatusTables generates and writes the artifact and store tables.
func writeStatusTables(report statusReport, cfg *contract.Config, fmtFloat func(float64) string, intFmt string, writer io.Writer) error {
	artifactTable := tablewriter.NewWriter(writer)

	artifactTable.Header([]string{"Artifact", "Path", "Rows", "Modified"})

	artifactTable.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	// Artifact + Rows + Modified leave this much for the path.
	pathWidth := GetMaxTableTextWidth(cfg, 55)

	var artifactData [][]string
	for _, a := range report.Artifacts {
		rows := "-"
		modified := "missing"
		if a.Exists {
			modified = a.Modified.Format(contract.DateTimeFormat)
			if a.Rows >= 0 {
				rows = strconv.FormatInt(a.Rows, 10)
			}
		}
		artifactData = append(artifactData, []string{
			a.Name,
			contract.TruncatePath(a.Path, pathWidth),
			rows,
			modified,
		})
	}

	if err := artifactTable.Bulk(artifactData); err != nil {
		return err
	}
	if err := artifactTable.Render(); err != nil {
		return err
	}

	if len(report.Stores) == 0 {
		_, err := fmt.Fprintf(writer, "No stores configured\n")
		return err
	}

	storeTable := tablewriter.NewWriter(writer)

	storeTable.Header([]string{"Store", "Backend", "Rows", "Oldest", "Newest", "Size (KB)"})

	storeTable.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	var storeData [][]string
	for _, s := range report.Stores {
		oldest, newest := "-", "-"
		if !s.Oldest.IsZero() {
			oldest = s.Oldest.Format(contract.DateTimeFormat)
		}
		if !s.Newest.IsZero() {
			newest = s.Newest.Format(contract.DateTimeFormat)
		}
		size := "-"
		if s.SizeKnown {
			size = fmtFloat(float64(s.SizeBytes) / 1024.0)
		}
		storeData = append(storeData, []string{
			s.Name,
			string(s.Backend),
			fmt.Sprintf(intFmt, s.Rows),
			oldest,
			newest,
			size,
		})
	}

	if err := storeTable.Bulk(storeData); err != nil {
		return err
	}
	return storeTable.Render()
}

// writeCSVStatus writes both status sections in one CSV stream, using a
// kind column to separate artifacts from stores.
func writeCSVStatus(w io.Writer, report statusReport) error {
	header := []string{"kind", "name", "location", "rows", "modified"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, a := range report.Artifacts {
			rows, modified := "", ""
			if a.Exists {
				modified = a.Modified.Format(contract.DateTimeFormat)
				if a.Rows >= 0 {
					rows = strconv.FormatInt(a.Rows, 10)
				}
			}
			if err := cw.Write([]string{"artifact", a.Name, a.Path, rows, modified}); err != nil {
				return err
			}
		}
		for _, s := range report.Stores {
			newest := ""
			if !s.Newest.IsZero() {
				newest = s.Newest.Format(contract.DateTimeFormat)
			}
			rec := []string{"store", s.Name, string(s.Backend), strconv.FormatInt(s.Rows, 10), newest}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
