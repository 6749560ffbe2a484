package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/fatih/color"

	"github.com/claritylab/clarity/schema"
)

// Color variables for console output.
var (
	ImprovementColor = color.New(color.FgGreen, color.Bold) // improvementColor marks a rejected null in the good direction.
	RegressionColor  = color.New(color.FgRed, color.Bold)   // regressionColor marks a rejected null in the bad direction.
	NeutralColor     = color.New(color.FgYellow)            // neutralColor marks a retained null, not bold.
	UndefinedColor   = color.New(color.FgCyan)              // undefinedColor marks a degenerate test.
)

// GetPlainVerdict returns the plain text form of a verdict. This is the
// core value used for CSV, JSON, and table printing.
func GetPlainVerdict(v schema.Verdict) string {
	return string(v)
}

// GetColorVerdict returns a colored verdict for console output (table).
// It uses GetPlainVerdict to determine the string, and then applies the
// appropriate color.
func GetColorVerdict(v schema.Verdict) string {
	text := GetPlainVerdict(v)

	switch v {
	case schema.VerdictImprovement:
		return ImprovementColor.Sprint(text)
	case schema.VerdictRegression:
		return RegressionColor.Sprint(text)
	case schema.VerdictDegenerate:
		return UndefinedColor.Sprint(text)
	default: // "no significant difference"
		return NeutralColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path and format type. It falls back to os.Stdout on error.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// HasAllowedExtension reports whether the path ends in one of the
// configured source extensions. Matching is case-insensitive and the
// extension list is expected in normalized ".ext" form.
func HasAllowedExtension(path string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return false
	}
	return slices.Contains(exts, ext)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetStoreDBFilePath returns the path to the SQLite DB file for checkpoint storage.
func GetStoreDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".clarity_checkpoint.db"
	}
	return filepath.Join(homeDir, ".clarity_checkpoint.db")
}

// GetRunsDBFilePath returns the path to the SQLite DB file for run storage.
func GetRunsDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".clarity_runs.db"
	}
	return filepath.Join(homeDir, ".clarity_runs.db")
}

// TruncatePath truncates a file path to a maximum width with ellipsis prefix.
// Requires maxWidth > 3 to ensure there's space for both the "..." prefix and at least one character of content.
// Without this check, small maxWidth values could cause slice bounds errors in the truncation calculation.
func TruncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return path
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
