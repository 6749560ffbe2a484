package contract

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/claritylab/clarity/schema"
)

// Default values for configuration.
const (
	DefaultDataDir          = "data"
	DefaultSampleSize       = 231
	DefaultSampleSeed       = 42
	DefaultAlpha            = 0.05
	DefaultPrecision        = 3
	MaxPrecision            = 6
	DefaultRetryAttempts    = 3
	MaxRetryAttempts        = 10
	DefaultRetrievalTimeout = "30s"
	DefaultRunsLimit        = 20
)

// Input and output artifact names under the data directory.
const (
	CommitsFile       = "commits.parquet"
	PullRequestsFile  = "pull_requests.parquet"
	CommitDetailsFile = "commit_details.parquet"

	FilteredCSVFile     = "filtered_commits.csv"
	FilteredParquetFile = "filtered_commits.parquet"
	SampledCSVFile      = "sampled_commits.csv"
	MetricsCSVFile      = "commit_metrics.csv"
	AnalysisCSVFile     = "analysis_results.csv"

	RepoCacheDirName = "repos"
)

// MetricsRevision tags the measurement rules baked into this build.
// Bump it when the counting or scoring rules change, so checkpoint rows
// from older runs are not reused.
const MetricsRevision = "m1"

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// DefaultExtensions are the source extensions measured by default.
var DefaultExtensions = []string{".go"}

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// Config holds the runtime configuration for the pipeline.
// This struct remains the "final, validated" config.
type Config struct {
	DataDir string

	CommitsPath       string
	PullRequestsPath  string
	CommitDetailsPath string

	FilteredCSVPath     string
	FilteredParquetPath string
	SampledCSVPath      string
	MetricsCSVPath      string
	AnalysisCSVPath     string

	RepoCacheDir string

	Extensions   []string
	Keywords     []string
	KeywordMatch bool // restrict extraction to readability-motivated messages
	ExcludeForks bool // restrict extraction to the most common repo owner

	SampleSize int
	SampleSeed int64

	Alpha  float64
	Method schema.TestMethod

	Workers          int
	RetryAttempts    int
	RetrievalTimeout time.Duration
	Resume           bool
	Notes            string

	Output     schema.OutputMode
	OutputFile string
	Precision  int
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool

	StoreBackend   schema.StoreBackend
	StoreDBConnect string // Please use env var as this is plaintext

	RunsBackend   schema.StoreBackend
	RunsDBConnect string // Please use env var as this is plaintext
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	DataDir           string `mapstructure:"data-dir"`
	CommitsFile       string `mapstructure:"commits-file"`
	PullRequestsFile  string `mapstructure:"pull-requests-file"`
	CommitDetailsFile string `mapstructure:"commit-details-file"`
	RepoCacheDir      string `mapstructure:"repo-cache-dir"`
	Extensions        string `mapstructure:"extensions"`
	Output            string `mapstructure:"output"`
	OutputFile        string `mapstructure:"output-file"`
	Precision         int    `mapstructure:"precision"`
	Width             int    `mapstructure:"width"`
	Color             string `mapstructure:"color"`
	StoreBackend      string `mapstructure:"store-backend"`
	StoreDBConnect    string `mapstructure:"store-db-connect"`
	RunsBackend       string `mapstructure:"runs-backend"`
	RunsDBConnect     string `mapstructure:"runs-db-connect"`

	// --- Fields from extractCmd.Flags() ---
	Keywords     string `mapstructure:"keywords"`
	KeywordMatch bool   `mapstructure:"keyword-match"`
	ExcludeForks bool   `mapstructure:"exclude-forks"`

	// --- Fields from sampleCmd.Flags() ---
	SampleSize int   `mapstructure:"sample-size"`
	SampleSeed int64 `mapstructure:"sample-seed"`

	// --- Fields from collectCmd.Flags() ---
	Workers          int    `mapstructure:"workers"`
	RetryAttempts    int    `mapstructure:"retry-attempts"`
	RetrievalTimeout string `mapstructure:"retrieval-timeout"`
	Resume           bool   `mapstructure:"resume"`
	Notes            string `mapstructure:"notes"`

	// --- Fields from analyzeCmd.Flags() ---
	Alpha  float64 `mapstructure:"alpha"`
	Method string  `mapstructure:"method"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Extensions != nil {
		clone.Extensions = make([]string, len(c.Extensions))
		copy(clone.Extensions, c.Extensions)
	}
	if c.Keywords != nil {
		clone.Keywords = make([]string, len(c.Keywords))
		copy(clone.Keywords, c.Keywords)
	}
	return &clone
}

// Fingerprint returns a short hash over the settings that shape metric
// rows. Checkpoint rows carrying a different fingerprint are not reused.
func (c *Config) Fingerprint() string {
	h := sha256.New()
	for _, ext := range c.Extensions {
		_, _ = io.WriteString(h, ext)
		_, _ = io.WriteString(h, ",")
	}
	_, _ = io.WriteString(h, MetricsRevision)
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// ProcessAndValidate performs all complex parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	// All validation functions read from 'input' and populate 'cfg'.
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processPaths(cfg, input); err != nil {
		return err
	}
	if err := processFilters(cfg, input); err != nil {
		return err
	}
	if err := processSampling(cfg, input); err != nil {
		return err
	}
	if err := processAnalysis(cfg, input); err != nil {
		return err
	}
	if err := processRetrieval(cfg, input); err != nil {
		return err
	}
	return validateBackendConfigs(cfg, input)
}

// validateSimpleInputs processes and validates all non-path related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.Notes = input.Notes

	// Parse color flag
	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. Workers Validation ---
	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	// --- 2. Precision and Output Validation ---
	if input.Precision < 1 || input.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 1 and %d (received %d)", MaxPrecision, input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be table, csv, json", cfg.Output)
	}

	return nil
}

// processPaths resolves the data directory and every artifact path in it.
func processPaths(cfg *Config, input *ConfigRawInput) error {
	dataDir := input.DataDir
	if dataDir == "" {
		dataDir = DefaultDataDir
	}
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return err
	}
	cfg.DataDir = filepath.Clean(absDataDir)

	resolve := func(name, fallback string) string {
		if name == "" {
			name = fallback
		}
		if filepath.IsAbs(name) {
			return filepath.Clean(name)
		}
		return filepath.Join(cfg.DataDir, name)
	}

	cfg.CommitsPath = resolve(input.CommitsFile, CommitsFile)
	cfg.PullRequestsPath = resolve(input.PullRequestsFile, PullRequestsFile)
	cfg.CommitDetailsPath = resolve(input.CommitDetailsFile, CommitDetailsFile)

	cfg.FilteredCSVPath = filepath.Join(cfg.DataDir, FilteredCSVFile)
	cfg.FilteredParquetPath = filepath.Join(cfg.DataDir, FilteredParquetFile)
	cfg.SampledCSVPath = filepath.Join(cfg.DataDir, SampledCSVFile)
	cfg.MetricsCSVPath = filepath.Join(cfg.DataDir, MetricsCSVFile)
	cfg.AnalysisCSVPath = filepath.Join(cfg.DataDir, AnalysisCSVFile)

	cfg.RepoCacheDir = resolve(input.RepoCacheDir, RepoCacheDirName)
	return nil
}

// processFilters normalizes the extension and keyword filters.
func processFilters(cfg *Config, input *ConfigRawInput) error {
	cfg.KeywordMatch = input.KeywordMatch
	cfg.ExcludeForks = input.ExcludeForks

	cfg.Extensions = nil
	for part := range strings.SplitSeq(input.Extensions, ",") {
		ext := strings.ToLower(strings.TrimSpace(part))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		cfg.Extensions = append(cfg.Extensions, ext)
	}
	if len(cfg.Extensions) == 0 {
		return fmt.Errorf("at least one source extension is required (received %q)", input.Extensions)
	}

	cfg.Keywords = nil
	for part := range strings.SplitSeq(input.Keywords, ",") {
		kw := strings.ToLower(strings.TrimSpace(part))
		if kw != "" {
			cfg.Keywords = append(cfg.Keywords, kw)
		}
	}
	if len(cfg.Keywords) == 0 {
		cfg.Keywords = append(cfg.Keywords, schema.DefaultKeywords...)
	}

	return nil
}

// processSampling validates the sample size and seed.
func processSampling(cfg *Config, input *ConfigRawInput) error {
	if input.SampleSize <= 0 {
		return fmt.Errorf("sample-size must be greater than 0 (received %d)", input.SampleSize)
	}
	cfg.SampleSize = input.SampleSize
	cfg.SampleSeed = input.SampleSeed
	return nil
}

// processAnalysis validates the significance level and test method.
func processAnalysis(cfg *Config, input *ConfigRawInput) error {
	if input.Alpha <= 0 || input.Alpha >= 1 {
		return fmt.Errorf("alpha must be strictly between 0 and 1 (received %g)", input.Alpha)
	}
	cfg.Alpha = input.Alpha

	cfg.Method = schema.TestMethod(strings.ToLower(input.Method))
	if _, ok := schema.ValidTestMethods[cfg.Method]; !ok {
		return fmt.Errorf("invalid method '%s'. must be approx, exact, auto", input.Method)
	}
	return nil
}

// processRetrieval validates the retry policy and timeout.
func processRetrieval(cfg *Config, input *ConfigRawInput) error {
	if input.RetryAttempts < 1 || input.RetryAttempts > MaxRetryAttempts {
		return fmt.Errorf("retry-attempts must be between 1 and %d (received %d)", MaxRetryAttempts, input.RetryAttempts)
	}
	cfg.RetryAttempts = input.RetryAttempts

	timeout, err := time.ParseDuration(input.RetrievalTimeout)
	if err != nil {
		return fmt.Errorf("invalid retrieval-timeout %q: %w", input.RetrievalTimeout, err)
	}
	if timeout <= 0 {
		return fmt.Errorf("retrieval-timeout must be positive (received %s)", timeout)
	}
	cfg.RetrievalTimeout = timeout

	cfg.Resume = input.Resume
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.StoreBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates checkpoint and run store configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Checkpoint Store Validation ---
	cfg.StoreBackend = schema.StoreBackend(strings.ToLower(input.StoreBackend))
	if _, ok := schema.ValidStoreBackends[cfg.StoreBackend]; !ok {
		return fmt.Errorf("invalid store backend '%s'. must be sqlite, mysql, postgresql, none", input.StoreBackend)
	}
	cfg.StoreDBConnect = input.StoreDBConnect
	if err := ValidateDatabaseConnectionString(cfg.StoreBackend, cfg.StoreDBConnect); err != nil {
		return err
	}

	// --- Run Store Validation ---
	// Run tracking is opt-in; an empty backend disables it.
	cfg.RunsBackend = schema.StoreBackend(strings.ToLower(input.RunsBackend))
	if cfg.RunsBackend != "" {
		if _, ok := schema.ValidStoreBackends[cfg.RunsBackend]; !ok {
			return fmt.Errorf("invalid runs backend '%s'. must be sqlite, mysql, postgresql, none", input.RunsBackend)
		}
		cfg.RunsDBConnect = input.RunsDBConnect
		if err := ValidateDatabaseConnectionString(cfg.RunsBackend, cfg.RunsDBConnect); err != nil {
			return err
		}

		// Validate that checkpoints and runs use different databases
		if cfg.StoreBackend == cfg.RunsBackend && cfg.StoreBackend == schema.SQLiteBackend {
			storeDBPath := cfg.StoreDBConnect
			if storeDBPath == "" {
				storeDBPath = GetStoreDBFilePath()
			}
			runsDBPath := cfg.RunsDBConnect
			if runsDBPath == "" {
				runsDBPath = GetRunsDBFilePath()
			}
			if storeDBPath == runsDBPath {
				return fmt.Errorf("checkpoint and run storage must use different SQLite database files. Both resolve to %q", storeDBPath)
			}
		}
	}

	return nil
}
