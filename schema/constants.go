package schema

// OutputMode represents the output format to use.
type OutputMode string

const (
	TableOut OutputMode = "table" // default
	CSVOut   OutputMode = "csv"
	JSONOut  OutputMode = "json"
)

// ValidOutputModes is a set of all the valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TableOut: {},
	CSVOut:   {},
	JSONOut:  {},
}

// TestMethod represents how the signed-rank p-value is computed.
type TestMethod string

const (
	ApproxMethod TestMethod = "approx" // default
	ExactMethod  TestMethod = "exact"
	AutoMethod   TestMethod = "auto"
)

// ValidTestMethods is a set of all the valid test methods.
var ValidTestMethods = map[TestMethod]struct{}{
	ApproxMethod: {},
	ExactMethod:  {},
	AutoMethod:   {},
}

// StoreBackend represents the database backend for persistence.
type StoreBackend string

const (
	SQLiteBackend     StoreBackend = "sqlite" // default
	MySQLBackend      StoreBackend = "mysql"
	PostgreSQLBackend StoreBackend = "postgresql"
	NoneBackend       StoreBackend = "none"
)

// ValidStoreBackends is a set of all the valid store backends.
var ValidStoreBackends = map[StoreBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// MetricKey identifies one readability metric tracked through the pipeline.
type MetricKey string

const (
	MetricMI  MetricKey = "mi"  // maintainability index
	MetricCC  MetricKey = "cc"  // cyclomatic complexity
	MetricLOC MetricKey = "loc" // lines of code
)

// AllMetricKeys lists the metrics in report order.
var AllMetricKeys = []MetricKey{MetricMI, MetricCC, MetricLOC}

// HigherIsBetter reports whether an increase in the metric reads as an
// improvement. MI grows with maintainability while CC and LOC grow with
// complexity and size.
func HigherIsBetter(m MetricKey) bool {
	return m == MetricMI
}

// SkipReason classifies why a sampled commit produced no metric row.
type SkipReason string

const (
	SkipFetchFailure SkipReason = "fetch_failure"
	SkipParseFailure SkipReason = "parse_failure"
	SkipEmptyPair    SkipReason = "empty_pair"
)

// AllSkipReasons lists the skip reasons in report order.
var AllSkipReasons = []SkipReason{SkipFetchFailure, SkipParseFailure, SkipEmptyPair}

// Verdict is the conclusion reported for one analyzed metric.
type Verdict string

const (
	VerdictImprovement  Verdict = "significant improvement"
	VerdictRegression   Verdict = "significant regression"
	VerdictNoDifference Verdict = "no significant difference"
	VerdictDegenerate   Verdict = "not defined (all differences zero)"
)

// Diff status letters used in the commits table and in git output.
const (
	StatusAdded    = "A"
	StatusModified = "M"
	StatusDeleted  = "D"
	StatusRenamed  = "R"
)

// DefaultKeywords are the commit message terms that mark a change as
// readability-motivated. The keyword filter is off unless enabled.
var DefaultKeywords = []string{
	"readability",
	"readable",
	"understandability",
	"understandable",
	"clarity",
	"legibility",
	"easier to read",
	"comprehensible",
}
