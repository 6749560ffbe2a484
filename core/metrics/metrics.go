// Package metrics measures Go source snapshots: physical and logical
// line counts, cyclomatic complexity, Halstead volume and a composite
// maintainability index on the 0..100 scale.
package metrics

import (
	"go/parser"
	"go/token"
	"math"

	"github.com/claritylab/clarity/internal/contract"
	"github.com/claritylab/clarity/schema"
)

// Coefficients of the SEI maintainability composite, rescaled to 0..100.
const (
	miBase             = 171.0
	miVolumeWeight     = 5.2
	miComplexityWeight = 0.23
	miSLOCWeight       = 16.2
	miCommentWeight    = 50.0
	miCommentScale     = 2.46
)

// GoAnalyzer measures Go source files. The zero value is ready to use.
type GoAnalyzer struct{}

var _ contract.SourceAnalyzer = (*GoAnalyzer)(nil)

// NewGoAnalyzer returns an analyzer for Go source files.
func NewGoAnalyzer() *GoAnalyzer {
	return &GoAnalyzer{}
}

// Analyze parses src and returns its measurements. Content that does not
// parse as Go yields a MetricComputationError.
func (*GoAnalyzer) Analyze(path string, src []byte) (schema.FileMetric, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, src, parser.SkipObjectResolution)
	if err != nil {
		return schema.FileMetric{}, &schema.MetricComputationError{Path: path, Err: err}
	}

	tally := scanSource(path, src)
	lines := classifyLines(src, tally)
	hal := tally.halstead()
	complexity := fileComplexity(file)

	return schema.FileMetric{
		MI:           maintainabilityIndex(hal.Volume, complexity, lines.Source, lines.commentPercent()),
		CC:           complexity,
		LOC:          lines.Total,
		SLOC:         lines.Source,
		LLOC:         statementCount(file),
		CommentLines: lines.Comment,
		BlankLines:   lines.Blank,
		Volume:       hal.Volume,
		Difficulty:   hal.Difficulty,
		Effort:       hal.Effort,
	}, nil
}

// maintainabilityIndex folds volume, complexity, source lines and the
// comment percentage into one 0..100 score. Volume and SLOC are floored
// at 1 so their log terms stay defined for trivial files.
func maintainabilityIndex(volume float64, complexity, sloc int, commentPercent float64) float64 {
	raw := miBase -
		miVolumeWeight*math.Log(math.Max(volume, 1)) -
		miComplexityWeight*float64(complexity) -
		miSLOCWeight*math.Log(math.Max(float64(sloc), 1)) +
		miCommentWeight*math.Sin(math.Sqrt(miCommentScale*radians(commentPercent)))
	return math.Min(math.Max(raw*100/miBase, 0), 100)
}

func radians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
