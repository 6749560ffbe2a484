package metrics

import (
	"bytes"
	"math"
)

// lineCounts buckets the physical lines of one file. Every line lands in
// exactly one bucket, so Total = Source + Comment + Blank.
type lineCounts struct {
	Total   int
	Source  int // lines holding at least one non-comment token
	Comment int // lines covered by comments only
	Blank   int
}

// commentPercent returns comment-only lines as a percentage of source
// lines, capped at 100.
func (c lineCounts) commentPercent() float64 {
	if c.Comment == 0 {
		return 0
	}
	percent := 100 * float64(c.Comment) / math.Max(1, float64(c.Source))
	return math.Min(percent, 100)
}

// physicalLineCount counts newline-terminated lines plus a final
// unterminated one. An empty file has zero lines.
func physicalLineCount(src []byte) int {
	if len(src) == 0 {
		return 0
	}
	n := bytes.Count(src, []byte{'\n'})
	if src[len(src)-1] != '\n' {
		n++
	}
	return n
}

// classifyLines buckets each physical line using the spans recorded by
// the scan pass. Code wins over comment on mixed lines, so a trailing
// comment does not demote a source line.
func classifyLines(src []byte, tally tokenTally) lineCounts {
	counts := lineCounts{Total: physicalLineCount(src)}
	for n := 1; n <= counts.Total; n++ {
		switch {
		case tally.codeLines[n]:
			counts.Source++
		case tally.commentLines[n]:
			counts.Comment++
		default:
			counts.Blank++
		}
	}
	return counts
}
