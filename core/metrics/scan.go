package metrics

import (
	"go/scanner"
	"go/token"
	"math"
	"strings"
)

// tokenTally holds the raw counts of one scan pass: Halstead operator and
// operand tallies plus the line spans occupied by code and comments.
type tokenTally struct {
	totalOperators    int
	totalOperands     int
	distinctOperators map[token.Token]struct{}
	distinctOperands  map[string]struct{}
	codeLines         map[int]bool
	commentLines      map[int]bool
}

// halsteadMetrics holds the measures derived from the token tallies.
type halsteadMetrics struct {
	Volume     float64
	Difficulty float64
	Effort     float64
}

// scanSource tokenizes src and tallies it. Operators are keywords plus
// operator tokens; operands are identifiers and literals. Closing
// brackets, commas and semicolons are structural and count for neither.
func scanSource(path string, src []byte) tokenTally {
	tally := tokenTally{
		distinctOperators: make(map[token.Token]struct{}),
		distinctOperands:  make(map[string]struct{}),
		codeLines:         make(map[int]bool),
		commentLines:      make(map[int]bool),
	}

	fset := token.NewFileSet()
	file := fset.AddFile(path, fset.Base(), len(src))
	var s scanner.Scanner
	s.Init(file, src, nil, scanner.ScanComments)

	for {
		pos, tok, lit := s.Scan()
		if tok == token.EOF {
			break
		}
		line := file.Line(pos)
		if tok == token.COMMENT {
			markSpan(tally.commentLines, line, lit)
			continue
		}
		if tok != token.SEMICOLON || lit == ";" {
			// Implicit semicolons have no source text of their own.
			markSpan(tally.codeLines, line, lit)
		}
		switch {
		case tok.IsLiteral():
			tally.totalOperands++
			tally.distinctOperands[lit] = struct{}{}
		case isStructural(tok):
		case tok.IsKeyword() || tok.IsOperator():
			tally.totalOperators++
			tally.distinctOperators[tok] = struct{}{}
		}
	}
	return tally
}

// halstead derives volume, difficulty and effort from the tallies. An
// empty vocabulary yields zero volume.
func (t tokenTally) halstead() halsteadMetrics {
	distinct := len(t.distinctOperators) + len(t.distinctOperands)
	if distinct == 0 {
		return halsteadMetrics{}
	}
	length := t.totalOperators + t.totalOperands
	volume := float64(length) * math.Log2(float64(distinct))
	difficulty := float64(len(t.distinctOperators)) / 2 *
		float64(t.totalOperands) / math.Max(1, float64(len(t.distinctOperands)))
	return halsteadMetrics{
		Volume:     volume,
		Difficulty: difficulty,
		Effort:     difficulty * volume,
	}
}

// isStructural reports tokens that close or separate what an opening
// token already counted.
func isStructural(tok token.Token) bool {
	switch tok {
	case token.SEMICOLON, token.COMMA, token.RPAREN, token.RBRACK, token.RBRACE:
		return true
	}
	return false
}

// markSpan marks start and every further line covered by a literal that
// spans multiple lines (raw strings, block comments).
func markSpan(lines map[int]bool, start int, lit string) {
	for i := 0; i <= strings.Count(lit, "\n"); i++ {
		lines[start+i] = true
	}
}
