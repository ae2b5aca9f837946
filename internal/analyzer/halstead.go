package analyzer

import (
	"math"

	"github.com/minilang-org/minicc/internal/lexer"
)

// operandKeywords are reserved words that stand for a value rather than an
// operation — MiniLang's boolean literals are operands; every other reserved
// word, type names included, is counted as an operator.
var operandKeywords = map[string]bool{
	"true": true, "false": true,
}

func isOperandToken(t lexer.Token) bool {
	switch t.Kind {
	case lexer.KindIdentifier, lexer.KindIntLiteral, lexer.KindFloatLiteral, lexer.KindInterpText:
		return true
	case lexer.KindKeyword:
		return operandKeywords[t.Literal]
	}
	return false
}

func isOperatorToken(t lexer.Token) bool {
	switch t.Kind {
	case lexer.KindOperator, lexer.KindStringInterpOpen, lexer.KindStringInterpClose:
		return true
	case lexer.KindPunctuator:
		return true
	case lexer.KindKeyword:
		return !operandKeywords[t.Literal]
	}
	return false
}

// tokensInSpan returns the tokens from toks whose start offset falls
// within [startOffset, endOffset).
func tokensInSpan(toks []lexer.Token, startOffset, endOffset int) []lexer.Token {
	var out []lexer.Token
	for _, t := range toks {
		if t.Span.Start.Offset >= startOffset && t.Span.Start.Offset < endOffset {
			out = append(out, t)
		}
	}
	return out
}

// computeHalstead derives spec.md §4.6's software-science metrics from a
// function's token slice.
func computeHalstead(toks []lexer.Token) Halstead {
	operatorCounts := map[string]int{}
	operandCounts := map[string]int{}

	for _, t := range toks {
		key := t.Kind.String() + ":" + t.Literal
		if isOperatorToken(t) {
			operatorCounts[key]++
		} else if isOperandToken(t) {
			operandCounts[key]++
		}
	}

	var h Halstead
	h.N1 = len(operatorCounts)
	h.N2 = len(operandCounts)
	for _, c := range operatorCounts {
		h.TotalN1 += c
	}
	for _, c := range operandCounts {
		h.TotalN2 += c
	}
	h.Vocabulary = h.N1 + h.N2
	h.Length = h.TotalN1 + h.TotalN2
	if h.Vocabulary > 0 {
		h.Volume = float64(h.Length) * math.Log2(float64(h.Vocabulary))
	}
	if h.N2 > 0 {
		h.Difficulty = (float64(h.N1) / 2) * (float64(h.TotalN2) / float64(h.N2))
	}
	h.Effort = h.Difficulty * h.Volume
	return h
}
