package lexer

import (
	"fmt"

	"github.com/minilang-org/minicc/internal/position"
)

// Kind is the closed set of token tags from spec.md §3 "Token".
type Kind int

const (
	KindKeyword Kind = iota
	KindIdentifier
	KindIntLiteral
	KindFloatLiteral
	KindStringLiteral // reserved: never emitted by this lexer; strings arrive as interp-open/text/close tokens
	KindStringInterpOpen
	KindStringInterpClose
	KindInterpText
	KindPunctuator
	KindOperator
	KindEOF
)

var kindNames = [...]string{
	KindKeyword:            "keyword",
	KindIdentifier:         "identifier",
	KindIntLiteral:         "int-literal",
	KindFloatLiteral:       "float-literal",
	KindStringLiteral:      "string-literal",
	KindStringInterpOpen:   "string-interp-open",
	KindStringInterpClose:  "string-interp-close",
	KindInterpText:         "interp-text",
	KindPunctuator:         "punctuator",
	KindOperator:           "operator",
	KindEOF:                "eof",
}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Token is a lexeme view plus its tag and source span.
type Token struct {
	Kind    Kind
	Literal string
	Span    position.Span
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%s", t.Kind, t.Literal, t.Span)
}

// keywords is the reserved, case-sensitive word set from spec.md §4.1.
var keywords = map[string]bool{
	"func": true, "let": true, "const": true,
	"if": true, "else": true, "while": true, "do": true, "for": true,
	"send": true, "display": true, "break": true, "continue": true,
	"true": true, "false": true,
	"int": true, "float": true, "string": true, "bool": true,
	"AND": true, "OR": true, "NOT": true,
}

// IsKeyword reports whether ident is a reserved MiniLang keyword.
func IsKeyword(ident string) bool {
	return keywords[ident]
}
