// Package lexer implements MiniLang's span-preserving lexical analyzer:
// keyword/operator/punctuator scanning plus a small state machine for
// interpolated string literals ("a{expr}b").
package lexer

import (
	"fmt"

	"github.com/minilang-org/minicc/internal/position"
)

// ErrorKind enumerates the lexer's closed error set.
type ErrorKind int

const (
	ErrUnterminatedString ErrorKind = iota
	ErrBadEscape
	ErrUnexpectedChar
	ErrMalformedNumber
)

func (k ErrorKind) String() string {
	switch k {
	case ErrUnterminatedString:
		return "UnterminatedString"
	case ErrBadEscape:
		return "BadEscape"
	case ErrUnexpectedChar:
		return "UnexpectedChar"
	case ErrMalformedNumber:
		return "MalformedNumber"
	default:
		return "UnknownLexError"
	}
}

// Error is the lexer's single error type; every user-visible lex failure
// carries a kind and the span where it was detected.
type Error struct {
	Kind ErrorKind
	Span position.Span
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Span, e.Kind, e.Msg)
}

// stringFrame tracks one currently-open interpolated string literal. A new
// frame is pushed on '"' and popped on the matching closing '"'; a nested
// string literal inside an interpolated expression pushes its own frame, so
// '}' always closes the innermost frame's expression segment — MiniLang has
// no other construct that produces a bare '}' inside an expression.
type stringFrame struct {
	inText bool // true: scanning raw text; false: scanning expression tokens
}

// Lexer scans a position.Source into a stream of Tokens.
type Lexer struct {
	src *position.Source

	offset     int // byte offset of ch
	nextOffset int // byte offset of the next unread byte
	ch         byte

	strings []stringFrame
}

// New creates a lexer over src.
func New(src *position.Source) *Lexer {
	l := &Lexer{src: src}
	l.advance()
	return l
}

func (l *Lexer) advance() {
	if l.nextOffset >= len(l.src.Text) {
		l.ch = 0
		l.offset = len(l.src.Text)
		l.nextOffset = len(l.src.Text) + 1
		return
	}
	l.ch = l.src.Text[l.nextOffset]
	l.offset = l.nextOffset
	l.nextOffset++
}

func (l *Lexer) peek() byte {
	if l.nextOffset >= len(l.src.Text) {
		return 0
	}
	return l.src.Text[l.nextOffset]
}

func (l *Lexer) atEOF() bool {
	return l.offset >= len(l.src.Text)
}

func (l *Lexer) span(start int) position.Span {
	return l.src.Span(start, l.offset)
}

func (l *Lexer) errf(kind ErrorKind, start int, format string, args ...any) error {
	return &Error{Kind: kind, Span: l.span(start), Msg: fmt.Sprintf(format, args...)}
}

// Next returns the next token, or a *Error on a lexical failure.
func (l *Lexer) Next() (Token, error) {
	if n := len(l.strings); n > 0 && l.strings[n-1].inText {
		return l.scanStringText()
	}
	return l.scanNormal()
}

// scanNormal tokenizes ordinary MiniLang source: whitespace/comments are
// skipped, then one token is produced from keywords, identifiers, numbers,
// operators, punctuators, or a string-interpolation open.
func (l *Lexer) scanNormal() (Token, error) {
	if err := l.skipTrivia(); err != nil {
		return Token{}, err
	}

	start := l.offset

	if l.atEOF() {
		return l.tok(KindEOF, "", start), nil
	}

	ch := l.ch

	switch {
	case isIdentStart(ch):
		return l.scanIdentifier(start)
	case isDigit(ch):
		return l.scanNumber(start)
	case ch == '"':
		return l.openString(start)
	case ch == '}' && l.inStringExpr():
		l.advance()
		l.strings[len(l.strings)-1].inText = true
		return l.tok(KindPunctuator, "}", start), nil
	}

	return l.scanOperator(start)
}

func (l *Lexer) inStringExpr() bool {
	n := len(l.strings)
	return n > 0 && !l.strings[n-1].inText
}

// skipTrivia consumes whitespace, '#' line comments, and '##...##' block
// comments. A doubled '#' always closes the block comment it opened, even
// if another '##' is encountered first — see DESIGN.md's Open Question
// decision on block-comment nesting.
func (l *Lexer) skipTrivia() error {
	for {
		switch l.ch {
		case ' ', '\t', '\r', '\n':
			l.advance()
			continue
		case '#':
			start := l.offset
			l.advance()
			if l.ch == '#' {
				l.advance() // consume the second '#' opening the block
				for {
					if l.atEOF() {
						return l.errf(ErrUnexpectedChar, start, "unterminated block comment")
					}
					if l.ch == '#' && l.peek() == '#' {
						l.advance()
						l.advance()
						break
					}
					l.advance()
				}
				continue
			}
			for !l.atEOF() && l.ch != '\n' {
				l.advance()
			}
			continue
		}
		return nil
	}
}

func (l *Lexer) tok(kind Kind, literal string, start int) Token {
	return Token{Kind: kind, Literal: literal, Span: l.span(start)}
}

func isIdentStart(ch byte) bool {
	return ch == '_' || ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z')
}

func isIdentCont(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func (l *Lexer) scanIdentifier(start int) (Token, error) {
	for isIdentCont(l.ch) {
		l.advance()
	}
	lit := l.src.Text[start:l.offset]
	if IsKeyword(lit) {
		return l.tok(KindKeyword, lit, start), nil
	}
	return l.tok(KindIdentifier, lit, start), nil
}

// scanNumber reads [0-9]+ or [0-9]+.[0-9]+ (numbers never carry a sign;
// unary minus is syntactic, handled by the parser).
func (l *Lexer) scanNumber(start int) (Token, error) {
	for isDigit(l.ch) {
		l.advance()
	}
	isFloat := false
	if l.ch == '.' && isDigit(l.peek()) {
		isFloat = true
		l.advance()
		for isDigit(l.ch) {
			l.advance()
		}
	}
	if isIdentStart(l.ch) {
		for isIdentCont(l.ch) {
			l.advance()
		}
		return Token{}, l.errf(ErrMalformedNumber, start, "malformed number literal %q", l.src.Text[start:l.offset])
	}
	lit := l.src.Text[start:l.offset]
	if isFloat {
		return l.tok(KindFloatLiteral, lit, start), nil
	}
	return l.tok(KindIntLiteral, lit, start), nil
}

// twoCharOps lists the longest-match multi-character operators.
var twoCharOps = map[string]bool{
	"==": true, "!=": true, "<=": true, ">=": true, "->": true,
}

var singleCharPunct = map[byte]bool{
	'(': true, ')': true, '{': true, '}': true, '[': true, ']': true,
	',': true, ';': true, ':': true,
}

var singleCharOps = map[byte]bool{
	'+': true, '-': true, '*': true, '/': true, '%': true,
	'=': true, '<': true, '>': true,
}

func (l *Lexer) scanOperator(start int) (Token, error) {
	ch := l.ch
	next := l.peek()

	two := string([]byte{ch, next})
	if twoCharOps[two] {
		l.advance()
		l.advance()
		return l.tok(KindOperator, two, start), nil
	}

	switch {
	case singleCharPunct[ch]:
		l.advance()
		return l.tok(KindPunctuator, string(ch), start), nil
	case singleCharOps[ch]:
		l.advance()
		return l.tok(KindOperator, string(ch), start), nil
	}

	l.advance()
	return Token{}, l.errf(ErrUnexpectedChar, start, "unexpected character %q", ch)
}

// Tokenize drives a Lexer to completion, returning every token up to and
// including eof, or the first lexical error encountered (the lexer phase
// aborts on its first error, per spec §7's phase-abort propagation rule).
func Tokenize(src *position.Source) ([]Token, error) {
	l := New(src)
	var toks []Token
	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.Kind == KindEOF {
			return toks, nil
		}
	}
}

// openString pushes a new string frame and emits the opening quote token.
func (l *Lexer) openString(start int) (Token, error) {
	l.advance() // consume '"'
	l.strings = append(l.strings, stringFrame{inText: true})
	return l.tok(KindStringInterpOpen, "\"", start), nil
}

// scanStringText scans the raw-text segment of the innermost open string,
// stopping at '{' (enters expression mode), an unescaped '"' (closes the
// string), or a lexical error. An empty segment before a '{' or closing '"'
// is not emitted as its own interp-text token.
func (l *Lexer) scanStringText() (Token, error) {
	start := l.offset
	var text []byte

	for {
		if l.atEOF() {
			return Token{}, l.errf(ErrUnterminatedString, start, "unterminated string literal")
		}
		switch l.ch {
		case '"':
			if len(text) == 0 {
				l.strings = l.strings[:len(l.strings)-1]
				l.advance()
				return l.tok(KindStringInterpClose, "\"", start), nil
			}
			return Token{Kind: KindInterpText, Literal: string(text), Span: l.span(start)}, nil
		case '{':
			if len(text) == 0 {
				l.strings[len(l.strings)-1].inText = false
				l.advance()
				return l.tok(KindPunctuator, "{", start), nil
			}
			return Token{Kind: KindInterpText, Literal: string(text), Span: l.span(start)}, nil
		case '\\':
			escStart := l.offset
			l.advance()
			if l.atEOF() {
				return Token{}, l.errf(ErrUnterminatedString, start, "unterminated string literal")
			}
			switch l.ch {
			case 'n':
				text = append(text, '\n')
			case 't':
				text = append(text, '\t')
			case '\\':
				text = append(text, '\\')
			case '"':
				text = append(text, '"')
			case '{':
				text = append(text, '{')
			default:
				return Token{}, l.errf(ErrBadEscape, escStart, "unsupported escape sequence \\%c", l.ch)
			}
			l.advance()
		default:
			text = append(text, l.ch)
			l.advance()
		}
	}
}
