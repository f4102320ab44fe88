// Copyright (C) 2024 James Preed. All Rights Reserved.

package flatjson

import (
	"fmt"
	"strconv"
	"strings"

	"go4.org/mem"

	"github.com/jamespreed/dot-flat-json/internal/escape"
)

// A Scanner reads lexical tokens from an in-memory JSON text. Each call to
// Next advances the scanner to the next token, or reports an error.
// Token text is a view of the input and requires no copying.
type Scanner struct {
	src string
	tok Token
	err error

	pos, end int // start and end offsets of the current token

	nonfinite bool // allow NaN, Infinity, -Infinity
}

// NewScanner constructs a new lexical scanner that consumes input from src.
func NewScanner(src string) *Scanner { return &Scanner{src: src} }

// AllowNonFinite configures the scanner to accept (true) or reject (false)
// the non-standard constants NaN, Infinity, and -Infinity. These are an
// extension of the JSON spec; when enabled they are reported as Number
// tokens.
func (s *Scanner) AllowNonFinite(ok bool) { s.nonfinite = ok }

// Next advances s to the next token of the input and reports whether one is
// available. Once the input is exhausted or an error occurs, Next returns
// false; the two cases are distinguished by Err.
func (s *Scanner) Next() bool {
	if s.err != nil {
		return false
	}
	s.skipSpace()
	s.pos = s.end
	if s.end >= len(s.src) {
		s.tok = Invalid
		return false
	}

	ch := s.src[s.end]

	// Handle punctuation.
	if t, ok := selfDelim(ch); ok {
		s.end++
		s.tok = t
		return true
	}

	// Handle numbers, including -Infinity when enabled.
	if ch == '-' || isDigit(ch) {
		return s.scanNumber()
	}

	// Handle string values.
	if ch == '"' {
		return s.scanString()
	}

	// Handle constants: true, false, null, and the non-finite extensions.
	switch ch {
	case 't':
		return s.scanName("true", True)
	case 'f':
		return s.scanName("false", False)
	case 'n':
		return s.scanName("null", Null)
	case 'N':
		if s.nonfinite {
			return s.scanName("NaN", Number)
		}
	case 'I':
		if s.nonfinite {
			return s.scanName("Infinity", Number)
		}
	}
	return s.failf("unexpected %q", rune(ch))
}

// Token returns the type of the current token.
func (s *Scanner) Token() Token { return s.tok }

// Err returns the error that stopped the scanner, or nil if the input was
// consumed completely.
func (s *Scanner) Err() error { return s.err }

// Text returns the undecoded text of the current token, a view of the
// original input.
func (s *Scanner) Text() string { return s.src[s.pos:s.end] }

// Span returns the location span of the current token.
func (s *Scanner) Span() Span { return Span{Pos: s.pos, End: s.end} }

// Location returns the complete location of the current token.
func (s *Scanner) Location() Location {
	return Location{
		Span:  s.Span(),
		First: lineColAt(s.src, s.pos),
		Last:  lineColAt(s.src, s.end),
	}
}

// Unescape returns the decoded text of the current token. If the token is a
// String, quotation marks are removed and escapes are replaced with their
// unescaped equivalents; other tokens are returned as written.
func (s *Scanner) Unescape() (string, error) {
	if s.tok != String {
		return s.Text(), nil
	}
	text := s.Text()
	dec, err := escape.Unquote(mem.S(text[1 : len(text)-1]))
	if err != nil {
		return "", err
	}
	return string(dec), nil
}

// Int64 returns the value of the current token as an int64.
// An error results if the token is not an Integer, or does not fit.
func (s *Scanner) Int64() (int64, error) {
	if s.tok != Integer {
		return 0, fmt.Errorf("token is %v, not integer", s.tok)
	}
	return strconv.ParseInt(s.Text(), 10, 64)
}

// Float64 returns the value of the current token as a float64.
// An error results if the token is not an Integer or a Number.
func (s *Scanner) Float64() (float64, error) {
	if s.tok != Integer && s.tok != Number {
		return 0, fmt.Errorf("token is %v, not a number", s.tok)
	}
	return strconv.ParseFloat(s.Text(), 64)
}

func (s *Scanner) skipSpace() {
	for s.end < len(s.src) && isSpace(s.src[s.end]) {
		s.end++
	}
}

func (s *Scanner) scanString() bool {
	s.end++ // opening quotation mark
	for s.end < len(s.src) {
		switch ch := s.src[s.end]; {
		case ch == '"':
			s.end++
			s.tok = String
			return true
		case ch == '\\':
			if !s.scanEscape() {
				return false
			}
		case ch < ' ':
			return s.failf("unescaped control %q", rune(ch))
		default:
			s.end++
		}
	}
	return s.failf("unterminated string")
}

func (s *Scanner) scanEscape() bool {
	s.end++ // backslash
	if s.end >= len(s.src) {
		return s.failf("unterminated escape sequence")
	}
	ch := s.src[s.end]
	s.end++
	switch ch {
	case '"', '\\', '/', 'b', 'f', 'n', 'r', 't':
		return true
	case 'u':
		for i := 0; i < 4; i++ {
			if s.end >= len(s.src) || !isHexDigit(s.src[s.end]) {
				return s.failf("invalid Unicode escape")
			}
			s.end++
		}
		return true
	}
	return s.failf("invalid %q after escape", rune(ch))
}

func (s *Scanner) scanNumber() bool {
	if s.src[s.end] == '-' {
		s.end++
		if s.nonfinite && strings.HasPrefix(s.src[s.end:], "Infinity") {
			s.end += len("Infinity")
			s.tok = Number
			return true
		}
		// A leading sign requires at least one digit after it.
		if s.end >= len(s.src) || !isDigit(s.src[s.end]) {
			return s.failf("no digits after sign")
		}
	}

	// Consume the integer part.
	ds := s.end
	for s.end < len(s.src) && isDigit(s.src[s.end]) {
		s.end++
	}

	// Extra leading zeroes are disallowed by the JSON spec.
	// That is: 0.12 is OK, 01.2 is not.
	if s.src[ds] == '0' && s.end > ds+1 {
		return s.failf("extra leading zeroes")
	}
	s.tok = Integer

	// If a decimal point follows, consume a fractional part.
	if s.end < len(s.src) && s.src[s.end] == '.' {
		s.end++
		if s.digits() == 0 {
			return s.failf("no digits after decimal point")
		}
		s.tok = Number
	}

	// If an exponent follows, consume it.
	if s.end < len(s.src) && (s.src[s.end] == 'e' || s.src[s.end] == 'E') {
		s.end++
		if s.end < len(s.src) && (s.src[s.end] == '+' || s.src[s.end] == '-') {
			s.end++
		}
		if s.digits() == 0 {
			return s.failf("missing exponent digits")
		}
		s.tok = Number
	}
	return true
}

// scanName consumes a run of letters, which must match want exactly.
func (s *Scanner) scanName(want string, tok Token) bool {
	for s.end < len(s.src) && isNameByte(s.src[s.end]) {
		s.end++
	}
	if got := mem.S(s.src[s.pos:s.end]); !got.EqualString(want) {
		return s.failf("unknown constant %q", got.StringCopy())
	}
	s.tok = tok
	return true
}

// digits consumes a run of decimal digits and returns its length.
func (s *Scanner) digits() (nd int) {
	for s.end < len(s.src) && isDigit(s.src[s.end]) {
		s.end++
		nd++
	}
	return
}

type posError struct {
	pos int
	err error
}

func (p posError) Error() string {
	return fmt.Sprintf("%s (offset %d)", p.err.Error(), p.pos)
}

func (p posError) Unwrap() error { return p.err }

func (s *Scanner) failf(msg string, args ...any) bool {
	s.tok = Invalid
	s.err = posError{s.end, fmt.Errorf(msg, args...)}
	return false
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\r' || ch == '\n' || ch == '\t'
}

func isDigit(ch byte) bool    { return '0' <= ch && ch <= '9' }
func isNameByte(ch byte) bool { return ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' }

func isHexDigit(ch byte) bool {
	return (ch >= '0' && ch <= '9') || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

var self = [...]Token{LBrace, RBrace, LSquare, RSquare, Comma, Colon}

func selfDelim(ch byte) (Token, bool) {
	i := strings.IndexByte("{}[],:", ch)
	if i >= 0 {
		return self[i], true
	}
	return Invalid, false
}

// lineColAt computes the apparent line and column of the byte offset off.
func lineColAt(src string, off int) LineCol {
	return LineCol{
		Line:   1 + strings.Count(src[:off], "\n"),
		Column: off - (strings.LastIndexByte(src[:off], '\n') + 1),
	}
}
