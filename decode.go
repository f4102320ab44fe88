// Copyright (C) 2024 James Preed. All Rights Reserved.

package flatjson

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tailscale/hujson"

	"github.com/jamespreed/dot-flat-json/keypath"
)

// DefaultMaxDepth is the container nesting limit applied when Options
// specifies none.
const DefaultMaxDepth = 1000

// Options configures a Decoder. The zero value (and a nil *Options) selects
// all defaults.
type Options struct {
	// KeySep separates rendered path segments. Empty selects the default ".".
	KeySep string

	// KeyWrap encloses an object key that contains KeySep. Nil selects the
	// default {"<", ">"}. Both halves must be given together.
	KeyWrap *keypath.Wrap

	// IndexWrap encloses every rendered array index. Nil selects the default
	// {"[", "]"}. A pair with either half empty disables enclosure, so
	// indices render bare.
	IndexWrap *keypath.Wrap

	// MaxDepth bounds container nesting. Zero selects DefaultMaxDepth.
	MaxDepth int

	// AllowJWCC permits comments and trailing commas in the input (the JWCC
	// extension of JSON). The input is standardized before decoding.
	AllowJWCC bool

	// AllowNonFinite permits the non-standard constants NaN, Infinity, and
	// -Infinity, which decode as floating-point values.
	AllowNonFinite bool
}

// A ConfigError reports an invalid Options field, detected when the Decoder
// is constructed.
type ConfigError struct {
	Option string // the offending Options field
	Reason string
}

func (c *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %s", c.Option, c.Reason)
}

// SyntaxError is the concrete type of errors reported for malformed input.
type SyntaxError struct {
	Location LineCol // position of the token where decoding stopped
	Message  string

	err error
}

// Error satisfies the error interface.
func (s *SyntaxError) Error() string {
	if s.Location.Line == 0 {
		return s.Message
	}
	return fmt.Sprintf("at %s: %s", s.Location, s.Message)
}

// Unwrap supports error wrapping.
func (s *SyntaxError) Unwrap() error { return s.err }

// A Decoder decodes JSON documents into flat mappings. A Decoder is
// immutable once constructed and safe for concurrent use; each call owns all
// of its decoding state.
type Decoder struct {
	style     keypath.Style
	maxDepth  int
	jwcc      bool
	nonfinite bool
}

// New constructs a Decoder with the given options. A nil opts selects all
// defaults. Invalid option values are reported as a *ConfigError.
func New(opts *Options) (*Decoder, error) {
	if opts == nil {
		opts = &Options{}
	}
	style := keypath.Default
	if opts.KeySep != "" {
		style.Sep = opts.KeySep
	}
	if opts.KeyWrap != nil {
		if (opts.KeyWrap.Open == "") != (opts.KeyWrap.Close == "") {
			return nil, &ConfigError{Option: "KeyWrap", Reason: "both halves of the pair are required"}
		}
		style.KeyWrap = *opts.KeyWrap
	}
	if opts.IndexWrap != nil {
		style.IndexWrap = *opts.IndexWrap
	}
	maxDepth := opts.MaxDepth
	if maxDepth == 0 {
		maxDepth = DefaultMaxDepth
	} else if maxDepth < 0 {
		return nil, &ConfigError{Option: "MaxDepth", Reason: "must be positive"}
	}
	return &Decoder{
		style:     style,
		maxDepth:  maxDepth,
		jwcc:      opts.AllowJWCC,
		nonfinite: opts.AllowNonFinite,
	}, nil
}

// Flatten decodes input with the default options. It is shorthand for
// constructing a Decoder with nil options and calling its Decode method.
func Flatten(input string) (*Mapping, error) {
	d, err := New(nil)
	if err != nil {
		return nil, err
	}
	return d.Decode(input)
}

// Decode decodes a single JSON document and returns the mapping from
// rendered leaf paths to scalar values, ordered by document traversal.
// Malformed input is reported as a *SyntaxError and no mapping is returned.
//
// When two leaves render to the same key, whether from a duplicate object
// key or from an object key that happens to spell an array-index rendering,
// the one traversed last wins; the key keeps its first traversal position.
func (d *Decoder) Decode(input string) (*Mapping, error) {
	m := newMapping()
	if err := d.DecodeFunc(input, func(key string, value any) error {
		m.set(key, value)
		return nil
	}); err != nil {
		return nil, err
	}
	return m, nil
}

// DecodeFunc decodes a single JSON document, calling emit once per scalar
// leaf in document traversal order with the rendered key and the decoded
// value. If emit reports an error, decoding stops and that error is
// returned. Malformed input is reported as a *SyntaxError.
func (d *Decoder) DecodeFunc(input string, emit func(key string, value any) error) (err error) {
	if d.jwcc {
		std, jerr := hujson.Standardize([]byte(input))
		if jerr != nil {
			return &SyntaxError{Message: jerr.Error(), err: jerr}
		}
		input = string(std)
	}

	f := &flattener{
		sc:       NewScanner(input),
		path:     keypath.New(d.style),
		emit:     emit,
		maxDepth: d.maxDepth,
	}
	f.sc.AllowNonFinite(d.nonfinite)
	defer f.recoverError(&err)

	f.advance()
	f.parseValue()

	// Exactly one top-level value is permitted.
	if f.sc.Next() {
		f.syntaxError(nil, "unexpected %v after value", f.sc.Token())
	} else if serr := f.sc.Err(); serr != nil {
		f.syntaxError(serr, "%v", serr)
	}
	return nil
}

// A flattener holds the state of one decode call: the scanner, the path
// stack, and the leaf sink. Errors propagate by panic and are recovered at
// the DecodeFunc boundary.
type flattener struct {
	sc       *Scanner
	path     *keypath.Path
	emit     func(key string, value any) error
	depth    int
	maxDepth int
}

// emitError distinguishes an error returned by the caller's emit function
// from a syntax error raised by the parser itself.
type emitError struct{ error }

func (e emitError) Unwrap() error { return e.error }

func (f *flattener) recoverError(errp *error) {
	switch v := recover().(type) {
	case nil:
	case *SyntaxError:
		*errp = v
	case emitError:
		*errp = v.error
	default:
		panic(v)
	}
}

// parseValue consumes a single value of any type.
// Precondition: the scanner is positioned on the value's first token.
func (f *flattener) parseValue() {
	switch tok := f.sc.Token(); tok {
	case LBrace:
		f.parseObject()
	case LSquare:
		f.parseArray()
	case String:
		dec, err := f.sc.Unescape()
		if err != nil {
			f.syntaxError(err, "invalid string: %v", err)
		}
		f.leaf(dec)
	case Integer:
		f.leaf(parseInteger(f.sc.Text()))
	case Number:
		v, err := strconv.ParseFloat(f.sc.Text(), 64)
		if err != nil {
			f.syntaxError(err, "invalid number %q", f.sc.Text())
		}
		f.leaf(v)
	case True:
		f.leaf(true)
	case False:
		f.leaf(false)
	case Null:
		f.leaf(nil)
	default:
		f.syntaxError(nil, "unexpected %v", tok)
	}
}

// parseObject consumes an object with zero or more "key": value members,
// pushing each key around the decoding of its value.
// Precondition: token == LBrace.
func (f *flattener) parseObject() {
	f.enter()
	if tok := f.advance(RBrace, String); tok == RBrace {
		f.leave()
		return // empty object, no leaves
	}
	for {
		key, err := f.sc.Unescape()
		if err != nil {
			f.syntaxError(err, "invalid object key: %v", err)
		}
		f.advance(Colon)
		f.advance()

		f.path.PushKey(key)
		f.parseValue()
		f.path.Pop()

		if tok := f.advance(RBrace, Comma); tok == RBrace {
			f.leave()
			return // end of object
		}
		f.advance(String) // the next member's key
	}
}

// parseArray consumes an array of zero or more comma-separated values,
// pushing the element index around the decoding of each.
// Precondition: token == LSquare.
func (f *flattener) parseArray() {
	f.enter()
	if tok := f.advance(); tok == RSquare {
		f.leave()
		return // empty array, no leaves
	}
	for i := 0; ; i++ {
		f.path.PushIndex(i)
		f.parseValue()
		f.path.Pop()

		if tok := f.advance(RSquare, Comma); tok == RSquare {
			f.leave()
			return // end of array
		}
		f.advance()
	}
}

// leaf renders the current path and delivers the scalar to the sink.
func (f *flattener) leaf(value any) {
	if err := f.emit(f.path.Render(), value); err != nil {
		panic(emitError{err})
	}
}

func (f *flattener) enter() {
	f.depth++
	if f.depth > f.maxDepth {
		f.syntaxError(nil, "nesting exceeds %d levels", f.maxDepth)
	}
}

func (f *flattener) leave() { f.depth-- }

// advance moves the scanner to the next token. If tokens are given, the new
// token must be one of them; otherwise any token is accepted. A scan failure
// or end of input is a syntax error.
func (f *flattener) advance(tokens ...Token) Token {
	if !f.sc.Next() {
		var got any = "end of input"
		err := f.sc.Err()
		if err != nil {
			got = err
		}
		f.syntaxError(err, "%v", tokLabel(tokens, got))
	}
	tok := f.sc.Token()
	if len(tokens) != 0 && !tokOneOf(tok, tokens) {
		f.syntaxError(nil, "%v", tokLabel(tokens, tok))
	}
	return tok
}

func (f *flattener) syntaxError(err error, msg string, args ...any) {
	panic(&SyntaxError{
		Location: f.sc.Location().First,
		Message:  fmt.Sprintf(msg, args...),
		err:      err,
	})
}

// parseInteger converts the text of an Integer token, falling back to a
// float64 for values outside the int64 range.
func parseInteger(text string) any {
	if v, err := strconv.ParseInt(text, 10, 64); err == nil {
		return v
	}
	v, _ := strconv.ParseFloat(text, 64)
	return v
}

// tokLabel makes a human-readable summary string for the given token types.
func tokLabel(tokens []Token, got any) string {
	if len(tokens) == 0 {
		return fmt.Sprint(got)
	}
	var exp string
	if len(tokens) == 1 {
		exp = tokens[0].String()
	} else {
		last := len(tokens) - 1
		ss := make([]string, last)
		for i, tok := range tokens[:last] {
			ss[i] = tok.String()
		}
		exp = strings.Join(ss, ", ") + " or " + tokens[last].String()
	}
	return fmt.Sprintf("expected %s, got %v", exp, got)
}

// tokOneOf reports whether cur is an element of tokens.
func tokOneOf(cur Token, tokens []Token) bool {
	for _, t := range tokens {
		if cur == t {
			return true
		}
	}
	return false
}
