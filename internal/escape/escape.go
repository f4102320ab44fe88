// Copyright (C) 2024 James Preed. All Rights Reserved.

// Package escape handles quoting and unquoting of JSON strings.
package escape

import (
	"errors"
	"fmt"
	"unicode/utf16"
	"unicode/utf8"

	"go4.org/mem"
)

// Unquote decodes a string containing the JSON encoding of a string. The
// input must have the enclosing double quotation marks already removed.
//
// Escape sequences are replaced with their unescaped equivalents, and UTF-16
// surrogate pairs are combined. Unquote reports an error for an incomplete
// or invalid escape sequence; an unpaired surrogate is replaced by the
// Unicode replacement rune.
func Unquote(src mem.RO) ([]byte, error) {
	dec := make([]byte, 0, src.Len())
	i := mem.IndexByte(src, '\\')
	if i < 0 {
		return mem.Append(dec, src), nil
	}

	for {
		dec = mem.Append(dec, src.SliceTo(i))
		src = src.SliceFrom(i + 1)
		if src.Len() == 0 {
			return nil, errors.New("incomplete escape sequence")
		}
		ch := src.At(0)
		src = src.SliceFrom(1)
		switch ch {
		case '"', '\\', '/':
			dec = append(dec, ch)
		case 'b':
			dec = append(dec, '\b')
		case 'f':
			dec = append(dec, '\f')
		case 'n':
			dec = append(dec, '\n')
		case 'r':
			dec = append(dec, '\r')
		case 't':
			dec = append(dec, '\t')
		case 'u':
			r, rest, err := decodeHexRune(src)
			if err != nil {
				return nil, err
			}
			var buf [4]byte
			n := utf8.EncodeRune(buf[:], r)
			dec = append(dec, buf[:n]...)
			src = rest
		default:
			return nil, fmt.Errorf("invalid escape %q", ch)
		}

		// Look for the next escape sequence, and if one is not found we can
		// blit the rest of the input and go home.
		i = mem.IndexByte(src, '\\')
		if i < 0 {
			return mem.Append(dec, src), nil
		}
	}
}

// decodeHexRune decodes the 4-digit payload of a "\u" escape whose prefix has
// already been consumed from src. When the payload is a leading UTF-16
// surrogate and a trailing surrogate escape immediately follows, the pair is
// combined into a single rune.
func decodeHexRune(src mem.RO) (rune, mem.RO, error) {
	v, err := parseHex4(src)
	if err != nil {
		return 0, src, err
	}
	src = src.SliceFrom(4)

	r := rune(v)
	if !utf16.IsSurrogate(r) {
		return r, src, nil
	}
	if src.Len() >= 6 && src.At(0) == '\\' && src.At(1) == 'u' {
		v2, err := parseHex4(src.SliceFrom(2))
		if err == nil {
			if c := utf16.DecodeRune(r, rune(v2)); c != utf8.RuneError {
				return c, src.SliceFrom(6), nil
			}
		}
	}
	return utf8.RuneError, src, nil // unpaired surrogate
}

func parseHex4(data mem.RO) (int64, error) {
	if data.Len() < 4 {
		return 0, errors.New("incomplete Unicode escape")
	}
	var v int64
	for i := 0; i < 4; i++ {
		b := data.At(i)
		v <<= 4
		if '0' <= b && b <= '9' {
			v += int64(b - '0')
		} else if 'a' <= b && b <= 'f' {
			v += int64(b - 'a' + 10)
		} else if 'A' <= b && b <= 'F' {
			v += int64(b - 'A' + 10)
		} else {
			return 0, fmt.Errorf("invalid hex digit %q", b)
		}
	}
	return v, nil
}

var controlEsc = [...]byte{
	'\b': 'b',
	'\f': 'f',
	'\n': 'n',
	'\r': 'r',
	'\t': 't',
	' ':  ' ', // sentinel
}

var hexDigit = []byte("0123456789abcdef")

// AppendQuote appends the JSON encoding of src to buf, including the
// enclosing double quotation marks, and returns the extended buffer.
func AppendQuote(buf []byte, src mem.RO) []byte {
	buf = append(buf, '"')
	for src.Len() != 0 {
		r, n := mem.DecodeRune(src)
		if r < utf8.RuneSelf {
			switch {
			case r < ' ':
				if b := controlEsc[r]; b != 0 {
					buf = append(buf, '\\', b)
				} else {
					buf = append(buf, '\\', 'u', '0', '0', hexDigit[int(r>>4)], hexDigit[int(r&15)])
				}
			case r == '\\' || r == '"':
				buf = append(buf, '\\', byte(r))
			default:
				buf = append(buf, byte(r))
			}
			src = src.SliceFrom(n)
			continue
		}

		switch r {
		case '\ufffd': // replacement rune
			buf = append(buf, `\ufffd`...)
		case '\u2028': // line separator
			buf = append(buf, `\u2028`...)
		case '\u2029': // paragraph separator
			buf = append(buf, `\u2029`...)
		default:
			var rbuf [4]byte
			n := utf8.EncodeRune(rbuf[:], r)
			buf = append(buf, rbuf[:n]...)
		}
		src = src.SliceFrom(n)
	}
	return append(buf, '"')
}
