// Copyright (C) 2024 James Preed. All Rights Reserved.

// Package flatjson decodes a JSON document directly into a single-level
// mapping from path strings to the scalar values found at each leaf, without
// materializing the nested document as an intermediate structure.
//
// # Decoding
//
// Construct a Decoder with New, or use Flatten for the default
// configuration, and call Decode with the JSON text:
//
//	m, err := flatjson.Flatten(`{"x": {"y": {"z": 10}}}`)
//	if err != nil {
//	   log.Fatalf("Decode failed: %v", err)
//	}
//	v, ok := m.Get("x.y.z") // v == int64(10)
//
// The decoder walks the document once, keeping only the stack of path
// segments between the root and the current position. Memory use is
// proportional to the nesting depth plus the number of leaves, not to the
// size of the document tree.
//
// Malformed input is reported as a *SyntaxError carrying the position where
// decoding stopped; no mapping is returned for a failed decode.
//
// # Keys
//
// Each leaf's key joins the object member names and array element indices
// between the root and the leaf, separated by "." by default. An index is
// enclosed in "[...]", and a member name that itself contains the separator
// is enclosed in "<...>" so it cannot be read as multiple segments:
//
//	{"a": ["p", "q"]}       => "a.[0]": "p", "a.[1]": "q"
//	{"good.night": "moon"}  => "<good.night>": "moon"
//
// A bare top-level scalar has the empty string as its key. Numbers keep the
// shape of their source literal: an integer literal decodes as int64, a
// literal with a fraction or exponent as float64.
//
// # Configuration
//
// The separator and both enclosure pairs are set through Options, as are the
// nesting limit and two extensions: JWCC input (comments and trailing
// commas) and the non-finite constants NaN, Infinity, and -Infinity.
// Invalid option values are reported by New as a *ConfigError.
package flatjson
