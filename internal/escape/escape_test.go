// Copyright (C) 2024 James Preed. All Rights Reserved.

package escape_test

import (
	"strings"
	"testing"

	"github.com/jamespreed/dot-flat-json/internal/escape"
	"go4.org/mem"
)

func TestUnquote(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"", ""},
		{"plain text", "plain text"},
		{`tab\there`, "tab\there"},
		{`\"\\\/\b\f\n\r\t`, "\"\\/\b\f\n\r\t"},
		{`Aé☃`, "Aé☃"},
		{`smile \ud83d\ude00 now`, "smile \U0001f600 now"}, // surrogate pair
		{`half \ud83d done`, "half � done"},           // unpaired surrogate
		{`already ☃ decoded`, "already ☃ decoded"},
	}

	for _, test := range tests {
		got, err := escape.Unquote(mem.S(test.input))
		if err != nil {
			t.Errorf("Unquote(%#q) failed: %v", test.input, err)
			continue
		}
		if string(got) != test.want {
			t.Errorf("Unquote(%#q): got %#q, want %#q", test.input, got, test.want)
		}
	}
}

func TestUnquoteErrors(t *testing.T) {
	tests := []struct {
		input, estr string
	}{
		{`broken \`, "incomplete escape sequence"},
		{`\q`, "invalid escape"},
		{`\u12`, "incomplete Unicode escape"},
	}

	for _, test := range tests {
		got, err := escape.Unquote(mem.S(test.input))
		if err == nil {
			t.Errorf("Unquote(%#q): got %#q, want error", test.input, got)
		} else if !strings.Contains(err.Error(), test.estr) {
			t.Errorf("Unquote(%#q): got error %v, want %q", test.input, err, test.estr)
		}
	}
}

func TestAppendQuote(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"", `""`},
		{"plain", `"plain"`},
		{"a\tb\nc", `"a\tb\nc"`},
		{`say "what"`, `"say \"what\""`},
		{"back\\slash", `"back\\slash"`},
		{"\x01\x1f", `"\u0001\u001f"`},
		{"é☃😀", `"é☃😀"`},
		{"  ", `"\u2028\u2029"`},
	}

	for _, test := range tests {
		got := escape.AppendQuote(nil, mem.S(test.input))
		if string(got) != test.want {
			t.Errorf("AppendQuote(%#q): got %#q, want %#q", test.input, got, test.want)
		}
	}
}

func TestQuoteUnquoteRoundTrip(t *testing.T) {
	inputs := []string{
		"", "simple", "with \"quotes\" and \\slashes\\",
		"control \x00\x07\x1f bytes", "unicode é☃😀 text", "tab\tand\nnewline",
	}
	for _, input := range inputs {
		q := escape.AppendQuote(nil, mem.S(input))
		got, err := escape.Unquote(mem.B(q[1 : len(q)-1]))
		if err != nil {
			t.Errorf("Unquote(%#q) failed: %v", q, err)
			continue
		}
		if string(got) != input {
			t.Errorf("Round trip of %#q: got %#q", input, got)
		}
	}
}
