// Copyright (C) 2024 James Preed. All Rights Reserved.

// Package keypath tracks the traversal path from the root of a JSON document
// to the current position, and renders it as a flat string key.
//
// A Path is a stack of segments, one per level of container nesting. The
// decoder pushes a segment when it enters an object member or array element,
// renders the path when it reaches a scalar, and pops the segment when the
// member or element is done.
package keypath

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind distinguishes the two kinds of path segment.
type Kind byte

const (
	ObjectKey  Kind = iota // a member key of an enclosing object
	ArrayIndex             // an element position in an enclosing array
)

func (k Kind) String() string {
	if k == ArrayIndex {
		return "array index"
	}
	return "object key"
}

// A Segment is one step of a traversal path, either an object member key or
// a zero-based array element index.
type Segment struct {
	Kind  Kind
	Key   string // the member key, when Kind == ObjectKey
	Index int    // the element index, when Kind == ArrayIndex
}

// A Wrap is a pair of strings enclosing the rendering of a path segment.
type Wrap struct {
	Open, Close string
}

// ParseWrap resolves the compact two-character spelling of an enclosure
// pair, such as "<>" or "[]", into a Wrap.
func ParseWrap(s string) (Wrap, error) {
	rs := []rune(s)
	if len(rs) != 2 {
		return Wrap{}, fmt.Errorf("enclosure %q must have exactly 2 characters", s)
	}
	return Wrap{Open: string(rs[0]), Close: string(rs[1])}, nil
}

func (w Wrap) enabled() bool { return w.Open != "" && w.Close != "" }

// A Style defines how a Path renders to a key string.
type Style struct {
	// Sep separates the rendered segments.
	Sep string

	// KeyWrap encloses an object key whose text contains Sep, so that the
	// key cannot be mistaken for multiple path segments.
	KeyWrap Wrap

	// IndexWrap encloses every rendered array index. If either half of the
	// pair is empty, indices render bare.
	IndexWrap Wrap
}

// Default is the rendering style used when no configuration is given:
// dot-separated segments, "<...>" around keys containing a dot, and "[...]"
// around array indices.
var Default = Style{
	Sep:       ".",
	KeyWrap:   Wrap{"<", ">"},
	IndexWrap: Wrap{"[", "]"},
}

// A Path is the segment stack between the document root and the current
// position of a traversal. A Path is owned by a single traversal and is not
// safe for concurrent use.
type Path struct {
	style Style
	segs  []Segment
}

// New constructs an empty Path rendered according to style.
func New(style Style) *Path { return &Path{style: style} }

// PushKey appends an object-key segment for the member name.
func (p *Path) PushKey(name string) {
	p.segs = append(p.segs, Segment{Kind: ObjectKey, Key: name})
}

// PushIndex appends an array-index segment for the zero-based position i.
func (p *Path) PushIndex(i int) {
	p.segs = append(p.segs, Segment{Kind: ArrayIndex, Index: i})
}

// Pop removes the most recently pushed segment. Pushes and pops must bracket
// exactly; Pop panics if the path is empty.
func (p *Path) Pop() {
	if len(p.segs) == 0 {
		panic("pop of empty path")
	}
	p.segs = p.segs[:len(p.segs)-1]
}

// Depth reports the number of segments on the path.
func (p *Path) Depth() int { return len(p.segs) }

// Render joins the current segments into the key for this position, root
// segment first. An empty path renders as "", the key of a bare top-level
// scalar.
func (p *Path) Render() string {
	var sb strings.Builder
	for i, seg := range p.segs {
		if i > 0 {
			sb.WriteString(p.style.Sep)
		}
		if seg.Kind == ArrayIndex {
			if p.style.IndexWrap.enabled() {
				sb.WriteString(p.style.IndexWrap.Open)
				sb.WriteString(strconv.Itoa(seg.Index))
				sb.WriteString(p.style.IndexWrap.Close)
			} else {
				sb.WriteString(strconv.Itoa(seg.Index))
			}
			continue
		}
		if strings.Contains(seg.Key, p.style.Sep) {
			sb.WriteString(p.style.KeyWrap.Open)
			sb.WriteString(seg.Key)
			sb.WriteString(p.style.KeyWrap.Close)
		} else {
			sb.WriteString(seg.Key)
		}
	}
	return sb.String()
}
