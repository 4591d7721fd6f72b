package schema

import (
	"strconv"
	"strings"
)

// PathSegment is a single step into a nested value: either an object field
// or an array index.
type PathSegment struct {
	Field   string
	Index   int
	IsIndex bool
}

// Path locates a value within a nested structure. The zero Path is the root.
// Paths are values; Field and Index return extended copies and never mutate
// the receiver.
type Path []PathSegment

// Field returns a copy of p extended with an object field.
func (p Path) Field(name string) Path {
	return p.append(PathSegment{Field: name})
}

// Index returns a copy of p extended with an array index.
func (p Path) Index(i int) Path {
	return p.append(PathSegment{Index: i, IsIndex: true})
}

func (p Path) append(seg PathSegment) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, seg)
}

// String renders the path as a dotted expression, e.g. "body.items[2].id".
// The root path renders as "$".
func (p Path) String() string {
	if len(p) == 0 {
		return "$"
	}
	var sb strings.Builder
	for i, seg := range p {
		if seg.IsIndex {
			sb.WriteByte('[')
			sb.WriteString(strconv.Itoa(seg.Index))
			sb.WriteByte(']')
			continue
		}
		if i > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(seg.Field)
	}
	return sb.String()
}

