package schema

import (
	"strconv"
	"strings"

	ephemeris "github.com/wippyai/ephemeris-bridge"
)

// ParamKind is the declared type of one engine argument.
type ParamKind uint8

const (
	ParamInt    ParamKind = iota + 1 // 32-bit integer
	ParamFloat                       // double
	ParamChar                        // single ASCII character code
	ParamString                      // NUL-terminated text
	ParamFloats                      // fixed-length double array
	ParamFlags                       // computation bitmask taken from Request.Flags
)

func (k ParamKind) String() string {
	switch k {
	case ParamInt:
		return "int"
	case ParamFloat:
		return "float"
	case ParamChar:
		return "char"
	case ParamString:
		return "string"
	case ParamFloats:
		return "floats"
	case ParamFlags:
		return "flags"
	}
	return "unknown"
}

// Param is one argument in an operation's engine signature.
type Param struct {
	Name     string
	Kind     ParamKind
	Len      int  // capacity for ParamFloats
	Optional bool // may be omitted by the caller; zero-filled
}

func (p Param) String() string {
	var b strings.Builder
	b.WriteString(p.Name)
	b.WriteByte(' ')
	b.WriteString(p.Kind.String())
	if p.Kind == ParamFloats {
		b.WriteByte('[')
		b.WriteString(strconv.Itoa(p.Len))
		b.WriteByte(']')
	}
	if p.Optional {
		b.WriteByte('?')
	}
	return b.String()
}

// ConfigKind names a piece of engine-global configuration.
type ConfigKind uint8

const (
	ConfigNone ConfigKind = iota
	ConfigTopocentric
	ConfigSidereal
)

func (c ConfigKind) String() string {
	switch c {
	case ConfigTopocentric:
		return "topocentric"
	case ConfigSidereal:
		return "sidereal"
	}
	return "none"
}

// Field maps buffer offsets to one named result field.
type Field struct {
	Name   string
	Offset int     // absolute for top-level fields, relative inside Fields
	Count  int     // >1 for fixed arrays
	Text   bool    // decoded from the text output, not the buffer
	Fields []Field // nested record
}

// Span returns the number of buffer slots the field covers.
func (f Field) Span() int {
	if f.Text {
		return 0
	}
	if len(f.Fields) > 0 {
		end := 0
		for _, sub := range f.Fields {
			if e := sub.Offset + sub.Span(); e > end {
				end = e
			}
		}
		return end
	}
	if f.Count > 1 {
		return f.Count
	}
	return 1
}

// Spec describes one operation.
type Spec struct {
	Op        ephemeris.Op
	Family    ephemeris.Family
	Doc       string
	Params    []Param // full engine order, flags included
	BufferLen int
	Fields    []Field
	Mutates   ConfigKind
	Reads     []ConfigKind
	// FailureMessage is reported when the engine fails without error text.
	FailureMessage string
}

// Positional returns the params a caller supplies positionally.
func (s *Spec) Positional() []Param {
	out := make([]Param, 0, len(s.Params))
	for _, p := range s.Params {
		if p.Kind != ParamFlags {
			out = append(out, p)
		}
	}
	return out
}

// HasFlags reports whether the engine signature takes a flag bitmask.
func (s *Spec) HasFlags() bool {
	for _, p := range s.Params {
		if p.Kind == ParamFlags {
			return true
		}
	}
	return false
}

// Arity returns the minimum and maximum positional parameter counts.
func (s *Spec) Arity() (minArgs, maxArgs int) {
	for _, p := range s.Params {
		if p.Kind == ParamFlags {
			continue
		}
		maxArgs++
		if !p.Optional {
			minArgs = maxArgs
		}
	}
	return minArgs, maxArgs
}

// HasText reports whether any field is decoded from the text output.
func (s *Spec) HasText() bool {
	for _, f := range s.Fields {
		if f.Text {
			return true
		}
	}
	return false
}

// Signature renders the positional signature, e.g. "julday(year int, ...)".
func (s *Spec) Signature() string {
	var b strings.Builder
	b.WriteString(string(s.Op))
	b.WriteByte('(')
	first := true
	for _, p := range s.Params {
		if !first {
			b.WriteString(", ")
		}
		first = false
		b.WriteString(p.String())
	}
	b.WriteByte(')')
	return b.String()
}
