package ephemeris

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ValueKind is the type tag of a request parameter.
type ValueKind uint8

const (
	KindInvalid ValueKind = iota
	KindInt
	KindFloat
	KindString
	KindFloats
)

func (k ValueKind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindFloats:
		return "floats"
	default:
		return "invalid"
	}
}

// Value is one typed request parameter. The zero Value is invalid.
type Value struct {
	str    string
	floats []float64
	f      float64
	i      int64
	kind   ValueKind
}

// Int returns an integer parameter.
func Int(v int) Value { return Value{kind: KindInt, i: int64(v)} }

// Float returns a float parameter.
func Float(v float64) Value { return Value{kind: KindFloat, f: v} }

// String returns a string parameter. Single-character mode codes use String too.
func String(v string) Value { return Value{kind: KindString, str: v} }

// Char returns a one-character string parameter.
func Char(c rune) Value { return Value{kind: KindString, str: string(c)} }

// Floats returns a float array parameter. The slice is copied.
func Floats(v ...float64) Value {
	cp := make([]float64, len(v))
	copy(cp, v)
	return Value{kind: KindFloats, floats: cp}
}

// Kind returns the type tag.
func (v Value) Kind() ValueKind { return v.kind }

// IsValid reports whether the value was built by a constructor.
func (v Value) IsValid() bool { return v.kind != KindInvalid }

// AsInt returns the integer payload.
func (v Value) AsInt() (int64, bool) {
	if v.kind != KindInt {
		return 0, false
	}
	return v.i, true
}

// AsFloat returns the float payload. Integers widen to float.
func (v Value) AsFloat() (float64, bool) {
	switch v.kind {
	case KindFloat:
		return v.f, true
	case KindInt:
		return float64(v.i), true
	}
	return 0, false
}

// AsString returns the string payload.
func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

// AsFloats returns a copy of the array payload.
func (v Value) AsFloats() ([]float64, bool) {
	if v.kind != KindFloats {
		return nil, false
	}
	cp := make([]float64, len(v.floats))
	copy(cp, v.floats)
	return cp, true
}

// String formats the value the way the CLI accepts it back.
func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case KindString:
		return v.str
	case KindFloats:
		parts := make([]string, len(v.floats))
		for i, f := range v.floats {
			parts[i] = strconv.FormatFloat(f, 'f', -1, 64)
		}
		return strings.Join(parts, ",")
	}
	return "<invalid>"
}

// MarshalJSON encodes the payload without the tag.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindInt:
		return json.Marshal(v.i)
	case KindFloat:
		return json.Marshal(v.f)
	case KindString:
		return json.Marshal(v.str)
	case KindFloats:
		return json.Marshal(v.floats)
	}
	return nil, fmt.Errorf("marshal invalid value")
}

// Request is an immutable engine call: an operation, its positional
// parameters and an optional flag bitmask.
type Request struct {
	op       Op
	params   []Value
	flags    int32
	hasFlags bool
}

// NewRequest builds a request. The parameter slice is copied.
func NewRequest(op Op, params ...Value) Request {
	cp := make([]Value, len(params))
	copy(cp, params)
	return Request{op: op, params: cp}
}

// WithFlags returns a copy of r carrying the given flag bitmask.
func (r Request) WithFlags(flags int32) Request {
	r.flags = flags
	r.hasFlags = true
	return r
}

// Op returns the operation identifier.
func (r Request) Op() Op { return r.op }

// Len returns the number of positional parameters.
func (r Request) Len() int { return len(r.params) }

// Param returns the i-th parameter.
func (r Request) Param(i int) (Value, bool) {
	if i < 0 || i >= len(r.params) {
		return Value{}, false
	}
	return r.params[i], true
}

// Params returns a copy of the positional parameters.
func (r Request) Params() []Value {
	cp := make([]Value, len(r.params))
	copy(cp, r.params)
	return cp
}

// Flags returns the flag bitmask and whether one was set.
func (r Request) Flags() (int32, bool) { return r.flags, r.hasFlags }

func (r Request) String() string {
	var b strings.Builder
	b.WriteString(string(r.op))
	b.WriteByte('(')
	for i, p := range r.params {
		if i > 0 {
			b.WriteString(", ")
		}
		if p.kind == KindString {
			b.WriteString(strconv.Quote(p.str))
		} else if p.kind == KindFloats {
			b.WriteByte('[')
			b.WriteString(p.String())
			b.WriteByte(']')
		} else {
			b.WriteString(p.String())
		}
	}
	b.WriteByte(')')
	if r.hasFlags {
		fmt.Fprintf(&b, " flags=%d", r.flags)
	}
	return b.String()
}
