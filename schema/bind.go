package schema

import (
	"fmt"
	"math"
	"strings"

	ephemeris "github.com/wippyai/ephemeris-bridge"
	"github.com/wippyai/ephemeris-bridge/errors"
)

// Validate checks a request against its operation's signature without binding it.
func Validate(req ephemeris.Request) error {
	spec, ok := Lookup(req.Op())
	if !ok {
		return errors.UnknownOperation(string(req.Op()))
	}
	_, err := spec.Bind(req)
	return err
}

// Bind validates a request and returns its arguments in full engine order.
// Flags are taken from the request and inserted at their declared position,
// integers are widened where floats are declared, float arrays are padded to
// their declared length and omitted optional params are zero-filled.
func (s *Spec) Bind(req ephemeris.Request) ([]ephemeris.Value, error) {
	if req.Op() != s.Op {
		return nil, errors.InvalidArgument(string(s.Op), "", fmt.Sprintf("request is for %q", req.Op()))
	}

	lo, hi := s.Arity()
	if n := req.Len(); n < lo || n > hi {
		return nil, errors.New(errors.PhaseValidate, errors.KindInvalidArgument).
			Op(string(s.Op)).
			Value(n).
			Detail("expected %s parameters, got %d", arityText(lo, hi), n).
			Build()
	}

	flagBits, hasFlags := req.Flags()
	if hasFlags && !s.HasFlags() {
		return nil, errors.InvalidArgument(string(s.Op), "flags", "operation takes no flags")
	}

	args := make([]ephemeris.Value, 0, len(s.Params))
	pos := 0
	for _, p := range s.Params {
		if p.Kind == ParamFlags {
			args = append(args, ephemeris.Int(int(flagBits)))
			continue
		}
		v, present := req.Param(pos)
		pos++
		if !present {
			args = append(args, zero(p))
			continue
		}
		bound, err := bindParam(s.Op, p, v)
		if err != nil {
			return nil, err
		}
		args = append(args, bound)
	}
	return args, nil
}

func bindParam(op ephemeris.Op, p Param, v ephemeris.Value) (ephemeris.Value, error) {
	mismatch := func() error {
		return errors.New(errors.PhaseValidate, errors.KindInvalidArgument).
			Op(string(op)).
			Param(p.Name).
			Value(v.String()).
			Detail("expected %s, got %s", p.Kind, v.Kind()).
			Build()
	}

	switch p.Kind {
	case ParamInt:
		n, ok := v.AsInt()
		if !ok {
			return ephemeris.Value{}, mismatch()
		}
		if n < math.MinInt32 || n > math.MaxInt32 {
			return ephemeris.Value{}, errors.InvalidArgument(string(op), p.Name, fmt.Sprintf("%d overflows a 32-bit integer", n))
		}
		return v, nil

	case ParamFloat:
		x, ok := v.AsFloat()
		if !ok {
			return ephemeris.Value{}, mismatch()
		}
		return ephemeris.Float(x), nil

	case ParamChar:
		str, ok := v.AsString()
		if !ok {
			return ephemeris.Value{}, mismatch()
		}
		if len(str) != 1 || str[0] == 0 || str[0] > 0x7f {
			return ephemeris.Value{}, errors.InvalidArgument(string(op), p.Name, fmt.Sprintf("expected a single ASCII character, got %q", str))
		}
		return v, nil

	case ParamString:
		str, ok := v.AsString()
		if !ok {
			return ephemeris.Value{}, mismatch()
		}
		if strings.IndexByte(str, 0) >= 0 {
			return ephemeris.Value{}, errors.InvalidArgument(string(op), p.Name, "string contains a NUL byte")
		}
		if len(str) >= ephemeris.MaxStarName {
			return ephemeris.Value{}, errors.InvalidArgument(string(op), p.Name, fmt.Sprintf("string longer than %d bytes", ephemeris.MaxStarName-1))
		}
		return v, nil

	case ParamFloats:
		xs, ok := v.AsFloats()
		if !ok {
			return ephemeris.Value{}, mismatch()
		}
		if len(xs) > p.Len {
			return ephemeris.Value{}, errors.InvalidArgument(string(op), p.Name, fmt.Sprintf("expected at most %d values, got %d", p.Len, len(xs)))
		}
		padded := make([]float64, p.Len)
		copy(padded, xs)
		return ephemeris.Floats(padded...), nil
	}

	return ephemeris.Value{}, errors.InvalidArgument(string(op), p.Name, "unsupported parameter kind")
}

func zero(p Param) ephemeris.Value {
	switch p.Kind {
	case ParamInt, ParamFlags:
		return ephemeris.Int(0)
	case ParamChar, ParamString:
		return ephemeris.String("")
	case ParamFloats:
		return ephemeris.Floats(make([]float64, p.Len)...)
	}
	return ephemeris.Float(0)
}

func arityText(lo, hi int) string {
	if lo == hi {
		return fmt.Sprint(lo)
	}
	return fmt.Sprintf("%d to %d", lo, hi)
}
