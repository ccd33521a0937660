package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	ephemeris "github.com/wippyai/ephemeris-bridge"
	"github.com/wippyai/ephemeris-bridge/errors"
)

// ParseArgs converts command-line strings into positional values according to
// the spec. Float arrays are comma separated: "13.4,52.5,0".
func (s *Spec) ParseArgs(raw []string) ([]ephemeris.Value, error) {
	params := s.Positional()
	if len(raw) > len(params) {
		return nil, errors.InvalidArgument(string(s.Op), "", fmt.Sprintf("too many parameters: %d", len(raw)))
	}
	out := make([]ephemeris.Value, 0, len(raw))
	for n, text := range raw {
		p := params[n]
		v, err := parseOne(p, strings.TrimSpace(text))
		if err != nil {
			return nil, errors.New(errors.PhaseValidate, errors.KindInvalidArgument).
				Op(string(s.Op)).
				Param(p.Name).
				Value(text).
				Cause(err).
				Detail("cannot parse %q as %s", text, p.Kind).
				Build()
		}
		out = append(out, v)
	}
	return out, nil
}

func parseOne(p Param, text string) (ephemeris.Value, error) {
	switch p.Kind {
	case ParamInt:
		n, err := strconv.ParseInt(text, 0, 64)
		if err != nil {
			return ephemeris.Value{}, err
		}
		return ephemeris.Int(int(n)), nil
	case ParamFloat:
		x, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return ephemeris.Value{}, err
		}
		return ephemeris.Float(x), nil
	case ParamChar, ParamString:
		return ephemeris.String(text), nil
	case ParamFloats:
		if text == "" {
			return ephemeris.Floats(), nil
		}
		parts := strings.Split(text, ",")
		xs := make([]float64, len(parts))
		for n, part := range parts {
			x, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
			if err != nil {
				return ephemeris.Value{}, err
			}
			xs[n] = x
		}
		return ephemeris.Floats(xs...), nil
	}
	return ephemeris.Value{}, fmt.Errorf("unsupported kind %s", p.Kind)
}

// Coerce converts decoded JSON values into positional values. Numbers should
// be decoded with json.Decoder.UseNumber so integers are preserved; plain
// float64 values are accepted for integer params when they are whole.
func (s *Spec) Coerce(raw []any) ([]ephemeris.Value, error) {
	params := s.Positional()
	if len(raw) > len(params) {
		return nil, errors.InvalidArgument(string(s.Op), "", fmt.Sprintf("too many parameters: %d", len(raw)))
	}
	out := make([]ephemeris.Value, 0, len(raw))
	for n, item := range raw {
		p := params[n]
		v, err := coerceOne(p, item)
		if err != nil {
			return nil, errors.New(errors.PhaseValidate, errors.KindInvalidArgument).
				Op(string(s.Op)).
				Param(p.Name).
				Value(item).
				Detail("%v", err).
				Build()
		}
		out = append(out, v)
	}
	return out, nil
}

func coerceOne(p Param, item any) (ephemeris.Value, error) {
	switch p.Kind {
	case ParamInt:
		switch x := item.(type) {
		case json.Number:
			n, err := x.Int64()
			if err != nil {
				return ephemeris.Value{}, fmt.Errorf("expected int, got %s", x)
			}
			return ephemeris.Int(int(n)), nil
		case float64:
			if x != math.Trunc(x) || math.IsInf(x, 0) {
				return ephemeris.Value{}, fmt.Errorf("expected int, got %v", x)
			}
			return ephemeris.Int(int(x)), nil
		}
	case ParamFloat:
		if x, ok := number(item); ok {
			return ephemeris.Float(x), nil
		}
	case ParamChar, ParamString:
		if str, ok := item.(string); ok {
			return ephemeris.String(str), nil
		}
	case ParamFloats:
		list, ok := item.([]any)
		if !ok {
			break
		}
		xs := make([]float64, len(list))
		for n, el := range list {
			x, ok := number(el)
			if !ok {
				return ephemeris.Value{}, fmt.Errorf("element %d: expected number, got %T", n, el)
			}
			xs[n] = x
		}
		return ephemeris.Floats(xs...), nil
	}
	return ephemeris.Value{}, fmt.Errorf("expected %s, got %T", p.Kind, item)
}

func number(item any) (float64, bool) {
	switch x := item.(type) {
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case float64:
		return x, true
	case int:
		return float64(x), true
	}
	return 0, false
}
