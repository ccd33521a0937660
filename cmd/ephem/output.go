package main

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"

	ephemeris "github.com/wippyai/ephemeris-bridge"
	"github.com/wippyai/ephemeris-bridge/errors"
)

// Exit codes for CLI commands.
const (
	ExitSuccess = 0 // Successful execution
	ExitFailure = 1 // Engine, provisioning or configuration failure
	ExitUsage   = 2 // The request was rejected before reaching the engine
)

func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	if stderrors.Is(err, errors.ErrInvalidArgument) {
		return ExitUsage
	}
	return ExitFailure
}

// callOutput mirrors the HTTP call response.
type callOutput struct {
	Op     string           `json:"op"`
	Family ephemeris.Family `json:"family"`
	Result ephemeris.Result `json:"result"`
}

type errorOutput struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Op      string `json:"op,omitempty"`
	Param   string `json:"param,omitempty"`
	Code    *int32 `json:"code,omitempty"`
}

func newErrorOutput(err error) errorOutput {
	e, ok := errors.As(err)
	if !ok {
		return errorOutput{Error: "internal_error", Message: err.Error()}
	}
	out := errorOutput{Error: string(e.Kind), Message: e.Message(), Op: e.Op, Param: e.Param}
	if e.Kind == errors.KindOperation {
		code := e.Code
		out.Code = &code
	}
	return out
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type field struct {
	name  string
	value string
}

// writeResult renders a result record as aligned "name  value" lines.
// Array elements are numbered from 1, matching house numbers.
func writeResult(w io.Writer, res ephemeris.Result) error {
	fields := resultFields(res)
	if len(fields) == 0 {
		_, err := fmt.Fprintln(w, "ok")
		return err
	}
	width := 0
	for _, f := range fields {
		width = max(width, len(f.name))
	}
	for _, f := range fields {
		if _, err := fmt.Fprintf(w, "%-*s  %s\n", width, f.name, f.value); err != nil {
			return err
		}
	}
	return nil
}

func resultFields(res ephemeris.Result) []field {
	v := reflect.ValueOf(res)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return []field{{name: "value", value: fmt.Sprint(res)}}
	}
	return flatten(nil, "", v)
}

func flatten(out []field, prefix string, v reflect.Value) []field {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name = sf.Name
		}

		fv := v.Field(i)
		switch fv.Kind() {
		case reflect.Struct:
			out = flatten(out, prefix+name+".", fv)
		case reflect.Array, reflect.Slice:
			for j := 0; j < fv.Len(); j++ {
				out = append(out, field{name: fmt.Sprintf("%s%s[%d]", prefix, name, j+1), value: formatValue(fv.Index(j))})
			}
		default:
			out = append(out, field{name: prefix + name, value: formatValue(fv)})
		}
	}
	return out
}

func formatValue(v reflect.Value) string {
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'f', -1, 64)
	case reflect.String:
		return strconv.Quote(v.String())
	default:
		return fmt.Sprint(v.Interface())
	}
}
