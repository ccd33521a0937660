package marshal

import (
	"math"
	"reflect"
	"strings"

	ephemeris "github.com/wippyai/ephemeris-bridge"
	"github.com/wippyai/ephemeris-bridge/schema"
)

// maxExactInt bounds float-to-int conversion to integers a float64 holds exactly.
const maxExactInt = 1 << 53

var defaultCompiler = NewCompiler()

// Decode maps an output buffer and text to the operation's result record
// using the shared compiler. It never fails: a spec that cannot be compiled
// decodes to the zero record of its family.
func Decode(spec *schema.Spec, buf []float64, text string) ephemeris.Result {
	plan, err := defaultCompiler.Compile(spec)
	if err != nil {
		if spec == nil {
			return ephemeris.Empty{}
		}
		if proto := ephemeris.NewResult(spec.Family); proto != nil {
			return reflect.ValueOf(proto).Elem().Interface().(ephemeris.Result)
		}
		return ephemeris.Empty{}
	}
	return plan.Decode(buf, text)
}

// Check compiles every catalog entry and returns the first failure.
func Check() error {
	for _, spec := range schema.All() {
		if _, err := defaultCompiler.Compile(spec); err != nil {
			return err
		}
	}
	return nil
}

// Decode builds a record from buf and text.
func (p *Plan) Decode(buf []float64, text string) ephemeris.Result {
	rv := reflect.New(p.Type).Elem()
	for _, st := range p.steps {
		fv := rv.FieldByIndex(st.index)
		switch st.kind {
		case stepFloat:
			fv.SetFloat(slot(buf, st.offset))
		case stepInt:
			fv.SetInt(toInt(slot(buf, st.offset)))
		case stepFloatArray:
			for n := 0; n < st.count; n++ {
				fv.Index(n).SetFloat(slot(buf, st.offset+n))
			}
		case stepText:
			fv.SetString(CleanText(text))
		}
	}
	return rv.Interface().(ephemeris.Result)
}

func slot(buf []float64, offset int) float64 {
	if offset < 0 || offset >= len(buf) {
		return 0
	}
	return buf[offset]
}

func toInt(x float64) int64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	x = math.Round(x)
	if x > maxExactInt {
		return maxExactInt
	}
	if x < -maxExactInt {
		return -maxExactInt
	}
	return int64(x)
}

// CleanText cuts engine text at the first NUL and trims surrounding space.
func CleanText(text string) string {
	if n := strings.IndexByte(text, 0); n >= 0 {
		text = text[:n]
	}
	return strings.TrimSpace(text)
}
