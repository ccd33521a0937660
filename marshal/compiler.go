package marshal

import (
	"reflect"
	"sync"

	ephemeris "github.com/wippyai/ephemeris-bridge"
	"github.com/wippyai/ephemeris-bridge/errors"
	"github.com/wippyai/ephemeris-bridge/schema"
)

const tagName = "ephem"

type stepKind uint8

const (
	stepFloat stepKind = iota
	stepInt
	stepFloatArray
	stepText
)

// step copies one buffer slot (or run of slots) into one record field.
type step struct {
	index  []int
	offset int
	count  int
	kind   stepKind
}

// Plan is a compiled decoder for one operation.
type Plan struct {
	Type   reflect.Type
	Op     ephemeris.Op
	Family ephemeris.Family
	steps  []step
}

// Compiler builds and caches decode plans.
type Compiler struct {
	cache sync.Map // *schema.Spec -> *Plan
}

// NewCompiler creates a compiler with an empty cache.
func NewCompiler() *Compiler {
	return &Compiler{}
}

// Compile returns the plan for spec, building it on first use.
func (c *Compiler) Compile(spec *schema.Spec) (*Plan, error) {
	if spec == nil {
		return nil, errors.New(errors.PhaseDispatch, errors.KindInvalidArgument).
			Detail("spec cannot be nil").
			Build()
	}
	if cached, ok := c.cache.Load(spec); ok {
		return cached.(*Plan), nil
	}

	plan, err := compile(spec)
	if err != nil {
		return nil, err
	}

	c.cache.Store(spec, plan)
	return plan, nil
}

func compile(spec *schema.Spec) (*Plan, error) {
	proto := ephemeris.NewResult(spec.Family)
	if proto == nil {
		return nil, errors.InvalidArgument(string(spec.Op), "", "unknown result family "+string(spec.Family))
	}
	typ := reflect.TypeOf(proto).Elem()

	plan := &Plan{Type: typ, Op: spec.Op, Family: spec.Family}
	if err := plan.addFields(spec.Op, typ, spec.Fields, nil, 0); err != nil {
		return nil, err
	}
	return plan, nil
}

func (p *Plan) addFields(op ephemeris.Op, typ reflect.Type, fields []schema.Field, prefix []int, base int) error {
	for _, f := range fields {
		sf, ok := fieldByTag(typ, f.Name)
		if !ok {
			return errors.InvalidArgument(string(op), f.Name, "no field tagged "+f.Name+" in "+typ.Name())
		}
		index := append(append([]int(nil), prefix...), sf.Index...)
		offset := base + f.Offset

		switch {
		case f.Text:
			if sf.Type.Kind() != reflect.String {
				return mismatch(op, f.Name, sf.Type, "string")
			}
			p.steps = append(p.steps, step{index: index, kind: stepText})

		case len(f.Fields) > 0:
			if sf.Type.Kind() != reflect.Struct {
				return mismatch(op, f.Name, sf.Type, "struct")
			}
			if err := p.addFields(op, sf.Type, f.Fields, index, offset); err != nil {
				return err
			}

		case f.Count > 1:
			if sf.Type.Kind() != reflect.Array || sf.Type.Elem().Kind() != reflect.Float64 || sf.Type.Len() != f.Count {
				return mismatch(op, f.Name, sf.Type, "float64 array")
			}
			p.steps = append(p.steps, step{index: index, offset: offset, count: f.Count, kind: stepFloatArray})

		default:
			switch sf.Type.Kind() {
			case reflect.Float64:
				p.steps = append(p.steps, step{index: index, offset: offset, kind: stepFloat})
			case reflect.Int:
				p.steps = append(p.steps, step{index: index, offset: offset, kind: stepInt})
			default:
				return mismatch(op, f.Name, sf.Type, "float64 or int")
			}
		}
	}
	return nil
}

func fieldByTag(typ reflect.Type, name string) (reflect.StructField, bool) {
	for n := 0; n < typ.NumField(); n++ {
		sf := typ.Field(n)
		if sf.Tag.Get(tagName) == name {
			return sf, true
		}
	}
	return reflect.StructField{}, false
}

func mismatch(op ephemeris.Op, field string, got reflect.Type, want string) error {
	return errors.New(errors.PhaseDispatch, errors.KindInvalidArgument).
		Op(string(op)).
		Param(field).
		Detail("record field is %s, want %s", got, want).
		Build()
}
