package engine

import (
	"context"

	ephemeris "github.com/wippyai/ephemeris-bridge"
	"github.com/wippyai/ephemeris-bridge/schema"
)

// Call is one prepared native invocation. The dispatcher fills Spec, Args
// and Out; the backend fills Out, Text and Err.
type Call struct {
	Spec *schema.Spec
	// Args are bound in full engine order, flags included.
	Args []ephemeris.Value
	// Out has Spec.BufferLen slots. Integer outputs are stored as floats.
	Out  []float64
	Text string
	Err  string
}

// NewCall allocates the output buffer for spec.
func NewCall(spec *schema.Spec, args []ephemeris.Value) *Call {
	return &Call{
		Spec: spec,
		Args: args,
		Out:  make([]float64, spec.BufferLen),
	}
}

// Op returns the operation of the call.
func (c *Call) Op() ephemeris.Op { return c.Spec.Op }

// Handle is a live native engine. Implementations are not safe for
// concurrent use; Context serializes every method call.
type Handle interface {
	// Invoke runs one operation and returns the engine's status code. A
	// non-nil error means the backend faulted without producing a status.
	Invoke(ctx context.Context, call *Call) (int32, error)
	// Close releases the engine.
	Close(ctx context.Context) error
}

// Loader performs native setup: it loads the engine and points it at the
// directory holding its data files.
type Loader interface {
	Load(ctx context.Context, dataPath string) (Handle, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context, dataPath string) (Handle, error)

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context, dataPath string) (Handle, error) {
	return f(ctx, dataPath)
}
