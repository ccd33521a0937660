package engine

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/wippyai/ephemeris-bridge/errors"
	"github.com/wippyai/ephemeris-bridge/schema"
)

// State is the lifecycle state of a Context.
type State int32

const (
	StateIdle   State = iota // never initialized
	StateReady               // handle live
	StateFailed              // last initialization failed; sticky until Initialize
	StateClosed              // torn down; only Initialize revives it
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	case StateClosed:
		return "closed"
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

// Observer receives lifecycle and contention events. metrics.Collectors
// implements it.
type Observer interface {
	GuardWait(d time.Duration)
	EngineInit(err error)
	EngineReady(ready bool)
}

// Topocentric is the observer location last applied with set_topo.
type Topocentric struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
	Altitude  float64 `json:"altitude"`
}

// Sidereal is the sidereal mode last applied with set_sid_mode.
type Sidereal struct {
	Mode   int64   `json:"mode"`
	T0     float64 `json:"t0"`
	AyanT0 float64 `json:"ayan_t0"`
}

// Settings mirrors the engine-global configuration that was successfully
// applied. Nil members were never set since the last initialization.
type Settings struct {
	Topocentric *Topocentric `json:"topocentric,omitempty"`
	Sidereal    *Sidereal    `json:"sidereal,omitempty"`
}

// Option configures a Context.
type Option func(*Context)

// WithLogger sets the context's logger. The package Logger is used otherwise.
func WithLogger(l *zap.Logger) Option {
	return func(c *Context) {
		if l != nil {
			c.log = l
		}
	}
}

// WithObserver sets the lifecycle observer.
func WithObserver(o Observer) Option {
	return func(c *Context) {
		c.obs = o
	}
}

// WithDataPath sets the directory used by lazy initialization.
func WithDataPath(path string) Option {
	return func(c *Context) {
		c.dataPath = path
	}
}

// Context owns the single native engine handle. It initializes the engine
// at most once per successful initialization, serializes every native call
// through its Guard and tears the engine down exactly once.
//
// Lock order: initMu before the guard. The handle and settings are only
// touched while holding the guard.
type Context struct {
	loader   Loader
	log      *zap.Logger
	obs      Observer
	guard    Guard
	ready    atomic.Bool
	attempts atomic.Uint64
	setups   atomic.Int64

	initMu   sync.Mutex
	state    State
	initErr  error
	dataPath string

	handle   Handle
	settings Settings
}

// NewContext creates an idle context. Nothing is loaded until the first
// call or an explicit Initialize.
func NewContext(loader Loader, opts ...Option) *Context {
	c := &Context{
		loader: loader,
		log:    Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.obs != nil {
		c.guard.onWait = c.obs.GuardWait
	}
	return c
}

// Initialize sets the engine up against dataPath, or the configured path
// when dataPath is empty. Concurrent callers serialize: one performs native
// setup and the rest observe its outcome. A failed or torn-down context is
// retried; a ready one is left untouched.
func (c *Context) Initialize(ctx context.Context, dataPath string) error {
	seen := c.attempts.Load()

	c.initMu.Lock()
	defer c.initMu.Unlock()

	if c.state == StateReady {
		return nil
	}
	if c.state == StateFailed && c.attempts.Load() != seen {
		return c.initErr
	}
	if dataPath != "" {
		c.dataPath = dataPath
	}
	return c.setupLocked(ctx)
}

// Ensure initializes lazily on first use. It never retries: after a failed
// initialization it returns the same error, and after Teardown it returns
// a not-initialized error.
func (c *Context) Ensure(ctx context.Context) error {
	if c.ready.Load() {
		return nil
	}

	c.initMu.Lock()
	defer c.initMu.Unlock()

	switch c.state {
	case StateReady:
		return nil
	case StateFailed:
		return c.initErr
	case StateClosed:
		return errors.NotInitialized(errors.PhaseDispatch, "engine")
	}
	return c.setupLocked(ctx)
}

func (c *Context) setupLocked(ctx context.Context) error {
	c.attempts.Add(1)
	path := c.dataPath
	c.log.Info("initializing engine", zap.String("data_path", path))

	err := checkDataPath(path)
	if err == nil {
		var h Handle
		c.guard.Do(func() {
			h, err = c.loader.Load(ctx, path)
			if err == nil {
				c.handle = h
				c.settings = Settings{}
			}
		})
		if err != nil {
			err = errors.InitializationFailed("load engine", err)
		}
	}

	if c.obs != nil {
		c.obs.EngineInit(err)
	}
	if err != nil {
		c.state = StateFailed
		c.initErr = err
		c.log.Error("engine initialization failed", zap.Error(err))
		return err
	}

	c.setups.Add(1)
	c.state = StateReady
	c.initErr = nil
	c.ready.Store(true)
	if c.obs != nil {
		c.obs.EngineReady(true)
	}
	c.log.Info("engine ready", zap.String("data_path", path))
	return nil
}

func checkDataPath(path string) error {
	if path == "" {
		return errors.InitializationFailed("data path is empty", nil)
	}
	info, err := os.Stat(path)
	if err != nil {
		return errors.InitializationFailed(fmt.Sprintf("data path %q", path), err)
	}
	if !info.IsDir() {
		return errors.InitializationFailed(fmt.Sprintf("data path %q is not a directory", path), nil)
	}
	return nil
}

// Teardown releases the engine. It is idempotent; every call after it fails
// with a not-initialized error until Initialize is called again.
func (c *Context) Teardown(ctx context.Context) error {
	c.initMu.Lock()
	defer c.initMu.Unlock()

	wasReady := c.state == StateReady
	c.state = StateClosed
	c.initErr = nil
	c.ready.Store(false)
	if !wasReady {
		return nil
	}

	var err error
	c.guard.Do(func() {
		if c.handle != nil {
			err = c.handle.Close(context.WithoutCancel(ctx))
			c.handle = nil
		}
		c.settings = Settings{}
	})
	if c.obs != nil {
		c.obs.EngineReady(false)
	}
	if err != nil {
		c.log.Warn("engine teardown reported an error", zap.Error(err))
		return errors.Wrap(errors.PhaseInit, errors.KindInitialization, err, "close engine")
	}
	c.log.Info("engine torn down")
	return nil
}

// Invoke runs one call under the guard, initializing lazily first. The
// native call runs with a context detached from caller cancellation: once
// started it always completes. Backend failures that produce no status come
// back as operation faults. On success, configuration calls update the
// settings mirror inside the same critical section.
func (c *Context) Invoke(ctx context.Context, call *Call) (status int32, err error) {
	if err := c.Ensure(ctx); err != nil {
		return 0, err
	}

	native := context.WithoutCancel(ctx)
	c.guard.Do(func() {
		if c.handle == nil {
			err = errors.NotInitialized(errors.PhaseDispatch, "engine")
			return
		}
		defer func() {
			if r := recover(); r != nil {
				err = errors.Fault(string(call.Op()), fmt.Errorf("panic: %v", r))
			}
		}()
		status, err = c.handle.Invoke(native, call)
		if err != nil {
			err = errors.Fault(string(call.Op()), err)
			return
		}
		if status >= 0 {
			c.applyLocked(call)
		}
	})
	return status, err
}

func (c *Context) applyLocked(call *Call) {
	switch call.Spec.Mutates {
	case schema.ConfigTopocentric:
		t := &Topocentric{}
		t.Longitude, _ = call.Args[0].AsFloat()
		t.Latitude, _ = call.Args[1].AsFloat()
		t.Altitude, _ = call.Args[2].AsFloat()
		c.settings.Topocentric = t
		c.log.Debug("topocentric location applied",
			zap.Float64("longitude", t.Longitude),
			zap.Float64("latitude", t.Latitude),
			zap.Float64("altitude", t.Altitude))
	case schema.ConfigSidereal:
		s := &Sidereal{}
		s.Mode, _ = call.Args[0].AsInt()
		s.T0, _ = call.Args[1].AsFloat()
		s.AyanT0, _ = call.Args[2].AsFloat()
		c.settings.Sidereal = s
		c.log.Debug("sidereal mode applied", zap.Int64("mode", s.Mode))
	}
}

// Settings returns a snapshot of the applied engine configuration. It waits
// for the guard, so it never observes a half-applied change.
func (c *Context) Settings() Settings {
	var out Settings
	c.guard.Do(func() {
		if c.settings.Topocentric != nil {
			t := *c.settings.Topocentric
			out.Topocentric = &t
		}
		if c.settings.Sidereal != nil {
			s := *c.settings.Sidereal
			out.Sidereal = &s
		}
	})
	return out
}

// State returns the lifecycle state.
func (c *Context) State() State {
	c.initMu.Lock()
	defer c.initMu.Unlock()
	return c.state
}

// Ready reports whether the engine is live.
func (c *Context) Ready() bool {
	return c.ready.Load()
}

// Setups returns how many native setups have succeeded.
func (c *Context) Setups() int64 {
	return c.setups.Load()
}

// DataPath returns the directory used for initialization.
func (c *Context) DataPath() string {
	c.initMu.Lock()
	defer c.initMu.Unlock()
	return c.dataPath
}
