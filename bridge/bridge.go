// Package bridge wires provisioning, the engine context and the dispatcher
// into one handle with a typed method per engine operation.
//
// A Bridge is built once per process, or once per engine instance. New
// materializes the engine's data files, creates the engine context and, with
// EagerInit, initializes it before returning. Without EagerInit the first
// call initializes the engine.
package bridge

import (
	"context"
	stderrors "errors"

	"go.uber.org/zap"

	ephemeris "github.com/wippyai/ephemeris-bridge"
	"github.com/wippyai/ephemeris-bridge/dispatch"
	"github.com/wippyai/ephemeris-bridge/engine"
	"github.com/wippyai/ephemeris-bridge/errors"
	"github.com/wippyai/ephemeris-bridge/metrics"
	"github.com/wippyai/ephemeris-bridge/provision"
)

// Options configures New.
type Options struct {
	// Assets materializes the engine's data files. Required.
	Assets provision.Provisioner
	// DataPattern selects the data files by base name. Defaults to
	// provision.DefaultPattern.
	DataPattern string
	// Loader creates the engine handle. Required.
	Loader engine.Loader
	// Logger defaults to the engine package logger.
	Logger *zap.Logger
	// Metrics is optional; nil disables instrumentation.
	Metrics *metrics.Collectors
	// EagerInit initializes the engine in New instead of on first call.
	EagerInit bool
}

// Bridge is the facade over one engine instance. It is safe for concurrent use.
type Bridge struct {
	engine     *engine.Context
	dispatcher *dispatch.Dispatcher
	dataPath   string
	log        *zap.Logger
}

// New provisions the data files and prepares the engine. A provisioning
// failure is fatal. With EagerInit an initialization failure is returned
// too; otherwise it surfaces on the first call.
func New(ctx context.Context, opts Options) (*Bridge, error) {
	if opts.Assets == nil {
		return nil, errors.ProvisioningFailed("no asset provisioner configured", nil)
	}
	if opts.Loader == nil {
		return nil, errors.InitializationFailed("no engine loader configured", nil)
	}
	log := opts.Logger
	if log == nil {
		log = engine.Logger()
	}
	pattern := opts.DataPattern
	if pattern == "" {
		pattern = provision.DefaultPattern
	}

	dataPath, err := opts.Assets.Ensure(pattern)
	if err != nil {
		if _, ok := errors.As(err); ok {
			return nil, err
		}
		return nil, errors.ProvisioningFailed("ensure data files", err)
	}
	log.Debug("data files ready", zap.String("path", dataPath), zap.String("pattern", pattern))

	ctxOpts := []engine.Option{
		engine.WithLogger(log),
		engine.WithDataPath(dataPath),
	}
	if opts.Metrics != nil {
		ctxOpts = append(ctxOpts, engine.WithObserver(opts.Metrics))
	}
	ec := engine.NewContext(opts.Loader, ctxOpts...)

	b := &Bridge{
		engine:     ec,
		dispatcher: dispatch.New(ec, dispatch.WithLogger(log), dispatch.WithMetrics(opts.Metrics)),
		dataPath:   dataPath,
		log:        log,
	}
	if opts.EagerInit {
		if err := ec.Initialize(ctx, ""); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Submit schedules a request and returns its task without waiting.
func (b *Bridge) Submit(ctx context.Context, req ephemeris.Request) *dispatch.Task {
	return b.dispatcher.Submit(ctx, req)
}

// Call runs a request and waits for its result.
func (b *Bridge) Call(ctx context.Context, req ephemeris.Request) (ephemeris.Result, error) {
	return b.dispatcher.Call(ctx, req)
}

// Initialize initializes the engine against the provisioned data files. It
// is a no-op on a ready engine and retries after a failure or Teardown.
func (b *Bridge) Initialize(ctx context.Context) error {
	return b.engine.Initialize(ctx, b.dataPath)
}

// Teardown releases the engine. Calls fail with a not-initialized error until
// Initialize is called again.
func (b *Bridge) Teardown(ctx context.Context) error {
	return b.engine.Teardown(ctx)
}

// Close stops accepting calls, waits for in-flight ones within ctx and
// releases the engine.
func (b *Bridge) Close(ctx context.Context) error {
	derr := b.dispatcher.Close(ctx)
	terr := b.engine.Teardown(ctx)
	return stderrors.Join(derr, terr)
}

// Settings returns the engine configuration applied by set_topo and set_sid_mode.
func (b *Bridge) Settings() engine.Settings {
	return b.engine.Settings()
}

// Ready reports whether the engine is initialized.
func (b *Bridge) Ready() bool {
	return b.engine.Ready()
}

// State returns the engine lifecycle state.
func (b *Bridge) State() engine.State {
	return b.engine.State()
}

// DataPath returns the directory holding the engine's data files.
func (b *Bridge) DataPath() string {
	return b.dataPath
}
