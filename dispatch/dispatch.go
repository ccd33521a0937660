// Package dispatch turns requests into guarded engine calls and delivers
// their outcomes asynchronously.
//
// A request is validated against the operation catalog before the engine is
// touched. Valid requests run on their own goroutine: the engine is
// initialized lazily, the call runs inside the engine guard, a negative
// status becomes an operation error and anything else is decoded into the
// operation's result record.
package dispatch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	ephemeris "github.com/wippyai/ephemeris-bridge"
	"github.com/wippyai/ephemeris-bridge/engine"
	"github.com/wippyai/ephemeris-bridge/errors"
	"github.com/wippyai/ephemeris-bridge/logging"
	"github.com/wippyai/ephemeris-bridge/marshal"
	"github.com/wippyai/ephemeris-bridge/metrics"
	"github.com/wippyai/ephemeris-bridge/schema"
)

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the fallback logger for tasks whose context carries none.
func WithLogger(l *zap.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.log = l
		}
	}
}

// WithMetrics records call outcomes and in-flight tasks.
func WithMetrics(m *metrics.Collectors) Option {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

// Dispatcher submits requests to an engine context.
type Dispatcher struct {
	engine  *engine.Context
	log     *zap.Logger
	metrics *metrics.Collectors

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// New creates a dispatcher over ec.
func New(ec *engine.Context, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		engine: ec,
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Submit schedules req and returns its task immediately. Requests that fail
// validation, and requests submitted after Close, return an already
// completed task.
//
// The task outlives ctx: cancellation only abandons the wait. Values of ctx,
// such as a request-scoped logger, are kept.
func (d *Dispatcher) Submit(ctx context.Context, req ephemeris.Request) *Task {
	t := newTask(req)
	log := logging.FromContext(ctx, d.log).With(
		zap.String("task_id", t.id.String()),
		zap.String("op", string(req.Op())))

	spec, ok := schema.Lookup(req.Op())
	if !ok {
		err := errors.UnknownOperation(string(req.Op()))
		d.finish(t, log, "unknown", nil, err)
		return t
	}
	args, err := spec.Bind(req)
	if err != nil {
		d.finish(t, log, string(spec.Op), nil, err)
		return t
	}

	d.mu.RLock()
	if d.closed {
		d.mu.RUnlock()
		d.finish(t, log, string(spec.Op), nil, errors.NotInitialized(errors.PhaseDispatch, "dispatcher"))
		return t
	}
	d.wg.Add(1)
	d.mu.RUnlock()

	d.metrics.TaskStarted()
	go func() {
		defer d.wg.Done()
		defer d.metrics.TaskFinished()
		res, err := d.invoke(context.WithoutCancel(ctx), spec, args)
		d.finish(t, log, string(spec.Op), res, err)
	}()
	return t
}

// Call submits req and waits for its outcome.
func (d *Dispatcher) Call(ctx context.Context, req ephemeris.Request) (ephemeris.Result, error) {
	return d.Submit(ctx, req).Wait(ctx)
}

func (d *Dispatcher) invoke(ctx context.Context, spec *schema.Spec, args []ephemeris.Value) (ephemeris.Result, error) {
	call := engine.NewCall(spec, args)
	status, err := d.engine.Invoke(ctx, call)
	if err != nil {
		return nil, err
	}
	if status < 0 {
		return nil, errors.OperationFailed(string(spec.Op), status, failureMessage(spec, status, call.Err))
	}
	return marshal.Decode(spec, call.Out, call.Text), nil
}

// failureMessage prefers the engine's own text, then the operation's fixed
// failure message, then a generic one.
func failureMessage(spec *schema.Spec, status int32, text string) string {
	if msg := marshal.CleanText(text); msg != "" {
		return msg
	}
	if spec.FailureMessage != "" {
		return spec.FailureMessage
	}
	return fmt.Sprintf("%s failed with status %d", spec.Op, status)
}

func (d *Dispatcher) finish(t *Task, log *zap.Logger, op string, res ephemeris.Result, err error) {
	elapsed := time.Since(t.submitted)
	d.metrics.ObserveCall(op, outcome(err), elapsed)

	if err != nil {
		switch e, _ := errors.As(err); {
		case e == nil:
			log.Warn("task failed", zap.Error(err))
		case e.Kind == errors.KindOperation && e.Phase == errors.PhaseEngine && e.Cause != nil:
			log.Warn("engine fault", zap.Error(err))
		default:
			log.Debug("task failed", zap.Error(err), zap.String("kind", string(e.Kind)))
		}
	} else {
		log.Debug("task completed", zap.Duration("elapsed", elapsed))
	}
	t.complete(res, err)
}

func outcome(err error) string {
	if err == nil {
		return metrics.OutcomeOK
	}
	switch errors.KindOf(err) {
	case errors.KindInvalidArgument:
		return metrics.OutcomeInvalid
	case errors.KindNotInitialized:
		return metrics.OutcomeNotInitialized
	case errors.KindInitialization:
		return metrics.OutcomeInitFailed
	}
	return metrics.OutcomeOperation
}

// Close stops accepting requests and waits for submitted tasks to finish or
// ctx to end. Later submissions complete with a not-initialized error.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for in-flight tasks: %w", ctx.Err())
	}
}
