package dispatch

import (
	"context"
	"time"

	"github.com/google/uuid"

	ephemeris "github.com/wippyai/ephemeris-bridge"
)

// Task is the pending completion of one submitted request. It completes
// exactly once, with a result or an error.
type Task struct {
	id        uuid.UUID
	req       ephemeris.Request
	submitted time.Time
	done      chan struct{}

	// Written once before done is closed.
	result ephemeris.Result
	err    error
}

func newTask(req ephemeris.Request) *Task {
	return &Task{
		id:        uuid.New(),
		req:       req,
		submitted: time.Now(),
		done:      make(chan struct{}),
	}
}

func (t *Task) complete(res ephemeris.Result, err error) {
	t.result, t.err = res, err
	close(t.done)
}

// ID identifies the task in logs.
func (t *Task) ID() uuid.UUID { return t.id }

// Request returns the submitted request.
func (t *Task) Request() ephemeris.Request { return t.req }

// Submitted returns when the task was created.
func (t *Task) Submitted() time.Time { return t.submitted }

// Done is closed when the task completes.
func (t *Task) Done() <-chan struct{} { return t.done }

// Wait blocks until the task completes or ctx ends. Giving up on a task does
// not stop it: an engine call that has started always runs to completion.
func (t *Task) Wait(ctx context.Context) (ephemeris.Result, error) {
	select {
	case <-t.done:
		return t.result, t.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Poll returns the outcome without blocking. done is false while the task
// is still pending.
func (t *Task) Poll() (res ephemeris.Result, done bool, err error) {
	select {
	case <-t.done:
		return t.result, true, t.err
	default:
		return nil, false, nil
	}
}
