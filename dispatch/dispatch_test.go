package dispatch

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ephemeris "github.com/wippyai/ephemeris-bridge"
	"github.com/wippyai/ephemeris-bridge/engine"
	"github.com/wippyai/ephemeris-bridge/enginetest"
	"github.com/wippyai/ephemeris-bridge/errors"
	"github.com/wippyai/ephemeris-bridge/metrics"
)

func newDispatcher(t *testing.T, l engine.Loader, opts ...Option) *Dispatcher {
	t.Helper()
	ec := engine.NewContext(l, engine.WithDataPath(t.TempDir()))
	d := New(ec, opts...)
	t.Cleanup(func() {
		_ = d.Close(context.Background())
		_ = ec.Teardown(context.Background())
	})
	return d
}

func julday(year int) ephemeris.Request {
	return ephemeris.NewRequest(ephemeris.OpJulday,
		ephemeris.Int(year), ephemeris.Int(1), ephemeris.Int(1), ephemeris.Float(12), ephemeris.Int(ephemeris.GregorianCalendar))
}

// statusLoader answers every call with a fixed status and no error text.
type statusLoader struct{ status int32 }

func (l statusLoader) Load(context.Context, string) (engine.Handle, error) {
	return statusHandle(l), nil
}

type statusHandle struct{ status int32 }

func (h statusHandle) Invoke(context.Context, *engine.Call) (int32, error) { return h.status, nil }
func (h statusHandle) Close(context.Context) error                         { return nil }

func TestCall(t *testing.T) {
	d := newDispatcher(t, enginetest.New())

	res, err := d.Call(context.Background(), julday(2023))
	require.NoError(t, err)
	assert.Equal(t, ephemeris.Scalar{Value: 2459946}, res)

	res, err = d.Call(context.Background(), ephemeris.NewRequest(ephemeris.OpRevjul, ephemeris.Float(2459946), ephemeris.Int(ephemeris.GregorianCalendar)))
	require.NoError(t, err)
	assert.Equal(t, ephemeris.Date{Year: 2023, Month: 1, Day: 1, Hour: 12}, res)

	res, err = d.Call(context.Background(), ephemeris.NewRequest(ephemeris.OpGetPlanetName, ephemeris.Int(ephemeris.Mars)))
	require.NoError(t, err)
	assert.Equal(t, ephemeris.Name{Name: "Mars"}, res)

	res, err = d.Call(context.Background(), ephemeris.NewRequest(ephemeris.OpSetTopo, ephemeris.Float(13.4), ephemeris.Float(52.5), ephemeris.Float(34)))
	require.NoError(t, err)
	assert.Equal(t, ephemeris.Empty{}, res)
}

func TestInvalidRequestsNeverReachTheEngine(t *testing.T) {
	l := enginetest.New()
	d := newDispatcher(t, l)

	tests := []struct {
		name string
		req  ephemeris.Request
	}{
		{"unknown operation", ephemeris.NewRequest("swe_nope")},
		{"too few params", ephemeris.NewRequest(ephemeris.OpJulday, ephemeris.Int(2023))},
		{"wrong type", ephemeris.NewRequest(ephemeris.OpCalcUT, ephemeris.String("soon"), ephemeris.Int(ephemeris.Sun))},
		{"flags on an operation without flags", julday(2023).WithFlags(ephemeris.FlagSpeed)},
		{"house system too long", ephemeris.NewRequest(ephemeris.OpHousesARMC,
			ephemeris.Float(100), ephemeris.Float(51), ephemeris.Float(23.44), ephemeris.String("PP"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := d.Submit(context.Background(), tt.req)
			res, done, err := task.Poll()
			require.True(t, done, "validation failures complete immediately")
			assert.Nil(t, res)
			assert.ErrorIs(t, err, errors.ErrInvalidArgument)
		})
	}

	assert.Zero(t, l.Loads(), "the engine is not initialized for invalid requests")
	assert.Zero(t, l.Calls())
}

func TestOperationFailures(t *testing.T) {
	d := newDispatcher(t, enginetest.New())
	ctx := context.Background()

	t.Run("engine text is kept verbatim", func(t *testing.T) {
		_, err := d.Call(ctx, ephemeris.NewRequest(ephemeris.OpFixstarUT, ephemeris.String("Nowhere"), ephemeris.Float(2459946)))
		require.ErrorIs(t, err, errors.ErrOperation)
		e, ok := errors.As(err)
		require.True(t, ok)
		assert.Equal(t, int32(-1), e.Code)
		assert.Equal(t, "star Nowhere not found", e.Message())
	})

	t.Run("houses without text", func(t *testing.T) {
		_, err := d.Call(ctx, ephemeris.NewRequest(ephemeris.OpHouses,
			ephemeris.Float(2459946), ephemeris.Float(51.5), ephemeris.Float(0), ephemeris.Char('Z')))
		e, ok := errors.As(err)
		require.True(t, ok)
		assert.Equal(t, errors.KindOperation, e.Kind)
		assert.Equal(t, "Can't calculate houses.", e.Message())
	})

	t.Run("illegal body", func(t *testing.T) {
		_, err := d.Call(ctx, ephemeris.NewRequest(ephemeris.OpCalcUT, ephemeris.Float(2459946), ephemeris.Int(-7)))
		e, ok := errors.As(err)
		require.True(t, ok)
		assert.Equal(t, "illegal planet number -7.", e.Message())
	})
}

func TestGenericFailureMessage(t *testing.T) {
	d := newDispatcher(t, statusLoader{status: -3})

	_, err := d.Call(context.Background(), ephemeris.NewRequest(ephemeris.OpDeltaT, ephemeris.Float(2459946)))
	e, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, int32(-3), e.Code)
	assert.Equal(t, "deltat failed with status -3", e.Message())
}

func TestFaultBecomesOperationError(t *testing.T) {
	l := enginetest.New()
	l.FaultOn = ephemeris.OpSidTime
	d := newDispatcher(t, l)

	_, err := d.Call(context.Background(), ephemeris.NewRequest(ephemeris.OpSidTime, ephemeris.Float(2459946)))
	require.ErrorIs(t, err, errors.ErrOperation)
	e, _ := errors.As(err)
	assert.Equal(t, int32(-1), e.Code)
	assert.Contains(t, e.Message(), "unreachable")

	// The engine survives a faulting call.
	_, err = d.Call(context.Background(), julday(2023))
	assert.NoError(t, err)
}

func TestInitializationFailureIsSharedAndSticky(t *testing.T) {
	l := enginetest.New()
	l.FailLoads(1, stderrors.New("no ephemeris files"))
	l.Delay = time.Millisecond
	d := newDispatcher(t, l)

	tasks := make([]*Task, 20)
	for i := range tasks {
		tasks[i] = d.Submit(context.Background(), julday(2000+i))
	}
	for _, task := range tasks {
		_, err := task.Wait(context.Background())
		assert.ErrorIs(t, err, errors.ErrInitialization)
	}
	assert.Equal(t, 1, l.Loads())
	assert.Zero(t, l.Calls())
}

func TestConcurrentTasksNeverOverlap(t *testing.T) {
	l := enginetest.New()
	d := newDispatcher(t, l)

	const n = 200
	results := make([]ephemeris.Result, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := d.Call(context.Background(), julday(1900+i))
			assert.NoError(t, err)
			results[i] = res
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, l.Loads())
	assert.Equal(t, n, l.Calls())
	assert.Zero(t, l.Overlaps())
	for i, res := range results {
		want := ephemeris.Scalar{Value: 2451545 + float64(daysSince2000(1900+i))}
		assert.Equal(t, want, res, "year %d", 1900+i)
	}
}

// daysSince2000 counts days from 2000-01-01 to year-01-01.
func daysSince2000(year int) int {
	days := 0
	leap := func(y int) bool { return y%4 == 0 && (y%100 != 0 || y%400 == 0) }
	for y := 2000; y < year; y++ {
		days += 365
		if leap(y) {
			days++
		}
	}
	for y := year; y < 2000; y++ {
		days -= 365
		if leap(y) {
			days--
		}
	}
	return days
}

func TestConfigurationIsVisibleToLaterCalls(t *testing.T) {
	d := newDispatcher(t, enginetest.New())
	ctx := context.Background()
	calc := ephemeris.NewRequest(ephemeris.OpCalcUT, ephemeris.Float(2459946), ephemeris.Int(ephemeris.Moon)).
		WithFlags(ephemeris.FlagTopocentric)

	before, err := d.Call(ctx, calc)
	require.NoError(t, err)
	_, err = d.Call(ctx, ephemeris.NewRequest(ephemeris.OpSetTopo, ephemeris.Float(13.4), ephemeris.Float(52.5), ephemeris.Float(34)))
	require.NoError(t, err)
	after, err := d.Call(ctx, calc)
	require.NoError(t, err)

	assert.NotEqual(t, before.(ephemeris.Position).Longitude, after.(ephemeris.Position).Longitude)
}

func TestWaitCancellationDoesNotStopTheTask(t *testing.T) {
	l := enginetest.New()
	l.Delay = 50 * time.Millisecond
	d := newDispatcher(t, l)

	ctx, cancel := context.WithCancel(context.Background())
	task := d.Submit(ctx, julday(2023))
	cancel()

	_, err := task.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	res, err := task.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ephemeris.Scalar{Value: 2459946}, res)
	assert.Equal(t, 1, l.Calls())
}

func TestCloseWaitsForInFlightTasks(t *testing.T) {
	l := enginetest.New()
	l.Delay = 20 * time.Millisecond
	d := newDispatcher(t, l)

	tasks := []*Task{
		d.Submit(context.Background(), julday(2021)),
		d.Submit(context.Background(), julday(2022)),
	}
	require.NoError(t, d.Close(context.Background()))
	for _, task := range tasks {
		_, done, err := task.Poll()
		assert.True(t, done)
		assert.NoError(t, err)
	}

	_, err := d.Call(context.Background(), julday(2023))
	assert.ErrorIs(t, err, errors.ErrNotInitialized)
}

func TestCloseHonorsContext(t *testing.T) {
	l := enginetest.New()
	l.Delay = 200 * time.Millisecond
	d := newDispatcher(t, l)

	task := d.Submit(context.Background(), julday(2023))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, d.Close(ctx), context.DeadlineExceeded)

	_, err := task.Wait(context.Background())
	assert.NoError(t, err)
}

func TestTaskIdentity(t *testing.T) {
	d := newDispatcher(t, enginetest.New())
	req := julday(2023)

	seen := make(map[uuid.UUID]bool)
	for i := 0; i < 50; i++ {
		task := d.Submit(context.Background(), req)
		assert.False(t, seen[task.ID()])
		seen[task.ID()] = true
		assert.Equal(t, req.Op(), task.Request().Op())
		assert.False(t, task.Submitted().IsZero())
		<-task.Done()
	}
}

func TestMetrics(t *testing.T) {
	m := metrics.New()
	d := newDispatcher(t, enginetest.New(), WithMetrics(m))
	ctx := context.Background()

	_, err := d.Call(ctx, julday(2023))
	require.NoError(t, err)
	_, _ = d.Call(ctx, ephemeris.NewRequest(ephemeris.OpJulday))
	_, _ = d.Call(ctx, ephemeris.NewRequest("swe_nope"))
	_, _ = d.Call(ctx, ephemeris.NewRequest(ephemeris.OpFixstar, ephemeris.String("Nowhere"), ephemeris.Float(2459946)))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CallsTotal.WithLabelValues("julday", metrics.OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CallsTotal.WithLabelValues("julday", metrics.OutcomeInvalid)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CallsTotal.WithLabelValues("unknown", metrics.OutcomeInvalid)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CallsTotal.WithLabelValues("fixstar", metrics.OutcomeOperation)))
	assert.Zero(t, testutil.ToFloat64(m.TasksInflight))
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, metrics.OutcomeOK, outcome(nil))
	assert.Equal(t, metrics.OutcomeInvalid, outcome(errors.InvalidArgument("julday", "year", "bad")))
	assert.Equal(t, metrics.OutcomeNotInitialized, outcome(errors.NotInitialized(errors.PhaseDispatch, "engine")))
	assert.Equal(t, metrics.OutcomeInitFailed, outcome(errors.InitializationFailed("load", nil)))
	assert.Equal(t, metrics.OutcomeOperation, outcome(errors.OperationFailed("calc", -1, "x")))
	assert.Equal(t, metrics.OutcomeOperation, outcome(stderrors.New("plain")))
}
