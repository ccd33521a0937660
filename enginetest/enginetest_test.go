package enginetest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ephemeris "github.com/wippyai/ephemeris-bridge"
	"github.com/wippyai/ephemeris-bridge/engine"
	"github.com/wippyai/ephemeris-bridge/schema"
)

func invoke(t *testing.T, h engine.Handle, req ephemeris.Request) (*engine.Call, int32) {
	t.Helper()
	spec, ok := schema.Lookup(req.Op())
	require.True(t, ok)
	args, err := spec.Bind(req)
	require.NoError(t, err)
	call := engine.NewCall(spec, args)
	status, err := h.Invoke(context.Background(), call)
	require.NoError(t, err)
	return call, status
}

func load(t *testing.T) (*Loader, engine.Handle) {
	t.Helper()
	l := New()
	h, err := l.Load(context.Background(), t.TempDir())
	require.NoError(t, err)
	return l, h
}

func TestCalendarRoundTrip(t *testing.T) {
	_, h := load(t)

	call, _ := invoke(t, h, ephemeris.NewRequest(ephemeris.OpJulday,
		ephemeris.Int(2023), ephemeris.Int(1), ephemeris.Int(1), ephemeris.Float(12), ephemeris.Int(ephemeris.GregorianCalendar)))
	assert.Equal(t, 2459946.0, call.Out[0])

	call, _ = invoke(t, h, ephemeris.NewRequest(ephemeris.OpRevjul, ephemeris.Float(2459946.0), ephemeris.Int(ephemeris.GregorianCalendar)))
	assert.Equal(t, []float64{2023, 1, 1, 12}, call.Out)

	call, _ = invoke(t, h, ephemeris.NewRequest(ephemeris.OpJulday,
		ephemeris.Int(2000), ephemeris.Int(1), ephemeris.Int(1), ephemeris.Float(12), ephemeris.Int(ephemeris.GregorianCalendar)))
	assert.Equal(t, 2451545.0, call.Out[0])
}

func TestUTCTimeZone(t *testing.T) {
	_, h := load(t)

	call, status := invoke(t, h, ephemeris.NewRequest(ephemeris.OpUTCTimeZone,
		ephemeris.Int(2023), ephemeris.Int(1), ephemeris.Int(1), ephemeris.Int(1), ephemeris.Int(30), ephemeris.Float(0), ephemeris.Float(2)))
	assert.Zero(t, status)
	assert.Equal(t, []float64{2022, 12, 31, 23, 30}, call.Out[:5])
	assert.InDelta(t, 0, call.Out[5], 1e-3)
}

func TestUTCToJDRejectsInvalidDate(t *testing.T) {
	_, h := load(t)

	call, status := invoke(t, h, ephemeris.NewRequest(ephemeris.OpUTCToJD,
		ephemeris.Int(2023), ephemeris.Int(13), ephemeris.Int(1), ephemeris.Int(0), ephemeris.Int(0), ephemeris.Float(0), ephemeris.Int(1)))
	assert.Equal(t, int32(-1), status)
	assert.Contains(t, call.Err, "invalid date")
}

func TestPositions(t *testing.T) {
	_, h := load(t)

	for body := ephemeris.Sun; body < ephemeris.NumPlanets; body++ {
		call, status := invoke(t, h, ephemeris.NewRequest(ephemeris.OpCalcUT, ephemeris.Float(2459946.0), ephemeris.Int(body)).WithFlags(ephemeris.FlagSpeed))
		require.Equal(t, ephemeris.FlagSpeed, status)
		assert.GreaterOrEqual(t, call.Out[0], 0.0)
		assert.Less(t, call.Out[0], 360.0)
		assert.GreaterOrEqual(t, call.Out[2], 0.0)
	}

	call, status := invoke(t, h, ephemeris.NewRequest(ephemeris.OpCalc, ephemeris.Float(2459946.0), ephemeris.Int(-5)))
	assert.Equal(t, int32(-1), status)
	assert.Equal(t, "illegal planet number -5.", call.Err)
}

func TestTopocentricAndSiderealState(t *testing.T) {
	_, h := load(t)
	req := ephemeris.NewRequest(ephemeris.OpCalcUT, ephemeris.Float(2459946.0), ephemeris.Int(ephemeris.Moon))

	geo, _ := invoke(t, h, req.WithFlags(ephemeris.FlagTopocentric))
	invoke(t, h, ephemeris.NewRequest(ephemeris.OpSetTopo, ephemeris.Float(13.4), ephemeris.Float(52.5), ephemeris.Float(34)))
	topo, _ := invoke(t, h, req.WithFlags(ephemeris.FlagTopocentric))
	assert.NotEqual(t, geo.Out[0], topo.Out[0])

	fagan, _ := invoke(t, h, ephemeris.NewRequest(ephemeris.OpGetAyanamsaUT, ephemeris.Float(2459946.0)))
	invoke(t, h, ephemeris.NewRequest(ephemeris.OpSetSidMode, ephemeris.Int(ephemeris.SidLahiri), ephemeris.Float(0), ephemeris.Float(0)))
	lahiri, _ := invoke(t, h, ephemeris.NewRequest(ephemeris.OpGetAyanamsaUT, ephemeris.Float(2459946.0)))
	assert.NotEqual(t, fagan.Out[0], lahiri.Out[0])
}

func TestHouses(t *testing.T) {
	_, h := load(t)

	call, status := invoke(t, h, ephemeris.NewRequest(ephemeris.OpHousesARMC,
		ephemeris.Float(100), ephemeris.Float(0), ephemeris.Float(23.44), ephemeris.Char(ephemeris.HouseGauquelin)))
	require.Zero(t, status)
	assert.NotZero(t, call.Out[36], "Gauquelin fills 36 sectors")
	assert.Zero(t, call.Out[0])

	_, status = invoke(t, h, ephemeris.NewRequest(ephemeris.OpHouses,
		ephemeris.Float(2459946.0), ephemeris.Float(51.5), ephemeris.Float(0), ephemeris.Char('Z')))
	assert.Equal(t, int32(-1), status)
}

func TestFixedStars(t *testing.T) {
	_, h := load(t)

	call, status := invoke(t, h, ephemeris.NewRequest(ephemeris.OpFixstarUT, ephemeris.String("sirius"), ephemeris.Float(2459946.0)))
	assert.Zero(t, status)
	assert.Equal(t, "Sirius,alCMa", call.Text)

	call, _ = invoke(t, h, ephemeris.NewRequest(ephemeris.OpFixstar, ephemeris.String(",alTau"), ephemeris.Float(2459946.0)))
	assert.Equal(t, "Aldebaran,alTau", call.Text)

	call, status = invoke(t, h, ephemeris.NewRequest(ephemeris.OpFixstar, ephemeris.String("Nowhere"), ephemeris.Float(2459946.0)))
	assert.Equal(t, int32(-1), status)
	assert.Equal(t, "star Nowhere not found", call.Err)
}

func TestLoaderFailuresAndFaults(t *testing.T) {
	l := New()
	l.FailLoads(1, errors.New("boom"))

	_, err := l.Load(context.Background(), "/data")
	assert.EqualError(t, err, "boom")

	h, err := l.Load(context.Background(), "/data")
	require.NoError(t, err)
	assert.Equal(t, 2, l.Loads())

	l.FaultOn = ephemeris.OpDeltaT
	spec, _ := schema.Lookup(ephemeris.OpDeltaT)
	call := engine.NewCall(spec, []ephemeris.Value{ephemeris.Float(2459946.0)})
	_, err = h.Invoke(context.Background(), call)
	assert.Error(t, err)

	require.NoError(t, h.Close(context.Background()))
	assert.Error(t, h.Close(context.Background()))
	assert.Equal(t, 1, l.Closes())
}

func TestRegister(t *testing.T) {
	Register()
	loader, err := engine.NewLoader(BackendName, engine.LoaderConfig{})
	require.NoError(t, err)
	assert.IsType(t, &Loader{}, loader)
}
