// Package enginetest provides an in-process engine for tests.
//
// The engine answers every operation in the catalog with deterministic
// values. Calendar conversions are exact; positions, houses and heliacal
// results are synthetic but respect the engine's domain rules (longitudes in
// [0, 360), non-negative distances, failures for illegal bodies, unknown
// stars and unsupported house systems). It keeps the same process-global
// configuration the real engine does and detects overlapping calls, which
// the engine Context must never allow.
package enginetest

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	ephemeris "github.com/wippyai/ephemeris-bridge"
	"github.com/wippyai/ephemeris-bridge/engine"
)

// BackendName is the registry name used by Register.
const BackendName = "fake"

// Register makes the fake engine available as the "fake" backend.
func Register() {
	engine.RegisterBackend(BackendName, func(engine.LoaderConfig) (engine.Loader, error) {
		return New(), nil
	})
}

type topocentric struct {
	lon, lat, alt float64
	set           bool
}

type sidereal struct {
	mode       int
	t0, ayanT0 float64
	set        bool
}

// Loader creates fake engine handles and counts how it is used.
type Loader struct {
	// Delay is added to every call so contention is observable.
	Delay time.Duration
	// FaultOn makes the named operation fail without a status, the way a
	// trapped guest does.
	FaultOn ephemeris.Op

	mu       sync.Mutex
	failures int
	loadErr  error

	loads    atomic.Int32
	closes   atomic.Int32
	calls    atomic.Int32
	inflight atomic.Int32
	overlaps atomic.Int32
}

// New returns a loader whose loads succeed.
func New() *Loader {
	return &Loader{}
}

// FailLoads makes the next n loads fail with err.
func (l *Loader) FailLoads(n int, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failures = n
	l.loadErr = err
}

// Load implements engine.Loader.
func (l *Loader) Load(_ context.Context, dataPath string) (engine.Handle, error) {
	l.loads.Add(1)
	l.mu.Lock()
	if l.failures > 0 {
		l.failures--
		err := l.loadErr
		l.mu.Unlock()
		if err == nil {
			err = fmt.Errorf("cannot open ephemeris files in %s", dataPath)
		}
		return nil, err
	}
	l.mu.Unlock()
	return &Handle{loader: l}, nil
}

// Loads returns how many loads were attempted.
func (l *Loader) Loads() int { return int(l.loads.Load()) }

// Closes returns how many handles were closed.
func (l *Loader) Closes() int { return int(l.closes.Load()) }

// Calls returns how many operations ran.
func (l *Loader) Calls() int { return int(l.calls.Load()) }

// Overlaps returns how many calls started while another was running.
func (l *Loader) Overlaps() int { return int(l.overlaps.Load()) }

// Handle is one live fake engine. Its configuration is global to the
// handle, like the real engine's.
type Handle struct {
	loader *Loader
	topo   topocentric
	sid    sidereal
	closed bool
}

// Close implements engine.Handle.
func (h *Handle) Close(context.Context) error {
	if h.closed {
		return fmt.Errorf("engine closed twice")
	}
	h.closed = true
	h.loader.closes.Add(1)
	return nil
}

// Invoke implements engine.Handle.
func (h *Handle) Invoke(_ context.Context, call *engine.Call) (int32, error) {
	l := h.loader
	if l.inflight.Add(1) > 1 {
		l.overlaps.Add(1)
	}
	defer l.inflight.Add(-1)
	l.calls.Add(1)
	if l.Delay > 0 {
		time.Sleep(l.Delay)
	}

	if h.closed {
		return 0, fmt.Errorf("call on closed engine")
	}
	if l.FaultOn != "" && call.Op() == l.FaultOn {
		return 0, fmt.Errorf("unreachable executed in %s", call.Op())
	}

	a := args(call.Args)
	out := call.Out
	switch call.Op() {
	case ephemeris.OpJulday:
		out[0] = julday(a.intAt(0), a.intAt(1), a.intAt(2), a.floatAt(3), a.intAt(4) == ephemeris.GregorianCalendar)

	case ephemeris.OpRevjul:
		y, m, d, hour := revjul(a.floatAt(0), a.intAt(1) == ephemeris.GregorianCalendar)
		out[0], out[1], out[2], out[3] = float64(y), float64(m), float64(d), hour

	case ephemeris.OpUTCTimeZone:
		hour := float64(a.intAt(3)) + float64(a.intAt(4))/60 + a.floatAt(5)/3600
		jd := julday(a.intAt(0), a.intAt(1), a.intAt(2), hour, true) - a.floatAt(6)/24
		writeDate(out, jd, true)

	case ephemeris.OpUTCToJD:
		if !validDate(a.intAt(0), a.intAt(1), a.intAt(2), a.intAt(3), a.intAt(4), a.floatAt(5)) {
			call.Err = fmt.Sprintf("invalid date: year = %d, month = %d, day = %d", a.intAt(0), a.intAt(1), a.intAt(2))
			return -1, nil
		}
		hour := float64(a.intAt(3)) + float64(a.intAt(4))/60 + a.floatAt(5)/3600
		ut := julday(a.intAt(0), a.intAt(1), a.intAt(2), hour, a.intAt(6) == ephemeris.GregorianCalendar)
		out[0], out[1] = ut+deltaTDays, ut

	case ephemeris.OpJDETToUTC:
		writeDate(out, a.floatAt(0)-deltaTDays, a.intAt(1) == ephemeris.GregorianCalendar)

	case ephemeris.OpJDUT1ToUTC:
		writeDate(out, a.floatAt(0), a.intAt(1) == ephemeris.GregorianCalendar)

	case ephemeris.OpDeltaT:
		out[0] = deltaTDays

	case ephemeris.OpSidTime:
		out[0] = sidtime(a.floatAt(0))

	case ephemeris.OpGetAyanamsaUT:
		out[0] = ayanamsa(h.sid, a.floatAt(0)+deltaTDays)

	case ephemeris.OpGetAyanamsa:
		out[0] = ayanamsa(h.sid, a.floatAt(0))

	case ephemeris.OpCotrans:
		out[0], out[1], out[2] = cotrans(a.floatAt(0), a.floatAt(1), a.floatAt(2), a.floatAt(3))

	case ephemeris.OpSetTopo:
		h.topo = topocentric{lon: a.floatAt(0), lat: a.floatAt(1), alt: a.floatAt(2), set: true}

	case ephemeris.OpSetSidMode:
		h.sid = sidereal{mode: a.intAt(0), t0: a.floatAt(1), ayanT0: a.floatAt(2), set: true}

	case ephemeris.OpCalc, ephemeris.OpCalcUT:
		jd := a.floatAt(0)
		if call.Op() == ephemeris.OpCalcUT {
			jd += deltaTDays
		}
		return h.position(call, jd, a.intAt(1), int32(a.intAt(2)), out)

	case ephemeris.OpHouses:
		armc := norm360(sidtime(a.floatAt(0))*15 + a.floatAt(3))
		return h.houses(armc, a.floatAt(2), a.strAt(4), out)

	case ephemeris.OpHousesARMC:
		return h.houses(a.floatAt(0), a.floatAt(1), a.strAt(3), out)

	case ephemeris.OpHousePos:
		if !houseSystemValid(a.strAt(3)) {
			call.Err = fmt.Sprintf("unknown house system %q", a.strAt(3))
			return -1, nil
		}
		point := a.floatsAt(4)
		out[0], out[1] = point[0], point[1]
		out[2] = 1 + norm360(point[0]-a.floatAt(0)+90)/30

	case ephemeris.OpFixstar, ephemeris.OpFixstarUT:
		s, ok := findStar(a.strAt(0))
		if !ok {
			call.Text = a.strAt(0)
			call.Err = fmt.Sprintf("star %s not found", a.strAt(0))
			return -1, nil
		}
		call.Text = s.name
		out[0], out[1], out[2] = s.lon, s.lat, s.dist
		return int32(a.intAt(2)), nil

	case ephemeris.OpHeliacalUT:
		if a.strAt(4) == "" {
			call.Err = "heliacal object name is empty"
			return -1, nil
		}
		start := a.floatAt(0) + 10 + float64(a.intAt(5))
		out[0], out[1], out[2] = start, start+0.01, start+0.02

	case ephemeris.OpHeliacalPhenoUT:
		if a.strAt(4) == "" {
			call.Err = "heliacal object name is empty"
			return -1, nil
		}
		for n := 0; n < 31; n++ {
			out[n] = float64(n) * 0.5
		}

	case ephemeris.OpVisLimitMag:
		if a.strAt(4) == "" {
			call.Err = "heliacal object name is empty"
			return -1, nil
		}
		geo := a.floatsAt(1)
		out[0] = 6.5 - math.Abs(geo[1])/90
		for n := 1; n < 7; n++ {
			out[n] = float64(n) * 10
		}

	case ephemeris.OpNodApsUT:
		body := a.intAt(1)
		if !bodyValid(body) || body == ephemeris.Sun || body == ephemeris.Earth {
			call.Err = fmt.Sprintf("nodes/apsides for planet %d are not implemented", body)
			return -1, nil
		}
		lon := longitude(body, a.floatAt(0)+deltaTDays)
		for seg, off := range []float64{0, 180, 90, 270} {
			base := seg * 6
			out[base] = norm360(lon + off)
			out[base+2] = 1 + float64(seg)*0.1
		}
		return int32(a.intAt(2)), nil

	case ephemeris.OpGetPlanetName:
		call.Text = planetName(a.intAt(0))

	default:
		call.Err = fmt.Sprintf("operation %s not supported", call.Op())
		return -1, nil
	}
	return 0, nil
}

func (h *Handle) position(call *engine.Call, jd float64, body int, flags int32, out []float64) (int32, error) {
	if !bodyValid(body) {
		call.Err = fmt.Sprintf("illegal planet number %d.", body)
		return -1, nil
	}
	lon := longitude(body, jd)
	if flags&ephemeris.FlagTopocentric != 0 && h.topo.set {
		lon = norm360(lon + h.topo.lat*1e-4)
	}
	if flags&ephemeris.FlagSidereal != 0 {
		lon = norm360(lon - ayanamsa(h.sid, jd))
	}
	out[0] = lon
	out[1] = 0
	out[2] = 1 + float64(body%ephemeris.NumPlanets)*0.1
	if flags&ephemeris.FlagSpeed != 0 {
		out[3] = sunDailyRate / (1 + float64(body)/4)
	}
	return flags, nil
}

// houses fills equal houses from the ascendant. The Gauquelin system has
// 36 sectors.
func (h *Handle) houses(armc, lat float64, hsys string, out []float64) (int32, error) {
	if !houseSystemValid(hsys) {
		return -1, nil
	}
	asc := norm360(armc + 90 + lat/10)
	sectors, width := 12, 30.0
	if hsys == string(ephemeris.HouseGauquelin) {
		sectors, width = 36, 10.0
	}
	for n := 1; n <= sectors; n++ {
		out[n] = norm360(asc + float64(n-1)*width)
	}
	angles := out[37:]
	angles[ephemeris.AngleAsc] = asc
	angles[ephemeris.AngleMC] = norm360(armc)
	angles[ephemeris.AngleARMC] = norm360(armc)
	angles[ephemeris.AngleVertex] = norm360(asc + 180)
	angles[ephemeris.AngleEquatorialAsc] = norm360(armc + 90)
	angles[ephemeris.AngleCoAscKoch] = norm360(asc + 1)
	angles[ephemeris.AngleCoAscMunkasey] = norm360(asc + 2)
	angles[ephemeris.AnglePolarAsc] = norm360(asc + 3)
	return 0, nil
}

func writeDate(out []float64, jd float64, gregorian bool) {
	y, m, d, hour := revjul(jd, gregorian)
	hh, mm, ss := splitHour(hour)
	out[0], out[1], out[2] = float64(y), float64(m), float64(d)
	out[3], out[4], out[5] = float64(hh), float64(mm), ss
}

// args reads bound arguments by position. Missing or mistyped arguments
// read as zero values.
type args []ephemeris.Value

func (a args) intAt(n int) int {
	if n >= len(a) {
		return 0
	}
	v, _ := a[n].AsInt()
	return int(v)
}

func (a args) floatAt(n int) float64 {
	if n >= len(a) {
		return 0
	}
	v, _ := a[n].AsFloat()
	return v
}

func (a args) strAt(n int) string {
	if n >= len(a) {
		return ""
	}
	v, _ := a[n].AsString()
	return v
}

func (a args) floatsAt(n int) []float64 {
	var v []float64
	if n < len(a) {
		v, _ = a[n].AsFloats()
	}
	for len(v) < 6 {
		v = append(v, 0)
	}
	return v
}
