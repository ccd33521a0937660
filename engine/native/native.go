//go:build cgo && swisseph

package native

/*
#cgo LDFLAGS: -lswe -lm
#include <stdlib.h>
#include <string.h>
#include "swephexp.h"
*/
import "C"

import (
	"context"
	"fmt"
	"sync/atomic"
	"unsafe"

	ephemeris "github.com/wippyai/ephemeris-bridge"
	"github.com/wippyai/ephemeris-bridge/engine"
)

func init() {
	engine.RegisterBackend(BackendName, func(engine.LoaderConfig) (engine.Loader, error) {
		return Loader{}, nil
	})
}

// live is set while a handle owns the library's globals.
var live atomic.Bool

// Loader loads the linked C library.
type Loader struct{}

// Load points the library at dataPath. It fails while another handle is live.
func (Loader) Load(_ context.Context, dataPath string) (engine.Handle, error) {
	if !live.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("native engine already loaded in this process")
	}
	path := C.CString(dataPath)
	defer C.free(unsafe.Pointer(path))
	C.swe_set_ephe_path(path)
	return &handle{}, nil
}

type handle struct {
	closed bool
}

func (h *handle) Close(context.Context) error {
	if h.closed {
		return nil
	}
	h.closed = true
	C.swe_close()
	live.Store(false)
	return nil
}

// errBuf is the engine's error text buffer.
type errBuf [C.AS_MAXCH]C.char

func (e *errBuf) ptr() *C.char    { return &e[0] }
func (e *errBuf) String() string { return C.GoString(&e[0]) }

func (h *handle) Invoke(_ context.Context, call *engine.Call) (int32, error) {
	if h.closed {
		return 0, fmt.Errorf("native engine closed")
	}
	a := args(call.Args)
	out := call.Out
	var serr errBuf

	switch call.Op() {
	case ephemeris.OpJulday:
		out[0] = float64(C.swe_julday(a.n(0), a.n(1), a.n(2), a.f(3), a.n(4)))

	case ephemeris.OpRevjul:
		var y, m, d C.int
		var hour C.double
		C.swe_revjul(a.f(0), a.n(1), &y, &m, &d, &hour)
		out[0], out[1], out[2], out[3] = float64(y), float64(m), float64(d), float64(hour)

	case ephemeris.OpUTCTimeZone:
		var y, m, d, hr, mi C.int32
		var sec C.double
		C.swe_utc_time_zone(a.i(0), a.i(1), a.i(2), a.i(3), a.i(4), a.f(5), a.f(6), &y, &m, &d, &hr, &mi, &sec)
		writeUTC(out, y, m, d, hr, mi, sec)

	case ephemeris.OpUTCToJD:
		var dret [2]C.double
		status := C.swe_utc_to_jd(a.i(0), a.i(1), a.i(2), a.i(3), a.i(4), a.f(5), a.i(6), &dret[0], serr.ptr())
		copyOut(out, dret[:])
		call.Err = serr.String()
		return int32(status), nil

	case ephemeris.OpJDETToUTC, ephemeris.OpJDUT1ToUTC:
		var y, m, d, hr, mi C.int32
		var sec C.double
		if call.Op() == ephemeris.OpJDETToUTC {
			C.swe_jdet_to_utc(a.f(0), a.i(1), &y, &m, &d, &hr, &mi, &sec)
		} else {
			C.swe_jdut1_to_utc(a.f(0), a.i(1), &y, &m, &d, &hr, &mi, &sec)
		}
		writeUTC(out, y, m, d, hr, mi, sec)

	case ephemeris.OpDeltaT:
		out[0] = float64(C.swe_deltat(a.f(0)))
	case ephemeris.OpSidTime:
		out[0] = float64(C.swe_sidtime(a.f(0)))
	case ephemeris.OpGetAyanamsaUT:
		out[0] = float64(C.swe_get_ayanamsa_ut(a.f(0)))
	case ephemeris.OpGetAyanamsa:
		out[0] = float64(C.swe_get_ayanamsa(a.f(0)))

	case ephemeris.OpCotrans:
		xpo := [3]C.double{a.f(0), a.f(1), a.f(2)}
		var xpn [3]C.double
		C.swe_cotrans(&xpo[0], &xpn[0], a.f(3))
		copyOut(out, xpn[:])

	case ephemeris.OpSetTopo:
		C.swe_set_topo(a.f(0), a.f(1), a.f(2))
	case ephemeris.OpSetSidMode:
		C.swe_set_sid_mode(a.i(0), a.f(1), a.f(2))

	case ephemeris.OpCalc, ephemeris.OpCalcUT:
		var xx [6]C.double
		var status C.int32
		if call.Op() == ephemeris.OpCalc {
			status = C.swe_calc(a.f(0), a.n(1), a.i(2), &xx[0], serr.ptr())
		} else {
			status = C.swe_calc_ut(a.f(0), a.n(1), a.i(2), &xx[0], serr.ptr())
		}
		copyOut(out, xx[:])
		call.Err = serr.String()
		return int32(status), nil

	case ephemeris.OpHouses, ephemeris.OpHousesARMC:
		var cusps [37]C.double
		var ascmc [10]C.double
		var status C.int
		if call.Op() == ephemeris.OpHouses {
			status = C.swe_houses_ex(a.f(0), a.i(1), a.f(2), a.f(3), a.c(4), &cusps[0], &ascmc[0])
		} else {
			status = C.swe_houses_armc(a.f(0), a.f(1), a.f(2), a.c(3), &cusps[0], &ascmc[0])
		}
		copyOut(out, cusps[:])
		if len(out) > len(cusps) {
			copyOut(out[len(cusps):], ascmc[:])
		}
		return int32(status), nil

	case ephemeris.OpHousePos:
		point := a.floats(4, 2)
		xpin := [2]C.double{C.double(point[0]), C.double(point[1])}
		pos := C.swe_house_pos(a.f(0), a.f(1), a.f(2), a.c(3), &xpin[0], serr.ptr())
		out[0], out[1], out[2] = point[0], point[1], float64(pos)
		if call.Err = serr.String(); call.Err != "" {
			return -1, nil
		}

	case ephemeris.OpFixstar, ephemeris.OpFixstarUT:
		var star [C.AS_MAXCH]C.char
		name := C.CString(a.s(0))
		defer C.free(unsafe.Pointer(name))
		C.strncpy(&star[0], name, C.AS_MAXCH-1)

		var xx [6]C.double
		var status C.int32
		if call.Op() == ephemeris.OpFixstar {
			status = C.swe_fixstar(&star[0], a.f(1), a.i(2), &xx[0], serr.ptr())
		} else {
			status = C.swe_fixstar_ut(&star[0], a.f(1), a.i(2), &xx[0], serr.ptr())
		}
		copyOut(out, xx[:])
		call.Text = C.GoString(&star[0])
		call.Err = serr.String()
		return int32(status), nil

	case ephemeris.OpHeliacalUT, ephemeris.OpHeliacalPhenoUT, ephemeris.OpVisLimitMag:
		geo := cDoubles(a.floats(1, 3))
		atm := cDoubles(a.floats(2, 4))
		obs := cDoubles(a.floats(3, 6))
		object := C.CString(a.s(4))
		defer C.free(unsafe.Pointer(object))

		var dret [50]C.double
		var status C.int32
		switch call.Op() {
		case ephemeris.OpHeliacalUT:
			status = C.swe_heliacal_ut(a.f(0), &geo[0], &atm[0], &obs[0], object, a.i(5), a.i(6), &dret[0], serr.ptr())
		case ephemeris.OpHeliacalPhenoUT:
			status = C.swe_heliacal_pheno_ut(a.f(0), &geo[0], &atm[0], &obs[0], object, a.i(5), a.i(6), &dret[0], serr.ptr())
		default:
			status = C.swe_vis_limit_mag(a.f(0), &geo[0], &atm[0], &obs[0], object, a.i(5), &dret[0], serr.ptr())
		}
		copyOut(out, dret[:])
		call.Err = serr.String()
		return int32(status), nil

	case ephemeris.OpNodApsUT:
		var nodes [4][6]C.double
		status := C.swe_nod_aps_ut(a.f(0), a.i(1), a.i(2), a.i(3), &nodes[0][0], &nodes[1][0], &nodes[2][0], &nodes[3][0], serr.ptr())
		for n := range nodes {
			if 6*n < len(out) {
				copyOut(out[6*n:], nodes[n][:])
			}
		}
		call.Err = serr.String()
		return int32(status), nil

	case ephemeris.OpGetPlanetName:
		var name [C.AS_MAXCH]C.char
		C.swe_get_planet_name(a.n(0), &name[0])
		call.Text = C.GoString(&name[0])

	default:
		return 0, fmt.Errorf("%s: no native entry point", call.Op())
	}
	return 0, nil
}

func writeUTC(out []float64, y, m, d, hr, mi C.int32, sec C.double) {
	out[0], out[1], out[2] = float64(y), float64(m), float64(d)
	out[3], out[4], out[5] = float64(hr), float64(mi), float64(sec)
}

func copyOut(out []float64, src []C.double) {
	for n := 0; n < len(src) && n < len(out); n++ {
		out[n] = float64(src[n])
	}
}

func cDoubles(xs []float64) []C.double {
	out := make([]C.double, len(xs))
	for n, x := range xs {
		out[n] = C.double(x)
	}
	return out
}

// args reads bound values. Binding has already checked kinds and arity.
type args []ephemeris.Value

func (a args) n(k int) C.int {
	v, _ := a[k].AsInt()
	return C.int(v)
}

func (a args) i(n int) C.int32 {
	v, _ := a[n].AsInt()
	return C.int32(v)
}

func (a args) f(n int) C.double {
	v, _ := a[n].AsFloat()
	return C.double(v)
}

func (a args) s(n int) string {
	v, _ := a[n].AsString()
	return v
}

// c returns a single-character code such as a house system.
func (a args) c(n int) C.int {
	s := a.s(n)
	if s == "" {
		return 0
	}
	return C.int(s[0])
}

// floats returns array n padded to size.
func (a args) floats(n, size int) []float64 {
	v, _ := a[n].AsFloats()
	out := make([]float64, size)
	copy(out, v)
	return out
}
