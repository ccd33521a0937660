package engine

import (
	"encoding/binary"
	"math"
)

// Minimal core-module encoder for test engines. Only the sections the fake
// engines need are supported.

const (
	valI32 byte = 0x7f
	valF64 byte = 0x7c
)

const (
	secType     byte = 1
	secFunction byte = 3
	secMemory   byte = 5
	secGlobal   byte = 6
	secExport   byte = 7
	secCode     byte = 10
)

const (
	exportKindFunc   byte = 0x00
	exportKindMemory byte = 0x02
)

// Opcodes used by test bodies.
const (
	opEnd       byte = 0x0b
	opLocalGet  byte = 0x20
	opGlobalGet byte = 0x23
	opGlobalSet byte = 0x24
	opF64Load   byte = 0x2b
	opI32Store  byte = 0x36
	opF64Store  byte = 0x39
	opI32Const  byte = 0x41
	opF64Const  byte = 0x44
	opI32Add    byte = 0x6a
	opI32And    byte = 0x71
	opF64Add    byte = 0xa0
)

type testFunc struct {
	name    string
	params  []byte
	results []byte
	body    []byte
}

type testModule struct {
	pages uint32
	heap  int32
	funcs []testFunc
}

func (m *testModule) add(name string, params, results []byte, body ...[]byte) {
	var code []byte
	for _, b := range body {
		code = append(code, b...)
	}
	m.funcs = append(m.funcs, testFunc{name: name, params: params, results: results, body: code})
}

func (m *testModule) encode() []byte {
	out := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

	// One type per function keeps indexes trivial.
	types := uleb(uint64(len(m.funcs)))
	funcs := uleb(uint64(len(m.funcs)))
	for n, f := range m.funcs {
		types = append(types, 0x60)
		types = append(types, vec(f.params)...)
		types = append(types, vec(f.results)...)
		funcs = append(funcs, uleb(uint64(n))...)
	}
	out = section(out, secType, types)
	out = section(out, secFunction, funcs)

	mem := append(uleb(1), 0x00)
	mem = append(mem, uleb(uint64(m.pages))...)
	out = section(out, secMemory, mem)

	global := append(uleb(1), valI32, 0x01, opI32Const)
	global = append(global, sleb(int64(m.heap))...)
	global = append(global, opEnd)
	out = section(out, secGlobal, global)

	exports := uleb(uint64(len(m.funcs) + 1))
	exports = append(exports, wasmName("memory")...)
	exports = append(exports, exportKindMemory, 0x00)
	for n, f := range m.funcs {
		exports = append(exports, wasmName(f.name)...)
		exports = append(exports, exportKindFunc)
		exports = append(exports, uleb(uint64(n))...)
	}
	out = section(out, secExport, exports)

	code := uleb(uint64(len(m.funcs)))
	for _, f := range m.funcs {
		body := append(uleb(0), f.body...)
		body = append(body, opEnd)
		code = append(code, uleb(uint64(len(body)))...)
		code = append(code, body...)
	}
	return section(out, secCode, code)
}

func section(out []byte, id byte, payload []byte) []byte {
	out = append(out, id)
	out = append(out, uleb(uint64(len(payload)))...)
	return append(out, payload...)
}

func vec(types []byte) []byte {
	return append(uleb(uint64(len(types))), types...)
}

func wasmName(s string) []byte {
	return append(uleb(uint64(len(s))), s...)
}

func uleb(v uint64) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		out = append(out, b)
		if v == 0 {
			return out
		}
	}
}

func sleb(v int64) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		done := (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0)
		if !done {
			b |= 0x80
		}
		out = append(out, b)
		if done {
			return out
		}
	}
}

func localGet(n uint32) []byte { return append([]byte{opLocalGet}, uleb(uint64(n))...) }
func i32Const(v int32) []byte { return append([]byte{opI32Const}, sleb(int64(v))...) }

func f64Const(x float64) []byte {
	out := []byte{opF64Const, 0, 0, 0, 0, 0, 0, 0, 0}
	binary.LittleEndian.PutUint64(out[1:], math.Float64bits(x))
	return out
}

// memarg: alignment exponent then byte offset.
func i32Store(offset uint32) []byte {
	return append([]byte{opI32Store, 0x02}, uleb(uint64(offset))...)
}

func f64Store(offset uint32) []byte {
	return append([]byte{opF64Store, 0x03}, uleb(uint64(offset))...)
}

func f64Load(offset uint32) []byte {
	return append([]byte{opF64Load, 0x03}, uleb(uint64(offset))...)
}

// cstr packs up to three ASCII bytes plus a NUL into an i32 for i32.store.
func cstr(s string) int32 {
	var buf [4]byte
	copy(buf[:3], s)
	return int32(binary.LittleEndian.Uint32(buf[:]))
}

// fakeEngineModule builds a tiny engine that honors the loader contract and
// answers a handful of entry points with fixed values.
//
// malloc bumps a heap pointer; free resets it to the freed pointer, which is
// enough because the backend frees in LIFO order.
func fakeEngineModule() []byte {
	m := &testModule{pages: 2, heap: 1024}
	i32, f64 := valI32, valF64

	m.add("malloc", []byte{i32}, []byte{i32},
		[]byte{opGlobalGet, 0x00},
		[]byte{opGlobalGet, 0x00}, localGet(0), []byte{opI32Add},
		i32Const(7), []byte{opI32Add}, i32Const(-8), []byte{opI32And},
		[]byte{opGlobalSet, 0x00})
	m.add("free", []byte{i32}, nil,
		localGet(0), []byte{opGlobalSet, 0x00})
	m.add("swe_set_ephe_path", []byte{i32}, nil)
	m.add("swe_close", nil, nil)

	// swe_julday(y, m, d, hour, gregflag) -> jd
	m.add("swe_julday", []byte{i32, i32, i32, f64, i32}, []byte{f64},
		f64Const(2459946.0))

	// swe_revjul(jd, gregflag, *y, *m, *d, *hour)
	m.add("swe_revjul", []byte{f64, i32, i32, i32, i32, i32}, nil,
		localGet(2), i32Const(2023), i32Store(0),
		localGet(3), i32Const(1), i32Store(0),
		localGet(4), i32Const(1), i32Store(0),
		localGet(5), f64Const(12.0), f64Store(0))

	// swe_calc_ut(tjd, ipl, iflag, xx, serr) -> iflag
	m.add("swe_calc_ut", []byte{f64, i32, i32, i32, i32}, []byte{i32},
		localGet(3), f64Const(123.5), f64Store(0),
		localGet(3), f64Const(1.0), f64Store(16),
		localGet(2))

	// swe_houses_ex(tjd, iflag, lat, lon, hsys, cusps, ascmc) -> ERR
	m.add("swe_houses_ex", []byte{f64, i32, f64, f64, i32, i32, i32}, []byte{i32},
		i32Const(-1))

	// swe_house_pos(armc, lat, eps, hsys, xpin, serr) -> position
	m.add("swe_house_pos", []byte{f64, f64, f64, i32, i32, i32}, []byte{f64},
		f64Const(7.25))

	// swe_fixstar_ut(star, tjd, iflag, xx, serr) -> ERR with "bad"
	m.add("swe_fixstar_ut", []byte{i32, f64, i32, i32, i32}, []byte{i32},
		localGet(4), i32Const(cstr("bad")), i32Store(0),
		i32Const(-1))

	// swe_cotrans(xpo, xpn, eps): xpn[0] = xpo[0] + 1
	m.add("swe_cotrans", []byte{i32, i32, f64}, nil,
		localGet(1), localGet(0), f64Load(0), f64Const(1.0), []byte{opF64Add}, f64Store(0))

	// swe_get_planet_name(ipl, spname) -> spname
	m.add("swe_get_planet_name", []byte{i32, i32}, []byte{i32},
		localGet(1), i32Const(cstr("Sun")), i32Store(0),
		localGet(1))

	// swe_set_topo(lon, lat, alt)
	m.add("swe_set_topo", []byte{f64, f64, f64}, nil)

	return m.encode()
}
