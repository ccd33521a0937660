package engine

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	ephemeris "github.com/wippyai/ephemeris-bridge"
	"github.com/wippyai/ephemeris-bridge/schema"
)

func boundCall(t *testing.T, req ephemeris.Request) *Call {
	t.Helper()
	spec, ok := schema.Lookup(req.Op())
	if !ok {
		t.Fatalf("no spec for %s", req.Op())
	}
	args, err := spec.Bind(req)
	if err != nil {
		t.Fatalf("bind %s: %v", req.Op(), err)
	}
	return NewCall(spec, args)
}

func loadFake(t *testing.T) Handle {
	t.Helper()
	ctx := context.Background()
	h, err := NewWazeroLoader(fakeEngineModule(), WazeroConfig{}).Load(ctx, t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	t.Cleanup(func() { _ = h.Close(ctx) })
	return h
}

func TestWazeroLoader_Invoke(t *testing.T) {
	ctx := context.Background()
	h := loadFake(t)

	tests := []struct {
		name   string
		req    ephemeris.Request
		status int32
		out    []float64
		text   string
		err    string
	}{
		{
			name: "f64 return",
			req: ephemeris.NewRequest(ephemeris.OpJulday,
				ephemeris.Int(2023), ephemeris.Int(1), ephemeris.Int(1), ephemeris.Float(12), ephemeris.Int(ephemeris.GregorianCalendar)),
			out: []float64{2459946.0},
		},
		{
			name: "int32 and double outputs",
			req:  ephemeris.NewRequest(ephemeris.OpRevjul, ephemeris.Float(2459946.0), ephemeris.Int(ephemeris.GregorianCalendar)),
			out:  []float64{2023, 1, 1, 12},
		},
		{
			name:   "status is returned flag",
			req:    ephemeris.NewRequest(ephemeris.OpCalcUT, ephemeris.Float(2459946.0), ephemeris.Int(ephemeris.Sun)).WithFlags(ephemeris.FlagSpeed),
			status: ephemeris.FlagSpeed,
			out:    []float64{123.5, 0, 1.0, 0, 0, 0},
		},
		{
			name:   "status error",
			req:    ephemeris.NewRequest(ephemeris.OpHouses, ephemeris.Float(2459946.0), ephemeris.Float(51.5), ephemeris.Float(0), ephemeris.Char('P')),
			status: -1,
		},
		{
			name: "house position copies point",
			req: ephemeris.NewRequest(ephemeris.OpHousePos,
				ephemeris.Float(10), ephemeris.Float(51.5), ephemeris.Float(23.44), ephemeris.Char('P'), ephemeris.Floats(100, 2)),
			out: []float64{100, 2, 7.25},
		},
		{
			name:   "star name and error text",
			req:    ephemeris.NewRequest(ephemeris.OpFixstarUT, ephemeris.String("Sirius"), ephemeris.Float(2459946.0)),
			status: -1,
			text:   "Sirius",
			err:    "bad",
		},
		{
			name: "packed input",
			req:  ephemeris.NewRequest(ephemeris.OpCotrans, ephemeris.Float(41), ephemeris.Float(0), ephemeris.Float(1), ephemeris.Float(23.44)),
			out:  []float64{42, 0, 0},
		},
		{
			name: "text output",
			req:  ephemeris.NewRequest(ephemeris.OpGetPlanetName, ephemeris.Int(ephemeris.Sun)),
			text: "Sun",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			call := boundCall(t, tt.req)
			status, err := h.Invoke(ctx, call)
			if err != nil {
				t.Fatalf("Invoke failed: %v", err)
			}
			if status != tt.status {
				t.Errorf("status = %d, want %d", status, tt.status)
			}
			for n, want := range tt.out {
				if call.Out[n] != want {
					t.Errorf("out[%d] = %v, want %v", n, call.Out[n], want)
				}
			}
			if call.Text != tt.text {
				t.Errorf("text = %q, want %q", call.Text, tt.text)
			}
			if call.Err != tt.err {
				t.Errorf("err = %q, want %q", call.Err, tt.err)
			}
		})
	}
}

func TestWazeroLoader_MissingEntryPoint(t *testing.T) {
	h := loadFake(t)

	call := boundCall(t, ephemeris.NewRequest(ephemeris.OpDeltaT, ephemeris.Float(2459946.0)))
	status, err := h.Invoke(context.Background(), call)
	if err != nil {
		t.Fatalf("missing export should not fault: %v", err)
	}
	if status != -1 {
		t.Errorf("status = %d, want -1", status)
	}
	if !strings.Contains(call.Err, "swe_deltat") {
		t.Errorf("error text %q should name the entry point", call.Err)
	}
}

func TestWazeroLoader_ScratchIsReleased(t *testing.T) {
	ctx := context.Background()
	h := loadFake(t)

	// The fake engine has two pages; leaking every frame would exhaust them.
	for n := 0; n < 2000; n++ {
		call := boundCall(t, ephemeris.NewRequest(ephemeris.OpFixstarUT, ephemeris.String("Aldebaran"), ephemeris.Float(2459946.0)))
		if _, err := h.Invoke(ctx, call); err != nil {
			t.Fatalf("call %d: %v", n, err)
		}
	}
}

func TestWazeroLoader_RejectsIncompleteModule(t *testing.T) {
	m := &testModule{pages: 1, heap: 16}
	m.add("swe_close", nil, nil)

	_, err := NewWazeroLoader(m.encode(), WazeroConfig{}).Load(context.Background(), t.TempDir())
	if err == nil {
		t.Fatal("expected error for module without malloc")
	}
	if !strings.Contains(err.Error(), "malloc") {
		t.Errorf("error %q should name the missing export", err)
	}
}

func TestWazeroLoader_RejectsGarbage(t *testing.T) {
	_, err := NewWazeroLoader([]byte("not wasm"), WazeroConfig{}).Load(context.Background(), t.TempDir())
	if err == nil {
		t.Fatal("expected compile error")
	}
}

func TestWazeroLoader_MemoryLimit(t *testing.T) {
	tests := []struct {
		name string
		cfg  WazeroConfig
	}{
		{"default", WazeroConfig{}},
		{"16MB limit", WazeroConfig{MemoryLimitPages: 256}},
		{"64MB limit", WazeroConfig{MemoryLimitPages: 1024}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			h, err := NewWazeroLoader(fakeEngineModule(), tc.cfg).Load(ctx, t.TempDir())
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if err := h.Close(ctx); err != nil {
				t.Errorf("Close failed: %v", err)
			}
		})
	}
}

func TestWazeroLoader_ThroughContext(t *testing.T) {
	ctx := context.Background()
	c := NewContext(NewWazeroLoader(fakeEngineModule(), WazeroConfig{}), WithDataPath(t.TempDir()))
	defer c.Teardown(ctx)

	call := boundCall(t, ephemeris.NewRequest(ephemeris.OpSetTopo, ephemeris.Float(13.4), ephemeris.Float(52.5), ephemeris.Float(34)))
	if _, err := c.Invoke(ctx, call); err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	s := c.Settings()
	if s.Topocentric == nil || s.Topocentric.Latitude != 52.5 {
		t.Errorf("topocentric settings not mirrored: %+v", s.Topocentric)
	}
}

func TestRegistry(t *testing.T) {
	found := false
	for _, name := range Backends() {
		if name == BackendWasm {
			found = true
		}
	}
	if !found {
		t.Fatalf("wasm backend not registered: %v", Backends())
	}

	if _, err := NewLoader("nope", LoaderConfig{}); err == nil {
		t.Error("expected error for unknown backend")
	}
	if _, err := NewLoader(BackendWasm, LoaderConfig{}); err == nil {
		t.Error("expected error without a module")
	}
	if _, err := NewLoader(BackendWasm, LoaderConfig{ModulePath: filepath.Join(t.TempDir(), "missing.wasm")}); err == nil {
		t.Error("expected error for missing module file")
	}

	path := filepath.Join(t.TempDir(), "engine.wasm")
	if err := os.WriteFile(path, fakeEngineModule(), 0o644); err != nil {
		t.Fatal(err)
	}
	loader, err := NewLoader(BackendWasm, LoaderConfig{ModulePath: path})
	if err != nil {
		t.Fatalf("NewLoader failed: %v", err)
	}
	h, err := loader.Load(context.Background(), t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	_ = h.Close(context.Background())
}

// TestRealEngine runs against a real WebAssembly build when one is present.
func TestRealEngine(t *testing.T) {
	module, err := os.ReadFile(filepath.Join("testdata", "swisseph.wasm"))
	if err != nil {
		t.Skip("testdata/swisseph.wasm not present")
	}
	ctx := context.Background()
	c := NewContext(NewWazeroLoader(module, WazeroConfig{}), WithDataPath(t.TempDir()))
	defer c.Teardown(ctx)

	call := boundCall(t, ephemeris.NewRequest(ephemeris.OpJulday,
		ephemeris.Int(2000), ephemeris.Int(1), ephemeris.Int(1), ephemeris.Float(12), ephemeris.Int(ephemeris.GregorianCalendar)))
	if _, err := c.Invoke(ctx, call); err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if call.Out[0] != 2451545.0 {
		t.Errorf("julday(2000-01-01 12h) = %v, want 2451545", call.Out[0])
	}
}
