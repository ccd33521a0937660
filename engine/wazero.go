package engine

import (
	"context"
	"fmt"
	"os"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	ephemeris "github.com/wippyai/ephemeris-bridge"
	"github.com/wippyai/ephemeris-bridge/schema"
)

// BackendWasm is the registry name of the wazero backend.
const BackendWasm = "wasm"

func init() {
	RegisterBackend(BackendWasm, func(cfg LoaderConfig) (Loader, error) {
		module := cfg.Module
		if len(module) == 0 {
			if cfg.ModulePath == "" {
				return nil, fmt.Errorf("wasm backend needs a module or module path")
			}
			data, err := os.ReadFile(cfg.ModulePath)
			if err != nil {
				return nil, fmt.Errorf("read engine module: %w", err)
			}
			module = data
		}
		return NewWazeroLoader(module, WazeroConfig{MemoryLimitPages: cfg.MemoryLimitPages}), nil
	})
}

// WazeroConfig holds configuration for the wazero backend.
type WazeroConfig struct {
	// MemoryLimitPages sets the maximum guest memory in pages (64KB each).
	// 0 means default (65536 pages = 4GB).
	// 256 = 16MB, 1024 = 64MB, 4096 = 256MB
	MemoryLimitPages uint32
}

// WazeroLoader loads a WebAssembly build of the engine into a private wazero
// runtime. The module must export memory, malloc, free, swe_set_ephe_path
// and swe_close, and imports nothing beyond WASI preview1.
type WazeroLoader struct {
	module []byte
	cfg    WazeroConfig
}

// NewWazeroLoader creates a loader for the given module bytes.
func NewWazeroLoader(module []byte, cfg WazeroConfig) *WazeroLoader {
	return &WazeroLoader{module: module, cfg: cfg}
}

// Load compiles and instantiates the module with dataPath mounted at
// /ephe and points the engine's ephemeris path there.
func (l *WazeroLoader) Load(ctx context.Context, dataPath string) (Handle, error) {
	runtimeCfg := wazero.NewRuntimeConfig()
	if l.cfg.MemoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(l.cfg.MemoryLimitPages)
	}
	rt := wazero.NewRuntimeWithConfig(ctx, runtimeCfg)

	h, err := l.load(ctx, rt, dataPath)
	if err != nil {
		_ = rt.Close(ctx)
		return nil, err
	}
	return h, nil
}

func (l *WazeroLoader) load(ctx context.Context, rt wazero.Runtime, dataPath string) (*wazeroHandle, error) {
	if _, err := instantiateWASI(ctx, rt); err != nil {
		return nil, err
	}

	compiled, err := rt.CompileModule(ctx, l.module)
	if err != nil {
		return nil, fmt.Errorf("compile failed: %w", err)
	}

	mod, err := rt.InstantiateModule(ctx, compiled, moduleConfig(dataPath))
	if err != nil {
		return nil, fmt.Errorf("instantiate engine: %w", err)
	}

	mem := mod.Memory()
	if mem == nil {
		return nil, fmt.Errorf("engine does not export %q", exportMemory)
	}
	h := &wazeroHandle{
		runtime: rt,
		module:  mod,
		mem:     guestMemory{mem: mem},
		funcs:   make(map[string]api.Function),
	}
	for _, name := range []string{exportMalloc, exportFree, exportSetPath, exportClose} {
		if _, ok := h.function(name); !ok {
			return nil, fmt.Errorf("engine does not export %q", name)
		}
	}

	if err := h.setEphePath(ctx, guestDataDir); err != nil {
		return nil, err
	}
	Logger().Debug("wasm engine loaded",
		zap.String("data_path", dataPath),
		zap.Uint32("memory_bytes", mem.Size()))
	return h, nil
}

// wazeroHandle is a loaded engine instance. Not safe for concurrent use.
type wazeroHandle struct {
	runtime wazero.Runtime
	module  api.Module
	mem     guestMemory
	funcs   map[string]api.Function
}

func (h *wazeroHandle) function(name string) (api.Function, bool) {
	if fn, ok := h.funcs[name]; ok {
		return fn, true
	}
	fn := h.module.ExportedFunction(name)
	if fn == nil {
		return nil, false
	}
	h.funcs[name] = fn
	return fn, true
}

func (h *wazeroHandle) setEphePath(ctx context.Context, path string) error {
	size := uint32(len(path) + 1)
	ptr, err := h.malloc(ctx, size)
	if err != nil {
		return err
	}
	defer h.free(ctx, ptr)

	if err := h.mem.WriteCString(ptr, path, size); err != nil {
		return err
	}
	fn, _ := h.function(exportSetPath)
	if _, err := fn.Call(ctx, uint64(ptr)); err != nil {
		return fmt.Errorf("set ephemeris path: %w", err)
	}
	return nil
}

func (h *wazeroHandle) malloc(ctx context.Context, size uint32) (uint32, error) {
	fn, _ := h.function(exportMalloc)
	res, err := fn.Call(ctx, uint64(size))
	if err != nil {
		return 0, fmt.Errorf("malloc(%d): %w", size, err)
	}
	if len(res) == 0 || uint32(res[0]) == 0 {
		return 0, fmt.Errorf("malloc(%d) returned null", size)
	}
	return uint32(res[0]), nil
}

func (h *wazeroHandle) free(ctx context.Context, ptr uint32) {
	fn, _ := h.function(exportFree)
	if _, err := fn.Call(ctx, uint64(ptr)); err != nil {
		Logger().Warn("free failed", zap.Uint32("ptr", ptr), zap.Error(err))
	}
}

// Invoke lays the call out in one scratch allocation, calls the entry point
// and copies outputs back into call.Out, call.Text and call.Err.
func (h *wazeroHandle) Invoke(ctx context.Context, call *Call) (int32, error) {
	abi, ok := lookupABI(call.Op())
	if !ok {
		call.Err = fmt.Sprintf("no entry point for %s", call.Op())
		return -1, nil
	}
	fn, ok := h.function(abi.export)
	if !ok {
		call.Err = fmt.Sprintf("engine does not export %s", abi.export)
		return -1, nil
	}

	frame, err := planFrame(abi, call)
	if err != nil {
		return 0, err
	}
	var base uint32
	if frame.size > 0 {
		base, err = h.malloc(ctx, frame.size)
		if err != nil {
			return 0, err
		}
		defer h.free(ctx, base)
	}

	params, err := frame.lower(h.mem, base, call)
	if err != nil {
		return 0, err
	}

	results, err := fn.Call(ctx, params...)
	if err != nil {
		return 0, err
	}

	if err := frame.lift(h.mem, base, call); err != nil {
		return 0, err
	}
	return frame.status(abi.ret, results, call), nil
}

// Close calls swe_close and closes the runtime.
func (h *wazeroHandle) Close(ctx context.Context) error {
	var closeErr error
	if fn, ok := h.function(exportClose); ok {
		if _, err := fn.Call(ctx); err != nil {
			closeErr = fmt.Errorf("swe_close: %w", err)
		}
	}
	if err := h.runtime.Close(ctx); err != nil && closeErr == nil {
		closeErr = err
	}
	return closeErr
}

// region is one slot's place in the scratch allocation.
type region struct {
	slot   slot
	offset uint32
	size   uint32
	arg    int // first bound arg consumed, -1 for outputs
	char   bool
}

// frame is the scratch layout of one call.
type frame struct {
	regions []region
	size    uint32
}

func planFrame(abi abiFunc, call *Call) (*frame, error) {
	f := &frame{}
	next := 0
	reserve := func(s slot, size uint32, arg int) {
		off := align(f.size, scratchAlign)
		f.regions = append(f.regions, region{slot: s, offset: off, size: size, arg: arg})
		f.size = off + size
	}

	for _, s := range abi.slots {
		switch s.kind {
		case slotArg:
			if next >= len(call.Args) {
				return nil, fmt.Errorf("%s: missing argument %d", call.Op(), next)
			}
			v := call.Args[next]
			switch {
			case isChar(call, next):
				f.regions = append(f.regions, region{slot: s, arg: next, char: true})
			case v.Kind() == ephemeris.KindString:
				str, _ := v.AsString()
				reserve(s, uint32(len(str)+1), next)
			case v.Kind() == ephemeris.KindFloats:
				xs, _ := v.AsFloats()
				reserve(s, uint32(len(xs)*8), next)
			default:
				f.regions = append(f.regions, region{slot: s, arg: next})
			}
			next++
		case slotPack:
			if next+s.n > len(call.Args) {
				return nil, fmt.Errorf("%s: missing arguments %d..%d", call.Op(), next, next+s.n-1)
			}
			reserve(s, uint32(s.n*8), next)
			next += s.n
		case slotStar:
			if next >= len(call.Args) {
				return nil, fmt.Errorf("%s: missing argument %d", call.Op(), next)
			}
			reserve(s, textBufferSize, next)
			next++
		case slotOut:
			reserve(s, uint32(s.n*8), -1)
		case slotOutI32:
			reserve(s, uint32(s.n*4), -1)
		case slotText:
			reserve(s, textBufferSize, -1)
		case slotErr:
			reserve(s, errBufferSize, -1)
		}
	}
	if next != len(call.Args) {
		return nil, fmt.Errorf("%s: %d arguments bound, entry point takes %d", call.Op(), len(call.Args), next)
	}
	return f, nil
}

// isChar reports whether bound arg n is a single-character code, which the
// engine takes by value.
func isChar(call *Call, n int) bool {
	if call.Spec == nil || n >= len(call.Spec.Params) {
		return false
	}
	return call.Spec.Params[n].Kind == schema.ParamChar
}

func align(n, to uint32) uint32 {
	return (n + to - 1) &^ (to - 1)
}

// lower writes inputs into guest memory and returns the core call params.
func (f *frame) lower(mem guestMemory, base uint32, call *Call) ([]uint64, error) {
	params := make([]uint64, 0, len(f.regions))
	for _, r := range f.regions {
		ptr := base + r.offset
		switch r.slot.kind {
		case slotArg:
			v := call.Args[r.arg]
			if r.char {
				str, _ := v.AsString()
				var code int32
				if len(str) > 0 {
					code = int32(str[0])
				}
				params = append(params, api.EncodeI32(code))
				continue
			}
			switch v.Kind() {
			case ephemeris.KindInt:
				n, _ := v.AsInt()
				params = append(params, api.EncodeI32(int32(n)))
			case ephemeris.KindFloat:
				x, _ := v.AsFloat()
				params = append(params, api.EncodeF64(x))
			case ephemeris.KindString:
				str, _ := v.AsString()
				if err := mem.WriteCString(ptr, str, r.size); err != nil {
					return nil, err
				}
				params = append(params, uint64(ptr))
			case ephemeris.KindFloats:
				xs, _ := v.AsFloats()
				if err := mem.WriteF64s(ptr, xs); err != nil {
					return nil, err
				}
				params = append(params, uint64(ptr))
			default:
				return nil, fmt.Errorf("%s: argument %d has invalid kind", call.Op(), r.arg)
			}
		case slotPack:
			xs := make([]float64, r.slot.n)
			for n := range xs {
				xs[n], _ = call.Args[r.arg+n].AsFloat()
			}
			if err := mem.WriteF64s(ptr, xs); err != nil {
				return nil, err
			}
			params = append(params, uint64(ptr))
		case slotStar:
			str, _ := call.Args[r.arg].AsString()
			if err := mem.WriteCString(ptr, str, r.size); err != nil {
				return nil, err
			}
			params = append(params, uint64(ptr))
		default:
			zero := make([]byte, r.size)
			if err := mem.Write(ptr, zero); err != nil {
				return nil, err
			}
			params = append(params, uint64(ptr))
		}
	}
	return params, nil
}

// lift copies outputs from guest memory into the call.
func (f *frame) lift(mem guestMemory, base uint32, call *Call) error {
	for _, r := range f.regions {
		ptr := base + r.offset
		switch r.slot.kind {
		case slotOut:
			end := r.slot.from + r.slot.n
			if end > len(call.Out) {
				end = len(call.Out)
			}
			if r.slot.from >= end {
				continue
			}
			if err := mem.ReadF64s(ptr, call.Out[r.slot.from:end]); err != nil {
				return err
			}
		case slotOutI32:
			for n := 0; n < r.slot.n && r.slot.from+n < len(call.Out); n++ {
				v, err := mem.ReadI32(ptr + uint32(n)*4)
				if err != nil {
					return err
				}
				call.Out[r.slot.from+n] = float64(v)
			}
		case slotStar, slotText:
			text, err := mem.ReadCString(ptr, r.size)
			if err != nil {
				return err
			}
			call.Text = text
		case slotErr:
			text, err := mem.ReadCString(ptr, r.size)
			if err != nil {
				return err
			}
			call.Err = text
		}
	}
	return nil
}

func (f *frame) status(ret retKind, results []uint64, call *Call) int32 {
	switch ret {
	case retStatus:
		if len(results) == 0 {
			return 0
		}
		return api.DecodeI32(results[0])
	case retF64Out:
		if len(results) > 0 && len(call.Out) > 0 {
			call.Out[0] = api.DecodeF64(results[0])
		}
		return 0
	case retHousePos:
		if len(call.Out) >= 3 {
			if point, ok := call.Args[4].AsFloats(); ok && len(point) >= 2 {
				call.Out[0], call.Out[1] = point[0], point[1]
			}
			if len(results) > 0 {
				call.Out[2] = api.DecodeF64(results[0])
			}
		}
		if call.Err != "" {
			return -1
		}
		return 0
	}
	return 0
}
