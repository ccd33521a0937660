package engine

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
)

const wasiModuleName = "wasi_snapshot_preview1"

// instantiateWASI provides WASI preview1 to the engine module. The engine
// only needs the filesystem and clock functions, but libc startup code
// imports more, so the full preview1 set is exported.
func instantiateWASI(ctx context.Context, r wazero.Runtime) (api.Module, error) {
	if mod := r.Module(wasiModuleName); mod != nil {
		return mod, nil
	}
	builder := r.NewHostModuleBuilder(wasiModuleName)
	wasi_snapshot_preview1.NewFunctionExporter().ExportFunctions(builder)
	mod, err := builder.Instantiate(ctx)
	if err != nil {
		return nil, fmt.Errorf("instantiate WASI: %w", err)
	}
	return mod, nil
}

// moduleConfig mounts the data directory read-only at guestDataDir.
func moduleConfig(dataPath string) wazero.ModuleConfig {
	return wazero.NewModuleConfig().
		WithName("ephemeris").
		WithFSConfig(wazero.NewFSConfig().WithReadOnlyDirMount(dataPath, guestDataDir)).
		WithSysWalltime().
		WithSysNanotime().
		WithStartFunctions("_initialize")
}
