package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	ephemeris "github.com/wippyai/ephemeris-bridge"
	"github.com/wippyai/ephemeris-bridge/errors"
	"github.com/wippyai/ephemeris-bridge/schema"
)

// CallOptions holds flags for the call command.
type CallOptions struct {
	*RootOptions
	Flags int32
}

// NewCallCommand creates the call command.
func NewCallCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CallOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "call <op> [params...]",
		Short: "Run one engine operation",
		Long: `Run one engine operation and print its decoded result.

Parameters are positional and parsed according to the operation signature
(see "ephem ops <op>"). Float arrays are comma separated. Put "--" before
the parameters when one of them is negative.

Example:
  ephem call julday 2023 1 1 12 1
  ephem call calc_ut 2459946 0 --flags 256
  ephem call houses --format json -- 2459946 51.5 -0.12 P`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCall(cmd, opts, args[0], args[1:])
		},
	}

	cmd.Flags().Int32Var(&opts.Flags, "flags", 0, "engine flag bits, for operations that take flags")

	return cmd
}

func runCall(cmd *cobra.Command, opts *CallOptions, name string, raw []string) (err error) {
	out := cmd.OutOrStdout()
	format := opts.format(out)
	defer func() {
		if err != nil && format == FormatJSON {
			_ = writeJSON(out, newErrorOutput(err))
		}
	}()

	op := ephemeris.Op(name)
	spec, ok := schema.Lookup(op)
	if !ok {
		return errors.UnknownOperation(name)
	}
	params, err := spec.ParseArgs(raw)
	if err != nil {
		return err
	}
	req := ephemeris.NewRequest(op, params...)
	if cmd.Flags().Changed("flags") {
		req = req.WithFlags(opts.Flags)
	}

	cfg, logger, err := opts.load()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	b, err := openBridge(ctx, cfg, logger, nil)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := b.Close(context.WithoutCancel(ctx)); cerr != nil {
			logger.Warn("close bridge", zap.Error(cerr))
		}
	}()

	res, err := b.Call(ctx, req)
	if err != nil {
		return err
	}
	if format == FormatJSON {
		return writeJSON(out, callOutput{Op: name, Family: res.Family(), Result: res})
	}
	return writeResult(out, res)
}
