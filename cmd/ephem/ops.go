package main

import (
	"github.com/spf13/cobra"

	ephemeris "github.com/wippyai/ephemeris-bridge"
	"github.com/wippyai/ephemeris-bridge/errors"
	"github.com/wippyai/ephemeris-bridge/schema"
)

// NewOpsCommand creates the ops command.
func NewOpsCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ops [op]",
		Short: "List the operation catalog",
		Long: `List every operation with its parameters and decoded fields, or
describe a single one. The text format also shows buffer offsets.

Example:
  ephem ops
  ephem ops calc_ut --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				if opts.format(out) == FormatJSON {
					return writeJSON(out, schema.Catalog())
				}
				return schema.Dump(out)
			}

			spec, ok := schema.Lookup(ephemeris.Op(args[0]))
			if !ok {
				return errors.UnknownOperation(args[0])
			}
			if opts.format(out) == FormatJSON {
				return writeJSON(out, spec.Info())
			}
			return spec.Dump(out)
		},
	}
}
