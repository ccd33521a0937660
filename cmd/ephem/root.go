package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Format     string // "text" | "json" | "" (text on a terminal, json otherwise)
	Verbose    bool
}

// NewRootCommand creates the root command for the ephem CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "ephem",
		Short: "Ephemeris engine bridge",
		Long: `Call the ephemeris engine from the command line, serve it over HTTP
or explore the operation catalog interactively.

The engine is loaded according to the configuration file (--config); without
one the wasm backend is used and must be given a module through
engine.module.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch opts.Format {
			case "", FormatText, FormatJSON:
				return nil
			}
			return fmt.Errorf("invalid format %q: must be %s or %s", opts.Format, FormatText, FormatJSON)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to the YAML configuration")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "", "output format (text|json), default text on a terminal")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(NewOpsCommand(opts))
	cmd.AddCommand(NewCallCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewReplCommand(opts))

	return cmd
}

// format resolves the output format for w.
func (o *RootOptions) format(w io.Writer) string {
	if o.Format != "" {
		return o.Format
	}
	if isTerminal(w) {
		return FormatText
	}
	return FormatJSON
}

func isTerminal(w any) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
