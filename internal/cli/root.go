// Package cli implements sheetctl, a command line tool for inspecting the
// workbooks and connection registry served by the connector.
package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/sheetlink/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "text" | "json" | "yaml"

	cfg *config.Config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json", "yaml"}

// NewRootCommand creates the sheetctl root command. cfg supplies the
// registry file and the resources dir used to resolve relative paths.
func NewRootCommand(cfg *config.Config) *cobra.Command {
	opts := &RootOptions{cfg: cfg}

	cmd := &cobra.Command{
		Use:   "sheetctl",
		Short: "Inspect connector workbooks",
		Long: `sheetctl reads the Excel workbooks behind the ERP and quote connectors.

It shows sheet schemas and rows, allocates ids the way the connector does,
lists the capability flags of quote workbooks and manages the connection
registry.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json|yaml)")

	cmd.AddCommand(newSchemaCommand(opts))
	cmd.AddCommand(newRowsCommand(opts))
	cmd.AddCommand(newNextIDCommand(opts))
	cmd.AddCommand(newCapabilitiesCommand(opts))
	cmd.AddCommand(newFieldsCommand(opts))
	cmd.AddCommand(newConnectionsCommand(opts))
	cmd.AddCommand(newCatalogCommand(opts))

	return cmd
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// resolve anchors a relative workbook path at the resources dir.
func (o *RootOptions) resolve(path string) string {
	return o.cfg.Connector.ResolvePath(path)
}
