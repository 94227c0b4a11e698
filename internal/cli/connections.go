package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/sheetlink/internal/connections"
)

// ConnectionsResult is the content of the connection registry.
type ConnectionsResult struct {
	Registry    string              `json:"registry" yaml:"registry"`
	Connections []connections.Entry `json:"connections" yaml:"connections"`
}

func (r ConnectionsResult) RenderText(w io.Writer) {
	if len(r.Connections) == 0 {
		fmt.Fprintf(w, "no connections in %s\n", r.Registry)
		return
	}
	for _, e := range r.Connections {
		fmt.Fprintf(w, "%s  %s\n", e.ID, e.Path)
	}
}

// ConnectionChange reports a set or delete.
type ConnectionChange struct {
	Action string `json:"action" yaml:"action"`
	ID     string `json:"id" yaml:"id"`
	Path   string `json:"path,omitempty" yaml:"path,omitempty"`
}

func (c ConnectionChange) RenderText(w io.Writer) {
	if c.Path == "" {
		fmt.Fprintf(w, "%s %s\n", c.Action, c.ID)
		return
	}
	fmt.Fprintf(w, "%s %s -> %s\n", c.Action, c.ID, c.Path)
}

func newConnectionsCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "connections",
		Aliases: []string{"conn"},
		Short:   "Manage the connection registry",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List registered connections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := opts.formatter(cmd)
			reg := opts.registry()
			f.VerboseLog("registry %s", reg.Path())

			entries, err := reg.List(cmd.Context())
			if err != nil {
				return f.Fail(ExitCommandError, err)
			}
			return f.Success(ConnectionsResult{Registry: reg.Path(), Connections: entries})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <id> <file>",
		Short: "Point a connection id at a workbook",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := opts.formatter(cmd)
			id, err := connections.ParseID(args[0])
			if err != nil {
				return f.Fail(ExitCommandError, err)
			}

			path := opts.resolve(args[1])
			if err := opts.registry().Save(cmd.Context(), id, path); err != nil {
				return f.Fail(ExitCommandError, err)
			}
			return f.Success(ConnectionChange{Action: "saved", ID: id.String(), Path: path})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a connection id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := opts.formatter(cmd)
			id, err := connections.ParseID(args[0])
			if err != nil {
				return f.Fail(ExitCommandError, err)
			}

			if err := opts.registry().Delete(cmd.Context(), id); err != nil {
				return f.Fail(ExitCommandError, err)
			}
			return f.Success(ConnectionChange{Action: "deleted", ID: id.String()})
		},
	})

	return cmd
}

func (o *RootOptions) registry() *connections.FileRegistry {
	return connections.NewFileRegistry(o.cfg.Connector.RegistryFile)
}
