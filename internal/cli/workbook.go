package cli

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/sheetlink/internal/sheet"
)

// SchemaResult lists the header row of a sheet.
type SchemaResult struct {
	File    string   `json:"file" yaml:"file"`
	Sheet   string   `json:"sheet" yaml:"sheet"`
	Columns []string `json:"columns" yaml:"columns"`
}

func (r SchemaResult) RenderText(w io.Writer) {
	fmt.Fprintf(w, "%s (%d columns)\n", r.Sheet, len(r.Columns))
	for i, c := range r.Columns {
		fmt.Fprintf(w, "  %3d  %s\n", i+1, c)
	}
}

// RowsResult holds every record of a sheet, keyed by header.
type RowsResult struct {
	Sheet   string              `json:"sheet" yaml:"sheet"`
	Columns []string            `json:"columns" yaml:"columns"`
	Rows    []map[string]string `json:"rows" yaml:"rows"`
}

func (r RowsResult) RenderText(w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(r.Columns, "\t"))
	for _, row := range r.Rows {
		cells := make([]string, len(r.Columns))
		for i, c := range r.Columns {
			cells[i] = row[c]
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	tw.Flush()
}

// NextIDResult is the id the next insert into a sheet would receive.
type NextIDResult struct {
	Sheet  string `json:"sheet" yaml:"sheet"`
	NextID int    `json:"nextId" yaml:"nextId"`
}

func (r NextIDResult) RenderText(w io.Writer) {
	fmt.Fprintln(w, r.NextID)
}

// withDocument opens file for the duration of fn.
func (o *RootOptions) withDocument(f *OutputFormatter, file string, fn func(*sheet.Document) error) error {
	path := o.resolve(file)
	f.VerboseLog("opening %s", path)

	doc, err := sheet.Open(path)
	if err != nil {
		return f.Fail(ExitCommandError, err)
	}
	defer doc.Close()
	return fn(doc)
}

func newSchemaCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "schema <file> <sheet>",
		Short: "Show the header row of a sheet",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := opts.formatter(cmd)
			return opts.withDocument(f, args[0], func(doc *sheet.Document) error {
				schema, err := doc.Schema(args[1])
				if err != nil {
					return f.Fail(ExitCommandError, err)
				}
				return f.Success(SchemaResult{File: doc.Path(), Sheet: schema.Sheet, Columns: schema.Columns()})
			})
		},
	}
}

func newRowsCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rows <file> <sheet>",
		Short: "Print every record of a sheet",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := opts.formatter(cmd)
			return opts.withDocument(f, args[0], func(doc *sheet.Document) error {
				schema, err := doc.Schema(args[1])
				if err != nil {
					return f.Fail(ExitCommandError, err)
				}
				records, err := doc.GetAll(args[1])
				if err != nil {
					return f.Fail(ExitCommandError, err)
				}

				res := RowsResult{Sheet: schema.Sheet, Columns: schema.Columns(), Rows: make([]map[string]string, 0, len(records))}
				for _, rec := range records {
					row := make(map[string]string, rec.Len())
					for _, c := range rec.Columns() {
						row[c] = rec.String(c)
					}
					res.Rows = append(res.Rows, row)
				}
				f.VerboseLog("%d rows", len(res.Rows))
				return f.Success(res)
			})
		},
	}
}

func newNextIDCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "next-id <file> <sheet>",
		Short: "Show the id the next inserted row would get",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := opts.formatter(cmd)
			return opts.withDocument(f, args[0], func(doc *sheet.Document) error {
				id, err := doc.NextID(args[1])
				if err != nil {
					return f.Fail(ExitCommandError, err)
				}
				return f.Success(NextIDResult{Sheet: args[1], NextID: id})
			})
		},
	}
}

// sortedKeys returns the keys of m in order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
