package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/sheetlink/internal/core"
	"github.com/JonMunkholm/sheetlink/internal/core/entities"
	"github.com/JonMunkholm/sheetlink/internal/fault"
	"github.com/JonMunkholm/sheetlink/internal/mapping"
	"github.com/JonMunkholm/sheetlink/internal/quote"
	"github.com/JonMunkholm/sheetlink/internal/sheet"
)

// CapabilitiesResult holds the effective capability flags of a quote
// workbook. Explicit lists the flags set in the workbook itself.
type CapabilitiesResult struct {
	File      string          `json:"file" yaml:"file"`
	Effective map[string]bool `json:"effective" yaml:"effective"`
	Explicit  map[string]bool `json:"explicit" yaml:"explicit"`
}

func (r CapabilitiesResult) RenderText(w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, name := range sortedKeys(r.Effective) {
		source := "default"
		if _, ok := r.Explicit[name]; ok {
			source = "workbook"
		}
		fmt.Fprintf(tw, "%s\t%t\t%s\n", name, r.Effective[name], source)
	}
	tw.Flush()
}

// FieldsResult is the field catalog of an entity type.
type FieldsResult struct {
	Type   core.EntityType      `json:"type" yaml:"type"`
	Fields []core.FieldMetadata `json:"fields" yaml:"fields"`
}

func (r FieldsResult) RenderText(w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tTYPE\tACCESS\tLIST")
	for _, fm := range r.Fields {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", fm.Key, fm.Type, fm.Access, fm.ListName)
	}
	tw.Flush()
}

// CatalogResult is the outcome of validating a quote workbook.
type CatalogResult struct {
	File       string      `json:"file" yaml:"file"`
	Result     core.Result `json:"result" yaml:"result"`
	PriceLists int         `json:"priceLists" yaml:"priceLists"`
	Products   int         `json:"products" yaml:"products"`
}

func (r CatalogResult) RenderText(w io.Writer) {
	fmt.Fprintf(w, "%s: %d price lists, %d products\n", r.File, r.PriceLists, r.Products)
	fmt.Fprintf(w, "%s", r.Result.State)
	if r.Result.UserExplanation != "" {
		fmt.Fprintf(w, ": %s", r.Result.UserExplanation)
	}
	fmt.Fprintln(w)
}

func newCapabilitiesCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "capabilities <file>",
		Short: "List the capability flags of a quote workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := opts.formatter(cmd)
			return opts.withDocument(f, args[0], func(doc *sheet.Document) error {
				caps, err := fault.Load(doc)
				if err != nil {
					return f.Fail(ExitCommandError, err)
				}
				return f.Success(CapabilitiesResult{
					File:      doc.Path(),
					Effective: caps.Effective(),
					Explicit:  caps,
				})
			})
		},
	}
}

func newFieldsCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "fields <type>",
		Short: "Show the field catalog of an entity type",
		Long:  "Show the canonical field keys of an actor or catalog type, e.g. Customer or Product.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := opts.formatter(cmd)
			t := core.EntityType(args[0])
			fields, err := mapping.New(entities.Default()).FieldsFor(t)
			if err != nil {
				return f.Fail(ExitCommandError, err)
			}
			return f.Success(FieldsResult{Type: t, Fields: fields})
		},
	}
}

func newCatalogCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Work with quote catalog workbooks",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "validate <file>",
		Short: "Check a quote workbook for duplicate keys",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := opts.formatter(cmd)
			path := opts.resolve(args[0])

			f.VerboseLog("opening %s", path)
			c, err := quote.Open(path)
			if err != nil {
				return f.Fail(ExitCommandError, err)
			}

			snap := c.Snapshot()
			res := CatalogResult{
				File:       path,
				Result:     c.TestConnection(),
				PriceLists: len(snap.PriceLists),
				Products:   len(snap.Products),
			}
			if err := f.Success(res); err != nil {
				return err
			}
			if !res.Result.IsOK() {
				return NewExitError(ExitFailure, res.Result.UserExplanation)
			}
			return nil
		},
	})
	return cmd
}
