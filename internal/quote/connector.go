// Package quote implements the quote connector over a quote workbook: the
// product catalog it offers, the quote lifecycle hooks and the order
// placement. Every operation is gated by the capability sheet of the
// workbook, which can make it abort, fail or warn on purpose.
//
// A Connector is built by Open for a single call. It holds the capabilities
// and catalog read at that moment; writes re-open the workbook.
package quote

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/JonMunkholm/sheetlink/internal/catalog"
	"github.com/JonMunkholm/sheetlink/internal/core"
	"github.com/JonMunkholm/sheetlink/internal/fault"
	"github.com/JonMunkholm/sheetlink/internal/ledger"
	"github.com/JonMunkholm/sheetlink/internal/logging"
	"github.com/JonMunkholm/sheetlink/internal/sheet"
)

// Configuration field keys.
const (
	FileField  = "#1"
	LabelField = "#2"
	ListField  = "#3"
)

const fileHint = "You must enter an absolute file name, or a filename relative to where the ExcelConnector resides in the file hierarchy."

// Option configures a Connector.
type Option func(*Connector)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Connector) {
		c.now = now
	}
}

// WithKeyGenerator replaces ledger.GenerateKey for every key the connector
// hands out.
func WithKeyGenerator(gen func() string) Option {
	return func(c *Connector) {
		c.newKey = gen
	}
}

// Connector serves the quote operations of one workbook.
type Connector struct {
	path   string
	inj    *fault.Injector
	snap   *catalog.Snapshot
	now    func() time.Time
	newKey func() string
}

// Open reads the capabilities and catalog of the workbook at path.
func Open(path string, opts ...Option) (*Connector, error) {
	c := &Connector{path: path, now: time.Now, newKey: ledger.GenerateKey}
	for _, opt := range opts {
		opt(c)
	}

	doc, err := sheet.Open(path, sheet.WithClock(c.now))
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	caps, err := fault.Load(doc)
	if err != nil {
		return nil, err
	}
	c.inj = fault.New(caps)

	if c.snap, err = catalog.Read(doc, c.inj); err != nil {
		return nil, err
	}
	return c, nil
}

// Path returns the workbook path.
func (c *Connector) Path() string {
	return c.path
}

// Snapshot returns the catalog read by Open.
func (c *Connector) Snapshot() *catalog.Snapshot {
	return c.snap
}

// CheckConfig reports whether path names a readable quote workbook with a
// consistent catalog.
func CheckConfig(path string) core.Result {
	if strings.TrimSpace(path) == "" {
		return core.Fail(fileHint, "File name is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return core.Fail(fileHint, "File not found")
		}
		return core.ResultFromError(err)
	}

	c, err := Open(path)
	if err != nil {
		return core.ResultFromError(err)
	}
	return c.TestConnection()
}

// ConfigurationFields returns the fields a quote connection is configured
// with. The fail_configure_field_keys and fail_configure_field_ranks flags
// corrupt the keys and ranks.
func (c *Connector) ConfigurationFields() []core.FieldMetadata {
	fields := []core.FieldMetadata{
		{
			Key:         FileField,
			DisplayName: "Excel file name",
			Description: "Absolute path of the Excel file, or a path relative to the connector",
			Type:        core.FieldText,
			Access:      core.AccessMandatory,
			MaxLength:   500,
			Rank:        1,
		},
		{
			Key:         LabelField,
			DisplayName: "The file is read on every call",
			Type:        core.FieldLabel,
			Access:      core.AccessReadOnly,
			Rank:        2,
		},
		{
			Key:         ListField,
			DisplayName: "Default product category",
			Type:        core.FieldList,
			ListName:    catalog.ListProductCategory,
			Rank:        3,
		},
	}

	if c.inj.Can(fault.FailConfigureFieldKeys) {
		for i, key := range []string{"glops", "glips", "glups"} {
			fields[i].Key = key
		}
	}
	if c.inj.Can(fault.FailConfigureFieldRanks) {
		for i, rank := range []int{0, 3, 3} {
			fields[i].Rank = rank
		}
	}
	return fields
}

// Initialize checks the catalog and then applies the start flags.
func (c *Connector) Initialize(ctx context.Context) (core.Result, error) {
	res := c.snap.Validate()
	if !res.IsOK() {
		return res, nil
	}
	if err := c.inj.Enter(fault.OpStart); err != nil {
		return core.Result{}, err
	}
	c.inj.Apply(fault.OpStart, &res)

	logging.FromContext(ctx).Debug("quote connector initialized",
		"file", c.path, "state", res.State, "price_lists", len(c.snap.PriceLists), "products", len(c.snap.Products))
	return res, nil
}

// TestConnection validates the catalog without consulting any flag.
func (c *Connector) TestConnection() core.Result {
	return c.snap.Validate()
}

// CanProvideCapability reports a capability through the default table.
func (c *Connector) CanProvideCapability(name string) bool {
	return c.inj.Can(name)
}

// Capabilities returns the effective capability map.
func (c *Connector) Capabilities() map[string]bool {
	return c.inj.Capabilities().Effective()
}

// GetQuoteList returns the items of a quote list. A list whose provide
// capability is off, or an unknown list, is empty.
func (c *Connector) GetQuoteList(name string) []core.ListItem {
	if !c.inj.Can(fault.ListCapability(name)) {
		return []core.ListItem{}
	}
	items, ok := c.snap.List(name)
	if !ok {
		return []core.ListItem{}
	}
	return append([]core.ListItem{}, items...)
}

// GetActivePriceLists returns the price lists in currency valid today.
func (c *Connector) GetActivePriceLists(currency string) []catalog.PriceList {
	return orEmpty(c.snap.ActivePriceLists(currency, c.now()))
}

// GetAllPriceLists returns the price lists in currency.
func (c *Connector) GetAllPriceLists(currency string) []catalog.PriceList {
	return orEmpty(c.snap.AllPriceLists(currency))
}

// GetNumberOfActivePriceLists counts the price lists in currency valid today.
func (c *Connector) GetNumberOfActivePriceLists(currency string) int {
	return len(c.snap.ActivePriceLists(currency, c.now()))
}

// GetAddresses returns the invoice and delivery addresses of the contact.
func (c *Connector) GetAddresses(qc *core.QuoteContext) []core.Address {
	if !c.inj.Can(fault.ProvideAddresses) {
		return []core.Address{}
	}
	return orEmpty(c.snap.ContactAddresses(fmt.Sprint(qc.Contact.ContactID)))
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
