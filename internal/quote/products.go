package quote

import (
	"fmt"
	"slices"
	"strings"

	"github.com/JonMunkholm/sheetlink/internal/catalog"
	"github.com/JonMunkholm/sheetlink/internal/core"
	"github.com/JonMunkholm/sheetlink/internal/fault"
	"github.com/JonMunkholm/sheetlink/internal/search"
)

// replacementPrice is the unit price of the lines that
// replace_90pct_lines_on_recalc puts in place of a heavily discounted line.
const replacementPrice = 10

var searchableFields = []core.FieldMetadata{
	{Key: "man", DisplayName: "Mandatory text", Type: core.FieldText, Access: core.AccessMandatory, MaxLength: 10, Rank: 5},
	{Key: "num", DisplayName: "Number", Type: core.FieldInteger, MaxLength: 3, DefaultValue: "123", Rank: 4},
	{Key: "chk", DisplayName: "Checkbox", Type: core.FieldCheckbox, Rank: 3},
	{Key: "lst", DisplayName: "Category", Type: core.FieldList, ListName: "category", Rank: 2},
	{Key: "dec", DisplayName: "Decimal", Type: core.FieldDouble, Rank: 1},
	{Key: "dat", DisplayName: "Date", Type: core.FieldDatetime, Rank: 0},
}

// GetSearchableFields returns the fields of the product search form.
func (c *Connector) GetSearchableFields() []core.FieldMetadata {
	return slices.Clone(searchableFields)
}

// GetSearchResults returns the products of the currency of the first price
// list. Restrictions are only checked for well-formedness, as the connector
// does not perform complex searches.
func (c *Connector) GetSearchResults(restrictions []search.Restriction) ([]catalog.Product, error) {
	for _, r := range restrictions {
		if err := r.Validate(); err != nil {
			return nil, err
		}
	}
	if len(c.snap.PriceLists) == 0 {
		return []catalog.Product{}, nil
	}

	currency := c.snap.PriceLists[0].Currency
	out := []catalog.Product{}
	for _, pl := range c.snap.AllPriceLists(currency) {
		out = append(out, c.snap.FindProducts(pl.Key, "")...)
	}
	return out, nil
}

// FindProduct returns the products of priceListKey matching input.
func (c *Connector) FindProduct(priceListKey, input string) ([]catalog.Product, error) {
	if err := c.inj.Enter(fault.OpFind); err != nil {
		return nil, err
	}
	return orEmpty(c.snap.FindProducts(priceListKey, input)), nil
}

// GetProduct returns the product with key.
func (c *Connector) GetProduct(key string) (catalog.Product, bool, error) {
	if err := c.inj.Enter(fault.OpProduct); err != nil {
		return catalog.Product{}, false, err
	}
	p, ok := c.snap.Product(key)
	return p, ok, nil
}

// GetProducts returns the products for keys, skipping unknown ones.
func (c *Connector) GetProducts(keys []string) ([]catalog.Product, error) {
	if err := c.inj.Enter(fault.OpProduct); err != nil {
		return nil, err
	}
	return c.snap.ProductsByKey(keys), nil
}

// GetQuoteLinesFromProduct turns a product into a single quote line. The
// line carries the product verdict as its status. An unknown product gives
// no lines.
func (c *Connector) GetQuoteLinesFromProduct(productKey string) ([]core.QuoteLine, error) {
	if err := c.inj.Enter(fault.OpProduct); err != nil {
		return nil, err
	}
	p, ok := c.snap.Product(productKey)
	if !ok {
		return []core.QuoteLine{}, nil
	}

	line := catalog.LineFromProduct(p, 1)
	if state, reason := c.inj.Status(fault.OpProduct); state != core.StateOK {
		line.AddStatus(state, reason)
	}
	if strings.TrimSpace(line.ERPQuoteLineKey) == "" {
		line.ERPQuoteLineKey = c.newKey()
	}
	return []core.QuoteLine{line}, nil
}

// GetNumberOfProductImages counts the images of a product.
func (c *Connector) GetNumberOfProductImages(productKey string) int {
	if !c.inj.Can(fault.ProvidePicture) {
		return 0
	}
	return c.snap.ImageCount(productKey)
}

// GetProductImage returns the image of a product at rank.
func (c *Connector) GetProductImage(productKey string, rank int) (string, bool) {
	if !c.inj.Can(fault.ProvidePicture) {
		return "", false
	}
	return c.snap.Image(productKey, rank)
}

// OnQuoteLineChanged clears the status of an edited line and reprices it.
func (c *Connector) OnQuoteLineChanged(line core.QuoteLine) core.QuoteLine {
	line.ClearStatus()
	line.Recalculate()
	return line
}

// RecalculateQuoteAlternative recomputes the totals of alt after applying
// the recalc modifiers. fail_recalc and warn_recalc set the alternative
// status; the totals are recomputed regardless.
func (c *Connector) RecalculateQuoteAlternative(alt core.QuoteAlternative) (core.QuoteAlternative, error) {
	if err := c.inj.Enter(fault.OpRecalc); err != nil {
		return core.QuoteAlternative{}, err
	}
	alt.Lines = slices.Clone(alt.Lines)

	if c.inj.Can(fault.Replace90PctLinesOnRecalc) {
		alt.Lines = replaceDiscounted(alt.Lines)
	}
	if c.inj.Can(fault.RemoveFirstLineOnRecalc) && len(alt.Lines) > 0 {
		alt.Lines = alt.Lines[1:]
	}
	alt.Recalculate()

	if state, reason := c.inj.Status(fault.OpRecalc); state != core.StateOK {
		alt.AddStatus(state, reason)
	}
	return alt, nil
}

// replaceDiscounted swaps every line discounted by 90 % or more for Quantity
// single-unit lines named "<name> #n" at replacementPrice.
func replaceDiscounted(lines []core.QuoteLine) []core.QuoteLine {
	kept := make([]core.QuoteLine, 0, len(lines))
	var added []core.QuoteLine
	for _, l := range lines {
		if l.DiscountPercent < 90 {
			kept = append(kept, l)
			continue
		}
		for n := 1; n <= int(l.Quantity); n++ {
			added = append(added, core.QuoteLine{
				ERPQuoteLineKey:  l.ERPQuoteLineKey,
				ERPProductKey:    l.ERPProductKey,
				Code:             l.Code,
				Name:             fmt.Sprintf("%s #%d", l.Name, n),
				Description:      l.Description,
				QuantityUnit:     l.QuantityUnit,
				PriceUnit:        l.PriceUnit,
				Quantity:         1,
				UnitCost:         replacementPrice,
				UnitMinimumPrice: replacementPrice,
				UnitListPrice:    replacementPrice,
			})
		}
	}

	out := append(kept, added...)
	for i := len(kept); i < len(out); i++ {
		out[i].Rank = i + 1
	}
	return out
}
