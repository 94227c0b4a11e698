// Package fault reads the capability sheet of a quote workbook and gates
// connector operations on it.
//
// Every operation has up to three flags. cannot_<op> aborts the operation
// with a *Fault before it does anything. fail_<op> lets the operation run
// and then marks its result as an error. warn_<op> marks the result as a
// warning. cannot beats fail, and fail beats warn.
package fault

import (
	"fmt"
	"maps"
	"strconv"
	"strings"

	"github.com/JonMunkholm/sheetlink/internal/core"
	"github.com/JonMunkholm/sheetlink/internal/sheet"
)

// Feature capabilities.
const (
	ProvideCost                = "iproductprovider_provide_cost"
	ProvideMinimumPrice        = "iproductprovider_provide_minimumprice"
	ProvidePicture             = "iproductprovider_provide_picture"
	ProvideExtraData           = "iproductprovider_provide_extradata"
	ProvideStockData           = "iproductprovider_provide_stockdata"
	PerformComplexSearch       = "iproductprovider_perform_complex_search"
	PlaceOrder                 = "iorderconsumer_place_order"
	ProvideOrderState          = "iorderconsumer_provide_orderstate"
	SendOrderConfirmation      = "iorderconsumer_send_orderconfirmation"
	ProvideAddresses           = "iaddressprovider_provide_addresses"
	ProvideProductCategoryList = "ilistprovider_provide_productcategorylist"
	ProvideProductFamilyList   = "ilistprovider_provide_productfamilylist"
	ProvideProductTypeList     = "ilistprovider_provide_producttypelist"
	ProvidePaymentTermsList    = "ilistprovider_provide_paymenttermslist"
	ProvidePaymentTypeList     = "ilistprovider_provide_paymenttypelist"
	ProvideDeliveryTermsList   = "ilistprovider_provide_deliverytermslist"
	ProvideDeliveryTypeList    = "ilistprovider_provide_deliverytypelist"
)

// Modifier flags that change what an operation does rather than its outcome.
const (
	RemoveFirstLineOnRecalc   = "remove_first_line_on_recalc"
	Replace90PctLinesOnRecalc = "replace_90pct_lines_on_recalc"
	FailConfigureFieldRanks   = "fail_configure_field_ranks"
	FailConfigureFieldKeys    = "fail_configure_field_keys"
	SendQuoteURL              = "send_quote_url"
	PlaceOrderURL             = "place_order_url"
	SendQuoteSoProtocol       = "send_quote_soproto"
	PlaceOrderSoProtocol      = "place_order_soproto"
)

// ListCapability returns the capability that enables the named quote list,
// e.g. "PaymentTerms" -> "ilistprovider_provide_paymenttermslist".
func ListCapability(list string) string {
	return "ilistprovider_provide_" + strings.ToLower(list) + "list"
}

var defaults = map[string]bool{
	ProvideCost:                true,
	ProvideMinimumPrice:        true,
	ProvidePicture:             true,
	ProvideExtraData:           true,
	ProvideStockData:           true,
	ProvideProductCategoryList: true,
	ProvidePaymentTermsList:    true,
	ProvidePaymentTypeList:     true,
	ProvideDeliveryTermsList:   true,
	ProvideDeliveryTypeList:    true,
	ProvideAddresses:           true,
	PlaceOrder:                 false,
	ProvideOrderState:          false,
	SendOrderConfirmation:      false,
	ProvideProductFamilyList:   false,
	ProvideProductTypeList:     false,
	PerformComplexSearch:       false,
}

// Defaults returns a copy of the static capability table.
func Defaults() map[string]bool {
	return maps.Clone(defaults)
}

// Capabilities maps capability names to flags. Names are case-sensitive.
type Capabilities map[string]bool

// Can returns the flag for name. A name missing from the map falls back to
// the static default, and unknown names are false.
func (c Capabilities) Can(name string) bool {
	if v, ok := c[name]; ok {
		return v
	}
	return defaults[name]
}

// Effective returns the stored flags merged over the defaults.
func (c Capabilities) Effective() map[string]bool {
	out := Defaults()
	maps.Copy(out, c)
	return out
}

// Load reads the capability sheet (the first sheet) of doc. The header row
// is skipped; each following row holds a name and a boolean. A workbook
// whose first sheet is empty yields no capabilities.
func Load(doc *sheet.Document) (Capabilities, error) {
	caps := Capabilities{}

	name, ok := doc.SheetAt(0)
	if !ok {
		return caps, nil
	}
	ext, err := doc.Extent(name)
	if err != nil {
		return nil, err
	}

	for row := 2; row <= ext.Rows; row++ {
		key, err := doc.Cell(name, row, 1)
		if err != nil {
			return nil, err
		}
		capName := strings.TrimSpace(core.CellString(key))
		if capName == "" {
			continue
		}

		raw, err := doc.Cell(name, row, 2)
		if err != nil {
			return nil, err
		}
		flag, err := parseFlag(raw)
		if err != nil {
			return nil, fmt.Errorf("problem reading bool value from row %d, col 2 in sheet %s: %w", row, name, err)
		}
		caps[capName] = flag
	}
	return caps, nil
}

func parseFlag(v any) (bool, error) {
	switch x := v.(type) {
	case nil:
		return false, nil
	case bool:
		return x, nil
	case float64:
		return x != 0, nil
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return false, nil
		}
		b, err := strconv.ParseBool(s)
		if err != nil {
			return false, fmt.Errorf("%q is not a boolean: %w", s, core.ErrValidation)
		}
		return b, nil
	}
	return false, fmt.Errorf("%v is not a boolean: %w", v, core.ErrValidation)
}
