package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/JonMunkholm/sheetlink/internal/core"
)

// AddressKind tells invoice and delivery addresses apart.
type AddressKind string

const (
	AddressInvoice  AddressKind = "Invoice"
	AddressDelivery AddressKind = "Delivery"
)

// ContactAddress is one row of the address sheet.
type ContactAddress struct {
	ContactKey string       `json:"contactKey"`
	Kind       AddressKind  `json:"kind"`
	Address    core.Address `json:"address"`
}

// PriceList is one row of the price list sheet. A zero ValidFrom or ValidTo
// leaves that end of the validity open.
type PriceList struct {
	Key         string    `json:"key"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Currency    string    `json:"currency"`
	ValidFrom   time.Time `json:"validFrom"`
	ValidTo     time.Time `json:"validTo"`
	IsActive    bool      `json:"isActive"`
}

// ActiveAt reports whether the list is active and valid at t.
func (p PriceList) ActiveAt(t time.Time) bool {
	if !p.IsActive {
		return false
	}
	if !p.ValidFrom.IsZero() && t.Before(p.ValidFrom) {
		return false
	}
	if !p.ValidTo.IsZero() && t.After(p.ValidTo) {
		return false
	}
	return true
}

// Product is one row of the product sheet.
type Product struct {
	PriceListKey string   `json:"priceListKey"`
	InAssortment bool     `json:"inAssortment"`
	InStock      float64  `json:"inStock"`
	Key          string   `json:"key"`
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	Code         string   `json:"code,omitempty"`
	QuantityUnit string   `json:"quantityUnit,omitempty"`
	PriceUnit    string   `json:"priceUnit,omitempty"`
	ItemNumber   string   `json:"itemNumber,omitempty"`
	URL          string   `json:"url,omitempty"`
	CategoryKey  string   `json:"categoryKey,omitempty"`
	FamilyKey    string   `json:"familyKey,omitempty"`
	TypeKey      string   `json:"typeKey,omitempty"`
	Rights       string   `json:"rights,omitempty"`
	Rule         string   `json:"rule,omitempty"`
	SupplierCode string   `json:"supplierCode,omitempty"`
	Supplier     string   `json:"supplier,omitempty"`
	VATInfo      string   `json:"vatInfo,omitempty"`
	VAT          float64  `json:"vat"`
	UnitCost     float64  `json:"unitCost"`
	MinimumPrice float64  `json:"minimumPrice"`
	ListPrice    float64  `json:"listPrice"`
	Thumbnail    string   `json:"thumbnail,omitempty"`
	ExtraInfo    string   `json:"extraInfo,omitempty"`
	ExtraField1  string   `json:"extraField1,omitempty"`
	ExtraField2  string   `json:"extraField2,omitempty"`
	ExtraField3  string   `json:"extraField3,omitempty"`
	ExtraField4  string   `json:"extraField4,omitempty"`
	ExtraField5  string   `json:"extraField5,omitempty"`
	Images       []string `json:"-"`
}

// Snapshot is everything read from one quote workbook.
type Snapshot struct {
	Addresses  []ContactAddress
	PriceLists []PriceList
	Products   []Product
	Lists      map[string][]core.ListItem
}

// Validate checks that keys are unique within every list, within the price
// lists, and within the products of each price list.
func (s *Snapshot) Validate() core.Result {
	if dup, ok := firstDuplicate(len(s.PriceLists), func(i int) string { return s.PriceLists[i].Key }); ok {
		return duplicateResult("PriceLists", dup)
	}
	if dup, ok := firstDuplicate(len(s.Products), func(i int) string {
		return s.Products[i].PriceListKey + "\x00" + s.Products[i].Key
	}); ok {
		return duplicateResult("Products", strings.ReplaceAll(dup, "\x00", "/"))
	}
	for _, name := range ListNames() {
		items := s.Lists[name]
		if dup, ok := firstDuplicate(len(items), func(i int) string { return items[i].Key }); ok {
			return duplicateResult(name, dup)
		}
	}
	return core.OK()
}

func firstDuplicate(n int, key func(int) string) (string, bool) {
	seen := make(map[string]struct{}, n)
	for i := range n {
		k := key(i)
		if _, ok := seen[k]; ok {
			return k, true
		}
		seen[k] = struct{}{}
	}
	return "", false
}

func duplicateResult(name, key string) core.Result {
	r := core.Fail(
		fmt.Sprintf("All items in '%s' must have a unique key.", name),
		fmt.Sprintf("Some items in %s had the same key '%s'.", name, key),
	)
	r.Code = "VAL003"
	return r
}

// FindProducts returns the products of priceListKey (any list when blank)
// whose name, code or description contains input, ignoring case. Blank input
// matches every product.
func (s *Snapshot) FindProducts(priceListKey, input string) []Product {
	needle := strings.ToLower(strings.TrimSpace(input))

	var out []Product
	for _, p := range s.Products {
		if priceListKey != "" && !strings.EqualFold(p.PriceListKey, priceListKey) {
			continue
		}
		if needle == "" ||
			strings.Contains(strings.ToLower(p.Name), needle) ||
			strings.Contains(strings.ToLower(p.Code), needle) ||
			strings.Contains(strings.ToLower(p.Description), needle) {
			out = append(out, p)
		}
	}
	return out
}

// Product returns the first product with key.
func (s *Snapshot) Product(key string) (Product, bool) {
	for _, p := range s.Products {
		if p.Key == key {
			return p, true
		}
	}
	return Product{}, false
}

// ProductsByKey returns the products for keys in the order given; unknown
// keys are skipped.
func (s *Snapshot) ProductsByKey(keys []string) []Product {
	out := make([]Product, 0, len(keys))
	for _, k := range keys {
		if p, ok := s.Product(k); ok {
			out = append(out, p)
		}
	}
	return out
}

// AllPriceLists returns the price lists in currency; a blank currency
// returns all of them.
func (s *Snapshot) AllPriceLists(currency string) []PriceList {
	var out []PriceList
	for _, p := range s.PriceLists {
		if currency == "" || strings.EqualFold(p.Currency, currency) {
			out = append(out, p)
		}
	}
	return out
}

// ActivePriceLists returns the price lists in currency that are active at now.
func (s *Snapshot) ActivePriceLists(currency string, now time.Time) []PriceList {
	var out []PriceList
	for _, p := range s.AllPriceLists(currency) {
		if p.ActiveAt(now) {
			out = append(out, p)
		}
	}
	return out
}

// ImageCount returns the number of non-blank images of the product.
func (s *Snapshot) ImageCount(key string) int {
	p, ok := s.Product(key)
	if !ok {
		return 0
	}
	n := 0
	for _, img := range p.Images {
		if img != "" {
			n++
		}
	}
	return n
}

// Image returns the image of the product at rank (0-based), skipping blanks.
func (s *Snapshot) Image(key string, rank int) (string, bool) {
	p, ok := s.Product(key)
	if !ok {
		return "", false
	}
	i := 0
	for _, img := range p.Images {
		if img == "" {
			continue
		}
		if i == rank {
			return img, true
		}
		i++
	}
	return "", false
}

// LineFromProduct builds a priced quote line for qty units of p.
func LineFromProduct(p Product, qty float64) core.QuoteLine {
	line := core.QuoteLine{
		ERPProductKey:      p.Key,
		Code:               p.Code,
		Name:               p.Name,
		Description:        p.Description,
		ItemNumber:         p.ItemNumber,
		QuantityUnit:       p.QuantityUnit,
		PriceUnit:          p.PriceUnit,
		URL:                p.URL,
		ProductCategoryKey: p.CategoryKey,
		ProductFamilyKey:   p.FamilyKey,
		ProductTypeKey:     p.TypeKey,
		Supplier:           p.Supplier,
		SupplierCode:       p.SupplierCode,
		VATInfo:            p.VATInfo,
		VAT:                p.VAT,
		Quantity:           qty,
		InStock:            p.InStock,
		UnitCost:           p.UnitCost,
		UnitMinimumPrice:   p.MinimumPrice,
		UnitListPrice:      p.ListPrice,
		ExtraField1:        p.ExtraField1,
		ExtraField2:        p.ExtraField2,
		ExtraField3:        p.ExtraField3,
		ExtraField4:        p.ExtraField4,
		ExtraField5:        p.ExtraField5,
	}
	line.Recalculate()
	return line
}

// List returns the items of the named list (case-insensitive). Unknown
// names return false.
func (s *Snapshot) List(name string) ([]core.ListItem, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if _, ok := listEntities[name]; !ok {
		return nil, false
	}
	return s.Lists[name], true
}

// Address returns the first address of kind for contactKey.
func (s *Snapshot) Address(contactKey string, kind AddressKind) (core.Address, bool) {
	for _, a := range s.Addresses {
		if a.ContactKey == contactKey && a.Kind == kind {
			return a.Address, true
		}
	}
	return core.Address{}, false
}

// ContactAddresses returns the invoice and delivery addresses of contactKey, in
// that order, leaving out the ones that are missing.
func (s *Snapshot) ContactAddresses(contactKey string) []core.Address {
	var out []core.Address
	for _, kind := range []AddressKind{AddressInvoice, AddressDelivery} {
		if a, ok := s.Address(contactKey, kind); ok {
			out = append(out, a)
		}
	}
	return out
}
