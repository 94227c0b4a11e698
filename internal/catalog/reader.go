// Package catalog reads the product side of a quote workbook: price lists,
// products, contact addresses and the quote lists, all addressed by sheet
// ordinal and read by column position.
package catalog

import (
	"fmt"
	"strings"

	"github.com/JonMunkholm/sheetlink/internal/core"
	"github.com/JonMunkholm/sheetlink/internal/core/entities"
	"github.com/JonMunkholm/sheetlink/internal/fault"
	"github.com/JonMunkholm/sheetlink/internal/sheet"
)

// Gate answers capability questions. fault.Capabilities and *fault.Injector
// both satisfy it.
type Gate interface {
	Can(name string) bool
}

// List names accepted by Snapshot.List.
const (
	ListProductCategory = "productcategory"
	ListProductFamily   = "productfamily"
	ListProductType     = "producttype"
	ListPaymentTerms    = "paymentterms"
	ListPaymentType     = "paymenttype"
	ListDeliveryTerms   = "deliveryterms"
	ListDeliveryType    = "deliverytype"
)

var listEntities = map[string]core.EntityType{
	ListProductCategory: core.EntityProductCategory,
	ListProductFamily:   core.EntityProductFamily,
	ListProductType:     core.EntityProductType,
	ListPaymentTerms:    core.EntityPaymentTerm,
	ListPaymentType:     core.EntityPaymentType,
	ListDeliveryTerms:   core.EntityDeliveryTerm,
	ListDeliveryType:    core.EntityDeliveryType,
}

// ListNames returns the supported list names.
func ListNames() []string {
	return []string{
		ListProductCategory, ListProductFamily, ListProductType,
		ListPaymentTerms, ListPaymentType, ListDeliveryTerms, ListDeliveryType,
	}
}

// Reader reads catalog sheets using the definitions of a registry.
type Reader struct {
	reg *core.Registry
}

// NewReader returns a Reader over reg.
func NewReader(reg *core.Registry) *Reader {
	return &Reader{reg: reg}
}

// Read loads a Snapshot from doc. Columns whose capability is off are not
// read and stay zero.
func Read(doc *sheet.Document, gate Gate) (*Snapshot, error) {
	return NewReader(entities.Default()).Read(doc, gate)
}

// Read loads a Snapshot from doc.
func (r *Reader) Read(doc *sheet.Document, gate Gate) (*Snapshot, error) {
	snap := &Snapshot{Lists: make(map[string][]core.ListItem, len(listEntities))}

	if gate.Can(fault.ProvideAddresses) {
		rows, err := r.table(doc, core.EntityAddress)
		if err != nil {
			return nil, err
		}
		for _, rec := range rows {
			snap.Addresses = append(snap.Addresses, addressFrom(rec))
		}
	}

	rows, err := r.table(doc, core.EntityPriceList)
	if err != nil {
		return nil, err
	}
	for _, rec := range rows {
		snap.PriceLists = append(snap.PriceLists, priceListFrom(rec))
	}

	rows, err = r.table(doc, core.EntityProduct)
	if err != nil {
		return nil, err
	}
	for _, rec := range rows {
		snap.Products = append(snap.Products, productFrom(rec, gate))
	}

	for name, t := range listEntities {
		rows, err := r.table(doc, t)
		if err != nil {
			return nil, err
		}
		items := make([]core.ListItem, 0, len(rows))
		for _, rec := range rows {
			items = append(items, core.ListItem{
				Key:                rec.String("key"),
				DisplayDescription: rec.String("displayDescription"),
				DisplayValue:       rec.String("displayValue"),
			})
		}
		snap.Lists[name] = items
	}

	return snap, nil
}

// table reads the sheet at the ordinal of t, mapping column i to field i.
// Rows that are entirely blank are skipped. A missing sheet yields no rows.
func (r *Reader) table(doc *sheet.Document, t core.EntityType) ([]*sheet.Record, error) {
	def, ok := r.reg.Get(t)
	if !ok {
		return nil, fmt.Errorf("entity type %s: %w", t, core.ErrNotFound)
	}
	name, ok := doc.SheetAt(def.Ordinal)
	if !ok {
		return nil, nil
	}
	ext, err := doc.Extent(name)
	if err != nil {
		return nil, err
	}

	var rows []*sheet.Record
	for row := 2; row <= ext.Rows; row++ {
		rec := sheet.NewRecord(name, row)
		blank := true
		for i, f := range def.Fields {
			v, err := doc.Cell(name, row, i+1)
			if err != nil {
				return nil, err
			}
			if v != nil {
				blank = false
			}
			rec.Set(f.Key, v)
		}
		if !blank {
			rows = append(rows, rec)
		}
	}
	return rows, nil
}

func value(rec *sheet.Record, key string) any {
	v, _ := rec.Get(key)
	return v
}

func addressFrom(rec *sheet.Record) ContactAddress {
	kind := AddressDelivery
	if strings.EqualFold(strings.TrimSpace(rec.String("type")), string(AddressInvoice)) {
		kind = AddressInvoice
	}
	return ContactAddress{
		ContactKey: rec.String("contactKey"),
		Kind:       kind,
		Address: core.Address{
			Line1:       rec.String("line1"),
			Line2:       rec.String("line2"),
			Line3:       rec.String("line3"),
			City:        rec.String("city"),
			Zip:         rec.String("zip"),
			CountryCode: rec.String("countryCode"),
			Country:     rec.String("country"),
		},
	}
}

func priceListFrom(rec *sheet.Record) PriceList {
	return PriceList{
		Key:         rec.String("key"),
		Name:        rec.String("name"),
		Description: rec.String("description"),
		Currency:    rec.String("currency"),
		ValidFrom:   core.ToTime(value(rec, "validFrom")),
		ValidTo:     core.ToTime(value(rec, "validTo")),
		IsActive:    core.ToBool(value(rec, "isActive")),
	}
}

func productFrom(rec *sheet.Record, gate Gate) Product {
	p := Product{
		PriceListKey: rec.String("pricelistKey"),
		InAssortment: core.ToBool(value(rec, "inAssortment")),
		Key:          rec.String("productKey"),
		Name:         rec.String("name"),
		Description:  rec.String("description"),
		Code:         rec.String("code"),
		QuantityUnit: rec.String("quantityUnit"),
		PriceUnit:    rec.String("priceUnit"),
		ItemNumber:   rec.String("itemNumber"),
		URL:          rec.String("url"),
		CategoryKey:  rec.String("categoryKey"),
		FamilyKey:    rec.String("familyKey"),
		TypeKey:      rec.String("typeKey"),
		Rights:       rec.String("rights"),
		Rule:         rec.String("rule"),
		SupplierCode: rec.String("supplierCode"),
		Supplier:     rec.String("supplier"),
		VATInfo:      rec.String("vatInfo"),
		VAT:          core.ToFloat(value(rec, "vat")),
		ListPrice:    core.ToFloat(value(rec, "listPrice")),
		Thumbnail:    rec.String("thumbnail"),
		ExtraField1:  rec.String("extraField1"),
		ExtraField2:  rec.String("extraField2"),
		ExtraField3:  rec.String("extraField3"),
		ExtraField4:  rec.String("extraField4"),
		ExtraField5:  rec.String("extraField5"),
	}

	if gate.Can(fault.ProvideStockData) {
		p.InStock = core.ToFloat(value(rec, "inStock"))
	}
	if gate.Can(fault.ProvideCost) {
		p.UnitCost = core.ToFloat(value(rec, "unitCost"))
	}
	if gate.Can(fault.ProvideMinimumPrice) {
		p.MinimumPrice = core.ToFloat(value(rec, "minimumPrice"))
	}
	if gate.Can(fault.ProvideExtraData) {
		p.ExtraInfo = rec.String("extraInfo")
	}
	if gate.Can(fault.ProvidePicture) {
		p.Images = []string{rec.String("image1"), rec.String("image2")}
	}
	return p
}
