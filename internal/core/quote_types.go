package core

import "strings"

// Address is a postal address attached to a contact or quote.
type Address struct {
	Line1       string `json:"line1,omitempty"`
	Line2       string `json:"line2,omitempty"`
	Line3       string `json:"line3,omitempty"`
	City        string `json:"city,omitempty"`
	Zip         string `json:"zip,omitempty"`
	CountryCode string `json:"countryCode,omitempty"`
	Country     string `json:"country,omitempty"`
}

// IsZero reports whether no part of the address is set.
func (a Address) IsZero() bool {
	return a == Address{}
}

// Contact is the company a quote is made for.
type Contact struct {
	ContactID     int     `json:"contactId"`
	Name          string  `json:"name"`
	ERPCompanyKey string  `json:"erpCompanyKey,omitempty"`
	PostalAddress Address `json:"postalAddress"`
	StreetAddress Address `json:"streetAddress"`
}

// Quote is the header of a quote.
type Quote struct {
	QuoteID      int    `json:"quoteId"`
	ERPQuoteKey  string `json:"erpQuoteKey,omitempty"`
	ERPOrderKey  string `json:"erpOrderKey,omitempty"`
	PoNumber     string `json:"poNumber,omitempty"`
	OrderComment string `json:"orderComment,omitempty"`
	Currency     string `json:"currency,omitempty"`
}

// VersionState is the lifecycle state of a quote version.
type VersionState string

const (
	VersionDraft              VersionState = "Draft"
	VersionDraftNeedsApproval VersionState = "DraftNeedsApproval"
	VersionApproved           VersionState = "DraftApproved"
	VersionSent               VersionState = "Sent"
	VersionSold               VersionState = "Sold"
	VersionLost               VersionState = "Lost"
)

// QuoteAction is what the user is about to do when a version is validated.
type QuoteAction string

const (
	ActionNone            QuoteAction = "None"
	ActionRequestApproval QuoteAction = "RequestApproval"
	ActionSend            QuoteAction = "Send"
	ActionPlaceOrder      QuoteAction = "PlaceOrder"
)

// QuoteVersion is one revision of a quote.
type QuoteVersion struct {
	QuoteVersionID     int          `json:"quoteVersionId"`
	Number             int          `json:"number"`
	Rank               int          `json:"rank"`
	ERPQuoteVersionKey string       `json:"erpQuoteVersionKey,omitempty"`
	State              VersionState `json:"state,omitempty"`
	Status             State        `json:"status,omitempty"`
	Reason             string       `json:"reason,omitempty"`
}

// QuoteAlternative is one priced alternative of a version with its lines.
type QuoteAlternative struct {
	QuoteAlternativeID     int         `json:"quoteAlternativeId"`
	Name                   string      `json:"name"`
	ERPQuoteAlternativeKey string      `json:"erpQuoteAlternativeKey,omitempty"`
	DiscountPercent        float64     `json:"discountPercent"`
	DiscountAmount         float64     `json:"discountAmount"`
	SubTotal               float64     `json:"subTotal"`
	TotalPrice             float64     `json:"totalPrice"`
	Status                 State       `json:"status,omitempty"`
	Reason                 string      `json:"reason,omitempty"`
	Lines                  []QuoteLine `json:"lines"`
}

// QuoteLine is a product line on an alternative.
type QuoteLine struct {
	QuoteLineID        int     `json:"quoteLineId"`
	ERPQuoteLineKey    string  `json:"erpQuoteLineKey,omitempty"`
	ERPProductKey      string  `json:"erpProductKey,omitempty"`
	Code               string  `json:"code,omitempty"`
	Name               string  `json:"name"`
	Description        string  `json:"description,omitempty"`
	ItemNumber         string  `json:"itemNumber,omitempty"`
	QuantityUnit       string  `json:"quantityUnit,omitempty"`
	PriceUnit          string  `json:"priceUnit,omitempty"`
	URL                string  `json:"url,omitempty"`
	ProductCategoryKey string  `json:"productCategoryKey,omitempty"`
	ProductFamilyKey   string  `json:"productFamilyKey,omitempty"`
	ProductTypeKey     string  `json:"productTypeKey,omitempty"`
	Supplier           string  `json:"supplier,omitempty"`
	SupplierCode       string  `json:"supplierCode,omitempty"`
	VATInfo            string  `json:"vatInfo,omitempty"`
	VAT                float64 `json:"vat"`
	Quantity           float64 `json:"quantity"`
	InStock            float64 `json:"inStock"`
	UnitCost           float64 `json:"unitCost"`
	UnitMinimumPrice   float64 `json:"unitMinimumPrice"`
	UnitListPrice      float64 `json:"unitListPrice"`
	SubTotal           float64 `json:"subTotal"`
	DiscountPercent    float64 `json:"discountPercent"`
	DiscountAmount     float64 `json:"discountAmount"`
	ERPDiscountPercent float64 `json:"erpDiscountPercent"`
	TotalPrice         float64 `json:"totalPrice"`
	ExtraField1        string  `json:"extraField1,omitempty"`
	ExtraField2        string  `json:"extraField2,omitempty"`
	ExtraField3        string  `json:"extraField3,omitempty"`
	ExtraField4        string  `json:"extraField4,omitempty"`
	ExtraField5        string  `json:"extraField5,omitempty"`
	Rank               int     `json:"rank"`
	Status             State   `json:"status,omitempty"`
	Reason             string  `json:"reason,omitempty"`
}

// AddStatus raises the line status to s if s is more severe and appends reason.
func (l *QuoteLine) AddStatus(s State, reason string) {
	if severity(s) > severity(l.Status) {
		l.Status = s
	}
	l.Reason = appendReason(l.Reason, reason)
}

// AddStatus raises the alternative status to s if s is more severe and appends reason.
func (a *QuoteAlternative) AddStatus(s State, reason string) {
	if severity(s) > severity(a.Status) {
		a.Status = s
	}
	a.Reason = appendReason(a.Reason, reason)
}

// AddStatus raises the version status to s if s is more severe and appends reason.
func (v *QuoteVersion) AddStatus(s State, reason string) {
	if severity(s) > severity(v.Status) {
		v.Status = s
	}
	v.Reason = appendReason(v.Reason, reason)
}

func appendReason(existing, reason string) string {
	reason = strings.TrimSpace(reason)
	switch {
	case reason == "":
		return existing
	case existing == "":
		return reason
	default:
		return existing + "; " + reason
	}
}

// QuoteContext carries everything known about the quote being processed.
type QuoteContext struct {
	ConnectionID    int                `json:"connectionId"`
	ContactErpKey   string             `json:"contactErpKey,omitempty"`
	Contact         Contact            `json:"contact"`
	Quote           Quote              `json:"quote"`
	Version         QuoteVersion       `json:"version"`
	Alternatives    []QuoteAlternative `json:"alternatives"`
	InvoiceAddress  *Address           `json:"invoiceAddress,omitempty"`
	DeliveryAddress *Address           `json:"deliveryAddress,omitempty"`
}

// Invoice returns the invoice address, falling back to the contact's postal address.
func (c *QuoteContext) Invoice() Address {
	if c.InvoiceAddress != nil && !c.InvoiceAddress.IsZero() {
		return *c.InvoiceAddress
	}
	return c.Contact.PostalAddress
}

// Delivery returns the delivery address, falling back to the contact's street address.
func (c *QuoteContext) Delivery() Address {
	if c.DeliveryAddress != nil && !c.DeliveryAddress.IsZero() {
		return *c.DeliveryAddress
	}
	return c.Contact.StreetAddress
}
