// Package ledger appends sent quotes and placed orders to the quote workbook
// as human-readable blocks.
package ledger

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/JonMunkholm/sheetlink/internal/core"
	"github.com/JonMunkholm/sheetlink/internal/core/entities"
	"github.com/JonMunkholm/sheetlink/internal/sheet"
)

// Block terminators.
const (
	EndOfQuote = "--end of quote--"
	EndOfOrder = "--end of order--"
)

var quoteHeader = []any{
	"ContactId", "ContactName", "ContactErpKey", "EISConnectionId", "QuoteErpKey", "OrderErpKey",
	"InvoiceAddr1", "InvoiceCity", "DeliveryAddr1", "DeliveryCity", "VersionId", "VerNumber", "VerRank",
}

var orderHeader = []any{
	"ContactId", "ContactName", "ContactErpKey", "EISConnectionId", "QuoteErpKey", "OrderErpKey",
	"PO Num", "Comment", "AltName", "AltErpKey", "AltTotal",
	"InvoiceAddr1", "InvoiceCity", "DeliveryAddr1", "DeliveryCity",
	"VersionId", "VerNumber", "VerRank", "Currency",
}

var lineHeader = []any{"Code", "Name", "LineErpKey", "ProdErpKey", "Quant", "Listprice", "DiscAmt", "Total"}

// GenerateKey returns six upper-case hex digits from a non-cryptographic
// source.
func GenerateKey() string {
	return fmt.Sprintf("%06X", rand.IntN(1<<24))
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithKeyGenerator replaces GenerateKey.
func WithKeyGenerator(gen func() string) Option {
	return func(l *Ledger) {
		l.newKey = gen
	}
}

// Ledger writes to the quote and order sheets of one document.
type Ledger struct {
	doc    *sheet.Document
	newKey func() string
}

// New returns a Ledger writing to doc.
func New(doc *sheet.Document, opts ...Option) *Ledger {
	l := &Ledger{doc: doc, newKey: GenerateKey}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// AppendQuote writes a block for the sent quote version and returns its quote
// key. A blank key is generated in lower case and stored in qc.
func (l *Ledger) AppendQuote(qc *core.QuoteContext) (string, error) {
	name, row, err := l.start(entities.OrdinalQuotes, quoteHeader)
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(qc.Quote.ERPQuoteKey) == "" {
		qc.Quote.ERPQuoteKey = strings.ToLower(l.newKey())
	}

	invoice, delivery := qc.Invoice(), qc.Delivery()
	summary := []any{
		qc.Contact.ContactID, qc.Contact.Name, contactErpKey(qc), qc.ConnectionID,
		qc.Quote.ERPQuoteKey, qc.Quote.ERPOrderKey,
		invoice.Line1, invoice.City, delivery.Line1, delivery.City,
		qc.Version.QuoteVersionID, qc.Version.Number, qc.Version.Rank,
	}
	if err := l.doc.WriteRow(name, row, 1, summary...); err != nil {
		return "", err
	}
	row++

	for _, alt := range qc.Alternatives {
		err := l.doc.WriteRow(name, row, 1,
			"AltName=", alt.Name, "AltErpKey=", alt.ERPQuoteAlternativeKey, "AltTotal=", alt.TotalPrice)
		if err != nil {
			return "", err
		}
		row++

		if row, err = l.writeLines(name, row, 3, alt.Lines); err != nil {
			return "", err
		}
	}

	if err := l.doc.WriteRow(name, row, 1, EndOfQuote); err != nil {
		return "", err
	}
	if err := l.doc.Save(); err != nil {
		return "", err
	}
	return qc.Quote.ERPQuoteKey, nil
}

// AppendOrder writes a block for an order placed on alt and returns the order
// key. A blank key is generated in upper case and stored in qc.
func (l *Ledger) AppendOrder(qc *core.QuoteContext, alt core.QuoteAlternative) (string, error) {
	name, row, err := l.start(entities.OrdinalOrders, orderHeader)
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(qc.Quote.ERPOrderKey) == "" {
		qc.Quote.ERPOrderKey = strings.ToUpper(l.newKey())
	}

	invoice, delivery := qc.Invoice(), qc.Delivery()
	summary := []any{
		qc.Contact.ContactID, qc.Contact.Name, contactErpKey(qc), qc.ConnectionID,
		qc.Quote.ERPQuoteKey, qc.Quote.ERPOrderKey,
		qc.Quote.PoNumber, qc.Quote.OrderComment,
		alt.Name, alt.ERPQuoteAlternativeKey, alt.TotalPrice,
		invoice.Line1, invoice.City, delivery.Line1, delivery.City,
		qc.Version.QuoteVersionID, qc.Version.Number, qc.Version.Rank,
		qc.Quote.Currency,
	}
	if err := l.doc.WriteRow(name, row, 1, summary...); err != nil {
		return "", err
	}
	row++

	if row, err = l.writeLines(name, row, 1, alt.Lines); err != nil {
		return "", err
	}

	if err := l.doc.WriteRow(name, row, 1, EndOfOrder); err != nil {
		return "", err
	}
	if err := l.doc.Save(); err != nil {
		return "", err
	}
	return qc.Quote.ERPOrderKey, nil
}

// start resolves the sheet at ordinal, writes header when the sheet is empty,
// and returns the first free row below the populated extent.
func (l *Ledger) start(ordinal int, header []any) (string, int, error) {
	name, ok := l.doc.SheetAt(ordinal)
	if !ok {
		return "", 0, fmt.Errorf("ledger sheet %d missing from '%s': %w", ordinal, l.doc.Path(), core.ErrNotFound)
	}
	ext, err := l.doc.Extent(name)
	if err != nil {
		return "", 0, err
	}
	if ext.Empty() {
		if err := l.doc.WriteRow(name, 1, 1, header...); err != nil {
			return "", 0, err
		}
		return name, 2, nil
	}
	return name, ext.Rows + 1, nil
}

// writeLines writes the line header and one row per line starting at col,
// returning the next free row.
func (l *Ledger) writeLines(name string, row, col int, lines []core.QuoteLine) (int, error) {
	if err := l.doc.WriteRow(name, row, col, lineHeader...); err != nil {
		return 0, err
	}
	row++

	for _, line := range lines {
		err := l.doc.WriteRow(name, row, col,
			line.Code, line.Name, line.ERPQuoteLineKey, line.ERPProductKey,
			line.Quantity, line.UnitListPrice, line.DiscountAmount, line.TotalPrice)
		if err != nil {
			return 0, err
		}
		row++
	}
	return row, nil
}

func contactErpKey(qc *core.QuoteContext) string {
	if qc.ContactErpKey != "" {
		return qc.ContactErpKey
	}
	return qc.Contact.ERPCompanyKey
}
