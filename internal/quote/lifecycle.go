package quote

import (
	"context"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/JonMunkholm/sheetlink/internal/core"
	"github.com/JonMunkholm/sheetlink/internal/fault"
	"github.com/JonMunkholm/sheetlink/internal/ledger"
	"github.com/JonMunkholm/sheetlink/internal/logging"
	"github.com/JonMunkholm/sheetlink/internal/sheet"
)

// Links returned by the url and soprotocol modifiers.
const (
	SentQuoteURL        = "http://www.visma.no/"
	SentQuoteSoProtocol = "superoffice:contact.main?contact_id=2"
	PlacedOrderURL      = "http://qa-build/echo.asp"
	PlacedOrderProtocol = "superoffice:project.main"
)

// gate runs Enter and Apply for a hook without a side effect.
func (c *Connector) gate(op fault.Operation) (core.Result, error) {
	if err := c.inj.Enter(op); err != nil {
		return core.Result{}, err
	}
	res := core.OK()
	c.inj.Apply(op, &res)
	return res, nil
}

// OnBeforeCreateQuote runs before the CRM creates a quote.
func (c *Connector) OnBeforeCreateQuote(qc *core.QuoteContext) (core.Result, error) {
	return c.gate(fault.OpCreateQuote)
}

// OnBeforeCreateQuoteVersion runs before the CRM creates a version. A blank
// version key is filled in.
func (c *Connector) OnBeforeCreateQuoteVersion(qc *core.QuoteContext) (VersionResponse, error) {
	res, err := c.gate(fault.OpCreateVersion)
	if err != nil {
		return VersionResponse{}, err
	}
	v := qc.Version
	if strings.TrimSpace(v.ERPQuoteVersionKey) == "" {
		v.ERPQuoteVersionKey = c.newKey()
	}
	return VersionResponse{Result: res, Version: v}, nil
}

// OnBeforeCreateQuoteAlternative runs before the CRM creates an alternative.
// The alternative is the first one in qc; a blank key is filled in.
func (c *Connector) OnBeforeCreateQuoteAlternative(qc *core.QuoteContext) (AlternativeResponse, error) {
	res, err := c.gate(fault.OpCreateAlternative)
	if err != nil {
		return AlternativeResponse{}, err
	}
	var alt core.QuoteAlternative
	if len(qc.Alternatives) > 0 {
		alt = qc.Alternatives[0]
	}
	if strings.TrimSpace(alt.ERPQuoteAlternativeKey) == "" {
		alt.ERPQuoteAlternativeKey = c.newKey()
	}
	return AlternativeResponse{Result: res, Alternative: alt}, nil
}

// OnAfterSaveQuote runs after the CRM saved a quote.
func (c *Connector) OnAfterSaveQuote(qc *core.QuoteContext) error {
	return c.inj.Enter(fault.OpSave)
}

// OnBeforeDeleteQuote runs before the CRM deletes a quote.
func (c *Connector) OnBeforeDeleteQuote(qc *core.QuoteContext) error {
	return c.inj.Enter(fault.OpDelete)
}

// OnAfterSentQuoteVersion appends the sent version to the quote ledger. The
// ledger is written even when fail_send_quote marks the result as an error.
func (c *Connector) OnAfterSentQuoteVersion(ctx context.Context, qc *core.QuoteContext) (SentResponse, error) {
	if err := c.inj.Enter(fault.OpSendQuote); err != nil {
		return SentResponse{}, err
	}

	resp := SentResponse{Result: core.OK(), Version: qc.Version}
	key, err := c.withLedger(func(l *ledger.Ledger) (string, error) {
		return l.AppendQuote(qc)
	})
	if err != nil {
		resp.Result = core.ResultFromError(err)
	} else {
		resp.QuoteKey = key
		resp.Version.ERPQuoteVersionKey = key
		logging.FromContext(ctx).Debug("quote registered", "file", c.path, "quote_key", key)
	}
	c.inj.Apply(fault.OpSendQuote, &resp.Result)

	if c.inj.Can(fault.SendQuoteURL) {
		resp.URL = SentQuoteURL
	}
	if c.inj.Can(fault.SendQuoteSoProtocol) {
		resp.URL = SentQuoteSoProtocol
	}
	return resp, nil
}

// PlaceOrder appends an order for the first alternative of qc to the order
// ledger. The ledger is written even when fail_place_order is set.
func (c *Connector) PlaceOrder(ctx context.Context, qc *core.QuoteContext) (OrderResponse, error) {
	if err := c.inj.Enter(fault.OpPlaceOrder); err != nil {
		return OrderResponse{}, err
	}
	if len(qc.Alternatives) == 0 {
		return OrderResponse{}, core.ValidationError{Field: "alternatives", Message: "an order needs an alternative"}
	}
	alt := qc.Alternatives[0]

	resp := OrderResponse{Result: core.OK()}
	key, err := c.withLedger(func(l *ledger.Ledger) (string, error) {
		return l.AppendOrder(qc, alt)
	})
	if err != nil {
		resp.Result = core.ResultFromError(err)
	} else {
		resp.OrderKey = key
		logging.FromContext(ctx).Debug("order placed", "file", c.path, "order_key", key, "alternative", alt.Name)
	}
	c.inj.Apply(fault.OpPlaceOrder, &resp.Result)

	if c.inj.Can(fault.PlaceOrderURL) {
		q := url.Values{}
		q.Set("contact", qc.Contact.Name)
		q.Set("quotever", strconv.Itoa(qc.Version.Rank))
		q.Set("alt", alt.Name)
		q.Set("amount", strconv.FormatFloat(alt.TotalPrice, 'f', -1, 64))
		resp.URL = PlacedOrderURL + "?" + q.Encode()
	}
	if c.inj.Can(fault.PlaceOrderSoProtocol) {
		resp.URL = PlacedOrderProtocol
	}
	return resp, nil
}

// GetOrderState reports the state of the order of qc.
func (c *Connector) GetOrderState(qc *core.QuoteContext) (core.Result, error) {
	return c.gate(fault.OpOrderState)
}

// withLedger opens the workbook for writing and runs fn on its ledger.
func (c *Connector) withLedger(fn func(*ledger.Ledger) (string, error)) (string, error) {
	doc, err := sheet.Open(c.path, sheet.WithClock(c.now))
	if err != nil {
		return "", err
	}
	defer doc.Close()

	return fn(ledger.New(doc, ledger.WithKeyGenerator(c.newKey)))
}

// ValidateQuoteVersion checks a version before action. A failing version
// keeps its state; a warned one falls back to Draft unless an order is being
// placed, and need_validate_ver asks for approval.
func (c *Connector) ValidateQuoteVersion(qc *core.QuoteContext, action core.QuoteAction) (core.QuoteVersion, error) {
	if err := c.inj.Enter(fault.OpValidateVersion); err != nil {
		return core.QuoteVersion{}, err
	}
	v := qc.Version

	state, reason := c.inj.Status(fault.OpValidateVersion)
	switch c.inj.Verdict(fault.OpValidateVersion) {
	case fault.Failed:
		v.AddStatus(state, reason)
	case fault.Warned:
		v.AddStatus(state, reason)
		if action != core.ActionPlaceOrder {
			v.State = core.VersionDraft
		}
	}
	if c.inj.NeedsValidation(fault.OpValidateVersion) {
		v.State = core.VersionDraftNeedsApproval
	}
	return v, nil
}

// ValidateQuoteAlternative checks an alternative.
func (c *Connector) ValidateQuoteAlternative(alt core.QuoteAlternative) (core.QuoteAlternative, error) {
	if err := c.inj.Enter(fault.OpValidateAlternative); err != nil {
		return core.QuoteAlternative{}, err
	}
	if state, reason := c.inj.Status(fault.OpValidateAlternative); state != core.StateOK {
		alt.AddStatus(state, reason)
	}
	return alt, nil
}

// ValidateQuoteLine checks a line.
func (c *Connector) ValidateQuoteLine(line core.QuoteLine) (core.QuoteLine, error) {
	if err := c.inj.Enter(fault.OpValidateLine); err != nil {
		return core.QuoteLine{}, err
	}
	if state, reason := c.inj.Status(fault.OpValidateLine); state != core.StateOK {
		line.AddStatus(state, reason)
	}
	return line, nil
}

// UpdateQuoteVersionPrices refreshes every line from the ERP price rules:
// list price up 10 %, ERP discount 10 % and cost down 11 %.
func (c *Connector) UpdateQuoteVersionPrices(qc *core.QuoteContext) (PricesResponse, error) {
	if err := c.inj.Enter(fault.OpUpdate); err != nil {
		return PricesResponse{}, err
	}

	resp := PricesResponse{
		Result:       core.OK(),
		Version:      qc.Version,
		Alternatives: make([]core.QuoteAlternative, len(qc.Alternatives)),
	}
	for i, alt := range qc.Alternatives {
		alt.Lines = append([]core.QuoteLine(nil), alt.Lines...)
		for j := range alt.Lines {
			line := &alt.Lines[j]
			line.UnitListPrice = round(line.UnitListPrice * 1.1)
			line.ERPDiscountPercent = 10
			line.UnitCost = round(line.UnitCost * 0.89)
		}
		alt.Recalculate()
		resp.Alternatives[i] = alt
	}

	if c.inj.Apply(fault.OpUpdate, &resp.Result) != fault.Normal {
		state, reason := c.inj.Status(fault.OpUpdate)
		resp.Version.State = core.VersionDraft
		resp.Version.AddStatus(state, reason)
	}
	resp.LastRecalculated = c.now()
	return resp, nil
}

// round keeps prices at cent precision.
func round(v float64) float64 {
	return math.Round(v*100) / 100
}
