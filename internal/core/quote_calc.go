package core

// Recalculate derives the line's amounts from quantity, list price and
// discount. The user discount percent wins; otherwise the ERP discount
// percent applies.
func (l *QuoteLine) Recalculate() {
	l.SubTotal = l.Quantity * l.UnitListPrice

	pct := l.DiscountPercent
	if pct == 0 {
		pct = l.ERPDiscountPercent
	}
	l.DiscountAmount = l.SubTotal * pct / 100
	l.TotalPrice = l.SubTotal - l.DiscountAmount
}

// Recalculate recomputes every line and then the alternative totals.
func (a *QuoteAlternative) Recalculate() {
	a.SubTotal = 0
	for i := range a.Lines {
		a.Lines[i].Recalculate()
		a.SubTotal += a.Lines[i].TotalPrice
	}
	if a.DiscountPercent != 0 {
		a.DiscountAmount = a.SubTotal * a.DiscountPercent / 100
	}
	a.TotalPrice = a.SubTotal - a.DiscountAmount
}

// ClearStatus resets the status and reason.
func (l *QuoteLine) ClearStatus() {
	l.Status = ""
	l.Reason = ""
}
