package core

import "testing"

func TestQuoteLineRecalculate(t *testing.T) {
	tests := []struct {
		name      string
		line      QuoteLine
		wantSub   float64
		wantDisc  float64
		wantTotal float64
	}{
		{"no discount", QuoteLine{Quantity: 2, UnitListPrice: 50}, 100, 0, 100},
		{"user discount", QuoteLine{Quantity: 2, UnitListPrice: 50, DiscountPercent: 10}, 100, 10, 90},
		{"erp discount", QuoteLine{Quantity: 4, UnitListPrice: 25, ERPDiscountPercent: 20}, 100, 20, 80},
		{"user discount wins", QuoteLine{Quantity: 1, UnitListPrice: 100, DiscountPercent: 5, ERPDiscountPercent: 20}, 100, 5, 95},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := tt.line
			l.Recalculate()
			if l.SubTotal != tt.wantSub || l.DiscountAmount != tt.wantDisc || l.TotalPrice != tt.wantTotal {
				t.Errorf("got sub=%v disc=%v total=%v, want %v %v %v",
					l.SubTotal, l.DiscountAmount, l.TotalPrice, tt.wantSub, tt.wantDisc, tt.wantTotal)
			}
		})
	}
}

func TestQuoteAlternativeRecalculate(t *testing.T) {
	alt := QuoteAlternative{
		DiscountPercent: 50,
		Lines: []QuoteLine{
			{Quantity: 1, UnitListPrice: 100},
			{Quantity: 2, UnitListPrice: 50, DiscountPercent: 50},
		},
	}
	alt.Recalculate()

	if alt.SubTotal != 150 {
		t.Errorf("SubTotal = %v, want 150", alt.SubTotal)
	}
	if alt.TotalPrice != 75 {
		t.Errorf("TotalPrice = %v, want 75", alt.TotalPrice)
	}
}
