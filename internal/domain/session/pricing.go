package session

import "github.com/shopspring/decimal"

// TotalExtraCharge sums the extra charges of all selections. Every extra
// charge is non-negative, so the total never goes below zero. The sum is
// recomputed on every call; nothing here may be cached against mutations.
func (s *State) TotalExtraCharge() decimal.Decimal {
	total := decimal.Zero
	for _, sel := range s.Selections {
		total = total.Add(sel.ExtraCharge)
	}
	return total.Round(2)
}

// FinalPrice is the combo base price plus the total extra charge. Holds at
// every intermediate state, not just at finish.
func (s *State) FinalPrice() decimal.Decimal {
	return s.Template.BasePrice.Add(s.TotalExtraCharge()).Round(2)
}
