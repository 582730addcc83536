package checkout

import "salespoint/pkg/domain"

// TaxRate is the flat display tax applied when rendering a completed sale.
// Tax is presentation-only: it is never part of TotalAmount and never
// persisted.
const TaxRate = 0.10

// Receipt is the display view of a completed sale.
type Receipt struct {
	Transaction domain.Transaction
	Subtotal    float64
	Tax         float64
	Total       float64
}

// BuildReceipt derives the display figures from a completed transaction.
func BuildReceipt(tx domain.Transaction) Receipt {
	subtotal := tx.TotalAmount
	return Receipt{
		Transaction: tx.Clone(),
		Subtotal:    subtotal,
		Tax:         subtotal * TaxRate,
		Total:       subtotal * (1 + TaxRate),
	}
}
