package models

// LineItem represents a single line on a receipt.
type LineItem struct {
	// ID is the unique identifier for the item (UUID format).
	ID string

	// Quantity is how many units the line covers. Defaults to 1 when the
	// receipt does not say. Fractional quantities are allowed.
	Quantity float64

	// Name is the item description as printed (e.g., "Burger").
	Name string

	// Price is the line total for Quantity units, not a per-unit price.
	Price float64
}

// ParsedReceipt is the result of parsing OCR text.
// It is produced once and not modified afterwards.
type ParsedReceipt struct {
	// Items are the extracted line items in extraction order.
	Items []LineItem

	// Subtotal is the labelled subtotal, or the sum of item prices when the
	// receipt has no subtotal line.
	Subtotal float64

	// ServiceCharge is the service/tip/gratuity amount, nil when absent.
	ServiceCharge *float64

	// Total is the grand total, nil when absent.
	Total *float64
}

// HasServiceCharge reports whether a service charge was found.
func (r *ParsedReceipt) HasServiceCharge() bool {
	return r.ServiceCharge != nil
}

// HasTotal reports whether a grand total was found.
func (r *ParsedReceipt) HasTotal() bool {
	return r.Total != nil
}
