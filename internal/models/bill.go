package models

// AssignedItem is one person's share of a line item.
type AssignedItem struct {
	Name     string
	Quantity float64 // Item quantity divided by the number of sharers
	Price    float64 // Item price divided by the number of sharers
}

// PersonBill represents one person's calculated share of a receipt.
// This is the output of the allocation algorithm.
type PersonBill struct {
	// Person is the diner this bill belongs to.
	Person Person

	// Items are this person's item shares, in receipt order.
	Items []AssignedItem

	// Subtotal is the sum of this person's item shares.
	Subtotal float64

	// TipPercentage is this person's fraction (0..1) of the tip pool,
	// calculated as: subtotal / receipt subtotal.
	TipPercentage float64

	// Tip is this person's share of the tip or service charge.
	Tip float64

	// Total is the final amount this person owes (subtotal + tip).
	Total float64
}

// Validation is the outcome of checking bills against an expected total.
type Validation struct {
	Valid      bool
	Difference float64 // Absolute difference between the bill totals and the expected total
}
