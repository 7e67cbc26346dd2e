package models

// Session represents one bill-splitting session, from OCR text to the
// final per-person bills. Sessions live only as long as the process.
type Session struct {
	// ID is the unique identifier for the session (UUID format).
	ID string

	// OCRText is the raw text the receipt was loaded from, if any.
	OCRText string

	// Items are the receipt line items, in display order.
	Items []LineItem

	// People are the diners, in the order they were added.
	People []Person

	// Assignments records who shares each item.
	Assignments Assignments

	// Subtotal is the receipt subtotal used for tip allocation.
	Subtotal float64

	// TipPercentage is the tip rate in percent (e.g., 10 for 10%).
	TipPercentage float64

	// TipAmount is the tip or service charge to spread across people.
	TipAmount float64

	// Total is the amount the bills are validated against.
	Total float64

	// CreatedAt is the Unix timestamp when the session was created.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last change.
	UpdatedAt int64
}

// Item returns the item with the given ID and its index, or -1.
func (s *Session) Item(id string) (*LineItem, int) {
	for i := range s.Items {
		if s.Items[i].ID == id {
			return &s.Items[i], i
		}
	}
	return nil, -1
}

// Person returns the person with the given ID and its index, or -1.
func (s *Session) Person(id string) (*Person, int) {
	for i := range s.People {
		if s.People[i].ID == id {
			return &s.People[i], i
		}
	}
	return nil, -1
}
