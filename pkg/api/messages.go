package api

// LineItem is a receipt line. Price is the line total for Quantity units.
type LineItem struct {
	ID       string  `json:"id"`
	Quantity float64 `json:"quantity"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
}

type Person struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type AssignedItem struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Price    float64 `json:"price"`
}

// PersonBill is one person's share. TipPercentage is the fraction (0..1)
// of the tip pool this person carries.
type PersonBill struct {
	Person        Person         `json:"person"`
	Items         []AssignedItem `json:"items"`
	Subtotal      float64        `json:"subtotal"`
	TipPercentage float64        `json:"tip_percentage"`
	Tip           float64        `json:"tip"`
	Total         float64        `json:"total"`
}

type Validation struct {
	Valid      bool    `json:"valid"`
	Difference float64 `json:"difference"`
}

type MemberBalance struct {
	PersonID   string  `json:"person_id"`
	NetBalance float64 `json:"net_balance"`
	TotalPaid  float64 `json:"total_paid"`
	TotalOwed  float64 `json:"total_owed"`
}

type DebtEdge struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Amount float64 `json:"amount"`
}

// Session is the full state of a splitting session.
type Session struct {
	ID            string              `json:"id"`
	OCRText       string              `json:"ocr_text,omitempty"`
	Items         []LineItem          `json:"items"`
	People        []Person            `json:"people"`
	Assignments   map[string][]string `json:"assignments"`
	Subtotal      float64             `json:"subtotal"`
	TipPercentage float64             `json:"tip_percentage"`
	TipAmount     float64             `json:"tip_amount"`
	Total         float64             `json:"total"`
	// UnassignedItemIDs lists items nobody shares yet, in item order.
	UnassignedItemIDs []string `json:"unassigned_item_ids"`
	// Ready is true once GetSummary would succeed; NotReadyReason says why not.
	Ready          bool   `json:"ready"`
	NotReadyReason string `json:"not_ready_reason,omitempty"`
	CreatedAt      int64  `json:"created_at"`
	UpdatedAt      int64  `json:"updated_at"`
}

// ReceiptService messages.

type ParseReceiptRequest struct {
	Text string `json:"text"`
}

type ParseReceiptResponse struct {
	Items          []LineItem `json:"items"`
	Subtotal       float64    `json:"subtotal"`
	ServiceCharge  *float64   `json:"service_charge,omitempty"`
	Total          *float64   `json:"total,omitempty"`
	NormalizedText string     `json:"normalized_text"`
}

// CalculateBillsRequest runs the allocator on caller-supplied data.
// Assignments maps item ID to person IDs. ExpectedTotal, when set, is
// validated against the sum of bill totals.
type CalculateBillsRequest struct {
	Items         []LineItem          `json:"items"`
	People        []Person            `json:"people"`
	Assignments   map[string][]string `json:"assignments"`
	Subtotal      float64             `json:"subtotal"`
	TipAmount     float64             `json:"tip_amount"`
	ExpectedTotal *float64            `json:"expected_total,omitempty"`
}

type CalculateBillsResponse struct {
	Bills      []PersonBill `json:"bills"`
	Validation *Validation  `json:"validation,omitempty"`
}

// CreateSessionRequest starts a session. TipPercentage defaults to the
// server setting; a non-empty Text is parsed and loaded right away.
type CreateSessionRequest struct {
	TipPercentage *float64 `json:"tip_percentage,omitempty"`
	Text          string   `json:"text,omitempty"`
}

// CreateSessionResponse carries the bearer token for SessionService calls.
type CreateSessionResponse struct {
	Session Session `json:"session"`
	Token   string  `json:"token"`
}

// SessionService messages. An empty SessionID means the session named by
// the bearer token.

type GetSessionRequest struct {
	SessionID string `json:"session_id"`
}

type SessionResponse struct {
	Session Session `json:"session"`
}

type LoadReceiptRequest struct {
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
}

type AddItemRequest struct {
	SessionID string  `json:"session_id"`
	Quantity  float64 `json:"quantity"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
}

type AddItemResponse struct {
	Item    LineItem `json:"item"`
	Session Session  `json:"session"`
}

type UpdateItemRequest struct {
	SessionID string   `json:"session_id"`
	Item      LineItem `json:"item"`
}

type DeleteItemRequest struct {
	SessionID string `json:"session_id"`
	ItemID    string `json:"item_id"`
}

type SetTipPercentageRequest struct {
	SessionID     string  `json:"session_id"`
	TipPercentage float64 `json:"tip_percentage"`
}

type AddPersonRequest struct {
	SessionID string `json:"session_id"`
	Name      string `json:"name"`
}

type AddPersonResponse struct {
	Person  Person  `json:"person"`
	Session Session `json:"session"`
}

type RemovePersonRequest struct {
	SessionID string `json:"session_id"`
	PersonID  string `json:"person_id"`
}

// UpdateAssignmentRequest replaces the sharers of one item; an empty
// PersonIDs unassigns it.
type UpdateAssignmentRequest struct {
	SessionID string   `json:"session_id"`
	ItemID    string   `json:"item_id"`
	PersonIDs []string `json:"person_ids"`
}

// GetSummaryRequest computes the bills. Payments maps person ID to what that
// person actually paid; when present the response includes settlement.
type GetSummaryRequest struct {
	SessionID string             `json:"session_id"`
	Payments  map[string]float64 `json:"payments,omitempty"`
}

type GetSummaryResponse struct {
	Bills      []PersonBill    `json:"bills"`
	Validation Validation      `json:"validation"`
	Subtotal   float64         `json:"subtotal"`
	TipAmount  float64         `json:"tip_amount"`
	Total      float64         `json:"total"`
	Balances   []MemberBalance `json:"balances,omitempty"`
	Debts      []DebtEdge      `json:"debts,omitempty"`
}

type DeleteSessionRequest struct {
	SessionID string `json:"session_id"`
}

type DeleteSessionResponse struct{}
