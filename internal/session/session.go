// Package session applies user edits to a splitting session and produces
// its summary. Functions mutate the *models.Session they are given and keep
// subtotal, tip and total consistent with the items.
package session

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/tabsplit/internal/calculator"
	"github.com/mmynk/tabsplit/internal/models"
	"github.com/mmynk/tabsplit/internal/money"
)

// DefaultTipPercentage is used for new sessions unless configured otherwise.
const DefaultTipPercentage = 10

// MinPeople is the fewest people a bill can be split between.
const MinPeople = 2

var (
	ErrEmptyName       = errors.New("name is required")
	ErrDuplicatePerson = errors.New("a person with this name already exists")
	ErrInvalidPrice    = errors.New("price must be a non-negative number")
	ErrInvalidQuantity = errors.New("quantity must be a positive number")
	ErrInvalidTip      = errors.New("tip percentage must be a non-negative number")
	ErrItemNotFound    = errors.New("item not found")
	ErrPersonNotFound  = errors.New("person not found")
	ErrNoItems         = errors.New("add at least one item")
	ErrTooFewPeople    = fmt.Errorf("add at least %d people to split the bill", MinPeople)
	ErrUnassignedItems = errors.New("assign all items to at least one person")
)

// New returns an empty session.
func New(tipPercentage float64) *models.Session {
	now := time.Now().Unix()
	return &models.Session{
		ID:            uuid.NewString(),
		Items:         []models.LineItem{},
		People:        []models.Person{},
		Assignments:   models.Assignments{},
		TipPercentage: tipPercentage,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// LoadReceipt replaces the session's items with a parsed receipt.
// A service charge on the receipt becomes the tip, even when it reads 0.00;
// otherwise the tip is the session's tip percentage of the subtotal. A total on the receipt becomes
// the validation target; otherwise subtotal plus tip.
func LoadReceipt(s *models.Session, text string, receipt models.ParsedReceipt) {
	s.OCRText = text
	s.Items = append([]models.LineItem{}, receipt.Items...)
	s.Subtotal = receipt.Subtotal

	if receipt.ServiceCharge != nil {
		s.TipAmount = *receipt.ServiceCharge
	} else {
		s.TipAmount = money.PercentRounded(s.Subtotal, s.TipPercentage)
	}
	if receipt.Total != nil {
		s.Total = *receipt.Total
	} else {
		s.Total = money.Sum(s.Subtotal, s.TipAmount)
	}

	pruneAssignments(s)
	touch(s)
}

// AddItem appends a manually entered item. A zero quantity means 1.
func AddItem(s *models.Session, quantity float64, name string, price float64) (models.LineItem, error) {
	item := models.LineItem{
		ID:       uuid.NewString(),
		Quantity: quantity,
		Name:     name,
		Price:    price,
	}
	if err := normalizeItem(&item); err != nil {
		return models.LineItem{}, err
	}
	s.Items = append(s.Items, item)
	recalculate(s)
	return item, nil
}

// UpdateItem replaces the item with the same ID.
func UpdateItem(s *models.Session, item models.LineItem) error {
	existing, _ := s.Item(item.ID)
	if existing == nil {
		return fmt.Errorf("%w: %s", ErrItemNotFound, item.ID)
	}
	if err := normalizeItem(&item); err != nil {
		return err
	}
	*existing = item
	recalculate(s)
	return nil
}

// DeleteItem removes an item and its assignment.
func DeleteItem(s *models.Session, itemID string) error {
	_, idx := s.Item(itemID)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
	}
	s.Items = append(s.Items[:idx], s.Items[idx+1:]...)
	delete(s.Assignments, itemID)
	recalculate(s)
	return nil
}

// SetTipPercentage changes the tip rate and recomputes tip and total from
// the current subtotal.
func SetTipPercentage(s *models.Session, pct float64) error {
	if math.IsNaN(pct) || math.IsInf(pct, 0) || pct < 0 {
		return ErrInvalidTip
	}
	s.TipPercentage = pct
	recalculate(s)
	return nil
}

// AddPerson adds a diner. Names are trimmed and must be unique ignoring case.
func AddPerson(s *models.Session, name string) (models.Person, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Person{}, ErrEmptyName
	}
	for _, p := range s.People {
		if p.SameName(name) {
			return models.Person{}, fmt.Errorf("%w: %s", ErrDuplicatePerson, name)
		}
	}
	person := models.Person{ID: uuid.NewString(), Name: name}
	s.People = append(s.People, person)
	touch(s)
	return person, nil
}

// RemovePerson removes a diner and takes them off every item.
func RemovePerson(s *models.Session, personID string) error {
	_, idx := s.Person(personID)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrPersonNotFound, personID)
	}
	s.People = append(s.People[:idx], s.People[idx+1:]...)
	s.Assignments.RemovePerson(personID)
	touch(s)
	return nil
}

// UpdateAssignment sets who shares an item. An empty list unassigns it.
func UpdateAssignment(s *models.Session, itemID string, personIDs []string) error {
	if item, _ := s.Item(itemID); item == nil {
		return fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
	}
	for _, id := range personIDs {
		if p, _ := s.Person(id); p == nil {
			return fmt.Errorf("%w: %s", ErrPersonNotFound, id)
		}
	}
	if s.Assignments == nil {
		s.Assignments = models.Assignments{}
	}
	s.Assignments.Set(itemID, personIDs...)
	touch(s)
	return nil
}

// UnassignedItems returns the items nobody has been assigned to, in order.
func UnassignedItems(s *models.Session) []models.LineItem {
	var out []models.LineItem
	for _, item := range s.Items {
		if s.Assignments.ShareCount(item.ID) == 0 {
			out = append(out, item)
		}
	}
	return out
}

// CheckReady reports whether the session can be summarized: it needs
// items, at least MinPeople people and every item assigned.
func CheckReady(s *models.Session) error {
	if len(s.Items) == 0 {
		return ErrNoItems
	}
	if len(s.People) < MinPeople {
		return ErrTooFewPeople
	}
	if n := len(UnassignedItems(s)); n > 0 {
		return fmt.Errorf("%w: %d item(s) remaining", ErrUnassignedItems, n)
	}
	return nil
}

// Summary is the computed outcome of a session.
type Summary struct {
	Bills      []models.PersonBill
	Validation models.Validation
	Balances   []calculator.MemberBalance
	Debts      []calculator.DebtEdge
}

// Summarize computes bills and validates them against the session total.
// When payments is non-empty it also works out who owes whom.
// It does not check readiness; callers that gate on it use CheckReady.
func Summarize(s *models.Session, payments map[string]float64) Summary {
	bills := calculator.ComputeBills(s.Items, s.People, s.Assignments, s.Subtotal, s.TipAmount)
	summary := Summary{
		Bills:      bills,
		Validation: calculator.Validate(bills, s.Total),
	}
	if len(payments) > 0 {
		summary.Balances, summary.Debts = calculator.Settle(bills, payments)
	}
	return summary
}

func normalizeItem(item *models.LineItem) error {
	item.Name = strings.TrimSpace(item.Name)
	if item.Name == "" {
		return ErrEmptyName
	}
	if math.IsNaN(item.Price) || math.IsInf(item.Price, 0) || item.Price < 0 {
		return ErrInvalidPrice
	}
	if item.Quantity == 0 {
		item.Quantity = 1
	}
	if math.IsNaN(item.Quantity) || math.IsInf(item.Quantity, 0) || item.Quantity < 0 {
		return ErrInvalidQuantity
	}
	return nil
}

// recalculate derives subtotal, tip and total from the items after an edit.
func recalculate(s *models.Session) {
	prices := make([]float64, len(s.Items))
	for i, item := range s.Items {
		prices[i] = item.Price
	}
	s.Subtotal = money.Sum(prices...)
	s.TipAmount = money.PercentRounded(s.Subtotal, s.TipPercentage)
	s.Total = money.Sum(s.Subtotal, s.TipAmount)
	touch(s)
}

// pruneAssignments drops assignments that point at items no longer present.
func pruneAssignments(s *models.Session) {
	if s.Assignments == nil {
		s.Assignments = models.Assignments{}
		return
	}
	for itemID := range s.Assignments {
		if item, _ := s.Item(itemID); item == nil {
			delete(s.Assignments, itemID)
		}
	}
}

func touch(s *models.Session) {
	s.UpdatedAt = time.Now().Unix()
}
