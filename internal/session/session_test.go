package session

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/tabsplit/internal/models"
	"github.com/mmynk/tabsplit/internal/parser"
)

func loaded(t *testing.T, text string) *models.Session {
	t.Helper()
	s := New(DefaultTipPercentage)
	LoadReceipt(s, text, parser.Parse(text))
	return s
}

func TestNew(t *testing.T) {
	s := New(12.5)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, 12.5, s.TipPercentage)
	assert.Empty(t, s.Items)
	assert.Empty(t, s.People)
	assert.NotNil(t, s.Assignments)
	assert.NotZero(t, s.CreatedAt)
}

func TestLoadReceipt_UsesReceiptFigures(t *testing.T) {
	text := "2 Burger £12.00\n1 Fries £3.50\nSubtotal: £15.50\nService 10% £1.55\nTotal £17.05"
	s := loaded(t, text)

	assert.Equal(t, text, s.OCRText)
	assert.Len(t, s.Items, 2)
	assert.Equal(t, 15.50, s.Subtotal)
	assert.Equal(t, 1.55, s.TipAmount)
	assert.Equal(t, 17.05, s.Total)
}

func TestLoadReceipt_DerivesMissingFigures(t *testing.T) {
	s := loaded(t, "Salad £4.50\nSoup £5.50")

	assert.Equal(t, 10.00, s.Subtotal)
	assert.Equal(t, 1.00, s.TipAmount) // 10% default
	assert.Equal(t, 11.00, s.Total)
}

func TestLoadReceipt_HalfCentTip(t *testing.T) {
	s := loaded(t, "Steak £10.05")

	assert.Equal(t, 10.05, s.Subtotal)
	assert.Equal(t, 1.01, s.TipAmount)
	assert.Equal(t, 11.06, s.Total)

	require.NoError(t, SetTipPercentage(s, 10))
	assert.Equal(t, 1.01, s.TipAmount)
}

func TestLoadReceipt_ZeroServiceChargeIsKept(t *testing.T) {
	s := loaded(t, "Salad £4.50\nSoup £5.50\nService charge £0.00")

	require.Len(t, s.Items, 2)
	assert.Equal(t, 0.0, s.TipAmount)
	assert.Equal(t, 10.00, s.Total)
}

func TestLoadReceipt_DropsStaleAssignments(t *testing.T) {
	s := loaded(t, "Salad £4.50")
	alice, err := AddPerson(s, "Alice")
	require.NoError(t, err)
	require.NoError(t, UpdateAssignment(s, s.Items[0].ID, []string{alice.ID}))

	LoadReceipt(s, "Soup £5.50", parser.Parse("Soup £5.50"))

	assert.Empty(t, s.Assignments)
	assert.Len(t, UnassignedItems(s), 1)
}

func TestItemEdits_RecalculateTotals(t *testing.T) {
	s := loaded(t, "2 Burger £12.00\nSubtotal £12.00\nService £5.00\nTotal £17.00")

	item, err := AddItem(s, 0, "  Fries ", 3.50)
	require.NoError(t, err)
	assert.Equal(t, "Fries", item.Name)
	assert.Equal(t, 1.0, item.Quantity)
	assert.Equal(t, 15.50, s.Subtotal)
	// After a manual edit the tip comes from the percentage again.
	assert.Equal(t, 1.55, s.TipAmount)
	assert.Equal(t, 17.05, s.Total)

	item.Price = 4.00
	item.Quantity = 2
	require.NoError(t, UpdateItem(s, item))
	assert.Equal(t, 16.00, s.Subtotal)
	assert.Equal(t, 1.60, s.TipAmount)
	assert.Equal(t, 17.60, s.Total)

	require.NoError(t, DeleteItem(s, item.ID))
	assert.Len(t, s.Items, 1)
	assert.Equal(t, 12.00, s.Subtotal)
	assert.Equal(t, 13.20, s.Total)
}

func TestItemEdits_Validation(t *testing.T) {
	s := New(DefaultTipPercentage)

	_, err := AddItem(s, 1, "  ", 2)
	assert.ErrorIs(t, err, ErrEmptyName)
	_, err = AddItem(s, 1, "Tea", -1)
	assert.ErrorIs(t, err, ErrInvalidPrice)
	_, err = AddItem(s, 1, "Tea", math.NaN())
	assert.ErrorIs(t, err, ErrInvalidPrice)
	_, err = AddItem(s, -2, "Tea", 2)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	err = UpdateItem(s, models.LineItem{ID: "missing", Name: "Tea", Price: 2})
	assert.ErrorIs(t, err, ErrItemNotFound)
	assert.ErrorIs(t, DeleteItem(s, "missing"), ErrItemNotFound)

	item, err := AddItem(s, 1, "Tea", 2)
	require.NoError(t, err)
	item.Name = ""
	assert.ErrorIs(t, UpdateItem(s, item), ErrEmptyName)
	assert.Equal(t, "Tea", s.Items[0].Name)
}

func TestSetTipPercentage(t *testing.T) {
	s := loaded(t, "Salad £4.50\nSoup £5.50")

	require.NoError(t, SetTipPercentage(s, 15))
	assert.Equal(t, 15.0, s.TipPercentage)
	assert.Equal(t, 1.50, s.TipAmount)
	assert.Equal(t, 11.50, s.Total)

	require.NoError(t, SetTipPercentage(s, 0))
	assert.Equal(t, 0.0, s.TipAmount)
	assert.Equal(t, 10.00, s.Total)

	assert.ErrorIs(t, SetTipPercentage(s, -5), ErrInvalidTip)
	assert.ErrorIs(t, SetTipPercentage(s, math.Inf(1)), ErrInvalidTip)
	assert.Equal(t, 0.0, s.TipPercentage)
}

func TestAddPerson(t *testing.T) {
	s := New(DefaultTipPercentage)

	alice, err := AddPerson(s, " Alice ")
	require.NoError(t, err)
	assert.Equal(t, "Alice", alice.Name)
	assert.NotEmpty(t, alice.ID)

	_, err = AddPerson(s, "alice")
	assert.ErrorIs(t, err, ErrDuplicatePerson)
	_, err = AddPerson(s, "   ")
	assert.ErrorIs(t, err, ErrEmptyName)

	_, err = AddPerson(s, "Bob")
	require.NoError(t, err)
	assert.Len(t, s.People, 2)
}

func TestRemovePerson_CascadesToAssignments(t *testing.T) {
	s := loaded(t, "Pizza £20.00\nBeer £5.00")
	alice, _ := AddPerson(s, "Alice")
	bob, _ := AddPerson(s, "Bob")
	pizza, beer := s.Items[0].ID, s.Items[1].ID

	require.NoError(t, UpdateAssignment(s, pizza, []string{alice.ID, bob.ID}))
	require.NoError(t, UpdateAssignment(s, beer, []string{bob.ID}))

	require.NoError(t, RemovePerson(s, bob.ID))

	assert.Len(t, s.People, 1)
	assert.True(t, s.Assignments.Has(pizza, alice.ID))
	assert.False(t, s.Assignments.Has(pizza, bob.ID))
	assert.Equal(t, 1, s.Assignments.ShareCount(pizza))
	assert.Equal(t, []models.LineItem{s.Items[1]}, UnassignedItems(s))

	assert.ErrorIs(t, RemovePerson(s, bob.ID), ErrPersonNotFound)
}

func TestUpdateAssignment(t *testing.T) {
	s := loaded(t, "Pizza £20.00")
	alice, _ := AddPerson(s, "Alice")
	pizza := s.Items[0].ID

	assert.ErrorIs(t, UpdateAssignment(s, "missing", []string{alice.ID}), ErrItemNotFound)
	assert.ErrorIs(t, UpdateAssignment(s, pizza, []string{"ghost"}), ErrPersonNotFound)

	require.NoError(t, UpdateAssignment(s, pizza, []string{alice.ID, alice.ID}))
	assert.Equal(t, 1, s.Assignments.ShareCount(pizza))

	require.NoError(t, UpdateAssignment(s, pizza, nil))
	assert.Equal(t, 0, s.Assignments.ShareCount(pizza))
}

func TestCheckReady(t *testing.T) {
	s := New(DefaultTipPercentage)
	assert.ErrorIs(t, CheckReady(s), ErrNoItems)

	LoadReceipt(s, "Pizza £20.00\nBeer £5.00", parser.Parse("Pizza £20.00\nBeer £5.00"))
	alice, _ := AddPerson(s, "Alice")
	assert.ErrorIs(t, CheckReady(s), ErrTooFewPeople)

	bob, _ := AddPerson(s, "Bob")
	require.NoError(t, UpdateAssignment(s, s.Items[0].ID, []string{alice.ID, bob.ID}))
	err := CheckReady(s)
	assert.ErrorIs(t, err, ErrUnassignedItems)
	assert.Contains(t, err.Error(), "1 item(s) remaining")

	require.NoError(t, UpdateAssignment(s, s.Items[1].ID, []string{bob.ID}))
	assert.NoError(t, CheckReady(s))
}

func TestSummarize(t *testing.T) {
	s := loaded(t, "2 Burger £12.00\n1 Fries £3.50\nSubtotal: £15.50\nService 10% £1.55\nTotal £17.05")
	alice, _ := AddPerson(s, "Alice")
	bob, _ := AddPerson(s, "Bob")
	require.NoError(t, UpdateAssignment(s, s.Items[0].ID, []string{alice.ID, bob.ID}))
	require.NoError(t, UpdateAssignment(s, s.Items[1].ID, []string{bob.ID}))

	summary := Summarize(s, nil)

	require.Len(t, summary.Bills, 2)
	assert.InDelta(t, 6.60, summary.Bills[0].Total, 0.001)
	assert.InDelta(t, 10.45, summary.Bills[1].Total, 0.001)
	assert.True(t, summary.Validation.Valid)
	assert.InDelta(t, 0, summary.Validation.Difference, 0.001)
	assert.Nil(t, summary.Debts)

	summary = Summarize(s, map[string]float64{alice.ID: 17.05})
	require.Len(t, summary.Debts, 1)
	assert.Equal(t, bob.ID, summary.Debts[0].From)
	assert.Equal(t, alice.ID, summary.Debts[0].To)
	assert.InDelta(t, 10.45, summary.Debts[0].Amount, 0.001)
}

func TestSummarize_FlagsMismatch(t *testing.T) {
	s := loaded(t, "Pizza £20.00\nBeer £5.00\nTotal £30.00")
	alice, _ := AddPerson(s, "Alice")
	bob, _ := AddPerson(s, "Bob")
	require.NoError(t, UpdateAssignment(s, s.Items[0].ID, []string{alice.ID, bob.ID}))
	require.NoError(t, UpdateAssignment(s, s.Items[1].ID, []string{bob.ID}))

	summary := Summarize(s, nil)

	// 25.00 + 2.50 tip against a stated 30.00.
	assert.False(t, summary.Validation.Valid)
	assert.InDelta(t, 2.50, summary.Validation.Difference, 0.001)
}
