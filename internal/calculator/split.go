package calculator

import (
	"math"

	"github.com/mmynk/tabsplit/internal/models"
)

// Tolerance is the largest difference between the sum of bill totals and
// the expected total that still counts as valid. It absorbs floating point
// drift from dividing shares.
const Tolerance = 0.02

// ComputeBills computes each person's share of a receipt, in the order
// people are given.
//
// Algorithm:
//   - each item is split evenly among the people it is assigned to
//     (price / share_count and quantity / share_count)
//   - person_subtotal = sum of the person's price shares
//   - person_tip = tip_amount × (person_subtotal / subtotal), zero when subtotal is zero
//   - person_total = person_subtotal + person_tip
//
// Unassigned items are not charged to anyone.
func ComputeBills(items []models.LineItem, people []models.Person, assignments models.Assignments, subtotal, tipAmount float64) []models.PersonBill {
	bills := make([]models.PersonBill, 0, len(people))

	for _, person := range people {
		personItems := []models.AssignedItem{}
		var personSubtotal float64

		for _, item := range items {
			if !assignments.Has(item.ID, person.ID) {
				continue
			}

			shareCount := assignments.ShareCount(item.ID)
			if shareCount == 0 {
				continue
			}
			priceShare := item.Price / float64(shareCount)
			quantityShare := item.Quantity / float64(shareCount)

			personItems = append(personItems, models.AssignedItem{
				Name:     item.Name,
				Quantity: quantityShare,
				Price:    priceShare,
			})
			personSubtotal += priceShare
		}

		// A zero subtotal leaves the ratio undefined, so nobody gets tip.
		var tipPercentage float64
		if subtotal != 0 {
			tipPercentage = personSubtotal / subtotal
		}
		personTip := tipAmount * tipPercentage

		bills = append(bills, models.PersonBill{
			Person:        person,
			Items:         personItems,
			Subtotal:      personSubtotal,
			TipPercentage: tipPercentage,
			Tip:           personTip,
			Total:         personSubtotal + personTip,
		})
	}

	return bills
}

// Validate compares the sum of bill totals with expectedTotal.
// It only reports; bills are never adjusted.
func Validate(bills []models.PersonBill, expectedTotal float64) models.Validation {
	var calculated float64
	for _, bill := range bills {
		calculated += bill.Total
	}
	difference := math.Abs(calculated - expectedTotal)
	return models.Validation{
		Valid:      difference < Tolerance,
		Difference: difference,
	}
}
