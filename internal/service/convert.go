package service

import (
	"github.com/mmynk/tabsplit/internal/calculator"
	"github.com/mmynk/tabsplit/internal/models"
	"github.com/mmynk/tabsplit/internal/session"
	"github.com/mmynk/tabsplit/pkg/api"
)

func toAPIItems(items []models.LineItem) []api.LineItem {
	out := make([]api.LineItem, len(items))
	for i, item := range items {
		out[i] = toAPIItem(item)
	}
	return out
}

func toAPIItem(item models.LineItem) api.LineItem {
	return api.LineItem{
		ID:       item.ID,
		Quantity: item.Quantity,
		Name:     item.Name,
		Price:    item.Price,
	}
}

func fromAPIItems(items []api.LineItem) []models.LineItem {
	out := make([]models.LineItem, len(items))
	for i, item := range items {
		out[i] = models.LineItem{
			ID:       item.ID,
			Quantity: item.Quantity,
			Name:     item.Name,
			Price:    item.Price,
		}
	}
	return out
}

func toAPIPerson(p models.Person) api.Person {
	return api.Person{ID: p.ID, Name: p.Name}
}

func toAPIPeople(people []models.Person) []api.Person {
	out := make([]api.Person, len(people))
	for i, p := range people {
		out[i] = toAPIPerson(p)
	}
	return out
}

func fromAPIPeople(people []api.Person) []models.Person {
	out := make([]models.Person, len(people))
	for i, p := range people {
		out[i] = models.Person{ID: p.ID, Name: p.Name}
	}
	return out
}

func fromAPIAssignments(in map[string][]string) models.Assignments {
	out := make(models.Assignments, len(in))
	for itemID, personIDs := range in {
		out.Set(itemID, personIDs...)
	}
	return out
}

// toAPIAssignments lists each item's sharers in people order.
func toAPIAssignments(s *models.Session) map[string][]string {
	out := make(map[string][]string, len(s.Assignments))
	for _, item := range s.Items {
		for _, p := range s.People {
			if s.Assignments.Has(item.ID, p.ID) {
				out[item.ID] = append(out[item.ID], p.ID)
			}
		}
	}
	return out
}

func toAPIBills(bills []models.PersonBill) []api.PersonBill {
	out := make([]api.PersonBill, len(bills))
	for i, b := range bills {
		items := make([]api.AssignedItem, len(b.Items))
		for j, item := range b.Items {
			items[j] = api.AssignedItem{Name: item.Name, Quantity: item.Quantity, Price: item.Price}
		}
		out[i] = api.PersonBill{
			Person:        toAPIPerson(b.Person),
			Items:         items,
			Subtotal:      b.Subtotal,
			TipPercentage: b.TipPercentage,
			Tip:           b.Tip,
			Total:         b.Total,
		}
	}
	return out
}

func toAPIValidation(v models.Validation) api.Validation {
	return api.Validation{Valid: v.Valid, Difference: v.Difference}
}

func toAPIBalances(balances []calculator.MemberBalance) []api.MemberBalance {
	if len(balances) == 0 {
		return nil
	}
	out := make([]api.MemberBalance, len(balances))
	for i, b := range balances {
		out[i] = api.MemberBalance{
			PersonID:   b.PersonID,
			NetBalance: b.NetBalance,
			TotalPaid:  b.TotalPaid,
			TotalOwed:  b.TotalOwed,
		}
	}
	return out
}

func toAPIDebts(debts []calculator.DebtEdge) []api.DebtEdge {
	if len(debts) == 0 {
		return nil
	}
	out := make([]api.DebtEdge, len(debts))
	for i, d := range debts {
		out[i] = api.DebtEdge{From: d.From, To: d.To, Amount: d.Amount}
	}
	return out
}

func toAPISession(s *models.Session) api.Session {
	unassigned := session.UnassignedItems(s)
	unassignedIDs := make([]string, len(unassigned))
	for i, item := range unassigned {
		unassignedIDs[i] = item.ID
	}

	out := api.Session{
		ID:                s.ID,
		OCRText:           s.OCRText,
		Items:             toAPIItems(s.Items),
		People:            toAPIPeople(s.People),
		Assignments:       toAPIAssignments(s),
		Subtotal:          s.Subtotal,
		TipPercentage:     s.TipPercentage,
		TipAmount:         s.TipAmount,
		Total:             s.Total,
		UnassignedItemIDs: unassignedIDs,
		Ready:             true,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}
	if err := session.CheckReady(s); err != nil {
		out.Ready = false
		out.NotReadyReason = err.Error()
	}
	return out
}
