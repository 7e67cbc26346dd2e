package calculator

import (
	"sort"

	"github.com/mmynk/tabsplit/internal/models"
)

// settleThreshold ignores balances too small to be worth a transfer.
const settleThreshold = 0.01

// MemberBalance represents what one person paid against what they owe.
type MemberBalance struct {
	PersonID   string
	NetBalance float64 // Positive = owed money, Negative = owes money
	TotalPaid  float64 // Amount this person handed over at the table
	TotalOwed  float64 // This person's bill total
}

// DebtEdge represents a debt from one person to another.
type DebtEdge struct {
	From   string // Person who owes
	To     string // Person who is owed
	Amount float64
}

// Settle works out who pays whom once the receipt has been paid.
// payments maps person ID to the amount that person actually paid (for
// example the whole total by one card, or two people splitting cash).
// People absent from payments paid nothing.
//
// Algorithm:
//   - net_balance = total_paid - bill_total for everyone with a bill or a payment
//   - debtors (negative) are matched greedily against creditors (positive),
//     largest balances first, ties broken by person ID
//   - balances below one cent are ignored
func Settle(bills []models.PersonBill, payments map[string]float64) ([]MemberBalance, []DebtEdge) {
	balances := make(map[string]*MemberBalance)
	var order []string

	get := func(id string) *MemberBalance {
		if b, ok := balances[id]; ok {
			return b
		}
		b := &MemberBalance{PersonID: id}
		balances[id] = b
		order = append(order, id)
		return b
	}

	for _, bill := range bills {
		get(bill.Person.ID).TotalOwed += bill.Total
	}
	payers := make([]string, 0, len(payments))
	for id := range payments {
		payers = append(payers, id)
	}
	sort.Strings(payers)
	for _, id := range payers {
		get(id).TotalPaid += payments[id]
	}

	memberBalances := make([]MemberBalance, 0, len(order))
	var creditors, debtors []MemberBalance
	for _, id := range order {
		bal := balances[id]
		bal.NetBalance = bal.TotalPaid - bal.TotalOwed
		memberBalances = append(memberBalances, *bal)

		if bal.NetBalance >= settleThreshold {
			creditors = append(creditors, *bal)
		} else if bal.NetBalance <= -settleThreshold {
			debtors = append(debtors, *bal)
		}
	}

	sort.SliceStable(creditors, func(i, j int) bool {
		if creditors[i].NetBalance != creditors[j].NetBalance {
			return creditors[i].NetBalance > creditors[j].NetBalance
		}
		return creditors[i].PersonID < creditors[j].PersonID
	})
	sort.SliceStable(debtors, func(i, j int) bool {
		if debtors[i].NetBalance != debtors[j].NetBalance {
			return debtors[i].NetBalance < debtors[j].NetBalance
		}
		return debtors[i].PersonID < debtors[j].PersonID
	})

	// Greedy algorithm: match largest debts with largest credits
	var edges []DebtEdge
	i, j := 0, 0
	owes := make([]float64, len(debtors))
	for k, d := range debtors {
		owes[k] = -d.NetBalance
	}
	owed := make([]float64, len(creditors))
	for k, c := range creditors {
		owed[k] = c.NetBalance
	}

	for i < len(debtors) && j < len(creditors) {
		amount := owes[i]
		if owed[j] < amount {
			amount = owed[j]
		}

		if amount >= settleThreshold {
			edges = append(edges, DebtEdge{
				From:   debtors[i].PersonID,
				To:     creditors[j].PersonID,
				Amount: amount,
			})
		}

		owes[i] -= amount
		owed[j] -= amount

		if owes[i] < settleThreshold {
			i++
		}
		if owed[j] < settleThreshold {
			j++
		}
	}

	return memberBalances, edges
}
