package service

import (
	"context"
	"net/http"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/tabsplit/pkg/api"
)

// newSession creates a session from text and returns it with a client holding its token.
func newSession(t *testing.T, env *testEnv, text string) (api.Session, api.SessionServiceClient) {
	t.Helper()
	resp, err := env.receipts.CreateSession(context.Background(), connect.NewRequest(&api.CreateSessionRequest{Text: text}))
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	return resp.Msg.Session, env.sessionClient(resp.Msg.Token)
}

func addPerson(t *testing.T, client api.SessionServiceClient, name string) api.Person {
	t.Helper()
	resp, err := client.AddPerson(context.Background(), connect.NewRequest(&api.AddPersonRequest{Name: name}))
	if err != nil {
		t.Fatalf("AddPerson(%s) failed: %v", name, err)
	}
	return resp.Msg.Person
}

func assignItem(t *testing.T, client api.SessionServiceClient, itemID string, personIDs ...string) api.Session {
	t.Helper()
	resp, err := client.UpdateAssignment(context.Background(), connect.NewRequest(&api.UpdateAssignmentRequest{
		ItemID:    itemID,
		PersonIDs: personIDs,
	}))
	if err != nil {
		t.Fatalf("UpdateAssignment failed: %v", err)
	}
	return resp.Msg.Session
}

func TestSession_FullFlow(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	sess, client := newSession(t, env, receiptText)

	alice := addPerson(t, client, "Alice")
	bob := addPerson(t, client, "Bob")

	burger, fries := sess.Items[0], sess.Items[1]
	assignItem(t, client, burger.ID, alice.ID, bob.ID)
	updated := assignItem(t, client, fries.ID, bob.ID)

	if !updated.Ready {
		t.Fatalf("expected session to be ready, got reason %q", updated.NotReadyReason)
	}
	if got := updated.Assignments[burger.ID]; len(got) != 2 || got[0] != alice.ID || got[1] != bob.ID {
		t.Errorf("expected burger shared by Alice and Bob in order, got %v", got)
	}

	resp, err := client.GetSummary(ctx, connect.NewRequest(&api.GetSummaryRequest{
		SessionID: sess.ID,
		Payments:  map[string]float64{alice.ID: 17.05},
	}))
	if err != nil {
		t.Fatalf("GetSummary failed: %v", err)
	}

	summary := resp.Msg
	if len(summary.Bills) != 2 {
		t.Fatalf("expected 2 bills, got %d", len(summary.Bills))
	}
	if !approxEqual(summary.Bills[0].Total, 6.60) {
		t.Errorf("expected Alice to owe 6.60, got %f", summary.Bills[0].Total)
	}
	if !approxEqual(summary.Bills[1].Total, 10.45) {
		t.Errorf("expected Bob to owe 10.45, got %f", summary.Bills[1].Total)
	}
	if !summary.Validation.Valid {
		t.Errorf("expected valid split, difference %f", summary.Validation.Difference)
	}
	if len(summary.Debts) != 1 {
		t.Fatalf("expected 1 debt, got %d", len(summary.Debts))
	}
	debt := summary.Debts[0]
	if debt.From != bob.ID || debt.To != alice.ID || !approxEqual(debt.Amount, 10.45) {
		t.Errorf("expected Bob to pay Alice 10.45, got %+v", debt)
	}
}

func TestSession_ItemEdits(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	sess, client := newSession(t, env, receiptText)

	added, err := client.AddItem(ctx, connect.NewRequest(&api.AddItemRequest{Name: " Cola ", Price: 2.5}))
	if err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	if added.Msg.Item.Name != "Cola" || added.Msg.Item.Quantity != 1 {
		t.Errorf("expected trimmed name and quantity 1, got %+v", added.Msg.Item)
	}
	// Item edits recompute from the items and the tip percentage.
	if s := added.Msg.Session; s.Subtotal != 18 || s.TipAmount != 1.8 || s.Total != 19.8 {
		t.Errorf("expected 18/1.8/19.8, got %f/%f/%f", s.Subtotal, s.TipAmount, s.Total)
	}

	item := added.Msg.Item
	item.Price = 3
	item.Quantity = 2
	updated, err := client.UpdateItem(ctx, connect.NewRequest(&api.UpdateItemRequest{Item: item}))
	if err != nil {
		t.Fatalf("UpdateItem failed: %v", err)
	}
	if updated.Msg.Session.Subtotal != 18.5 {
		t.Errorf("expected subtotal 18.50, got %f", updated.Msg.Session.Subtotal)
	}

	deleted, err := client.DeleteItem(ctx, connect.NewRequest(&api.DeleteItemRequest{ItemID: sess.Items[0].ID}))
	if err != nil {
		t.Fatalf("DeleteItem failed: %v", err)
	}
	if n := len(deleted.Msg.Session.Items); n != 2 {
		t.Errorf("expected 2 items after delete, got %d", n)
	}

	tip, err := client.SetTipPercentage(ctx, connect.NewRequest(&api.SetTipPercentageRequest{TipPercentage: 20}))
	if err != nil {
		t.Fatalf("SetTipPercentage failed: %v", err)
	}
	if s := tip.Msg.Session; s.Subtotal != 6.5 || s.TipAmount != 1.3 || s.Total != 7.8 {
		t.Errorf("expected 6.5/1.3/7.8, got %f/%f/%f", s.Subtotal, s.TipAmount, s.Total)
	}
}

func TestSession_LoadReceiptDropsStaleAssignments(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	sess, client := newSession(t, env, receiptText)

	alice := addPerson(t, client, "Alice")
	assignItem(t, client, sess.Items[0].ID, alice.ID)

	resp, err := client.LoadReceipt(ctx, connect.NewRequest(&api.LoadReceiptRequest{Text: "Salad £4.50\nSoup £5.50"}))
	if err != nil {
		t.Fatalf("LoadReceipt failed: %v", err)
	}
	got := resp.Msg.Session
	if len(got.Items) != 2 || got.Items[0].Name != "Salad" {
		t.Errorf("expected new items, got %+v", got.Items)
	}
	if len(got.Assignments) != 0 {
		t.Errorf("expected assignments for replaced items to be dropped, got %v", got.Assignments)
	}
	if len(got.People) != 1 {
		t.Errorf("expected people to survive a reload, got %d", len(got.People))
	}
	if got.Total != 11 {
		t.Errorf("expected total 11.00 (10%% tip), got %f", got.Total)
	}
}

func TestSession_RemovePerson(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	sess, client := newSession(t, env, receiptText)

	alice := addPerson(t, client, "Alice")
	bob := addPerson(t, client, "Bob")
	assignItem(t, client, sess.Items[0].ID, alice.ID, bob.ID)
	assignItem(t, client, sess.Items[1].ID, bob.ID)

	resp, err := client.RemovePerson(ctx, connect.NewRequest(&api.RemovePersonRequest{PersonID: bob.ID}))
	if err != nil {
		t.Fatalf("RemovePerson failed: %v", err)
	}
	got := resp.Msg.Session
	if len(got.People) != 1 {
		t.Fatalf("expected 1 person, got %d", len(got.People))
	}
	if ids := got.Assignments[sess.Items[0].ID]; len(ids) != 1 || ids[0] != alice.ID {
		t.Errorf("expected burger to stay with Alice, got %v", ids)
	}
	if len(got.UnassignedItemIDs) != 1 || got.UnassignedItemIDs[0] != sess.Items[1].ID {
		t.Errorf("expected fries to become unassigned, got %v", got.UnassignedItemIDs)
	}
}

func TestSession_Errors(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	sess, client := newSession(t, env, receiptText)
	addPerson(t, client, "Alice")

	tests := []struct {
		name string
		call func() error
		code connect.Code
	}{
		{
			name: "duplicate person ignores case",
			call: func() error {
				_, err := client.AddPerson(ctx, connect.NewRequest(&api.AddPersonRequest{Name: "alice"}))
				return err
			},
			code: connect.CodeInvalidArgument,
		},
		{
			name: "blank person name",
			call: func() error {
				_, err := client.AddPerson(ctx, connect.NewRequest(&api.AddPersonRequest{Name: "  "}))
				return err
			},
			code: connect.CodeInvalidArgument,
		},
		{
			name: "negative price",
			call: func() error {
				_, err := client.AddItem(ctx, connect.NewRequest(&api.AddItemRequest{Name: "Bad", Price: -1}))
				return err
			},
			code: connect.CodeInvalidArgument,
		},
		{
			name: "negative tip",
			call: func() error {
				_, err := client.SetTipPercentage(ctx, connect.NewRequest(&api.SetTipPercentageRequest{TipPercentage: -1}))
				return err
			},
			code: connect.CodeInvalidArgument,
		},
		{
			name: "unknown item",
			call: func() error {
				_, err := client.DeleteItem(ctx, connect.NewRequest(&api.DeleteItemRequest{ItemID: "missing"}))
				return err
			},
			code: connect.CodeNotFound,
		},
		{
			name: "unknown person in assignment",
			call: func() error {
				_, err := client.UpdateAssignment(ctx, connect.NewRequest(&api.UpdateAssignmentRequest{
					ItemID:    sess.Items[0].ID,
					PersonIDs: []string{"missing"},
				}))
				return err
			},
			code: connect.CodeNotFound,
		},
		{
			name: "summary with too few people",
			call: func() error {
				_, err := client.GetSummary(ctx, connect.NewRequest(&api.GetSummaryRequest{}))
				return err
			},
			code: connect.CodeFailedPrecondition,
		},
		{
			name: "other session",
			call: func() error {
				_, err := client.GetSession(ctx, connect.NewRequest(&api.GetSessionRequest{SessionID: "someone-else"}))
				return err
			},
			code: connect.CodePermissionDenied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wantCode(t, tt.call(), tt.code)
		})
	}

	// Failed mutations leave the session untouched.
	resp, err := client.GetSession(ctx, connect.NewRequest(&api.GetSessionRequest{}))
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if len(resp.Msg.Session.People) != 1 || len(resp.Msg.Session.Items) != 2 {
		t.Errorf("expected 1 person and 2 items, got %d and %d",
			len(resp.Msg.Session.People), len(resp.Msg.Session.Items))
	}
}

func TestSession_SummaryRequiresAssignments(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	sess, client := newSession(t, env, receiptText)

	alice := addPerson(t, client, "Alice")
	addPerson(t, client, "Bob")
	assignItem(t, client, sess.Items[0].ID, alice.ID)

	_, err := client.GetSummary(ctx, connect.NewRequest(&api.GetSummaryRequest{}))
	wantCode(t, err, connect.CodeFailedPrecondition)

	_, emptyClient := newSession(t, env, "")
	addPerson(t, emptyClient, "Alice")
	addPerson(t, emptyClient, "Bob")
	_, err = emptyClient.GetSummary(ctx, connect.NewRequest(&api.GetSummaryRequest{}))
	wantCode(t, err, connect.CodeFailedPrecondition)
}

func TestSession_SummaryRejectsBadPayments(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	sess, client := newSession(t, env, receiptText)

	alice := addPerson(t, client, "Alice")
	bob := addPerson(t, client, "Bob")
	assignItem(t, client, sess.Items[0].ID, alice.ID)
	assignItem(t, client, sess.Items[1].ID, bob.ID)

	for name, payments := range map[string]map[string]float64{
		"negative amount": {alice.ID: -5},
		"unknown person":  {"missing": 5},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := client.GetSummary(ctx, connect.NewRequest(&api.GetSummaryRequest{Payments: payments}))
			wantCode(t, err, connect.CodeInvalidArgument)
		})
	}

	resp, err := client.GetSummary(ctx, connect.NewRequest(&api.GetSummaryRequest{
		Payments: map[string]float64{alice.ID: 0, bob.ID: 17.05},
	}))
	if err != nil {
		t.Fatalf("GetSummary failed: %v", err)
	}
	if len(resp.Msg.Bills) != 2 {
		t.Errorf("expected 2 bills, got %d", len(resp.Msg.Bills))
	}
}

func TestSession_RequiresToken(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	noToken := api.NewSessionServiceClient(http.DefaultClient, env.serverURL)
	_, err := noToken.GetSession(ctx, connect.NewRequest(&api.GetSessionRequest{}))
	wantCode(t, err, connect.CodeUnauthenticated)

	badToken := env.sessionClient("not-a-token")
	_, err = badToken.GetSession(ctx, connect.NewRequest(&api.GetSessionRequest{}))
	wantCode(t, err, connect.CodeUnauthenticated)
}

func TestSession_Delete(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	sess, client := newSession(t, env, receiptText)

	if _, err := client.DeleteSession(ctx, connect.NewRequest(&api.DeleteSessionRequest{SessionID: sess.ID})); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}

	_, err := client.GetSession(ctx, connect.NewRequest(&api.GetSessionRequest{}))
	wantCode(t, err, connect.CodeNotFound)

	_, err = client.DeleteSession(ctx, connect.NewRequest(&api.DeleteSessionRequest{}))
	wantCode(t, err, connect.CodeNotFound)
}
