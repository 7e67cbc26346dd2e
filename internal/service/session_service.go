package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"connectrpc.com/connect"

	"github.com/mmynk/tabsplit/internal/metrics"
	"github.com/mmynk/tabsplit/internal/middleware"
	"github.com/mmynk/tabsplit/internal/models"
	"github.com/mmynk/tabsplit/internal/parser"
	"github.com/mmynk/tabsplit/internal/session"
	"github.com/mmynk/tabsplit/internal/storage"
	"github.com/mmynk/tabsplit/pkg/api"
)

// SessionService implements the Connect SessionService. Handlers expect
// middleware.RequireSession to have put the token's session ID in the context.
type SessionService struct {
	store   storage.Store
	parser  *parser.Parser
	metrics *metrics.Metrics

	// mu serializes read-modify-write cycles against the store.
	mu sync.Mutex
}

// NewSessionService creates a SessionService. m may be nil.
func NewSessionService(store storage.Store, p *parser.Parser, m *metrics.Metrics) *SessionService {
	return &SessionService{store: store, parser: p, metrics: m}
}

// authorizedSessionID resolves the session a request acts on. An empty
// requested ID means the token's session.
func authorizedSessionID(ctx context.Context, requested string) (string, error) {
	tokenSession := middleware.GetSessionID(ctx)
	if tokenSession == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, errSessionRequired)
	}
	if requested != "" && requested != tokenSession {
		return "", connect.NewError(connect.CodePermissionDenied, errWrongSession)
	}
	return tokenSession, nil
}

func (s *SessionService) load(ctx context.Context, op, requested string) (*models.Session, error) {
	id, err := authorizedSessionID(ctx, requested)
	if err != nil {
		return nil, err
	}
	sess, err := s.store.GetSession(ctx, id)
	if err != nil {
		return nil, toConnectError(op, err)
	}
	return sess, nil
}

// mutate loads the session, applies fn and saves the result. Nothing is
// saved when fn fails.
func (s *SessionService) mutate(ctx context.Context, op, requested string, fn func(*models.Session) error) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.load(ctx, op, requested)
	if err != nil {
		return nil, err
	}
	if err := fn(sess); err != nil {
		return nil, toConnectError(op, err)
	}
	if err := s.store.UpdateSession(ctx, sess); err != nil {
		return nil, toConnectError(op, err)
	}
	return sess, nil
}

func sessionResponse(sess *models.Session) *connect.Response[api.SessionResponse] {
	return connect.NewResponse(&api.SessionResponse{Session: toAPISession(sess)})
}

// GetSession returns the current session state.
func (s *SessionService) GetSession(ctx context.Context, req *connect.Request[api.GetSessionRequest]) (*connect.Response[api.SessionResponse], error) {
	sess, err := s.load(ctx, "GetSession", req.Msg.SessionID)
	if err != nil {
		return nil, err
	}
	return sessionResponse(sess), nil
}

// LoadReceipt parses OCR text and replaces the session's items with it.
func (s *SessionService) LoadReceipt(ctx context.Context, req *connect.Request[api.LoadReceiptRequest]) (*connect.Response[api.SessionResponse], error) {
	sess, err := s.mutate(ctx, "LoadReceipt", req.Msg.SessionID, func(sess *models.Session) error {
		receipt := s.parser.Parse(req.Msg.Text)
		s.metrics.ObserveReceipt(receipt)
		session.LoadReceipt(sess, req.Msg.Text, receipt)
		return nil
	})
	if err != nil {
		return nil, err
	}
	slog.Info("Receipt loaded", "session_id", sess.ID, "items_count", len(sess.Items), "total", sess.Total)
	return sessionResponse(sess), nil
}

// AddItem appends a manually entered item.
func (s *SessionService) AddItem(ctx context.Context, req *connect.Request[api.AddItemRequest]) (*connect.Response[api.AddItemResponse], error) {
	var item models.LineItem
	sess, err := s.mutate(ctx, "AddItem", req.Msg.SessionID, func(sess *models.Session) error {
		var err error
		item, err = session.AddItem(sess, req.Msg.Quantity, req.Msg.Name, req.Msg.Price)
		return err
	})
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.AddItemResponse{
		Item:    toAPIItem(item),
		Session: toAPISession(sess),
	}), nil
}

// UpdateItem replaces an item's quantity, name and price.
func (s *SessionService) UpdateItem(ctx context.Context, req *connect.Request[api.UpdateItemRequest]) (*connect.Response[api.SessionResponse], error) {
	sess, err := s.mutate(ctx, "UpdateItem", req.Msg.SessionID, func(sess *models.Session) error {
		return session.UpdateItem(sess, models.LineItem{
			ID:       req.Msg.Item.ID,
			Quantity: req.Msg.Item.Quantity,
			Name:     req.Msg.Item.Name,
			Price:    req.Msg.Item.Price,
		})
	})
	if err != nil {
		return nil, err
	}
	return sessionResponse(sess), nil
}

// DeleteItem removes an item and its assignment.
func (s *SessionService) DeleteItem(ctx context.Context, req *connect.Request[api.DeleteItemRequest]) (*connect.Response[api.SessionResponse], error) {
	sess, err := s.mutate(ctx, "DeleteItem", req.Msg.SessionID, func(sess *models.Session) error {
		return session.DeleteItem(sess, req.Msg.ItemID)
	})
	if err != nil {
		return nil, err
	}
	return sessionResponse(sess), nil
}

// SetTipPercentage changes the tip rate.
func (s *SessionService) SetTipPercentage(ctx context.Context, req *connect.Request[api.SetTipPercentageRequest]) (*connect.Response[api.SessionResponse], error) {
	sess, err := s.mutate(ctx, "SetTipPercentage", req.Msg.SessionID, func(sess *models.Session) error {
		return session.SetTipPercentage(sess, req.Msg.TipPercentage)
	})
	if err != nil {
		return nil, err
	}
	return sessionResponse(sess), nil
}

// AddPerson adds a diner.
func (s *SessionService) AddPerson(ctx context.Context, req *connect.Request[api.AddPersonRequest]) (*connect.Response[api.AddPersonResponse], error) {
	var person models.Person
	sess, err := s.mutate(ctx, "AddPerson", req.Msg.SessionID, func(sess *models.Session) error {
		var err error
		person, err = session.AddPerson(sess, req.Msg.Name)
		return err
	})
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.AddPersonResponse{
		Person:  toAPIPerson(person),
		Session: toAPISession(sess),
	}), nil
}

// RemovePerson removes a diner from the session and from every item.
func (s *SessionService) RemovePerson(ctx context.Context, req *connect.Request[api.RemovePersonRequest]) (*connect.Response[api.SessionResponse], error) {
	sess, err := s.mutate(ctx, "RemovePerson", req.Msg.SessionID, func(sess *models.Session) error {
		return session.RemovePerson(sess, req.Msg.PersonID)
	})
	if err != nil {
		return nil, err
	}
	return sessionResponse(sess), nil
}

// UpdateAssignment replaces who shares an item.
func (s *SessionService) UpdateAssignment(ctx context.Context, req *connect.Request[api.UpdateAssignmentRequest]) (*connect.Response[api.SessionResponse], error) {
	sess, err := s.mutate(ctx, "UpdateAssignment", req.Msg.SessionID, func(sess *models.Session) error {
		return session.UpdateAssignment(sess, req.Msg.ItemID, req.Msg.PersonIDs)
	})
	if err != nil {
		return nil, err
	}
	return sessionResponse(sess), nil
}

// GetSummary computes every person's bill once the session is ready.
func (s *SessionService) GetSummary(ctx context.Context, req *connect.Request[api.GetSummaryRequest]) (*connect.Response[api.GetSummaryResponse], error) {
	sess, err := s.load(ctx, "GetSummary", req.Msg.SessionID)
	if err != nil {
		return nil, err
	}
	if err := session.CheckReady(sess); err != nil {
		return nil, toConnectError("GetSummary", err)
	}
	for personID, amount := range req.Msg.Payments {
		if p, _ := sess.Person(personID); p == nil {
			return nil, connect.NewError(connect.CodeInvalidArgument, session.ErrPersonNotFound)
		}
		if !isAmount(amount) {
			return nil, connect.NewError(connect.CodeInvalidArgument,
				fmt.Errorf("payment for %s must be a non-negative number, got %v", personID, amount))
		}
	}

	summary := session.Summarize(sess, req.Msg.Payments)
	s.metrics.ObserveValidation(summary.Validation)
	if !summary.Validation.Valid {
		slog.Warn("Bills do not add up to the receipt total",
			"session_id", sess.ID,
			"total", sess.Total,
			"difference", summary.Validation.Difference,
		)
	}

	return connect.NewResponse(&api.GetSummaryResponse{
		Bills:      toAPIBills(summary.Bills),
		Validation: toAPIValidation(summary.Validation),
		Subtotal:   sess.Subtotal,
		TipAmount:  sess.TipAmount,
		Total:      sess.Total,
		Balances:   toAPIBalances(summary.Balances),
		Debts:      toAPIDebts(summary.Debts),
	}), nil
}

// DeleteSession discards the session. The token stops being useful.
func (s *SessionService) DeleteSession(ctx context.Context, req *connect.Request[api.DeleteSessionRequest]) (*connect.Response[api.DeleteSessionResponse], error) {
	id, err := authorizedSessionID(ctx, req.Msg.SessionID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.DeleteSession(ctx, id); err != nil {
		return nil, toConnectError("DeleteSession", err)
	}
	slog.Info("Session deleted", "session_id", id)
	return connect.NewResponse(&api.DeleteSessionResponse{}), nil
}
