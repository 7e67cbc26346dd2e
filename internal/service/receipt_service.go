package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"connectrpc.com/connect"

	"github.com/mmynk/tabsplit/internal/auth"
	"github.com/mmynk/tabsplit/internal/calculator"
	"github.com/mmynk/tabsplit/internal/metrics"
	"github.com/mmynk/tabsplit/internal/parser"
	"github.com/mmynk/tabsplit/internal/session"
	"github.com/mmynk/tabsplit/internal/storage"
	"github.com/mmynk/tabsplit/pkg/api"
)

// ReceiptService implements the Connect ReceiptService: stateless parsing
// and allocation, plus the entry point that opens a session.
type ReceiptService struct {
	store      storage.Store
	parser     *parser.Parser
	tokens     *auth.TokenManager
	metrics    *metrics.Metrics
	defaultTip float64
}

// NewReceiptService creates a ReceiptService. m may be nil.
func NewReceiptService(store storage.Store, p *parser.Parser, tokens *auth.TokenManager, m *metrics.Metrics, defaultTipPercentage float64) *ReceiptService {
	return &ReceiptService{
		store:      store,
		parser:     p,
		tokens:     tokens,
		metrics:    m,
		defaultTip: defaultTipPercentage,
	}
}

// ParseReceipt extracts items and summary figures from OCR text.
func (s *ReceiptService) ParseReceipt(ctx context.Context, req *connect.Request[api.ParseReceiptRequest]) (*connect.Response[api.ParseReceiptResponse], error) {
	receipt := s.parser.Parse(req.Msg.Text)
	s.metrics.ObserveReceipt(receipt)

	slog.Debug("Parsed receipt",
		"items_count", len(receipt.Items),
		"subtotal", receipt.Subtotal,
		"has_service_charge", receipt.HasServiceCharge(),
		"has_total", receipt.HasTotal(),
	)

	return connect.NewResponse(&api.ParseReceiptResponse{
		Items:          toAPIItems(receipt.Items),
		Subtotal:       receipt.Subtotal,
		ServiceCharge:  receipt.ServiceCharge,
		Total:          receipt.Total,
		NormalizedText: s.parser.Normalize(req.Msg.Text),
	}), nil
}

// CalculateBills runs the allocator on caller-supplied items, people and
// assignments. Unassigned items are left out of every bill.
func (s *ReceiptService) CalculateBills(ctx context.Context, req *connect.Request[api.CalculateBillsRequest]) (*connect.Response[api.CalculateBillsResponse], error) {
	if err := validateCalculateBills(req.Msg); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	bills := calculator.ComputeBills(
		fromAPIItems(req.Msg.Items),
		fromAPIPeople(req.Msg.People),
		fromAPIAssignments(req.Msg.Assignments),
		req.Msg.Subtotal,
		req.Msg.TipAmount,
	)

	resp := &api.CalculateBillsResponse{Bills: toAPIBills(bills)}
	if req.Msg.ExpectedTotal != nil {
		v := calculator.Validate(bills, *req.Msg.ExpectedTotal)
		s.metrics.ObserveValidation(v)
		apiV := toAPIValidation(v)
		resp.Validation = &apiV
	}
	return connect.NewResponse(resp), nil
}

// CreateSession opens a splitting session and returns the token that grants
// access to it. Text, when given, is parsed and loaded as the receipt.
func (s *ReceiptService) CreateSession(ctx context.Context, req *connect.Request[api.CreateSessionRequest]) (*connect.Response[api.CreateSessionResponse], error) {
	tipPct := s.defaultTip
	if req.Msg.TipPercentage != nil {
		tipPct = *req.Msg.TipPercentage
		if !isAmount(tipPct) {
			return nil, connect.NewError(connect.CodeInvalidArgument, session.ErrInvalidTip)
		}
	}

	sess := session.New(tipPct)
	if req.Msg.Text != "" {
		receipt := s.parser.Parse(req.Msg.Text)
		s.metrics.ObserveReceipt(receipt)
		session.LoadReceipt(sess, req.Msg.Text, receipt)
	}

	if err := s.store.CreateSession(ctx, sess); err != nil {
		return nil, toConnectError("CreateSession", err)
	}

	token, err := s.tokens.Generate(sess.ID)
	if err != nil {
		return nil, toConnectError("CreateSession", err)
	}

	s.metrics.SessionCreated()
	slog.Info("Session created", "session_id", sess.ID, "items_count", len(sess.Items))

	return connect.NewResponse(&api.CreateSessionResponse{
		Session: toAPISession(sess),
		Token:   token,
	}), nil
}

func validateCalculateBills(msg *api.CalculateBillsRequest) error {
	if !isAmount(msg.Subtotal) {
		return fmt.Errorf("subtotal must be a non-negative number, got %v", msg.Subtotal)
	}
	if !isAmount(msg.TipAmount) {
		return fmt.Errorf("tip_amount must be a non-negative number, got %v", msg.TipAmount)
	}
	for i, item := range msg.Items {
		if item.ID == "" {
			return fmt.Errorf("item %d: id is required", i+1)
		}
		if !isAmount(item.Price) {
			return fmt.Errorf("item %d: %w", i+1, session.ErrInvalidPrice)
		}
	}
	seen := make(map[string]bool, len(msg.People))
	for i, p := range msg.People {
		if p.ID == "" {
			return fmt.Errorf("person %d: id is required", i+1)
		}
		if seen[p.ID] {
			return fmt.Errorf("person %d: duplicate id %q", i+1, p.ID)
		}
		seen[p.ID] = true
	}
	if msg.ExpectedTotal != nil && (math.IsNaN(*msg.ExpectedTotal) || math.IsInf(*msg.ExpectedTotal, 0)) {
		return errors.New("expected_total must be a finite number")
	}
	return nil
}

func isAmount(v float64) bool {
	return v >= 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}
