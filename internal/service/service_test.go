package service

import (
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mmynk/tabsplit/internal/auth"
	"github.com/mmynk/tabsplit/internal/metrics"
	"github.com/mmynk/tabsplit/internal/middleware"
	"github.com/mmynk/tabsplit/internal/parser"
	"github.com/mmynk/tabsplit/internal/storage/sqlite"
	"github.com/mmynk/tabsplit/pkg/api"
)

const receiptText = "2 Burger £12.00\n1 Fries £3.50\nSubtotal: £15.50\nService 10% £1.55\nTotal £17.05"

type testEnv struct {
	serverURL string
	receipts  api.ReceiptServiceClient
	tokens    *auth.TokenManager
}

// sessionClient returns a SessionService client that sends token.
func (e *testEnv) sessionClient(token string) api.SessionServiceClient {
	return api.NewSessionServiceClient(
		http.DefaultClient,
		e.serverURL,
		connect.WithInterceptors(api.BearerToken(token)),
	)
}

// setupTestServer creates a test server with an in-memory SQLite database
func setupTestServer(t *testing.T) *testEnv {
	t.Helper()

	store, err := sqlite.New(sqlite.MemoryDSN)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	tokens := auth.NewTokenManager("test-secret", time.Hour)
	m := metrics.New(prometheus.NewRegistry())
	p := parser.New(parser.DefaultSymbol)

	logging := connect.WithInterceptors(middleware.LoggingInterceptor())
	sessionInterceptors := connect.WithInterceptors(middleware.RequireSession(tokens), middleware.LoggingInterceptor())

	mux := http.NewServeMux()
	receiptPath, receiptHandler := api.NewReceiptServiceHandler(NewReceiptService(store, p, tokens, m, 10), logging)
	mux.Handle(receiptPath, receiptHandler)
	sessionPath, sessionHandler := api.NewSessionServiceHandler(NewSessionService(store, p, m), sessionInterceptors)
	mux.Handle(sessionPath, sessionHandler)

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		store.Close()
	})

	return &testEnv{
		serverURL: server.URL,
		receipts:  api.NewReceiptServiceClient(http.DefaultClient, server.URL),
		tokens:    tokens,
	}
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 0.01
}

func wantCode(t *testing.T, err error, code connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", code)
	}
	var connectErr *connect.Error
	if !errors.As(err, &connectErr) {
		t.Fatalf("expected connect error, got %v", err)
	}
	if connectErr.Code() != code {
		t.Fatalf("expected code %v, got %v (%v)", code, connectErr.Code(), err)
	}
}
