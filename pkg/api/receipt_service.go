package api

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

// ReceiptServiceName is the fully-qualified name of the ReceiptService service.
const ReceiptServiceName = "tabsplit.v1.ReceiptService"

const (
	ReceiptServiceParseReceiptProcedure   = "/tabsplit.v1.ReceiptService/ParseReceipt"
	ReceiptServiceCalculateBillsProcedure = "/tabsplit.v1.ReceiptService/CalculateBills"
	ReceiptServiceCreateSessionProcedure  = "/tabsplit.v1.ReceiptService/CreateSession"
)

// ReceiptServiceHandler is implemented by servers of ReceiptService.
// None of its procedures require a session token.
type ReceiptServiceHandler interface {
	ParseReceipt(context.Context, *connect.Request[ParseReceiptRequest]) (*connect.Response[ParseReceiptResponse], error)
	CalculateBills(context.Context, *connect.Request[CalculateBillsRequest]) (*connect.Response[CalculateBillsResponse], error)
	CreateSession(context.Context, *connect.Request[CreateSessionRequest]) (*connect.Response[CreateSessionResponse], error)
}

// NewReceiptServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewReceiptServiceHandler(svc ReceiptServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(Codec{})}, opts...)
	routes := map[string]http.Handler{
		ReceiptServiceParseReceiptProcedure:   connect.NewUnaryHandler(ReceiptServiceParseReceiptProcedure, svc.ParseReceipt, opts...),
		ReceiptServiceCalculateBillsProcedure: connect.NewUnaryHandler(ReceiptServiceCalculateBillsProcedure, svc.CalculateBills, opts...),
		ReceiptServiceCreateSessionProcedure:  connect.NewUnaryHandler(ReceiptServiceCreateSessionProcedure, svc.CreateSession, opts...),
	}
	return "/" + ReceiptServiceName + "/", route(routes)
}

// ReceiptServiceClient is a client for ReceiptService.
type ReceiptServiceClient interface {
	ParseReceipt(context.Context, *connect.Request[ParseReceiptRequest]) (*connect.Response[ParseReceiptResponse], error)
	CalculateBills(context.Context, *connect.Request[CalculateBillsRequest]) (*connect.Response[CalculateBillsResponse], error)
	CreateSession(context.Context, *connect.Request[CreateSessionRequest]) (*connect.Response[CreateSessionResponse], error)
}

// NewReceiptServiceClient constructs a client for ReceiptService at baseURL
// (for example, http://localhost:8080).
func NewReceiptServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) ReceiptServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(Codec{})}, opts...)
	return &receiptServiceClient{
		parseReceipt:   connect.NewClient[ParseReceiptRequest, ParseReceiptResponse](httpClient, baseURL+ReceiptServiceParseReceiptProcedure, opts...),
		calculateBills: connect.NewClient[CalculateBillsRequest, CalculateBillsResponse](httpClient, baseURL+ReceiptServiceCalculateBillsProcedure, opts...),
		createSession:  connect.NewClient[CreateSessionRequest, CreateSessionResponse](httpClient, baseURL+ReceiptServiceCreateSessionProcedure, opts...),
	}
}

type receiptServiceClient struct {
	parseReceipt   *connect.Client[ParseReceiptRequest, ParseReceiptResponse]
	calculateBills *connect.Client[CalculateBillsRequest, CalculateBillsResponse]
	createSession  *connect.Client[CreateSessionRequest, CreateSessionResponse]
}

func (c *receiptServiceClient) ParseReceipt(ctx context.Context, req *connect.Request[ParseReceiptRequest]) (*connect.Response[ParseReceiptResponse], error) {
	return c.parseReceipt.CallUnary(ctx, req)
}

func (c *receiptServiceClient) CalculateBills(ctx context.Context, req *connect.Request[CalculateBillsRequest]) (*connect.Response[CalculateBillsResponse], error) {
	return c.calculateBills.CallUnary(ctx, req)
}

func (c *receiptServiceClient) CreateSession(ctx context.Context, req *connect.Request[CreateSessionRequest]) (*connect.Response[CreateSessionResponse], error) {
	return c.createSession.CallUnary(ctx, req)
}

// route dispatches on the exact procedure path.
func route(routes map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		h.ServeHTTP(w, r)
	})
}
