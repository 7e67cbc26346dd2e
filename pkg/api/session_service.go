package api

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

// SessionServiceName is the fully-qualified name of the SessionService service.
const SessionServiceName = "tabsplit.v1.SessionService"

const (
	SessionServiceGetSessionProcedure       = "/tabsplit.v1.SessionService/GetSession"
	SessionServiceLoadReceiptProcedure      = "/tabsplit.v1.SessionService/LoadReceipt"
	SessionServiceAddItemProcedure          = "/tabsplit.v1.SessionService/AddItem"
	SessionServiceUpdateItemProcedure       = "/tabsplit.v1.SessionService/UpdateItem"
	SessionServiceDeleteItemProcedure       = "/tabsplit.v1.SessionService/DeleteItem"
	SessionServiceSetTipPercentageProcedure = "/tabsplit.v1.SessionService/SetTipPercentage"
	SessionServiceAddPersonProcedure        = "/tabsplit.v1.SessionService/AddPerson"
	SessionServiceRemovePersonProcedure     = "/tabsplit.v1.SessionService/RemovePerson"
	SessionServiceUpdateAssignmentProcedure = "/tabsplit.v1.SessionService/UpdateAssignment"
	SessionServiceGetSummaryProcedure       = "/tabsplit.v1.SessionService/GetSummary"
	SessionServiceDeleteSessionProcedure    = "/tabsplit.v1.SessionService/DeleteSession"
)

// SessionServiceHandler is implemented by servers of SessionService.
// Every procedure acts on the session named by the caller's bearer token.
type SessionServiceHandler interface {
	GetSession(context.Context, *connect.Request[GetSessionRequest]) (*connect.Response[SessionResponse], error)
	LoadReceipt(context.Context, *connect.Request[LoadReceiptRequest]) (*connect.Response[SessionResponse], error)
	AddItem(context.Context, *connect.Request[AddItemRequest]) (*connect.Response[AddItemResponse], error)
	UpdateItem(context.Context, *connect.Request[UpdateItemRequest]) (*connect.Response[SessionResponse], error)
	DeleteItem(context.Context, *connect.Request[DeleteItemRequest]) (*connect.Response[SessionResponse], error)
	SetTipPercentage(context.Context, *connect.Request[SetTipPercentageRequest]) (*connect.Response[SessionResponse], error)
	AddPerson(context.Context, *connect.Request[AddPersonRequest]) (*connect.Response[AddPersonResponse], error)
	RemovePerson(context.Context, *connect.Request[RemovePersonRequest]) (*connect.Response[SessionResponse], error)
	UpdateAssignment(context.Context, *connect.Request[UpdateAssignmentRequest]) (*connect.Response[SessionResponse], error)
	GetSummary(context.Context, *connect.Request[GetSummaryRequest]) (*connect.Response[GetSummaryResponse], error)
	DeleteSession(context.Context, *connect.Request[DeleteSessionRequest]) (*connect.Response[DeleteSessionResponse], error)
}

// NewSessionServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewSessionServiceHandler(svc SessionServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(Codec{})}, opts...)
	routes := map[string]http.Handler{
		SessionServiceGetSessionProcedure:       connect.NewUnaryHandler(SessionServiceGetSessionProcedure, svc.GetSession, opts...),
		SessionServiceLoadReceiptProcedure:      connect.NewUnaryHandler(SessionServiceLoadReceiptProcedure, svc.LoadReceipt, opts...),
		SessionServiceAddItemProcedure:          connect.NewUnaryHandler(SessionServiceAddItemProcedure, svc.AddItem, opts...),
		SessionServiceUpdateItemProcedure:       connect.NewUnaryHandler(SessionServiceUpdateItemProcedure, svc.UpdateItem, opts...),
		SessionServiceDeleteItemProcedure:       connect.NewUnaryHandler(SessionServiceDeleteItemProcedure, svc.DeleteItem, opts...),
		SessionServiceSetTipPercentageProcedure: connect.NewUnaryHandler(SessionServiceSetTipPercentageProcedure, svc.SetTipPercentage, opts...),
		SessionServiceAddPersonProcedure:        connect.NewUnaryHandler(SessionServiceAddPersonProcedure, svc.AddPerson, opts...),
		SessionServiceRemovePersonProcedure:     connect.NewUnaryHandler(SessionServiceRemovePersonProcedure, svc.RemovePerson, opts...),
		SessionServiceUpdateAssignmentProcedure: connect.NewUnaryHandler(SessionServiceUpdateAssignmentProcedure, svc.UpdateAssignment, opts...),
		SessionServiceGetSummaryProcedure:       connect.NewUnaryHandler(SessionServiceGetSummaryProcedure, svc.GetSummary, opts...),
		SessionServiceDeleteSessionProcedure:    connect.NewUnaryHandler(SessionServiceDeleteSessionProcedure, svc.DeleteSession, opts...),
	}
	return "/" + SessionServiceName + "/", route(routes)
}

// SessionServiceClient is a client for SessionService. Pass the session
// token with connect.WithInterceptors(BearerToken(token)) or set the
// Authorization header on each request.
type SessionServiceClient interface {
	GetSession(context.Context, *connect.Request[GetSessionRequest]) (*connect.Response[SessionResponse], error)
	LoadReceipt(context.Context, *connect.Request[LoadReceiptRequest]) (*connect.Response[SessionResponse], error)
	AddItem(context.Context, *connect.Request[AddItemRequest]) (*connect.Response[AddItemResponse], error)
	UpdateItem(context.Context, *connect.Request[UpdateItemRequest]) (*connect.Response[SessionResponse], error)
	DeleteItem(context.Context, *connect.Request[DeleteItemRequest]) (*connect.Response[SessionResponse], error)
	SetTipPercentage(context.Context, *connect.Request[SetTipPercentageRequest]) (*connect.Response[SessionResponse], error)
	AddPerson(context.Context, *connect.Request[AddPersonRequest]) (*connect.Response[AddPersonResponse], error)
	RemovePerson(context.Context, *connect.Request[RemovePersonRequest]) (*connect.Response[SessionResponse], error)
	UpdateAssignment(context.Context, *connect.Request[UpdateAssignmentRequest]) (*connect.Response[SessionResponse], error)
	GetSummary(context.Context, *connect.Request[GetSummaryRequest]) (*connect.Response[GetSummaryResponse], error)
	DeleteSession(context.Context, *connect.Request[DeleteSessionRequest]) (*connect.Response[DeleteSessionResponse], error)
}

// NewSessionServiceClient constructs a client for SessionService at baseURL.
func NewSessionServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) SessionServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(Codec{})}, opts...)
	return &sessionServiceClient{
		getSession:       connect.NewClient[GetSessionRequest, SessionResponse](httpClient, baseURL+SessionServiceGetSessionProcedure, opts...),
		loadReceipt:      connect.NewClient[LoadReceiptRequest, SessionResponse](httpClient, baseURL+SessionServiceLoadReceiptProcedure, opts...),
		addItem:          connect.NewClient[AddItemRequest, AddItemResponse](httpClient, baseURL+SessionServiceAddItemProcedure, opts...),
		updateItem:       connect.NewClient[UpdateItemRequest, SessionResponse](httpClient, baseURL+SessionServiceUpdateItemProcedure, opts...),
		deleteItem:       connect.NewClient[DeleteItemRequest, SessionResponse](httpClient, baseURL+SessionServiceDeleteItemProcedure, opts...),
		setTipPercentage: connect.NewClient[SetTipPercentageRequest, SessionResponse](httpClient, baseURL+SessionServiceSetTipPercentageProcedure, opts...),
		addPerson:        connect.NewClient[AddPersonRequest, AddPersonResponse](httpClient, baseURL+SessionServiceAddPersonProcedure, opts...),
		removePerson:     connect.NewClient[RemovePersonRequest, SessionResponse](httpClient, baseURL+SessionServiceRemovePersonProcedure, opts...),
		updateAssignment: connect.NewClient[UpdateAssignmentRequest, SessionResponse](httpClient, baseURL+SessionServiceUpdateAssignmentProcedure, opts...),
		getSummary:       connect.NewClient[GetSummaryRequest, GetSummaryResponse](httpClient, baseURL+SessionServiceGetSummaryProcedure, opts...),
		deleteSession:    connect.NewClient[DeleteSessionRequest, DeleteSessionResponse](httpClient, baseURL+SessionServiceDeleteSessionProcedure, opts...),
	}
}

type sessionServiceClient struct {
	getSession       *connect.Client[GetSessionRequest, SessionResponse]
	loadReceipt      *connect.Client[LoadReceiptRequest, SessionResponse]
	addItem          *connect.Client[AddItemRequest, AddItemResponse]
	updateItem       *connect.Client[UpdateItemRequest, SessionResponse]
	deleteItem       *connect.Client[DeleteItemRequest, SessionResponse]
	setTipPercentage *connect.Client[SetTipPercentageRequest, SessionResponse]
	addPerson        *connect.Client[AddPersonRequest, AddPersonResponse]
	removePerson     *connect.Client[RemovePersonRequest, SessionResponse]
	updateAssignment *connect.Client[UpdateAssignmentRequest, SessionResponse]
	getSummary       *connect.Client[GetSummaryRequest, GetSummaryResponse]
	deleteSession    *connect.Client[DeleteSessionRequest, DeleteSessionResponse]
}

func (c *sessionServiceClient) GetSession(ctx context.Context, req *connect.Request[GetSessionRequest]) (*connect.Response[SessionResponse], error) {
	return c.getSession.CallUnary(ctx, req)
}

func (c *sessionServiceClient) LoadReceipt(ctx context.Context, req *connect.Request[LoadReceiptRequest]) (*connect.Response[SessionResponse], error) {
	return c.loadReceipt.CallUnary(ctx, req)
}

func (c *sessionServiceClient) AddItem(ctx context.Context, req *connect.Request[AddItemRequest]) (*connect.Response[AddItemResponse], error) {
	return c.addItem.CallUnary(ctx, req)
}

func (c *sessionServiceClient) UpdateItem(ctx context.Context, req *connect.Request[UpdateItemRequest]) (*connect.Response[SessionResponse], error) {
	return c.updateItem.CallUnary(ctx, req)
}

func (c *sessionServiceClient) DeleteItem(ctx context.Context, req *connect.Request[DeleteItemRequest]) (*connect.Response[SessionResponse], error) {
	return c.deleteItem.CallUnary(ctx, req)
}

func (c *sessionServiceClient) SetTipPercentage(ctx context.Context, req *connect.Request[SetTipPercentageRequest]) (*connect.Response[SessionResponse], error) {
	return c.setTipPercentage.CallUnary(ctx, req)
}

func (c *sessionServiceClient) AddPerson(ctx context.Context, req *connect.Request[AddPersonRequest]) (*connect.Response[AddPersonResponse], error) {
	return c.addPerson.CallUnary(ctx, req)
}

func (c *sessionServiceClient) RemovePerson(ctx context.Context, req *connect.Request[RemovePersonRequest]) (*connect.Response[SessionResponse], error) {
	return c.removePerson.CallUnary(ctx, req)
}

func (c *sessionServiceClient) UpdateAssignment(ctx context.Context, req *connect.Request[UpdateAssignmentRequest]) (*connect.Response[SessionResponse], error) {
	return c.updateAssignment.CallUnary(ctx, req)
}

func (c *sessionServiceClient) GetSummary(ctx context.Context, req *connect.Request[GetSummaryRequest]) (*connect.Response[GetSummaryResponse], error) {
	return c.getSummary.CallUnary(ctx, req)
}

func (c *sessionServiceClient) DeleteSession(ctx context.Context, req *connect.Request[DeleteSessionRequest]) (*connect.Response[DeleteSessionResponse], error) {
	return c.deleteSession.CallUnary(ctx, req)
}

// BearerToken returns a client interceptor that sends token in the
// Authorization header of every request.
func BearerToken(token string) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if req.Spec().IsClient {
				req.Header().Set("Authorization", "Bearer "+token)
			}
			return next(ctx, req)
		}
	}
}
