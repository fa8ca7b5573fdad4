package http_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	httpin "harvestlog/internal/adapters/in/http"
	"harvestlog/internal/adapters/out/geolocation"
	"harvestlog/internal/adapters/out/memory/chatstore"
	"harvestlog/internal/adapters/out/memory/orderstore"
	"harvestlog/internal/core/application/tracker"
	"harvestlog/internal/core/application/usecases/commands"
	"harvestlog/internal/core/application/usecases/queries"
	"harvestlog/internal/core/domain/model/routing"
	"harvestlog/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type staticRoutes struct{ routes routing.Routes }

func (s staticRoutes) Routes() routing.Routes { return s.routes }

func (staticRoutes) Loading() bool { return false }

type MockHistory struct{ mock.Mock }

func (m *MockHistory) Handle(
	ctx context.Context,
	query queries.GetOrderHistoryQuery,
) ([]queries.GetOrderHistoryQueryResponse, error) {
	args := m.Called(ctx, query)
	events, _ := args.Get(0).([]queries.GetOrderHistoryQueryResponse)
	return events, args.Error(1)
}

type testServer struct {
	echo    *echo.Echo
	history *MockHistory
}

func newTestServer(t *testing.T, withHistory bool) *testServer {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)

	cfg := tracker.DefaultConfig()
	cfg.StepSchedule = "@every 1h"
	tr, err := tracker.NewLocationTracker(cfg, geolocation.Unsupported{}, nil, nil, logger)
	require.NoError(t, err)
	tr.Bootstrap(t.Context())
	t.Cleanup(tr.StopTracking)

	orders := orderstore.New(orderstore.DefaultCapacity)
	chats := chatstore.New(0)
	lifecycle := commands.NewOrderLifecycle(orders, nil, nil, logger, nil)
	announcer := commands.NewOrderAnnouncer(chats, nil, logger, nil)

	handlers := httpin.Handlers{
		CreateOrder:       commands.NewCreateOrderCommandHandler(lifecycle, tr, logger),
		AssignTransporter: commands.NewAssignTransporterCommandHandler(lifecycle, chats, announcer, logger),
		TransitionOrder:   commands.NewTransitionOrderCommandHandler(lifecycle, announcer, tr),
		CancelOrder:       commands.NewCancelOrderCommandHandler(lifecycle, announcer, tr),
		ClearOrder:        commands.NewClearOrderCommandHandler(lifecycle, chats, tr, logger),
		SendChatMessage:   commands.NewSendChatMessageCommandHandler(lifecycle, chats, nil, nil),
		GetActiveOrder:    queries.NewGetActiveOrderQueryHandler(lifecycle),
		GetChatMessages:   queries.NewGetChatMessagesQueryHandler(lifecycle, chats),
	}

	ts := &testServer{echo: echo.New()}
	if withHistory {
		ts.history = &MockHistory{}
		handlers.History = ts.history
	}

	httpin.NewServer(handlers, tr, staticRoutes{}, logger).Register(ts.echo)
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	ts.echo.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

const orderBody = `{"items":[{"name":"Tomatoes","quantity":20,"pricePerKg":45}]}`

func TestServer_OrderLifecycle(t *testing.T) {
	ts := newTestServer(t, false)

	rec := ts.do(t, http.MethodGet, "/api/v1/orders/active", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decode[httpin.ActiveOrder](t, rec).Order)

	rec = ts.do(t, http.MethodPost, "/api/v1/orders", orderBody)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[httpin.Order](t, rec)
	assert.Equal(t, "CREATED", created.Status)
	assert.Equal(t, "buyer-demo-001", created.Buyer.ID)
	assert.Equal(t, "Priya Sharma", created.Seller.Name)
	assert.InDelta(t, 900, created.TotalAmount, 1e-9)
	assert.InDelta(t, 140, created.DeliveryFee, 1e-9)
	assert.Nil(t, created.Transporter)

	rec = ts.do(t, http.MethodPost, "/api/v1/orders", orderBody)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/v1/orders/active/transporter", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assigned := decode[httpin.Order](t, rec)
	assert.Equal(t, "TRANSPORT_ASSIGNED", assigned.Status)
	require.NotNil(t, assigned.Transporter)
	assert.Equal(t, "Amit Singh", assigned.Transporter.Name)
	assert.Equal(t, "chat-"+created.ID, assigned.ChatID)

	rec = ts.do(t, http.MethodPost, "/api/v1/orders/active/transporter", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/v1/orders/active/transitions", `{"status":"DELIVERED"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "cannot transition from TRANSPORT_ASSIGNED to DELIVERED",
		decode[httpin.ActiveOrder](t, ts.do(t, http.MethodGet, "/api/v1/orders/active", "")).Error)

	rec = ts.do(t, http.MethodPost, "/api/v1/orders/active/transitions", `{"status":"BOGUS"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/v1/orders/active/transitions", `{"status":"PICKED_UP"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "PICKED_UP", decode[httpin.Order](t, rec).Status)

	rec = ts.do(t, http.MethodPost, "/api/v1/orders/active/cancel", "")
	require.Equal(t, http.StatusOK, rec.Code)
	cancelled := decode[httpin.CancelResult](t, rec)
	assert.True(t, cancelled.Cancelled)
	assert.Equal(t, "CANCELLED", cancelled.Order.Status)

	rec = ts.do(t, http.MethodPost, "/api/v1/orders/active/cancel", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[httpin.CancelResult](t, rec).Cancelled)

	rec = ts.do(t, http.MethodDelete, "/api/v1/orders/active", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/v1/orders/active", "")
	assert.Nil(t, decode[httpin.ActiveOrder](t, rec).Order)
}

func TestServer_CreateOrderValidation(t *testing.T) {
	ts := newTestServer(t, false)

	rec := ts.do(t, http.MethodPost, "/api/v1/orders", `{"items":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/v1/orders", `{"items":[{"name":"Onions","quantity":-1,"pricePerKg":30}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/v1/orders",
		`{"items":[{"name":"Onions","quantity":1,"pricePerKg":30}],"buyer":{"id":"b","name":"B","lat":100,"lng":0}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/v1/orders", `{"items":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_Chat(t *testing.T) {
	ts := newTestServer(t, false)
	const msg = `{"senderId":"buyer-demo-001","senderName":"Rajesh Kumar","senderRole":"buyer","content":"  Hello  "}`

	rec := ts.do(t, http.MethodPost, "/api/v1/chat/messages", msg)
	assert.Equal(t, http.StatusConflict, rec.Code)

	require.Equal(t, http.StatusCreated, ts.do(t, http.MethodPost, "/api/v1/orders", orderBody).Code)
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, "/api/v1/orders/active/transporter", "").Code)

	rec = ts.do(t, http.MethodPost, "/api/v1/chat/messages", msg)
	require.Equal(t, http.StatusCreated, rec.Code)
	sent := decode[httpin.Message](t, rec)
	assert.Equal(t, "Hello", sent.Content)
	assert.Equal(t, "text", sent.Type)
	assert.True(t, strings.HasPrefix(sent.ID, "msg-"))

	rec = ts.do(t, http.MethodPost, "/api/v1/chat/messages", msg)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/v1/chat/messages",
		`{"senderId":"x","senderName":"X","senderRole":"system","content":"hi"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/v1/chat/messages", "")
	require.Equal(t, http.StatusOK, rec.Code)
	messages := decode[[]httpin.Message](t, rec)
	require.Len(t, messages, 3)
	assert.Equal(t, "Order accepted by Amit Singh", messages[0].Content)
	assert.Equal(t, "system", messages[0].Type)
	assert.Equal(t, "Live tracking started", messages[1].Content)
	assert.Equal(t, "Hello", messages[2].Content)
}

func TestServer_Locations(t *testing.T) {
	ts := newTestServer(t, false)

	rec := ts.do(t, http.MethodGet, "/api/v1/locations", "")
	require.Equal(t, http.StatusOK, rec.Code)
	locations := decode[httpin.Locations](t, rec)
	assert.True(t, locations.Ready)
	assert.Equal(t, "Geolocation not supported", locations.Error)
	require.Len(t, locations.Entities, 3)
	assert.Equal(t, "buyer", locations.Entities[0].Role)
	assert.InDelta(t, 28.6139, locations.Entities[0].Location.Lat, 1e-9)
	assert.Greater(t, locations.Distances.BuyerToSeller, 0.0)
	assert.Greater(t, locations.Distances.BuyerToTransport, 0.0)

	rec = ts.do(t, http.MethodGet, "/api/v1/nearby", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]httpin.NearbyEntity](t, rec), 3)

	rec = ts.do(t, http.MethodGet, "/api/v1/nearby?radius=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	nearby := decode[[]httpin.NearbyEntity](t, rec)
	require.Len(t, nearby, 1)
	assert.Equal(t, "buyer-demo-001", nearby[0].Entity.ID)

	rec = ts.do(t, http.MethodGet, "/api/v1/nearby?lat=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/v1/nearby?radius=-2", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/v1/routes", "")
	require.Equal(t, http.StatusOK, rec.Code)
	routes := decode[httpin.Routes](t, rec)
	assert.Nil(t, routes.BuyerToSeller)
	assert.False(t, routes.Loading)
}

func TestServer_History(t *testing.T) {
	disabled := newTestServer(t, false)
	rec := disabled.do(t, http.MethodGet, "/api/v1/orders/0198f1c2-0000-7000-8000-000000000000/history", "")
	assert.Equal(t, http.StatusNotImplemented, rec.Code)

	ts := newTestServer(t, true)

	rec = ts.do(t, http.MethodGet, "/api/v1/orders/not-a-uuid/history", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	at := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	ts.history.On("Handle", mock.Anything, mock.Anything).Return([]queries.GetOrderHistoryQueryResponse{
		{FromStatus: "UNKNOWN", ToStatus: "CREATED", OccurredAt: at},
		{FromStatus: "CREATED", ToStatus: "CANCELLED", OccurredAt: at.Add(time.Minute)},
	}, nil).Once()

	rec = ts.do(t, http.MethodGet, "/api/v1/orders/0198f1c2-0000-7000-8000-000000000000/history", "")
	require.Equal(t, http.StatusOK, rec.Code)
	events := decode[[]httpin.HistoryEvent](t, rec)
	require.Len(t, events, 2)
	assert.Equal(t, "CANCELLED", events[1].ToStatus)

	ts.history.On("Handle", mock.Anything, mock.Anything).
		Return(nil, errs.NewObjectNotFoundError("order", "x")).Once()

	rec = ts.do(t, http.MethodGet, "/api/v1/orders/0198f1c2-0000-7000-8000-000000000000/history", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
