// Package http is the REST adapter consumed by the live tracking screen.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"harvestlog/internal/core/application/tracker"
	"harvestlog/internal/core/application/usecases/commands"
	"harvestlog/internal/core/application/usecases/queries"
	"harvestlog/internal/core/domain/model/kernel"
	"harvestlog/internal/core/domain/model/order"
	"harvestlog/internal/core/domain/model/routing"
	"harvestlog/internal/core/domain/model/tracking"
	"harvestlog/internal/core/domain/services"

	"github.com/labstack/echo/v4"
)

// DefaultNearbyRadiusKm is used when the nearby query has no radius.
const DefaultNearbyRadiusKm = 50.0

// LocationSource exposes the tracker state.
type LocationSource interface {
	Snapshot() tracker.Snapshot
}

// RouteSource exposes the last computed routes.
type RouteSource interface {
	Routes() routing.Routes
	Loading() bool
}

// HistoryReader lists the journal events of an order.
type HistoryReader interface {
	Handle(ctx context.Context, query queries.GetOrderHistoryQuery) ([]queries.GetOrderHistoryQueryResponse, error)
}

// Handlers groups the use cases the server delegates to. History may be nil
// when the journal is disabled.
type Handlers struct {
	CreateOrder       commands.CreateOrderCommandHandler
	AssignTransporter commands.AssignTransporterCommandHandler
	TransitionOrder   commands.TransitionOrderCommandHandler
	CancelOrder       commands.CancelOrderCommandHandler
	ClearOrder        commands.ClearOrderCommandHandler
	SendChatMessage   commands.SendChatMessageCommandHandler

	GetActiveOrder  queries.GetActiveOrderQueryHandler
	GetChatMessages queries.GetChatMessagesQueryHandler
	History         HistoryReader
}

// Server translates HTTP requests into commands and queries.
type Server struct {
	handlers  Handlers
	locations LocationSource
	routes    RouteSource
	logger    *slog.Logger
	now       func() time.Time
}

func NewServer(handlers Handlers, locations LocationSource, routes RouteSource, logger *slog.Logger) *Server {
	return &Server{
		handlers:  handlers,
		locations: locations,
		routes:    routes,
		logger:    logger.With("component", "HTTPServer"),
		now:       time.Now,
	}
}

// Register mounts the API under /api/v1.
func (s *Server) Register(e *echo.Echo) {
	api := e.Group("/api/v1")

	api.POST("/orders", s.CreateOrder)
	api.GET("/orders/active", s.GetActiveOrder)
	api.DELETE("/orders/active", s.ClearOrder)
	api.POST("/orders/active/transporter", s.AssignTransporter)
	api.POST("/orders/active/transitions", s.TransitionOrder)
	api.POST("/orders/active/cancel", s.CancelOrder)
	api.GET("/orders/:id/history", s.GetOrderHistory)

	api.GET("/locations", s.GetLocations)
	api.GET("/nearby", s.GetNearby)
	api.GET("/routes", s.GetRoutes)

	api.GET("/chat/messages", s.GetChatMessages)
	api.POST("/chat/messages", s.SendChatMessage)
}

// CreateOrder handles POST /api/v1/orders. Buyer and seller default to the
// tracked session parties.
func (s *Server) CreateOrder(ctx echo.Context) error {
	var req CreateOrderRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	items := make([]order.Item, 0, len(req.Items))
	for _, it := range req.Items {
		item, err := order.NewItem(it.Name, it.Quantity, it.PricePerKg)
		if err != nil {
			return s.fail(ctx, err)
		}
		items = append(items, item)
	}

	snapshot := s.locations.Snapshot()
	buyer, err := s.party(req.Buyer, snapshot.Buyer, kernel.RoleBuyer)
	if err != nil {
		return s.fail(ctx, err)
	}
	seller, err := s.party(req.Seller, snapshot.Seller, kernel.RoleSeller)
	if err != nil {
		return s.fail(ctx, err)
	}

	cmd, err := commands.NewCreateOrderCommand(buyer, seller, items)
	if err != nil {
		return s.fail(ctx, err)
	}

	created, err := s.handlers.CreateOrder.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, fromOrder(created))
}

// GetActiveOrder handles GET /api/v1/orders/active.
func (s *Server) GetActiveOrder(ctx echo.Context) error {
	resp, err := s.handlers.GetActiveOrder.Handle(ctx.Request().Context())
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, ActiveOrder{Order: fromOrder(resp.Order), Error: resp.Error})
}

// AssignTransporter handles POST /api/v1/orders/active/transporter. Without a
// body the tracked transporter is assigned.
func (s *Server) AssignTransporter(ctx echo.Context) error {
	var req AssignTransporterRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	transporter, err := s.party(req.Transporter, s.locations.Snapshot().Transport, kernel.RoleTransport)
	if err != nil {
		return s.fail(ctx, err)
	}

	cmd, err := commands.NewAssignTransporterCommand(transporter)
	if err != nil {
		return s.fail(ctx, err)
	}

	assigned, err := s.handlers.AssignTransporter.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, fromOrder(assigned))
}

// TransitionOrder handles POST /api/v1/orders/active/transitions.
func (s *Server) TransitionOrder(ctx echo.Context) error {
	var req TransitionRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	status, err := order.ParseStatus(req.Status)
	if err != nil {
		return s.fail(ctx, err)
	}

	cmd, err := commands.NewTransitionOrderCommand(status)
	if err != nil {
		return s.fail(ctx, err)
	}

	updated, err := s.handlers.TransitionOrder.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, fromOrder(updated))
}

// CancelOrder handles POST /api/v1/orders/active/cancel.
func (s *Server) CancelOrder(ctx echo.Context) error {
	cancelled, ok, err := s.handlers.CancelOrder.Handle(ctx.Request().Context())
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, CancelResult{Order: fromOrder(cancelled), Cancelled: ok})
}

// ClearOrder handles DELETE /api/v1/orders/active.
func (s *Server) ClearOrder(ctx echo.Context) error {
	if err := s.handlers.ClearOrder.Handle(ctx.Request().Context()); err != nil {
		return s.fail(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// GetOrderHistory handles GET /api/v1/orders/:id/history.
func (s *Server) GetOrderHistory(ctx echo.Context) error {
	if s.handlers.History == nil {
		return ctx.JSON(http.StatusNotImplemented, Error{
			Code:    http.StatusNotImplemented,
			Message: "Order history is not enabled",
		})
	}

	id, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "Invalid order id")
	}

	query, err := queries.NewGetOrderHistoryQuery(id)
	if err != nil {
		return s.fail(ctx, err)
	}

	events, err := s.handlers.History.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err)
	}

	response := make([]HistoryEvent, len(events))
	for i, e := range events {
		response[i] = HistoryEvent{FromStatus: e.FromStatus, ToStatus: e.ToStatus, OccurredAt: e.OccurredAt}
	}
	return ctx.JSON(http.StatusOK, response)
}

// GetLocations handles GET /api/v1/locations.
func (s *Server) GetLocations(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, fromSnapshot(s.locations.Snapshot()))
}

// GetNearby handles GET /api/v1/nearby?lat=&lng=&radius=. The reference point
// defaults to the buyer.
func (s *Server) GetNearby(ctx echo.Context) error {
	snapshot := s.locations.Snapshot()
	buyerAt := snapshot.Buyer.Location()

	lat, err := floatParam(ctx, "lat", buyerAt.Lat())
	if err != nil {
		return badRequest(ctx, "Invalid lat")
	}
	lng, err := floatParam(ctx, "lng", buyerAt.Lng())
	if err != nil {
		return badRequest(ctx, "Invalid lng")
	}
	radius, err := floatParam(ctx, "radius", DefaultNearbyRadiusKm)
	if err != nil {
		return badRequest(ctx, "Invalid radius")
	}

	nearby, err := services.FilterByRadius(snapshot.Entities(), lat, lng, radius)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, fromNearby(nearby))
}

// GetRoutes handles GET /api/v1/routes.
func (s *Server) GetRoutes(ctx echo.Context) error {
	r := s.routes.Routes()
	return ctx.JSON(http.StatusOK, Routes{
		Loading:           s.routes.Loading(),
		BuyerToSeller:     fromRoute(r.BuyerToSeller),
		SellerToTransport: fromRoute(r.SellerToTransport),
		BuyerToTransport:  fromRoute(r.BuyerToTransport),
	})
}

// GetChatMessages handles GET /api/v1/chat/messages.
func (s *Server) GetChatMessages(ctx echo.Context) error {
	messages, err := s.handlers.GetChatMessages.Handle(ctx.Request().Context())
	if err != nil {
		return s.fail(ctx, err)
	}

	response := make([]Message, len(messages))
	for i, m := range messages {
		response[i] = fromMessage(m)
	}
	return ctx.JSON(http.StatusOK, response)
}

// SendChatMessage handles POST /api/v1/chat/messages.
func (s *Server) SendChatMessage(ctx echo.Context) error {
	var req SendMessageRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	cmd, err := commands.NewSendChatMessageCommand(req.SenderID, req.SenderName, req.SenderRole, req.Content)
	if err != nil {
		return s.fail(ctx, err)
	}

	sent, err := s.handlers.SendChatMessage.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, fromMessage(sent))
}

func (s *Server) party(req *PartyRequest, fallback tracking.EntityLocation, role kernel.Role) (order.Party, error) {
	if req == nil {
		return partyFromEntity(fallback)
	}
	return partyFromRequest(*req, role, s.now())
}

func (s *Server) fail(ctx echo.Context, err error) error {
	if statusFor(err) == http.StatusInternalServerError {
		s.logger.ErrorContext(ctx.Request().Context(), "request failed",
			"method", ctx.Request().Method, "path", ctx.Path(), "error", err)
	}
	return respondError(ctx, err)
}

func floatParam(ctx echo.Context, name string, fallback float64) (float64, error) {
	raw := ctx.QueryParam(name)
	if raw == "" {
		return fallback, nil
	}
	return strconv.ParseFloat(raw, 64)
}
