// Package http is the inbound HTTP surface: platform webhooks, the dispatch
// and lifecycle REST API, the tracking read API and the websocket upgrade for
// real-time subscribers.
package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"foodcourt/internal/core/application/presence"
	"foodcourt/internal/core/application/usecases/commands"
	"foodcourt/internal/core/application/usecases/queries"
	"foodcourt/internal/core/domain/model/kernel"
	"foodcourt/internal/core/domain/model/order"
	"foodcourt/internal/core/ports"
	"foodcourt/internal/ingestion"
	"foodcourt/internal/pkg/errs"
	"foodcourt/internal/realtime"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// signatureHeader carries the hex HMAC digest of the webhook body.
const signatureHeader = "X-Webhook-Signature"

// Server coordinates between HTTP handlers and application use cases.
type Server struct {
	ingestionService *ingestion.Service

	// Command handlers
	createOrderHandler    commands.CreateOrderCommandHandler
	transitionHandler     commands.TransitionOrderCommandHandler
	acceptHandler         commands.AcceptOrderCommandHandler
	releaseHandler        commands.ReleaseAssignmentCommandHandler
	markPaidHandler       commands.MarkOrderPaidCommandHandler
	recordLocationHandler commands.RecordLocationCommandHandler

	// Query handlers
	availableOrdersHandler queries.GetAvailableOrdersQueryHandler
	trackOrderHandler      queries.TrackOrderQueryHandler

	tracker  *presence.Tracker
	hub      *realtime.Hub
	gatherer prometheus.Gatherer
	logger   *slog.Logger
}

// Handlers bundles the use-case dependencies of the server.
type Handlers struct {
	Ingestion       *ingestion.Service
	CreateOrder     commands.CreateOrderCommandHandler
	Transition      commands.TransitionOrderCommandHandler
	Accept          commands.AcceptOrderCommandHandler
	Release         commands.ReleaseAssignmentCommandHandler
	MarkPaid        commands.MarkOrderPaidCommandHandler
	RecordLocation  commands.RecordLocationCommandHandler
	AvailableOrders queries.GetAvailableOrdersQueryHandler
	TrackOrder      queries.TrackOrderQueryHandler
	Presence        *presence.Tracker
}

// NewServer creates the HTTP server with its use-case handlers.
func NewServer(
	handlers Handlers,
	hub *realtime.Hub,
	gatherer prometheus.Gatherer,
	logger *slog.Logger,
) *Server {
	return &Server{
		ingestionService:       handlers.Ingestion,
		createOrderHandler:     handlers.CreateOrder,
		transitionHandler:      handlers.Transition,
		acceptHandler:          handlers.Accept,
		releaseHandler:         handlers.Release,
		markPaidHandler:        handlers.MarkPaid,
		recordLocationHandler:  handlers.RecordLocation,
		availableOrdersHandler: handlers.AvailableOrders,
		trackOrderHandler:      handlers.TrackOrder,
		tracker:                handlers.Presence,
		hub:                    hub,
		gatherer:               gatherer,
		logger:                 logger.With("component", "http"),
	}
}

// RegisterRoutes mounts every endpoint on the echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api/v1")
	api.POST("/tenants/:tenantId/webhooks/:platform", s.HandleWebhook)
	api.POST("/tenants/:tenantId/orders", s.CreateOrder)
	api.POST("/tenants/:tenantId/orders/:orderId/transition", s.TransitionOrder)
	api.POST("/tenants/:tenantId/orders/:orderId/accept", s.AcceptOrder)
	api.POST("/tenants/:tenantId/orders/:orderId/release", s.ReleaseOrder)
	api.POST("/tenants/:tenantId/payments/callback", s.PaymentCallback)
	api.GET("/tenants/:tenantId/orders/available", s.GetAvailableOrders)
	api.GET("/tenants/:tenantId/orders/:orderId/track", s.TrackOrder)
	api.GET("/tenants/:tenantId/drivers/online", s.GetOnlineDrivers)

	e.GET("/ws", s.HandleWebSocket)
	e.GET("/health", s.Health)
	e.GET("/metrics", echo.WrapHandler(
		promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
}

// HandleWebhook handles POST /api/v1/tenants/:tenantId/webhooks/:platform.
// Duplicates answer 200 so the platform stops retrying.
func (s *Server) HandleWebhook(ctx echo.Context) error {
	tenantID, err := kernel.UUIDFromString(ctx.Param("tenantId"))
	if err != nil {
		return badRequest(ctx, "Invalid tenant id")
	}

	body, err := readBody(ctx)
	if err != nil {
		return badRequest(ctx, "Unreadable request body")
	}

	result, err := s.ingestionService.Ingest(
		ctx.Request().Context(),
		ctx.Param("platform"),
		tenantID,
		body,
		ctx.Request().Header.Get(signatureHeader))
	if err != nil {
		return s.respondError(ctx, err)
	}

	status := http.StatusCreated
	if !result.Created {
		status = http.StatusOK
	}
	return ctx.JSON(status, ingestResponse{
		OrderID:   result.OrderID.String(),
		Duplicate: !result.Created,
	})
}

// CreateOrder handles POST /api/v1/tenants/:tenantId/orders - a storefront
// order placed directly with the platform.
func (s *Server) CreateOrder(ctx echo.Context) error {
	tenantID, err := kernel.UUIDFromString(ctx.Param("tenantId"))
	if err != nil {
		return badRequest(ctx, "Invalid tenant id")
	}

	var req createOrderRequest
	if err = ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	cmd, err := req.toCommand(tenantID)
	if err != nil {
		return badRequest(ctx, "Invalid order data: "+err.Error())
	}

	if err = s.createOrderHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.respondError(ctx, err)
	}
	return ctx.JSON(http.StatusCreated, createOrderResponse{OrderID: cmd.OrderID().String()})
}

// TransitionOrder handles POST /api/v1/tenants/:tenantId/orders/:orderId/transition.
func (s *Server) TransitionOrder(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("orderId"))
	if err != nil {
		return badRequest(ctx, "Invalid order id")
	}

	var req transitionRequest
	if err = ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}
	actorID, err := kernel.UUIDFromString(req.ActorID)
	if err != nil {
		return badRequest(ctx, "Invalid actor id")
	}

	cmd, err := commands.NewTransitionOrderCommand(
		orderID, order.Status(req.Target), order.ActorRole(req.Role), actorID)
	if err != nil {
		return badRequest(ctx, "Invalid transition: "+err.Error())
	}

	if err = s.transitionHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.respondError(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

// AcceptOrder handles POST /api/v1/tenants/:tenantId/orders/:orderId/accept.
// Exactly one driver wins; everyone else gets 409.
func (s *Server) AcceptOrder(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("orderId"))
	if err != nil {
		return badRequest(ctx, "Invalid order id")
	}

	var req driverRequest
	if err = ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}
	driverID, err := kernel.UUIDFromString(req.DriverID)
	if err != nil {
		return badRequest(ctx, "Invalid driver id")
	}

	cmd, err := commands.NewAcceptOrderCommand(orderID, driverID)
	if err != nil {
		return badRequest(ctx, "Invalid accept request: "+err.Error())
	}

	if err = s.acceptHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.respondError(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

// ReleaseOrder handles POST /api/v1/tenants/:tenantId/orders/:orderId/release.
func (s *Server) ReleaseOrder(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("orderId"))
	if err != nil {
		return badRequest(ctx, "Invalid order id")
	}

	var req driverRequest
	if err = ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}
	driverID, err := kernel.UUIDFromString(req.DriverID)
	if err != nil {
		return badRequest(ctx, "Invalid driver id")
	}

	cmd, err := commands.NewReleaseAssignmentCommand(orderID, driverID)
	if err != nil {
		return badRequest(ctx, "Invalid release request: "+err.Error())
	}

	if err = s.releaseHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.respondError(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

// PaymentCallback handles POST /api/v1/tenants/:tenantId/payments/callback -
// the payment provider confirming capture for a card order.
func (s *Server) PaymentCallback(ctx echo.Context) error {
	var req paymentCallbackRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}
	orderID, err := kernel.UUIDFromString(req.OrderID)
	if err != nil {
		return badRequest(ctx, "Invalid order id")
	}

	cmd, err := commands.NewMarkOrderPaidCommand(orderID)
	if err != nil {
		return badRequest(ctx, "Invalid payment callback: "+err.Error())
	}

	if err = s.markPaidHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.respondError(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

// GetAvailableOrders handles GET /api/v1/tenants/:tenantId/orders/available.
// Optional lat/lon query parameters enrich the response with distance and ETA.
func (s *Server) GetAvailableOrders(ctx echo.Context) error {
	tenantID, err := kernel.UUIDFromString(ctx.Param("tenantId"))
	if err != nil {
		return badRequest(ctx, "Invalid tenant id")
	}

	var driverLocation *kernel.GeoPoint
	if latRaw, lonRaw := ctx.QueryParam("lat"), ctx.QueryParam("lon"); latRaw != "" && lonRaw != "" {
		lat, latErr := strconv.ParseFloat(latRaw, 64)
		lon, lonErr := strconv.ParseFloat(lonRaw, 64)
		if latErr != nil || lonErr != nil {
			return badRequest(ctx, "Invalid coordinates")
		}
		location, locErr := kernel.NewGeoPoint(lat, lon)
		if locErr != nil {
			return badRequest(ctx, "Invalid coordinates")
		}
		driverLocation = &location
	}

	query, err := queries.NewGetAvailableOrdersQuery(tenantID, driverLocation)
	if err != nil {
		return badRequest(ctx, "Invalid query: "+err.Error())
	}

	orders, err := s.availableOrdersHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.respondError(ctx, err)
	}

	response := make([]availableOrderResponse, len(orders))
	for i, o := range orders {
		response[i] = availableOrderResponse{
			OrderID:          o.OrderID.String(),
			CustomerAddress:  o.CustomerAddress,
			Lat:              o.CustomerLocation.Lat(),
			Lon:              o.CustomerLocation.Lon(),
			TotalCents:       o.TotalCents,
			DeliveryFeeCents: o.DeliveryFeeCents,
			DistanceKm:       o.DistanceKm,
			EtaMinutes:       o.EtaMinutes,
		}
	}
	return ctx.JSON(http.StatusOK, response)
}

// TrackOrder handles GET /api/v1/tenants/:tenantId/orders/:orderId/track.
func (s *Server) TrackOrder(ctx echo.Context) error {
	tenantID, err := kernel.UUIDFromString(ctx.Param("tenantId"))
	if err != nil {
		return badRequest(ctx, "Invalid tenant id")
	}
	orderID, err := kernel.UUIDFromString(ctx.Param("orderId"))
	if err != nil {
		return badRequest(ctx, "Invalid order id")
	}

	query, err := queries.NewTrackOrderQuery(tenantID, orderID)
	if err != nil {
		return badRequest(ctx, "Invalid query: "+err.Error())
	}

	view, err := s.trackOrderHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.respondError(ctx, err)
	}

	response := trackOrderResponse{
		OrderID:      view.OrderID.String(),
		Status:       view.Status.String(),
		DeliveryType: string(view.DeliveryType),
	}
	for _, change := range view.History {
		response.History = append(response.History, statusChangeResponse{
			Status: change.Status.String(),
			At:     change.At.Format(time.RFC3339),
			Actor:  string(change.Actor),
		})
	}
	if view.Driver != nil {
		driverID := view.Driver.String()
		response.DriverID = &driverID
	}
	if view.DriverLocation != nil {
		response.DriverLocation = &driverLocationResponse{
			Lat:        view.DriverLocation.Location.Lat(),
			Lon:        view.DriverLocation.Location.Lon(),
			RecordedAt: view.DriverLocation.RecordedAt.Format(time.RFC3339),
		}
	}
	return ctx.JSON(http.StatusOK, response)
}

// GetOnlineDrivers handles GET /api/v1/tenants/:tenantId/drivers/online - the
// dashboard's view of the tenant's live dispatch pool.
func (s *Server) GetOnlineDrivers(ctx echo.Context) error {
	tenantID, err := kernel.UUIDFromString(ctx.Param("tenantId"))
	if err != nil {
		return badRequest(ctx, "Invalid tenant id")
	}

	count, err := s.tracker.OnlineCount(ctx.Request().Context(), tenantID)
	if err != nil {
		return s.respondError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, onlineDriversResponse{OnlineDrivers: count})
}

// Health handles GET /health.
func (s *Server) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]any{
		"status":      "ok",
		"connections": s.hub.ConnectionCount(),
	})
}

// respondError maps application errors to HTTP statuses. Anything unmapped is
// a 500 with a generic body; details stay in the log.
func (s *Server) respondError(ctx echo.Context, err error) error {
	switch {
	case errors.Is(err, ingestion.ErrUnknownPlatform):
		return jsonError(ctx, http.StatusNotFound, "Unknown platform")
	case errors.Is(err, ingestion.ErrInvalidSignature):
		return jsonError(ctx, http.StatusUnauthorized, "Invalid signature")
	case errors.Is(err, ingestion.ErrMalformedPayload):
		return jsonError(ctx, http.StatusBadRequest, "Malformed payload")
	case errors.Is(err, commands.ErrOrderAlreadyAssigned),
		errors.Is(err, commands.ErrOrderNotReady),
		errors.Is(err, commands.ErrAssignmentNotHeld),
		errors.Is(err, order.ErrAlreadyTerminal),
		errors.Is(err, order.ErrInvalidTransition),
		errors.Is(err, order.ErrPaymentNotSettled),
		errors.Is(err, order.ErrNoDriverAssigned),
		errors.Is(err, ports.ErrConcurrentUpdate):
		return jsonError(ctx, http.StatusConflict, err.Error())
	case errors.Is(err, order.ErrUnauthorizedRole):
		return jsonError(ctx, http.StatusForbidden, err.Error())
	case errors.Is(err, errs.ErrObjectNotFound):
		return jsonError(ctx, http.StatusNotFound, "Not found")
	case errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		return jsonError(ctx, http.StatusBadRequest, err.Error())
	}

	s.logger.Error("request failed",
		"method", ctx.Request().Method,
		"path", ctx.Request().URL.Path,
		"error", err)
	return jsonError(ctx, http.StatusInternalServerError, "Internal error")
}
