package http

import (
	"errors"
	"net/http"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/dispatch"
	"dispatch/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// DispatchController starts and cancels courier searches. Implemented by
// dispatch.Registry; the HTTP layer only needs these two operations.
type DispatchController interface {
	StartDispatch(orderID kernel.UUID, pickup kernel.GeoLocation) error
	CancelDispatch(orderID kernel.UUID) error
}

// Server coordinates between HTTP handlers and application use cases.
type Server struct {
	dispatches DispatchController

	// Command handlers
	startDispatchHandler         commands.StartDispatchCommandHandler
	registerCourierHandler       commands.RegisterCourierCommandHandler
	reportCourierLocationHandler commands.ReportCourierLocationCommandHandler

	// Query handlers
	getActiveDispatchesHandler queries.GetActiveDispatchesQueryHandler
}

// NewServer creates a new HTTP server with the required command and query handlers.
func NewServer(
	dispatches DispatchController,
	startDispatchHandler commands.StartDispatchCommandHandler,
	registerCourierHandler commands.RegisterCourierCommandHandler,
	reportCourierLocationHandler commands.ReportCourierLocationCommandHandler,
	getActiveDispatchesHandler queries.GetActiveDispatchesQueryHandler,
) *Server {
	return &Server{
		dispatches:                   dispatches,
		startDispatchHandler:         startDispatchHandler,
		registerCourierHandler:       registerCourierHandler,
		reportCourierLocationHandler: reportCourierLocationHandler,
		getActiveDispatchesHandler:   getActiveDispatchesHandler,
	}
}

// RegisterRoutes attaches all API routes to the echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api/v1")
	api.POST("/dispatches", s.StartDispatch)
	api.GET("/dispatches", s.GetActiveDispatches)
	api.DELETE("/dispatches/:orderID", s.CancelDispatch)
	api.POST("/couriers", s.RegisterCourier)
	api.POST("/couriers/:courierID/location", s.ReportCourierLocation)
	e.GET("/health", s.Health)
}

// StartDispatchRequest is the payload for POST /api/v1/dispatches.
type StartDispatchRequest struct {
	OrderID   string  `json:"order_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// DispatchResponse represents one order waiting for a courier.
type DispatchResponse struct {
	OrderID   string  `json:"order_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// RegisterCourierRequest is the payload for POST /api/v1/couriers.
type RegisterCourierRequest struct {
	Name     string `json:"name"`
	Approved bool   `json:"approved"`
}

// RegisterCourierResponse carries the id assigned to a new courier.
type RegisterCourierResponse struct {
	ID string `json:"id"`
}

// ReportLocationRequest is the payload for POST /api/v1/couriers/:courierID/location.
type ReportLocationRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ErrorResponse is the error body returned by all endpoints.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// StartDispatch handles POST /api/v1/dispatches. It registers the order and
// starts the courier search for it.
func (s *Server) StartDispatch(ctx echo.Context) error {
	var request StartDispatchRequest
	if err := ctx.Bind(&request); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	orderID, err := kernel.UUIDFromString(request.OrderID)
	if err != nil {
		return badRequest(ctx, "Invalid order id")
	}

	pickup, err := kernel.NewGeoLocation(request.Latitude, request.Longitude)
	if err != nil {
		return badRequest(ctx, "Invalid pickup location")
	}

	command, err := commands.NewStartDispatchCommand(orderID, pickup)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	if err = s.startDispatchHandler.Handle(ctx.Request().Context(), command); err != nil {
		if errors.Is(err, commands.ErrOrderAlreadySettled) {
			return conflict(ctx, "Order already settled")
		}
		return internalError(ctx, "Failed to register dispatch")
	}

	if err = s.dispatches.StartDispatch(orderID, pickup); err != nil {
		if errors.Is(err, dispatch.ErrDispatchAlreadyRunning) {
			return conflict(ctx, "Dispatch already running")
		}
		return internalError(ctx, "Failed to start dispatch")
	}

	return ctx.NoContent(http.StatusAccepted)
}

// CancelDispatch handles DELETE /api/v1/dispatches/:orderID. It stops the
// courier search and triggers the order's compensation flow.
func (s *Server) CancelDispatch(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("orderID"))
	if err != nil {
		return badRequest(ctx, "Invalid order id")
	}

	if err = s.dispatches.CancelDispatch(orderID); err != nil {
		if errors.Is(err, dispatch.ErrDispatchNotFound) {
			return notFound(ctx, "No running dispatch for order")
		}
		return internalError(ctx, "Failed to cancel dispatch")
	}

	return ctx.NoContent(http.StatusNoContent)
}

// GetActiveDispatches handles GET /api/v1/dispatches. It lists every order
// still waiting for a courier.
func (s *Server) GetActiveDispatches(ctx echo.Context) error {
	query := queries.NewGetActiveDispatchesQuery()

	dispatches, err := s.getActiveDispatchesHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return internalError(ctx, "Failed to retrieve dispatches")
	}

	response := make([]DispatchResponse, len(dispatches))
	for i, d := range dispatches {
		response[i] = DispatchResponse{
			OrderID:   d.ID.String(),
			Latitude:  d.Pickup.Latitude(),
			Longitude: d.Pickup.Longitude(),
		}
	}

	return ctx.JSON(http.StatusOK, response)
}

// RegisterCourier handles POST /api/v1/couriers.
func (s *Server) RegisterCourier(ctx echo.Context) error {
	var request RegisterCourierRequest
	if err := ctx.Bind(&request); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	command, err := commands.NewRegisterCourierCommand(request.Name, request.Approved)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	id, err := s.registerCourierHandler.Handle(ctx.Request().Context(), command)
	if err != nil {
		return internalError(ctx, "Failed to register courier")
	}

	return ctx.JSON(http.StatusCreated, RegisterCourierResponse{ID: id.String()})
}

// ReportCourierLocation handles POST /api/v1/couriers/:courierID/location.
func (s *Server) ReportCourierLocation(ctx echo.Context) error {
	courierID, err := kernel.UUIDFromString(ctx.Param("courierID"))
	if err != nil {
		return badRequest(ctx, "Invalid courier id")
	}

	var request ReportLocationRequest
	if err = ctx.Bind(&request); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	location, err := kernel.NewGeoLocation(request.Latitude, request.Longitude)
	if err != nil {
		return badRequest(ctx, "Invalid location")
	}

	command, err := commands.NewReportCourierLocationCommand(courierID, location)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	if err = s.reportCourierLocationHandler.Handle(ctx.Request().Context(), command); err != nil {
		if errors.Is(err, errs.ErrObjectNotFound) {
			return notFound(ctx, "Courier not found")
		}
		return internalError(ctx, "Failed to record location")
	}

	return ctx.NoContent(http.StatusNoContent)
}

// Health handles GET /health.
func (s *Server) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "healthy"})
}

func badRequest(ctx echo.Context, message string) error {
	return ctx.JSON(http.StatusBadRequest, ErrorResponse{
		Code:    http.StatusBadRequest,
		Message: message,
	})
}

func notFound(ctx echo.Context, message string) error {
	return ctx.JSON(http.StatusNotFound, ErrorResponse{
		Code:    http.StatusNotFound,
		Message: message,
	})
}

func conflict(ctx echo.Context, message string) error {
	return ctx.JSON(http.StatusConflict, ErrorResponse{
		Code:    http.StatusConflict,
		Message: message,
	})
}

func internalError(ctx echo.Context, message string) error {
	return ctx.JSON(http.StatusInternalServerError, ErrorResponse{
		Code:    http.StatusInternalServerError,
		Message: message,
	})
}
