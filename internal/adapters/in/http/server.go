// Package http exposes the parking operations over a JSON API built on echo.
// Every operation response uses the same envelope, and the HTTP status is
// derived from the failure kind reported by the transaction coordinator.
package http

import (
	"net/http"
	"time"

	"parking/internal/core/application/txcoord"
	"parking/internal/core/application/usecases/commands"
	"parking/internal/core/application/usecases/queries"
	"parking/internal/core/domain/model/kernel"
	"parking/internal/core/domain/model/spot"
	"parking/internal/core/domain/model/vehicle"
	"parking/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// Server holds the use case handlers behind the HTTP routes.
type Server struct {
	coordinator *txcoord.Coordinator

	// Command handlers
	registerSpotHandler commands.RegisterSpotCommandHandler
	parkHandler         commands.ParkCommandHandler
	exitHandler         commands.ExitCommandHandler
	transferHandler     commands.TransferCommandHandler
	bulkUpdateHandler   commands.BulkUpdateSpotStatusCommandHandler

	// Query handlers
	getSpotHandler           queries.GetSpotQueryHandler
	checkAvailabilityHandler queries.CheckAvailabilityQueryHandler
}

// Handlers groups the constructor arguments of Server.
type Handlers struct {
	RegisterSpot      commands.RegisterSpotCommandHandler
	Park              commands.ParkCommandHandler
	Exit              commands.ExitCommandHandler
	Transfer          commands.TransferCommandHandler
	BulkUpdate        commands.BulkUpdateSpotStatusCommandHandler
	GetSpot           queries.GetSpotQueryHandler
	CheckAvailability queries.CheckAvailabilityQueryHandler
}

func NewServer(coordinator *txcoord.Coordinator, h Handlers) *Server {
	return &Server{
		coordinator:              coordinator,
		registerSpotHandler:      h.RegisterSpot,
		parkHandler:              h.Park,
		exitHandler:              h.Exit,
		transferHandler:          h.Transfer,
		bulkUpdateHandler:        h.BulkUpdate,
		getSpotHandler:           h.GetSpot,
		checkAvailabilityHandler: h.CheckAvailability,
	}
}

// RegisterRoutes mounts the API under /api/v1.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api/v1")

	api.POST("/spots", s.RegisterSpot)
	api.PATCH("/spots/status", s.BulkUpdateSpotStatus)
	api.GET("/spots/:id", s.GetSpot)
	api.GET("/spots/:id/availability", s.CheckAvailability)

	api.POST("/parking/park", s.Park)
	api.POST("/parking/exit", s.Exit)
	api.POST("/parking/transfer", s.Transfer)

	api.GET("/transactions/stats", s.TransactionStats)
	api.GET("/transactions/:id", s.GetTransaction)
}

// RegisterSpot handles POST /api/v1/spots.
func (s *Server) RegisterSpot(c echo.Context) error {
	var req RegisterSpotRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err, txcoord.KindValidation)
	}

	spotID := kernel.NewUUID()
	if req.ID != "" {
		parsed, err := kernel.UUIDFromString(req.ID)
		if err != nil {
			return fail(c, err, txcoord.KindValidation)
		}
		spotID = parsed
	}

	cmd, err := commands.NewRegisterSpotCommand(spotID)
	if err != nil {
		return fail(c, err, txcoord.KindValidation)
	}

	res := s.registerSpotHandler.Handle(c.Request().Context(), cmd)
	return respond(c, res, http.StatusCreated, func(created *spot.Spot) any {
		return spotView(created)
	})
}

// GetSpot handles GET /api/v1/spots/:id.
func (s *Server) GetSpot(c echo.Context) error {
	spotID, err := kernel.UUIDFromString(c.Param("id"))
	if err != nil {
		return fail(c, err, txcoord.KindValidation)
	}

	query, err := queries.NewGetSpotQuery(spotID)
	if err != nil {
		return fail(c, err, txcoord.KindValidation)
	}

	res := s.getSpotHandler.Handle(c.Request().Context(), query)
	return respond(c, res, http.StatusOK, spotDetailsView)
}

// CheckAvailability handles GET /api/v1/spots/:id/availability.
func (s *Server) CheckAvailability(c echo.Context) error {
	spotID, err := kernel.UUIDFromString(c.Param("id"))
	if err != nil {
		return fail(c, err, txcoord.KindValidation)
	}

	start, err := parseTime("start", c.QueryParam("start"))
	if err != nil {
		return fail(c, err, txcoord.KindValidation)
	}
	end, err := parseTime("end", c.QueryParam("end"))
	if err != nil {
		return fail(c, err, txcoord.KindValidation)
	}
	exclude, err := parseOptionalUUID(c.QueryParam("excludeSessionId"))
	if err != nil {
		return fail(c, err, txcoord.KindValidation)
	}

	query, err := queries.NewCheckAvailabilityQuery(spotID, start, end, exclude)
	if err != nil {
		return fail(c, err, txcoord.KindValidation)
	}

	res := s.checkAvailabilityHandler.Handle(c.Request().Context(), query)
	return respond(c, res, http.StatusOK, availabilityView(spotID))
}

// Park handles POST /api/v1/parking/park.
func (s *Server) Park(c echo.Context) error {
	var req ParkRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err, txcoord.KindValidation)
	}

	spotID, err := kernel.UUIDFromString(req.SpotID)
	if err != nil {
		return fail(c, err, txcoord.KindValidation)
	}
	vehicleType, err := vehicle.ParseType(req.VehicleType)
	if err != nil {
		return fail(c, err, txcoord.KindValidation)
	}

	cmd, err := commands.NewParkCommand(spotID, req.LicensePlate, vehicleType, req.ExpectedEnd)
	if err != nil {
		return fail(c, err, txcoord.KindValidation)
	}

	res := s.parkHandler.Handle(c.Request().Context(), cmd)
	return respond(c, res, http.StatusCreated, parkView)
}

// Exit handles POST /api/v1/parking/exit.
func (s *Server) Exit(c echo.Context) error {
	var req ExitRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err, txcoord.KindValidation)
	}

	cmd, err := commands.NewExitCommand(req.LicensePlate, req.ExitTime)
	if err != nil {
		return fail(c, err, txcoord.KindValidation)
	}

	res := s.exitHandler.Handle(c.Request().Context(), cmd)
	return respond(c, res, http.StatusOK, exitView)
}

// Transfer handles POST /api/v1/parking/transfer.
func (s *Server) Transfer(c echo.Context) error {
	var req TransferRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err, txcoord.KindValidation)
	}

	from, err := kernel.UUIDFromString(req.FromSpotID)
	if err != nil {
		return fail(c, err, txcoord.KindValidation)
	}
	to, err := kernel.UUIDFromString(req.ToSpotID)
	if err != nil {
		return fail(c, err, txcoord.KindValidation)
	}

	cmd, err := commands.NewTransferCommand(from, to, req.Reason)
	if err != nil {
		return fail(c, err, txcoord.KindValidation)
	}

	res := s.transferHandler.Handle(c.Request().Context(), cmd)
	return respond(c, res, http.StatusOK, transferView)
}

// BulkUpdateSpotStatus handles PATCH /api/v1/spots/status.
func (s *Server) BulkUpdateSpotStatus(c echo.Context) error {
	var req BulkUpdateSpotStatusRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err, txcoord.KindValidation)
	}

	ids := make([]kernel.UUID, 0, len(req.SpotIDs))
	for _, raw := range req.SpotIDs {
		id, err := kernel.UUIDFromString(raw)
		if err != nil {
			return fail(c, err, txcoord.KindValidation)
		}
		ids = append(ids, id)
	}
	status, err := spot.ParseStatus(req.Status)
	if err != nil {
		return fail(c, err, txcoord.KindValidation)
	}

	cmd, err := commands.NewBulkUpdateSpotStatusCommand(ids, status, req.Reason)
	if err != nil {
		return fail(c, err, txcoord.KindValidation)
	}

	res := s.bulkUpdateHandler.Handle(c.Request().Context(), cmd)
	return respond(c, res, http.StatusOK, bulkUpdateView)
}

// TransactionStats handles GET /api/v1/transactions/stats.
func (s *Server) TransactionStats(c echo.Context) error {
	return ok(c, s.coordinator.Stats())
}

// GetTransaction handles GET /api/v1/transactions/:id.
func (s *Server) GetTransaction(c echo.Context) error {
	id := c.Param("id")
	info, found := s.coordinator.Lookup(id)
	if !found {
		return fail(c, errs.NewObjectNotFoundError("transaction", id), txcoord.KindBusiness)
	}
	return ok(c, info)
}

func bind(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("request body", err)
	}
	return nil
}

func parseTime(param, raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, errs.NewValueIsRequiredError(param)
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, errs.NewValueIsInvalidErrorWithCause(param, err)
	}
	return t.UTC(), nil
}

func parseOptionalUUID(raw string) (*kernel.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := kernel.UUIDFromString(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
