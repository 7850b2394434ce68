package ginserver

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"campusnest/internal/app/commands"
	"campusnest/internal/app/dto"
	bookingapp "campusnest/internal/app/handlers/booking"
	"campusnest/internal/app/queries"
	"campusnest/internal/domain/catalog"
	domainreservation "campusnest/internal/domain/reservation"
	"campusnest/internal/domain/shared/timerange"
	"campusnest/internal/infra/identity"
)

type BookingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type createBookingRequest struct {
	UnitID        string    `json:"unit_id"`
	PropertyID    string    `json:"property_id"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	RequesterNote string    `json:"requester_note"`
}

type respondBookingRequest struct {
	ResponderNote string `json:"responder_note"`
}

func (h BookingHandler) Create(c *gin.Context) {
	user, ok := requireRole(c, identity.RoleStudent)
	if !ok {
		return
	}
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := bookingapp.CreateReservationCommand{
		CommandID:       uuid.NewString(),
		RequesterID:     user.UserID,
		UnitID:          strings.TrimSpace(req.UnitID),
		PropertyID:      strings.TrimSpace(req.PropertyID),
		Start:           req.StartDate,
		End:             req.EndDate,
		RequesterNote:   strings.TrimSpace(req.RequesterNote),
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[bookingapp.CreateReservationCommand, *dto.Reservation](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h BookingHandler) Get(c *gin.Context) {
	user, ok := requireRole(c, "")
	if !ok {
		return
	}
	query := bookingapp.GetReservationQuery{
		ReservationID: strings.TrimSpace(c.Param("id")),
		CallerID:      user.UserID,
		CallerIsAdmin: user.IsAdmin(),
	}
	result, err := queries.Ask[bookingapp.GetReservationQuery, dto.Reservation](c.Request.Context(), h.Queries, query)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) Approve(c *gin.Context) {
	h.respond(c, true)
}

func (h BookingHandler) Reject(c *gin.Context) {
	h.respond(c, false)
}

func (h BookingHandler) respond(c *gin.Context, approve bool) {
	user, ok := requireRole(c, identity.RoleLandlord)
	if !ok {
		return
	}
	// The responder note is optional; an empty body is fine.
	var req respondBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id := strings.TrimSpace(c.Param("id"))
	note := strings.TrimSpace(req.ResponderNote)

	var (
		result *dto.Reservation
		err    error
	)
	if approve {
		cmd := bookingapp.ApproveReservationCommand{ReservationID: id, OwnerID: user.UserID, ResponderNote: note}
		result, err = commands.Dispatch[bookingapp.ApproveReservationCommand, *dto.Reservation](c.Request.Context(), h.Commands, cmd)
	} else {
		cmd := bookingapp.RejectReservationCommand{ReservationID: id, OwnerID: user.UserID, ResponderNote: note}
		result, err = commands.Dispatch[bookingapp.RejectReservationCommand, *dto.Reservation](c.Request.Context(), h.Commands, cmd)
	}
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) Cancel(c *gin.Context) {
	user, ok := requireRole(c, "")
	if !ok {
		return
	}
	cmd := bookingapp.CancelReservationCommand{
		ReservationID: strings.TrimSpace(c.Param("id")),
		RequesterID:   user.UserID,
	}
	result, err := commands.Dispatch[bookingapp.CancelReservationCommand, *dto.Reservation](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) ListMine(c *gin.Context) {
	user, ok := requireRole(c, "")
	if !ok {
		return
	}
	query := bookingapp.ListRequesterReservationsQuery{
		RequesterID: user.UserID,
		Page:        parsePage(c),
	}
	result, err := queries.Ask[bookingapp.ListRequesterReservationsQuery, dto.ReservationCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) ListForProperty(c *gin.Context) {
	user, ok := requireRole(c, identity.RoleLandlord)
	if !ok {
		return
	}
	query := bookingapp.ListPropertyReservationsQuery{
		PropertyID: strings.TrimSpace(c.Param("id")),
		OwnerID:    user.UserID,
		Page:       parsePage(c),
	}
	result, err := queries.Ask[bookingapp.ListPropertyReservationsQuery, dto.ReservationCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func parsePage(c *gin.Context) domainreservation.Page {
	offset, _ := strconv.Atoi(c.Query("offset"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	return domainreservation.Page{Offset: offset, Limit: limit}
}

func (h BookingHandler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domainreservation.ErrNotFound),
		errors.Is(err, catalog.ErrUnitNotFound),
		errors.Is(err, catalog.ErrPropertyNotFound):
		h.respondWithError(c, http.StatusNotFound, err)
	case errors.Is(err, domainreservation.ErrForbidden):
		h.respondWithError(c, http.StatusForbidden, err)
	case errors.Is(err, domainreservation.ErrConflict),
		errors.Is(err, domainreservation.ErrStateConflict):
		h.respondWithError(c, http.StatusConflict, err)
	case isBookingValidationError(err):
		h.respondWithError(c, http.StatusBadRequest, err)
	default:
		h.respondWithError(c, http.StatusInternalServerError, err)
	}
}

func (h BookingHandler) respondWithError(c *gin.Context, status int, err error) {
	if h.Logger != nil && status >= http.StatusInternalServerError {
		h.Logger.Error("booking request failed", "status", status, "error", err, "path", c.FullPath())
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func isBookingValidationError(err error) bool {
	switch {
	case errors.Is(err, timerange.ErrInvalidRange),
		errors.Is(err, domainreservation.ErrStartInPast),
		errors.Is(err, domainreservation.ErrRequesterID),
		errors.Is(err, domainreservation.ErrUnitID),
		errors.Is(err, domainreservation.ErrPropertyID),
		errors.Is(err, catalog.ErrUnitNotInProperty),
		errors.Is(err, catalog.ErrUnitUnavailable):
		return true
	}
	return false
}

var _ BookingHTTP = BookingHandler{}
