package api

import (
	"net/http"

	"table-reservation/internal/domain/reservation"
	reqdto "table-reservation/internal/handler/dto/request"
	resdto "table-reservation/internal/handler/dto/response"
	"table-reservation/internal/handler/httperr"
	"table-reservation/internal/usecase/commands"
	"table-reservation/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReservationHandler struct {
	cmds commands.ReservationCommands
	q    queries.ReservationQueries
}

func NewReservationHandler(cmds commands.ReservationCommands, q queries.ReservationQueries) *ReservationHandler {
	return &ReservationHandler{cmds: cmds, q: q}
}

// @Summary Create reservation
// @Description Book a table. Rejected when the table is already booked for an overlapping slot.
// @Tags reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreateReservationRequest true "Reservation request"
// @Success 201 {object} resdto.ReservationResponse
// @Failure 400 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 503 {object} httperr.Response
// @Router /api/v1/reservations [post]
func (h *ReservationHandler) Create(c *gin.Context) {
	var req reqdto.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBind(c, err)
		return
	}
	view, err := h.cmds.Create(c.Request.Context(), req.ToDraft())
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.Header("Location", "/api/v1/reservations/"+view.ID.String())
	c.JSON(http.StatusCreated, resdto.FromReservationView(view))
}

// @Summary List reservations
// @Description All reservations ordered by start time
// @Tags reservations
// @Produce json
// @Success 200 {array} resdto.ReservationResponse
// @Failure 503 {object} httperr.Response
// @Router /api/v1/reservations [get]
func (h *ReservationHandler) List(c *gin.Context) {
	views, err := h.q.List(c.Request.Context())
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromReservationViews(views))
}

// @Summary Get reservation
// @Description Get a reservation by ID
// @Tags reservations
// @Produce json
// @Param id path string true "Reservation ID"
// @Success 200 {object} resdto.ReservationResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /api/v1/reservations/{id} [get]
func (h *ReservationHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	view, err := h.q.GetByID(c.Request.Context(), id)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromReservationView(view))
}

// @Summary Update reservation
// @Description Change the supplied fields only. Moving the slot re-checks overlap, ignoring the reservation itself.
// @Tags reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Param request body reqdto.UpdateReservationRequest true "Fields to change"
// @Success 200 {object} resdto.ReservationResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /api/v1/reservations/{id} [patch]
// @Router /api/v1/reservations/{id} [put]
func (h *ReservationHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req reqdto.UpdateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBind(c, err)
		return
	}
	view, err := h.cmds.Update(c.Request.Context(), id, req.ToPatch())
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromReservationView(view))
}

// @Summary Delete reservation
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Success 200 {object} resdto.MessageResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /api/v1/reservations/{id} [delete]
func (h *ReservationHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.cmds.Delete(c.Request.Context(), id); err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.MessageResponse{Message: "Reservation deleted"})
}

// @Summary Check availability
// @Description Whether a table is free for the slot. The slot must end by midnight.
// @Tags availability
// @Produce json
// @Param table query int true "Table number (1-5)"
// @Param start_time query string true "ISO 8601 start time"
// @Param duration_hours query int true "Duration in hours (1-3)"
// @Success 200 {object} resdto.AvailabilityResponse
// @Failure 400 {object} httperr.Response
// @Router /api/v1/availability [get]
func (h *ReservationHandler) Availability(c *gin.Context) {
	var query reqdto.AvailabilityQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		abortBind(c, err)
		return
	}
	view, err := h.q.CheckAvailability(c.Request.Context(), query.ToDomain())
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromAvailabilityView(view))
}

// @Summary Reservations in range
// @Description Reservations starting in [start, end), ordered by start time
// @Tags reservations
// @Produce json
// @Param start query string true "ISO 8601 range start (inclusive)"
// @Param end query string true "ISO 8601 range end (exclusive)"
// @Success 200 {array} resdto.ReservationResponse
// @Failure 400 {object} httperr.Response
// @Router /api/v1/reservations/range [get]
func (h *ReservationHandler) Range(c *gin.Context) {
	var query reqdto.RangeQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		abortBind(c, err)
		return
	}
	views, err := h.q.ListInRange(c.Request.Context(), query.Start.Time, query.End.Time)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromReservationViews(views))
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.Abort(c, reservation.NewInvalidInput(reservation.FieldID, err))
		return uuid.Nil, false
	}
	return id, true
}

func abortBind(c *gin.Context, err error) {
	httperr.Abort(c, reservation.NewInvalidInput("body", err))
}
