package httperr

import (
	"net/http"

	"table-reservation/internal/domain/reservation"
	"table-reservation/internal/pkg/errs"

	"github.com/gin-gonic/gin"
)

type Response struct {
	Status int `json:"-"`
	Error  struct {
		Message string `json:"message"`
	} `json:"error"`
	Detail any `json:"detail,omitempty"`
}

// preserves original error for future monitoring
func AbortWithError(c *gin.Context, status int, err error, msg string, detail any) {
	if err == nil {
		panic("AbortWithError: err cannot be nil")
	}

	resp := Response{Status: status}
	resp.Error.Message = msg
	resp.Detail = detail

	_ = c.Error(gin.Error{
		Err:  err,
		Type: gin.ErrorTypePublic,
		Meta: resp,
	})
	c.AbortWithStatusJSON(status, resp)
}

// Abort maps a use case error onto its status code and public message.
func Abort(c *gin.Context, err error) {
	switch {
	case errs.Is(err, errs.ErrInvalidInput):
		var detail any
		if ve, ok := reservation.AsValidationError(err); ok {
			detail = ve.Violations
		}
		AbortWithError(c, http.StatusBadRequest, err, "Invalid reservation", detail)
	case errs.Is(err, errs.ErrConflict):
		AbortWithError(c, http.StatusConflict, err, "Table is already booked for that time", nil)
	case errs.Is(err, errs.ErrNotFound):
		AbortWithError(c, http.StatusNotFound, err, "Reservation not found", nil)
	case errs.Is(err, errs.ErrStorageUnavailable):
		AbortWithError(c, http.StatusServiceUnavailable, err, "Storage unavailable", nil)
	default:
		AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
	}
}
