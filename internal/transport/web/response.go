package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/avstrong/roombook/internal/auth"
	"github.com/avstrong/roombook/internal/booking"
	"github.com/avstrong/roombook/internal/calendar"
	"github.com/avstrong/roombook/internal/remote"
)

var ErrPanic = errors.New("panic recovered")

const (
	sessionHeader     = "X-Session-ID"
	idempotencyHeader = "Idempotency-Key"

	msgBooked       = "Booking successful! Redirecting to your bookings..."
	msgSubmitFailed = "Booking failed. Please try again."
	msgSignedUp     = "Registration successful! Please check your email to verify your account."
	msgVerified     = "Email verified. You can sign in now."
)

type errorResponse struct {
	Error          string `json:"error"`
	Fields         any    `json:"fields,omitempty"`
	DismissAfterMs int64  `json:"dismissAfterMs"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.l.LogErrorf("Could not encode response: %v", err.Error())
	}
}

func (s *Server) writeAlert(w http.ResponseWriter, status int, msg string, fields any) {
	s.writeJSON(w, status, errorResponse{
		Error:          msg,
		Fields:         fields,
		DismissAfterMs: s.conf.AlertDelay.Milliseconds(),
	})
}

// writeError maps err onto a status code and an alert body. Nothing is written for a
// request that has gone away.
func (s *Server) writeError(w http.ResponseWriter, op string, err error) {
	if inputErr := booking.IsInputError(err); inputErr != nil {
		s.writeAlert(w, http.StatusBadRequest, "invalid input", inputErr.Fields())

		return
	}

	if inputErr := auth.IsInputError(err); inputErr != nil {
		s.writeAlert(w, http.StatusBadRequest, "invalid input", inputErr.Fields())

		return
	}

	if availabilityErr := booking.IsAvailabilityError(err); availabilityErr != nil {
		s.writeAlert(w, http.StatusPreconditionFailed, "selected dates are unavailable", availabilityErr.Fields())

		return
	}

	if submissionErr := booking.IsSubmissionError(err); submissionErr != nil {
		s.l.LogErrorf("Could not %s: %v", op, err.Error())
		s.writeAlert(w, http.StatusBadGateway, msgSubmitFailed, nil)

		return
	}

	switch {
	case errors.Is(err, booking.ErrPageClosed):
		s.l.LogInfo("Request to %s was cancelled", op)
	case errors.Is(err, calendar.ErrInvalidRange):
		s.writeAlert(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, booking.ErrStayTooLong):
		s.writeAlert(w, http.StatusBadRequest, booking.ErrStayTooLong.Error(), nil)
	case errors.Is(err, auth.ErrInvalidOTP):
		s.writeAlert(w, http.StatusBadRequest, auth.ErrInvalidOTP.Error(), nil)
	case errors.Is(err, remote.ErrInvalidData):
		s.writeAlert(w, http.StatusBadRequest, remote.ErrInvalidData.Error(), nil)
	case errors.Is(err, auth.ErrEmailExists):
		s.writeAlert(w, http.StatusConflict, auth.ErrEmailExists.Error(), nil)
	case errors.Is(err, auth.ErrEmailNotVerified):
		s.writeAlert(w, http.StatusForbidden, auth.ErrEmailNotVerified.Error(), nil)
	case errors.Is(err, calendar.ErrIncompleteRange),
		errors.Is(err, calendar.ErrNoGuests),
		errors.Is(err, calendar.ErrGuestCountExceeded),
		errors.Is(err, calendar.ErrMissingContactInfo),
		errors.Is(err, calendar.ErrZeroPrice):
		s.writeAlert(w, http.StatusUnprocessableEntity, err.Error(), nil)
	case errors.Is(err, calendar.ErrInvalidDate):
		s.writeAlert(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, auth.ErrInvalidCredentials):
		s.writeAlert(w, http.StatusUnauthorized, auth.ErrInvalidCredentials.Error(), nil)
	case errors.Is(err, booking.ErrNotAuthenticated):
		s.writeAlert(w, http.StatusUnauthorized, booking.ErrNotAuthenticated.Error(), nil)
	case errors.Is(err, auth.ErrUnauthorized):
		s.writeAlert(w, http.StatusUnauthorized, auth.ErrUnauthorized.Error(), nil)
	case errors.Is(err, booking.ErrRecordNotFound):
		s.writeAlert(w, http.StatusNotFound, booking.ErrRecordNotFound.Error(), nil)
	case errors.Is(err, booking.ErrSubmitInFlight), errors.Is(err, booking.ErrAlreadyConfirmed):
		s.writeAlert(w, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, remote.ErrUnavailable):
		s.l.LogWarnf("Could not %s: %v", op, err.Error())
		s.writeAlert(w, http.StatusServiceUnavailable, remote.ErrUnavailable.Error(), nil)
	default:
		s.l.LogErrorf("Could not %s: %v", op, err.Error())
		s.writeAlert(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError), nil)
	}
}
