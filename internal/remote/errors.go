package remote

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/avstrong/roombook/internal/auth"
	"github.com/avstrong/roombook/internal/booking"
)

var (
	ErrUnavailable = errors.New("remote service is unavailable")
	ErrInvalidData = errors.New("invalid data provided")
	ErrConflict    = errors.New("conflicting record exists")
	ErrServer      = errors.New("server error, please try again later")
)

type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d: %s", e.Method, e.Path, e.Code, e.Body)
}

// Unwrap maps status codes onto the domain errors callers already handle.
func (e *StatusError) Unwrap() error {
	switch {
	case e.Code == http.StatusNotFound:
		return booking.ErrRecordNotFound
	case e.Code == http.StatusUnauthorized, e.Code == http.StatusForbidden:
		return auth.ErrUnauthorized
	case e.Code == http.StatusBadRequest:
		return ErrInvalidData
	case e.Code == http.StatusConflict:
		return ErrConflict
	case e.Code >= http.StatusInternalServerError:
		return ErrServer
	}

	return nil
}
