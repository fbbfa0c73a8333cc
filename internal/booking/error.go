package booking

import (
	"errors"
	"fmt"
	"time"

	"github.com/avstrong/roombook/internal/calendar"
)

var (
	ErrRecordNotFound   = errors.New("record not found")
	ErrNotAuthenticated = errors.New("please login to book a room")
	ErrNotReady         = errors.New("room is not loaded")
	ErrSubmitInFlight   = errors.New("a booking submission is already in progress")
	ErrAlreadyConfirmed = errors.New("booking is already confirmed")
	ErrPageClosed       = errors.New("page closed")
	ErrStayTooLong      = errors.New("stay is longer than allowed")
)

type AvailabilityError struct {
	errors []string
}

func NewAvailabilityError() *AvailabilityError {
	//nolint:exhaustruct
	return &AvailabilityError{}
}

func IsAvailabilityError(err error) *AvailabilityError {
	if err == nil {
		return nil
	}

	var availabilityError *AvailabilityError

	if errors.As(err, &availabilityError) {
		return availabilityError
	}

	return nil
}

func (e *AvailabilityError) AddUnavailableDates(roomID int, dates []time.Time) {
	formatted := make([]string, 0, len(dates))
	for _, d := range dates {
		formatted = append(formatted, calendar.FormatDate(d))
	}

	e.errors = append(e.errors, fmt.Sprintf("room '%v' is unavailable on following dates %v", roomID, formatted))
}

func (e *AvailabilityError) AddPastDate(field string, date time.Time) {
	e.errors = append(e.errors, fmt.Sprintf("%s %s is in the past", field, calendar.FormatDate(date)))
}

func (e *AvailabilityError) Error() string {
	return fmt.Sprintf("%+v", e.errors)
}

func (e *AvailabilityError) Fields() []string {
	return e.errors
}

func (e *AvailabilityError) UnavailableCount() int {
	return len(e.errors)
}

type InputError struct {
	fields map[string][]string
}

func newInputError() *InputError {
	return &InputError{
		fields: make(map[string][]string),
	}
}

func IsInputError(err error) *InputError {
	if err == nil {
		return nil
	}

	var inputError *InputError

	if errors.As(err, &inputError) {
		return inputError
	}

	return nil
}

func (ie *InputError) fieldsCount() int {
	return len(ie.fields)
}

func (ie *InputError) addError(field, msg string) {
	ie.fields[field] = append(ie.fields[field], msg)
}

func (ie *InputError) Error() string {
	return fmt.Sprintf("%+v", ie.fields)
}

func (ie *InputError) Fields() map[string][]string {
	return ie.fields
}

// SubmissionError wraps a failure reported by the booking service. The visitor may resubmit.
type SubmissionError struct {
	err error
}

func IsSubmissionError(err error) *SubmissionError {
	var submissionError *SubmissionError

	if errors.As(err, &submissionError) {
		return submissionError
	}

	return nil
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("booking failed: %v", e.err)
}

func (e *SubmissionError) Unwrap() error {
	return e.err
}
