package calendar

import (
	"errors"
	"strings"
)

var (
	ErrIncompleteRange    = errors.New("check-in and check-out dates are required")
	ErrNoGuests           = errors.New("at least one guest is required")
	ErrGuestCountExceeded = errors.New("guest count exceeds room maximum")
	ErrMissingContactInfo = errors.New("name, phone and email are required")
	ErrZeroPrice          = errors.New("total price must be positive")
)

type Guests struct {
	Adults   int `json:"adults"`
	Children int `json:"children"`
}

func (g Guests) Total() int {
	return g.Adults + g.Children
}

type Contact struct {
	Name  string `json:"customerName"`
	Phone string `json:"customerPhone"`
	Email string `json:"customerEmail"`
}

func (c Contact) complete() bool {
	return strings.TrimSpace(c.Name) != "" &&
		strings.TrimSpace(c.Phone) != "" &&
		strings.TrimSpace(c.Email) != ""
}

// CheckSubmission reports the first reason a booking cannot be submitted, or nil.
func CheckSubmission(r DateRange, g Guests, maxGuests int, c Contact, totalPrice float64) error {
	switch {
	case !r.Complete():
		return ErrIncompleteRange
	case g.Total() < 1:
		return ErrNoGuests
	case g.Total() > maxGuests:
		return ErrGuestCountExceeded
	case !c.complete():
		return ErrMissingContactInfo
	case !(totalPrice > 0):
		return ErrZeroPrice
	}

	return nil
}

func CanSubmitBooking(r DateRange, g Guests, maxGuests int, c Contact, totalPrice float64) bool {
	return CheckSubmission(r, g, maxGuests, c, totalPrice) == nil
}
