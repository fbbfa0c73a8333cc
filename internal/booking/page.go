package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/avstrong/roombook/internal/calendar"
	"github.com/avstrong/roombook/internal/logger"
)

type State string

const (
	StateLoading      State = "loading"
	StateReady        State = "ready"
	StateError        State = "error"
	StateSubmitting   State = "submitting"
	StateConfirmed    State = "confirmed"
	StateSubmitFailed State = "submit_failed"
)

// Page is one view of the booking page for a single room. It owns the cached room copy and
// walks Loading -> Ready|Error, Ready -> Submitting -> Confirmed|SubmitFailed and
// SubmitFailed -> Ready. Responses that arrive after Close are dropped.
type Page struct {
	mu        sync.Mutex
	l         *logger.Logger
	storage   storage
	identity  identityResolver
	calc      *calendar.Calculator
	validate  *validator.Validate
	maxNights int
	state     State
	fetching  bool
	closed    bool
	room      *Room
	booked    calendar.BookedDateSet
	confirmed *Booking
}

func (p *Page) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.state
}

// Room returns a copy of the loaded room, or nil before the room is loaded.
func (p *Page) Room() *Room {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.room == nil {
		return nil
	}

	room := *p.room

	return &room
}

func (p *Page) Confirmed() *Booking {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.confirmed
}

// Close tears the page down. It is safe to call more than once.
func (p *Page) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true
}

func (p *Page) Load(ctx context.Context, roomID int) error {
	p.mu.Lock()

	switch {
	case p.closed:
		p.mu.Unlock()

		return ErrPageClosed
	case p.state != StateLoading || p.fetching:
		state := p.state
		p.mu.Unlock()

		return fmt.Errorf("load room in state %s: %w", state, ErrNotReady)
	}

	p.fetching = true
	p.mu.Unlock()

	room, err := p.storage.GetRoom(ctx, roomID)

	p.mu.Lock()
	defer p.mu.Unlock()

	p.fetching = false

	if p.closed {
		p.l.LogInfo("Discarding room %d response for a closed page", roomID)

		return ErrPageClosed
	}

	if err != nil {
		p.state = StateError

		return fmt.Errorf("get room %d: %w", roomID, err)
	}

	booked, err := room.BookedDateSet()
	if err != nil {
		p.state = StateError

		return fmt.Errorf("booked dates of room %d: %w", roomID, err)
	}

	p.room = room
	p.booked = booked
	p.state = StateReady

	return nil
}

func (p *Page) Calendar(month calendar.Month, r calendar.DateRange) ([]calendar.Day, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.room == nil {
		return nil, ErrNotReady
	}

	return p.calc.BuildCalendar(month, p.booked, r), nil
}

func (p *Page) IsDateSelectable(date time.Time) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.room == nil {
		return false
	}

	return p.calc.IsDateSelectable(date, p.booked)
}

// Quote prices r. Incomplete ranges quote to zero.
func (p *Page) Quote(r calendar.DateRange) (calendar.Stay, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.room == nil {
		return calendar.Stay{}, ErrNotReady
	}

	return p.quote(r)
}

func (p *Page) quote(r calendar.DateRange) (calendar.Stay, error) {
	if err := r.Validate(); err != nil {
		return calendar.Stay{}, err //nolint:wrapcheck
	}

	if err := checkStayLength(r, p.maxNights); err != nil {
		return calendar.Stay{}, err
	}

	availabilityErr := NewAvailabilityError()
	today := p.calc.Today()

	if !r.CheckIn.IsZero() && calendar.Normalize(r.CheckIn).Before(today) {
		availabilityErr.AddPastDate("checkIn", r.CheckIn)
	}

	if !r.CheckOut.IsZero() && calendar.Normalize(r.CheckOut).Before(today) {
		availabilityErr.AddPastDate("checkOut", r.CheckOut)
	}

	var booked []time.Time

	switch {
	case r.Complete():
		booked = p.booked.Overlaps(r)
	case p.booked.Contains(r.CheckIn):
		booked = []time.Time{calendar.Normalize(r.CheckIn)}
	case p.booked.Contains(r.CheckOut):
		booked = []time.Time{calendar.Normalize(r.CheckOut)}
	}

	if len(booked) > 0 {
		availabilityErr.AddUnavailableDates(p.room.ID, booked)
	}

	if availabilityErr.UnavailableCount() > 0 {
		return calendar.Stay{}, availabilityErr
	}

	return calendar.ComputeStay(r.CheckIn, r.CheckOut, p.room.PricePerNight), nil
}

// Check prices the form's range and runs the submit gate without sending anything.
// A nil error means the form can be submitted.
func (p *Page) Check(form Form) (Quote, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.room == nil {
		return Quote{}, ErrNotReady
	}

	r, err := form.dateRange()
	if err != nil {
		return Quote{}, err
	}

	stay, err := p.quote(r)
	if err != nil {
		return NewQuote(r, calendar.Stay{}), err
	}

	q := NewQuote(r, stay)

	return q, calendar.CheckSubmission(r, form.guests(), p.room.MaximumGuests, form.contact(), stay.TotalPrice) //nolint:wrapcheck
}

// Submit sends the booking once. identities are the profile maps the customer id is resolved
// from, most trusted first.
func (p *Page) Submit(ctx context.Context, form Form, identities ...map[string]any) (*Booking, error) {
	p.mu.Lock()

	req, err := p.prepare(&form, identities)
	if err != nil {
		p.mu.Unlock()

		return nil, err
	}

	p.state = StateSubmitting
	roomID := p.room.ID
	p.mu.Unlock()

	out, err := p.storage.CreateBooking(ctx, req)

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		p.l.LogInfo("Discarding booking response for room %d on a closed page", roomID)

		return nil, ErrPageClosed
	}

	if err != nil {
		p.state = StateSubmitFailed

		return nil, &SubmissionError{err: err}
	}

	p.state = StateConfirmed
	p.confirmed = out

	return out, nil
}

func (p *Page) prepare(form *Form, identities []map[string]any) (*BookingRequest, error) {
	if p.closed {
		return nil, ErrPageClosed
	}

	switch p.state {
	case StateReady:
	case StateSubmitFailed:
		p.state = StateReady
	case StateSubmitting:
		return nil, ErrSubmitInFlight
	case StateConfirmed:
		return nil, ErrAlreadyConfirmed
	case StateLoading, StateError:
		return nil, ErrNotReady
	}

	r, err := form.dateRange()
	if err != nil {
		return nil, err
	}

	stay, err := p.quote(r)
	if err != nil {
		return nil, err
	}

	if err = calendar.CheckSubmission(r, form.guests(), p.room.MaximumGuests, form.contact(), stay.TotalPrice); err != nil {
		return nil, err //nolint:wrapcheck
	}

	customerID, ok := p.identity.Resolve(identities...)
	if !ok {
		return nil, ErrNotAuthenticated
	}

	req := &BookingRequest{
		RoomID:        p.room.ID,
		CheckInDate:   calendar.FormatDate(r.CheckIn),
		CheckOutDate:  calendar.FormatDate(r.CheckOut),
		TotalPrice:    stay.TotalPrice,
		CustomerName:  strings.TrimSpace(form.CustomerName),
		CustomerPhone: strings.TrimSpace(form.CustomerPhone),
		CustomerEmail: strings.TrimSpace(form.CustomerEmail),
		CustomerID:    customerID,
		Adults:        form.Adults,
		Children:      form.Children,
		IsConfirmed:   true,
	}

	if err = validateStruct(p.validate, req); err != nil {
		return nil, err
	}

	return req, nil
}

func (f *Form) dateRange() (calendar.DateRange, error) {
	inputErr := newInputError()

	var r calendar.DateRange

	if strings.TrimSpace(f.CheckIn) != "" {
		d, err := calendar.ParseDate(f.CheckIn)
		if err != nil {
			inputErr.addError("checkIn", "provide check-in as YYYY-MM-DD")
		}

		r.CheckIn = d
	}

	if strings.TrimSpace(f.CheckOut) != "" {
		d, err := calendar.ParseDate(f.CheckOut)
		if err != nil {
			inputErr.addError("checkOut", "provide check-out as YYYY-MM-DD")
		}

		r.CheckOut = d
	}

	if f.Adults < 0 {
		inputErr.addError("adults", "must not be negative")
	}

	if f.Children < 0 {
		inputErr.addError("children", "must not be negative")
	}

	if inputErr.fieldsCount() > 0 {
		return calendar.DateRange{}, inputErr
	}

	return r, nil
}

// checkStayLength rejects complete ranges longer than maxNights.
func checkStayLength(r calendar.DateRange, maxNights int) error {
	if !r.Complete() || maxNights <= 0 {
		return nil
	}

	nights := calendar.ComputeStay(r.CheckIn, r.CheckOut, 0).Nights
	if nights <= maxNights {
		return nil
	}

	inputErr := newInputError()
	inputErr.addError("checkOut", fmt.Sprintf("stay must not exceed %d nights", maxNights))

	return fmt.Errorf("%d nights: %w: %w", nights, ErrStayTooLong, inputErr)
}

func validateStruct(v *validator.Validate, s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return fmt.Errorf("validate %T: %w", s, err)
	}

	inputErr := newInputError()

	for _, fe := range validationErrs {
		inputErr.addError(fe.Field(), fmt.Sprintf("failed on the '%s' rule", fe.Tag()))
	}

	return inputErr
}
