package booking

import (
	"github.com/avstrong/roombook/internal/calendar"
)

type BookedDate struct {
	ID     int    `json:"id"`
	RoomID int    `json:"roomId"`
	Date   string `json:"date"`
}

type Image struct {
	ID     int    `json:"id"`
	Source string `json:"source"`
	RoomID int    `json:"roomId"`
}

type Room struct {
	ID            int          `json:"id"`
	Name          string       `json:"name"`
	HotelID       int          `json:"hotelId"`
	PricePerNight float64      `json:"pricePerNight"`
	Available     bool         `json:"available"`
	MaximumGuests int          `json:"maximumGuests"`
	RoomTypeID    int          `json:"roomTypeId"`
	BookedDates   []BookedDate `json:"bookedDates"`
	Images        []Image      `json:"images"`
}

// BookedDateSet derives the room's booked calendar dates.
func (r *Room) BookedDateSet() (calendar.BookedDateSet, error) {
	values := make([]string, 0, len(r.BookedDates))
	for _, bd := range r.BookedDates {
		values = append(values, bd.Date)
	}

	return calendar.ParseBookedDates(values) //nolint:wrapcheck
}

type Hotel struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	Address       string `json:"address"`
	City          string `json:"city"`
	FeaturedImage string `json:"featuredImage"`
	Rooms         []Room `json:"rooms"`
}

// RoomFilter narrows the room list. Zero fields do not filter.
type RoomFilter struct {
	RoomTypeID    int     `json:"roomTypeId"    validate:"gte=0"`
	PriceFrom     float64 `json:"priceFrom"     validate:"gte=0"`
	PriceTo       float64 `json:"priceTo"       validate:"gte=0"`
	MaximumGuests int     `json:"maximumGuests" validate:"gte=0"`
	CheckIn       string  `json:"checkIn"       validate:"omitempty,datetime=2006-01-02"`
	CheckOut      string  `json:"checkOut"      validate:"omitempty,datetime=2006-01-02"`
}

// Match reports whether room passes the price, type and guest filters. Dates are checked by
// the caller against the room's booked dates.
func (f *RoomFilter) Match(room *Room) bool {
	switch {
	case f.RoomTypeID != 0 && room.RoomTypeID != f.RoomTypeID:
		return false
	case f.PriceFrom > 0 && room.PricePerNight < f.PriceFrom:
		return false
	case f.PriceTo > 0 && room.PricePerNight > f.PriceTo:
		return false
	case room.MaximumGuests < f.MaximumGuests:
		return false
	}

	return true
}

// BookingRequest is the payload sent once to the booking service on submission.
type BookingRequest struct {
	RoomID        int     `json:"roomID"        validate:"required,gt=0"`
	CheckInDate   string  `json:"checkInDate"   validate:"required,datetime=2006-01-02"`
	CheckOutDate  string  `json:"checkOutDate"  validate:"required,datetime=2006-01-02"`
	TotalPrice    float64 `json:"totalPrice"    validate:"gt=0"`
	CustomerName  string  `json:"customerName"  validate:"required"`
	CustomerPhone string  `json:"customerPhone" validate:"required,max=32"`
	CustomerEmail string  `json:"customerEmail" validate:"required,email"`
	CustomerID    string  `json:"customerId"    validate:"required"`
	Adults        int     `json:"adults"        validate:"gte=0"`
	Children      int     `json:"children"      validate:"gte=0"`
	IsConfirmed   bool    `json:"isConfirmed"`
}

type Booking struct {
	ID            int     `json:"id"`
	RoomID        int     `json:"roomID"`
	CheckInDate   string  `json:"checkInDate"`
	CheckOutDate  string  `json:"checkOutDate"`
	TotalPrice    float64 `json:"totalPrice"`
	IsConfirmed   bool    `json:"isConfirmed"`
	CustomerName  string  `json:"customerName"`
	CustomerID    string  `json:"customerId"`
	CustomerPhone string  `json:"customerPhone"`
}

// Form is what the visitor filled in on the booking page.
type Form struct {
	CheckIn       string `json:"checkIn"`
	CheckOut      string `json:"checkOut"`
	Adults        int    `json:"adults"`
	Children      int    `json:"children"`
	CustomerName  string `json:"customerName"`
	CustomerPhone string `json:"customerPhone"`
	CustomerEmail string `json:"customerEmail"`
}

func (f *Form) guests() calendar.Guests {
	return calendar.Guests{Adults: f.Adults, Children: f.Children}
}

func (f *Form) contact() calendar.Contact {
	return calendar.Contact{Name: f.CustomerName, Phone: f.CustomerPhone, Email: f.CustomerEmail}
}

// Quote is the calculator's answer for a selected range.
type Quote struct {
	CheckIn  string `json:"checkIn,omitempty"`
	CheckOut string `json:"checkOut,omitempty"`
	calendar.Stay
}

func NewQuote(r calendar.DateRange, stay calendar.Stay) Quote {
	q := Quote{Stay: stay}

	if !r.CheckIn.IsZero() {
		q.CheckIn = calendar.FormatDate(r.CheckIn)
	}

	if !r.CheckOut.IsZero() {
		q.CheckOut = calendar.FormatDate(r.CheckOut)
	}

	return q
}
