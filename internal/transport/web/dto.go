package web

import (
	"github.com/avstrong/roombook/internal/booking"
	"github.com/avstrong/roombook/internal/calendar"
)

type signInInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type verifyEmailInput struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type messageOutput struct {
	Message string `json:"message"`
}

type signInOutput struct {
	SessionID string         `json:"sessionId"`
	User      map[string]any `json:"user"`
}

type dayOutput struct {
	Date       string `json:"date"`
	Day        int    `json:"day"`
	IsBooked   bool   `json:"isBooked"`
	IsPast     bool   `json:"isPast"`
	IsSelected bool   `json:"isSelected"`
	InRange    bool   `json:"inRange"`
	Selectable bool   `json:"selectable"`
}

type calendarOutput struct {
	Room       *booking.Room  `json:"room"`
	Month      string         `json:"month"`
	Title      string         `json:"title"`
	Prev       string         `json:"prev"`
	Next       string         `json:"next"`
	WeekDays   []string       `json:"weekDays"`
	Days       []dayOutput    `json:"days"`
	Quote      *booking.Quote `json:"quote,omitempty"`
	RangeError []string       `json:"rangeError,omitempty"`
}

type checkOutput struct {
	Quote     booking.Quote `json:"quote"`
	CanSubmit bool          `json:"canSubmit"`
	Reason    string        `json:"reason,omitempty"`
}

type bookingOutput struct {
	Booking *booking.Booking `json:"booking"`
	Message string           `json:"message"`
}

func newDayOutputs(days []calendar.Day, selectable func(day calendar.Day) bool) []dayOutput {
	res := make([]dayOutput, 0, len(days))

	for _, d := range days {
		out := dayOutput{
			Date:       calendar.FormatDate(d.Date),
			Day:        d.Day,
			IsBooked:   d.IsBooked,
			IsPast:     d.IsPast,
			IsSelected: d.IsSelected,
			InRange:    d.InRange,
			Selectable: false,
		}

		if d.Day != 0 {
			out.Selectable = selectable(d)
		}

		res = append(res, out)
	}

	return res
}
