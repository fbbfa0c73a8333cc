// Package calendar holds the room availability and pricing calculator behind the booking page:
// the month grid, date selectability, stay pricing and the submit gate.
package calendar

import "time"

// Day is one cell of a month grid. Padding cells have Day == 0.
type Day struct {
	Date       time.Time `json:"date"`
	Day        int       `json:"day"`
	IsBooked   bool      `json:"isBooked"`
	IsPast     bool      `json:"isPast"`
	IsSelected bool      `json:"isSelected"`
	InRange    bool      `json:"inRange"`
}

type Calculator struct {
	clock Clock
	loc   *time.Location
}

// New returns a Calculator reading "today" from clock in loc. A nil loc means UTC.
func New(clock Clock, loc *time.Location) *Calculator {
	if clock == nil {
		clock = SystemClock{}
	}

	if loc == nil {
		loc = time.UTC
	}

	return &Calculator{clock: clock, loc: loc}
}

// Today is the current calendar date in the calculator's location.
func (c *Calculator) Today() time.Time {
	return Normalize(c.clock.Now().In(c.loc))
}

// BuildCalendar lays out month on a Sunday-first week grid.
func (c *Calculator) BuildCalendar(month Month, booked BookedDateSet, r DateRange) []Day {
	first := month.First()
	padding := int(first.Weekday())
	daysInMonth := month.Days()
	today := c.Today()

	checkIn := Normalize(r.CheckIn)
	checkOut := Normalize(r.CheckOut)

	days := make([]Day, 0, padding+daysInMonth)

	for i := padding; i > 0; i-- {
		//nolint:exhaustruct
		days = append(days, Day{
			Date:   first.AddDate(0, 0, -i),
			IsPast: true,
		})
	}

	for i := 1; i <= daysInMonth; i++ {
		date := time.Date(month.Year, month.Month, i, 0, 0, 0, 0, time.UTC)

		days = append(days, Day{
			Date:       date,
			Day:        i,
			IsBooked:   booked.Contains(date),
			IsPast:     date.Before(today),
			IsSelected: (!checkIn.IsZero() && date.Equal(checkIn)) || (!checkOut.IsZero() && date.Equal(checkOut)),
			InRange:    !checkIn.IsZero() && !checkOut.IsZero() && date.After(checkIn) && date.Before(checkOut),
		})
	}

	return days
}

func (c *Calculator) IsDateSelectable(date time.Time, booked BookedDateSet) bool {
	if date.IsZero() {
		return false
	}

	return !Normalize(date).Before(c.Today()) && !booked.Contains(date)
}
