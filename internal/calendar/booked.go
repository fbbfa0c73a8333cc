package calendar

import (
	"fmt"
	"sort"
	"time"
)

// BookedDateSet holds the calendar dates on which a room is already reserved.
type BookedDateSet map[string]struct{}

func NewBookedDateSet(dates ...time.Time) BookedDateSet {
	set := make(BookedDateSet, len(dates))

	for _, d := range dates {
		if d.IsZero() {
			continue
		}

		set[dateKey(d)] = struct{}{}
	}

	return set
}

// ParseBookedDates builds a set from ISO date or date-time strings.
func ParseBookedDates(values []string) (BookedDateSet, error) {
	set := make(BookedDateSet, len(values))

	for _, v := range values {
		d, err := ParseDate(v)
		if err != nil {
			return nil, fmt.Errorf("parse booked date: %w", err)
		}

		set[dateKey(d)] = struct{}{}
	}

	return set, nil
}

func (s BookedDateSet) Contains(d time.Time) bool {
	if d.IsZero() {
		return false
	}

	_, ok := s[dateKey(d)]

	return ok
}

// Dates returns the members in ascending order.
func (s BookedDateSet) Dates() []time.Time {
	res := make([]time.Time, 0, len(s))

	for key := range s {
		d, err := time.Parse(DateLayout, key)
		if err != nil {
			continue
		}

		res = append(res, d)
	}

	sort.Slice(res, func(i, j int) bool { return res[i].Before(res[j]) })

	return res
}

// Overlaps lists the booked dates within [checkIn, checkOut], both bounds included.
func (s BookedDateSet) Overlaps(r DateRange) []time.Time {
	if !r.Complete() || len(s) == 0 {
		return nil
	}

	from, to := Normalize(r.CheckIn), Normalize(r.CheckOut)

	var res []time.Time

	for _, d := range s.Dates() {
		if !d.Before(from) && !d.After(to) {
			res = append(res, d)
		}
	}

	return res
}
