package calendar

import (
	"fmt"
	"time"
)

const monthLayout = "2006-01"

//nolint:gochecknoglobals
var WeekDays = []string{"Su", "Mo", "Tu", "We", "Th", "Fr", "Sa"}

// Month is the month shown by a calendar grid.
type Month struct {
	Year  int
	Month time.Month
}

func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

func ParseMonth(s string) (Month, error) {
	t, err := time.Parse(monthLayout, s)
	if err != nil {
		return Month{}, fmt.Errorf("parse month %q: %w", s, ErrInvalidDate)
	}

	return MonthOf(t), nil
}

func (m Month) First() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

func (m Month) Last() time.Time {
	return m.First().AddDate(0, 1, -1)
}

func (m Month) Days() int {
	return m.Last().Day()
}

func (m Month) Next() Month {
	return MonthOf(m.First().AddDate(0, 1, 0))
}

func (m Month) Prev() Month {
	return MonthOf(m.First().AddDate(0, -1, 0))
}

// Title renders the month as "June 2024".
func (m Month) Title() string {
	return fmt.Sprintf("%s %d", m.Month, m.Year)
}

func (m Month) String() string {
	return m.First().Format(monthLayout)
}
