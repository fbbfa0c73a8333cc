package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	for _, in := range []string{
		"2024-06-10",
		"2024-06-10T00:00:00",
		"2024-06-10T23:30:00+04:00",
		"2024-06-10T08:15:00.123Z",
		" 2024-06-10 ",
	} {
		got, err := ParseDate(in)
		require.NoError(t, err, in)
		assert.Equal(t, date(2024, time.June, 10), got, in)
	}

	_, err := ParseDate("10/06/2024")
	assert.ErrorIs(t, err, ErrInvalidDate)

	_, err = ParseDate("")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestBookedDateSetOverlaps(t *testing.T) {
	booked := NewBookedDateSet(date(2024, time.June, 10), date(2024, time.June, 14), date(2024, time.June, 20))

	got := booked.Overlaps(DateRange{CheckIn: date(2024, time.June, 9), CheckOut: date(2024, time.June, 14)})
	assert.Equal(t, []time.Time{date(2024, time.June, 10), date(2024, time.June, 14)}, got)

	assert.Empty(t, booked.Overlaps(DateRange{CheckIn: date(2024, time.June, 15), CheckOut: date(2024, time.June, 19)}))
	assert.Empty(t, booked.Overlaps(DateRange{CheckIn: date(2024, time.June, 9)}))

	far := booked.Overlaps(DateRange{CheckIn: date(2024, time.June, 14), CheckOut: date(9999, time.December, 31)})
	assert.Equal(t, []time.Time{date(2024, time.June, 14), date(2024, time.June, 20)}, far)
	assert.Equal(t, []time.Time{date(2024, time.June, 10), date(2024, time.June, 14), date(2024, time.June, 20)}, booked.Dates())
}

func TestMonth(t *testing.T) {
	m, err := ParseMonth("2024-12")
	require.NoError(t, err)

	assert.Equal(t, Month{Year: 2024, Month: time.December}, m)
	assert.Equal(t, Month{Year: 2025, Month: time.January}, m.Next())
	assert.Equal(t, Month{Year: 2024, Month: time.November}, m.Prev())
	assert.Equal(t, "December 2024", m.Title())
	assert.Equal(t, 31, m.Days())
	assert.Equal(t, 29, Month{Year: 2024, Month: time.February}.Days())

	_, err = ParseMonth("2024-13")
	assert.ErrorIs(t, err, ErrInvalidDate)
}
