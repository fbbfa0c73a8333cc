package app

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avstrong/roombook/internal/calendar"
	"github.com/avstrong/roombook/internal/config"
	"github.com/avstrong/roombook/internal/logger"
)

func memoryConfig() *config.Config {
	//nolint:exhaustruct
	return &config.Config{
		Backend:        config.BackendMemory,
		Session:        config.Session{Backend: config.SessionMemory, TTL: time.Hour},
		IdentityFields: []string{"id", "_id", "userId", "customerId", "sub"},
		MaxStayNights:  365,
		Location:       time.UTC,
		AlertDelay:     3 * time.Second,
	}
}

func TestPrintCalendar(t *testing.T) {
	today := calendar.Normalize(time.Now().UTC())

	var out bytes.Buffer

	err := PrintCalendar(context.Background(), &out, logger.NewWriter(io.Discard), memoryConfig(), CalendarQuery{
		RoomID:   1,
		Month:    "",
		CheckIn:  calendar.FormatDate(today.AddDate(0, 0, 5)),
		CheckOut: calendar.FormatDate(today.AddDate(0, 0, 7)),
	})
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Standard Single, "+calendar.MonthOf(today).Title())
	assert.Contains(t, out.String(), "2 nights, total 160.00")
}

func TestPrintCalendarUnknownRoom(t *testing.T) {
	err := PrintCalendar(context.Background(), io.Discard, logger.NewWriter(io.Discard), memoryConfig(), CalendarQuery{
		RoomID: 404,
	})
	require.Error(t, err)
}

func TestRenderGrid(t *testing.T) {
	calc := calendar.New(calendar.FixedClock(time.Date(2024, time.June, 5, 0, 0, 0, 0, time.UTC)), time.UTC)
	booked := calendar.NewBookedDateSet(time.Date(2024, time.June, 20, 0, 0, 0, 0, time.UTC))
	r := calendar.DateRange{
		CheckIn:  time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC),
		CheckOut: time.Date(2024, time.June, 12, 0, 0, 0, 0, time.UTC),
	}

	grid := renderGrid(calc.BuildCalendar(calendar.Month{Year: 2024, Month: time.June}, booked, r))
	lines := strings.Split(grid, "\n")

	require.Len(t, lines, 7)
	assert.Contains(t, lines[0], "Su")
	assert.Contains(t, grid, "  4- ")
	assert.Contains(t, grid, "[10] ")
	assert.Contains(t, grid, " 11~ ")
	assert.Contains(t, grid, " 20* ")
}
