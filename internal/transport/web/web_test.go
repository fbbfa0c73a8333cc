package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avstrong/roombook/internal/auth"
	"github.com/avstrong/roombook/internal/booking"
	"github.com/avstrong/roombook/internal/calendar"
	"github.com/avstrong/roombook/internal/identity"
	"github.com/avstrong/roombook/internal/idgen/simple"
	"github.com/avstrong/roombook/internal/logger"
	sessionmemory "github.com/avstrong/roombook/internal/session/memory"
	"github.com/avstrong/roombook/internal/storage/memory"
)

const (
	testEmail    = "nino@example.com"
	testPassword = "secret-password"
	testOTP      = "123456"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	ctx := context.Background()
	l := logger.NewWriter(io.Discard)

	idGen := simple.New()
	idGen.StartAfter(1000)

	db := memory.New(memory.Config{
		L:         l,
		IDGen:     idGen,
		MaxNights: 30,
		OTP:       func() (string, error) { return testOTP, nil },
	})

	//nolint:exhaustruct
	hotels := []booking.Hotel{
		{ID: 1, Name: "Old Town Inn", City: "Tbilisi"},
		{ID: 2, Name: "Black Sea Resort", City: "Batumi"},
	}
	require.NoError(t, db.SaveHotels(ctx, hotels))

	//nolint:exhaustruct
	rooms := []booking.Room{
		{
			ID:            7,
			Name:          "Deluxe",
			HotelID:       1,
			RoomTypeID:    2,
			PricePerNight: 100,
			MaximumGuests: 2,
			BookedDates: []booking.BookedDate{
				{ID: 1, RoomID: 7, Date: "2024-06-10T00:00:00"},
				{ID: 2, RoomID: 7, Date: "2024-06-11T00:00:00"},
			},
		},
		{ID: 8, Name: "Single", HotelID: 2, RoomTypeID: 1, PricePerNight: 60, MaximumGuests: 1},
	}
	require.NoError(t, db.SaveRooms(ctx, rooms))
	require.NoError(t, db.SaveUser(ctx, map[string]any{"_id": "cust-1", "firstName": "Nino"}, testEmail, testPassword))

	store := sessionmemory.New(time.Hour)
	t.Cleanup(store.Stop)

	calc := calendar.New(calendar.FixedClock(time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)), time.UTC)
	resolver := identity.New([]string{"id", "_id", "userId", "customerId", "sub"})

	//nolint:exhaustruct
	srv, err := New(ctx, Conf{
		L:                l,
		Host:             "localhost",
		Port:             "0",
		LivenessEndpoint: "/liveness",
		AlertDelay:       3 * time.Second,
	}, booking.New(l, db, resolver, calc, 30), auth.New(l, db, store))
	require.NoError(t, err)

	return srv
}

func do(t *testing.T, srv *Server, method, target, sessionID string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader

	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)

		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	if sessionID != "" {
		req.Header.Set(sessionHeader, sessionID)
	}

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	return rec
}

func signIn(t *testing.T, srv *Server) string {
	t.Helper()

	rec := do(t, srv, http.MethodPost, "/api/auth/v1/sign-in", "", signInInput{Email: testEmail, Password: testPassword})
	require.Equal(t, http.StatusOK, rec.Code)

	var out signInOutput
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	require.NotEmpty(t, out.SessionID)

	return out.SessionID
}

func validForm() booking.Form {
	return booking.Form{
		CheckIn:       "2024-06-03",
		CheckOut:      "2024-06-05",
		Adults:        1,
		Children:      1,
		CustomerName:  "Nino",
		CustomerPhone: "+995 555 000 000",
		CustomerEmail: testEmail,
	}
}

func TestLiveness(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/liveness", "", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCalendar(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/api/rooms/v1/7/calendar?month=2024-06&checkIn=2024-06-03&checkOut=2024-06-05", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var out calendarOutput
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))

	assert.Equal(t, "June 2024", out.Title)
	assert.Equal(t, "2024-05", out.Prev)
	assert.Equal(t, "2024-07", out.Next)
	assert.Equal(t, calendar.WeekDays, out.WeekDays)

	// June 2024 starts on a Saturday.
	require.Len(t, out.Days, 36)
	assert.Equal(t, 0, out.Days[5].Day)
	assert.Equal(t, "2024-06-01", out.Days[6].Date)

	tenth := out.Days[6+9]
	assert.Equal(t, 10, tenth.Day)
	assert.True(t, tenth.IsBooked)
	assert.False(t, tenth.Selectable)

	third := out.Days[6+2]
	assert.True(t, third.IsSelected)
	assert.True(t, third.Selectable)
	assert.True(t, out.Days[6+3].InRange)

	require.NotNil(t, out.Quote)
	assert.Equal(t, 2, out.Quote.Nights)
	assert.InDelta(t, 200.0, out.Quote.TotalPrice, 0.001)
	assert.Empty(t, out.RangeError)
}

func TestCalendarWithInvalidRange(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/api/rooms/v1/7/calendar?month=2024-06&checkIn=2024-06-05&checkOut=2024-06-03", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var out calendarOutput
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))

	assert.Nil(t, out.Quote)
	assert.Equal(t, []string{calendar.ErrInvalidRange.Error()}, out.RangeError)
}

func TestQuote(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/api/rooms/v1/7/quote?checkIn=2024-06-03&checkOut=2024-06-06", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var q booking.Quote
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&q))
	assert.Equal(t, 3, q.Nights)
	assert.InDelta(t, 300.0, q.TotalPrice, 0.001)

	rec = do(t, srv, http.MethodGet, "/api/rooms/v1/7/quote?checkIn=2024-06-09&checkOut=2024-06-12", "", nil)
	assert.Equal(t, http.StatusPreconditionFailed, rec.Code)

	rec = do(t, srv, http.MethodGet, "/api/rooms/v1/7/quote?checkIn=june", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodGet, "/api/rooms/v1/99/quote", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCheck(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodPost, "/api/rooms/v1/7/check", "", validForm())
	require.Equal(t, http.StatusOK, rec.Code)

	var out checkOutput
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	assert.True(t, out.CanSubmit)
	assert.Equal(t, 2, out.Quote.Nights)

	form := validForm()
	form.CustomerEmail = ""

	rec = do(t, srv, http.MethodPost, "/api/rooms/v1/7/check", "", form)
	require.Equal(t, http.StatusOK, rec.Code)

	out = checkOutput{} //nolint:exhaustruct
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	assert.False(t, out.CanSubmit)
	assert.Equal(t, calendar.ErrMissingContactInfo.Error(), out.Reason)
}

func TestCreateBookingRequiresLogin(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodPost, "/api/rooms/v1/7/bookings", "", validForm())
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var out errorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	assert.Equal(t, booking.ErrNotAuthenticated.Error(), out.Error)
	assert.Equal(t, int64(3000), out.DismissAfterMs)
}

func TestCreateBookingChecksFormBeforeLogin(t *testing.T) {
	srv := newTestServer(t)

	form := validForm()
	form.Adults = 2

	rec := do(t, srv, http.MethodPost, "/api/rooms/v1/7/bookings", "", form)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestBookingFlow(t *testing.T) {
	srv := newTestServer(t)
	sessionID := signIn(t, srv)

	rec := do(t, srv, http.MethodPost, "/api/rooms/v1/7/bookings", sessionID, validForm())
	require.Equal(t, http.StatusCreated, rec.Code)

	var created bookingOutput
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	require.NotNil(t, created.Booking)
	assert.Equal(t, msgBooked, created.Message)
	assert.Equal(t, "cust-1", created.Booking.CustomerID)
	assert.InDelta(t, 200.0, created.Booking.TotalPrice, 0.001)

	rec = do(t, srv, http.MethodGet, "/api/rooms/v1/7/quote?checkIn=2024-06-03&checkOut=2024-06-04", "", nil)
	assert.Equal(t, http.StatusPreconditionFailed, rec.Code)

	rec = do(t, srv, http.MethodGet, "/api/bookings/v1", sessionID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var bookings []booking.Booking
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&bookings))
	require.Len(t, bookings, 1)
	assert.Equal(t, created.Booking.ID, bookings[0].ID)

	rec = do(t, srv, http.MethodDelete, "/api/bookings/v1/"+strconv.Itoa(created.Booking.ID), sessionID, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, srv, http.MethodGet, "/api/bookings/v1", sessionID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	bookings = nil
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&bookings))
	assert.Empty(t, bookings)

	rec = do(t, srv, http.MethodPost, "/api/auth/v1/sign-out", sessionID, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, srv, http.MethodGet, "/api/bookings/v1", sessionID, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateBookingSingleInFlight(t *testing.T) {
	srv := newTestServer(t)
	sessionID := signIn(t, srv)

	srv.inflight.Store(sessionID, struct{}{})

	rec := do(t, srv, http.MethodPost, "/api/rooms/v1/7/bookings", sessionID, validForm())
	assert.Equal(t, http.StatusConflict, rec.Code)

	srv.inflight.Delete(sessionID)

	rec = do(t, srv, http.MethodPost, "/api/rooms/v1/7/bookings", sessionID, validForm())
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestSignInWithWrongPassword(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodPost, "/api/auth/v1/sign-in", "", signInInput{Email: testEmail, Password: "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProfile(t *testing.T) {
	srv := newTestServer(t)
	sessionID := signIn(t, srv)

	rec := do(t, srv, http.MethodGet, "/api/auth/v1/me", sessionID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var user map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&user))
	assert.Equal(t, "cust-1", user["_id"])
	assert.Equal(t, testEmail, user["email"])
}

func TestRooms(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/api/rooms/v1/featured", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var featured []booking.Room
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&featured))
	require.Len(t, featured, 2)
	assert.Equal(t, 7, featured[0].ID)

	rec = do(t, srv, http.MethodGet, "/api/rooms/v1/7/others", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var others []booking.Room
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&others))
	require.Len(t, others, 1)
	assert.Equal(t, 8, others[0].ID)
}

func TestQuoteRejectsOverlongStay(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/api/rooms/v1/8/quote?checkIn=2024-06-03&checkOut=9999-12-31", "", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var out errorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	assert.NotNil(t, out.Fields)

	rec = do(t, srv, http.MethodGet, "/api/rooms/v1/8/calendar?month=2024-06&checkIn=2024-06-03&checkOut=2025-06-03", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var cal calendarOutput
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&cal))
	assert.Nil(t, cal.Quote)
	assert.Equal(t, []string{"stay must not exceed 30 nights"}, cal.RangeError)
}

func TestRoomSearch(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/api/rooms/v1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var rooms []booking.Room
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&rooms))
	assert.Len(t, rooms, 2)

	rec = do(t, srv, http.MethodGet, "/api/rooms/v1/available?from=2024-06-09&to=2024-06-12", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rooms = nil
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&rooms))
	require.Len(t, rooms, 1)
	assert.Equal(t, 8, rooms[0].ID)

	rec = do(t, srv, http.MethodGet, "/api/rooms/v1/available?from=2024-06-09", "", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, srv, http.MethodGet, "/api/rooms/v1/available?from=2024-05-20&to=2024-05-22", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	//nolint:exhaustruct
	rec = do(t, srv, http.MethodPost, "/api/rooms/v1/filter", "", booking.RoomFilter{RoomTypeID: 2, PriceFrom: 50})
	require.Equal(t, http.StatusOK, rec.Code)

	rooms = nil
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&rooms))
	require.Len(t, rooms, 1)
	assert.Equal(t, 7, rooms[0].ID)

	//nolint:exhaustruct
	rec = do(t, srv, http.MethodPost, "/api/rooms/v1/filter", "", booking.RoomFilter{PriceFrom: 100, PriceTo: 50})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHotels(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/api/hotels/v1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var hotels []booking.Hotel
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&hotels))
	require.Len(t, hotels, 2)
	require.Len(t, hotels[0].Rooms, 1)
	assert.Equal(t, 7, hotels[0].Rooms[0].ID)

	rec = do(t, srv, http.MethodGet, "/api/hotels/v1/cities", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var cities []string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&cities))
	assert.Equal(t, []string{"Batumi", "Tbilisi"}, cities)
}

func TestSignUpFlow(t *testing.T) {
	srv := newTestServer(t)

	//nolint:exhaustruct
	input := auth.SignUpRequest{
		FirstName: "Giorgi",
		LastName:  "Kapanadze",
		Age:       35,
		Email:     "giorgi@example.com",
		Password:  "long-enough",
		Phone:     "+995 555-111-222",
		Address:   "Rustaveli Ave 1",
		Zipcode:   "0108",
		Gender:    "MALE",
	}

	rec := do(t, srv, http.MethodPost, "/api/auth/v1/sign-up", "", input)
	require.Equal(t, http.StatusCreated, rec.Code)

	var msg messageOutput
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&msg))
	assert.Equal(t, msgSignedUp, msg.Message)

	rec = do(t, srv, http.MethodPost, "/api/auth/v1/sign-up", "", input)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, srv, http.MethodPost, "/api/auth/v1/sign-in", "", signInInput{Email: input.Email, Password: input.Password})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, srv, http.MethodPost, "/api/auth/v1/verify-email", "", verifyEmailInput{Email: input.Email, OTP: "000000"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodPost, "/api/auth/v1/verify-email", "", verifyEmailInput{Email: input.Email, OTP: testOTP})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, srv, http.MethodPost, "/api/auth/v1/sign-in", "", signInInput{Email: input.Email, Password: input.Password})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSignUpValidation(t *testing.T) {
	srv := newTestServer(t)

	//nolint:exhaustruct
	input := auth.SignUpRequest{
		FirstName: "G",
		LastName:  "Kapanadze",
		Age:       16,
		Email:     "giorgi@example.com",
		Password:  "long-enough",
		Phone:     "+995 555-111-222",
		Address:   "Rustaveli Ave 1",
		Zipcode:   "0108",
		Gender:    "MALE",
	}

	rec := do(t, srv, http.MethodPost, "/api/auth/v1/sign-up", "", input)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var out struct {
		Fields map[string][]string `json:"fields"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	assert.Contains(t, out.Fields, "firstName")
	assert.Contains(t, out.Fields, "age")
}
