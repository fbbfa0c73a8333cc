package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/avstrong/roombook/internal/auth"
	"github.com/avstrong/roombook/internal/booking"
	"github.com/avstrong/roombook/internal/calendar"
)

func pathID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("id %q: %w", r.PathValue("id"), booking.ErrRecordNotFound)
	}

	return id, nil
}

func rangeFromQuery(r *http.Request, inKey, outKey string) (calendar.DateRange, error) {
	var (
		dr  calendar.DateRange
		err error
	)

	if v := strings.TrimSpace(r.URL.Query().Get(inKey)); v != "" {
		if dr.CheckIn, err = calendar.ParseDate(v); err != nil {
			return calendar.DateRange{}, fmt.Errorf("%s: %w", inKey, err)
		}
	}

	if v := strings.TrimSpace(r.URL.Query().Get(outKey)); v != "" {
		if dr.CheckOut, err = calendar.ParseDate(v); err != nil {
			return calendar.DateRange{}, fmt.Errorf("%s: %w", outKey, err)
		}
	}

	return dr, nil
}

// identities loads the identity sources of the request's session. A session the auth
// service no longer accepts is signed out.
func (s *Server) identities(ctx context.Context, r *http.Request) ([]map[string]any, error) {
	sessionID := r.Header.Get(sessionHeader)
	if sessionID == "" {
		return nil, booking.ErrNotAuthenticated
	}

	identities, err := s.auth.Identities(ctx, sessionID)
	if errors.Is(err, auth.ErrUnauthorized) {
		if signOutErr := s.auth.SignOut(ctx, sessionID); signOutErr != nil {
			s.l.LogWarnf("Could not sign out expired session: %v", signOutErr.Error())
		}
	}

	if err != nil {
		return nil, fmt.Errorf("session identities: %w", err)
	}

	return identities, nil
}

func (s *Server) customerID(ctx context.Context, r *http.Request) (string, error) {
	identities, err := s.identities(ctx, r)
	if err != nil {
		return "", err
	}

	id, ok := s.bManager.ResolveCustomer(identities...)
	if !ok {
		return "", booking.ErrNotAuthenticated
	}

	return id, nil
}

func (s *Server) signInHandler(w http.ResponseWriter, r *http.Request) {
	var input signInInput

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.writeAlert(w, http.StatusBadRequest, http.StatusText(http.StatusBadRequest), nil)

		return
	}

	sessionID, user, err := s.auth.SignIn(r.Context(), input.Email, input.Password)
	if err != nil {
		s.writeError(w, "sign in", err)

		return
	}

	s.writeJSON(w, http.StatusOK, signInOutput{SessionID: sessionID, User: user})
}

func (s *Server) signUpHandler(w http.ResponseWriter, r *http.Request) {
	var input auth.SignUpRequest

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.writeAlert(w, http.StatusBadRequest, http.StatusText(http.StatusBadRequest), nil)

		return
	}

	if err := s.auth.SignUp(r.Context(), input); err != nil {
		s.writeError(w, "sign up", err)

		return
	}

	s.writeJSON(w, http.StatusCreated, messageOutput{Message: msgSignedUp})
}

func (s *Server) verifyEmailHandler(w http.ResponseWriter, r *http.Request) {
	var input verifyEmailInput

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.writeAlert(w, http.StatusBadRequest, http.StatusText(http.StatusBadRequest), nil)

		return
	}

	if err := s.auth.VerifyEmail(r.Context(), input.Email, input.OTP); err != nil {
		s.writeError(w, "verify email", err)

		return
	}

	s.writeJSON(w, http.StatusOK, messageOutput{Message: msgVerified})
}

func (s *Server) signOutHandler(w http.ResponseWriter, r *http.Request) {
	if sessionID := r.Header.Get(sessionHeader); sessionID != "" {
		if err := s.auth.SignOut(r.Context(), sessionID); err != nil {
			s.writeError(w, "sign out", err)

			return
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) profileHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := r.Header.Get(sessionHeader)
	if sessionID == "" {
		s.writeError(w, "load profile", auth.ErrUnauthorized)

		return
	}

	user, err := s.auth.Profile(r.Context(), sessionID)
	if err != nil {
		s.writeError(w, "load profile", err)

		return
	}

	s.writeJSON(w, http.StatusOK, user)
}

func (s *Server) roomsHandler(w http.ResponseWriter, r *http.Request) {
	rooms, err := s.bManager.Rooms(r.Context())
	if err != nil {
		s.writeError(w, "get rooms", err)

		return
	}

	s.writeJSON(w, http.StatusOK, rooms)
}

func (s *Server) availableRoomsHandler(w http.ResponseWriter, r *http.Request) {
	dr, err := rangeFromQuery(r, "from", "to")
	if err != nil {
		s.writeError(w, "get available rooms", err)

		return
	}

	rooms, err := s.bManager.AvailableRooms(r.Context(), dr)
	if err != nil {
		s.writeError(w, "get available rooms", err)

		return
	}

	s.writeJSON(w, http.StatusOK, rooms)
}

func (s *Server) filterRoomsHandler(w http.ResponseWriter, r *http.Request) {
	var filter booking.RoomFilter

	if err := json.NewDecoder(r.Body).Decode(&filter); err != nil {
		s.writeAlert(w, http.StatusBadRequest, http.StatusText(http.StatusBadRequest), nil)

		return
	}

	rooms, err := s.bManager.FilterRooms(r.Context(), filter)
	if err != nil {
		s.writeError(w, "filter rooms", err)

		return
	}

	s.writeJSON(w, http.StatusOK, rooms)
}

func (s *Server) hotelsHandler(w http.ResponseWriter, r *http.Request) {
	hotels, err := s.bManager.Hotels(r.Context())
	if err != nil {
		s.writeError(w, "get hotels", err)

		return
	}

	s.writeJSON(w, http.StatusOK, hotels)
}

func (s *Server) citiesHandler(w http.ResponseWriter, r *http.Request) {
	cities, err := s.bManager.Cities(r.Context())
	if err != nil {
		s.writeError(w, "get cities", err)

		return
	}

	s.writeJSON(w, http.StatusOK, cities)
}

func (s *Server) featuredRoomsHandler(w http.ResponseWriter, r *http.Request) {
	rooms, err := s.bManager.FeaturedRooms(r.Context())
	if err != nil {
		s.writeError(w, "get featured rooms", err)

		return
	}

	s.writeJSON(w, http.StatusOK, rooms)
}

func (s *Server) otherRoomsHandler(w http.ResponseWriter, r *http.Request) {
	roomID, err := pathID(r)
	if err != nil {
		s.writeError(w, "get other rooms", err)

		return
	}

	rooms, err := s.bManager.OtherRooms(r.Context(), roomID)
	if err != nil {
		s.writeError(w, "get other rooms", err)

		return
	}

	s.writeJSON(w, http.StatusOK, rooms)
}

func (s *Server) calendarHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	roomID, err := pathID(r)
	if err != nil {
		s.writeError(w, "build calendar", err)

		return
	}

	month := calendar.MonthOf(s.bManager.Calculator().Today())

	if v := r.URL.Query().Get("month"); v != "" {
		if month, err = calendar.ParseMonth(v); err != nil {
			s.writeError(w, "build calendar", err)

			return
		}
	}

	dr, err := rangeFromQuery(r, "checkIn", "checkOut")
	if err != nil {
		s.writeError(w, "build calendar", err)

		return
	}

	page, err := s.bManager.Open(ctx, roomID)
	if err != nil {
		s.writeError(w, "load room", err)

		return
	}
	defer page.Close()

	days, err := page.Calendar(month, dr)
	if err != nil {
		s.writeError(w, "build calendar", err)

		return
	}

	out := calendarOutput{
		Room:     page.Room(),
		Month:    month.String(),
		Title:    month.Title(),
		Prev:     month.Prev().String(),
		Next:     month.Next().String(),
		WeekDays: calendar.WeekDays,
		Days: newDayOutputs(days, func(d calendar.Day) bool {
			return page.IsDateSelectable(d.Date)
		}),
		Quote:      nil,
		RangeError: nil,
	}

	if !dr.CheckIn.IsZero() || !dr.CheckOut.IsZero() {
		stay, err := page.Quote(dr)

		switch availabilityErr, inputErr := booking.IsAvailabilityError(err), booking.IsInputError(err); {
		case availabilityErr != nil:
			out.RangeError = availabilityErr.Fields()
		case inputErr != nil:
			for _, msgs := range inputErr.Fields() {
				out.RangeError = append(out.RangeError, msgs...)
			}
		case errors.Is(err, calendar.ErrInvalidRange):
			out.RangeError = []string{err.Error()}
		case err != nil:
			s.writeError(w, "quote stay", err)

			return
		default:
			q := booking.NewQuote(dr, stay)
			out.Quote = &q
		}
	}

	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) quoteHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	roomID, err := pathID(r)
	if err != nil {
		s.writeError(w, "quote stay", err)

		return
	}

	dr, err := rangeFromQuery(r, "checkIn", "checkOut")
	if err != nil {
		s.writeError(w, "quote stay", err)

		return
	}

	page, err := s.bManager.Open(ctx, roomID)
	if err != nil {
		s.writeError(w, "load room", err)

		return
	}
	defer page.Close()

	stay, err := page.Quote(dr)
	if err != nil {
		s.writeError(w, "quote stay", err)

		return
	}

	s.writeJSON(w, http.StatusOK, booking.NewQuote(dr, stay))
}

func (s *Server) checkHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	roomID, err := pathID(r)
	if err != nil {
		s.writeError(w, "check booking", err)

		return
	}

	var form booking.Form

	if err = json.NewDecoder(r.Body).Decode(&form); err != nil {
		s.writeAlert(w, http.StatusBadRequest, http.StatusText(http.StatusBadRequest), nil)

		return
	}

	page, err := s.bManager.Open(ctx, roomID)
	if err != nil {
		s.writeError(w, "load room", err)

		return
	}
	defer page.Close()

	q, err := page.Check(form)
	if booking.IsInputError(err) != nil || booking.IsAvailabilityError(err) != nil || errors.Is(err, calendar.ErrInvalidRange) {
		s.writeError(w, "check booking", err)

		return
	}

	out := checkOutput{Quote: q, CanSubmit: err == nil, Reason: ""}
	if err != nil {
		out.Reason = err.Error()
	}

	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) createBookingHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	roomID, err := pathID(r)
	if err != nil {
		s.writeError(w, "create booking", err)

		return
	}

	sessionID := r.Header.Get(sessionHeader)
	if sessionID != "" {
		if _, busy := s.inflight.LoadOrStore(sessionID, struct{}{}); busy {
			s.writeError(w, "create booking", booking.ErrSubmitInFlight)

			return
		}
		defer s.inflight.Delete(sessionID)
	}

	var form booking.Form

	if err = json.NewDecoder(r.Body).Decode(&form); err != nil {
		s.writeAlert(w, http.StatusBadRequest, http.StatusText(http.StatusBadRequest), nil)

		return
	}

	// Without identities the page still runs the form checks first and then asks for a login.
	identities, err := s.identities(ctx, r)
	if err != nil && !errors.Is(err, booking.ErrNotAuthenticated) && !errors.Is(err, auth.ErrUnauthorized) {
		s.writeError(w, "create booking", err)

		return
	}

	idempotencyKey := r.Header.Get(idempotencyHeader)
	if idempotencyKey == "" {
		idempotencyKey = uuid.NewString()
	}

	ctx = booking.NewContextWithIdempotencyKey(ctx, idempotencyKey)

	page, err := s.bManager.Open(ctx, roomID)
	if err != nil {
		s.writeError(w, "load room", err)

		return
	}
	defer page.Close()

	out, err := page.Submit(ctx, form, identities...)
	if err != nil {
		s.writeError(w, "create booking", err)

		return
	}

	s.writeJSON(w, http.StatusCreated, bookingOutput{Booking: out, Message: msgBooked})
}

func (s *Server) customerBookingsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	customerID, err := s.customerID(ctx, r)
	if err != nil {
		s.writeError(w, "get bookings", err)

		return
	}

	bookings, err := s.bManager.CustomerBookings(ctx, customerID)
	if err != nil {
		s.writeError(w, "get bookings", err)

		return
	}

	s.writeJSON(w, http.StatusOK, bookings)
}

func (s *Server) cancelBookingHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	bookingID, err := pathID(r)
	if err != nil {
		s.writeError(w, "cancel booking", err)

		return
	}

	customerID, err := s.customerID(ctx, r)
	if err != nil {
		s.writeError(w, "cancel booking", err)

		return
	}

	if err = s.bManager.CancelBooking(ctx, customerID, bookingID); err != nil {
		s.writeError(w, "cancel booking", err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) livenessHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) addRoutes(r *http.ServeMux) {
	routes := map[string]http.HandlerFunc{
		fmt.Sprintf("GET %s", s.conf.LivenessEndpoint): s.livenessHandler,
		"POST /api/auth/v1/sign-up":                    s.signUpHandler,
		"POST /api/auth/v1/verify-email":               s.verifyEmailHandler,
		"POST /api/auth/v1/sign-in":                    s.signInHandler,
		"POST /api/auth/v1/sign-out":                   s.signOutHandler,
		"GET /api/auth/v1/me":                          s.profileHandler,
		"GET /api/hotels/v1":                           s.hotelsHandler,
		"GET /api/hotels/v1/cities":                    s.citiesHandler,
		"GET /api/rooms/v1":                            s.roomsHandler,
		"GET /api/rooms/v1/available":                  s.availableRoomsHandler,
		"POST /api/rooms/v1/filter":                    s.filterRoomsHandler,
		"GET /api/rooms/v1/featured":                   s.featuredRoomsHandler,
		"GET /api/rooms/v1/{id}/calendar":              s.calendarHandler,
		"GET /api/rooms/v1/{id}/quote":                 s.quoteHandler,
		"POST /api/rooms/v1/{id}/check":                s.checkHandler,
		"GET /api/rooms/v1/{id}/others":                s.otherRoomsHandler,
		"POST /api/rooms/v1/{id}/bookings":             s.createBookingHandler,
		"GET /api/bookings/v1":                         s.customerBookingsHandler,
		"DELETE /api/bookings/v1/{id}":                 s.cancelBookingHandler,
	}

	for pattern, handler := range routes {
		r.Handle(pattern, s.applyMiddlewares(handler, s.loggerMiddleware(), s.recoverMiddleware()))
	}
}
