// Package memory is an in-process stand-in for the remote hotel and auth services, used for
// offline runs and tests.
package memory

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/avstrong/roombook/internal/auth"
	"github.com/avstrong/roombook/internal/booking"
	"github.com/avstrong/roombook/internal/calendar"
	"github.com/avstrong/roombook/internal/logger"
)

type idGenerator interface {
	GetID(ctx context.Context) (int, error)
}

type Config struct {
	L     *logger.Logger
	IDGen idGenerator
	// MaxNights caps a single booking. Zero means booking.DefaultMaxNights.
	MaxNights int
	// OTP issues sign-up verification codes. Nil means random six digit codes.
	OTP func() (string, error)
}

type user struct {
	profile      map[string]any
	email        string
	passwordHash []byte
	verified     bool
	otp          string
}

type DB struct {
	mu                     sync.Mutex
	l                      *logger.Logger
	idGen                  idGenerator
	maxNights              int
	otp                    func() (string, error)
	rooms                  map[int]*booking.Room
	hotels                 map[int]*booking.Hotel
	bookings               map[int]*booking.Booking
	bookingIdempotencyKeys map[string]int
	users                  map[string]*user
	tokens                 map[string]string
}

func New(conf Config) *DB {
	if conf.MaxNights <= 0 {
		conf.MaxNights = booking.DefaultMaxNights
	}

	if conf.OTP == nil {
		conf.OTP = randomOTP
	}

	//nolint:exhaustruct
	return &DB{
		l:                      conf.L,
		idGen:                  conf.IDGen,
		maxNights:              conf.MaxNights,
		otp:                    conf.OTP,
		rooms:                  make(map[int]*booking.Room),
		hotels:                 make(map[int]*booking.Hotel),
		bookings:               make(map[int]*booking.Booking),
		bookingIdempotencyKeys: make(map[string]int),
		users:                  make(map[string]*user),
		tokens:                 make(map[string]string),
	}
}

func (db *DB) SaveRooms(_ context.Context, rooms []booking.Room) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for i := range rooms {
		if _, exists := db.rooms[rooms[i].ID]; exists {
			return fmt.Errorf("room %d: %w", rooms[i].ID, ErrDuplicateRoom)
		}
	}

	for i := range rooms {
		room := cloneRoom(&rooms[i])
		db.rooms[room.ID] = room
	}

	return nil
}

func (db *DB) SaveHotels(_ context.Context, hotels []booking.Hotel) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for i := range hotels {
		if _, exists := db.hotels[hotels[i].ID]; exists {
			return fmt.Errorf("hotel %d: %w", hotels[i].ID, ErrDuplicateHotel)
		}
	}

	for i := range hotels {
		h := hotels[i]
		h.Rooms = nil
		db.hotels[h.ID] = &h
	}

	return nil
}

// SaveUser stores a profile that can sign in with email and password.
func (db *DB) SaveUser(_ context.Context, profile map[string]any, email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	key := strings.ToLower(email)
	if _, exists := db.users[key]; exists {
		return fmt.Errorf("%s: %w", email, ErrDuplicateEmail)
	}

	stored := make(map[string]any, len(profile)+1)
	for k, v := range profile {
		stored[k] = v
	}

	stored["email"] = email

	db.users[key] = &user{profile: stored, email: email, passwordHash: hash, verified: true, otp: ""}

	return nil
}

func (db *DB) GetRoom(_ context.Context, id int) (*booking.Room, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	room, ok := db.rooms[id]
	if !ok {
		return nil, fmt.Errorf("room %d: %w", id, booking.ErrRecordNotFound)
	}

	return cloneRoom(room), nil
}

func (db *DB) GetRooms(_ context.Context) ([]booking.Room, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	res := make([]booking.Room, 0, len(db.rooms))
	for _, room := range db.rooms {
		res = append(res, *cloneRoom(room))
	}

	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })

	return res, nil
}

// GetAvailableRooms lists the rooms with no booked date within [from, to].
func (db *DB) GetAvailableRooms(_ context.Context, from, to time.Time) ([]booking.Room, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	r := calendar.DateRange{CheckIn: from, CheckOut: to}

	return db.filterRooms(func(room *booking.Room) (bool, error) {
		return db.freeWithin(room, r)
	})
}

// GetFilteredRooms lists the rooms passing the filter. Dates, when set, must be free.
func (db *DB) GetFilteredRooms(_ context.Context, filter *booking.RoomFilter) ([]booking.Room, error) {
	var r calendar.DateRange

	if filter.CheckIn != "" && filter.CheckOut != "" {
		var err error

		if r.CheckIn, err = calendar.ParseDate(filter.CheckIn); err != nil {
			return nil, fmt.Errorf("check-in: %w", err)
		}

		if r.CheckOut, err = calendar.ParseDate(filter.CheckOut); err != nil {
			return nil, fmt.Errorf("check-out: %w", err)
		}
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	return db.filterRooms(func(room *booking.Room) (bool, error) {
		if !filter.Match(room) {
			return false, nil
		}

		return db.freeWithin(room, r)
	})
}

func (db *DB) GetHotels(_ context.Context) ([]booking.Hotel, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	res := make([]booking.Hotel, 0, len(db.hotels))

	for _, h := range db.hotels {
		hotel := *h
		hotel.Rooms = make([]booking.Room, 0)

		for _, room := range db.rooms {
			if room.HotelID == h.ID {
				hotel.Rooms = append(hotel.Rooms, *cloneRoom(room))
			}
		}

		sort.Slice(hotel.Rooms, func(i, j int) bool { return hotel.Rooms[i].ID < hotel.Rooms[j].ID })

		res = append(res, hotel)
	}

	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })

	return res, nil
}

// GetCities lists the distinct hotel cities in alphabetical order.
func (db *DB) GetCities(_ context.Context) ([]string, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	seen := make(map[string]struct{}, len(db.hotels))
	res := make([]string, 0, len(db.hotels))

	for _, h := range db.hotels {
		if _, ok := seen[h.City]; ok || h.City == "" {
			continue
		}

		seen[h.City] = struct{}{}
		res = append(res, h.City)
	}

	sort.Strings(res)

	return res, nil
}

func (db *DB) filterRooms(keep func(room *booking.Room) (bool, error)) ([]booking.Room, error) {
	res := make([]booking.Room, 0, len(db.rooms))

	for _, room := range db.rooms {
		ok, err := keep(room)
		if err != nil {
			return nil, err
		}

		if ok {
			res = append(res, *cloneRoom(room))
		}
	}

	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })

	return res, nil
}

func (db *DB) freeWithin(room *booking.Room, r calendar.DateRange) (bool, error) {
	if !r.Complete() {
		return true, nil
	}

	booked, err := room.BookedDateSet()
	if err != nil {
		return false, fmt.Errorf("booked dates of room %d: %w", room.ID, err)
	}

	return len(booked.Overlaps(r)) == 0, nil
}

func (db *DB) GetBookings(_ context.Context, customerID string) ([]booking.Booking, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	res := make([]booking.Booking, 0)

	for _, b := range db.bookings {
		if customerID == "" || b.CustomerID == customerID {
			res = append(res, *b)
		}
	}

	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })

	return res, nil
}

// CreateBooking reserves the nights [checkIn, checkOut) of the room. A repeated idempotency key
// returns the booking created the first time.
//
//nolint:funlen
func (db *DB) CreateBooking(ctx context.Context, req *booking.BookingRequest) (*booking.Booking, error) {
	checkIn, err := calendar.ParseDate(req.CheckInDate)
	if err != nil {
		return nil, fmt.Errorf("check-in: %w", err)
	}

	checkOut, err := calendar.ParseDate(req.CheckOutDate)
	if err != nil {
		return nil, fmt.Errorf("check-out: %w", err)
	}

	if err = (calendar.DateRange{CheckIn: checkIn, CheckOut: checkOut}).Validate(); err != nil {
		return nil, err //nolint:wrapcheck
	}

	if n := calendar.ComputeStay(checkIn, checkOut, 0).Nights; n > db.maxNights {
		return nil, fmt.Errorf("%d nights: %w", n, booking.ErrStayTooLong)
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	idempotencyKey, _ := booking.IdempotencyKeyFromContext(ctx)
	if idempotencyKey != "" {
		if id, ok := db.bookingIdempotencyKeys[idempotencyKey]; ok {
			if existing, ok := db.bookings[id]; ok {
				b := *existing

				return &b, nil
			}
		}
	}

	room, ok := db.rooms[req.RoomID]
	if !ok {
		return nil, fmt.Errorf("room %d: %w", req.RoomID, booking.ErrRecordNotFound)
	}

	booked, err := room.BookedDateSet()
	if err != nil {
		return nil, fmt.Errorf("booked dates of room %d: %w", room.ID, err)
	}

	var (
		nights      []time.Time
		unavailable []time.Time
	)

	for d := checkIn; d.Before(checkOut); d = d.AddDate(0, 0, 1) {
		nights = append(nights, d)

		if booked.Contains(d) {
			unavailable = append(unavailable, d)
		}
	}

	if len(unavailable) > 0 {
		availabilityErr := booking.NewAvailabilityError()
		availabilityErr.AddUnavailableDates(room.ID, unavailable)

		return nil, availabilityErr
	}

	id, err := db.idGen.GetID(ctx)
	if err != nil {
		return nil, fmt.Errorf("next booking id: %w", err)
	}

	bookedDates := make([]booking.BookedDate, 0, len(nights))

	for _, night := range nights {
		dateID, err := db.idGen.GetID(ctx)
		if err != nil {
			return nil, fmt.Errorf("next booked date id: %w", err)
		}

		bookedDates = append(bookedDates, booking.BookedDate{
			ID:     dateID,
			RoomID: room.ID,
			Date:   night.Format("2006-01-02T15:04:05"),
		})
	}

	room.BookedDates = append(room.BookedDates, bookedDates...)

	b := &booking.Booking{
		ID:            id,
		RoomID:        req.RoomID,
		CheckInDate:   req.CheckInDate,
		CheckOutDate:  req.CheckOutDate,
		TotalPrice:    req.TotalPrice,
		IsConfirmed:   req.IsConfirmed,
		CustomerName:  req.CustomerName,
		CustomerID:    req.CustomerID,
		CustomerPhone: req.CustomerPhone,
	}

	db.bookings[id] = b

	if idempotencyKey != "" {
		db.bookingIdempotencyKeys[idempotencyKey] = id
	}

	db.l.LogInfo("Booking %d created for room %d, %s - %s", id, room.ID, req.CheckInDate, req.CheckOutDate)

	res := *b

	return &res, nil
}

// DeleteBooking removes the booking and frees its nights.
func (db *DB) DeleteBooking(_ context.Context, id int) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	b, ok := db.bookings[id]
	if !ok {
		return fmt.Errorf("booking %d: %w", id, booking.ErrRecordNotFound)
	}

	if room, ok := db.rooms[b.RoomID]; ok {
		checkIn, errIn := calendar.ParseDate(b.CheckInDate)
		checkOut, errOut := calendar.ParseDate(b.CheckOutDate)

		if errIn == nil && errOut == nil {
			freed := make(calendar.BookedDateSet)
			for d := checkIn; d.Before(checkOut); d = d.AddDate(0, 0, 1) {
				freed[calendar.FormatDate(d)] = struct{}{}
			}

			kept := room.BookedDates[:0]

			for _, bd := range room.BookedDates {
				d, err := calendar.ParseDate(bd.Date)
				if err == nil && freed.Contains(d) {
					continue
				}

				kept = append(kept, bd)
			}

			room.BookedDates = kept
		}
	}

	delete(db.bookings, id)

	for key, bookingID := range db.bookingIdempotencyKeys {
		if bookingID == id {
			delete(db.bookingIdempotencyKeys, key)
		}
	}

	return nil
}

// SignUp stores an unverified user and issues the verification code. Without a mail
// service the code is written to the log.
func (db *DB) SignUp(_ context.Context, req *auth.SignUpRequest) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	code, err := db.otp()
	if err != nil {
		return fmt.Errorf("issue verification code: %w", err)
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	key := strings.ToLower(req.Email)
	if _, exists := db.users[key]; exists {
		return fmt.Errorf("%s: %w", req.Email, auth.ErrEmailExists)
	}

	db.users[key] = &user{
		profile: map[string]any{
			"_id":       uuid.NewString(),
			"firstName": req.FirstName,
			"lastName":  req.LastName,
			"age":       req.Age,
			"email":     req.Email,
			"phone":     req.Phone,
			"address":   req.Address,
			"zipcode":   req.Zipcode,
			"avatar":    req.Avatar,
			"gender":    req.Gender,
			"role":      "USER",
		},
		email:        req.Email,
		passwordHash: hash,
		verified:     false,
		otp:          code,
	}

	db.l.LogInfo("Verification code for %s: %s", req.Email, code)

	return nil
}

func (db *DB) VerifyEmail(_ context.Context, email, otp string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	u, ok := db.users[strings.ToLower(email)]
	if !ok || u.verified || u.otp == "" || u.otp != otp {
		return auth.ErrInvalidOTP
	}

	u.verified = true
	u.otp = ""

	return nil
}

func (db *DB) SignIn(_ context.Context, email, password string) (string, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	u, ok := db.users[strings.ToLower(email)]
	if !ok {
		return "", auth.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword(u.passwordHash, []byte(password)); err != nil {
		return "", auth.ErrInvalidCredentials
	}

	if !u.verified {
		return "", auth.ErrEmailNotVerified
	}

	token := uuid.NewString()
	db.tokens[token] = strings.ToLower(u.email)

	return token, nil
}

func (db *DB) GetUser(_ context.Context, token string) (map[string]any, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	key, ok := db.tokens[token]
	if !ok {
		return nil, auth.ErrUnauthorized
	}

	u, ok := db.users[key]
	if !ok {
		return nil, auth.ErrUnauthorized
	}

	profile := make(map[string]any, len(u.profile))
	for k, v := range u.profile {
		profile[k] = v
	}

	return profile, nil
}

func randomOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000)) //nolint:gomnd
	if err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}

	return fmt.Sprintf("%06d", n.Int64()), nil
}

func cloneRoom(room *booking.Room) *booking.Room {
	res := *room
	res.BookedDates = append([]booking.BookedDate(nil), room.BookedDates...)
	res.Images = append([]booking.Image(nil), room.Images...)

	return &res
}
