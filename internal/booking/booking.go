package booking

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/avstrong/roombook/internal/calendar"
	"github.com/avstrong/roombook/internal/logger"
)

const (
	otherRoomsLimit    = 3
	featuredRoomsLimit = 6

	// DefaultMaxNights caps a stay when no limit is configured.
	DefaultMaxNights = 365
)

type roomReader interface {
	GetRoom(ctx context.Context, id int) (*Room, error)
	GetRooms(ctx context.Context) ([]Room, error)
}

type roomSearcher interface {
	GetAvailableRooms(ctx context.Context, from, to time.Time) ([]Room, error)
	GetFilteredRooms(ctx context.Context, filter *RoomFilter) ([]Room, error)
}

type hotelReader interface {
	GetHotels(ctx context.Context) ([]Hotel, error)
	GetCities(ctx context.Context) ([]string, error)
}

type bookingReader interface {
	GetBookings(ctx context.Context, customerID string) ([]Booking, error)
}

type bookingWriter interface {
	CreateBooking(ctx context.Context, req *BookingRequest) (*Booking, error)
	DeleteBooking(ctx context.Context, id int) error
}

type storage interface {
	roomReader
	roomSearcher
	hotelReader
	bookingReader
	bookingWriter
}

type identityResolver interface {
	Resolve(sources ...map[string]any) (string, bool)
}

type Manager struct {
	l         *logger.Logger
	storage   storage
	identity  identityResolver
	calc      *calendar.Calculator
	validate  *validator.Validate
	maxNights int
}

// New returns a Manager. A maxNights of zero or less means DefaultMaxNights.
func New(
	l *logger.Logger,
	storage storage,
	identity identityResolver,
	calc *calendar.Calculator,
	maxNights int,
) *Manager {
	v := validator.New()
	v.RegisterTagNameFunc(jsonFieldName)

	if maxNights <= 0 {
		maxNights = DefaultMaxNights
	}

	return &Manager{
		l:         l,
		storage:   storage,
		identity:  identity,
		calc:      calc,
		validate:  v,
		maxNights: maxNights,
	}
}

func jsonFieldName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "-" || name == "" {
		return field.Name
	}

	return name
}

func (m *Manager) Calculator() *calendar.Calculator {
	return m.calc
}

// NewPage returns a page in the Loading state.
func (m *Manager) NewPage() *Page {
	//nolint:exhaustruct
	return &Page{
		l:         m.l,
		storage:   m.storage,
		identity:  m.identity,
		calc:      m.calc,
		validate:  m.validate,
		maxNights: m.maxNights,
		state:     StateLoading,
	}
}

// Open loads roomID into a new page that is closed when ctx is done.
func (m *Manager) Open(ctx context.Context, roomID int) (*Page, error) {
	page := m.NewPage()

	context.AfterFunc(ctx, page.Close)

	if err := page.Load(ctx, roomID); err != nil {
		page.Close()

		return nil, err
	}

	return page, nil
}

func (m *Manager) MaxNights() int {
	return m.maxNights
}

func (m *Manager) Rooms(ctx context.Context) ([]Room, error) {
	rooms, err := m.storage.GetRooms(ctx)
	if err != nil {
		return nil, fmt.Errorf("get rooms: %w", err)
	}

	return rooms, nil
}

// AvailableRooms lists the rooms free for the whole of r.
func (m *Manager) AvailableRooms(ctx context.Context, r calendar.DateRange) ([]Room, error) {
	if err := m.checkSearchRange(r); err != nil {
		return nil, err
	}

	rooms, err := m.storage.GetAvailableRooms(ctx, r.CheckIn, r.CheckOut)
	if err != nil {
		return nil, fmt.Errorf("get rooms available %s - %s: %w",
			calendar.FormatDate(r.CheckIn), calendar.FormatDate(r.CheckOut), err)
	}

	return rooms, nil
}

func (m *Manager) FilterRooms(ctx context.Context, filter RoomFilter) ([]Room, error) {
	if err := validateStruct(m.validate, &filter); err != nil {
		return nil, err
	}

	inputErr := newInputError()

	if filter.PriceTo > 0 && filter.PriceFrom > filter.PriceTo {
		inputErr.addError("priceTo", "must not be lower than priceFrom")
	}

	if (filter.CheckIn == "") != (filter.CheckOut == "") {
		inputErr.addError("checkOut", "provide both checkIn and checkOut or neither")
	}

	if inputErr.fieldsCount() > 0 {
		return nil, inputErr
	}

	if filter.CheckIn != "" {
		checkIn, _ := calendar.ParseDate(filter.CheckIn)
		checkOut, _ := calendar.ParseDate(filter.CheckOut)

		if err := m.checkSearchRange(calendar.DateRange{CheckIn: checkIn, CheckOut: checkOut}); err != nil {
			return nil, err
		}
	}

	rooms, err := m.storage.GetFilteredRooms(ctx, &filter)
	if err != nil {
		return nil, fmt.Errorf("get filtered rooms: %w", err)
	}

	return rooms, nil
}

func (m *Manager) checkSearchRange(r calendar.DateRange) error {
	if !r.Complete() {
		return calendar.ErrIncompleteRange
	}

	if err := r.Validate(); err != nil {
		return err //nolint:wrapcheck
	}

	if calendar.Normalize(r.CheckIn).Before(m.calc.Today()) {
		inputErr := newInputError()
		inputErr.addError("checkIn", "must not be in the past")

		return inputErr
	}

	return checkStayLength(r, m.maxNights)
}

func (m *Manager) Hotels(ctx context.Context) ([]Hotel, error) {
	hotels, err := m.storage.GetHotels(ctx)
	if err != nil {
		return nil, fmt.Errorf("get hotels: %w", err)
	}

	return hotels, nil
}

func (m *Manager) Cities(ctx context.Context) ([]string, error) {
	cities, err := m.storage.GetCities(ctx)
	if err != nil {
		return nil, fmt.Errorf("get cities: %w", err)
	}

	return cities, nil
}

// OtherRooms suggests a few rooms besides roomID.
func (m *Manager) OtherRooms(ctx context.Context, roomID int) ([]Room, error) {
	rooms, err := m.storage.GetRooms(ctx)
	if err != nil {
		return nil, fmt.Errorf("get rooms: %w", err)
	}

	res := make([]Room, 0, otherRoomsLimit)

	for _, room := range rooms {
		if room.ID == roomID {
			continue
		}

		res = append(res, room)

		if len(res) == otherRoomsLimit {
			break
		}
	}

	return res, nil
}

// FeaturedRooms returns the most booked rooms first.
func (m *Manager) FeaturedRooms(ctx context.Context) ([]Room, error) {
	rooms, err := m.storage.GetRooms(ctx)
	if err != nil {
		return nil, fmt.Errorf("get rooms: %w", err)
	}

	sorted := make([]Room, len(rooms))
	copy(sorted, rooms)

	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].BookedDates) > len(sorted[j].BookedDates)
	})

	if len(sorted) > featuredRoomsLimit {
		sorted = sorted[:featuredRoomsLimit]
	}

	return sorted, nil
}

// ResolveCustomer picks the customer id out of identity sources, most trusted first.
func (m *Manager) ResolveCustomer(sources ...map[string]any) (string, bool) {
	return m.identity.Resolve(sources...)
}

func (m *Manager) CustomerBookings(ctx context.Context, customerID string) ([]Booking, error) {
	if customerID == "" {
		return nil, ErrNotAuthenticated
	}

	bookings, err := m.storage.GetBookings(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("get bookings of customer %s: %w", customerID, err)
	}

	return bookings, nil
}

// CancelBooking deletes one of the customer's own bookings.
func (m *Manager) CancelBooking(ctx context.Context, customerID string, bookingID int) error {
	bookings, err := m.CustomerBookings(ctx, customerID)
	if err != nil {
		return err
	}

	owned := false

	for _, b := range bookings {
		if b.ID == bookingID {
			owned = true

			break
		}
	}

	if !owned {
		return fmt.Errorf("booking %d of customer %s: %w", bookingID, customerID, ErrRecordNotFound)
	}

	if err = m.storage.DeleteBooking(ctx, bookingID); err != nil {
		return fmt.Errorf("delete booking %d: %w", bookingID, err)
	}

	m.l.LogInfo("Booking %d has been cancelled by customer %s", bookingID, customerID)

	return nil
}
