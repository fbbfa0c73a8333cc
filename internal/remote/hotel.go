package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/karlseguin/ccache/v3"

	"github.com/avstrong/roombook/internal/booking"
	"github.com/avstrong/roombook/internal/calendar"
	"github.com/avstrong/roombook/internal/logger"
)

const (
	allRoomsKey  = "rooms:all"
	allHotelsKey = "hotels:all"
)

type HotelConfig struct {
	Config
	RoomsCacheTTL time.Duration
}

// HotelClient reads rooms and hotels and manages bookings on the hotel booking service.
type HotelClient struct {
	c        *client
	rooms    *ccache.Cache[[]booking.Room]
	hotels   *ccache.Cache[[]booking.Hotel]
	roomsTTL time.Duration
}

func NewHotelClient(l *logger.Logger, conf HotelConfig) *HotelClient {
	return &HotelClient{
		c:        newClient(l, "hotel-api", conf.Config),
		rooms:    ccache.New(ccache.Configure[[]booking.Room]().MaxSize(1)),
		hotels:   ccache.New(ccache.Configure[[]booking.Hotel]().MaxSize(1)),
		roomsTTL: conf.RoomsCacheTTL,
	}
}

// GetRooms lists every room. The list is cached for RoomsCacheTTL.
func (h *HotelClient) GetRooms(ctx context.Context) ([]booking.Room, error) {
	if h.roomsTTL > 0 {
		if item := h.rooms.Get(allRoomsKey); item != nil && !item.Expired() {
			return append([]booking.Room(nil), item.Value()...), nil
		}
	}

	var rooms []booking.Room

	if err := h.c.do(ctx, http.MethodGet, "/Rooms/GetAll", nil, nil, &rooms); err != nil {
		return nil, err
	}

	if h.roomsTTL > 0 {
		h.rooms.Set(allRoomsKey, rooms, h.roomsTTL)
	}

	return append([]booking.Room(nil), rooms...), nil
}

// GetRoom always hits the service so booked dates are fresh for each page view.
func (h *HotelClient) GetRoom(ctx context.Context, id int) (*booking.Room, error) {
	var room booking.Room

	if err := h.c.do(ctx, http.MethodGet, "/Rooms/GetRoom/"+strconv.Itoa(id), nil, nil, &room); err != nil {
		return nil, err
	}

	return &room, nil
}

// GetAvailableRooms asks the service for rooms free on every date of [from, to].
func (h *HotelClient) GetAvailableRooms(ctx context.Context, from, to time.Time) ([]booking.Room, error) {
	query := url.Values{
		"from": []string{calendar.FormatDate(from)},
		"to":   []string{calendar.FormatDate(to)},
	}

	var rooms []booking.Room

	if err := h.c.do(ctx, http.MethodGet, "/Rooms/GetAvailableRooms?"+query.Encode(), nil, nil, &rooms); err != nil {
		return nil, err
	}

	return rooms, nil
}

func (h *HotelClient) GetFilteredRooms(ctx context.Context, filter *booking.RoomFilter) ([]booking.Room, error) {
	var rooms []booking.Room

	if err := h.c.do(ctx, http.MethodPost, "/Rooms/GetFiltered", nil, filter, &rooms); err != nil {
		return nil, err
	}

	return rooms, nil
}

// GetHotels lists every hotel with its rooms. Like rooms, the list is cached for RoomsCacheTTL.
func (h *HotelClient) GetHotels(ctx context.Context) ([]booking.Hotel, error) {
	if h.roomsTTL > 0 {
		if item := h.hotels.Get(allHotelsKey); item != nil && !item.Expired() {
			return append([]booking.Hotel(nil), item.Value()...), nil
		}
	}

	var hotels []booking.Hotel

	if err := h.c.do(ctx, http.MethodGet, "/Hotels/GetAll", nil, nil, &hotels); err != nil {
		return nil, err
	}

	if h.roomsTTL > 0 {
		h.hotels.Set(allHotelsKey, hotels, h.roomsTTL)
	}

	return append([]booking.Hotel(nil), hotels...), nil
}

func (h *HotelClient) GetCities(ctx context.Context) ([]string, error) {
	var cities []string

	if err := h.c.do(ctx, http.MethodGet, "/Hotels/GetCities", nil, nil, &cities); err != nil {
		return nil, err
	}

	return cities, nil
}

func (h *HotelClient) GetBookings(ctx context.Context, customerID string) ([]booking.Booking, error) {
	path := "/Booking"
	if customerID != "" {
		path += "?" + url.Values{"customerId": []string{customerID}}.Encode()
	}

	var bookings []booking.Booking

	if err := h.c.do(ctx, http.MethodGet, path, nil, nil, &bookings); err != nil {
		return nil, err
	}

	return bookings, nil
}

// CreateBooking posts the request once. The service may answer with the booking or a plain
// acknowledgement; in the latter case the booking is echoed back from the request.
func (h *HotelClient) CreateBooking(ctx context.Context, req *booking.BookingRequest) (*booking.Booking, error) {
	key, ok := booking.IdempotencyKeyFromContext(ctx)
	if !ok || key == "" {
		key = uuid.NewString()
	}

	header := http.Header{}
	header.Set("Idempotency-Key", key)

	var raw []byte

	if err := h.c.do(ctx, http.MethodPost, "/Booking", header, req, &raw); err != nil {
		return nil, err
	}

	h.invalidate()

	//nolint:exhaustruct
	out := booking.Booking{}
	if err := json.Unmarshal(raw, &out); err != nil || out.RoomID == 0 {
		if id, err := strconv.Atoi(string(raw)); err == nil {
			out.ID = id
		}

		out.RoomID = req.RoomID
		out.CheckInDate = req.CheckInDate
		out.CheckOutDate = req.CheckOutDate
		out.TotalPrice = req.TotalPrice
		out.IsConfirmed = req.IsConfirmed
		out.CustomerName = req.CustomerName
		out.CustomerID = req.CustomerID
		out.CustomerPhone = req.CustomerPhone
	}

	return &out, nil
}

func (h *HotelClient) DeleteBooking(ctx context.Context, id int) error {
	if err := h.c.do(ctx, http.MethodDelete, fmt.Sprintf("/Booking/%d", id), nil, nil, nil); err != nil {
		return err
	}

	h.invalidate()

	return nil
}

func (h *HotelClient) invalidate() {
	h.rooms.Delete(allRoomsKey)
	h.hotels.Delete(allHotelsKey)
}

func (h *HotelClient) Stop() {
	h.rooms.Stop()
	h.hotels.Stop()
}
