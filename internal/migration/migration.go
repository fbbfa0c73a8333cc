package migration

import (
	"context"
	"fmt"
	"time"

	"github.com/avstrong/roombook/internal/booking"
	"github.com/avstrong/roombook/internal/logger"
)

// LastSeedID is the highest id used by seeded records.
const LastSeedID = 1000

const (
	DemoEmail    = "guest@roombook.test"
	DemoPassword = "guest-password"
)

type storage interface {
	SaveHotels(ctx context.Context, hotels []booking.Hotel) error
	SaveRooms(ctx context.Context, rooms []booking.Room) error
	SaveUser(ctx context.Context, profile map[string]any, email, password string) error
}

type seedRoom struct {
	id       int
	hotelID  int
	roomType int
	name     string
	price    float64
	guests   int
	bookedIn []int // offsets in days from today
}

//nolint:gochecknoglobals,gomnd
var seedHotels = []booking.Hotel{
	{ID: 1, Name: "Old Town Inn", Address: "Kote Afkhazi St 12", City: "Tbilisi", FeaturedImage: "/img/old-town.jpg"},
	{ID: 2, Name: "Black Sea Resort", Address: "Rustaveli Blvd 4", City: "Batumi", FeaturedImage: "/img/black-sea.jpg"},
	{ID: 3, Name: "Kazbegi Lodge", Address: "Gergeti Rd 1", City: "Stepantsminda", FeaturedImage: "/img/kazbegi.jpg"},
}

//nolint:gochecknoglobals,gomnd
var seedRooms = []seedRoom{
	{id: 1, hotelID: 1, roomType: 1, name: "Standard Single", price: 80, guests: 1, bookedIn: []int{2, 3}},
	{id: 2, hotelID: 1, roomType: 2, name: "Standard Double", price: 120, guests: 2, bookedIn: []int{5, 6, 7}},
	{id: 3, hotelID: 1, roomType: 2, name: "Deluxe Double", price: 180, guests: 3},
	{id: 4, hotelID: 2, roomType: 3, name: "Family Suite", price: 260, guests: 5, bookedIn: []int{1, 9, 10, 11, 12}},
	{id: 5, hotelID: 2, roomType: 2, name: "Sea View Room", price: 210, guests: 2, bookedIn: []int{14}},
	{id: 6, hotelID: 3, roomType: 3, name: "Mountain Cabin", price: 150, guests: 4, bookedIn: []int{-2, -1, 20, 21}},
	{id: 7, hotelID: 3, roomType: 3, name: "Penthouse", price: 540, guests: 6},
}

func Up(ctx context.Context, l *logger.Logger, storage storage, today time.Time) error {
	if err := storage.SaveHotels(ctx, seedHotels); err != nil {
		return fmt.Errorf("save hotels to storage: %w", err)
	}

	rooms := make([]booking.Room, 0, len(seedRooms))
	nextDateID := 100

	for _, seed := range seedRooms {
		//nolint:exhaustruct
		room := booking.Room{
			ID:            seed.id,
			Name:          seed.name,
			HotelID:       seed.hotelID,
			PricePerNight: seed.price,
			Available:     true,
			MaximumGuests: seed.guests,
			RoomTypeID:    seed.roomType,
		}

		for _, offset := range seed.bookedIn {
			room.BookedDates = append(room.BookedDates, booking.BookedDate{
				ID:     nextDateID,
				RoomID: seed.id,
				Date:   today.AddDate(0, 0, offset).Format("2006-01-02T15:04:05"),
			})
			nextDateID++
		}

		rooms = append(rooms, room)
	}

	if err := storage.SaveRooms(ctx, rooms); err != nil {
		return fmt.Errorf("save rooms to storage: %w", err)
	}

	profile := map[string]any{
		"_id":       "demo-guest",
		"firstName": "Demo",
		"lastName":  "Guest",
		"phone":     "+995555000000",
	}

	if err := storage.SaveUser(ctx, profile, DemoEmail, DemoPassword); err != nil {
		return fmt.Errorf("save demo user to storage: %w", err)
	}

	l.LogInfo("Seeded %d hotels, %d rooms and the demo user %s", len(seedHotels), len(rooms), DemoEmail)

	return nil
}
