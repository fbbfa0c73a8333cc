package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/avstrong/roombook/internal/auth"
	"github.com/avstrong/roombook/internal/booking"
	"github.com/avstrong/roombook/internal/calendar"
	"github.com/avstrong/roombook/internal/config"
	"github.com/avstrong/roombook/internal/identity"
	"github.com/avstrong/roombook/internal/idgen/simple"
	"github.com/avstrong/roombook/internal/logger"
	"github.com/avstrong/roombook/internal/migration"
	"github.com/avstrong/roombook/internal/remote"
	"github.com/avstrong/roombook/internal/session"
	sessionmemory "github.com/avstrong/roombook/internal/session/memory"
	sessionredis "github.com/avstrong/roombook/internal/session/redis"
	"github.com/avstrong/roombook/internal/storage/memory"
	"github.com/avstrong/roombook/internal/transport/web"
)

type bookingStorage interface {
	GetRoom(ctx context.Context, id int) (*booking.Room, error)
	GetRooms(ctx context.Context) ([]booking.Room, error)
	GetAvailableRooms(ctx context.Context, from, to time.Time) ([]booking.Room, error)
	GetFilteredRooms(ctx context.Context, filter *booking.RoomFilter) ([]booking.Room, error)
	GetHotels(ctx context.Context) ([]booking.Hotel, error)
	GetCities(ctx context.Context) ([]string, error)
	GetBookings(ctx context.Context, customerID string) ([]booking.Booking, error)
	CreateBooking(ctx context.Context, req *booking.BookingRequest) (*booking.Booking, error)
	DeleteBooking(ctx context.Context, id int) error
}

type authProvider interface {
	SignUp(ctx context.Context, req *auth.SignUpRequest) error
	VerifyEmail(ctx context.Context, email, otp string) error
	SignIn(ctx context.Context, email, password string) (string, error)
	GetUser(ctx context.Context, token string) (map[string]any, error)
}

type services struct {
	bookings *booking.Manager
	auth     *auth.Manager
	closers  []func()
}

func (s *services) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

//nolint:funlen
func setup(ctx context.Context, l *logger.Logger, conf *config.Config) (*services, error) {
	calc := calendar.New(calendar.SystemClock{}, conf.Location)
	res := &services{} //nolint:exhaustruct

	var (
		storage  bookingStorage
		provider authProvider
	)

	switch conf.Backend {
	case config.BackendRemote:
		//nolint:exhaustruct
		hotel := remote.NewHotelClient(l, remote.HotelConfig{
			Config: remote.Config{
				BaseURL:     conf.Remote.HotelAPIURL,
				Timeout:     conf.Remote.Timeout,
				MaxFailures: conf.Remote.BreakerMaxFailures,
				OpenTimeout: conf.Remote.BreakerOpenTimeout,
			},
			RoomsCacheTTL: conf.Remote.RoomsCacheTTL,
		})
		res.closers = append(res.closers, hotel.Stop)

		//nolint:exhaustruct
		storage, provider = hotel, remote.NewAuthClient(l, remote.Config{
			BaseURL:     conf.Remote.AuthAPIURL,
			Timeout:     conf.Remote.Timeout,
			MaxFailures: conf.Remote.BreakerMaxFailures,
			OpenTimeout: conf.Remote.BreakerOpenTimeout,
		})

		l.LogInfo("Using remote backend %s", conf.Remote.HotelAPIURL)
	default:
		idGen := simple.New()
		idGen.StartAfter(migration.LastSeedID)

		db := memory.New(memory.Config{L: l, IDGen: idGen, MaxNights: conf.MaxStayNights, OTP: nil})
		if err := migration.Up(ctx, l, db, calc.Today()); err != nil {
			return nil, fmt.Errorf("up test migration: %w", err)
		}

		l.LogInfo("Test migration has been applied, demo login %s / %s", migration.DemoEmail, migration.DemoPassword)

		storage, provider = db, db
	}

	var store session.Store

	switch conf.Session.Backend {
	case config.SessionRedis:
		redisStore, err := sessionredis.New(ctx, sessionredis.Config{
			Addr:     conf.Session.RedisAddr,
			Password: conf.Session.RedisPassword,
			DB:       conf.Session.RedisDB,
			TTL:      conf.Session.TTL,
		})
		if err != nil {
			res.close()

			return nil, fmt.Errorf("init redis session store: %w", err)
		}

		res.closers = append(res.closers, func() {
			if err := redisStore.Close(); err != nil {
				l.LogWarnf("Failed to close redis session store: %v", err.Error())
			}
		})
		store = redisStore
	default:
		memStore := sessionmemory.New(conf.Session.TTL)
		res.closers = append(res.closers, memStore.Stop)
		store = memStore
	}

	res.bookings = booking.New(l, storage, identity.New(conf.IdentityFields), calc, conf.MaxStayNights)
	res.auth = auth.New(l, provider, store)

	return res, nil
}

func Run(l *logger.Logger, conf *config.Config) error {
	ctx, cancel := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGHUP,
	)
	defer cancel()

	svc, err := setup(ctx, l, conf)
	if err != nil {
		return err
	}
	defer svc.close()

	serverLogWriter := l.Writer()
	defer serverLogWriter.Close() //nolint:errcheck

	webConf := web.Conf{
		L:                 l,
		ServerLogger:      log.New(serverLogWriter, "http: ", 0),
		Host:              conf.HTTP.Host,
		Port:              conf.HTTP.Port,
		ReadHeaderTimeout: conf.HTTP.ReadHeaderTimeout,
		LivenessEndpoint:  conf.HTTP.LivenessEndpoint,
		CORSOrigins:       conf.HTTP.CORSOrigins,
		AlertDelay:        conf.AlertDelay,
	}

	srv, err := web.New(ctx, webConf, svc.bookings, svc.auth)
	if err != nil {
		return fmt.Errorf("init http server: %w", err)
	}

	//nolint:contextcheck
	go func() {
		<-ctx.Done()

		ctx, cancel := context.WithTimeout(context.Background(), time.Second*4) //nolint:gomnd
		defer cancel()

		if err := srv.Srv().Shutdown(ctx); err != nil {
			l.LogErrorf("Failed to stop http server: %v", err.Error())
		}
	}()

	l.LogInfo("Application is running on %v:%v...", webConf.Host, webConf.Port)

	if err := srv.Srv().ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		l.LogErrorf("Failed to run http server: %v", err.Error())

		cancel()
	}

	l.LogInfo("Application stopped gracefully")

	return nil
}

type CalendarQuery struct {
	RoomID   int
	Month    string
	CheckIn  string
	CheckOut string
}

// PrintCalendar renders a room's month grid and the quote for the selected range to w.
func PrintCalendar(ctx context.Context, w io.Writer, l *logger.Logger, conf *config.Config, q CalendarQuery) error {
	svc, err := setup(ctx, l, conf)
	if err != nil {
		return err
	}
	defer svc.close()

	calc := svc.bookings.Calculator()
	month := calendar.MonthOf(calc.Today())

	if q.Month != "" {
		if month, err = calendar.ParseMonth(q.Month); err != nil {
			return fmt.Errorf("month: %w", err)
		}
	}

	var r calendar.DateRange

	if q.CheckIn != "" {
		if r.CheckIn, err = calendar.ParseDate(q.CheckIn); err != nil {
			return fmt.Errorf("check-in: %w", err)
		}
	}

	if q.CheckOut != "" {
		if r.CheckOut, err = calendar.ParseDate(q.CheckOut); err != nil {
			return fmt.Errorf("check-out: %w", err)
		}
	}

	page, err := svc.bookings.Open(ctx, q.RoomID)
	if err != nil {
		return fmt.Errorf("open room %d: %w", q.RoomID, err)
	}
	defer page.Close()

	days, err := page.Calendar(month, r)
	if err != nil {
		return fmt.Errorf("build calendar: %w", err)
	}

	room := page.Room()

	fmt.Fprintf(w, "%s, %s (%.2f per night, up to %d guests)\n", room.Name, month.Title(), room.PricePerNight, room.MaximumGuests)
	fmt.Fprintln(w, renderGrid(days))

	if r.CheckIn.IsZero() && r.CheckOut.IsZero() {
		return nil
	}

	stay, err := page.Quote(r)
	if err != nil {
		return fmt.Errorf("quote stay: %w", err)
	}

	fmt.Fprintf(w, "%d nights, total %.2f\n", stay.Nights, stay.TotalPrice)

	return nil
}

// renderGrid marks booked days with *, past days with - and the selection with [].
func renderGrid(days []calendar.Day) string {
	var b strings.Builder

	for _, wd := range calendar.WeekDays {
		fmt.Fprintf(&b, " %-4s", wd)
	}

	for i, d := range days {
		if i%len(calendar.WeekDays) == 0 {
			b.WriteString("\n")
		}

		if d.Day == 0 {
			b.WriteString("     ")

			continue
		}

		mark := " "

		switch {
		case d.IsBooked:
			mark = "*"
		case d.IsPast:
			mark = "-"
		case d.InRange:
			mark = "~"
		}

		if d.IsSelected {
			fmt.Fprintf(&b, "[%2d]%s", d.Day, mark)
		} else {
			fmt.Fprintf(&b, " %2d%s ", d.Day, mark)
		}
	}

	return b.String()
}
