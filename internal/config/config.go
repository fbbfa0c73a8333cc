package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	BackendMemory = "memory"
	BackendRemote = "remote"

	SessionMemory = "memory"
	SessionRedis  = "redis"
)

var ErrInvalidConfig = errors.New("invalid config")

type HTTP struct {
	Host              string
	Port              string
	ReadHeaderTimeout time.Duration
	LivenessEndpoint  string
	CORSOrigins       []string
}

type Remote struct {
	HotelAPIURL        string
	AuthAPIURL         string
	Timeout            time.Duration
	BreakerMaxFailures uint32
	BreakerOpenTimeout time.Duration
	RoomsCacheTTL      time.Duration
}

type Session struct {
	Backend       string
	TTL           time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

type Config struct {
	HTTP     HTTP
	Backend  string
	Remote   Remote
	Session  Session
	LogLevel string
	LogFile  string
	// IdentityFields is the ordered list of profile fields tried when resolving a customer id.
	IdentityFields []string
	Location       *time.Location
	AlertDelay     time.Duration
	MaxStayNights  int
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("HTTP_HOST", "localhost")
	v.SetDefault("HTTP_PORT", "8092")
	v.SetDefault("HTTP_READ_HEADER_TIMEOUT", "20s")
	v.SetDefault("LIVENESS_ENDPOINT", "/liveness")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("BACKEND", BackendMemory)
	v.SetDefault("HOTEL_API_URL", "https://hotelbooking.stepprojects.ge/api")
	v.SetDefault("AUTH_API_URL", "https://api.everrest.educata.dev/auth")
	v.SetDefault("REMOTE_TIMEOUT", "10s")
	v.SetDefault("BREAKER_MAX_FAILURES", 5) //nolint:gomnd
	v.SetDefault("BREAKER_OPEN_TIMEOUT", "30s")
	v.SetDefault("ROOMS_CACHE_TTL", "1m")
	v.SetDefault("SESSION_BACKEND", SessionMemory)
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("IDENTITY_FIELDS", "id,_id,userId,customerId,sub")
	v.SetDefault("TIME_ZONE", "Local")
	v.SetDefault("ALERT_DELAY", "3s")
	v.SetDefault("MAX_STAY_NIGHTS", 365) //nolint:gomnd
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FILE", "")
}

// Load reads the environment, after loading envFile when it exists.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	loc, err := time.LoadLocation(v.GetString("TIME_ZONE"))
	if err != nil {
		return nil, fmt.Errorf("load time zone: %w", err)
	}

	//nolint:exhaustruct
	conf := &Config{
		HTTP: HTTP{
			Host:              v.GetString("HTTP_HOST"),
			Port:              v.GetString("HTTP_PORT"),
			ReadHeaderTimeout: v.GetDuration("HTTP_READ_HEADER_TIMEOUT"),
			LivenessEndpoint:  v.GetString("LIVENESS_ENDPOINT"),
			CORSOrigins:       splitList(v.GetString("CORS_ORIGINS")),
		},
		Backend: strings.ToLower(v.GetString("BACKEND")),
		Remote: Remote{
			HotelAPIURL:        strings.TrimRight(v.GetString("HOTEL_API_URL"), "/"),
			AuthAPIURL:         strings.TrimRight(v.GetString("AUTH_API_URL"), "/"),
			Timeout:            v.GetDuration("REMOTE_TIMEOUT"),
			BreakerMaxFailures: v.GetUint32("BREAKER_MAX_FAILURES"),
			BreakerOpenTimeout: v.GetDuration("BREAKER_OPEN_TIMEOUT"),
			RoomsCacheTTL:      v.GetDuration("ROOMS_CACHE_TTL"),
		},
		Session: Session{
			Backend:       strings.ToLower(v.GetString("SESSION_BACKEND")),
			TTL:           v.GetDuration("SESSION_TTL"),
			RedisAddr:     v.GetString("REDIS_ADDR"),
			RedisPassword: v.GetString("REDIS_PASSWORD"),
			RedisDB:       v.GetInt("REDIS_DB"),
		},
		LogLevel:       v.GetString("LOG_LEVEL"),
		LogFile:        v.GetString("LOG_FILE"),
		IdentityFields: splitList(v.GetString("IDENTITY_FIELDS")),
		Location:       loc,
		AlertDelay:     v.GetDuration("ALERT_DELAY"),
		MaxStayNights:  v.GetInt("MAX_STAY_NIGHTS"),
	}

	if err := conf.validate(); err != nil {
		return nil, err
	}

	return conf, nil
}

func (c *Config) validate() error {
	var problems []string

	if c.Backend != BackendMemory && c.Backend != BackendRemote {
		problems = append(problems, fmt.Sprintf("BACKEND must be %q or %q", BackendMemory, BackendRemote))
	}

	if c.Session.Backend != SessionMemory && c.Session.Backend != SessionRedis {
		problems = append(problems, fmt.Sprintf("SESSION_BACKEND must be %q or %q", SessionMemory, SessionRedis))
	}

	if c.Backend == BackendRemote && (c.Remote.HotelAPIURL == "" || c.Remote.AuthAPIURL == "") {
		problems = append(problems, "HOTEL_API_URL and AUTH_API_URL are required for the remote backend")
	}

	if len(c.IdentityFields) == 0 {
		problems = append(problems, "IDENTITY_FIELDS must list at least one field")
	}

	if c.MaxStayNights <= 0 {
		problems = append(problems, "MAX_STAY_NIGHTS must be positive")
	}

	if c.Session.TTL <= 0 {
		problems = append(problems, "SESSION_TTL must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%s: %w", strings.Join(problems, "; "), ErrInvalidConfig)
	}

	return nil
}

func splitList(s string) []string {
	var res []string

	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			res = append(res, part)
		}
	}

	return res
}
