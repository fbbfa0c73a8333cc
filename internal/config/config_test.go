package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	conf, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8092", conf.HTTP.Port)
	assert.Equal(t, 20*time.Second, conf.HTTP.ReadHeaderTimeout)
	assert.Equal(t, BackendMemory, conf.Backend)
	assert.Equal(t, SessionMemory, conf.Session.Backend)
	assert.Equal(t, []string{"id", "_id", "userId", "customerId", "sub"}, conf.IdentityFields)
	assert.Equal(t, 3*time.Second, conf.AlertDelay)
	assert.Equal(t, 365, conf.MaxStayNights)
	assert.Equal(t, uint32(5), conf.Remote.BreakerMaxFailures)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("BACKEND", "REMOTE")
	t.Setenv("HOTEL_API_URL", "http://hotel.test/api/")
	t.Setenv("IDENTITY_FIELDS", " sub , customerId ")
	t.Setenv("TIME_ZONE", "UTC")
	t.Setenv("ALERT_DELAY", "5s")
	t.Setenv("MAX_STAY_NIGHTS", "60")

	conf, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, BackendRemote, conf.Backend)
	assert.Equal(t, "http://hotel.test/api", conf.Remote.HotelAPIURL)
	assert.Equal(t, []string{"sub", "customerId"}, conf.IdentityFields)
	assert.Equal(t, time.UTC, conf.Location)
	assert.Equal(t, 5*time.Second, conf.AlertDelay)
	assert.Equal(t, 60, conf.MaxStayNights)
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("ROOMBOOK_TEST_PORT_MARKER=1\nHTTP_PORT=9999\n"), 0o600))

	t.Cleanup(func() {
		os.Unsetenv("HTTP_PORT")
		os.Unsetenv("ROOMBOOK_TEST_PORT_MARKER")
	})

	conf, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9999", conf.HTTP.Port)

	_, err = Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.NoError(t, err)
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Setenv("SESSION_BACKEND", "memcache")
	t.Setenv("IDENTITY_FIELDS", " , ")

	_, err := Load("")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoadRejectsNonPositiveMaxStay(t *testing.T) {
	t.Setenv("MAX_STAY_NIGHTS", "0")

	_, err := Load("")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
