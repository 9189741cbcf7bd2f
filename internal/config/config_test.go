package config

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"urban-parking/internal/parking"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "cli", cfg.Server.Mode)
	assert.Equal(t, 300, cfg.Parking.Capacity)
	assert.Equal(t, "UTC", cfg.Parking.TimeZone)
	assert.Equal(t, "parking-lot-service", cfg.OTel.ServiceName)
	assert.Equal(t, parking.DefaultRates(), cfg.Parking.Rates())

	window, err := cfg.Parking.PeakWindow()
	require.NoError(t, err)
	assert.Equal(t, parking.DefaultPeakWindow(), window)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("MODE", "server")
	t.Setenv("PORT", "9090")
	t.Setenv("PARKING_CAPACITY", "12")
	t.Setenv("PARKING_TIMEZONE", "Asia/Dhaka")
	t.Setenv("PARKING_PEAK_START", "08:30")
	t.Setenv("PARKING_PEAK_END", "10:00")
	t.Setenv("PARKING_RATE_CAR", "65.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "server", cfg.Server.Mode)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 12, cfg.Parking.Capacity)
	assert.Equal(t, 65.5, cfg.Parking.Rates()[parking.KindCar])

	window, err := cfg.Parking.PeakWindow()
	require.NoError(t, err)
	assert.Equal(t, 8*time.Hour+30*time.Minute, window.Start)
	assert.Equal(t, 10*time.Hour, window.End)

	loc, err := cfg.Parking.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Dhaka", loc.String())

	engine, err := cfg.Parking.PricingEngine()
	require.NoError(t, err)
	assert.Equal(t, loc.String(), engine.Location().String())
}

func TestLoadRejectsMalformedNumbers(t *testing.T) {
	t.Setenv("PARKING_CAPACITY", "lots")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Server: ServerConfig{Port: "8080", Mode: "cli"},
			Parking: ParkingConfig{
				Capacity: 10, TimeZone: "UTC", PeakStart: "17:00", PeakEnd: "21:00",
				RateBike: 20, RateCar: 50, RateTruck: 80,
			},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"valid", func(*Config) {}, ""},
		{"demo mode", func(c *Config) { c.Server.Mode = "demo" }, ""},
		{"unknown mode", func(c *Config) { c.Server.Mode = "batch" }, "invalid mode"},
		{"zero capacity", func(c *Config) { c.Parking.Capacity = 0 }, "capacity must be greater than 0"},
		{"bad zone", func(c *Config) { c.Parking.TimeZone = "Mars/Olympus" }, "invalid time zone"},
		{"bad peak start", func(c *Config) { c.Parking.PeakStart = "5pm" }, "invalid time of day"},
		{"inverted window", func(c *Config) { c.Parking.PeakStart = "22:00" }, "is before start"},
		{"negative rate", func(c *Config) { c.Parking.RateTruck = -1 }, "must not be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestClockUsesConfiguredZone(t *testing.T) {
	p := ParkingConfig{TimeZone: "Asia/Dhaka"}
	clock, err := p.Clock()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Dhaka", clock().Location().String())
}
