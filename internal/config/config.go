package config

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/kelseyhightower/envconfig"

	"urban-parking/internal/parking"
)

type Config struct {
	Server  ServerConfig
	Parking ParkingConfig
	OTel    OTelConfig
}

type ServerConfig struct {
	Port        string `envconfig:"PORT" default:"8080"`
	Mode        string `envconfig:"MODE" default:"cli"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
}

type ParkingConfig struct {
	Capacity  int     `envconfig:"PARKING_CAPACITY" default:"300"`
	TimeZone  string  `envconfig:"PARKING_TIMEZONE" default:"UTC"`
	PeakStart string  `envconfig:"PARKING_PEAK_START" default:"17:00"`
	PeakEnd   string  `envconfig:"PARKING_PEAK_END" default:"21:00"`
	RateBike  float64 `envconfig:"PARKING_RATE_BIKE" default:"20"`
	RateCar   float64 `envconfig:"PARKING_RATE_CAR" default:"50"`
	RateTruck float64 `envconfig:"PARKING_RATE_TRUCK" default:"80"`
}

type OTelConfig struct {
	ServiceName  string `envconfig:"OTEL_SERVICE_NAME" default:"parking-lot-service"`
	OTLPEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT" default:"http://localhost:4318"`
}

var modes = map[string]bool{"cli": true, "server": true, "both": true, "demo": true}

func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, errors.Wrap(err, "failed to process env config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if !modes[c.Server.Mode] {
		return errors.Newf("invalid mode %q: must be cli, server, both or demo", c.Server.Mode)
	}
	if c.Parking.Capacity <= 0 {
		return errors.Newf("parking capacity must be greater than 0, got %d", c.Parking.Capacity)
	}
	if _, err := c.Parking.Location(); err != nil {
		return err
	}
	window, err := c.Parking.PeakWindow()
	if err != nil {
		return err
	}
	if window.End < window.Start {
		return errors.Newf("peak window end %s is before start %s", c.Parking.PeakEnd, c.Parking.PeakStart)
	}
	rates := c.Parking.Rates()
	for _, kind := range parking.Kinds {
		if rate := rates[kind]; rate < 0 {
			return errors.Newf("rate for %s must not be negative, got %v", kind, rate)
		}
	}
	return nil
}

func (p ParkingConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(p.TimeZone)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid time zone %q", p.TimeZone)
	}
	return loc, nil
}

func (p ParkingConfig) PeakWindow() (parking.PeakWindow, error) {
	start, err := parseTimeOfDay(p.PeakStart)
	if err != nil {
		return parking.PeakWindow{}, err
	}
	end, err := parseTimeOfDay(p.PeakEnd)
	if err != nil {
		return parking.PeakWindow{}, err
	}
	return parking.PeakWindow{Start: start, End: end}, nil
}

func (p ParkingConfig) Rates() parking.Rates {
	return parking.Rates{
		parking.KindBike:  p.RateBike,
		parking.KindCar:   p.RateCar,
		parking.KindTruck: p.RateTruck,
	}
}

// PricingEngine builds the engine described by the parking settings.
func (p ParkingConfig) PricingEngine() (*parking.PricingEngine, error) {
	loc, err := p.Location()
	if err != nil {
		return nil, err
	}
	window, err := p.PeakWindow()
	if err != nil {
		return nil, err
	}
	return parking.NewPricingEngine(p.Rates(), window, loc), nil
}

// Clock returns wall-clock time in the configured zone.
func (p ParkingConfig) Clock() (parking.Clock, error) {
	loc, err := p.Location()
	if err != nil {
		return nil, err
	}
	return func() time.Time { return time.Now().In(loc) }, nil
}

func parseTimeOfDay(s string) (time.Duration, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid time of day %q (want HH:MM)", s)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}
