package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/danpilch/metrobook/internal/fare"
	"github.com/danpilch/metrobook/internal/itinerary"
	"github.com/danpilch/metrobook/internal/network"
	"github.com/danpilch/metrobook/internal/timetable"
)

type TimetableConfig struct {
	SpeedKmh            float64 `yaml:"speed_kmh"`
	DwellMinutes        int     `yaml:"dwell_minutes"`
	IntervalMinutes     int     `yaml:"interval_minutes"`
	FirstTrain          string  `yaml:"first_train"` // e.g., "06:00"
	LastTrain           string  `yaml:"last_train"`
	SearchWindowMinutes int     `yaml:"search_window_minutes"`
	MaxOffers           int     `yaml:"max_offers"`
	MinTransferMinutes  int     `yaml:"min_transfer_minutes"`
}

func (t TimetableConfig) Generator() (timetable.Config, error) {
	first, err := timetable.ParseClock(t.FirstTrain)
	if err != nil {
		return timetable.Config{}, fmt.Errorf("first_train: %w", err)
	}
	last, err := timetable.ParseClock(t.LastTrain)
	if err != nil {
		return timetable.Config{}, fmt.Errorf("last_train: %w", err)
	}

	cfg := timetable.Config{
		SpeedKmh:            t.SpeedKmh,
		DwellMinutes:        t.DwellMinutes,
		IntervalMinutes:     t.IntervalMinutes,
		FirstTrain:          first,
		LastTrain:           last,
		SearchWindowMinutes: t.SearchWindowMinutes,
		MaxOffers:           t.MaxOffers,
	}
	return cfg, cfg.Validate()
}

type PeakWindow struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

type FareConfig struct {
	RatePerKm           float64            `yaml:"rate_per_km"`
	PeakMultiplier      float64            `yaml:"peak_multiplier"`
	PeakWindows         []PeakWindow       `yaml:"peak_windows"`
	RoundTripMultiplier float64            `yaml:"round_trip_multiplier"`
	MaxPassengers       int                `yaml:"max_passengers"`
	Factors             map[string]float64 `yaml:"factors"` // keyed by adult, student, senior, child
}

func (f FareConfig) Calculator() (fare.Config, error) {
	cfg := fare.Config{
		RatePerKm:           f.RatePerKm,
		PeakMultiplier:      f.PeakMultiplier,
		RoundTripMultiplier: f.RoundTripMultiplier,
		MaxPassengers:       f.MaxPassengers,
		Factors:             make(map[fare.Category]float64, len(f.Factors)),
	}

	for i, w := range f.PeakWindows {
		start, err := timetable.ParseClock(w.Start)
		if err != nil {
			return fare.Config{}, fmt.Errorf("peak_windows[%d].start: %w", i, err)
		}
		end, err := timetable.ParseClock(w.End)
		if err != nil {
			return fare.Config{}, fmt.Errorf("peak_windows[%d].end: %w", i, err)
		}
		cfg.PeakWindows = append(cfg.PeakWindows, fare.Window{Start: start, End: end})
	}

	for name, factor := range f.Factors {
		cfg.Factors[fare.Category(strings.ToLower(name))] = factor
	}

	return cfg, cfg.Validate()
}

type Config struct {
	Stations       []string        `yaml:"stations"`
	Edges          []network.Edge  `yaml:"edges"`
	Timetable      TimetableConfig `yaml:"timetable"`
	Fares          FareConfig      `yaml:"fares"`
	TransferPolicy string          `yaml:"transfer_policy"` // "strict" or "warn-only"
}

// Default is the six station network the system ships with.
func Default() *Config {
	return &Config{
		Stations: []string{"A", "B", "C", "D", "E", "F"},
		Edges: []network.Edge{
			{From: "A", To: "B", Km: 10},
			{From: "A", To: "C", Km: 22},
			{From: "A", To: "E", Km: 8},
			{From: "B", To: "C", Km: 15},
			{From: "B", To: "D", Km: 9},
			{From: "B", To: "F", Km: 7},
			{From: "C", To: "D", Km: 9},
			{From: "D", To: "E", Km: 5},
			{From: "D", To: "F", Km: 12},
			{From: "E", To: "F", Km: 16},
		},
		Timetable: TimetableConfig{
			SpeedKmh:            30,
			DwellMinutes:        10,
			IntervalMinutes:     20,
			FirstTrain:          "06:00",
			LastTrain:           "20:00",
			SearchWindowMinutes: 60,
			MaxOffers:           6,
			MinTransferMinutes:  5,
		},
		Fares: FareConfig{
			RatePerKm:      2.0,
			PeakMultiplier: 1.5,
			PeakWindows: []PeakWindow{
				{Start: "07:00", End: "09:00"},
				{Start: "17:00", End: "19:00"},
			},
			RoundTripMultiplier: 1.9,
			MaxPassengers:       10,
			Factors: map[string]float64{
				"adult":   1.0,
				"student": 0.5,
				"senior":  0.6,
				"child":   0.3,
			},
		},
		TransferPolicy: string(itinerary.PolicyStrict),
	}
}

// Load reads a YAML file over the defaults. An empty path returns the
// defaults unchanged. Setting stations drops the default edges, so a custom
// network lists its own.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var sections map[string]yaml.Node
	if err := yaml.Unmarshal(data, &sections); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	// A custom station list starts from an empty edge list.
	if _, ok := sections["stations"]; ok {
		cfg.Edges = nil
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) Network() (*network.Graph, error) {
	return network.NewGraph(c.Stations, c.Edges)
}

func (c *Config) Itinerary() (itinerary.Settings, error) {
	policy, err := itinerary.ParseTransferPolicy(c.TransferPolicy)
	if err != nil {
		return itinerary.Settings{}, err
	}
	if c.Timetable.MinTransferMinutes < 0 {
		return itinerary.Settings{}, fmt.Errorf("min_transfer_minutes must not be negative, got %d", c.Timetable.MinTransferMinutes)
	}
	return itinerary.Settings{
		MinTransferMinutes: c.Timetable.MinTransferMinutes,
		Policy:             policy,
	}, nil
}

func (c *Config) Validate() error {
	if _, err := c.Network(); err != nil {
		return fmt.Errorf("network: %w", err)
	}
	if _, err := c.Timetable.Generator(); err != nil {
		return fmt.Errorf("timetable: %w", err)
	}
	if _, err := c.Fares.Calculator(); err != nil {
		return fmt.Errorf("fares: %w", err)
	}
	if _, err := c.Itinerary(); err != nil {
		return fmt.Errorf("transfer_policy: %w", err)
	}
	return nil
}
