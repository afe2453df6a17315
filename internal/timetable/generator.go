package timetable

import (
	"fmt"
	"math"
)

// Config holds the fixed-interval timetable model.
type Config struct {
	SpeedKmh            float64
	DwellMinutes        int
	IntervalMinutes     int
	FirstTrain          Clock
	LastTrain           Clock
	SearchWindowMinutes int
	MaxOffers           int
}

func DefaultConfig() Config {
	return Config{
		SpeedKmh:            30,
		DwellMinutes:        10,
		IntervalMinutes:     20,
		FirstTrain:          NewClock(6, 0),
		LastTrain:           NewClock(20, 0),
		SearchWindowMinutes: 60,
		MaxOffers:           6,
	}
}

func (c Config) Validate() error {
	if c.SpeedKmh <= 0 {
		return fmt.Errorf("speed must be positive, got %v", c.SpeedKmh)
	}
	if c.DwellMinutes < 0 {
		return fmt.Errorf("dwell time must not be negative, got %d", c.DwellMinutes)
	}
	if c.IntervalMinutes <= 0 {
		return fmt.Errorf("train interval must be positive, got %d", c.IntervalMinutes)
	}
	if 60%c.IntervalMinutes != 0 {
		return fmt.Errorf("train interval must divide the hour, got %d", c.IntervalMinutes)
	}
	if c.SearchWindowMinutes < 0 {
		return fmt.Errorf("search window must not be negative, got %d", c.SearchWindowMinutes)
	}
	if c.MaxOffers <= 0 {
		return fmt.Errorf("max offers must be positive, got %d", c.MaxOffers)
	}
	if c.FirstTrain >= c.LastTrain {
		return fmt.Errorf("first train %s must be before last train %s", c.FirstTrain, c.LastTrain)
	}
	return nil
}

// Offer is one departure/arrival pair for a leg.
type Offer struct {
	Departure Clock `json:"departure" groups:"basic"`
	Arrival   Clock `json:"arrival" groups:"basic"`
}

func (o Offer) String() string {
	return o.Departure.String() + " - " + o.Arrival.String()
}

// Generator produces train offers under a Config.
type Generator struct {
	cfg Config
}

func NewGenerator(cfg Config) *Generator {
	return &Generator{cfg: cfg}
}

func (g *Generator) Config() Config {
	return g.cfg
}

// TravelMinutes converts a leg distance into whole minutes of running time.
func (g *Generator) TravelMinutes(km float64) int {
	return int(math.Ceil(km * 60 / g.cfg.SpeedKmh))
}

// Offers lists up to MaxOffers departures, earliest first, that leave no
// earlier than baseline or now and arrive by the last train.
func (g *Generator) Offers(baseline Clock, travelMinutes int, now Clock) []Offer {
	start := max(baseline, now, g.cfg.FirstTrain)
	if start > g.cfg.LastTrain {
		return nil
	}

	end := start.Add(g.cfg.SearchWindowMinutes)
	var offers []Offer

	for dep := g.nextSlot(start); dep <= end && len(offers) < g.cfg.MaxOffers; dep = dep.Add(g.cfg.IntervalMinutes) {
		if dep > g.cfg.LastTrain {
			break
		}
		arr := dep.Add(travelMinutes + g.cfg.DwellMinutes)
		if arr > g.cfg.LastTrain {
			break
		}
		offers = append(offers, Offer{Departure: dep, Arrival: arr})
	}

	return offers
}

// nextSlot rounds up to the next interval boundary within the hour; landing
// on minute 60 carries into the following hour. Validate guarantees the
// interval divides 60, so every hour repeats the same minutes.
func (g *Generator) nextSlot(c Clock) Clock {
	iv := g.cfg.IntervalMinutes
	rounded := (c.Minute() + iv - 1) / iv * iv
	return NewClock(c.Hour(), 0).Add(rounded)
}
