package fare

import (
	"errors"
	"fmt"
	"math"

	"github.com/danpilch/metrobook/internal/timetable"
)

var (
	ErrInvalidPassengerCount = errors.New("invalid passenger count")
	ErrInvalidDistance       = errors.New("invalid distance")
)

type Category string

const (
	Adult   Category = "adult"
	Student Category = "student"
	Senior  Category = "senior"
	Child   Category = "child"
)

// Categories is the fixed pricing order of passenger categories.
var Categories = []Category{Adult, Student, Senior, Child}

// Counts is the number of passengers per category.
type Counts struct {
	Adult   int
	Student int
	Senior  int
	Child   int
}

func (c Counts) Of(cat Category) int {
	switch cat {
	case Adult:
		return c.Adult
	case Student:
		return c.Student
	case Senior:
		return c.Senior
	case Child:
		return c.Child
	}
	return 0
}

func (c Counts) Total() int {
	return c.Adult + c.Student + c.Senior + c.Child
}

// Window is a half-open time-of-day range [Start, End).
type Window struct {
	Start timetable.Clock
	End   timetable.Clock
}

func (w Window) Contains(c timetable.Clock) bool {
	return c >= w.Start && c < w.End
}

type Config struct {
	RatePerKm           float64
	PeakMultiplier      float64
	PeakWindows         []Window
	RoundTripMultiplier float64
	MaxPassengers       int
	Factors             map[Category]float64
}

func DefaultConfig() Config {
	return Config{
		RatePerKm:      2.0,
		PeakMultiplier: 1.5,
		PeakWindows: []Window{
			{Start: timetable.NewClock(7, 0), End: timetable.NewClock(9, 0)},
			{Start: timetable.NewClock(17, 0), End: timetable.NewClock(19, 0)},
		},
		RoundTripMultiplier: 1.9,
		MaxPassengers:       10,
		Factors: map[Category]float64{
			Adult:   1.0,
			Student: 0.5,
			Senior:  0.6,
			Child:   0.3,
		},
	}
}

func (c Config) Validate() error {
	if c.RatePerKm < 0 {
		return fmt.Errorf("rate per km must not be negative, got %v", c.RatePerKm)
	}
	if c.PeakMultiplier < 1 {
		return fmt.Errorf("peak multiplier must be at least 1, got %v", c.PeakMultiplier)
	}
	if c.RoundTripMultiplier < 1 {
		return fmt.Errorf("round trip multiplier must be at least 1, got %v", c.RoundTripMultiplier)
	}
	if c.MaxPassengers < 1 {
		return fmt.Errorf("max passengers must be at least 1, got %d", c.MaxPassengers)
	}
	for _, w := range c.PeakWindows {
		if w.Start >= w.End {
			return fmt.Errorf("peak window %s-%s is empty", w.Start, w.End)
		}
	}
	for _, cat := range Categories {
		f, ok := c.Factors[cat]
		if !ok {
			return fmt.Errorf("missing fare factor for %s", cat)
		}
		if f < 0 {
			return fmt.Errorf("fare factor for %s must not be negative, got %v", cat, f)
		}
	}
	return nil
}

// Line is the priced subtotal of one passenger category.
type Line struct {
	Category Category `json:"category" groups:"basic"`
	Count    int      `json:"count" groups:"basic"`
	Factor   float64  `json:"factor" groups:"detailed"`
	Subtotal float64  `json:"subtotal" groups:"basic"`
}

type Quote struct {
	Km          float64 `json:"km" groups:"basic"`
	Base        float64 `json:"base" groups:"basic"`
	Peak        bool    `json:"peak" groups:"basic"`
	RoundTrip   bool    `json:"roundTrip" groups:"basic"`
	Lines       []Line  `json:"lines" groups:"basic"`
	CategorySum float64 `json:"categorySum" groups:"detailed"`
	Total       float64 `json:"total" groups:"basic"`
}

type Calculator struct {
	cfg Config
}

func NewCalculator(cfg Config) *Calculator {
	return &Calculator{cfg: cfg}
}

// IsPeak reports whether c falls inside any configured peak window.
func (calc *Calculator) IsPeak(c timetable.Clock) bool {
	for _, w := range calc.cfg.PeakWindows {
		if w.Contains(c) {
			return true
		}
	}
	return false
}

// Quote prices a journey of km kilometres. Distance and passenger counts
// are checked before any arithmetic.
func (calc *Calculator) Quote(km float64, counts Counts, isPeak, isRoundTrip bool) (Quote, error) {
	if km < 0 || math.IsNaN(km) || math.IsInf(km, 0) {
		return Quote{}, fmt.Errorf("%w: %v km", ErrInvalidDistance, km)
	}
	for _, cat := range Categories {
		if n := counts.Of(cat); n < 0 {
			return Quote{}, fmt.Errorf("%w: %d %s passengers", ErrInvalidPassengerCount, n, cat)
		}
	}
	if total := counts.Total(); total < 1 || total > calc.cfg.MaxPassengers {
		return Quote{}, fmt.Errorf("%w: %d passengers, must be between 1 and %d",
			ErrInvalidPassengerCount, total, calc.cfg.MaxPassengers)
	}

	base := km * calc.cfg.RatePerKm
	if isPeak {
		base *= calc.cfg.PeakMultiplier
	}

	q := Quote{
		Km:        km,
		Base:      base,
		Peak:      isPeak,
		RoundTrip: isRoundTrip,
	}

	for _, cat := range Categories {
		n := counts.Of(cat)
		if n == 0 {
			continue
		}
		factor := calc.cfg.Factors[cat]
		line := Line{
			Category: cat,
			Count:    n,
			Factor:   factor,
			Subtotal: float64(n) * base * factor,
		}
		q.Lines = append(q.Lines, line)
		q.CategorySum += line.Subtotal
	}

	q.Total = q.CategorySum
	if isRoundTrip {
		q.Total *= calc.cfg.RoundTripMultiplier
	}

	return q, nil
}
