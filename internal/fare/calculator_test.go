package fare

import (
	"errors"
	"math"
	"testing"

	"github.com/danpilch/metrobook/internal/timetable"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestQuoteScenario(t *testing.T) {
	calc := NewCalculator(DefaultConfig())

	q, err := calc.Quote(19, Counts{Adult: 2, Student: 1}, false, false)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if q.Base != 38 {
		t.Errorf("Expected base 38, got %v", q.Base)
	}
	if q.Total != 95 {
		t.Errorf("Expected total 95, got %v", q.Total)
	}
	if len(q.Lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(q.Lines))
	}
	if q.Lines[0].Category != Adult || q.Lines[0].Subtotal != 76 {
		t.Errorf("Expected adult subtotal 76, got %+v", q.Lines[0])
	}
	if q.Lines[1].Category != Student || q.Lines[1].Subtotal != 19 {
		t.Errorf("Expected student subtotal 19, got %+v", q.Lines[1])
	}
}

func TestQuoteCategoriesAndModifiers(t *testing.T) {
	calc := NewCalculator(DefaultConfig())

	q, err := calc.Quote(10, Counts{Senior: 1, Child: 2}, true, true)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	// base 10 * 2.0 * 1.5 = 30; senior 18, children 2 * 9 = 18; 36 * 1.9.
	if !almostEqual(q.Base, 30) {
		t.Errorf("Expected base 30, got %v", q.Base)
	}
	if !almostEqual(q.CategorySum, 36) {
		t.Errorf("Expected category sum 36, got %v", q.CategorySum)
	}
	if !almostEqual(q.Total, 68.4) {
		t.Errorf("Expected total 68.4, got %v", q.Total)
	}
	if !q.Peak || !q.RoundTrip {
		t.Errorf("Expected peak and round trip flags, got %+v", q)
	}
}

func TestQuoteInvalidPassengerCount(t *testing.T) {
	calc := NewCalculator(DefaultConfig())

	tests := []struct {
		name   string
		counts Counts
	}{
		{"Zero", Counts{}},
		{"OverCap", Counts{Adult: 6, Student: 5}},
		{"Negative", Counts{Adult: 3, Child: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := calc.Quote(10, tt.counts, false, false); !errors.Is(err, ErrInvalidPassengerCount) {
				t.Errorf("Expected ErrInvalidPassengerCount, got %v", err)
			}
		})
	}

	if _, err := calc.Quote(10, Counts{Adult: 10}, false, false); err != nil {
		t.Errorf("Expected 10 passengers to be accepted, got %v", err)
	}
}

func TestQuoteInvalidDistance(t *testing.T) {
	calc := NewCalculator(DefaultConfig())

	for _, km := range []float64{-19, -0.5, math.NaN(), math.Inf(1)} {
		if _, err := calc.Quote(km, Counts{Adult: 1}, false, false); !errors.Is(err, ErrInvalidDistance) {
			t.Errorf("Quote(%v): expected ErrInvalidDistance, got %v", km, err)
		}
	}

	q, err := calc.Quote(0, Counts{Adult: 1}, false, false)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if q.Total != 0 {
		t.Errorf("Expected zero fare for zero km, got %v", q.Total)
	}
}

func TestQuoteLinearAndMonotonic(t *testing.T) {
	calc := NewCalculator(DefaultConfig())

	one, _ := calc.Quote(13, Counts{Senior: 1}, false, false)
	for n := 2; n <= 10; n++ {
		q, err := calc.Quote(13, Counts{Senior: n}, false, false)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if !almostEqual(q.Total, float64(n)*one.Total) {
			t.Errorf("Expected %d seniors to cost %v, got %v", n, float64(n)*one.Total, q.Total)
		}
	}

	counts := Counts{Adult: 1, Student: 1, Senior: 1, Child: 1}
	plain, _ := calc.Quote(13, counts, false, false)
	peak, _ := calc.Quote(13, counts, true, false)
	round, _ := calc.Quote(13, counts, false, true)
	both, _ := calc.Quote(13, counts, true, true)

	if !(peak.Total > plain.Total && round.Total > plain.Total) {
		t.Errorf("Expected peak and round trip to raise %v, got %v and %v", plain.Total, peak.Total, round.Total)
	}
	if !(both.Total > peak.Total && both.Total > round.Total) {
		t.Errorf("Expected combined modifiers to cost most, got %v", both.Total)
	}
}

func TestIsPeak(t *testing.T) {
	calc := NewCalculator(DefaultConfig())

	tests := []struct {
		at   timetable.Clock
		want bool
	}{
		{timetable.NewClock(6, 59), false},
		{timetable.NewClock(7, 0), true},
		{timetable.NewClock(8, 59), true},
		{timetable.NewClock(9, 0), false},
		{timetable.NewClock(12, 0), false},
		{timetable.NewClock(17, 30), true},
		{timetable.NewClock(19, 0), false},
	}

	for _, tt := range tests {
		if got := calc.IsPeak(tt.at); got != tt.want {
			t.Errorf("IsPeak(%s): expected %v, got %v", tt.at, tt.want, got)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("Expected default config to validate, got %v", err)
	}

	cfg := DefaultConfig()
	delete(cfg.Factors, Child)
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for missing child factor")
	}

	cfg = DefaultConfig()
	cfg.PeakWindows = []Window{{Start: timetable.NewClock(9, 0), End: timetable.NewClock(8, 0)}}
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for inverted peak window")
	}
}
