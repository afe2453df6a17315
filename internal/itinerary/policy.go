package itinerary

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/danpilch/metrobook/internal/timetable"
)

// TransferPolicy decides whether a tight transfer blocks confirmation.
type TransferPolicy string

const (
	PolicyStrict   TransferPolicy = "strict"
	PolicyWarnOnly TransferPolicy = "warn-only"
)

func ParseTransferPolicy(s string) (TransferPolicy, error) {
	switch p := TransferPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case PolicyStrict, PolicyWarnOnly:
		return p, nil
	case "":
		return PolicyStrict, nil
	default:
		return "", fmt.Errorf("unknown transfer policy %q (want %q or %q)", s, PolicyStrict, PolicyWarnOnly)
	}
}

// Itinerary is a confirmed selection of one train per leg.
type Itinerary struct {
	Legs     []Leg
	Trains   []timetable.Offer
	Warnings []int
	Km       float64
}

// Departure is the first train's departure.
func (it Itinerary) Departure() timetable.Clock {
	return it.Trains[0].Departure
}

// Arrival is the last train's arrival.
func (it Itinerary) Arrival() timetable.Clock {
	return it.Trains[len(it.Trains)-1].Arrival
}

// Confirm validates the selection under the configured transfer policy.
func (b *Builder) Confirm() (Itinerary, error) {
	if !b.IsComplete() {
		return Itinerary{}, fmt.Errorf("%w: leg %d", ErrIncomplete, b.State().Next)
	}

	for i := 1; i < len(b.legs); i++ {
		if wait, _ := b.TransferMinutes(i); wait < 0 {
			return Itinerary{}, fmt.Errorf("%w at %s", ErrMissedConnection, b.legs[i].From)
		}
	}

	warnings := b.TransferWarnings()
	if len(warnings) > 0 {
		fields := logrus.Fields{
			"policy":    b.settings.Policy,
			"transfers": warnings,
		}
		if b.settings.Policy == PolicyStrict {
			b.logger.WithFields(fields).Info("confirmation blocked by tight transfer")
			return Itinerary{}, fmt.Errorf("%w at %s", ErrTightTransfer, b.legs[warnings[0]].From)
		}
		b.logger.WithFields(fields).Warn("confirming with tight transfer")
	}

	it := Itinerary{
		Legs:     b.Legs(),
		Trains:   make([]timetable.Offer, len(b.legs)),
		Warnings: warnings,
	}
	for i, sel := range b.selected {
		it.Trains[i] = *sel
		it.Km += b.legs[i].Km
	}

	return it, nil
}
