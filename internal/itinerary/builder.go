package itinerary

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"

	"github.com/danpilch/metrobook/internal/network"
	"github.com/danpilch/metrobook/internal/routing"
	"github.com/danpilch/metrobook/internal/timetable"
)

var (
	ErrNoOffersForLeg   = errors.New("no trains for this segment")
	ErrInvalidSelection = errors.New("offer is not available for this leg")
	ErrUnknownLeg       = errors.New("leg index out of range")
	ErrIncomplete       = errors.New("not every leg has a selected train")
	ErrTightTransfer    = errors.New("transfer shorter than the minimum transfer time")
	ErrMissedConnection = errors.New("train departs before the previous one arrives")
)

// Leg is one direct segment of a route.
type Leg struct {
	Index         int
	From          network.Station
	To            network.Station
	Km            float64
	TravelMinutes int
}

func (l Leg) String() string {
	return fmt.Sprintf("%s -> %s", l.From, l.To)
}

// Settings tune how selections are chained and confirmed.
type Settings struct {
	MinTransferMinutes int
	Policy             TransferPolicy
}

func DefaultSettings() Settings {
	return Settings{
		MinTransferMinutes: 5,
		Policy:             PolicyStrict,
	}
}

// State is a snapshot of which legs currently carry a selection.
type State struct {
	Selected []bool
	// Next is the first leg without a selection, or len(Selected) when complete.
	Next     int
	Complete bool
}

// Builder assembles an itinerary one leg at a time. A Builder belongs to a
// single session and is not safe for concurrent use.
type Builder struct {
	gen      *timetable.Generator
	settings Settings
	logger   *logrus.Logger

	path     routing.Path
	legs     []Leg
	offers   [][]timetable.Offer
	selected []*timetable.Offer
	now      timetable.Clock
}

func NewBuilder(
	graph *network.Graph,
	path routing.Path,
	gen *timetable.Generator,
	settings Settings,
	logger *logrus.Logger,
) (*Builder, error) {
	if path.Empty() {
		return nil, routing.ErrNoRouteFound
	}

	legs := make([]Leg, 0, len(path.Stations)-1)
	for i := 1; i < len(path.Stations); i++ {
		from, to := path.Stations[i-1], path.Stations[i]
		km, ok := graph.Distance(from, to)
		if !ok {
			return nil, fmt.Errorf("stations %s and %s are not connected", from, to)
		}
		legs = append(legs, Leg{
			Index:         i - 1,
			From:          from,
			To:            to,
			Km:            km,
			TravelMinutes: gen.TravelMinutes(km),
		})
	}

	return &Builder{
		gen:      gen,
		settings: settings,
		logger:   logger,
		path:     path,
		legs:     legs,
		offers:   make([][]timetable.Offer, len(legs)),
		selected: make([]*timetable.Offer, len(legs)),
	}, nil
}

func (b *Builder) Path() routing.Path {
	return b.path
}

func (b *Builder) Legs() []Leg {
	out := make([]Leg, len(b.legs))
	copy(out, b.legs)
	return out
}

func (b *Builder) Settings() Settings {
	return b.settings
}

// Start records the current time and generates offers for the first leg
// from the desired departure time.
func (b *Builder) Start(desired, now timetable.Clock) (State, error) {
	b.now = now
	if _, err := b.GenerateLegOffers(0, desired); err != nil {
		return b.State(), err
	}
	return b.State(), nil
}

// GenerateLegOffers replaces the offers of leg i using baseline. Selections on
// leg i and later are discarded since they may no longer be on offer.
func (b *Builder) GenerateLegOffers(i int, baseline timetable.Clock) ([]timetable.Offer, error) {
	if i < 0 || i >= len(b.legs) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownLeg, i)
	}

	leg := b.legs[i]
	offers := b.gen.Offers(baseline, leg.TravelMinutes, b.now)

	b.offers[i] = offers
	for j := i; j < len(b.legs); j++ {
		b.selected[j] = nil
		if j > i {
			b.offers[j] = nil
		}
	}

	b.logger.WithFields(logrus.Fields{
		"leg":      i,
		"segment":  leg.String(),
		"baseline": baseline.String(),
		"offers":   len(offers),
	}).Debug("generated leg offers")

	if len(offers) == 0 {
		return nil, fmt.Errorf("%w: %s after %s", ErrNoOffersForLeg, leg, baseline)
	}

	return b.Offers(i), nil
}

// Offers returns the currently generated offers for leg i.
func (b *Builder) Offers(i int) []timetable.Offer {
	if i < 0 || i >= len(b.offers) {
		return nil
	}
	return slices.Clone(b.offers[i])
}

// SelectOffer chooses offer for leg i, drops every later selection and
// regenerates the following leg from the chosen arrival plus the minimum
// transfer time.
func (b *Builder) SelectOffer(i int, offer timetable.Offer) (State, error) {
	if i < 0 || i >= len(b.legs) {
		return b.State(), fmt.Errorf("%w: %d", ErrUnknownLeg, i)
	}
	if !slices.Contains(b.offers[i], offer) {
		return b.State(), fmt.Errorf("%w: %s on leg %d", ErrInvalidSelection, offer, i)
	}

	chosen := offer
	b.selected[i] = &chosen
	for j := i + 1; j < len(b.legs); j++ {
		b.selected[j] = nil
		if j > i+1 {
			b.offers[j] = nil
		}
	}

	b.logger.WithFields(logrus.Fields{
		"leg":       i,
		"segment":   b.legs[i].String(),
		"departure": offer.Departure.String(),
		"arrival":   offer.Arrival.String(),
	}).Debug("offer selected")

	if i < len(b.legs)-1 {
		baseline := offer.Arrival.Add(b.settings.MinTransferMinutes)
		if _, err := b.GenerateLegOffers(i+1, baseline); err != nil {
			return b.State(), err
		}
	}

	return b.State(), nil
}

// SelectEarliest fills every leg from the first unselected one onwards with
// its earliest offer.
func (b *Builder) SelectEarliest() (State, error) {
	for i := b.State().Next; i < len(b.legs); i++ {
		if len(b.offers[i]) == 0 {
			return b.State(), fmt.Errorf("%w: %s", ErrNoOffersForLeg, b.legs[i])
		}
		if _, err := b.SelectOffer(i, b.offers[i][0]); err != nil {
			return b.State(), err
		}
	}
	return b.State(), nil
}

// Selection returns the chosen offer for leg i.
func (b *Builder) Selection(i int) (timetable.Offer, bool) {
	if i < 0 || i >= len(b.selected) || b.selected[i] == nil {
		return timetable.Offer{}, false
	}
	return *b.selected[i], true
}

func (b *Builder) State() State {
	s := State{
		Selected: make([]bool, len(b.legs)),
		Next:     len(b.legs),
	}
	for i, sel := range b.selected {
		s.Selected[i] = sel != nil
		if sel == nil && s.Next == len(b.legs) {
			s.Next = i
		}
	}
	s.Complete = s.Next == len(b.legs)
	return s
}

func (b *Builder) IsComplete() bool {
	return b.State().Complete
}

// TransferMinutes is the wait between leg i-1 arriving and leg i departing.
func (b *Builder) TransferMinutes(i int) (int, bool) {
	if i < 1 || i >= len(b.selected) || b.selected[i] == nil || b.selected[i-1] == nil {
		return 0, false
	}
	return b.selected[i].Departure.Sub(b.selected[i-1].Arrival), true
}

// TransferWarnings lists the legs whose incoming transfer is tight.
func (b *Builder) TransferWarnings() []int {
	var tight []int
	for i := 1; i < len(b.legs); i++ {
		if wait, ok := b.TransferMinutes(i); ok && wait < b.settings.MinTransferMinutes {
			tight = append(tight, i)
		}
	}
	return tight
}
