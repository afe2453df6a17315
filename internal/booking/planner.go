package booking

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/danpilch/metrobook/internal/fare"
	"github.com/danpilch/metrobook/internal/itinerary"
	"github.com/danpilch/metrobook/internal/network"
	"github.com/danpilch/metrobook/internal/routing"
	"github.com/danpilch/metrobook/internal/timetable"
)

// Presenter renders core results and collects choices. It holds no
// algorithmic state; everything it shows comes from a Planner or Session.
type Presenter interface {
	Route(path routing.Path)
	Offers(leg itinerary.Leg, offers []timetable.Offer)
	Summary(summary itinerary.Summary)
	Quote(quote fare.Quote)
	Warn(message string)
}

// TicketSender delivers a booked ticket somewhere outside the process.
type TicketSender interface {
	SendTicket(ticket Ticket) error
}

// Planner is the entry point for presenters: routing, sessions and fares.
type Planner struct {
	router   *routing.Router
	gen      *timetable.Generator
	fares    *fare.Calculator
	settings itinerary.Settings
	logger   *logrus.Logger
}

func NewPlanner(
	router *routing.Router,
	gen *timetable.Generator,
	fares *fare.Calculator,
	settings itinerary.Settings,
	logger *logrus.Logger,
) *Planner {
	return &Planner{
		router:   router,
		gen:      gen,
		fares:    fares,
		settings: settings,
		logger:   logger,
	}
}

func (p *Planner) Stations() []network.Station {
	return p.router.Graph().Stations()
}

func (p *Planner) Edges() []network.Edge {
	return p.router.Graph().Edges()
}

// ComputeRoute returns the shortest path; an empty path means no route.
func (p *Planner) ComputeRoute(origin, destination string) (routing.Path, error) {
	return p.router.ComputeRoute(origin, destination)
}

// QuoteFare prices km directly, outside of any session.
func (p *Planner) QuoteFare(km float64, counts fare.Counts, isRoundTrip bool, reference timetable.Clock) (fare.Quote, error) {
	return p.fares.Quote(km, counts, p.fares.IsPeak(reference), isRoundTrip)
}

// Begin routes origin to destination and generates offers for the first leg.
// When the first leg has no trains the session is still returned alongside
// ErrNoOffersForLeg so the caller can retry with another baseline.
func (p *Planner) Begin(origin, destination string, desired, now timetable.Clock) (*Session, error) {
	path, err := p.router.ComputeRoute(origin, destination)
	if err != nil {
		return nil, err
	}
	if path.Empty() {
		return nil, fmt.Errorf("%w: %s to %s", routing.ErrNoRouteFound, origin, destination)
	}

	b, err := itinerary.NewBuilder(p.router.Graph(), path, p.gen, p.settings, p.logger)
	if err != nil {
		return nil, err
	}

	s := &Session{builder: b, fares: p.fares, logger: p.logger}

	if _, err := b.Start(desired, now); err != nil {
		return s, err
	}

	p.logger.WithFields(logrus.Fields{
		"from":    origin,
		"to":      destination,
		"legs":    len(b.Legs()),
		"desired": desired.String(),
		"now":     now.String(),
	}).Debug("booking session started")

	return s, nil
}

// IsRecoverable reports whether err is an expected business outcome the
// caller should surface rather than treat as a bug.
func IsRecoverable(err error) bool {
	return errors.Is(err, routing.ErrNoRouteFound) ||
		errors.Is(err, routing.ErrSameStation) ||
		errors.Is(err, itinerary.ErrNoOffersForLeg) ||
		errors.Is(err, itinerary.ErrInvalidSelection) ||
		errors.Is(err, itinerary.ErrTightTransfer) ||
		errors.Is(err, itinerary.ErrIncomplete) ||
		errors.Is(err, fare.ErrInvalidPassengerCount) ||
		errors.Is(err, fare.ErrInvalidDistance)
}
