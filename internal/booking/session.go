package booking

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/danpilch/metrobook/internal/fare"
	"github.com/danpilch/metrobook/internal/itinerary"
	"github.com/danpilch/metrobook/internal/routing"
	"github.com/danpilch/metrobook/internal/timetable"
)

// Ticket is a confirmed, priced itinerary.
type Ticket struct {
	Summary  itinerary.Summary `json:"summary" groups:"basic"`
	Fare     fare.Quote        `json:"fare" groups:"basic"`
	Warnings []string          `json:"warnings,omitempty" groups:"basic"`
}

// Session is one interactive booking over a single route.
type Session struct {
	builder *itinerary.Builder
	fares   *fare.Calculator
	logger  *logrus.Logger
}

func (s *Session) Path() routing.Path {
	return s.builder.Path()
}

func (s *Session) Legs() []itinerary.Leg {
	return s.builder.Legs()
}

func (s *Session) Offers(leg int) []timetable.Offer {
	return s.builder.Offers(leg)
}

func (s *Session) GenerateLegOffers(leg int, baseline timetable.Clock) ([]timetable.Offer, error) {
	return s.builder.GenerateLegOffers(leg, baseline)
}

func (s *Session) SelectOffer(leg int, offer timetable.Offer) (itinerary.State, error) {
	return s.builder.SelectOffer(leg, offer)
}

// SelectIndex selects the n-th offer currently listed for leg.
func (s *Session) SelectIndex(leg, n int) (itinerary.State, error) {
	offers := s.builder.Offers(leg)
	if n < 0 || n >= len(offers) {
		return s.builder.State(), fmt.Errorf("%w: option %d of %d on leg %d",
			itinerary.ErrInvalidSelection, n+1, len(offers), leg)
	}
	return s.builder.SelectOffer(leg, offers[n])
}

func (s *Session) SelectEarliest() (itinerary.State, error) {
	return s.builder.SelectEarliest()
}

func (s *Session) IsSelectionComplete() bool {
	return s.builder.IsComplete()
}

func (s *Session) TransferWarnings() []int {
	return s.builder.TransferWarnings()
}

func (s *Session) Confirm() (itinerary.Itinerary, error) {
	return s.builder.Confirm()
}

func (s *Session) RenderSummary() itinerary.Summary {
	return s.builder.Summary()
}

// QuoteFare prices the completed selection. Peak pricing is decided by
// reference, normally the first departure.
func (s *Session) QuoteFare(counts fare.Counts, isRoundTrip bool, reference timetable.Clock) (fare.Quote, error) {
	if !s.builder.IsComplete() {
		return fare.Quote{}, fmt.Errorf("%w: leg %d", itinerary.ErrIncomplete, s.builder.State().Next)
	}
	return s.fares.Quote(s.builder.Path().Km, counts, s.fares.IsPeak(reference), isRoundTrip)
}

// Book confirms the selection under the transfer policy and prices it from
// the first departure.
func (s *Session) Book(counts fare.Counts, isRoundTrip bool) (Ticket, error) {
	it, err := s.builder.Confirm()
	if err != nil {
		return Ticket{}, err
	}

	quote, err := s.QuoteFare(counts, isRoundTrip, it.Departure())
	if err != nil {
		return Ticket{}, err
	}

	ticket := Ticket{Summary: s.builder.Summary(), Fare: quote}
	for _, i := range it.Warnings {
		wait, _ := s.builder.TransferMinutes(i)
		ticket.Warnings = append(ticket.Warnings,
			fmt.Sprintf("tight transfer at %s: %d minutes", it.Legs[i].From, wait))
	}

	s.logger.WithFields(logrus.Fields{
		"from":       ticket.Summary.From,
		"to":         ticket.Summary.To,
		"departure":  it.Departure().String(),
		"arrival":    it.Arrival().String(),
		"passengers": counts.Total(),
		"total":      quote.Total,
	}).Info("itinerary booked")

	return ticket, nil
}

// Show pushes the session's current view to p.
func (s *Session) Show(p Presenter) {
	p.Route(s.Path())
	for _, leg := range s.Legs() {
		if offers := s.Offers(leg.Index); len(offers) > 0 {
			p.Offers(leg, offers)
		}
	}
	p.Summary(s.RenderSummary())
	for _, i := range s.TransferWarnings() {
		wait, _ := s.builder.TransferMinutes(i)
		p.Warn(fmt.Sprintf("tight transfer at %s: %d minutes", s.Legs()[i].From, wait))
	}
}
