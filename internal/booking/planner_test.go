package booking

import (
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/danpilch/metrobook/internal/config"
	"github.com/danpilch/metrobook/internal/fare"
	"github.com/danpilch/metrobook/internal/itinerary"
	"github.com/danpilch/metrobook/internal/network"
	"github.com/danpilch/metrobook/internal/routing"
	"github.com/danpilch/metrobook/internal/timetable"
)

func newPlanner(t *testing.T, cfg *config.Config) *Planner {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	g, err := cfg.Network()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	tc, err := cfg.Timetable.Generator()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	fc, err := cfg.Fares.Calculator()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	settings, err := cfg.Itinerary()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	return NewPlanner(
		routing.NewRouter(g, logger),
		timetable.NewGenerator(tc),
		fare.NewCalculator(fc),
		settings,
		logger,
	)
}

type recordingPresenter struct {
	routes    int
	offers    map[int]int
	summaries []itinerary.Summary
	quotes    []fare.Quote
	warnings  []string
}

func (r *recordingPresenter) Route(routing.Path) { r.routes++ }

func (r *recordingPresenter) Offers(leg itinerary.Leg, offers []timetable.Offer) {
	if r.offers == nil {
		r.offers = make(map[int]int)
	}
	r.offers[leg.Index] = len(offers)
}

func (r *recordingPresenter) Summary(s itinerary.Summary) { r.summaries = append(r.summaries, s) }
func (r *recordingPresenter) Quote(q fare.Quote)          { r.quotes = append(r.quotes, q) }
func (r *recordingPresenter) Warn(msg string)             { r.warnings = append(r.warnings, msg) }

func TestPlannerBook(t *testing.T) {
	p := newPlanner(t, config.Default())

	s, err := p.Begin("A", "D", timetable.NewClock(9, 0), timetable.NewClock(6, 0))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got := len(s.Legs()); got != 2 {
		t.Fatalf("Expected 2 legs via E, got %d", got)
	}

	if _, err := s.QuoteFare(fare.Counts{Adult: 1}, false, timetable.NewClock(9, 0)); !errors.Is(err, itinerary.ErrIncomplete) {
		t.Errorf("Expected ErrIncomplete before selection, got %v", err)
	}

	if _, err := s.SelectEarliest(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !s.IsSelectionComplete() {
		t.Fatal("Expected complete selection")
	}

	ticket, err := s.Book(fare.Counts{Adult: 2, Student: 1}, false)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if ticket.Fare.Peak {
		t.Error("Expected 09:00 departure to be off-peak")
	}
	if ticket.Fare.Total != 65 {
		t.Errorf("Expected total 65, got %v", ticket.Fare.Total)
	}
	if ticket.Summary.TotalMinutes != 60 {
		t.Errorf("Expected 60 minute journey, got %d", ticket.Summary.TotalMinutes)
	}
	if len(ticket.Warnings) != 0 {
		t.Errorf("Expected no warnings, got %v", ticket.Warnings)
	}
}

func TestPlannerPeakFare(t *testing.T) {
	p := newPlanner(t, config.Default())

	s, err := p.Begin("A", "D", timetable.NewClock(8, 0), 0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	s.SelectEarliest()

	ticket, err := s.Book(fare.Counts{Adult: 2}, false)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !ticket.Fare.Peak || ticket.Fare.Total != 78 {
		t.Errorf("Expected peak total 78, got %+v", ticket.Fare)
	}
}

func TestPlannerErrors(t *testing.T) {
	cfg := config.Default()
	cfg.Stations = append(cfg.Stations, "Z")
	p := newPlanner(t, cfg)

	t.Run("SameStation", func(t *testing.T) {
		_, err := p.Begin("A", "A", timetable.NewClock(9, 0), 0)
		if !errors.Is(err, routing.ErrSameStation) {
			t.Errorf("Expected ErrSameStation, got %v", err)
		}
	})

	t.Run("NoRoute", func(t *testing.T) {
		path, err := p.ComputeRoute("A", "Z")
		if err != nil || !path.Empty() {
			t.Errorf("Expected empty path without error, got %v (%v)", path, err)
		}
		_, err = p.Begin("A", "Z", timetable.NewClock(9, 0), 0)
		if !errors.Is(err, routing.ErrNoRouteFound) || !IsRecoverable(err) {
			t.Errorf("Expected recoverable ErrNoRouteFound, got %v", err)
		}
	})

	t.Run("UnknownStation", func(t *testing.T) {
		_, err := p.Begin("A", "Q", timetable.NewClock(9, 0), 0)
		if !errors.Is(err, network.ErrUnknownStation) || IsRecoverable(err) {
			t.Errorf("Expected unrecoverable ErrUnknownStation, got %v", err)
		}
	})

	t.Run("NoOffers", func(t *testing.T) {
		s, err := p.Begin("A", "D", timetable.NewClock(19, 50), 0)
		if !errors.Is(err, itinerary.ErrNoOffersForLeg) {
			t.Fatalf("Expected ErrNoOffersForLeg, got %v", err)
		}
		if s == nil {
			t.Fatal("Expected session to be returned for a retry")
		}
		if _, err := s.GenerateLegOffers(0, timetable.NewClock(18, 0)); err != nil {
			t.Errorf("Expected retry to find offers, got %v", err)
		}
	})

	t.Run("SelectIndexOutOfRange", func(t *testing.T) {
		s, err := p.Begin("A", "D", timetable.NewClock(9, 0), 0)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if _, err := s.SelectIndex(0, 42); !errors.Is(err, itinerary.ErrInvalidSelection) {
			t.Errorf("Expected ErrInvalidSelection, got %v", err)
		}
	})

	t.Run("InvalidPassengerCount", func(t *testing.T) {
		_, err := p.QuoteFare(19, fare.Counts{}, false, timetable.NewClock(12, 0))
		if !errors.Is(err, fare.ErrInvalidPassengerCount) {
			t.Errorf("Expected ErrInvalidPassengerCount, got %v", err)
		}
	})

	t.Run("NegativeDistance", func(t *testing.T) {
		_, err := p.QuoteFare(-19, fare.Counts{Adult: 1}, false, timetable.NewClock(12, 0))
		if !errors.Is(err, fare.ErrInvalidDistance) || !IsRecoverable(err) {
			t.Errorf("Expected recoverable ErrInvalidDistance, got %v", err)
		}
	})
}

func TestSessionShow(t *testing.T) {
	cfg := config.Default()
	cfg.TransferPolicy = string(itinerary.PolicyWarnOnly)
	cfg.Timetable.MinTransferMinutes = 15
	p := newPlanner(t, cfg)

	s, err := p.Begin("A", "D", timetable.NewClock(9, 0), 0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, err := s.SelectIndex(0, 0); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	// Re-offer leg 1 from the 09:26 arrival itself: the 09:40 train leaves
	// 14 minutes, one short of the 15 minute minimum.
	offers, err := s.GenerateLegOffers(1, timetable.NewClock(9, 26))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, err := s.SelectOffer(1, offers[0]); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	rec := &recordingPresenter{}
	s.Show(rec)

	if rec.routes != 1 || rec.offers[0] == 0 || rec.offers[1] == 0 {
		t.Errorf("Expected route and both legs' offers, got %+v", rec)
	}
	if len(rec.summaries) != 1 || !rec.summaries[0].Complete {
		t.Errorf("Expected one complete summary, got %+v", rec.summaries)
	}
	if len(rec.warnings) != 1 {
		t.Errorf("Expected one tight transfer warning, got %v", rec.warnings)
	}

	ticket, err := s.Book(fare.Counts{Adult: 1}, true)
	if err != nil {
		t.Fatalf("Expected warn-only policy to allow booking, got %v", err)
	}
	if len(ticket.Warnings) != 1 {
		t.Errorf("Expected ticket warning, got %v", ticket.Warnings)
	}
}
