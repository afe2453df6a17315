package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/danpilch/metrobook/internal/booking"
	"github.com/danpilch/metrobook/internal/fare"
	"github.com/danpilch/metrobook/internal/itinerary"
	"github.com/danpilch/metrobook/internal/notify"
	"github.com/danpilch/metrobook/internal/present"
	"github.com/danpilch/metrobook/internal/timetable"
)

type output interface {
	booking.Presenter
	Flush() error
}

func (a *App) output() output {
	if a.JSON {
		return present.NewJSON(os.Stdout, a.Detailed)
	}
	return present.NewText(os.Stdout)
}

// at parses an optional HH:MM flag, falling back to the current time.
func (a *App) at(value string) (timetable.Clock, error) {
	if value == "" {
		return a.Now, nil
	}
	c, err := timetable.ParseClock(value)
	if err != nil {
		return 0, fmt.Errorf("--at: %w", err)
	}
	return c, nil
}

type Passengers struct {
	Adults   int `help:"Adult passengers" default:"1"`
	Students int `help:"Student passengers"`
	Seniors  int `help:"Senior passengers"`
	Children int `help:"Child passengers"`
}

func (p Passengers) Counts() fare.Counts {
	return fare.Counts{
		Adult:   p.Adults,
		Student: p.Students,
		Senior:  p.Seniors,
		Child:   p.Children,
	}
}

type StationsCmd struct{}

func (c *StationsCmd) Run(app *App) error {
	present.NewText(os.Stdout).Network(app.Planner.Stations(), app.Planner.Edges())
	return nil
}

type RouteCmd struct {
	From string `arg:"" help:"Origin station"`
	To   string `arg:"" help:"Destination station"`
}

func (c *RouteCmd) Run(app *App) error {
	path, err := app.Planner.ComputeRoute(c.From, c.To)
	if err != nil {
		return err
	}

	out := app.output()
	out.Route(path)
	return out.Flush()
}

type OffersCmd struct {
	From string `arg:"" help:"Origin station"`
	To   string `arg:"" help:"Destination station"`
	At   string `help:"Desired departure as HH:MM, defaults to now"`
}

func (c *OffersCmd) Run(app *App) error {
	at, err := app.at(c.At)
	if err != nil {
		return err
	}

	session, err := app.Planner.Begin(c.From, c.To, at, app.Now)
	if session == nil {
		return err
	}

	out := app.output()
	if err == nil {
		// Each later leg is offered from the earliest train of the one before.
		_, err = session.SelectEarliest()
	}
	session.Show(out)
	if ferr := out.Flush(); ferr != nil {
		return ferr
	}
	return err
}

type BookCmd struct {
	From      string `arg:"" help:"Origin station"`
	To        string `arg:"" help:"Destination station"`
	At        string `help:"Desired departure as HH:MM, defaults to now"`
	Pick      []int  `help:"Offer number per leg, comma separated, earliest when omitted" sep:","`
	RoundTrip bool   `help:"Price as a round trip"`
	Notify    bool   `help:"Send the ticket via Pushover (PUSHOVER_TOKEN, PUSHOVER_USER)"`

	Passengers `embed:""`
}

func (c *BookCmd) Run(app *App) error {
	at, err := app.at(c.At)
	if err != nil {
		return err
	}

	session, err := app.Planner.Begin(c.From, c.To, at, app.Now)
	if session == nil {
		return err
	}

	out := app.output()
	fail := func(err error) error {
		session.Show(out)
		if ferr := out.Flush(); ferr != nil {
			return ferr
		}
		return err
	}
	if err != nil {
		return fail(err)
	}

	for _, leg := range session.Legs() {
		n := 0
		if leg.Index < len(c.Pick) {
			n = c.Pick[leg.Index] - 1
		}
		if _, err := session.SelectIndex(leg.Index, n); err != nil {
			return fail(err)
		}
	}

	ticket, err := session.Book(c.Counts(), c.RoundTrip)
	if err != nil {
		if errors.Is(err, itinerary.ErrTightTransfer) {
			out.Warn("choose a later connection or book with transfer_policy: warn-only")
		}
		return fail(err)
	}

	session.Show(out)
	out.Quote(ticket.Fare)
	if err := out.Flush(); err != nil {
		return err
	}

	if c.Notify {
		return sendTicket(app.Logger, ticket)
	}
	return nil
}

func sendTicket(logger *logrus.Logger, ticket booking.Ticket) error {
	token := os.Getenv("PUSHOVER_TOKEN")
	user := os.Getenv("PUSHOVER_USER")
	if token == "" || user == "" {
		logger.Warn("PUSHOVER_TOKEN and PUSHOVER_USER are required for --notify, ticket not sent")
		return nil
	}

	var sender booking.TicketSender = notify.NewNotifier(token, user, logger)
	if err := sender.SendTicket(ticket); err != nil {
		return fmt.Errorf("delivering ticket: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"from": ticket.Summary.From,
		"to":   ticket.Summary.To,
	}).Info("ticket sent")
	return nil
}

type QuoteCmd struct {
	Km        float64 `help:"Distance in km" required:""`
	At        string  `help:"Departure time as HH:MM for peak pricing, defaults to now"`
	RoundTrip bool    `help:"Price as a round trip"`

	Passengers `embed:""`
}

func (c *QuoteCmd) Run(app *App) error {
	at, err := app.at(c.At)
	if err != nil {
		return err
	}

	quote, err := app.Planner.QuoteFare(c.Km, c.Counts(), c.RoundTrip, at)
	if err != nil {
		return err
	}

	out := app.output()
	out.Quote(quote)
	return out.Flush()
}
