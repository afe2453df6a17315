package main

import (
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/kr/pretty"
	"github.com/sirupsen/logrus"

	"github.com/danpilch/metrobook/internal/booking"
	"github.com/danpilch/metrobook/internal/config"
	"github.com/danpilch/metrobook/internal/fare"
	"github.com/danpilch/metrobook/internal/routing"
	"github.com/danpilch/metrobook/internal/timetable"
)

var CLI struct {
	Config   string `help:"Path to config file, built-in network when empty" type:"path"`
	Debug    bool   `help:"Enable debug logging"`
	Now      string `help:"Current time of day as HH:MM, defaults to the wall clock"`
	JSON     bool   `name:"json" help:"Write results as JSON"`
	Detailed bool   `help:"Include distances, factors and other detail in JSON output"`

	Stations StationsCmd `cmd:"" help:"List stations and connections"`
	Route    RouteCmd    `cmd:"" help:"Shortest route between two stations"`
	Offers   OffersCmd   `cmd:"" help:"Train offers for every leg of a route"`
	Book     BookCmd     `cmd:"" help:"Select trains, confirm and price an itinerary"`
	Quote    QuoteCmd    `cmd:"" help:"Fare for a distance and passenger mix"`
}

// App carries the wired services into command Run methods.
type App struct {
	Planner  *booking.Planner
	Now      timetable.Clock
	JSON     bool
	Detailed bool
	Logger   *logrus.Logger
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("metrobook"),
		kong.Description("Metro route planning, train offers and fares."),
		kong.UsageOnError(),
	)

	// Setup structured logging with logfmt
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.InfoLevel)
	if CLI.Debug {
		logger.SetLevel(logrus.DebugLevel)
	}
	logger.SetFormatter(&logrus.TextFormatter{
		DisableColors: true,
		FullTimestamp: true,
	})

	// Load configuration
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		logger.WithField("error", err).Fatal("failed to load config")
	}
	logger.Debugf("configuration: %# v", pretty.Formatter(cfg))

	now := timetable.ClockOf(time.Now())
	if CLI.Now != "" {
		now, err = timetable.ParseClock(CLI.Now)
		if err != nil {
			logger.WithField("error", err).Fatal("invalid --now")
		}
	}

	planner, err := newPlanner(cfg, logger)
	if err != nil {
		logger.WithField("error", err).Fatal("failed to build planner")
	}

	app := &App{
		Planner:  planner,
		Now:      now,
		JSON:     CLI.JSON,
		Detailed: CLI.Detailed,
		Logger:   logger,
	}

	if err := ctx.Run(app); err != nil {
		if booking.IsRecoverable(err) {
			logger.WithField("error", err).Error("request could not be completed")
			os.Exit(1)
		}
		logger.WithField("error", err).Fatal("command failed")
	}
}

func newPlanner(cfg *config.Config, logger *logrus.Logger) (*booking.Planner, error) {
	graph, err := cfg.Network()
	if err != nil {
		return nil, err
	}
	genCfg, err := cfg.Timetable.Generator()
	if err != nil {
		return nil, err
	}
	fareCfg, err := cfg.Fares.Calculator()
	if err != nil {
		return nil, err
	}
	settings, err := cfg.Itinerary()
	if err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"stations":        graph.Len(),
		"interval":        genCfg.IntervalMinutes,
		"transfer_policy": settings.Policy,
	}).Debug("planner configured")

	return booking.NewPlanner(
		routing.NewRouter(graph, logger),
		timetable.NewGenerator(genCfg),
		fare.NewCalculator(fareCfg),
		settings,
		logger,
	), nil
}
