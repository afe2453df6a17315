package present

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/liip/sheriff"

	"github.com/danpilch/metrobook/internal/fare"
	"github.com/danpilch/metrobook/internal/itinerary"
	"github.com/danpilch/metrobook/internal/routing"
	"github.com/danpilch/metrobook/internal/timetable"
)

type routeView struct {
	Stations []string `json:"stations" groups:"basic"`
	Km       float64  `json:"km" groups:"basic"`
	Found    bool     `json:"found" groups:"basic"`
}

type legOffersView struct {
	Leg           int               `json:"leg" groups:"basic"`
	From          string            `json:"from" groups:"basic"`
	To            string            `json:"to" groups:"basic"`
	Km            float64           `json:"km" groups:"detailed"`
	TravelMinutes int               `json:"travelMinutes" groups:"detailed"`
	Offers        []timetable.Offer `json:"offers" groups:"basic"`
}

type document struct {
	Route    *routeView         `json:"route,omitempty" groups:"basic"`
	Offers   []legOffersView    `json:"offers,omitempty" groups:"basic"`
	Summary  *itinerary.Summary `json:"summary,omitempty" groups:"basic"`
	Quote    *fare.Quote        `json:"quote,omitempty" groups:"basic"`
	Warnings []string           `json:"warnings,omitempty" groups:"basic"`
}

// JSON collects everything it is shown and writes one document on Flush.
// Fields outside the selected sheriff groups are dropped.
type JSON struct {
	out    io.Writer
	groups []string
	doc    document
}

func NewJSON(out io.Writer, detailed bool) *JSON {
	groups := []string{"basic"}
	if detailed {
		groups = append(groups, "detailed")
	}
	return &JSON{out: out, groups: groups}
}

func (j *JSON) Route(path routing.Path) {
	view := &routeView{Stations: []string{}, Km: path.Km, Found: !path.Empty()}
	for _, s := range path.Stations {
		view.Stations = append(view.Stations, s.Name)
	}
	j.doc.Route = view
}

func (j *JSON) Offers(leg itinerary.Leg, offers []timetable.Offer) {
	j.doc.Offers = append(j.doc.Offers, legOffersView{
		Leg:           leg.Index,
		From:          leg.From.Name,
		To:            leg.To.Name,
		Km:            leg.Km,
		TravelMinutes: leg.TravelMinutes,
		Offers:        offers,
	})
}

func (j *JSON) Summary(s itinerary.Summary) {
	j.doc.Summary = &s
}

func (j *JSON) Quote(q fare.Quote) {
	j.doc.Quote = &q
}

func (j *JSON) Warn(message string) {
	j.doc.Warnings = append(j.doc.Warnings, message)
}

func (j *JSON) Flush() error {
	reduced, err := sheriff.Marshal(&sheriff.Options{Groups: j.groups}, j.doc)
	if err != nil {
		return fmt.Errorf("reducing output: %w", err)
	}

	enc := json.NewEncoder(j.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(reduced); err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}

	j.doc = document{}
	return nil
}
