package present

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/danpilch/metrobook/internal/fare"
	"github.com/danpilch/metrobook/internal/itinerary"
	"github.com/danpilch/metrobook/internal/network"
	"github.com/danpilch/metrobook/internal/routing"
	"github.com/danpilch/metrobook/internal/timetable"
)

// Text renders results as aligned plain text.
type Text struct {
	out io.Writer
}

func NewText(out io.Writer) *Text {
	return &Text{out: out}
}

func (t *Text) table() *tabwriter.Writer {
	return tabwriter.NewWriter(t.out, 5, 3, 3, ' ', 0)
}

func (t *Text) Network(stations []network.Station, edges []network.Edge) {
	names := make([]string, len(stations))
	for i, s := range stations {
		names[i] = s.Name
	}
	fmt.Fprintf(t.out, "Stations: %s\n\n", strings.Join(names, ", "))

	w := t.table()
	fmt.Fprintln(w, "FROM\tTO\tKM")
	for _, e := range edges {
		fmt.Fprintf(w, "%s\t%s\t%g\n", e.From, e.To, e.Km)
	}
	w.Flush()
}

func (t *Text) Route(path routing.Path) {
	if path.Empty() {
		fmt.Fprintln(t.out, "No route available between selected stations.")
		return
	}

	names := make([]string, len(path.Stations))
	for i, s := range path.Stations {
		names[i] = s.Name
	}
	fmt.Fprintf(t.out, "Route: %s (%g km)\n", strings.Join(names, " -> "), path.Km)
}

func (t *Text) Offers(leg itinerary.Leg, offers []timetable.Offer) {
	fmt.Fprintf(t.out, "\n%s to %s (%g km, %d min)\n", leg.From, leg.To, leg.Km, leg.TravelMinutes)

	w := t.table()
	for i, o := range offers {
		fmt.Fprintf(w, "  [%d]\t%s\t%s\n", i+1, o.Departure, o.Arrival)
	}
	w.Flush()
}

func (t *Text) Summary(s itinerary.Summary) {
	if len(s.Legs) == 0 {
		fmt.Fprintln(t.out, "\nNo trains selected.")
		return
	}

	fmt.Fprintf(t.out, "\nTrip %s to %s\n", s.From, s.To)

	w := t.table()
	fmt.Fprintln(w, "TRAIN\tFROM\tTO\tDEPART\tARRIVE\tMIN")
	for i, leg := range s.Legs {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%d\n", i+1, leg.From, leg.To, leg.Depart, leg.Arrive, leg.DurationMin)
	}
	w.Flush()

	for _, tr := range s.Transfers {
		note := ""
		if tr.Tight {
			note = " (tight)"
		}
		fmt.Fprintf(t.out, "Transfer time at Station %s: %d minutes%s\n", tr.AtStation, tr.WaitMin, note)
	}

	fmt.Fprintf(t.out, "Total time = %d minutes\n", s.TotalMinutes)
	if !s.Complete {
		fmt.Fprintln(t.out, "Selection incomplete.")
	}
}

func (t *Text) Quote(q fare.Quote) {
	fmt.Fprintf(t.out, "\nFare for %g km, base %.2f", q.Km, q.Base)
	if q.Peak {
		fmt.Fprint(t.out, " (peak)")
	}
	fmt.Fprintln(t.out)

	w := t.table()
	fmt.Fprintln(w, "CATEGORY\tCOUNT\tSUBTOTAL")
	for _, line := range q.Lines {
		fmt.Fprintf(w, "%s\t%d\t%.2f\n", line.Category, line.Count, line.Subtotal)
	}
	w.Flush()

	if q.RoundTrip {
		fmt.Fprintf(t.out, "Round trip: %.2f -> %.2f\n", q.CategorySum, q.Total)
	}
	fmt.Fprintf(t.out, "Total: %.2f\n", q.Total)
}

func (t *Text) Warn(message string) {
	fmt.Fprintf(t.out, "! %s\n", message)
}

// Flush is a no-op; text is written as it is shown.
func (t *Text) Flush() error {
	return nil
}
