package itinerary

import "github.com/danpilch/metrobook/internal/timetable"

type LegSummary struct {
	From        string          `json:"from" groups:"basic"`
	To          string          `json:"to" groups:"basic"`
	Depart      timetable.Clock `json:"depart" groups:"basic"`
	Arrive      timetable.Clock `json:"arrive" groups:"basic"`
	DurationMin int             `json:"durationMin" groups:"basic"`
	Km          float64         `json:"km" groups:"detailed"`
	TravelMin   int             `json:"travelMin" groups:"detailed"`
}

type TransferSummary struct {
	AtStation string `json:"atStation" groups:"basic"`
	WaitMin   int    `json:"waitMin" groups:"basic"`
	Tight     bool   `json:"tight" groups:"basic"`
}

// Summary is a render-ready view of the selected prefix of an itinerary.
type Summary struct {
	From         string            `json:"from" groups:"basic"`
	To           string            `json:"to" groups:"basic"`
	Legs         []LegSummary      `json:"legs" groups:"basic"`
	Transfers    []TransferSummary `json:"transfers" groups:"basic"`
	TotalMinutes int               `json:"totalMinutes" groups:"basic"`
	Complete     bool              `json:"complete" groups:"basic"`
	Km           float64           `json:"km" groups:"detailed"`
}

// Summary projects the current selections; it never changes builder state.
func (b *Builder) Summary() Summary {
	s := Summary{
		From:      b.path.Origin().Name,
		To:        b.path.Destination().Name,
		Legs:      []LegSummary{},
		Transfers: []TransferSummary{},
		Complete:  b.IsComplete(),
	}

	for i, sel := range b.selected {
		if sel == nil {
			break
		}
		leg := b.legs[i]

		if i > 0 {
			wait, _ := b.TransferMinutes(i)
			s.Transfers = append(s.Transfers, TransferSummary{
				AtStation: leg.From.Name,
				WaitMin:   wait,
				Tight:     wait < b.settings.MinTransferMinutes,
			})
		}

		s.Legs = append(s.Legs, LegSummary{
			From:        leg.From.Name,
			To:          leg.To.Name,
			Depart:      sel.Departure,
			Arrive:      sel.Arrival,
			DurationMin: sel.Arrival.Sub(sel.Departure),
			Km:          leg.Km,
			TravelMin:   leg.TravelMinutes,
		})
		s.Km += leg.Km
	}

	if n := len(s.Legs); n > 0 {
		s.TotalMinutes = s.Legs[n-1].Arrive.Sub(s.Legs[0].Depart)
	}

	return s
}
