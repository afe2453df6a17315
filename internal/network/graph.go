package network

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Unreachable marks the absence of a direct connection between two stations.
var Unreachable = math.Inf(1)

var (
	ErrUnknownStation = errors.New("unknown station")
	ErrNoStations     = errors.New("network has no stations")
)

// Station is a node of the network, identified by its index.
type Station struct {
	Index int
	Name  string
}

func (s Station) String() string {
	return s.Name
}

// Edge is an undirected connection between two named stations.
type Edge struct {
	From string  `yaml:"from"`
	To   string  `yaml:"to"`
	Km   float64 `yaml:"km"`
}

// Graph is a symmetric weighted adjacency matrix over a fixed station set.
type Graph struct {
	stations []Station
	byName   map[string]int
	km       [][]float64
}

// NewGraph builds the network from station names and distance triples.
func NewGraph(names []string, edges []Edge) (*Graph, error) {
	if len(names) == 0 {
		return nil, ErrNoStations
	}

	g := &Graph{
		stations: make([]Station, len(names)),
		byName:   make(map[string]int, len(names)),
		km:       make([][]float64, len(names)),
	}

	for i, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("station %d has no name", i)
		}
		if _, exists := g.byName[name]; exists {
			return nil, fmt.Errorf("duplicate station %q", name)
		}
		g.stations[i] = Station{Index: i, Name: name}
		g.byName[name] = i

		row := make([]float64, len(names))
		for j := range row {
			row[j] = Unreachable
		}
		row[i] = 0
		g.km[i] = row
	}

	for _, e := range edges {
		if err := g.connect(e); err != nil {
			return nil, err
		}
	}

	return g, nil
}

func (g *Graph) connect(e Edge) error {
	from, err := g.Station(e.From)
	if err != nil {
		return fmt.Errorf("edge %s-%s: %w", e.From, e.To, err)
	}
	to, err := g.Station(e.To)
	if err != nil {
		return fmt.Errorf("edge %s-%s: %w", e.From, e.To, err)
	}
	if e.Km < 0 || math.IsNaN(e.Km) || math.IsInf(e.Km, 0) {
		return fmt.Errorf("edge %s-%s: invalid distance %v", e.From, e.To, e.Km)
	}
	// A self loop never shortens anything; keep the diagonal at zero.
	if from.Index == to.Index {
		return nil
	}

	g.km[from.Index][to.Index] = e.Km
	g.km[to.Index][from.Index] = e.Km
	return nil
}

// Len returns the number of stations.
func (g *Graph) Len() int {
	return len(g.stations)
}

// Stations returns a copy of the station list in index order.
func (g *Graph) Stations() []Station {
	out := make([]Station, len(g.stations))
	copy(out, g.stations)
	return out
}

// Station looks a station up by name.
func (g *Graph) Station(name string) (Station, error) {
	i, ok := g.byName[strings.TrimSpace(name)]
	if !ok {
		return Station{}, fmt.Errorf("%w: %q", ErrUnknownStation, name)
	}
	return g.stations[i], nil
}

// At returns the station with the given index.
func (g *Graph) At(index int) Station {
	return g.stations[index]
}

// Distance returns the direct distance between two stations and whether
// they are connected at all.
func (g *Graph) Distance(a, b Station) (float64, bool) {
	d := g.km[a.Index][b.Index]
	return d, !math.IsInf(d, 1)
}

// Edges lists each direct connection once, lower index first.
func (g *Graph) Edges() []Edge {
	var edges []Edge
	for i := range g.km {
		for j := i + 1; j < len(g.km); j++ {
			if d := g.km[i][j]; !math.IsInf(d, 1) {
				edges = append(edges, Edge{From: g.stations[i].Name, To: g.stations[j].Name, Km: d})
			}
		}
	}
	return edges
}
