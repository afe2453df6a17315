package routing

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/danpilch/metrobook/internal/network"
)

var (
	ErrNoRouteFound = errors.New("no route between stations")
	ErrSameStation  = errors.New("origin and destination are the same station")
)

// Path is an ordered station sequence from origin to destination inclusive.
// An empty path means the destination cannot be reached.
type Path struct {
	Stations []network.Station
	Km       float64
}

func (p Path) Empty() bool {
	return len(p.Stations) == 0
}

func (p Path) Origin() network.Station {
	return p.Stations[0]
}

func (p Path) Destination() network.Station {
	return p.Stations[len(p.Stations)-1]
}

// ShortestPaths runs Dijkstra from origin over the whole graph. Stations that
// cannot be reached keep network.Unreachable and a predecessor of -1.
func ShortestPaths(g *network.Graph, origin network.Station) (dist []float64, pred []int) {
	n := g.Len()
	dist = make([]float64, n)
	pred = make([]int, n)
	visited := make([]bool, n)

	for i := range dist {
		dist[i] = network.Unreachable
		pred[i] = -1
	}
	dist[origin.Index] = 0

	for k := 0; k < n; k++ {
		// Lowest index wins ties since only a strictly smaller distance replaces it.
		current := -1
		best := network.Unreachable
		for j := 0; j < n; j++ {
			if !visited[j] && dist[j] < best {
				current = j
				best = dist[j]
			}
		}
		if current == -1 {
			break
		}
		visited[current] = true

		from := g.At(current)
		for j := 0; j < n; j++ {
			if visited[j] {
				continue
			}
			km, ok := g.Distance(from, g.At(j))
			if !ok {
				continue
			}
			if candidate := dist[current] + km; candidate < dist[j] {
				dist[j] = candidate
				pred[j] = current
			}
		}
	}

	return dist, pred
}

// ReconstructPath walks predecessors back from destination. The result is
// empty unless the walk terminates at origin.
func ReconstructPath(g *network.Graph, dist []float64, pred []int, origin, destination network.Station) Path {
	var reversed []network.Station
	for at := destination.Index; at != -1; at = pred[at] {
		reversed = append(reversed, g.At(at))
		if len(reversed) > g.Len() {
			return Path{}
		}
	}

	if reversed[len(reversed)-1].Index != origin.Index {
		return Path{}
	}

	stations := make([]network.Station, len(reversed))
	for i, s := range reversed {
		stations[len(reversed)-1-i] = s
	}

	return Path{Stations: stations, Km: dist[destination.Index]}
}

// Router answers shortest route queries over a fixed network.
type Router struct {
	graph  *network.Graph
	logger *logrus.Logger
}

func NewRouter(graph *network.Graph, logger *logrus.Logger) *Router {
	return &Router{graph: graph, logger: logger}
}

func (r *Router) Graph() *network.Graph {
	return r.graph
}

// ComputeRoute returns the shortest path between two named stations. A
// disconnected pair yields an empty Path and no error.
func (r *Router) ComputeRoute(origin, destination string) (Path, error) {
	from, err := r.graph.Station(origin)
	if err != nil {
		return Path{}, fmt.Errorf("origin: %w", err)
	}
	to, err := r.graph.Station(destination)
	if err != nil {
		return Path{}, fmt.Errorf("destination: %w", err)
	}
	if from.Index == to.Index {
		return Path{}, fmt.Errorf("%w: %s", ErrSameStation, from)
	}

	dist, pred := ShortestPaths(r.graph, from)
	path := ReconstructPath(r.graph, dist, pred, from, to)

	fields := logrus.Fields{
		"from": from.Name,
		"to":   to.Name,
	}
	if path.Empty() {
		r.logger.WithFields(fields).Warn("no route found")
		return path, nil
	}

	fields["stops"] = len(path.Stations)
	fields["km"] = path.Km
	r.logger.WithFields(fields).Debug("route computed")

	return path, nil
}
