// Package pathfind implements weighted A* over the world grid. Roads are
// cheap, open ground is expensive, and diagonal steps cost √2 instead of 1.
package pathfind

import (
	"container/heap"
	"math"

	"github.com/Netflux/Villa/internal/world"
)

const (
	roadCost = 1.0
	landCost = 5.0

	// DefaultStepLimit bounds path reconstruction.
	DefaultStepLimit = 200
)

// Grid is the part of the world the search reads.
type Grid interface {
	Tile(c world.Coord) (*world.Tile, bool)
	Neighbours(c world.Coord, diagonal bool) []world.Coord
}

// Finder searches a grid. The zero StepLimit means DefaultStepLimit.
type Finder struct {
	Grid      Grid
	Diagonal  bool
	StepLimit int
}

// EdgeCost returns the cost of stepping onto tile: the terrain weight plus
// the step length.
func EdgeCost(tile *world.Tile, diagonal bool) float64 {
	cost := landCost
	if tile.Road {
		cost = roadCost
	}
	if diagonal {
		return cost + math.Sqrt2
	}
	return cost + 1
}

// Heuristic is the Manhattan distance in tiles.
func Heuristic(a, b world.Coord) float64 {
	return float64(world.ManhattanTiles(a, b))
}

type pathNode struct {
	coord  world.Coord
	g      float64
	f      float64
	index  int
	parent world.Coord
}

type pathQueue []*pathNode

func (pq pathQueue) Len() int { return len(pq) }

func (pq pathQueue) Less(i, j int) bool { return pq[i].f < pq[j].f }

func (pq pathQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *pathQueue) Push(x any) {
	n := len(*pq)
	item := x.(*pathNode)
	item.index = n
	*pq = append(*pq, item)
}

func (pq *pathQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*pq = old[:n-1]
	return item
}

// Find returns the tiles from goal back towards start, excluding start. The
// order is the order a LIFO task stack wants them pushed in. An empty result
// means no path: the goal is unreachable, unwalkable, equal to start, or
// further than StepLimit steps.
func (f Finder) Find(from, to world.Coord) []world.Coord {
	if f.Grid == nil || from == to {
		return nil
	}
	if t, ok := f.Grid.Tile(to); !ok || !t.Walkable {
		return nil
	}
	if _, ok := f.Grid.Tile(from); !ok {
		return nil
	}

	open := &pathQueue{}
	heap.Init(open)
	heap.Push(open, &pathNode{coord: from, f: Heuristic(from, to), parent: from})
	gScore := map[world.Coord]float64{from: 0}
	cameFrom := make(map[world.Coord]world.Coord)
	closed := make(map[world.Coord]struct{})

	for open.Len() > 0 {
		current := heap.Pop(open).(*pathNode)
		if _, seen := closed[current.coord]; seen {
			continue
		}
		closed[current.coord] = struct{}{}
		if current.coord != from {
			cameFrom[current.coord] = current.parent
		}
		if current.coord == to {
			return f.reconstruct(cameFrom, from, to)
		}

		for _, next := range f.Grid.Neighbours(current.coord, f.Diagonal) {
			if _, seen := closed[next]; seen {
				continue
			}
			tile, ok := f.Grid.Tile(next)
			if !ok {
				continue
			}
			tentative := current.g + EdgeCost(tile, world.IsDiagonal(current.coord, next))
			if prev, ok := gScore[next]; ok && tentative >= prev {
				continue
			}
			gScore[next] = tentative
			heap.Push(open, &pathNode{
				coord:  next,
				g:      tentative,
				f:      tentative + Heuristic(next, to),
				parent: current.coord,
			})
		}
	}
	return nil
}

func (f Finder) reconstruct(cameFrom map[world.Coord]world.Coord, from, to world.Coord) []world.Coord {
	limit := f.StepLimit
	if limit <= 0 {
		limit = DefaultStepLimit
	}
	path := make([]world.Coord, 0, 16)
	for c := to; c != from; {
		if len(path) >= limit {
			return nil
		}
		path = append(path, c)
		prev, ok := cameFrom[c]
		if !ok {
			return nil
		}
		c = prev
	}
	return path
}
