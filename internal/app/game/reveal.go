package game

import (
	"math/rand"
	"sort"

	"github.com/zyedidia/generic/mapset"

	"lifelens-island/internal/domain/island"
)

// Reveal returns current plus the new direct reward cells plus up to bonus
// randomly chosen frontier cells. The result always starts with current in its
// original order, so it is a superset of current. Direct cells that are already
// revealed, out of bounds or not land are dropped.
func Reveal(m island.WorldMap, current, direct []island.Coord, rng *rand.Rand, bonus int) []island.Coord {
	if bonus < 0 {
		bonus = 0
	}
	seen := mapset.New[island.Coord]()
	out := make([]island.Coord, 0, len(current)+len(direct)+bonus)
	for _, c := range current {
		if seen.Has(c) {
			continue
		}
		seen.Put(c)
		out = append(out, c)
	}
	for _, c := range direct {
		if seen.Has(c) || !m.IsLand(c) {
			continue
		}
		seen.Put(c)
		out = append(out, c)
	}

	frontier := frontierOf(m, out, seen)
	if bonus > len(frontier) {
		bonus = len(frontier)
	}
	// Partial Fisher-Yates: uniform sample without replacement.
	for i := 0; i < bonus; i++ {
		j := i + rng.Intn(len(frontier)-i)
		frontier[i], frontier[j] = frontier[j], frontier[i]
		out = append(out, frontier[i])
	}
	return out
}

// Frontier lists unrevealed land cells 4-adjacent to any revealed cell, in row-major order.
func Frontier(m island.WorldMap, revealed []island.Coord) []island.Coord {
	seen := mapset.New[island.Coord]()
	for _, c := range revealed {
		seen.Put(c)
	}
	cells := frontierOf(m, revealed, seen)
	sort.Slice(cells, func(i, j int) bool {
		return m.Index(cells[i]) < m.Index(cells[j])
	})
	return cells
}

func frontierOf(m island.WorldMap, revealed []island.Coord, seen mapset.Set[island.Coord]) []island.Coord {
	queued := mapset.New[island.Coord]()
	cells := make([]island.Coord, 0)
	for _, c := range revealed {
		for _, n := range c.Neighbors4() {
			if !m.InBounds(n) || !m.IsLand(n) || seen.Has(n) || queued.Has(n) {
				continue
			}
			queued.Put(n)
			cells = append(cells, n)
		}
	}
	return cells
}
