/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package party

import (
	"github.com/Seednode/ulvareth/roster"
)

// categoryOrder is the order archetype groups are created in.
var categoryOrder = [...]Archetype{Swords, Schemers, Seekers}

const (
	secondaryMatchWeight = 2.5
	leanWeight           = 1.25
	coverageBonus        = 0.25
)

type fitter struct {
	maxes Scores
}

func newFitter(players []Player) fitter {
	f := fitter{maxes: Scores{1, 1, 1}}
	for _, p := range players {
		for _, a := range Archetypes {
			f.maxes[a] = max(f.maxes[a], p.Totals[a])
		}
	}

	return f
}

// score rates how well p fits a group of category cat.
func (f fitter) score(p Player, cat Archetype, g *Group) float64 {
	s := leanWeight * (p.Totals[cat] / f.maxes[cat])

	if p.Secondary == cat {
		s += secondaryMatchWeight
	}
	if g.SecCoverage[p.Secondary] == 0 {
		s += coverageBonus
	}

	return s
}

// best returns the index of the highest scoring pool entry for g. The first
// entry wins ties.
func (f fitter) best(g *Group, pool []Player) int {
	bestIdx, best := 0, -1.0

	for i, p := range pool {
		if s := f.score(p, g.Category, g); s > best {
			bestIdx, best = i, s
		}
	}

	return bestIdx
}

// ByCategory builds parties that share a primary archetype. Each archetype
// gets just enough groups for its players; trailing partial groups are
// compacted into earlier ones and any leftovers are placed by best fit.
func ByCategory(rows []roster.Row, size int) []Group {
	size = ClampSize(size)

	players := Players(rows)
	fit := newFitter(players)
	q := queues(players)

	var groups []Group
	var spans [3][2]int

	for _, cat := range categoryOrder {
		start := len(groups)
		for i := range groupCount(len(q[cat]), size) {
			groups = append(groups, Group{
				Name:        cat.Label(),
				Category:    cat,
				Categorized: true,
				Index:       i,
			})
		}
		spans[cat] = [2]int{start, len(groups)}
	}

	placed := make([]bool, len(players))

	for _, cat := range categoryOrder {
		own := groups[spans[cat][0]:spans[cat][1]]

		for gi := range own {
			for len(own[gi].Members) < size && len(q[cat]) > 0 {
				p := q[cat][0]
				q[cat] = q[cat][1:]

				own[gi].add(p)
				placed[p.Index] = true
			}
		}
	}

	for _, cat := range categoryOrder {
		compact(groups[spans[cat][0]:spans[cat][1]], size)
	}

	pool := unplaced(players, placed)

	for gi := range groups {
		g := &groups[gi]
		for len(g.Members) < size && len(pool) > 0 {
			i := fit.best(g, pool)
			g.add(pool[i])
			pool = append(pool[:i], pool[i+1:]...)
		}
	}

	spill(groups, pool, size, fit.best)

	restamp(groups)

	return groups
}

// compact tops up short groups with members taken from the last non-empty
// group after them.
func compact(groups []Group, size int) {
	for gi := range groups {
		g := &groups[gi]

		for donor := len(groups) - 1; donor > gi && len(g.Members) < size; {
			src := &groups[donor]
			if len(src.Members) == 0 {
				donor--

				continue
			}

			m := src.Members[0]
			src.Members = src.Members[1:]
			src.SecCoverage[m.Secondary]--

			g.add(m.Player)
		}
	}
}
