/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package party

import (
	"github.com/Seednode/ulvareth/roster"
)

func groupCount(n, size int) int {
	return (n + size - 1) / size
}

func queues(players []Player) [3][]Player {
	var q [3][]Player
	for _, p := range players {
		q[p.Primary] = append(q[p.Primary], p)
	}

	return q
}

// unplaced returns the players not marked in placed, in roster order.
func unplaced(players []Player, placed []bool) []Player {
	var out []Player
	for _, p := range players {
		if !placed[p.Index] {
			out = append(out, p)
		}
	}

	return out
}

// spill hands out pool round-robin, skipping full groups. pick chooses which
// pool entry a group receives. When every group is full the remaining
// players go in anyway so nobody is dropped.
func spill(groups []Group, pool []Player, size int, pick func(g *Group, pool []Player) int) {
	if len(groups) == 0 {
		return
	}

	skipped := 0

	for gi := 0; len(pool) > 0; gi = (gi + 1) % len(groups) {
		g := &groups[gi]

		if len(g.Members) >= size && skipped < len(groups) {
			skipped++

			continue
		}

		i := pick(g, pool)
		g.add(pool[i])
		pool = append(pool[:i], pool[i+1:]...)
		skipped = 0
	}
}

// Balanced mixes all three archetypes into every party. Each group is first
// seeded with one primary of each archetype, then topped up with players
// whose secondary archetype the group still lacks.
func Balanced(rows []roster.Row, size int) []Group {
	size = ClampSize(size)

	players := Players(rows)
	q := queues(players)

	groups := make([]Group, max(1, groupCount(len(players), size)))
	need := make([][3]bool, len(groups))
	for gi := range groups {
		groups[gi].Name = "Balanced"
		groups[gi].Index = gi
		need[gi] = [3]bool{true, true, true}
	}

	placed := make([]bool, len(players))

	for _, a := range Archetypes {
		for gi := range groups {
			if len(groups[gi].Members) >= size || len(q[a]) == 0 {
				continue
			}

			p := q[a][0]
			q[a] = q[a][1:]

			groups[gi].add(p)
			need[gi][a] = false
			placed[p.Index] = true
		}
	}

	pool := unplaced(players, placed)

	for gi := range groups {
		for len(groups[gi].Members) < size && len(pool) > 0 {
			i := 0
			for j, p := range pool {
				if need[gi][p.Secondary] {
					i = j

					break
				}
			}

			p := pool[i]
			pool = append(pool[:i], pool[i+1:]...)

			groups[gi].add(p)
			need[gi][p.Secondary] = false
		}
	}

	spill(groups, pool, size, func(*Group, []Player) int { return 0 })

	restamp(groups)

	return groups
}
