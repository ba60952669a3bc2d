/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package party

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Seednode/ulvareth/roster"
)

func randomRoster(src *rand.Rand, n int) []roster.Row {
	rows := make([]roster.Row, n)
	for i := range rows {
		pairs := []string{
			"Player", fmt.Sprintf("P%d", i),
			"SW_total", strconv.Itoa(src.IntN(8)),
			"SE_total", strconv.Itoa(src.IntN(8)),
			"SC_total", strconv.Itoa(src.IntN(8)),
		}

		switch src.IntN(4) {
		case 0:
			pairs = append(pairs, "Primary", Archetypes[src.IntN(3)].Label())
		case 1:
			pairs = append(pairs, "Secondary", Archetypes[src.IntN(3)].Label())
		}

		rows[i] = row(pairs...)
	}

	return rows
}

func sampleRows(t *testing.T, name string) []roster.Row {
	t.Helper()

	text, err := roster.Sample(name, rand.New(rand.NewPCG(3, 5)))
	require.NoError(t, err)

	return roster.Parse(text)
}

func indices(groups []Group) []int {
	var out []int
	for _, g := range groups {
		for _, m := range g.Members {
			out = append(out, m.Index)
		}
	}
	slices.Sort(out)

	return out
}

func assertStamped(t *testing.T, groups []Group) {
	t.Helper()

	for gi, g := range groups {
		var labels Tally
		for _, m := range g.Members {
			labels[m.Primary]++
			assert.Equal(t, gi+1, m.Group)
			assert.Equal(t, g.Title(), m.GroupName)
			assert.Equal(t, m.Primary.Label(), m.PrimaryLabel)
			assert.Equal(t, m.Secondary.Label(), m.SecondaryLabel)
		}
		assert.Equal(t, labels, g.LabelCounts)
	}
}

func TestPartitionInvariant(t *testing.T) {
	src := rand.New(rand.NewPCG(42, 99))

	groupers := map[string]func([]roster.Row, int) []Group{
		"balanced": Balanced,
		"category": ByCategory,
	}

	for name, group := range groupers {
		for n := 0; n <= 24; n++ {
			for size := MinSize; size <= MaxSize; size++ {
				rows := randomRoster(src, n)
				groups := group(rows, size)

				want := make([]int, n)
				for i := range want {
					want[i] = i
				}

				got := indices(groups)
				if n == 0 {
					assert.Empty(t, got, "%s n=%d size=%d", name, n, size)
				} else {
					assert.Equal(t, want, got, "%s n=%d size=%d", name, n, size)
				}

				assertStamped(t, groups)
			}
		}
	}
}

func TestClampSize(t *testing.T) {
	assert.Equal(t, 3, ClampSize(-1))
	assert.Equal(t, 3, ClampSize(3))
	assert.Equal(t, 5, ClampSize(5))
	assert.Equal(t, 8, ClampSize(8))
	assert.Equal(t, 8, ClampSize(40))
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode(" Balanced")
	require.NoError(t, err)
	assert.Equal(t, ModeBalanced, m)

	m, err = ParseMode("CATEGORY")
	require.NoError(t, err)
	assert.Equal(t, ModeCategory, m)

	_, err = ParseMode("random")
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestSuggestDispatch(t *testing.T) {
	rows := sampleRows(t, "balanced")

	assert.Equal(t, Balanced(rows, 5), Suggest(ModeBalanced, rows, 5))
	assert.Equal(t, ByCategory(rows, 5), Suggest(ModeCategory, rows, 5))
	assert.Equal(t, ByCategory(rows, 5), Suggest("", rows, 5))
}

func TestExport(t *testing.T) {
	groups := []Group{
		{Name: "Balanced", Index: 0},
		{Name: "Balanced", Index: 1, Members: []Member{{
			Player: Player{Name: "Aria", Primary: Swords, Secondary: Seekers},
		}}},
	}
	restamp(groups)

	rows := Export(groups)

	require.Len(t, rows, 1)
	assert.Equal(t, ExportKeys, rows[0].Keys())
	assert.Equal(t, map[string]string{
		"Player":    "Aria",
		"Primary":   "Swords",
		"Secondary": "Seekers",
		"Group":     "Balanced 2",
	}, rows[0].Map())

	assert.Equal(t, "Player,Primary,Secondary,Group\n\"Aria\",\"Swords\",\"Seekers\",\"Balanced 2\"\n", roster.Format(rows))
}

func TestSummarize(t *testing.T) {
	tally := Summarize(sampleRows(t, "balanced"))

	assert.Equal(t, Tally{4, 4, 2}, tally)
	assert.Equal(t, 10, tally.Total())
	assert.Equal(t, map[string]int{"Swords": 4, "Seekers": 4, "Schemers": 2}, tally.ByLabel())
	assert.Equal(t, map[string]int{"SW": 4, "SE": 4, "SC": 2}, tally.ByCode())
}

func TestNonEmpty(t *testing.T) {
	groups := ByCategory(nil, 5)
	assert.Empty(t, groups)

	groups = Balanced(nil, 5)
	require.Len(t, groups, 1)
	assert.Empty(t, groups[0].Members)
	assert.Empty(t, NonEmpty(groups))
}
