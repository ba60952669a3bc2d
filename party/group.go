/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package party

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Seednode/ulvareth/roster"
)

const (
	MinSize     = 3
	MaxSize     = 8
	DefaultSize = 5
)

// ClampSize forces a party size into [MinSize, MaxSize].
func ClampSize(size int) int {
	return max(MinSize, min(MaxSize, size))
}

// Member is a player placed in a group, stamped with display metadata.
type Member struct {
	Player

	PrimaryLabel   string `json:"primary_label"`
	SecondaryLabel string `json:"secondary_label"`
	Group          int    `json:"group"`
	GroupName      string `json:"group_name"`
}

// Group is one proposed party.
type Group struct {
	Name        string
	Category    Archetype
	Categorized bool
	Index       int
	Members     []Member
	LabelCounts Tally
	SecCoverage Tally
}

// Title is the display name: Name followed by the 1-based Index.
func (g *Group) Title() string {
	return g.Name + " " + strconv.Itoa(g.Index+1)
}

func (g *Group) add(p Player) {
	g.Members = append(g.Members, Member{Player: p})
	g.SecCoverage[p.Secondary]++
}

func (g *Group) clone() Group {
	c := *g
	c.Members = append([]Member(nil), g.Members...)

	return c
}

// restamp recomputes tallies and member metadata after any change in
// membership. Group numbers follow list position.
func restamp(groups []Group) {
	for gi := range groups {
		g := &groups[gi]
		g.LabelCounts = Tally{}
		g.SecCoverage = Tally{}

		for mi := range g.Members {
			m := &g.Members[mi]
			g.LabelCounts[m.Primary]++
			g.SecCoverage[m.Secondary]++

			m.PrimaryLabel = m.Primary.Label()
			m.SecondaryLabel = m.Secondary.Label()
			m.Group = gi + 1
			m.GroupName = g.Title()
		}
	}
}

func cloneGroups(groups []Group) []Group {
	out := make([]Group, len(groups))
	for i := range groups {
		out[i] = groups[i].clone()
	}

	return out
}

// NonEmpty returns the groups that have at least one member.
func NonEmpty(groups []Group) []Group {
	out := make([]Group, 0, len(groups))
	for _, g := range groups {
		if len(g.Members) > 0 {
			out = append(out, g)
		}
	}

	return out
}

// Mode selects a grouping strategy.
type Mode string

const (
	ModeCategory Mode = "category"
	ModeBalanced Mode = "balanced"
)

var ErrUnknownMode = errors.New("unknown grouping mode")

// ParseMode accepts a mode name in any case.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeCategory:
		return ModeCategory, nil
	case ModeBalanced:
		return ModeBalanced, nil
	}

	return "", fmt.Errorf("%w: %q (expected %q or %q)", ErrUnknownMode, s, ModeCategory, ModeBalanced)
}

// Suggest groups rows with the given strategy. Unknown modes fall back to
// category grouping.
func Suggest(mode Mode, rows []roster.Row, size int) []Group {
	if mode == ModeBalanced {
		return Balanced(rows, size)
	}

	return ByCategory(rows, size)
}

// ExportKeys is the column layout of an exported assignment sheet.
var ExportKeys = []string{"Player", "Primary", "Secondary", "Group"}

// Export flattens the non-empty groups into assignment rows.
func Export(groups []Group) []roster.Row {
	var rows []roster.Row

	for _, g := range NonEmpty(groups) {
		for _, m := range g.Members {
			name := m.GroupName
			if name == "" {
				name = g.Title()
			}

			rows = append(rows, roster.NewRow(ExportKeys, []string{
				m.Name,
				m.Primary.Label(),
				m.Secondary.Label(),
				name,
			}))
		}
	}

	return rows
}

// Summarize counts the roster by primary archetype.
func Summarize(rows []roster.Row) Tally {
	var t Tally
	for _, row := range rows {
		t[Resolve(row).Primary]++
	}

	return t
}
