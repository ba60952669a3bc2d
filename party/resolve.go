/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package party

import (
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/Seednode/ulvareth/roster"
)

// Resolution is the archetype reading of a single roster row.
type Resolution struct {
	Primary   Archetype
	Secondary Archetype
	Totals    Scores
}

// numericPrefix is the longest leading number a spreadsheet or browser
// would read from a cell.
var numericPrefix = regexp.MustCompile(`^[+-]?(Infinity|(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?)`)

// number parses a score cell, treating blanks and garbage as zero. A
// numeric prefix such as "4 pts" still counts.
func number(s string) float64 {
	s = strings.TrimLeftFunc(s, roster.IsSpace)

	m := numericPrefix.FindString(s)
	if m == "" {
		return 0
	}

	// Out of range values come back as ±Inf alongside ErrRange.
	v, _ := strconv.ParseFloat(m, 64)

	return v
}

func scores(row roster.Row, suffix string) Scores {
	var s Scores
	for _, a := range Archetypes {
		s[a] = number(row.Get(a.Code() + suffix))
	}

	return s
}

// Rank orders the archetypes by score, highest first, breaking ties in
// Swords, Seekers, Schemers order.
func Rank(totals Scores) [3]Archetype {
	order := Archetypes

	slices.SortStableFunc(order[:], func(a, b Archetype) int {
		switch {
		case totals[a] > totals[b]:
			return -1
		case totals[a] < totals[b]:
			return 1
		}

		return 0
	})

	return order
}

// Resolve reads the archetype totals of row, falling back to the percentage
// columns when every total is zero. Explicit Primary and Secondary text
// columns override the ranking independently of each other.
func Resolve(row roster.Row) Resolution {
	totals := scores(row, "_total")
	if totals == (Scores{}) {
		totals = scores(row, "_pct")
	}

	order := Rank(totals)

	res := Resolution{
		Primary:   order[0],
		Secondary: order[1],
		Totals:    totals,
	}

	if a, ok := FromText(row.Get("Primary")); ok {
		res.Primary = a
	}
	if a, ok := FromText(row.Get("Secondary")); ok {
		res.Secondary = a
	}

	return res
}

// Player is a resolved roster entry.
type Player struct {
	Index     int       `json:"index"`
	Name      string    `json:"player"`
	Primary   Archetype `json:"primary"`
	Secondary Archetype `json:"secondary"`
	Totals    Scores    `json:"totals"`
}

// NewPlayer resolves the row found at position index of a roster.
func NewPlayer(index int, row roster.Row) Player {
	res := Resolve(row)

	name := row.Get("Player")
	if name == "" {
		name = "Player " + strconv.Itoa(index+1)
	}

	return Player{
		Index:     index,
		Name:      name,
		Primary:   res.Primary,
		Secondary: res.Secondary,
		Totals:    res.Totals,
	}
}

// Players resolves every row of a roster.
func Players(rows []roster.Row) []Player {
	players := make([]Player, len(rows))
	for i, row := range rows {
		players[i] = NewPlayer(i, row)
	}

	return players
}
