/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package quiz

import (
	"math"
	"strconv"
	"strings"

	"github.com/Seednode/ulvareth/party"
	"github.com/Seednode/ulvareth/roster"
)

// Selections records chosen options: question id to option key to chosen.
// Several options of one question may be chosen at once.
type Selections map[string]map[string]bool

// Toggle flips a single option.
func (s Selections) Toggle(question, key string) {
	q, ok := s[question]
	if !ok {
		q = make(map[string]bool)
		s[question] = q
	}

	q[key] = !q[key]
}

// Answered reports whether any option of question is chosen.
func (s Selections) Answered(question string) bool {
	for _, chosen := range s[question] {
		if chosen {
			return true
		}
	}

	return false
}

// Result is a scored questionnaire.
type Result struct {
	Totals    party.Tally     `json:"totals"`
	Pct       party.Tally     `json:"pct"`
	Primary   party.Archetype `json:"primary"`
	Secondary party.Archetype `json:"secondary"`
	Answered  int             `json:"answered"`
	Remaining int             `json:"remaining"`
}

// percentages rounds each share of totals to a whole percent, splitting
// evenly when nothing has been scored.
func percentages(totals party.Tally) party.Tally {
	sum := totals.Total()

	var pct party.Tally
	for _, a := range party.Archetypes {
		share := 1.0 / 3
		if sum > 0 {
			share = float64(totals[a]) / float64(sum)
		}

		pct[a] = int(math.Floor(share*100 + 0.5))
	}

	return pct
}

// Score adds up the points of every chosen option in b. Options and questions
// that are not in the bank are ignored.
func Score(b *Bank, sel Selections) Result {
	var r Result

	for _, q := range b.Questions {
		chosen := sel[q.ID]

		for _, o := range q.Options {
			if !chosen[o.Key] {
				continue
			}

			t := o.Points.Tally()
			for _, a := range party.Archetypes {
				r.Totals[a] += t[a]
			}
		}

		if sel.Answered(q.ID) {
			r.Answered++
		}
	}

	r.Remaining = b.Len() - r.Answered
	r.Pct = percentages(r.Totals)

	var shares party.Scores
	for _, a := range party.Archetypes {
		shares[a] = float64(r.Pct[a])
	}

	order := party.Rank(shares)
	r.Primary, r.Secondary = order[0], order[1]

	return r
}

// ResultKeys is the column layout of a downloaded quiz result.
var ResultKeys = []string{
	"Player", "Primary", "Secondary",
	"SW_total", "SE_total", "SC_total",
	"SW_pct", "SE_pct", "SC_pct",
}

func playerName(name string) string {
	if name = strings.TrimSpace(name); name == "" {
		return "Player"
	}

	return name
}

// Row renders the result as a roster row for player.
func (r Result) Row(player string) roster.Row {
	return roster.NewRow(ResultKeys, []string{
		playerName(player),
		r.Primary.Label(),
		r.Secondary.Label(),
		strconv.Itoa(r.Totals[party.Swords]),
		strconv.Itoa(r.Totals[party.Seekers]),
		strconv.Itoa(r.Totals[party.Schemers]),
		strconv.Itoa(r.Pct[party.Swords]),
		strconv.Itoa(r.Pct[party.Seekers]),
		strconv.Itoa(r.Pct[party.Schemers]),
	})
}

// Filename is the download name for player's result. Runs of anything but
// ASCII letters and digits collapse to a single underscore.
func Filename(player string) string {
	if player == "" {
		player = "Player"
	}

	var b strings.Builder
	gap := false

	for _, ch := range strings.TrimSpace(player) {
		if ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' || ch >= '0' && ch <= '9' {
			if gap && b.Len() > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(ch)
			gap = false

			continue
		}

		gap = true
	}

	if b.Len() == 0 {
		return "Ulvareth_Quiz_Result.csv"
	}

	return b.String() + "_Ulvareth_Quiz_Result.csv"
}
