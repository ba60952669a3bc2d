/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package quiz

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Seednode/ulvareth/party"
	"github.com/Seednode/ulvareth/roster"
)

func bank(t *testing.T) *Bank {
	t.Helper()

	b, err := Load()
	require.NoError(t, err)

	return b
}

func TestLoad(t *testing.T) {
	b := bank(t)

	require.Equal(t, 20, b.Len())
	for _, q := range b.Questions {
		assert.Len(t, q.Options, 4, q.ID)
		assert.True(t, strings.HasPrefix(q.Title, "Scenario: "), q.ID)
	}

	q, ok := b.Question("q1")
	require.True(t, ok)
	assert.Equal(t, Points{SW: 3, SE: 0, SC: 1}, q.Options[0].Points)
	assert.Equal(t, party.Tally{1, 2, 1}, q.Options[3].Points.Tally())

	q, ok = b.Question("q8")
	require.True(t, ok)
	assert.Equal(t, "“Leverage wins quietly.”", q.Options[2].Label)

	_, ok = b.Question("q21")
	assert.False(t, ok)
}

func TestParseRejects(t *testing.T) {
	tests := map[string]string{
		"empty":          "questions: []\n",
		"missing id":     "questions:\n  - title: x\n    options: [{key: a}]\n",
		"duplicate id":   "questions:\n  - id: q1\n    options: [{key: a}]\n  - id: q1\n    options: [{key: a}]\n",
		"no options":     "questions:\n  - id: q1\n",
		"duplicate key":  "questions:\n  - id: q1\n    options: [{key: a}, {key: a}]\n",
		"unknown field":  "questions:\n  - id: q1\n    weight: 2\n    options: [{key: a}]\n",
		"malformed yaml": "questions: [\n",
	}

	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(in))
			assert.Error(t, err)
		})
	}

	_, err := Parse([]byte("questions:\n  - id: q1\n    options: [{key: a, points: {SW: 1}}]\n"))
	assert.NoError(t, err)
}

func TestScore(t *testing.T) {
	sel := Selections{}
	sel.Toggle("q1", "a")
	sel.Toggle("q2", "b")
	sel.Toggle("q5", "c")

	r := Score(bank(t), sel)

	assert.Equal(t, party.Tally{3, 3, 5}, r.Totals)
	assert.Equal(t, party.Tally{27, 27, 45}, r.Pct)
	assert.Equal(t, party.Schemers, r.Primary)
	assert.Equal(t, party.Swords, r.Secondary)
	assert.Equal(t, 3, r.Answered)
	assert.Equal(t, 17, r.Remaining)
}

func TestScoreMultiSelect(t *testing.T) {
	sel := Selections{"q1": {"a": true, "b": true, "c": false}}

	r := Score(bank(t), sel)

	assert.Equal(t, party.Tally{3, 3, 2}, r.Totals)
	assert.Equal(t, 1, r.Answered)
}

func TestScoreNothingChosen(t *testing.T) {
	r := Score(bank(t), Selections{"q1": {"a": false}, "q99": {"z": true}})

	assert.Equal(t, party.Tally{}, r.Totals)
	assert.Equal(t, party.Tally{33, 33, 33}, r.Pct)
	assert.Equal(t, party.Swords, r.Primary)
	assert.Equal(t, party.Seekers, r.Secondary)
	assert.Equal(t, 0, r.Answered)
	assert.Equal(t, 20, r.Remaining)
}

func TestPercentagesRoundHalfUp(t *testing.T) {
	assert.Equal(t, party.Tally{13, 0, 88}, percentages(party.Tally{1, 0, 7}))
	assert.Equal(t, party.Tally{50, 50, 0}, percentages(party.Tally{2, 2, 0}))
}

func TestToggle(t *testing.T) {
	sel := Selections{}

	sel.Toggle("q3", "d")
	assert.True(t, sel.Answered("q3"))

	sel.Toggle("q3", "d")
	assert.False(t, sel.Answered("q3"))
	assert.False(t, sel.Answered("q4"))
}

func TestResultRow(t *testing.T) {
	r := Result{
		Totals:    party.Tally{10, 4, 6},
		Pct:       party.Tally{50, 20, 30},
		Primary:   party.Swords,
		Secondary: party.Schemers,
	}

	assert.Equal(t,
		"Player,Primary,Secondary,SW_total,SE_total,SC_total,SW_pct,SE_pct,SC_pct\n"+
			`"Aria","Swords","Schemers","10","4","6","50","20","30"`+"\n",
		roster.Format([]roster.Row{r.Row(" Aria ")}))

	assert.Equal(t, "Player", r.Row("").Get("Player"))
}

func TestFilename(t *testing.T) {
	tests := map[string]string{
		"":                "Player_Ulvareth_Quiz_Result.csv",
		"Aria Swift":      "Aria_Swift_Ulvareth_Quiz_Result.csv",
		"  Zoë (the 2nd)": "Zo_the_2nd_Ulvareth_Quiz_Result.csv",
		"!!!":             "Ulvareth_Quiz_Result.csv",
	}

	for in, want := range tests {
		assert.Equal(t, want, Filename(in), in)
	}
}

func TestPayloadRoundTrip(t *testing.T) {
	sel := Selections{"q1": {"a": true}, "q7": {"c": true, "d": false}}
	r := Score(bank(t), sel)
	now := time.Date(2026, 10, 19, 12, 30, 0, 0, time.UTC)

	p := NewPayload("Aria", r, sel, now)
	assert.Equal(t, "2026-10-19T12:30:00.000Z", p.Timestamp)

	encoded, err := p.Encode()
	require.NoError(t, err)

	got, err := Decode(encoded)
	require.NoError(t, err)

	if diff := cmp.Diff(p, got); diff != "" {
		t.Errorf("payload mismatch (-want +got):\n%s", diff)
	}

	link, err := p.Link("http://localhost:8080/gm/abcd1234/import")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(link, "http://localhost:8080/gm/abcd1234/import?data="))

	got, err = Decode(link)
	require.NoError(t, err)
	assert.Equal(t, p.Player, got.Player)
	assert.Equal(t, sel, got.Selections)
}

const browserPayload = "eyJ0cyI6IjIwMjUtMDktMDFUMTA6MDA6MDAuMDAwWiIsInBsYXllciI6Ilpvw6siLCJwcmltYXJ5IjoiU2Vla2VycyIsInNlY29uZGFyeSI6IlNjaGVtZXJzIiwiU1dfdG90YWwiOjQsIlNFX3RvdGFsIjozMSwiU0NfdG90YWwiOjIyLCJTV19wY3QiOjcsIlNFX3BjdCI6NTQsIlNDX3BjdCI6MzksInNlbGVjdGlvbnMiOnsicTEiOnsiYiI6dHJ1ZSwiYyI6ZmFsc2V9fX0="

func TestDecodeBrowserPayload(t *testing.T) {
	inputs := map[string]string{
		"bare":      browserPayload,
		"unpadded":  strings.TrimRight(browserPayload, "="),
		"link":      "https://example.org/gm/#/import?data=" + browserPayload,
		"link tail": "http://localhost:5174/#/import?data=" + browserPayload + "&from=quiz",
		"pasted":    "  here you go: data=" + browserPayload + "\n",
	}

	for name, in := range inputs {
		t.Run(name, func(t *testing.T) {
			p, err := Decode(in)
			require.NoError(t, err)

			assert.Equal(t, "Zoë", p.Player)
			assert.Equal(t, "2025-09-01T10:00:00.000Z", p.Timestamp)
			assert.Equal(t, Selections{"q1": {"b": true, "c": false}}, p.Selections)

			assert.Equal(t,
				"Player,SW_total,SE_total,SC_total,Primary,Secondary,SW_pct,SE_pct,SC_pct\n"+
					`"Zoë","4","31","22","Seekers","Schemers","7","54","39"`+"\n",
				roster.Format([]roster.Row{p.Row()}))
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode("   ")
	assert.ErrorIs(t, err, ErrEmptyPayload)

	_, err = Decode("not base64 at all!")
	assert.ErrorIs(t, err, ErrBadPayload)

	_, err = Decode("bm90IGpzb24") // "not json"
	assert.ErrorIs(t, err, ErrBadPayload)
}

func TestExtract(t *testing.T) {
	assert.Equal(t, "ab+c/d", extract("ab c/d=="))
	assert.Equal(t, "ab+c/d", extract("x?data=ab%2Bc%2Fd%3D%3D"))
	assert.Equal(t, "ab+c/d", extract("ab-c_d"))
}

func TestPayloadRowMissingNumbers(t *testing.T) {
	p, err := Decode("eyJwbGF5ZXIiOiJBc2gifQ==")
	require.NoError(t, err)

	row := p.Row()

	assert.Equal(t, InboxKeys, row.Keys())
	assert.Equal(t, "Ash", row.Get("Player"))
	assert.Equal(t, "", row.Get("SW_total"))
	assert.Equal(t, "", row.Get("Primary"))
	require.NoError(t, roster.Validate([]roster.Row{row}))
}
