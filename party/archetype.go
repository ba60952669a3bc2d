/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package party scores roster rows into archetypes and proposes party
// groupings from them.
package party

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Archetype is one of the three player styles.
type Archetype int

const (
	Swords Archetype = iota
	Seekers
	Schemers
)

// Archetypes lists every archetype in priority order. Ties in a ranking are
// broken in this order.
var Archetypes = [...]Archetype{Swords, Seekers, Schemers}

var (
	codes  = [...]string{"SW", "SE", "SC"}
	labels = [...]string{"Swords", "Seekers", "Schemers"}
)

// Code returns the short column prefix: SW, SE or SC.
func (a Archetype) Code() string {
	if a < Swords || a > Schemers {
		return ""
	}

	return codes[a]
}

// Label returns the human readable name.
func (a Archetype) Label() string {
	if a < Swords || a > Schemers {
		return ""
	}

	return labels[a]
}

func (a Archetype) String() string {
	return a.Label()
}

func (a Archetype) MarshalText() ([]byte, error) {
	if a.Code() == "" {
		return nil, fmt.Errorf("invalid archetype %d", int(a))
	}

	return []byte(a.Code()), nil
}

func (a *Archetype) UnmarshalText(text []byte) error {
	v, ok := ParseCode(string(text))
	if !ok {
		v, ok = FromText(string(text))
	}
	if !ok {
		return fmt.Errorf("unknown archetype %q", text)
	}

	*a = v

	return nil
}

// ParseCode maps SW, SE or SC (any case) to an archetype.
func ParseCode(code string) (Archetype, bool) {
	for _, a := range Archetypes {
		if strings.EqualFold(strings.TrimSpace(code), a.Code()) {
			return a, true
		}
	}

	return 0, false
}

// FromText maps free text such as "Swords" or "seeker" to an archetype by
// substring, checked in priority order.
func FromText(text string) (Archetype, bool) {
	t := strings.ToLower(text)

	switch {
	case strings.Contains(t, "sword"):
		return Swords, true
	case strings.Contains(t, "seek"):
		return Seekers, true
	case strings.Contains(t, "schem"):
		return Schemers, true
	}

	return 0, false
}

// Scores holds one number per archetype.
type Scores [3]float64

// Tally counts something per archetype.
type Tally [3]int

// Total sums the tally.
func (t Tally) Total() int {
	return t[Swords] + t[Seekers] + t[Schemers]
}

// ByLabel returns the tally keyed by archetype label.
func (t Tally) ByLabel() map[string]int {
	m := make(map[string]int, len(t))
	for _, a := range Archetypes {
		m[a.Label()] = t[a]
	}

	return m
}

// ByCode returns the tally keyed by archetype code.
func (t Tally) ByCode() map[string]int {
	m := make(map[string]int, len(t))
	for _, a := range Archetypes {
		m[a.Code()] = t[a]
	}

	return m
}

func (t Tally) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.ByCode())
}

func (s Scores) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]float64{
		Swords.Code():   s[Swords],
		Seekers.Code():  s[Seekers],
		Schemers.Code(): s[Schemers],
	})
}

func decodeByCode[T int | float64](data []byte, out *[3]T) error {
	var m map[string]T
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}

	var v [3]T
	for code, n := range m {
		a, ok := ParseCode(code)
		if !ok {
			return fmt.Errorf("unknown archetype %q", code)
		}
		v[a] = n
	}

	*out = v

	return nil
}

func (t *Tally) UnmarshalJSON(data []byte) error {
	return decodeByCode(data, (*[3]int)(t))
}

func (s *Scores) UnmarshalJSON(data []byte) error {
	return decodeByCode(data, (*[3]float64)(s))
}
