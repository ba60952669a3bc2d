/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package quiz

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Seednode/ulvareth/party"
	"github.com/Seednode/ulvareth/roster"
)

// timestampLayout matches what browsers produce for toISOString.
const timestampLayout = "2006-01-02T15:04:05.000Z"

var (
	ErrEmptyPayload = errors.New("paste a link or base64 payload first")
	ErrBadPayload   = errors.New("that did not look like a valid Ulvareth link or payload")
)

// Payload is a quiz result as carried in a share link.
type Payload struct {
	Timestamp  string     `json:"ts"`
	Player     string     `json:"player"`
	Primary    string     `json:"primary"`
	Secondary  string     `json:"secondary"`
	SWTotal    *float64   `json:"SW_total"`
	SETotal    *float64   `json:"SE_total"`
	SCTotal    *float64   `json:"SC_total"`
	SWPct      *float64   `json:"SW_pct"`
	SEPct      *float64   `json:"SE_pct"`
	SCPct      *float64   `json:"SC_pct"`
	Selections Selections `json:"selections,omitempty"`
}

func ptr(v int) *float64 {
	f := float64(v)

	return &f
}

// NewPayload packs a scored result.
func NewPayload(player string, r Result, sel Selections, now time.Time) Payload {
	return Payload{
		Timestamp:  now.UTC().Format(timestampLayout),
		Player:     playerName(player),
		Primary:    r.Primary.Label(),
		Secondary:  r.Secondary.Label(),
		SWTotal:    ptr(r.Totals[party.Swords]),
		SETotal:    ptr(r.Totals[party.Seekers]),
		SCTotal:    ptr(r.Totals[party.Schemers]),
		SWPct:      ptr(r.Pct[party.Swords]),
		SEPct:      ptr(r.Pct[party.Seekers]),
		SCPct:      ptr(r.Pct[party.Schemers]),
		Selections: sel,
	}
}

// Encode returns the payload as base64 encoded JSON.
func (p Payload) Encode() (string, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(p); err != nil {
		return "", err
	}

	return base64.StdEncoding.EncodeToString(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}

// Link appends the encoded payload to base as its data query parameter.
func (p Payload) Link(base string) (string, error) {
	data, err := p.Encode()
	if err != nil {
		return "", err
	}

	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}

	q := u.Query()
	q.Set("data", data)
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// extract pulls the base64 text out of whatever was pasted: a bare payload,
// a full link, or any text containing data=.
func extract(s string) string {
	if _, after, ok := strings.Cut(s, "data="); ok {
		s = after
		if i := strings.IndexAny(s, "&#"); i >= 0 {
			s = s[:i]
		}
	}

	if strings.Contains(s, "%") {
		if unescaped, err := url.QueryUnescape(s); err == nil {
			s = unescaped
		}
	}

	// Query strings turn an unescaped + into a space.
	s = strings.ReplaceAll(s, " ", "+")

	s = strings.NewReplacer("-", "+", "_", "/").Replace(s)

	return strings.TrimRight(s, "=")
}

// Decode reads a payload from a share link or bare base64 text.
func Decode(s string) (Payload, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Payload{}, ErrEmptyPayload
	}

	raw, err := base64.RawStdEncoding.DecodeString(extract(s))
	if err != nil {
		return Payload{}, fmt.Errorf("%w: %w", ErrBadPayload, err)
	}

	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Payload{}, fmt.Errorf("%w: %w", ErrBadPayload, err)
	}

	return p, nil
}

// InboxKeys is the column layout of a row imported from a share link.
var InboxKeys = []string{
	"Player",
	"SW_total", "SE_total", "SC_total",
	"Primary", "Secondary",
	"SW_pct", "SE_pct", "SC_pct",
}

func formatNumber(v *float64) string {
	if v == nil {
		return ""
	}

	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// Row converts the payload into a roster row. Missing numbers stay blank.
func (p Payload) Row() roster.Row {
	return roster.NewRow(InboxKeys, []string{
		playerName(p.Player),
		formatNumber(p.SWTotal),
		formatNumber(p.SETotal),
		formatNumber(p.SCTotal),
		p.Primary,
		p.Secondary,
		formatNumber(p.SWPct),
		formatNumber(p.SEPct),
		formatNumber(p.SCPct),
	})
}
