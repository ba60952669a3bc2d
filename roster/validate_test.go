/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package roster

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		text string
		want error
	}{
		{"empty", "", ErrNoRows},
		{"header only", "Player,SW_total,SE_total,SC_total\n", ErrNoRows},
		{"no player column", "Name,SW_total,SE_total,SC_total\nA,1,2,3\n", ErrMissingPlayer},
		{"missing one archetype", "Player,SW_total,SE_total\nA,1,2\n", ErrMissingScores},
		{"totals", "Player,SW_total,SE_total,SC_total\nA,1,2,3\n", nil},
		{"percentages", "player,sw_pct,se_pct,sc_pct\nA,0.5,0.3,0.2\n", nil},
		{"mixed", "PLAYER,SW_total,SE_pct,SC_total\nA,1,0.2,3\n", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(Parse(tt.text))
			if tt.want == nil {
				assert.NoError(t, err)

				return
			}

			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestValidateSamples(t *testing.T) {
	for _, name := range SampleNames() {
		t.Run(name, func(t *testing.T) {
			text, err := Sample(name, nil)
			assert.NoError(t, err)
			assert.NoError(t, Validate(Parse(text)))
		})
	}
}
