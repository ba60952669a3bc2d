/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package roster

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func maps(rows []Row) []map[string]string {
	out := make([]map[string]string, len(rows))
	for i, r := range rows {
		out[i] = r.Map()
	}

	return out
}

func TestSniffDelimiter(t *testing.T) {
	tests := []struct {
		name string
		line string
		want byte
	}{
		{"comma", "Player,SW_total,SE_total", ','},
		{"semicolon", "Player; SW_total ;SE_total;SC_total", ';'},
		{"tab", "Player\tSW_total\tSE_total", '\t'},
		{"tie prefers comma", "a,b;c", ','},
		{"empty", "", ','},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sniffDelimiter(tt.line))
		})
	}
}

func TestParseSemicolonHeader(t *testing.T) {
	rows := Parse("Player; SW_total ;SE_total;SC_total\n\"A\";3;1;2\n\"B\";0;4;1\n\n")

	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Player", "SW_total", "SE_total", "SC_total"}, rows[0].Keys())
	assert.Equal(t, "A", rows[0].Get("Player"))
	assert.Equal(t, "3", rows[0].Get("sw_total"))
	assert.Equal(t, "4", rows[1].Get("SE_TOTAL"))
}

func TestParseQuotedFields(t *testing.T) {
	rows := Parse("Player,Note\n\"Doe, Jane\",\"said \"\"hi\"\"\"\n\"multi\nline\",x\n")

	require.Len(t, rows, 2)
	assert.Equal(t, "Doe, Jane", rows[0].Get("Player"))
	assert.Equal(t, `said "hi"`, rows[0].Get("Note"))
	assert.Equal(t, "multi\nline", rows[1].Get("Player"))
}

func TestParseLineEndingsAndBOM(t *testing.T) {
	want := maps(Parse("Player,SW_total\nA,1\nB,2\n"))

	for name, text := range map[string]string{
		"crlf": "Player,SW_total\r\nA,1\r\nB,2\r\n",
		"cr":   "Player,SW_total\rA,1\rB,2\r",
		"bom":  BOM + "Player,SW_total\nA,1\nB,2\n",
	} {
		t.Run(name, func(t *testing.T) {
			if diff := cmp.Diff(want, maps(Parse(text))); diff != "" {
				t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseTrimsBlankRowsAtEnds(t *testing.T) {
	body := "Player,SW_total\nA,1\n,\nB,2"
	padded := "\n  \n , \n" + body + "\n\n ,  \n\n"

	if diff := cmp.Diff(maps(Parse(body)), maps(Parse(padded))); diff != "" {
		t.Errorf("padded parse mismatch (-want +got):\n%s", diff)
	}

	// The blank row in the middle has two fields, so it survives.
	rows := Parse(body)
	require.Len(t, rows, 3)
	assert.Equal(t, "", rows[1].Get("Player"))
}

func TestParseSkipsStrayBlankLines(t *testing.T) {
	rows := Parse("Player,SW_total\n\nA,1\n   \nB,2\n")

	require.Len(t, rows, 2)
	assert.Equal(t, "A", rows[0].Get("Player"))
	assert.Equal(t, "B", rows[1].Get("Player"))
}

func TestParseStrayByteOrderMarks(t *testing.T) {
	rows := Parse("Player,SW_total\nA,\ufeff1\ufeff\n\ufeff\nB,\ufeff\n")

	require.Len(t, rows, 2)
	assert.Equal(t, "1", rows[0].Get("SW_total"))
	assert.Equal(t, "B", rows[1].Get("Player"))
	assert.Equal(t, "", rows[1].Get("SW_total"))
}

func TestParseMissingTrailingFields(t *testing.T) {
	rows := Parse("Player,SW_total,SE_total\nA\nB,1\n")

	require.Len(t, rows, 2)
	assert.Equal(t, map[string]string{"Player": "A", "SW_total": "", "SE_total": ""}, rows[0].Map())
	assert.Equal(t, "1", rows[1].Get("SW_total"))
	assert.Equal(t, "", rows[1].Get("SE_total"))
}

func TestParseEmpty(t *testing.T) {
	for _, text := range []string{"", "\n\n", " , \n\t\n", BOM} {
		assert.Empty(t, Parse(text))
	}
}

func TestParseHeaderOnly(t *testing.T) {
	assert.Empty(t, Parse("Player,SW_total\n"))
}

func TestParseUnbalancedQuoteDoesNotFail(t *testing.T) {
	rows := Parse("Player,SW_total\n\"A,1\nB,2\n")

	require.Len(t, rows, 1)
	assert.Equal(t, "A,1\nB,2", rows[0].Get("Player"))
}

func TestParseMessySample(t *testing.T) {
	text, err := Sample("messy", nil)
	require.NoError(t, err)

	rows := Parse(text)

	require.Len(t, rows, 5)
	assert.Equal(t, []string{"Player", "SW_total", "SE_total", "SC_total", "Primary", "Secondary"}, rows[0].Keys())
	assert.Equal(t, "Ivo Stormborn", rows[0].Get("player"))
	assert.Equal(t, "Seekers", rows[1].Get("Secondary"))
	assert.Equal(t, "", rows[3].Get("Secondary"))
}

func TestParseReader(t *testing.T) {
	rows, err := ParseReader(strings.NewReader("Player\tSW_pct\nA\t0.5\n"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "0.5", rows[0].Get("sw_pct"))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("boom") }

func TestParseReaderError(t *testing.T) {
	_, err := ParseReader(failingReader{})
	require.Error(t, err)
}

func TestRowLookup(t *testing.T) {
	r := NewRow([]string{"Player", "player", "SW_total", "Player"}, []string{"a", "b", "3", "c"})

	assert.Equal(t, []string{"Player", "player", "SW_total"}, r.Keys())
	assert.Equal(t, "c", r.Map()["Player"], "duplicate key keeps the last value")
	assert.Equal(t, "b", r.Get("PLAYER"), "case-insensitive collision resolves to the later column")
	assert.Equal(t, "b", r.Get("Player"))
	assert.True(t, r.Has("sw_TOTAL"))
	assert.False(t, r.Has("SE_total"))

	_, ok := r.Lookup("missing")
	assert.False(t, ok)

	var zero Row
	assert.Equal(t, "", zero.Get("Player"))
	assert.Nil(t, zero.Keys())
}
