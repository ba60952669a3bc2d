/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package roster

import (
	"embed"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
)

//go:embed samples/*.csv
var samples embed.FS

var ErrUnknownSample = errors.New("unknown sample roster")

var sampleNames = []string{"balanced", "skewed", "messy", "percents", "overflow"}

var (
	overflowFirst = []string{"Asha", "Bryn", "Corin", "Dara", "Evan", "Finn", "Gwen", "Hale", "Ira", "Jori", "Kade", "Lena"}
	overflowLast  = []string{"Ashfall", "Bright", "Cole", "Dorn", "Ever", "Frost", "Gale", "Hearth", "Ivory", "Jules", "Keene", "Lark"}
)

// SampleNames lists the bundled rosters in display order.
func SampleNames() []string {
	return append([]string(nil), sampleNames...)
}

// Sample returns the named sample roster as CSV text. The generated overflow
// roster draws its scores from src.
func Sample(name string, src *rand.Rand) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))

	if name == "overflow" {
		return Overflow(src), nil
	}

	data, err := samples.ReadFile("samples/" + name + ".csv")
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownSample, name)
	}

	return string(data), nil
}

// Overflow generates 24 players with random totals between 0 and 7, enough
// to spill over several parties at any size.
func Overflow(src *rand.Rand) string {
	if src == nil {
		src = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	var sb strings.Builder

	sb.WriteString("Player,SW_total,SE_total,SC_total\n")

	for i := range 24 {
		first := overflowFirst[i%len(overflowFirst)]
		last := overflowLast[(i/len(overflowFirst))%len(overflowLast)]

		fmt.Fprintf(&sb, "%s %s,%d,%d,%d\n", first, last, src.IntN(8), src.IntN(8), src.IntN(8))
	}

	return sb.String()
}
