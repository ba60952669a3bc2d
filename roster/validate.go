/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package roster

import (
	"errors"
)

var (
	ErrNoRows        = errors.New("we could not find any rows")
	ErrMissingPlayer = errors.New("missing required column: Player")
	ErrMissingScores = errors.New("missing SW/SE/SC totals or pct columns")
)

// ScoreCodes are the column prefixes of the three archetype scores.
var ScoreCodes = [...]string{"SW", "SE", "SC"}

// Validate checks that rows form a usable roster. The header of the first
// row is authoritative; nothing is accepted unless every check passes.
func Validate(rows []Row) error {
	if len(rows) == 0 {
		return ErrNoRows
	}

	head := rows[0]

	if !head.Has("Player") {
		return ErrMissingPlayer
	}

	for _, code := range ScoreCodes {
		if !head.Has(code+"_total") && !head.Has(code+"_pct") {
			return ErrMissingScores
		}
	}

	return nil
}
