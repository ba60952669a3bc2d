/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package party

// Board holds a suggested grouping together with a working copy the GM can
// rearrange by hand. The suggestion itself is never modified, so edits can
// always be thrown away.
type Board struct {
	suggested []Group
	groups    []Group
	edited    bool
}

// NewBoard starts a board from a computed suggestion.
func NewBoard(groups []Group) *Board {
	b := &Board{suggested: cloneGroups(groups)}
	b.Reset()

	return b
}

// Groups returns a copy of the current working groups.
func (b *Board) Groups() []Group {
	return cloneGroups(b.groups)
}

// Suggested returns a copy of the original suggestion.
func (b *Board) Suggested() []Group {
	return cloneGroups(b.suggested)
}

// Edited reports whether any move has been applied since the last reset.
func (b *Board) Edited() bool {
	return b.edited
}

// Reset discards every manual move.
func (b *Board) Reset() {
	b.groups = cloneGroups(b.suggested)
	b.edited = false
}

// Move takes the member at position member of group from and appends it to
// group to. With capacity > 0 the move is refused once the destination holds
// capacity members. Invalid handles leave the board untouched. It reports
// whether anything changed.
func (b *Board) Move(from, member, to, capacity int) bool {
	if from < 0 || from >= len(b.groups) || to < 0 || to >= len(b.groups) {
		return false
	}

	src, dst := &b.groups[from], &b.groups[to]

	if member < 0 || member >= len(src.Members) {
		return false
	}

	if capacity > 0 && len(dst.Members) >= capacity {
		return false
	}

	m := src.Members[member]
	src.Members = append(src.Members[:member:member], src.Members[member+1:]...)
	dst.Members = append(dst.Members, m)

	restamp(b.groups)
	b.edited = true

	return true
}
