/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package roster reads and writes the player rosters handled by the GM tools:
// delimiter-sniffing CSV parsing, JSON-quoted CSV serialization, schema
// validation and the bundled sample rosters.
package roster

import (
	"slices"

	"golang.org/x/text/cases"
)

// header is the column layout shared by every row of one parsed table.
type header struct {
	names []string
	fold  map[string]int
}

func newHeader(names []string) (*header, []int) {
	h := &header{
		names: make([]string, 0, len(names)),
		fold:  make(map[string]int, len(names)),
	}

	folder := cases.Fold()
	exact := make(map[string]int, len(names))
	slots := make([]int, len(names))

	for i, name := range names {
		slot, ok := exact[name]
		if !ok {
			slot = len(h.names)
			exact[name] = slot
			h.names = append(h.names, name)
		}
		slots[i] = slot
	}

	// Later columns win a case-insensitive collision.
	for slot, name := range h.names {
		h.fold[folder.String(name)] = slot
	}

	return h, slots
}

func (h *header) slot(name string) (int, bool) {
	if h == nil {
		return 0, false
	}

	i, ok := h.fold[cases.Fold().String(name)]

	return i, ok
}

// Row is a single roster entry: column name to string value, with header order
// preserved and case-insensitive lookup.
type Row struct {
	h      *header
	values []string
}

// NewRow builds a row from parallel key and value slices. Missing values are
// empty strings; duplicate keys keep their first position and last value.
func NewRow(keys, values []string) Row {
	h, slots := newHeader(keys)

	return h.row(slots, values)
}

func (h *header) row(slots []int, values []string) Row {
	r := Row{
		h:      h,
		values: make([]string, len(h.names)),
	}

	for i, slot := range slots {
		if i < len(values) {
			r.values[slot] = values[i]
		}
	}

	return r
}

// Keys returns the column names in header order.
func (r Row) Keys() []string {
	if r.h == nil {
		return nil
	}

	return append([]string(nil), r.h.names...)
}

// Len returns the number of columns.
func (r Row) Len() int {
	return len(r.values)
}

// Lookup returns the value stored under name, ignoring case.
func (r Row) Lookup(name string) (string, bool) {
	i, ok := r.h.slot(name)
	if !ok {
		return "", false
	}

	return r.values[i], true
}

// Get returns the value stored under name, ignoring case, or "".
func (r Row) Get(name string) string {
	v, _ := r.Lookup(name)

	return v
}

// exact returns the value stored under name, matching case.
func (r Row) exact(name string) string {
	if r.h == nil {
		return ""
	}

	if i := slices.Index(r.h.names, name); i >= 0 {
		return r.values[i]
	}

	return ""
}

// Has reports whether the row carries a column called name, ignoring case.
func (r Row) Has(name string) bool {
	_, ok := r.h.slot(name)

	return ok
}

// Map returns a copy of the row keyed by the original column names.
func (r Row) Map() map[string]string {
	m := make(map[string]string, len(r.values))
	for i, name := range r.Keys() {
		m[name] = r.values[i]
	}

	return m
}
