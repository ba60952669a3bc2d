/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package roster

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
)

// BOM is prepended to CSV downloads so spreadsheet tools pick UTF-8.
const BOM = "\ufeff"

// quote renders v as a JSON string literal. Values are not CSV-escaped: an
// embedded quote becomes \" rather than "".
func quote(v string) string {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(v); err != nil {
		return `""`
	}

	return strings.TrimSuffix(buf.String(), "\n")
}

// Write serializes rows as comma-separated text using the keys of the first
// row as the header line. Values are matched to columns by exact key.
func Write(w io.Writer, rows []Row) error {
	if len(rows) == 0 {
		return nil
	}

	keys := rows[0].Keys()

	if _, err := io.WriteString(w, strings.Join(keys, ",")+"\n"); err != nil {
		return err
	}

	fields := make([]string, len(keys))

	for _, row := range rows {
		for i, key := range keys {
			if row.h == rows[0].h {
				fields[i] = quote(row.values[i])
			} else {
				fields[i] = quote(row.exact(key))
			}
		}

		if _, err := io.WriteString(w, strings.Join(fields, ",")+"\n"); err != nil {
			return err
		}
	}

	return nil
}

// Format is Write into a string.
func Format(rows []Row) string {
	var sb strings.Builder

	_ = Write(&sb, rows)

	return sb.String()
}
