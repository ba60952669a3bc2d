/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package roster

import (
	"io"
	"strings"
	"unicode"
)

var delimiters = []byte{',', ';', '\t'}

// sniffDelimiter picks the candidate that splits line into the most fields.
// Ties go to the earlier candidate.
func sniffDelimiter(line string) byte {
	best, bestCount := delimiters[0], -1

	for _, d := range delimiters {
		n := strings.Count(line, string(d)) + 1
		if n > bestCount {
			best, bestCount = d, n
		}
	}

	return best
}

func normalize(text string) string {
	text = strings.TrimPrefix(text, BOM)
	text = strings.ReplaceAll(text, "\r\n", "\n")

	return strings.ReplaceAll(text, "\r", "\n")
}

func firstNonBlank(text string) string {
	for line := range strings.SplitSeq(text, "\n") {
		if trim(line) != "" {
			return line
		}
	}

	return ""
}

// scan splits text into raw records. It never fails: an unbalanced quote just
// leaves the scanner in quoted mode until the end of input.
func scan(text string, delim byte) [][]string {
	var (
		records [][]string
		record  []string
		field   strings.Builder
		quoted  bool
	)

	for i := 0; i < len(text); i++ {
		ch := text[i]

		if quoted {
			if ch == '"' {
				if i+1 < len(text) && text[i+1] == '"' {
					field.WriteByte('"')
					i++

					continue
				}

				quoted = false

				continue
			}

			field.WriteByte(ch)

			continue
		}

		switch ch {
		case '"':
			quoted = true
		case delim:
			record = append(record, field.String())
			field.Reset()
		case '\n':
			record = append(record, field.String())
			records = append(records, record)
			record = nil
			field.Reset()
		default:
			field.WriteByte(ch)
		}
	}

	record = append(record, field.String())

	return append(records, record)
}

// IsSpace reports whether r is trimmed from cells: Unicode white space
// other than NEL, and stray byte order marks.
func IsSpace(r rune) bool {
	return (unicode.IsSpace(r) && r != '\u0085') || r == '\ufeff'
}

func trim(s string) string {
	return strings.TrimFunc(s, IsSpace)
}

func blank(record []string) bool {
	for _, v := range record {
		if trim(v) != "" {
			return false
		}
	}

	return true
}

// Parse turns delimited text into rows keyed by the trimmed header line.
func Parse(text string) []Row {
	text = normalize(text)

	records := scan(text, sniffDelimiter(firstNonBlank(text)))

	for len(records) > 0 && blank(records[0]) {
		records = records[1:]
	}
	for len(records) > 0 && blank(records[len(records)-1]) {
		records = records[:len(records)-1]
	}

	if len(records) == 0 {
		return []Row{}
	}

	names := make([]string, len(records[0]))
	for i, name := range records[0] {
		names[i] = trim(name)
	}

	h, slots := newHeader(names)

	rows := make([]Row, 0, len(records)-1)

	for _, record := range records[1:] {
		if len(record) == 1 && trim(record[0]) == "" {
			continue
		}

		values := make([]string, len(names))
		for i := range names {
			if i < len(record) {
				values[i] = trim(record[i])
			}
		}

		rows = append(rows, h.row(slots, values))
	}

	return rows
}

// ParseReader reads all of r and parses it. Only read errors are returned.
func ParseReader(r io.Reader) ([]Row, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	return Parse(string(data)), nil
}
