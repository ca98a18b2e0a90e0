// Package tabular reads and writes tab delimited report text
package tabular

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	perr "reportrelay/internal/platform/errors"
	pstrings "reportrelay/internal/platform/strings"
)

// Delimiter separates fields on a line
const Delimiter = "\t"

const bom = "\uFEFF"

// Field is one header/value pair of a record
type Field struct {
	Name  string
	Value string
}

// Record is one data line keyed by normalized header, in header order
type Record []Field

// Get returns the value for a normalized header name
func (r Record) Get(name string) (string, bool) {
	for _, f := range r {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// Value returns the value for name or the empty string
func (r Record) Value(name string) string {
	v, _ := r.Get(name)
	return v
}

// Names lists the record headers in order
func (r Record) Names() []string {
	out := make([]string, len(r))
	for i, f := range r {
		out[i] = f.Name
	}
	return out
}

// Map copies the record into a map for JSON output
func (r Record) Map() map[string]string {
	out := make(map[string]string, len(r))
	for _, f := range r {
		out[f.Name] = f.Value
	}
	return out
}

// set keeps the first position of a repeated header and the last value
func (r Record) set(name, value string) Record {
	for i := range r {
		if r[i].Name == name {
			r[i].Value = value
			return r
		}
	}
	return append(r, Field{Name: name, Value: value})
}

// Decode turns raw report text into records
// it never fails: ragged rows are padded with "" and extra cells are dropped
// empty and header only input yield an empty slice
func Decode(raw string) []Record {
	lines := splitLines(StripBOM(raw))
	if len(lines) < 2 {
		return []Record{}
	}

	header := strings.Split(lines[0], Delimiter)
	for i, h := range header {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}

	out := make([]Record, 0, len(lines)-1)
	for _, line := range lines[1:] {
		cells := strings.Split(line, Delimiter)
		rec := make(Record, 0, len(header))
		for i, h := range header {
			v := ""
			if i < len(cells) {
				v = strings.TrimSpace(cells[i])
			}
			rec = rec.set(h, v)
		}
		out = append(out, rec)
	}
	return out
}

// DecodeStrict is Decode that refuses content which is not text at all
// invalid UTF-8 and NUL bytes are the only failures
func DecodeStrict(raw string) ([]Record, error) {
	body := strings.TrimPrefix(raw, bom)
	if !utf8.ValidString(body) {
		return nil, perr.Newf(perr.ErrorCodeDecode, "tabular content is not valid utf-8")
	}
	if i := strings.IndexByte(body, 0); i >= 0 {
		return nil, perr.Newf(perr.ErrorCodeDecode, "tabular content has a NUL byte at offset %d", i)
	}
	return Decode(body), nil
}

// Encode renders a header and rows as tab delimited text without a trailing newline
// tabs and line breaks inside cells become single spaces
func Encode(header []string, rows [][]string) string {
	var b strings.Builder
	writeLine(&b, header)
	for _, row := range rows {
		b.WriteByte('\n')
		writeLine(&b, row)
	}
	return b.String()
}

// StripBOM removes a leading byte order mark and decodes to UTF-8
// UTF-16 input is recognised by its mark; invalid UTF-8 bytes become U+FFFD with or without a mark
func StripBOM(raw string) string {
	out, _, err := transform.String(unicode.BOMOverride(unicode.UTF8.NewDecoder()), raw)
	if err != nil {
		return strings.ToValidUTF8(strings.TrimPrefix(raw, bom), "\uFFFD")
	}
	return out
}

func writeLine(b *strings.Builder, cells []string) {
	for i, c := range cells {
		if i > 0 {
			b.WriteString(Delimiter)
		}
		b.WriteString(pstrings.Flatten(c))
	}
}

// splitLines splits on LF, trims a trailing CR and drops empty lines
func splitLines(s string) []string {
	raw := strings.Split(s, "\n")
	out := raw[:0]
	for _, l := range raw {
		l = strings.TrimSuffix(l, "\r")
		if l == "" {
			continue
		}
		out = append(out, l)
	}
	return out
}
