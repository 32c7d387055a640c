// Package erail decodes the legacy tilde/caret delimited text returned by the
// erail.in train lookup service.
//
// A response is a list of blocks separated by eight tildes. A block may carry a
// header, separated from its fields by "~^". Fields are separated by a single
// tilde and padded with empty fields that carry no meaning.
package erail

import "strings"

const (
	BlockDelimiter  = "~~~~~~~~"
	HeaderDelimiter = "~^"
	FieldDelimiter  = "~"
)

// SplitBlocks splits raw text into blocks, dropping blocks that are blank
func SplitBlocks(raw string) []string {
	parts := strings.Split(raw, BlockDelimiter)
	blocks := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			continue
		}
		blocks = append(blocks, p)
	}
	return blocks
}

// SplitHeader splits a block on the header delimiter
func SplitHeader(block string) []string {
	return strings.Split(block, HeaderDelimiter)
}

// Fields splits a segment on single tildes and drops empty fields
func Fields(segment string) []string {
	return splitNonEmpty(segment, func(s string) bool { return s == "" })
}

// NonBlankFields is Fields but also drops whitespace-only fields. The
// between-stations feed pads with spaces as well as empty fields.
func NonBlankFields(segment string) []string {
	return splitNonEmpty(segment, func(s string) bool { return strings.TrimSpace(s) == "" })
}

func splitNonEmpty(segment string, skip func(string) bool) []string {
	if segment == "" {
		return nil
	}
	parts := strings.Split(segment, FieldDelimiter)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if skip(p) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// field returns fields[i] or "" when the index is out of range
func field(fields []string, i int) string {
	if i < 0 || i >= len(fields) {
		return ""
	}
	return fields[i]
}
