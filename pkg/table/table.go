// Package table converts the delimited text a query client prints into an
// in-memory tabular result.
package table

import (
	"bufio"
	"fmt"
	"strings"
)

// Row maps column name to value.
type Row map[string]string

// Result is one parsed query result. Columns is populated once at parse time
// and is the single source of column order; it is valid even when Rows is
// empty.
type Result struct {
	Columns []string
	Rows    []Row
}

// Empty reports whether the result has no data rows.
func (r *Result) Empty() bool {
	return len(r.Rows) == 0
}

// Records returns the rows as ordered value slices, following Columns.
func (r *Result) Records() [][]string {
	records := make([][]string, 0, len(r.Rows))
	for _, row := range r.Rows {
		record := make([]string, len(r.Columns))
		for i, col := range r.Columns {
			record[i] = row[col]
		}
		records = append(records, record)
	}
	return records
}

// RaggedPolicy decides what happens when a data row's field count differs
// from the header's.
type RaggedPolicy int

const (
	// RaggedError rejects the whole parse with a ParseError. Default.
	RaggedError RaggedPolicy = iota
	// RaggedPad fills short rows with empty strings and rejects long ones.
	RaggedPad
	// RaggedTruncate drops fields beyond the header width and pads short rows.
	RaggedTruncate
)

// ParseRaggedPolicy maps a config token to a RaggedPolicy.
func ParseRaggedPolicy(s string) (RaggedPolicy, error) {
	switch s {
	case "", "error":
		return RaggedError, nil
	case "pad":
		return RaggedPad, nil
	case "truncate":
		return RaggedTruncate, nil
	}
	return RaggedError, fmt.Errorf("unknown ragged row policy: %q", s)
}

// ParseError describes a line that could not be converted.
type ParseError struct {
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

// Normalize prepares raw client output for line splitting. The client emits
// a literal backslash-n two-character sequence instead of a real line break
// once its output has been stringified; every occurrence becomes a newline.
// CRLF is folded to LF as well.
func Normalize(raw []byte) string {
	s := strings.ReplaceAll(string(raw), `\n`, "\n")
	return strings.ReplaceAll(s, "\r\n", "\n")
}

// Parse converts raw client output into a Result. The first normalized line
// is the header; each subsequent non-empty line is one data row split on
// delim. Empty input yields an empty Result, not an error.
func Parse(raw []byte, delim string, policy RaggedPolicy) (*Result, error) {
	if delim == "" {
		delim = ","
	}

	result := &Result{}
	scanner := bufio.NewScanner(strings.NewReader(Normalize(raw)))
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := scanner.Text()

		if result.Columns == nil {
			if strings.TrimSpace(line) == "" {
				// Leading blank lines before the header carry nothing.
				continue
			}
			result.Columns = strings.Split(line, delim)
			continue
		}

		if line == "" {
			continue
		}

		fields := strings.Split(line, delim)
		fields, err := conformFields(fields, len(result.Columns), policy, lineNum)
		if err != nil {
			return nil, err
		}

		row := make(Row, len(result.Columns))
		for i, col := range result.Columns {
			row[col] = fields[i]
		}
		result.Rows = append(result.Rows, row)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading output: %w", err)
	}

	if result.Columns == nil {
		result.Columns = []string{}
	}
	return result, nil
}

func conformFields(fields []string, width int, policy RaggedPolicy, lineNum int) ([]string, error) {
	switch {
	case len(fields) == width:
		return fields, nil
	case len(fields) < width && (policy == RaggedPad || policy == RaggedTruncate):
		padded := make([]string, width)
		copy(padded, fields)
		return padded, nil
	case len(fields) > width && policy == RaggedTruncate:
		return fields[:width], nil
	}
	return nil, &ParseError{
		Line: lineNum,
		Reason: fmt.Sprintf(
			"expected %d fields, got %d", width, len(fields),
		),
	}
}
