// Package beeline builds the command lines for a beeline-style query client
// running on a Hadoop edge node.
package beeline

import (
	"fmt"
	"strings"
)

// Format is the client output format token. The converter's delimiter must
// match the chosen format.
type Format string

const (
	FormatCSV2 Format = "csv2"
	FormatTSV2 Format = "tsv2"
	FormatDSV  Format = "dsv"
)

// DefaultDSVDelimiter mirrors the client's default for --outputformat=dsv.
const DefaultDSVDelimiter = "|"

// Delimiter returns the field delimiter the client emits for this format.
func (f Format) Delimiter(dsvDelimiter string) string {
	switch f {
	case FormatTSV2:
		return "\t"
	case FormatDSV:
		if dsvDelimiter != "" {
			return dsvDelimiter
		}
		return DefaultDSVDelimiter
	default:
		return ","
	}
}

// Valid reports whether f is a known output format.
func (f Format) Valid() bool {
	switch f {
	case FormatCSV2, FormatTSV2, FormatDSV:
		return true
	}
	return false
}

// Command describes how to invoke the query client on the edge node.
type Command struct {
	// Binary is the client executable, "beeline" by default.
	Binary string
	// Endpoint is the JDBC URL passed to -u.
	Endpoint string
	Format   Format
	// DSVDelimiter only applies when Format is dsv.
	DSVDelimiter string
}

// NewCommand returns a Command with defaults applied.
func NewCommand(endpoint string, format Format) (Command, error) {
	if endpoint == "" {
		return Command{}, fmt.Errorf("endpoint cannot be empty")
	}
	if format == "" {
		format = FormatCSV2
	}
	if !format.Valid() {
		return Command{}, fmt.Errorf("unknown output format: %s", format)
	}
	return Command{
		Binary:   "beeline",
		Endpoint: endpoint,
		Format:   format,
	}, nil
}

// Delimiter returns the field delimiter for the configured format.
func (c Command) Delimiter() string {
	return c.Format.Delimiter(c.DSVDelimiter)
}

// Query renders the full command line for an inline query.
func (c Command) Query(sql string) string {
	return fmt.Sprintf("%s -e %s", c.base(), shellQuote(sql))
}

// ScriptFile renders the command line for a query script already present on
// the edge node.
func (c Command) ScriptFile(remotePath string) string {
	return fmt.Sprintf("%s -f %s", c.base(), shellQuote(remotePath))
}

func (c Command) base() string {
	binary := c.Binary
	if binary == "" {
		binary = "beeline"
	}
	parts := []string{
		binary,
		"-u", shellQuote(c.Endpoint),
		"--silent=true",
		fmt.Sprintf("--outputformat=%s", c.Format),
	}
	if c.Format == FormatDSV && c.DSVDelimiter != "" {
		parts = append(parts, fmt.Sprintf("--delimiterForDSV=%s", shellQuote(c.DSVDelimiter)))
	}
	return strings.Join(parts, " ")
}

// shellQuote quotes an argument for a POSIX shell. Safe characters pass
// through unquoted; everything else is single-quoted with the standard
// `'\''` escape for embedded single quotes.
func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	safe := func(r rune) bool {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return true
		}
		switch r {
		case '-', '_', '.', '/', '@', ':', ',', '+', '=':
			return true
		}
		return false
	}
	needsQuoting := strings.IndexFunc(s, func(r rune) bool { return !safe(r) }) >= 0
	if !needsQuoting {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
