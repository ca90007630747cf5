package table

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEscapedSeparators(t *testing.T) {
	raw := []byte(`a,b\n1,2\n3,4`)
	normalized := Normalize(raw)

	// N escaped separators must yield N+1 logical lines.
	assert.Equal(t, strings.Count(string(raw), `\n`)+1, len(strings.Split(normalized, "\n")))
	assert.Equal(t, "a,b\n1,2\n3,4", normalized)
}

func TestNormalizeCRLF(t *testing.T) {
	assert.Equal(t, "a,b\n1,2\n", Normalize([]byte("a,b\r\n1,2\r\n")))
}

func TestParse(t *testing.T) {
	result, err := Parse([]byte("a,b\n1,2\n3,4"), ",", RaggedError)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, result.Columns)
	assert.Equal(t, []Row{
		{"a": "1", "b": "2"},
		{"a": "3", "b": "4"},
	}, result.Rows)
}

func TestParseEscapedSeparatorsMatchesRealOnes(t *testing.T) {
	escaped, err := Parse([]byte(`a,b\n1,2\n3,4`), ",", RaggedError)
	require.NoError(t, err)

	plain, err := Parse([]byte("a,b\n1,2\n3,4"), ",", RaggedError)
	require.NoError(t, err)

	assert.Equal(t, plain, escaped)
}

func TestParseEmptyInput(t *testing.T) {
	result, err := Parse(nil, ",", RaggedError)
	require.NoError(t, err)
	assert.True(t, result.Empty())
	assert.Empty(t, result.Columns)
	assert.Empty(t, result.Rows)
}

func TestParseHeaderOnly(t *testing.T) {
	result, err := Parse([]byte("a,b\n"), ",", RaggedError)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, result.Columns)
	assert.True(t, result.Empty())
}

func TestParseSkipsBlankDataLines(t *testing.T) {
	result, err := Parse([]byte("a,b\n1,2\n\n3,4\n"), ",", RaggedError)
	require.NoError(t, err)
	assert.Len(t, result.Rows, 2)
}

func TestParseTabDelimiter(t *testing.T) {
	result, err := Parse([]byte("a\tb\n1\t2\n"), "\t", RaggedError)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, result.Columns)
	assert.Equal(t, Row{"a": "1", "b": "2"}, result.Rows[0])
}

func TestParseRaggedRowDefaultFails(t *testing.T) {
	_, err := Parse([]byte("a,b\n1,2,3\n"), ",", RaggedError)
	require.Error(t, err)

	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, 2, parseErr.Line)
	assert.Contains(t, parseErr.Reason, "expected 2 fields, got 3")
}

func TestParseRaggedRowPad(t *testing.T) {
	result, err := Parse([]byte("a,b,c\n1,2\n"), ",", RaggedPad)
	require.NoError(t, err)
	assert.Equal(t, Row{"a": "1", "b": "2", "c": ""}, result.Rows[0])

	// Pad does not permit long rows.
	_, err = Parse([]byte("a,b\n1,2,3\n"), ",", RaggedPad)
	assert.Error(t, err)
}

func TestParseRaggedRowTruncate(t *testing.T) {
	result, err := Parse([]byte("a,b\n1,2,3\n4\n"), ",", RaggedTruncate)
	require.NoError(t, err)
	assert.Equal(t, Row{"a": "1", "b": "2"}, result.Rows[0])
	assert.Equal(t, Row{"a": "4", "b": ""}, result.Rows[1])
}

func TestParseRaggedPolicyTokens(t *testing.T) {
	for token, want := range map[string]RaggedPolicy{
		"":         RaggedError,
		"error":    RaggedError,
		"pad":      RaggedPad,
		"truncate": RaggedTruncate,
	} {
		got, err := ParseRaggedPolicy(token)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseRaggedPolicy("drop")
	assert.Error(t, err)
}

func TestColumnOrderStable(t *testing.T) {
	result, err := Parse([]byte("b,a\n2,1\n4,3\n"), ",", RaggedError)
	require.NoError(t, err)

	assert.Equal(t, []string{"b", "a"}, result.Columns)
	assert.Equal(t, [][]string{{"2", "1"}, {"4", "3"}}, result.Records())

	// Rendering the header and re-parsing reproduces the same column order.
	reparsed, err := Parse([]byte(strings.Join(result.Columns, ",")), ",", RaggedError)
	require.NoError(t, err)
	assert.Equal(t, result.Columns, reparsed.Columns)
}

func TestRenderTerminal(t *testing.T) {
	result, err := Parse([]byte("name,count\nalpha,12\nbeta,7\n"), ",", RaggedError)
	require.NoError(t, err)

	var buf bytes.Buffer
	RenderTerminal(&buf, result)

	out := buf.String()
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "alpha")
	assert.Contains(t, out, "7")
}

func TestRenderTerminalEmpty(t *testing.T) {
	var buf bytes.Buffer
	RenderTerminal(&buf, &Result{})
	assert.Contains(t, buf.String(), "no rows")
}
