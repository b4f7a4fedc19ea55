package proto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	for _, test := range []struct {
		line, word, rest string
	}{
		{"", "", ""},
		{"quit", "quit", ""},
		{"  quit  ", "quit", ""},
		{"observe 42", "observe", "42"},
		{"match foo bar 300", "match", "foo bar 300"},
		{"e1\tgenmove_analyze", "e1", "genmove_analyze"},
	} {
		word, rest := Split(test.line)
		assert.Equal(t, test.word, word, "Split(%q)", test.line)
		assert.Equal(t, test.rest, rest, "Split(%q)", test.line)
	}
}

func TestParse(t *testing.T) {
	var (
		s string
		n int64
		f float64
	)

	require.NoError(t, Parse("abc 42 7.5", &s, &n, &f))
	assert.Equal(t, "abc", s)
	assert.Equal(t, int64(42), n)
	assert.Equal(t, 7.5, f)

	assert.ErrorIs(t, Parse("abc", &s, &n), ErrArgumentMismatch)
	assert.ErrorIs(t, Parse("a b c", &s, &n), ErrArgumentMismatch)
	assert.Error(t, Parse("abc", &n))

	// A wrong field count wins over a conversion error.
	assert.ErrorIs(t, Parse("notanumber extra", &n), ErrArgumentMismatch)
}

func TestParseOptional(t *testing.T) {
	var (
		white, black string
		wt, bt       int64
	)

	// Only the required fields on the wire.
	require.NoError(t, Parse("foo bar", &white, &black, nil, &wt, &bt))
	assert.Equal(t, "foo", white)
	assert.Equal(t, "bar", black)
	assert.Equal(t, int64(0), wt)

	// Some optional fields present.
	require.NoError(t, Parse("foo bar 300", &white, &black, nil, &wt, &bt))
	assert.Equal(t, int64(300), wt)
	assert.Equal(t, int64(0), bt)

	// All of them.
	require.NoError(t, Parse("foo bar 300 60", &white, &black, nil, &wt, &bt))
	assert.Equal(t, int64(300), wt)
	assert.Equal(t, int64(60), bt)

	// Too many still fails.
	assert.ErrorIs(t, Parse("foo bar 300 60 1", &white, &black, nil, &wt, &bt),
		ErrArgumentMismatch)

	// Missing required fields fail even with optionals declared.
	assert.ErrorIs(t, Parse("foo", &white, &black, nil, &wt),
		ErrArgumentMismatch)
}
