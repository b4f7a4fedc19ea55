package conf

import (
	"bytes"
	"strings"
	"testing"
	"time"

	cgos "go-cgos"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	c, err := load(strings.NewReader(""))
	require.NoError(t, err)

	assert.Equal(t, defaultConfig, *c)
	assert.True(t, c.WebSocket)
	assert.Equal(t, cgos.PositionalKo, c.Ko)
}

func TestLoadOverrides(t *testing.T) {
	c, err := load(strings.NewReader(`
[server]
name = "cgos-19x19"
port = 6819
info = "welcome to cgos"

[game]
boardsize = 19
level = 900
ko = "simple"
time_gift = 0.5

[match]
mode = "admin"

[web]
websocket = false
`))
	require.NoError(t, err)

	assert.Equal(t, "cgos-19x19", c.ServerName)
	assert.Equal(t, uint16(6819), c.TCPPort)
	assert.Equal(t, "welcome to cgos", c.InfoMsg)
	assert.Equal(t, 19, c.BoardSize)
	assert.Equal(t, 15*time.Minute, c.Level)
	assert.Equal(t, cgos.SimpleKo, c.Ko)
	assert.Equal(t, 500*time.Millisecond, c.Leeway)
	assert.Equal(t, MODE_ADMIN, c.Mode)
	assert.False(t, c.WebSocket)

	// Unmentioned keys keep their defaults.
	assert.Equal(t, defaultConfig.Komi, c.Komi)
	assert.Equal(t, defaultConfig.StateFile, c.StateFile)
}

func TestLoadBadValues(t *testing.T) {
	_, err := load(strings.NewReader("[game]\nko = \"triple\"\n"))
	assert.Error(t, err)

	_, err = load(strings.NewReader("[match]\nmode = \"manual\"\n"))
	assert.Error(t, err)
}

func TestDumpRoundTrip(t *testing.T) {
	c := Default()
	c.ServerName = "cgos-13x13"
	c.BoardSize = 13
	c.Komi = 7.0
	c.Mode = MODE_ADMIN
	c.HashPasswords = true

	var buf bytes.Buffer
	require.NoError(t, c.Dump(&buf))

	back, err := load(&buf)
	require.NoError(t, err)
	assert.Equal(t, *c, *back)
}
