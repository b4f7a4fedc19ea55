package tourn

import (
	"testing"
	"time"

	cgos "go-cgos"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminConsole(t *testing.T) {
	f := makeFakeDB()
	m := testManager(t, f)

	login(t, m, "foo")
	login(t, m, "bar")
	waitFor(t, m, "both players waiting", func() bool {
		return len(m.sessions) == 2
	})

	admin := login(t, m, "admin")
	admin.expect("info admin console ready")

	admin.send("who")
	admin.expectPrefix("bar waiting 0 ")
	admin.expectPrefix("foo waiting 0 ")

	admin.send("nonsense")
	admin.expect(`Error: unknown command "nonsense"`)

	admin.send("match foo nobody")
	admin.expect("Error: nobody is not waiting")
}

func TestAdminMatch(t *testing.T) {
	f := makeFakeDB()
	m := testManager(t, f)

	white := login(t, m, "foo")
	black := login(t, m, "bar")
	waitFor(t, m, "both players waiting", func() bool {
		return len(m.sessions) == 2
	})

	admin := login(t, m, "admin")
	admin.expect("info admin console ready")

	// Clock overrides are given in seconds.
	admin.send("match foo bar 120 60")
	white.expectPrefix("setup 1 ")
	black.expectPrefix("setup 1 ")
	admin.expect("info started game 1")

	// An admin match starts its clock right away.
	black.expect("genmove b 60000")

	admin.send("abort 1")
	admin.expect("info aborted game 1")
	white.expectPrefix("gameover ")
	black.expectPrefix("gameover ")

	waitFor(t, m, "game to be torn down", func() bool {
		return len(m.games) == 0
	})
	f.Lock()
	defer f.Unlock()
	require.Len(t, f.recorded, 1)
	assert.Equal(t, "Abort", f.recorded[0].Result)
}

func TestSweepClocks(t *testing.T) {
	f := makeFakeDB()
	m := testManager(t, f)
	m.conf.Level = 20 * time.Millisecond

	white := login(t, m, "foo")
	black := login(t, m, "bar")
	waitFor(t, m, "both players waiting", func() bool {
		return len(m.sessions) == 2
	})

	require.Equal(t, 1, m.StartRound([]cgos.Pairing{{White: "foo", Black: "bar"}}))
	white.expectPrefix("setup ")
	black.expectPrefix("setup ")
	m.StartClocks()
	black.expectPrefix("genmove b ")

	// Let the mover's clock run out, then sweep.
	time.Sleep(50 * time.Millisecond)
	m.SweepClocks()

	line := black.expectPrefix("gameover ")
	assert.Contains(t, line, cgos.WinBy(cgos.White, "Time"))
	white.expectPrefix("gameover ")
	assert.Equal(t, 0, m.LiveGames())

	f.Lock()
	defer f.Unlock()
	require.Len(t, f.recorded, 1)
	assert.Equal(t, "W+Time", f.recorded[0].Result)
	assert.Equal(t, int64(20), f.recorded[0].BlackUsed,
		"a timeout books the full budget")
}