package sched

import (
	"errors"
	"io"
	"testing"
	"time"

	cgos "go-cgos"
	"go-cgos/cmd"
	"go-cgos/conf"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDB is an in-memory stand-in for the persistence layer.
type fakeDB struct {
	users   map[string]cgos.User
	anchors map[string]float64
	unrated []cgos.Record
	fail    bool

	applied []cgos.RatingUpdate
	closed  []int64
}

func makeFakeDB() *fakeDB {
	return &fakeDB{
		users:   make(map[string]cgos.User),
		anchors: make(map[string]float64),
	}
}

func (f *fakeDB) String() string                         { return "Fake Database" }
func (f *fakeDB) Start(*cmd.State, *conf.Conf) error     { return nil }
func (f *fakeDB) Shutdown()                              {}
func (f *fakeDB) ReserveGids(n int) (int64, error)       { return 1, nil }
func (f *fakeDB) CreateUser(*cgos.User, string) error    { return nil }
func (f *fakeDB) SetPassword(string, string) error       { return nil }
func (f *fakeDB) PriorGames(string, string) int          { return 0 }
func (f *fakeDB) CountClient(string)                     {}
func (f *fakeDB) RecordGame(*cgos.Record) error          { return nil }
func (f *fakeDB) RecordsSince(string) []cgos.Record      { return nil }
func (f *fakeDB) ActiveUsers(string) []cgos.User         { return nil }
func (f *fakeDB) ArchiveGame(int64, string, string) error { return nil }
func (f *fakeDB) ArchivedGame(int64) (string, bool)      { return "", false }
func (f *fakeDB) ArchiveRecent(int) []cgos.Archived      { return nil }

func (f *fakeDB) Anchors() map[string]float64 { return f.anchors }
func (f *fakeDB) Unrated() []cgos.Record      { return f.unrated }

func (f *fakeDB) LookupUser(name string) (*cgos.User, string, bool) {
	u, ok := f.users[name]
	if !ok {
		return nil, "", false
	}
	return &u, "", true
}

func (f *fakeDB) ApplyRatings(updates []cgos.RatingUpdate, gids []int64) error {
	if f.fail {
		return errors.New("database is wedged")
	}
	f.applied = updates
	f.closed = gids
	return nil
}

// fakeTournament records what the scheduler pushes into the live
// sessions.
type fakeTournament struct {
	pushed []cgos.RatingUpdate
}

func (f *fakeTournament) String() string                     { return "Fake Tournament" }
func (f *fakeTournament) Start(*cmd.State, *conf.Conf) error { return nil }
func (f *fakeTournament) Shutdown()                          {}
func (f *fakeTournament) Accept(io.ReadWriteCloser)          {}
func (f *fakeTournament) SweepClocks()                       {}
func (f *fakeTournament) LiveGames() int                     { return 0 }
func (f *fakeTournament) MaxRemaining() time.Duration        { return 0 }
func (f *fakeTournament) Waiting() []cgos.Candidate          { return nil }
func (f *fakeTournament) KickBanned(map[string]bool)         {}
func (f *fakeTournament) SetDefaultRating(float64)           {}
func (f *fakeTournament) StartRound([]cgos.Pairing) int      { return 0 }
func (f *fakeTournament) StartClocks()                       {}
func (f *fakeTournament) Viewers() int                       { return 0 }
func (f *fakeTournament) Announce(string)                    {}
func (f *fakeTournament) RunningLines(time.Time) []string    { return nil }

func (f *fakeTournament) ApplyRatings(updates []cgos.RatingUpdate) {
	f.pushed = append(f.pushed, updates...)
}

func ratingScheduler(f *fakeDB) *scheduler {
	return &scheduler{
		st:   &cmd.State{Database: f, Tournament: &fakeTournament{}},
		conf: conf.Default(),
	}
}

func update(t *testing.T, f *fakeDB, name string) cgos.RatingUpdate {
	t.Helper()
	for _, u := range f.applied {
		if u.Name == name {
			return u
		}
	}
	t.Fatalf("no rating update for %q", name)
	panic("unreachable")
}

func TestRateEmptyBatch(t *testing.T) {
	f := makeFakeDB()
	ratingScheduler(f).rate()
	assert.Empty(t, f.applied)
}

func TestRateDrawNoDelta(t *testing.T) {
	f := makeFakeDB()
	f.users["foo"] = cgos.User{Name: "foo", Rating: 1800, K: 16}
	f.users["bar"] = cgos.User{Name: "bar", Rating: 1800, K: 16}
	f.unrated = []cgos.Record{{
		Gid: 1, White: "foo", Black: "bar",
		Date: "2024-05-01 12:00", Result: "Draw",
	}}

	ratingScheduler(f).rate()
	require.Len(t, f.applied, 2)
	assert.Equal(t, []int64{1}, f.closed)

	for _, name := range []string{"foo", "bar"} {
		u := update(t, f, name)
		assert.Equal(t, 1800.0, u.Rating, "%s must not move on a draw", name)
		assert.Equal(t, 1, u.Games)
		assert.Equal(t, "2024-05-01 12:00", u.LastGame)
	}
}

func TestRateSwapSymmetry(t *testing.T) {
	deltas := func(white, black, result string) (float64, float64) {
		f := makeFakeDB()
		f.users["foo"] = cgos.User{Name: "foo", Rating: 1900, K: 16}
		f.users["bar"] = cgos.User{Name: "bar", Rating: 1700, K: 16}
		f.unrated = []cgos.Record{{
			Gid: 1, White: white, Black: black,
			Date: "2024-05-01 12:00", Result: result,
		}}
		ratingScheduler(f).rate()
		return update(t, f, "foo").Rating - 1900,
			update(t, f, "bar").Rating - 1700
	}

	// foo winning as white must equal foo winning as black.
	fw, bw := deltas("foo", "bar", "W+Resign")
	fb, bb := deltas("bar", "foo", "B+Resign")

	assert.Greater(t, fw, 0.0)
	assert.Less(t, bw, 0.0)
	assert.InDelta(t, fw, fb, 1e-9)
	assert.InDelta(t, bw, bb, 1e-9)

	// With equal effective K the deltas of one game cancel out.
	assert.InDelta(t, fw, -bw, 1e-9)
}

func TestRateAnchorsPinned(t *testing.T) {
	f := makeFakeDB()
	f.users["anchor"] = cgos.User{Name: "anchor", Rating: 1750, K: 20}
	f.users["bar"] = cgos.User{Name: "bar", Rating: 1600, K: 40}
	f.anchors["anchor"] = 1750
	f.unrated = []cgos.Record{{
		Gid: 1, White: "anchor", Black: "bar",
		Date: "2024-05-01 12:00", Result: "B+Time",
	}}

	s := ratingScheduler(f)
	s.rate()

	u := update(t, f, "anchor")
	assert.Equal(t, 1750.0, u.Rating, "anchor rating must stay pinned")
	assert.Equal(t, s.conf.MinK, u.K)

	b := update(t, f, "bar")
	assert.Greater(t, b.Rating, 1600.0)
	assert.Less(t, b.K, 40.0, "K must decay")
	assert.GreaterOrEqual(t, b.K, s.conf.MinK)
}

func TestRateNewAccount(t *testing.T) {
	f := makeFakeDB()
	f.users["bar"] = cgos.User{Name: "bar", Rating: 1600, K: 16}
	f.unrated = []cgos.Record{{
		Gid: 7, White: "foo", Black: "bar",
		Date: "2024-05-01 12:00", Result: "W+123",
	}}

	s := ratingScheduler(f)
	s.rate()

	// The unknown name falls back to the default account state and
	// moves fast against the established opponent.
	u := update(t, f, "foo")
	assert.Greater(t, u.Rating, s.conf.DefaultRating)
	assert.Equal(t, 1, u.Games)

	// The established player barely moves against a provisional one.
	b := update(t, f, "bar")
	assert.InDelta(t, 1600.0, b.Rating, 1.0)
}

func TestRatePushesLiveSessions(t *testing.T) {
	f := makeFakeDB()
	f.users["foo"] = cgos.User{Name: "foo", Rating: 1900, K: 16}
	f.users["bar"] = cgos.User{Name: "bar", Rating: 1700, K: 16}
	f.unrated = []cgos.Record{{
		Gid: 1, White: "foo", Black: "bar",
		Date: "2024-05-01 12:00", Result: "W+Resign",
	}}

	s := ratingScheduler(f)
	s.rate()

	// A committed batch must reach the dispatcher too, not only the
	// database.
	ft := s.st.Tournament.(*fakeTournament)
	require.Len(t, ft.pushed, 2)
	assert.ElementsMatch(t, f.applied, ft.pushed)
}

func TestRateFailedBatchNotPushed(t *testing.T) {
	f := makeFakeDB()
	f.fail = true
	f.unrated = []cgos.Record{{
		Gid: 1, White: "foo", Black: "bar",
		Date: "2024-05-01 12:00", Result: "W+Resign",
	}}

	s := ratingScheduler(f)
	s.rate()

	ft := s.st.Tournament.(*fakeTournament)
	assert.Empty(t, ft.pushed,
		"an uncommitted batch must not change live sessions")
}
