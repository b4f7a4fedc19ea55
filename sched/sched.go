// Round Scheduler
//
// Copyright (c) 2023, 2024  The go-cgos authors
//
// This file is part of go-cgos.
//
// go-cgos is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License, version 3,
// as published by the Free Software Foundation.
//
// go-cgos is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the GNU
// Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public
// License, version 3, along with go-cgos. If not, see
// <http://www.gnu.org/licenses/>

package sched

import (
	"bufio"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"strings"
	"time"

	cgos "go-cgos"
	"go-cgos/cmd"
	"go-cgos/conf"
	"go-cgos/web"
)

const (
	// The first round fires late enough for engines to log in.
	startupDelay = 45 * time.Second
	tickInterval = 15 * time.Second

	// Cadence of the round progress broadcast.
	infoInterval = 60 * time.Second

	// Pause between the setup lines of a round and the first
	// genmoves, so engines can finish their setup handling before
	// their clock starts.
	setupGrace = 3 * time.Second
)

type scheduler struct {
	st   *cmd.State
	conf *conf.Conf

	rnd      *rand.Rand
	lastInfo time.Time
	shut     chan struct{}
}

func Register(st *cmd.State) {
	st.Register(&scheduler{
		rnd:  rand.New(rand.NewSource(time.Now().UnixMicro())),
		shut: make(chan struct{}),
	})
}

func (*scheduler) String() string { return "Round Scheduler" }

func (s *scheduler) Start(st *cmd.State, c *conf.Conf) error {
	s.st, s.conf = st, c

	// A kill file left over from a previous run must not take the
	// server down immediately.
	if err := os.Remove(c.KillFile); err == nil {
		slog.Info("removed stale kill file", "file", c.KillFile)
	}

	timer := time.NewTimer(startupDelay)
	defer timer.Stop()
	for {
		select {
		case <-timer.C:
			s.tick()
			timer.Reset(tickInterval)
		case <-s.shut:
			return nil
		}
	}
}

func (s *scheduler) Shutdown() {
	close(s.shut)
}

// tick runs one scheduler pass.  A failure in a pass is logged and
// the cadence continues.
func (s *scheduler) tick() {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("scheduler pass failed", "panic", r)
		}
	}()

	t := s.st.Tournament
	t.SweepClocks()

	if t.LiveGames() > 0 {
		s.progress()
		return
	}
	s.roundBoundary()
}

// progress tells everyone how long the running round can still take.
func (s *scheduler) progress() {
	if time.Since(s.lastInfo) < infoInterval {
		return
	}
	left := s.st.Tournament.MaxRemaining()
	if left <= 2*time.Second {
		return
	}

	s.lastInfo = time.Now()
	s.st.Tournament.Announce(fmt.Sprintf(
		"info Maximum time until next round: %02d:%02d",
		int(left.Minutes()), int(left.Seconds())%60))
}

// roundBoundary runs once all games of a round have ended: rate the
// batch, refresh the ban list, pair the next round, rewrite the web
// snapshot and honour the kill file.
func (s *scheduler) roundBoundary() {
	s.rate()
	s.st.Tournament.KickBanned(s.badUsers())

	if s.conf.Mode == conf.MODE_AUTO {
		s.pairRound()
	}

	s.snapshot()

	if _, err := os.Stat(s.conf.KillFile); err == nil {
		slog.Info("kill file found, shutting down", "file", s.conf.KillFile)
		s.st.Kill()
	}
}

// pairRound pairs the waiting pool and starts the new games.
func (s *scheduler) pairRound() {
	db, t := s.st.Database, s.st.Tournament

	waiting := t.Waiting()
	t.SetDefaultRating(averageRating(waiting, s.conf.DefaultRating))
	if len(waiting) < 2 {
		return
	}

	pairs := Pairings(waiting, db.Anchors(), s.conf.AnchorRate,
		db.PriorGames, s.rnd)
	if len(pairs) == 0 {
		return
	}

	n := t.StartRound(pairs)
	if n == 0 {
		return
	}
	slog.Info("round started", "games", n)

	time.Sleep(setupGrace)
	slog.Info("starting clocks", "games", n, "viewers", t.Viewers())
	t.StartClocks()
}

// badUsers loads the ban list, one name per line, '#' comments.
func (s *scheduler) badUsers() map[string]bool {
	banned := make(map[string]bool)

	f, err := os.Open(s.conf.BadUsersFile)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Error("cannot read ban list",
				"file", s.conf.BadUsersFile, "error", err)
		}
		return banned
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		name := strings.TrimSpace(scanner.Text())
		if name == "" || strings.HasPrefix(name, "#") {
			continue
		}
		banned[name] = true
	}
	return banned
}

// snapshot rewrites the web data file.
func (s *scheduler) snapshot() {
	now := time.Now()
	users := s.st.Database.ActiveUsers(
		cgos.MinuteStamp(now.Add(-190 * 24 * time.Hour)))
	games := s.st.Database.RecordsSince(
		cgos.MinuteStamp(now.Add(-4 * time.Hour)))
	running := s.st.Tournament.RunningLines(now)

	err := web.WriteSnapshot(s.conf.DataFile, now, users, games, running)
	if err != nil {
		slog.Error("snapshot", "file", s.conf.DataFile, "error", err)
	}
}
