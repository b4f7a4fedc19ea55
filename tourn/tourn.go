// Tournament Dispatcher
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

// Package tourn is the heart of the server: a single dispatcher
// goroutine owns the session, game and viewer maps.  Connection
// readers and the scheduler never touch them directly, they post
// closures that the dispatcher executes one at a time.
package tourn

import (
	"fmt"
	"io"
	"log/slog"
	"net"
	"sort"
	"strconv"
	"time"

	cgos "go-cgos"
	"go-cgos/cmd"
	"go-cgos/conf"
	"go-cgos/proto"
)

type Manager struct {
	conf *conf.Conf
	st   *cmd.State

	act  chan func()
	shut chan struct{}

	sessions  map[string]*Session
	games     map[int64]*cgos.Game
	viewers   map[int64]*Viewer
	observers map[int64]map[int64]*Viewer

	nextViewer    int64
	defaultRating float64
	banned        map[string]bool
}

func Register(st *cmd.State, c *conf.Conf) {
	m := &Manager{
		conf:          c,
		act:           make(chan func(), 256),
		shut:          make(chan struct{}),
		sessions:      make(map[string]*Session),
		games:         make(map[int64]*cgos.Game),
		viewers:       make(map[int64]*Viewer),
		observers:     make(map[int64]map[int64]*Viewer),
		defaultRating: c.DefaultRating,
	}
	st.Register(cmd.Tournament(m))
}

func (*Manager) String() string { return "Tournament Dispatcher" }

func (m *Manager) Start(st *cmd.State, c *conf.Conf) error {
	m.st = st
	for {
		select {
		case f := <-m.act:
			f()
		case <-m.shut:
			return nil
		}
	}
}

func (m *Manager) Shutdown() {
	m.do(func() {
		for _, s := range m.sessions {
			s.conn.Kill()
		}
		for _, v := range m.viewers {
			v.conn.Kill()
		}
	})
	close(m.shut)
}

// do runs F on the dispatcher and waits for it.  Calling do from the
// dispatcher itself would deadlock; internal code calls directly.
func (m *Manager) do(f func()) {
	done := make(chan struct{})
	m.act <- func() {
		f()
		close(done)
	}
	<-done
}

// Accept wires a fresh connection into the dispatcher.  The per
// connection goroutine only forwards lines; all state lives with the
// dispatcher.
func (m *Manager) Accept(rwc io.ReadWriteCloser) {
	name := "client"
	if c, ok := rwc.(net.Conn); ok {
		name = c.RemoteAddr().String()
	}

	conn := proto.Wrap(rwc, name)
	s := &Session{m: m, conn: conn, state: stProtocol}
	conn.Send("protocol genmove_analyze")

	go m.serve(s)
}

func (m *Manager) serve(s *Session) {
	for line := range s.conn.Lines() {
		line := line
		m.do(func() { s.handle(line) })
	}
	m.do(func() { s.drop() })
}

// gids returns the live game ids in ascending order.
func (m *Manager) gids() []int64 {
	ids := make([]int64, 0, len(m.games))
	for gid := range m.games {
		ids = append(ids, gid)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// broadcast sends a line to every viewer.
func (m *Manager) broadcast(format string, args ...interface{}) {
	for _, v := range m.viewers {
		v.conn.Send(format, args...)
	}
}

// observed sends a line to every viewer observing GID.
func (m *Manager) observed(gid int64, format string, args ...interface{}) {
	for _, v := range m.observers[gid] {
		v.conn.Send(format, args...)
	}
}

func komiString(komi float64) string {
	return strconv.FormatFloat(komi, 'g', -1, 64)
}

// setupLine renders the player facing catch-up line for G.
func (m *Manager) setupLine(g *cgos.Game) string {
	line := fmt.Sprintf("setup %d %d %s %d %s(%s) %s(%s)",
		g.Id, m.conf.BoardSize, komiString(m.conf.Komi),
		g.WhiteTotal.Milliseconds(),
		g.White, g.WhiteRating, g.Black, g.BlackRating)
	if len(g.Moves) > 0 {
		line += " " + g.JoinMoves()
	}
	return line
}

// matchLine renders the viewer facing announcement of a live game.
func (m *Manager) matchLine(g *cgos.Game) string {
	return fmt.Sprintf("match %d - - %d %s %s(%s) %s(%s) -",
		g.Id, m.conf.BoardSize, komiString(m.conf.Komi),
		g.White, g.WhiteRating, g.Black, g.BlackRating)
}

// The scheduler facing interface.  Every method hops onto the
// dispatcher.

func (m *Manager) SweepClocks() {
	m.do(func() {
		var out []*cgos.Game
		for _, g := range m.games {
			if g.LastStart.IsZero() {
				continue
			}
			c := g.ToMove()
			elapsed := time.Since(g.LastStart) - m.conf.Leeway
			if elapsed < 0 {
				elapsed = 0
			}
			if g.Left(c)-elapsed < 0 {
				g.SetLeft(c, 0)
				out = append(out, g)
			}
		}
		for _, g := range out {
			m.finish(g, cgos.WinBy(g.ToMove().Other(), "Time"), "")
		}
	})
}

func (m *Manager) LiveGames() (n int) {
	m.do(func() { n = len(m.games) })
	return n
}

// MaxRemaining estimates the time until the current round can end:
// the largest sum of both remaining clocks across the live games.
func (m *Manager) MaxRemaining() (max time.Duration) {
	m.do(func() {
		for _, g := range m.games {
			left := g.WhiteLeft + g.BlackLeft
			if !g.LastStart.IsZero() {
				left -= time.Since(g.LastStart)
			}
			if left > max {
				max = left
			}
		}
	})
	return max
}

func (m *Manager) Waiting() (ws []cgos.Candidate) {
	m.do(func() {
		for _, s := range m.sessions {
			if s.state == stWaiting {
				ws = append(ws, cgos.Candidate{
					Name:   s.name,
					Rating: s.user.Rating,
					K:      s.user.K,
				})
			}
		}
	})
	return ws
}

func (m *Manager) KickBanned(banned map[string]bool) {
	m.do(func() {
		m.banned = banned
		for _, s := range m.sessions {
			if s.state == stWaiting && banned[s.name] {
				s.fail("name not allowed")
			}
		}
	})
}

func (m *Manager) SetDefaultRating(r float64) {
	m.do(func() { m.defaultRating = r })
}

// ApplyRatings pushes the outcome of a rating batch into the logged in
// sessions, so pairing, setup lines and the admin console see the post
// batch values rather than the rating cached at login.
func (m *Manager) ApplyRatings(updates []cgos.RatingUpdate) {
	m.do(func() {
		for _, u := range updates {
			s, ok := m.sessions[u.Name]
			if !ok {
				continue
			}
			s.user.Rating = u.Rating
			s.user.K = u.K
			s.user.Games = u.Games
			s.user.LastGame = u.LastGame
		}
	})
}

// StartRound creates the games of a new round and announces them.
// Clocks stay stopped until StartClocks, giving the engines time to
// digest their setup lines.
func (m *Manager) StartRound(pairs []cgos.Pairing) (n int) {
	m.do(func() {
		first, err := m.st.Database.ReserveGids(len(pairs))
		if err != nil {
			slog.Error("cannot reserve game ids", "error", err)
			return
		}

		for i, p := range pairs {
			w, b := m.sessions[p.White], m.sessions[p.Black]
			if w == nil || w.state != stWaiting ||
				b == nil || b.state != stWaiting {
				continue
			}
			m.startGame(first+int64(i), w, b,
				m.conf.Level, m.conf.Level, nil)
			n++
		}
	})
	return n
}

func (m *Manager) StartClocks() {
	m.do(func() {
		for _, gid := range m.gids() {
			if g := m.games[gid]; g.LastStart.IsZero() {
				m.genmove(g)
			}
		}
	})
}

func (m *Manager) Viewers() (n int) {
	m.do(func() { n = len(m.viewers) })
	return n
}

// Announce sends an informational line to every player and viewer.
func (m *Manager) Announce(msg string) {
	m.do(func() {
		for _, s := range m.sessions {
			s.conn.Send("%s", msg)
		}
		m.broadcast("%s", msg)
	})
}

// RunningLines renders the in-progress games for the web snapshot.
func (m *Manager) RunningLines(now time.Time) (lines []string) {
	m.do(func() {
		ts := cgos.Stamp(now)
		for _, gid := range m.gids() {
			g := m.games[gid]
			var lmst int64
			if !g.LastStart.IsZero() {
				lmst = g.LastStart.UnixMilli()
			}
			lines = append(lines, fmt.Sprintf("s %s %d %s %s %d %d %d %s %s",
				ts, g.Id, g.White, g.Black, lmst,
				g.WhiteLeft.Milliseconds(), g.BlackLeft.Milliseconds(),
				g.WhiteRating, g.BlackRating))
		}
	})
	return lines
}
