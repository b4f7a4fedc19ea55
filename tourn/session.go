// Session State Machine
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

package tourn

import (
	"log/slog"
	"strings"
	"time"

	cgos "go-cgos"
	"go-cgos/proto"

	"golang.org/x/crypto/bcrypt"
)

// Dialog states of a player connection.
type dialog uint8

const (
	stProtocol dialog = iota
	stUsername
	stPassword
	stWaiting
	stOk
	stGenmove
	stGameover
	stAdmin
)

func (d dialog) String() string {
	switch d {
	case stProtocol:
		return "protocol"
	case stUsername:
		return "username"
	case stPassword:
		return "password"
	case stWaiting:
		return "waiting"
	case stOk:
		return "ok"
	case stGenmove:
		return "genmove"
	case stGameover:
		return "gameover"
	case stAdmin:
		return "admin"
	default:
		panic("illegal dialog state")
	}
}

// Session is one player connection.  All fields are owned by the
// dispatcher.
type Session struct {
	m    *Manager
	conn *proto.Conn

	state      dialog
	name       string
	user       *cgos.User
	gid        int64
	useAnalyze bool

	// Set once the connection identified itself as a viewer; the
	// session then only forwards.
	viewer *Viewer
}

func (s *Session) handle(line string) {
	if strings.TrimSpace(line) == "" {
		return
	}
	if s.viewer != nil {
		s.viewer.handle(line)
		return
	}

	word, _ := proto.Split(line)
	if word == "quit" {
		s.close()
		return
	}

	switch s.state {
	case stProtocol:
		s.hello(line)
	case stUsername:
		s.username(line)
	case stPassword:
		s.password(line)
	case stGenmove:
		s.m.playMove(s, line)
	case stGameover:
		if word == "ready" {
			s.state = stWaiting
		} else {
			slog.Debug("ignoring input", "conn", s.conn.Name(),
				"state", s.state.String(), "line", line)
		}
	case stWaiting, stOk:
		// Nothing is expected here; engines occasionally send
		// stray replies after a displacement.
		slog.Debug("ignoring input", "conn", s.conn.Name(),
			"state", s.state.String(), "line", line)
	case stAdmin:
		s.admin(line)
	}
}

// fail sends an error line and closes the connection.
func (s *Session) fail(reason string) {
	s.conn.Send("Error: %s", reason)
	s.close()
}

func (s *Session) close() {
	s.drop()
	s.conn.Kill()
}

// drop removes the session from the live maps.  A live game the
// player takes part in stays untouched so they can rejoin.
func (s *Session) drop() {
	if s.viewer != nil {
		s.viewer.drop()
		return
	}
	if s.name != "" && s.m.sessions[s.name] == s {
		delete(s.m.sessions, s.name)
		slog.Info("logout", "name", s.name)
	}
}

// hello interprets the handshake line.  "v1" attaches a viewer, "e1"
// starts the player login dialog.
func (s *Session) hello(line string) {
	tokens := strings.Fields(line)
	switch tokens[0] {
	case "v1":
		s.m.st.Database.CountClient("v1")
		s.viewer = s.m.attachViewer(s.conn)
	case "e1":
		s.m.st.Database.CountClient("e1")
		for _, t := range tokens[1:] {
			if t == "genmove_analyze" {
				s.useAnalyze = true
			}
		}
		s.state = stUsername
		s.conn.Send("username")
	default:
		s.fail("invalid response")
	}
}

// validName checks the account name policy: ASCII, 3 to 18 characters
// from [A-Za-z0-9._-], first character alphabetic.
func validName(name string) bool {
	if len(name) < 3 || len(name) > 18 {
		return false
	}
	first := name[0]
	if !('a' <= first && first <= 'z' || 'A' <= first && first <= 'Z') {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case 'a' <= c && c <= 'z':
		case 'A' <= c && c <= 'Z':
		case '0' <= c && c <= '9':
		case c == '.' || c == '_' || c == '-':
		default:
			return false
		}
	}
	return true
}

func (s *Session) username(line string) {
	name := strings.TrimSpace(line)
	if !validName(name) {
		s.fail("invalid user name")
		return
	}
	if s.m.banned[name] {
		s.fail("name not allowed")
		return
	}

	s.name = name
	s.state = stPassword
	s.conn.Send("password")
}

// secret prepares a password for storage.
func (m *Manager) secret(pw string) string {
	if !m.conf.HashPasswords {
		return pw
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		// Only reachable for absurd cost parameters.
		panic(err)
	}
	return string(hash)
}

// verify checks a presented password against the stored secret.
func (m *Manager) verify(stored, pw string) bool {
	if !m.conf.HashPasswords {
		return stored == pw
	}
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(pw)) == nil
}

func (s *Session) password(line string) {
	fields := strings.Fields(line)
	if len(fields) < 1 || len(fields) > 2 {
		s.fail("invalid password")
		return
	}

	db := s.m.st.Database
	user, stored, found := db.LookupUser(s.name)
	switch {
	case !found:
		// A first login registers the account.  New accounts
		// start at the current average of the waiting pool.
		user = &cgos.User{
			Name:     s.name,
			Rating:   s.m.defaultRating,
			K:        s.m.conf.MaxK,
			LastGame: "2000-01-01 00:00",
		}
		if err := db.CreateUser(user, s.m.secret(fields[0])); err != nil {
			slog.Error("account creation", "name", s.name, "error", err)
			s.fail("cannot create account")
			return
		}
		slog.Info("new account", "name", s.name, "rating", user.Rating)
	case !s.m.verify(stored, fields[0]):
		s.conn.Send("Sorry, password doesn't match")
		s.close()
		return
	}

	if len(fields) == 2 {
		if err := db.SetPassword(s.name, s.m.secret(fields[1])); err != nil {
			slog.Error("password change", "name", s.name, "error", err)
		}
	}

	s.user = user

	if s.name == "admin" {
		s.state = stAdmin
		s.conn.Send("info admin console ready")
		return
	}

	// A second login under the same name displaces the first.
	if old, ok := s.m.sessions[s.name]; ok {
		old.conn.Send("info another login is being attempted using this user name")
		old.conn.Kill()
		delete(s.m.sessions, s.name)
	}
	s.m.sessions[s.name] = s
	slog.Info("login", "name", s.name,
		"rating", cgos.FormatRating(user.Rating, user.K))

	if msg := s.m.conf.InfoMsg; msg != "" {
		s.conn.Send("info %s", msg)
	}

	// Rejoin a game in flight before joining the waiting pool.
	for _, gid := range s.m.gids() {
		g := s.m.games[gid]
		if g.White == s.name || g.Black == s.name {
			s.rejoin(g)
			return
		}
	}
	s.state = stWaiting
}

// rejoin catches the player up on their running game.  If it is their
// turn the genmove is reissued with the clock that kept running while
// they were away.
func (s *Session) rejoin(g *cgos.Game) {
	s.gid = g.Id
	s.conn.Send("%s", s.m.setupLine(g))

	c := cgos.Black
	if g.White == s.name {
		c = cgos.White
	}
	if g.ToMove() == c && !g.LastStart.IsZero() {
		left := g.Left(c) - time.Since(g.LastStart)
		s.state = stGenmove
		s.conn.Send("genmove %s %d", c, left.Milliseconds())
		return
	}
	s.state = stOk
}
