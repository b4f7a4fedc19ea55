// Admin Console
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
	"sort"
	"strings"
	"time"

	cgos "go-cgos"
	"go-cgos/proto"
)

// admin interprets one console command.  Errors answer a single line
// and keep the session alive.
func (s *Session) admin(line string) {
	word, args := proto.Split(line)
	switch word {
	case "who":
		s.adminWho()
	case "games":
		s.adminGames()
	case "match":
		s.adminMatch(args)
	case "abort":
		s.adminAbort(args)
	default:
		s.conn.Send("Error: unknown command %q", word)
	}
}

func (s *Session) adminWho() {
	names := make([]string, 0, len(s.m.sessions))
	for name := range s.m.sessions {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		p := s.m.sessions[name]
		s.conn.Send("%s %s %d %.0f %.1f",
			name, p.state, p.gid, p.user.Rating, p.user.K)
	}
}

func (s *Session) adminGames() {
	for _, a := range s.m.st.Database.ArchiveRecent(viewerHistory) {
		if line, ok := matchFromDta(a.Gid, a.Dta); ok {
			s.conn.Send("%s", line)
		}
	}
	for _, gid := range s.m.gids() {
		g := s.m.games[gid]
		s.conn.Send("%s %d %d", s.m.matchLine(g),
			g.WhiteLeft.Milliseconds(), g.BlackLeft.Milliseconds())
	}
}

func (s *Session) adminMatch(args string) {
	var (
		white, black string
		wt, bt       int64
		resume       int64
		length       = int64(-1)
	)
	err := proto.Parse(args, &white, &black, nil, &wt, &bt, &resume, &length)
	if err != nil {
		s.conn.Send("Error: usage: match <white> <black> [wt-sec] [bt-sec] [resume-gid] [length]")
		return
	}

	ws, ok := s.m.sessions[white]
	if !ok || ws.state != stWaiting {
		s.conn.Send("Error: %s is not waiting", white)
		return
	}
	bs, ok := s.m.sessions[black]
	if !ok || bs.state != stWaiting {
		s.conn.Send("Error: %s is not waiting", black)
		return
	}

	wd, bd := s.m.conf.Level, s.m.conf.Level
	if wt > 0 {
		wd = time.Duration(wt) * time.Second
	}
	if bt > 0 {
		bd = time.Duration(bt) * time.Second
	}

	var moves []cgos.Move
	if resume > 0 {
		dta, ok := s.m.st.Database.ArchivedGame(resume)
		if !ok {
			s.conn.Send("Error: no archived game %d", resume)
			return
		}
		moves = movesFromDta(dta)
		if length >= 0 && int64(len(moves)) > length {
			moves = moves[:length]
		}
	}

	gid, err := s.m.st.Database.ReserveGids(1)
	if err != nil {
		s.conn.Send("Error: cannot allocate a game id")
		return
	}

	g := s.m.startGame(gid, ws, bs, wd, bd, moves)
	s.m.genmove(g)
	s.conn.Send("info started game %d", gid)
}

func (s *Session) adminAbort(args string) {
	var (
		gid    int64
		result = "Abort"
	)
	if err := proto.Parse(args, &gid, nil, &result); err != nil {
		s.conn.Send("Error: usage: abort <gid> [result]")
		return
	}

	g, ok := s.m.games[gid]
	if !ok {
		s.conn.Send("Error: no such game %d", gid)
		return
	}
	s.m.finish(g, result, "")
	s.conn.Send("info aborted game %d", gid)
}

// movesFromDta recovers the move list of an archived record.
func movesFromDta(dta string) []cgos.Move {
	f := strings.Fields(dta)
	// tme is two fields, then size, komi, the players and the
	// level; the result trails the move pairs.
	if len(f) < 8 {
		return nil
	}

	var moves []cgos.Move
	for i := 7; i+1 < len(f)-1; i += 2 {
		var ms int64
		if proto.Parse(f[i+1], &ms) != nil {
			break
		}
		moves = append(moves, cgos.Move{
			Text: f[i],
			Left: time.Duration(ms) * time.Millisecond,
		})
	}
	return moves
}
