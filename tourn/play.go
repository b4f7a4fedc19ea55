// Game Runtime
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
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	cgos "go-cgos"
	"go-cgos/proto"
)

// Reasons for a forfeit by rule violation, indexed by the negated
// result code of the board engine.
var illegalReasons = [...]string{
	1: "suicide attempted",
	2: "KO attempted",
	3: "move to occupied point",
	4: "do not understand syntax",
}

// startGame creates a live game between two waiting sessions,
// announces it to the players and the viewers and leaves the clocks
// stopped.  RESUME optionally replays the opening of an archived
// game.
func (m *Manager) startGame(gid int64, white, black *Session, wt, bt time.Duration, resume []cgos.Move) *cgos.Game {
	g := &cgos.Game{
		Id:          gid,
		White:       white.name,
		Black:       black.name,
		WhiteRating: cgos.FormatRating(white.user.Rating, white.user.K),
		BlackRating: cgos.FormatRating(black.user.Rating, black.user.K),
		WhiteTotal:  wt,
		BlackTotal:  bt,
		WhiteLeft:   wt,
		BlackLeft:   bt,
		Started:     time.Now(),
		Board:       cgos.MakeBoard(m.conf.BoardSize, m.conf.Ko),
	}

	for _, mv := range resume {
		if g.Board.Make(mv.Text) < 0 {
			slog.Error("cannot replay archived move",
				"gid", gid, "move", mv.Text)
			break
		}
		g.Moves = append(g.Moves, mv)
	}

	m.games[gid] = g
	white.gid, black.gid = gid, gid
	white.state, black.state = stOk, stOk

	setup := m.setupLine(g)
	white.conn.Send("%s", setup)
	black.conn.Send("%s", setup)
	m.broadcast("%s", m.matchLine(g))

	slog.Info("game started", "gid", gid,
		"white", g.White, "black", g.Black)
	return g
}

// genmove starts the mover's clock and prompts them, if they are
// online.  An offline mover loses time until the sweep ends the game.
func (m *Manager) genmove(g *cgos.Game) {
	c := g.ToMove()
	g.LastStart = time.Now()

	if s := m.sessions[g.Player(c)]; s != nil && s.gid == g.Id {
		s.state = stGenmove
		s.conn.Send("genmove %s %d", c, g.Left(c).Milliseconds())
	}
}

// playMove handles the reply to a genmove.
func (m *Manager) playMove(s *Session, line string) {
	g, ok := m.games[s.gid]
	if !ok {
		// Displaced from a game that ended while the reply was
		// in flight.
		s.gid = 0
		s.state = stWaiting
		return
	}
	c := g.ToMove()

	elapsed := time.Since(g.LastStart) - m.conf.Leeway
	if elapsed < 0 {
		elapsed = 0
	}
	left := g.Left(c) - elapsed
	if left < 0 {
		g.SetLeft(c, 0)
		m.finish(g, cgos.WinBy(c.Other(), "Time"), "")
		return
	}
	g.SetLeft(c, left)

	mv, rest := proto.Split(line)

	// The analysis payload is pass-through data; a broken payload
	// never invalidates the move itself.
	analysis := ""
	if s.useAnalyze && rest != "" {
		if json.Valid([]byte(rest)) {
			var buf bytes.Buffer
			if json.Compact(&buf, []byte(rest)) == nil {
				analysis = buf.String()
			}
		} else {
			slog.Debug("dropping malformed analysis",
				"gid", g.Id, "name", s.name)
		}
	}

	if strings.EqualFold(mv, "resign") {
		m.observed(g.Id, "update %d resign %d", g.Id, left.Milliseconds())
		m.finish(g, cgos.WinBy(c.Other(), "Resign"), "")
		return
	}

	if res := g.Board.Make(mv); res < 0 {
		reason := illegalReasons[-res]
		m.finish(g, cgos.WinBy(c.Other(), "Illegal"), reason)
		return
	}

	text := g.Board.Moves()[g.Board.Ply()-1]
	g.Moves = append(g.Moves, cgos.Move{Text: text, Left: left, Analysis: analysis})
	s.state = stOk

	if opp := m.sessions[g.Player(c.Other())]; opp != nil && opp.gid == g.Id {
		opp.conn.Send("play %s %s %d", c, text, left.Milliseconds())
	}
	m.observed(g.Id, "update %d %s %d", g.Id, text, left.Milliseconds())

	if g.Board.TwoPass() {
		m.finish(g, scoreResult(g.Board.Score(), m.conf.Komi), "")
		return
	}

	if n := m.conf.SaveInterval; n > 0 && len(g.Moves)%n == 0 {
		m.saveSGF(g, "?", "", time.Now())
	}

	m.genmove(g)
}

// scoreResult turns a raw area count into a result string, komi
// already on white's side.
func scoreResult(score int, komi float64) string {
	signed := float64(score) - komi
	switch {
	case signed > 0:
		return "B+" + strconv.FormatFloat(signed, 'g', -1, 64)
	case signed < 0:
		return "W+" + strconv.FormatFloat(-signed, 'g', -1, 64)
	default:
		return "Draw"
	}
}

// dtaLine renders the canonical archive record of a finished game.
func (m *Manager) dtaLine(g *cgos.Game, tme, result string) string {
	line := fmt.Sprintf("%s %d %s %s(%s) %s(%s) %d",
		tme, m.conf.BoardSize, komiString(m.conf.Komi),
		g.White, g.WhiteRating, g.Black, g.BlackRating,
		g.WhiteTotal.Milliseconds())
	if len(g.Moves) > 0 {
		line += " " + g.JoinMoves()
	}
	return line + " " + result
}

// finish runs the termination sequence: notify the players, notify
// the viewers, persist the game and drop it from the live map.
func (m *Manager) finish(g *cgos.Game, result, errText string) {
	now := time.Now()
	dte := cgos.DateStamp(now)
	slog.Info("game over", "gid", g.Id, "result", result)

	for _, c := range []cgos.Colour{cgos.White, cgos.Black} {
		s := m.sessions[g.Player(c)]
		if s == nil || s.gid != g.Id {
			continue
		}
		if errText != "" {
			s.conn.Send("gameover %s %s %s", dte, result, errText)
		} else {
			s.conn.Send("gameover %s %s", dte, result)
		}
		s.gid = 0
		s.state = stGameover
	}

	wtu := g.Used(cgos.White).Milliseconds()
	btu := g.Used(cgos.Black).Milliseconds()
	m.broadcast("gameover %d %s %d %d", g.Id, result, wtu, btu)
	m.observed(g.Id, "update %d %s", g.Id, result)
	delete(m.observers, g.Id)

	rec := &cgos.Record{
		Gid:         g.Id,
		White:       g.White,
		Black:       g.Black,
		WhiteRating: g.WhiteRating,
		BlackRating: g.BlackRating,
		Date:        cgos.MinuteStamp(now),
		WhiteUsed:   wtu,
		BlackUsed:   btu,
		Result:      result,
	}
	if err := m.st.Database.RecordGame(rec); err != nil {
		slog.Error("recording game", "gid", g.Id, "error", err)
	}

	dta := m.dtaLine(g, cgos.MinuteStamp(now), result)
	if err := m.st.Database.ArchiveGame(g.Id, dta, g.JoinAnalysis()); err != nil {
		slog.Error("archiving game", "gid", g.Id, "error", err)
	}

	m.saveSGF(g, result, errText, now)

	g.Board = nil
	delete(m.games, g.Id)
}

// saveSGF writes the game record below the web tree, one directory
// per day.
func (m *Manager) saveSGF(g *cgos.Game, result, errText string, now time.Time) {
	dir := filepath.Join(m.conf.HTMLDir, m.conf.SGFDir,
		now.UTC().Format("2006/01/02"))
	if err := os.MkdirAll(dir, 0755); err != nil {
		slog.Error("creating sgf directory", "dir", dir, "error", err)
		return
	}

	data := cgos.SGF(g, m.conf.ServerName, m.conf.BoardSize, m.conf.Komi,
		g.WhiteTotal, result, cgos.DateStamp(now), errText)

	name := filepath.Join(dir, fmt.Sprintf("%d.sgf", g.Id))
	payload := []byte(data)
	if m.conf.CompressSGF {
		name += ".gz"
		var buf bytes.Buffer
		zw := gzip.NewWriter(&buf)
		zw.Write(payload)
		zw.Close()
		payload = buf.Bytes()
	}

	if err := os.WriteFile(name, payload, 0644); err != nil {
		slog.Error("writing sgf", "file", name, "error", err)
	}
}
