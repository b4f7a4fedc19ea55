// Shared Structures and Utilities
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

package cgos

import (
	"strconv"
	"strings"
	"time"
)

// A Colour identifies one side of a game of go.
type Colour uint8

const (
	White Colour = iota
	Black
)

// String returns the single letter colour token used on the wire.
func (c Colour) String() string {
	switch c {
	case White:
		return "w"
	case Black:
		return "b"
	default:
		panic("illegal colour")
	}
}

// Other returns the opponent of C.
func (c Colour) Other() Colour {
	switch c {
	case White:
		return Black
	case Black:
		return White
	default:
		panic("illegal colour")
	}
}

// User is a registered engine account, as stored in the state
// database.
type User struct {
	Name   string
	Games  int
	Rating float64
	K      float64
	// Minute stamp of the last rated game, "2000-01-01 00:00" for
	// accounts that never played.
	LastGame string
}

// Move is one accepted play: the move text as the engine sent it, the
// mover's clock after the move, and the analysis line that came with
// it, if any.
type Move struct {
	Text     string
	Left     time.Duration
	Analysis string
}

// Game is a match between two engines, tracked while it runs and
// archived when it ends.
type Game struct {
	Id           int64
	White, Black string
	// Display ratings fixed at pairing time ("1910?" while
	// provisional).
	WhiteRating, BlackRating string

	// Clock budgets at game start and what remains of them.
	// LastStart is the wall time the pending genmove was issued,
	// zero while neither engine is on the move.
	WhiteTotal, BlackTotal time.Duration
	WhiteLeft, BlackLeft   time.Duration
	LastStart              time.Time

	Started time.Time
	Moves   []Move
	Board   *Board
}

// ToMove returns the colour that plays the next move.
func (g *Game) ToMove() Colour {
	if len(g.Moves)&1 == 1 {
		return White
	}
	return Black
}

// Player returns the name of the engine playing C.
func (g *Game) Player(c Colour) string {
	if c == White {
		return g.White
	}
	return g.Black
}

// RatingOf returns the display rating of the engine playing C.
func (g *Game) RatingOf(c Colour) string {
	if c == White {
		return g.WhiteRating
	}
	return g.BlackRating
}

// Left returns the remaining clock of the engine playing C.
func (g *Game) Left(c Colour) time.Duration {
	if c == White {
		return g.WhiteLeft
	}
	return g.BlackLeft
}

// Used returns the clock time the engine playing C has consumed.
func (g *Game) Used(c Colour) time.Duration {
	if c == White {
		return g.WhiteTotal - g.WhiteLeft
	}
	return g.BlackTotal - g.BlackLeft
}

// SetLeft updates the remaining clock of the engine playing C.
func (g *Game) SetLeft(c Colour, d time.Duration) {
	if c == White {
		g.WhiteLeft = d
	} else {
		g.BlackLeft = d
	}
}

// JoinMoves renders the move list as the flat "mv ms mv ms ..."
// sequence used in setup lines and archive records.
func (g *Game) JoinMoves() string {
	parts := make([]string, 0, 2*len(g.Moves))
	for _, m := range g.Moves {
		parts = append(parts, m.Text, strconv.FormatInt(m.Left.Milliseconds(), 10))
	}
	return strings.Join(parts, " ")
}

// JoinAnalysis renders the per move analysis records, one line per
// move, empty lines for moves that carried none.
func (g *Game) JoinAnalysis() string {
	lines := make([]string, len(g.Moves))
	for i, m := range g.Moves {
		lines[i] = m.Analysis
	}
	return strings.Join(lines, "\n")
}

// Timestamps are written in UTC throughout, at the precision each
// record needs.

// Stamp formats T as a full second timestamp.
func Stamp(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05")
}

// MinuteStamp formats T to minute precision, as used in user and game
// records.
func MinuteStamp(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04")
}

// DateStamp formats the date of T.
func DateStamp(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
