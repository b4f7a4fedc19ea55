// Shared Records
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

// Record is a finished game as stored in the state database.  Date
// holds a minute stamp, the time columns the milliseconds each side
// consumed.
type Record struct {
	Gid                      int64
	White, Black             string
	WhiteRating, BlackRating string
	Date                     string
	WhiteUsed, BlackUsed     int64
	Result                   string
	Final                    bool
}

// Archived is one row of the game archive: the canonical space joined
// record of a finished game.
type Archived struct {
	Gid int64
	Dta string
}

// Candidate is a player waiting to be paired.
type Candidate struct {
	Name   string
	Rating float64
	K      float64
}

// Pairing assigns colours for one new game of a round.
type Pairing struct {
	White, Black string
}

// RatingUpdate is the new account state of one player after a rating
// batch.
type RatingUpdate struct {
	Name     string
	Rating   float64
	K        float64
	Games    int
	LastGame string
}

// WinBy builds a result string like "B+Resign" or "W+Time".
func WinBy(c Colour, what string) string {
	if c == White {
		return "W+" + what
	}
	return "B+" + what
}

// Winner reports which colour a result favours, or false for a draw
// or an aborted game.
func Winner(result string) (Colour, bool) {
	switch {
	case len(result) > 0 && result[0] == 'W':
		return White, true
	case len(result) > 0 && result[0] == 'B':
		return Black, true
	default:
		return White, false
	}
}
