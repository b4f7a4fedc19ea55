// Go Board Implementation
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
	"bytes"
	"strconv"
	"strings"
)

// Point states on the internal board array.
const (
	empty  byte = 0
	white  byte = 1
	black  byte = 2
	border byte = 3
)

// A KoRule selects which repetitions Make rejects.
type KoRule uint8

const (
	// SimpleKo forbids recreating the position before the last move.
	SimpleKo KoRule = iota
	// PositionalKo forbids recreating any earlier position.
	PositionalKo
)

// Results of Make.  Captures are reported as their positive count.
const (
	MoveOk        = 0
	MoveSuicide   = -1
	MoveKo        = -2
	MoveOccupied  = -3
	MoveMalformed = -4
)

// Column letters of the coordinate system, "i" excluded.
const columns = "abcdefghjklmnopqrstuvwxyz"

// Board holds a game of go on a SIZE x SIZE grid.  Points live in a
// one dimensional array of (SIZE+2)*(SIZE+1) cells whose first column
// and outer rows are border markers, so that the four neighbours of
// any playable point are plain offsets.
type Board struct {
	size  int
	size1 int
	ply   int
	cells []byte
	// Position snapshots per ply, his[0] is the empty board.
	his [][]byte
	// Accepted moves, upper case, passes recorded as "PASS".
	moves []string
	dirs  [4]int
	ko    KoRule
}

// MakeBoard returns an empty board of the given SIZE.
func MakeBoard(size int, ko KoRule) *Board {
	b := &Board{
		size:  size,
		size1: size + 1,
		dirs:  [4]int{-1, 1, size + 1, -(size + 1)},
		ko:    ko,
	}

	b.cells = make([]byte, (size+2)*(size+1))
	for y := 0; y < size+2; y++ {
		for x := 0; x < b.size1; x++ {
			if y < 1 || y > size || x == 0 {
				b.cells[y*b.size1+x] = border
			}
		}
	}
	b.his = append(b.his, clone(b.cells))

	return b
}

func clone(cells []byte) []byte {
	return append([]byte(nil), cells...)
}

// Size returns the board dimension.
func (b *Board) Size() int {
	return b.size
}

// Ply returns the number of accepted moves.
func (b *Board) Ply() int {
	return b.ply
}

// Moves returns the accepted moves, passes as "PASS".
func (b *Board) Moves() []string {
	return b.moves
}

// index translates MV into a cell index, 0 for a pass, or
// MoveMalformed if the move does not name a point on the board.
func (b *Board) index(mv string) int {
	m := strings.ToLower(mv)

	if strings.HasPrefix(m, "pa") {
		return 0
	}
	if len(m) < 2 || m[0] < 'a' || m[0] > 'z' {
		return MoveMalformed
	}
	for i := 1; i < len(m); i++ {
		if m[i] < '0' || m[i] > '9' {
			return MoveMalformed
		}
	}
	row, err := strconv.Atoi(m[1:])
	if err != nil {
		return MoveMalformed
	}

	y := b.size1 - row
	if y > b.size || y <= 0 {
		return MoveMalformed
	}
	x := strings.IndexByte(columns, m[0]) + 1
	if x == 0 || x > b.size {
		return MoveMalformed
	}

	return y*b.size1 + x
}

// captureGroup removes the group at TARGET if it has no liberties and
// returns the captured cells, or nil if a liberty was found.
func (b *Board) captureGroup(target int) []int {
	est := b.cells[target]
	lst := []int{target}
	ret := []int{target}
	flag := map[int]bool{target: true}

	for {
		var nlst []int
		for _, ix := range lst {
			for _, d := range b.dirs {
				p := d + ix

				if b.cells[p] == empty {
					return nil
				}
				if b.cells[p] == est && !flag[p] {
					nlst = append(nlst, p)
					ret = append(ret, p)
					flag[p] = true
				}
			}
		}

		if len(nlst) == 0 {
			for _, ix := range ret {
				b.cells[ix] = empty
			}
			return ret
		}
		lst = nlst
	}
}

// Make plays MV for the side to move.
//
// It returns the number of stones captured (0 for a plain move or a
// pass), or MoveSuicide, MoveKo, MoveOccupied or MoveMalformed if the
// move is rejected, in which case the position is unchanged.
func (b *Board) Make(mv string) int {
	m := strings.ToUpper(mv)
	fst := byte(2 - b.ply&1) // side to move
	est := fst ^ 3

	if strings.HasPrefix(m, "PA") {
		b.moves = append(b.moves, "PASS")
		b.record()
		return 0
	}

	ix := b.index(mv)
	if ix < 0 {
		return ix
	}
	if b.cells[ix] != empty {
		return MoveOccupied
	}

	b.cells[ix] = fst

	captured := 0
	for _, d := range b.dirs {
		p := d + ix
		if b.cells[p] == est {
			captured += len(b.captureGroup(p))
		}
	}

	if captured == 0 && len(b.captureGroup(ix)) > 0 {
		b.cells = clone(b.his[b.ply])
		return MoveSuicide
	}

	switch b.ko {
	case PositionalKo:
		for i := 0; i < b.ply; i++ {
			if bytes.Equal(b.his[i], b.cells) {
				b.cells = clone(b.his[b.ply])
				return MoveKo
			}
		}
	case SimpleKo:
		if b.ply > 0 && bytes.Equal(b.his[b.ply-1], b.cells) {
			b.cells = clone(b.his[b.ply])
			return MoveKo
		}
	}

	b.moves = append(b.moves, m)
	b.record()
	return captured
}

func (b *Board) record() {
	b.ply++
	b.his = append(b.his, clone(b.cells))
}

// Unmake takes back the last move.  It reports false on the initial
// position.
func (b *Board) Unmake() bool {
	if b.ply == 0 {
		return false
	}
	b.ply--
	b.his = b.his[:b.ply+1]
	b.moves = b.moves[:b.ply]
	b.cells = clone(b.his[b.ply])
	return true
}

// TwoPass reports whether the game just ended with two consecutive
// passes.
func (b *Board) TwoPass() bool {
	return b.ply > 1 &&
		b.moves[b.ply-1] == "PASS" &&
		b.moves[b.ply-2] == "PASS"
}

// scored returns a copy of the board with every empty region that
// borders a single colour filled with that colour.  Regions touching
// both colours stay empty.
func (b *Board) scored() []byte {
	sc := clone(b.cells)

	for x := 1; x < b.size1; x++ {
		for y := 1; y < b.size1; y++ {
			i := y*b.size1 + x
			if sc[i] != empty {
				continue
			}

			lst := []int{i}
			flag := map[int]bool{i: true}
			var cc byte

			for len(lst) > 0 {
				var nlst []int
				for _, ix := range lst {
					for _, d := range b.dirs {
						p := d + ix

						switch sc[p] {
						case empty:
							if !flag[p] {
								nlst = append(nlst, p)
								flag[p] = true
							}
						case white:
							cc |= white
						case black:
							cc |= black
						}
					}
				}
				lst = nlst
			}

			if cc == white || cc == black {
				for ix := range flag {
					sc[ix] = cc
				}
			}
		}
	}

	return sc
}

// Score returns the Tromp-Taylor area count, black minus white, before
// komi.  All stones on the board are treated as alive.
func (b *Board) Score() int {
	sc := b.scored()

	score := 0
	for y := 1; y <= b.size; y++ {
		for x := 1; x <= b.size; x++ {
			switch sc[y*b.size1+x] {
			case black:
				score++
			case white:
				score--
			}
		}
	}
	return score
}

// String renders the position row by row, top row first, '.' for
// empty, 'O' for white and 'X' for black.
func (b *Board) String() string {
	var sb strings.Builder
	for y := 1; y <= b.size; y++ {
		for x := 1; x <= b.size; x++ {
			switch b.cells[y*b.size1+x] {
			case empty:
				sb.WriteByte('.')
			case white:
				sb.WriteByte('O')
			case black:
				sb.WriteByte('X')
			default:
				sb.WriteByte('#')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
