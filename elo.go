// Elo Rating Calculation
//
// Copyright (c) 2023  The go-cgos authors
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
	"fmt"
	"math"
)

// Game scores from the rated player's point of view.
const (
	Win  = 1.0
	Draw = 0.5
	Loss = 0.0
)

// Expectation returns the predicted score of a player rated ME against
// an opponent rated OPPONENT.
//
// https://en.wikipedia.org/wiki/Elo_rating_system#Mathematical_details
func Expectation(me, opponent float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (opponent-me)/400.0))
}

// NewRating applies one game with score RESULT to the rating ME, using
// the development factor K.
func NewRating(me, opponent, result, k float64) float64 {
	return me + k*(result-Expectation(me, opponent))
}

// FormatRating renders R for listings and setup lines.  Ratings never
// display below zero and carry a "?" while K is still above the
// established threshold.
func FormatRating(r, k float64) string {
	rr := fmt.Sprintf("%.0f", r)
	if r < 0 {
		rr = "0"
	}
	if k > 16.0 {
		rr += "?"
	}
	return rr
}
