// SGF Game Records
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
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var sgfEscaper = strings.NewReplacer(
	"\\", "\\\\",
	"]", "\\]",
)

// EscapeSGF quotes the characters that end or escape an SGF property
// value.
func EscapeSGF(s string) string {
	return sgfEscaper.Replace(s)
}

// SGF renders the game record of G.  RES is the result property ("?"
// while the game still runs), DTE the date property and ERR an
// optional trailing comment explaining a loss by rule violation.
func SGF(g *Game, server string, size int, komi float64, level time.Duration, res, dte, err string) string {
	var s strings.Builder

	fmt.Fprintf(&s, "(;GM[1]FF[4]CA[UTF-8]\n")
	fmt.Fprintf(&s, "RU[Chinese]SZ[%d]KM[%s]TM[%d]\n",
		size, strconv.FormatFloat(komi, 'g', -1, 64), int(level.Seconds()))
	fmt.Fprintf(&s, "PW[%s]PB[%s]WR[%s]BR[%s]DT[%s]PC[%s]RE[%s]GN[%d]\n",
		g.White, g.Black, g.WhiteRating, g.BlackRating,
		dte, server, res, g.Id)

	colstr := [2]string{"B", "W"}
	ctm := 0
	tmc := 0 // nodes on the current line

	for _, move := range g.Moves {
		mv := strings.ToLower(move.Text)
		tleft := int(move.Left.Milliseconds() / 1000)

		if strings.HasPrefix(mv, "pas") {
			fmt.Fprintf(&s, ";%s[]%sL[%d]", colstr[ctm], colstr[ctm], tleft)
		} else {
			ccs := mv[0]
			if ccs > 'h' {
				ccs--
			}
			row, _ := strconv.Atoi(mv[1:])
			rrs := byte(size-row) + 'a'

			fmt.Fprintf(&s, ";%s[%c%c]%sL[%d]",
				colstr[ctm], ccs, rrs, colstr[ctm], tleft)

			if move.Analysis != "" {
				fmt.Fprintf(&s, "CC[%s]\n", EscapeSGF(move.Analysis))
				var v map[string]interface{}
				if json.Unmarshal([]byte(move.Analysis), &v) == nil {
					if c, ok := v["comment"]; ok {
						fmt.Fprintf(&s, "C[%s]",
							EscapeSGF(fmt.Sprint(c)))
					}
				}
			}
		}

		tmc++
		if tmc > 7 {
			s.WriteString("\n")
			tmc = 0
		}
		ctm ^= 1
	}

	if err != "" {
		fmt.Fprintf(&s, ";C[%s]\n", EscapeSGF(err))
	}
	s.WriteString(")\n")

	return s.String()
}
