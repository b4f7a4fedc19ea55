// Viewer Broadcast
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
	"fmt"
	"strings"

	"go-cgos/proto"
)

// How much archive history a fresh viewer is shown.
const viewerHistory = 40

// Viewer is a passive connection that watches games.
type Viewer struct {
	m    *Manager
	id   int64
	conn *proto.Conn

	observed map[int64]bool
}

// matchFromDta condenses an archived record into its announcement
// line.
func matchFromDta(gid int64, dta string) (string, bool) {
	f := strings.Fields(dta)
	if len(f) < 8 {
		return "", false
	}
	return fmt.Sprintf("match %d %s %s %s %s %s %s %s",
		gid, f[0], f[1], f[2], f[3], f[4], f[5], f[len(f)-1]), true
}

// attachViewer registers a new viewer and catches it up: recent
// archived games first, then everything running.
func (m *Manager) attachViewer(conn *proto.Conn) *Viewer {
	m.nextViewer++
	v := &Viewer{
		m:        m,
		id:       m.nextViewer,
		conn:     conn,
		observed: make(map[int64]bool),
	}
	m.viewers[v.id] = v

	if msg := m.conf.InfoMsg; msg != "" {
		conn.Send("info %s", msg)
	}
	for _, a := range m.st.Database.ArchiveRecent(viewerHistory) {
		if line, ok := matchFromDta(a.Gid, a.Dta); ok {
			conn.Send("%s", line)
		}
	}
	for _, gid := range m.gids() {
		conn.Send("%s", m.matchLine(m.games[gid]))
	}
	return v
}

func (v *Viewer) handle(line string) {
	word, args := proto.Split(line)
	switch word {
	case "observe":
		var gid int64
		if proto.Parse(args, &gid) != nil {
			v.conn.Send("Error: bad game id")
			return
		}
		v.observe(gid)
	case "quit":
		v.drop()
		v.conn.Kill()
	default:
		// Viewers are passive; anything else is noise.
	}
}

// observe subscribes the viewer to GID and replies with the current
// state: the live setup, the archived record, or a miss marker.
func (v *Viewer) observe(gid int64) {
	if g, ok := v.m.games[gid]; ok {
		v.observed[gid] = true
		if v.m.observers[gid] == nil {
			v.m.observers[gid] = make(map[int64]*Viewer)
		}
		v.m.observers[gid][v.id] = v

		line := fmt.Sprintf("setup %d - - %d %s %s(%s) %s(%s) %d",
			gid, v.m.conf.BoardSize, komiString(v.m.conf.Komi),
			g.White, g.WhiteRating, g.Black, g.BlackRating,
			g.WhiteTotal.Milliseconds())
		if len(g.Moves) > 0 {
			line += " " + g.JoinMoves()
		}
		v.conn.Send("%s", line)
		return
	}

	if dta, ok := v.m.st.Database.ArchivedGame(gid); ok {
		v.conn.Send("setup %d %s", gid, dta)
		return
	}
	v.conn.Send("setup %d ?", gid)
}

// drop unregisters the viewer.
func (v *Viewer) drop() {
	delete(v.m.viewers, v.id)
	for gid := range v.observed {
		delete(v.m.observers[gid], v.id)
	}
}
