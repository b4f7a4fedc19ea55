// Web Snapshot
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

package web

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	cgos "go-cgos"
)

// WriteSnapshot rewrites the data file the web frontend polls: a
// timestamp header, the active accounts, the recently finished games
// and everything running right now.  The file is written next to its
// final name and renamed, so readers always see a complete snapshot.
func WriteSnapshot(file string, now time.Time, users []cgos.User, games []cgos.Record, running []string) error {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", cgos.Stamp(now))
	for _, u := range users {
		fmt.Fprintf(&b, "u %s %d %s %s\n",
			u.Name, u.Games, cgos.FormatRating(u.Rating, u.K), u.LastGame)
	}
	for _, g := range games {
		fmt.Fprintf(&b, "g %d %s %s %s %s %s %d %d %s\n",
			g.Gid, g.White, g.WhiteRating, g.Black, g.BlackRating,
			g.Date, g.WhiteUsed, g.BlackUsed, g.Result)
	}
	for _, line := range running {
		fmt.Fprintf(&b, "%s\n", line)
	}

	dir := filepath.Dir(file)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating web directory: %w", err)
	}

	tmp := filepath.Join(dir, "dta.cgos.tmp")
	if err := os.WriteFile(tmp, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := os.Rename(tmp, file); err != nil {
		return fmt.Errorf("publishing snapshot: %w", err)
	}
	return nil
}
