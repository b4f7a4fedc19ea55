// Database management
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

package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	cgos "go-cgos"
	"go-cgos/cmd"
	"go-cgos/conf"
)

//go:embed state/*.sql archive/*.sql
var sqlDir embed.FS

// A store is one SQLite database with a split between a read and a
// write handle.  The statements are loaded from the embedded .sql
// files: "create-" files bootstrap the schema, "select-" files are
// prepared on the read handle, everything else on the write handle.
type store struct {
	read, write *sql.DB

	queries  map[string]*sql.Stmt
	commands map[string]*sql.Stmt
}

func openStore(file, dir string) (*store, error) {
	read, err := sql.Open("sqlite3", file)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", file, err)
	}
	read.SetConnMaxLifetime(0)
	read.SetMaxIdleConns(1)

	write, err := sql.Open("sqlite3", file)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", file, err)
	}
	write.SetConnMaxLifetime(0)
	write.SetMaxIdleConns(1)
	write.SetMaxOpenConns(1)

	s := &store{
		read:     read,
		write:    write,
		queries:  make(map[string]*sql.Stmt),
		commands: make(map[string]*sql.Stmt),
	}

	for _, pragma := range []string{
		// https://www.sqlite.org/pragma.html
		"journal_mode = WAL",
		"synchronous = normal",
		"temp_store = memory",
	} {
		if _, err := s.write.Exec("PRAGMA " + pragma + ";"); err != nil {
			return nil, fmt.Errorf("PRAGMA %s: %w", pragma, err)
		}
	}

	entries, err := sqlDir.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}

		base := path.Base(entry.Name())
		data, err := fs.ReadFile(sqlDir, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}

		if strings.HasPrefix(base, "create-") {
			_, err = s.write.Exec(string(data))
			slog.Debug("executed query", "name", base)
		} else {
			query := strings.TrimSuffix(base, ".sql")
			if strings.HasPrefix(query, "select-") {
				s.queries[query], err = s.read.Prepare(string(data))
			} else {
				s.commands[query], err = s.write.Prepare(string(data))
			}
			slog.Debug("registered query", "name", query)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", entry.Name(), err)
		}
	}

	if len(s.queries) == 0 {
		panic("No queries loaded")
	}
	return s, nil
}

func (s *store) close() {
	if _, err := s.write.Exec("PRAGMA optimize;"); err != nil {
		slog.Error("database optimize", "error", err)
	}
	if err := s.write.Close(); err != nil {
		slog.Error("closing database", "error", err)
	}
	if err := s.read.Close(); err != nil {
		slog.Error("closing database", "error", err)
	}
}

type db struct {
	state   *store
	archive *store
}

// ReserveGids advances the persistent game id counter by N and
// returns the first id of the reserved block.
func (db *db) ReserveGids(n int) (int64, error) {
	var gid int64
	err := db.state.queries["select-gid"].QueryRow().Scan(&gid)
	if err != nil {
		return 0, fmt.Errorf("reading game id: %w", err)
	}
	_, err = db.state.commands["update-gid"].Exec(gid + int64(n))
	if err != nil {
		return 0, fmt.Errorf("advancing game id: %w", err)
	}
	return gid + 1, nil
}

func (db *db) LookupUser(name string) (*cgos.User, string, bool) {
	var (
		u      = cgos.User{Name: name}
		secret string
	)
	err := db.state.queries["select-user"].QueryRow(name).Scan(
		&secret, &u.Games, &u.Rating, &u.K, &u.LastGame)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slog.Error("user lookup", "name", name, "error", err)
		}
		return nil, "", false
	}
	return &u, secret, true
}

func (db *db) CreateUser(u *cgos.User, secret string) error {
	_, err := db.state.commands["insert-user"].Exec(
		u.Name, secret, u.Games, u.Rating, u.K, u.LastGame)
	if err != nil {
		return fmt.Errorf("creating user %s: %w", u.Name, err)
	}
	return nil
}

func (db *db) SetPassword(name, secret string) error {
	_, err := db.state.commands["update-pass"].Exec(secret, name)
	if err != nil {
		return fmt.Errorf("updating password of %s: %w", name, err)
	}
	return nil
}

func (db *db) Anchors() map[string]float64 {
	anchors := make(map[string]float64)
	rows, err := db.state.queries["select-anchors"].Query()
	if err != nil {
		slog.Error("anchor query", "error", err)
		return anchors
	}
	defer rows.Close()

	for rows.Next() {
		var (
			name   string
			rating float64
		)
		if err := rows.Scan(&name, &rating); err != nil {
			slog.Error("anchor scan", "error", err)
			return anchors
		}
		anchors[name] = rating
	}
	if err := rows.Err(); err != nil {
		slog.Error("anchor query", "error", err)
	}
	return anchors
}

// PriorGames counts the finished games WHITE already played against
// BLACK with exactly these colours.
func (db *db) PriorGames(white, black string) int {
	var n int
	err := db.state.queries["select-prior"].QueryRow(white, black).Scan(&n)
	if err != nil {
		slog.Error("pairing count", "error", err)
		return 0
	}
	return n
}

func (db *db) CountClient(prefix string) {
	if _, err := db.state.commands["insert-client"].Exec(prefix); err != nil {
		slog.Error("client count", "prefix", prefix, "error", err)
	}
}

func (db *db) RecordGame(rec *cgos.Record) error {
	_, err := db.state.commands["insert-game"].Exec(
		rec.Gid, rec.White, rec.WhiteRating, rec.Black, rec.BlackRating,
		rec.Date, rec.WhiteUsed, rec.BlackUsed, rec.Result)
	if err != nil {
		return fmt.Errorf("recording game %d: %w", rec.Gid, err)
	}
	return nil
}

func (db *db) scanRecords(rows *sql.Rows, err error) []cgos.Record {
	if err != nil {
		slog.Error("game query", "error", err)
		return nil
	}
	defer rows.Close()

	var recs []cgos.Record
	for rows.Next() {
		var r cgos.Record
		err = rows.Scan(&r.Gid, &r.White, &r.WhiteRating,
			&r.Black, &r.BlackRating,
			&r.Date, &r.WhiteUsed, &r.BlackUsed, &r.Result)
		if err != nil {
			slog.Error("game scan", "error", err)
			return recs
		}
		recs = append(recs, r)
	}
	if err = rows.Err(); err != nil {
		slog.Error("game query", "error", err)
	}
	return recs
}

func (db *db) Unrated() []cgos.Record {
	return db.scanRecords(db.state.queries["select-unrated"].Query())
}

func (db *db) RecordsSince(stamp string) []cgos.Record {
	return db.scanRecords(db.state.queries["select-since"].Query(stamp))
}

// ApplyRatings commits one rating batch: every account update and
// every finalised game in a single transaction.
func (db *db) ApplyRatings(updates []cgos.RatingUpdate, gids []int64) error {
	tx, err := db.state.write.Begin()
	if err != nil {
		return fmt.Errorf("rating batch: %w", err)
	}

	for _, u := range updates {
		_, err = tx.Stmt(db.state.commands["update-rating"]).Exec(
			u.Games, u.Rating, u.K, u.LastGame, u.Name)
		if err != nil {
			goto fail
		}
	}
	for _, gid := range gids {
		_, err = tx.Stmt(db.state.commands["update-final"]).Exec(gid)
		if err != nil {
			goto fail
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("rating batch: %w", err)
	}
	return nil

fail:
	if rerr := tx.Rollback(); rerr != nil {
		slog.Error("rating batch rollback", "error", rerr)
	}
	return fmt.Errorf("rating batch: %w", err)
}

func (db *db) ActiveUsers(stamp string) []cgos.User {
	rows, err := db.state.queries["select-active"].Query(stamp)
	if err != nil {
		slog.Error("user query", "error", err)
		return nil
	}
	defer rows.Close()

	var users []cgos.User
	for rows.Next() {
		var u cgos.User
		err = rows.Scan(&u.Name, &u.Games, &u.Rating, &u.K, &u.LastGame)
		if err != nil {
			slog.Error("user scan", "error", err)
			return users
		}
		users = append(users, u)
	}
	if err = rows.Err(); err != nil {
		slog.Error("user query", "error", err)
	}
	return users
}

func (db *db) ArchiveGame(gid int64, dta, analysis string) error {
	_, err := db.archive.commands["insert-game"].Exec(gid, dta, analysis)
	if err != nil {
		return fmt.Errorf("archiving game %d: %w", gid, err)
	}
	return nil
}

func (db *db) ArchivedGame(gid int64) (string, bool) {
	var dta string
	err := db.archive.queries["select-game"].QueryRow(gid).Scan(&dta)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slog.Error("archive lookup", "gid", gid, "error", err)
		}
		return "", false
	}
	return dta, true
}

// ArchiveRecent returns up to N most recent archived games, oldest
// first.
func (db *db) ArchiveRecent(n int) []cgos.Archived {
	rows, err := db.archive.queries["select-recent"].Query(n)
	if err != nil {
		slog.Error("archive query", "error", err)
		return nil
	}
	defer rows.Close()

	var recent []cgos.Archived
	for rows.Next() {
		var a cgos.Archived
		if err = rows.Scan(&a.Gid, &a.Dta); err != nil {
			slog.Error("archive scan", "error", err)
			return recent
		}
		recent = append(recent, a)
	}
	if err = rows.Err(); err != nil {
		slog.Error("archive query", "error", err)
	}

	for i, j := 0, len(recent)-1; i < j; i, j = i+1, j-1 {
		recent[i], recent[j] = recent[j], recent[i]
	}
	return recent
}

func (db *db) Start(*cmd.State, *conf.Conf) error { return nil }

func (db *db) Shutdown() {
	db.archive.close()
	db.state.close()
}

func (*db) String() string { return "Database Manager" }

// Register opens both stores and installs the database manager.
// Open time failures are fatal.
func Register(st *cmd.State, c *conf.Conf) {
	state, err := openStore(c.StateFile, "state")
	if err != nil {
		slog.Error("cannot open state database", "error", err)
		os.Exit(1)
	}
	archive, err := openStore(c.ArchiveFile, "archive")
	if err != nil {
		slog.Error("cannot open archive database", "error", err)
		os.Exit(1)
	}

	st.Register(cmd.Database(&db{state: state, archive: archive}))
}
