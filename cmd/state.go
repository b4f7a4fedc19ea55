// Shared State
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

package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	cgos "go-cgos"
	"go-cgos/conf"

	"golang.org/x/sync/errgroup"
)

// A Manager is a subsystem with its own lifecycle.  Start blocks
// until the manager stops and returns nil on a regular shutdown.
type Manager interface {
	fmt.Stringer
	Start(*State, *conf.Conf) error
	Shutdown()
}

// Database is the persistence interface shared by the dispatcher and
// the scheduler.  Runtime failures are reported as errors and never
// stop the server.
type Database interface {
	Manager

	// State store
	ReserveGids(n int) (int64, error)
	LookupUser(name string) (*cgos.User, string, bool)
	CreateUser(u *cgos.User, secret string) error
	SetPassword(name, secret string) error
	Anchors() map[string]float64
	PriorGames(white, black string) int
	CountClient(prefix string)
	RecordGame(rec *cgos.Record) error
	Unrated() []cgos.Record
	ApplyRatings(updates []cgos.RatingUpdate, gids []int64) error
	RecordsSince(stamp string) []cgos.Record
	ActiveUsers(stamp string) []cgos.User

	// Archive store
	ArchiveGame(gid int64, dta, analysis string) error
	ArchivedGame(gid int64) (string, bool)
	ArchiveRecent(n int) []cgos.Archived
}

// Tournament is the dispatcher that owns all sessions, live games and
// viewers.  Every method is safe to call from any goroutine; the
// implementation serialises them internally.
type Tournament interface {
	Manager

	// Accept hands a fresh client connection to the dispatcher.
	Accept(io.ReadWriteCloser)

	// Clock and round state, used by the scheduler.
	SweepClocks()
	LiveGames() int
	MaxRemaining() time.Duration
	Waiting() []cgos.Candidate
	KickBanned(map[string]bool)
	SetDefaultRating(float64)
	ApplyRatings([]cgos.RatingUpdate)
	StartRound([]cgos.Pairing) int
	StartClocks()
	Viewers() int
	Announce(msg string)
	RunningLines(now time.Time) []string
}

type State struct {
	Context context.Context
	Kill    context.CancelFunc
	Running bool

	Database   Database
	Tournament Tournament
	Managers   []Manager
}

func MakeState() *State {
	ctx, kill := context.WithCancel(context.Background())
	return &State{
		Context: ctx,
		Kill:    kill,
	}
}

func (st *State) Register(m Manager) {
	if st.Running {
		panic(fmt.Sprintf("Late register: %#v", m))
	}

	switch s := m.(type) {
	case Database:
		st.Database = s
	case Tournament:
		st.Tournament = s
	}

	st.Managers = append(st.Managers, m)
}

// Run starts all registered managers and blocks until one of them
// fails, an interrupt arrives or Kill is called.  Managers are shut
// down in reverse registration order.
func (st *State) Run(c *conf.Conf) {
	g, ctx := errgroup.WithContext(context.Background())
	for _, m := range st.Managers {
		m := m
		slog.Debug("starting manager", "manager", m.String())
		g.Go(func() error {
			if err := m.Start(st, c); err != nil {
				return fmt.Errorf("%s: %w", m, err)
			}
			return nil
		})
	}
	st.Running = true

	intr := make(chan os.Signal, 1)
	signal.Notify(intr, os.Interrupt)
	select {
	case <-intr:
		slog.Info("caught interrupt")
	case <-st.Context.Done():
		slog.Info("shutdown requested")
	case <-ctx.Done():
		slog.Error("a manager failed")
	}

	for i := len(st.Managers) - 1; i >= 0; i-- {
		slog.Debug("shutting down", "manager", st.Managers[i].String())
		st.Managers[i].Shutdown()
	}

	if err := g.Wait(); err != nil {
		slog.Error("shutdown", "error", err)
	}
}
