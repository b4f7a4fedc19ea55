// Elo Batch
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

package sched

import (
	"log/slog"

	cgos "go-cgos"
	"go-cgos/conf"
)

// devScale maps a K factor onto [0, 1]: 0 for an established account
// at MinK, 1 for a fresh one at MaxK.  The opponent's scale dampens
// both the rating step and the K decay, so games against provisional
// accounts move a rating less.
func devScale(k float64, c *conf.Conf) float64 {
	if c.MaxK <= c.MinK {
		return 0
	}
	return (k - c.MinK) / (c.MaxK - c.MinK)
}

func clampK(k float64, c *conf.Conf) float64 {
	if k < c.MinK {
		return c.MinK
	}
	if k > c.MaxK {
		return c.MaxK
	}
	return k
}

// outcome scores a result for one colour.  Aborted games count as
// draws.
func outcome(result string, c cgos.Colour) float64 {
	winner, decided := cgos.Winner(result)
	if !decided {
		return cgos.Draw
	}
	if winner == c {
		return cgos.Win
	}
	return cgos.Loss
}

// rate folds all unfinalised games into the accounts.  Games are
// processed in gid order against the in-batch account state, so a
// player's second game of the batch sees the rating their first one
// produced.  The whole batch commits in one transaction.
func (s *scheduler) rate() {
	recs := s.st.Database.Unrated()
	if len(recs) == 0 {
		return
	}
	anchors := s.st.Database.Anchors()

	accounts := make(map[string]*cgos.RatingUpdate)
	account := func(name string) *cgos.RatingUpdate {
		if a, ok := accounts[name]; ok {
			return a
		}
		a := &cgos.RatingUpdate{Name: name, Rating: s.conf.DefaultRating, K: s.conf.MaxK}
		if u, _, ok := s.st.Database.LookupUser(name); ok {
			a.Rating, a.K = u.Rating, u.K
			a.Games, a.LastGame = u.Games, u.LastGame
		}
		return a
	}

	gids := make([]int64, 0, len(recs))
	for _, rec := range recs {
		gids = append(gids, rec.Gid)

		w, b := account(rec.White), account(rec.Black)
		wk, bk := clampK(w.K, s.conf), clampK(b.K, s.conf)
		ws, bs := devScale(wk, s.conf), devScale(bk, s.conf)

		we := cgos.Expectation(w.Rating, b.Rating)
		be := cgos.Expectation(b.Rating, w.Rating)

		w.Rating += wk * (1 - bs) * (outcome(rec.Result, cgos.White) - we)
		b.Rating += bk * (1 - ws) * (outcome(rec.Result, cgos.Black) - be)

		w.K = decayK(wk, bs, s.conf)
		b.K = decayK(bk, ws, s.conf)

		for _, a := range []*cgos.RatingUpdate{w, b} {
			if pin, ok := anchors[a.Name]; ok {
				a.Rating, a.K = pin, s.conf.MinK
			}
			a.Games++
			a.LastGame = rec.Date
			accounts[a.Name] = a
		}
	}

	updates := make([]cgos.RatingUpdate, 0, len(accounts))
	for _, a := range accounts {
		updates = append(updates, *a)
	}

	if err := s.st.Database.ApplyRatings(updates, gids); err != nil {
		slog.Error("rating batch failed", "games", len(gids), "error", err)
		return
	}
	s.st.Tournament.ApplyRatings(updates)
	slog.Info("rated games", "games", len(gids), "players", len(accounts))
}

// decayK shrinks K after a game, slower for accounts that have already
// settled, and never below the floor.
func decayK(k, oppScale float64, c *conf.Conf) float64 {
	f := 0.04
	if k <= 32 {
		f = 0.02
	}
	k *= 1 - f*oppScale
	if k < c.MinK {
		return c.MinK
	}
	return k
}
