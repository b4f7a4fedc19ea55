// Web Server Manager
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
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go-cgos/cmd"
	"go-cgos/conf"
)

// web serves the snapshot file, the SGF tree and the websocket viewer
// bridge.
type web struct {
	server *http.Server
}

func (s *web) Start(st *cmd.State, c *conf.Conf) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "User-agent: *\nDisallow: /")
	})
	mux.Handle("/", http.FileServer(http.Dir(c.HTMLDir)))

	if c.WebSocket {
		slog.Info("accepting websocket viewers on /socket")
		mux.HandleFunc("/socket", upgrader(st))
	}

	addr := fmt.Sprintf(":%d", c.WebPort)
	slog.Info("listening via HTTP", "addr", addr)

	s.server = &http.Server{Addr: addr, Handler: mux}
	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *web) Shutdown() {
	if s.server == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		slog.Error("web shutdown", "error", err)
	}
}

func (*web) String() string { return "Web Server" }

func Register(st *cmd.State, c *conf.Conf) {
	if c.WebPort == 0 {
		return
	}
	st.Register(&web{})
}
