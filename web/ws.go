// Websocket Bridge
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
	"io"
	"log/slog"
	"net/http"

	"go-cgos/cmd"

	"github.com/gorilla/websocket"
)

// adapted from https://github.com/gorilla/websocket/issues/282

// wsrwc is a read-write-closer over a websocket, so a browser viewer
// can speak the same line protocol as a TCP one.
type wsrwc struct {
	*websocket.Conn
	r io.Reader
}

func (c *wsrwc) Write(p []byte) (int, error) {
	err := c.WriteMessage(websocket.TextMessage, p)
	if err != nil {
		return 0, err
	}
	return len(p), nil
}

func (c *wsrwc) Read(p []byte) (int, error) {
	for {
		if c.r == nil {
			// Advance to next message.
			var err error
			_, c.r, err = c.NextReader()
			if err != nil {
				return 0, err
			}
		}
		n, err := c.r.Read(p)
		if err == io.EOF {
			// At end of message.
			c.r = nil
			if n > 0 {
				return n, nil
			} else {
				// No data read, continue to next message.
				continue
			}
		}
		return n, err
	}
}

// upgrader turns an HTTP request into a websocket and hands it to the
// dispatcher like any other connection.
func upgrader(st *cmd.State) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := (&websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		}).Upgrade(w, r, nil)
		if err != nil {
			slog.Debug("cannot upgrade connection", "error", err)
			w.WriteHeader(400)
			return
		}

		slog.Info("websocket connection", "remote", conn.RemoteAddr())
		st.Tournament.Accept(&wsrwc{Conn: conn})
	}
}
