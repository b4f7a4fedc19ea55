// TCP interface
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

package proto

import (
	"errors"
	"fmt"
	"log/slog"
	"net"

	"go-cgos/cmd"
	"go-cgos/conf"
)

type Listener struct {
	conn net.Listener
}

func (*Listener) String() string { return "TCP Handler" }

func (l *Listener) Start(st *cmd.State, c *conf.Conf) error {
	if st.Tournament == nil {
		panic("No tournament manager")
	}

	var err error
	l.conn, err = net.Listen("tcp", fmt.Sprintf(":%d", c.TCPPort))
	if err != nil {
		return fmt.Errorf("listen on port %d: %w", c.TCPPort, err)
	}

	slog.Info("accepting connections", "port", c.TCPPort)
	for {
		conn, err := l.conn.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			slog.Error("accept", "error", err)
			continue
		}
		st.Tournament.Accept(conn)
	}
}

func (l *Listener) Shutdown() {
	if l.conn != nil {
		if err := l.conn.Close(); err != nil {
			slog.Error("closing listener", "error", err)
		}
	}
}

func Register(st *cmd.State) {
	st.Register(&Listener{})
}
