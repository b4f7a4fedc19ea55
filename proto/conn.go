// Client Connection Management
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
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// Queue bounds per connection.  A client that lets its outbound queue
// fill up is dropped rather than allowed to stall the dispatcher.
const (
	inboundBacklog  = 32
	outboundBacklog = 64
)

// Conn wraps a network connection into a line oriented duplex
// channel.  A reader goroutine feeds inbound lines into a bounded
// channel and a writer goroutine drains a bounded outbound channel
// onto the socket, so that the dispatcher never blocks on a socket.
type Conn struct {
	rwc  io.ReadWriteCloser
	name string

	in  chan string
	out chan string

	ctx  context.Context
	kill context.CancelFunc
	once sync.Once
}

// Wrap starts the reader and writer for RWC.  NAME is only used in
// log records.
func Wrap(rwc io.ReadWriteCloser, name string) *Conn {
	ctx, kill := context.WithCancel(context.Background())
	c := &Conn{
		rwc:  rwc,
		name: name,
		in:   make(chan string, inboundBacklog),
		out:  make(chan string, outboundBacklog),
		ctx:  ctx,
		kill: kill,
	}
	go c.reader()
	go c.writer()
	return c
}

// Name returns the log identifier of the connection.
func (c *Conn) Name() string { return c.name }

// Lines returns the inbound channel.  It is closed once the peer
// disconnects or the connection is killed.
func (c *Conn) Lines() <-chan string { return c.in }

// Done is closed when the connection is dead.
func (c *Conn) Done() <-chan struct{} { return c.ctx.Done() }

func (c *Conn) reader() {
	defer close(c.in)

	scanner := bufio.NewScanner(c.rwc)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		slog.Debug("recv", "conn", c.name, "line", line)

		select {
		case c.in <- line:
		case <-c.ctx.Done():
			return
		}
	}

	// See https://github.com/golang/go/commit/e9ad52e46dee4b4f9c73ff44f44e1e234815800f
	err := scanner.Err()
	if err != nil && !strings.Contains(err.Error(), "use of closed network connection") {
		slog.Debug("read error", "conn", c.name, "error", err)
	}
	c.Kill()
}

func (c *Conn) writer() {
	for {
		select {
		case <-c.ctx.Done():
			// Flush what was queued before the kill, so final
			// error and gameover lines still reach the peer.
			for {
				select {
				case line := <-c.out:
					io.WriteString(c.rwc, line+"\n")
				default:
					c.rwc.Close()
					return
				}
			}
		case line := <-c.out:
			slog.Debug("send", "conn", c.name, "line", line)
			if _, err := io.WriteString(c.rwc, line+"\n"); err != nil {
				slog.Debug("write error", "conn", c.name, "error", err)
				c.Kill()
				c.rwc.Close()
				return
			}
		}
	}
}

// Send queues one line for the peer.  A full queue means the client
// stopped reading; the connection is killed instead of waiting.
func (c *Conn) Send(format string, args ...interface{}) {
	line := format
	if len(args) > 0 {
		line = fmt.Sprintf(format, args...)
	}

	select {
	case c.out <- line:
	case <-c.ctx.Done():
	default:
		slog.Warn("outbound queue full, dropping slow client", "conn", c.name)
		c.Kill()
	}
}

// Kill shuts the connection down.  It is safe to call repeatedly and
// from any goroutine.
func (c *Conn) Kill() {
	c.once.Do(func() {
		c.kill()
	})
}
