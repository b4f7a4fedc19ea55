// Configuration and Flags
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
	"flag"
	"log/slog"
	"os"

	cgos "go-cgos"
	"go-cgos/conf"
)

const defconf = "cgos.toml"

var (
	cfile = defconf
	debug = false
	dump  = false

	port    uint
	wwwport uint
	state   string
	archive string
)

func init() {
	flag.StringVar(&cfile, "conf", cfile, "Path to configuration file")
	flag.BoolVar(&debug, "debug", debug, "Enable debug output")
	flag.BoolVar(&dump, "dump-config", dump, "Dump configuration to standard output")

	flag.UintVar(&port, "port", 0, "Port to use for engine and viewer connections")
	flag.UintVar(&wwwport, "wwwport", 0, "Port to use for the websocket bridge")
	flag.StringVar(&state, "state", "", "File to use for the state database")
	flag.StringVar(&archive, "archive", "", "File to use for the game archive")
}

// Load parses the flags, reads the configuration file and installs
// the logger.  Flag values override file values.
func Load() *conf.Conf {
	flag.Parse()

	c, err := conf.Open(cfile)
	if err != nil {
		if !os.IsNotExist(err) || cfile != defconf {
			slog.Error("cannot load configuration", "file", cfile, "error", err)
			os.Exit(1)
		}
		c = conf.Default()
	}

	if port != 0 {
		c.TCPPort = uint16(port)
	}
	if wwwport != 0 {
		c.WebPort = uint16(wwwport)
	}
	if state != "" {
		c.StateFile = state
	}
	if archive != "" {
		c.ArchiveFile = archive
	}
	if debug {
		c.LogLevel = "debug"
	}
	cgos.SetupLogging(c.LogLevel)

	if dump {
		if err := c.Dump(os.Stdout); err != nil {
			slog.Error("cannot dump configuration", "error", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	return c
}
