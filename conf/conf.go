// Configuration Specification
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

package conf

import (
	"time"

	cgos "go-cgos"
)

// Internal representation of the configuration file
type conf struct {
	Server struct {
		Name string `toml:"name"`
		Port uint   `toml:"port"`
		Log  string `toml:"log"`
		Info string `toml:"info"` // message of the day
	} `toml:"server"`
	Game struct {
		BoardSize    int     `toml:"boardsize"`
		Komi         float64 `toml:"komi"`
		Level        uint    `toml:"level"`         // seconds per player
		Ko           string  `toml:"ko"`            // "positional" or "simple"
		TimeGift     float64 `toml:"time_gift"`     // seconds of leeway per move
		SaveInterval int     `toml:"save_interval"` // plies between running sgf saves
	} `toml:"game"`
	Match struct {
		Mode       string  `toml:"mode"` // "auto" or "admin"
		AnchorRate float64 `toml:"anchor_rate"`
	} `toml:"match"`
	Rating struct {
		Default float64 `toml:"default"`
		MinK    float64 `toml:"min_k"`
		MaxK    float64 `toml:"max_k"`
	} `toml:"rating"`
	Database struct {
		State   string `toml:"state"`
		Archive string `toml:"archive"`
	} `toml:"database"`
	Users struct {
		Hash bool   `toml:"hash_passwords"`
		Bad  string `toml:"bad_file"`
	} `toml:"users"`
	Web struct {
		Data      string `toml:"data"`
		HTML      string `toml:"html"`
		SGF       string `toml:"sgf"`
		Compress  bool   `toml:"compress_sgf"`
		Port      uint   `toml:"port"`
		Websocket bool   `toml:"websocket"`
	} `toml:"web"`
	KillFile string `toml:"kill_file"`
}

// A MatchMode decides who creates new games.
type MatchMode uint8

const (
	// MODE_AUTO lets the scheduler pair waiting engines each round.
	MODE_AUTO MatchMode = iota
	// MODE_ADMIN leaves match creation to the admin console.
	MODE_ADMIN
)

// Public configuration
type Conf struct {
	ServerName string
	LogLevel   string
	InfoMsg    string // sent as an info line to fresh logins

	// Protocol Configuration
	TCPPort uint16 // Port for accepting engine and viewer connections

	// Game Configuration
	BoardSize    int
	Komi         float64
	Level        time.Duration // Main time per player
	Ko           cgos.KoRule
	Leeway       time.Duration // Grace subtracted from measured elapsed time
	SaveInterval int           // Plies between intermediate SGF saves, 0 disables

	// Match making
	Mode       MatchMode
	AnchorRate float64 // Chance of letting an anchor pair meet

	// Rating Configuration
	DefaultRating float64
	MinK, MaxK    float64

	// Database Configuration
	StateFile   string // Live state database
	ArchiveFile string // Finished game archive

	// User accounts
	HashPasswords bool // Store bcrypt digests instead of plain secrets
	BadUsersFile  string

	// Web output
	DataFile    string // Snapshot file, its directory doubles as scratch space
	HTMLDir     string
	SGFDir      string // SGF tree below HTMLDir
	CompressSGF bool
	WebPort     uint16 // Port of the websocket viewer bridge
	WebSocket   bool   // Is the websocket bridge enabled

	KillFile string // Polled at round boundaries, requests shutdown
}

// Configuration object used by default
var defaultConfig = Conf{
	ServerName: "cgos-9x9",
	LogLevel:   "info",

	// Protocol Configuration
	TCPPort: 6867,

	// Game Configuration
	BoardSize:    9,
	Komi:         7.5,
	Level:        5 * time.Minute,
	Ko:           cgos.PositionalKo,
	Leeway:       time.Second,
	SaveInterval: 20,

	// Match making
	Mode:       MODE_AUTO,
	AnchorRate: 0.10,

	// Rating Configuration
	DefaultRating: 1600,
	MinK:          16,
	MaxK:          60,

	// Database Configuration
	StateFile:   "cgos-state.db",
	ArchiveFile: "cgos-archive.db",

	// User accounts
	HashPasswords: false,
	BadUsersFile:  "bad_users.txt",

	// Web output
	DataFile:  "web/cgos.dta",
	HTMLDir:   "web",
	SGFDir:    "sgf",
	WebPort:   8080,
	WebSocket: true,

	KillFile: "kill.txt",
}
