// Configuration loading and dumping
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
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	cgos "go-cgos"

	"github.com/BurntSushi/toml"
)

// Parse a configuration from R on top of the defaults
func load(r io.Reader) (*Conf, error) {
	var data conf
	md, err := toml.NewDecoder(r).Decode(&data)
	if err != nil {
		return nil, err
	}

	c := defaultConfig

	if data.Server.Name != "" {
		c.ServerName = data.Server.Name
	}
	if data.Server.Port != 0 {
		c.TCPPort = uint16(data.Server.Port)
	}
	if data.Server.Log != "" {
		c.LogLevel = data.Server.Log
	}
	if data.Server.Info != "" {
		c.InfoMsg = data.Server.Info
	}

	if data.Game.BoardSize != 0 {
		c.BoardSize = data.Game.BoardSize
	}
	if data.Game.Komi != 0 {
		c.Komi = data.Game.Komi
	}
	if data.Game.Level != 0 {
		c.Level = time.Duration(data.Game.Level) * time.Second
	}
	if data.Game.Ko != "" {
		switch strings.ToLower(data.Game.Ko) {
		case "positional":
			c.Ko = cgos.PositionalKo
		case "simple":
			c.Ko = cgos.SimpleKo
		default:
			return nil, fmt.Errorf("unknown ko rule %q", data.Game.Ko)
		}
	}
	if data.Game.TimeGift != 0 {
		c.Leeway = time.Duration(data.Game.TimeGift * float64(time.Second))
	}
	if data.Game.SaveInterval != 0 {
		c.SaveInterval = data.Game.SaveInterval
	}

	if data.Match.Mode != "" {
		switch strings.ToLower(data.Match.Mode) {
		case "auto":
			c.Mode = MODE_AUTO
		case "admin":
			c.Mode = MODE_ADMIN
		default:
			return nil, fmt.Errorf("unknown match mode %q", data.Match.Mode)
		}
	}
	if data.Match.AnchorRate != 0 {
		c.AnchorRate = data.Match.AnchorRate
	}

	if data.Rating.Default != 0 {
		c.DefaultRating = data.Rating.Default
	}
	if data.Rating.MinK != 0 {
		c.MinK = data.Rating.MinK
	}
	if data.Rating.MaxK != 0 {
		c.MaxK = data.Rating.MaxK
	}

	if data.Database.State != "" {
		c.StateFile = data.Database.State
	}
	if data.Database.Archive != "" {
		c.ArchiveFile = data.Database.Archive
	}

	if md.IsDefined("users", "hash_passwords") {
		c.HashPasswords = data.Users.Hash
	}
	if data.Users.Bad != "" {
		c.BadUsersFile = data.Users.Bad
	}

	if data.Web.Data != "" {
		c.DataFile = data.Web.Data
	}
	if data.Web.HTML != "" {
		c.HTMLDir = data.Web.HTML
	}
	if data.Web.SGF != "" {
		c.SGFDir = data.Web.SGF
	}
	if md.IsDefined("web", "compress_sgf") {
		c.CompressSGF = data.Web.Compress
	}
	if data.Web.Port != 0 {
		c.WebPort = uint16(data.Web.Port)
	}
	if md.IsDefined("web", "websocket") {
		c.WebSocket = data.Web.Websocket
	}

	if data.KillFile != "" {
		c.KillFile = data.KillFile
	}

	return &c, nil
}

// Open a configuration file and return it
func Open(name string) (*Conf, error) {
	file, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return load(file)
}

// Return a copy of the default configuration
func Default() *Conf {
	c := defaultConfig
	return &c
}

// Serialise the configuration into a writer
func (c *Conf) Dump(wr io.Writer) error {
	var data conf

	data.Server.Name = c.ServerName
	data.Server.Port = uint(c.TCPPort)
	data.Server.Log = c.LogLevel
	data.Server.Info = c.InfoMsg

	data.Game.BoardSize = c.BoardSize
	data.Game.Komi = c.Komi
	data.Game.Level = uint(c.Level / time.Second)
	switch c.Ko {
	case cgos.PositionalKo:
		data.Game.Ko = "positional"
	case cgos.SimpleKo:
		data.Game.Ko = "simple"
	}
	data.Game.TimeGift = c.Leeway.Seconds()
	data.Game.SaveInterval = c.SaveInterval

	switch c.Mode {
	case MODE_AUTO:
		data.Match.Mode = "auto"
	case MODE_ADMIN:
		data.Match.Mode = "admin"
	}
	data.Match.AnchorRate = c.AnchorRate

	data.Rating.Default = c.DefaultRating
	data.Rating.MinK = c.MinK
	data.Rating.MaxK = c.MaxK

	data.Database.State = c.StateFile
	data.Database.Archive = c.ArchiveFile

	data.Users.Hash = c.HashPasswords
	data.Users.Bad = c.BadUsersFile

	data.Web.Data = c.DataFile
	data.Web.HTML = c.HTMLDir
	data.Web.SGF = c.SGFDir
	data.Web.Compress = c.CompressSGF
	data.Web.Port = uint(c.WebPort)
	data.Web.Websocket = c.WebSocket

	data.KillFile = c.KillFile

	return toml.NewEncoder(wr).Encode(data)
}
