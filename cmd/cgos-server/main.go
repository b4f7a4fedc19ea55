// Entry Point
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

package main

import (
	"go-cgos/cmd"
	"go-cgos/db"
	"go-cgos/proto"
	"go-cgos/sched"
	"go-cgos/tourn"
	"go-cgos/web"
)

func main() {
	c := cmd.Load()
	st := cmd.MakeState()

	// Registration order is shutdown order, reversed: the listeners
	// go down first, the database last.
	db.Register(st, c)
	tourn.Register(st, c)
	sched.Register(st)
	proto.Register(st)
	web.Register(st, c)

	st.Run(c)
}
