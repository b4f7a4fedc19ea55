// Protocol Handling
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
	"strconv"
	"strings"
)

// Error to return if a message couldn't be parsed
var ErrArgumentMismatch = errors.New("argument mismatch")

// Split separates the command word of a line from its argument rest.
func Split(line string) (string, string) {
	line = strings.TrimSpace(line)
	i := strings.IndexAny(line, " \t")
	if i < 0 {
		return line, ""
	}
	return line[:i], strings.TrimSpace(line[i+1:])
}

// Parse destructures the whitespace separated fields of RAW into
// PARAMS.  Trailing *string, *int64 and *float64 pointers may be
// omitted on the wire when they are marked optional by passing them
// after a nil separator.
//
// Without a nil separator the field count must match exactly.  The
// count is checked before any conversion, so a mismatched line never
// reports a stray syntax error instead.
func Parse(raw string, params ...interface{}) error {
	var (
		required = len(params)
		optional = 0
	)
	for i, p := range params {
		if p == nil {
			required = i
			optional = len(params) - i - 1
			break
		}
	}

	fields := strings.Fields(raw)
	if len(fields) < required || len(fields) > required+optional {
		return ErrArgumentMismatch
	}

	for i, arg := range fields {
		if i >= required {
			i++ // skip the nil separator
		}

		var err error
		switch param := params[i].(type) {
		case *string:
			*param = arg
		case *int:
			*param, err = strconv.Atoi(arg)
		case *int64:
			*param, err = strconv.ParseInt(arg, 10, 64)
		case *float64:
			*param, err = strconv.ParseFloat(arg, 64)
		default:
			panic("unsupported parameter type")
		}
		if err != nil {
			return err
		}
	}
	return nil
}
