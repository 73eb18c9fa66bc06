// Copyright 2024 The go-ethereum Authors
// This file is part of go-ethereum.
//
// go-ethereum is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-ethereum is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-ethereum. If not, see <http://www.gnu.org/licenses/>.

package flags

import (
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"
)

// Flag categories, grouped in cli/v2's default help output the same way
// the teacher's own tools group input/output/network flags.
const (
	InputCategory   = "INPUT"
	OutputCategory  = "OUTPUT"
	NetworkCategory = "NETWORK"
)

// NewApp creates a cli.App with the defaults solmap's command shares.
func NewApp(usage string) *cli.App {
	app := cli.NewApp()
	app.Name = filepath.Base(os.Args[0])
	app.Usage = usage
	app.HideVersion = true
	return app
}
