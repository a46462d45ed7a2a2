// Copyright © 2024 Rak Laptudirm <rak@laptudirm.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package games

import "fmt"

// GetOracle returns a fresh rules oracle for the named game.
func GetOracle(name string) (Oracle, error) {
	switch name {
	case "ataxx", "":
		return &AtaxxOracle{}, nil
	default:
		return nil, fmt.Errorf("games: unsupported game %q", name)
	}
}

// Oracle is the arbiter's view of a game's rules. The match runner never
// looks inside a position; it only asks the oracle.
type Oracle interface {
	// Initialize sets up the position described by fen.
	Initialize(fen string) error

	// FEN returns the current position.
	FEN() string

	// IsLegal reports whether mov can be played in the current position.
	IsLegal(mov string) bool

	// MakeMove plays mov, which must be legal.
	MakeMove(mov string) error

	// GameOver reports whether the current position is terminal.
	GameOver() bool

	// Result returns "1-0", "0-1", "1/2-1/2", or "*" if the game is not
	// over yet. The first player is the one who moves with x (red).
	Result() string
}

// Result strings as reported by an Oracle.
const (
	RedWins  = "1-0"
	BlueWins = "0-1"
	Draw     = "1/2-1/2"
	Ongoing  = "*"
)
