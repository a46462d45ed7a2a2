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

package match

import "laptudirm.com/x/duel/pkg/eve/match/games"

// Result represents the result of a single game from one player's
// point of view.
type Result int

const (
	Win  Result = +1
	Draw Result = 0
	Loss Result = -1
)

// ParseResult converts an oracle result string into red's Result.
// Anything other than a decisive result counts as a draw.
func ParseResult(str string) Result {
	switch str {
	case games.RedWins:
		return Win
	case games.BlueWins:
		return Loss
	default:
		return Draw
	}
}

// Flip returns the same game's Result from the opponent's point of view.
func (result Result) Flip() Result {
	return -result
}

// String returns a string representation of the given Result.
func (result Result) String() string {
	switch result {
	case Win:
		return "1-0"
	case Draw:
		return "1/2-1/2"
	case Loss:
		return "0-1"
	default:
		return "?-?"
	}
}

// Color is a side of the board. Red moves with the x stones.
type Color int

const (
	Red Color = iota
	Blue

	ColorN = 2
)

func (color Color) Other() Color {
	return color ^ 1
}

func (color Color) String() string {
	switch color {
	case Red:
		return "red"
	case Blue:
		return "blue"
	default:
		return "?"
	}
}

// EngineID tags the two engines of a run. Results are always counted
// from Engine1's point of view.
type EngineID int

const (
	Engine1 EngineID = iota
	Engine2
)

func (id EngineID) String() string {
	switch id {
	case Engine1:
		return "engine1"
	case Engine2:
		return "engine2"
	default:
		return "engine?"
	}
}

// OutcomeKind classifies how a game ended.
type OutcomeKind int

const (
	// Normal games ended on the board; Outcome.Result is the oracle's
	// result string.
	Normal OutcomeKind = iota

	// Timeout games were lost by Outcome.Loser on time. A player whose
	// process failed mid-game also loses this way, with Outcome.Err set.
	Timeout

	// IllegalMove games were forfeited by Outcome.Loser for playing
	// Outcome.Move.
	IllegalMove
)

func (kind OutcomeKind) String() string {
	switch kind {
	case Normal:
		return "normal"
	case Timeout:
		return "timeout"
	case IllegalMove:
		return "illegal move"
	default:
		return "unknown"
	}
}

// Outcome is the final state of a played game.
type Outcome struct {
	Kind   OutcomeKind
	Result string

	Loser Color
	Move  string
	Err   error

	Plies int
}

// RedResult returns the game's Result from red's point of view.
func (outcome Outcome) RedResult() Result {
	if outcome.Kind == Normal {
		return ParseResult(outcome.Result)
	}

	if outcome.Loser == Red {
		return Loss
	}

	return Win
}

// Disconnected reports whether the game was lost because a player's
// process stopped responding.
func (outcome Outcome) Disconnected() bool {
	return outcome.Kind == Timeout && outcome.Err != nil
}
