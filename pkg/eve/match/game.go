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

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"laptudirm.com/x/duel/pkg/eve/match/games"
)

// Player is the part of an Engine a Game talks to.
type Player interface {
	Name() string
	NewGame() error
	Position(fen string) error
	Go(rtime, btime, inc time.Duration) (string, error)
}

type GameConfig struct {
	Oracle  games.Oracle
	Opening string

	// Players holds the player of each color, indexed by Color.
	Players [ColorN]Player

	Time TimeControl

	// Now is the game's clock source. It defaults to time.Now.
	Now func() time.Time
}

type GameState int

const (
	NotStarted GameState = iota
	InProgress
	Finished
)

// Game is a single game between two players from a fixed opening.
type Game struct {
	oracle  games.Oracle
	players [ColorN]Player
	clocks  [ColorN]time.Duration

	tc  TimeControl
	now func() time.Time

	toMove Color
	state  GameState
}

// NewGame sets up a game from config. Both clocks start at the base
// time and the first mover is read from the opening.
func NewGame(config GameConfig) (*Game, error) {
	if config.Oracle == nil {
		return nil, errors.New("new game: no oracle")
	}

	for color, player := range config.Players {
		if player == nil {
			return nil, fmt.Errorf("new game: no %s player", Color(color))
		}
	}

	stm, err := SideToMove(config.Opening)
	if err != nil {
		return nil, fmt.Errorf("new game: %w", err)
	}

	if err := config.Oracle.Initialize(config.Opening); err != nil {
		return nil, fmt.Errorf("new game: %w", err)
	}

	game := &Game{
		oracle:  config.Oracle,
		players: config.Players,
		tc:      config.Time,
		now:     config.Now,
		toMove:  stm,
	}

	if game.now == nil {
		game.now = time.Now
	}

	game.clocks[Red] = config.Time.Base
	game.clocks[Blue] = config.Time.Base
	return game, nil
}

func (game *Game) State() GameState {
	return game.state
}

// Clock returns the remaining time of the given color.
func (game *Game) Clock(color Color) time.Duration {
	return game.clocks[color]
}

// Play plays the game to completion and returns its outcome. A player
// whose clock runs out loses on time even if its move was illegal, and
// an illegal move is never played on the board.
func (game *Game) Play() Outcome {
	game.state = InProgress
	defer func() { game.state = Finished }()

	for color, player := range game.players {
		if err := player.NewGame(); err != nil {
			return Outcome{Kind: Timeout, Loser: Color(color), Err: err}
		}
	}

	for plies := 0; ; plies++ {
		fen := positionFEN(game.oracle.FEN())
		for color, player := range game.players {
			if err := player.Position(fen); err != nil {
				return Outcome{Kind: Timeout, Loser: Color(color), Err: err, Plies: plies}
			}
		}

		side := game.toMove

		start := game.now()
		move, err := game.players[side].Go(game.clocks[Red], game.clocks[Blue], game.tc.Inc)
		game.clocks[side] -= game.now().Sub(start).Round(time.Millisecond)

		switch {
		case err != nil:
			return Outcome{Kind: Timeout, Loser: side, Err: err, Plies: plies}
		case game.clocks[side] <= 0:
			return Outcome{Kind: Timeout, Loser: side, Move: move, Plies: plies}
		case !game.oracle.IsLegal(move):
			return Outcome{Kind: IllegalMove, Loser: side, Move: move, Plies: plies}
		}

		if err := game.oracle.MakeMove(move); err != nil {
			return Outcome{Kind: IllegalMove, Loser: side, Move: move, Err: err, Plies: plies}
		}

		if game.oracle.GameOver() {
			return Outcome{Kind: Normal, Result: game.oracle.Result(), Move: move, Plies: plies + 1}
		}

		game.clocks[side] += game.tc.Inc
		game.toMove = side.Other()
	}
}

// uai engines expect red and blue stones as r and b.
var uaiLetters = strings.NewReplacer("x", "r", "o", "b")

func positionFEN(fen string) string {
	return uaiLetters.Replace(fen)
}
