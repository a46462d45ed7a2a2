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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"laptudirm.com/x/duel/pkg/eve/match/games"
)

type fakeClock struct {
	now time.Time
}

func (clock *fakeClock) Now() time.Time {
	return clock.now
}

type turn struct {
	move  string
	spend time.Duration
	err   error
}

// scriptedPlayer plays a fixed list of turns, advancing the fake clock
// by each turn's thinking time.
type scriptedPlayer struct {
	name  string
	clock *fakeClock
	turns []turn

	newGameErr error
	positions  []string
	clocks     [][2]time.Duration
}

func (player *scriptedPlayer) Name() string { return player.name }

func (player *scriptedPlayer) NewGame() error { return player.newGameErr }

func (player *scriptedPlayer) Position(fen string) error {
	player.positions = append(player.positions, fen)
	return nil
}

func (player *scriptedPlayer) Go(rtime, btime, inc time.Duration) (string, error) {
	player.clocks = append(player.clocks, [2]time.Duration{rtime, btime})

	if len(player.turns) == 0 {
		return "", errors.New("out of moves")
	}

	turn := player.turns[0]
	player.turns = player.turns[1:]
	player.clock.now = player.clock.now.Add(turn.spend)
	return turn.move, turn.err
}

// mockOracle accepts the moves in legal and ends the game after end
// moves with the given result.
type mockOracle struct {
	fen    string
	legal  map[string]bool
	played []string
	end    int
	result string
}

func (oracle *mockOracle) Initialize(fen string) error {
	oracle.fen = fen
	return nil
}

func (oracle *mockOracle) FEN() string           { return oracle.fen }
func (oracle *mockOracle) IsLegal(m string) bool { return oracle.legal[m] }

func (oracle *mockOracle) MakeMove(m string) error {
	oracle.played = append(oracle.played, m)
	return nil
}

func (oracle *mockOracle) GameOver() bool {
	return len(oracle.played) >= oracle.end
}

func (oracle *mockOracle) Result() string {
	if !oracle.GameOver() {
		return games.Ongoing
	}

	return oracle.result
}

const (
	redFirst  = "x5o/7/7/7/7/7/o5x x 0 1"
	blueFirst = "x5o/7/7/7/7/7/o5x o 0 1"
)

var tc = TimeControl{Base: time.Second, Inc: 100 * time.Millisecond}

type fixture struct {
	clock  *fakeClock
	red    *scriptedPlayer
	blue   *scriptedPlayer
	oracle *mockOracle
}

func newFixture() *fixture {
	clock := &fakeClock{now: time.Unix(0, 0)}
	return &fixture{
		clock: clock,
		red:   &scriptedPlayer{name: "Red", clock: clock},
		blue:  &scriptedPlayer{name: "Blue", clock: clock},
		oracle: &mockOracle{
			legal:  map[string]bool{"a": true, "b": true, "c": true},
			end:    1000,
			result: games.Draw,
		},
	}
}

func (fix *fixture) game(t *testing.T, opening string) *Game {
	t.Helper()

	game, err := NewGame(GameConfig{
		Oracle:  fix.oracle,
		Opening: opening,
		Players: [ColorN]Player{Red: fix.red, Blue: fix.blue},
		Time:    tc,
		Now:     fix.clock.Now,
	})
	require.NoError(t, err)
	return game
}

func TestNormalGame(t *testing.T) {
	fix := newFixture()
	fix.oracle.end = 3
	fix.oracle.result = games.RedWins

	fix.red.turns = []turn{{move: "a", spend: 300 * time.Millisecond}, {move: "c", spend: 50 * time.Millisecond}}
	fix.blue.turns = []turn{{move: "b", spend: 200 * time.Millisecond}}

	game := fix.game(t, redFirst)
	assert.Equal(t, NotStarted, game.State())

	outcome := game.Play()
	assert.Equal(t, Finished, game.State())

	assert.Equal(t, Normal, outcome.Kind)
	assert.Equal(t, games.RedWins, outcome.Result)
	assert.Equal(t, Win, outcome.RedResult())
	assert.Equal(t, 3, outcome.Plies)
	assert.Equal(t, []string{"a", "b", "c"}, fix.oracle.played)

	// both clocks are sent on every turn
	assert.Equal(t, [][2]time.Duration{
		{time.Second, time.Second},
		{800 * time.Millisecond, 900 * time.Millisecond},
	}, fix.red.clocks)
	assert.Equal(t, [][2]time.Duration{
		{800 * time.Millisecond, time.Second},
	}, fix.blue.clocks)

	// no increment after the final move
	assert.Equal(t, 750*time.Millisecond, game.Clock(Red))
	assert.Equal(t, 900*time.Millisecond, game.Clock(Blue))

	// both players see every position
	assert.Len(t, fix.red.positions, 3)
	assert.Equal(t, fix.red.positions, fix.blue.positions)
}

func TestBlueMovesFirst(t *testing.T) {
	fix := newFixture()
	fix.oracle.end = 1
	fix.oracle.result = games.BlueWins

	fix.blue.turns = []turn{{move: "a"}}

	outcome := fix.game(t, blueFirst).Play()
	assert.Equal(t, Normal, outcome.Kind)
	assert.Equal(t, Loss, outcome.RedResult())
	assert.Empty(t, fix.red.clocks)
	assert.Len(t, fix.blue.clocks, 1)
}

func TestTimeoutBeforeIllegalMove(t *testing.T) {
	fix := newFixture()
	fix.red.turns = []turn{{move: "illegal", spend: time.Second}}

	game := fix.game(t, redFirst)
	outcome := game.Play()

	assert.Equal(t, Timeout, outcome.Kind)
	assert.Equal(t, Red, outcome.Loser)
	assert.Equal(t, Loss, outcome.RedResult())
	assert.False(t, outcome.Disconnected())
	assert.Equal(t, time.Duration(0), game.Clock(Red))
	assert.Empty(t, fix.oracle.played)
}

func TestTimeoutRounding(t *testing.T) {
	fix := newFixture()
	fix.red.turns = []turn{{move: "a", spend: 999600 * time.Microsecond}}

	outcome := fix.game(t, redFirst).Play()
	assert.Equal(t, Timeout, outcome.Kind)
	assert.Equal(t, Red, outcome.Loser)
}

func TestTimeoutOnLegalMove(t *testing.T) {
	fix := newFixture()
	fix.red.turns = []turn{{move: "a", spend: 100 * time.Millisecond}}
	fix.blue.turns = []turn{{move: "b", spend: 2 * time.Second}}

	outcome := fix.game(t, redFirst).Play()
	assert.Equal(t, Timeout, outcome.Kind)
	assert.Equal(t, Blue, outcome.Loser)
	assert.Equal(t, Win, outcome.RedResult())
	assert.Equal(t, []string{"a"}, fix.oracle.played)
}

func TestIllegalMove(t *testing.T) {
	fix := newFixture()
	fix.red.turns = []turn{{move: "a", spend: 10 * time.Millisecond}}
	fix.blue.turns = []turn{{move: "z", spend: 10 * time.Millisecond}}

	outcome := fix.game(t, redFirst).Play()
	assert.Equal(t, IllegalMove, outcome.Kind)
	assert.Equal(t, Blue, outcome.Loser)
	assert.Equal(t, "z", outcome.Move)
	assert.Equal(t, Win, outcome.RedResult())
	assert.Equal(t, []string{"a"}, fix.oracle.played)
}

func TestProcessFault(t *testing.T) {
	fix := newFixture()
	fix.red.turns = []turn{{spend: 10 * time.Millisecond, err: ErrEngineExited}}

	game := fix.game(t, redFirst)
	outcome := game.Play()

	assert.Equal(t, Timeout, outcome.Kind)
	assert.Equal(t, Red, outcome.Loser)
	assert.ErrorIs(t, outcome.Err, ErrEngineExited)
	assert.True(t, outcome.Disconnected())
	assert.Equal(t, 990*time.Millisecond, game.Clock(Red))
}

func TestNewGameFailure(t *testing.T) {
	fix := newFixture()
	fix.blue.newGameErr = ErrEngineExited

	outcome := fix.game(t, redFirst).Play()
	assert.Equal(t, Timeout, outcome.Kind)
	assert.Equal(t, Blue, outcome.Loser)
	assert.True(t, outcome.Disconnected())
	assert.Empty(t, fix.red.clocks)
}

func TestNewGameErrors(t *testing.T) {
	fix := newFixture()

	_, err := NewGame(GameConfig{
		Oracle:  fix.oracle,
		Opening: "x5o/7/7/7/7/7/o5x w 0 1",
		Players: [ColorN]Player{Red: fix.red, Blue: fix.blue},
		Time:    tc,
	})
	assert.Error(t, err)

	_, err = NewGame(GameConfig{
		Oracle:  fix.oracle,
		Opening: redFirst,
		Players: [ColorN]Player{Red: fix.red},
		Time:    tc,
	})
	assert.Error(t, err)

	_, err = NewGame(GameConfig{
		Opening: redFirst,
		Players: [ColorN]Player{Red: fix.red, Blue: fix.blue},
		Time:    tc,
	})
	assert.Error(t, err)
}

func TestAtaxxGame(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	red := &scriptedPlayer{name: "Red", clock: clock, turns: []turn{{move: "a2"}}}
	blue := &scriptedPlayer{name: "Blue", clock: clock}

	game, err := NewGame(GameConfig{
		Oracle:  &games.AtaxxOracle{},
		Opening: "7/7/7/7/7/1o5/x6 x 0 1",
		Players: [ColorN]Player{Red: red, Blue: blue},
		Time:    tc,
		Now:     clock.Now,
	})
	require.NoError(t, err)

	outcome := game.Play()
	assert.Equal(t, Normal, outcome.Kind)
	assert.Equal(t, games.RedWins, outcome.Result)
	assert.Equal(t, []string{"7/7/7/7/7/1b5/r6 r 0 1"}, red.positions)
}

func TestRedResult(t *testing.T) {
	tests := []struct {
		outcome Outcome
		want    Result
	}{
		{Outcome{Kind: Normal, Result: "1-0"}, Win},
		{Outcome{Kind: Normal, Result: "0-1"}, Loss},
		{Outcome{Kind: Normal, Result: "1/2-1/2"}, Draw},
		{Outcome{Kind: Normal, Result: "*"}, Draw},
		{Outcome{Kind: Timeout, Loser: Red}, Loss},
		{Outcome{Kind: Timeout, Loser: Blue}, Win},
		{Outcome{Kind: IllegalMove, Loser: Red, Move: "a1"}, Loss},
		{Outcome{Kind: IllegalMove, Loser: Blue, Move: "a1"}, Win},
	}

	for _, test := range tests {
		assert.Equal(t, test.want, test.outcome.RedResult(), "%+v", test.outcome)
	}
}

func TestResult(t *testing.T) {
	assert.Equal(t, Loss, Win.Flip())
	assert.Equal(t, Draw, Draw.Flip())
	assert.Equal(t, "1-0", Win.String())
	assert.Equal(t, "0-1", Loss.String())
	assert.Equal(t, Blue, Red.Other())
	assert.Equal(t, "engine2", Engine2.String())
}
