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

package sprt

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"sync"

	"github.com/sirupsen/logrus"

	"laptudirm.com/x/duel/pkg/eve/match"
	"laptudirm.com/x/duel/pkg/eve/match/games"
	"laptudirm.com/x/duel/pkg/eve/stats"
)

// Board plays games between the two engines of a tournament, one after
// the other, from its own partition of the opening book. Each board
// owns its pair of engine processes.
type Board struct {
	Number int

	tour       *Tournament
	book       *match.Book
	rng        *rand.Rand
	transcript *match.Transcript
	file       *os.File
	log        *logrus.Entry

	// record is the context used to talk to the aggregator. It outlives
	// the board's own context so that finished games are never lost.
	record context.Context

	mu      sync.Mutex
	engines [2]*match.Engine
	killed  bool
}

// Run starts the board's engines and plays games until ctx is done or
// the tournament reaches a verdict. ready is called once the engines
// have started, or failed to.
func (board *Board) Run(ctx context.Context, ready func()) error {
	defer board.kill()

	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			board.kill()
		case <-done:
		}
	}()

	err := board.startEngines(false)
	ready()
	if err != nil {
		return err
	}

	board.log.Infof("Starting board %d", board.Number)

	for ctx.Err() == nil {
		if err := board.startEngines(board.tour.config.Recover); err != nil {
			return err
		}

		stop, err := board.playGame(ctx)
		if err != nil || stop {
			return err
		}
	}

	return nil
}

// startEngines starts every engine which is not running. Engines which
// died after the first start are only restarted if restart is set.
func (board *Board) startEngines(restart bool) error {
	for i := range board.engines {
		id := match.EngineID(i)

		board.mu.Lock()
		engine, killed := board.engines[id], board.killed
		board.mu.Unlock()

		if killed {
			return nil
		}

		if engine != nil {
			if engine.Alive() {
				continue
			}

			if !restart {
				return fmt.Errorf("board %d: %s stopped: %w", board.Number, engine.Name(), match.ErrEngineExited)
			}

			board.log.Warnf("Restarting %s (%s)", engine.Name(), id)
			engine.Kill()
		}

		config := board.tour.config.Engines[id]
		config.Transcript = board.transcript

		engine, err := match.StartEngine(config, id)

		board.mu.Lock()
		killed = board.killed
		if err == nil && !killed {
			board.engines[id] = engine
		}
		board.mu.Unlock()

		switch {
		case killed:
			if engine != nil {
				engine.Kill()
			}
			return nil
		case err != nil:
			return fmt.Errorf("board %d: %w", board.Number, err)
		}
	}

	return nil
}

func (board *Board) closeTranscript() {
	if board.file != nil {
		_ = board.file.Close()
	}
}

// kill stops both engines for good.
func (board *Board) kill() {
	board.mu.Lock()
	defer board.mu.Unlock()

	board.killed = true
	for _, engine := range board.engines {
		if engine != nil {
			engine.Kill()
		}
	}
}

// playGame plays one game and records it. It reports whether the board
// should stop.
func (board *Board) playGame(ctx context.Context) (bool, error) {
	config := board.tour.config

	engine1 := match.Color(board.rng.Intn(match.ColorN))

	var players [match.ColorN]match.Player
	players[engine1] = board.engines[match.Engine1]
	players[engine1.Other()] = board.engines[match.Engine2]

	oracle, err := games.GetOracle(config.Game)
	if err != nil {
		return true, err
	}

	opening := board.book.Next()
	game, err := match.NewGame(match.GameConfig{
		Oracle:  oracle,
		Opening: opening,
		Players: players,
		Time:    board.tour.tc,
	})
	if err != nil {
		return true, fmt.Errorf("board %d: %w", board.Number, err)
	}

	board.transcript.Note("# %s (red) vs %s (blue): %s", players[match.Red].Name(), players[match.Blue].Name(), opening)
	board.log.Debugf("Starting game from %s", opening)

	outcome := game.Play()

	// the engines were killed under the game, so its result means nothing
	if ctx.Err() != nil {
		board.log.Debug("Dropping interrupted game")
		return true, nil
	}

	counters, err := board.tour.aggregator.Record(board.record, Classify(outcome, engine1))
	if err != nil {
		return true, err
	}

	board.log.Info(board.gameLine(counters, outcome, players))
	board.transcript.Note("# result: %s (%s)", outcome.RedResult(), outcome.Kind)

	if counters.Games%config.RatingInterval != 0 {
		return false, nil
	}

	summary := board.tour.monitor.Evaluate(counters.Wins, counters.Losses, counters.Draws)
	board.tour.printReport(counters, summary)

	if summary.Verdict != stats.Continue {
		board.tour.conclude(summary)
		return true, nil
	}

	return false, nil
}

func (board *Board) gameLine(counters Counters, outcome match.Outcome, players [match.ColorN]match.Player) string {
	line := fmt.Sprintf(
		"(Board %d, %s vs %s) Total w-l-d %d-%d-%d (%d)",
		board.Number,
		board.engines[match.Engine1].Name(),
		board.engines[match.Engine2].Name(),
		counters.Wins, counters.Losses, counters.Draws,
		counters.Games,
	)

	loser := players[outcome.Loser].Name()
	switch {
	case outcome.Kind == match.Normal:
	case outcome.Disconnected():
		line += fmt.Sprintf(" %s disconnected", loser)
	case outcome.Kind == match.Timeout:
		line += fmt.Sprintf(" %s out of time", loser)
	case outcome.Kind == match.IllegalMove:
		line += fmt.Sprintf(" %s illegal move %s", loser, outcome.Move)
	}

	return line
}
