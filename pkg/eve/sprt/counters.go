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

	"laptudirm.com/x/duel/pkg/eve/match"
)

// Counters are the results of a run so far. Wins, Losses and Draws are
// from the first engine's point of view. RedWins and RedLosses count
// the decisive games by the colour which won them.
type Counters struct {
	Games int

	Wins, Losses, Draws int

	RedWins, RedLosses int
}

func (counters *Counters) apply(event Event) {
	counters.Games++

	switch event.Engine1 {
	case match.Win:
		counters.Wins++
	case match.Loss:
		counters.Losses++
	default:
		counters.Draws++
	}

	switch event.Red {
	case match.Win:
		counters.RedWins++
	case match.Loss:
		counters.RedLosses++
	}
}

// Event is a finished game as seen by the counters.
type Event struct {
	Engine1 match.Result
	Red     match.Result
}

// Classify turns a game's outcome into an Event, given the colour the
// first engine played in that game.
func Classify(outcome match.Outcome, engine1 match.Color) Event {
	red := outcome.RedResult()

	event := Event{Engine1: red, Red: red}
	if engine1 == match.Blue {
		event.Engine1 = red.Flip()
	}

	return event
}

type request struct {
	event *Event
	reply chan Counters
}

// Aggregator owns the Counters of a run. Run is the only goroutine which
// touches them; everyone else sends it requests, so a snapshot is never
// torn by a concurrent update.
type Aggregator struct {
	requests chan request
}

func NewAggregator() *Aggregator {
	return &Aggregator{requests: make(chan request)}
}

// Run serves requests until ctx is done.
func (aggregator *Aggregator) Run(ctx context.Context) {
	var counters Counters

	for {
		select {
		case <-ctx.Done():
			return

		case req := <-aggregator.requests:
			if req.event != nil {
				counters.apply(*req.event)
			}

			req.reply <- counters
		}
	}
}

// Record adds a finished game to the counters and returns them as they
// are right after the update.
func (aggregator *Aggregator) Record(ctx context.Context, event Event) (Counters, error) {
	return aggregator.do(ctx, &event)
}

// Snapshot returns the current counters.
func (aggregator *Aggregator) Snapshot(ctx context.Context) (Counters, error) {
	return aggregator.do(ctx, nil)
}

func (aggregator *Aggregator) do(ctx context.Context, event *Event) (Counters, error) {
	req := request{event: event, reply: make(chan Counters, 1)}

	select {
	case aggregator.requests <- req:
	case <-ctx.Done():
		return Counters{}, ctx.Err()
	}

	select {
	case counters := <-req.reply:
		return counters, nil
	case <-ctx.Done():
		return Counters{}, ctx.Err()
	}
}
