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
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"laptudirm.com/x/duel/pkg/eve/match"
)

func checkInvariants(t *testing.T, counters Counters) {
	t.Helper()

	assert.Equal(t, counters.Games, counters.Wins+counters.Losses+counters.Draws, "%+v", counters)
	assert.Equal(t, counters.Wins+counters.Losses, counters.RedWins+counters.RedLosses, "%+v", counters)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		outcome match.Outcome
		engine1 match.Color
		want    Event
	}{
		{match.Outcome{Kind: match.Normal, Result: "1-0"}, match.Red, Event{match.Win, match.Win}},
		{match.Outcome{Kind: match.Normal, Result: "1-0"}, match.Blue, Event{match.Loss, match.Win}},
		{match.Outcome{Kind: match.Normal, Result: "0-1"}, match.Red, Event{match.Loss, match.Loss}},
		{match.Outcome{Kind: match.Normal, Result: "0-1"}, match.Blue, Event{match.Win, match.Loss}},
		{match.Outcome{Kind: match.Normal, Result: "1/2-1/2"}, match.Red, Event{match.Draw, match.Draw}},
		{match.Outcome{Kind: match.Normal, Result: "1/2-1/2"}, match.Blue, Event{match.Draw, match.Draw}},
		{match.Outcome{Kind: match.Timeout, Loser: match.Red}, match.Red, Event{match.Loss, match.Loss}},
		{match.Outcome{Kind: match.Timeout, Loser: match.Red}, match.Blue, Event{match.Win, match.Loss}},
		{match.Outcome{Kind: match.IllegalMove, Loser: match.Blue}, match.Red, Event{match.Win, match.Win}},
		{match.Outcome{Kind: match.IllegalMove, Loser: match.Blue}, match.Blue, Event{match.Loss, match.Win}},
	}

	for _, test := range tests {
		assert.Equal(t, test.want, Classify(test.outcome, test.engine1), "%+v as %s", test.outcome, test.engine1)
	}
}

func TestAggregator(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	aggregator := NewAggregator()
	go aggregator.Run(ctx)

	counters, err := aggregator.Record(ctx, Event{Engine1: match.Win, Red: match.Loss})
	require.NoError(t, err)
	assert.Equal(t, Counters{Games: 1, Wins: 1, RedLosses: 1}, counters)

	counters, err = aggregator.Record(ctx, Event{Engine1: match.Draw, Red: match.Draw})
	require.NoError(t, err)
	assert.Equal(t, Counters{Games: 2, Wins: 1, Draws: 1, RedLosses: 1}, counters)

	snapshot, err := aggregator.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, counters, snapshot)
}

func TestAggregatorConcurrent(t *testing.T) {
	const boards, games = 8, 100

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	aggregator := NewAggregator()
	go aggregator.Run(ctx)

	outcomes := []match.Outcome{
		{Kind: match.Normal, Result: "1-0"},
		{Kind: match.Normal, Result: "0-1"},
		{Kind: match.Normal, Result: "1/2-1/2"},
		{Kind: match.Timeout, Loser: match.Red},
		{Kind: match.IllegalMove, Loser: match.Blue},
	}

	var wg sync.WaitGroup
	for board := 0; board < boards; board++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()

			rng := rand.New(rand.NewSource(seed))
			for i := 0; i < games; i++ {
				outcome := outcomes[rng.Intn(len(outcomes))]
				event := Classify(outcome, match.Color(rng.Intn(match.ColorN)))

				counters, err := aggregator.Record(ctx, event)
				if !assert.NoError(t, err) {
					return
				}

				checkInvariants(t, counters)
			}
		}(int64(board))
	}

	// readers never see a torn update
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			snapshot, err := aggregator.Snapshot(ctx)
			if !assert.NoError(t, err) {
				return
			}
			checkInvariants(t, snapshot)
		}
	}()

	wg.Wait()
	<-done

	counters, err := aggregator.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, boards*games, counters.Games)
	checkInvariants(t, counters)
}

func TestAggregatorStopped(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	aggregator := NewAggregator()
	go aggregator.Run(ctx)
	cancel()

	_, err := aggregator.Snapshot(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
