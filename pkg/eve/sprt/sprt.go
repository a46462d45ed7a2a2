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
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"laptudirm.com/x/duel/pkg/common"
	"laptudirm.com/x/duel/pkg/eve/match"
	"laptudirm.com/x/duel/pkg/eve/stats"
	"laptudirm.com/x/duel/pkg/internal/util"
)

// ErrInterrupted is returned by Start when the run was stopped before
// the test reached a verdict.
var ErrInterrupted = errors.New("sprt: interrupted before a verdict")

// NewTournament validates config and prepares a run: the opening book
// is loaded, shuffled once, and split between the boards.
func NewTournament(config Config) (*Tournament, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	tc, err := match.ParseTime(config.TimeControl)
	if err != nil {
		return nil, err
	}

	book, err := match.LoadBook(config.Openings)
	if err != nil {
		return nil, err
	}

	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	rng := rand.New(rand.NewSource(seed))
	book.Shuffle(rng)

	books, err := book.Split(config.Concurrency)
	if err != nil {
		return nil, err
	}

	if config.DebugDir != "" {
		if err := common.ClearDir(config.DebugDir); err != nil {
			return nil, err
		}
	}

	return &Tournament{
		config: config,
		tc:     tc,
		books:  books,
		rng:    rng,
		seed:   seed,

		monitor:    stats.NewMonitor(config.SPRT),
		aggregator: NewAggregator(),

		ID:  uuid.New(),
		out: os.Stdout,
	}, nil
}

// Tournament is a single SPRT run between two engines.
type Tournament struct {
	// ID identifies the run in logs and transcripts.
	ID uuid.UUID

	config Config
	tc     match.TimeControl
	books  []*match.Book
	rng    *rand.Rand
	seed   int64

	monitor    stats.Monitor
	aggregator *Aggregator

	outMu sync.Mutex
	out   io.Writer

	once    sync.Once
	mu      sync.Mutex
	verdict *stats.Summary
	cancel  context.CancelFunc
}

// Start runs the boards until the test reaches a verdict, ctx is done,
// the process is interrupted, or a board fails. It returns the summary
// of every recorded game.
func (tour *Tournament) Start(ctx context.Context) (stats.Summary, error) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	tour.mu.Lock()
	tour.cancel = cancel
	tour.mu.Unlock()

	record, stopRecording := context.WithCancel(context.Background())
	defer stopRecording()
	go tour.aggregator.Run(record)

	log := logrus.WithField("run", tour.ID.String())
	log.Infof("%s vs %s, concurrency %d, tc %s, seed %d",
		tour.config.Engines[0].Cmd, tour.config.Engines[1].Cmd,
		tour.config.Concurrency, tour.tc, tour.seed,
	)

	boards := make([]*Board, len(tour.books))
	for i, book := range tour.books {
		board, err := tour.newBoard(i+1, book, log, record)
		if err != nil {
			for _, board := range boards[:i] {
				board.closeTranscript()
			}
			return stats.Summary{}, err
		}

		boards[i] = board
	}

	var ready sync.WaitGroup
	ready.Add(len(boards))

	util.StartSpinner("Starting engines")
	booted := make(chan struct{})
	go func() {
		ready.Wait()
		util.PauseSpinner()
		close(booted)
	}()

	group, groupCtx := errgroup.WithContext(ctx)
	for _, board := range boards {
		board := board
		group.Go(func() error {
			defer board.closeTranscript()

			var once sync.Once
			return board.Run(groupCtx, func() { once.Do(ready.Done) })
		})
	}

	err := group.Wait()
	<-booted

	counters, snapErr := tour.aggregator.Snapshot(record)
	if snapErr != nil {
		return stats.Summary{}, snapErr
	}

	summary := tour.monitor.Evaluate(counters.Wins, counters.Losses, counters.Draws)

	tour.mu.Lock()
	verdict := tour.verdict
	tour.mu.Unlock()

	// games finished by other boards after the verdict are still shown,
	// but they do not overturn it
	summary.Verdict = stats.Continue
	if verdict != nil {
		summary.Verdict = verdict.Verdict
	}

	tour.printReport(counters, summary)

	switch {
	case err != nil:
		return summary, err
	case verdict == nil:
		return summary, ErrInterrupted
	}

	tour.printVerdict(summary.Verdict)
	return summary, nil
}

// conclude records the summary which ended the test and stops every
// board. Only the first verdict counts.
func (tour *Tournament) conclude(summary stats.Summary) {
	tour.once.Do(func() {
		tour.mu.Lock()
		defer tour.mu.Unlock()

		tour.verdict = &summary
		if tour.cancel != nil {
			tour.cancel()
		}
	})
}

func (tour *Tournament) newBoard(number int, book *match.Book, log *logrus.Entry, record context.Context) (*Board, error) {
	board := &Board{
		Number: number,

		tour:   tour,
		book:   book,
		rng:    rand.New(rand.NewSource(tour.rng.Int63())),
		log:    log.WithField("board", number),
		record: record,
	}

	if tour.config.DebugDir != "" {
		path := filepath.Join(tour.config.DebugDir, fmt.Sprintf("%d.txt", number))

		file, err := os.Create(path)
		if err != nil {
			return nil, fmt.Errorf("board %d: %w", number, err)
		}

		board.file = file
		board.transcript = match.NewTranscript(file)
		board.transcript.Note("# duel run %s, board %d", tour.ID, number)
	}

	return board, nil
}
