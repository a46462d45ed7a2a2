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
	"bufio"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	// ErrProtocol is returned when an engine fails the uai handshake.
	ErrProtocol = errors.New("engine: protocol error")

	// ErrEngineExited is returned when an engine's output ends while a
	// response is still expected.
	ErrEngineExited = errors.New("engine: process exited")

	ErrReadTimeout = errors.New("engine: read i/o timeout")
)

type EngineConfig struct {
	Cmd string `yaml:"cmd"`
	Dir string `yaml:"dir"`
	Arg string `yaml:"arg"`

	// HandshakeTimeout bounds the wait for uaiok. Zero waits forever.
	HandshakeTimeout time.Duration `yaml:"handshake-timeout"`

	// Transcript receives every line sent to and read from the engine.
	Transcript *Transcript `yaml:"-"`
}

// StartEngine spawns the engine process described by config and performs
// the uai handshake with it.
func StartEngine(config EngineConfig, id EngineID) (*Engine, error) {
	process := exec.Command(config.Cmd, strings.Fields(config.Arg)...)
	process.Dir = config.Dir

	stdin, err := process.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("start %s: %w", config.Cmd, err)
	}

	stdout, err := process.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("start %s: %w", config.Cmd, err)
	}

	if err := process.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", config.Cmd, err)
	}

	engine := newEngine(config, id, stdin)
	engine.process = process
	go engine.readLoop(stdout)

	if err := engine.Initialize(); err != nil {
		engine.Kill()
		return nil, err
	}

	return engine, nil
}

// newEngine creates an Engine which writes its commands to w. The caller
// must start readLoop on the engine's output.
func newEngine(config EngineConfig, id EngineID, w io.Writer) *Engine {
	engine := &Engine{
		ID:     id,
		config: config,

		writer: bufio.NewWriter(w),
		lines:  make(chan string, 64),
		dead:   make(chan struct{}),
		done:   make(chan struct{}),

		name: filepath.Base(config.Cmd),
	}

	if closer, ok := w.(io.Closer); ok {
		engine.stdin = closer
	}

	return engine
}

// Engine is a session with a single uai engine process. Engines are
// compared by ID, never by name.
type Engine struct {
	ID EngineID

	config  EngineConfig
	process *exec.Cmd

	mu     sync.Mutex
	name   string
	writer *bufio.Writer
	stdin  io.Closer

	lines chan string
	err   error

	dead chan struct{} // closed by Kill
	done chan struct{} // closed once the output has ended

	kill sync.Once
}

func (engine *Engine) readLoop(r io.Reader) {
	defer close(engine.done)
	defer close(engine.lines)
	defer func() {
		if engine.process != nil {
			_ = engine.process.Wait()
		}
	}()

	reader := bufio.NewReader(r)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if line = strings.TrimSpace(line); line != "" {
				engine.record("RECV", line)
			}

			engine.err = err
			return
		}

		line = strings.TrimSpace(line)
		engine.record("RECV", line)

		select {
		case engine.lines <- line:
		case <-engine.dead:
			return
		}
	}
}

// Name returns the engine's self-reported name, or the base name of its
// command before the handshake.
func (engine *Engine) Name() string {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.name
}

// Alive reports whether the engine's output is still open and the
// engine has not been killed.
func (engine *Engine) Alive() bool {
	select {
	case <-engine.done:
		return false
	case <-engine.dead:
		return false
	default:
		return true
	}
}

// Initialize performs the uai handshake, setting the engine's name from
// its id name line.
func (engine *Engine) Initialize() error {
	if err := engine.Write("uai"); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrProtocol, engine.config.Cmd, err)
	}

	name := ""
	_, err := engine.await(engine.config.HandshakeTimeout, func(line string) bool {
		if rest, found := strings.CutPrefix(line, "id name "); found {
			name = strings.TrimSpace(rest)
		}

		return line == "uaiok"
	})

	switch {
	case errors.Is(err, ErrReadTimeout):
		return fmt.Errorf("%w: %s: no uaiok after %s", ErrProtocol, engine.config.Cmd, engine.config.HandshakeTimeout)
	case err != nil:
		return fmt.Errorf("%w: %s: output ended before uaiok", ErrProtocol, engine.config.Cmd)
	case name == "":
		return fmt.Errorf("%w: %s: no id name before uaiok", ErrProtocol, engine.config.Cmd)
	}

	engine.mu.Lock()
	engine.name = name
	engine.mu.Unlock()
	return nil
}

// NewGame tells the engine that the next position belongs to a new game.
func (engine *Engine) NewGame() error {
	return engine.Write("uainewgame")
}

// Position sets the engine's current position.
func (engine *Engine) Position(fen string) error {
	return engine.Write("position fen %s", fen)
}

// Go asks the engine for a move given both clocks and the increment and
// returns the move from its bestmove line.
func (engine *Engine) Go(rtime, btime, inc time.Duration) (string, error) {
	if err := engine.Write(
		"go rtime %d btime %d rinc %d binc %d",
		rtime.Milliseconds(), btime.Milliseconds(),
		inc.Milliseconds(), inc.Milliseconds(),
	); err != nil {
		return "", err
	}

	line, err := engine.await(0, func(line string) bool {
		return strings.HasPrefix(line, "bestmove ")
	})
	if err != nil {
		return "", err
	}

	fields := strings.Fields(line)
	return fields[len(fields)-1], nil
}

// quitGrace is how long Kill waits for the quit command to be written
// before it kills the process anyway.
const quitGrace = 100 * time.Millisecond

// Kill asks the engine to quit and then kills its process. It is safe
// to call Kill more than once and from any goroutine, even while
// another goroutine is blocked writing to the engine.
func (engine *Engine) Kill() {
	engine.kill.Do(func() {
		close(engine.dead)

		quit := make(chan struct{})
		go func() {
			defer close(quit)
			_ = engine.Write("quit")

			engine.mu.Lock()
			defer engine.mu.Unlock()
			if engine.stdin != nil {
				_ = engine.stdin.Close()
			}
		}()

		select {
		case <-quit:
		case <-time.After(quitGrace):
		}

		if engine.process != nil && engine.process.Process != nil {
			_ = engine.process.Process.Kill()
		}
	})
}

// await reads lines until match accepts one. A zero timeout waits until
// the engine's output ends.
func (engine *Engine) await(timeout time.Duration, match func(string) bool) (string, error) {
	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	for {
		select {
		case line, ok := <-engine.lines:
			if !ok {
				return "", fmt.Errorf("%w: %s: %v", ErrEngineExited, engine.config.Cmd, engine.err)
			}

			if match(line) {
				return line, nil
			}

		case <-engine.dead:
			return "", fmt.Errorf("%w: %s: killed", ErrEngineExited, engine.config.Cmd)

		case <-expired:
			return "", ErrReadTimeout
		}
	}
}

// Write sends a single command line to the engine.
func (engine *Engine) Write(format string, a ...any) error {
	line := fmt.Sprintf(format, a...)
	engine.record("SEND", line)

	engine.mu.Lock()
	defer engine.mu.Unlock()

	if _, err := engine.writer.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrEngineExited, engine.config.Cmd, err)
	}

	if err := engine.writer.Flush(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrEngineExited, engine.config.Cmd, err)
	}

	return nil
}

func (engine *Engine) record(direction, line string) {
	name := engine.Name()

	if direction == "SEND" {
		logrus.Debugf("info: (%s)< %s", name, line)
	} else {
		logrus.Debugf("info: (%s)> %s", name, line)
	}

	engine.config.Transcript.Record(direction, name, line)
}
