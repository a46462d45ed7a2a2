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

// Package enginetest provides a tiny uai engine for tests which need a
// real engine process. A test binary turns into the engine when its
// TestMain calls RunIfRequested and the EnvVar variable is set.
package enginetest

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"laptudirm.com/x/duel/pkg/eve/match/games"
)

// EnvVar holds the name the engine should report. Its presence turns a
// test binary into an engine.
const EnvVar = "DUEL_TEST_ENGINE"

// RunIfRequested serves the uai protocol on stdin and stdout and exits
// if EnvVar is set. Otherwise it returns immediately.
func RunIfRequested() {
	name := os.Getenv(EnvVar)
	if name == "" {
		return
	}

	if err := Serve(os.Stdin, os.Stdout, name); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	os.Exit(0)
}

// Serve runs the engine until quit or the end of r. The engine answers
// every go with the first legal move of its current position.
func Serve(r io.Reader, w io.Writer, name string) error {
	var position games.AtaxxPosition

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "uai":
			fmt.Fprintf(w, "id name %s\nid author nobody\nuaiok\n", name)

		case "position":
			if len(fields) < 3 || fields[1] != "fen" {
				return fmt.Errorf("enginetest: bad position command %q", scanner.Text())
			}

			if err := position.SetFEN(strings.Join(fields[2:], " ")); err != nil {
				return err
			}

		case "go":
			moves := position.Moves()
			if len(moves) == 0 {
				return fmt.Errorf("enginetest: no moves in %s", position.FEN())
			}

			fmt.Fprintf(w, "info depth 1 score cp 0\nbestmove %s\n", moves[0])

		case "quit":
			return nil
		}
	}

	return scanner.Err()
}
