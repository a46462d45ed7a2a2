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
	"fmt"
	"io"
	"sync"
)

// Transcript is a write-only log of the lines exchanged with the engines
// of a board. A nil *Transcript discards everything.
type Transcript struct {
	mu sync.Mutex
	w  io.Writer
}

func NewTranscript(w io.Writer) *Transcript {
	return &Transcript{w: w}
}

// Record appends a single line, prefixed by its direction and the name
// of the engine.
func (transcript *Transcript) Record(direction, name, line string) {
	if transcript == nil {
		return
	}

	transcript.mu.Lock()
	defer transcript.mu.Unlock()
	fmt.Fprintf(transcript.w, "%s %s: %s\n", direction, name, line)
}

// Note appends a free-form line, such as a game header.
func (transcript *Transcript) Note(format string, a ...any) {
	if transcript == nil {
		return
	}

	transcript.mu.Lock()
	defer transcript.mu.Unlock()
	fmt.Fprintf(transcript.w, format+"\n", a...)
}
