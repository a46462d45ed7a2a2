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

package util

import (
	"os"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/mattn/go-isatty"
)

var (
	spinnerMu sync.Mutex
	working   *spinner.Spinner
)

// StartSpinner shows the ~working~ spinner with the given suffix. It
// does nothing when stdout is not a terminal.
func StartSpinner(suffix string) {
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		return
	}

	spinnerMu.Lock()
	defer spinnerMu.Unlock()

	if working == nil {
		working = spinner.New(spinner.CharSets[31], 100*time.Millisecond)
	}

	working.Suffix = " " + suffix
	working.Start()
}

// PauseSpinner stops the spinner if it is running.
func PauseSpinner() {
	spinnerMu.Lock()
	defer spinnerMu.Unlock()

	if working != nil {
		working.Stop()
	}
}
