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
	"math"
	"strconv"
	"strings"
	"time"
)

// TimeControl is a fischer time control: every player starts with Base
// on their clock and gains Inc after each of their moves.
type TimeControl struct {
	Base, Inc time.Duration
}

func (tc TimeControl) String() string {
	return fmt.Sprintf("%g+%g", tc.Base.Seconds(), tc.Inc.Seconds())
}

// ParseTime parses a time control of the form base[+increment], both in
// seconds. Decimals are allowed; the increment defaults to zero.
func ParseTime(str string) (TimeControl, error) {
	var tc TimeControl

	base_str, inc_str, found := strings.Cut(strings.TrimSpace(str), "+")

	base, err := parseSeconds(base_str)
	if err != nil {
		return TimeControl{}, fmt.Errorf("parse tc %q: base: %w", str, err)
	}

	if base <= 0 {
		return TimeControl{}, fmt.Errorf("parse tc %q: base time must be at least 1ms", str)
	}

	tc.Base = base

	if found {
		inc, err := parseSeconds(inc_str)
		if err != nil {
			return TimeControl{}, fmt.Errorf("parse tc %q: increment: %w", str, err)
		}

		if inc < 0 {
			return TimeControl{}, fmt.Errorf("parse tc %q: negative increment", str)
		}

		tc.Inc = inc
	}

	return tc, nil
}

// maxSeconds keeps a clock far enough from the Duration limit that
// adding increments cannot overflow it.
const maxSeconds = float64(math.MaxInt64/int64(time.Second)) / 2

// parseSeconds parses a finite number of seconds, truncated to whole
// milliseconds.
func parseSeconds(str string) (time.Duration, error) {
	secs, err := strconv.ParseFloat(str, 64)
	switch {
	case err != nil:
		return 0, err
	case math.IsNaN(secs), math.IsInf(secs, 0):
		return 0, fmt.Errorf("%s is not a finite number", str)
	case math.Abs(secs) > maxSeconds:
		return 0, fmt.Errorf("%s seconds is out of range", str)
	}

	return time.Millisecond * time.Duration(secs*1000), nil
}
