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

package stats

import (
	"errors"
	"fmt"
)

// Config holds the parameters of an SPRT.
type Config struct {
	Alpha float64 `yaml:"alpha"`
	Beta  float64 `yaml:"beta"`

	Elo0 float64 `yaml:"elo0"`
	Elo1 float64 `yaml:"elo1"`

	DrawScaling bool `yaml:"draw-scaling"`
}

func (config Config) Validate() error {
	switch {
	case config.Alpha <= 0 || config.Alpha >= 1:
		return fmt.Errorf("sprt: alpha %g is not in (0, 1)", config.Alpha)
	case config.Beta <= 0 || config.Beta >= 1:
		return fmt.Errorf("sprt: beta %g is not in (0, 1)", config.Beta)
	case config.Alpha+config.Beta >= 1:
		return errors.New("sprt: alpha + beta must be less than 1")
	case config.Elo0 >= config.Elo1:
		return fmt.Errorf("sprt: elo0 %g must be less than elo1 %g", config.Elo0, config.Elo1)
	}

	return nil
}

type Verdict int

const (
	Continue Verdict = iota
	AcceptH0
	AcceptH1
)

func (verdict Verdict) String() string {
	switch verdict {
	case AcceptH0:
		return "H0 accepted"
	case AcceptH1:
		return "H1 accepted"
	default:
		return "continue"
	}
}

// Summary is the state of a test after some number of games.
type Summary struct {
	Verdict Verdict

	LLR          float64
	Lower, Upper float64

	Elo, EloLow, EloHigh float64
	LOS                  float64

	Elo0, Elo1 float64

	// The hypotheses the llr was computed for. They differ from Elo0 and
	// Elo1 only with draw scaling.
	TestedElo0, TestedElo1 float64
}

// Monitor evaluates game counts against a fixed SPRT configuration.
type Monitor struct {
	config       Config
	lower, upper float64
}

func NewMonitor(config Config) Monitor {
	lower, upper := StoppingBounds(config.Alpha, config.Beta)
	return Monitor{
		config: config,
		lower:  lower,
		upper:  upper,
	}
}

func (monitor Monitor) Bounds() (lower float64, upper float64) {
	return monitor.lower, monitor.upper
}

// Evaluate computes the llr and elo estimate of the given counts, from
// the first player's point of view, and decides whether the test is over.
func (monitor Monitor) Evaluate(ws, ls, ds int) Summary {
	summary := Summary{
		LLR:   SPRT(ws, ls, ds, monitor.config.Elo0, monitor.config.Elo1, monitor.config.DrawScaling),
		Lower: monitor.lower,
		Upper: monitor.upper,
		LOS:   LOS(ws, ls),
		Elo0:  monitor.config.Elo0,
		Elo1:  monitor.config.Elo1,
	}

	summary.EloLow, summary.Elo, summary.EloHigh = Elo(ws, ls, ds)

	summary.TestedElo0, summary.TestedElo1 = summary.Elo0, summary.Elo1
	if monitor.config.DrawScaling {
		s := DrawScale(ws, ls, ds)
		summary.TestedElo0 /= s
		summary.TestedElo1 /= s
	}

	switch {
	case ws == 0 || ls == 0 || ds == 0:
		summary.Verdict = Continue
	case summary.LLR >= monitor.upper:
		summary.Verdict = AcceptH1
	case summary.LLR <= monitor.lower:
		summary.Verdict = AcceptH0
	}

	return summary
}
