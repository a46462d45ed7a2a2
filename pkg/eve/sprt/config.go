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
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"laptudirm.com/x/duel/pkg/eve/match"
	"laptudirm.com/x/duel/pkg/eve/match/games"
	"laptudirm.com/x/duel/pkg/eve/stats"
)

// Config describes a single SPRT run between two engines.
type Config struct {
	// The engines participating in the test. Results are reported from
	// the first engine's point of view.
	Engines [2]match.EngineConfig `yaml:"engines"`

	// The game that will be played.
	Game string `yaml:"game"`

	// Number of games that will be played concurrently.
	Concurrency int `yaml:"concurrency"`

	// Time control of every game, as base[+increment] in seconds.
	TimeControl string `yaml:"tc"`

	// File with the opening positions, one per line.
	Openings string `yaml:"openings"`

	// The null and alternate hypotheses and error probabilities.
	SPRT stats.Config `yaml:",inline"`

	// Number of games between two rating reports.
	RatingInterval int `yaml:"rating-interval"`

	// Directory for the board transcripts. Empty disables them.
	DebugDir string `yaml:"debug-dir"`

	// Restart engines which crash instead of stopping the run.
	Recover bool `yaml:"recover"`

	// Seed of the opening shuffle and colour coin. Zero picks one.
	Seed int64 `yaml:"seed"`
}

func DefaultConfig() Config {
	return Config{
		Game:           "ataxx",
		Concurrency:    1,
		TimeControl:    "10+0.1",
		RatingInterval: 20,
		DebugDir:       "debug",
		Recover:        true,

		SPRT: stats.Config{
			Alpha:       0.05,
			Beta:        0.05,
			Elo0:        0,
			Elo1:        5,
			DrawScaling: true,
		},
	}
}

// LoadConfig reads a yaml configuration file over config. Fields which
// are missing from the file keep their value.
func LoadConfig(path string, config *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("load config %s: %w", path, err)
	}

	return nil
}

func (config Config) Validate() error {
	for i, engine := range config.Engines {
		if engine.Cmd == "" {
			return fmt.Errorf("config: engine%d: no command", i+1)
		}

		if engine.HandshakeTimeout < 0 {
			return fmt.Errorf("config: engine%d: negative handshake timeout", i+1)
		}
	}

	if _, err := games.GetOracle(config.Game); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	if config.Concurrency < 1 {
		return fmt.Errorf("config: concurrency %d is less than 1", config.Concurrency)
	}

	if _, err := match.ParseTime(config.TimeControl); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	if config.Openings == "" {
		return errors.New("config: no openings file")
	}

	if config.RatingInterval < 1 {
		return fmt.Errorf("config: rating interval %d is less than 1", config.RatingInterval)
	}

	if err := config.SPRT.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	return nil
}
