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

package cmd

import (
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"laptudirm.com/x/duel/pkg/common"
	"laptudirm.com/x/duel/pkg/eve/sprt"
)

func SPRT() *cobra.Command {
	defaults := sprt.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "sprt",
		Short: "Run an SPRT between two engines",
		Args:  cobra.NoArgs,
		Long: heredoc.Doc(`sprt plays games between two UAI engines until the
			sequential probability ratio test accepts one of its two
			hypotheses: that the first engine is elo0 stronger than the
			second one (H0), or that it is elo1 stronger (H1).

			Games are played on several boards at once, each with its own
			pair of engine processes and its own share of the opening
			book. Every engine plays both colors.

			Options are read from the file given with --config, or from
			duel/config.yaml in the user's config directories. Flags which
			are set explicitly override the file.

			The run stops on a verdict or on an interrupt. An interrupted
			run still prints the rating report of the games played.`),
		Example: heredoc.Doc(`
			$ duel sprt --engine1 ./dev --engine2 ./base --openings book.txt \
			      --tc 8+0.08 --concurrency 4 --elo0 0 --elo1 5
		`),
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := buildConfig(cmd.Flags())
			if err != nil {
				return err
			}

			tour, err := sprt.NewTournament(config)
			if err != nil {
				return err
			}

			_, err = tour.Start(cmd.Context())
			return err
		},
	}

	flags := cmd.Flags()
	flags.String("config", "", "Read options from the given yaml `file`")

	flags.String("engine1", "", "Command of the engine under test")
	flags.String("engine2", "", "Command of the baseline engine")
	flags.String("game", defaults.Game, "Game played by the engines")
	flags.Duration("handshake-timeout", 0, "Time allowed for the uai handshake (0 waits forever)")

	flags.IntP("concurrency", "c", defaults.Concurrency, "Number of games played at once")
	flags.String("tc", defaults.TimeControl, "Time control as base[+increment] in seconds")
	flags.String("openings", "", "Opening book `file` with one position per line")
	flags.Int64("seed", 0, "Seed of the opening shuffle (0 picks one)")

	flags.Float64("elo0", defaults.SPRT.Elo0, "Elo difference of the null hypothesis")
	flags.Float64("elo1", defaults.SPRT.Elo1, "Elo difference of the alternate hypothesis")
	flags.Float64("alpha", defaults.SPRT.Alpha, "Probability of a false positive")
	flags.Float64("beta", defaults.SPRT.Beta, "Probability of a false negative")
	flags.Bool("draw-scaling", defaults.SPRT.DrawScaling, "Scale the hypotheses by the observed draw rate")

	flags.Int("interval", defaults.RatingInterval, "Number of games between rating reports")
	flags.String("debug-dir", defaults.DebugDir, "Directory for the board transcripts (empty disables them)")
	flags.Bool("recover", defaults.Recover, "Restart crashed engines instead of stopping")

	return cmd
}

// buildConfig layers the config file and the explicitly set flags over
// the default configuration.
func buildConfig(flags *pflag.FlagSet) (sprt.Config, error) {
	config := sprt.DefaultConfig()

	path, err := flags.GetString("config")
	if err != nil {
		return config, err
	}

	if path == "" {
		path, _ = common.FindConfig()
	}

	if path != "" {
		logrus.Debugf("reading config from %s", path)
		if err := sprt.LoadConfig(path, &config); err != nil {
			return config, err
		}
	}

	flags.Visit(func(flag *pflag.Flag) {
		if err == nil {
			err = applyFlag(&config, flags, flag.Name)
		}
	})

	return config, err
}

func applyFlag(config *sprt.Config, flags *pflag.FlagSet, name string) error {
	var err error

	switch name {
	case "engine1":
		config.Engines[0].Cmd, err = flags.GetString(name)
	case "engine2":
		config.Engines[1].Cmd, err = flags.GetString(name)
	case "handshake-timeout":
		timeout, e := flags.GetDuration(name)
		config.Engines[0].HandshakeTimeout = timeout
		config.Engines[1].HandshakeTimeout = timeout
		err = e
	case "game":
		config.Game, err = flags.GetString(name)
	case "concurrency":
		config.Concurrency, err = flags.GetInt(name)
	case "tc":
		config.TimeControl, err = flags.GetString(name)
	case "openings":
		config.Openings, err = flags.GetString(name)
	case "seed":
		config.Seed, err = flags.GetInt64(name)
	case "elo0":
		config.SPRT.Elo0, err = flags.GetFloat64(name)
	case "elo1":
		config.SPRT.Elo1, err = flags.GetFloat64(name)
	case "alpha":
		config.SPRT.Alpha, err = flags.GetFloat64(name)
	case "beta":
		config.SPRT.Beta, err = flags.GetFloat64(name)
	case "draw-scaling":
		config.SPRT.DrawScaling, err = flags.GetBool(name)
	case "interval":
		config.RatingInterval, err = flags.GetInt(name)
	case "debug-dir":
		config.DebugDir, err = flags.GetString(name)
	case "recover":
		config.Recover, err = flags.GetBool(name)
	}

	if err != nil {
		return fmt.Errorf("flag --%s: %w", name, err)
	}

	return nil
}
