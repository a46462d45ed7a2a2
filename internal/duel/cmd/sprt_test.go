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
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"laptudirm.com/x/duel/pkg/eve/sprt"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestBuildConfigFlags(t *testing.T) {
	path := writeConfig(t, "concurrency: 1\n")

	cmd := SPRT()
	require.NoError(t, cmd.ParseFlags([]string{
		"--config", path,
		"--engine1", "./dev", "--engine2", "./base",
		"--openings", "book.txt", "-c", "4", "--tc", "8+0.08",
		"--elo0", "-3", "--elo1", "1", "--alpha", "0.1", "--beta", "0.2",
		"--draw-scaling=false", "--interval", "50", "--debug-dir", "",
		"--recover=false", "--seed", "42", "--handshake-timeout", "2s",
	}))

	config, err := buildConfig(cmd.Flags())
	require.NoError(t, err)
	require.NoError(t, config.Validate())

	assert.Equal(t, "./dev", config.Engines[0].Cmd)
	assert.Equal(t, "./base", config.Engines[1].Cmd)
	assert.Equal(t, 2*time.Second, config.Engines[0].HandshakeTimeout)
	assert.Equal(t, 2*time.Second, config.Engines[1].HandshakeTimeout)
	assert.Equal(t, "book.txt", config.Openings)
	assert.Equal(t, 4, config.Concurrency)
	assert.Equal(t, "8+0.08", config.TimeControl)
	assert.Equal(t, -3.0, config.SPRT.Elo0)
	assert.Equal(t, 1.0, config.SPRT.Elo1)
	assert.Equal(t, 0.1, config.SPRT.Alpha)
	assert.Equal(t, 0.2, config.SPRT.Beta)
	assert.False(t, config.SPRT.DrawScaling)
	assert.Equal(t, 50, config.RatingInterval)
	assert.Empty(t, config.DebugDir)
	assert.False(t, config.Recover)
	assert.Equal(t, int64(42), config.Seed)
}

func TestBuildConfigFile(t *testing.T) {
	path := writeConfig(t, `
engines:
  - cmd: ./dev
    handshake-timeout: 5s
  - cmd: ./base
openings: book.txt
concurrency: 3
tc: 20+0.2
elo1: 3
draw-scaling: false
rating-interval: 10
`)

	cmd := SPRT()
	require.NoError(t, cmd.ParseFlags([]string{
		"--config", path, "--engine2", "./other", "--concurrency", "6",
	}))

	config, err := buildConfig(cmd.Flags())
	require.NoError(t, err)

	// file values survive unless the flag was set explicitly
	assert.Equal(t, "./dev", config.Engines[0].Cmd)
	assert.Equal(t, 5*time.Second, config.Engines[0].HandshakeTimeout)
	assert.Equal(t, "./other", config.Engines[1].Cmd)
	assert.Equal(t, "book.txt", config.Openings)
	assert.Equal(t, 6, config.Concurrency)
	assert.Equal(t, "20+0.2", config.TimeControl)
	assert.Equal(t, 3.0, config.SPRT.Elo1)
	assert.False(t, config.SPRT.DrawScaling)
	assert.Equal(t, 10, config.RatingInterval)

	// untouched by both
	defaults := sprt.DefaultConfig()
	assert.Equal(t, defaults.SPRT.Alpha, config.SPRT.Alpha)
	assert.Equal(t, defaults.Recover, config.Recover)
	assert.Equal(t, defaults.DebugDir, config.DebugDir)
}

func TestBuildConfigMissingFile(t *testing.T) {
	cmd := SPRT()
	require.NoError(t, cmd.ParseFlags([]string{
		"--config", filepath.Join(t.TempDir(), "missing.yaml"),
	}))

	_, err := buildConfig(cmd.Flags())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSPRTInvalidConfig(t *testing.T) {
	path := writeConfig(t, "concurrency: 0\n")

	root := Root()
	root.SetArgs([]string{"sprt", "--config", path, "--engine1", "./a", "--engine2", "./b", "--openings", "book.txt"})
	root.SetOut(new(bytes.Buffer))

	err := root.Execute()
	assert.ErrorContains(t, err, "concurrency")
}

func TestVersion(t *testing.T) {
	var out bytes.Buffer

	root := Root()
	root.SetArgs([]string{"version"})
	root.SetOut(&out)

	require.NoError(t, root.Execute())
	assert.Equal(t, "duel "+Version+"\n", out.String())
}
