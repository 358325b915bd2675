package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"hexit/game"
	"hexit/policy"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	require.Equal(t, game.Hex, cfg.Kind())
	require.Equal(t, 5, cfg.Dimension())
	require.Equal(t, game.Basic, cfg.Rewards())
	require.Equal(t, policy.BoardTurn, cfg.StateEncoding())
	require.Equal(t, 1024, cfg.StatesPerFile)
}

func TestLoad(t *testing.T) {
	t.Run("overlays the defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "run.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
game: tictactoe
num_episodes: 500
p1_agent: policy
p1_model_path: /models/latest
policy_endpoint: http://localhost:8500
random_first_move_probability: 0.25
`), 0644))

		cfg, err := Load(path)
		require.NoError(t, err)
		require.NoError(t, cfg.Validate())
		require.Equal(t, 500, cfg.NumEpisodes)
		require.Equal(t, 3, cfg.Dimension())
		require.Equal(t, game.WinFast, cfg.Rewards())
		require.Equal(t, policy.Board, cfg.StateEncoding())
		require.Equal(t, AgentRandom, cfg.P2Agent, "unset keys keep their default")
	})

	t.Run("empty path", func(t *testing.T) {
		cfg, err := Load("")
		require.NoError(t, err)
		require.Equal(t, Default(), cfg)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("unknown keys", func(t *testing.T) {
		cfg := Default()
		err := cfg.Decode(strings.NewReader("hex_dim: 7\n"))
		require.ErrorIs(t, err, ErrArgument)
	})
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name   string
		modify func(c *Config)
	}{
		{"unknown game", func(c *Config) { c.Game = "go" }},
		{"no episodes", func(c *Config) { c.NumEpisodes = 0 }},
		{"zero capacity", func(c *Config) { c.StatesPerFile = 0 }},
		{"probability above one", func(c *Config) { c.RandomFirstMoveProbability = 1.5 }},
		{"unknown agent", func(c *Config) { c.P2Agent = "oracle" }},
		{"policy without model", func(c *Config) {
			c.P1Agent = AgentPolicy
			c.PolicyEndpoint = "http://localhost:8500"
		}},
		{"policy without endpoint", func(c *Config) {
			c.P2Agent = AgentPolicy
			c.P2ModelPath = "/models/latest"
		}},
		{"bad reward policy", func(c *Config) { c.RewardPolicy = "slow" }},
		{"bad metrics address", func(c *Config) { c.MetricsAddr = "not an address" }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.modify(&cfg)
			require.ErrorIs(t, cfg.Validate(), ErrArgument)
		})
	}
}
