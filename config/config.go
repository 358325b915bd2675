package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"hexit/game"
	"hexit/policy"
)

// ErrArgument is returned for configuration that cannot be run.
var ErrArgument = errors.New("invalid configuration")

const (
	AgentRandom      = "random"
	AgentInteractive = "interactive"
	AgentPolicy      = "policy"
	AgentMCTS        = "mcts"
)

// Config describes one generation or play run.
type Config struct {
	NumEpisodes  int    `yaml:"num_episodes" validate:"gt=0"`
	Game         string `yaml:"game" validate:"oneof=hex tictactoe"`
	HexDimension int    `yaml:"hex_dimension" validate:"gte=1,lte=32"`
	RewardPolicy string `yaml:"reward_policy" validate:"omitempty,oneof=basic win_fast"`

	P1Agent     string `yaml:"p1_agent" validate:"oneof=random interactive policy mcts"`
	P2Agent     string `yaml:"p2_agent" validate:"oneof=random interactive policy mcts"`
	P1ModelPath string `yaml:"p1_model_path" validate:"required_if=P1Agent policy"`
	P2ModelPath string `yaml:"p2_model_path" validate:"required_if=P2Agent policy"`
	P1Sample    bool   `yaml:"p1_sample"`
	P2Sample    bool   `yaml:"p2_sample"`

	PolicyEndpoint string `yaml:"policy_endpoint" validate:"omitempty,url"`
	Encoding       string `yaml:"encoding" validate:"omitempty,oneof=board board_turn"`

	RandomFirstMoveProbability float64 `yaml:"random_first_move_probability" validate:"gte=0,lte=1"`
	DisplayState               bool    `yaml:"display_state"`

	SavePath      string `yaml:"save_path" validate:"required"`
	LabelPath     string `yaml:"label_path" validate:"required"`
	StatesPerFile int    `yaml:"states_per_file" validate:"gt=0"`
	BatchSize     int    `yaml:"batch_size" validate:"gt=0"`
	LogEvery      int    `yaml:"log_every" validate:"gte=0"`
	MaxMoves      int    `yaml:"max_moves" validate:"gte=0"`
	Seed          uint64 `yaml:"seed"`

	MCTSSimulations int `yaml:"mcts_simulations" validate:"gt=0"`
	MCTSCutoff      int `yaml:"mcts_cutoff"`

	MetricsAddr string `yaml:"metrics_addr" validate:"omitempty,hostname_port"`
}

var validate = validator.New()

func Default() Config {
	return Config{
		NumEpisodes:     1,
		Game:            string(game.Hex),
		HexDimension:    5,
		P1Agent:         AgentRandom,
		P2Agent:         AgentRandom,
		SavePath:        "data/states",
		LabelPath:       "data/labelled",
		StatesPerFile:   1024,
		BatchSize:       1024,
		LogEvery:        10,
		MCTSSimulations: 1000,
		MCTSCutoff:      -1,
	}
}

// Load reads a YAML file over the defaults. An empty path returns the
// defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	if err := cfg.Decode(bytes.NewReader(data)); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Decode overlays YAML from r. Unknown keys are rejected.
func (c *Config) Decode(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %v", ErrArgument, err)
	}
	return nil
}

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrArgument, err)
	}
	if c.usesPolicy() && c.PolicyEndpoint == "" {
		return fmt.Errorf("%w: policy agents need policy_endpoint", ErrArgument)
	}
	return nil
}

func (c Config) usesPolicy() bool {
	return c.P1Agent == AgentPolicy || c.P2Agent == AgentPolicy
}

func (c Config) Kind() game.Kind { return game.Kind(c.Game) }

// Dimension is the board side length for the configured game.
func (c Config) Dimension() int {
	if c.Kind() == game.TicTacToe {
		return 3
	}
	return c.HexDimension
}

func (c Config) Rewards() game.RewardPolicy {
	if c.RewardPolicy == "" {
		return game.DefaultRewardPolicy(c.Kind())
	}
	return game.RewardPolicy(c.RewardPolicy)
}

func (c Config) StateEncoding() policy.Encoding {
	if c.Encoding == "" {
		return policy.DefaultEncoding(c.Kind())
	}
	return policy.Encoding(c.Encoding)
}
