package main

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"hexit/config"
)

var (
	configPath string
	logLevel   string

	// Flag values that override the config file when set.
	overrides = config.Default()

	rootCmd = &cobra.Command{
		Use:   "hexit",
		Short: "Self-play data generation for Hex and Tic-Tac-Toe",
		Long: `hexit plays batches of self-play games between random, scripted,
search or policy-network agents and stores sampled board states as
numbered CSV shards for expert iteration training.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := zerolog.ParseLevel(logLevel)
			if err != nil {
				return fmt.Errorf("invalid log level %q: %w", logLevel, err)
			}
			logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
				Level(level).
				With().Timestamp().Str("run", uuid.NewString()).Str("cmd", cmd.Name()).
				Logger()
			log.Logger = logger
			cmd.SetContext(logger.WithContext(cmd.Context()))
			return nil
		},
	}

	generateCmd = &cobra.Command{
		Use:   "generate",
		Short: "Play self-play batches and write sampled states to shards",
		RunE:  runGenerate,
	}

	playCmd = &cobra.Command{
		Use:   "play",
		Short: "Play complete games move by move, optionally against a human",
		RunE:  runPlay,
	}

	evaluateCmd = &cobra.Command{
		Use:   "evaluate",
		Short: "Play complete games and report win counts for each side",
		RunE:  runEvaluate,
	}

	inspectCmd = &cobra.Command{
		Use:   "inspect",
		Short: "Print states stored in a shard directory",
		RunE:  runInspect,
	}

	labelCmd = &cobra.Command{
		Use:   "label",
		Short: "Search from stored states and write paired state and visit distribution shards",
		RunE:  runLabel,
	}

	inspectBegin int
	inspectMax   int
	labelBegin   int
	labelMax     int
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "YAML run configuration")
	pf.StringVar(&logLevel, "log-level", "info", "trace, debug, info, warn or error")
	pf.StringVar(&overrides.Game, "game", overrides.Game, "hex or tictactoe")
	pf.IntVar(&overrides.HexDimension, "hex-dimension", overrides.HexDimension, "side length of the hex board")
	pf.StringVar(&overrides.RewardPolicy, "reward-policy", overrides.RewardPolicy, "basic or win_fast (default depends on the game)")
	pf.IntVarP(&overrides.NumEpisodes, "episodes", "n", overrides.NumEpisodes, "number of episodes")
	pf.StringVar(&overrides.P1Agent, "p1", overrides.P1Agent, "agent for the first player: random, interactive, policy or mcts")
	pf.StringVar(&overrides.P2Agent, "p2", overrides.P2Agent, "agent for the second player: random, interactive, policy or mcts")
	pf.StringVar(&overrides.P1ModelPath, "p1-model", overrides.P1ModelPath, "checkpoint for a first player policy agent")
	pf.StringVar(&overrides.P2ModelPath, "p2-model", overrides.P2ModelPath, "checkpoint for a second player policy agent")
	pf.BoolVar(&overrides.P1Sample, "p1-sample", overrides.P1Sample, "sample first player actions instead of taking the best")
	pf.BoolVar(&overrides.P2Sample, "p2-sample", overrides.P2Sample, "sample second player actions instead of taking the best")
	pf.StringVar(&overrides.PolicyEndpoint, "policy-endpoint", overrides.PolicyEndpoint, "base URL of the policy inference server")
	pf.Float64Var(&overrides.RandomFirstMoveProbability, "random-first-move", overrides.RandomFirstMoveProbability, "probability of a random opening move")
	pf.BoolVar(&overrides.DisplayState, "display", overrides.DisplayState, "draw boards while playing")
	pf.Uint64Var(&overrides.Seed, "seed", overrides.Seed, "random seed, 0 picks one")
	pf.IntVar(&overrides.MCTSSimulations, "mcts-simulations", overrides.MCTSSimulations, "simulations per move for mcts agents")

	generateCmd.Flags().StringVarP(&overrides.SavePath, "save-path", "o", overrides.SavePath, "shard directory")
	generateCmd.Flags().IntVar(&overrides.StatesPerFile, "states-per-file", overrides.StatesPerFile, "rows per shard")
	generateCmd.Flags().IntVarP(&overrides.BatchSize, "batch-size", "b", overrides.BatchSize, "episodes played in lockstep")
	generateCmd.Flags().IntVar(&overrides.MaxMoves, "max-moves", overrides.MaxMoves, "largest termination depth, 0 for the board size")
	generateCmd.Flags().IntVar(&overrides.LogEvery, "log-every", overrides.LogEvery, "log progress every n moves")
	generateCmd.Flags().StringVar(&overrides.MetricsAddr, "metrics-addr", overrides.MetricsAddr, "serve prometheus metrics on this address")

	inspectCmd.Flags().StringVarP(&overrides.SavePath, "save-path", "o", overrides.SavePath, "shard directory")
	inspectCmd.Flags().IntVar(&inspectBegin, "begin", 0, "first shard to read")
	inspectCmd.Flags().IntVar(&inspectMax, "max", 10, "rows to print, 0 for all")

	labelCmd.Flags().StringVarP(&overrides.SavePath, "save-path", "o", overrides.SavePath, "directory of states to label")
	labelCmd.Flags().StringVar(&overrides.LabelPath, "label-path", overrides.LabelPath, "output directory, receives x/ and y/ shards")
	labelCmd.Flags().IntVar(&overrides.StatesPerFile, "states-per-file", overrides.StatesPerFile, "rows per shard")
	labelCmd.Flags().IntVar(&overrides.MCTSCutoff, "mcts-cutoff", overrides.MCTSCutoff, "rollout depth limit, negative for none")
	labelCmd.Flags().IntVar(&labelBegin, "begin", 0, "first shard to read")
	labelCmd.Flags().IntVar(&labelMax, "max", 0, "states to label, 0 for all")

	rootCmd.AddCommand(generateCmd, playCmd, evaluateCmd, inspectCmd, labelCmd)
}

// loadConfig reads the config file and applies every flag the user set.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}
	flags := cmd.Flags()
	set := func(name string, apply func()) {
		if flags.Changed(name) {
			apply()
		}
	}
	set("game", func() { cfg.Game = overrides.Game })
	set("hex-dimension", func() { cfg.HexDimension = overrides.HexDimension })
	set("reward-policy", func() { cfg.RewardPolicy = overrides.RewardPolicy })
	set("episodes", func() { cfg.NumEpisodes = overrides.NumEpisodes })
	set("p1", func() { cfg.P1Agent = overrides.P1Agent })
	set("p2", func() { cfg.P2Agent = overrides.P2Agent })
	set("p1-model", func() { cfg.P1ModelPath = overrides.P1ModelPath })
	set("p2-model", func() { cfg.P2ModelPath = overrides.P2ModelPath })
	set("p1-sample", func() { cfg.P1Sample = overrides.P1Sample })
	set("p2-sample", func() { cfg.P2Sample = overrides.P2Sample })
	set("policy-endpoint", func() { cfg.PolicyEndpoint = overrides.PolicyEndpoint })
	set("random-first-move", func() { cfg.RandomFirstMoveProbability = overrides.RandomFirstMoveProbability })
	set("display", func() { cfg.DisplayState = overrides.DisplayState })
	set("seed", func() { cfg.Seed = overrides.Seed })
	set("mcts-simulations", func() { cfg.MCTSSimulations = overrides.MCTSSimulations })
	set("save-path", func() { cfg.SavePath = overrides.SavePath })
	set("label-path", func() { cfg.LabelPath = overrides.LabelPath })
	set("mcts-cutoff", func() { cfg.MCTSCutoff = overrides.MCTSCutoff })
	set("states-per-file", func() { cfg.StatesPerFile = overrides.StatesPerFile })
	set("batch-size", func() { cfg.BatchSize = overrides.BatchSize })
	set("max-moves", func() { cfg.MaxMoves = overrides.MaxMoves })
	set("log-every", func() { cfg.LogEvery = overrides.LogEvery })
	set("metrics-addr", func() { cfg.MetricsAddr = overrides.MetricsAddr })

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
