package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"hexit/agent"
	"hexit/config"
	"hexit/engine"
	"hexit/game"
	"hexit/metrics"
	"hexit/policy"
	"hexit/searcher"
	"hexit/shard"
)

// setup holds what every command derives from the configuration.
type setup struct {
	cfg      config.Config
	rng      *rand.Rand
	newState engine.NewState
	players  engine.Players
}

// newRand seeds the run's random source, picking a seed when none is set.
func newRand(ctx context.Context, cfg config.Config) *rand.Rand {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	log.Ctx(ctx).Info().Uint64("seed", seed).Str("game", cfg.Game).Int("dimension", cfg.Dimension()).Msg("configured run")
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func newSearch(cfg config.Config, rng *rand.Rand) *searcher.MCTS {
	return searcher.NewMCTS(
		searcher.WithSimulations(cfg.MCTSSimulations),
		searcher.WithCutoff(cfg.MCTSCutoff),
		searcher.WithRand(rng),
	)
}

func newSetup(ctx context.Context, cfg config.Config, in io.Reader, out io.Writer) (*setup, error) {
	rng := newRand(ctx, cfg)

	kind, dim, rewards := cfg.Kind(), cfg.Dimension(), cfg.Rewards()
	newState := func() (game.State, error) {
		return game.NewInitial(kind, dim, rewards)
	}
	if _, err := newState(); err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrArgument, err)
	}

	var service policy.Service
	if cfg.PolicyEndpoint != "" {
		service = policy.NewRemote(cfg.PolicyEndpoint)
	}
	p1, err := buildAgent(ctx, cfg, cfg.P1Agent, cfg.P1ModelPath, cfg.P1Sample, service, rng, in, out)
	if err != nil {
		return nil, fmt.Errorf("failed to build first player: %w", err)
	}
	p2, err := buildAgent(ctx, cfg, cfg.P2Agent, cfg.P2ModelPath, cfg.P2Sample, service, rng, in, out)
	if err != nil {
		return nil, fmt.Errorf("failed to build second player: %w", err)
	}

	return &setup{
		cfg:      cfg,
		rng:      rng,
		newState: newState,
		players:  engine.Players{P1: p1, P2: p2},
	}, nil
}

func buildAgent(ctx context.Context, cfg config.Config, name, modelPath string, sample bool, service policy.Service,
	rng *rand.Rand, in io.Reader, out io.Writer) (agent.Agent, error) {
	switch name {
	case config.AgentRandom:
		return agent.NewRandom(rng), nil
	case config.AgentInteractive:
		return agent.NewInteractive(in, out), nil
	case config.AgentMCTS:
		return agent.NewMCTS(newSearch(cfg, rng), rng), nil
	case config.AgentPolicy:
		if service == nil {
			return nil, fmt.Errorf("%w: no policy service configured", config.ErrArgument)
		}
		session, err := service.Restore(ctx, modelPath)
		if err != nil {
			return nil, err
		}
		return agent.NewPolicy(session, cfg.StateEncoding(), sample, rng), nil
	}
	return nil, fmt.Errorf("%w: unknown agent %q", config.ErrArgument, name)
}

func (s *setup) options(collector metrics.Collector) []engine.Option {
	options := []engine.Option{
		engine.WithBatchSize(s.cfg.BatchSize),
		engine.WithMaxMoves(s.cfg.MaxMoves),
		engine.WithLogEvery(s.cfg.LogEvery),
		engine.WithRandomFirstMove(s.cfg.RandomFirstMoveProbability),
		engine.WithCollector(collector),
		engine.WithRand(s.rng),
	}
	if s.cfg.DisplayState {
		options = append(options, engine.WithDisplay(os.Stdout))
	}
	return options
}

// newCollector exports metrics over HTTP when an address is configured.
func newCollector(ctx context.Context, addr string) metrics.Collector {
	if addr == "" {
		return metrics.NewCollector()
	}
	reg := prometheus.NewRegistry()
	collector := metrics.NewPrometheus(reg)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Ctx(ctx).Error().Err(err).Str("addr", addr).Msg("metrics server stopped")
		}
	}()
	go func() {
		<-ctx.Done()
		srv.Close()
	}()
	log.Ctx(ctx).Info().Str("addr", addr).Msg("serving metrics")
	return collector
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	s, err := newSetup(ctx, cfg, cmd.InOrStdin(), cmd.OutOrStdout())
	if err != nil {
		return err
	}
	writer, err := shard.NewWriter(cfg.SavePath, cfg.StatesPerFile)
	if err != nil {
		return err
	}

	var shards []int
	sink := func(ctx context.Context, batch []game.State) error {
		indices, err := writer.Add(ctx, batch)
		shards = append(shards, indices...)
		return err
	}

	collector := newCollector(ctx, cfg.MetricsAddr)
	options := append(s.options(collector), engine.WithSink(sink))
	scheduler := engine.NewScheduler(s.newState, s.players, options...)
	samples, runErr := scheduler.Run(ctx, cfg.NumEpisodes)

	// Finished batches are kept even when a later one failed.
	indices, err := writer.Flush(ctx)
	shards = append(shards, indices...)
	log.Ctx(ctx).Info().Int("states", len(samples)).Ints("shards", shards).Str("dir", cfg.SavePath).Msg("saved states")
	if runErr != nil {
		return fmt.Errorf("self-play failed: %w", runErr)
	}
	if err != nil {
		return fmt.Errorf("failed to save states: %w", err)
	}
	return nil
}

func runPlay(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	s, err := newSetup(ctx, cfg, cmd.InOrStdin(), cmd.OutOrStdout())
	if err != nil {
		return err
	}

	options := s.options(metrics.NewCollector())
	if cfg.P1Agent == config.AgentInteractive || cfg.P2Agent == config.AgentInteractive {
		// Humans need to see the final board.
		options = append(options, engine.WithDisplay(cmd.OutOrStdout()))
	}
	runner := engine.NewRunner(s.newState, s.players, options...)
	for i := 0; i < cfg.NumEpisodes; i++ {
		episode, err := runner.RunEpisode(ctx)
		if err != nil {
			return err
		}
		log.Ctx(ctx).Info().
			Int("episode", i+1).
			Int("winner", episode.Winner).
			Float64("reward", episode.Reward).
			Int("moves", len(episode.States)).
			Msg("game over")
	}
	return nil
}

func runEvaluate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	s, err := newSetup(ctx, cfg, cmd.InOrStdin(), cmd.OutOrStdout())
	if err != nil {
		return err
	}

	collector := metrics.NewCollector()
	runner := engine.NewRunner(s.newState, s.players, s.options(collector)...)
	if _, err := runner.RunEpisodes(ctx, cfg.NumEpisodes); err != nil {
		return err
	}
	summary := collector.Complete()
	fmt.Fprintf(cmd.OutOrStdout(), "%s (X) vs %s (O) over %d games: X %d, O %d, draws %d\n",
		cfg.P1Agent, cfg.P2Agent, summary.Episodes, summary.P1Wins, summary.P2Wins, summary.Draws)
	return nil
}

func runLabel(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	states, err := shard.ReadStates(cfg.SavePath, labelBegin, labelMax, cfg.Kind(), cfg.Dimension(), cfg.Rewards())
	if err != nil {
		return err
	}
	labeler, err := engine.NewLabeler(newSearch(cfg, newRand(ctx, cfg)), cfg.LabelPath, cfg.StatesPerFile)
	if err != nil {
		return err
	}
	indices, err := labeler.Label(ctx, states)
	if err != nil {
		return fmt.Errorf("failed to label states: %w", err)
	}
	log.Ctx(ctx).Info().Int("states", len(states)).Ints("shards", indices).Str("dir", cfg.LabelPath).Msg("labelled states")
	return nil
}

func runInspect(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	states, err := shard.ReadStates(cfg.SavePath, inspectBegin, inspectMax, cfg.Kind(), cfg.Dimension(), cfg.Rewards())
	if err != nil {
		return err
	}
	for _, s := range states {
		fmt.Fprint(cmd.OutOrStdout(), game.Render(s))
	}
	return nil
}
