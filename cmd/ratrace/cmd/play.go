package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/ratrace/config"
	"github.com/rustyeddy/ratrace/engine"
	"github.com/rustyeddy/ratrace/internal/money"
	"github.com/rustyeddy/ratrace/internal/telemetry"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a game in the terminal",
	Long: `Play a game with the settings from the config file. Automated seats
play themselves; human seats are prompted on stdin.

The game stops when a player escapes the rat race, when --max-turns turns
have been played, or on interrupt.

Examples:
  ratrace play
  ratrace play --bots 6 --speed 20 --seed 7
  ratrace play -c game.yaml --max-turns 50`,
	RunE: runPlay,
}

var (
	playDifficulty string
	playSeed       int64
	playSpeed      float64
	playMaxTurns   int
	playBots       int
)

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().StringVar(&playDifficulty, "difficulty", "", "easy, medium or hard")
	playCmd.Flags().Int64Var(&playSeed, "seed", 0, "random seed (0 picks one)")
	playCmd.Flags().Float64Var(&playSpeed, "speed", 1, "pacing multiplier; 10 plays ten times faster")
	playCmd.Flags().IntVar(&playMaxTurns, "max-turns", 0, "stop after this many turns (0 means no limit)")
	playCmd.Flags().IntVar(&playBots, "bots", 0, "replace the configured players with this many automated seats")
}

func runPlay(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyPlayFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	log, err := telemetry.NewLogger(cfg.Telemetry.LogLevel, cfg.Telemetry.LogFormat)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	shutdown, err := telemetry.SetupTracing(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPEndpoint)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			log.Warn("trace shutdown", zap.Error(err))
		}
	}()

	// narration arrives from timer goroutines
	out := &syncWriter{w: cmd.OutOrStdout()}
	s, err := newSession(cfg, out, log)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Game %s (seed %d)\n\n", s.engine.Snapshot().GameID, s.seed)
	final, err := s.Run(ctx, cmd.InOrStdin(), out)
	if cerr := s.Close(); cerr != nil {
		log.Warn("close journal", zap.Error(cerr))
	}
	printSummary(out, final)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func applyPlayFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("difficulty") {
		cfg.Game.Difficulty = playDifficulty
	}
	if flags.Changed("seed") {
		cfg.Game.Seed = playSeed
	}
	if flags.Changed("speed") {
		cfg.Game.Speed = playSpeed
	}
	if flags.Changed("max-turns") {
		cfg.Game.MaxTurns = playMaxTurns
	}
	if flags.Changed("bots") {
		cfg.Players = make([]config.PlayerConfig, playBots)
		for i := range cfg.Players {
			cfg.Players[i].Mode = "automated"
		}
	}
}

type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (w *syncWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.w.Write(p)
}

func printSummary(out io.Writer, s engine.State) {
	fmt.Fprintf(out, "\nAfter %d turns:\n", s.Turn)
	fmt.Fprintf(out, "  %-10s %-14s %12s %10s %10s %7s\n", "PLAYER", "PROFESSION", "CASH", "PASSIVE", "EXPENSES", "ASSETS")
	for _, p := range s.Players {
		fmt.Fprintf(out, "  %-10s %-14s %12s %10s %10s %7d\n",
			p.Name, p.Profession, money.Format(p.Cash), money.Format(p.PassiveIncome),
			money.Format(p.TotalExpenses), len(p.Assets))
	}
	if s.Winner != nil {
		fmt.Fprintf(out, "\n%s wins.\n", s.Winner.Name)
	} else {
		fmt.Fprintln(out, "\nNobody escaped the rat race.")
	}
}
