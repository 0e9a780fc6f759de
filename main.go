package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/iburimskiy/herobg/internal/config"
	"github.com/iburimskiy/herobg/internal/hero"
	"github.com/iburimskiy/herobg/internal/ring"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	configPath    string
	verbose       bool
	logFile       string
	heightFlag    int
	reducedMotion bool
	seedFlag      uint64

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "herobg",
	Short: "Ring-spring hero background",
	Long: `herobg animates a ring of 1024 particles tied together by springs.
One random particle is kicked every frame and the stroke color drifts
through a bounded orange palette.

Run without arguments to open the animation in a window.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		applyFlags(cmd, cfg)

		logger, err = newLogger(cmd)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runWindow,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", config.DefaultConfigFile, "YAML config file (missing file means defaults)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	pf.StringVar(&logFile, "log-file", "", "write logs to this file instead of stderr")
	pf.IntVar(&heightFlag, "height", 0, "fixed canvas height in pixels (0 follows the window)")
	pf.BoolVar(&reducedMotion, "reduced-motion", false, "tick at 24 fps instead of 60")
	pf.Uint64Var(&seedFlag, "seed", 0, "noise seed (0 picks one from the clock)")

	rootCmd.AddCommand(windowCmd, snapshotCmd, termCmd, inspectCmd)
}

// applyFlags lets explicit flags win over the file and the environment.
func applyFlags(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("height") {
		c.Hero.Height = heightFlag
	}
	if flags.Changed("reduced-motion") {
		c.Hero.ReducedMotion = reducedMotion
	}
	if flags.Changed("seed") {
		c.Hero.Seed = seedFlag
	}
}

func newLogger(cmd *cobra.Command) (*zap.Logger, error) {
	// the terminal backend owns stderr
	if cmd == termCmd && logFile == "" {
		return zap.NewNop(), nil
	}
	zc := zap.NewProductionConfig()
	if verbose {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	if logFile != "" {
		zc.OutputPaths = []string{logFile}
		zc.ErrorOutputPaths = []string{logFile}
	}
	return zc.Build()
}

func seed(c *config.Config) uint64 {
	if c.Hero.Seed != 0 {
		return c.Hero.Seed
	}
	return uint64(time.Now().UnixNano())
}

func ringParams(c *config.Config) ring.Params {
	p := ring.DefaultParams()
	p.Size = c.Ring.Size
	p.Tension = c.Ring.Tension
	p.Sympathy = c.Ring.Sympathy
	p.Damping = c.Ring.Damping
	p.KickPull = c.Ring.KickPull
	p.KickNoise = c.Ring.KickNoise
	p.ColorDecay = c.Ring.ColorDecay
	p.ColorNoise = c.Ring.ColorNoise
	p.StrokeAlpha = c.Ring.StrokeAlpha
	p.StrokeWeight = c.Ring.StrokeWeight
	p.Palette.Red = ring.Bound{Min: c.Palette.Red.Min, Max: c.Palette.Red.Max}
	p.Palette.Green = ring.Bound{Min: c.Palette.Green.Min, Max: c.Palette.Green.Max}
	p.Palette.Blue = ring.Bound{Min: c.Palette.Blue.Min, Max: c.Palette.Blue.Max}
	return p
}

func host(c *config.Config) hero.StaticHost {
	return hero.StaticHost{W: c.Window.Width, H: c.Window.Height, ReducedMotion: c.Hero.ReducedMotion}
}

// mount starts the hero on backend and waits for acquisition to settle.
func mount(ctx context.Context, name string, backend hero.Backend) *hero.Component {
	load := func(ctx context.Context) (hero.Backend, error) {
		select {
		case <-ctx.Done():
			return nil, hero.ErrClosed
		default:
		}
		logger.Debug("backend acquired", zap.String("backend", name))
		return backend, nil
	}

	comp := hero.Mount(host(cfg), hero.Props{Height: cfg.Hero.Height}, load,
		hero.WithLogger(logger.Named("hero")),
		hero.WithRandom(ring.NewRandom(seed(cfg))),
		hero.WithRingOptions(ring.WithParams(ringParams(cfg))),
		hero.WithFade(cfg.Hero.FadeAlpha),
	)
	select {
	case <-comp.Ready():
	case <-ctx.Done():
		_ = comp.Close()
		<-comp.Ready()
	}
	return comp
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
