package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/iburimskiy/herobg/internal/game"
	"github.com/iburimskiy/herobg/internal/raster"
	"github.com/iburimskiy/herobg/internal/term"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	snapshotOut    string
	snapshotFrames int
)

var windowCmd = &cobra.Command{
	Use:   "window",
	Short: "Open the animation in a desktop window",
	Long: `Opens a resizable window running the ring.

Keys:
  Space  pause / resume
  S      save a PNG snapshot of the ring
  D      toggle the debug overlay
  Esc/Q  quit`,
	RunE: runWindow,
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Render frames offscreen and write a PNG",
	Example: `  herobg snapshot -o ring.png --frames 600 --seed 7
  herobg snapshot --height 300 --reduced-motion`,
	RunE: runSnapshot,
}

var termCmd = &cobra.Command{
	Use:   "term",
	Short: "Run the animation in the terminal with braille glyphs",
	RunE:  runTerm,
}

func init() {
	snapshotCmd.Flags().StringVarP(&snapshotOut, "output", "o", "herobg.png", "PNG file to write")
	snapshotCmd.Flags().IntVar(&snapshotFrames, "frames", 300, "frames to simulate before writing")
}

func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
}

func runWindow(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext(cmd)
	defer stop()

	comp := mount(ctx, "window", &game.Backend{Log: logger.Named("window"), Title: cfg.Window.Title})
	defer comp.Close()

	g, ok := comp.Instance().(*game.Game)
	if !ok {
		// decoration only: nothing to show is not an error
		logger.Warn("window backend unavailable")
		return nil
	}
	go func() {
		<-ctx.Done()
		_ = comp.Close()
	}()
	return g.Run()
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	if snapshotFrames < 0 {
		return fmt.Errorf("--frames must not be negative, got %d", snapshotFrames)
	}
	ctx, stop := signalContext(cmd)
	defer stop()

	comp := mount(ctx, "raster", &raster.Backend{Log: logger.Named("raster"), Manual: true})
	defer comp.Close()

	inst, ok := comp.Instance().(*raster.Instance)
	if !ok {
		return fmt.Errorf("raster backend unavailable")
	}
	inst.Advance(snapshotFrames)
	if err := inst.SavePNG(snapshotOut); err != nil {
		return err
	}
	w, h := inst.Size()
	logger.Info("snapshot written",
		zap.String("path", snapshotOut),
		zap.Int("frames", snapshotFrames),
		zap.Int("width", w),
		zap.Int("height", h))
	return nil
}

func runTerm(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext(cmd)
	defer stop()

	comp := mount(ctx, "term", &term.Backend{Log: logger.Named("term")})
	defer comp.Close()

	inst, ok := comp.Instance().(*term.Instance)
	if !ok {
		return fmt.Errorf("terminal backend unavailable")
	}
	select {
	case <-inst.Done():
	case <-ctx.Done():
	}
	return nil
}
