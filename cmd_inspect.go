package main

import (
	"fmt"
	"image/color"

	"github.com/charmbracelet/lipgloss"
	"github.com/iburimskiy/herobg/internal/config"
	"github.com/iburimskiy/herobg/internal/hero"
	"github.com/iburimskiy/herobg/internal/ring"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/spf13/cobra"
)

var inspectFrames int

var (
	labelStyle = lipgloss.NewStyle().Bold(true).Width(10)
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF8C1A")).MarginBottom(1)
)

var inspectCmd = &cobra.Command{
	Use:     "inspect",
	Short:   "Tick the ring headless and print its state",
	Example: `  herobg inspect --frames 1000 --seed 42`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if inspectFrames < 0 {
			return fmt.Errorf("--frames must not be negative, got %d", inspectFrames)
		}
		w, h := hero.Options{FixedHeight: cfg.Hero.Height}.Fit(cfg.Window.Width, cfg.Window.Height)
		sim := ring.New(float64(w), float64(h), ring.NewRandom(seed(cfg)), ring.WithParams(ringParams(cfg)))
		for i := 0; i < inspectFrames; i++ {
			sim.Tick()
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderInspect(cfg, sim, inspectFrames))
		return nil
	},
}

func init() {
	inspectCmd.Flags().IntVar(&inspectFrames, "frames", 600, "frames to tick before printing")
}

func renderInspect(c *config.Config, sim *ring.Simulator, frames int) string {
	w, h := sim.Size()
	cx, cy := sim.Center()
	b := sim.Bounds()
	fps := hero.FrameRate
	if c.Hero.ReducedMotion {
		fps = hero.ReducedFrameRate
	}

	rows := []string{
		titleStyle.Render("herobg ring"),
		row("canvas", fmt.Sprintf("%.0f x %.0f at %d fps", w, h, fps)),
		row("particles", fmt.Sprintf("%d after %d frames", sim.Len(), frames)),
		row("center", fmt.Sprintf("(%.1f, %.1f) radius %.1f", cx, cy, sim.Radius())),
		row("bounds", fmt.Sprintf("x %.1f..%.1f  y %.1f..%.1f", b.MinX, b.MaxX, b.MinY, b.MaxY)),
		row("stroke", swatch(sim.Color())),
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func row(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), valueStyle.Render(value))
}

func swatch(c color.NRGBA) string {
	cf := colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
	hue, sat, val := cf.Hsv()
	block := lipgloss.NewStyle().Foreground(lipgloss.Color(cf.Hex())).Render("████")
	return fmt.Sprintf("%s %s  hue %.0f sat %.2f val %.2f  alpha %d", block, cf.Hex(), hue, sat, val, c.A)
}
