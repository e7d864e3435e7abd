package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/etc/internal/app/watch"
	"github.com/slok/etc/internal/render"
	"github.com/slok/etc/internal/sample"
)

type SelftestCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	start    float64
	goal     float64
	step     float64
	interval time.Duration
	jitter   float64
	stall    float64
	output   string
}

// NewSelftestCommand returns the selftest command. It drives the estimator
// with generated traffic so the display can be eyeballed without a real
// producer. Selftest runs are never recorded.
func NewSelftestCommand(rootCmd *RootCommand, app *kingpin.Application) *SelftestCommand {
	c := &SelftestCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("selftest", "Run the estimator against a synthetic sample generator.")
	c.Cmd.Flag("start", "First generated value.").Default("0").Float64Var(&c.start)
	c.Cmd.Flag("goal", "Target value.").Default("100").Float64Var(&c.goal)
	c.Cmd.Flag("step", "Value change per sample.").Default("1").Float64Var(&c.step)
	c.Cmd.Flag("interval", "Time between samples.").Default("1s").DurationVar(&c.interval)
	c.Cmd.Flag("jitter", "Randomize each step by up to this fraction (0-1).").Default("0.2").Float64Var(&c.jitter)
	c.Cmd.Flag("stall", "Chance (0-1) that a sample repeats the previous value.").Default("0").Float64Var(&c.stall)
	c.Cmd.Flag("output", "Output mode.").Short('o').Default(render.ModeLine).EnumVar(&c.output, render.ModeLine, render.ModeScreen, render.ModePlain)

	return c
}

func (c SelftestCommand) Name() string { return c.Cmd.FullCommand() }

func (c SelftestCommand) Run(ctx context.Context) error {
	source, err := sample.NewSynthetic(sample.SyntheticConfig{
		Start:       c.start,
		Goal:        c.goal,
		Step:        c.step,
		Interval:    c.interval,
		Jitter:      c.jitter,
		StallChance: c.stall,
	})
	if err != nil {
		return fmt.Errorf("could not create synthetic source: %w", err)
	}

	sink, err := render.NewStatusLine(render.StatusLineConfig{
		Output: c.rootCmd.Stderr,
		Mode:   c.output,
		Label:  "selftest",
	})
	if err != nil {
		return fmt.Errorf("could not create render sink: %w", err)
	}

	svc, err := watch.NewService(watch.ServiceConfig{
		Goal:   c.goal,
		Label:  "selftest",
		Source: source,
		Sink:   sink,
		Logger: c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	if _, err := svc.Run(ctx); err != nil {
		return fmt.Errorf("selftest failed: %w", err)
	}

	fmt.Fprintln(c.rootCmd.Stderr)
	return nil
}
