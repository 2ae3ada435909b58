package voicelink

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aretw0/voicelink/pkg/state"
)

// Runner steps an engine and prints the behavior tree whenever it changes.
// It backs the simulate command and is handy for integration with other
// frontends (CLI, TUI, etc).
type Runner struct {
	Output io.Writer
	// Steps bounds the run. Zero runs until ctx is done.
	Steps int
	// Tick is the pause between steps. Zero steps without pausing.
	Tick time.Duration
	// Renderer transforms the printed tree, e.g. into ANSI.
	Renderer ContentRenderer
	// BeforeStep, when set, is called before each step with its index.
	BeforeStep func(i int)
}

// ContentRenderer is a function that transforms the content before outputting it.
type ContentRenderer func(string) (string, error)

// Run starts the engine and steps it until ctx is done or Steps is reached.
func (r *Runner) Run(ctx context.Context, engine *Engine) error {
	if r.Output == nil {
		return fmt.Errorf("output writer must be set (use os.Stdout)")
	}

	engine.Start()
	last := ""
	if err := r.print(engine.Snapshot(), &last); err != nil {
		return err
	}

	for i := 0; r.Steps == 0 || i < r.Steps; i++ {
		if err := ctx.Err(); err != nil {
			return nil
		}
		if r.BeforeStep != nil {
			r.BeforeStep(i)
		}
		engine.Step()
		if err := r.print(engine.Snapshot(), &last); err != nil {
			return err
		}
		if r.Tick > 0 {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(r.Tick):
			}
		}
	}
	return nil
}

func (r *Runner) print(n state.Node, last *string) error {
	tree := n.String()
	if tree == *last {
		return nil
	}
	*last = tree

	output := tree
	if r.Renderer != nil {
		if rendered, err := r.Renderer(tree); err == nil {
			output = rendered
		}
	}
	if _, err := fmt.Fprintln(r.Output, output); err != nil {
		return fmt.Errorf("output error: %w", err)
	}
	return nil
}
