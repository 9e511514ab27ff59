package cmd

import (
	"fmt"

	"github.com/jimezsa/sportstx/internal/seen"
)

type SeenCmd struct {
	Diff   SeenDiffCmd   `cmd:"" help:"Write unseen transactions (A-B) to JSON."`
	Update SeenUpdateCmd `cmd:"" help:"Merge new transactions into seen history JSON."`
}

type SeenDiffCmd struct {
	New   string `name:"new" required:"" help:"Path to new transactions JSON file (A)."`
	Seen  string `name:"seen" required:"" help:"Path to seen transactions JSON file (B). Missing file is treated as empty."`
	Out   string `name:"out" required:"" help:"Output path for unseen transactions JSON file (C)."`
	Stats bool   `name:"stats" help:"Print comparison stats."`
}

type SeenUpdateCmd struct {
	Seen  string `name:"seen" required:"" help:"Path to seen transactions JSON file (B). Missing file is treated as empty."`
	Input string `name:"input" required:"" help:"Path to transactions JSON file to merge into seen history."`
	Out   string `name:"out" help:"Output path for updated history; defaults to --seen."`
	Stats bool   `name:"stats" help:"Print merge stats."`
}

func (c *SeenDiffCmd) Run(ctx *Context) error {
	incoming, err := seen.Read(c.New)
	if err != nil {
		return fmt.Errorf("read --new: %w", err)
	}
	history, err := seen.ReadAllowMissing(c.Seen)
	if err != nil {
		return fmt.Errorf("read --seen: %w", err)
	}

	unseen, stats := seen.Diff(incoming, history)
	if err := seen.Write(c.Out, unseen); err != nil {
		return fmt.Errorf("write --out: %w", err)
	}

	if !c.Stats {
		return nil
	}
	_, err = fmt.Fprintf(ctx.Out, "total_new=%d total_seen=%d invalid_skipped=%d unseen_emitted=%d\n",
		stats.TotalNew, stats.TotalSeen, stats.InvalidSkipped(), stats.Unseen)
	return err
}

func (c *SeenUpdateCmd) Run(ctx *Context) error {
	history, err := seen.ReadAllowMissing(c.Seen)
	if err != nil {
		return fmt.Errorf("read --seen: %w", err)
	}
	input, err := seen.Read(c.Input)
	if err != nil {
		return fmt.Errorf("read --input: %w", err)
	}

	out := firstNonEmpty(c.Out, c.Seen)
	merged, stats := seen.Merge(history, input)
	if err := seen.Write(out, merged); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}

	if !c.Stats {
		return nil
	}
	_, err = fmt.Fprintf(ctx.Out, "total_seen=%d total_input=%d invalid_skipped=%d added=%d total_out=%d\n",
		stats.TotalSeen, stats.TotalInput, stats.InvalidSkipped(), stats.Added, stats.TotalOut)
	return err
}
