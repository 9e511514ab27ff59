package cmd

import (
	"encoding/json"
	"fmt"
	"runtime"
)

type VersionCmd struct{}

func (v *VersionCmd) Run(ctx *Context) error {
	if ctx.JSONOutput {
		return json.NewEncoder(ctx.Out).Encode(map[string]string{
			"version": ctx.Version,
			"go":      runtime.Version(),
		})
	}
	_, err := fmt.Fprintln(ctx.Out, ctx.Version)
	return err
}
