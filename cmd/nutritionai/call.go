package main

import (
	"strings"
)

// CallCmd calls the tool by name
type CallCmd struct {
	Tool  string   `arg:"" help:"The tool name"`
	Input []string `arg:"" optional:"" help:"The tool input in JSON"`
	Trace bool     `help:"Print the tool calls trace"`
}

func (c *CallCmd) Run(a *App) error {
	f, err := a.Factory()
	if err != nil {
		return err
	}
	ts, err := f.Toolset(a.Context)
	if err != nil {
		return err
	}

	cb, sp := a.callbacks(c.Trace)
	ts.WithCallback(cb)

	ctx := a.Context
	if sp != nil {
		ctx = sp.StartRun(ctx)
		defer func() {
			_, trace := sp.EndRun(ctx)
			_, _ = a.ErrOut.Write(trace)
		}()
	}

	res, err := ts.Result(ctx, c.Tool, strings.Join(c.Input, " "))
	if err != nil {
		return err
	}
	return a.write(res)
}
