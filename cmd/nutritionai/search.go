package main

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/nutritionai/encoding"
	"github.com/effective-security/nutritionai/pkg/llmutils"
	"github.com/effective-security/nutritionai/tools/nutritionai"
)

// SearchCmd searches the nutrition information
type SearchCmd struct {
	Query   []string `arg:"" optional:"" help:"The food item or dish to search for"`
	Trace   bool     `help:"Print the tool calls trace"`
	Example bool     `help:"Print the example of the output in the selected format"`
}

func (c *SearchCmd) Run(a *App) error {
	if c.Example {
		enc, err := encoding.Predefined(a.cli.Format, nutritionai.SearchResult{})
		if err != nil {
			return err
		}
		fmt.Fprint(a.Out, enc.GetFormatInstructions())
		return nil
	}

	query := strings.TrimSpace(strings.Join(c.Query, " "))
	if query == "" {
		return errors.New("query is required")
	}

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

	out, err := ts.Call(ctx, nutritionai.ToolName, llmutils.ToJSON(nutritionai.SearchRequest{Query: query}))
	if err != nil {
		return err
	}

	parser, err := encoding.NewTypedParser(nutritionai.SearchResult{}, encoding.ModeJSON)
	if err != nil {
		return err
	}
	res, err := parser.Parse(out)
	if err != nil {
		return err
	}
	return a.Print(res)
}
