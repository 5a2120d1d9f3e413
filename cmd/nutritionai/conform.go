package main

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/nutritionai/tools"
)

// ConformCmd checks the conformance of the registered tool specs
type ConformCmd struct {
	Specs []string `arg:"" optional:"" help:"Names of the tool specs, all registered specs if not provided"`
}

func (c *ConformCmd) Run(a *App) error {
	names := c.Specs
	if len(names) == 0 {
		names = tools.RegisteredSpecTypes()
	}

	var failed []string
	for _, name := range names {
		ok, err := tools.CheckConformanceByName(name, tools.BaseToolSpecType)
		if err != nil {
			fmt.Fprintf(a.Out, "%s: %s\n", name, err.Error())
			failed = append(failed, name)
			continue
		}
		if !ok {
			fmt.Fprintf(a.Out, "%s: does not conform to %s\n", name, tools.BaseToolSpecType.Name())
			failed = append(failed, name)
			continue
		}

		t, _ := tools.ResolveSpecType(name)
		fmt.Fprintf(a.Out, "%s: %s conforms to %s [%s]\n",
			name, t.Name(), tools.BaseToolSpecType.Name(), strings.Join(tools.Ancestry(t), ", "))
	}

	if len(failed) > 0 {
		return errors.Errorf("not conformant: %s", strings.Join(failed, ", "))
	}
	return nil
}
