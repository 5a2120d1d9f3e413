package main

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/nutritionai/encoding"
	"github.com/effective-security/nutritionai/tools"
)

// ToolsCmd lists the tools
type ToolsCmd struct{}

type toolList struct {
	Tools []*tools.Metadata `json:"tools" yaml:"tools" toml:"tools"`
}

func (c *ToolsCmd) Run(a *App) error {
	f, err := a.Factory()
	if err != nil {
		return err
	}
	ts, err := f.Toolset(a.Context)
	if err != nil {
		return err
	}

	if a.cli.Format == encoding.ModeText {
		return a.write(tools.GetDescriptions(ts.Tools()...))
	}

	list := new(toolList)
	for _, t := range ts.Tools() {
		params, err := asMap(t.Parameters())
		if err != nil {
			return errors.WithMessagef(err, "tool %s", t.Name())
		}
		list.Tools = append(list.Tools, &tools.Metadata{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  params,
		})
	}
	return a.Print(list)
}

// asMap converts the schema to generic map, supported by all encoders
func asMap(v any) (map[string]any, error) {
	if v == nil {
		return nil, nil
	}
	js, err := json.Marshal(v)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	var m map[string]any
	if err = json.Unmarshal(js, &m); err != nil {
		return nil, errors.WithStack(err)
	}
	return m, nil
}
