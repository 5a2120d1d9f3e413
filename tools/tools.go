package tools

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/nutritionai/pkg/llmutils"
	"github.com/effective-security/xlog"
)

//go:generate mockgen -source=tools.go -destination=../mocks/mocktools/tools_mock.gen.go -package mocktools

var logger = xlog.NewPackageLogger("github.com/effective-security/nutritionai", "tools")

var (
	// ErrToolNotFound is returned when the tool is not found by name.
	ErrToolNotFound = errors.New("tool not found")
)

// ITool is a tool for the llm agent to interact with different applications.
type ITool interface {
	// Name returns the name of the Tool.
	Name() string
	// Description returns the description of the tool, to be used in the prompt.
	// Should not exceed LLM model limit.
	Description() string
	// Parameters returns the parameters definition of the function, to be used in the prompt.
	Parameters() any

	// Call executes the tool with the given input and returns the result.
	// If the tool fails to parse the input, it should return ErrFailedUnmarshalInput error.
	Call(context.Context, string) (string, error)
}

// Callback receives the tool execution events.
type Callback interface {
	OnToolStart(ctx context.Context, tool ITool, input string)
	OnToolEnd(ctx context.Context, tool ITool, input string, output string)
	OnToolError(ctx context.Context, tool ITool, input string, err error)
	OnToolNotFound(ctx context.Context, name string)
}

type Tool[I any, O any] interface {
	ITool
	Run(context.Context, *I) (*O, error)
}

type toolDescription struct {
	Name        string `json:"Name" yaml:"Name"`
	Description string `json:"Description" yaml:"Description"`
}

type toolsDescription struct {
	Tools []toolDescription `json:"Tools" yaml:"Tools"`
}

func GetDescriptions(list ...ITool) string {
	var d toolsDescription
	for _, tool := range list {
		d.Tools = append(d.Tools, toolDescription{
			Name:        tool.Name(),
			Description: tool.Description(),
		})
	}
	return llmutils.BackticksJSON(llmutils.ToJSONIndent(d))
}
