package tools

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/nutritionai/chatmodel"
	"github.com/effective-security/nutritionai/pkg/llmutils"
	"github.com/effective-security/nutritionai/pkg/metricskey"
	"github.com/effective-security/xlog"
)

// Toolset dispatches tool calls by name across the tools of one or more specs.
type Toolset struct {
	lock     sync.RWMutex
	tools    []ITool
	index    map[string]ITool
	callback Callback
}

// NewToolset returns Toolset with the tools of the provided specs.
// Tool names must be unique across the specs.
func NewToolset(specs ...BaseToolSpec) (*Toolset, error) {
	ts := &Toolset{
		index: make(map[string]ITool),
	}
	for _, spec := range specs {
		if err := ts.Add(spec.ToToolList()...); err != nil {
			return nil, errors.WithMessagef(err, "spec %s", spec.SpecName())
		}
	}
	return ts, nil
}

// WithCallback sets the callback handler for tool events.
func (ts *Toolset) WithCallback(callback Callback) *Toolset {
	ts.lock.Lock()
	defer ts.lock.Unlock()
	ts.callback = callback
	return ts
}

// Add adds the tools to the set.
// None of the tools is added if any of them is nil or already registered.
func (ts *Toolset) Add(list ...ITool) error {
	ts.lock.Lock()
	defer ts.lock.Unlock()

	seen := make(map[string]bool, len(list))
	for _, t := range list {
		if t == nil {
			return errors.New("nil tool")
		}
		name := t.Name()
		if _, ok := ts.index[name]; ok || seen[name] {
			return errors.Errorf("tool %s is already registered", name)
		}
		seen[name] = true
	}

	if ts.index == nil {
		ts.index = make(map[string]ITool)
	}
	for _, t := range list {
		ts.index[t.Name()] = t
		ts.tools = append(ts.tools, t)
	}
	return nil
}

// Tools returns the tools in the order they were added.
func (ts *Toolset) Tools() []ITool {
	ts.lock.RLock()
	defer ts.lock.RUnlock()
	return append([]ITool(nil), ts.tools...)
}

// Get returns the tool by name.
func (ts *Toolset) Get(name string) (ITool, bool) {
	ts.lock.RLock()
	defer ts.lock.RUnlock()
	t, ok := ts.index[name]
	return t, ok
}

// Call executes the tool by name with the given input.
// Returns ErrToolNotFound if the tool does not exist.
func (ts *Toolset) Call(ctx context.Context, name, input string) (string, error) {
	ctx = chatmodel.EnsureCallContext(ctx)

	ts.lock.RLock()
	tool, ok := ts.index[name]
	callback := ts.callback
	ts.lock.RUnlock()

	if !ok {
		metricskey.StatsToolCallsNotFound.IncrCounter(1, name)
		logger.ContextKV(ctx, xlog.DEBUG,
			"reason", "tool_not_found",
			"tool", name,
			"request_id", chatmodel.GetRequestID(ctx))
		if callback != nil {
			callback.OnToolNotFound(ctx, name)
		}
		return "", errors.WithMessagef(ErrToolNotFound, "tool %s", name)
	}

	if callback != nil {
		callback.OnToolStart(ctx, tool, input)
	}

	started := time.Now()
	res, err := tool.Call(ctx, input)
	metricskey.PerfToolCall.MeasureSince(started, name)

	if err != nil {
		metricskey.StatsToolCallsFailed.IncrCounter(1, name)
		logger.ContextKV(ctx, xlog.ERROR,
			"reason", "tool_call",
			"tool", name,
			"request_id", chatmodel.GetRequestID(ctx),
			"err", err.Error())
		if callback != nil {
			callback.OnToolError(ctx, tool, input, err)
		}
		return "", err
	}

	metricskey.StatsToolCallsSucceeded.IncrCounter(1, name)
	if callback != nil {
		callback.OnToolEnd(ctx, tool, input, res)
	}
	return res, nil
}

// Result executes the tool and returns the result to be added to the chat history.
// The errors the LLM can correct, an unknown tool or unparsable input,
// are returned as the tool error comment, other errors are returned as is.
func (ts *Toolset) Result(ctx context.Context, name, input string) (string, error) {
	res, err := ts.Call(ctx, name, input)
	if err != nil {
		if errors.Is(err, ErrToolNotFound) || errors.Is(err, chatmodel.ErrFailedUnmarshalInput) {
			return llmutils.ToolErrorComment(name, err), nil
		}
		return "", errors.WithMessagef(err, "failed to call tool %s", name)
	}
	return res, nil
}
