package callbacks_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/effective-security/nutritionai/callbacks"
	"github.com/effective-security/nutritionai/chatmodel"
	"github.com/effective-security/nutritionai/mocks/mocktools"
	"github.com/effective-security/x/values"
	"github.com/effective-security/xlog"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func TestPrinter(t *testing.T) {
	var buf bytes.Buffer
	cb := callbacks.NewPrinter(&buf, callbacks.ModeVerbose)

	ctx := chatmodel.WithCallContext(context.Background(), chatmodel.NewCallContext("req1"))
	tool := &fakeTool{name: "test-tool"}

	cb.OnToolStart(ctx, tool, "test input")
	cb.OnToolEnd(ctx, tool, "test input", "test output")
	cb.OnToolError(ctx, tool, "test input", errors.New("test error"))
	cb.OnToolNotFound(ctx, "unknown-tool")

	res := buf.String()
	assert.Contains(t, res, "Tool Start: test-tool [req1]")
	assert.Contains(t, res, "Input: test input")
	assert.Contains(t, res, "Tool End: test-tool [req1]")
	assert.Contains(t, res, "Output: test output")
	assert.Contains(t, res, "Tool Error: test-tool [req1]: test error")
	assert.Contains(t, res, "Tool Not Found: unknown-tool")

	buf.Reset()
	cb = callbacks.NewPrinter(&buf, callbacks.ModeDefault)
	cb.OnToolEnd(ctx, tool, "test input", "test output")
	assert.Equal(t, "Tool End: test-tool [req1]\n", buf.String())
}

func TestPackageLogger(t *testing.T) {
	var buf bytes.Buffer
	xlog.SetFormatter(xlog.NewStringFormatter(&buf))

	// the level applies only to the loggers created before the call
	logger := xlog.NewPackageLogger("github.com/effective-security/nutritionai", "callbacks_test")
	xlog.SetGlobalLogLevel(xlog.DEBUG)
	cb := callbacks.NewPackageLogger(logger)

	ctx := chatmodel.WithCallContext(context.Background(), chatmodel.NewCallContext("req2"))
	tool := &fakeTool{name: "test-tool"}

	cb.OnToolStart(ctx, tool, "test input")
	cb.OnToolEnd(ctx, tool, "test input", "test output")
	cb.OnToolError(ctx, tool, "test input", errors.New("test error"))
	cb.OnToolNotFound(ctx, "unknown-tool")

	res := buf.String()
	assert.Contains(t, res, "tool_start")
	assert.Contains(t, res, "tool_end")
	assert.Contains(t, res, "tool_error")
	assert.Contains(t, res, "tool_not_found")
	assert.Contains(t, res, "req2")
	assert.Contains(t, res, "test error")
}

func TestFanout(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	tool := &fakeTool{name: "test-tool"}
	terr := errors.New("test error")

	cb1 := mocktools.NewMockCallback(ctrl)
	cb2 := mocktools.NewMockCallback(ctrl)
	for _, cb := range []*mocktools.MockCallback{cb1, cb2} {
		cb.EXPECT().OnToolStart(ctx, tool, "in").Times(1)
		cb.EXPECT().OnToolEnd(ctx, tool, "in", "out").Times(1)
		cb.EXPECT().OnToolError(ctx, tool, "in", terr).Times(1)
		cb.EXPECT().OnToolNotFound(ctx, "missing").Times(1)
	}

	fanout := callbacks.NewFanout(cb1)
	fanout.Add(cb2)

	fanout.OnToolStart(ctx, tool, "in")
	fanout.OnToolEnd(ctx, tool, "in", "out")
	fanout.OnToolError(ctx, tool, "in", terr)
	fanout.OnToolNotFound(ctx, "missing")

	noop := callbacks.NewNoop()
	noop.OnToolStart(ctx, tool, "in")
	noop.OnToolEnd(ctx, tool, "in", "out")
	noop.OnToolError(ctx, tool, "in", terr)
	noop.OnToolNotFound(ctx, "missing")
}

type fakeTool struct {
	name        string
	description string
}

func (f *fakeTool) Name() string {
	return f.name
}
func (f *fakeTool) Description() string {
	return values.StringsCoalesce(f.description, "useful tool")
}
func (f *fakeTool) Parameters() any {
	return nil
}
func (f *fakeTool) Call(context.Context, string) (string, error) {
	return "", nil
}
