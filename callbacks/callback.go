package callbacks

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/effective-security/nutritionai/chatmodel"
	"github.com/effective-security/nutritionai/tools"
	"github.com/effective-security/xlog"
)

// ensure that the callbacks implement the correct interfaces
var (
	_ tools.Callback = (*Noop)(nil)
	_ tools.Callback = (*Printer)(nil)
	_ tools.Callback = (*PackageLogger)(nil)
	_ tools.Callback = (*Fanout)(nil)
	_ tools.Callback = (*Scratchpad)(nil)
)

// Mode defines the mode for callback printing
type Mode int

const (
	// ModeDefault is the default mode for callback printing
	ModeDefault Mode = iota
	// ModeVerbose is the verbose mode for callback printing
	ModeVerbose
)

// Fanout is a callback handler that forwards the events to multiple callbacks.
type Fanout struct {
	callbacks []tools.Callback
}

func NewFanout(callbacks ...tools.Callback) *Fanout {
	return &Fanout{callbacks: callbacks}
}

func (l *Fanout) Add(callback tools.Callback) {
	l.callbacks = append(l.callbacks, callback)
}

func (l *Fanout) OnToolStart(ctx context.Context, tool tools.ITool, input string) {
	for _, callback := range l.callbacks {
		callback.OnToolStart(ctx, tool, input)
	}
}

func (l *Fanout) OnToolEnd(ctx context.Context, tool tools.ITool, input string, output string) {
	for _, callback := range l.callbacks {
		callback.OnToolEnd(ctx, tool, input, output)
	}
}

func (l *Fanout) OnToolError(ctx context.Context, tool tools.ITool, input string, err error) {
	for _, callback := range l.callbacks {
		callback.OnToolError(ctx, tool, input, err)
	}
}

func (l *Fanout) OnToolNotFound(ctx context.Context, tool string) {
	for _, callback := range l.callbacks {
		callback.OnToolNotFound(ctx, tool)
	}
}

// Noop does nothing.
type Noop struct{}

func NewNoop() *Noop {
	return &Noop{}
}

func (l *Noop) OnToolStart(ctx context.Context, tool tools.ITool, input string) {}
func (l *Noop) OnToolEnd(ctx context.Context, tool tools.ITool, input string, output string) {}
func (l *Noop) OnToolError(ctx context.Context, tool tools.ITool, input string, err error) {}
func (l *Noop) OnToolNotFound(ctx context.Context, tool string) {}

// Printer is a callback handler that prints to the Writer.
type Printer struct {
	Out  io.Writer
	Mode Mode

	lock sync.Mutex
}

func NewPrinter(out io.Writer, mode Mode) *Printer {
	return &Printer{Out: out, Mode: mode}
}

func (l *Printer) OnToolStart(ctx context.Context, tool tools.ITool, input string) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Tool Start: %s [%s]\n", tool.Name(), chatmodel.GetRequestID(ctx))
	fmt.Fprintf(l.Out, "Input: %s\n", input)
}

func (l *Printer) OnToolEnd(ctx context.Context, tool tools.ITool, input string, output string) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Tool End: %s [%s]\n", tool.Name(), chatmodel.GetRequestID(ctx))
	if l.Mode == ModeVerbose {
		fmt.Fprintf(l.Out, "Output: %s\n", output)
	}
}

func (l *Printer) OnToolError(ctx context.Context, tool tools.ITool, input string, err error) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Tool Error: %s [%s]: %s\n", tool.Name(), chatmodel.GetRequestID(ctx), err.Error())
}

func (l *Printer) OnToolNotFound(ctx context.Context, tool string) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Tool Not Found: %s\n", tool)
}

// PackageLogger is a callback handler that prints to the logger.
type PackageLogger struct {
	logger *xlog.PackageLogger
}

func NewPackageLogger(logger *xlog.PackageLogger) *PackageLogger {
	return &PackageLogger{logger: logger}
}

func (l *PackageLogger) OnToolStart(ctx context.Context, tool tools.ITool, input string) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "tool_start",
		"request_id", chatmodel.GetRequestID(ctx),
		"tool", tool.Name(),
		"input", input,
	)
}

func (l *PackageLogger) OnToolEnd(ctx context.Context, tool tools.ITool, input string, output string) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "tool_end",
		"request_id", chatmodel.GetRequestID(ctx),
		"tool", tool.Name(),
		"output", output,
	)
}

func (l *PackageLogger) OnToolError(ctx context.Context, tool tools.ITool, input string, err error) {
	l.logger.ContextKV(ctx, xlog.ERROR,
		"event", "tool_error",
		"request_id", chatmodel.GetRequestID(ctx),
		"tool", tool.Name(),
		"err", err.Error(),
	)
}

func (l *PackageLogger) OnToolNotFound(ctx context.Context, tool string) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "tool_not_found",
		"request_id", chatmodel.GetRequestID(ctx),
		"tool", tool,
	)
}
