package callbacks

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/effective-security/nutritionai/chatmodel"
	"github.com/effective-security/nutritionai/tools"
)

var TimeNowFn = time.Now

// RunStats provides the tool calls statistics of a single run.
type RunStats struct {
	RequestID string

	Duration            time.Duration
	BytesIn             uint64
	BytesOut            uint64
	ToolsCalls          uint32
	ToolsCallsSucceeded uint32
	ToolsCallsFailed    uint32
	ToolNotFound        uint32
}

// Scratchpad records the tool calls of a run, identified by the request ID.
type Scratchpad struct {
	runs map[string]*run
	mode Mode
	lock sync.Mutex
}

func NewScratchpad(mode Mode) *Scratchpad {
	return &Scratchpad{
		runs: make(map[string]*run),
		mode: mode,
	}
}

// StartRun starts recording the run.
// The returned context carries the CallContext of the run.
func (l *Scratchpad) StartRun(ctx context.Context) context.Context {
	ctx = chatmodel.EnsureCallContext(ctx)
	requestID := chatmodel.GetRequestID(ctx)

	r := &run{
		stats: RunStats{
			RequestID: requestID,
		},
		started: TimeNowFn(),
	}

	l.lock.Lock()
	l.runs[requestID] = r
	l.lock.Unlock()

	r.print("*** Run Started ***")
	return ctx
}

// EndRun stops recording the run, and returns the stats and the trace.
func (l *Scratchpad) EndRun(ctx context.Context) (*RunStats, []byte) {
	run := l.getRun(ctx)
	if run == nil {
		return nil, nil
	}

	stats := run.stats
	stats.Duration = TimeNowFn().Sub(run.started)

	run.print(fmt.Sprintf("Tool calls: %d, Failed: %d, Not Found: %d",
		stats.ToolsCalls,
		stats.ToolsCallsFailed,
		stats.ToolNotFound,
	))
	run.print(fmt.Sprintf("Bytes In: %d, Bytes Out: %d",
		stats.BytesIn,
		stats.BytesOut,
	))
	run.print(fmt.Sprintf("*** Run Ended. Duration: %s ***", stats.Duration))

	l.lock.Lock()
	delete(l.runs, stats.RequestID)
	l.lock.Unlock()

	return &stats, run.w.Bytes()
}

func (l *Scratchpad) getRun(ctx context.Context) *run {
	requestID := chatmodel.GetRequestID(ctx)
	if requestID == "" {
		return nil
	}

	l.lock.Lock()
	defer l.lock.Unlock()
	return l.runs[requestID]
}

func (l *Scratchpad) OnToolStart(ctx context.Context, tool tools.ITool, input string) {
	run := l.getRun(ctx)
	if run == nil {
		return
	}
	atomic.AddUint32(&run.stats.ToolsCalls, 1)
	atomic.AddUint64(&run.stats.BytesIn, uint64(len(input)))
	run.print(tool.Name(), "*** Tool Start ***")
	run.print(tool.Name(), "Input:", input)
}

func (l *Scratchpad) OnToolEnd(ctx context.Context, tool tools.ITool, input string, output string) {
	run := l.getRun(ctx)
	if run == nil {
		return
	}
	atomic.AddUint32(&run.stats.ToolsCallsSucceeded, 1)
	atomic.AddUint64(&run.stats.BytesOut, uint64(len(output)))
	if l.mode == ModeVerbose {
		run.print(tool.Name(), "Output:", output)
	}
	run.print(tool.Name(), "*** Tool End ***")
}

func (l *Scratchpad) OnToolError(ctx context.Context, tool tools.ITool, input string, err error) {
	run := l.getRun(ctx)
	if run == nil {
		return
	}
	atomic.AddUint32(&run.stats.ToolsCallsFailed, 1)
	run.print(tool.Name(), "*** Tool Error ***", err.Error())
}

func (l *Scratchpad) OnToolNotFound(ctx context.Context, tool string) {
	run := l.getRun(ctx)
	if run == nil {
		return
	}
	atomic.AddUint32(&run.stats.ToolNotFound, 1)
	run.print("*** Tool Not Found ***", tool)
}

type run struct {
	w       bytes.Buffer
	started time.Time
	lock    sync.Mutex
	stats   RunStats
}

// print writes the entries to the run's output.
// The entries are written in the following format:
// [timestamp requestID] entry entry\n
func (r *run) print(entries ...string) {
	r.lock.Lock()
	defer r.lock.Unlock()

	ts := TimeNowFn().Format("2006-01-02 15:04:05")

	_, _ = r.w.WriteString(ts)
	_, _ = r.w.WriteString(" ")
	_, _ = r.w.WriteString(r.stats.RequestID)
	_, _ = r.w.WriteString(" ")

	for i, entry := range entries {
		if i > 0 {
			_, _ = r.w.WriteString(" ")
		}
		_, _ = r.w.WriteString(entry)
	}
	_, _ = r.w.WriteString("\n")
}
