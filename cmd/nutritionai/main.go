package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/nutritionai/callbacks"
	"github.com/effective-security/nutritionai/encoding"
	"github.com/effective-security/nutritionai/pkg/llmutils"
	"github.com/effective-security/nutritionai/pkg/toolfactory"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/nutritionai", "cmd")

// App provides the context for the commands
type App struct {
	Context context.Context
	Out     io.Writer
	ErrOut  io.Writer

	cli     *cli
	factory toolfactory.Factory
}

type cli struct {
	Cfg    string `help:"Location of the configuration file" default:"" env:"NUTRITIONAI_CONFIG"`
	Debug  bool   `help:"Enable debug logging"`
	Format string `help:"Output format: text|json|yaml|toml" enum:"text,json,yaml,toml" default:"text"`

	Search  SearchCmd  `cmd:"" help:"Search nutrition information of a food item or a dish"`
	Call    CallCmd    `cmd:"" help:"Call the tool with the input, and print the result as returned to LLM"`
	Tools   ToolsCmd   `cmd:"" help:"List the tools and their parameters"`
	Conform ConformCmd `cmd:"" help:"Check that the tool spec conforms to BaseToolSpec"`
}

func main() {
	err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr, os.Exit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out, errOut io.Writer, exit func(int)) error {
	cl := new(cli)
	parser, err := kong.New(cl,
		kong.Name("nutritionai"),
		kong.Description("Nutrition AI tools"),
		kong.UsageOnError(),
		kong.Writers(out, errOut),
		kong.Exit(exit),
	)
	if err != nil {
		return errors.WithStack(err)
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		return errors.WithStack(err)
	}

	xlog.SetFormatter(xlog.NewStringFormatter(errOut))
	if cl.Debug {
		xlog.SetGlobalLogLevel(xlog.DEBUG)
	} else {
		xlog.SetGlobalLogLevel(xlog.WARNING)
	}

	app := &App{
		Context: ctx,
		Out:     out,
		ErrOut:  errOut,
		cli:     cl,
	}
	return kctx.Run(app)
}

// Factory returns the tool factory, loaded from the configuration
func (a *App) Factory() (toolfactory.Factory, error) {
	if a.factory == nil {
		f, err := toolfactory.Load(a.cli.Cfg)
		if err != nil {
			return nil, err
		}
		a.factory = f
	}
	return a.factory, nil
}

// Print writes the value in the requested format
func (a *App) Print(v any) error {
	enc, err := encoding.Predefined(a.cli.Format, v)
	if err != nil {
		return err
	}
	bs, err := enc.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "failed to encode")
	}
	return a.write(string(bs))
}

// write writes the text to the output, ending with a newline
func (a *App) write(text string) error {
	_, err := io.WriteString(a.Out, llmutils.EnsureEndsWithNewline(text))
	return errors.WithStack(err)
}

func (a *App) callbacks(trace bool) (*callbacks.Fanout, *callbacks.Scratchpad) {
	fanout := callbacks.NewFanout(callbacks.NewPackageLogger(logger))
	if !trace {
		return fanout, nil
	}
	sp := callbacks.NewScratchpad(callbacks.ModeVerbose)
	fanout.Add(sp)
	return fanout, sp
}
