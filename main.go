package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/mcncl/ido/internal/config"
	"github.com/mcncl/ido/internal/errors"
	"github.com/mcncl/ido/internal/models"
	"github.com/mcncl/ido/internal/parser"
)

// Version information
const (
	Version = "0.1.0"
)

// CLI defines the command-line interface
type CLI struct {
	Config  string           `help:"Path to a config file. Defaults to the nearest .ido.yml." type:"path"`
	Debug   bool             `help:"Enable debug logging." short:"d"`
	Version kong.VersionFlag `help:"Show version information." short:"v"`

	Encode EncodeCmd `cmd:"" help:"Encode a JSON or YAML document as ido text."`
	Decode DecodeCmd `cmd:"" help:"Decode ido records back into JSON or YAML."`
	Shape  ShapeCmd  `cmd:"" help:"Print the shape inferred from an example document."`
	Gen    GenCmd    `cmd:"" help:"Generate Go types for the shape of an example document."`
}

// Context holds the runtime context shared by every command
type Context struct {
	Debug  bool
	Config *config.Config
	Logger *slog.Logger
	Stdin  io.Reader
	Stdout io.Writer
}

// IOFlags are the input and output options common to all commands.
type IOFlags struct {
	Input  string `help:"Path to input file. If not specified, reads from stdin." short:"i" type:"path"`
	Output string `help:"Path to output file. If not specified, writes to stdout." short:"o" type:"path"`
	YAML   bool   `help:"Read stdin as YAML. Files are detected by extension." name:"yaml"`
}

type exitCode int

func main() {
	os.Exit(execute(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// execute runs the CLI with the given arguments and streams and returns
// the process exit code.
func execute(args []string, stdin io.Reader, stdout, stderr io.Writer) (code int) {
	var cli CLI
	app, err := kong.New(&cli,
		kong.Name("ido"),
		kong.Description("Encode, decode and generate Go types for the ido positional text format."),
		kong.UsageOnError(),
		kong.Vars{"version": "ido version " + Version},
		kong.Writers(stdout, stderr),
		kong.Exit(func(c int) { panic(exitCode(c)) }),
	)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}

	// kong exits after --help, --version and usage errors.
	defer func() {
		if r := recover(); r != nil {
			c, ok := r.(exitCode)
			if !ok {
				panic(r)
			}
			code = int(c)
		}
	}()

	kctx, err := app.Parse(args)
	app.FatalIfErrorf(err)

	cfg, err := loadConfig(cli.Config)
	if err != nil {
		fmt.Fprintf(stderr, "%s\n", errors.UserFriendlyError(err))
		return 1
	}

	debug := cli.Debug || cfg.Dev.Debug
	ctx := &Context{
		Debug:  debug,
		Config: cfg,
		Logger: newLogger(stderr, debug),
		Stdin:  stdin,
		Stdout: stdout,
	}

	if err := kctx.Run(ctx); err != nil {
		fmt.Fprintf(stderr, "%s\n", errors.UserFriendlyError(err))
		fmt.Fprintf(stderr, "\nFor help, run: ido %s --help\n", kctx.Command())
		return 1
	}
	return 0
}

func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// loadConfig reads the config file named by --config, or the nearest one
// found from the working directory upward, or the defaults.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		path = config.FindConfigFile()
	}
	cfg, err := config.LoadConfigWithCLI(path, "", "")
	if err != nil {
		return nil, errors.NewConfigError(fmt.Sprintf("failed to load '%s'", path), err)
	}
	return cfg, nil
}

// parseInput reads a JSON or YAML document from a file or stdin.
func (ctx *Context) parseInput(flags IOFlags) (models.IntermediateRepresentation, error) {
	if flags.Input != "" {
		ctx.Logger.Debug("reading input", "file", flags.Input, "format", parser.FormatForPath(flags.Input))
		return parser.ParseFile(flags.Input)
	}

	r, err := ctx.stdin()
	if err != nil {
		return models.IntermediateRepresentation{}, err
	}
	format := parser.FormatJSON
	if flags.YAML {
		format = parser.FormatYAML
	}
	ctx.Logger.Debug("reading input", "file", "stdin", "format", format)
	return parser.ParseFormat(r, format)
}

// openInput returns the raw input stream. The caller closes it.
func (ctx *Context) openInput(flags IOFlags) (io.ReadCloser, error) {
	if flags.Input == "" {
		r, err := ctx.stdin()
		if err != nil {
			return nil, err
		}
		return io.NopCloser(r), nil
	}
	f, err := os.Open(flags.Input)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewInputError(fmt.Sprintf("file '%s' not found", flags.Input), errors.ErrFileNotFound)
		}
		return nil, errors.NewInputError(fmt.Sprintf("failed to open file '%s'", flags.Input), err)
	}
	ctx.Logger.Debug("reading input", "file", flags.Input)
	return f, nil
}

// stdin refuses to block on an interactive terminal.
func (ctx *Context) stdin() (io.Reader, error) {
	if f, ok := ctx.Stdin.(*os.File); ok {
		info, err := f.Stat()
		if err != nil {
			return nil, errors.NewInputError("failed to access stdin", err)
		}
		if info.Mode()&os.ModeCharDevice != 0 {
			return nil, errors.NewInputError("no input provided", errors.ErrNoInput)
		}
	}
	if ctx.Stdin == nil {
		return nil, errors.NewInputError("no input provided", errors.ErrNoInput)
	}
	return ctx.Stdin, nil
}

// writeOutput writes data to the output file or stdout
func (ctx *Context) writeOutput(path string, data []byte) error {
	if path != "" {
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", path), err)
		}
		ctx.Logger.Info("output written", "file", path, "bytes", len(data))
		return nil
	}

	if _, err := ctx.Stdout.Write(data); err != nil {
		return errors.NewOutputError("failed to write to stdout", err)
	}
	return nil
}
