package main

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"strings"

	"github.com/mcncl/ido/codec"
	"github.com/mcncl/ido/internal/analyzer"
	"github.com/mcncl/ido/internal/config"
	"github.com/mcncl/ido/internal/errors"
	"github.com/mcncl/ido/internal/formatter"
	"github.com/mcncl/ido/internal/generator"
	"github.com/mcncl/ido/internal/models"
	"github.com/mcncl/ido/internal/parser"
)

// EncodeCmd encodes a document.
type EncodeCmd struct {
	IOFlags
	Shape   string `help:"Example document whose shape the input must follow. Defaults to the input's own shape." short:"s" type:"path"`
	Records bool   `help:"Treat a top-level array as a list of records and write one per line."`
}

// Run executes the encode command.
func (c *EncodeCmd) Run(ctx *Context) error {
	ir, err := ctx.parseInput(c.IOFlags)
	if err != nil {
		return err
	}
	anlzr := analyzer.NewAnalyzerWithConfig(ctx.Config)

	var shape codec.Shape
	if c.Shape != "" {
		shape, err = loadShape(ctx, anlzr, c.Shape)
	} else {
		shape, err = anlzr.Shape(ir)
	}
	if err != nil {
		return err
	}

	if !c.Records {
		v, err := anlzr.Value(ir, shape)
		if err != nil {
			return err
		}
		text, err := codec.Encode(v)
		if err != nil {
			return errors.NewEncodeError("failed to encode document", err)
		}
		ctx.Logger.Debug("encoded document", "shape", shape.String(), "bytes", len(text))
		return ctx.writeOutput(c.Output, []byte(text+"\n"))
	}

	items, ok := ir.Root.(models.JSONArray)
	if !ok {
		return errors.NewInputError("--records needs a document whose root is an array", codec.ErrUnsupportedValueType)
	}
	if shape.Kind() == codec.KindArray {
		shape = shape.Elem()
	}

	var buf bytes.Buffer
	enc := codec.NewEncoder(&buf)
	for i, item := range items {
		v, err := anlzr.Value(models.IntermediateRepresentation{Root: item}, shape)
		if err != nil {
			return recordError(i+1, err, errors.NewEncodeError)
		}
		if err := enc.Encode(v); err != nil {
			return recordError(i+1, err, errors.NewEncodeError)
		}
	}
	ctx.Logger.Debug("encoded records", "count", len(items), "shape", shape.String(), "bytes", buf.Len())
	return ctx.writeOutput(c.Output, buf.Bytes())
}

// DecodeCmd decodes a stream of records.
type DecodeCmd struct {
	IOFlags
	Shape      string `help:"Example document describing the records." short:"s" type:"path" required:""`
	Pretty     bool   `help:"Indent JSON output." short:"p"`
	Indent     string `help:"Indent used with --pretty. Defaults to the config value."`
	RawStrings bool   `help:"Keep backslash escapes in strings as they appear on the wire."`
	To         string `help:"Output format." enum:"json,yaml" default:"json"`
	Records    bool   `help:"Decode each record against the element shape of an array example."`
}

// Run executes the decode command.
func (c *DecodeCmd) Run(ctx *Context) error {
	flags := *ctx.Config
	flags.Decode.Pretty = ctx.Config.Decode.Pretty || c.Pretty
	flags.Decode.RawStrings = ctx.Config.Decode.RawStrings || c.RawStrings
	flags.Decode.Indent = c.Indent
	cfg := config.MergeConfigs(ctx.Config, &flags)

	anlzr := analyzer.NewAnalyzerWithConfig(cfg)
	shape, err := loadShape(ctx, anlzr, c.Shape)
	if err != nil {
		return err
	}
	if c.Records {
		if shape.Kind() != codec.KindArray {
			return errors.NewInputError("--records needs a shape example whose root is an array", codec.ErrUnsupportedValueType)
		}
		shape = shape.Elem()
	}

	in, err := ctx.openInput(c.IOFlags)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	dec := codec.NewDecoder(in, shape)
	dec.SetOptions(codec.DecodeOptions{RawStrings: cfg.Decode.RawStrings})

	indent := ""
	if cfg.Decode.Pretty {
		indent = cfg.Decode.Indent
	}
	f := formatter.NewFormatter()

	var out bytes.Buffer
	count := 0
	for {
		v, err := dec.Decode()
		if stderrors.Is(err, io.EOF) {
			break
		}
		count++
		if err != nil {
			return recordError(count, err, errors.NewDecodeError)
		}

		var rendered []byte
		if c.To == "yaml" {
			if count > 1 {
				out.WriteString("---\n")
			}
			rendered, err = f.YAML(v)
		} else {
			rendered, err = f.JSON(v, indent)
			rendered = append(rendered, '\n')
		}
		if err != nil {
			return err
		}
		out.Write(rendered)
	}
	ctx.Logger.Debug("decoded records", "count", count, "shape", shape.String())
	return ctx.writeOutput(c.Output, out.Bytes())
}

// ShapeCmd prints an inferred shape.
type ShapeCmd struct {
	IOFlags
}

// Run executes the shape command.
func (c *ShapeCmd) Run(ctx *Context) error {
	ir, err := ctx.parseInput(c.IOFlags)
	if err != nil {
		return err
	}
	shape, err := analyzer.NewAnalyzerWithConfig(ctx.Config).Shape(ir)
	if err != nil {
		return err
	}
	return ctx.writeOutput(c.Output, []byte(shape.String()+"\n"))
}

// GenCmd generates Go types.
type GenCmd struct {
	IOFlags
	Package  string `help:"Package name for generated code. Defaults to the config value." short:"p"`
	RootName string `help:"Name for the root type. Defaults to the config value." short:"r"`
	Format   bool   `help:"Format the output code according to Go standards." default:"true" negatable:""`
}

// Run executes the gen command.
func (c *GenCmd) Run(ctx *Context) error {
	flags := *ctx.Config
	flags.Package = c.Package
	flags.RootName = c.RootName
	flags.Formatting.Enabled = ctx.Config.Formatting.Enabled && c.Format
	cfg := config.MergeConfigs(ctx.Config, &flags)

	ir, err := ctx.parseInput(c.IOFlags)
	if err != nil {
		return err
	}

	anlzr := analyzer.NewAnalyzerWithConfig(cfg)
	shape, err := anlzr.Shape(ir)
	if err != nil {
		return err
	}
	ctx.Logger.Debug("inferred shape", "shape", shape.String())

	result, err := anlzr.Analyze(shape, cfg.RootName)
	if err != nil {
		return err
	}

	code, err := generator.NewGenerator().GenerateStructs(result, cfg.Package)
	if err != nil {
		return err
	}

	if cfg.Formatting.Enabled {
		code, err = formatter.NewFormatter().Format(code)
		if err != nil {
			return err
		}
	}
	return ctx.writeOutput(c.Output, []byte(code))
}

// loadShape infers a shape from the example document at path.
func loadShape(ctx *Context, anlzr *analyzer.Analyzer, path string) (codec.Shape, error) {
	if strings.TrimSpace(path) == "" {
		return codec.Shape{}, errors.NewInputError("no shape provided", errors.ErrNoShape)
	}
	example, err := parser.ParseFile(path)
	if err != nil {
		return codec.Shape{}, err
	}
	shape, err := anlzr.Shape(example)
	if err != nil {
		return codec.Shape{}, err
	}
	ctx.Logger.Debug("loaded shape", "file", path, "shape", shape.String())
	return shape, nil
}

// recordError prefixes err with the 1-based record number.
func recordError(n int, err error, wrap func(string, error) *errors.AppError) error {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return wrap(fmt.Sprintf("record %d: %s", n, appErr.Message), appErr.Err)
	}
	if ce, ok := codec.AsError(err); ok {
		return wrap(fmt.Sprintf("record %d: %s", n, strings.TrimPrefix(ce.Error(), "ido: ")), err)
	}
	return wrap(fmt.Sprintf("record %d", n), err)
}
