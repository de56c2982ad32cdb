package compiler

import (
	"context"
	"os"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/nettee/compiler-lab/compiler/ast"
	"github.com/nettee/compiler-lab/compiler/back"
	"github.com/nettee/compiler-lab/compiler/front"
	"github.com/nettee/compiler-lab/compiler/ir"
	"github.com/nettee/compiler-lab/compiler/opt"
	"github.com/nettee/compiler-lab/compiler/translate"
)

type (
	Options struct {
		// Optimize runs the optimizer between translation and code generation.
		Optimize bool

		Opt opt.Config
	}

	Result struct {
		AST   *ast.Program
		Table *front.Table

		// IR is the translated program before optimization.
		IR []byte

		// Program is the final, possibly optimized, IR.
		Program *ir.Program
		Stats   opt.Stats

		Asm []byte
	}
)

var DefaultOptions = Options{
	Optimize: true,
	Opt:      opt.DefaultConfig,
}

func CompileFile(ctx context.Context, name string, o Options) (r *Result, err error) {
	text, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrap(err, "read file")
	}

	tlog.SpanFromContext(ctx).Printw("read file", "size", len(text), "name", name)

	return Compile(ctx, name, text, o)
}

// Compile runs the whole pipeline: parse, analyze, translate, optimize and generate.
func Compile(ctx context.Context, name string, text []byte, o Options) (r *Result, err error) {
	r, err = Translate(ctx, name, text, o)
	if err != nil {
		return nil, err
	}

	r.Asm, err = back.New().Compile(ctx, nil, r.Program)
	if err != nil {
		return nil, errors.Wrap(err, "codegen")
	}

	return r, nil
}

// Translate runs the pipeline up to the optimized IR.
func Translate(ctx context.Context, name string, text []byte, o Options) (r *Result, err error) {
	r, err = Analyze(ctx, name, text)
	if err != nil {
		return nil, err
	}

	r.Program, err = translate.Translate(ctx, r.AST, r.Table)
	if err != nil {
		return nil, errors.Wrap(err, "translate")
	}

	r.IR = r.Program.Bytes()

	if !o.Optimize {
		return r, nil
	}

	r.Stats, err = opt.Run(ctx, r.Program, o.Opt)
	if err != nil {
		return nil, errors.Wrap(err, "optimize")
	}

	return r, nil
}

// Analyze parses and type checks text.
func Analyze(ctx context.Context, name string, text []byte) (r *Result, err error) {
	src := front.NewSource(name, text)

	r = &Result{}

	r.AST, err = front.Parse(ctx, src)
	if err != nil {
		return nil, errors.Wrap(err, "parse text")
	}

	r.Table, err = front.Analyze(ctx, src, r.AST)
	if err != nil {
		return nil, errors.Wrap(err, "analyze")
	}

	return r, nil
}
