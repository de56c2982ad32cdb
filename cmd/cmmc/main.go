package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/tebeka/atexit"
	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/nettee/compiler-lab/compiler"
	"github.com/nettee/compiler-lab/compiler/format"
	"github.com/nettee/compiler-lab/compiler/front"
	"github.com/nettee/compiler-lab/compiler/ir"
	"github.com/nettee/compiler-lab/compiler/irsim"
	"github.com/nettee/compiler-lab/compiler/opt"
	"github.com/nettee/compiler-lab/compiler/translate"
)

const (
	exitSyntax = iota + 1
	exitSemantic
	exitUnsupported
	exitOther
)

func main() {
	optFlags := []*cli.Flag{
		cli.NewFlag("no-opt", false, "skip the optimizer"),
		cli.NewFlag("rounds", opt.DefaultConfig.Rounds, "propagation and folding rounds per block"),
		cli.NewFlag("fixpoint", false, "repeat the optimizer until dead code elimination removes nothing"),
	}

	compileCmd := &cli.Command{
		Name:        "compile",
		Description: "compile C-- source into MIPS32 assembly",
		Action:      compileAct,
		Args:        cli.Args{},
		Flags: append([]*cli.Flag{
			cli.NewFlag("output,o", "", "output file, stdout if empty"),
			cli.NewFlag("ir", "", "also write the optimized IR to the file"),
		}, optFlags...),
	}

	irCmd := &cli.Command{
		Name:        "ir",
		Description: "print the intermediate representation",
		Action:      irAct,
		Args:        cli.Args{},
		Flags:       optFlags,
	}

	parseCmd := &cli.Command{
		Name:        "parse",
		Description: "parse, check and print source back",
		Action:      parseAct,
		Args:        cli.Args{},
	}

	runCmd := &cli.Command{
		Name:        "run",
		Description: "interpret the IR reading integers from stdin",
		Action:      runAct,
		Args:        cli.Args{},
		Flags: append([]*cli.Flag{
			cli.NewFlag("ir-input", false, "the argument is IR text, not C-- source"),
		}, optFlags...),
	}

	app := &cli.Command{
		Name:        "cmmc",
		Description: "cmmc is a C-- compiler targeting MIPS32",
		Before:      before,
		Flags: []*cli.Flag{
			cli.NewFlag("verbosity,v", "", "logger verbosity topics"),
			cli.HelpFlag,
		},
		Commands: []*cli.Command{
			compileCmd,
			irCmd,
			parseCmd,
			runCmd,
		},
	}

	err := cli.Run(app, os.Args, os.Environ())
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		atexit.Exit(exitCode(err))
	}

	atexit.Exit(0)
}

func before(c *cli.Command) error {
	tlog.SetVerbosity(c.String("verbosity"))

	return nil
}

func compileAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	name, err := oneArg(c)
	if err != nil {
		return err
	}

	r, err := compiler.CompileFile(ctx, name, options(c))
	if err != nil {
		return errors.Wrap(err, "compile %v", name)
	}

	var outs []output

	out := c.String("output")
	if out != "" {
		outs = append(outs, output{name: out, data: r.Asm})
	}

	if q := c.String("ir"); q != "" {
		outs = append(outs, output{name: q, data: r.Program.Bytes()})
	}

	err = writeOutputs(outs...)
	if err != nil {
		return err
	}

	if out != "" {
		return nil
	}

	_, err = os.Stdout.Write(r.Asm)
	if err != nil {
		removeOutputs(outs)
		return errors.Wrap(err, "write stdout")
	}

	return nil
}

func irAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	name, err := oneArg(c)
	if err != nil {
		return err
	}

	r, err := translateFile(ctx, name, options(c))
	if err != nil {
		return err
	}

	_, err = r.Program.WriteTo(os.Stdout)

	return err
}

func parseAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	for _, a := range c.Args {
		text, err := os.ReadFile(a)
		if err != nil {
			return errors.Wrap(err, "read file")
		}

		r, err := compiler.Analyze(ctx, a, text)
		if err != nil {
			return errors.Wrap(err, "parse %v", a)
		}

		b, err := format.Format(ctx, nil, r.AST)
		if err != nil {
			return errors.Wrap(err, "format %v", a)
		}

		fmt.Printf("%s", b)
	}

	return nil
}

func runAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	name, err := oneArg(c)
	if err != nil {
		return err
	}

	var p *ir.Program

	if c.Bool("ir-input") {
		text, err := os.ReadFile(name)
		if err != nil {
			return errors.Wrap(err, "read file")
		}

		p, err = ir.Parse(text)
		if err != nil {
			return errors.Wrap(err, "parse ir %v", name)
		}

		if o := options(c); o.Optimize {
			_, err = opt.Run(ctx, p, o.Opt)
			if err != nil {
				return errors.Wrap(err, "optimize")
			}
		}
	} else {
		r, err := translateFile(ctx, name, options(c))
		if err != nil {
			return err
		}

		p = r.Program
	}

	input, err := readInts(os.Stdin)
	if err != nil {
		return errors.Wrap(err, "read input")
	}

	out, exit, err := irsim.Run(ctx, p, input)
	if err != nil {
		return errors.Wrap(err, "run %v", name)
	}

	for _, v := range out {
		fmt.Println(v)
	}

	tlog.Printw("exited", "code", exit, "outputs", len(out))

	return nil
}

func translateFile(ctx context.Context, name string, o compiler.Options) (*compiler.Result, error) {
	text, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrap(err, "read file")
	}

	r, err := compiler.Translate(ctx, name, text, o)
	if err != nil {
		return nil, errors.Wrap(err, "translate %v", name)
	}

	return r, nil
}

func options(c *cli.Command) compiler.Options {
	o := compiler.DefaultOptions

	o.Optimize = !c.Bool("no-opt")
	o.Opt.Rounds = c.Int("rounds")
	o.Opt.Fixpoint = c.Bool("fixpoint")

	return o
}

func oneArg(c *cli.Command) (string, error) {
	if len(c.Args) != 1 {
		return "", errors.New("expected exactly one source file, got %d", len(c.Args))
	}

	return c.Args[0], nil
}

type output struct {
	name string
	data []byte
}

// writeOutputs writes every output or leaves none of them on disk.
func writeOutputs(outs ...output) (err error) {
	for i, o := range outs {
		err = writeFile(o.name, o.data)
		if err != nil {
			removeOutputs(outs[:i+1])
			return err
		}
	}

	return nil
}

func removeOutputs(outs []output) {
	for _, o := range outs {
		_ = os.Remove(o.name)
	}
}

// writeFile writes b to name. A partially written file is removed on exit.
func writeFile(name string, b []byte) (err error) {
	f, err := os.Create(name)
	if err != nil {
		return errors.Wrap(err, "create output")
	}

	done := false

	atexit.Register(func() {
		if !done {
			_ = os.Remove(name)
		}
	})

	defer func() {
		e := f.Close()
		if err == nil && e != nil {
			err = errors.Wrap(e, "close output")
		}

		done = err == nil
	}()

	_, err = f.Write(b)
	if err != nil {
		return errors.Wrap(err, "write output")
	}

	return nil
}

func readInts(r io.Reader) (xs []int32, err error) {
	s := bufio.NewScanner(r)
	s.Split(bufio.ScanWords)

	for s.Scan() {
		v, err := strconv.ParseInt(s.Text(), 10, 32)
		if err != nil {
			return nil, errors.Wrap(err, "parse %q", s.Text())
		}

		xs = append(xs, int32(v))
	}

	return xs, s.Err()
}

func exitCode(err error) int {
	var se front.SyntaxError
	var sem front.SemanticError

	switch {
	case errors.As(err, &se):
		return exitSyntax
	case errors.As(err, &sem):
		return exitSemantic
	case errors.Is(err, translate.ErrUnsupported):
		return exitUnsupported
	default:
		return exitOther
	}
}
