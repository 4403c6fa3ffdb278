// Package driver orchestrates the language pipeline behind the CLI,
// the REPL and the file watcher: reading sources, tokenizing, parsing,
// lowering, folding, type checking and interpreting.
package driver

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mica-lang/mica/internal/cli"
	"github.com/mica-lang/mica/internal/hir"
	"github.com/mica-lang/mica/internal/interp"
	"github.com/mica-lang/mica/internal/lexer"
	"github.com/mica-lang/mica/internal/parser"
	"github.com/mica-lang/mica/internal/typechecker"
)

// Pipeline runs language stages against one source text, writing all
// user-facing output to Out.
type Pipeline struct {
	Out io.Writer
	Log *cli.Logger
}

// New returns a pipeline writing to out. A nil out defaults to
// standard output and a nil logger to a silent one.
func New(out io.Writer, log *cli.Logger) *Pipeline {
	if out == nil {
		out = os.Stdout
	}
	if log == nil {
		log = cli.NewLogger(false, false)
	}
	return &Pipeline{Out: out, Log: log}
}

// ReadSource loads one source file.
func ReadSource(path string) (string, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return "", fmt.Errorf("file not found: %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return string(data), nil
}

// Print echoes the source, optionally prefixing width-aligned line
// numbers.
func (p *Pipeline) Print(source string, numbered bool) {
	if !numbered {
		fmt.Fprintln(p.Out, source)
		return
	}
	lines := strings.Split(strings.TrimSuffix(source, "\n"), "\n")
	width := len(strconv.Itoa(len(lines)))
	for i, line := range lines {
		fmt.Fprintf(p.Out, "%*d | %s\n", width, i+1, line)
	}
}

// Tokenize runs the lexer to end of input, printing one token per
// line. The first lexical error token aborts the run.
func (p *Pipeline) Tokenize(source, filename string) error {
	p.Log.Debug("tokenizing %s", filename)
	l := lexer.NewWithFilename(source, filename)
	for {
		tok := l.NextToken()
		fmt.Fprintf(p.Out, "%-20s %s\n", tok, tok.Span.Start)
		if tok.Is(lexer.TokenError) {
			return fmt.Errorf("lexical error at %s: %s", tok.Span.Start, tok.Literal)
		}
		if tok.Is(lexer.TokenEOI) {
			return nil
		}
	}
}

// Parse runs the lexer and parser, printing the syntax tree indented
// by nesting depth.
func (p *Pipeline) Parse(source, filename string) error {
	p.Log.Debug("parsing %s", filename)
	tree, err := parser.New(lexer.NewWithFilename(source, filename)).Parse()
	if err != nil {
		return err
	}
	fmt.Fprint(p.Out, tree.String())
	return nil
}

// Check runs parse, lower and the type checker, printing the semantic
// error report. The returned count is the number of semantic errors;
// the error return covers syntax failures only.
func (p *Pipeline) Check(source, filename string) (int, error) {
	p.Log.Debug("checking %s", filename)
	prog, err := p.front(source, filename)
	if err != nil {
		return 0, err
	}
	errs := typechecker.Check(prog)
	p.report(errs)
	return len(errs), nil
}

// Execute runs the full pipeline: parse, lower, fold, type check and,
// when no semantic errors exist, interpretation. The semantic tree and
// the error report are printed first. A runtime failure is printed and
// also returned as a *interp.RuntimeError.
func (p *Pipeline) Execute(source, filename string) (int, error) {
	p.Log.Debug("executing %s", filename)
	prog, err := p.front(source, filename)
	if err != nil {
		return 0, err
	}
	prog = hir.Fold(prog).(*hir.Program)
	fmt.Fprint(p.Out, hir.Dump(prog))
	errs := typechecker.Check(prog)
	p.report(errs)
	if len(errs) > 0 {
		p.Log.Debug("skipping execution: %d semantic error(s)", len(errs))
		return len(errs), nil
	}
	if err := interp.New(p.Out).Execute(prog); err != nil {
		fmt.Fprintf(p.Out, "%v\n", err)
		return 0, err
	}
	return 0, nil
}

func (p *Pipeline) front(source, filename string) (*hir.Program, error) {
	tree, err := parser.New(lexer.NewWithFilename(source, filename)).Parse()
	if err != nil {
		return nil, err
	}
	return hir.Lower(tree)
}

func (p *Pipeline) report(errs []error) {
	if len(errs) == 0 {
		fmt.Fprintln(p.Out, "No semantic errors.")
		return
	}
	fmt.Fprintf(p.Out, "Found %d semantic error(s):\n", len(errs))
	for _, e := range errs {
		fmt.Fprintf(p.Out, "  %v\n", e)
	}
}
