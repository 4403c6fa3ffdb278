package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mica-lang/mica/internal/cli"
	"github.com/mica-lang/mica/internal/hir"
	"github.com/mica-lang/mica/internal/interp"
	"github.com/mica-lang/mica/internal/lexer"
	"github.com/mica-lang/mica/internal/parser"
	"github.com/mica-lang/mica/internal/typechecker"
)

func cmdRepl(args []string) {
	fs := flag.NewFlagSet("repl", flag.ExitOnError)
	var (
		debugMode   = fs.Bool("debug", false, "enable debug mode")
		noPrompt    = fs.Bool("no-prompt", false, "disable interactive prompt")
		evalStr     = fs.String("eval", "", "evaluate one input line and exit")
		loadFile    = fs.String("load", "", "load definitions from file before starting")
		historyFile = fs.String("history", ".mica_history", "history file path")
		maxHistory  = fs.Int("max-history", 1000, "maximum history entries")
	)
	_ = fs.Parse(args)

	repl := NewREPL(*debugMode, *historyFile, *maxHistory)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nGoodbye!")
		repl.SaveHistory()
		os.Exit(0)
	}()

	repl.LoadHistory()

	if *loadFile != "" {
		if err := repl.LoadFile(*loadFile); err != nil {
			cli.ExitWithError("failed to load file %s: %v", *loadFile, err)
		}
	}

	if *evalStr != "" {
		result, err := repl.Evaluate(*evalStr)
		if err != nil {
			cli.ExitWithError("evaluation failed: %v", err)
		}
		fmt.Print(result)
		return
	}

	if !*noPrompt {
		repl.PrintWelcome()
	}

	repl.Run(*noPrompt)
}

// REPL holds session state: the accepted function declarations and the
// command history. Mica has no globals, so non-declaration input is
// wrapped into a synthetic main and run against the session's
// declarations.
type REPL struct {
	debug       bool
	historyFile string
	maxHistory  int
	history     []string
	decls       []string
	scanner     *bufio.Scanner
}

func NewREPL(debug bool, historyFile string, maxHistory int) *REPL {
	return &REPL{
		debug:       debug,
		historyFile: historyFile,
		maxHistory:  maxHistory,
		history:     make([]string, 0),
		decls:       make([]string, 0),
		scanner:     bufio.NewScanner(os.Stdin),
	}
}

func (r *REPL) PrintWelcome() {
	info := cli.GetVersionInfo()
	fmt.Printf("Mica REPL v%s\n", info.Version)
	fmt.Printf("Type :help for help, :quit to exit\n")
	fmt.Println()
}

func (r *REPL) Run(noPrompt bool) {
	for {
		if !noPrompt {
			fmt.Print("mica> ")
		}

		if !r.scanner.Scan() {
			break
		}

		line := strings.TrimSpace(r.scanner.Text())
		if line == "" {
			continue
		}

		r.AddToHistory(line)

		if strings.HasPrefix(line, ":") {
			if r.HandleCommand(line) {
				break
			}
			continue
		}

		result, err := r.Evaluate(line)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}
		fmt.Print(result)
	}

	r.SaveHistory()
}

// HandleCommand runs one colon command, reporting whether the REPL
// should exit.
func (r *REPL) HandleCommand(cmd string) bool {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return false
	}

	switch parts[0] {
	case ":help", ":h":
		r.PrintHelp()
	case ":quit", ":q", ":exit":
		fmt.Println("Goodbye!")
		return true
	case ":clear", ":c":
		fmt.Print("\033[2J\033[H")
	case ":reset":
		r.decls = r.decls[:0]
		fmt.Println("Session reset")
	case ":load":
		if len(parts) < 2 {
			fmt.Println("Usage: :load <file>")
		} else {
			if err := r.LoadFile(parts[1]); err != nil {
				fmt.Printf("Error loading file: %v\n", err)
			}
		}
	case ":funcs":
		r.ShowFuncs()
	case ":history":
		r.ShowHistory()
	case ":debug":
		if len(parts) < 2 {
			fmt.Printf("Debug mode: %v\n", r.debug)
		} else {
			switch parts[1] {
			case "on", "true", "1":
				r.debug = true
				fmt.Println("Debug mode enabled")
			case "off", "false", "0":
				r.debug = false
				fmt.Println("Debug mode disabled")
			default:
				fmt.Println("Usage: :debug on|off")
			}
		}
	default:
		fmt.Printf("Unknown command: %s\n", parts[0])
		fmt.Println("Type :help for available commands")
	}

	return false
}

func (r *REPL) PrintHelp() {
	fmt.Println("REPL Commands:")
	fmt.Println("  :help, :h          Show this help")
	fmt.Println("  :quit, :q, :exit   Exit REPL")
	fmt.Println("  :clear, :c         Clear screen")
	fmt.Println("  :reset             Forget session function definitions")
	fmt.Println("  :load <file>       Load function definitions from file")
	fmt.Println("  :funcs             Show session function definitions")
	fmt.Println("  :history           Show command history")
	fmt.Println("  :debug on|off      Toggle debug mode")
	fmt.Println()
	fmt.Println("Enter an expression to print its value, a statement to run it,")
	fmt.Println("or a func declaration to keep it for later lines.")
}

// Evaluate runs one input line. A declaration is checked and kept for
// the session; anything else becomes the body of a synthetic main and
// the program's output is returned.
func (r *REPL) Evaluate(input string) (string, error) {
	if r.debug {
		fmt.Printf("Debug: Evaluating '%s'\n", input)
	}

	trimmed := strings.TrimSpace(input)
	if strings.HasPrefix(trimmed, "func ") || trimmed == "func" {
		return r.addDecl(trimmed)
	}

	body := trimmed
	if !strings.HasSuffix(body, ";") && !strings.HasSuffix(body, "}") {
		// Bare expression: print its value.
		body = "print (" + body + ");"
	}
	source := r.sessionSource() + "func main() { " + body + " }\n"
	return r.run(source)
}

func (r *REPL) addDecl(decl string) (string, error) {
	candidate := append(append([]string{}, r.decls...), decl)
	source := strings.Join(candidate, "\n") + "\n"
	if _, err := r.compile(source); err != nil {
		return "", err
	}
	r.decls = append(r.decls, decl)
	return "", nil
}

func (r *REPL) sessionSource() string {
	if len(r.decls) == 0 {
		return ""
	}
	return strings.Join(r.decls, "\n") + "\n"
}

// compile runs the front half of the pipeline: parse, lower, fold,
// check. Semantic errors are joined into one error.
func (r *REPL) compile(source string) (*hir.Program, error) {
	tree, err := parser.New(lexer.NewWithFilename(source, "<repl>")).Parse()
	if err != nil {
		return nil, err
	}
	prog, err := hir.Lower(tree)
	if err != nil {
		return nil, err
	}
	prog = hir.Fold(prog).(*hir.Program)
	if r.debug {
		fmt.Print(hir.Dump(prog))
	}
	if errs := typechecker.Check(prog); len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		return nil, fmt.Errorf("%d semantic error(s): %s", len(errs), strings.Join(msgs, "; "))
	}
	return prog, nil
}

func (r *REPL) run(source string) (string, error) {
	prog, err := r.compile(source)
	if err != nil {
		return "", err
	}
	var out strings.Builder
	if err := interp.New(&out).Execute(prog); err != nil {
		return out.String(), err
	}
	return out.String(), nil
}

// LoadFile parses and checks a file of declarations, keeping them for
// the session.
func (r *REPL) LoadFile(filename string) error {
	content, err := os.ReadFile(filename)
	if err != nil {
		return err
	}

	candidate := append(append([]string{}, r.decls...), string(content))
	if _, err := r.compile(strings.Join(candidate, "\n") + "\n"); err != nil {
		return err
	}
	r.decls = append(r.decls, string(content))

	fmt.Printf("Loaded file: %s\n", filename)
	return nil
}

func (r *REPL) AddToHistory(line string) {
	r.history = append(r.history, line)
	if len(r.history) > r.maxHistory {
		r.history = r.history[1:]
	}
}

func (r *REPL) ShowHistory() {
	if len(r.history) == 0 {
		fmt.Println("No history")
		return
	}

	fmt.Println("Command history:")
	for i, cmd := range r.history {
		fmt.Printf("%3d: %s\n", i+1, cmd)
	}
}

func (r *REPL) ShowFuncs() {
	if len(r.decls) == 0 {
		fmt.Println("No functions defined")
		return
	}

	fmt.Println("Session functions:")
	for _, decl := range r.decls {
		fmt.Printf("  %s\n", firstLine(decl))
	}
}

func firstLine(s string) string {
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		return s[:i]
	}
	return s
}

func (r *REPL) LoadHistory() {
	content, err := os.ReadFile(r.historyFile)
	if err != nil {
		return // History file doesn't exist yet
	}

	lines := strings.Split(string(content), "\n")
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			r.history = append(r.history, line)
		}
	}

	if len(r.history) > r.maxHistory {
		r.history = r.history[len(r.history)-r.maxHistory:]
	}
}

func (r *REPL) SaveHistory() {
	if len(r.history) == 0 {
		return
	}

	content := strings.Join(r.history, "\n")
	os.WriteFile(r.historyFile, []byte(content), 0644)
}
