// Package main provides the mica command-line tool. It routes
// subcommands to the pipeline stages in internal/driver and keeps all
// process-exit decisions at this boundary.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mica-lang/mica/internal/cli"
	"github.com/mica-lang/mica/internal/config"
	"github.com/mica-lang/mica/internal/driver"
	"github.com/mica-lang/mica/internal/watch"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	sub := os.Args[1]
	args := os.Args[2:]

	switch sub {
	case "help", "-h", "--help":
		usage()
	case "version", "-v", "--version":
		jsonOutput := false
		for _, arg := range args {
			if arg == "--json" || arg == "-j" {
				jsonOutput = true
				break
			}
		}
		cli.PrintVersion("Mica", jsonOutput)
	case "print":
		cmdPrint(args)
	case "tokenize":
		cmdStage(sub, args, func(p *driver.Pipeline, source, file string) (int, error) {
			return 0, p.Tokenize(source, file)
		})
	case "parse":
		cmdStage(sub, args, func(p *driver.Pipeline, source, file string) (int, error) {
			return 0, p.Parse(source, file)
		})
	case "check":
		cmdStage(sub, args, (*driver.Pipeline).Check)
	case "execute":
		cmdStage(sub, args, (*driver.Pipeline).Execute)
	case "run":
		cmdRun(args)
	case "repl":
		cmdRepl(args)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", sub)
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Printf("Mica - a small language pipeline\n\n")
	fmt.Printf("USAGE:\n")
	fmt.Printf("    mica <command> [OPTIONS] [file]\n\n")
	fmt.Printf("COMMANDS:\n")
	fmt.Printf("    %-12s %s\n", "print", "echo a source file, optionally line-numbered")
	fmt.Printf("    %-12s %s\n", "tokenize", "lex a source file and print its tokens")
	fmt.Printf("    %-12s %s\n", "parse", "parse a source file and print the syntax tree")
	fmt.Printf("    %-12s %s\n", "check", "type-check a source file and report semantic errors")
	fmt.Printf("    %-12s %s\n", "execute", "run the full pipeline and interpret main()")
	fmt.Printf("    %-12s %s\n", "run", "execute the entry file named by mica.yml")
	fmt.Printf("    %-12s %s\n", "repl", "interactive read-eval-print loop")
	fmt.Printf("    %-12s %s\n", "version", "show version information")
	fmt.Printf("    %-12s %s\n", "help", "show this help")
}

// stageFunc is one pipeline stage; the int is the semantic error
// count for stages that type-check.
type stageFunc func(p *driver.Pipeline, source, file string) (int, error)

func cmdPrint(args []string) {
	fs := flag.NewFlagSet("print", flag.ExitOnError)
	numbered := fs.Bool("numbered", false, "prefix width-aligned line numbers")
	_ = fs.Parse(args)

	file := singleFile(fs, "print")
	source, err := driver.ReadSource(file)
	if err != nil {
		cli.ExitWithError("%v", err)
	}
	driver.New(os.Stdout, nil).Print(source, *numbered)
}

func cmdStage(name string, args []string, stage stageFunc) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	verbose := fs.Bool("verbose", false, "enable verbose output")
	debug := fs.Bool("debug", false, "enable debug output")
	watchMode := fs.Bool("watch", false, "re-run when the file changes")
	configPath := fs.String("config", "", "JSON config file with default flag values")
	_ = fs.Parse(args)

	cfg, err := cli.LoadConfig(*configPath)
	if err != nil {
		cli.ExitWithError("%v", err)
	}

	file := singleFile(fs, name)
	log := cli.NewLogger(*verbose || cfg.Verbose, *debug || cfg.Debug)
	p := driver.New(os.Stdout, log)

	runOnce := func() int {
		source, err := driver.ReadSource(file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		count, err := stage(p, source, file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		if count > 0 {
			return 1
		}
		return 0
	}

	if !*watchMode {
		cli.ExitWithCode(runOnce(), "")
	}

	code := runOnce()
	fw, err := watch.New(file)
	if err != nil {
		cli.ExitWithError("watch %s: %v", file, err)
	}
	defer fw.Close()
	log.Info("watching %s", file)
	fw.Run(func() {
		fmt.Printf("--- %s changed, re-running %s ---\n", file, name)
		code = runOnce()
	}, func(err error) {
		// Watcher errors do not stop the loop.
		log.Warn("watch: %v", err)
	})
	os.Exit(code)
}

func cmdRun(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	verbose := fs.Bool("verbose", false, "enable verbose output")
	debug := fs.Bool("debug", false, "enable debug output")
	manifestPath := fs.String("manifest", config.DefaultFile, "manifest file path")
	_ = fs.Parse(args)

	m, err := config.Load(*manifestPath)
	if err != nil {
		cli.ExitWithError("%v", err)
	}
	if err := m.CheckToolchain(cli.Version); err != nil {
		cli.ExitWithError("%v", err)
	}

	var target *config.Target
	if rest := fs.Args(); len(rest) > 0 {
		t, ok := m.FindTarget(rest[0])
		if !ok {
			cli.ExitWithError("manifest: no target named %q", rest[0])
		}
		target = t
	} else {
		t, err := m.DefaultTarget()
		if err != nil {
			cli.ExitWithError("%v", err)
		}
		target = t
	}

	log := cli.NewLogger(*verbose, *debug)
	file := m.EntryPath(target)
	log.Info("running target %s (%s)", target.Name, file)

	source, err := driver.ReadSource(file)
	if err != nil {
		cli.ExitWithError("%v", err)
	}
	count, err := driver.New(os.Stdout, log).Execute(source, file)
	if err != nil || count > 0 {
		os.Exit(1)
	}
}

func singleFile(fs *flag.FlagSet, name string) string {
	rest := fs.Args()
	if len(rest) != 1 {
		fmt.Fprintf(os.Stderr, "usage: mica %s [OPTIONS] <file.mica>\n", name)
		os.Exit(2)
	}
	return rest[0]
}
