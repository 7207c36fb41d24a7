// Command mexp expands macro documents read from files or standard input.
package main

import (
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
	"golang.org/x/term"

	"nickandperla.net/mexp/pkg/mexp"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, files, err := loadConfig(args)
	if err != nil {
		if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
			return 0
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintln(os.Stderr, "Use mexp -h to show usage")
		return 1
	}
	if cfg.ShowVersion {
		fmt.Println("mexp version", appVersion)
		return 0
	}

	logger, err := setupLogging(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer logger.Sync()

	opts, err := buildOptions(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	runtime, err := mexp.New(opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer runtime.Close()

	// Files first, then -e, sharing one macro table.
	if len(files) > 0 {
		log.Debugw("expanding files", "files", files)
		out, err := runtime.ExpandFiles(files...)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Print(out)
	}
	if cfg.Eval != "" {
		out, err := runtime.Expand(cfg.Eval)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Print(out)
	}

	switch {
	case cfg.Interactive:
		runREPL(runtime)
	case len(files) > 0 || cfg.Eval != "":
	case term.IsTerminal(int(os.Stdin.Fd())):
		runREPL(runtime)
	default:
		out, err := runtime.ExpandReader(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Print(out)
	}
	return 0
}

// buildOptions turns the config into runtime options.
func buildOptions(cfg *config) ([]mexp.Option, error) {
	mode, ok := mexp.ParsePersistMode(cfg.PersistMode)
	if !ok {
		return nil, fmt.Errorf("unknown persist mode: %s (use load, always, or never)", cfg.PersistMode)
	}

	var opts []mexp.Option
	if cfg.DBPath != "" {
		opts = append(opts, mexp.WithSQLiteStore(cfg.DBPath), mexp.WithPersistMode(mode))
	}
	if len(cfg.IncludeDirs) > 0 {
		opts = append(opts, mexp.WithIncludeDirs(cfg.IncludeDirs...))
	}
	if cfg.Stdlib {
		opts = append(opts, mexp.WithStandardPrelude())
	}
	if cfg.Prelude != "" {
		data, err := os.ReadFile(cfg.Prelude)
		if err != nil {
			return nil, fmt.Errorf("cannot read prelude: %w", err)
		}
		opts = append(opts, mexp.WithPrelude(string(data)))
	}
	if cfg.MaxNesting > 0 {
		opts = append(opts, mexp.WithMaxNesting(cfg.MaxNesting))
	}
	return opts, nil
}
