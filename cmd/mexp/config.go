package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jessevdk/go-flags"
)

const (
	defaultLogFilename    = "mexp.log"
	defaultConfigFilename = "mexp.conf"
	appVersion            = "0.3.0"
)

// config defines the command line and config file options.
//
// See loadConfig for details on the configuration load process.
type config struct {
	ShowVersion bool     `short:"v" long:"version" description:"Display version information and exit"`
	ConfigFile  string   `short:"C" long:"configfile" description:"Path to configuration file"`
	Eval        string   `short:"e" long:"eval" description:"Expand the given string"`
	DBPath      string   `long:"db" description:"SQLite database holding persisted macro definitions"`
	PersistMode string   `long:"persist-mode" description:"Persistence mode: load, always, or never" default:"load"`
	IncludeDirs []string `short:"I" long:"include" description:"Directory searched for relative \\include paths (repeatable)"`
	Prelude     string   `long:"prelude" description:"Path to a document expanded before any input"`
	Stdlib      bool     `long:"stdlib" description:"Define the standard formatting macros before any input"`
	MaxNesting  int      `long:"maxnesting" description:"Maximum \\expandafter nesting depth (0 is unbounded)"`
	Interactive bool     `short:"i" long:"interactive" description:"Start an interactive session"`
	LogLevel    string   `short:"l" long:"loglevel" description:"Set the logging level [debug, info, warning, error]" default:"warning"`
	LogDir      string   `long:"logdir" description:"Directory to write a rotated log file to"`
}

// defaultConfigFile returns the config file used when none is given.
func defaultConfigFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "mexp", defaultConfigFilename)
}

// loadConfig parses the config file and command line, returning the config
// and the remaining positional arguments (input files).
//
// The configuration proceeds as follows:
//  1. Start with a default config
//  2. Pre-parse the command line to check for an alternative config file
//  3. Load the config file overwriting defaults with any specified options
//  4. Parse CLI options and overwrite/add any specified options
func loadConfig(args []string) (*config, []string, error) {
	cfg := config{
		ConfigFile: defaultConfigFile(),
	}

	// Pre-parse the command line options to see if an alternative config
	// file was specified. Errors other than the help request are caught by
	// the final parse below.
	preCfg := cfg
	preParser := flags.NewParser(&preCfg, flags.HelpFlag|flags.PassDoubleDash)
	if _, err := preParser.ParseArgs(args); err != nil {
		if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
			fmt.Fprintln(os.Stdout, err)
			return nil, nil, err
		}
	}

	parser := flags.NewParser(&cfg, flags.HelpFlag|flags.PassDoubleDash)
	if preCfg.ConfigFile != "" {
		err := flags.NewIniParser(parser).ParseFile(preCfg.ConfigFile)
		if err != nil {
			// A missing default config file is fine; anything else is not.
			if _, ok := err.(*os.PathError); !ok || preCfg.ConfigFile != cfg.ConfigFile {
				return nil, nil, fmt.Errorf("error parsing config file: %w", err)
			}
		}
	}

	// Reparse command-line arguments to override config file settings
	rest, err := parser.ParseArgs(args)
	if err != nil {
		return nil, nil, err
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	if _, ok := logLevelMap[cfg.LogLevel]; !ok {
		return nil, nil, fmt.Errorf("invalid log level %q", cfg.LogLevel)
	}
	if cfg.MaxNesting < 0 {
		return nil, nil, fmt.Errorf("maxnesting must not be negative")
	}
	return &cfg, rest, nil
}
