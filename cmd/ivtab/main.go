package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/hpungsan/ivtab/internal/config"
	"github.com/hpungsan/ivtab/internal/db"
	"github.com/hpungsan/ivtab/internal/mcp"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"parse": true, "import": true, "fetch": true, "list": true,
	"delete": true, "export": true, "serve": true,
	"help": true, "h": true,
}

// isCLIMode reports whether args select the CLI rather than the MCP server.
func isCLIMode(args []string) bool {
	if len(args) < 2 {
		return false
	}
	return cliCommands[commandName(args)] || isHelpOrVersion(args)
}

// commandName returns the first argument after any global --format flag.
func commandName(args []string) string {
	for i := 1; i < len(args); i++ {
		switch arg := args[i]; {
		case arg == "--format" || arg == "-f":
			i++
		case strings.HasPrefix(arg, "--format=") || strings.HasPrefix(arg, "-f="):
		default:
			return arg
		}
	}
	return ""
}

// isHelpOrVersion reports whether the user asked for help or version info.
func isHelpOrVersion(args []string) bool {
	if len(args) < 2 {
		return false
	}
	switch args[1] {
	case "--help", "-h", "--version", "-v", "help":
		return true
	}
	return false
}

// isTerminal reports whether f is an interactive terminal.
func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// printBanner displays a banner when run interactively without args.
func printBanner() {
	fmt.Println(`
   _       _        _
  (_)_   _| |_ __ _| |__
  | \ \ / / __/ _` + "`" + ` | '_ \
  | |\ V /| || (_| | |_) |
  |_| \_/  \__\__,_|_.__/

  Interval table reader and catalog

  Usage: ivtab <command> [options]
         ivtab --help

  MCP server mode requires piped input.`)
}

func main() {
	args := os.Args

	if len(args) < 2 && isTerminal(os.Stdin) {
		printBanner()
		return
	}

	// Help and version need no database.
	if isHelpOrVersion(args) {
		if err := newCLIApp(nil, nil).Run(args); err != nil {
			printError(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: could not determine home directory: %v\n", err)
		os.Exit(1)
	}
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: could not determine working directory: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.LoadWithRepo(filepath.Join(homeDir, config.DirName), cwd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load config: %v\n", err)
		os.Exit(1)
	}

	database, err := db.Init(cfg.BaseDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to initialize database: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()
	db.ConfigurePool(database, cfg)

	if isCLIMode(args) {
		if err := newCLIApp(database, cfg).Run(args); err != nil {
			printError(os.Stderr, err)
			database.Close()
			os.Exit(1)
		}
		return
	}

	// Unknown argument on a terminal: report it instead of starting the MCP server.
	if len(args) >= 2 && isTerminal(os.Stdin) {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", commandName(args))
		fmt.Fprintf(os.Stderr, "Run 'ivtab --help' for usage.\n")
		database.Close()
		os.Exit(1)
	}

	for _, name := range mcp.ValidateDisabledTools(cfg.DisabledTools) {
		fmt.Fprintf(os.Stderr, "warning: unknown tool in disabled_tools: %q\n", name)
	}

	if err := mcp.Run(database, cfg, Version); err != nil {
		printError(os.Stderr, err)
		database.Close()
		os.Exit(1)
	}
}
