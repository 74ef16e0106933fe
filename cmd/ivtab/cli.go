package main

import (
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/goccy/go-yaml"
	"github.com/urfave/cli/v2"

	"github.com/hpungsan/ivtab/internal/config"
	"github.com/hpungsan/ivtab/internal/errors"
	"github.com/hpungsan/ivtab/internal/interval"
	"github.com/hpungsan/ivtab/internal/ops"
	"github.com/hpungsan/ivtab/internal/web"
)

var (
	warnColor  = color.New(color.FgYellow)
	errorColor = color.New(color.FgRed, color.Bold)
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(db *sql.DB, cfg *config.Config) *cli.App {
	app := &cli.App{
		Name:      "ivtab",
		Usage:     "Interval table reader and catalog",
		Version:   Version,
		Writer:    os.Stdout,
		ErrWriter: os.Stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "json", Usage: "Output format: json|yaml"},
		},
		Commands: []*cli.Command{
			parseCmd(cfg),
			importCmd(db, cfg),
			fetchCmd(db),
			listCmd(db),
			deleteCmd(db),
			exportCmd(db, cfg),
			serveCmd(db, cfg),
		},
	}
	// Errors are returned to main (and tests) instead of exiting.
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// parseCmd creates the parse command.
func parseCmd(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "parse",
		Usage:     "Read an interval table and print its intervals",
		ArgsUsage: "<file>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return outputError(errors.NewInvalidRequest("parse takes exactly one file"))
			}

			output, err := ops.Parse(c.Context, cfg, ops.ParseInput{Path: c.Args().First()})
			if err != nil {
				return outputError(err)
			}

			printWarnings(c.App.ErrWriter, output.Path, output.Warnings)
			return writeOutput(c, output)
		},
	}
}

// importCmd creates the import command.
func importCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Parse an interval table and store it in the catalog",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Set name (optional, unique)"},
			&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Value: "error", Usage: "Name collision mode: error|replace"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return outputError(errors.NewInvalidRequest("import takes exactly one file"))
			}

			path := c.Args().First()
			output, err := ops.Import(c.Context, db, cfg, ops.ImportInput{
				Path: path,
				Name: c.String("name"),
				Mode: ops.ImportMode(c.String("mode")),
			})
			if err != nil {
				return outputError(err)
			}

			printWarnings(c.App.ErrWriter, path, output.Warnings)
			return writeOutput(c, output)
		},
	}
}

// fetchCmd creates the fetch command.
func fetchCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "fetch",
		Usage:     "Fetch a stored set by ID or name",
		ArgsUsage: "[id]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Set name"},
			&cli.BoolFlag{Name: "include-deleted", Usage: "Include soft-deleted sets"},
			&cli.BoolFlag{Name: "no-intervals", Usage: "Omit intervals from output"},
			&cli.StringFlag{Name: "where", Aliases: []string{"w"}, Usage: `Keep intervals matching an expression, e.g. "weight > 2 && start >= 10"`},
		},
		Action: func(c *cli.Context) error {
			input := ops.FetchInput{
				ID:             c.Args().First(),
				Name:           c.String("name"),
				IncludeDeleted: c.Bool("include-deleted"),
				Filter:         c.String("where"),
			}
			if c.Bool("no-intervals") {
				include := false
				input.IncludeIntervals = &include
			}

			output, err := ops.Fetch(c.Context, db, input)
			if err != nil {
				return outputError(err)
			}
			return writeOutput(c, output)
		},
	}
}

// listCmd creates the list command.
func listCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List stored sets, newest first",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: ops.DefaultListLimit, Usage: "Max items"},
			&cli.IntFlag{Name: "offset", Usage: "Items to skip"},
			&cli.BoolFlag{Name: "include-deleted", Usage: "Include soft-deleted sets"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.List(c.Context, db, ops.ListInput{
				Limit:          c.Int("limit"),
				Offset:         c.Int("offset"),
				IncludeDeleted: c.Bool("include-deleted"),
			})
			if err != nil {
				return outputError(err)
			}
			return writeOutput(c, output)
		},
	}
}

// deleteCmd creates the delete command.
func deleteCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Soft-delete a stored set by ID or name",
		ArgsUsage: "[id]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Set name"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Delete(c.Context, db, ops.DeleteInput{
				ID:   c.Args().First(),
				Name: c.String("name"),
			})
			if err != nil {
				return outputError(err)
			}
			return writeOutput(c, output)
		},
	}
}

// exportCmd creates the export command.
func exportCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Write a stored set back out as a CSV interval table",
		ArgsUsage: "[id]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Set name"},
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Output file (default: ~/.ivtab/exports/<name>-<timestamp>.csv)"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Export(c.Context, db, cfg, ops.ExportInput{
				ID:   c.Args().First(),
				Name: c.String("name"),
				Path: c.String("path"),
			})
			if err != nil {
				return outputError(err)
			}
			return writeOutput(c, output)
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Browse the catalog in a web UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Address to bind"},
			&cli.IntFlag{Name: "port", Value: 8080, Usage: "Port to listen on"},
		},
		Action: func(c *cli.Context) error {
			port := c.Int("port")
			if port < 1 || port > 65535 {
				return outputError(errors.NewInvalidRequest("port must be between 1 and 65535"))
			}

			srv, err := web.NewServer(db, cfg, Version, c.String("bind"), port)
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			if err := web.Run(srv); err != nil {
				return outputError(errors.NewInternal(err))
			}
			return nil
		},
	}
}

// Helper functions

// writeOutput prints a command result in the format chosen by --format.
func writeOutput(c *cli.Context, v any) error {
	switch c.String("format") {
	case "", "json":
		return outputJSON(c.App.Writer, v)
	case "yaml":
		return outputYAML(c.App.Writer, v)
	default:
		return outputError(errors.NewInvalidRequest(fmt.Sprintf("unknown format %q (want json or yaml)", c.String("format"))))
	}
}

// outputJSON writes v to w as indented JSON.
func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputYAML writes v to w as YAML, reusing the JSON field names.
func outputYAML(w io.Writer, v any) error {
	data, err := yaml.MarshalWithOptions(v, yaml.UseJSONMarshaler())
	if err != nil {
		return outputError(errors.NewInternal(err))
	}
	_, err = w.Write(data)
	return err
}

// outputError formats err for the CLI and marks the exit code.
func outputError(err error) error {
	var e *errors.Error
	if stderrors.As(err, &e) {
		msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
		if e.Code == errors.ErrInternal {
			if cause, ok := e.Details["internal_error"]; ok {
				msg = fmt.Sprintf("%s: %v", msg, cause)
			}
		}
		return cli.Exit(msg, 1)
	}
	return cli.Exit(err.Error(), 1)
}

// printWarnings reports skipped rows on w, in yellow when w is a terminal.
func printWarnings(w io.Writer, path string, warnings []interval.Warning) {
	for _, warn := range warnings {
		fmt.Fprintln(w, paint(w, warnColor, fmt.Sprintf("warning: %s: %s", path, warn)))
	}
}

// printError reports a fatal error on w, in red when w is a terminal.
func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "%s %v\n", paint(w, errorColor, "error:"), err)
}

// paint colors s when w is a terminal and NO_COLOR is unset.
// The decision is made per writer: color.NoColor only looks at stdout.
func paint(w io.Writer, c *color.Color, s string) string {
	if colorEnabled(w) {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c.Sprint(s)
}

func colorEnabled(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isTerminal(f) && os.Getenv("NO_COLOR") == ""
}
