// Command pricedex-cli runs the price-list parsing pipeline on local files.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	logpkg "github.com/kailas-cloud/pricedex/internal/logger"
	"github.com/kailas-cloud/pricedex/internal/version"
)

const loggerKey = "logger"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// fileFlags configures column detection for commands reading a file.
func fileFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "no-fuzzy",
			Usage: "Disable fuzzy column name matching",
		},
		&cli.StringSliceFlag{
			Name:  "synonym",
			Usage: "Extra column synonym as field=name (repeatable)",
		},
		&cli.StringFlag{
			Name:    "advisor-model",
			Usage:   "Chat model used when heuristics miss a required column",
			EnvVars: []string{"AI_MODEL"},
		},
		&cli.StringFlag{
			Name:    "advisor-key",
			Usage:   "API key for the advisor model",
			EnvVars: []string{"OPENAI_API_KEY"},
		},
		&cli.StringFlag{
			Name:    "advisor-url",
			Usage:   "Base URL of the OpenAI-compatible API",
			EnvVars: []string{"OPENAI_BASE_URL"},
		},
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "pricedex-cli",
		Usage:   "Parse supplier price lists offline",
		Version: version.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "warn",
			},
		},
		Before: setupLogger,
		After: func(c *cli.Context) error {
			_ = loggerFrom(c).Sync()
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "parse",
				Usage:     "Parse a price list and print sheets, statistics and tags",
				ArgsUsage: "FILE",
				Action:    parseCommand,
				Flags: append([]cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print the result as JSON",
					},
					&cli.IntFlag{
						Name:  "products",
						Usage: "Number of products to print",
						Value: 5,
					},
					&cli.IntFlag{
						Name:  "tags",
						Usage: "Number of tags to print",
						Value: 30,
					},
				}, fileFlags()...),
			},
			{
				Name:      "columns",
				Usage:     "Print the column detection report of every sheet",
				ArgsUsage: "FILE",
				Action:    columnsCommand,
				Flags:     fileFlags(),
			},
		},
	}
}

func setupLogger(c *cli.Context) error {
	logger, err := logpkg.NewLogger("local", c.String("log-level"))
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}
	c.App.Metadata = map[string]any{loggerKey: logger}
	return nil
}

func loggerFrom(c *cli.Context) *zap.Logger {
	if l, ok := c.App.Metadata[loggerKey].(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}
