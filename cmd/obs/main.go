package main

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	_ "time/tzdata"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn("load .env", "error", err)
	}

	root := &cli.Command{
		Name:  "obs",
		Usage: "Chat statistics, search and memories for SillyTavern logs",
		Description: `
  ___  _                      _
 / _ \| |__  ___ ___ ___ ___(_) ___  _ __
| | | | '_ \/ __/ _ / __/ __| |/ _ \| '_ \
| |_| | |_) \__ \  _\__ \__ \ | (_) | | | |
 \___/|_.__/|___\___|___/___/_|\___/|_| |_|

 How much have you said to them, and when.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log",
				Usage: "Log level: debug, info, warn, error",
				Value: "error",
			},
			&cli.StringFlag{
				Name:    "config",
				Usage:   "Settings file (defaults to the user config dir)",
				Sources: cli.EnvVars("OBS_CONFIG"),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			level, err := log.ParseLevel(cmd.String("log"))
			if err != nil {
				return ctx, err
			}
			log.SetLevel(level)
			return ctx, nil
		},
		Commands: []*cli.Command{
			statsCmd(),
			searchCmd(),
			chartCmd(),
			memoryCmd(),
			serveCmd(),
		},
	}

	if err := root.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
