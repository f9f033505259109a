package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/sonnes/obsession/server"
)

func serveCmd() *cli.Command {
	flags := []cli.Flag{
		&cli.IntFlag{
			Name:    "port",
			Usage:   "Port to listen on",
			Value:   8080,
			Sources: cli.EnvVars("OBS_PORT"),
		},
		&cli.StringFlag{
			Name:    "memory-file",
			Usage:   "Memory store path",
			Sources: cli.EnvVars("OBS_MEMORY_FILE"),
		},
	}
	for _, f := range chatFlags() {
		switch f.Names()[0] {
		case "data-dir", "tz", "no-redact", "redact", "compact", "drop-system":
			flags = append(flags, f)
		}
	}

	return &cli.Command{
		Name:  "serve",
		Usage: "Browse statistics, search chats and manage memories in a local web UI",
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}

			trs, err := transformers(cmd)
			if err != nil {
				return err
			}

			agg, err := a.aggregator()
			if err != nil {
				return err
			}

			srv := server.New(a.reader(), a.memoryFile())
			srv.Port = int(cmd.Int("port"))
			srv.Transformers = trs
			srv.Stats = agg
			srv.HTML.UserColor = a.cfg.Colors.User
			srv.HTML.CharColor = a.cfg.Colors.Char
			srv.Logger = log.Default().WithPrefix("http")

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			log.Info("memory store", "path", srv.MemoryFile)
			return srv.ListenAndServe(ctx)
		},
	}
}
