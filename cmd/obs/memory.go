package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/sonnes/obsession/memory"
)

func memoryCmd() *cli.Command {
	return &cli.Command{
		Name:    "memory",
		Aliases: []string{"mem"},
		Usage:   "Collect and browse memorable lines per character",
		Commands: []*cli.Command{
			memoryAddCmd(),
			memoryListCmd(),
			memoryTitleCmd(),
			memoryRemoveCmd(),
			memoryExportCmd(),
		},
	}
}

// memoryFlags are shared by every memory subcommand. The key is the
// character's avatar file name, or its name when it has none.
func memoryFlags(extra ...cli.Flag) []cli.Flag {
	return append([]cli.Flag{
		&cli.StringFlag{
			Name:     "character",
			Aliases:  []string{"c"},
			Usage:    "Character key (avatar file name or character name)",
			Required: true,
		},
		&cli.StringFlag{
			Name:    "memory-file",
			Usage:   "Memory store path",
			Sources: cli.EnvVars("OBS_MEMORY_FILE"),
		},
	}, extra...)
}

// withStore loads the store, runs fn and writes the store back when fn
// reports a change.
func withStore(cmd *cli.Command, fn func(a *app, s *memory.Store, key string) (bool, error)) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	path := a.memoryFile()

	s, err := memory.ReadFile(path)
	if err != nil {
		return err
	}
	changed, err := fn(a, s, cmd.String("character"))
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	log.Debug("write memory store", "path", path)
	return s.WriteFile(path)
}

func memoryAddCmd() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Collect a line (reads stdin when no text is given)",
		ArgsUsage: "[text]",
		Flags: memoryFlags(
			&cli.StringFlag{
				Name:  "date",
				Usage: "Date label (defaults to now)",
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			text := strings.Join(cmd.Args().Slice(), " ")
			if text == "" {
				data, err := io.ReadAll(os.Stdin)
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				text = strings.TrimRight(string(data), "\n")
			}

			return withStore(cmd, func(a *app, s *memory.Store, key string) (bool, error) {
				m, err := s.Add(key, text, cmd.String("date"))
				if err != nil {
					return false, err
				}
				fmt.Println(m.ID)
				return true, nil
			})
		},
	}
}

func memoryListCmd() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List collected lines, newest first",
		Flags: memoryFlags(append([]cli.Flag{
			&cli.StringFlag{
				Name:    "query",
				Aliases: []string{"q"},
				Usage:   "Only show memories matching the query",
			},
			&cli.BoolFlag{
				Name:  "fuzzy",
				Usage: "Match the query fuzzily, best match first",
			},
		}, outputFlags()...)...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withStore(cmd, func(a *app, s *memory.Store, key string) (bool, error) {
				rnd, err := a.renderer(cmd.String("o"))
				if err != nil {
					return false, err
				}

				list := s.List(key, memory.FallbackKey(key))
				list = memory.Filter(list, cmd.String("query"), cmd.Bool("fuzzy"))

				w, closeOut, err := openOutput(cmd)
				if err != nil {
					return false, err
				}
				if err := rnd.RenderMemories(w, key, list); err != nil {
					closeOut()
					return false, fmt.Errorf("render: %w", err)
				}
				return false, closeOut()
			})
		},
	}
}

func memoryTitleCmd() *cli.Command {
	return &cli.Command{
		Name:      "title",
		Usage:     "Set the title of a memory (an empty title clears it)",
		ArgsUsage: "[title]",
		Flags: memoryFlags(
			&cli.StringFlag{
				Name:     "id",
				Usage:    "Memory ID",
				Required: true,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			title := strings.Join(cmd.Args().Slice(), " ")
			return withStore(cmd, func(a *app, s *memory.Store, key string) (bool, error) {
				return true, s.SetTitle(key, cmd.String("id"), title)
			})
		},
	}
}

func memoryRemoveCmd() *cli.Command {
	return &cli.Command{
		Name:    "rm",
		Aliases: []string{"remove"},
		Usage:   "Delete a memory",
		Flags: memoryFlags(
			&cli.StringFlag{
				Name:     "id",
				Usage:    "Memory ID",
				Required: true,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withStore(cmd, func(a *app, s *memory.Store, key string) (bool, error) {
				return true, s.Remove(key, cmd.String("id"))
			})
		},
	}
}

func memoryExportCmd() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Write the memories of a character to a zip archive",
		Flags: memoryFlags(
			&cli.StringFlag{
				Name:  "out",
				Usage: "Archive path (defaults to <character>_memories.zip)",
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withStore(cmd, func(a *app, s *memory.Store, key string) (bool, error) {
				list := s.List(key, memory.FallbackKey(key))
				if len(list) == 0 {
					return false, fmt.Errorf("no memories for %q", key)
				}

				path := cmd.String("out")
				if path == "" {
					path = memory.ExportFilename(key)
				}
				f, err := os.Create(path)
				if err != nil {
					return false, fmt.Errorf("create archive: %w", err)
				}
				if err := memory.Export(f, list); err != nil {
					f.Close()
					return false, err
				}
				if err := f.Close(); err != nil {
					return false, err
				}
				log.Info("exported memories", "path", path, "count", len(list))
				return false, nil
			})
		},
	}
}
