package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/sonnes/obsession/search"
)

func searchCmd() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Find messages containing a phrase",
		ArgsUsage: "<query>",
		Flags:     append(chatFlags(), outputFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			query := strings.Join(cmd.Args().Slice(), " ")
			if strings.TrimSpace(query) == "" {
				return fmt.Errorf("a search query is required")
			}

			a, err := loadApp(cmd)
			if err != nil {
				return err
			}

			chats, err := loadChats(a, cmd)
			if err != nil {
				return err
			}

			rnd, err := a.renderer(cmd.String("o"))
			if err != nil {
				return err
			}

			w, closeOut, err := openOutput(cmd)
			if err != nil {
				return err
			}

			for _, c := range chats {
				hits := search.Messages(c.Messages, query)
				if err := rnd.RenderSearch(w, query, hits); err != nil {
					closeOut()
					return fmt.Errorf("render: %w", err)
				}
			}

			return closeOut()
		},
	}
}
