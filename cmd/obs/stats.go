package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
)

func statsCmd() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Report message counts, activity and frequent terms",
		Flags: append(chatFlags(), outputFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}

			chats, err := loadChats(a, cmd)
			if err != nil {
				return err
			}

			agg, err := a.aggregator()
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
				s := agg.AggregateChat(c)
				if s.Unparsed > 0 {
					log.Warn("unreadable send dates", "chat", chatLabel(c), "messages", s.Unparsed)
				}
				if err := rnd.Render(w, s); err != nil {
					closeOut()
					return fmt.Errorf("render: %w", err)
				}
			}

			return closeOut()
		},
	}
}
