package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/sonnes/obsession/chart"
	"github.com/sonnes/obsession/render"
	"github.com/sonnes/obsession/stats"
)

func chartCmd() *cli.Command {
	return &cli.Command{
		Name:  "chart",
		Usage: "Draw the hourly or daily activity chart",
		Flags: append(chatFlags(),
			&cli.StringFlag{
				Name:  "kind",
				Usage: "Chart to draw: hours, trend",
				Value: "hours",
			},
			&cli.FloatFlag{
				Name:  "height",
				Usage: "Viewbox height",
				Value: render.ChartHeight,
			},
			&cli.StringFlag{
				Name:  "o",
				Usage: "Output format: svg, json",
				Value: "svg",
			},
			&cli.StringFlag{
				Name:  "out",
				Usage: "Write output to a file instead of stdout",
			},
		),
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

			w, closeOut, err := openOutput(cmd)
			if err != nil {
				return err
			}

			for _, c := range chats {
				g, color, err := chartFor(agg.AggregateChat(c), a, cmd.String("kind"), cmd.Float("height"))
				if err != nil {
					closeOut()
					return err
				}
				if err := writeChart(w, g, color, cmd.String("o")); err != nil {
					closeOut()
					return err
				}
			}

			return closeOut()
		},
	}
}

// chartFor picks one of the report charts and the color it is drawn in.
func chartFor(s *stats.Stats, a *app, kind string, height float64) (chart.Geometry, string, error) {
	if height <= 0 {
		return chart.Geometry{}, "", fmt.Errorf("--height must be positive")
	}
	charts := render.BuildCharts(s, height)
	switch kind {
	case "hours":
		return charts.Hours, a.cfg.Colors.User, nil
	case "trend":
		return charts.Trend, a.cfg.Colors.Char, nil
	default:
		return chart.Geometry{}, "", fmt.Errorf("unknown chart %q", kind)
	}
}

func writeChart(w io.Writer, g chart.Geometry, color, format string) error {
	switch format {
	case "svg":
		svg := chart.SVG(g, color)
		if svg == "" {
			_, err := fmt.Fprintln(w, "<!-- no data -->")
			return err
		}
		_, err := fmt.Fprintln(w, svg)
		return err
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(g); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
