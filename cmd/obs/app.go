package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/sonnes/obsession/compact"
	"github.com/sonnes/obsession/config"
	"github.com/sonnes/obsession/core"
	"github.com/sonnes/obsession/reader"
	"github.com/sonnes/obsession/reader/tavern"
	"github.com/sonnes/obsession/redact"
	"github.com/sonnes/obsession/render"
	htmlrender "github.com/sonnes/obsession/render/html"
	jsonrender "github.com/sonnes/obsession/render/json"
	"github.com/sonnes/obsession/render/terminal"
	"github.com/sonnes/obsession/stats"
)

// app holds the loaded settings and the renderer registry used by CLI
// commands.
type app struct {
	cfg       *config.Config
	renderers map[string]func() render.Renderer
}

func newApp(cfg *config.Config) *app {
	return &app{
		cfg: cfg,
		renderers: map[string]func() render.Renderer{
			"terminal": func() render.Renderer { return terminal.New() },
			"html": func() render.Renderer {
				h := htmlrender.New()
				h.UserColor = cfg.Colors.User
				h.CharColor = cfg.Colors.Char
				return h
			},
			"json": func() render.Renderer { return &jsonrender.Renderer{Indent: true} },
		},
	}
}

// loadApp reads the settings named by --config and applies the --data-dir,
// --memory-file and --tz overrides.
func loadApp(cmd *cli.Command) (*app, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if v := flagString(cmd, "data-dir"); v != "" {
		cfg.DataDir = v
	}
	if v := flagString(cmd, "memory-file"); v != "" {
		cfg.MemoryFile = v
	}
	if v := flagString(cmd, "tz"); v != "" {
		cfg.Timezone = v
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return newApp(cfg), nil
}

// flagString returns the value of a string flag when the command defines it.
func flagString(cmd *cli.Command, name string) string {
	for _, f := range cmd.Flags {
		for _, n := range f.Names() {
			if n == name {
				return cmd.String(name)
			}
		}
	}
	return ""
}

func (a *app) reader() reader.Reader {
	return &tavern.Reader{Dir: a.cfg.DataDir}
}

func (a *app) renderer(name string) (render.Renderer, error) {
	fn, ok := a.renderers[name]
	if !ok {
		return nil, fmt.Errorf("unknown output format %q", name)
	}
	return fn(), nil
}

func (a *app) aggregator() (*stats.Aggregator, error) {
	loc, err := a.cfg.Location()
	if err != nil {
		return nil, err
	}
	return stats.New(stats.Config{
		Location:       loc,
		ExtraStopWords: a.cfg.StopWords,
		TopN:           a.cfg.TopTerms,
	}), nil
}

// memoryFile is the configured store path, or memories.json next to the
// default settings file.
func (a *app) memoryFile() string {
	if a.cfg.MemoryFile != "" {
		return a.cfg.MemoryFile
	}
	if p := config.DefaultPath(); p != "" {
		return filepath.Join(filepath.Dir(p), "memories.json")
	}
	return "memories.json"
}

// chatFlags select chats and the transformers applied to them.
func chatFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "data-dir",
			Usage:   "SillyTavern chats directory",
			Sources: cli.EnvVars("OBS_DATA_DIR"),
		},
		&cli.StringFlag{
			Name:  "file",
			Usage: "Path to a chat file",
		},
		&cli.StringFlag{
			Name:    "character",
			Aliases: []string{"c"},
			Usage:   "Character name (reads all of its chats)",
		},
		&cli.StringFlag{
			Name:  "chat",
			Usage: "Chat name within --character",
		},
		&cli.BoolFlag{
			Name:  "all",
			Usage: "Read every chat of every character",
		},
		&cli.BoolFlag{
			Name:  "merge",
			Usage: "Merge the selected chats of each character into one report",
		},
		&cli.StringFlag{
			Name:    "tz",
			Usage:   "IANA timezone used to bucket hours and days",
			Sources: cli.EnvVars("OBS_TZ"),
		},
		&cli.BoolFlag{
			Name:  "no-redact",
			Usage: "Disable redaction of secrets and PII",
		},
		&cli.StringFlag{
			Name:  "redact",
			Usage: "Rules to redact. Example: --redact=secrets,pii",
			Value: "secrets,pii",
		},
		&cli.BoolFlag{
			Name:  "compact",
			Usage: "Drop alternate swipes and inline images, strip reasoning",
		},
		&cli.BoolFlag{
			Name:  "drop-system",
			Usage: "Leave system messages out",
		},
	}
}

// readChats dispatches to the appropriate Reader method based on CLI flags.
// Exactly one of --file, --character or --all must be set; --chat narrows
// --character to a single chat.
func readChats(r reader.Reader, cmd *cli.Command) ([]*core.Chat, error) {
	file := cmd.String("file")
	character := cmd.String("character")
	chat := cmd.String("chat")
	all := cmd.Bool("all")

	n := 0
	if file != "" {
		n++
	}
	if character != "" {
		n++
	}
	if all {
		n++
	}

	if n == 0 {
		return nil, fmt.Errorf("one of --file, --character, or --all is required")
	}
	if n > 1 {
		return nil, fmt.Errorf("only one of --file, --character, or --all may be specified")
	}
	if chat != "" && character == "" {
		return nil, fmt.Errorf("--chat requires --character")
	}

	switch {
	case file != "":
		c, err := r.ReadFile(file)
		if err != nil {
			return nil, err
		}
		return []*core.Chat{c}, nil
	case chat != "":
		c, err := r.ReadChat(character, chat)
		if err != nil {
			return nil, err
		}
		return []*core.Chat{c}, nil
	case character != "":
		chats, err := r.ReadCharacter(character)
		if err != nil {
			return nil, err
		}
		if len(chats) == 0 {
			return nil, fmt.Errorf("no readable chats for %q", character)
		}
		return chats, nil
	default:
		return r.ReadAll()
	}
}

// newRedactor builds a Redactor from CLI flags. Returns nil when --no-redact
// is set.
func newRedactor(cmd *cli.Command) (*redact.Redactor, error) {
	if cmd.Bool("no-redact") {
		return nil, nil
	}
	cfg, err := redact.ParseKinds(cmd.String("redact"))
	if err != nil {
		return nil, err
	}
	return redact.New(cfg), nil
}

// transformers returns the redactor and compactor selected by CLI flags, in
// the order they run.
func transformers(cmd *cli.Command) ([]core.Transformer, error) {
	var out []core.Transformer

	redactor, err := newRedactor(cmd)
	if err != nil {
		return nil, err
	}
	if redactor != nil {
		out = append(out, redactor)
	}

	if cmd.Bool("compact") || cmd.Bool("drop-system") {
		out = append(out, compact.New(compact.Config{
			DropSystem:     cmd.Bool("drop-system"),
			StripReasoning: cmd.Bool("compact"),
		}))
	}
	return out, nil
}

// loadChats reads the selected chats, merges them per character when
// --merge is set and applies the transformers.
func loadChats(a *app, cmd *cli.Command) ([]*core.Chat, error) {
	chats, err := readChats(a.reader(), cmd)
	if err != nil {
		return nil, err
	}
	if cmd.Bool("merge") {
		chats = mergeByCharacter(chats)
	}

	trs, err := transformers(cmd)
	if err != nil {
		return nil, err
	}
	for _, c := range chats {
		if err := core.Chain(c, trs...); err != nil {
			return nil, fmt.Errorf("transform %s: %w", chatLabel(c), err)
		}
	}
	log.Debug("loaded chats", "count", len(chats))
	return chats, nil
}

// mergeByCharacter merges chats sharing a character name, keeping the order
// in which characters first appear.
func mergeByCharacter(chats []*core.Chat) []*core.Chat {
	var order []string
	groups := make(map[string][]*core.Chat)
	for _, c := range chats {
		if _, ok := groups[c.CharacterName]; !ok {
			order = append(order, c.CharacterName)
		}
		groups[c.CharacterName] = append(groups[c.CharacterName], c)
	}

	out := make([]*core.Chat, 0, len(order))
	for _, name := range order {
		g := groups[name]
		out = append(out, core.Merge(g[0].UserName, name, g...))
	}
	return out
}

func chatLabel(c *core.Chat) string {
	if c.File != "" {
		return filepath.Base(c.File)
	}
	if c.CharacterName != "" {
		return c.CharacterName
	}
	return "chat"
}

// openOutput returns the file named by --out, or stdout.
func openOutput(cmd *cli.Command) (*os.File, func() error, error) {
	path := cmd.String("out")
	if path == "" || path == "-" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output: %w", err)
	}
	return f, f.Close, nil
}

// outputFlags choose the renderer and destination.
func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "o",
			Usage: "Output format: terminal, html, json",
			Value: "terminal",
		},
		&cli.StringFlag{
			Name:  "out",
			Usage: "Write output to a file instead of stdout",
		},
	}
}
