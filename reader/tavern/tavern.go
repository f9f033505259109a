// Package tavern reads SillyTavern chat logs (JSONL in
// data/<user>/chats/<character>/).
package tavern

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sonnes/obsession/core"
	"github.com/sonnes/obsession/reader"
)

// Reader reads SillyTavern JSONL chat files.
type Reader struct {
	// Dir overrides the default chats directory
	// (~/SillyTavern/data/default-user/chats/).
	Dir string
}

// maxLineSize is the maximum JSONL line size (4 MB). Longer lines, usually
// messages carrying inline images, are skipped like undecodable ones.
const maxLineSize = 4 << 20

const chatExt = ".jsonl"

// Raw JSON deserialization types. These mirror the JSONL structure on disk.

// rawLine holds the union of header and message fields; the header is the
// line that carries user_name/character_name and no mes.
type rawLine struct {
	UserName      string          `json:"user_name"`
	CharacterName string          `json:"character_name"`
	CreateDate    json.RawMessage `json:"create_date"`

	Name     string          `json:"name"`
	IsUser   bool            `json:"is_user"`
	IsSystem bool            `json:"is_system"`
	SendDate json.RawMessage `json:"send_date"`
	Date     json.RawMessage `json:"date"`
	Mes      *string         `json:"mes"`
	Extra    map[string]any  `json:"extra"`
	Swipes   []string        `json:"swipes"`
}

func (l *rawLine) isHeader() bool {
	return l.Mes == nil && (l.UserName != "" || l.CharacterName != "")
}

// ReadFile parses a single SillyTavern chat file.
func (r *Reader) ReadFile(path string) (*core.Chat, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open chat file: %w", err)
	}
	defer f.Close()

	c, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	c.File = path
	return c, nil
}

// ReadChat parses the chat named name (with or without the .jsonl
// extension) of a character.
func (r *Reader) ReadChat(character, name string) (*core.Chat, error) {
	name = strings.TrimSuffix(name, chatExt)
	path := filepath.Join(r.dir(), character, name+chatExt)
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("chat %q of %q not found", name, character)
	}
	return r.ReadFile(path)
}

// ReadCharacter returns all chats of a character in file-name order.
// Unreadable files are skipped.
func (r *Reader) ReadCharacter(character string) ([]*core.Chat, error) {
	charDir := filepath.Join(r.dir(), character)

	dirEntries, err := os.ReadDir(charDir)
	if err != nil {
		return nil, fmt.Errorf("read character directory: %w", err)
	}

	var chats []*core.Chat
	for _, de := range dirEntries {
		if de.IsDir() || !strings.HasSuffix(de.Name(), chatExt) {
			continue
		}
		c, err := r.ReadFile(filepath.Join(charDir, de.Name()))
		if err != nil {
			continue
		}
		chats = append(chats, c)
	}

	return chats, nil
}

// Characters lists character directories, sorted by name.
func (r *Reader) Characters() ([]string, error) {
	entries, err := os.ReadDir(r.dir())
	if err != nil {
		return nil, fmt.Errorf("read chats directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// ReadAll returns every chat across all characters.
func (r *Reader) ReadAll() ([]*core.Chat, error) {
	names, err := r.Characters()
	if err != nil {
		return nil, err
	}

	var all []*core.Chat
	for _, name := range names {
		chats, err := r.ReadCharacter(name)
		if err != nil {
			continue
		}
		all = append(all, chats...)
	}

	return all, nil
}

func (r *Reader) dir() string {
	if r.Dir != "" {
		return r.Dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, "SillyTavern", "data", "default-user", "chats")
}

// Parse reads a chat from JSONL. Lines that fail to decode or exceed
// maxLineSize are skipped. When the header is missing, participant names are
// taken from the first user and non-user messages.
func Parse(r io.Reader) (*core.Chat, error) {
	br := bufio.NewReaderSize(r, 64*1024)

	c := &core.Chat{}
	var buf []byte
	for {
		line, skip, err := nextLine(br, buf)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		buf = line[:0]
		if skip || len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		var raw rawLine
		if err := json.Unmarshal(line, &raw); err != nil {
			continue
		}
		if raw.isHeader() {
			c.UserName = raw.UserName
			c.CharacterName = raw.CharacterName
			c.CreateDate = dateText(raw.CreateDate)
			continue
		}
		if raw.Mes == nil {
			continue
		}
		sendDate := dateText(raw.SendDate)
		if sendDate == "" {
			sendDate = dateText(raw.Date)
		}
		c.Messages = append(c.Messages, core.Message{
			Name:     raw.Name,
			IsUser:   raw.IsUser,
			IsSystem: raw.IsSystem,
			SendDate: sendDate,
			Text:     *raw.Mes,
			Extra:    raw.Extra,
			Swipes:   raw.Swipes,
		})
	}
	if len(c.Messages) == 0 {
		return nil, reader.ErrNoMessages
	}

	inferNames(c)
	return c, nil
}

// nextLine reads one line into buf, without its line ending. A line longer
// than maxLineSize is consumed to its end and reported with skip set. io.EOF
// is returned only once no bytes remain.
func nextLine(br *bufio.Reader, buf []byte) (line []byte, skip bool, err error) {
	buf = buf[:0]
	for {
		chunk, err := br.ReadSlice('\n')
		if !skip {
			if len(buf)+len(chunk) > maxLineSize+2 {
				skip = true
				buf = buf[:0]
			} else {
				buf = append(buf, chunk...)
			}
		}

		switch {
		case err == bufio.ErrBufferFull:
			continue
		case err == io.EOF:
			if len(buf) == 0 && !skip {
				return nil, false, io.EOF
			}
		case err != nil:
			return nil, false, err
		}
		return bytes.TrimRight(buf, "\r\n"), skip, nil
	}
}

// inferNames fills missing participant names from message authors.
func inferNames(c *core.Chat) {
	for _, m := range c.Messages {
		if c.UserName != "" && c.CharacterName != "" {
			return
		}
		if m.Name == "" || m.IsSystem {
			continue
		}
		if m.IsUser && c.UserName == "" {
			c.UserName = m.Name
		}
		if !m.IsUser && c.CharacterName == "" {
			c.CharacterName = m.Name
		}
	}
}

// dateText returns a date field as text. Older chats store epoch
// milliseconds; those are converted to RFC 3339 in UTC.
func dateText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var ms float64
	if err := json.Unmarshal(raw, &ms); err == nil && ms > 0 {
		return time.UnixMilli(int64(ms)).UTC().Format(time.RFC3339)
	}
	return ""
}
