// Package config loads the optional YAML settings file shared by the CLI
// and the web server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Default chart colors.
const (
	DefaultUserColor = "#90caf9"
	DefaultCharColor = "#ff6b6b"
)

var hexColorRE = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Colors are the chart colors of each side of a chat.
type Colors struct {
	User string `yaml:"user"`
	Char string `yaml:"char"`
}

// Config is the settings file. Every field is optional.
type Config struct {
	DataDir    string   `yaml:"data_dir"`    // SillyTavern chats directory
	MemoryFile string   `yaml:"memory_file"` // memory store JSON
	Timezone   string   `yaml:"timezone"`    // IANA name, e.g. Asia/Shanghai
	StopWords  []string `yaml:"stop_words"`
	Colors     Colors   `yaml:"colors"`
	TopTerms   int      `yaml:"top_terms"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Colors: Colors{User: DefaultUserColor, Char: DefaultCharColor},
	}
}

// DefaultPath is $XDG_CONFIG_HOME/obsession/config.yaml, or the platform
// equivalent.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "obsession", "config.yaml")
}

// LoadFromFile reads and validates a settings file. Values missing from the
// file keep their defaults.
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	c := Default()
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(filename), err)
	}
	if c.Colors.User == "" {
		c.Colors.User = DefaultUserColor
	}
	if c.Colors.Char == "" {
		c.Colors.Char = DefaultCharColor
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Load reads filename when it exists and falls back to Default otherwise.
// An empty filename means DefaultPath.
func Load(filename string) (*Config, error) {
	if filename == "" {
		filename = DefaultPath()
	}
	if filename == "" {
		return Default(), nil
	}
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return Default(), nil
	}
	return LoadFromFile(filename)
}

// Validate checks the settings for values the tools cannot use.
func (c *Config) Validate() error {
	if c.Timezone != "" {
		if _, err := time.LoadLocation(c.Timezone); err != nil {
			return fmt.Errorf("timezone %q: %w", c.Timezone, err)
		}
	}
	if !hexColorRE.MatchString(c.Colors.User) {
		return fmt.Errorf("colors.user must be a hex color, got %q", c.Colors.User)
	}
	if !hexColorRE.MatchString(c.Colors.Char) {
		return fmt.Errorf("colors.char must be a hex color, got %q", c.Colors.Char)
	}
	if c.TopTerms < 0 {
		return fmt.Errorf("top_terms must be >= 0, got %d", c.TopTerms)
	}
	for i, w := range c.StopWords {
		if strings.TrimSpace(w) == "" {
			return fmt.Errorf("stop_words[%d] is empty", i)
		}
	}
	return nil
}

// Location resolves Timezone. An empty Timezone means time.Local.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}
