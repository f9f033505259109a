// Package reader defines the interface for loading host-app chat logs into
// the core chat model.
package reader

import (
	"errors"

	"github.com/sonnes/obsession/core"
)

// ErrNoMessages is returned for chat files that contain no messages.
var ErrNoMessages = errors.New("no messages found in chat")

// Reader loads chats from a host app's storage.
type Reader interface {
	// ReadFile parses a single chat file at the given path.
	ReadFile(path string) (*core.Chat, error)

	// ReadChat locates and parses one chat of a character by its name.
	ReadChat(character, name string) (*core.Chat, error)

	// ReadCharacter returns every chat stored for a character.
	ReadCharacter(character string) ([]*core.Chat, error)

	// Characters lists the characters that have stored chats.
	Characters() ([]string, error)

	// ReadAll returns every stored chat.
	ReadAll() ([]*core.Chat, error)
}
