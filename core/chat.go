// Package core defines the chat model shared by readers, analysers and
// renderers. A Chat is a SillyTavern conversation between one user persona
// and one character.
package core

import (
	"maps"
	"slices"
)

// Chat is a single conversation log.
type Chat struct {
	File          string    `json:"file,omitempty"` // source path, empty for merged chats
	UserName      string    `json:"user_name"`
	CharacterName string    `json:"character_name"`
	CreateDate    string    `json:"create_date,omitempty"`
	Messages      []Message `json:"messages"`
}

// Message is one entry of a chat log.
type Message struct {
	Name     string `json:"name"`
	IsUser   bool   `json:"is_user"`
	IsSystem bool   `json:"is_system,omitempty"`
	// SendDate is kept as written by the host app. Its format depends on the
	// user's locale and is not guaranteed to parse.
	SendDate string         `json:"send_date,omitempty"`
	Text     string         `json:"mes"`
	Extra    map[string]any `json:"extra,omitempty"`
	Swipes   []string       `json:"swipes,omitempty"`
}

// Merge concatenates the messages of chats into a new Chat attributed to the
// given participants. Swipes and the top level of Extra are copied, so
// transformers applied to the result do not modify the input chats.
func Merge(userName, charName string, chats ...*Chat) *Chat {
	n := 0
	for _, c := range chats {
		n += len(c.Messages)
	}
	out := &Chat{
		UserName:      userName,
		CharacterName: charName,
		Messages:      make([]Message, 0, n),
	}
	for _, c := range chats {
		for _, m := range c.Messages {
			m.Swipes = slices.Clone(m.Swipes)
			m.Extra = maps.Clone(m.Extra)
			out.Messages = append(out.Messages, m)
		}
		if out.CreateDate == "" {
			out.CreateDate = c.CreateDate
		}
	}
	return out
}
