package source

import (
	"strings"
	"time"
)

// DefaultSenderName is used when the chat user has no first name.
const DefaultSenderName = "Usuario"

// Message is one incoming private text message.
type Message struct {
	ChatID     int64
	MessageID  int
	SenderID   int64
	SenderName string
	Text       string
	Timestamp  time.Time
}

// Command returns the bot command ("start", "help") if the text is one, without the
// leading slash or a trailing "@botname".
func (m Message) Command() (string, bool) {
	text := strings.TrimSpace(m.Text)
	if !strings.HasPrefix(text, "/") {
		return "", false
	}
	cmd := strings.Fields(text[1:])
	if len(cmd) == 0 {
		return "", false
	}
	name, _, _ := strings.Cut(cmd[0], "@")
	return strings.ToLower(name), name != ""
}

// Sender returns the display name, falling back to DefaultSenderName.
func (m Message) Sender() string {
	if name := strings.TrimSpace(m.SenderName); name != "" {
		return name
	}
	return DefaultSenderName
}
