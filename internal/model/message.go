package model

import "time"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a chat. It is embedded in Chat.Messages and never
// edited after it has been appended.
type Message struct {
	Role        string `json:"role"`
	Content     string `json:"content"`
	Timestamp   int64  `json:"timestamp"`
	IsImage     bool   `json:"isImage"`
	IsPublished bool   `json:"isPublished"`
}

func NewUserMessage(prompt string, at time.Time) Message {
	return Message{
		Role:      RoleUser,
		Content:   prompt,
		Timestamp: at.UnixMilli(),
	}
}

func NewAssistantText(content string, at time.Time) Message {
	return Message{
		Role:      RoleAssistant,
		Content:   content,
		Timestamp: at.UnixMilli(),
	}
}

func NewAssistantImage(url string, published bool, at time.Time) Message {
	return Message{
		Role:        RoleAssistant,
		Content:     url,
		Timestamp:   at.UnixMilli(),
		IsImage:     true,
		IsPublished: published,
	}
}

// Published reports whether the message belongs in the public gallery.
func (m Message) Published() bool {
	return m.IsImage && m.IsPublished
}
