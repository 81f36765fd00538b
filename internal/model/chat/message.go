package chat

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Sender identifies who authored a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

// Message is one immutable turn of a conversation.
type Message struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Sender    Sender    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage stamps text with a time-ordered id.
func NewMessage(sender Sender, text string, now time.Time) Message {
	return Message{
		ID:        NewID(),
		Text:      text,
		Sender:    sender,
		Timestamp: now,
	}
}

// Welcome synthesizes the greeting that opens every fresh view.
func Welcome(name string, now time.Time) Message {
	greeting := "Hello!"
	if name != "" {
		greeting = fmt.Sprintf("Hello %s!", name)
	}
	return NewMessage(SenderAI, greeting+" 👋 I'm FinAlyzer Support AI. How can I help you today?", now)
}

// NewID returns a UUIDv7 string, falling back to v4 if the clock source fails.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
