package chat

import "time"

// Session is one continuous conversation persisted as a unit.
type Session struct {
	ID        string    `json:"id"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"createdAt"`
}

// FirstUserMessage returns the opening user turn, or the first message when
// the user never spoke.
func (s Session) FirstUserMessage() (Message, bool) {
	for _, msg := range s.Messages {
		if msg.Sender == SenderUser {
			return msg, true
		}
	}
	if len(s.Messages) == 0 {
		return Message{}, false
	}
	return s.Messages[0], true
}
