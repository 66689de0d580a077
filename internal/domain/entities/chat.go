package entities

import "time"

// ChatSender identifies who wrote a chat message
type ChatSender string

const (
	ChatSenderUser     ChatSender = "user"
	ChatSenderHospital ChatSender = "hospital"
)

// ChatMessage is a message exchanged on the response view. Messages live only
// in the response session.
type ChatMessage struct {
	Text      string     `json:"text"`
	Sender    ChatSender `json:"sender"`
	Timestamp time.Time  `json:"timestamp"`
}
