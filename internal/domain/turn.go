package domain

import "time"

// Speaker identifies who authored a turn.
type Speaker string

const (
	SpeakerUser      Speaker = "user"
	SpeakerAssistant Speaker = "assistant"
)

// Valid reports whether s is one of the known speakers.
func (s Speaker) Valid() bool {
	return s == SpeakerUser || s == SpeakerAssistant
}

// Attachment is an encoded binary payload carried by a turn. Data holds the
// base64 transport encoding of the raw bytes, without any data-URL header.
type Attachment struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

// Turn is a single entry in the conversation log.
type Turn struct {
	ID         string      `json:"id"`
	Speaker    Speaker     `json:"speaker"`
	Text       string      `json:"text"`
	Attachment *Attachment `json:"attachment,omitempty"`
	CreatedAt  time.Time   `json:"createdAt"`
}

// HasAttachment reports whether the turn carries an attachment.
func (t Turn) HasAttachment() bool {
	return t.Attachment != nil
}
