package storage

import (
	"context"
	"time"
)

// Виды локальных публикаций
const (
	PostKindJob               = "job"
	PostKindRoom              = "room"
	PostKindCommunity         = "community"
	PostKindEventRegistration = "event_registration"
)

// Post is a listing or registration created on this device.
// Fields keeps the submitted form values keyed by form field name.
type Post struct {
	CreatedAt time.Time         `json:"created_at"`
	Fields    map[string]string `json:"fields"`
	ID        string            `json:"id"`
	Kind      string            `json:"kind"`
}

// Отправитель сообщения в переписке
const (
	SenderMe    = "me"
	SenderOther = "other"
)

// Message is one line of a local chat transcript
type Message struct {
	SentAt    time.Time `json:"sent_at"`
	ID        string    `json:"id"`
	PartnerID string    `json:"partner_id"`
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
}

// PostStorage stores user-created posts
type PostStorage interface {
	// SavePost stores a post, replacing one with the same ID
	SavePost(ctx context.Context, post *Post) error

	// ListPosts returns posts of the given kind, newest first
	// Returns empty slice if none found
	ListPosts(ctx context.Context, kind string) ([]*Post, error)
}

// MessageStorage stores chat transcripts per partner
type MessageStorage interface {
	// AppendMessage adds a message to the partner's transcript
	AppendMessage(ctx context.Context, msg *Message) error

	// ListMessages returns the partner's transcript in sending order
	// Returns empty slice if none found
	ListMessages(ctx context.Context, partnerID string) ([]*Message, error)
}
