package httpdto

import (
	"time"

	"carebridge-chat/internal/domain/chat"
)

// SendMessageRequest is the JSON body of a send. Attachments ride along one
// of two ways: a multipart send with this structure in the "message" form
// field and the file in the "file" part, or a plain JSON send carrying the
// descriptor a prior POST /uploads returned.
type SendMessageRequest struct {
	RecipientID string          `json:"recipient_id,omitempty"`
	GroupID     string          `json:"group_id,omitempty"`
	Body        string          `json:"body,omitempty"`
	ReplyToID   string          `json:"reply_to_id,omitempty"`
	Attachment  *AttachmentView `json:"attachment,omitempty"`
}

type MessageView struct {
	ID          string          `json:"id"`
	SenderID    string          `json:"sender_id"`
	RecipientID string          `json:"recipient_id,omitempty"`
	GroupID     string          `json:"group_id,omitempty"`
	Body        string          `json:"body,omitempty"`
	ReplyToID   string          `json:"reply_to_id,omitempty"`
	Attachment  *AttachmentView `json:"attachment,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

type AttachmentView struct {
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	SizeBytes   int64  `json:"size_bytes"`
	DisplayName string `json:"display_name"`
}

func NewMessageView(m chat.Message) MessageView {
	v := MessageView{
		ID:        m.ID.String(),
		SenderID:  m.SenderID.String(),
		CreatedAt: m.CreatedAt,
	}
	if m.RecipientID.Valid {
		v.RecipientID = m.RecipientID.UUID.String()
	}
	if m.GroupID.Valid {
		v.GroupID = m.GroupID.UUID.String()
	}
	if m.Body.Valid {
		v.Body = m.Body.String
	}
	if m.ReplyToID.Valid {
		v.ReplyToID = m.ReplyToID.UUID.String()
	}
	if m.AttachmentURL.Valid {
		v.Attachment = &AttachmentView{
			URL:         m.AttachmentURL.String,
			ContentType: m.AttachmentMime.String,
			SizeBytes:   m.AttachmentSize.Int64,
			DisplayName: m.AttachmentName.String,
		}
	}
	return v
}

func NewMessageViews(messages []chat.Message) []MessageView {
	views := make([]MessageView, 0, len(messages))
	for _, m := range messages {
		views = append(views, NewMessageView(m))
	}
	return views
}
