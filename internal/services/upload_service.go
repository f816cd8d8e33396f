package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"carebridge-chat/internal/domain/chat"
	"carebridge-chat/internal/storage"
	carebridge_errors "carebridge-chat/pkg/errors"

	"github.com/google/uuid"
)

type UploadInput struct {
	FileName    string
	ContentType string
	SizeBytes   int64
	Body        io.Reader
}

// Uploader stores a file and returns the attachment descriptor to carry on a
// message. Callers must treat a failed upload as fatal for the send: no
// message row is created without its attachment.
type Uploader interface {
	Store(ctx context.Context, uploaderID uuid.UUID, in UploadInput) (chat.Attachment, error)
}

type UploadService struct {
	storage  *storage.Client
	maxBytes int64
}

func NewUploadService(storageClient *storage.Client, maxBytes int64) *UploadService {
	return &UploadService{storage: storageClient, maxBytes: maxBytes}
}

func (s *UploadService) Store(ctx context.Context, uploaderID uuid.UUID, in UploadInput) (chat.Attachment, error) {
	if uploaderID == uuid.Nil {
		return chat.Attachment{}, carebridge_errors.ErrNotAuthenticated
	}
	if in.FileName == "" || in.SizeBytes <= 0 || in.Body == nil {
		return chat.Attachment{}, carebridge_errors.ErrInvalidInput
	}
	if err := storage.ValidateContentType(in.ContentType); err != nil {
		return chat.Attachment{}, fmt.Errorf("%w: %s", carebridge_errors.ErrInvalidInput, err)
	}
	if s.maxBytes > 0 && in.SizeBytes > s.maxBytes {
		return chat.Attachment{}, carebridge_errors.ErrTooLarge
	}
	if s.storage == nil {
		return chat.Attachment{}, fmt.Errorf("%w: object storage is not configured", carebridge_errors.ErrNotUploaded)
	}

	key := buildObjectKey(uploaderID, in.FileName)
	url, err := s.storage.Put(ctx, key, in.ContentType, in.SizeBytes, in.Body)
	if err != nil {
		return chat.Attachment{}, fmt.Errorf("%w: %s", carebridge_errors.ErrNotUploaded, err)
	}

	return chat.Attachment{
		URL:         url,
		ContentType: in.ContentType,
		SizeBytes:   in.SizeBytes,
		DisplayName: in.FileName,
	}, nil
}

func buildObjectKey(uploaderID uuid.UUID, fileName string) string {
	ext := strings.ToLower(path.Ext(fileName))
	return "attachments/" + uploaderID.String() + "/" + uuid.New().String() + ext
}
