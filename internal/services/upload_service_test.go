package services

import (
	"context"
	"strings"
	"testing"

	carebridge_errors "carebridge-chat/pkg/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestUploadServiceValidation(t *testing.T) {
	svc := NewUploadService(nil, 1024)
	ctx := context.Background()
	uploader := uuid.New()

	valid := UploadInput{
		FileName:    "scan.pdf",
		ContentType: "application/pdf",
		SizeBytes:   512,
		Body:        strings.NewReader("pdfdata"),
	}

	_, err := svc.Store(ctx, uuid.Nil, valid)
	assert.ErrorIs(t, err, carebridge_errors.ErrNotAuthenticated)

	for name, mutate := range map[string]func(in *UploadInput){
		"missing file name":    func(in *UploadInput) { in.FileName = "" },
		"missing content type": func(in *UploadInput) { in.ContentType = "" },
		"zero size":            func(in *UploadInput) { in.SizeBytes = 0 },
		"nil body":             func(in *UploadInput) { in.Body = nil },
	} {
		in := valid
		mutate(&in)
		_, err := svc.Store(ctx, uploader, in)
		assert.ErrorIs(t, err, carebridge_errors.ErrInvalidInput, name)
	}

	// Content types outside the attachment allowlist are rejected.
	for _, ct := range []string{"application/x-msdownload", "text/html", "application/octet-stream"} {
		in := valid
		in.ContentType = ct
		_, err := svc.Store(ctx, uploader, in)
		assert.ErrorIs(t, err, carebridge_errors.ErrInvalidInput, ct)
	}

	oversize := valid
	oversize.SizeBytes = 2048
	_, err = svc.Store(ctx, uploader, oversize)
	assert.ErrorIs(t, err, carebridge_errors.ErrTooLarge)

	// Valid input against unconfigured storage surfaces as an upload failure.
	_, err = svc.Store(ctx, uploader, valid)
	assert.ErrorIs(t, err, carebridge_errors.ErrNotUploaded)
}
