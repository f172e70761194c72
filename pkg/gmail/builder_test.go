package gmail

import (
	"bytes"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/breeze-mail/breeze/pkg/types"
)

func decodeRaw(t *testing.T, raw string) string {
	t.Helper()
	decoded, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		t.Fatalf("raw message is not valid base64url: %v", err)
	}
	return string(decoded)
}

func TestBuildRawMessage_PlainText(t *testing.T) {
	raw, err := BuildRawMessage(&OutgoingMessage{
		From:     "me@example.com",
		To:       []string{"you@example.com"},
		Subject:  "Hello",
		BodyText: "Just checking in.",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msg := decodeRaw(t, raw)
	if !strings.Contains(msg, "From: me@example.com\r\n") {
		t.Error("missing From header")
	}
	if !strings.Contains(msg, "To: you@example.com\r\n") {
		t.Error("missing To header")
	}
	if !strings.Contains(msg, "Subject: Hello\r\n") {
		t.Error("missing Subject header")
	}
	if !strings.Contains(msg, `Content-Type: text/plain; charset="UTF-8"`) {
		t.Error("missing text/plain content type")
	}
	// Body is base64 encoded
	encoded := base64.StdEncoding.EncodeToString([]byte("Just checking in."))
	if !strings.Contains(msg, encoded) {
		t.Error("missing encoded body")
	}
}

func TestBuildRawMessage_NoRecipients(t *testing.T) {
	_, err := BuildRawMessage(&OutgoingMessage{
		From:     "me@example.com",
		BodyText: "orphan",
	})
	var validationErr *types.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if validationErr.Field != "to" {
		t.Errorf("expected field 'to', got '%s'", validationErr.Field)
	}
}

func TestBuildRawMessage_AlternativeBodies(t *testing.T) {
	raw, err := BuildRawMessage(&OutgoingMessage{
		From:     "me@example.com",
		To:       []string{"you@example.com"},
		Subject:  "Both",
		BodyText: "plain rendition",
		BodyHtml: "<p>html rendition</p>",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msg := decodeRaw(t, raw)
	if !strings.Contains(msg, "multipart/alternative") {
		t.Error("expected multipart/alternative")
	}
	if strings.Count(msg, "--alt-boundary-0001") != 3 {
		t.Errorf("expected 2 part openers and 1 closer, got %d markers", strings.Count(msg, "--alt-boundary-0001"))
	}
}

func TestBuildRawMessage_AttachmentsUnderLimit(t *testing.T) {
	// Two 15MB attachments are fine; only the per-attachment size is capped.
	big := bytes.Repeat([]byte{0xAB}, 15*1024*1024)
	raw, err := BuildRawMessage(&OutgoingMessage{
		From:     "me@example.com",
		To:       []string{"you@example.com"},
		Subject:  "Files",
		BodyText: "see attached",
		Attachments: []Attachment{
			{Filename: "a.bin", ContentType: "application/octet-stream", Data: big},
			{Filename: "b.bin", ContentType: "application/octet-stream", Data: big},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msg := decodeRaw(t, raw)
	if !strings.Contains(msg, "multipart/mixed") {
		t.Error("expected multipart/mixed")
	}
	if !strings.Contains(msg, `Content-Disposition: attachment; filename="a.bin"`) {
		t.Error("missing first attachment part")
	}
	if !strings.Contains(msg, `Content-Disposition: attachment; filename="b.bin"`) {
		t.Error("missing second attachment part")
	}
}

func TestBuildRawMessage_AttachmentTooLarge(t *testing.T) {
	_, err := BuildRawMessage(&OutgoingMessage{
		From:        "me@example.com",
		To:          []string{"you@example.com"},
		BodyText:    "too big",
		Attachments: []Attachment{{Filename: "huge.bin", Data: make([]byte, MaxAttachmentSize+1)}},
	})
	var validationErr *types.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if validationErr.Message != "Attachments must be under 25MB each." {
		t.Errorf("unexpected message: '%s'", validationErr.Message)
	}
}

func TestBuildRawMessage_SubjectEncoding(t *testing.T) {
	raw, err := BuildRawMessage(&OutgoingMessage{
		From:     "me@example.com",
		To:       []string{"you@example.com"},
		Subject:  "Bonjour à tous",
		BodyText: "salut",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msg := decodeRaw(t, raw)
	if !strings.Contains(msg, "Subject: =?UTF-8?q?") {
		t.Error("non-ASCII subject should be Q-encoded")
	}
}

func TestWriteBase64Lines_Wrapping(t *testing.T) {
	var b strings.Builder
	writeBase64Lines(&b, bytes.Repeat([]byte{'x'}, 100))

	for _, line := range strings.Split(strings.TrimRight(b.String(), "\r\n"), "\r\n") {
		if len(line) > 76 {
			t.Errorf("line exceeds 76 columns: %d", len(line))
		}
	}
}
