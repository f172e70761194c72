package gmail

import (
	"encoding/base64"
	"fmt"
	"mime"
	"strings"

	"github.com/breeze-mail/breeze/pkg/types"
)

// MaxAttachmentSize caps each individual attachment. The combined
// message size is not checked here; Gmail enforces its own total limit.
const MaxAttachmentSize = 25 * 1024 * 1024

const attachmentTooLargeMsg = "Attachments must be under 25MB each."

// Attachment is a file included in an outgoing message.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// OutgoingMessage is the input to BuildRawMessage.
type OutgoingMessage struct {
	From        string
	To          []string
	Cc          []string
	Bcc         []string
	Subject     string
	BodyText    string
	BodyHtml    string
	InReplyTo   string
	References  string
	Attachments []Attachment
}

// BuildRawMessage assembles an RFC 2822 message and returns it
// base64url-encoded without padding, ready for the send and draft
// endpoints. Attachment sizes are validated before any encoding work.
func BuildRawMessage(msg *OutgoingMessage) (string, error) {
	if len(msg.To) == 0 {
		return "", &types.ValidationError{Field: "to", Message: "at least one recipient is required"}
	}
	for _, a := range msg.Attachments {
		if len(a.Data) > MaxAttachmentSize {
			return "", &types.ValidationError{Field: "attachments", Message: attachmentTooLargeMsg}
		}
	}

	var b strings.Builder

	writeHeader(&b, "From", msg.From)
	writeHeader(&b, "To", strings.Join(msg.To, ", "))
	if len(msg.Cc) > 0 {
		writeHeader(&b, "Cc", strings.Join(msg.Cc, ", "))
	}
	if len(msg.Bcc) > 0 {
		writeHeader(&b, "Bcc", strings.Join(msg.Bcc, ", "))
	}
	writeHeader(&b, "Subject", encodeSubject(msg.Subject))
	if msg.InReplyTo != "" {
		writeHeader(&b, "In-Reply-To", msg.InReplyTo)
	}
	if msg.References != "" {
		writeHeader(&b, "References", msg.References)
	}
	writeHeader(&b, "MIME-Version", "1.0")

	switch {
	case len(msg.Attachments) > 0:
		buildMultipartMixed(&b, msg)
	case msg.BodyHtml != "" && msg.BodyText != "":
		buildMultipartAlternative(&b, msg, "alt-boundary-0001")
	case msg.BodyHtml != "":
		writeTextPart(&b, "text/html", msg.BodyHtml)
	default:
		writeTextPart(&b, "text/plain", msg.BodyText)
	}

	return base64.RawURLEncoding.EncodeToString([]byte(b.String())), nil
}

func buildMultipartMixed(b *strings.Builder, msg *OutgoingMessage) {
	const boundary = "mixed-boundary-0001"
	writeHeader(b, "Content-Type", fmt.Sprintf("multipart/mixed; boundary=%q", boundary))
	b.WriteString("\r\n")

	b.WriteString("--" + boundary + "\r\n")
	if msg.BodyHtml != "" && msg.BodyText != "" {
		buildMultipartAlternative(b, msg, "alt-boundary-0001")
	} else if msg.BodyHtml != "" {
		writeTextPart(b, "text/html", msg.BodyHtml)
	} else {
		writeTextPart(b, "text/plain", msg.BodyText)
	}

	for _, a := range msg.Attachments {
		contentType := a.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		b.WriteString("--" + boundary + "\r\n")
		writeHeader(b, "Content-Type", fmt.Sprintf("%s; name=%q", contentType, a.Filename))
		writeHeader(b, "Content-Disposition", fmt.Sprintf("attachment; filename=%q", a.Filename))
		writeHeader(b, "Content-Transfer-Encoding", "base64")
		b.WriteString("\r\n")
		writeBase64Lines(b, a.Data)
	}

	b.WriteString("--" + boundary + "--\r\n")
}

func buildMultipartAlternative(b *strings.Builder, msg *OutgoingMessage, boundary string) {
	writeHeader(b, "Content-Type", fmt.Sprintf("multipart/alternative; boundary=%q", boundary))
	b.WriteString("\r\n")

	b.WriteString("--" + boundary + "\r\n")
	writeTextPart(b, "text/plain", msg.BodyText)

	b.WriteString("--" + boundary + "\r\n")
	writeTextPart(b, "text/html", msg.BodyHtml)

	b.WriteString("--" + boundary + "--\r\n")
}

func writeTextPart(b *strings.Builder, contentType, body string) {
	writeHeader(b, "Content-Type", contentType+`; charset="UTF-8"`)
	writeHeader(b, "Content-Transfer-Encoding", "base64")
	b.WriteString("\r\n")
	writeBase64Lines(b, []byte(body))
}

// writeBase64Lines emits standard base64 wrapped at 76 columns.
func writeBase64Lines(b *strings.Builder, data []byte) {
	encoded := base64.StdEncoding.EncodeToString(data)
	for len(encoded) > 76 {
		b.WriteString(encoded[:76])
		b.WriteString("\r\n")
		encoded = encoded[76:]
	}
	if encoded != "" {
		b.WriteString(encoded)
		b.WriteString("\r\n")
	}
}

func writeHeader(b *strings.Builder, name, value string) {
	b.WriteString(name)
	b.WriteString(": ")
	b.WriteString(value)
	b.WriteString("\r\n")
}

func encodeSubject(subject string) string {
	for _, r := range subject {
		if r > 127 {
			return mime.QEncoding.Encode("UTF-8", subject)
		}
	}
	return subject
}
