package gmail

import (
	"encoding/base64"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DecodeBodyData decodes the base64url-encoded body data from a message part.
// Gmail uses URL-safe base64 encoding, often without padding.
// Try RawURLEncoding first (no padding), then URLEncoding (with padding),
// then pad manually.
func DecodeBodyData(data string) string {
	if data == "" {
		return ""
	}

	decoded, err := base64.RawURLEncoding.DecodeString(data)
	if err != nil {
		decoded, err = base64.URLEncoding.DecodeString(data)
		if err != nil {
			padded := data
			switch len(data) % 4 {
			case 2:
				padded += "=="
			case 3:
				padded += "="
			}
			decoded, _ = base64.URLEncoding.DecodeString(padded)
		}
	}

	return string(decoded)
}

// CollectTextBodies walks the payload depth-first and concatenates every
// text/plain leaf into the first return value and every text/html leaf
// into the second, in document order. Multipart/alternative siblings are
// not deduplicated; both renditions of the same content land in their
// respective buckets. Downstream consumers rely on this exact shape.
func CollectTextBodies(payload *Part) (plain string, html string) {
	if payload == nil {
		return "", ""
	}

	var plainParts, htmlParts []string
	collectTextLeaves(payload, &plainParts, &htmlParts)

	return strings.Join(plainParts, ""), strings.Join(htmlParts, "")
}

func collectTextLeaves(part *Part, plain, html *[]string) {
	if part == nil {
		return
	}

	switch {
	case strings.HasPrefix(part.MimeType, "text/plain"):
		if part.Body != nil {
			if decoded := DecodeBodyData(part.Body.Data); decoded != "" {
				*plain = append(*plain, decoded)
			}
		}
	case strings.HasPrefix(part.MimeType, "text/html"):
		if part.Body != nil {
			if decoded := DecodeBodyData(part.Body.Data); decoded != "" {
				*html = append(*html, decoded)
			}
		}
	}

	for i := range part.Parts {
		collectTextLeaves(&part.Parts[i], plain, html)
	}
}

func headerValue(headers []Header, name string) string {
	for _, h := range headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// SplitAddressList splits a comma-separated address header into
// trimmed entries. Display names with commas inside quotes survive.
func SplitAddressList(header string) []string {
	if strings.TrimSpace(header) == "" {
		return nil
	}

	var out []string
	var b strings.Builder
	inQuotes := false
	for _, r := range header {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			b.WriteRune(r)
		case r == ',' && !inQuotes:
			if s := strings.TrimSpace(b.String()); s != "" {
				out = append(out, s)
			}
			b.Reset()
		default:
			b.WriteRune(r)
		}
	}
	if s := strings.TrimSpace(b.String()); s != "" {
		out = append(out, s)
	}
	return out
}

// AddressDomain extracts the domain of an address header entry,
// lowercased. "Kayak <deals@msg.kayak.com>" -> "msg.kayak.com".
func AddressDomain(addr string) string {
	email := addr
	if idx := strings.Index(addr, "<"); idx >= 0 {
		if end := strings.Index(addr[idx:], ">"); end > 0 {
			email = addr[idx+1 : idx+end]
		}
	}
	email = strings.TrimSpace(email)
	if at := strings.LastIndex(email, "@"); at >= 0 {
		return strings.ToLower(email[at+1:])
	}
	return ""
}

// ParseInternalDate converts Gmail's epoch-millisecond string to a time.
func ParseInternalDate(internalDate string) *time.Time {
	if internalDate == "" {
		return nil
	}
	ms, err := strconv.ParseInt(internalDate, 10, 64)
	if err != nil {
		return nil
	}
	t := time.UnixMilli(ms).UTC()
	return &t
}

var (
	htmlTagRegex    = regexp.MustCompile(`<[^>]*>`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
)

// StripHTML removes HTML tags from a string
func StripHTML(html string) string {
	text := htmlTagRegex.ReplaceAllString(html, " ")
	text = strings.ReplaceAll(text, "&nbsp;", " ")
	text = strings.ReplaceAll(text, "&amp;", "&")
	text = strings.ReplaceAll(text, "&lt;", "<")
	text = strings.ReplaceAll(text, "&gt;", ">")
	text = whitespaceRegex.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
