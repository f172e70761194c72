package gmail

import (
	"testing"
	"time"
)

func TestDecodeBodyData_RawURLEncoding(t *testing.T) {
	// Base64url without padding (Gmail's usual shape)
	result := DecodeBodyData("SGVsbG8gV29ybGQh") // "Hello World!"
	if result != "Hello World!" {
		t.Errorf("Expected 'Hello World!', got '%s'", result)
	}
}

func TestDecodeBodyData_WithPadding(t *testing.T) {
	result := DecodeBodyData("Zmlycw==") // "firs"
	if result != "firs" {
		t.Errorf("Expected 'firs', got '%s'", result)
	}
}

func TestDecodeBodyData_URLSafeAlphabet(t *testing.T) {
	result := DecodeBodyData("PHA-dGVzdA") // "<p>test" with URL-safe '-'
	if result != "<p>test" {
		t.Errorf("Expected '<p>test', got '%s'", result)
	}
}

func TestDecodeBodyData_Empty(t *testing.T) {
	if result := DecodeBodyData(""); result != "" {
		t.Errorf("Expected empty string, got '%s'", result)
	}
}

func TestCollectTextBodies_SimplePlain(t *testing.T) {
	payload := &Part{
		MimeType: "text/plain",
		Body:     &PartBody{Data: "SGVsbG8gV29ybGQh"}, // "Hello World!"
	}

	plain, html := CollectTextBodies(payload)
	if plain != "Hello World!" {
		t.Errorf("Expected 'Hello World!', got '%s'", plain)
	}
	if html != "" {
		t.Errorf("Expected empty html, got '%s'", html)
	}
}

func TestCollectTextBodies_CharsetSuffix(t *testing.T) {
	// mimeType sometimes carries parameters
	payload := &Part{
		MimeType: "text/plain; charset=UTF-8",
		Body:     &PartBody{Data: "Zmlyc3Q"}, // "first"
	}

	plain, _ := CollectTextBodies(payload)
	if plain != "first" {
		t.Errorf("Expected 'first', got '%s'", plain)
	}
}

func TestCollectTextBodies_NestedMultipartDocumentOrder(t *testing.T) {
	// Every text leaf is concatenated in document order, across
	// multipart/alternative siblings; nothing is deduplicated.
	payload := &Part{
		MimeType: "multipart/mixed",
		Parts: []Part{
			{
				MimeType: "multipart/alternative",
				Parts: []Part{
					{MimeType: "text/plain", Body: &PartBody{Data: "Zmlyc3Q"}},       // "first"
					{MimeType: "text/html", Body: &PartBody{Data: "PHA-b25lPC9wPg"}}, // "<p>one</p>"
				},
			},
			{MimeType: "text/plain", Body: &PartBody{Data: "c2Vjb25k"}}, // "second"
			{
				MimeType: "multipart/alternative",
				Parts: []Part{
					{MimeType: "text/plain", Body: &PartBody{Data: "dGhpcmQ"}},       // "third"
					{MimeType: "text/html", Body: &PartBody{Data: "PHA-dHdvPC9wPg"}}, // "<p>two</p>"
				},
			},
			{
				MimeType: "application/pdf",
				Filename: "attachment.pdf",
				Body:     &PartBody{AttachmentId: "some-id"},
			},
		},
	}

	plain, html := CollectTextBodies(payload)
	if plain != "firstsecondthird" {
		t.Errorf("Expected 'firstsecondthird', got '%s'", plain)
	}
	if html != "<p>one</p><p>two</p>" {
		t.Errorf("Expected '<p>one</p><p>two</p>', got '%s'", html)
	}
}

func TestCollectTextBodies_NilPayload(t *testing.T) {
	plain, html := CollectTextBodies(nil)
	if plain != "" || html != "" {
		t.Errorf("Expected empty bodies, got '%s' / '%s'", plain, html)
	}
}

func TestSplitAddressList(t *testing.T) {
	result := SplitAddressList(`"Doe, Jane" <jane@example.com>, bob@example.com`)
	if len(result) != 2 {
		t.Fatalf("Expected 2 entries, got %d: %v", len(result), result)
	}
	if result[0] != `"Doe, Jane" <jane@example.com>` {
		t.Errorf("Quoted display name split incorrectly: '%s'", result[0])
	}
	if result[1] != "bob@example.com" {
		t.Errorf("Expected 'bob@example.com', got '%s'", result[1])
	}
}

func TestSplitAddressList_Empty(t *testing.T) {
	if result := SplitAddressList("  "); result != nil {
		t.Errorf("Expected nil, got %v", result)
	}
}

func TestAddressDomain(t *testing.T) {
	cases := []struct {
		addr string
		want string
	}{
		{"Kayak <deals@msg.kayak.com>", "msg.kayak.com"},
		{"bob@Example.COM", "example.com"},
		{"no-at-sign", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := AddressDomain(tc.addr); got != tc.want {
			t.Errorf("AddressDomain(%q) = %q, want %q", tc.addr, got, tc.want)
		}
	}
}

func TestParseInternalDate(t *testing.T) {
	result := ParseInternalDate("1700000000000")
	if result == nil {
		t.Fatal("Expected a time, got nil")
	}
	want := time.UnixMilli(1700000000000).UTC()
	if !result.Equal(want) {
		t.Errorf("Expected %v, got %v", want, result)
	}

	if ParseInternalDate("not-a-number") != nil {
		t.Error("Expected nil for invalid input")
	}
	if ParseInternalDate("") != nil {
		t.Error("Expected nil for empty input")
	}
}

func TestStripHTML(t *testing.T) {
	result := StripHTML("<p>Hello&nbsp;&amp; <b>world</b></p>")
	if result != "Hello & world" {
		t.Errorf("Expected 'Hello & world', got '%s'", result)
	}
}
