package gmail

// Wire types for the Gmail REST API (users.messages, users.labels,
// users.drafts). Only the fields we consume are declared.

type Header struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type PartBody struct {
	AttachmentId string `json:"attachmentId,omitempty"`
	Size         int    `json:"size,omitempty"`
	Data         string `json:"data,omitempty"`
}

type Part struct {
	PartId   string    `json:"partId,omitempty"`
	MimeType string    `json:"mimeType,omitempty"`
	Filename string    `json:"filename,omitempty"`
	Headers  []Header  `json:"headers,omitempty"`
	Body     *PartBody `json:"body,omitempty"`
	Parts    []Part    `json:"parts,omitempty"`
}

type Message struct {
	Id           string   `json:"id"`
	ThreadId     string   `json:"threadId,omitempty"`
	LabelIds     []string `json:"labelIds,omitempty"`
	Snippet      string   `json:"snippet,omitempty"`
	InternalDate string   `json:"internalDate,omitempty"` // epoch millis as string
	SizeEstimate int64    `json:"sizeEstimate,omitempty"`
	Payload      *Part    `json:"payload,omitempty"`
	Raw          string   `json:"raw,omitempty"`
}

// Header returns the first header with the given name (case-insensitive
// per RFC 5322), or "".
func (m *Message) Header(name string) string {
	if m.Payload == nil {
		return ""
	}
	return headerValue(m.Payload.Headers, name)
}

type MessageList struct {
	Messages           []MessageRef `json:"messages,omitempty"`
	NextPageToken      string       `json:"nextPageToken,omitempty"`
	ResultSizeEstimate int          `json:"resultSizeEstimate,omitempty"`
}

type MessageRef struct {
	Id       string `json:"id"`
	ThreadId string `json:"threadId,omitempty"`
}

type Label struct {
	Id                    string      `json:"id"`
	Name                  string      `json:"name"`
	Type                  string      `json:"type,omitempty"`
	MessageListVisibility string      `json:"messageListVisibility,omitempty"`
	LabelListVisibility   string      `json:"labelListVisibility,omitempty"`
	MessagesTotal         int         `json:"messagesTotal,omitempty"`
	MessagesUnread        int         `json:"messagesUnread,omitempty"`
	ThreadsTotal          int         `json:"threadsTotal,omitempty"`
	Color                 *LabelColor `json:"color,omitempty"`
}

type LabelColor struct {
	TextColor       string `json:"textColor,omitempty"`
	BackgroundColor string `json:"backgroundColor,omitempty"`
}

type LabelList struct {
	Labels []Label `json:"labels"`
}

type Draft struct {
	Id      string   `json:"id"`
	Message *Message `json:"message,omitempty"`
}

type ModifyRequest struct {
	AddLabelIds    []string `json:"addLabelIds,omitempty"`
	RemoveLabelIds []string `json:"removeLabelIds,omitempty"`
}
