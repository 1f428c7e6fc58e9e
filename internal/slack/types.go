// Package slack implements the read-only client used to pull conversation
// history from the Slack Web API: a retrying transport, per-endpoint response
// schemas, and the pagination strategies the history and list endpoints use.
package slack

// Message is a single history entry. Identity and ordering come from TS.
// A message with ThreadTS set and different from TS is a thread child and is
// rendered only under its parent, never inline.
type Message struct {
	Type        string       `json:"type"`
	TS          string       `json:"ts"`
	User        string       `json:"user,omitempty"`
	Username    string       `json:"username,omitempty"`
	Text        string       `json:"text,omitempty"`
	Subtype     string       `json:"subtype,omitempty"`
	ThreadTS    string       `json:"thread_ts,omitempty"`
	Replies     []Reply      `json:"replies,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
	Files       []File       `json:"files,omitempty"`
	Upload      bool         `json:"upload,omitempty"`
	IsShare     bool         `json:"is_share,omitempty"`
}

// IsThreadChild reports whether the message belongs to a thread rooted at
// another message.
func (m *Message) IsThreadChild() bool {
	return m.ThreadTS != "" && m.ThreadTS != m.TS
}

// Reply references a thread child by timestamp.
type Reply struct {
	User string `json:"user,omitempty"`
	TS   string `json:"ts"`
}

// Attachment is the structured sub-record Slack attaches to messages.
// Attachments can themselves carry shared files.
type Attachment struct {
	Pretext   string            `json:"pretext,omitempty"`
	Title     string            `json:"title,omitempty"`
	TitleLink string            `json:"title_link,omitempty"`
	Text      string            `json:"text,omitempty"`
	Fields    []AttachmentField `json:"fields,omitempty"`
	Files     []File            `json:"files,omitempty"`
	Upload    bool              `json:"upload,omitempty"`
	IsShare   bool              `json:"is_share,omitempty"`
}

// Renderable reports whether the attachment carries at least one field the
// transcript knows how to show.
func (a *Attachment) Renderable() bool {
	return a.Pretext != "" || a.Title != "" || a.TitleLink != "" ||
		a.Text != "" || len(a.Fields) > 0
}

// AttachmentField is one label/value pair of an attachment's fields array.
type AttachmentField struct {
	Title string `json:"title,omitempty"`
	Value string `json:"value"`
}

// File is the metadata record for an uploaded or shared file.
type File struct {
	ID                 string `json:"id,omitempty"`
	Title              string `json:"title,omitempty"`
	Name               string `json:"name,omitempty"`
	Filetype           string `json:"filetype,omitempty"`
	Size               int64  `json:"size,omitempty"`
	URLPrivateDownload string `json:"url_private_download,omitempty"`
	User               string `json:"user,omitempty"`
	Timestamp          int64  `json:"timestamp,omitempty"`
	Mode               string `json:"mode,omitempty"`
	FileAccess         string `json:"file_access,omitempty"`
}

// Deleted reports whether the file is a tombstone left behind after deletion.
func (f *File) Deleted() bool {
	return f.Mode == "tombstone" || f.FileAccess == "file_not_found"
}

// User is one member from users.list.
type User struct {
	ID      string  `json:"id"`
	Profile Profile `json:"profile"`
}

// Profile holds the subset of the user profile the archiver needs.
type Profile struct {
	DisplayName string `json:"display_name"`
}

// Channel is one entry from conversations.list.
type Channel struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type responseMetadata struct {
	NextCursor string `json:"next_cursor"`
}

// historyResponse is the conversations.history envelope payload.
type historyResponse struct {
	OK       bool      `json:"ok"`
	Error    string    `json:"error,omitempty"`
	Messages []Message `json:"messages"`
	HasMore  bool      `json:"has_more"`
}

// usersResponse is the users.list envelope payload.
type usersResponse struct {
	OK               bool              `json:"ok"`
	Error            string            `json:"error,omitempty"`
	Members          []User            `json:"members"`
	ResponseMetadata *responseMetadata `json:"response_metadata,omitempty"`
}

// channelsResponse is the conversations.list envelope payload.
type channelsResponse struct {
	OK               bool              `json:"ok"`
	Error            string            `json:"error,omitempty"`
	Channels         []Channel         `json:"channels"`
	ResponseMetadata *responseMetadata `json:"response_metadata,omitempty"`
}
