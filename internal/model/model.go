package model

import "time"

type DocumentType string

const (
	DocumentDocx DocumentType = "docx"
	DocumentPptx DocumentType = "pptx"
)

func (t DocumentType) Valid() bool {
	return t == DocumentDocx || t == DocumentPptx
}

// Label returns the user-facing name for the document type.
func (t DocumentType) Label() string {
	if t == DocumentPptx {
		return "PowerPoint Presentation"
	}
	return "Word Document"
}

// UnitName returns the vocabulary used for a single content unit:
// "Section" for documents, "Slide" for presentations.
func (t DocumentType) UnitName() string {
	if t == DocumentPptx {
		return "Slide"
	}
	return "Section"
}

type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Session is the authenticated identity carried on every Gateway call.
// It is persisted locally so the client can skip login across restarts.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type Project struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	Topic        string       `json:"topic"`
	DocumentType DocumentType `json:"document_type"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// Section is one unit of a project's document. Content is nil until bulk
// generation has run; it is never a partial string. Liked is tri-state:
// nil (no vote), true (liked), false (disliked).
type Section struct {
	ID         string  `json:"id"`
	ProjectID  string  `json:"project_id"`
	OrderIndex int     `json:"order_index"`
	Title      string  `json:"title"`
	Content    *string `json:"content"`
	Liked      *bool   `json:"liked"`
	Comment    string  `json:"comment"`
}

// HasContent reports whether generation has populated this section.
func (s Section) HasContent() bool {
	return s.Content != nil && *s.Content != ""
}
