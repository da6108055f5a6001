package domain

import (
	"io"
	"time"
)

// Document is an image/document shared between roles. The file itself
// lives in object storage; ImageURL is its public address.
type Document struct {
	ID         string    `json:"id"`
	Subject    string    `json:"subject"`
	Message    string    `json:"message"`
	ImageURL   string    `json:"image_url"`
	SharedWith []Role    `json:"SharedWith"`
	SharedBy   string    `json:"SharedBy"`
	CreatedAt  time.Time `json:"created_at"`
}

// DocumentFilter selects documents. Zero fields are ignored.
type DocumentFilter struct {
	SharedBy   string
	SharedWith Role
}

// Matches reports whether d satisfies the filter.
func (f DocumentFilter) Matches(d *Document) bool {
	if f.SharedBy != "" && d.SharedBy != f.SharedBy {
		return false
	}
	if f.SharedWith != "" && !containsRole(d.SharedWith, f.SharedWith) {
		return false
	}
	return true
}

// Upload is a file received from the dashboard.
type Upload struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ShareDocumentInput groups the fields of a document share.
type ShareDocumentInput struct {
	Subject    string
	Message    string
	SharedWith []Role
	File       *Upload
}

// DocumentInbox is returned by GET /v1/documents.
type DocumentInbox struct {
	SharedByYou []Document `json:"sharedByYou"`
	SharedToYou []Document `json:"sharedToYou"`
}
