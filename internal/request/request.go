// Package request implements user-submitted requests (solicitudes): free-form
// submissions needing administrative or academic action.
package request

import (
	"fmt"
	"time"
)

// Type classifies a request.
type Type string

const (
	TypeAcademic       Type = "academic"
	TypeAdministrative Type = "administrative"
	TypeTechnical      Type = "technical"
	TypeOther          Type = "other"
)

var typeLabels = map[Type]string{
	TypeAcademic:       "Académica",
	TypeAdministrative: "Administrativa",
	TypeTechnical:      "Técnica",
	TypeOther:          "Otra",
}

// Valid reports whether t is one of the known request types.
func (t Type) Valid() bool {
	_, ok := typeLabels[t]
	return ok
}

// Label returns the display label for the type.
func (t Type) Label() string {
	return typeLabels[t]
}

// Attachment is the optional file sent with a request. Only the metadata
// lives on the entity; the bytes go through storage.Saver.
type Attachment struct {
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
}

// Request is one submission.
type Request struct {
	ID             int64       `json:"id"`
	RequesterName  string      `json:"requester_name"`
	DocumentID     string      `json:"document_id"`
	Email          string      `json:"email"`
	ContactPhone   string      `json:"contact_phone"`
	Type           Type        `json:"type"`
	Subject        string      `json:"subject"`
	Description    string      `json:"description"`
	Attachment     *Attachment `json:"attachment,omitempty"`
	AttachmentPath string      `json:"attachment_path,omitempty"`
	SubmittedAt    time.Time   `json:"submitted_at"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// Reference renders the reference number shown to the submitter.
func (r Request) Reference() string {
	return fmt.Sprintf("SOL-%06d", r.ID)
}
