package request

import (
	"strings"

	"asistencia/internal/validation"
)

// MaxAttachmentSize is the attachment limit in bytes (5 MB).
const MaxAttachmentSize = 5 * 1024 * 1024

var allowedExtensions = []string{".pdf", ".doc", ".docx", ".jpg", ".jpeg", ".png"}

const (
	minSubjectChars     = 5
	maxSubjectChars     = 200
	minDescriptionForm  = 20
	minDescriptionModel = 10
	minRequestPhone     = 7
	maxRequestPhone     = 15
)

// Validate runs the form-level checks on a candidate request and normalizes
// it in place. All field errors are collected in one pass. The attachment
// rules apply only when a file was sent.
func Validate(r *Request) error {
	errs := &validation.Errors{}

	name, fe := validation.PlainName("requester_name", r.RequesterName)
	if fe != nil {
		errs.Add(fe)
	}

	doc := strings.TrimSpace(r.DocumentID)
	if _, dfe := validation.DocumentID("document_id", doc); dfe != nil {
		// The request form reports document bounds with a single message.
		if strings.Contains(dfe.Message, "dígitos") {
			errs.AddMessage("document_id", "El documento debe tener entre 6 y 20 dígitos.")
		} else {
			errs.Add(dfe)
		}
	}

	email, efe := validation.Email("email", r.Email)
	if efe != nil {
		errs.Add(efe)
	}

	phone := validation.StripPhone(r.ContactPhone)
	if len(phone) < minRequestPhone || len(phone) > maxRequestPhone {
		errs.AddMessage("contact_phone", "El teléfono debe tener entre 7 y 15 dígitos.")
	}

	if !r.Type.Valid() {
		errs.AddMessage("type", "Seleccione un tipo de solicitud válido.")
	}

	subject := strings.TrimSpace(r.Subject)
	if len([]rune(subject)) < minSubjectChars {
		errs.AddMessage("subject", "El asunto debe tener al menos 5 caracteres.")
	} else if len([]rune(subject)) > maxSubjectChars {
		errs.AddMessage("subject", "El asunto no puede exceder 200 caracteres.")
	}

	description := strings.TrimSpace(r.Description)
	if len([]rune(description)) < minDescriptionForm {
		errs.AddMessage("description", "La descripción debe tener al menos 20 caracteres.")
	}

	if r.Attachment != nil {
		if r.Attachment.Size > MaxAttachmentSize {
			errs.AddMessage("attachment", "El archivo no puede exceder 5MB.")
		} else if !AllowedExtension(r.Attachment.Filename) {
			errs.AddMessage("attachment", "Tipo de archivo no permitido. Use: PDF, DOC, DOCX, JPG, JPEG, PNG")
		}
	}

	if !errs.Empty() {
		return errs
	}

	r.RequesterName = name
	r.DocumentID = doc
	r.Email = email
	r.ContactPhone = phone
	r.Subject = subject
	r.Description = description
	return nil
}

// CheckInvariants is the model-level re-check run right before persistence.
// Its description minimum (10) is looser than the form's (20); both layers
// are kept independently reachable because the original system never settled
// which one is authoritative.
func CheckInvariants(r *Request) error {
	errs := &validation.Errors{}
	if strings.TrimSpace(r.Subject) == "" {
		errs.AddMessage("subject", "El asunto no puede estar vacío.")
	}
	if r.Description != "" && len([]rune(strings.TrimSpace(r.Description))) < minDescriptionModel {
		errs.AddMessage("description", "La descripción debe tener al menos 10 caracteres.")
	}
	if errs.Empty() {
		return nil
	}
	return errs
}

// AllowedExtension reports whether the filename carries one of the permitted
// extensions. The comparison is case-insensitive.
func AllowedExtension(filename string) bool {
	lower := strings.ToLower(filename)
	for _, ext := range allowedExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
