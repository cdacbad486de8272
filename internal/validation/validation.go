// Package validation holds the reusable field-level validators shared by the
// attendance and request entities. Every validator is a pure function: it
// receives a raw value and returns either the normalized value or a
// *FieldError, never touching I/O.
package validation

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
)

const (
	MinDocumentDigits = 6
	MaxDocumentDigits = 20
	MinNameChars      = 2
	MaxNameChars      = 150
	MinNameWords      = 2
	MaxNameWords      = 5
	MinPhoneDigits    = 7
	MaxPhoneDigits    = 10
)

var (
	digitsOnly   = regexp.MustCompile(`^\d+$`)
	nonDigit     = regexp.MustCompile(`[^\d]`)
	namePattern  = regexp.MustCompile(`^[a-zA-ZáéíóúÁÉÍÓÚñÑüÜ\s.']+$`)
	plainLetters = regexp.MustCompile(`^[a-zA-ZáéíóúÁÉÍÓÚñÑ\s]+$`)
)

// DocumentID checks an identity document number: digits only, 6-20 long and
// not a run of zeros. Returns the trimmed value.
func DocumentID(field, value string) (string, *FieldError) {
	doc := strings.TrimSpace(value)
	switch {
	case doc == "":
		return "", NewFieldError(field, "Este campo es obligatorio.")
	case !digitsOnly.MatchString(doc):
		return "", NewFieldError(field, "El documento de identidad debe contener solo números.")
	case len(doc) < MinDocumentDigits:
		return "", NewFieldError(field, "El documento debe tener al menos 6 dígitos.")
	case len(doc) > MaxDocumentDigits:
		return "", NewFieldError(field, "El documento no puede tener más de 20 dígitos.")
	case doc == strings.Repeat("0", len(doc)):
		return "", NewFieldError(field, "El documento no puede ser solo ceros.")
	}
	return doc, nil
}

// FullName checks a person name: 2-150 chars, letters/spaces/periods/
// apostrophes, between 2 and 5 words of at least 2 chars each. Returns the
// trimmed value; title-casing is left to the caller.
func FullName(field, value string) (string, *FieldError) {
	name := strings.TrimSpace(value)
	if name == "" {
		return "", NewFieldError(field, "Este campo es obligatorio.")
	}
	if len([]rune(name)) < MinNameChars {
		return "", NewFieldError(field, "El nombre debe tener al menos 2 caracteres.")
	}
	if len([]rune(name)) > MaxNameChars {
		return "", NewFieldError(field, "El nombre no puede exceder los 150 caracteres.")
	}
	if !namePattern.MatchString(name) {
		return "", NewFieldError(field, "El nombre solo puede contener letras, espacios, puntos y apostrofes.")
	}
	words := strings.Fields(name)
	if len(words) < MinNameWords {
		return "", NewFieldError(field, "Debe ingresar al menos nombre y apellido.")
	}
	for _, w := range words {
		if len([]rune(w)) < 2 {
			return "", NewFieldError(field, "Cada palabra del nombre debe tener al menos 2 caracteres.")
		}
	}
	if len(words) > MaxNameWords {
		return "", NewFieldError(field, "El nombre no puede tener más de 5 palabras.")
	}
	return name, nil
}

// PlainName is the stricter variant used for request submitters: letters and
// spaces only, at least two words.
func PlainName(field, value string) (string, *FieldError) {
	name := strings.TrimSpace(value)
	if name == "" {
		return "", NewFieldError(field, "Este campo es obligatorio.")
	}
	if len(strings.Fields(name)) < 2 {
		return "", NewFieldError(field, "Debe ingresar al menos nombres y apellidos.")
	}
	if !plainLetters.MatchString(name) {
		return "", NewFieldError(field, "El nombre solo debe contener letras y espacios.")
	}
	return name, nil
}

// Phone strips every non-digit character and checks the local convention:
// 7-10 digits, and ten-digit numbers are mobiles that must start with 3.
// Returns the stripped digit string.
func Phone(field, value string) (string, *FieldError) {
	phone := nonDigit.ReplaceAllString(value, "")
	switch {
	case len(phone) < MinPhoneDigits:
		return "", NewFieldError(field, "El número de teléfono debe tener al menos 7 dígitos.")
	case len(phone) > MaxPhoneDigits:
		return "", NewFieldError(field, "El número de teléfono no puede tener más de 10 dígitos.")
	case len(phone) == MaxPhoneDigits && phone[0] != '3':
		return "", NewFieldError(field, "Los números de celular deben iniciar con 3.")
	}
	return phone, nil
}

// StripPhone returns only the digits of a phone number without applying the
// mobile convention. Request forms use it with their own 7-15 bound.
func StripPhone(value string) string {
	return nonDigit.ReplaceAllString(value, "")
}

// Email checks address syntax and normalizes to lowercase/trimmed.
func Email(field, value string) (string, *FieldError) {
	addr := strings.ToLower(strings.TrimSpace(value))
	if addr == "" {
		return "", NewFieldError(field, "Este campo es obligatorio.")
	}
	if _, err := mail.ParseAddress(addr); err != nil {
		return "", NewFieldError(field, "Ingrese una dirección de correo electrónico válida.")
	}
	return addr, nil
}

// TextLength checks the trimmed length of free text against optional bounds.
// A max of 0 means unbounded. Empty input passes; pair with a required check
// when the field is mandatory.
func TextLength(field, value string, min, max int) *FieldError {
	text := strings.TrimSpace(value)
	if text == "" {
		return nil
	}
	n := len([]rune(text))
	if n < min {
		return NewFieldError(field, fmt.Sprintf("El texto debe tener al menos %d caracteres.", min))
	}
	if max > 0 && n > max {
		return NewFieldError(field, fmt.Sprintf("El texto no puede exceder %d caracteres.", max))
	}
	return nil
}
