package validation

import "strings"

// FieldError is a validation failure on a single field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// NewFieldError builds a field error.
func NewFieldError(field, message string) *FieldError {
	return &FieldError{Field: field, Message: message}
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// Errors aggregates the field errors of one validation pass. Validators add
// every failing field instead of stopping at the first, so callers can show
// all problems next to the offending fields at once.
type Errors struct {
	fields []*FieldError
}

// Add records a failure for a field. Nil errors are ignored, which lets
// validators feed results in unconditionally. Only the first error per field
// is kept.
func (e *Errors) Add(fe *FieldError) {
	if fe == nil {
		return
	}
	for _, existing := range e.fields {
		if existing.Field == fe.Field {
			return
		}
	}
	e.fields = append(e.fields, fe)
}

// AddMessage is shorthand for Add(NewFieldError(field, message)).
func (e *Errors) AddMessage(field, message string) {
	e.Add(NewFieldError(field, message))
}

// Get returns the message recorded for a field, or "".
func (e *Errors) Get(field string) string {
	for _, fe := range e.fields {
		if fe.Field == field {
			return fe.Message
		}
	}
	return ""
}

// Fields returns the errors in the order they were recorded.
func (e *Errors) Fields() []*FieldError {
	return e.fields
}

// Empty reports whether the pass produced no errors.
func (e *Errors) Empty() bool {
	return e == nil || len(e.fields) == 0
}

// ToMap renders the aggregate as field -> message, the shape the HTTP layer
// returns to clients.
func (e *Errors) ToMap() map[string]string {
	m := make(map[string]string, len(e.fields))
	for _, fe := range e.fields {
		m[fe.Field] = fe.Message
	}
	return m
}

func (e *Errors) Error() string {
	msgs := make([]string, 0, len(e.fields))
	for _, fe := range e.fields {
		msgs = append(msgs, fe.Error())
	}
	return strings.Join(msgs, "; ")
}

// AsErrors unwraps err into *Errors when it is one.
func AsErrors(err error) (*Errors, bool) {
	ve, ok := err.(*Errors)
	return ve, ok
}
