package attendance

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"asistencia/internal/validation"
)

var titleCaser = cases.Title(language.Spanish)

// Validate checks a candidate record and, on success, normalizes it in place:
// strings trimmed, name title-cased, email lowercased. Every rule runs
// independently so all failing fields are reported together. now supplies
// "today" for the future-date check; callers inject it instead of reading the
// wall clock so the pass stays pure.
//
// The check-out rule here rejects overnight pairs, while DurationHours rolls
// a smaller check-out over to the next day. That contradiction comes from the
// system this replaces and is preserved on purpose; see also record.go.
func Validate(r *Record, now time.Time) error {
	errs := &validation.Errors{}

	if !r.Date.IsZero() && dateOnly(r.Date).After(dateOnly(now)) {
		errs.AddMessage("date", "La fecha de asistencia no puede ser futura.")
	}

	if !r.CheckIn.IsZero() && !r.CheckOut.IsZero() {
		if r.CheckOut.Minutes() <= r.CheckIn.Minutes() {
			errs.AddMessage("check_out", "La hora de salida debe ser posterior a la hora de ingreso.")
		}
	}

	doc := strings.TrimSpace(r.DocumentID)
	if _, fe := validation.DocumentID("document_id", doc); fe != nil {
		errs.Add(fe)
	}

	if _, fe := validation.FullName("full_name", r.FullName); fe != nil {
		errs.Add(fe)
	}

	email, fe := validation.Email("email", r.Email)
	if fe != nil {
		errs.Add(fe)
	}

	if fe := validation.TextLength("notes", r.Notes, 0, 500); fe != nil {
		errs.Add(fe)
	}

	if !errs.Empty() {
		return errs
	}

	r.FullName = titleCaser.String(strings.TrimSpace(r.FullName))
	r.DocumentID = doc
	r.Email = email
	r.Notes = strings.TrimSpace(r.Notes)
	return nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
