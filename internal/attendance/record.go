package attendance

import (
	"fmt"
	"time"

	"asistencia/internal/timeofday"
)

// FullAttendanceHours is the duration threshold for a full attendance day.
const FullAttendanceHours = 4.0

// Record is one person's attendance entry for one calendar date. The store
// enforces that (DocumentID, Date) is unique.
type Record struct {
	ID         string              `json:"id"`
	FullName   string              `json:"full_name"`
	DocumentID string              `json:"document_id"`
	Email      string              `json:"email"`
	Date       time.Time           `json:"date"`
	CheckIn    timeofday.TimeOfDay `json:"check_in"`
	CheckOut   timeofday.TimeOfDay `json:"check_out"`
	Present    bool                `json:"present"`
	Notes      string              `json:"notes,omitempty"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

// DurationHours returns the elapsed hours between check-in and check-out, or
// nil when either time is missing. A check-out earlier than the check-in is
// treated as happening on the next calendar day (overnight shift).
//
// Note: record validation rejects CheckOut <= CheckIn, so the rollover branch
// is unreachable through the validated write path. Both behaviors are kept
// deliberately; collapsing them would change what stored legacy rows report.
func (r Record) DurationHours() *float64 {
	if r.CheckIn.IsZero() || r.CheckOut.IsZero() {
		return nil
	}
	in := r.CheckIn.On(r.Date)
	out := r.CheckOut.On(r.Date)
	if r.CheckOut.Before(r.CheckIn) {
		out = r.CheckOut.On(r.Date.AddDate(0, 0, 1))
	}
	hours := out.Sub(in).Hours()
	return &hours
}

// IsFullAttendance reports whether the stay lasted at least four hours.
// False when the duration cannot be computed.
func (r Record) IsFullAttendance() bool {
	d := r.DurationHours()
	return d != nil && *d >= FullAttendanceHours
}

// DurationDisplay formats the duration as "4h 30m", or the "No disponible"
// sentinel when it cannot be computed. A zero duration also renders the
// sentinel, matching how listings treat identical check-in and check-out.
func (r Record) DurationDisplay() string {
	d := r.DurationHours()
	if d == nil || *d == 0 {
		return "No disponible"
	}
	hours := int(*d)
	minutes := int((*d - float64(hours)) * 60)
	return fmt.Sprintf("%dh %dm", hours, minutes)
}

// StateDisplay renders the presence flag for listings.
func (r Record) StateDisplay() string {
	if r.Present {
		return "Presente"
	}
	return "Ausente"
}
