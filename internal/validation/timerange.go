package validation

import (
	"asistencia/internal/timeofday"
)

const (
	maxRangeMinutes = 12 * 60
	minRangeMinutes = 30
)

// TimeRange checks a standalone check-in/check-out pair: the end must come
// after the start and the span must be between 30 minutes and 12 hours.
// Tighter than the record-level rule, which only orders the two times.
// Missing values pass; pair with required checks when both are mandatory.
func TimeRange(field string, start, end timeofday.TimeOfDay) *FieldError {
	if start.IsZero() || end.IsZero() {
		return nil
	}
	if end.Minutes() <= start.Minutes() {
		return NewFieldError(field, "La hora de salida debe ser posterior a la hora de ingreso.")
	}
	span := end.Minutes() - start.Minutes()
	if span > maxRangeMinutes {
		return NewFieldError(field, "La diferencia entre ingreso y salida no puede exceder 12 horas.")
	}
	if span < minRangeMinutes {
		return NewFieldError(field, "La diferencia mínima entre ingreso y salida debe ser 30 minutos.")
	}
	return nil
}
