// Package export renders attendance records as CSV for the admin download.
package export

import (
	"encoding/csv"
	"io"

	"asistencia/internal/attendance"
)

var header = []string{
	"ID", "Nombre Completo", "Documento", "Correo", "Fecha",
	"Hora Ingreso", "Hora Salida", "Presente", "Duración", "Observaciones",
}

// WriteCSV writes the records to w with the fixed column set: dates as
// dd/mm/yyyy, times as HH:MM, presence as Sí/No, duration via the record's
// display formatting.
func WriteCSV(w io.Writer, records []attendance.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, rec := range records {
		present := "No"
		if rec.Present {
			present = "Sí"
		}
		row := []string{
			rec.ID,
			rec.FullName,
			rec.DocumentID,
			rec.Email,
			rec.Date.Format("02/01/2006"),
			rec.CheckIn.String(),
			rec.CheckOut.String(),
			present,
			rec.DurationDisplay(),
			rec.Notes,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
