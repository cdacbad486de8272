package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"asistencia/internal/attendance"
	"asistencia/internal/timeofday"
)

func TestWriteCSV(t *testing.T) {
	records := []attendance.Record{
		{
			ID:         "a1",
			FullName:   "Juan Perez",
			DocumentID: "1234567",
			Email:      "juan@example.com",
			Date:       time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
			CheckIn:    timeofday.New(8, 0),
			CheckOut:   timeofday.New(12, 30),
			Present:    true,
			Notes:      "llegó temprano",
		},
		{
			ID:         "a2",
			FullName:   "Ana Gomez",
			DocumentID: "7654321",
			Email:      "ana@example.com",
			Date:       time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
			Present:    false,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, records))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{
		"ID", "Nombre Completo", "Documento", "Correo", "Fecha",
		"Hora Ingreso", "Hora Salida", "Presente", "Duración", "Observaciones",
	}, rows[0])

	assert.Equal(t, []string{
		"a1", "Juan Perez", "1234567", "juan@example.com", "05/03/2024",
		"08:00", "12:30", "Sí", "4h 30m", "llegó temprano",
	}, rows[1])

	// missing times render empty with duration unavailable
	assert.Equal(t, "", rows[2][5])
	assert.Equal(t, "", rows[2][6])
	assert.Equal(t, "No", rows[2][7])
	assert.Equal(t, "No disponible", rows[2][8])
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1, "header only")
}
