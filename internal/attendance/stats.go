package attendance

import (
	"context"
	"time"
)

// Stats is an aggregate count over a set of records.
type Stats struct {
	Total   int `json:"total"`
	Present int `json:"present"`
	Absent  int `json:"absent"`
}

// DayStats is the aggregate for a single attendance date.
type DayStats struct {
	Date    time.Time `json:"date"`
	Total   int       `json:"total"`
	Present int       `json:"present"`
	Absent  int       `json:"absent"`
}

// PersonStats is the per-person aggregate used for the activity ranking.
type PersonStats struct {
	FullName   string `json:"full_name"`
	DocumentID string `json:"document_id"`
	Total      int    `json:"total"`
	Present    int    `json:"present"`
}

// Counts returns the all-time totals.
func (r *Repository) Counts(ctx context.Context) (Stats, error) {
	var s Stats
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE present),
		       COUNT(*) FILTER (WHERE NOT present)
		FROM attendance_records
	`).Scan(&s.Total, &s.Present, &s.Absent)
	return s, err
}

// PresentOn returns the records marked present for a date.
func (r *Repository) PresentOn(ctx context.Context, date time.Time) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+recordColumns+` FROM attendance_records
		WHERE attendance_date = $1 AND present
		ORDER BY check_in
	`, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, rec)
	}
	return res, rows.Err()
}

// StatsSince aggregates records with a date on or after from. The service
// passes the first day of the current month to produce the monthly figures.
func (r *Repository) StatsSince(ctx context.Context, from time.Time) (Stats, error) {
	var s Stats
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE present),
		       COUNT(*) FILTER (WHERE NOT present)
		FROM attendance_records
		WHERE attendance_date >= $1
	`, from).Scan(&s.Total, &s.Present, &s.Absent)
	return s, err
}

// DailyStats groups records by date over [start, end], ascending.
func (r *Repository) DailyStats(ctx context.Context, start, end time.Time) ([]DayStats, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT attendance_date,
		       COUNT(*),
		       COUNT(*) FILTER (WHERE present),
		       COUNT(*) FILTER (WHERE NOT present)
		FROM attendance_records
		WHERE attendance_date BETWEEN $1 AND $2
		GROUP BY attendance_date
		ORDER BY attendance_date
	`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []DayStats
	for rows.Next() {
		var d DayStats
		if err := rows.Scan(&d.Date, &d.Total, &d.Present, &d.Absent); err != nil {
			return nil, err
		}
		res = append(res, d)
	}
	return res, rows.Err()
}

// TopPeople ranks people by number of records, descending, up to limit.
func (r *Repository) TopPeople(ctx context.Context, limit int) ([]PersonStats, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT full_name, document_id,
		       COUNT(*) AS total,
		       COUNT(*) FILTER (WHERE present)
		FROM attendance_records
		GROUP BY full_name, document_id
		ORDER BY total DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []PersonStats
	for rows.Next() {
		var p PersonStats
		if err := rows.Scan(&p.FullName, &p.DocumentID, &p.Total, &p.Present); err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	return res, rows.Err()
}
