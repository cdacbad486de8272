package attendance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrDuplicateDay is returned when a second record for the same document and
// date is inserted. The unique constraint in Postgres is the authority; this
// error is its mapped form.
var ErrDuplicateDay = errors.New("ya existe un registro con este documento para esta fecha")

// ErrNotFound is returned when a record id does not exist.
var ErrNotFound = errors.New("registro de asistencia no encontrado")

const recordColumns = `id, full_name, document_id, email, attendance_date, check_in, check_out, present, notes, created_at, updated_at`

// Repository persists attendance records in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Insert writes a new record and fills in id and timestamps.
func (r *Repository) Insert(ctx context.Context, rec Record) (Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO attendance_records (id, full_name, document_id, email, attendance_date, check_in, check_out, present, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,NULLIF($9,''))
		RETURNING created_at, updated_at
	`, rec.ID, rec.FullName, rec.DocumentID, rec.Email, rec.Date, rec.CheckIn, rec.CheckOut, rec.Present, rec.Notes)
	if err := row.Scan(&rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return Record{}, mapDuplicate(err)
	}
	return rec, nil
}

// Get returns a single record by id.
func (r *Repository) Get(ctx context.Context, id string) (Record, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+recordColumns+` FROM attendance_records WHERE id = $1
	`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	return rec, err
}

// Update rewrites every user-editable field of an existing record. Partial
// updates are not offered; callers go through the validated path.
func (r *Repository) Update(ctx context.Context, rec Record) (Record, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE attendance_records
		SET full_name = $2, document_id = $3, email = $4, attendance_date = $5,
		    check_in = $6, check_out = $7, present = $8, notes = NULLIF($9,''),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at
	`, rec.ID, rec.FullName, rec.DocumentID, rec.Email, rec.Date, rec.CheckIn, rec.CheckOut, rec.Present, rec.Notes)
	if err := row.Scan(&rec.CreatedAt, &rec.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, mapDuplicate(err)
	}
	return rec, nil
}

// Delete removes a record.
func (r *Repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM attendance_records WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListFilter narrows List results. Zero values mean "no filter".
type ListFilter struct {
	Date    *time.Time
	Present *bool
	Search  string // substring over name, document and email
	Limit   int
	Offset  int
}

// List returns records newest-first (date, then check-in) with basic filters.
func (r *Repository) List(ctx context.Context, f ListFilter) ([]Record, error) {
	if f.Limit <= 0 {
		f.Limit = 25
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	query := `SELECT ` + recordColumns + ` FROM attendance_records`
	args := []any{}
	clauses := []string{}
	if f.Date != nil {
		clauses = append(clauses, "attendance_date = $"+itoa(len(args)+1))
		args = append(args, *f.Date)
	}
	if f.Present != nil {
		clauses = append(clauses, "present = $"+itoa(len(args)+1))
		args = append(args, *f.Present)
	}
	if f.Search != "" {
		n := itoa(len(args) + 1)
		clauses = append(clauses, "(full_name ILIKE '%' || $"+n+" || '%' OR document_id ILIKE '%' || $"+n+" || '%' OR email ILIKE '%' || $"+n+" || '%')")
		args = append(args, f.Search)
	}
	if len(clauses) > 0 {
		query += " WHERE " + joinClauses(clauses, " AND ")
	}
	query += " ORDER BY attendance_date DESC, check_in DESC LIMIT $" + itoa(len(args)+1) + " OFFSET $" + itoa(len(args)+2)
	args = append(args, f.Limit, f.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
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

// SetPresent marks the given records present or absent and returns how many
// rows changed.
func (r *Repository) SetPresent(ctx context.Context, ids []string, present bool) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE attendance_records SET present = $2, updated_at = NOW() WHERE id = ANY($1)
	`, ids, present)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DuplicateForDate copies the given records onto a new date with fresh ids.
// Documents that already have an entry for that date are skipped, so per-day
// uniqueness holds.
func (r *Repository) DuplicateForDate(ctx context.Context, ids []string, date time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var copied int64
	for _, id := range ids {
		res, err := r.db.ExecContext(ctx, `
			INSERT INTO attendance_records (id, full_name, document_id, email, attendance_date, check_in, check_out, present, notes)
			SELECT $2, full_name, document_id, email, $3, check_in, check_out, present, notes
			FROM attendance_records WHERE id = $1
			ON CONFLICT (document_id, attendance_date) DO NOTHING
		`, id, uuid.NewString(), date)
		if err != nil {
			return copied, err
		}
		n, _ := res.RowsAffected()
		copied += n
	}
	return copied, nil
}

func scanRecord(row interface{ Scan(...any) error }) (Record, error) {
	var rec Record
	var notes sql.NullString
	err := row.Scan(&rec.ID, &rec.FullName, &rec.DocumentID, &rec.Email, &rec.Date,
		&rec.CheckIn, &rec.CheckOut, &rec.Present, &notes, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return Record{}, err
	}
	rec.Notes = notes.String
	return rec, nil
}

func mapDuplicate(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateDay
	}
	return err
}

func itoa(i int) string { return fmt.Sprintf("%d", i) }

func joinClauses(parts []string, sep string) string {
	if len(parts) == 0 {
		return ""
	}
	out := parts[0]
	for i := 1; i < len(parts); i++ {
		out += sep + parts[i]
	}
	return out
}
