package request

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
)

// ErrNotFound is returned when a request id does not exist.
var ErrNotFound = errors.New("solicitud no encontrada")

const requestColumns = `id, requester_name, document_id, email, contact_phone, request_type, subject, description, attachment_name, attachment_size, attachment_path, submitted_at, created_at, updated_at`

// Repository persists requests in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Insert writes a new request and fills in id and timestamps.
func (r *Repository) Insert(ctx context.Context, req Request) (Request, error) {
	var name, path any
	var size any
	if req.Attachment != nil {
		name, size, path = req.Attachment.Filename, req.Attachment.Size, req.AttachmentPath
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO requests (requester_name, document_id, email, contact_phone, request_type, subject, description, attachment_name, attachment_size, attachment_path)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING id, submitted_at, created_at, updated_at
	`, req.RequesterName, req.DocumentID, req.Email, req.ContactPhone, string(req.Type), req.Subject, req.Description, name, size, path)
	if err := row.Scan(&req.ID, &req.SubmittedAt, &req.CreatedAt, &req.UpdatedAt); err != nil {
		return Request{}, err
	}
	return req, nil
}

// Get returns a single request by id.
func (r *Repository) Get(ctx context.Context, id int64) (Request, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+requestColumns+` FROM requests WHERE id = $1
	`, id)
	req, err := scanRequest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Request{}, ErrNotFound
	}
	return req, err
}

// Update rewrites the user-editable fields of an existing request.
func (r *Repository) Update(ctx context.Context, req Request) (Request, error) {
	var name, path any
	var size any
	if req.Attachment != nil {
		name, size, path = req.Attachment.Filename, req.Attachment.Size, req.AttachmentPath
	}
	row := r.db.QueryRowContext(ctx, `
		UPDATE requests
		SET requester_name = $2, document_id = $3, email = $4, contact_phone = $5,
		    request_type = $6, subject = $7, description = $8,
		    attachment_name = COALESCE($9, attachment_name),
		    attachment_size = COALESCE($10, attachment_size),
		    attachment_path = COALESCE($11, attachment_path),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING submitted_at, created_at, updated_at
	`, req.ID, req.RequesterName, req.DocumentID, req.Email, req.ContactPhone, string(req.Type), req.Subject, req.Description, name, size, path)
	if err := row.Scan(&req.SubmittedAt, &req.CreatedAt, &req.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Request{}, ErrNotFound
		}
		return Request{}, err
	}
	return req, nil
}

// Delete removes a request.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM requests WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SearchFilter narrows Search results. Both filters combine with AND.
type SearchFilter struct {
	Query  string // case-insensitive substring over requester name and subject
	Type   Type   // exact match when set
	Limit  int
	Offset int
}

// Search lists requests newest-first with the admin list filters.
func (r *Repository) Search(ctx context.Context, f SearchFilter) ([]Request, error) {
	if f.Limit <= 0 {
		f.Limit = 10
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	query := `SELECT ` + requestColumns + ` FROM requests`
	args := []any{}
	clauses := []string{}
	if f.Query != "" {
		n := strconv.Itoa(len(args) + 1)
		clauses = append(clauses, "(requester_name ILIKE '%' || $"+n+" || '%' OR subject ILIKE '%' || $"+n+" || '%')")
		args = append(args, f.Query)
	}
	if f.Type != "" {
		clauses = append(clauses, "request_type = $"+strconv.Itoa(len(args)+1))
		args = append(args, string(f.Type))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY submitted_at DESC, id DESC LIMIT $" + strconv.Itoa(len(args)+1) + " OFFSET $" + strconv.Itoa(len(args)+2)
	args = append(args, f.Limit, f.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, req)
	}
	return res, rows.Err()
}

func scanRequest(row interface{ Scan(...any) error }) (Request, error) {
	var req Request
	var typ string
	var name, path sql.NullString
	var size sql.NullInt64
	err := row.Scan(&req.ID, &req.RequesterName, &req.DocumentID, &req.Email, &req.ContactPhone,
		&typ, &req.Subject, &req.Description, &name, &size, &path,
		&req.SubmittedAt, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return Request{}, err
	}
	req.Type = Type(typ)
	if name.Valid {
		req.Attachment = &Attachment{Filename: name.String, Size: size.Int64}
		req.AttachmentPath = path.String
	}
	return req, nil
}
