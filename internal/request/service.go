package request

import (
	"context"
	"fmt"
	"io"

	"asistencia/internal/storage"
)

// Store is the persistence boundary for requests.
type Store interface {
	Insert(ctx context.Context, req Request) (Request, error)
	Get(ctx context.Context, id int64) (Request, error)
	Update(ctx context.Context, req Request) (Request, error)
	Delete(ctx context.Context, id int64) error
	Search(ctx context.Context, f SearchFilter) ([]Request, error)
}

// Service runs submissions through both validation layers, saves attachments
// and persists the request.
type Service struct {
	store Store
	files *storage.Saver
}

// NewService creates a service. files may be nil when attachment storage is
// not configured; submissions with files are then rejected.
func NewService(store Store, files *storage.Saver) *Service {
	return &Service{store: store, files: files}
}

// Submit validates a new request, stores its attachment when present and
// persists it. The form-level pass runs first; the looser model-level
// invariants re-check runs right before the write, mirroring the two
// independently reachable layers of the original system.
func (s *Service) Submit(ctx context.Context, req Request, file io.Reader) (Request, error) {
	if err := Validate(&req); err != nil {
		return Request{}, err
	}
	if err := CheckInvariants(&req); err != nil {
		return Request{}, err
	}
	if req.Attachment != nil && file != nil {
		if s.files == nil {
			return Request{}, fmt.Errorf("almacenamiento de archivos no configurado")
		}
		path, err := s.files.Save(req.DocumentID, req.Attachment.Filename, file)
		if err != nil {
			return Request{}, fmt.Errorf("guardar adjunto: %w", err)
		}
		req.AttachmentPath = path
	}
	return s.store.Insert(ctx, req)
}

// Update re-runs the full validation path over an existing request. The
// stored attachment is kept unless a new file is sent.
func (s *Service) Update(ctx context.Context, id int64, req Request, file io.Reader) (Request, error) {
	existing, err := s.store.Get(ctx, id)
	if err != nil {
		return Request{}, err
	}
	req.ID = existing.ID
	if req.Attachment == nil {
		if err := Validate(&req); err != nil {
			return Request{}, err
		}
		// keep the stored file
		req.Attachment = existing.Attachment
		req.AttachmentPath = existing.AttachmentPath
	} else {
		if err := Validate(&req); err != nil {
			return Request{}, err
		}
		if file != nil {
			if s.files == nil {
				return Request{}, fmt.Errorf("almacenamiento de archivos no configurado")
			}
			path, serr := s.files.Save(req.DocumentID, req.Attachment.Filename, file)
			if serr != nil {
				return Request{}, fmt.Errorf("guardar adjunto: %w", serr)
			}
			req.AttachmentPath = path
		}
	}
	if err := CheckInvariants(&req); err != nil {
		return Request{}, err
	}
	return s.store.Update(ctx, req)
}

// Get returns one request.
func (s *Service) Get(ctx context.Context, id int64) (Request, error) {
	return s.store.Get(ctx, id)
}

// Delete removes a request.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.store.Delete(ctx, id)
}

// Search lists requests with the admin filters.
func (s *Service) Search(ctx context.Context, f SearchFilter) ([]Request, error) {
	return s.store.Search(ctx, f)
}
