package request

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"asistencia/internal/storage"
	"asistencia/internal/validation"
)

type stubRequestStore struct {
	requests map[int64]Request
	nextID   int64
}

func newStubRequestStore() *stubRequestStore {
	return &stubRequestStore{requests: make(map[int64]Request), nextID: 1}
}

func (s *stubRequestStore) Insert(_ context.Context, req Request) (Request, error) {
	req.ID = s.nextID
	s.nextID++
	now := time.Now()
	req.SubmittedAt = now
	req.CreatedAt = now
	req.UpdatedAt = now
	s.requests[req.ID] = req
	return req, nil
}

func (s *stubRequestStore) Get(_ context.Context, id int64) (Request, error) {
	req, ok := s.requests[id]
	if !ok {
		return Request{}, ErrNotFound
	}
	return req, nil
}

func (s *stubRequestStore) Update(_ context.Context, req Request) (Request, error) {
	existing, ok := s.requests[req.ID]
	if !ok {
		return Request{}, ErrNotFound
	}
	req.SubmittedAt = existing.SubmittedAt
	req.CreatedAt = existing.CreatedAt
	req.UpdatedAt = time.Now()
	s.requests[req.ID] = req
	return req, nil
}

func (s *stubRequestStore) Delete(_ context.Context, id int64) error {
	if _, ok := s.requests[id]; !ok {
		return ErrNotFound
	}
	delete(s.requests, id)
	return nil
}

func (s *stubRequestStore) Search(_ context.Context, f SearchFilter) ([]Request, error) {
	var res []Request
	for _, req := range s.requests {
		if f.Type != "" && req.Type != f.Type {
			continue
		}
		if f.Query != "" {
			q := strings.ToLower(f.Query)
			if !strings.Contains(strings.ToLower(req.RequesterName), q) &&
				!strings.Contains(strings.ToLower(req.Subject), q) {
				continue
			}
		}
		res = append(res, req)
	}
	return res, nil
}

func testRequestService(t *testing.T) (*Service, *stubRequestStore, string) {
	t.Helper()
	dir := t.TempDir()
	store := newStubRequestStore()
	return NewService(store, storage.NewSaver(dir)), store, dir
}

func TestSubmitWithoutAttachment(t *testing.T) {
	svc, _, _ := testRequestService(t)

	req := validRequest()
	created, err := svc.Submit(context.Background(), req, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, "SOL-000001", created.Reference())
	assert.Equal(t, "maria lopez", created.RequesterName)
	assert.Empty(t, created.AttachmentPath)
}

func TestSubmitSavesAttachment(t *testing.T) {
	svc, _, dir := testRequestService(t)

	req := validRequest()
	req.Attachment = &Attachment{Filename: "certificado.pdf", Size: 11}
	created, err := svc.Submit(context.Background(), req, strings.NewReader("PDF content"))
	require.NoError(t, err)

	want := filepath.Join("requests", "1234567", "certificado.pdf")
	assert.Equal(t, want, created.AttachmentPath)

	data, err := os.ReadFile(filepath.Join(dir, want))
	require.NoError(t, err)
	assert.Equal(t, "PDF content", string(data))
}

func TestSubmitRejectsInvalidBeforeSaving(t *testing.T) {
	svc, store, dir := testRequestService(t)

	req := validRequest()
	req.Subject = "ab"
	req.Attachment = &Attachment{Filename: "certificado.pdf", Size: 11}
	_, err := svc.Submit(context.Background(), req, strings.NewReader("PDF content"))
	require.Error(t, err)
	_, ok := validation.AsErrors(err)
	assert.True(t, ok)

	assert.Empty(t, store.requests)
	_, err = os.Stat(filepath.Join(dir, "requests", "1234567", "certificado.pdf"))
	assert.True(t, os.IsNotExist(err), "file must not be written for a rejected submission")
}

func TestSubmitWithoutSaverRejectsFiles(t *testing.T) {
	svc := NewService(newStubRequestStore(), nil)

	req := validRequest()
	req.Attachment = &Attachment{Filename: "certificado.pdf", Size: 11}
	_, err := svc.Submit(context.Background(), req, strings.NewReader("PDF content"))
	assert.ErrorContains(t, err, "almacenamiento")
}

func TestUpdateKeepsStoredAttachment(t *testing.T) {
	svc, _, _ := testRequestService(t)
	ctx := context.Background()

	req := validRequest()
	req.Attachment = &Attachment{Filename: "certificado.pdf", Size: 11}
	created, err := svc.Submit(ctx, req, strings.NewReader("PDF content"))
	require.NoError(t, err)

	upd := validRequest()
	upd.Subject = "Asunto corregido para la solicitud"
	updated, err := svc.Update(ctx, created.ID, upd, nil)
	require.NoError(t, err)

	assert.Equal(t, created.AttachmentPath, updated.AttachmentPath)
	require.NotNil(t, updated.Attachment)
	assert.Equal(t, "certificado.pdf", updated.Attachment.Filename)
	assert.Equal(t, "Asunto corregido para la solicitud", updated.Subject)
}

func TestUpdateReplacesAttachment(t *testing.T) {
	svc, _, dir := testRequestService(t)
	ctx := context.Background()

	req := validRequest()
	req.Attachment = &Attachment{Filename: "viejo.pdf", Size: 5}
	created, err := svc.Submit(ctx, req, strings.NewReader("viejo"))
	require.NoError(t, err)

	upd := validRequest()
	upd.Attachment = &Attachment{Filename: "nuevo.pdf", Size: 5}
	updated, err := svc.Update(ctx, created.ID, upd, strings.NewReader("nuevo"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("requests", "1234567", "nuevo.pdf"), updated.AttachmentPath)
	data, err := os.ReadFile(filepath.Join(dir, updated.AttachmentPath))
	require.NoError(t, err)
	assert.Equal(t, "nuevo", string(data))
}

func TestUpdateMissingRequest(t *testing.T) {
	svc, _, _ := testRequestService(t)
	_, err := svc.Update(context.Background(), 99, validRequest(), nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSearchFilters(t *testing.T) {
	svc, _, _ := testRequestService(t)
	ctx := context.Background()

	first := validRequest()
	first.Subject = "Certificado de asistencia"
	_, err := svc.Submit(ctx, first, nil)
	require.NoError(t, err)

	second := validRequest()
	second.RequesterName = "carlos ruiz"
	second.Type = TypeTechnical
	second.Subject = "Acceso a la plataforma"
	_, err = svc.Submit(ctx, second, nil)
	require.NoError(t, err)

	byType, err := svc.Search(ctx, SearchFilter{Type: TypeTechnical})
	require.NoError(t, err)
	require.Len(t, byType, 1)
	assert.Equal(t, "carlos ruiz", byType[0].RequesterName)

	byQuery, err := svc.Search(ctx, SearchFilter{Query: "certificado"})
	require.NoError(t, err)
	require.Len(t, byQuery, 1)
	assert.Equal(t, "maria lopez", byQuery[0].RequesterName)

	all, err := svc.Search(ctx, SearchFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestDeleteRequest(t *testing.T) {
	svc, _, _ := testRequestService(t)
	ctx := context.Background()

	created, err := svc.Submit(ctx, validRequest(), nil)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
