package service

import (
	"context"
	"io"
	"strings"

	"github.com/bigkaa/vehicle-intake/internal/domain/model"
	"github.com/bigkaa/vehicle-intake/internal/repository"
	"github.com/bigkaa/vehicle-intake/internal/storage/filestore"
)

// --- Mock repositories ---

// mockFormRepo: мок FormRepository для unit-тестов.
type mockFormRepo struct {
	createFn  func(ctx context.Context, f *model.Form) error
	getByIDFn func(ctx context.Context, id string) (*model.Form, error)
	listFn    func(ctx context.Context) ([]model.FormSummary, error)
	updateFn  func(ctx context.Context, f *model.Form) error
	deleteFn  func(ctx context.Context, id string) error
	countFn   func(ctx context.Context) (int, error)
}

func (m *mockFormRepo) Create(ctx context.Context, f *model.Form) error {
	if m.createFn != nil {
		return m.createFn(ctx, f)
	}
	return nil
}

func (m *mockFormRepo) GetByID(ctx context.Context, id string) (*model.Form, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, repository.ErrNotFound
}

func (m *mockFormRepo) List(ctx context.Context) ([]model.FormSummary, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return []model.FormSummary{}, nil
}

func (m *mockFormRepo) Update(ctx context.Context, f *model.Form) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, f)
	}
	return repository.ErrNotFound
}

func (m *mockFormRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return repository.ErrNotFound
}

func (m *mockFormRepo) Count(ctx context.Context) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return 0, nil
}

// mockSubmissionRepo: мок SubmissionRepository для unit-тестов.
type mockSubmissionRepo struct {
	createFn       func(ctx context.Context, s *model.Submission) error
	getByIDFn      func(ctx context.Context, id string) (*model.Submission, error)
	listFn         func(ctx context.Context, filters repository.SubmissionFilters) ([]*model.Submission, error)
	updateNotesFn  func(ctx context.Context, id, notes string) (*model.Submission, error)
	deleteFn       func(ctx context.Context, id string) error
	deleteByFormFn func(ctx context.Context, formID string) (int64, error)
	statsFn        func(ctx context.Context) (*model.Stats, error)
}

func (m *mockSubmissionRepo) Create(ctx context.Context, s *model.Submission) error {
	if m.createFn != nil {
		return m.createFn(ctx, s)
	}
	return nil
}

func (m *mockSubmissionRepo) GetByID(ctx context.Context, id string) (*model.Submission, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, repository.ErrNotFound
}

func (m *mockSubmissionRepo) List(ctx context.Context, filters repository.SubmissionFilters) ([]*model.Submission, error) {
	if m.listFn != nil {
		return m.listFn(ctx, filters)
	}
	return []*model.Submission{}, nil
}

func (m *mockSubmissionRepo) UpdateNotes(ctx context.Context, id, notes string) (*model.Submission, error) {
	if m.updateNotesFn != nil {
		return m.updateNotesFn(ctx, id, notes)
	}
	return nil, repository.ErrNotFound
}

func (m *mockSubmissionRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return repository.ErrNotFound
}

func (m *mockSubmissionRepo) DeleteByForm(ctx context.Context, formID string) (int64, error) {
	if m.deleteByFormFn != nil {
		return m.deleteByFormFn(ctx, formID)
	}
	return 0, nil
}

func (m *mockSubmissionRepo) Stats(ctx context.Context) (*model.Stats, error) {
	if m.statsFn != nil {
		return m.statsFn(ctx)
	}
	return &model.Stats{}, nil
}

// --- Mock blob store ---

// mockBlobStore: мок BlobStore, запоминает сохранённые и удалённые пути.
type mockBlobStore struct {
	saveFn   func(reader io.Reader, name string) (*filestore.SaveResult, error)
	deleteFn func(path string) error

	saved   []string
	deleted []string
}

func (m *mockBlobStore) SaveFile(reader io.Reader, name string) (*filestore.SaveResult, error) {
	if m.saveFn != nil {
		return m.saveFn(reader, name)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	p := "uploads/1760000000000-" + strings.ReplaceAll(name, " ", "-")
	m.saved = append(m.saved, p)
	return &filestore.SaveResult{StoragePath: p, Size: int64(len(data))}, nil
}

func (m *mockBlobStore) DeleteFile(path string) error {
	m.deleted = append(m.deleted, path)
	if m.deleteFn != nil {
		return m.deleteFn(path)
	}
	return nil
}

// upload создаёт Upload с содержимым content.
func upload(name, content string) Upload {
	return Upload{
		Filename: name,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(content)), nil
		},
	}
}
