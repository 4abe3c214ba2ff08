package handlers

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/bigkaa/vehicle-intake/internal/domain/model"
	"github.com/bigkaa/vehicle-intake/internal/repository"
	"github.com/bigkaa/vehicle-intake/internal/service"
	"github.com/bigkaa/vehicle-intake/internal/storage/filestore"
)

// memStore: хранилище форм и заявок в памяти для тестов обработчиков.
type memStore struct {
	mu          sync.Mutex
	clock       time.Time
	forms       []*model.Form
	submissions []*model.Submission
	failList    error
}

func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

type memFormRepo struct{ *memStore }

func (r memFormRepo) Create(_ context.Context, f *model.Form) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f.ID = uuid.NewString()
	f.CreatedAt = r.tick()
	copied := *f
	r.forms = append(r.forms, &copied)
	return nil
}

func (r memFormRepo) GetByID(_ context.Context, id string) (*model.Form, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.forms {
		if f.ID == id {
			copied := *f
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r memFormRepo) List(_ context.Context) ([]model.FormSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failList != nil {
		return nil, r.failList
	}
	out := []model.FormSummary{}
	for _, f := range r.forms {
		out = append(out, model.FormSummary{ID: f.ID, Name: f.Name})
	}
	return out, nil
}

func (r memFormRepo) Update(_ context.Context, f *model.Form) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.forms {
		if existing.ID == f.ID {
			existing.Name = f.Name
			existing.Fields = f.Fields
			f.CreatedAt = existing.CreatedAt
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r memFormRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, f := range r.forms {
		if f.ID == id {
			r.forms = slices.Delete(r.forms, i, i+1)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r memFormRepo) Count(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.forms), nil
}

type memSubmissionRepo struct{ *memStore }

func (r memSubmissionRepo) Create(_ context.Context, s *model.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	s.SubmittedAt = r.tick()
	if s.Photos == nil {
		s.Photos = []string{}
	}
	copied := *s
	r.submissions = append(r.submissions, &copied)
	return nil
}

func (r memSubmissionRepo) GetByID(_ context.Context, id string) (*model.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.submissions {
		if s.ID == id {
			copied := *s
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

// List отдаёт новые заявки первыми.
func (r memSubmissionRepo) List(_ context.Context, f repository.SubmissionFilters) ([]*model.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.Submission{}
	for i := len(r.submissions) - 1; i >= 0; i-- {
		s := r.submissions[i]
		if f.FormID == nil || *f.FormID == s.FormID {
			copied := *s
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r memSubmissionRepo) UpdateNotes(_ context.Context, id, notes string) (*model.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.submissions {
		if s.ID == id {
			s.Notes = notes
			copied := *s
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r memSubmissionRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, s := range r.submissions {
		if s.ID == id {
			r.submissions = slices.Delete(r.submissions, i, i+1)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r memSubmissionRepo) DeleteByForm(_ context.Context, formID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	before := len(r.submissions)
	r.submissions = slices.DeleteFunc(r.submissions, func(s *model.Submission) bool {
		return s.FormID == formID
	})
	return int64(before - len(r.submissions)), nil
}

func (r memSubmissionRepo) Stats(_ context.Context) (*model.Stats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st := &model.Stats{Submissions: len(r.submissions)}
	for _, s := range r.submissions {
		st.Photos += len(s.Photos)
		if st.LastSubmissionAt == nil || s.SubmittedAt.After(*st.LastSubmissionAt) {
			at := s.SubmittedAt
			st.LastSubmissionAt = &at
		}
	}
	return st, nil
}

// testEnv: обработчик поверх настоящих сервисов, хранилища в памяти
// и файлового хранилища во временном каталоге.
type testEnv struct {
	store     *memStore
	uploadDir string
	handler   *APIHandler
}

func newTestEnv(t *testing.T, maxUploadSize int64) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	uploadDir := t.TempDir()
	files, err := filestore.New(uploadDir)
	if err != nil {
		t.Fatalf("filestore.New: %v", err)
	}

	store := &memStore{clock: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	forms := memFormRepo{store}
	subs := memSubmissionRepo{store}

	formSvc := service.NewFormService(forms, subs, files, logger)
	subSvc := service.NewSubmissionService(forms, subs, files, logger)
	health := NewHealthHandler(nil, uploadDir)

	return &testEnv{
		store:     store,
		uploadDir: uploadDir,
		handler:   NewAPIHandler(health, formSvc, subSvc, maxUploadSize, logger),
	}
}
