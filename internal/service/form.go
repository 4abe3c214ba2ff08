// form.go: сервис форм.
// CRUD форм и каскадное удаление заявок и их файлов.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bigkaa/vehicle-intake/internal/domain/model"
	"github.com/bigkaa/vehicle-intake/internal/repository"
)

// FormService: сервис форм.
type FormService struct {
	formRepo       repository.FormRepository
	submissionRepo repository.SubmissionRepository
	blobs          BlobStore
	logger         *slog.Logger
}

// NewFormService создаёт сервис форм.
func NewFormService(
	formRepo repository.FormRepository,
	submissionRepo repository.SubmissionRepository,
	blobs BlobStore,
	logger *slog.Logger,
) *FormService {
	return &FormService{
		formRepo:       formRepo,
		submissionRepo: submissionRepo,
		blobs:          blobs,
		logger:         logger.With(slog.String("component", "form_service")),
	}
}

// DeleteFormResult: итог каскадного удаления формы.
type DeleteFormResult struct {
	// FormDeleted: false, если формы уже не было
	FormDeleted bool
	// Submissions: количество удалённых заявок
	Submissions int64
	// BlobsFailed: количество файлов, которые не удалось удалить
	BlobsFailed int
}

// List возвращает все формы в порядке создания.
func (s *FormService) List(ctx context.Context) ([]model.FormSummary, error) {
	forms, err := s.formRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("список форм: %w", err)
	}
	return forms, nil
}

// Get возвращает форму по ID.
func (s *FormService) Get(ctx context.Context, id string) (*model.Form, error) {
	formID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	form, err := s.formRepo.GetByID(ctx, formID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: форма %s", ErrNotFound, formID)
		}
		return nil, fmt.Errorf("получение формы: %w", err)
	}
	return form, nil
}

// Create проверяет и сохраняет новую форму.
func (s *FormService) Create(ctx context.Context, name string, fields []model.Field) (*model.Form, error) {
	fields, err := validateForm(name, fields)
	if err != nil {
		return nil, err
	}

	form := &model.Form{Name: name, Fields: fields}
	if err := s.formRepo.Create(ctx, form); err != nil {
		return nil, fmt.Errorf("создание формы: %w", err)
	}

	s.logger.Info("Форма создана",
		slog.String("form_id", form.ID),
		slog.String("name", form.Name),
		slog.Int("fields", len(form.Fields)),
	)
	return form, nil
}

// Update полностью заменяет название и поля формы.
func (s *FormService) Update(ctx context.Context, id, name string, fields []model.Field) (*model.Form, error) {
	formID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	fields, err = validateForm(name, fields)
	if err != nil {
		return nil, err
	}

	form := &model.Form{ID: formID, Name: name, Fields: fields}
	if err := s.formRepo.Update(ctx, form); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: форма %s", ErrNotFound, formID)
		}
		return nil, fmt.Errorf("обновление формы: %w", err)
	}

	s.logger.Info("Форма обновлена",
		slog.String("form_id", form.ID),
		slog.Int("fields", len(form.Fields)),
	)
	return form, nil
}

// Delete удаляет форму вместе с заявками и их файлами.
// Порядок: сбор заявок → удаление файлов (best-effort) → удаление заявок → удаление формы.
// Операция идемпотентна: отсутствие формы не считается ошибкой.
// Транзакция не используется, сбой между шагами оставляет частичный результат.
func (s *FormService) Delete(ctx context.Context, id string) (*DeleteFormResult, error) {
	formID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	subs, err := s.submissionRepo.List(ctx, repository.SubmissionFilters{FormID: &formID})
	if err != nil {
		return nil, fmt.Errorf("получение заявок формы: %w", err)
	}

	var photos []string
	for _, sub := range subs {
		photos = append(photos, sub.Photos...)
	}

	result := &DeleteFormResult{}
	result.BlobsFailed = removeBlobs(ctx, s.blobs, s.logger, photos)

	result.Submissions, err = s.submissionRepo.DeleteByForm(ctx, formID)
	if err != nil {
		return nil, fmt.Errorf("удаление заявок формы: %w", err)
	}

	err = s.formRepo.Delete(ctx, formID)
	switch {
	case err == nil:
		result.FormDeleted = true
	case errors.Is(err, repository.ErrNotFound):
		s.logger.Debug("Форма уже удалена", slog.String("form_id", formID))
	default:
		return nil, fmt.Errorf("удаление формы: %w", err)
	}

	s.logger.Info("Форма удалена",
		slog.String("form_id", formID),
		slog.Bool("existed", result.FormDeleted),
		slog.Int64("submissions", result.Submissions),
		slog.Int("photos", len(photos)),
		slog.Int("photos_failed", result.BlobsFailed),
	)
	return result, nil
}

// validateForm проверяет название и поля формы.
// Название из одних пробелов считается пустым, но хранится как передано.
func validateForm(name string, fields []model.Field) ([]model.Field, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: название формы обязательно", ErrValidation)
	}

	for i, f := range fields {
		if strings.TrimSpace(f.Label) == "" {
			return nil, fmt.Errorf("%w: поле #%d: label обязателен", ErrValidation, i+1)
		}
		if !f.Type.Valid() {
			return nil, fmt.Errorf("%w: поле %q: недопустимый тип %q", ErrValidation, f.Label, f.Type)
		}
	}

	if fields == nil {
		fields = []model.Field{}
	}
	return fields, nil
}
