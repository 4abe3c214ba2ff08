// submission.go: сервис заявок.
// Создание заявки с загрузкой фотографий, список, заметки, удаление и сводка.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/bigkaa/vehicle-intake/internal/domain/model"
	"github.com/bigkaa/vehicle-intake/internal/repository"
)

// Upload: загруженный файл из multipart-запроса.
// Open вызывается только после успешной проверки заявки.
type Upload struct {
	Filename string
	Open     func() (io.ReadCloser, error)
}

// SubmissionService: сервис заявок.
type SubmissionService struct {
	formRepo       repository.FormRepository
	submissionRepo repository.SubmissionRepository
	blobs          BlobStore
	logger         *slog.Logger
}

// NewSubmissionService создаёт сервис заявок.
func NewSubmissionService(
	formRepo repository.FormRepository,
	submissionRepo repository.SubmissionRepository,
	blobs BlobStore,
	logger *slog.Logger,
) *SubmissionService {
	return &SubmissionService{
		formRepo:       formRepo,
		submissionRepo: submissionRepo,
		blobs:          blobs,
		logger:         logger.With(slog.String("component", "submission_service")),
	}
}

// Create создаёт заявку по форме formID.
//
// Шаги: разбор data → проверка формы → проверка ответов → сохранение файлов → запись заявки.
// Если запись в базу не удалась, уже сохранённые файлы остаются на диске.
func (s *SubmissionService) Create(ctx context.Context, formID, data string, uploads []Upload) (*model.Submission, error) {
	payload, err := parseSubmissionData(data)
	if err != nil {
		return nil, err
	}

	id, err := parseID(formID)
	if err != nil {
		return nil, err
	}

	form, err := s.formRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: форма %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("получение формы: %w", err)
	}

	if err := validateAnswers(form.Fields, payload.Answers); err != nil {
		return nil, err
	}

	photos, err := s.saveUploads(ctx, uploads)
	if err != nil {
		return nil, err
	}

	sub := &model.Submission{
		FormID:  form.ID,
		Answers: payload.Answers,
		Photos:  photos,
	}
	if payload.Notes != nil {
		sub.Notes = *payload.Notes
	}

	if err := s.submissionRepo.Create(ctx, sub); err != nil {
		if len(photos) > 0 {
			s.logger.Warn("Заявка не сохранена, файлы остались без владельца",
				slog.String("form_id", form.ID),
				slog.Any("photos", photos),
			)
		}
		return nil, fmt.Errorf("создание заявки: %w", err)
	}

	s.logger.Info("Заявка создана",
		slog.String("submission_id", sub.ID),
		slog.String("form_id", sub.FormID),
		slog.Int("answers", len(sub.Answers)),
		slog.Int("photos", len(sub.Photos)),
	)
	return sub, nil
}

// saveUploads сохраняет файлы в хранилище в порядке загрузки.
// При ошибке уже сохранённые файлы этого запроса удаляются.
func (s *SubmissionService) saveUploads(ctx context.Context, uploads []Upload) ([]string, error) {
	photos := make([]string, 0, len(uploads))
	for _, u := range uploads {
		path, err := s.saveUpload(u)
		if err != nil {
			removeBlobs(ctx, s.blobs, s.logger, photos)
			return nil, fmt.Errorf("сохранение файла %q: %w", u.Filename, err)
		}
		photos = append(photos, path)
	}
	return photos, nil
}

func (s *SubmissionService) saveUpload(u Upload) (string, error) {
	rc, err := u.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	res, err := s.blobs.SaveFile(rc, u.Filename)
	if err != nil {
		return "", err
	}
	blobsSaved.Inc()

	s.logger.Debug("Файл сохранён",
		slog.String("path", res.StoragePath),
		slog.Int64("size", res.Size),
		slog.String("checksum", res.Checksum),
	)
	return res.StoragePath, nil
}

// Get возвращает заявку по ID.
func (s *SubmissionService) Get(ctx context.Context, id string) (*model.Submission, error) {
	subID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	sub, err := s.submissionRepo.GetByID(ctx, subID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: заявка %s", ErrNotFound, subID)
		}
		return nil, fmt.Errorf("получение заявки: %w", err)
	}
	return sub, nil
}

// List возвращает заявки, новые первыми. formID == nil: все формы.
func (s *SubmissionService) List(ctx context.Context, formID *string) ([]*model.Submission, error) {
	filters := repository.SubmissionFilters{}
	if formID != nil {
		id, err := parseID(*formID)
		if err != nil {
			return nil, err
		}
		filters.FormID = &id
	}

	subs, err := s.submissionRepo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("список заявок: %w", err)
	}
	return subs, nil
}

// UpdateNotes заменяет заметки заявки. Остальные поля не меняются.
func (s *SubmissionService) UpdateNotes(ctx context.Context, id, notes string) (*model.Submission, error) {
	subID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	sub, err := s.submissionRepo.UpdateNotes(ctx, subID, notes)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: заявка %s", ErrNotFound, subID)
		}
		return nil, fmt.Errorf("обновление заметок: %w", err)
	}

	s.logger.Info("Заметки обновлены",
		slog.String("submission_id", sub.ID),
		slog.Int("length", len(notes)),
	)
	return sub, nil
}

// Delete удаляет заявку и её файлы.
// Файлы удаляются best-effort до удаления записи.
func (s *SubmissionService) Delete(ctx context.Context, id string) error {
	subID, err := parseID(id)
	if err != nil {
		return err
	}

	sub, err := s.submissionRepo.GetByID(ctx, subID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: заявка %s", ErrNotFound, subID)
		}
		return fmt.Errorf("получение заявки: %w", err)
	}

	failed := removeBlobs(ctx, s.blobs, s.logger, sub.Photos)

	if err := s.submissionRepo.Delete(ctx, subID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: заявка %s", ErrNotFound, subID)
		}
		return fmt.Errorf("удаление заявки: %w", err)
	}

	s.logger.Info("Заявка удалена",
		slog.String("submission_id", subID),
		slog.Int("photos", len(sub.Photos)),
		slog.Int("photos_failed", failed),
	)
	return nil
}

// Stats возвращает сводку для дашборда.
func (s *SubmissionService) Stats(ctx context.Context) (*model.Stats, error) {
	st, err := s.submissionRepo.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("статистика заявок: %w", err)
	}
	st.Forms, err = s.formRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("количество форм: %w", err)
	}
	return st, nil
}
