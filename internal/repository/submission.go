package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/bigkaa/vehicle-intake/internal/domain/model"
)

// SubmissionRepository: интерфейс CRUD для таблицы submissions.
type SubmissionRepository interface {
	// Create сохраняет заявку, заполняя ID (если пуст) и SubmittedAt.
	Create(ctx context.Context, s *model.Submission) error
	// GetByID возвращает заявку по UUID.
	GetByID(ctx context.Context, id string) (*model.Submission, error)
	// List возвращает заявки по фильтру, новые первыми.
	List(ctx context.Context, filters SubmissionFilters) ([]*model.Submission, error)
	// UpdateNotes заменяет только заметки и возвращает обновлённую заявку.
	UpdateNotes(ctx context.Context, id, notes string) (*model.Submission, error)
	// Delete удаляет заявку.
	Delete(ctx context.Context, id string) error
	// DeleteByForm удаляет все заявки формы одним запросом.
	DeleteByForm(ctx context.Context, formID string) (int64, error)
	// Stats возвращает счётчики заявок и фотографий.
	Stats(ctx context.Context) (*model.Stats, error)
}

// SubmissionFilters: фильтры для списка заявок.
type SubmissionFilters struct {
	FormID *string
}

// submissionRepo: реализация SubmissionRepository.
type submissionRepo struct {
	db DBTX
}

// NewSubmissionRepository создаёт репозиторий заявок.
func NewSubmissionRepository(db DBTX) SubmissionRepository {
	return &submissionRepo{db: db}
}

// submissionColumns: колонки таблицы submissions в порядке сканирования.
const submissionColumns = `id, form_id, answers, photos, notes, submitted_at`

func (r *submissionRepo) Create(ctx context.Context, s *model.Submission) error {
	answers, err := encodeAnswers(s.Answers)
	if err != nil {
		return err
	}
	if s.Photos == nil {
		s.Photos = []string{}
	}

	query := `
		INSERT INTO submissions (form_id, answers, photos, notes)
		VALUES ($1, $2, $3, $4)
		RETURNING id, submitted_at`

	err = r.db.QueryRow(ctx, query, s.FormID, answers, s.Photos, s.Notes).Scan(&s.ID, &s.SubmittedAt)
	if err != nil {
		return fmt.Errorf("ошибка создания заявки: %w", err)
	}
	return nil
}

func (r *submissionRepo) GetByID(ctx context.Context, id string) (*model.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE id = $1`

	s, err := scanSubmission(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения заявки: %w", err)
	}
	return s, nil
}

// buildSubmissionWhere строит WHERE-условие и аргументы для фильтрации заявок.
func buildSubmissionWhere(filters SubmissionFilters, startArg int) (string, []any) {
	var conditions []string
	var args []any
	argNum := startArg

	if filters.FormID != nil {
		conditions = append(conditions, fmt.Sprintf("form_id = $%d", argNum))
		args = append(args, *filters.FormID)
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}
	return where, args
}

func (r *submissionRepo) List(ctx context.Context, filters SubmissionFilters) ([]*model.Submission, error) {
	where, args := buildSubmissionWhere(filters, 1)

	query := fmt.Sprintf(`
		SELECT %s
		FROM submissions
		%s
		ORDER BY submitted_at DESC, id`, submissionColumns, where)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка заявок: %w", err)
	}
	defer rows.Close()

	result := make([]*model.Submission, 0)
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования заявки: %w", err)
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка итерации заявок: %w", err)
	}
	return result, nil
}

func (r *submissionRepo) UpdateNotes(ctx context.Context, id, notes string) (*model.Submission, error) {
	query := `
		UPDATE submissions
		SET notes = $2
		WHERE id = $1
		RETURNING ` + submissionColumns

	s, err := scanSubmission(r.db.QueryRow(ctx, query, id, notes))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка обновления заметок: %w", err)
	}
	return s, nil
}

func (r *submissionRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM submissions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления заявки: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *submissionRepo) DeleteByForm(ctx context.Context, formID string) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM submissions WHERE form_id = $1`, formID)
	if err != nil {
		return 0, fmt.Errorf("ошибка удаления заявок формы: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *submissionRepo) Stats(ctx context.Context) (*model.Stats, error) {
	query := `
		SELECT COUNT(*),
			COALESCE(SUM(cardinality(photos)), 0),
			MAX(submitted_at)
		FROM submissions`

	st := &model.Stats{}
	if err := r.db.QueryRow(ctx, query).Scan(&st.Submissions, &st.Photos, &st.LastSubmissionAt); err != nil {
		return nil, fmt.Errorf("ошибка получения статистики заявок: %w", err)
	}
	return st, nil
}

// scanSubmission сканирует одну строку submissionColumns.
func scanSubmission(row pgx.Row) (*model.Submission, error) {
	s := &model.Submission{}
	var answers []byte
	if err := row.Scan(&s.ID, &s.FormID, &answers, &s.Photos, &s.Notes, &s.SubmittedAt); err != nil {
		return nil, err
	}

	s.Answers = model.Answers{}
	if len(answers) > 0 {
		if err := json.Unmarshal(answers, &s.Answers); err != nil {
			return nil, fmt.Errorf("ошибка разбора ответов: %w", err)
		}
	}
	if s.Photos == nil {
		s.Photos = []string{}
	}
	return s, nil
}

// encodeAnswers сериализует ответы для JSONB. nil превращается в пустой объект.
func encodeAnswers(answers model.Answers) ([]byte, error) {
	if answers == nil {
		answers = model.Answers{}
	}
	data, err := json.Marshal(answers)
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации ответов: %w", err)
	}
	return data, nil
}
