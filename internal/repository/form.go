package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bigkaa/vehicle-intake/internal/domain/model"
)

// FormRepository: интерфейс CRUD для таблицы forms.
type FormRepository interface {
	// Create сохраняет форму, заполняя ID и CreatedAt.
	Create(ctx context.Context, f *model.Form) error
	// GetByID возвращает форму по UUID.
	GetByID(ctx context.Context, id string) (*model.Form, error)
	// List возвращает краткий список всех форм в порядке создания.
	List(ctx context.Context) ([]model.FormSummary, error)
	// Update полностью заменяет name и fields. CreatedAt не меняется.
	Update(ctx context.Context, f *model.Form) error
	// Delete удаляет форму.
	Delete(ctx context.Context, id string) error
	// Count возвращает количество форм.
	Count(ctx context.Context) (int, error)
}

// formRepo: реализация FormRepository.
type formRepo struct {
	db DBTX
}

// NewFormRepository создаёт репозиторий форм.
func NewFormRepository(db DBTX) FormRepository {
	return &formRepo{db: db}
}

func (r *formRepo) Create(ctx context.Context, f *model.Form) error {
	fields, err := encodeFields(f.Fields)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO forms (name, fields)
		VALUES ($1, $2)
		RETURNING id, created_at`

	if err := r.db.QueryRow(ctx, query, f.Name, fields).Scan(&f.ID, &f.CreatedAt); err != nil {
		return fmt.Errorf("ошибка создания формы: %w", err)
	}
	return nil
}

func (r *formRepo) GetByID(ctx context.Context, id string) (*model.Form, error) {
	query := `
		SELECT id, name, fields, created_at
		FROM forms
		WHERE id = $1`

	f := &model.Form{}
	var fields []byte
	err := r.db.QueryRow(ctx, query, id).Scan(&f.ID, &f.Name, &fields, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения формы: %w", err)
	}

	if f.Fields, err = decodeFields(fields); err != nil {
		return nil, err
	}
	return f, nil
}

func (r *formRepo) List(ctx context.Context) ([]model.FormSummary, error) {
	query := `
		SELECT id, name
		FROM forms
		ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка форм: %w", err)
	}
	defer rows.Close()

	result := make([]model.FormSummary, 0)
	for rows.Next() {
		var s model.FormSummary
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, fmt.Errorf("ошибка сканирования формы: %w", err)
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка итерации форм: %w", err)
	}
	return result, nil
}

func (r *formRepo) Update(ctx context.Context, f *model.Form) error {
	fields, err := encodeFields(f.Fields)
	if err != nil {
		return err
	}

	query := `
		UPDATE forms
		SET name = $2, fields = $3
		WHERE id = $1
		RETURNING created_at`

	err = r.db.QueryRow(ctx, query, f.ID, f.Name, fields).Scan(&f.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("ошибка обновления формы: %w", err)
	}
	return nil
}

func (r *formRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM forms WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления формы: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *formRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM forms`).Scan(&n); err != nil {
		return 0, fmt.Errorf("ошибка подсчёта форм: %w", err)
	}
	return n, nil
}

// encodeFields сериализует поля для JSONB. nil превращается в пустой массив.
func encodeFields(fields []model.Field) ([]byte, error) {
	if fields == nil {
		fields = []model.Field{}
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации полей формы: %w", err)
	}
	return data, nil
}

func decodeFields(data []byte) ([]model.Field, error) {
	fields := []model.Field{}
	if len(data) == 0 {
		return fields, nil
	}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("ошибка разбора полей формы: %w", err)
	}
	return fields, nil
}
