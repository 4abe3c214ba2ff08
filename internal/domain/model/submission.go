package model

import "time"

// Submission: заполненная анкета. Хранится в таблице submissions.
type Submission struct {
	// ID: UUID, генерируется базой
	ID string
	// FormID: UUID формы-владельца (без внешнего ключа)
	FormID string
	// Answers: ответы по label поля
	Answers Answers
	// Photos: пути в хранилище файлов, в порядке загрузки
	Photos []string
	// Notes: заметки администратора
	Notes string
	// SubmittedAt: время отправки
	SubmittedAt time.Time
}

// Stats: сводка для дашборда.
type Stats struct {
	Forms            int
	Submissions      int
	Photos           int
	LastSubmissionAt *time.Time
}
