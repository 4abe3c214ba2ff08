// errors.go: ошибки бизнес-логики сервисного слоя.
package service

import "errors"

var (
	// ErrNotFound: форма или заявка не найдена.
	ErrNotFound = errors.New("ресурс не найден")
	// ErrValidation: ошибка валидации входных данных.
	ErrValidation = errors.New("ошибка валидации")
	// ErrInvalidID: идентификатор не является UUID.
	ErrInvalidID = errors.New("некорректный идентификатор")
)
