package service

import (
	"fmt"

	"github.com/google/uuid"
)

// parseID проверяет, что id является UUID, и возвращает его каноническую форму.
func parseID(id string) (string, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return u.String(), nil
}
