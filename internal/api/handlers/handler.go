// handler.go: основной обработчик API, реализующий api.ServerInterface.
// Объединяет health, формы, заявки и сводку, делегируя запросы в сервисный слой.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/bigkaa/vehicle-intake/internal/api"
	apierrors "github.com/bigkaa/vehicle-intake/internal/api/errors"
	"github.com/bigkaa/vehicle-intake/internal/domain/model"
	"github.com/bigkaa/vehicle-intake/internal/service"
)

var _ api.ServerInterface = (*APIHandler)(nil)

// APIHandler: основной обработчик API.
type APIHandler struct {
	health        *HealthHandler
	forms         *service.FormService
	submissions   *service.SubmissionService
	maxUploadSize int64
	logger        *slog.Logger
}

// NewAPIHandler создаёт основной обработчик API.
// maxUploadSize ограничивает размер multipart-запроса создания заявки.
func NewAPIHandler(
	health *HealthHandler,
	forms *service.FormService,
	submissions *service.SubmissionService,
	maxUploadSize int64,
	logger *slog.Logger,
) *APIHandler {
	return &APIHandler{
		health:        health,
		forms:         forms,
		submissions:   submissions,
		maxUploadSize: maxUploadSize,
		logger:        logger.With(slog.String("component", "api_handler")),
	}
}

// HealthLive: liveness probe (делегируется в HealthHandler).
func (h *APIHandler) HealthLive(w http.ResponseWriter, r *http.Request) {
	h.health.HealthLive(w, r)
}

// HealthReady: readiness probe (делегируется в HealthHandler).
func (h *APIHandler) HealthReady(w http.ResponseWriter, r *http.Request) {
	h.health.HealthReady(w, r)
}

// GetMetrics: Prometheus метрики (делегируется в HealthHandler).
func (h *APIHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.health.GetMetrics(w, r)
}

// --- Вспомогательные функции ---

// writeJSON записывает JSON-ответ с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeServiceError переводит ошибку сервиса в HTTP-ответ.
// Неизвестные ошибки логируются и отдаются клиенту как 500 с сообщением fallback.
func (h *APIHandler) writeServiceError(w http.ResponseWriter, err error, notFoundMsg, fallback string) {
	switch {
	case errors.Is(err, service.ErrInvalidID):
		apierrors.ValidationError(w, "Некорректный идентификатор")
	case errors.Is(err, service.ErrValidation):
		apierrors.ValidationError(w, err.Error())
	case errors.Is(err, service.ErrNotFound):
		apierrors.NotFound(w, notFoundMsg)
	default:
		h.logger.Error(fallback, slog.String("error", err.Error()))
		apierrors.InternalError(w, fallback)
	}
}

// decodeJSON разбирает JSON-тело запроса в dst.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	return dec.Decode(dst)
}

func toUUID(id string) openapi_types.UUID {
	parsed, _ := uuid.Parse(id)
	return parsed
}

func toAPIFields(fields []model.Field) []api.FieldDefinition {
	out := make([]api.FieldDefinition, 0, len(fields))
	for _, f := range fields {
		out = append(out, api.FieldDefinition{
			Label:    f.Label,
			Type:     api.FieldType(f.Type),
			Required: f.Required,
		})
	}
	return out
}

func fromAPIFields(fields []api.FieldDefinition) []model.Field {
	out := make([]model.Field, 0, len(fields))
	for _, f := range fields {
		out = append(out, model.Field{
			Label:    f.Label,
			Type:     model.FieldType(f.Type),
			Required: f.Required,
		})
	}
	return out
}

func toAPIForm(f *model.Form) api.Form {
	return api.Form{
		Id:        toUUID(f.ID),
		Name:      f.Name,
		Fields:    toAPIFields(f.Fields),
		CreatedAt: f.CreatedAt,
	}
}

func toAPISubmission(s *model.Submission) (api.Submission, error) {
	answers := make(api.Answers, len(s.Answers))
	for label, a := range s.Answers {
		raw, err := json.Marshal(a)
		if err != nil {
			return api.Submission{}, err
		}
		answers[label] = raw
	}

	photos := s.Photos
	if photos == nil {
		photos = []string{}
	}

	return api.Submission{
		Id:          toUUID(s.ID),
		Form:        toUUID(s.FormID),
		Answers:     answers,
		Photos:      photos,
		Notes:       s.Notes,
		SubmittedAt: s.SubmittedAt,
	}, nil
}
