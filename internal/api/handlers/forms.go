package handlers

import (
	"log/slog"
	"net/http"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/bigkaa/vehicle-intake/internal/api"
	apierrors "github.com/bigkaa/vehicle-intake/internal/api/errors"
)

// ListForms: GET /api/forms.
func (h *APIHandler) ListForms(w http.ResponseWriter, r *http.Request) {
	forms, err := h.forms.List(r.Context())
	if err != nil {
		h.writeServiceError(w, err, "", "Ошибка получения списка форм")
		return
	}

	items := make([]api.FormSummary, 0, len(forms))
	for _, f := range forms {
		items = append(items, api.FormSummary{Id: toUUID(f.ID), Name: f.Name})
	}
	writeJSON(w, http.StatusOK, items)
}

// CreateForm: POST /api/forms.
func (h *APIHandler) CreateForm(w http.ResponseWriter, r *http.Request) {
	var body api.FormInput
	if err := decodeJSON(r, &body); err != nil {
		apierrors.ValidationError(w, "Некорректный JSON: "+err.Error())
		return
	}

	form, err := h.forms.Create(r.Context(), body.Name, fromAPIFields(body.Fields))
	if err != nil {
		h.writeServiceError(w, err, "", "Ошибка создания формы")
		return
	}

	writeJSON(w, http.StatusCreated, toAPIForm(form))
}

// GetForm: GET /api/forms/{id}.
func (h *APIHandler) GetForm(w http.ResponseWriter, r *http.Request, id openapi_types.UUID) {
	form, err := h.forms.Get(r.Context(), id.String())
	if err != nil {
		h.writeServiceError(w, err, "Форма не найдена", "Ошибка получения формы")
		return
	}

	writeJSON(w, http.StatusOK, toAPIForm(form))
}

// UpdateForm: PUT /api/forms/{id}. Полная замена name и fields.
func (h *APIHandler) UpdateForm(w http.ResponseWriter, r *http.Request, id openapi_types.UUID) {
	var body api.FormInput
	if err := decodeJSON(r, &body); err != nil {
		apierrors.ValidationError(w, "Некорректный JSON: "+err.Error())
		return
	}

	form, err := h.forms.Update(r.Context(), id.String(), body.Name, fromAPIFields(body.Fields))
	if err != nil {
		h.writeServiceError(w, err, "Форма не найдена", "Ошибка обновления формы")
		return
	}

	writeJSON(w, http.StatusOK, toAPIForm(form))
}

// DeleteForm: DELETE /api/forms/{id}.
// Удаляет форму, её заявки и их фотографии. Повторное удаление тоже успешно.
func (h *APIHandler) DeleteForm(w http.ResponseWriter, r *http.Request, id openapi_types.UUID) {
	result, err := h.forms.Delete(r.Context(), id.String())
	if err != nil {
		h.writeServiceError(w, err, "", "Ошибка удаления формы")
		return
	}

	if result.BlobsFailed > 0 {
		h.logger.Warn("Часть фотографий формы не удалена",
			slog.String("form_id", id.String()),
			slog.Int("failed", result.BlobsFailed),
		)
	}
	writeJSON(w, http.StatusOK, api.Message{Message: "Форма и связанные заявки удалены"})
}
