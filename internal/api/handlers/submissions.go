package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/bigkaa/vehicle-intake/internal/api"
	apierrors "github.com/bigkaa/vehicle-intake/internal/api/errors"
	"github.com/bigkaa/vehicle-intake/internal/domain/model"
	"github.com/bigkaa/vehicle-intake/internal/service"
)

const (
	// multipartMemory: часть multipart-запроса, которая держится в памяти,
	// остальное уходит во временные файлы.
	multipartMemory = 8 << 20

	dataField   = "data"
	photosField = "photos"
)

// CreateSubmission: POST /api/forms/{id}/submissions (multipart/form-data).
// Поле data содержит JSON с ответами, поле photos: файлы фотографий.
func (h *APIHandler) CreateSubmission(w http.ResponseWriter, r *http.Request, id openapi_types.UUID) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			apierrors.PayloadTooLarge(w, "Превышен допустимый размер загрузки")
			return
		}
		apierrors.ValidationError(w, "Ожидается multipart/form-data: "+err.Error())
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	var data string
	if values := r.MultipartForm.Value[dataField]; len(values) > 0 {
		data = values[0]
	}

	files := r.MultipartForm.File[photosField]
	uploads := make([]service.Upload, 0, len(files))
	for _, fh := range files {
		uploads = append(uploads, fileUpload(fh))
	}

	sub, err := h.submissions.Create(r.Context(), id.String(), data, uploads)
	if err != nil {
		h.writeServiceError(w, err, "Форма не найдена", "Ошибка создания заявки")
		return
	}

	h.writeSubmission(w, http.StatusCreated, sub)
}

// ListSubmissions: GET /api/submissions, необязательный фильтр ?form=<id>.
func (h *APIHandler) ListSubmissions(w http.ResponseWriter, r *http.Request, params api.ListSubmissionsParams) {
	var formID *string
	if params.Form != nil {
		s := params.Form.String()
		formID = &s
	}

	subs, err := h.submissions.List(r.Context(), formID)
	if err != nil {
		h.writeServiceError(w, err, "", "Ошибка получения списка заявок")
		return
	}

	items := make([]api.Submission, 0, len(subs))
	for _, s := range subs {
		item, err := toAPISubmission(s)
		if err != nil {
			h.writeServiceError(w, err, "", "Ошибка получения списка заявок")
			return
		}
		items = append(items, item)
	}
	writeJSON(w, http.StatusOK, items)
}

// GetSubmission: GET /api/submissions/{id}.
func (h *APIHandler) GetSubmission(w http.ResponseWriter, r *http.Request, id openapi_types.UUID) {
	sub, err := h.submissions.Get(r.Context(), id.String())
	if err != nil {
		h.writeServiceError(w, err, "Заявка не найдена", "Ошибка получения заявки")
		return
	}

	h.writeSubmission(w, http.StatusOK, sub)
}

// UpdateSubmissionNotes: PUT /api/submissions/{id}/notes.
// Отсутствующие или null заметки очищают поле.
func (h *APIHandler) UpdateSubmissionNotes(w http.ResponseWriter, r *http.Request, id openapi_types.UUID) {
	var body api.NotesInput
	if err := decodeJSON(r, &body); err != nil {
		apierrors.ValidationError(w, "Некорректный JSON: "+err.Error())
		return
	}

	var notes string
	if body.Notes != nil {
		notes = *body.Notes
	}

	sub, err := h.submissions.UpdateNotes(r.Context(), id.String(), notes)
	if err != nil {
		h.writeServiceError(w, err, "Заявка не найдена", "Ошибка обновления заметок")
		return
	}

	h.writeSubmission(w, http.StatusOK, sub)
}

// DeleteSubmission: DELETE /api/submissions/{id}.
func (h *APIHandler) DeleteSubmission(w http.ResponseWriter, r *http.Request, id openapi_types.UUID) {
	if err := h.submissions.Delete(r.Context(), id.String()); err != nil {
		h.writeServiceError(w, err, "Заявка не найдена", "Ошибка удаления заявки")
		return
	}

	writeJSON(w, http.StatusOK, api.Message{Message: "Заявка удалена"})
}

func (h *APIHandler) writeSubmission(w http.ResponseWriter, status int, sub *model.Submission) {
	resp, err := toAPISubmission(sub)
	if err != nil {
		h.writeServiceError(w, err, "", "Ошибка формирования ответа")
		return
	}
	writeJSON(w, status, resp)
}

func fileUpload(fh *multipart.FileHeader) service.Upload {
	return service.Upload{
		Filename: fh.Filename,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}
