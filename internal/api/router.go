package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	apierrors "github.com/bigkaa/vehicle-intake/internal/api/errors"
)

// ServerInterface: обработчики всех операций openapi.yaml.
type ServerInterface interface {
	// GET /api/forms
	ListForms(w http.ResponseWriter, r *http.Request)
	// POST /api/forms
	CreateForm(w http.ResponseWriter, r *http.Request)
	// GET /api/forms/{id}
	GetForm(w http.ResponseWriter, r *http.Request, id openapi_types.UUID)
	// PUT /api/forms/{id}
	UpdateForm(w http.ResponseWriter, r *http.Request, id openapi_types.UUID)
	// DELETE /api/forms/{id}
	DeleteForm(w http.ResponseWriter, r *http.Request, id openapi_types.UUID)
	// POST /api/forms/{id}/submissions
	CreateSubmission(w http.ResponseWriter, r *http.Request, id openapi_types.UUID)
	// GET /api/submissions
	ListSubmissions(w http.ResponseWriter, r *http.Request, params ListSubmissionsParams)
	// GET /api/submissions/{id}
	GetSubmission(w http.ResponseWriter, r *http.Request, id openapi_types.UUID)
	// DELETE /api/submissions/{id}
	DeleteSubmission(w http.ResponseWriter, r *http.Request, id openapi_types.UUID)
	// PUT /api/submissions/{id}/notes
	UpdateSubmissionNotes(w http.ResponseWriter, r *http.Request, id openapi_types.UUID)
	// GET /api/stats
	GetStats(w http.ResponseWriter, r *http.Request)
	// GET /health/live
	HealthLive(w http.ResponseWriter, r *http.Request)
	// GET /health/ready
	HealthReady(w http.ResponseWriter, r *http.Request)
	// GET /metrics
	GetMetrics(w http.ResponseWriter, r *http.Request)
}

// InvalidParamFormatError: параметр запроса не удалось разобрать.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("некорректный параметр %q: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error {
	return e.Err
}

// ServerInterfaceWrapper разбирает параметры и вызывает ServerInterface.
// Ошибки разбора отдаются как 400 VALIDATION_ERROR.
type ServerInterfaceWrapper struct {
	Handler ServerInterface
}

func (siw *ServerInterfaceWrapper) paramError(w http.ResponseWriter, err error) {
	apierrors.ValidationError(w, err.Error())
}

// bindID разбирает path-параметр id как UUID.
func (siw *ServerInterfaceWrapper) bindID(w http.ResponseWriter, r *http.Request) (openapi_types.UUID, bool) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.paramError(w, &InvalidParamFormatError{ParamName: "id", Err: err})
		return id, false
	}
	return id, true
}

func (siw *ServerInterfaceWrapper) ListForms(w http.ResponseWriter, r *http.Request) {
	siw.Handler.ListForms(w, r)
}

func (siw *ServerInterfaceWrapper) CreateForm(w http.ResponseWriter, r *http.Request) {
	siw.Handler.CreateForm(w, r)
}

func (siw *ServerInterfaceWrapper) GetForm(w http.ResponseWriter, r *http.Request) {
	id, ok := siw.bindID(w, r)
	if !ok {
		return
	}
	siw.Handler.GetForm(w, r, id)
}

func (siw *ServerInterfaceWrapper) UpdateForm(w http.ResponseWriter, r *http.Request) {
	id, ok := siw.bindID(w, r)
	if !ok {
		return
	}
	siw.Handler.UpdateForm(w, r, id)
}

func (siw *ServerInterfaceWrapper) DeleteForm(w http.ResponseWriter, r *http.Request) {
	id, ok := siw.bindID(w, r)
	if !ok {
		return
	}
	siw.Handler.DeleteForm(w, r, id)
}

func (siw *ServerInterfaceWrapper) CreateSubmission(w http.ResponseWriter, r *http.Request) {
	id, ok := siw.bindID(w, r)
	if !ok {
		return
	}
	siw.Handler.CreateSubmission(w, r, id)
}

func (siw *ServerInterfaceWrapper) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	var params ListSubmissionsParams

	// Пустой ?form= равносилен отсутствию фильтра.
	if r.URL.Query().Get("form") != "" {
		err := runtime.BindQueryParameter("form", true, false, "form", r.URL.Query(), &params.Form)
		if err != nil {
			siw.paramError(w, &InvalidParamFormatError{ParamName: "form", Err: err})
			return
		}
	}

	siw.Handler.ListSubmissions(w, r, params)
}

func (siw *ServerInterfaceWrapper) GetSubmission(w http.ResponseWriter, r *http.Request) {
	id, ok := siw.bindID(w, r)
	if !ok {
		return
	}
	siw.Handler.GetSubmission(w, r, id)
}

func (siw *ServerInterfaceWrapper) DeleteSubmission(w http.ResponseWriter, r *http.Request) {
	id, ok := siw.bindID(w, r)
	if !ok {
		return
	}
	siw.Handler.DeleteSubmission(w, r, id)
}

func (siw *ServerInterfaceWrapper) UpdateSubmissionNotes(w http.ResponseWriter, r *http.Request) {
	id, ok := siw.bindID(w, r)
	if !ok {
		return
	}
	siw.Handler.UpdateSubmissionNotes(w, r, id)
}

func (siw *ServerInterfaceWrapper) GetStats(w http.ResponseWriter, r *http.Request) {
	siw.Handler.GetStats(w, r)
}

func (siw *ServerInterfaceWrapper) HealthLive(w http.ResponseWriter, r *http.Request) {
	siw.Handler.HealthLive(w, r)
}

func (siw *ServerInterfaceWrapper) HealthReady(w http.ResponseWriter, r *http.Request) {
	siw.Handler.HealthReady(w, r)
}

func (siw *ServerInterfaceWrapper) GetMetrics(w http.ResponseWriter, r *http.Request) {
	siw.Handler.GetMetrics(w, r)
}

// HandlerFromMux регистрирует маршруты API на переданном роутере.
func HandlerFromMux(si ServerInterface, r chi.Router) http.Handler {
	wrapper := ServerInterfaceWrapper{Handler: si}

	r.Group(func(r chi.Router) {
		r.Get("/api/forms", wrapper.ListForms)
		r.Post("/api/forms", wrapper.CreateForm)
		r.Get("/api/forms/{id}", wrapper.GetForm)
		r.Put("/api/forms/{id}", wrapper.UpdateForm)
		r.Delete("/api/forms/{id}", wrapper.DeleteForm)
		r.Post("/api/forms/{id}/submissions", wrapper.CreateSubmission)
		r.Get("/api/submissions", wrapper.ListSubmissions)
		r.Get("/api/submissions/{id}", wrapper.GetSubmission)
		r.Delete("/api/submissions/{id}", wrapper.DeleteSubmission)
		r.Put("/api/submissions/{id}/notes", wrapper.UpdateSubmissionNotes)
		r.Get("/api/stats", wrapper.GetStats)
		r.Get("/health/live", wrapper.HealthLive)
		r.Get("/health/ready", wrapper.HealthReady)
		r.Get("/metrics", wrapper.GetMetrics)
	})

	return r
}
