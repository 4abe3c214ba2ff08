package handlers

import (
	"net/http"

	"github.com/bigkaa/vehicle-intake/internal/api"
)

// GetStats: GET /api/stats. Сводка для дашборда администратора.
func (h *APIHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	st, err := h.submissions.Stats(r.Context())
	if err != nil {
		h.writeServiceError(w, err, "", "Ошибка получения статистики")
		return
	}

	writeJSON(w, http.StatusOK, api.Stats{
		Forms:            st.Forms,
		Submissions:      st.Submissions,
		Photos:           st.Photos,
		LastSubmissionAt: st.LastSubmissionAt,
	})
}
