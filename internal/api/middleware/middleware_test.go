package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bigkaa/vehicle-intake/internal/api"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/forms", "/api/forms"},
		{"/api/stats", "/api/stats"},
		{"/health/ready", "/health/ready"},
		{"/api/forms/6a1f2c3e-0000-4000-8000-000000000001", "/api/forms/{id}"},
		{"/api/forms/6a1f2c3e-0000-4000-8000-000000000001/submissions", "/api/forms/{id}/submissions"},
		{"/api/submissions/6a1f2c3e-0000-4000-8000-000000000002/notes", "/api/submissions/{id}/notes"},
		{"/api/submissions/abc/xyz", "/api/submissions/{id}/other"},
		{"/uploads/1760000000000-front.jpg", "/uploads/{file}"},
		{"/api/unknown", "/api/other"},
		{"/forms/new", "/spa"},
		{"/", "/spa"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := normalizePath(tt.path); got != tt.want {
				t.Errorf("normalizePath(%q) = %q, ожидается %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestStatusRecorder_CapturesStatus(t *testing.T) {
	rw := newStatusRecorder(httptest.NewRecorder())

	rw.WriteHeader(http.StatusNotFound)
	rw.WriteHeader(http.StatusOK)
	n, _ := rw.Write([]byte("hello"))

	if rw.statusCode != http.StatusNotFound {
		t.Errorf("statusCode = %d, ожидается %d", rw.statusCode, http.StatusNotFound)
	}
	if rw.written != int64(n) {
		t.Errorf("written = %d, ожидается %d", rw.written, n)
	}
}

func TestLevelFor(t *testing.T) {
	tests := map[int]slog.Level{
		http.StatusOK:                    slog.LevelInfo,
		http.StatusFound:                 slog.LevelInfo,
		http.StatusNotFound:              slog.LevelWarn,
		http.StatusRequestEntityTooLarge: slog.LevelWarn,
		http.StatusServiceUnavailable:    slog.LevelError,
	}
	for status, want := range tests {
		if got := levelFor(status); got != want {
			t.Errorf("levelFor(%d) = %v, ожидается %v", status, got, want)
		}
	}
}

func TestRequestLogger_LevelByStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	handler := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/forms", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("разбор записи лога: %v", err)
	}
	if entry["level"] != "ERROR" {
		t.Errorf("level = %v, ожидается ERROR", entry["level"])
	}
	if entry["status"] != float64(http.StatusInternalServerError) {
		t.Errorf("status = %v, ожидается 500", entry["status"])
	}
	if entry["path"] != "/api/forms" {
		t.Errorf("path = %v, ожидается /api/forms", entry["path"])
	}
}

func TestMetricsMiddleware_PassesThrough(t *testing.T) {
	handler := MetricsMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/forms", nil))

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, ожидается %d", rec.Code, http.StatusCreated)
	}
}

func TestRecovery(t *testing.T) {
	handler := Recovery(testLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/forms", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, ожидается 500", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("разбор тела: %v", err)
	}
	if body["code"] != "INTERNAL_ERROR" {
		t.Errorf("code = %q, ожидается INTERNAL_ERROR", body["code"])
	}
}

func TestCORS(t *testing.T) {
	var reached bool
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		reached = true
		w.WriteHeader(http.StatusOK)
	})

	t.Run("разрешённый origin", func(t *testing.T) {
		handler := CORS([]string{"https://intake.example.com"})(next)
		req := httptest.NewRequest(http.MethodGet, "/api/forms", nil)
		req.Header.Set("Origin", "https://intake.example.com")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://intake.example.com" {
			t.Errorf("Allow-Origin = %q, ожидается origin запроса", got)
		}
	})

	t.Run("чужой origin", func(t *testing.T) {
		handler := CORS([]string{"https://intake.example.com"})(next)
		req := httptest.NewRequest(http.MethodGet, "/api/forms", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("Allow-Origin = %q, ожидается пустое значение", got)
		}
	})

	t.Run("пустой список origins", func(t *testing.T) {
		handler := CORS(nil)(next)
		req := httptest.NewRequest(http.MethodGet, "/api/forms", nil)
		req.Header.Set("Origin", "https://intake.example.com")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("Allow-Origin = %q, ожидается пустое значение", got)
		}
	})

	t.Run("preflight", func(t *testing.T) {
		handler := CORS([]string{"*"})(next)
		req := httptest.NewRequest(http.MethodOptions, "/api/forms", nil)
		req.Header.Set("Origin", "https://any.example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, ожидается 200", rec.Code)
		}
		if reached {
			t.Error("preflight не должен доходить до обработчика")
		}
		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
			t.Errorf("Allow-Origin = %q, ожидается *", got)
		}
		if got := rec.Header().Get("Access-Control-Allow-Methods"); got != http.MethodPost {
			t.Errorf("Allow-Methods = %q, ожидается POST", got)
		}
		if got := rec.Header().Get("Access-Control-Max-Age"); got != "600" {
			t.Errorf("Max-Age = %q, ожидается 600", got)
		}
	})

	t.Run("preflight с чужим заголовком", func(t *testing.T) {
		handler := CORS([]string{"*"})(next)
		req := httptest.NewRequest(http.MethodOptions, "/api/forms", nil)
		req.Header.Set("Origin", "https://any.example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		req.Header.Set("Access-Control-Request-Headers", "Authorization")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("Allow-Origin = %q, ожидается пустое значение", got)
		}
	})
}

func newValidator(t *testing.T, next http.Handler) http.Handler {
	t.Helper()
	doc, err := api.LoadOpenAPI()
	if err != nil {
		t.Fatalf("LoadOpenAPI: %v", err)
	}
	mw, err := RequestValidator(doc, testLogger())
	if err != nil {
		t.Fatalf("RequestValidator: %v", err)
	}
	return mw(next)
}

func TestRequestValidator(t *testing.T) {
	var reached bool
	var seenBody []byte
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		seenBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	})
	handler := newValidator(t, next)

	tests := []struct {
		name        string
		method      string
		path        string
		contentType string
		body        string
		wantReached bool
		wantStatus  int
	}{
		{
			name: "корректная форма", method: http.MethodPost, path: "/api/forms",
			contentType: "application/json",
			body:        `{"name":"Приём","fields":[{"label":"VIN","type":"text","required":true}]}`,
			wantReached: true, wantStatus: http.StatusOK,
		},
		{
			name: "форма без имени", method: http.MethodPost, path: "/api/forms",
			contentType: "application/json", body: `{"fields":[]}`,
			wantReached: false, wantStatus: http.StatusBadRequest,
		},
		{
			name: "неизвестный тип поля", method: http.MethodPost, path: "/api/forms",
			contentType: "application/json",
			body:        `{"name":"Приём","fields":[{"label":"Цвет","type":"color"}]}`,
			wantReached: false, wantStatus: http.StatusBadRequest,
		},
		{
			name: "multipart без проверки тела", method: http.MethodPost,
			path:        "/api/forms/6a1f2c3e-0000-4000-8000-000000000001/submissions",
			contentType: "multipart/form-data; boundary=xyz",
			body:        "--xyz--\r\n",
			wantReached: true, wantStatus: http.StatusOK,
		},
		{
			name: "пустой фильтр по форме", method: http.MethodGet, path: "/api/submissions?form=",
			wantReached: true, wantStatus: http.StatusOK,
		},
		{
			name: "неизвестный маршрут", method: http.MethodGet, path: "/api/unknown",
			wantReached: true, wantStatus: http.StatusOK,
		},
		{
			name: "SPA маршрут", method: http.MethodGet, path: "/forms/new",
			wantReached: true, wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reached = false
			seenBody = nil

			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if reached != tt.wantReached {
				t.Errorf("обработчик вызван = %v, ожидается %v", reached, tt.wantReached)
			}
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, ожидается %d (тело: %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantReached && tt.body != "" && len(seenBody) == 0 {
				t.Error("тело запроса потеряно после проверки")
			}
		})
	}
}
