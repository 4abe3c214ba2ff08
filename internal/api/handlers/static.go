// static.go: раздача загруженных фотографий и клиентского приложения.
package handlers

import (
	"net/http"
	"path"
	"strings"

	apierrors "github.com/bigkaa/vehicle-intake/internal/api/errors"
)

const indexFile = "/index.html"

// StaticHandler: статические файлы вне OpenAPI-контракта.
type StaticHandler struct {
	uploads http.FileSystem
	public  http.FileSystem
}

// NewStaticHandler создаёт обработчик статики.
// uploadDir: каталог фотографий, publicDir: сборка клиентского приложения.
func NewStaticHandler(uploadDir, publicDir string) *StaticHandler {
	return &StaticHandler{
		uploads: http.Dir(uploadDir),
		public:  http.Dir(publicDir),
	}
}

// Uploads раздаёт фотографии по /uploads/<имя файла>. Листинг каталога запрещён.
func (s *StaticHandler) Uploads() http.Handler {
	return http.StripPrefix("/uploads", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := path.Clean("/" + r.URL.Path)
		if name == "/" || strings.HasSuffix(r.URL.Path, "/") {
			apierrors.NotFound(w, "Файл не найден")
			return
		}
		if !s.serveFile(w, r, s.uploads, name) {
			apierrors.NotFound(w, "Файл не найден")
		}
	}))
}

// SPA: fallback для всех маршрутов, не найденных роутером.
// GET отдаёт файл из public, если он есть, иначе index.html клиентского приложения.
// Неизвестные /api/* и прочие методы получают JSON 404.
func (s *StaticHandler) SPA(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/api" || strings.HasPrefix(r.URL.Path, "/api/") {
		apierrors.NotFound(w, "Маршрут не найден")
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		apierrors.NotFound(w, "Маршрут не найден")
		return
	}

	name := path.Clean("/" + r.URL.Path)
	if name != "/" && s.serveFile(w, r, s.public, name) {
		return
	}
	if !s.serveFile(w, r, s.public, indexFile) {
		apierrors.NotFound(w, "Клиентское приложение не найдено")
	}
}

// serveFile отдаёт обычный файл из fsys. Возвращает false, если файла нет
// или это каталог; в этом случае ответ не записывается.
func (s *StaticHandler) serveFile(w http.ResponseWriter, r *http.Request, fsys http.FileSystem, name string) bool {
	f, err := fsys.Open(name)
	if err != nil {
		return false
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		return false
	}

	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
	return true
}
