// blobs.go: хранилище фотографий с точки зрения сервисов
// и best-effort удаление файлов заявок.
package service

import (
	"context"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/vehicle-intake/internal/storage/filestore"
)

// BlobStore: хранилище загруженных файлов.
// Реализуется *filestore.FileStore.
type BlobStore interface {
	SaveFile(reader io.Reader, originalFilename string) (*filestore.SaveResult, error)
	DeleteFile(storagePath string) error
}

var (
	blobsSaved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "im_blobs_saved_total",
		Help: "Количество сохранённых фотографий",
	})
	blobDeletes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "im_blob_deletes_total",
		Help: "Удаления фотографий по результату (ok, failed)",
	}, []string{"result"})
)

// removeBlobs удаляет файлы по списку путей. Ошибки логируются и не прерывают удаление.
// Возвращает количество неудачных удалений.
func removeBlobs(ctx context.Context, blobs BlobStore, logger *slog.Logger, paths []string) int {
	failed := 0
	for _, p := range paths {
		if err := blobs.DeleteFile(p); err != nil {
			failed++
			blobDeletes.WithLabelValues("failed").Inc()
			logger.WarnContext(ctx, "Не удалось удалить файл",
				slog.String("path", p),
				slog.String("error", err.Error()),
			)
			continue
		}
		blobDeletes.WithLabelValues("ok").Inc()
	}
	return failed
}
