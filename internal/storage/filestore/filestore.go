// Пакет filestore: хранилище загруженных фотографий на диске.
// Файлы пишутся через временный файл с fsync и публикуются жёсткой ссылкой
// под свободным именем, удаление терпимо к отсутствующим файлам.
package filestore

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// URLPrefix: префикс путей, записываемых в заявку.
// Совпадает с маршрутом статической раздачи /uploads/.
const URLPrefix = "uploads"

// maxNameAttempts: сколько суффиксов -1, -2, ... перебирается при совпадении имён.
const maxNameAttempts = 1000

// ErrInvalidPath: путь не указывает на файл внутри хранилища.
var ErrInvalidPath = errors.New("недопустимый путь файла")

// FileStore: управление загруженными файлами на диске.
type FileStore struct {
	// dataDir: корневая директория хранения (IM_UPLOAD_DIR)
	dataDir string
	// now: источник времени для префикса имени
	now func() time.Time
}

// SaveResult: результат сохранения файла на диск.
type SaveResult struct {
	// StoragePath: путь вида uploads/<имя>, сохраняется в заявке
	StoragePath string
	// Size: размер записанных данных в байтах
	Size int64
	// Checksum: SHA-256 содержимого
	Checksum string
}

// New создаёт FileStore и при необходимости создаёт директорию.
func New(dataDir string) (*FileStore, error) {
	if err := os.MkdirAll(dataDir, 0o750); err != nil {
		return nil, fmt.Errorf("не удалось создать директорию загрузок %s: %w", dataDir, err)
	}
	return &FileStore{dataDir: dataDir, now: time.Now}, nil
}

// SaveFile записывает данные из reader на диск с подсчётом SHA-256 на лету.
// Имя файла: {unix-ms}-{оригинальное имя, пробелы заменены на '-'}.
// Если такое имя уже занято, перед расширением добавляется -1, -2, ...
//
// Паттерн: temp файл → запись + SHA-256 → fsync → link под свободным именем.
// Temp файл удаляется в любом случае.
func (fs *FileStore) SaveFile(reader io.Reader, originalFilename string) (*SaveResult, error) {
	f, err := os.CreateTemp(fs.dataDir, ".upload-*.tmp")
	if err != nil {
		return nil, fmt.Errorf("ошибка создания временного файла: %w", err)
	}
	tmpPath := f.Name()

	hasher := sha256.New()
	size, err := io.Copy(f, io.TeeReader(reader, hasher))
	if err != nil {
		f.Close()
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ошибка записи данных: %w", err)
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ошибка fsync: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ошибка закрытия файла: %w", err)
	}

	storageName, err := fs.publish(tmpPath, generateStorageName(originalFilename, fs.now()))
	os.Remove(tmpPath)
	if err != nil {
		return nil, err
	}

	return &SaveResult{
		StoragePath: path.Join(URLPrefix, storageName),
		Size:        size,
		Checksum:    hex.EncodeToString(hasher.Sum(nil)),
	}, nil
}

// DeleteFile удаляет файл по пути из заявки (uploads/<имя>).
// Возвращает nil, если файла уже нет.
func (fs *FileStore) DeleteFile(storagePath string) error {
	fullPath, err := fs.resolve(storagePath)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("ошибка удаления файла %s: %w", storagePath, err)
	}
	return nil
}

// DataDir возвращает путь к директории загрузок.
func (fs *FileStore) DataDir() string {
	return fs.dataDir
}

// resolve переводит путь из заявки в путь на диске.
// Принимаются только файлы непосредственно в dataDir.
func (fs *FileStore) resolve(storagePath string) (string, error) {
	p := strings.TrimPrefix(filepath.ToSlash(storagePath), "/")
	p = strings.TrimPrefix(p, URLPrefix+"/")
	if p == "" || strings.Contains(p, "/") || p == "." || p == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, storagePath)
	}
	return filepath.Join(fs.dataDir, p), nil
}

// publish создаёт жёсткую ссылку на tmpPath под именем name или, если оно
// занято, под первым свободным name-N. os.Link не перезаписывает
// существующий файл, поэтому одинаковые имена в одну миллисекунду не
// затирают друг друга. Возвращает итоговое имя.
func (fs *FileStore) publish(tmpPath, name string) (string, error) {
	candidate := name
	for i := 1; i <= maxNameAttempts; i++ {
		err := os.Link(tmpPath, filepath.Join(fs.dataDir, candidate))
		if err == nil {
			return candidate, nil
		}
		if !os.IsExist(err) {
			return "", fmt.Errorf("ошибка публикации файла %s: %w", candidate, err)
		}
		candidate = withSuffix(name, i)
	}
	return "", fmt.Errorf("не найдено свободное имя для %s после %d попыток", name, maxNameAttempts)
}

// withSuffix вставляет -n перед расширением: a.jpg → a-2.jpg.
func withSuffix(name string, n int) string {
	ext := path.Ext(name)
	return strings.TrimSuffix(name, ext) + "-" + strconv.Itoa(n) + ext
}

// generateStorageName строит имя файла для хранения.
// Пример: 1760000000000-front-bumper.jpg
func generateStorageName(originalFilename string, now time.Time) string {
	return strconv.FormatInt(now.UnixMilli(), 10) + "-" + sanitize(originalFilename)
}

// sanitize оставляет только базовое имя файла и заменяет
// последовательности пробельных символов на '-'.
func sanitize(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(name)
	if name == "." || name == ".." || name == "/" {
		return "file"
	}

	var b strings.Builder
	inSpace := false
	for _, r := range name {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteByte('-')
			}
			inSpace = true
			continue
		}
		inSpace = false
		if unicode.IsControl(r) {
			continue
		}
		b.WriteRune(r)
	}
	if b.Len() == 0 {
		return "file"
	}
	return b.String()
}
