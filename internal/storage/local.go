package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/sir_venger/vidstream/internal/models"
)

// tempPrefix помечает незавершённые загрузки; такие имена никогда не отдаются наружу.
const tempPrefix = ".upload-"

// LocalStore хранит ресурсы файлами в одном корневом каталоге.
type LocalStore struct {
	root string
}

// NewLocalStore создаёт каталог при необходимости и фиксирует его канонический путь.
func NewLocalStore(root string) (*LocalStore, error) {
	trimmed := strings.TrimSpace(root)
	if trimmed == "" {
		return nil, fmt.Errorf("storage root is required")
	}
	if err := os.MkdirAll(trimmed, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}

	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return nil, fmt.Errorf("storage root: %w", err)
	}
	// Корень сравнивается с уже разыменованными путями, поэтому симлинки раскрываем и у него.
	canonical, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("storage root: %w", err)
	}

	return &LocalStore{root: canonical}, nil
}

// Root возвращает канонический путь корневого каталога.
func (s *LocalStore) Root() string {
	return s.root
}

// Open резолвит ключ внутри корня и открывает файл на чтение.
func (s *LocalStore) Open(_ context.Context, key string) (Object, error) {
	path, err := s.resolve(key)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if isNotExist(err) {
			return nil, fmt.Errorf("%w: %s", models.ErrNotFound, key)
		}
		return nil, fmt.Errorf("open %s: %w", key, err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat %s: %w", key, err)
	}
	if !info.Mode().IsRegular() {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %s", models.ErrNotFound, key)
	}

	return &fileObject{File: f, size: info.Size()}, nil
}

// Put атомарно записывает новый ресурс: данные пишутся во временный файл и переименовываются.
func (s *LocalStore) Put(ctx context.Context, key string, r io.Reader) (int64, error) {
	if err := validateKey(key); err != nil {
		return 0, fmt.Errorf("%w: %v", models.ErrInvalidUpload, err)
	}
	path := filepath.Join(s.root, filepath.FromSlash(key))
	if !within(s.root, path) {
		return 0, fmt.Errorf("%w: key %q escapes storage root", models.ErrInvalidUpload, key)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, fmt.Errorf("create key dir: %w", err)
	}

	tmp, err := os.CreateTemp(s.root, tempPrefix+"*")
	if err != nil {
		return 0, fmt.Errorf("create temp upload: %w", err)
	}
	tmpPath := tmp.Name()

	n, err := io.Copy(tmp, r)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		_ = os.Remove(tmpPath)
		return 0, fmt.Errorf("write upload %s: %w", key, err)
	}

	if err = os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return 0, fmt.Errorf("finalize upload %s: %w", key, err)
	}

	return n, nil
}

// Sweep удаляет временные файлы незавершённых загрузок старше ttl.
func (s *LocalStore) Sweep(ttl time.Duration) (int, error) {
	now := time.Now()
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), tempPrefix) {
			continue
		}

		info, err := e.Info()
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) < ttl {
			continue
		}

		if err := os.Remove(filepath.Join(s.root, e.Name())); err == nil {
			removed++
		}
	}

	return removed, nil
}

// Usage обходит корень и суммирует размеры опубликованных ресурсов.
func (s *LocalStore) Usage() (Usage, error) {
	var u Usage
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), tempPrefix) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		u.Files++
		u.TotalBytes += info.Size()

		return nil
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Usage{}, err
	}

	return u, nil
}

// resolve канонизирует ключ и отвергает всё, что указывает за пределы корня.
// Проверка выполняется до любого обращения к существованию файла.
func (s *LocalStore) resolve(key string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrNotFound, err)
	}

	path := filepath.Join(s.root, filepath.FromSlash(key))
	if !within(s.root, path) {
		return "", fmt.Errorf("%w: %s", models.ErrNotFound, key)
	}

	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		if isNotExist(err) {
			return "", fmt.Errorf("%w: %s", models.ErrNotFound, key)
		}
		return "", fmt.Errorf("resolve %s: %w", key, err)
	}
	// Симлинк внутри корня может смотреть наружу, поэтому сверяем уже разыменованный путь.
	if !within(s.root, resolved) {
		return "", fmt.Errorf("%w: %s", models.ErrNotFound, key)
	}

	return resolved, nil
}

// validateKey пропускает только относительные ключи без скрытых сегментов и "..".
func validateKey(key string) error {
	if key == "" || strings.ContainsRune(key, 0) || strings.Contains(key, `\`) {
		return fmt.Errorf("invalid key %q", key)
	}
	if strings.HasPrefix(key, "/") || filepath.IsAbs(key) {
		return fmt.Errorf("absolute key %q", key)
	}
	for _, seg := range strings.Split(key, "/") {
		if seg == "" || strings.HasPrefix(seg, ".") {
			return fmt.Errorf("invalid key segment in %q", key)
		}
	}

	return nil
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}

	return !filepath.IsAbs(rel)
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR)
}

type fileObject struct {
	*os.File
	size int64
}

func (o *fileObject) Size() int64 {
	return o.size
}
