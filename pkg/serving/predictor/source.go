package predictor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Source fetches the raw bytes of the latest artifact for a model.
type Source interface {
	Fetch(ctx context.Context, model string) ([]byte, error)
	Describe() string
}

// FileSource reads <dir>/<model>_latest.json and caches it by modification time.
type FileSource struct {
	dir   string
	cache map[string]cachedFile
	mu    sync.RWMutex
}

type cachedFile struct {
	content []byte
	modTime int64
}

func NewFileSource(dir string) *FileSource {
	return &FileSource{
		dir:   dir,
		cache: make(map[string]cachedFile),
	}
}

func (s *FileSource) Path(model string) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s_latest.json", model))
}

func (s *FileSource) Describe() string {
	return "file:" + s.dir
}

func (s *FileSource) Fetch(ctx context.Context, model string) ([]byte, error) {
	latest := s.Path(model)
	info, err := os.Stat(latest)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, latest)
		}
		return nil, err
	}
	mod := info.ModTime().UnixNano()

	s.mu.RLock()
	cached, ok := s.cache[model]
	s.mu.RUnlock()
	if ok && cached.modTime == mod {
		return cached.content, nil
	}

	content, err := os.ReadFile(latest)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.cache[model] = cachedFile{content: content, modTime: mod}
	s.mu.Unlock()
	return content, nil
}
