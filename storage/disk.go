package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
)

type DiskStorage struct {
	// BasePath is a directory (usually mount point of a disk) that is writable by the current process
	BasePath  string
	dirs      map[string]bool
	dirsMutex sync.Mutex
}

func NewDiskStorage(basePath string) *DiskStorage {
	return &DiskStorage{
		BasePath: basePath,
		dirs:     make(map[string]bool, 10),
	}
}

func (s *DiskStorage) createDir(dir string) error {
	s.dirsMutex.Lock()
	defer s.dirsMutex.Unlock()

	if ok := s.dirs[dir]; ok {
		return nil
	}
	if err := os.MkdirAll(dir, 0777); err != nil {
		return err
	}
	s.dirs[dir] = true
	return nil
}

func (s *DiskStorage) getFullPath(key string) string {
	return filepath.Join(s.BasePath, filepath.FromSlash(key))
}

func (s *DiskStorage) Save(ctx context.Context, key string, data []byte, contentType string) error {
	fileName := s.getFullPath(key)
	if err := s.createDir(filepath.Dir(fileName)); err != nil {
		return err
	}
	return os.WriteFile(fileName, data, 0666)
}

func (s *DiskStorage) Load(key string, writer io.Writer) (int64, error) {
	file, err := os.Open(s.getFullPath(key))
	if err != nil {
		return 0, err
	}
	defer file.Close()
	return io.Copy(writer, file)
}

// Delete of a missing file is not an error
func (s *DiskStorage) Delete(ctx context.Context, key string) error {
	err := os.Remove(s.getFullPath(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
