package upload

import (
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
)

// File is a user-selected file offered to the pipeline. Implementations exist
// for local files (CLI) and in-memory blobs (tests).
type File interface {
	Name() string
	MediaType() string
	Size() int64
	Open() (io.ReadCloser, error)
}

type localFile struct {
	path string
	size int64
}

// NewLocalFile creates a File backed by a file on disk. The media type is
// derived from the file extension.
func NewLocalFile(path string) (File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	return localFile{path: path, size: info.Size()}, nil
}

func (f localFile) Name() string {
	return filepath.Base(f.path)
}

func (f localFile) MediaType() string {
	return mime.TypeByExtension(filepath.Ext(f.path))
}

func (f localFile) Size() int64 {
	return f.size
}

func (f localFile) Open() (io.ReadCloser, error) {
	return os.Open(f.path)
}
