package store

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ulikunitz/xz"
)

// OpenDataset opens a dataset file, transparently decompressing .gz and .xz.
// Benchmark datasets are shipped compressed; everything else reads plain.
func OpenDataset(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	switch filepath.Ext(path) {
	case ".gz":
		zr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("open gzip dataset %s: %w", path, err)
		}
		return &wrappedCloser{Reader: zr, close: func() error {
			if err := zr.Close(); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		}}, nil
	case ".xz":
		zr, err := xz.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("open xz dataset %s: %w", path, err)
		}
		return &wrappedCloser{Reader: zr, close: f.Close}, nil
	default:
		return f, nil
	}
}

type wrappedCloser struct {
	io.Reader
	close func() error
}

func (w *wrappedCloser) Close() error { return w.close() }
