package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const (
	DefaultMaxSizeMB = 10
	DefaultMaxFiles  = 3
)

// RotatingFile is an append-only log file that rotates once it reaches a
// size limit: path -> path.1 -> path.2, keeping MaxFiles rotated copies.
type RotatingFile struct {
	mu          sync.Mutex
	path        string
	maxBytes    int64
	maxFiles    int
	file        *os.File
	currentSize int64
}

// OpenRotatingFile opens or creates path. Non-positive limits take the
// defaults.
func OpenRotatingFile(path string, maxSizeMB, maxFiles int) (*RotatingFile, error) {
	if maxSizeMB <= 0 {
		maxSizeMB = DefaultMaxSizeMB
	}
	if maxFiles <= 0 {
		maxFiles = DefaultMaxFiles
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat log file: %w", err)
	}

	return &RotatingFile{
		path:        path,
		maxBytes:    int64(maxSizeMB) * 1024 * 1024,
		maxFiles:    maxFiles,
		file:        f,
		currentSize: stat.Size(),
	}, nil
}

// Write appends p, rotating first when the file is full.
func (r *RotatingFile) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		return 0, os.ErrClosed
	}
	if r.currentSize > 0 && r.currentSize+int64(len(p)) > r.maxBytes {
		if err := r.rotate(); err != nil {
			fmt.Fprintf(os.Stderr, "log rotation failed: %v\n", err)
		}
		if r.file == nil {
			return 0, os.ErrClosed
		}
	}

	n, err := r.file.Write(p)
	r.currentSize += int64(n)
	return n, err
}

// Close closes the file. Later writes fail with os.ErrClosed.
func (r *RotatingFile) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

// rotate shifts the rotated copies and starts a fresh file. When the
// current file cannot be moved aside it is reopened for append so logging
// continues past the limit.
func (r *RotatingFile) rotate() error {
	if r.file != nil {
		r.file.Close()
		r.file = nil
	}

	for i := r.maxFiles; i >= 1; i-- {
		oldPath := fmt.Sprintf("%s.%d", r.path, i)
		if i == r.maxFiles {
			os.Remove(oldPath)
		} else {
			os.Rename(oldPath, fmt.Sprintf("%s.%d", r.path, i+1))
		}
	}

	rotateErr := os.Rename(r.path, r.path+".1")
	if rotateErr != nil && os.IsNotExist(rotateErr) {
		rotateErr = nil
	}

	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open new log file: %w", err)
	}
	r.file = f
	if rotateErr != nil {
		if stat, err := f.Stat(); err == nil {
			r.currentSize = stat.Size()
		}
		return fmt.Errorf("failed to rotate log file: %w", rotateErr)
	}
	r.currentSize = 0
	return nil
}
