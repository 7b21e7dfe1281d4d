package logging

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// RotatingFile is an io.Writer that appends log lines to dir/name and rolls
// the file over once it would grow past maxBytes. Rolled files are gzipped and
// only the newest keep of them survive.
type RotatingFile struct {
	mu       sync.Mutex
	dir      string
	name     string
	maxBytes int64
	keep     int
	file     *os.File
	size     int64
	now      func() time.Time
}

// OpenRotatingFile creates dir when needed and opens the live log file for appending.
func OpenRotatingFile(dir, name string, maxMB, keep int) (*RotatingFile, error) {
	if maxMB <= 0 {
		return nil, fmt.Errorf("log file size limit must be positive")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	rf := &RotatingFile{
		dir:      dir,
		name:     name,
		maxBytes: int64(maxMB) * 1024 * 1024,
		keep:     keep,
		now:      time.Now,
	}
	if err := rf.open(); err != nil {
		return nil, err
	}
	return rf, nil
}

// Path is the live log file.
func (rf *RotatingFile) Path() string {
	return filepath.Join(rf.dir, rf.name)
}

func (rf *RotatingFile) open() error {
	f, err := os.OpenFile(rf.Path(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("stat log file: %w", err)
	}
	rf.file = f
	rf.size = info.Size()
	return nil
}

func (rf *RotatingFile) Write(p []byte) (int, error) {
	rf.mu.Lock()
	defer rf.mu.Unlock()
	if rf.file == nil {
		return 0, os.ErrClosed
	}
	if rf.size > 0 && rf.size+int64(len(p)) > rf.maxBytes {
		if err := rf.rotate(); err != nil {
			return 0, err
		}
	}
	n, err := rf.file.Write(p)
	rf.size += int64(n)
	return n, err
}

func (rf *RotatingFile) rotate() error {
	if err := rf.file.Close(); err != nil {
		return fmt.Errorf("close log file: %w", err)
	}
	rolled := fmt.Sprintf("%s.%s", rf.Path(), rf.now().UTC().Format("20060102-150405.000"))
	if err := os.Rename(rf.Path(), rolled); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("rename log file: %w", err)
	}
	// a failed compression leaves the plain rolled file in place
	_ = gzipFile(rolled)
	rf.prune()
	return rf.open()
}

func gzipFile(path string) error {
	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(path + ".gz")
	if err != nil {
		return err
	}
	zw := gzip.NewWriter(out)
	if _, err := io.Copy(zw, in); err != nil {
		zw.Close()
		out.Close()
		os.Remove(path + ".gz")
		return err
	}
	if err := zw.Close(); err != nil {
		out.Close()
		os.Remove(path + ".gz")
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(path)
}

// prune drops the oldest rolled files beyond keep. Rolled names sort by time.
func (rf *RotatingFile) prune() {
	matches, err := filepath.Glob(rf.Path() + ".*")
	if err != nil || len(matches) <= rf.keep {
		return
	}
	sort.Strings(matches)
	for _, path := range matches[:len(matches)-rf.keep] {
		os.Remove(path)
	}
}

// Close closes the live file. Writes after Close fail with os.ErrClosed.
func (rf *RotatingFile) Close() error {
	rf.mu.Lock()
	defer rf.mu.Unlock()
	if rf.file == nil {
		return nil
	}
	err := rf.file.Close()
	rf.file = nil
	return err
}
