package logger

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
)

// rotatingFile is an io.WriteCloser that rotates the underlying file once it
// crosses maxBytes, keeping up to generations renamed backups
// (name.log.1 ... name.log.N, oldest evicted). No pack example imports a
// rotation library (lumberjack et al.); see DESIGN.md for the justification.
type rotatingFile struct {
	mu          sync.Mutex
	path        string
	maxBytes    int64
	generations int
	size        int64
	f           *os.File
}

func newRotatingFile(path string, maxBytes int64, generations int) (*rotatingFile, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	rf := &rotatingFile{path: path, maxBytes: maxBytes, generations: generations}
	if err := rf.open(); err != nil {
		return nil, err
	}
	return rf, nil
}

func (rf *rotatingFile) open() error {
	f, err := os.OpenFile(rf.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file %s: %w", rf.path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("stat log file %s: %w", rf.path, err)
	}
	rf.f = f
	rf.size = info.Size()
	return nil
}

func (rf *rotatingFile) Write(p []byte) (int, error) {
	rf.mu.Lock()
	defer rf.mu.Unlock()

	if rf.size+int64(len(p)) > rf.maxBytes {
		if err := rf.rotate(); err != nil {
			return 0, err
		}
	}
	n, err := rf.f.Write(p)
	rf.size += int64(n)
	return n, err
}

func (rf *rotatingFile) rotate() error {
	rf.f.Close()

	for i := rf.generations - 1; i >= 1; i-- {
		src := fmt.Sprintf("%s.%d", rf.path, i)
		dst := fmt.Sprintf("%s.%d", rf.path, i+1)
		if _, err := os.Stat(src); err == nil {
			os.Rename(src, dst)
		}
	}
	if _, err := os.Stat(rf.path); err == nil {
		os.Rename(rf.path, rf.path+".1")
	}
	return rf.open()
}

func (rf *rotatingFile) Close() error {
	rf.mu.Lock()
	defer rf.mu.Unlock()
	return rf.f.Close()
}

// Sync satisfies zapcore.WriteSyncer.
func (rf *rotatingFile) Sync() error {
	rf.mu.Lock()
	defer rf.mu.Unlock()
	return rf.f.Sync()
}

// FileLogSpec names one of the six structured logs (spec.md §6) and the
// minimum zap level routed to it.
type FileLogSpec struct {
	Name        string
	MinLevel    Level
	MaxBytes    int64
	Generations int
}

// DefaultFileLogSpecs is the fixed set of structured file logs this service
// writes: error, combined, http, scraping, exceptions, rejections.
func DefaultFileLogSpecs() []FileLogSpec {
	const fiveMB = 5 * 1024 * 1024
	return []FileLogSpec{
		{Name: "error.log", MinLevel: ErrorLevel, MaxBytes: fiveMB, Generations: 5},
		{Name: "combined.log", MinLevel: DebugLevel, MaxBytes: 10 * 1024 * 1024, Generations: 5},
		{Name: "http.log", MinLevel: InfoLevel, MaxBytes: fiveMB, Generations: 3},
		{Name: "scraping.log", MinLevel: InfoLevel, MaxBytes: 10 * 1024 * 1024, Generations: 5},
		{Name: "exceptions.log", MinLevel: ErrorLevel, MaxBytes: fiveMB, Generations: 3},
		{Name: "rejections.log", MinLevel: ErrorLevel, MaxBytes: fiveMB, Generations: 3},
	}
}

// ErrInvalidLogFilename is returned when a requested file log name doesn't
// match the safe pattern the admin API requires before touching the
// filesystem.
var ErrInvalidLogFilename = errors.New("logger: invalid log filename")

var logFilenamePattern = regexp.MustCompile(`^[A-Za-z0-9_\-.]+\.log$`)

// TailFile returns the last maxLines lines of dir/filename. filename must
// match ^[A-Za-z0-9_\-.]+\.log$; anything else is rejected before the path
// ever reaches the filesystem.
func TailFile(dir, filename string, maxLines int) ([]string, error) {
	if !logFilenamePattern.MatchString(filename) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidLogFilename, filename)
	}
	if maxLines <= 0 {
		maxLines = 500
	}

	f, err := os.Open(filepath.Join(dir, filename))
	if err != nil {
		return nil, fmt.Errorf("logger: open %s: %w", filename, err)
	}
	defer f.Close()

	ring := make([]string, 0, maxLines)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		ring = append(ring, scanner.Text())
		if len(ring) > maxLines {
			ring = ring[1:]
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("logger: scan %s: %w", filename, err)
	}
	return ring, nil
}
