package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gear6io/mtgapi/pkg/errors"
	"github.com/rs/zerolog"
)

const backupTimeFormat = "20060102T150405.000000"

// rotatingWriter appends to a log file and rolls it over to
// <path>.<timestamp> once it grows past maxBytes.
type rotatingWriter struct {
	mu       sync.Mutex
	path     string
	maxBytes int64
	keep     int
	maxAge   time.Duration
	file     *os.File
	size     int64
	now      func() time.Time
}

func openRotatingWriter(cfg LogConfig) (*rotatingWriter, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0755); err != nil {
		return nil, errors.New(ErrLogDirectoryCreationFailed, "failed to create log directory", err)
	}

	w := &rotatingWriter{
		path:     cfg.FilePath,
		maxBytes: int64(cfg.MaxSize) * 1024 * 1024,
		keep:     cfg.MaxBackups,
		maxAge:   time.Duration(cfg.MaxAge) * 24 * time.Hour,
		now:      time.Now,
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_APPEND
	if cfg.Cleanup {
		flags |= os.O_TRUNC
	}
	if err := w.open(flags); err != nil {
		return nil, err
	}
	if w.maxBytes > 0 && w.size >= w.maxBytes {
		if err := w.rotate(); err != nil {
			w.file.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *rotatingWriter) open(flags int) error {
	f, err := os.OpenFile(w.path, flags, 0644)
	if err != nil {
		return errors.New(ErrLogFileOpenFailed, "failed to open log file", err).AddContext("path", w.path)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return errors.New(ErrLogFileOpenFailed, "failed to stat log file", err).AddContext("path", w.path)
	}
	w.file = f
	w.size = info.Size()
	return nil
}

func (w *rotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return 0, os.ErrClosed
	}
	if w.maxBytes > 0 && w.size > 0 && w.size+int64(len(p)) > w.maxBytes {
		if err := w.rotate(); err != nil {
			return 0, err
		}
	}
	n, err := w.file.Write(p)
	w.size += int64(n)
	return n, err
}

func (w *rotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

// rotate must be called with mu held.
func (w *rotatingWriter) rotate() error {
	if err := w.file.Close(); err != nil {
		return errors.New(ErrLogRotationFailed, "failed to close log file", err)
	}
	backup := w.path + "." + w.now().Format(backupTimeFormat)
	if err := os.Rename(w.path, backup); err != nil {
		return errors.New(ErrLogRotationFailed, "failed to rotate log file", err).AddContext("backup_path", backup)
	}
	if err := w.open(os.O_CREATE | os.O_WRONLY | os.O_TRUNC); err != nil {
		return err
	}
	if err := w.prune(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to prune log backups: %v\n", err)
	}
	return nil
}

// prune drops backups beyond keep and those older than maxAge.
func (w *rotatingWriter) prune() error {
	if w.keep <= 0 && w.maxAge <= 0 {
		return nil
	}

	backups, err := w.backups()
	if err != nil {
		return err
	}

	cutoff := w.now().Add(-w.maxAge)
	for i, b := range backups {
		expired := w.maxAge > 0 && b.modTime.Before(cutoff)
		excess := w.keep > 0 && i < len(backups)-w.keep
		if !expired && !excess {
			continue
		}
		if err := os.Remove(b.path); err != nil && !os.IsNotExist(err) {
			return errors.New(ErrLogBackupRemoveFailed, "failed to remove old backup", err).AddContext("backup_path", b.path)
		}
	}
	return nil
}

type backupFile struct {
	path    string
	modTime time.Time
}

// backups lists rolled files oldest first.
func (w *rotatingWriter) backups() ([]backupFile, error) {
	dir, base := filepath.Split(w.path)
	if dir == "" {
		dir = "."
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.New(ErrLogBackupReadFailed, "failed to read log directory", err)
	}

	var out []backupFile
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), base+".") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, backupFile{path: filepath.Join(dir, e.Name()), modTime: info.ModTime()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].path < out[j].path })
	return out, nil
}

// SetupLogger creates a configured zerolog logger based on the configuration
func SetupLogger(cfg *Config) (zerolog.Logger, error) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Log.Level))
	if err != nil || cfg.Log.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var writers []io.Writer

	if cfg.Log.Console {
		if cfg.Log.Format == "json" {
			writers = append(writers, os.Stdout)
		} else {
			writers = append(writers, zerolog.ConsoleWriter{
				Out:        os.Stdout,
				TimeFormat: time.RFC3339,
			})
		}
	}

	if cfg.Log.FilePath != "" {
		fileWriter, err := openRotatingWriter(cfg.Log)
		if err != nil {
			return zerolog.Logger{}, errors.New(ErrLogFileWriterSetupFailed, "failed to setup file writer", err)
		}
		// file output stays JSON regardless of format
		writers = append(writers, fileWriter)
	}

	var out io.Writer
	switch len(writers) {
	case 0:
		out = io.Discard
	case 1:
		out = writers[0]
	default:
		out = zerolog.MultiLevelWriter(writers...)
	}

	logger := zerolog.New(out).With().
		Timestamp().
		Str("component", "mtgapi").
		Logger()

	return logger, nil
}
