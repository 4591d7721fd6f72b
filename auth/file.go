package auth

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/ggoodman/payments-go/internal/logctx"
)

// FileOption configures FileCredentials.
type FileOption func(*FileCredentials)

// WithLogHandler sets the slog handler for reload diagnostics.
func WithLogHandler(h slog.Handler) FileOption {
	return func(f *FileCredentials) { f.log = logctx.New(h) }
}

// FileCredentials serves a token read from a file, reloading it when the
// file changes. The containing directory is watched so that atomic
// replacements (rename over, symlink swap) are picked up too.
type FileCredentials struct {
	path string
	log  *slog.Logger

	mu    sync.RWMutex
	token string

	watcher *fsnotify.Watcher
	stop    context.CancelFunc
	done    chan struct{}
}

// NewFileCredentials reads the token at path and starts watching it. The
// watch ends when ctx is done or Close is called. If the platform cannot
// watch files the token is still served, just never reloaded.
func NewFileCredentials(ctx context.Context, path string, opts ...FileOption) (*FileCredentials, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("auth: resolve token file: %w", err)
	}
	f := &FileCredentials{path: abs, log: logctx.New(nil), done: make(chan struct{})}
	for _, o := range opts {
		if o != nil {
			o(f)
		}
	}
	if err := f.Reload(); err != nil {
		return nil, err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		f.log.Debug("fsnotify unavailable", slog.String("err", err.Error()))
		close(f.done)
		return f, nil
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		f.log.Debug("fsnotify add failed", slog.String("err", err.Error()))
		close(f.done)
		return f, nil
	}
	f.watcher = w

	ctx, f.stop = context.WithCancel(ctx)
	go f.watch(ctx)
	return f, nil
}

// Token returns the most recently loaded token.
func (f *FileCredentials) Token(ctx context.Context) (string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.token == "" {
		return "", ErrNoCredentials
	}
	return f.token, nil
}

// Reload re-reads the token file. On failure the previous token is kept.
func (f *FileCredentials) Reload() error {
	b, err := os.ReadFile(f.path)
	if err != nil {
		return fmt.Errorf("auth: read token file: %w", err)
	}
	tok := strings.TrimSpace(string(b))
	if tok == "" {
		return fmt.Errorf("auth: token file %s is empty", f.path)
	}
	f.mu.Lock()
	f.token = tok
	f.mu.Unlock()
	return nil
}

// Close stops watching the file. The last token remains available.
func (f *FileCredentials) Close() error {
	if f.stop != nil {
		f.stop()
	}
	<-f.done
	return nil
}

func (f *FileCredentials) watch(ctx context.Context) {
	defer close(f.done)
	defer func() {
		// Best-effort watcher close; no actionable error handling path.
		_ = f.watcher.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-f.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if err := f.Reload(); err != nil {
				// Replacement may be mid-flight; the next event retries.
				f.log.Debug("token reload failed", slog.String("event", ev.String()), slog.String("err", err.Error()))
				continue
			}
			f.log.Debug("token reloaded", slog.String("path", f.path))
		case err, ok := <-f.watcher.Errors:
			if !ok {
				return
			}
			f.log.Debug("fsnotify error", slog.String("err", err.Error()))
		}
	}
}
