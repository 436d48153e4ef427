package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cloo-solutions/shopdesk/internal/domain"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// GenerationBumper invalidates a tenant's cached index
type GenerationBumper interface {
	Bump(ctx context.Context, tenant domain.Tenant) (int64, error)
}

// Watcher bumps a tenant's generation when documents in its folder are
// edited outside the upload API. Bursts of events for one tenant within the
// debounce window cause a single bump.
type Watcher struct {
	watcher  *fsnotify.Watcher
	root     string
	bumper   GenerationBumper
	debounce time.Duration
	logger   zerolog.Logger

	mu      sync.Mutex
	pending map[domain.Tenant]*time.Timer
}

// NewWatcher watches every tenant folder under root, creating missing folders
func NewWatcher(root string, bumper GenerationBumper, debounce time.Duration, logger zerolog.Logger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, tenant := range domain.Tenants {
		dir := filepath.Join(root, tenant.DocumentFolder())
		if err := os.MkdirAll(dir, 0o755); err != nil {
			w.Close()
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
		if err := w.Add(dir); err != nil {
			w.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	return &Watcher{
		watcher:  w,
		root:     root,
		bumper:   bumper,
		debounce: debounce,
		logger:   logger,
		pending:  make(map[domain.Tenant]*time.Timer),
	}, nil
}

// Run processes events until ctx is cancelled or the watcher is closed
func (w *Watcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			if !isDocumentName(filepath.Base(event.Name)) {
				continue
			}
			tenant, ok := w.tenantFor(event.Name)
			if !ok {
				continue
			}
			w.schedule(ctx, tenant)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn().Err(err).Msg("watcher: filesystem error")
		}
	}
}

// Close stops watching and cancels pending bumps
func (w *Watcher) Close() error {
	w.mu.Lock()
	for tenant, timer := range w.pending {
		timer.Stop()
		delete(w.pending, tenant)
	}
	w.mu.Unlock()
	return w.watcher.Close()
}

func (w *Watcher) schedule(ctx context.Context, tenant domain.Tenant) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.pending[tenant]; ok {
		timer.Reset(w.debounce)
		return
	}
	w.pending[tenant] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, tenant)
		w.mu.Unlock()

		gen, err := w.bumper.Bump(ctx, tenant)
		if err != nil {
			w.logger.Warn().Err(err).Str("tenant", string(tenant)).Msg("watcher: invalidating index failed")
			return
		}
		w.logger.Info().Str("tenant", string(tenant)).Int64("generation", gen).Msg("watcher: documents changed")
	})
}

func (w *Watcher) tenantFor(path string) (domain.Tenant, bool) {
	folder := filepath.Base(filepath.Dir(path))
	if filepath.Dir(filepath.Dir(path)) != filepath.Clean(w.root) {
		return "", false
	}
	for _, tenant := range domain.Tenants {
		if tenant.DocumentFolder() == folder {
			return tenant, true
		}
	}
	return "", false
}
