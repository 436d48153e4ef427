package storage

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/cloo-solutions/shopdesk/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingBumper struct {
	mu     sync.Mutex
	counts map[domain.Tenant]int
}

func newCountingBumper() *countingBumper {
	return &countingBumper{counts: make(map[domain.Tenant]int)}
}

func (b *countingBumper) Bump(ctx context.Context, tenant domain.Tenant) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.counts[tenant]++
	return int64(b.counts[tenant]), nil
}

func (b *countingBumper) count(tenant domain.Tenant) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.counts[tenant]
}

func startWatcher(t *testing.T, root string, bumper GenerationBumper) {
	t.Helper()
	w, err := NewWatcher(root, bumper, 50*time.Millisecond, zerolog.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go w.Run(ctx)
	t.Cleanup(func() {
		cancel()
		w.Close()
	})
}

func TestWatcher_CreatesTenantFolders(t *testing.T) {
	root := t.TempDir()
	startWatcher(t, root, newCountingBumper())

	for _, folder := range []string{"sabiMarket", "trace", "katsu"} {
		info, err := os.Stat(filepath.Join(root, folder))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestWatcher_BumpsTenantOnDocumentChange(t *testing.T) {
	root := t.TempDir()
	bumper := newCountingBumper()
	startWatcher(t, root, bumper)

	require.NoError(t, os.WriteFile(filepath.Join(root, "trace", "faq.txt"), []byte("hello"), 0o644))

	assert.Eventually(t, func() bool { return bumper.count(domain.TenantTrace) == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, bumper.count(domain.TenantSabi))
}

func TestWatcher_DebouncesBursts(t *testing.T) {
	root := t.TempDir()
	bumper := newCountingBumper()
	startWatcher(t, root, bumper)

	path := filepath.Join(root, "sabiMarket", "faq.txt")
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte{byte('a' + i)}, 0o644))
	}

	assert.Eventually(t, func() bool { return bumper.count(domain.TenantSabi) >= 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, 1, bumper.count(domain.TenantSabi))
}

func TestWatcher_IgnoresNonDocuments(t *testing.T) {
	root := t.TempDir()
	bumper := newCountingBumper()
	startWatcher(t, root, bumper)

	require.NoError(t, os.WriteFile(filepath.Join(root, "katsu", "notes.json"), []byte("{}"), 0o644))

	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, 0, bumper.count(domain.TenantKatsu))
}

func TestWatcher_UploadThroughStore(t *testing.T) {
	root := t.TempDir()
	bumper := newCountingBumper()
	startWatcher(t, root, bumper)

	store := NewFilesystemDocumentStore(root)
	require.NoError(t, store.PutDocument(context.Background(), domain.Document{
		Tenant: domain.TenantKatsu, Name: "menu.txt", Content: "ramen",
	}))

	assert.Eventually(t, func() bool { return bumper.count(domain.TenantKatsu) == 1 }, 2*time.Second, 10*time.Millisecond)
}
