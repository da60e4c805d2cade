// internal/storage/memory/memory_test.go
package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackedit/trackedit/internal/config"
	"github.com/trackedit/trackedit/internal/storage"
	"github.com/trackedit/trackedit/internal/storage/storagetest"
)

// Verify Backend implements storage.Backend interface
var _ storage.Backend = (*Backend)(nil)

func TestBackendContract(t *testing.T) {
	t.Run("in memory only", func(t *testing.T) {
		storagetest.RunBackendSuite(t, func(t *testing.T) storage.Backend {
			return New(config.MemoryConfig{})
		})
	})
	t.Run("compressed export", func(t *testing.T) {
		storagetest.RunBackendSuite(t, func(t *testing.T) storage.Backend {
			return New(config.MemoryConfig{OutputDir: t.TempDir(), CompressOutput: true})
		})
	})
	t.Run("plain export", func(t *testing.T) {
		storagetest.RunBackendSuite(t, func(t *testing.T) storage.Backend {
			return New(config.MemoryConfig{OutputDir: t.TempDir()})
		})
	})
}

func TestNew(t *testing.T) {
	b := New(config.MemoryConfig{OutputDir: "/tmp/test", CompressOutput: true})

	require.NotNil(t, b)
	assert.Equal(t, "/tmp/test", b.cfg.OutputDir)
	assert.True(t, b.cfg.CompressOutput)
	assert.NotNil(t, b.sessions)
}

func TestInit_CreatesOutputDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "sessions")
	b := New(config.MemoryConfig{OutputDir: dir})

	require.NoError(t, b.Init())
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestSave_ExportFileName(t *testing.T) {
	tests := []struct {
		name     string
		compress bool
		session  string
		want     string
	}{
		{"gzip", true, "alps", "alps.json.gz"},
		{"plain", false, "alps", "alps.json"},
		{"sanitized", false, "day 1: ridge/north", "day_1__ridge_north.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			b := New(config.MemoryConfig{OutputDir: dir, CompressOutput: tt.compress})
			require.NoError(t, b.Save(context.Background(), tt.session, storagetest.SampleSession(t)))

			assert.Equal(t, filepath.Join(dir, tt.want), b.GetExportedFilePath())
			_, err := os.Stat(filepath.Join(dir, tt.want))
			assert.NoError(t, err)
		})
	}
}

func TestLoad_FromDiskAfterRestart(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	want := storagetest.SampleSession(t)

	first := New(config.MemoryConfig{OutputDir: dir, CompressOutput: true})
	require.NoError(t, first.Save(ctx, "alps", want))

	second := New(config.MemoryConfig{OutputDir: dir})
	names, err := second.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alps"}, names)

	got, err := second.Load(ctx, "alps")
	require.NoError(t, err)
	storagetest.RequireSameSession(t, want, got)
}

func TestSave_SwitchingFormatRemovesStaleFile(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	gz := New(config.MemoryConfig{OutputDir: dir, CompressOutput: true})
	require.NoError(t, gz.Save(ctx, "alps", storagetest.SampleSession(t)))

	plain := New(config.MemoryConfig{OutputDir: dir})
	require.NoError(t, plain.Save(ctx, "alps", storagetest.SampleSession(t)))

	_, err := os.Stat(filepath.Join(dir, "alps.json.gz"))
	assert.True(t, os.IsNotExist(err))
}

func TestLoad_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{not json"), 0644))

	b := New(config.MemoryConfig{OutputDir: dir})
	_, err := b.Load(context.Background(), "bad")
	require.Error(t, err)
	assert.NotErrorIs(t, err, storage.ErrSessionNotFound)
}

func TestList_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), nil, 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.json"), 0755))

	b := New(config.MemoryConfig{OutputDir: dir})
	names, err := b.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, names)
}
