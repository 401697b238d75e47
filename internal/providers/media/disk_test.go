package media

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskSaveAndFetch(t *testing.T) {
	root := t.TempDir()
	p := NewDisk(Config{RootDir: root})
	ctx := context.Background()

	fileURL, err := p.Save(ctx, "123/0_scene_photo_scene.jpg", []byte("payload"))
	require.NoError(t, err)

	data, err := p.Fetch(ctx, fileURL)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), data)
}

func TestDiskSaveCreatesNestedDirectories(t *testing.T) {
	root := t.TempDir()
	p := NewDisk(Config{RootDir: root})

	fileURL, err := p.Save(context.Background(), "a/b/c.bin", []byte("x"))
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(root, filepath.FromSlash(fileURL)))
	assert.NoError(t, err)
}

func TestDiskRejectsPathEscape(t *testing.T) {
	root := t.TempDir()
	p := NewDisk(Config{RootDir: root})
	ctx := context.Background()

	fileURL, err := p.Save(ctx, "../escape.txt", []byte("x"))
	require.NoError(t, err)

	// The traversal is stripped; the file stays under the root.
	_, err = os.Stat(filepath.Join(root, filepath.FromSlash(fileURL)))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(filepath.Dir(root), "escape.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestDiskFetchMissingFile(t *testing.T) {
	p := NewDisk(Config{RootDir: t.TempDir()})

	_, err := p.Fetch(context.Background(), "does/not/exist")
	assert.Error(t, err)
}
