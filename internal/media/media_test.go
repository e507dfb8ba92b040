package media_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/pairup/internal/media"
)

func touch(t *testing.T, path string, size int) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o600))
}

func TestScan(t *testing.T) {
	root := t.TempDir()

	touch(t, filepath.Join(root, "jirapa", "Kojo Mensah.WAV"), 12)
	touch(t, filepath.Join(root, "Ama Serwaa.mp3"), 3)
	touch(t, filepath.Join(root, "notes.txt"), 1)
	touch(t, filepath.Join(root, ".trash", "Esi.mp3"), 1)
	touch(t, filepath.Join(root, ".hidden.mp3"), 1)

	files, err := media.Scan(root, []string{"mp3", ".wav"})
	require.NoError(t, err)
	require.Len(t, files, 2)

	assert.Equal(t, "Ama Serwaa", files[0].Key())
	assert.Equal(t, ".mp3", files[0].Ext)
	assert.Equal(t, int64(3), files[0].Size)

	assert.Equal(t, "Kojo Mensah", files[1].Key())
	assert.Equal(t, ".wav", files[1].Ext)
	assert.Equal(t, filepath.Join(root, "jirapa", "Kojo Mensah.WAV"), files[1].Path)
	assert.Equal(t, int64(12), files[1].Size)
}

func TestScan_MissingRoot(t *testing.T) {
	_, err := media.Scan(filepath.Join(t.TempDir(), "nope"), []string{".mp3"})
	assert.Error(t, err)
}

func TestFromPath(t *testing.T) {
	f := media.FromPath("/greetings/Nandom Youth.M4A")

	assert.Equal(t, "Nandom Youth.M4A", f.Name)
	assert.Equal(t, ".m4a", f.Ext)
	assert.Equal(t, "Nandom Youth", f.Key())

	assert.Equal(t, "README", media.FromPath("README").Key())
	assert.Len(t, media.FromPaths([]string{"a.mp3", "b.mp3"}), 2)
}
