package vfs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseDirectory(t *testing.T, d Directory) {
	require.NoError(t, WriteFile(d, "b.bin", []byte("second")))
	require.NoError(t, WriteFile(d, "a.BIN", []byte("first")))
	require.NoError(t, WriteFile(d, "notes.txt", []byte("skip")))

	files, err := ListFiles(d, ".bin")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.BIN", "b.bin"}, files)

	data, err := ReadFile(d, "b.bin")
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), data)

	require.NoError(t, WriteFile(d, "b.bin", []byte("2")))
	f, err := DirectoryGetFile(d, "b.bin")
	require.NoError(t, err)
	assert.Equal(t, int64(1), f.Size())

	require.NoError(t, d.Remove("b.bin"))
	_, err = ReadFile(d, "b.bin")
	assert.Error(t, err)

	for _, name := range []string{"", "..", "../x.bin", `dir\x.bin`} {
		assert.Error(t, WriteFile(d, name, nil), name)
	}
}

func TestMemoryDirectory(t *testing.T) {
	exerciseDirectory(t, NewMemoryDirectory("mem"))
}

func TestDirectoryDriver(t *testing.T) {
	dir := t.TempDir()
	dd := NewDirectoryDriver(dir)
	exerciseDirectory(t, dd)

	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.bin"), 0o755))
	files, err := ListFiles(dd, ".bin")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.BIN"}, files, "directories are not listed")

	_, err = DirectoryGetFile(dd, "sub.bin")
	assert.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 3, "no temporary files left")
}
