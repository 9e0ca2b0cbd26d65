package fsutil

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteFileAtomic_CreatesAndOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "doc.json")

	require.NoError(t, WriteFileAtomic(path, []byte("first"), 0600))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "first", string(data))

	require.NoError(t, WriteFileAtomic(path, []byte("second"), 0600))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "second", string(data))

	// No temp files left behind
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestWriteFileAtomic_RejectsSymlinkDestination(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	dir := t.TempDir()
	target := filepath.Join(dir, "target")
	require.NoError(t, os.WriteFile(target, []byte("keep"), 0600))
	link := filepath.Join(dir, "link.md")
	require.NoError(t, os.Symlink(target, link))

	err := WriteFileAtomic(link, []byte("overwrite"), 0600)
	require.Error(t, err)
	require.True(t, stderrors.Is(err, ErrSymlink))

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	require.Equal(t, "keep", string(data))
}

func TestCreateExclusive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.md")

	created, err := CreateExclusive(path, []byte("# a\n\n"), 0600)
	require.NoError(t, err)
	require.True(t, created)

	created, err = CreateExclusive(path, []byte("different"), 0600)
	require.NoError(t, err)
	require.False(t, created)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "# a\n\n", string(data))
}

func TestAppendLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.txt")

	require.NoError(t, AppendLine(path, "one", 0600))
	require.NoError(t, AppendLine(path, "two", 0600))

	data, err := ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "one\ntwo\n", string(data))
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	require.True(t, stderrors.Is(err, os.ErrNotExist))
}

func TestReadFile_RejectsSymlink(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	dir := t.TempDir()
	target := filepath.Join(dir, "target")
	require.NoError(t, os.WriteFile(target, []byte("secret"), 0600))
	link := filepath.Join(dir, "link")
	require.NoError(t, os.Symlink(target, link))

	_, err := ReadFile(link)
	require.True(t, stderrors.Is(err, ErrSymlink))
}
