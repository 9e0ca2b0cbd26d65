// Package fsutil holds the file primitives shared by the flat-file stores.
package fsutil

import (
	"crypto/rand"
	"encoding/hex"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// WriteFileAtomic writes data to a temp file next to path, syncs it, and renames
// it into place so readers never observe a partial file.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return fmt.Errorf("generate temp file name: %w", err)
	}
	tempPath := path + "." + hex.EncodeToString(randBytes) + ".tmp"

	file, err := openNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_EXCL, perm)
	if err != nil {
		return err
	}

	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	if _, err := file.Write(data); err != nil {
		return err
	}
	if err := file.Sync(); err != nil {
		return err
	}
	// Close before rename (required on Windows; fine elsewhere).
	if err := file.Close(); err != nil {
		return err
	}
	file = nil

	// Destination must not be a symlink.
	if info, err := os.Lstat(path); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return fmt.Errorf("%s: %w", path, ErrSymlink)
	}

	if err := os.Rename(tempPath, path); err != nil {
		return err
	}
	success = true
	return nil
}

// CreateExclusive creates path with data only if it does not exist yet.
// It reports whether the file was created.
func CreateExclusive(path string, data []byte, perm os.FileMode) (bool, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return false, fmt.Errorf("create directory: %w", err)
	}

	file, err := openNoFollow(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, perm)
	if err != nil {
		if stderrors.Is(err, os.ErrExist) {
			return false, nil
		}
		return false, err
	}
	defer file.Close()

	if _, err := file.Write(data); err != nil {
		return true, err
	}
	return true, file.Sync()
}

// AppendLine appends line plus a trailing newline to path, creating it if needed.
func AppendLine(path, line string, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	file, err := openNoFollow(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, perm)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = file.WriteString(line + "\n")
	return err
}

// ReadFile reads path, refusing to follow a symlink at the final component.
func ReadFile(path string) ([]byte, error) {
	file, err := openNoFollow(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return io.ReadAll(file)
}
