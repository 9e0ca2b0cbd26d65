//go:build windows

package fsutil

import (
	stderrors "errors"
	"fmt"
	"os"
)

// ErrSymlink is returned when a data file turns out to be a symlink.
var ErrSymlink = stderrors.New("refusing to follow symlink")

// openNoFollow opens a file after an Lstat symlink check.
// On Windows, O_NOFOLLOW is not available.
func openNoFollow(path string, flag int, perm os.FileMode) (*os.File, error) {
	if info, err := os.Lstat(path); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrSymlink)
	}
	return os.OpenFile(path, flag, perm)
}
