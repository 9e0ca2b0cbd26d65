//go:build !windows

package fsutil

import (
	stderrors "errors"
	"fmt"
	"os"
	"syscall"
)

// ErrSymlink is returned when a data file turns out to be a symlink.
var ErrSymlink = stderrors.New("refusing to follow symlink")

// openNoFollow opens a file with O_NOFOLLOW so a symlink planted in the data
// directory cannot redirect a write. O_CLOEXEC prevents FD leaks across exec.
func openNoFollow(path string, flag int, perm os.FileMode) (*os.File, error) {
	fd, err := syscall.Open(path, flag|syscall.O_NOFOLLOW|syscall.O_CLOEXEC, uint32(perm))
	if err != nil {
		if stderrors.Is(err, syscall.ELOOP) {
			return nil, fmt.Errorf("%s: %w", path, ErrSymlink)
		}
		return nil, &os.PathError{Op: "open", Path: path, Err: err}
	}
	return os.NewFile(uintptr(fd), path), nil
}
