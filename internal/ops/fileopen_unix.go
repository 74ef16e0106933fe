//go:build !windows

package ops

import (
	stderrors "errors"
	"os"
	"syscall"

	"github.com/hpungsan/ivtab/internal/errors"
)

// openTableNoFollow opens an interval table for reading with O_NOFOLLOW so a symlink
// swapped in after ValidatePath is still refused. Tables larger than maxBytes are
// rejected before any row is read; maxBytes <= 0 disables the check.
func openTableNoFollow(path string, maxBytes int64) (*os.File, error) {
	fd, err := syscall.Open(path, syscall.O_RDONLY|syscall.O_NOFOLLOW|syscall.O_CLOEXEC, 0)
	if err != nil {
		switch {
		case stderrors.Is(err, syscall.ELOOP):
			return nil, errors.NewInvalidRequest("cannot read from symlink")
		case stderrors.Is(err, syscall.ENOENT):
			return nil, errors.NewFileNotFound(path)
		}
		return nil, errors.NewInternal(err)
	}
	f := os.NewFile(uintptr(fd), path)
	if err := checkSize(f, maxBytes); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// createExportNoFollow creates (or truncates) a file for writing with O_NOFOLLOW.
func createExportNoFollow(path string) (*os.File, error) {
	fd, err := syscall.Open(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC|syscall.O_NOFOLLOW|syscall.O_CLOEXEC, 0600)
	if err != nil {
		if stderrors.Is(err, syscall.ELOOP) {
			return nil, errors.NewInvalidRequest("cannot write to symlink")
		}
		return nil, errors.NewInternal(err)
	}
	return os.NewFile(uintptr(fd), path), nil
}
