//go:build windows

package ops

import (
	"os"

	"github.com/hpungsan/ivtab/internal/errors"
)

// openTableNoFollow opens an interval table for reading.
// Windows has no O_NOFOLLOW; ValidatePath has already refused symlinks.
func openTableNoFollow(path string, maxBytes int64) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewFileNotFound(path)
		}
		return nil, errors.NewInternal(err)
	}
	if err := checkSize(f, maxBytes); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// createExportNoFollow creates (or truncates) a file for writing.
func createExportNoFollow(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return f, nil
}
