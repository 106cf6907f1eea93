//go:build windows

package symlink

import (
	"errors"
	"os"

	"golang.org/x/sys/windows"
)

// isFallbackError classifies link-creation errors that should trigger the
// silent copy fallback. On Windows, symlink creation without developer
// mode or elevation fails with ERROR_PRIVILEGE_NOT_HELD; network and FAT
// filesystems report the operation as unsupported.
func isFallbackError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, os.ErrPermission) {
		return true
	}
	return errors.Is(err, windows.ERROR_PRIVILEGE_NOT_HELD) ||
		errors.Is(err, windows.ERROR_ACCESS_DENIED) ||
		errors.Is(err, windows.ERROR_NOT_SUPPORTED)
}
