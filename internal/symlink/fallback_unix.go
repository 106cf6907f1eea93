//go:build !windows

package symlink

import (
	"errors"
	"os"
	"syscall"
)

// isFallbackError classifies link-creation errors that should trigger the
// silent copy fallback rather than a hard failure: privilege problems and
// filesystems that do not support symlinks (e.g. FAT mounts). Anything
// else (missing parent, I/O error) is a genuine failure.
func isFallbackError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, os.ErrPermission) {
		return true
	}
	return errors.Is(err, syscall.EPERM) ||
		errors.Is(err, syscall.EACCES) ||
		errors.Is(err, syscall.EOPNOTSUPP) ||
		errors.Is(err, syscall.EINVAL) ||
		errors.Is(err, syscall.ENOSYS)
}
