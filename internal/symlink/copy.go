package symlink

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// CopyPath copies a file or directory tree from source to target,
// preserving permission bits where the platform supports them. Symlinks
// inside a copied directory are recreated as symlinks with their original
// destinations.
func CopyPath(source, target string) error {
	info, err := os.Lstat(source)
	if err != nil {
		return fmt.Errorf("failed to stat copy source %s: %w", source, err)
	}

	switch {
	case info.Mode()&os.ModeSymlink != 0:
		dest, err := os.Readlink(source)
		if err != nil {
			return fmt.Errorf("failed to read link %s: %w", source, err)
		}
		return os.Symlink(dest, target)
	case info.IsDir():
		return copyDir(source, target, info.Mode().Perm())
	default:
		return copyFile(source, target, info.Mode().Perm())
	}
}

// copyFile copies a single regular file, applying the source's permission
// bits to the destination.
func copyFile(source, target string, perm os.FileMode) error {
	in, err := os.Open(source)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", source, err)
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", target, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to copy %s: %w", source, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", target, err)
	}

	// OpenFile's perm is filtered by umask; chmod applies the exact bits.
	return os.Chmod(target, perm)
}

// copyDir recursively copies a directory tree.
func copyDir(source, target string, perm os.FileMode) error {
	if err := os.MkdirAll(target, perm); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", target, err)
	}

	entries, err := os.ReadDir(source)
	if err != nil {
		return fmt.Errorf("failed to read directory %s: %w", source, err)
	}

	for _, entry := range entries {
		srcPath := filepath.Join(source, entry.Name())
		dstPath := filepath.Join(target, entry.Name())
		if err := CopyPath(srcPath, dstPath); err != nil {
			return err
		}
	}

	return os.Chmod(target, perm)
}
