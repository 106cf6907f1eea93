package symlink

import (
	"fmt"
	"os"
)

// Linker is the platform capability abstraction for symbolic links.
// Exactly one implementation is selected per process via NewLinker;
// business logic never branches on the operating system itself.
type Linker interface {
	// CreateLink creates a symbolic link at target pointing to source.
	// The caller is responsible for removing a pre-existing target and for
	// creating parent directories.
	CreateLink(source, target string) error

	// RemoveLink removes the symlink at target. It refuses to remove
	// anything that is not a symlink.
	RemoveLink(target string) error

	// SupportsNativeSymlink reports whether the platform can create
	// symlinks at all. When false, effects go straight to copy mode
	// without attempting a link.
	SupportsNativeSymlink() bool
}

// osLinker is the default Linker backed by the os package. Platform
// differences (privilege requirements on Windows, unsupported filesystems)
// surface as error classes handled by the fallback classification in
// fallback_*.go rather than by separate implementations.
type osLinker struct {
	supportsNative bool
}

// NewLinker selects the platform link strategy once at startup.
func NewLinker() Linker {
	return &osLinker{supportsNative: probeNativeSymlink()}
}

// CreateLink creates a symbolic link via os.Symlink. On all supported
// platforms os.Symlink produces the correct link flavor for files and
// directories alike.
func (l *osLinker) CreateLink(source, target string) error {
	return os.Symlink(source, target)
}

// RemoveLink removes the symlink at target. A non-symlink target is an
// error: the engine must never delete content it does not manage.
func (l *osLinker) RemoveLink(target string) error {
	info, err := os.Lstat(target)
	if err != nil {
		return err
	}
	if info.Mode()&os.ModeSymlink == 0 {
		return fmt.Errorf("refusing to remove %s: not a symlink", target)
	}
	return os.Remove(target)
}

// SupportsNativeSymlink reports the result of the startup probe.
func (l *osLinker) SupportsNativeSymlink() bool {
	return l.supportsNative
}

// probeNativeSymlink checks once whether the process can create symlinks
// by linking a scratch file in the temp directory. On Unix this is
// effectively always true; on Windows it depends on developer mode or
// elevation.
func probeNativeSymlink() bool {
	dir, err := os.MkdirTemp("", "twig-linkprobe-")
	if err != nil {
		return false
	}
	defer func() { _ = os.RemoveAll(dir) }()

	src := dir + string(os.PathSeparator) + "src"
	if err := os.WriteFile(src, []byte("probe"), 0o600); err != nil {
		return false
	}
	return os.Symlink(src, dir+string(os.PathSeparator)+"link") == nil
}
