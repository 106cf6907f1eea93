// Package symlink materializes shared-file mappings into worktrees.
//
// Cross-platform link creation is abstracted behind the Linker capability
// interface, selected once via NewLinker at startup instead of scattering
// platform conditionals through the effect logic. On platforms or
// filesystems where native symlinks are unavailable (Windows without
// developer mode, FAT volumes), link creation falls back to a full copy;
// that fallback is a recoverable condition, and the effect still reports
// success with the fallback noted.
//
// The packaged effects:
//   - Effect creates a link or copy in the worktree (post-add).
//   - RemoveEffect unlinks a managed symlink before worktree removal
//     (pre-remove). Copy-mode targets are never deleted:
//     the user may have edited an independent copy.
//
// Status re-derives the live state of a mapping target for diagnostics;
// nothing in this package persists state.
package symlink
