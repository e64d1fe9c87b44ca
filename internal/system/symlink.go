package system

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ReplaceSymlink points link at target, replacing whatever was there
// before. The link is created under a temporary name and renamed into
// place, so a concurrent reader never observes a missing entry and a
// re-run never fails on an existing link.
func ReplaceSymlink(target, link string) error {
	if err := os.MkdirAll(filepath.Dir(link), 0o755); err != nil {
		return fmt.Errorf("create link directory: %w", err)
	}

	tmp := fmt.Sprintf("%s.%d.tmp", link, os.Getpid())
	if err := os.Symlink(target, tmp); err != nil {
		return fmt.Errorf("create symlink: %w", err)
	}

	if err := os.Rename(tmp, link); err != nil {
		_ = os.Remove(tmp)

		return fmt.Errorf("replace symlink: %w", err)
	}

	return nil
}

// ReadSymlink returns the target of link, or an empty string when the
// link does not exist or is not a symlink.
func ReadSymlink(link string) (string, error) {
	info, err := os.Lstat(link)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}

		return "", fmt.Errorf("stat symlink: %w", err)
	}

	if info.Mode()&os.ModeSymlink == 0 {
		return "", nil
	}

	target, err := os.Readlink(link)
	if err != nil {
		return "", fmt.Errorf("read symlink: %w", err)
	}

	return target, nil
}

// RemoveSymlink deletes link if it exists, succeeding when it is already gone.
func RemoveSymlink(link string) error {
	if err := os.Remove(link); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove symlink: %w", err)
	}

	return nil
}
