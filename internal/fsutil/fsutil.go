// SPDX-License-Identifier: MPL-2.0

// Package fsutil provides recursive directory copy helpers for bundle trees.
//
// Framework and dSYM bundles contain internal symbolic links (e.g. the
// Versions/Current layout on macOS); a copy that follows or drops links would
// corrupt bundle-relative references, so CopyTree recreates links verbatim.
package fsutil

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// CopyTree recursively copies the directory at src to dst, preserving
// symbolic links and file permissions. dst must not already exist as a file;
// existing directories are merged into, existing files are overwritten.
func CopyTree(src, dst string) error {
	srcInfo, err := os.Lstat(src)
	if err != nil {
		return fmt.Errorf("stat source %s: %w", src, err)
	}
	if !srcInfo.IsDir() {
		return fmt.Errorf("source %s is not a directory", src)
	}

	return filepath.WalkDir(src, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		switch {
		case d.Type()&fs.ModeSymlink != 0:
			return copySymlink(path, target)
		case d.IsDir():
			info, err := d.Info()
			if err != nil {
				return err
			}
			return os.MkdirAll(target, info.Mode().Perm())
		default:
			return copyFile(path, target)
		}
	})
}

// CopyInto copies the directory at src to dst/<basename of src>.
func CopyInto(src, dstDir string) error {
	return CopyTree(src, filepath.Join(dstDir, filepath.Base(src)))
}

func copySymlink(src, dst string) error {
	link, err := os.Readlink(src)
	if err != nil {
		return fmt.Errorf("read link %s: %w", src, err)
	}
	// Replace rather than fail when re-copying over an earlier run.
	if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
		return err
	}
	if err := os.Symlink(link, dst); err != nil {
		return fmt.Errorf("create link %s: %w", dst, err)
	}
	return nil
}

func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }() // Read-only file; close error non-critical

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("copy %s: %w", src, err)
	}
	return out.Close()
}
