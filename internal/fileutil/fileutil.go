// Package fileutil copies photo files into the sorted tree.
package fileutil

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// CopyFile copies src to dst, replacing any existing file at dst. The copy
// keeps the source permissions and modification time. Data is staged in a
// temporary sibling and renamed into place so dst is never left half written.
func CopyFile(src, dst string) error {
	_, err := copyFile(src, dst, false)
	return err
}

// CopyFileVerified behaves like CopyFile and additionally compares the size and
// SHA-256 of what was read against what was written. The staged file is
// removed on mismatch and dst is left untouched.
func CopyFileVerified(src, dst string) error {
	_, err := copyFile(src, dst, true)
	return err
}

// EnsureDir creates dir and any missing parents.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}
	return nil
}

func copyFile(src, dst string, verify bool) (int64, error) {
	info, err := os.Stat(src)
	if err != nil {
		return 0, fmt.Errorf("stat source: %w", err)
	}
	if !info.Mode().IsRegular() {
		return 0, fmt.Errorf("source %q is not a regular file", src)
	}

	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*.partial")
	if err != nil {
		return 0, err
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	var written int64
	if verify {
		srcHasher := sha256.New()
		dstHasher := sha256.New()
		written, err = io.Copy(io.MultiWriter(tmp, dstHasher), io.TeeReader(in, srcHasher))
		if err != nil {
			return written, err
		}
		if written != info.Size() {
			return written, fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", info.Size(), written)
		}
		if !bytes.Equal(srcHasher.Sum(nil), dstHasher.Sum(nil)) {
			return written, errors.New("copy hash mismatch: file corrupted during copy")
		}
	} else if written, err = io.Copy(tmp, in); err != nil {
		return written, err
	}

	if err := tmp.Chmod(info.Mode().Perm()); err != nil {
		return written, err
	}
	if err := tmp.Close(); err != nil {
		return written, err
	}
	if err := os.Chtimes(tmpPath, info.ModTime(), info.ModTime()); err != nil {
		return written, err
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		return written, err
	}
	committed = true
	return written, nil
}
