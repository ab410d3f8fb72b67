// Package archive packages extracted segments into a single zip file.
package archive

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
)

// ErrArchiveFailed indicates the zip file could not be written.
var ErrArchiveFailed = errors.New("archive failed")

// Info describes a written archive.
type Info struct {
	Path  string
	Files int
	Bytes int64 // size of the zip file on disk
}

// Zip writes every regular file directly inside srcDir to dest, sorted by
// name, without directory prefixes. Subdirectories are ignored. An empty
// srcDir yields a valid empty archive.
//
// The archive is written to a temporary file next to dest and renamed into
// place, so dest is either the previous file or a complete new archive.
func Zip(ctx context.Context, srcDir, dest string) (Info, error) {
	names, err := regularFiles(srcDir)
	if err != nil {
		return Info{}, fmt.Errorf("%w: %w", ErrArchiveFailed, err)
	}

	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return Info{}, fmt.Errorf("%w: create %s: %w", ErrArchiveFailed, dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".speechcut-*.zip.tmp")
	if err != nil {
		return Info{}, fmt.Errorf("%w: create temp file: %w", ErrArchiveFailed, err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	zw := zip.NewWriter(tmp)
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			cleanup()
			return Info{}, err
		}
		if err := addFile(zw, filepath.Join(srcDir, name), name); err != nil {
			cleanup()
			return Info{}, fmt.Errorf("%w: %s: %w", ErrArchiveFailed, name, err)
		}
	}
	if err := zw.Close(); err != nil {
		cleanup()
		return Info{}, fmt.Errorf("%w: finalize: %w", ErrArchiveFailed, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return Info{}, fmt.Errorf("%w: close temp file: %w", ErrArchiveFailed, err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		_ = os.Remove(tmpName)
		return Info{}, fmt.Errorf("%w: rename temp file: %w", ErrArchiveFailed, err)
	}

	st, err := os.Stat(dest)
	if err != nil {
		return Info{}, fmt.Errorf("%w: %w", ErrArchiveFailed, err)
	}
	return Info{Path: dest, Files: len(names), Bytes: st.Size()}, nil
}

// regularFiles lists the names of regular files directly in dir, sorted.
// A missing dir is treated as empty.
func regularFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)
	return names, nil
}

func addFile(zw *zip.Writer, path, name string) error {
	f, err := os.Open(path) // #nosec G304 -- path is built from a directory listing
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	st, err := f.Stat()
	if err != nil {
		return err
	}
	hdr, err := zip.FileInfoHeader(st)
	if err != nil {
		return err
	}
	hdr.Name = name
	hdr.Method = zip.Deflate

	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, f)
	return err
}
