package report

import (
	"archive/tar"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// ArchiveFormat selects the compression of a results archive.
type ArchiveFormat string

const (
	ArchiveNone ArchiveFormat = ""
	ArchiveZstd ArchiveFormat = "zstd"
	ArchiveXz   ArchiveFormat = "xz"
)

// ParseArchiveFormat validates a format name.
func ParseArchiveFormat(s string) (ArchiveFormat, error) {
	switch f := ArchiveFormat(strings.ToLower(s)); f {
	case ArchiveNone, ArchiveZstd, ArchiveXz:
		return f, nil
	default:
		return ArchiveNone, fmt.Errorf("unsupported archive format %q (expected zstd or xz)", s)
	}
}

// Extension returns the archive file suffix.
func (f ArchiveFormat) Extension() string {
	switch f {
	case ArchiveZstd:
		return ".tar.zst"
	case ArchiveXz:
		return ".tar.xz"
	}
	return ".tar"
}

// Archive packs dir into a compressed tarball next to it and returns the
// archive path. No partial archive is left behind on failure.
func Archive(dir string, format ArchiveFormat) (path string, err error) {
	if format == ArchiveNone {
		return "", fmt.Errorf("no archive format given")
	}
	dir = filepath.Clean(dir)
	dest := dir + format.Extension()

	f, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("creating archive %s: %w", dest, err)
	}
	defer func() {
		f.Close()
		if err != nil {
			os.Remove(dest)
		}
	}()

	var cw io.WriteCloser
	switch format {
	case ArchiveZstd:
		cw, err = zstd.NewWriter(f)
	case ArchiveXz:
		cw, err = xz.NewWriter(f)
	default:
		err = fmt.Errorf("unsupported archive format %q", format)
	}
	if err != nil {
		return "", fmt.Errorf("creating %s compressor: %w", format, err)
	}

	if err := writeTar(cw, dir); err != nil {
		cw.Close()
		return "", err
	}
	if err := cw.Close(); err != nil {
		return "", fmt.Errorf("finishing archive %s: %w", dest, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing archive %s: %w", dest, err)
	}
	return dest, nil
}

func writeTar(w io.Writer, dir string) error {
	tw := tar.NewWriter(w)
	base := filepath.Dir(dir)

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() && !info.IsDir() {
			return nil
		}

		name, err := filepath.Rel(base, path)
		if err != nil {
			return err
		}
		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash(name)
		if info.IsDir() {
			hdr.Name += "/"
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		src, err := os.Open(path)
		if err != nil {
			return err
		}
		defer src.Close()
		_, err = io.Copy(tw, src)
		return err
	})
	if err != nil {
		return fmt.Errorf("archiving %s: %w", dir, err)
	}
	return tw.Close()
}
