package bdispatch

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// FileInfo is what the file responder needs to know about a file.
type FileInfo struct {
	Size    int64
	ModTime time.Time
	IsFile  bool
}

// FileSystem is the storage the file and folder handlers read from. Names are slash separated. Stat
// must return an error matching fs.ErrNotExist for missing files. Open returns the bytes from start up to
// and including end.
type FileSystem interface {
	Stat(ctx context.Context, name string) (FileInfo, error)
	Open(ctx context.Context, name string, start, end int64) (io.ReadCloser, error)
}

// OSFS reads from the local disk. It is the default [FileSystem].
type OSFS struct{}

// Stat implements [FileSystem].
func (OSFS) Stat(_ context.Context, name string) (FileInfo, error) {
	fi, err := os.Stat(filepath.FromSlash(name))
	if err != nil {
		return FileInfo{}, err
	}

	return FileInfo{Size: fi.Size(), ModTime: fi.ModTime(), IsFile: fi.Mode().IsRegular()}, nil
}

// Open implements [FileSystem].
func (OSFS) Open(_ context.Context, name string, start, end int64) (io.ReadCloser, error) {
	f, err := os.Open(filepath.FromSlash(name))
	if err != nil {
		return nil, err
	}

	if _, err := f.Seek(start, io.SeekStart); err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "seek %q", name)
	}

	return limitReadCloser(f, start, end), nil
}

type ioFS struct{ fsys fs.FS }

// FromFS adapts an [fs.FS], such as an embed.FS, to a [FileSystem]. Leading slashes are ignored.
func FromFS(fsys fs.FS) FileSystem {
	return ioFS{fsys}
}

func (f ioFS) Stat(_ context.Context, name string) (FileInfo, error) {
	fi, err := fs.Stat(f.fsys, fsName(name))
	if err != nil {
		return FileInfo{}, err
	}

	return FileInfo{Size: fi.Size(), ModTime: fi.ModTime(), IsFile: fi.Mode().IsRegular()}, nil
}

func (f ioFS) Open(_ context.Context, name string, start, end int64) (io.ReadCloser, error) {
	file, err := f.fsys.Open(fsName(name))
	if err != nil {
		return nil, err
	}

	if s, ok := file.(io.Seeker); ok {
		_, err = s.Seek(start, io.SeekStart)
	} else {
		_, err = io.CopyN(io.Discard, file, start)
	}

	if err != nil {
		file.Close()
		return nil, errors.Wrapf(err, "skip to %d in %q", start, name)
	}

	return limitReadCloser(file, start, end), nil
}

func fsName(name string) string {
	name = strings.TrimPrefix(path.Clean("/"+name), "/")
	if name == "" {
		return "."
	}

	return name
}

type readCloser struct {
	io.Reader
	io.Closer
}

func limitReadCloser(rc io.ReadCloser, start, end int64) io.ReadCloser {
	return readCloser{io.LimitReader(rc, end-start+1), rc}
}
