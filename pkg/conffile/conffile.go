// Package conffile locates and atomically writes a per-user configuration file.
package conffile

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

type File struct {
	fullname string
	perms    os.FileMode
}

type Opt func(*File)

// WithDirName resolves the file under a dot directory in the user's home.
func WithDirName(dir, name string) Opt {
	return func(f *File) {
		home, err := os.UserHomeDir()
		if err != nil {
			return
		}
		f.fullname = filepath.Join(home, dir, name)
	}
}

// WithEnvFile overrides the filename from an environment variable when set.
func WithEnvFile(env string) Opt {
	return func(f *File) {
		if name := os.Getenv(env); name != "" {
			f.fullname = name
		}
	}
}

// WithFullname sets the filename directly.
func WithFullname(name string) Opt {
	return func(f *File) {
		f.fullname = name
	}
}

func New(opts ...Opt) *File {
	f := &File{perms: 0600}
	for _, opt := range opts {
		opt(f)
	}
	if f.fullname == "" {
		return nil
	}
	return f
}

func (f *File) Name() string {
	return f.fullname
}

func (f *File) Open() (io.ReadCloser, error) {
	return os.Open(f.fullname)
}

// Write replaces the file contents, creating parent directories as needed.
// The content lands in a temp file first and is renamed into place so a
// concurrent reader never sees a partial write.
func (f *File) Write(rdr io.Reader) error {
	dir := filepath.Dir(f.fullname)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(f.fullname)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	_, err = io.Copy(tmp, rdr)
	if err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err = tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err = os.Chmod(tmpName, f.perms); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err = os.Rename(tmpName, f.fullname); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", f.fullname, err)
	}
	return nil
}
