package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"

	"github.com/m-mizutani/goerr/v2"
)

var fileKeyPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// File is a KV keeping one file per key under a directory
type File struct {
	dir string
}

// NewFile creates the directory if needed and returns a File KV rooted at it
func NewFile(dir string) (*File, error) {
	if dir == "" {
		return nil, goerr.New("directory is required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, goerr.Wrap(err, "failed to create data directory", goerr.V("dir", dir))
	}
	return &File{dir: dir}, nil
}

func (f *File) path(key string) (string, error) {
	if !fileKeyPattern.MatchString(key) || key == "." || key == ".." {
		return "", goerr.New("invalid key", goerr.V("key", key))
	}
	return filepath.Join(f.dir, key+".json"), nil
}

func (f *File) Get(ctx context.Context, key string) ([]byte, error) {
	path, err := f.path(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, goerr.Wrap(ErrNotFound, "file", goerr.V("path", path))
		}
		return nil, goerr.Wrap(err, "failed to read file", goerr.V("path", path))
	}
	return data, nil
}

// Set writes a temporary file and renames it over the target so a reader
// never observes a partial value.
func (f *File) Set(ctx context.Context, key string, value []byte) error {
	path, err := f.path(key)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(f.dir, "."+key+".*.tmp")
	if err != nil {
		return goerr.Wrap(err, "failed to create temp file", goerr.V("dir", f.dir))
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		return goerr.Wrap(err, "failed to write temp file", goerr.V("path", tmp.Name()))
	}
	if err := tmp.Close(); err != nil {
		return goerr.Wrap(err, "failed to close temp file", goerr.V("path", tmp.Name()))
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return goerr.Wrap(err, "failed to replace file", goerr.V("path", path))
	}
	return nil
}

func (f *File) Remove(ctx context.Context, key string) error {
	path, err := f.path(key)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return goerr.Wrap(err, "failed to remove file", goerr.V("path", path))
	}
	return nil
}
