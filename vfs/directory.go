package vfs

import (
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
)

// DirectoryDriver exposes directory of host filesystem
type DirectoryDriver struct {
	path string
}

func NewDirectoryDriver(path string) *DirectoryDriver {
	return &DirectoryDriver{path: path}
}

func (dd *DirectoryDriver) Name() string {
	return filepath.Base(dd.path)
}

func (dd *DirectoryDriver) IsDirectory() bool {
	return true
}

func (dd *DirectoryDriver) Path() string {
	return dd.path
}

func (dd *DirectoryDriver) List() ([]string, error) {
	entries, err := os.ReadDir(dd.path)
	if err != nil {
		return nil, errors.Wrapf(err, "Error getting directory '%s' info", dd.path)
	}
	result := make([]string, 0, len(entries))
	for _, e := range entries {
		result = append(result, e.Name())
	}
	sort.Strings(result)
	return result, nil
}

func (dd *DirectoryDriver) elementPath(name string) (string, error) {
	if err := CheckName(name); err != nil {
		return "", err
	}
	return filepath.Join(dd.path, name), nil
}

func (dd *DirectoryDriver) GetElement(name string) (Element, error) {
	newPath, err := dd.elementPath(name)
	if err != nil {
		return nil, err
	}
	s, err := os.Stat(newPath)
	if err != nil {
		return nil, errors.Wrapf(err, "Stat error")
	}
	if s.IsDir() {
		return NewDirectoryDriver(newPath), nil
	}
	return &DirectoryDriverFile{path: newPath}, nil
}

func (dd *DirectoryDriver) CreateFile(name string) (File, error) {
	newPath, err := dd.elementPath(name)
	if err != nil {
		return nil, err
	}
	f, err := os.OpenFile(newPath, os.O_RDWR|os.O_CREATE, 0666)
	if err != nil {
		return nil, errors.Wrapf(err, "file '%s' creation failure", newPath)
	}
	f.Close()
	return &DirectoryDriverFile{path: newPath}, nil
}

func (dd *DirectoryDriver) Remove(name string) error {
	p, err := dd.elementPath(name)
	if err != nil {
		return err
	}
	return os.Remove(p)
}

type DirectoryDriverFile struct {
	path string
}

func (ddf *DirectoryDriverFile) Name() string {
	return filepath.Base(ddf.path)
}

func (ddf *DirectoryDriverFile) IsDirectory() bool {
	return false
}

func (ddf *DirectoryDriverFile) Size() int64 {
	if stat, err := os.Stat(ddf.path); err != nil {
		return 0
	} else {
		return stat.Size()
	}
}

func (ddf *DirectoryDriverFile) ReadAll() ([]byte, error) {
	data, err := os.ReadFile(ddf.path)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to read '%s'", ddf.path)
	}
	return data, nil
}

// Copy replaces file content through temporary file, so readers never see partial data
func (ddf *DirectoryDriverFile) Copy(src io.Reader) error {
	tmp, err := os.CreateTemp(filepath.Dir(ddf.path), "."+filepath.Base(ddf.path)+".*")
	if err != nil {
		return errors.Wrapf(err, "Failed to create temporary file")
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "Failed to write '%s'", ddf.path)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "Failed to close '%s'", tmp.Name())
	}
	return errors.Wrapf(os.Rename(tmp.Name(), ddf.path), "Failed to replace '%s'", ddf.path)
}
