package vfs

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// CheckName rejects names leaving directory
func CheckName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return errors.Errorf("Invalid file name '%s'", name)
	}
	return nil
}

func DirectoryGetFile(d Directory, name string) (File, error) {
	if f, err := d.GetElement(name); err != nil {
		return nil, errors.Wrapf(err, "Cannot open file '%s'", name)
	} else if f.IsDirectory() {
		return nil, errors.Errorf("File '%s' is directory, not a file!", name)
	} else {
		return f.(File), nil
	}
}

func ReadFile(d Directory, name string) ([]byte, error) {
	f, err := DirectoryGetFile(d, name)
	if err != nil {
		return nil, err
	}
	return f.ReadAll()
}

func WriteFile(d Directory, name string, data []byte) error {
	f, err := d.CreateFile(name)
	if err != nil {
		return errors.Wrapf(err, "Cannot create file '%s'", name)
	}
	if err := f.Copy(bytes.NewReader(data)); err != nil {
		return errors.Wrapf(err, "Cannot copy data to file '%s'", name)
	}
	return nil
}

// ListFiles returns names of files (not directories) with extension, case insensitive
func ListFiles(d Directory, ext string) ([]string, error) {
	names, err := d.List()
	if err != nil {
		return nil, err
	}
	result := make([]string, 0, len(names))
	for _, name := range names {
		if !strings.EqualFold(filepath.Ext(name), ext) {
			continue
		}
		if e, err := d.GetElement(name); err == nil && !e.IsDirectory() {
			result = append(result, name)
		}
	}
	return result, nil
}
