package vfs

import (
	"io"
)

type Element interface {
	Name() string
	IsDirectory() bool
}

type File interface {
	Element
	Size() int64
	ReadAll() ([]byte, error)
	Copy(src io.Reader) error
}

type Directory interface {
	Element
	List() ([]string, error)
	GetElement(name string) (Element, error)
	// CreateFile returns existing file or makes new empty one
	CreateFile(name string) (File, error)
	Remove(name string) error
}
