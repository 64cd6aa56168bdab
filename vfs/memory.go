package vfs

import (
	"bytes"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// MemoryDirectory is flat in-memory directory
type MemoryDirectory struct {
	name  string
	lock  sync.Mutex
	files map[string][]byte
}

func NewMemoryDirectory(name string) *MemoryDirectory {
	return &MemoryDirectory{name: name, files: make(map[string][]byte)}
}

func (md *MemoryDirectory) Name() string { return md.name }

func (md *MemoryDirectory) IsDirectory() bool { return true }

func (md *MemoryDirectory) List() ([]string, error) {
	md.lock.Lock()
	defer md.lock.Unlock()
	result := make([]string, 0, len(md.files))
	for name := range md.files {
		result = append(result, name)
	}
	sort.Strings(result)
	return result, nil
}

func (md *MemoryDirectory) GetElement(name string) (Element, error) {
	md.lock.Lock()
	defer md.lock.Unlock()
	if _, ok := md.files[name]; !ok {
		return nil, errors.Wrapf(os.ErrNotExist, "'%s'", name)
	}
	return &memoryFile{dir: md, name: name}, nil
}

func (md *MemoryDirectory) CreateFile(name string) (File, error) {
	if err := CheckName(name); err != nil {
		return nil, err
	}
	md.lock.Lock()
	defer md.lock.Unlock()
	if _, ok := md.files[name]; !ok {
		md.files[name] = []byte{}
	}
	return &memoryFile{dir: md, name: name}, nil
}

func (md *MemoryDirectory) Remove(name string) error {
	md.lock.Lock()
	defer md.lock.Unlock()
	if _, ok := md.files[name]; !ok {
		return errors.Wrapf(os.ErrNotExist, "'%s'", name)
	}
	delete(md.files, name)
	return nil
}

type memoryFile struct {
	dir  *MemoryDirectory
	name string
}

func (mf *memoryFile) Name() string { return mf.name }

func (mf *memoryFile) IsDirectory() bool { return false }

func (mf *memoryFile) Size() int64 {
	mf.dir.lock.Lock()
	defer mf.dir.lock.Unlock()
	return int64(len(mf.dir.files[mf.name]))
}

func (mf *memoryFile) ReadAll() ([]byte, error) {
	mf.dir.lock.Lock()
	defer mf.dir.lock.Unlock()
	data, ok := mf.dir.files[mf.name]
	if !ok {
		return nil, errors.Wrapf(os.ErrNotExist, "'%s'", mf.name)
	}
	return append([]byte(nil), data...), nil
}

func (mf *memoryFile) Copy(src io.Reader) error {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, src); err != nil {
		return errors.Wrapf(err, "Failed to read source")
	}
	mf.dir.lock.Lock()
	defer mf.dir.lock.Unlock()
	mf.dir.files[mf.name] = buf.Bytes()
	return nil
}
