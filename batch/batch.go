package batch

import (
	"context"
	"io/fs"
	"io/ioutil"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const EXTENSION = ".bin"

// ConvertFunc transforms one record. It must not share state between calls.
type ConvertFunc func(name string, data []byte) ([]byte, error)

type ProgressSink interface {
	Progress(progress float32, format string, a ...interface{})
}

type Job struct {
	Src     string
	Dst     string
	Workers int // <= 0 means runtime.NumCPU()
	Convert ConvertFunc

	Progress ProgressSink // optional
	Log      logrus.FieldLogger
}

type Result struct {
	File string `json:"file"` // relative to Src
	Size int    `json:"size"`
	Err  error  `json:"-"`
}

func (r Result) Failed() bool {
	return r.Err != nil
}

// Collect lists records under dir, sorted, relative to dir
func Collect(dir string) ([]string, error) {
	files := make([]string, 0, 64)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), EXTENSION) {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to walk %q", dir)
	}
	sort.Strings(files)
	return files, nil
}

func (job *Job) process(rel string) Result {
	res := Result{File: rel}
	data, err := os.ReadFile(filepath.Join(job.Src, rel))
	if err != nil {
		res.Err = errors.Wrapf(err, "Failed to read")
		return res
	}
	out, err := job.Convert(rel, data)
	if err != nil {
		res.Err = err
		return res
	}
	dst := filepath.Join(job.Dst, rel)
	if err := os.MkdirAll(filepath.Dir(dst), 0777); err != nil {
		res.Err = errors.Wrapf(err, "Failed to create output dir")
		return res
	}
	if err := os.WriteFile(dst, out, 0666); err != nil {
		res.Err = errors.Wrapf(err, "Failed to write")
		return res
	}
	res.Size = len(out)
	return res
}

// Run converts every record of Src into Dst keeping relative paths.
// Per file failures are returned in results. Cancelling ctx stops
// dispatching, files already taken by workers are finished.
func Run(ctx context.Context, job Job) ([]Result, error) {
	if job.Convert == nil {
		return nil, errors.New("batch job has no convert function")
	}
	log := job.Log
	if log == nil {
		l := logrus.New()
		l.SetOutput(ioutil.Discard)
		log = l
	}
	workers := job.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	files, err := Collect(job.Src)
	if err != nil {
		return nil, err
	}
	log.Infof("[batch] %d files from %q to %q with %d workers", len(files), job.Src, job.Dst, workers)

	tasks := make(chan string)
	results := make(chan Result)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rel := range tasks {
				results <- job.process(rel)
			}
		}()
	}

	go func() {
		defer close(tasks)
		for _, rel := range files {
			select {
			case tasks <- rel:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	out := make([]Result, 0, len(files))
	for res := range results {
		out = append(out, res)
		if res.Err != nil {
			log.Errorf("[batch] %s: %v", res.File, res.Err)
		} else {
			log.Debugf("[batch] %s: %d bytes", res.File, res.Size)
		}
		if job.Progress != nil {
			job.Progress.Progress(float32(len(out))/float32(len(files)), "%d/%d %s", len(out), len(files), res.File)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].File < out[j].File })

	if err := ctx.Err(); err != nil {
		return out, errors.Wrapf(err, "Batch interrupted after %d of %d files", len(out), len(files))
	}
	return out, nil
}
