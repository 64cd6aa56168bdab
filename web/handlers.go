package web

import (
	"bytes"
	"context"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/mogaika/diva_mot/batch"
	"github.com/mogaika/diva_mot/mot"
	"github.com/mogaika/diva_mot/motscript"
	"github.com/mogaika/diva_mot/utils/gltfutils"
	"github.com/mogaika/diva_mot/vfs"
	"github.com/mogaika/diva_mot/webutils"
)

type ajaxBone struct {
	Id   uint16 `json:"id"`
	Name string `json:"name,omitempty"`
	Rank int    `json:"rank"`
}

type ajaxMot struct {
	Header       *mot.Header          `json:"header"`
	Stats        map[string]int       `json:"stats"`
	Bones        []ajaxBone           `json:"bones"`
	Motion       *mot.Motion          `json:"motion"`
	Qualified    *mot.QualifiedMotion `json:"qualified,omitempty"`
	Report       *mot.Report          `json:"report,omitempty"`
	QualifyError string               `json:"qualify_error,omitempty"`
}

func (s *Server) layout() mot.Layout {
	if s.Layout != nil {
		return s.Layout
	}
	return mot.DefaultLayout
}

func (s *Server) fps() float32 {
	if s.FPS > 0 {
		return s.FPS
	}
	return mot.DEFAULT_FPS
}

func (s *Server) info(format string, a ...interface{}) {
	log.Infof("[web] "+format, a...)
	if s.Status != nil {
		s.Status.Info(format, a...)
	}
}

func (s *Server) readMot(file string) ([]byte, *mot.Motion, error) {
	data, err := vfs.ReadFile(s.Dir, file)
	if err != nil {
		return nil, nil, err
	}
	m, err := mot.Decode(data)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "Failed to decode '%s'", file)
	}
	return data, m, nil
}

func (s *Server) qualify(file string, m *mot.Motion) (*mot.QualifiedMotion, *mot.Report, error) {
	q := s.DB.Qualifier()
	q.Layout = s.Layout
	q.Log = log.WithField("file", file)
	return q.Qualify(m)
}

func (s *Server) HandlerAjaxMotList(w http.ResponseWriter, r *http.Request) {
	if files, err := vfs.ListFiles(s.Dir, batch.EXTENSION); err != nil {
		webutils.WriteError(w, err)
	} else {
		webutils.WriteJson(w, files)
	}
}

func (s *Server) HandlerAjaxMotFile(w http.ResponseWriter, r *http.Request) {
	file := mux.Vars(r)["file"]
	data, m, err := s.readMot(file)
	if err != nil {
		log.Printf("[web] Error getting motion: %v", err)
		webutils.WriteError(w, err)
		return
	}
	h, err := mot.ReadHeader(data)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}

	result := &ajaxMot{
		Header: h,
		Stats:  make(map[string]int),
		Bones:  make([]ajaxBone, len(m.Bones)),
		Motion: m,
	}
	for tag, count := range m.Stats() {
		result.Stats[tag.String()] = count
	}
	for i, id := range m.Bones {
		result.Bones[i] = ajaxBone{Id: id, Rank: mot.DEFAULT_RANK}
		if name, ok := s.DB.Names.BoneName(int(id)); ok {
			result.Bones[i].Name = name
			if rank, ok := s.DB.Ranks.Rank(name); ok {
				result.Bones[i].Rank = rank
			}
		}
	}
	if qm, rep, err := s.qualify(file, m); err != nil {
		result.QualifyError = err.Error()
	} else {
		result.Qualified, result.Report = qm, rep
	}
	webutils.WriteJson(w, result)
}

func (s *Server) HandlerDumpMotFile(w http.ResponseWriter, r *http.Request) {
	file := mux.Vars(r)["file"]
	data, err := vfs.ReadFile(s.Dir, file)
	if err != nil {
		webutils.WriteErrorCode(w, http.StatusNotFound, err)
		return
	}
	webutils.WriteFile(w, bytes.NewReader(data), file)
}

func (s *Server) HandlerDumpMotFileFormat(w http.ResponseWriter, r *http.Request) {
	file := mux.Vars(r)["file"]
	format := mux.Vars(r)["format"]

	_, m, err := s.readMot(file)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	qm, _, err := s.qualify(file, m)
	if err != nil {
		webutils.WriteError(w, errors.Wrapf(err, "Failed to qualify '%s'", file))
		return
	}
	base := strings.TrimSuffix(file, filepath.Ext(file))

	switch format {
	case "gltf":
		doc := gltfutils.NewDocument()
		if _, err := qm.ExportGLTF(doc, s.DB.Names, base, s.fps()); err != nil {
			webutils.WriteError(w, errors.Wrapf(err, "Failed to export"))
			return
		}
		var buf bytes.Buffer
		if err := gltfutils.ExportBinary(&buf, doc); err != nil {
			webutils.WriteError(w, errors.Wrapf(err, "Failed to encode glb"))
			return
		}
		webutils.WriteFile(w, &buf, base+".glb")
	case "script":
		webutils.WriteFile(w, strings.NewReader(motscript.Render(qm, s.DB.Names)), base+".txt")
	case "yaml":
		webutils.WriteYamlFile(w, qm, base)
	default:
		webutils.WriteErrorCode(w, http.StatusBadRequest, errors.Errorf("Unknown dump format '%s'", format))
	}
}

// HandlerUploadMotFile stores either raw record or motion listing, which is encoded first
func (s *Server) HandlerUploadMotFile(w http.ResponseWriter, r *http.Request) {
	file := mux.Vars(r)["file"]
	data, err := webutils.ReadFormFile(r, "data")
	if err != nil {
		webutils.WriteErrorCode(w, http.StatusBadRequest, err)
		return
	}

	if _, derr := mot.Decode(data); derr != nil {
		qm, err := motscript.Parse(data, s.DB.Names)
		if err != nil {
			webutils.WriteErrorCode(w, http.StatusBadRequest,
				errors.Errorf("Data is neither motion record (%v) nor listing (%v)", derr, err))
			return
		}
		qm.SortCanonical(s.DB.Names, s.DB.Ranks)
		if data, err = qm.Marshal(s.layout()); err != nil {
			webutils.WriteError(w, errors.Wrapf(err, "Failed to encode listing"))
			return
		}
	}

	if err := vfs.WriteFile(s.Dir, file, data); err != nil {
		webutils.WriteError(w, err)
		return
	}
	s.info("Uploaded '%s' (%d bytes)", file, len(data))
	webutils.WriteJson(w, map[string]interface{}{"file": file, "size": len(data)})
}

func (s *Server) HandlerActionMotFile(w http.ResponseWriter, r *http.Request) {
	file := mux.Vars(r)["file"]
	action := mux.Vars(r)["action"]

	_, m, err := s.readMot(file)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}

	var out []byte
	switch action {
	case "sort":
		qm, _, err := s.qualify(file, m)
		if err != nil {
			webutils.WriteError(w, errors.Wrapf(err, "Failed to qualify '%s'", file))
			return
		}
		qm.SortCanonical(s.DB.Names, s.DB.Ranks)
		out, err = qm.Marshal(s.layout())
		if err != nil {
			webutils.WriteError(w, err)
			return
		}
	case "snapshot":
		m.Snapshot()
		if out, err = m.Marshal(); err != nil {
			webutils.WriteError(w, err)
			return
		}
	default:
		webutils.WriteErrorCode(w, http.StatusBadRequest, errors.Errorf("Unknown action '%s'", action))
		return
	}

	if err := vfs.WriteFile(s.Dir, file, out); err != nil {
		webutils.WriteError(w, err)
		return
	}
	s.info("Applied %s to '%s'", action, file)
	webutils.WriteJson(w, map[string]interface{}{"file": file, "action": action, "size": len(out)})
}

// HandlerActionBatch sorts every record of served directory into form value "dst" in background
func (s *Server) HandlerActionBatch(w http.ResponseWriter, r *http.Request) {
	dd, ok := s.Dir.(*vfs.DirectoryDriver)
	if !ok {
		webutils.WriteErrorCode(w, http.StatusBadRequest, errors.New("Batch works only on host directories"))
		return
	}
	dst := r.FormValue("dst")
	if dst == "" {
		webutils.WriteErrorCode(w, http.StatusBadRequest, errors.New("Missed 'dst' parameter"))
		return
	}

	q := s.DB.Qualifier()
	q.Layout = s.Layout
	q.Log = log.StandardLogger()
	pipeline := &batch.Pipeline{Qualifier: q, Names: s.DB.Names, Ranks: s.DB.Ranks}
	job := batch.Job{
		Src:     dd.Path(),
		Dst:     dst,
		Convert: pipeline.Convert,
		Log:     log.StandardLogger(),
	}
	if s.Status != nil {
		job.Progress = s.Status
	}

	go func() {
		results, err := batch.Run(context.Background(), job)
		failed := 0
		for _, res := range results {
			if res.Failed() {
				failed++
			}
		}
		if err != nil {
			log.Errorf("[web] batch error: %v", err)
		}
		s.info("Batch done: %d files, %d failed", len(results), failed)
	}()
	webutils.WriteJson(w, map[string]interface{}{"src": dd.Path(), "dst": dst})
}
