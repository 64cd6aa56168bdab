package web

import (
	"net/http"
	"os"
	"path"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/mogaika/diva_mot/bonedb"
	"github.com/mogaika/diva_mot/mot"
	"github.com/mogaika/diva_mot/status"
	"github.com/mogaika/diva_mot/vfs"
)

type Server struct {
	Dir    vfs.Directory
	DB     *bonedb.DB
	Status *status.Hub
	FPS    float32
	Layout mot.Layout // nil = mot.DefaultLayout
}

func (s *Server) Router(webPath string) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/json/mot", s.HandlerAjaxMotList).Methods("GET")
	r.HandleFunc("/json/mot/{file}", s.HandlerAjaxMotFile).Methods("GET")
	r.HandleFunc("/dump/mot/{file}", s.HandlerDumpMotFile).Methods("GET")
	r.HandleFunc("/dump/mot/{file}/{format}", s.HandlerDumpMotFileFormat).Methods("GET")
	r.HandleFunc("/upload/mot/{file}", s.HandlerUploadMotFile).Methods("POST")
	r.HandleFunc("/action/mot/{file}/{action}", s.HandlerActionMotFile).Methods("POST")
	r.HandleFunc("/action/batch", s.HandlerActionBatch).Methods("POST")
	if s.Status != nil {
		r.Handle("/ws/status", s.Status)
	}

	if webPath != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(path.Join(webPath, "data"))))
	}
	return r
}

func StartServer(addr string, s *Server, webPath string) error {
	r := s.Router(webPath)

	h := handlers.RecoveryHandler()(r)
	h = handlers.LoggingHandler(os.Stdout, h)

	log.Printf("[web] Starting server %v", addr)

	return http.ListenAndServe(addr, h)
}
