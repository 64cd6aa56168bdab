package main

import (
	"context"
	"flag"

	log "github.com/sirupsen/logrus"

	"github.com/mogaika/diva_mot/bonedb"
	"github.com/mogaika/diva_mot/config"
	"github.com/mogaika/diva_mot/status"
	"github.com/mogaika/diva_mot/vfs"
	"github.com/mogaika/diva_mot/web"
)

func main() {
	var addr, dir, cfgPath, encoding, webPath string
	flag.StringVar(&addr, "i", ":8000", "Address of server")
	flag.StringVar(&webPath, "web", "web", "Path to folder with static web data")
	flag.StringVar(&dir, "dir", "", "Path to folder with motion records")
	flag.StringVar(&cfgPath, "config", config.DEFAULT_CONFIG_PATH, "Path to config")
	flag.StringVar(&encoding, "encoding", "", "Encoding of name tables, overrides config")
	flag.Parse()

	if dir == "" {
		flag.PrintDefaults()
		return
	}

	cfg, _, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal(err)
	}
	if encoding != "" {
		cfg.Encoding = encoding
	}
	if err := cfg.Apply(); err != nil {
		log.Fatalf("%v, known encodings: %v", err, config.ListEncodings())
	}

	db, err := bonedb.Open(cfg)
	if err != nil {
		log.Fatal(err)
	}

	hub := status.NewHub()
	go hub.Run(context.Background())

	if err := web.StartServer(addr, &web.Server{
		Dir:    vfs.NewDirectoryDriver(dir),
		DB:     db,
		Status: hub,
		FPS:    cfg.FPS,
	}, webPath); err != nil {
		log.Fatal(err)
	}
}
