package main

import (
	"os"
	"strings"
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/mogaika/diva_mot/bonedb"
	"github.com/mogaika/diva_mot/config"
	"github.com/mogaika/diva_mot/mot"
	"github.com/mogaika/diva_mot/utils"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	dbOnce sync.Once
	db     *bonedb.DB
	dbErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if !exists && path != "" {
			log.Warnf("Config %q not found, using defaults", path)
		}
		if err := cfg.Apply(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureDB() (*bonedb.DB, error) {
	c.dbOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.dbErr = err
			return
		}
		c.db, c.dbErr = bonedb.Open(cfg)
	})
	return c.db, c.dbErr
}

func (c *commandContext) qualifier() (*mot.Qualifier, error) {
	db, err := c.ensureDB()
	if err != nil {
		return nil, err
	}
	q := db.Qualifier()
	q.Log = log.StandardLogger()
	return q, nil
}

func readMotion(path string) (*mot.Motion, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "Failed to read motion")
	}
	m, err := mot.Decode(data)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "Failed to decode %q", path)
	}
	return m, data, nil
}

func (c *commandContext) readQualified(path string) (*mot.QualifiedMotion, error) {
	m, _, err := readMotion(path)
	if err != nil {
		return nil, err
	}
	q, err := c.qualifier()
	if err != nil {
		return nil, err
	}
	qm, rep, err := q.Qualify(m)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to qualify %q", path)
	}
	if len(rep.Unresolved) != 0 || rep.Leftover != 0 {
		log.Infof("%q: %d bones without animation, %d channels left over", path, len(rep.Unresolved), rep.Leftover)
	}
	utils.LogDump(rep)
	return qm, nil
}

func writeOutput(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "Failed to write %q", path)
	}
	log.Infof("Written %q (%d bytes)", path, len(data))
	return nil
}
