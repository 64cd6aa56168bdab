package bonedb

import (
	"github.com/pkg/errors"

	"github.com/mogaika/diva_mot/config"
	"github.com/mogaika/diva_mot/mot"
)

// DB bundles lookup tables used to qualify and order motions
type DB struct {
	Names     NameTable
	Types     TypeTable
	Ranks     RankTable
	Overrides map[string]mot.BoneType
}

// Open loads tables referenced by config. Paths left empty give empty tables.
func Open(cfg *config.Config) (*DB, error) {
	db := &DB{
		Types:     make(TypeTable),
		Ranks:     make(RankTable),
		Overrides: make(map[string]mot.BoneType, len(mot.DefaultOverrides)+len(cfg.Overrides)),
	}
	var err error
	if cfg.MotDBPath != "" {
		if db.Names, err = LoadNames(cfg.MotDBPath); err != nil {
			return nil, err
		}
	}
	if cfg.BoneDBPath != "" {
		if db.Types, err = LoadTypes(cfg.BoneDBPath); err != nil {
			return nil, err
		}
	}
	if cfg.RankDBPath != "" {
		if db.Ranks, err = LoadRanks(cfg.RankDBPath); err != nil {
			return nil, err
		}
	}

	for name, bt := range mot.DefaultOverrides {
		db.Overrides[name] = bt
	}
	for name, s := range cfg.Overrides {
		bt, err := mot.ParseBoneType(s)
		if err != nil {
			return nil, errors.Wrapf(err, "Override of bone '%s'", name)
		}
		db.Overrides[name] = bt
	}
	return db, nil
}

func (db *DB) Qualifier() *mot.Qualifier {
	return &mot.Qualifier{
		Names:     db.Names,
		Types:     db.Types,
		Overrides: db.Overrides,
	}
}
