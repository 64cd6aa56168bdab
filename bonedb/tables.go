package bonedb

import (
	"github.com/mogaika/diva_mot/mot"
)

// NameTable is bone names indexed by bone id
type NameTable []string

func (nt NameTable) BoneName(id int) (string, bool) {
	if id < 0 || id >= len(nt) || nt[id] == "" {
		return "", false
	}
	return nt[id], true
}

// Index returns id of first bone with name
func (nt NameTable) Index(name string) (int, bool) {
	for i, n := range nt {
		if n == name && n != "" {
			return i, true
		}
	}
	return 0, false
}

type TypeTable map[string]mot.BoneType

func (tt TypeTable) BoneType(name string) (mot.BoneType, bool) {
	bt, ok := tt[name]
	return bt, ok
}

type RankTable map[string]int

func (rt RankTable) Rank(name string) (int, bool) {
	r, ok := rt[name]
	return r, ok
}

var (
	_ mot.BoneNames = NameTable(nil)
	_ mot.BoneTypes = TypeTable(nil)
	_ mot.Ranks     = RankTable(nil)
)
