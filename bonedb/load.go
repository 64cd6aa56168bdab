package bonedb

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/mogaika/diva_mot/mot"
	"github.com/mogaika/diva_mot/utils"
)

type format int

const (
	formatText format = iota
	formatYAML
	formatTOML
)

func formatOf(path string) format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return formatYAML
	case ".toml":
		return formatTOML
	default:
		return formatText
	}
}

// textLines splits text file into lines decoded with configured encoding.
// Trailing empty lines are dropped, inner ones kept to preserve indices.
func textLines(data []byte) ([]string, error) {
	raw := bytes.Split(data, []byte{'\n'})
	lines := make([]string, 0, len(raw))
	for i, l := range raw {
		s, err := utils.BytesToString(bytes.TrimRight(l, "\r"))
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", i+1)
		}
		lines = append(lines, strings.TrimSpace(s))
	}
	for len(lines) != 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines, nil
}

func decodeMap(path string, data []byte) (map[string]interface{}, error) {
	m := make(map[string]interface{})
	var err error
	switch formatOf(path) {
	case formatYAML:
		err = yaml.Unmarshal(data, &m)
	case formatTOML:
		err = toml.Unmarshal(data, &m)
	default:
		return nil, errors.Errorf("Unsupported map format of %q, expected yaml or toml", path)
	}
	return m, err
}

func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		return int(n), true
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
	}
	return 0, false
}

// ParseNames reads bone names either from yaml list or from text, one name per line
func ParseNames(path string, data []byte) (NameTable, error) {
	switch formatOf(path) {
	case formatYAML:
		var names []string
		if err := yaml.Unmarshal(data, &names); err != nil {
			return nil, errors.Wrapf(err, "Failed to parse names %q", path)
		}
		return NameTable(names), nil
	case formatTOML:
		var doc struct {
			Bones []string `toml:"bones"`
		}
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, errors.Wrapf(err, "Failed to parse names %q", path)
		}
		return NameTable(doc.Bones), nil
	default:
		lines, err := textLines(data)
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to parse names %q", path)
		}
		return NameTable(lines), nil
	}
}

// ParseTypes reads map of bone name to type name or code
func ParseTypes(path string, data []byte) (TypeTable, error) {
	m, err := decodeMap(path, data)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to parse types %q", path)
	}
	tt := make(TypeTable, len(m))
	for name, v := range m {
		if code, ok := toInt(v); ok {
			tt[name] = mot.BoneType(code)
			continue
		}
		s, ok := v.(string)
		if !ok {
			return nil, errors.Errorf("Bone '%s' in %q has type of unexpected kind %T", name, path, v)
		}
		bt, err := mot.ParseBoneType(s)
		if err != nil {
			return nil, errors.Wrapf(err, "Bone '%s' in %q", name, path)
		}
		tt[name] = bt
	}
	return tt, nil
}

// ParseRanks reads map of bone name to rank, or text list where line index is rank
func ParseRanks(path string, data []byte) (RankTable, error) {
	if formatOf(path) == formatText {
		lines, err := textLines(data)
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to parse ranks %q", path)
		}
		rt := make(RankTable, len(lines))
		for i, name := range lines {
			if _, ok := rt[name]; name != "" && !ok {
				rt[name] = i
			}
		}
		return rt, nil
	}

	m, err := decodeMap(path, data)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to parse ranks %q", path)
	}
	rt := make(RankTable, len(m))
	for name, v := range m {
		rank, ok := toInt(v)
		if !ok {
			return nil, errors.Errorf("Bone '%s' in %q has non integer rank %v", name, path, v)
		}
		rt[name] = rank
	}
	return rt, nil
}

func LoadNames(path string) (NameTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to read names")
	}
	nt, err := ParseNames(path, data)
	if err == nil {
		log.Debugf("[bonedb] Loaded %d bone names from %q", len(nt), path)
	}
	return nt, err
}

func LoadTypes(path string) (TypeTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to read types")
	}
	tt, err := ParseTypes(path, data)
	if err == nil {
		log.Debugf("[bonedb] Loaded %d bone types from %q", len(tt), path)
	}
	return tt, err
}

func LoadRanks(path string) (RankTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to read ranks")
	}
	rt, err := ParseRanks(path, data)
	if err == nil {
		log.Debugf("[bonedb] Loaded %d bone ranks from %q", len(rt), path)
	}
	return rt, err
}
