package config

import (
	"io/fs"
	"math"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

const DEFAULT_CONFIG_PATH = "motool.toml"

// Pose of single bone applied over composed motion.
// Missing vector or NaN component leaves channel empty.
type CustomPose struct {
	Position []float32 `toml:"position,omitempty"`
	Rotation []float32 `toml:"rotation,omitempty"`
	Target   []float32 `toml:"target,omitempty"`
}

type Config struct {
	MotDBPath  string `toml:"mot_db_path"`  // bone names, index = bone id
	BoneDBPath string `toml:"bone_db_path"` // bone name -> type
	RankDBPath string `toml:"rank_db_path"` // bone name -> canonical rank

	Encoding string  `toml:"encoding"`
	FPS      float32 `toml:"fps"`

	Default          []string              `toml:"default"`
	AddControlPoints bool                  `toml:"add_control_points"`
	Custom           map[string]CustomPose `toml:"custom,omitempty"`
	Overrides        map[string]string     `toml:"overrides,omitempty"`
}

func Default() Config {
	return Config{
		Encoding:         DEFAULT_ENCODING,
		FPS:              60,
		AddControlPoints: true,
	}
}

// Load reads toml config over defaults. Missing file is not an error,
// second value reports whether file existed.
func Load(path string) (*Config, bool, error) {
	cfg := Default()
	if path == "" {
		path = DEFAULT_CONFIG_PATH
	}

	data, err := os.ReadFile(path)
	exists := err == nil
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, false, errors.Wrapf(err, "Failed to read config %q", path)
		}
	} else if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, false, errors.Wrapf(err, "Failed to parse config %q", path)
	}

	if err := cfg.Validate(); err != nil {
		return nil, false, errors.Wrapf(err, "Invalid config %q", path)
	}
	return &cfg, exists, nil
}

func (c *Config) Validate() error {
	if c.FPS <= 0 || math.IsNaN(float64(c.FPS)) || math.IsInf(float64(c.FPS), 0) {
		return errors.Errorf("fps must be positive, got %v", c.FPS)
	}
	if _, ok := lookupEncoding(c.Encoding); !ok {
		return errors.Errorf("unknown encoding %q", c.Encoding)
	}
	for bone, pose := range c.Custom {
		for name, v := range map[string][]float32{"position": pose.Position, "rotation": pose.Rotation, "target": pose.Target} {
			if len(v) != 0 && len(v) != 3 {
				return errors.Errorf("custom.%s.%s must have 3 components, got %d", bone, name, len(v))
			}
		}
	}
	return nil
}

// Apply makes config encoding current
func (c *Config) Apply() error {
	return SetEncoding(c.Encoding)
}

func Save(path string, cfg *Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return errors.Wrapf(err, "Failed to marshal config")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "Failed to write config %q", path)
	}
	return nil
}
