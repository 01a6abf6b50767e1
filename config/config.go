package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/gorustyt/crowdnav/common/logger"
	"github.com/gorustyt/crowdnav/crowd"
	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

type Sim struct {
	Capacity     int32   `yaml:"capacity"`       ///< Agent slots.
	Agents       int     `yaml:"agents"`         ///< Agents spawned at start.
	Dt           float32 `yaml:"dt"`             ///< Seconds per tick.
	Ticks        int     `yaml:"ticks"`          ///< 0 runs until interrupted.
	Seed         uint64  `yaml:"seed"`           ///< Destination and spawn seed.
	Mesh         string  `yaml:"mesh"`           ///< .bin or .pb mesh file, empty for the demo grid.
	MeshCellSize float32 `yaml:"mesh_cell_size"` ///< Triangle index cell size.
}

type Trace struct {
	Dir   string `yaml:"dir"`   ///< Empty disables the trace.
	Every int    `yaml:"every"` ///< Ticks between snapshots.
}

// Config is the crowdsim configuration file. The crowd sections (agent, path,
// collision, destination) sit at the top level.
type Config struct {
	Log   logger.Config `yaml:"log"`
	Sim   Sim           `yaml:"sim"`
	Crowd crowd.Params  `yaml:",inline"`
	Trace Trace         `yaml:"trace"`
}

func Default() Config {
	return Config{
		Log: logger.DefaultConfig(),
		Sim: Sim{
			Capacity:     1024,
			Agents:       256,
			Dt:           0.05,
			Ticks:        1200,
			Seed:         1,
			MeshCellSize: 8,
		},
		Crowd: crowd.DefaultParams(),
		Trace: Trace{Every: 10},
	}
}

// Load reads a yaml config over the defaults. Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := Decode(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode decodes raw over cfg and validates the result.
func Decode(raw []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return cfg.Validate()
}

func (c *Config) Validate() (err error) {
	if _, perr := zapcore.ParseLevel(c.Log.Level); perr != nil {
		err = multierr.Append(err, fmt.Errorf("log.level: %w", perr))
	}
	s := c.Sim
	if s.Capacity <= 0 {
		err = multierr.Append(err, fmt.Errorf("sim.capacity %d <= 0", s.Capacity))
	}
	if s.Agents < 0 || s.Agents > int(s.Capacity) {
		err = multierr.Append(err, fmt.Errorf("sim.agents %d not in [0, %d]", s.Agents, s.Capacity))
	}
	if s.Dt <= 0 {
		err = multierr.Append(err, fmt.Errorf("sim.dt %v <= 0", s.Dt))
	}
	if s.Ticks < 0 {
		err = multierr.Append(err, fmt.Errorf("sim.ticks %d < 0", s.Ticks))
	}
	if s.MeshCellSize <= 0 {
		err = multierr.Append(err, fmt.Errorf("sim.mesh_cell_size %v <= 0", s.MeshCellSize))
	}
	if c.Trace.Every < 1 {
		err = multierr.Append(err, fmt.Errorf("trace.every %d < 1", c.Trace.Every))
	}
	return multierr.Append(err, c.Crowd.Validate())
}

func (c *Config) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
