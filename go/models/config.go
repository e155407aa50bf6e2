package models

import (
	"encoding/json"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/shibukawa/configdir"
)

const (
	ConfigVendor = "binspect"
	ConfigFile   = "config.json"
)

type Config struct {
	Color         bool   `json:"color"`
	Verbose       bool   `json:"verbose"`
	SkipBadSlices bool   `json:"skip_bad_slices"`
	Demangle      bool   `json:"demangle"`
	DisBytes      bool   `json:"dis_bytes"`
	DisBackend    string `json:"dis_backend"`
	DisSyntax     string `json:"dis_syntax"`
	DisCount      int    `json:"dis_count"`
	Strsize       int    `json:"strsize"`

	Output io.Writer `json:"-"`
}

func DefaultConfig() *Config {
	return &Config{
		Color:      ColorDefault(),
		DisBackend: "xarch",
		DisSyntax:  "intel",
		DisCount:   32,
		Strsize:    60,
		Output:     os.Stdout,
	}
}

// ConfigDirs returns the folders searched for config.json, init.lua and
// shell history.
func ConfigDirs(app string) configdir.ConfigDir {
	return configdir.New(ConfigVendor, app)
}

// LoadConfig returns the defaults overlaid with the first config.json found
// in the user or system config folders.
func LoadConfig() (*Config, error) {
	c := DefaultConfig()
	dir := ConfigDirs("binspect").QueryFolderContainsFile(ConfigFile)
	if dir == nil {
		return c, nil
	}
	data, err := dir.ReadFile(ConfigFile)
	if err != nil {
		return c, errors.Wrap(err, "failed to read config")
	}
	if err := c.Merge(data); err != nil {
		return c, err
	}
	return c, nil
}

// Merge overlays the JSON fields present in data onto c.
func (c *Config) Merge(data []byte) error {
	return errors.Wrap(json.Unmarshal(data, c), "failed to parse config")
}
