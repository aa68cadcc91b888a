// Package catalog loads the mock asset manifest that feeds model sources to the viewer.
package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// FallbackModel is the source used for assets without a model file.
const FallbackModel = "/model.glb"

// ErrEmpty is returned by Load for a manifest without assets.
var ErrEmpty = errors.New("catalog has no assets")

// Asset is one catalog entry.
type Asset struct {
	ID        string   `yaml:"id" toml:"id"`
	Title     string   `yaml:"title" toml:"title"`
	Author    string   `yaml:"author" toml:"author"`
	Category  string   `yaml:"category" toml:"category"`
	Format    string   `yaml:"format" toml:"format"`
	Status    string   `yaml:"status" toml:"status"`
	Version   string   `yaml:"version" toml:"version"`
	PolyCount int      `yaml:"poly_count" toml:"poly_count"`
	Rigged    bool     `yaml:"rigged" toml:"rigged"`
	Model     string   `yaml:"model" toml:"model"` // file path or URL; empty uses FallbackModel
	Tags      []string `yaml:"tags" toml:"tags"`
}

// Source returns the model source to open for the asset.
func (a Asset) Source() string {
	if a.Model == "" {
		return FallbackModel
	}
	return a.Model
}

// Catalog is an ordered list of assets with a selection cursor.
type Catalog struct {
	Assets []Asset `yaml:"assets" toml:"assets"`

	current int
}

// Load reads a manifest. Files ending in .toml are decoded as TOML, anything
// else as YAML.
func Load(path string) (*Catalog, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("expanding %s: %w", path, err)
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}

	var c Catalog
	if strings.EqualFold(filepath.Ext(expanded), ".toml") {
		err = toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(&c)
	} else {
		err = yaml.Unmarshal(data, &c)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding catalog %s: %w", path, err)
	}

	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return &c, nil
}

// New creates a catalog from assets already in memory.
func New(assets ...Asset) (*Catalog, error) {
	c := &Catalog{Assets: assets}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) validate() error {
	if len(c.Assets) == 0 {
		return ErrEmpty
	}
	seen := make(map[string]bool, len(c.Assets))
	for i, a := range c.Assets {
		if a.ID == "" {
			return fmt.Errorf("asset %d has no id", i)
		}
		if seen[a.ID] {
			return fmt.Errorf("duplicate asset id %q", a.ID)
		}
		seen[a.ID] = true
	}
	return nil
}

// Current returns the selected asset.
func (c *Catalog) Current() Asset {
	return c.Assets[c.current]
}

// Select moves the cursor to the asset with id.
func (c *Catalog) Select(id string) (Asset, bool) {
	for i, a := range c.Assets {
		if a.ID == id {
			c.current = i
			return a, true
		}
	}
	return Asset{}, false
}

// SelectSource moves the cursor to the first asset opening source.
func (c *Catalog) SelectSource(source string) (Asset, bool) {
	for i, a := range c.Assets {
		if a.Source() == source {
			c.current = i
			return a, true
		}
	}
	return Asset{}, false
}

// Next advances the cursor, wrapping at the end.
func (c *Catalog) Next() Asset {
	c.current = (c.current + 1) % len(c.Assets)
	return c.Current()
}

// Prev moves the cursor back, wrapping at the start.
func (c *Catalog) Prev() Asset {
	c.current = (c.current - 1 + len(c.Assets)) % len(c.Assets)
	return c.Current()
}
