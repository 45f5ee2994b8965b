// Package layoutfile reads and writes layout documents.
//
// A layout document declares a canvas and a list of components, each with a
// parent and a rectangle in the four-edge text form:
//
//	[canvas]
//	width = 800
//	height = 600
//
//	[[component]]
//	name = "sidebar"
//	bounds = "0, 0, 240, parent.height"
//
//	[[component]]
//	name = "content"
//	bounds = "sidebar.right + 16, 0, parent.width, parent.height"
//
// TOML is the native format. YAML and JSON carry the same fields and are
// chosen by file extension or explicitly.
package layoutfile

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-yaml"

	"github.com/matzehuels/relayout/pkg/errors"
	"github.com/matzehuels/relayout/pkg/relative"
)

// Format is a serialization format.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// RootName is the name of the implicit canvas component.
const RootName = "canvas"

// File is a decoded layout document.
type File struct {
	Canvas     Canvas      `toml:"canvas" yaml:"canvas" json:"canvas"`
	Components []Component `toml:"component" yaml:"component" json:"component"`
}

// Canvas is the root area every top-level component is placed in.
type Canvas struct {
	Width  int `toml:"width" yaml:"width" json:"width"`
	Height int `toml:"height" yaml:"height" json:"height"`
}

// Component declares one component. An empty Parent places it directly on
// the canvas.
type Component struct {
	Name   string `toml:"name" yaml:"name" json:"name"`
	Parent string `toml:"parent,omitempty" yaml:"parent,omitempty" json:"parent,omitempty"`
	Bounds string `toml:"bounds" yaml:"bounds" json:"bounds"`
}

// FormatFromPath picks a format from a file extension, defaulting to TOML.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".json":
		return FormatJSON
	default:
		return FormatTOML
	}
}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatTOML, FormatYAML, FormatJSON:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unknown layout format %q (want toml, yaml or json)", s)
}

// Load reads and validates the layout at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "layout %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read layout %s", path)
	}
	return Decode(data, FormatFromPath(path))
}

// Decode parses and validates a layout document.
func Decode(data []byte, format Format) (*File, error) {
	var f File
	var err error
	switch format {
	case FormatTOML:
		err = toml.Unmarshal(data, &f)
	case FormatYAML:
		err = yaml.Unmarshal(data, &f)
	case FormatJSON:
		err = json.Unmarshal(data, &f)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown layout format %q", format)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %s layout", format)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Encode serializes f.
func Encode(f *File, format Format) ([]byte, error) {
	switch format {
	case FormatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(f); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode toml layout")
		}
		return buf.Bytes(), nil
	case FormatYAML:
		data, err := yaml.Marshal(f)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode yaml layout")
		}
		return data, nil
	case FormatJSON:
		data, err := json.MarshalIndent(f, "", "  ")
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode json layout")
		}
		return append(data, '\n'), nil
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown layout format %q", format)
}

// Save writes f to path in the format implied by its extension.
func Save(path string, f *File) error {
	data, err := Encode(f, FormatFromPath(path))
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write layout %s", path)
	}
	return nil
}

// Validate checks names, parent references and rectangle syntax.
// Parents must be declared before their children.
func (f *File) Validate() error {
	if f.Canvas.Width < 0 || f.Canvas.Height < 0 {
		return errors.New(errors.ErrCodeInvalidLayout, "canvas size %dx%d is negative", f.Canvas.Width, f.Canvas.Height)
	}
	seen := map[string]bool{}
	for i, c := range f.Components {
		if err := errors.ValidateComponentName(c.Name); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidLayout, err, "component #%d", i+1)
		}
		if c.Name == RootName {
			return errors.New(errors.ErrCodeInvalidLayout, "component #%d: %q is reserved for the canvas", i+1, RootName)
		}
		if seen[c.Name] {
			return errors.New(errors.ErrCodeInvalidLayout, "component %q is declared twice", c.Name)
		}
		if c.Parent != "" && c.Parent != RootName && !seen[c.Parent] {
			return errors.New(errors.ErrCodeInvalidLayout, "component %q: parent %q is not declared before it", c.Name, c.Parent)
		}
		if _, err := relative.ParseRectangle(c.Bounds); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidLayout, err, "component %q", c.Name)
		}
		seen[c.Name] = true
	}
	return nil
}
