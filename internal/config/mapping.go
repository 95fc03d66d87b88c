package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/BartekS5/fieldmap/pkg/models"
)

const MappingFileVersion = "1"

type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFromPath picks JSON for .json files and YAML otherwise.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatYAML, "yml":
		return FormatYAML, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown format %q (expected yaml or json)", s)
	}
}

// MappingFile is a saved editing session: both schemas and the exported
// mapping in order.
type MappingFile struct {
	Version     string         `yaml:"version" json:"version"`
	Source      SchemaFile     `yaml:"source" json:"source"`
	Destination SchemaFile     `yaml:"destination" json:"destination"`
	Mapping     models.Mapping `yaml:"mapping" json:"mapping"`
}

// LoadMappingFile reads and parses a mapping file, choosing the format
// from its extension.
func LoadMappingFile(path string) (*MappingFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping file '%s': %w", path, err)
	}
	mf, err := ParseMappingFile(data, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to parse mapping file '%s': %w", path, err)
	}
	return mf, nil
}

func ParseMappingFile(data []byte, format Format) (*MappingFile, error) {
	var mf MappingFile
	var err error
	if format == FormatJSON {
		err = json.Unmarshal(data, &mf)
	} else {
		err = yaml.Unmarshal(data, &mf)
	}
	if err != nil {
		return nil, err
	}

	if mf.Version != "" && mf.Version != MappingFileVersion {
		return nil, fmt.Errorf("unsupported mapping file version %q", mf.Version)
	}
	for _, s := range []struct {
		role string
		file SchemaFile
	}{{"source", mf.Source}, {"destination", mf.Destination}} {
		if err := s.file.Schema().Validate(); err != nil {
			return nil, fmt.Errorf("invalid %s schema: %w", s.role, err)
		}
	}
	return &mf, nil
}

// EncodeMappingFile renders mf in the given format.
func EncodeMappingFile(mf *MappingFile, format Format) ([]byte, error) {
	if mf.Version == "" {
		mf.Version = MappingFileVersion
	}
	if format == FormatJSON {
		data, err := json.MarshalIndent(mf, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	}
	return yaml.Marshal(mf)
}

// SaveMappingFile writes mf to path, choosing the format from its extension.
func SaveMappingFile(path string, mf *MappingFile) error {
	data, err := EncodeMappingFile(mf, FormatFromPath(path))
	if err != nil {
		return fmt.Errorf("failed to encode mapping file '%s': %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write mapping file '%s': %w", path, err)
	}
	return nil
}
