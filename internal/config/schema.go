package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/BartekS5/fieldmap/pkg/models"
)

// SchemaFile is the on-disk form of a schema. YAML and JSON both parse.
//
//	name: customers
//	fields:
//	  - name: id
//	    type: int
//	  - name: email
//	    type: nvarchar(255)
type SchemaFile struct {
	Name   string         `yaml:"name,omitempty" json:"name,omitempty"`
	Fields []models.Field `yaml:"fields" json:"fields"`
}

func NewSchemaFile(name string, s models.Schema) SchemaFile {
	return SchemaFile{Name: name, Fields: s.Fields()}
}

func (f SchemaFile) Schema() models.Schema {
	return models.NewSchema(f.Fields...)
}

// LoadSchema reads a schema file and rejects empty or repeated field names.
func LoadSchema(path string) (models.Schema, error) {
	f, err := LoadSchemaFile(path)
	if err != nil {
		return models.Schema{}, err
	}
	return f.Schema(), nil
}

// LoadSchemaFile is LoadSchema keeping the file's name.
func LoadSchemaFile(path string) (SchemaFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SchemaFile{}, fmt.Errorf("failed to read schema file '%s': %w", path, err)
	}
	return ParseSchemaFile(data, path)
}

// ParseSchema parses schema file contents; name is used in error messages.
func ParseSchema(data []byte, name string) (models.Schema, error) {
	f, err := ParseSchemaFile(data, name)
	if err != nil {
		return models.Schema{}, err
	}
	return f.Schema(), nil
}

func ParseSchemaFile(data []byte, name string) (SchemaFile, error) {
	var f SchemaFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return SchemaFile{}, fmt.Errorf("failed to parse schema file '%s': %w", name, err)
	}
	if err := f.Schema().Validate(); err != nil {
		return SchemaFile{}, fmt.Errorf("invalid schema '%s': %w", name, err)
	}
	return f, nil
}
