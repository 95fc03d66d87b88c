package cli

import (
	"fmt"

	"github.com/BartekS5/fieldmap/internal/config"
	"github.com/BartekS5/fieldmap/internal/fieldmap"
	"github.com/BartekS5/fieldmap/pkg/logger"
	"github.com/BartekS5/fieldmap/pkg/utils"
)

// session is a mapping file opened for editing.
type session struct {
	path  string
	file  *config.MappingFile
	model *fieldmap.Model
}

func openSession(path string) (*session, error) {
	mf, err := config.LoadMappingFile(path)
	if err != nil {
		return nil, err
	}
	model := fieldmap.NewFromMapping(mf.Source.Schema(), mf.Mapping)
	model.Subscribe(fieldmap.ObserverFunc(logChange))
	return &session{path: path, file: mf, model: model}, nil
}

// save writes the exported mapping back to the session's file.
func (s *session) save() error {
	for _, e := range s.model.Entries() {
		if e.DestinationField == "" {
			logger.Warnf("Entry with source %q has no destination field and is not saved", e.SourceExpression)
		}
	}
	s.file.Mapping = s.model.Export()
	if err := config.SaveMappingFile(s.path, s.file); err != nil {
		return err
	}
	logger.Infof("Saved %d entries to %s", len(s.file.Mapping), s.path)
	return nil
}

func logChange(c fieldmap.Change) {
	logger.Infof("Mapping changed: %s", c)
}

// parseIndex reads a row or column number from a positional argument.
func parseIndex(name, arg string) (int, error) {
	n, err := utils.ConvertToInt(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, arg, err)
	}
	return n, nil
}

// parseColumn accepts a column number or one of "source", "destination".
func parseColumn(arg string) (int, error) {
	switch arg {
	case "source", "src":
		return fieldmap.ColumnSource, nil
	case "destination", "dest", "dst":
		return fieldmap.ColumnDestination, nil
	}
	return parseIndex("column", arg)
}
