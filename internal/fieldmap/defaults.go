package fieldmap

import (
	"github.com/BartekS5/fieldmap/pkg/logger"
	"github.com/BartekS5/fieldmap/pkg/models"
)

// New builds one entry per destination field, in destination order. An
// entry's source expression is the name of the source field with exactly
// the same name, or empty when there is none. Empty means unset, not an
// expression to evaluate.
func New(source, destination models.Schema) *Model {
	m := &Model{source: source}
	m.entries = DefaultEntries(source, destination)
	return m
}

// DefaultEntries matches destination fields to source fields by exact,
// case-sensitive name. If the source repeats a name the first one wins.
func DefaultEntries(source, destination models.Schema) []models.MappingEntry {
	entries := make([]models.MappingEntry, destination.Len())
	matched := 0
	for i := range entries {
		dst := destination.Field(i)
		entries[i].DestinationField = dst.Name
		if src, ok := source.Lookup(dst.Name); ok {
			entries[i].SourceExpression = src.Name
			matched++
		}
	}
	logger.Debugf("Matched %d of %d destination fields by name", matched, len(entries))
	return entries
}
