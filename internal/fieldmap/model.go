package fieldmap

import (
	"github.com/BartekS5/fieldmap/internal/exprctx"
	"github.com/BartekS5/fieldmap/pkg/logger"
	"github.com/BartekS5/fieldmap/pkg/models"
)

const (
	ColumnSource      = 0
	ColumnDestination = 1

	columnCount = 2

	// maxRows is the largest table Insert will grow to.
	maxRows = 1 << 20
)

var headerLabels = [columnCount]string{
	ColumnSource:      "Source expression",
	ColumnDestination: "Destination field",
}

type subscription struct {
	id int
	o  Observer
}

// Model is an ordered list of mapping entries bound to a source schema.
type Model struct {
	entries   []models.MappingEntry
	source    models.Schema
	observers []subscription
	nextID    int
}

// NewFromMapping builds a model whose entries are the pairs of m in order.
func NewFromMapping(source models.Schema, m models.Mapping) *Model {
	model := &Model{source: source}
	model.entries = entriesFrom(m)
	return model
}

func entriesFrom(m models.Mapping) []models.MappingEntry {
	entries := make([]models.MappingEntry, len(m))
	for i, p := range m {
		entries[i] = models.MappingEntry{SourceExpression: p.Expression, DestinationField: p.Destination}
	}
	return entries
}

func (m *Model) RowCount() int {
	return len(m.entries)
}

func (m *Model) ColumnCount() int {
	return columnCount
}

// HeaderLabel returns the display label of column.
func (m *Model) HeaderLabel(column int) (string, bool) {
	if column < 0 || column >= columnCount {
		return "", false
	}
	return headerLabels[column], true
}

// Get returns the text of one cell. ok is false outside the table.
func (m *Model) Get(row, column int) (string, bool) {
	if !m.validCell(row, column) {
		return "", false
	}
	e := m.entries[row]
	if column == ColumnSource {
		return e.SourceExpression, true
	}
	return e.DestinationField, true
}

// Set overwrites one cell and notifies observers of that cell only.
// The value is stored as given.
func (m *Model) Set(row, column int, value string) bool {
	if !m.validCell(row, column) {
		logger.Debugf("Rejected edit of cell (%d, %d) in a %d row mapping", row, column, len(m.entries))
		return false
	}
	if column == ColumnSource {
		m.entries[row].SourceExpression = value
	} else {
		m.entries[row].DestinationField = value
	}
	m.notify(Change{Kind: CellsChanged, FirstRow: row, LastRow: row, FirstColumn: column, LastColumn: column})
	return true
}

// Insert adds count empty entries before position. position may equal
// RowCount to append. The table never grows past maxRows entries.
func (m *Model) Insert(position, count int) bool {
	if count < 1 || count > maxRows-len(m.entries) || position < 0 || position > len(m.entries) {
		logger.Debugf("Rejected insert of %d rows at %d in a %d row mapping", count, position, len(m.entries))
		return false
	}
	grown := make([]models.MappingEntry, 0, len(m.entries)+count)
	grown = append(grown, m.entries[:position]...)
	grown = append(grown, make([]models.MappingEntry, count)...)
	grown = append(grown, m.entries[position:]...)
	m.entries = grown

	m.notify(Change{Kind: RowsInserted, FirstRow: position, LastRow: position + count - 1, LastColumn: columnCount - 1})
	return true
}

// Remove deletes count entries starting at position. The whole range must
// lie inside the table.
func (m *Model) Remove(position, count int) bool {
	if count < 1 || position < 0 || position > len(m.entries)-count {
		logger.Debugf("Rejected removal of %d rows at %d in a %d row mapping", count, position, len(m.entries))
		return false
	}
	m.entries = append(m.entries[:position:position], m.entries[position+count:]...)

	m.notify(Change{Kind: RowsRemoved, FirstRow: position, LastRow: position + count - 1, LastColumn: columnCount - 1})
	return true
}

// Export returns the entries as an ordered mapping, skipping entries whose
// destination is unset. Repeated destinations are all kept.
func (m *Model) Export() models.Mapping {
	out := make(models.Mapping, 0, len(m.entries))
	for _, e := range m.entries {
		if e.DestinationField == "" {
			continue
		}
		out = append(out, models.MappingPair{Destination: e.DestinationField, Expression: e.SourceExpression})
	}
	return out
}

// Import replaces every entry with the pairs of mapping, in order.
func (m *Model) Import(mapping models.Mapping) {
	m.entries = entriesFrom(mapping)
	m.notify(Change{Kind: Reset, FirstRow: 0, LastRow: len(m.entries) - 1, LastColumn: columnCount - 1})
}

// Entries returns a copy of the current entries.
func (m *Model) Entries() []models.MappingEntry {
	out := make([]models.MappingEntry, len(m.entries))
	copy(out, m.entries)
	return out
}

func (m *Model) SourceSchema() models.Schema {
	return m.source
}

// ContextProvider returns a provider bound to the source schema the model
// was built with.
func (m *Model) ContextProvider() *exprctx.Provider {
	return exprctx.NewProvider(m.source)
}

// Subscribe registers o for change notifications. The returned function
// removes the subscription.
func (m *Model) Subscribe(o Observer) (unsubscribe func()) {
	id := m.nextID
	m.nextID++
	m.observers = append(m.observers, subscription{id: id, o: o})

	return func() {
		for i, s := range m.observers {
			if s.id == id {
				m.observers = append(m.observers[:i:i], m.observers[i+1:]...)
				return
			}
		}
	}
}

func (m *Model) notify(c Change) {
	subs := append([]subscription(nil), m.observers...)
	for _, s := range subs {
		s.o.ModelChanged(c)
	}
}

func (m *Model) validCell(row, column int) bool {
	return row >= 0 && row < len(m.entries) && column >= 0 && column < columnCount
}
