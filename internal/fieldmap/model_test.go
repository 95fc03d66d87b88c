package fieldmap

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BartekS5/fieldmap/pkg/models"
)

type recorder struct {
	changes []Change
}

func (r *recorder) ModelChanged(c Change) { r.changes = append(r.changes, c) }

func entry(src, dst string) models.MappingEntry {
	return models.MappingEntry{SourceExpression: src, DestinationField: dst}
}

// threeRows returns a model with entries E0, E1, E2.
func threeRows() *Model {
	return NewFromMapping(models.SchemaFromNames("a", "b", "c"), models.Mapping{
		{Destination: "d0", Expression: "e0"},
		{Destination: "d1", Expression: "e1"},
		{Destination: "d2", Expression: "e2"},
	})
}

func TestNew_MatchesByName(t *testing.T) {
	m := New(models.SchemaFromNames("B", "D"), models.SchemaFromNames("A", "B", "C"))

	assert.Equal(t, []models.MappingEntry{
		entry("", "A"),
		entry("B", "B"),
		entry("", "C"),
	}, m.Entries())
}

func TestNew_CaseSensitive(t *testing.T) {
	m := New(models.SchemaFromNames("name"), models.SchemaFromNames("Name"))

	src, ok := m.Get(0, ColumnSource)
	require.True(t, ok)
	assert.Empty(t, src)
}

func TestNew_DuplicateSourceFirstWins(t *testing.T) {
	source := models.NewSchema(models.Field{Name: "x", Type: "first"}, models.Field{Name: "x", Type: "second"})
	m := New(source, models.SchemaFromNames("x"))

	assert.Equal(t, []models.MappingEntry{entry("x", "x")}, m.Entries())
}

func TestNew_EmptyDestination(t *testing.T) {
	m := New(models.SchemaFromNames("a"), models.Schema{})
	assert.Equal(t, 0, m.RowCount())
	assert.Empty(t, m.Export())
}

func TestModel_Dimensions(t *testing.T) {
	m := threeRows()
	assert.Equal(t, 3, m.RowCount())
	assert.Equal(t, 2, m.ColumnCount())

	label, ok := m.HeaderLabel(ColumnSource)
	require.True(t, ok)
	assert.Equal(t, "Source expression", label)

	label, ok = m.HeaderLabel(ColumnDestination)
	require.True(t, ok)
	assert.Equal(t, "Destination field", label)

	_, ok = m.HeaderLabel(2)
	assert.False(t, ok)
}

func TestModel_Get(t *testing.T) {
	m := threeRows()

	v, ok := m.Get(1, ColumnSource)
	require.True(t, ok)
	assert.Equal(t, "e1", v)

	v, ok = m.Get(1, ColumnDestination)
	require.True(t, ok)
	assert.Equal(t, "d1", v)

	for _, cell := range [][2]int{{-1, 0}, {3, 0}, {0, -1}, {0, 2}} {
		v, ok := m.Get(cell[0], cell[1])
		assert.False(t, ok, "cell %v", cell)
		assert.Empty(t, v)
	}
}

func TestModel_SetIsolation(t *testing.T) {
	m := threeRows()
	before := m.Entries()
	rec := &recorder{}
	m.Subscribe(rec)

	require.True(t, m.Set(1, ColumnSource, "foo"))

	after := m.Entries()
	assert.Equal(t, before[0], after[0])
	assert.Equal(t, before[2], after[2])
	assert.Equal(t, entry("foo", "d1"), after[1])

	assert.Equal(t, []Change{{Kind: CellsChanged, FirstRow: 1, LastRow: 1, FirstColumn: 0, LastColumn: 0}}, rec.changes)
}

func TestModel_SetDestination(t *testing.T) {
	m := threeRows()
	rec := &recorder{}
	m.Subscribe(rec)

	require.True(t, m.Set(2, ColumnDestination, "renamed"))
	assert.Equal(t, entry("e2", "renamed"), m.Entries()[2])
	assert.Equal(t, Change{Kind: CellsChanged, FirstRow: 2, LastRow: 2, FirstColumn: 1, LastColumn: 1}, rec.changes[0])
}

func TestModel_SetStoresTextVerbatim(t *testing.T) {
	m := threeRows()
	require.True(t, m.Set(0, ColumnSource, "((( not an expression"))
	v, _ := m.Get(0, ColumnSource)
	assert.Equal(t, "((( not an expression", v)
}

func TestModel_SetOutOfRange(t *testing.T) {
	m := threeRows()
	before := m.Entries()
	rec := &recorder{}
	m.Subscribe(rec)

	assert.False(t, m.Set(-1, ColumnSource, "x"))
	assert.False(t, m.Set(3, ColumnSource, "x"))
	assert.False(t, m.Set(0, 2, "x"))
	assert.False(t, m.Set(0, -1, "x"))

	assert.Equal(t, before, m.Entries())
	assert.Empty(t, rec.changes)
}

func TestModel_Insert(t *testing.T) {
	m := threeRows()
	rec := &recorder{}
	m.Subscribe(rec)

	require.True(t, m.Insert(1, 1))
	assert.Equal(t, []models.MappingEntry{
		entry("e0", "d0"),
		entry("", ""),
		entry("e1", "d1"),
		entry("e2", "d2"),
	}, m.Entries())
	assert.Equal(t, []Change{{Kind: RowsInserted, FirstRow: 1, LastRow: 1, FirstColumn: 0, LastColumn: 1}}, rec.changes)
}

func TestModel_InsertAtEdges(t *testing.T) {
	m := threeRows()
	rec := &recorder{}
	m.Subscribe(rec)

	require.True(t, m.Insert(0, 2))
	require.True(t, m.Insert(m.RowCount(), 1))

	entries := m.Entries()
	require.Len(t, entries, 6)
	assert.Equal(t, entry("", ""), entries[0])
	assert.Equal(t, entry("", ""), entries[1])
	assert.Equal(t, entry("e0", "d0"), entries[2])
	assert.Equal(t, entry("", ""), entries[5])

	assert.Equal(t, Change{Kind: RowsInserted, FirstRow: 0, LastRow: 1, LastColumn: 1}, rec.changes[0])
	assert.Equal(t, Change{Kind: RowsInserted, FirstRow: 5, LastRow: 5, LastColumn: 1}, rec.changes[1])
}

func TestModel_InsertUpToLimit(t *testing.T) {
	m := NewFromMapping(models.Schema{}, nil)
	require.True(t, m.Insert(0, maxRows-1))
	require.True(t, m.Insert(0, 1))
	assert.False(t, m.Insert(0, 1))
	assert.Equal(t, maxRows, m.RowCount())
}

func TestModel_InsertIntoEmpty(t *testing.T) {
	m := NewFromMapping(models.Schema{}, nil)
	require.True(t, m.Insert(0, 3))
	assert.Equal(t, 3, m.RowCount())
}

func TestModel_InsertOutOfRange(t *testing.T) {
	m := threeRows()
	before := m.Entries()
	rec := &recorder{}
	m.Subscribe(rec)

	assert.False(t, m.Insert(-1, 1))
	assert.False(t, m.Insert(4, 1))
	assert.False(t, m.Insert(1, 0))
	assert.False(t, m.Insert(1, -2))
	assert.False(t, m.Insert(1, math.MaxInt))
	assert.False(t, m.Insert(0, maxRows-2))

	assert.Equal(t, before, m.Entries())
	assert.Empty(t, rec.changes)
}

func TestModel_Remove(t *testing.T) {
	m := threeRows()
	rec := &recorder{}
	m.Subscribe(rec)

	require.True(t, m.Remove(1, 1))
	assert.Equal(t, []models.MappingEntry{entry("e0", "d0"), entry("e2", "d2")}, m.Entries())
	assert.Equal(t, []Change{{Kind: RowsRemoved, FirstRow: 1, LastRow: 1, FirstColumn: 0, LastColumn: 1}}, rec.changes)
}

func TestModel_RemoveAll(t *testing.T) {
	m := threeRows()
	require.True(t, m.Remove(0, 3))
	assert.Equal(t, 0, m.RowCount())
}

func TestModel_RemoveOutOfRange(t *testing.T) {
	m := threeRows()
	before := m.Entries()
	rec := &recorder{}
	m.Subscribe(rec)

	assert.False(t, m.Remove(-1, 1))
	assert.False(t, m.Remove(3, 1))
	assert.False(t, m.Remove(2, 2))
	assert.False(t, m.Remove(0, 4))
	assert.False(t, m.Remove(0, 0))

	assert.Equal(t, before, m.Entries())
	assert.Empty(t, rec.changes)
}

func TestModel_ExportSkipsUnsetDestinations(t *testing.T) {
	m := threeRows()
	require.True(t, m.Set(1, ColumnDestination, ""))
	require.True(t, m.Insert(0, 1))
	require.True(t, m.Set(0, ColumnSource, "dropped anyway"))

	assert.Equal(t, models.Mapping{
		{Destination: "d0", Expression: "e0"},
		{Destination: "d2", Expression: "e2"},
	}, m.Export())
}

func TestModel_ExportKeepsDuplicates(t *testing.T) {
	m := threeRows()
	require.True(t, m.Set(2, ColumnDestination, "d0"))

	assert.Equal(t, models.Mapping{
		{Destination: "d0", Expression: "e0"},
		{Destination: "d1", Expression: "e1"},
		{Destination: "d0", Expression: "e2"},
	}, m.Export())
}

func TestModel_RoundTrip(t *testing.T) {
	in := models.Mapping{
		{Destination: "z", Expression: `"a" || 'b'`},
		{Destination: "y", Expression: ""},
		{Destination: "x", Expression: "c"},
	}

	m := New(models.SchemaFromNames("a"), models.SchemaFromNames("q"))
	rec := &recorder{}
	m.Subscribe(rec)

	m.Import(in)
	assert.Equal(t, in, m.Export())
	assert.Equal(t, []Change{{Kind: Reset, FirstRow: 0, LastRow: 2, FirstColumn: 0, LastColumn: 1}}, rec.changes)

	in[0].Expression = "mutated"
	v, _ := m.Get(0, ColumnSource)
	assert.Equal(t, `"a" || 'b'`, v, "model must not alias the imported mapping")
}

func TestModel_ImportIsFullReset(t *testing.T) {
	m := threeRows()
	m.Import(models.Mapping{{Destination: "only", Expression: "x"}})
	assert.Equal(t, []models.MappingEntry{entry("x", "only")}, m.Entries())

	m.Import(nil)
	assert.Equal(t, 0, m.RowCount())
}

func TestModel_EntriesIsCopy(t *testing.T) {
	m := threeRows()
	entries := m.Entries()
	entries[0].SourceExpression = "changed"

	v, _ := m.Get(0, ColumnSource)
	assert.Equal(t, "e0", v)
}

func TestModel_Unsubscribe(t *testing.T) {
	m := threeRows()
	first, second := &recorder{}, &recorder{}
	unsubscribe := m.Subscribe(first)
	m.Subscribe(second)

	m.Set(0, ColumnSource, "a")
	unsubscribe()
	m.Set(0, ColumnSource, "b")

	assert.Len(t, first.changes, 1)
	assert.Len(t, second.changes, 2)
}

func TestModel_ObserverFunc(t *testing.T) {
	m := threeRows()
	var got []ChangeKind
	m.Subscribe(ObserverFunc(func(c Change) { got = append(got, c.Kind) }))

	m.Insert(0, 1)
	m.Remove(0, 1)
	m.Set(0, 0, "x")
	m.Import(nil)

	assert.Equal(t, []ChangeKind{RowsInserted, RowsRemoved, CellsChanged, Reset}, got)
}

func TestModel_ContextProvider(t *testing.T) {
	source := models.SchemaFromNames("id", "name")
	m := New(source, models.SchemaFromNames("name"))

	c := m.ContextProvider().BuildContext()
	assert.Equal(t, []string{"id", "name"}, c.Names())
	assert.Equal(t, source.Names(), m.SourceSchema().Names())
}
