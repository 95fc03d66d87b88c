package fieldmap

import "fmt"

// ChangeKind tells observers what kind of mutation happened.
type ChangeKind int

const (
	CellsChanged ChangeKind = iota
	RowsInserted
	RowsRemoved
	Reset
)

func (k ChangeKind) String() string {
	switch k {
	case CellsChanged:
		return "cells-changed"
	case RowsInserted:
		return "rows-inserted"
	case RowsRemoved:
		return "rows-removed"
	case Reset:
		return "reset"
	default:
		return fmt.Sprintf("ChangeKind(%d)", int(k))
	}
}

// Change is the inclusive range affected by one mutation. For RowsRemoved
// the rows are numbered as they were before removal. A Reset of an empty
// model has LastRow == FirstRow-1.
type Change struct {
	Kind        ChangeKind
	FirstRow    int
	LastRow     int
	FirstColumn int
	LastColumn  int
}

func (c Change) String() string {
	return fmt.Sprintf("%s rows %d-%d columns %d-%d", c.Kind, c.FirstRow, c.LastRow, c.FirstColumn, c.LastColumn)
}

type Observer interface {
	ModelChanged(Change)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Change)

func (f ObserverFunc) ModelChanged(c Change) { f(c) }
