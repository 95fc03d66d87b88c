// Package fieldmap holds the editable mapping between destination fields
// and source expressions.
//
// A Model is a two column table: column 0 is the source expression and
// column 1 the destination field name. Rendering surfaces read it through
// RowCount, ColumnCount, HeaderLabel and Get, and write edits back through
// Set, Insert and Remove. Every mutation is reported to subscribed
// observers with the exact range it touched.
//
// The model never validates expression text and never deduplicates
// destinations. Consumers of Export decide how to treat repeated keys
// (see models.Mapping.Resolve), and Validate reports problems without
// changing anything.
//
// A Model is not safe for concurrent use.
package fieldmap
