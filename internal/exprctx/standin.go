package exprctx

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/BartekS5/fieldmap/pkg/logger"
	"github.com/BartekS5/fieldmap/pkg/models"
)

// StandInTable is the name of the table holding the source field columns.
const StandInTable = "source"

// declaredType matches type tags SQLite accepts verbatim as a column type,
// e.g. "int", "nvarchar(50)", "double precision", "decimal(10, 2)".
var declaredType = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*( [A-Za-z][A-Za-z0-9_]*)*(\(\s*\d+\s*(,\s*\d+\s*)?\))?$`)

// StandIn is a throwaway in-memory SQLite database with one empty table
// whose columns are the source schema's fields. Table is empty when the
// source schema has no fields.
type StandIn struct {
	DB     *sql.DB
	Table  string
	fields []models.Field
}

// StandIn materializes the source schema as an empty table. The caller
// must Close it.
func (p *Provider) StandIn(ctx context.Context) (*StandIn, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("error opening stand-in database: %w", err)
	}
	// Every new connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to stand-in database: %w", err)
	}

	s := &StandIn{DB: db, fields: p.source.Fields()}
	if len(s.fields) > 0 {
		if _, err := db.ExecContext(ctx, createTableSQL(StandInTable, s.fields)); err != nil {
			db.Close()
			return nil, fmt.Errorf("error creating stand-in table: %w", err)
		}
		s.Table = StandInTable
	}
	if _, err := db.ExecContext(ctx, "PRAGMA query_only = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("error locking stand-in database: %w", err)
	}

	logger.Debugf("Stand-in table %q created with %d columns", s.Table, len(s.fields))
	return s, nil
}

func createTableSQL(table string, fields []models.Field) string {
	cols := make([]string, len(fields))
	for i, f := range fields {
		col := QuotedColumnRef(f.Name)
		if declaredType.MatchString(f.Type) {
			col += " " + f.Type
		}
		cols[i] = col
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", QuotedColumnRef(table), strings.Join(cols, ", "))
}

// Fields returns the field definitions the table was built from.
func (s *StandIn) Fields() []models.Field {
	out := make([]models.Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Columns reads the table definition back from SQLite. Types that were not
// passed through come back empty.
func (s *StandIn) Columns(ctx context.Context) ([]models.Field, error) {
	if s.Table == "" {
		return nil, nil
	}
	rows, err := s.DB.QueryContext(ctx, "SELECT name, type FROM pragma_table_info(?) ORDER BY cid", s.Table)
	if err != nil {
		return nil, fmt.Errorf("error reading stand-in columns: %w", err)
	}
	defer rows.Close()

	var cols []models.Field
	for rows.Next() {
		var f models.Field
		if err := rows.Scan(&f.Name, &f.Type); err != nil {
			return nil, err
		}
		cols = append(cols, f)
	}
	return cols, rows.Err()
}

// RowCount is always zero; it exists for callers that treat the stand-in
// like any other dataset.
func (s *StandIn) RowCount(ctx context.Context) (int, error) {
	if s.Table == "" {
		return 0, nil
	}
	var n int
	err := s.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+QuotedColumnRef(s.Table)).Scan(&n)
	return n, err
}

func (s *StandIn) Close() error {
	return s.DB.Close()
}
