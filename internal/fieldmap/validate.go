package fieldmap

import (
	"context"
	"errors"
	"fmt"

	"github.com/BartekS5/fieldmap/internal/exprctx"
	"github.com/BartekS5/fieldmap/pkg/models"
)

type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Issue codes reported by Validate.
const (
	CodeMalformedExpression  = "malformed_expression"
	CodeUnknownField         = "unknown_field"
	CodeUnsetExpression      = "unset_expression"
	CodeUnsetDestination     = "unset_destination"
	CodeUnknownDestination   = "unknown_destination"
	CodeDuplicateDestination = "duplicate_destination"
)

// Issue is a problem found in one cell.
type Issue struct {
	Row      int
	Column   int
	Severity Severity
	Code     string
	Message  string
}

func (i Issue) String() string {
	return fmt.Sprintf("row %d: %s: %s", i.Row, i.Severity, i.Message)
}

// ExpressionChecker is the expression-editing collaborator consulted by
// Validate. *exprctx.Checker implements it.
type ExpressionChecker interface {
	Check(ctx context.Context, expr string) exprctx.Result
}

// Validate inspects every entry without changing the model. Destination
// names are checked against destination when it has fields.
func Validate(ctx context.Context, m *Model, checker ExpressionChecker, destination models.Schema) []Issue {
	var issues []Issue
	firstRow := make(map[string]int)

	for row, e := range m.entries {
		switch {
		case e.DestinationField == "":
			issues = append(issues, Issue{Row: row, Column: ColumnDestination, Severity: SeverityWarning,
				Code: CodeUnsetDestination, Message: "destination field is unset, entry will not be exported"})
		case destination.Len() > 0 && !destination.Has(e.DestinationField):
			issues = append(issues, Issue{Row: row, Column: ColumnDestination, Severity: SeverityError,
				Code: CodeUnknownDestination, Message: fmt.Sprintf("%q is not a destination field", e.DestinationField)})
		}

		if e.DestinationField != "" {
			if first, dup := firstRow[e.DestinationField]; dup {
				issues = append(issues, Issue{Row: row, Column: ColumnDestination, Severity: SeverityWarning,
					Code:    CodeDuplicateDestination,
					Message: fmt.Sprintf("destination %q is already mapped by row %d", e.DestinationField, first)})
			} else {
				firstRow[e.DestinationField] = row
			}
		}

		if checker == nil {
			continue
		}
		res := checker.Check(ctx, e.SourceExpression)
		switch {
		case res.Empty:
			issues = append(issues, Issue{Row: row, Column: ColumnSource, Severity: SeverityWarning,
				Code: CodeUnsetExpression, Message: "source expression is unset"})
		case res.Err != nil:
			code := CodeMalformedExpression
			if errors.Is(res.Err, exprctx.ErrUnknownField) {
				code = CodeUnknownField
			}
			issues = append(issues, Issue{Row: row, Column: ColumnSource, Severity: SeverityError,
				Code: code, Message: res.Err.Error()})
		}
	}
	return issues
}

// HasErrors reports whether any issue is an error.
func HasErrors(issues []Issue) bool {
	for _, i := range issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}
