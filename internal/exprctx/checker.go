package exprctx

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMalformedExpression = errors.New("malformed expression")
	ErrUnknownField        = errors.New("unknown field")
)

// Result describes one checked expression.
type Result struct {
	Expression string
	// Empty marks unset text; it is neither valid nor invalid.
	Empty bool
	Err   error
	// References lists source fields the expression uses, in order of
	// first appearance.
	References []string
}

func (r Result) Valid() bool {
	return !r.Empty && r.Err == nil
}

// Checker compiles expression text against a stand-in of the source schema.
type Checker struct {
	standIn *StandIn
	fields  Context
}

func NewChecker(ctx context.Context, p *Provider) (*Checker, error) {
	s, err := p.StandIn(ctx)
	if err != nil {
		return nil, err
	}
	return &Checker{standIn: s, fields: p.BuildContext()}, nil
}

func (c *Checker) Close() error {
	return c.standIn.Close()
}

// Check reports whether expr is well formed and which fields it references.
// The compiled statement selects from an empty table, so nothing is
// evaluated against data.
func (c *Checker) Check(ctx context.Context, expr string) Result {
	res := Result{Expression: expr}
	if strings.TrimSpace(expr) == "" {
		res.Empty = true
		return res
	}

	tokens, err := Lex(expr)
	if err != nil {
		res.Err = fmt.Errorf("%w: %v", ErrMalformedExpression, err)
		return res
	}

	refs, unknown, err := scanReferences(tokens, c.fields)
	res.References = refs
	if err != nil {
		res.Err = err
		return res
	}
	if len(unknown) > 0 {
		res.Err = fmt.Errorf("%w: %s", ErrUnknownField, strings.Join(unknown, ", "))
		return res
	}

	if err := c.compile(ctx, expr); err != nil {
		res.Err = fmt.Errorf("%w: %v", ErrMalformedExpression, err)
	}
	return res
}

func (c *Checker) compile(ctx context.Context, expr string) error {
	// Newlines keep a trailing line comment from swallowing the parenthesis.
	query := "SELECT (\n" + expr + "\n)"
	if c.standIn.Table != "" {
		query += " FROM " + QuotedColumnRef(c.standIn.Table)
	}
	query += " LIMIT 0"

	rows, err := c.standIn.DB.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return err
	}
	if len(cols) != 1 {
		return fmt.Errorf("expression yields %d columns", len(cols))
	}
	return rows.Close()
}

// scanReferences collects field references from tokens. Quoted identifiers
// are always column references, so ones missing from fields are unknown.
// Bare identifiers count only when they name a field and are not called
// as a function. Parentheses must balance.
func scanReferences(tokens []Token, fields Context) (refs, unknown []string, err error) {
	seen := make(map[string]bool)
	missing := make(map[string]bool)
	depth := 0

	for i, tok := range tokens {
		switch tok.Kind {
		case TokLParen:
			depth++
			continue
		case TokRParen:
			depth--
			if depth < 0 {
				return refs, unknown, fmt.Errorf("%w: unmatched ')' at position %d", ErrMalformedExpression, tok.Pos)
			}
			continue
		case TokEOF:
			if depth > 0 {
				return refs, unknown, fmt.Errorf("%w: %d unclosed '('", ErrMalformedExpression, depth)
			}
			continue
		case TokSemicolon:
			return refs, unknown, fmt.Errorf("%w: ';' at position %d, only a single expression is allowed", ErrMalformedExpression, tok.Pos)
		case TokQuotedIdent:
			if !fields.Has(tok.Value) {
				if !missing[tok.Value] {
					missing[tok.Value] = true
					unknown = append(unknown, tok.Value)
				}
				continue
			}
		case TokIdent:
			if !fields.Has(tok.Value) || (i+1 < len(tokens) && tokens[i+1].Kind == TokLParen) {
				continue
			}
		default:
			continue
		}
		if !seen[tok.Value] {
			seen[tok.Value] = true
			refs = append(refs, tok.Value)
		}
	}
	return refs, unknown, nil
}
