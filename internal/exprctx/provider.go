package exprctx

import (
	"github.com/BartekS5/fieldmap/pkg/models"
)

// Provider hands out expression contexts bound to a fixed source schema.
type Provider struct {
	source models.Schema
}

func NewProvider(source models.Schema) *Provider {
	return &Provider{source: source}
}

func (p *Provider) Source() models.Schema {
	return p.source
}

// BuildContext returns the fields an expression may reference.
func (p *Provider) BuildContext() Context {
	return Context{fields: p.source}
}

// Context is a read-only view of the fields visible to an expression.
type Context struct {
	fields models.Schema
}

func (c Context) Fields() []models.Field {
	return c.fields.Fields()
}

func (c Context) Names() []string {
	return c.fields.Names()
}

func (c Context) Has(name string) bool {
	return c.fields.Has(name)
}

func (c Context) Lookup(name string) (models.Field, bool) {
	return c.fields.Lookup(name)
}

// Normalize rewrites input that is exactly a field name into a quoted
// column reference. Any other text is returned unchanged.
func (c Context) Normalize(input string) string {
	if c.Has(input) {
		return QuotedColumnRef(input)
	}
	return input
}
