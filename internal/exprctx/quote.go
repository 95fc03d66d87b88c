package exprctx

import "strings"

// QuotedColumnRef quotes name as a column reference, doubling embedded quotes.
func QuotedColumnRef(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
