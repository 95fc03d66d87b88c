// Package exprctx supplies what an expression editor needs to work against
// a mapping's source schema: the set of resolvable field names, an empty
// SQLite table shaped like the source, and a checker that reports whether
// expression text compiles against that table and which fields it uses.
//
// Nothing here evaluates expressions against real data.
package exprctx
