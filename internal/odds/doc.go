// Package odds normalizes textual Asian handicap and over/under lines and
// evaluates historical results against them.
//
// Every function in this package is pure: no I/O, no shared state, and
// identical input always yields identical output, so callers may cache
// results freely and invoke them from any goroutine.
package odds
