// Package logging wraps zerolog behind the small Logger interface used by the
// sequence service. Entries carry structured fields built with the Field
// helpers.
package logging
