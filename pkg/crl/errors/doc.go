// Package errors provides structured error types for CRL rulebook parsing
// and validation.
//
// Errors carry a type, a source location, optional surrounding source
// context, and an optional suggested fix. ErrorList accumulates every
// problem found in a rulebook instead of stopping at the first, so a lint
// run reports the whole file at once.
package errors
