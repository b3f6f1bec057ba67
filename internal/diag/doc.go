// Package diag defines the diagnostic model shared by the scanner driver and
// the renderers.
//
// # Purpose
//
//   - Provide deterministic data structures for findings: a Diagnostic with a
//     Severity, a stable Code, a message, a primary source.Span and optional
//     notes.
//   - Offer light-weight utilities (Reporter, Bag) that let producers emit
//     diagnostics without coupling to storage or formatting.
//
// # Scope
//
// Package diag does not perform formatting beyond the single-line short form,
// and it does no IO. Rendering lives in internal/diagfmt; orchestration lives
// in internal/driver.
//
// # Codes
//
// Codes are grouped by range: 1000-1999 are balance defects (BAL prefix),
// 4000-4999 are I/O problems (IO prefix). Only I/O codes count as environment
// failures for the CLI exit status.
package diag
