// Package balance implements the parenthesis balance scanner for Iris source
// text.
//
// # Model
//
// Scan is a single left-to-right pass over the input. Every character is
// classified as normal code, string literal or line comment. In normal code an
// opening '(' pushes an OpenMark carrying its Position, and a closing ')' pops
// the most recent one. A ')' with nothing to pop becomes an UnmatchedClose
// diagnostic and the stack is left untouched. Whatever remains on the stack at
// the end of input is reported as UnclosedOpen, innermost first.
//
// # Lexical rules
//
//   - A line comment starts at Options.CommentMarker (";" by default) and runs
//     to the end of the physical line.
//   - A string starts and ends at Options.Quote ('"'). Inside a string
//     Options.Escape ('\\') makes the next character literal.
//   - A newline always ends a comment and clears a pending escape. Whether it
//     also ends an open string is Options.Strings.
//
// Lines and columns are 1-based. Columns count runes, so a multi-byte
// character occupies one column. An invalid UTF-8 byte also counts as one.
//
// # Guarantees
//
// Scan is a pure function of its input: no I/O, no shared state, no errors.
// Malformed input only produces diagnostics. The package does not format
// output or decide exit codes; that is left to internal/diagfmt and the CLI.
package balance
