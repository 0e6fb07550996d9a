// Package ident builds SQL identifier text for columns whose names are only
// known at runtime.
//
// Identifiers cannot be bound as statement parameters, so dynamic column
// names are spliced into DDL and DML as bracket-quoted literals:
//
//	Quote("permission_camera") == "[permission_camera]"
//
// Sanitize strips the characters that could break out of that quoting
// context (single quotes, double quotes, and the "--" line comment marker).
// It is not a general injection defence: a closing bracket in a name is left
// in place and surfaces as a statement error, which callers treat as an
// abandoned attribute rather than a failure.
package ident
