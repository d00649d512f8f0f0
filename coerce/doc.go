// Package coerce converts literal markup text into typed constants.
//
// A type's converter is named in its type table entry. Types without a
// converter accept text only when they are assignable from String. A type
// may also carry a constraint, an expr-lang expression evaluated against the
// converted value:
//
//	- name: Opacity
//	  kind: value
//	  converter: float
//	  constraint: value >= 0 && value <= 1
//
// Coercion either succeeds with a complete [Constant] or fails; it never
// returns a partial result.
package coerce
