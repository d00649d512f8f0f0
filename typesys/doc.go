// Package typesys describes the types a markup document can instantiate and
// the properties those types expose.
//
// A [Table] is populated ahead of time from one or more YAML type tables
// (see [Load] and [Default]) and is only queried afterwards. Lookups never
// reflect over Go values: every property is an explicit [Property] carrying
// its value type, a getter [Accessor], and an ordered list of [Setter]
// overloads.
//
// # Type tables
//
//	types:
//	  - name: Double
//	    kind: value
//	    converter: float
//	  - name: Control
//	    properties:
//	      - { name: Width, type: Double }
//	  - name: Grid
//	    base: Panel
//	    properties:
//	      - { name: Row, type: Int32, attached: true }
//
// Types without an explicit base derive from Object. Names may refer to types
// declared later in the same table or in any table loaded before it.
package typesys
