// Package protocol owns the Graphene wire encoding of operation values.
//
// Ownership boundary:
// - varint and fixed-width primitives (Writer, Reader)
// - the closed Value variant set and its per-kind encoders
// - asset registry and Amount arithmetic
// - coercion of loosely-typed input into Values
package protocol
