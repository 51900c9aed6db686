// Package tx builds Graphene transaction headers from a head block,
// serializes and hashes them, and searches for a canonical compact
// signature by bumping the expiration one second at a time.
package tx
