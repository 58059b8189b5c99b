// Package codec maps domain value types to and from a storage-neutral JSON
// representation.
//
// Event payloads are persisted as JSON, which carries a narrower type system
// than the domain: calendar dates, UUIDs and timestamps must become strings.
// A Registry holds one Codec per value type; encoding dispatches on the
// value's dynamic type and decoding is the exact inverse, so that
// Decode(Encode(v)) == v for every registered type.
//
// MarshalPayload and UnmarshalPayload walk flat event structs with the
// registry: scalar fields pass through unchanged, registered value types go
// through their codec, and an unregistered value type fails with
// ErrNoCodecRegistered at encode time - before anything is persisted.
package codec
