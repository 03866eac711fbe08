// Package bridge implements the host side of the mod boundary.
//
// For each guest instance the sandbox builds an Env holding the
// instance's gateway handle, its current delta time, and its private
// keyboard queue, then binds a host module exposing every contract
// import as a closure over that Env. Imports read and write boundary
// records in the caller's linear memory using the fixed layouts in the
// api package.
//
// # Marshaling policy
//
// Malformed data crossing the boundary is never fatal. Non-finite floats
// and denormalized rotations coming from a guest are rejected or
// normalized field by field and logged; the host keeps its previous
// state. Out-of-bounds pointers are the guest's own memory corruption
// and surface as traps through the engine.
package bridge
