// Package api defines the versioned contract between the Blockpeak client and
// sandboxed mods.
//
// The contract has three parts, all of which version together as a unit:
//
//   - Boundary records: plain data types (Transform, Friction, KeyboardEvent,
//     ...) that cross the trust boundary by value. No record carries a
//     pointer, handle, or reference meaningful outside the instance that
//     produced it. BlockID, EntityID and model indices are opaque: guests may
//     compare them for equality but all dereferencing happens through host
//     imports.
//
//   - Function signatures: the guest-exported functions the host calls and
//     the host-imported functions a guest may call, described both in WIT
//     (ContractWIT) and as flat core-WASM signatures (GuestExports,
//     HostImports).
//
//   - Byte layouts: the exact little-endian encoding of each record in guest
//     linear memory (layout.go). Optional values are an explicit
//     discriminant plus payload, never a sentinel.
//
// Adding, removing, or changing any signature or layout is a breaking change
// and requires bumping ContractVersion; the loader rejects mods declaring an
// incompatible version.
package api
