// Package gateway exposes host game state to guest queries.
//
// The bridge answers every guest import call through a Gateway, which
// bundles read-only collaborator contracts for block metadata, the world
// map, player and camera transforms, and spatial model lookups. All
// accessors are bounds checked and return deterministic results so that
// a tick replays identically given the same host state.
//
// # Collaborators
//
// BlockRegistry maps block ids to static metadata (name, friction,
// collision box). WorldMap resolves world positions to block ids.
// TransformStore holds the live player and camera transforms. ModelIndex
// answers spatial queries over placed models.
//
// StaticWorld implements all four against in-memory state with a
// YAML-defined block palette. It backs the modrun CLI and the package
// tests; a real client wires its own implementations instead.
package gateway
