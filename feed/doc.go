// Package feed connects the sandbox to a game server's mod channel.
//
// The server pushes frames over a websocket: data frames carrying an
// opaque payload for one named mod, and control frames enabling or
// disabling a mod. Frames are JSON envelopes compressed with zstd.
// The client decodes each frame and hands it to a Sink; the Sandbox is
// a Sink, so delivered payloads surface through handle-server-data on
// the next tick.
//
// Transport failures end Run with an error; frame-level problems (bad
// compression, malformed envelopes, unknown mods) are logged and
// skipped so one bad frame cannot stall the channel.
package feed
