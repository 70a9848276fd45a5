// Package models defines the records produced by the Spotify playlist client.
//
// The package contains two categories of types:
//
// 1. Retrieval records: normalized views of upstream payloads
//   - [PlaylistInfo] : playlist metadata with "Unknown"/absent defaults
//   - [TrackRecord] : one playlist item's track, flattened for display
//   - [TrackCollection] : every track record of a playlist in upstream order
//   - [Retrieval] : the outcome of a fetch that never raises on upstream failure
//   - [PlaylistExport] : metadata and tracks bundled for the exporters
//
// 2. Persistent entities: rows of the local snapshot store
//   - [Snapshot] : a saved playlist retrieval with its tracks
//
// Records are built once and never mutated afterwards.
package models
