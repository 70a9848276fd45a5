// Package repositories implements SQLite persistence for playlist snapshots.
//
// A snapshot is one saved retrieval of a playlist: its [models.PlaylistInfo] and
// its [models.TrackCollection] in upstream order. Snapshots are written once and
// only read back for display; they never stand in for an API request.
//
// Sequence numbers provide stable, human-readable ordering (snapshot #3) independent
// of UUIDs and creation timestamps. They are allocated inside the insert transaction
// from a dedicated sequence table.
package repositories
