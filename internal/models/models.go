// package models defines the data model for the playlist client
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Unknown is the placeholder for string fields missing from an upstream payload.
const Unknown = "Unknown"

// PlaylistInfo is normalized playlist metadata.
type PlaylistInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Owner       string `json:"owner"`
	TotalTracks *int   `json:"total_tracks"`
	Followers   *int   `json:"followers"`
}

// TrackRecord is the flattened view of a single playlist track.
type TrackRecord struct {
	Name        string     `json:"name"`
	Artists     string     `json:"artists"` // comma-joined artist names
	Album       string     `json:"album"`
	ReleaseDate string     `json:"release_date"`
	Popularity  Popularity `json:"popularity"`
}

// TrackCollection is every track of a playlist, in page then item order.
type TrackCollection []TrackRecord

// Names returns the track names in order.
func (c TrackCollection) Names() []string {
	names := make([]string, len(c))
	for i, t := range c {
		names[i] = t.Name
	}
	return names
}

// Popularity is the upstream popularity value copied through verbatim, or unknown.
//
// Any JSON value is kept as received. The zero value is unknown and marshals as
// the string "Unknown".
type Popularity struct {
	raw json.RawMessage
}

// KnownPopularity wraps a numeric score.
func KnownPopularity(score int) Popularity {
	return Popularity{raw: json.RawMessage(strconv.Itoa(score))}
}

// RawPopularity wraps an encoded JSON value. Empty input and null are unknown.
func RawPopularity(raw []byte) Popularity {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return Popularity{}
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return Popularity{}
	}
	return Popularity{raw: buf.Bytes()}
}

// Known reports whether the upstream payload carried a popularity.
func (p Popularity) Known() bool {
	return len(p.raw) > 0
}

// Raw returns the JSON value as received, nil when unknown.
func (p Popularity) Raw() json.RawMessage {
	return p.raw
}

// Score returns the integer score when the value is a JSON integer.
func (p Popularity) Score() (int, bool) {
	if !p.Known() {
		return 0, false
	}
	n, err := strconv.Atoi(string(p.raw))
	if err != nil {
		return 0, false
	}
	return n, true
}

// String renders JSON strings unquoted and every other value as its JSON text.
func (p Popularity) String() string {
	if !p.Known() {
		return Unknown
	}
	if p.raw[0] == '"' {
		var s string
		if err := json.Unmarshal(p.raw, &s); err == nil {
			return s
		}
	}
	return string(p.raw)
}

func (p Popularity) MarshalJSON() ([]byte, error) {
	if !p.Known() {
		return json.Marshal(Unknown)
	}
	return p.raw, nil
}

func (p *Popularity) UnmarshalJSON(data []byte) error {
	*p = RawPopularity(data)
	return nil
}

// RetrievalStatus is the closed set of fetch outcomes.
type RetrievalStatus int

const (
	Retrieved RetrievalStatus = iota // data present
	Empty                            // request succeeded with nothing to return
	Failed                           // upstream status, decode or shape problem
)

func (s RetrievalStatus) String() string {
	switch s {
	case Retrieved:
		return "retrieved"
	case Empty:
		return "empty"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("RetrievalStatus(%d)", int(s))
	}
}

// Retrieval is the result of a fetch that reports upstream failure as a value
// instead of an error. Callers needing only present/absent use [Retrieval.OK].
type Retrieval[T any] struct {
	Value  T
	Status RetrievalStatus
	// Cause explains a Failed retrieval.
	Cause error
	// Discarded counts records accumulated before a failure and dropped with it.
	Discarded int
}

// OK reports whether the retrieval produced a result (possibly empty).
func (r Retrieval[T]) OK() bool {
	return r.Status != Failed
}

// Got builds a successful retrieval.
func Got[T any](v T, empty bool) Retrieval[T] {
	if empty {
		return Retrieval[T]{Value: v, Status: Empty}
	}
	return Retrieval[T]{Value: v, Status: Retrieved}
}

// NoResult builds a failed retrieval.
func NoResult[T any](cause error, discarded int) Retrieval[T] {
	return Retrieval[T]{Status: Failed, Cause: cause, Discarded: discarded}
}

// Snapshot is a playlist retrieval saved to the local store.
type Snapshot struct {
	ID         string          `json:"id"`
	Sequence   int             `json:"sequence"`
	PlaylistID string          `json:"playlist_id"`
	Info       PlaylistInfo    `json:"info"`
	Tracks     TrackCollection `json:"tracks,omitempty"`
	TrackCount int             `json:"track_count"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Export returns the snapshot contents in the shape used by the exporters.
func (s *Snapshot) Export() *PlaylistExport {
	return &PlaylistExport{PlaylistID: s.PlaylistID, Info: s.Info, Tracks: s.Tracks}
}

// Validate checks the fields required to persist a snapshot.
func (s *Snapshot) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("snapshot id is required")
	}
	if s.PlaylistID == "" {
		return fmt.Errorf("playlist id is required")
	}
	if s.CreatedAt.IsZero() {
		return fmt.Errorf("created_at is required")
	}
	return nil
}

// PlaylistExport bundles playlist metadata with its tracks for export.
type PlaylistExport struct {
	PlaylistID string          `json:"playlist_id"`
	Info       PlaylistInfo    `json:"info"`
	Tracks     TrackCollection `json:"tracks"`
}
