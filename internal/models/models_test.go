package models

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestPopularity(t *testing.T) {
	t.Run("zero value is unknown", func(t *testing.T) {
		var p Popularity
		if p.Known() {
			t.Error("expected zero value to be unknown")
		}
		if p.String() != Unknown {
			t.Errorf("expected %q, got %q", Unknown, p.String())
		}
		data, err := json.Marshal(p)
		if err != nil {
			t.Fatalf("Marshal() error = %v", err)
		}
		if string(data) != `"Unknown"` {
			t.Errorf("expected \"Unknown\" JSON string, got %s", data)
		}
	})

	t.Run("numbers are copied verbatim", func(t *testing.T) {
		tc := []struct {
			name  string
			input string
			want  string
			score int
			isInt bool
		}{
			{name: "integer", input: `80`, want: "80", score: 80, isInt: true},
			{name: "zero", input: `0`, want: "0", score: 0, isInt: true},
			{name: "fractional", input: `72.5`, want: "72.5"},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				var p Popularity
				if err := json.Unmarshal([]byte(tt.input), &p); err != nil {
					t.Fatalf("Unmarshal() error = %v", err)
				}
				if !p.Known() {
					t.Fatal("expected known popularity")
				}
				if p.String() != tt.want {
					t.Errorf("String() = %q, want %q", p.String(), tt.want)
				}
				out, _ := json.Marshal(p)
				if string(out) != tt.want {
					t.Errorf("Marshal() = %s, want %s", out, tt.want)
				}
				score, ok := p.Score()
				if ok != tt.isInt || score != tt.score {
					t.Errorf("Score() = (%d, %v), want (%d, %v)", score, ok, tt.score, tt.isInt)
				}
			})
		}
	})

	t.Run("absent and null decode to unknown", func(t *testing.T) {
		for _, input := range []string{`null`, ` null `} {
			p := KnownPopularity(10)
			if err := json.Unmarshal([]byte(input), &p); err != nil {
				t.Fatalf("Unmarshal(%s) error = %v", input, err)
			}
			if p.Known() {
				t.Errorf("Unmarshal(%s) should be unknown", input)
			}
		}

		var record TrackRecord
		if err := json.Unmarshal([]byte(`{"name":"Song"}`), &record); err != nil {
			t.Fatalf("Unmarshal() error = %v", err)
		}
		if record.Popularity.Known() {
			t.Error("expected missing popularity to be unknown")
		}
	})

	t.Run("other values are copied verbatim", func(t *testing.T) {
		tc := []struct {
			name   string
			input  string
			json   string
			String string
		}{
			{name: "numeric string", input: `"85"`, json: `"85"`, String: "85"},
			{name: "word", input: `"high"`, json: `"high"`, String: "high"},
			{name: "Unknown string", input: `"Unknown"`, json: `"Unknown"`, String: Unknown},
			{name: "boolean", input: `true`, json: `true`, String: "true"},
			{name: "object", input: `{ "score": 5 }`, json: `{"score":5}`, String: `{"score":5}`},
			{name: "array", input: `[1, 2]`, json: `[1,2]`, String: `[1,2]`},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				var p Popularity
				if err := json.Unmarshal([]byte(tt.input), &p); err != nil {
					t.Fatalf("Unmarshal() error = %v", err)
				}
				if !p.Known() {
					t.Fatal("expected known popularity")
				}
				out, err := json.Marshal(p)
				if err != nil {
					t.Fatalf("Marshal() error = %v", err)
				}
				if string(out) != tt.json {
					t.Errorf("Marshal() = %s, want %s", out, tt.json)
				}
				if p.String() != tt.String {
					t.Errorf("String() = %q, want %q", p.String(), tt.String)
				}
				if _, ok := p.Score(); ok {
					t.Error("expected no integer score")
				}
			})
		}
	})

	t.Run("RawPopularity restores Raw", func(t *testing.T) {
		if got := RawPopularity(KnownPopularity(42).Raw()); got.String() != "42" {
			t.Errorf("expected 42, got %s", got)
		}
		if got := RawPopularity(nil); got.Known() {
			t.Error("expected empty input to be unknown")
		}
		if got := RawPopularity([]byte("{not json")); got.Known() {
			t.Error("expected invalid JSON to be unknown")
		}
	})
}

func TestTrackRecordJSON(t *testing.T) {
	record := TrackRecord{
		Name:        "Song 1",
		Artists:     "Artist 1, Artist 2",
		Album:       "Album 1",
		ReleaseDate: "2023-01-01",
		Popularity:  KnownPopularity(80),
	}

	data, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	want := `{"name":"Song 1","artists":"Artist 1, Artist 2","album":"Album 1","release_date":"2023-01-01","popularity":80}`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}
}

func TestPlaylistInfoJSON(t *testing.T) {
	info := PlaylistInfo{Name: "My Playlist", Description: Unknown, Owner: Unknown}

	data, err := json.Marshal(info)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	want := `{"name":"My Playlist","description":"Unknown","owner":"Unknown","total_tracks":null,"followers":null}`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}
}

func TestRetrieval(t *testing.T) {
	t.Run("Got", func(t *testing.T) {
		r := Got(TrackCollection{{Name: "a"}}, false)
		if !r.OK() || r.Status != Retrieved {
			t.Errorf("expected retrieved, got %v", r.Status)
		}

		empty := Got(TrackCollection{}, true)
		if !empty.OK() || empty.Status != Empty {
			t.Errorf("expected empty, got %v", empty.Status)
		}
		if empty.Value == nil {
			t.Error("expected empty collection, not nil")
		}
	})

	t.Run("NoResult", func(t *testing.T) {
		cause := errors.New("boom")
		r := NoResult[TrackCollection](cause, 3)
		if r.OK() {
			t.Error("expected failed retrieval")
		}
		if !errors.Is(r.Cause, cause) {
			t.Errorf("expected cause to be kept, got %v", r.Cause)
		}
		if r.Discarded != 3 {
			t.Errorf("expected 3 discarded, got %d", r.Discarded)
		}
		if r.Value != nil {
			t.Error("expected no value")
		}
	})

	t.Run("status strings", func(t *testing.T) {
		for status, want := range map[RetrievalStatus]string{Retrieved: "retrieved", Empty: "empty", Failed: "failed"} {
			if status.String() != want {
				t.Errorf("String() = %s, want %s", status.String(), want)
			}
		}
	})
}

func TestTrackCollectionNames(t *testing.T) {
	c := TrackCollection{{Name: "Song 1"}, {Name: "Song 2"}}
	names := c.Names()
	if len(names) != 2 || names[0] != "Song 1" || names[1] != "Song 2" {
		t.Errorf("Names() = %v", names)
	}
}

func TestSnapshotValidate(t *testing.T) {
	valid := Snapshot{ID: "id", PlaylistID: "pl", CreatedAt: time.Now()}
	if err := valid.Validate(); err != nil {
		t.Errorf("expected valid snapshot, got %v", err)
	}

	for name, s := range map[string]Snapshot{
		"missing id":         {PlaylistID: "pl", CreatedAt: time.Now()},
		"missing playlist":   {ID: "id", CreatedAt: time.Now()},
		"missing created_at": {ID: "id", PlaylistID: "pl"},
	} {
		t.Run(name, func(t *testing.T) {
			if err := s.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestSnapshotExport(t *testing.T) {
	s := &Snapshot{
		ID:         "id",
		PlaylistID: "pl",
		Info:       PlaylistInfo{Name: "Mix"},
		Tracks:     TrackCollection{{Name: "A"}, {Name: "B"}},
	}

	export := s.Export()
	if export.PlaylistID != "pl" || export.Info.Name != "Mix" {
		t.Errorf("unexpected export %+v", export)
	}
	if got := export.Tracks.Names(); len(got) != 2 || got[0] != "A" || got[1] != "B" {
		t.Errorf("expected tracks in order, got %v", got)
	}
}
