package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/spotlist/internal/models"
	"github.com/desertthunder/spotlist/internal/shared"
)

// SnapshotRepository stores playlist snapshots and their tracks.
type SnapshotRepository struct {
	db *sql.DB
}

// NewSnapshotRepository creates a new SnapshotRepository with the given database connection
func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Create inserts a snapshot and all of its tracks in one transaction, assigning ID,
// sequence and (when unset) CreatedAt.
func (r *SnapshotRepository) Create(snapshot *models.Snapshot) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	sequence, err := nextSequence(tx, "snapshots")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	snapshot.ID = shared.GenerateID()
	snapshot.Sequence = sequence
	if snapshot.CreatedAt.IsZero() {
		snapshot.CreatedAt = time.Now().UTC()
	}
	snapshot.TrackCount = len(snapshot.Tracks)

	if err := snapshot.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO snapshots (id, sequence, playlist_id, name, description, owner, total_tracks, followers, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		snapshot.ID,
		snapshot.Sequence,
		snapshot.PlaylistID,
		snapshot.Info.Name,
		snapshot.Info.Description,
		snapshot.Info.Owner,
		nullableInt(snapshot.Info.TotalTracks),
		nullableInt(snapshot.Info.Followers),
		snapshot.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO snapshot_tracks (snapshot_id, position, name, artists, album, release_date, popularity)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare track insert: %w", err)
	}
	defer stmt.Close()

	for i, track := range snapshot.Tracks {
		var popularity sql.NullString
		if track.Popularity.Known() {
			popularity = sql.NullString{String: string(track.Popularity.Raw()), Valid: true}
		}

		if _, err := stmt.Exec(snapshot.ID, i, track.Name, track.Artists, track.Album, track.ReleaseDate, popularity); err != nil {
			return fmt.Errorf("failed to insert track %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}

	return nil
}

const snapshotColumns = `
	s.id, s.sequence, s.playlist_id, s.name, s.description, s.owner, s.total_tracks, s.followers, s.created_at,
	(SELECT COUNT(*) FROM snapshot_tracks t WHERE t.snapshot_id = s.id)
`

// Get retrieves a snapshot with its tracks by ID.
func (r *SnapshotRepository) Get(id string) (*models.Snapshot, error) {
	row := r.db.QueryRow("SELECT "+snapshotColumns+" FROM snapshots s WHERE s.id = ?", id)

	snapshot, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrSnapshotNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	if snapshot.Tracks, err = r.tracks(snapshot.ID); err != nil {
		return nil, err
	}

	return snapshot, nil
}

// Latest retrieves the most recent snapshot of a playlist, with tracks.
func (r *SnapshotRepository) Latest(playlistID string) (*models.Snapshot, error) {
	var id string
	err := r.db.QueryRow("SELECT id FROM snapshots WHERE playlist_id = ? ORDER BY sequence DESC LIMIT 1", playlistID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no snapshot for playlist %s", shared.ErrSnapshotNotFound, playlistID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find latest snapshot: %w", err)
	}

	return r.Get(id)
}

// List returns snapshots newest first, without tracks. An empty playlistID lists all playlists.
func (r *SnapshotRepository) List(playlistID string) ([]*models.Snapshot, error) {
	query := "SELECT " + snapshotColumns + " FROM snapshots s"
	var args []any
	if playlistID != "" {
		query += " WHERE s.playlist_id = ?"
		args = append(args, playlistID)
	}
	query += " ORDER BY s.sequence DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []*models.Snapshot
	for rows.Next() {
		snapshot, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snapshot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshots: %w", err)
	}

	return snapshots, nil
}

// Delete removes a snapshot and its tracks.
func (r *SnapshotRepository) Delete(id string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM snapshot_tracks WHERE snapshot_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete snapshot tracks: %w", err)
	}

	result, err := tx.Exec("DELETE FROM snapshots WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrSnapshotNotFound, id)
	}

	return tx.Commit()
}

func (r *SnapshotRepository) tracks(snapshotID string) (models.TrackCollection, error) {
	rows, err := r.db.Query(`
		SELECT name, artists, album, release_date, popularity
		FROM snapshot_tracks
		WHERE snapshot_id = ?
		ORDER BY position
	`, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot tracks: %w", err)
	}
	defer rows.Close()

	tracks := models.TrackCollection{}
	for rows.Next() {
		var track models.TrackRecord
		var popularity sql.NullString
		if err := rows.Scan(&track.Name, &track.Artists, &track.Album, &track.ReleaseDate, &popularity); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot track: %w", err)
		}
		if popularity.Valid {
			track.Popularity = models.RawPopularity([]byte(popularity.String))
		}
		tracks = append(tracks, track)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshot tracks: %w", err)
	}

	return tracks, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row scanner) (*models.Snapshot, error) {
	var s models.Snapshot
	var totalTracks, followers sql.NullInt64

	err := row.Scan(
		&s.ID,
		&s.Sequence,
		&s.PlaylistID,
		&s.Info.Name,
		&s.Info.Description,
		&s.Info.Owner,
		&totalTracks,
		&followers,
		&s.CreatedAt,
		&s.TrackCount,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan snapshot: %w", err)
	}

	s.Info.TotalTracks = intPtr(totalTracks)
	s.Info.Followers = intPtr(followers)

	return &s, nil
}
