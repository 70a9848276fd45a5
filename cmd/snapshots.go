package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/spotlist/internal/models"
	"github.com/desertthunder/spotlist/internal/repositories"
	"github.com/desertthunder/spotlist/internal/shared"
	"github.com/urfave/cli/v3"
)

func (r *Runner) snapshotRepository() (*repositories.SnapshotRepository, func(), error) {
	db, err := r.openDatabase(true)
	if err != nil {
		return nil, nil, err
	}
	return repositories.NewSnapshotRepository(db), func() { db.Close() }, nil
}

// SnapshotsList lists stored snapshots, newest first.
func (r *Runner) SnapshotsList(ctx context.Context, cmd *cli.Command) error {
	repo, closeDB, err := r.snapshotRepository()
	if err != nil {
		return err
	}
	defer closeDB()

	snapshots, err := repo.List(cmd.String("playlist"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		if snapshots == nil {
			snapshots = []*models.Snapshot{}
		}
		return r.writeJSON(snapshots, cmd.Bool("pretty"))
	}

	if len(snapshots) == 0 {
		return r.writePlain("%s\n", r.palette.Warn("No snapshots saved."))
	}

	r.writePlainHeader(fmt.Sprintf("Found %d snapshots", len(snapshots)))
	r.writePlain("\n")
	for _, s := range snapshots {
		r.writePlain("%d. %s\n", s.Sequence, s.Info.Name)
		r.writePlain("   ID: %s\n", s.ID)
		r.writePlain("   Playlist: %s\n", s.PlaylistID)
		r.writePlain("   Tracks: %d\n", s.TrackCount)
		r.writePlain("   Saved: %s\n", s.CreatedAt.Local().Format("2006-01-02 15:04:05"))
		r.writePlain("\n")
	}

	return nil
}

// SnapshotsShow writes a stored snapshot in the requested format.
func (r *Runner) SnapshotsShow(ctx context.Context, cmd *cli.Command) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}

	id := cmd.StringArg("id")
	playlistID := cmd.String("playlist")
	if id == "" && playlistID == "" {
		return fmt.Errorf("%w: a snapshot id or --playlist is required", shared.ErrMissingArgument)
	}

	repo, closeDB, err := r.snapshotRepository()
	if err != nil {
		return err
	}
	defer closeDB()

	var snapshot *models.Snapshot
	if id != "" {
		snapshot, err = repo.Get(id)
	} else {
		snapshot, err = repo.Latest(playlistID)
	}
	if err != nil {
		return err
	}

	r.logger.Debug("loaded snapshot", "id", snapshot.ID, "tracks", len(snapshot.Tracks))
	return r.writeExport(snapshot.Export(), format, cmd.Bool("pretty"), cmd.String("output"))
}

// SnapshotsDelete removes a stored snapshot.
func (r *Runner) SnapshotsDelete(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: snapshot id", shared.ErrMissingArgument)
	}

	repo, closeDB, err := r.snapshotRepository()
	if err != nil {
		return err
	}
	defer closeDB()

	if err := repo.Delete(id); err != nil {
		return err
	}

	r.logger.Info("snapshot deleted", "id", id)
	return r.writePlain("%s %s\n", r.palette.OK("✓ Deleted snapshot"), id)
}
