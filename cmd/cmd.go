// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func formatFlags(defaultPretty bool) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format: text, json, csv or markdown",
			Value:   "text",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON (same as --format json)",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
			Value: defaultPretty,
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Write the export to a file instead of stdout",
		},
	}
}

func playlistArgs() []cli.Argument {
	return []cli.Argument{
		&cli.StringArg{Name: "url"},
	}
}

func playlistIDFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "id",
		Usage: "Playlist ID, used instead of a playlist URL",
	}
}

// tokenCommand exchanges the client credentials for an access token
func tokenCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "Exchange client credentials for an access token",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
			},
		},
		Action: r.Token,
	}
}

// playlistCommand handles playlist retrieval
func playlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlist",
		Aliases: []string{"pl"},
		Usage:   "Spotify playlist operations",
		Commands: []*cli.Command{
			{
				Name:      "id",
				Usage:     "Extract the playlist ID from a playlist URL",
				Arguments: playlistArgs(),
				Action:    r.PlaylistID,
			},
			{
				Name:      "info",
				Usage:     "Show playlist metadata",
				Arguments: playlistArgs(),
				Flags: []cli.Flag{
					playlistIDFlag(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.PlaylistInfo,
			},
			{
				Name:      "tracks",
				Usage:     "Retrieve every track of a playlist",
				Arguments: playlistArgs(),
				Flags: append(formatFlags(false),
					playlistIDFlag(),
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of tracks to output (0 for all)",
					},
				),
				Action: r.PlaylistTracks,
			},
			{
				Name:      "show",
				Usage:     "Show playlist metadata and the first few tracks",
				Arguments: playlistArgs(),
				Flags: []cli.Flag{
					playlistIDFlag(),
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Number of tracks to show",
						Value: 5,
					},
				},
				Action: r.PlaylistShow,
			},
			{
				Name:      "save",
				Usage:     "Retrieve a playlist and store it as a local snapshot",
				Arguments: playlistArgs(),
				Flags: []cli.Flag{
					playlistIDFlag(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output the saved snapshot as JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.PlaylistSave,
			},
		},
	}
}

// snapshotsCommand handles locally stored playlist snapshots
func snapshotsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "snapshots",
		Aliases: []string{"snap"},
		Usage:   "Inspect saved playlist snapshots",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List saved snapshots, newest first",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "playlist",
						Usage: "Only list snapshots of this playlist ID",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.SnapshotsList,
			},
			{
				Name:  "show",
				Usage: "Show or export a saved snapshot",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: append(formatFlags(true),
					&cli.StringFlag{
						Name:  "playlist",
						Usage: "Show the latest snapshot of this playlist ID",
					},
				),
				Action: r.SnapshotsShow,
			},
			{
				Name:  "delete",
				Usage: "Delete a saved snapshot",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.SnapshotsDelete,
			},
		},
	}
}

// setupCommand handles setup operations for configuration and database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write a config file from the built-in template",
				Action: r.SetupConfig,
			},
			{
				Name:  "database",
				Usage: "Initialize the snapshot database and run migrations",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "rollback",
						Usage: "Roll back the most recent migration instead",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}
