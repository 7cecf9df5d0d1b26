// Package history records download runs in a SQLite database so that
// earlier runs and the fate of individual songs can be reviewed later.
//
// The database holds two tables:
//
//   - runs: one row per run, keyed by the run ID, with the playlist title,
//     the destination, the outcome counters, the number of bytes written,
//     the manifest save error (empty when it was saved), and the start and
//     finish times.
//   - song_events: one row per song of a run with its ISRC, artist, title,
//     outcome (stored, skipped, fetch_failed, store_failed, cancelled),
//     locator, path and error. Rows are deleted with their run.
//
// # Recording and Reading
//
//	store, err := history.Open("/var/lib/playlist-dl/history.db", logger)
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	// A run and its song events are written in one transaction.
//	err = store.Record(ctx, &history.Run{ID: report.RunID, Playlist: "Late Night"}, events)
//
//	runs, err := store.ListRuns(ctx, 10) // most recent first
//	songs, err := store.SongEvents(ctx, runs[0].ID)
//
// NewStore wraps an existing *sql.DB, which tests use with an in-memory
// database.
package history
