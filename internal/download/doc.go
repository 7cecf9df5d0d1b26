// Package download provides the batch download logic for fetching the
// songs of a playlist into a local library.
//
// # Manager
//
// The Manager coordinates one run:
//
//  1. Skip songs whose ISRC is already in the manifest
//  2. Derive each remaining song's locator and fetch its content
//  3. Write the content to <destination>/<artist>/<album>/<title>.<tag>
//  4. Tag MP3 files with ID3 metadata (optional)
//  5. Record the stored path in the manifest
//  6. Save references.json once all songs are handled
//
// Songs are processed by a bounded pool of workers. A failing song is
// reported through the progress callback and counted; it never stops the
// others.
//
// # Basic Usage
//
//	m, err := manifest.Load(filepath.Join(dest, manifest.FileName))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	manager := download.NewManager(settings, func(event download.ProgressEvent) {
//	    fmt.Println(event.Message)
//	})
//
//	report, err := manager.Run(ctx, dest, m, playlist.Songs)
//	if err != nil {
//	    log.Fatal(err) // manifest not saved
//	}
//	fmt.Printf("Error count: %d\n", report.Errors())
//
// # Progress Events
//
// Every song ends in exactly one event with a non-zero Outcome:
//
//   - OutcomeSkipped: already in the manifest
//   - OutcomeStored: fetched and written
//   - OutcomeFetchFailed: the fetcher gave up
//   - OutcomeStoreFailed: the content could not be written
//   - OutcomeCancelled: the run context ended first
package download
