// Package http fetches song content from the download service.
//
// The Client in this package handles:
//   - User-Agent headers
//   - Per-request timeouts
//   - Escaping of verbatim catalog locators
//   - Audio format detection from headers or content
//
// # Basic Usage
//
//	client := http.NewClient()
//	content, err := client.Fetch(ctx, "http://dl.example/artist/M83/song/Midnight City")
//	if err != nil {
//	    // err is a *http.FetchError
//	}
//	fmt.Println(content.Tag) // "flac"
//
// # Retries
//
// Client performs a single attempt. RetryFetcher adds exponential backoff
// around any Fetcher:
//
//	fetcher := http.NewRetryFetcher(client, 3, 500*time.Millisecond, 10*time.Second)
package http
