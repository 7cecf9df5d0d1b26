package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

var (
	// ErrFetch matches every *FetchError with errors.Is.
	ErrFetch = errors.New("fetch failed")

	// ErrUnrecognizedContent is wrapped by a *FetchError when the response
	// body is not audio.
	ErrUnrecognizedContent = errors.New("unrecognized content")

	// ErrEmptyBody is wrapped by a *FetchError when the response has no body.
	ErrEmptyBody = errors.New("empty response body")
)

// FetchError describes why the content behind a locator could not be fetched.
type FetchError struct {
	// Locator is the address that was requested.
	Locator string

	// StatusCode is the HTTP status returned, or 0 if no response arrived.
	StatusCode int

	// Err is the underlying cause.
	Err error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: HTTP %d: %v", e.Locator, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.Locator, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Is(target error) bool { return target == ErrFetch }

// Retryable reports whether repeating the request may succeed: transport
// failures, timeouts, 408, 429 and 5xx statuses.
func (e *FetchError) Retryable() bool {
	if errors.Is(e.Err, ErrUnrecognizedContent) || errors.Is(e.Err, ErrEmptyBody) {
		return false
	}
	switch {
	case e.StatusCode == 0:
		return true
	case e.StatusCode == http.StatusRequestTimeout, e.StatusCode == http.StatusTooManyRequests:
		return true
	case e.StatusCode >= 500:
		return true
	default:
		return false
	}
}

// Content is the payload of one fetched song.
type Content struct {
	// Data is the raw response body.
	Data []byte

	// Tag names the stored file's extension, without the dot ("flac", "mp3").
	Tag string

	// MimeType is the media type the tag was derived from.
	MimeType string
}

// audioTags maps declared media types to file extensions.
var audioTags = map[string]string{
	"audio/flac":     "flac",
	"audio/x-flac":   "flac",
	"audio/mpeg":     "mp3",
	"audio/mp3":      "mp3",
	"audio/mp4":      "m4a",
	"audio/x-m4a":    "m4a",
	"audio/aac":      "aac",
	"audio/ogg":      "ogg",
	"audio/opus":     "opus",
	"audio/wav":      "wav",
	"audio/x-wav":    "wav",
	"audio/vnd.wave": "wav",
	"audio/webm":     "weba",
}

// Client fetches song content from the download service.
//
// Client provides:
//   - Configured User-Agent header
//   - A per-request timeout on top of the caller's context
//   - Media type resolution from the Content-Type header or the body itself
//
// Client never retries; wrap it in a RetryFetcher for that.
//
// Example usage:
//
//	client := NewClient(WithTimeout(30 * time.Second))
//	content, err := client.Fetch(ctx, "http://dl.example/artist/M83/song/Midnight City")
//	if err != nil {
//	    var fe *FetchError
//	    errors.As(err, &fe)
//	}
//	os.WriteFile("Midnight City."+content.Tag, content.Data, 0644)
type Client struct {
	httpClient *http.Client
	userAgent  string
	timeout    time.Duration
	logger     *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithTimeout bounds every Fetch call. Zero disables the per-request bound.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.timeout = d }
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) { c.userAgent = ua }
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) { c.logger = logger }
}

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a new Client.
//
// The client is configured by default with:
//   - 60 second timeout
//   - "PlaylistDownloader" User-Agent header
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{},
		userAgent:  "PlaylistDownloader",
		timeout:    60 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Fetch retrieves the content behind locator.
//
// The locator path is sent escaped but otherwise verbatim, so artist and
// title may contain spaces, "?" or "#". The response must be 200 OK with a
// non-empty audio body; the audio format comes from the Content-Type header
// when it names a known audio type, and from sniffing the body otherwise.
//
// Every failure is returned as a *FetchError.
func (c *Client) Fetch(ctx context.Context, locator string) (*Content, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	target, err := RequestURL(locator)
	if err != nil {
		return nil, &FetchError{Locator: locator, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &FetchError{Locator: locator, Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Locator: locator, Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug("fetched", "url", target, "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &FetchError{Locator: locator, StatusCode: resp.StatusCode, Err: errors.New(resp.Status)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Locator: locator, StatusCode: resp.StatusCode, Err: err}
	}
	if len(body) == 0 {
		return nil, &FetchError{Locator: locator, StatusCode: resp.StatusCode, Err: ErrEmptyBody}
	}

	tag, mimeType, ok := contentTag(resp.Header.Get("Content-Type"), body)
	if !ok {
		return nil, &FetchError{
			Locator:    locator,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%w: %s", ErrUnrecognizedContent, mimeType),
		}
	}

	return &Content{Data: body, Tag: tag, MimeType: mimeType}, nil
}

// RequestURL turns a verbatim locator into a request URL by escaping
// everything after the host as path. Valid percent escapes already in the
// locator, such as %20 in a configured base URL, are kept as they are; a
// lone % is escaped to %25.
//
// Example:
//
//	RequestURL("http://dl.example/artist/AC/DC/song/What?")
//	// "http://dl.example/artist/AC/DC/song/What%3F"
func RequestURL(locator string) (string, error) {
	schemeEnd := strings.Index(locator, "://")
	if schemeEnd < 0 {
		return "", fmt.Errorf("locator %q has no scheme", locator)
	}

	host := locator[schemeEnd+3:]
	path := ""
	if i := strings.IndexByte(host, '/'); i >= 0 {
		host, path = host[:i], host[i:]
	}

	u, err := url.Parse(locator[:schemeEnd+3] + host)
	if err != nil {
		return "", err
	}
	if u.Host == "" {
		return "", fmt.Errorf("locator %q has no host", locator)
	}

	raw := escapePath(path)
	if u.Path, err = url.PathUnescape(raw); err != nil {
		return "", err
	}
	u.RawPath = raw

	return u.String(), nil
}

// escapePath escapes p for use as a URL path, leaving valid %XX sequences
// untouched.
func escapePath(p string) string {
	var b strings.Builder
	start := 0
	flush := func(end int) {
		if start < end {
			// The leading slash keeps EscapedPath from special-casing "*".
			b.WriteString((&url.URL{Path: "/" + p[start:end]}).EscapedPath()[1:])
		}
	}

	for i := 0; i < len(p); i++ {
		if p[i] == '%' && i+2 < len(p) && isHex(p[i+1]) && isHex(p[i+2]) {
			flush(i)
			b.WriteString(p[i : i+3])
			i += 2
			start = i + 1
		}
	}
	flush(len(p))

	return b.String()
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

// contentTag resolves the file extension for a response.
func contentTag(contentType string, body []byte) (tag, mimeType string, ok bool) {
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		if tag, ok := audioTags[mt]; ok {
			return tag, mt, true
		}
	}

	detected := mimetype.Detect(body)
	for m := detected; m != nil; m = m.Parent() {
		if strings.HasPrefix(m.String(), "audio/") {
			if ext := strings.TrimPrefix(detected.Extension(), "."); ext != "" {
				return ext, detected.String(), true
			}
		}
	}

	return "", detected.String(), false
}
