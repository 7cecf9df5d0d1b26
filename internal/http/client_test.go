package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var flacBody = append([]byte("fLaC\x00\x00\x00\x22"), make([]byte, 64)...)

func TestClient_Fetch_DeclaredAudioType(t *testing.T) {
	var gotPath, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("not really an mp3 but declared as one"))
	}))
	defer srv.Close()

	client := NewClient(WithUserAgent("test-agent"))
	content, err := client.Fetch(context.Background(), srv.URL+"/artist/Sufjan Stevens/song/Chicago")
	require.NoError(t, err)

	assert.Equal(t, "/artist/Sufjan Stevens/song/Chicago", gotPath)
	assert.Equal(t, "test-agent", gotUA)
	assert.Equal(t, "mp3", content.Tag)
	assert.Equal(t, "audio/mpeg", content.MimeType)
}

func TestClient_Fetch_SniffsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write(flacBody)
	}))
	defer srv.Close()

	content, err := NewClient().Fetch(context.Background(), srv.URL+"/artist/M83/song/Midnight City")
	require.NoError(t, err)

	assert.Equal(t, "flac", content.Tag)
	assert.Equal(t, flacBody, content.Data)
}

func TestClient_Fetch_Failures(t *testing.T) {
	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantStatus int
		wantIs     error
		retryable  bool
	}{
		{
			name:       "not found",
			handler:    func(w http.ResponseWriter, r *http.Request) { http.NotFound(w, r) },
			wantStatus: http.StatusNotFound,
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
			wantStatus: http.StatusBadGateway,
			retryable:  true,
		},
		{
			name: "html page",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/html")
				_, _ = w.Write([]byte("<html><body>Not a song</body></html>"))
			},
			wantStatus: http.StatusOK,
			wantIs:     ErrUnrecognizedContent,
		},
		{
			name:       "empty body",
			handler:    func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) },
			wantStatus: http.StatusOK,
			wantIs:     ErrEmptyBody,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			locator := srv.URL + "/artist/A/song/B"
			_, err := NewClient().Fetch(context.Background(), locator)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrFetch)

			var fe *FetchError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, locator, fe.Locator)
			assert.Equal(t, tt.wantStatus, fe.StatusCode)
			assert.Equal(t, tt.retryable, fe.Retryable())
			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
			}
		})
	}
}

func TestClient_Fetch_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	start := time.Now()
	_, err := NewClient(WithTimeout(50*time.Millisecond)).Fetch(context.Background(), srv.URL+"/artist/A/song/B")
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)

	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, 0, fe.StatusCode)
	assert.True(t, fe.Retryable())
}

func TestClient_Fetch_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	locator := srv.URL + "/artist/A/song/B"
	srv.Close()

	_, err := NewClient().Fetch(context.Background(), locator)
	assert.ErrorIs(t, err, ErrFetch)
}

func TestRequestURL(t *testing.T) {
	tests := []struct {
		name    string
		locator string
		want    string
		wantErr bool
	}{
		{"spaces", "http://dl.example/artist/Sufjan Stevens/song/Chicago", "http://dl.example/artist/Sufjan%20Stevens/song/Chicago", false},
		{"question mark", "http://dl.example/artist/4 Non Blondes/song/What's Up?", "http://dl.example/artist/4%20Non%20Blondes/song/What%27s%20Up%3F", false},
		{"hash", "http://dl.example/artist/A/song/#1", "http://dl.example/artist/A/song/%231", false},
		{"port", "http://127.0.0.1:8080/artist/A/song/B", "http://127.0.0.1:8080/artist/A/song/B", false},
		{"escaped base kept", "http://dl.example/my%20music/artist/Sufjan Stevens/song/Chicago", "http://dl.example/my%20music/artist/Sufjan%20Stevens/song/Chicago", false},
		{"escaped slash kept", "http://dl.example/a%2Fb/artist/A/song/B", "http://dl.example/a%2Fb/artist/A/song/B", false},
		{"lone percent", "http://dl.example/artist/A/song/100% Pure", "http://dl.example/artist/A/song/100%25%20Pure", false},
		{"no scheme", "dl.example/artist/A/song/B", "", true},
		{"no host", "http:///artist/A", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RequestURL(tt.locator)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// fetchFunc adapts a function to Fetcher.
type fetchFunc func(ctx context.Context, locator string) (*Content, error)

func (f fetchFunc) Fetch(ctx context.Context, locator string) (*Content, error) {
	return f(ctx, locator)
}

func TestRetryFetcher_RecoversFromTransientFailures(t *testing.T) {
	calls := 0
	next := fetchFunc(func(ctx context.Context, locator string) (*Content, error) {
		calls++
		if calls < 3 {
			return nil, &FetchError{Locator: locator, StatusCode: http.StatusServiceUnavailable, Err: errors.New("busy")}
		}
		return &Content{Data: flacBody, Tag: "flac"}, nil
	})

	var mu sync.Mutex
	var attempts []int
	r := NewRetryFetcher(next, 3, time.Millisecond, 5*time.Millisecond)
	r.OnRetry = func(locator string, attempt int, err error, wait time.Duration) {
		mu.Lock()
		defer mu.Unlock()
		attempts = append(attempts, attempt)
	}

	content, err := r.Fetch(context.Background(), "http://dl.example/artist/A/song/B")
	require.NoError(t, err)
	assert.Equal(t, "flac", content.Tag)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{1, 2}, attempts)
}

func TestRetryFetcher_PermanentFailureNotRetried(t *testing.T) {
	calls := 0
	next := fetchFunc(func(ctx context.Context, locator string) (*Content, error) {
		calls++
		return nil, &FetchError{Locator: locator, StatusCode: http.StatusNotFound, Err: errors.New("404 Not Found")}
	})

	_, err := NewRetryFetcher(next, 5, time.Millisecond, time.Millisecond).Fetch(context.Background(), "http://x/y")
	require.Error(t, err)
	assert.Equal(t, 1, calls)

	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, http.StatusNotFound, fe.StatusCode)
}

func TestRetryFetcher_GivesUp(t *testing.T) {
	calls := 0
	next := fetchFunc(func(ctx context.Context, locator string) (*Content, error) {
		calls++
		return nil, &FetchError{Locator: locator, Err: errors.New("connection refused")}
	})

	_, err := NewRetryFetcher(next, 2, time.Millisecond, time.Millisecond).Fetch(context.Background(), "http://x/y")
	assert.ErrorIs(t, err, ErrFetch)
	assert.Equal(t, 3, calls)
}

func TestRetryFetcher_ZeroRetries(t *testing.T) {
	calls := 0
	next := fetchFunc(func(ctx context.Context, locator string) (*Content, error) {
		calls++
		return nil, &FetchError{Locator: locator, Err: errors.New("connection refused")}
	})

	_, err := NewRetryFetcher(next, 0, time.Millisecond, time.Millisecond).Fetch(context.Background(), "http://x/y")
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryFetcher_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	next := fetchFunc(func(ctx context.Context, locator string) (*Content, error) {
		cancel()
		return nil, &FetchError{Locator: locator, Err: ctx.Err()}
	})

	_, err := NewRetryFetcher(next, 5, time.Second, time.Second).Fetch(ctx, "http://x/y")
	assert.ErrorIs(t, err, ErrFetch)
}
