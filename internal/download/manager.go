package download

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/handiism/playlist-downloader/internal/audio"
	"github.com/handiism/playlist-downloader/internal/config"
	"github.com/handiism/playlist-downloader/internal/http"
	ioutils "github.com/handiism/playlist-downloader/internal/io"
	"github.com/handiism/playlist-downloader/internal/manifest"
	"github.com/handiism/playlist-downloader/internal/model"
)

//go:generate mockgen -destination=mocks/mock_fetcher.go -package=mocks github.com/handiism/playlist-downloader/internal/download Fetcher

// Fetcher retrieves the content behind a locator.
type Fetcher interface {
	Fetch(ctx context.Context, locator string) (*http.Content, error)
}

// URLDeriver builds the remote locator of a song.
type URLDeriver interface {
	Locate(baseURL string, song *model.Song) string
}

// PathDeriver builds the local storage path of a song and creates its
// parent directories.
type PathDeriver interface {
	Path(root, tag string, song *model.Song) (string, error)
}

// Tagger writes song metadata into stored content.
type Tagger interface {
	Supports(tag string) bool
	Tag(path string, song *model.Song) error
}

// ManifestStore persists the manifest at the end of a run.
type ManifestStore interface {
	Save(m *manifest.Manifest) error
}

// Option configures a Manager.
type Option func(*Manager)

// WithFetcher replaces the default retrying HTTP fetcher.
func WithFetcher(f Fetcher) Option {
	return func(m *Manager) { m.fetcher = f }
}

// WithURLDeriver replaces model.CatalogLocator.
func WithURLDeriver(d URLDeriver) Option {
	return func(m *Manager) { m.locator = d }
}

// WithPathDeriver replaces model.LibraryLayout.
func WithPathDeriver(d PathDeriver) Option {
	return func(m *Manager) { m.layout = d }
}

// WithTagger replaces the ID3 tagger. A nil tagger disables tagging.
func WithTagger(t Tagger) Option {
	return func(m *Manager) {
		m.tagger = t
		m.taggerSet = true
	}
}

// WithManifestStore replaces the references.json store of the destination.
func WithManifestStore(s ManifestStore) Option {
	return func(m *Manager) { m.store = s }
}

// WithLogger sets the logger handed to the default HTTP client.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// Manager downloads the songs of a playlist into a destination directory.
//
// A song whose ISRC is already in the manifest is skipped. Every other song
// is fetched and written to its library path, and the path is appended to
// the manifest. A failing song is reported and counted but never stops the
// run. The manifest is saved once, after every song has been handled.
type Manager struct {
	settings  *config.Settings
	fetcher   Fetcher
	locator   URLDeriver
	layout    PathDeriver
	tagger    Tagger
	taggerSet bool
	store     ManifestStore
	logger    *slog.Logger

	onProgress func(ProgressEvent)

	mu     sync.Mutex // guards the manifest and report of the current run
	emitMu sync.Mutex // serializes onProgress
}

// NewManager creates a new download Manager.
//
// Without options the manager fetches over HTTP with retries as configured
// in settings, derives locators with model.CatalogLocator and paths with
// model.LibraryLayout, and tags MP3 content when settings.ModifyTags is set.
func NewManager(settings *config.Settings, onProgress func(ProgressEvent), opts ...Option) *Manager {
	m := &Manager{
		settings:   settings,
		locator:    model.CatalogLocator{},
		layout:     model.LibraryLayout{},
		onProgress: onProgress,
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.logger == nil {
		m.logger = slog.Default()
	}
	if m.fetcher == nil {
		m.fetcher = m.defaultFetcher()
	}
	if !m.taggerSet && settings.ModifyTags {
		m.tagger = audio.NewTagger(audio.DefaultTagConfig())
	}

	return m
}

func (m *Manager) defaultFetcher() Fetcher {
	client := http.NewClient(
		http.WithTimeout(m.settings.RequestTimeout),
		http.WithUserAgent(m.settings.UserAgent),
		http.WithLogger(m.logger),
	)

	retry := http.NewRetryFetcher(client, m.settings.DownloadMaxRetries, m.settings.RetryInitialInterval, m.settings.RetryMaxInterval)
	retry.OnRetry = func(locator string, attempt int, err error, wait time.Duration) {
		m.progress(ProgressEvent{
			Message: fmt.Sprintf("Retry %d/%d for %s in %s: %v", attempt, m.settings.DownloadMaxRetries, locator, wait.Round(time.Millisecond), err),
			Level:   LevelWarning,
			Locator: locator,
			Err:     err,
		})
	}
	return retry
}

// run is the state of one Run call.
type run struct {
	destination string
	manifest    *manifest.Manifest
	report      *Report
}

// Run downloads songs into destination, consulting and extending m.
//
// The returned Report is always populated. The error is non-nil only when
// the manifest could not be saved; it is then a *manifest.PersistError.
// Songs not yet started when ctx is done are reported as cancelled, and the
// manifest is still saved with everything stored so far.
func (m *Manager) Run(ctx context.Context, destination string, mf *manifest.Manifest, songs []*model.Song) (*Report, error) {
	start := time.Now()
	r := &run{
		destination: destination,
		manifest:    mf,
		report:      &Report{RunID: uuid.NewString(), Total: len(songs)},
	}

	m.progress(ProgressEvent{
		Message: fmt.Sprintf("Downloading %d songs to %s (%d already in manifest)", len(songs), destination, mf.Len()),
		Level:   LevelInfo,
	})

	// Songs sharing an ISRC go to the same worker, in list order, so the
	// second one sees the first one's manifest entry.
	groups := lo.GroupBy(songs, func(s *model.Song) string { return s.ISRC })
	order := lo.Uniq(lo.Map(songs, func(s *model.Song, _ int) string { return s.ISRC }))

	g := new(errgroup.Group)
	g.SetLimit(max(m.settings.MaxConcurrentDownloads, 1))

	for _, isrc := range order {
		group := groups[isrc]
		g.Go(func() error {
			for _, song := range group {
				m.processSong(ctx, r, song)
			}
			return nil
		})
	}
	_ = g.Wait()

	r.report.Elapsed = time.Since(start)

	store := m.store
	if store == nil {
		store = manifest.NewStore(destination)
	}
	saveErr := store.Save(mf)
	if saveErr != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error saving manifest: %v", saveErr), Level: LevelError, Err: saveErr})
	}

	level := LevelSuccess
	if r.report.Errors() > 0 || saveErr != nil {
		level = LevelWarning
	}
	m.progress(ProgressEvent{Message: fmt.Sprintf("Error count: %d", r.report.Errors()), Level: level})

	return r.report, saveErr
}

func (m *Manager) processSong(ctx context.Context, r *run, song *model.Song) {
	if ctx.Err() != nil {
		m.finish(r, song, OutcomeCancelled, ProgressEvent{
			Message: fmt.Sprintf("Cancelled: %s - %s", song.Artist, song.Title),
			Level:   LevelVerbose,
		})
		return
	}

	if m.alreadyStored(r, song) {
		m.finish(r, song, OutcomeSkipped, ProgressEvent{
			Message: fmt.Sprintf("Skipping existing: %s - %s", song.Artist, song.Title),
			Level:   LevelVerbose,
		})
		return
	}

	locator := m.locator.Locate(m.settings.BaseURL, song)
	m.progress(ProgressEvent{Message: fmt.Sprintf("Fetching %s", locator), Level: LevelVerbose, Song: song, Locator: locator})

	fetchCtx, cancel := withTimeout(ctx, m.settings.FetchTimeout)
	content, err := m.fetcher.Fetch(fetchCtx, locator)
	cancel()
	if err != nil {
		if ctx.Err() != nil {
			m.finish(r, song, OutcomeCancelled, ProgressEvent{
				Message: fmt.Sprintf("Cancelled: %s - %s", song.Artist, song.Title),
				Level:   LevelVerbose,
				Locator: locator,
			})
			return
		}
		m.finish(r, song, OutcomeFetchFailed, ProgressEvent{
			Message: fmt.Sprintf("Error fetching %s: %v", locator, err),
			Level:   LevelError,
			Locator: locator,
			Err:     err,
		})
		return
	}

	path, err := m.storeContent(ctx, r.destination, song, content)
	if err != nil {
		m.finish(r, song, OutcomeStoreFailed, ProgressEvent{
			Message: fmt.Sprintf("Error storing %s - %s: %v", song.Artist, song.Title, err),
			Level:   LevelError,
			Locator: locator,
			Path:    path,
			Err:     err,
		})
		return
	}

	m.mu.Lock()
	r.manifest.Add(song.ISRC, manifestPath(r.destination, path))
	r.report.Bytes += int64(len(content.Data))
	m.mu.Unlock()

	m.finish(r, song, OutcomeStored, ProgressEvent{
		Message: fmt.Sprintf("Downloaded: %s", filepath.Base(path)),
		Level:   LevelSuccess,
		Locator: locator,
		Path:    path,
	})
}

// alreadyStored reports whether the manifest has an entry for song.
func (m *Manager) alreadyStored(r *run, song *model.Song) bool {
	m.mu.Lock()
	paths := r.manifest.Paths(song.ISRC)
	m.mu.Unlock()

	return stored(m.settings.VerifyStoredFiles, r.destination, paths)
}

// stored reports whether recorded paths count as a stored song. With verify
// an entry only counts if one of its files still exists.
func stored(verify bool, destination string, paths []string) bool {
	if len(paths) == 0 {
		return false
	}
	if !verify {
		return true
	}
	for _, p := range paths {
		if _, err := os.Stat(resolvePath(destination, p)); err == nil {
			return true
		}
	}
	return false
}

// storeContent writes content to the song's library path. The write runs
// detached from ctx, bounded by StoreTimeout, so a fetched song is not lost
// to cancellation halfway through.
func (m *Manager) storeContent(ctx context.Context, destination string, song *model.Song, content *http.Content) (string, error) {
	path, err := m.layout.Path(destination, content.Tag, song)
	if err != nil {
		return "", &StorageError{Err: err}
	}

	storeCtx, cancel := withTimeout(context.WithoutCancel(ctx), m.settings.StoreTimeout)
	defer cancel()

	err = ioutils.WriteFileAtomic(storeCtx, path, content.Data, func(tmpPath string) error {
		if m.tagger == nil || !m.tagger.Supports(content.Tag) {
			return nil
		}
		if err := m.tagger.Tag(tmpPath, song); err != nil {
			m.progress(ProgressEvent{
				Message: fmt.Sprintf("Error tagging %s: %v", song.Title, err),
				Level:   LevelWarning,
				Song:    song,
				Path:    path,
				Err:     err,
			})
		}
		return nil
	})
	if err != nil {
		return path, &StorageError{Path: path, Err: err}
	}

	return path, nil
}

func (m *Manager) finish(r *run, song *model.Song, outcome Outcome, event ProgressEvent) {
	m.mu.Lock()
	r.report.record(outcome)
	m.mu.Unlock()

	event.Song = song
	event.Outcome = outcome
	m.progress(event)
}

func (m *Manager) progress(event ProgressEvent) {
	if m.onProgress == nil {
		return
	}
	m.emitMu.Lock()
	defer m.emitMu.Unlock()
	m.onProgress(event)
}

// manifestPath returns path as recorded in the manifest: forward-slash and
// relative to destination, or absolute when it lies outside destination.
func manifestPath(destination, path string) string {
	rel, err := filepath.Rel(destination, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// resolvePath turns a manifest path back into a filesystem path.
func resolvePath(destination, p string) string {
	p = filepath.FromSlash(p)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(destination, p)
}

// IsStored reports whether a run into destination would skip song.
func IsStored(settings *config.Settings, destination string, mf *manifest.Manifest, song *model.Song) bool {
	return stored(settings.VerifyStoredFiles, destination, mf.Paths(song.ISRC))
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
