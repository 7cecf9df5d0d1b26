package main

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/handiism/playlist-downloader/internal/download"
	"github.com/handiism/playlist-downloader/internal/history"
	"github.com/handiism/playlist-downloader/internal/model"
)

const separator = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	keyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFE66D"))
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ECDC4"))

	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	headerStyle = cellStyle.Bold(true)
)

// eventPrinter writes progress events to the terminal. Errors and warnings
// go to errOut; verbose events are dropped unless verbose is set.
type eventPrinter struct {
	out     io.Writer
	errOut  io.Writer
	verbose bool
}

func newEventPrinter(out, errOut io.Writer, verbose bool) *eventPrinter {
	return &eventPrinter{out: out, errOut: errOut, verbose: verbose}
}

func (p *eventPrinter) Print(event download.ProgressEvent) {
	if event.Level == download.LevelVerbose && !p.verbose {
		return
	}

	w := p.out
	var line string
	switch event.Level {
	case download.LevelError:
		w = p.errOut
		line = errorStyle.Render("❌ " + event.Message)
	case download.LevelWarning:
		w = p.errOut
		line = warningStyle.Render("⚠️  " + event.Message)
	case download.LevelSuccess:
		line = successStyle.Render("✅ " + event.Message)
	case download.LevelInfo:
		line = infoStyle.Render("ℹ️  " + event.Message)
	default:
		line = dimStyle.Render("   " + event.Message)
	}

	fmt.Fprintln(w, line)
}

// outcomeRecorder keeps the terminal song events of a run for the history.
type outcomeRecorder struct {
	mu     sync.Mutex
	events []*history.SongEvent
}

func (r *outcomeRecorder) Add(event download.ProgressEvent) {
	if event.Outcome == download.OutcomeNone || event.Song == nil {
		return
	}

	e := &history.SongEvent{
		ISRC:    event.Song.ISRC,
		Artist:  event.Song.Artist,
		Title:   event.Song.Title,
		Outcome: event.Outcome.String(),
		Locator: event.Locator,
		Path:    event.Path,
	}
	if event.Err != nil {
		e.Error = event.Err.Error()
	}

	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *outcomeRecorder) Events() []*history.SongEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.events)
}

// formatReport renders the end-of-run summary.
func formatReport(r *download.Report) string {
	var b strings.Builder

	headline := fmt.Sprintf("✨ Complete! Stored %d, skipped %d of %d songs (%s) in %s",
		r.Stored, r.Skipped, r.Total, humanize.Bytes(uint64(r.Bytes)), r.Elapsed.Round(10*time.Millisecond))
	if r.Errors() > 0 {
		b.WriteString(warningStyle.Render(headline))
	} else {
		b.WriteString(successStyle.Render(headline))
	}

	if r.FetchFailed > 0 || r.StoreFailed > 0 {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(fmt.Sprintf("   %d failed to download, %d failed to save", r.FetchFailed, r.StoreFailed)))
	}
	if r.Cancelled > 0 {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render(fmt.Sprintf("   %d not started (cancelled)", r.Cancelled)))
	}

	return b.String()
}

// formatSongDuration renders a song length as MM:SS.
func formatSongDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", (seconds/60)%60, seconds%60)
}

// formatTotalDuration renders a playlist length as H:MM:SS.
func formatTotalDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d:%02d", seconds/3600, (seconds/60)%60, seconds%60)
}

// renderDryRun prints the songs of pl sorted by artist, case and accent
// insensitively. When stored is not nil a Stored column marks the songs a
// run would skip.
func renderDryRun(w io.Writer, pl *model.Playlist, stored func(*model.Song) bool) {
	c := collate.New(language.Und, collate.IgnoreCase, collate.IgnoreDiacritics)
	songs := slices.Clone(pl.Songs)
	slices.SortStableFunc(songs, func(a, b *model.Song) int {
		return c.CompareString(a.Artist, b.Artist)
	})

	headers := []string{"Song title", "Artist", "Duration", "ISRC"}
	if stored != nil {
		headers = append(headers, "Stored")
	}

	rows := make([][]string, 0, len(songs))
	for _, s := range songs {
		row := []string{s.Title, s.Artist, formatSongDuration(s.Duration), s.ISRC}
		if stored != nil {
			mark := ""
			if stored(s) {
				mark = "✓"
			}
			row = append(row, mark)
		}
		rows = append(rows, row)
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			switch col {
			case 0:
				return cellStyle.Foreground(lipgloss.Color("#4ECDC4"))
			case 1:
				return cellStyle.Foreground(lipgloss.Color("#C77DFF"))
			case 2:
				return cellStyle.Foreground(lipgloss.Color("#95E1A3")).Align(lipgloss.Right)
			case 3:
				return cellStyle.Align(lipgloss.Right)
			default:
				return cellStyle.Align(lipgloss.Center)
			}
		})

	fmt.Fprintln(w, titleStyle.Render("Playlist: "+pl.Summary.Title))
	fmt.Fprintln(w, t.Render())
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s %s\n", keyStyle.Render("Nb songs:"), valueStyle.Render(fmt.Sprint(pl.Summary.SongCount)))
	fmt.Fprintf(w, "%s %s\n", keyStyle.Render("Duration:"), valueStyle.Render(formatTotalDuration(pl.Summary.Duration)))
}

// renderRuns prints recorded runs, most recent first.
func renderRuns(w io.Writer, runs []*history.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, dimStyle.Render("No runs recorded."))
		return
	}

	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		status := "ok"
		if r.Error != "" {
			status = "manifest not saved"
		} else if r.Cancelled > 0 {
			status = "cancelled"
		}
		rows = append(rows, []string{
			r.ID,
			humanize.Time(r.StartedAt),
			r.Playlist,
			fmt.Sprint(r.Stored),
			fmt.Sprint(r.Skipped),
			fmt.Sprint(r.Errors()),
			humanize.Bytes(uint64(r.Bytes)),
			status,
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("Run", "Started", "Playlist", "Stored", "Skipped", "Errors", "Size", "Status").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	fmt.Fprintln(w, t.Render())
}
