// Package playlist is a library of tracks available for the decks. The
// library is persisted as CSV, one "<absolute path>,<M:SS>" record per
// line.
package playlist

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/pipelined/djdeck/format"
	"github.com/pipelined/djdeck/log"
)

// ErrDuplicate is returned for imported tracks whose title is already in
// the library.
var ErrDuplicate = errors.New("already in library")

// Track is a library entry.
type Track struct {
	Path   string
	Title  string
	Length string
}

// Prober reads stream properties without decoding, format.Registry
// implements it.
type Prober interface {
	Probe(path string) (format.Properties, error)
}

// Library is a list of tracks. It's safe for concurrent use.
type Library struct {
	prober Prober
	logger log.Logger

	m      sync.RWMutex
	tracks []Track
}

// New returns empty library.
func New(prober Prober, logger log.Logger) *Library {
	if logger == nil {
		logger = log.Discard()
	}
	return &Library{
		prober: prober,
		logger: logger,
	}
}

// NewTrack returns track for the path with provided length in seconds.
func NewTrack(path string, seconds float64) Track {
	return Track{
		Path:   path,
		Title:  format.Title(path),
		Length: FormatLength(seconds),
	}
}

// Import probes lengths of provided files concurrently and appends them in
// provided order. Files with titles already present in the library and
// files which cannot be probed are skipped and reported in the returned
// error. Added tracks are returned even if error is not nil.
func (l *Library) Import(ctx context.Context, paths ...string) ([]Track, error) {
	type result struct {
		track Track
		err   error
	}
	results := make([]result, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			resolved, err := format.Resolve(path)
			if err != nil {
				results[i].err = err
				return nil
			}
			props, err := l.prober.Probe(resolved)
			if err != nil {
				results[i].err = err
				return nil
			}
			results[i].track = NewTrack(resolved, props.LengthSeconds())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	l.m.Lock()
	defer l.m.Unlock()
	var (
		added []Track
		errs  []error
	)
	for _, r := range results {
		if r.err != nil {
			l.logger.Warn(fmt.Sprintf("playlist: skip: %v", r.err))
			errs = append(errs, r.err)
			continue
		}
		if l.index(r.track.Title) != -1 {
			l.logger.Info(fmt.Sprintf("playlist: %s %v", r.track.Title, ErrDuplicate))
			errs = append(errs, fmt.Errorf("%s: %w", r.track.Title, ErrDuplicate))
			continue
		}
		l.tracks = append(l.tracks, r.track)
		added = append(added, r.track)
	}
	return added, errors.Join(errs...)
}

// Add appends tracks without probing.
func (l *Library) Add(tracks ...Track) {
	l.m.Lock()
	defer l.m.Unlock()
	l.tracks = append(l.tracks, tracks...)
}

// Tracks returns a copy of library tracks.
func (l *Library) Tracks() []Track {
	l.m.RLock()
	defer l.m.RUnlock()
	return append([]Track(nil), l.tracks...)
}

// Len returns number of tracks.
func (l *Library) Len() int {
	l.m.RLock()
	defer l.m.RUnlock()
	return len(l.tracks)
}

// Track returns track at index i.
func (l *Library) Track(i int) (Track, bool) {
	l.m.RLock()
	defer l.m.RUnlock()
	if i < 0 || i >= len(l.tracks) {
		return Track{}, false
	}
	return l.tracks[i], true
}

// Remove deletes track at index i.
func (l *Library) Remove(i int) bool {
	l.m.Lock()
	defer l.m.Unlock()
	if i < 0 || i >= len(l.tracks) {
		return false
	}
	l.tracks = append(l.tracks[:i], l.tracks[i+1:]...)
	return true
}

// Search returns index of the first track whose title contains text. -1
// is returned for empty text or if nothing is found.
func (l *Library) Search(text string) int {
	if text == "" {
		return -1
	}
	l.m.RLock()
	defer l.m.RUnlock()
	for i, t := range l.tracks {
		if strings.Contains(t.Title, text) {
			return i
		}
	}
	return -1
}

func (l *Library) index(title string) int {
	for i, t := range l.tracks {
		if t.Title == title {
			return i
		}
	}
	return -1
}

// Save writes library as CSV.
func (l *Library) Save(w io.Writer) error {
	l.m.RLock()
	defer l.m.RUnlock()
	cw := csv.NewWriter(w)
	for _, t := range l.tracks {
		if err := cw.Write([]string{t.Path, t.Length}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Load replaces library tracks with tracks read from CSV.
func (l *Library) Load(r io.Reader) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 2
	var tracks []Track
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read library: %w", err)
		}
		tracks = append(tracks, Track{
			Path:   record[0],
			Title:  format.Title(record[0]),
			Length: record[1],
		})
	}
	l.m.Lock()
	defer l.m.Unlock()
	l.tracks = tracks
	return nil
}

// SaveFile writes library into the file, parent directories are created.
func (l *Library) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := l.Save(f); err != nil {
		f.Close()
		return err
	}
	l.logger.Debug(fmt.Sprintf("playlist: saved %s", path))
	return f.Close()
}

// LoadFile reads library from the file. Missing file results in empty
// library.
func (l *Library) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			l.m.Lock()
			l.tracks = nil
			l.m.Unlock()
			return nil
		}
		return err
	}
	defer f.Close()
	return l.Load(f)
}

// FormatLength rounds seconds and formats them as M:SS.
func FormatLength(seconds float64) string {
	if math.IsNaN(seconds) || seconds < 0 {
		seconds = 0
	}
	rounded := int(math.Round(seconds))
	return fmt.Sprintf("%d:%02d", rounded/60, rounded%60)
}
