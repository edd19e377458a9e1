// Package format provides a pluggable registry of audio codecs. The deck
// core only consumes the result of Open: a fully decoded in-memory signal
// with its native sample rate.
package format

import (
	"errors"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pipelined/djdeck/signal"
)

// headerSize is enough bytes to recognize any registered container.
const headerSize = 12

type (
	// Codec decodes one container/codec family.
	Codec interface {
		// Name is a short human readable codec name.
		Name() string
		// Sniff returns true if header looks like this codec. Header might be
		// shorter than headerSize for tiny files.
		Sniff(header []byte) bool
		// Probe reads only metadata.
		Probe(r io.ReadSeeker) (Properties, error)
		// Decode reads the whole stream. Codecs should wrap
		// ErrUnsupportedFormat for valid, but unsupported streams.
		Decode(r io.ReadSeeker) (*Decoded, error)
	}

	// Properties describes a stream without its samples.
	Properties struct {
		SampleRate  int
		NumChannels int
		Frames      int64
	}

	// Decoded is a stream decoded into memory.
	Decoded struct {
		Path       string
		Codec      string
		SampleRate int
		Samples    signal.Float64
	}

	// Registry holds codecs in order of registration.
	Registry struct {
		m      sync.RWMutex
		codecs []Codec
	}
)

// LengthSeconds returns stream length in seconds.
func (p Properties) LengthSeconds() float64 {
	if p.SampleRate <= 0 {
		return 0
	}
	return float64(p.Frames) / float64(p.SampleRate)
}

// Properties returns properties of decoded stream.
func (d *Decoded) Properties() Properties {
	return Properties{
		SampleRate:  d.SampleRate,
		NumChannels: d.Samples.NumChannels(),
		Frames:      int64(d.Samples.Size()),
	}
}

// NewRegistry returns registry with provided codecs.
func NewRegistry(codecs ...Codec) *Registry {
	r := &Registry{}
	for _, c := range codecs {
		r.Register(c)
	}
	return r
}

// Register adds codec to the registry. Codecs registered first are tried
// first.
func (r *Registry) Register(c Codec) {
	r.m.Lock()
	defer r.m.Unlock()
	r.codecs = append(r.codecs, c)
}

// Codecs returns names of registered codecs.
func (r *Registry) Codecs() []string {
	r.m.RLock()
	defer r.m.RUnlock()
	names := make([]string, 0, len(r.codecs))
	for _, c := range r.codecs {
		names = append(names, c.Name())
	}
	return names
}

// Open resolves the path, picks a codec and decodes the whole file.
func (r *Registry) Open(path string) (*Decoded, error) {
	resolved, f, codec, err := r.open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	d, err := codec.Decode(f)
	if err != nil {
		return nil, classify(resolved, err)
	}
	if d.SampleRate <= 0 || d.Samples.NumChannels() == 0 {
		return nil, corrupt(resolved, errors.New("missing stream properties"))
	}
	d.Path = resolved
	d.Codec = codec.Name()
	return d, nil
}

// Probe resolves the path, picks a codec and reads only metadata.
func (r *Registry) Probe(path string) (Properties, error) {
	resolved, f, codec, err := r.open(path)
	if err != nil {
		return Properties{}, err
	}
	defer f.Close()

	p, err := codec.Probe(f)
	if err != nil {
		return Properties{}, classify(resolved, err)
	}
	if p.SampleRate <= 0 || p.NumChannels <= 0 {
		return Properties{}, corrupt(resolved, errors.New("missing stream properties"))
	}
	return p, nil
}

// open returns opened file rewound to the start and a codec which
// recognized it.
func (r *Registry) open(path string) (string, *os.File, Codec, error) {
	resolved, err := Resolve(path)
	if err != nil {
		return path, nil, nil, err
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return resolved, nil, nil, notFound(resolved, err)
	}
	if info.IsDir() {
		return resolved, nil, nil, notFound(resolved, errors.New("is a directory"))
	}

	f, err := os.Open(resolved)
	if err != nil {
		return resolved, nil, nil, notFound(resolved, err)
	}
	header := make([]byte, headerSize)
	n, err := io.ReadFull(f, header)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		f.Close()
		return resolved, nil, nil, corrupt(resolved, err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return resolved, nil, nil, corrupt(resolved, err)
	}

	r.m.RLock()
	defer r.m.RUnlock()
	for _, c := range r.codecs {
		if c.Sniff(header[:n]) {
			return resolved, f, c, nil
		}
	}
	f.Close()
	return resolved, nil, nil, unsupported(resolved)
}

// Resolve turns a local path or a file URL into an absolute path. URLs
// with other schemes cannot be resolved.
func Resolve(path string) (string, error) {
	if strings.Contains(path, "://") {
		u, err := url.Parse(path)
		if err != nil {
			return path, notFound(path, err)
		}
		if u.Scheme != "file" {
			return path, notFound(path, errors.New("unsupported url scheme "+u.Scheme))
		}
		path = u.Path
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path, notFound(path, err)
	}
	return abs, nil
}

// Title returns file name without extension.
func Title(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func classify(path string, err error) error {
	if errors.Is(err, ErrUnsupportedFormat) {
		return &LoadError{Kind: ErrUnsupportedFormat, Path: path, Err: err}
	}
	return corrupt(path, err)
}
