package wav

import (
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/pipelined/djdeck/signal"
)

// Sink saves audio to wav file.
type Sink struct {
	bitDepth signal.BitDepth
	closer   io.Closer
	encoder  *wav.Encoder
	ib       *audio.IntBuffer
}

// Create creates the file at path and returns a sink writing into it.
func Create(path string, sampleRate, numChannels int, bitDepth signal.BitDepth) (*Sink, error) {
	if !supported(bitDepth) {
		return nil, ErrUnsupportedBitDepth
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	s := NewSink(f, sampleRate, numChannels, bitDepth)
	s.closer = f
	return s, nil
}

// NewSink returns a sink encoding into w. Closing the sink doesn't close w.
func NewSink(w io.WriteSeeker, sampleRate, numChannels int, bitDepth signal.BitDepth) *Sink {
	return &Sink{
		bitDepth: bitDepth,
		encoder:  wav.NewEncoder(w, sampleRate, int(bitDepth), numChannels, pcmFormat),
		ib: &audio.IntBuffer{
			Format: &audio.Format{
				NumChannels: numChannels,
				SampleRate:  sampleRate,
			},
			SourceBitDepth: int(bitDepth),
		},
	}
}

// Write encodes the block.
func (s *Sink) Write(b signal.Float64) error {
	size := b.Size() * b.NumChannels()
	if cap(s.ib.Data) < size {
		s.ib.Data = make([]int, size)
	}
	s.ib.Data = s.ib.Data[:size]
	b.PutInterInt(s.ib.Data, s.bitDepth)
	return s.encoder.Write(s.ib)
}

// Close flushes encoder and closes the file if sink owns it.
func (s *Sink) Close() error {
	err := s.encoder.Close()
	if err != nil {
		return err
	}
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}
