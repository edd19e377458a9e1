// Package aiff decodes aiff files for the deck.
package aiff

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/aiff"

	"github.com/pipelined/djdeck/format"
	"github.com/pipelined/djdeck/signal"
)

// Codec implements format.Codec for aiff and aifc files.
type Codec struct{}

// Name returns codec name.
func (Codec) Name() string {
	return "aiff"
}

// Sniff checks FORM/AIFF or FORM/AIFC header.
func (Codec) Sniff(header []byte) bool {
	if len(header) < 12 || !bytes.Equal(header[0:4], []byte("FORM")) {
		return false
	}
	kind := header[8:12]
	return bytes.Equal(kind, []byte("AIFF")) || bytes.Equal(kind, []byte("AIFC"))
}

// Probe reads aiff properties.
func (Codec) Probe(r io.ReadSeeker) (format.Properties, error) {
	decoder, err := validDecoder(r)
	if err != nil {
		return format.Properties{}, err
	}
	return format.Properties{
		SampleRate:  decoder.SampleRate,
		NumChannels: int(decoder.NumChans),
		Frames:      int64(decoder.NumSampleFrames),
	}, nil
}

// Decode reads the whole aiff file into memory.
func (Codec) Decode(r io.ReadSeeker) (*format.Decoded, error) {
	decoder, err := validDecoder(r)
	if err != nil {
		return nil, err
	}
	ib, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, err
	}
	numChannels := int(decoder.NumChans)
	samples := signal.InterInt{
		Data:        ib.Data,
		NumChannels: numChannels,
		BitDepth:    signal.BitDepth(decoder.BitDepth),
	}.AsFloat64()
	if samples == nil {
		samples = signal.EmptyFloat64(numChannels, 0)
	}
	return &format.Decoded{
		SampleRate: decoder.SampleRate,
		Samples:    samples,
	}, nil
}

func validDecoder(r io.ReadSeeker) (*aiff.Decoder, error) {
	decoder := aiff.NewDecoder(r)
	if !decoder.IsValidFile() {
		return nil, errors.New("aiff is not valid")
	}
	if err := decoder.Err(); err != nil {
		return nil, err
	}
	switch signal.BitDepth(decoder.BitDepth) {
	case signal.BitDepth16, signal.BitDepth24, signal.BitDepth32:
	default:
		return nil, fmt.Errorf("aiff bit depth %d: %w", decoder.BitDepth, format.ErrUnsupportedFormat)
	}
	if decoder.NumChans == 0 || decoder.SampleRate == 0 {
		return nil, errors.New("aiff has no channels or sample rate")
	}
	return decoder, nil
}
