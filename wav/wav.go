// Package wav decodes wav files for the deck and writes recorded mixes.
package wav

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/pipelined/djdeck/format"
	"github.com/pipelined/djdeck/signal"
)

const (
	// readFrames is a number of frames read per decoder call.
	readFrames = 4096
	// pcmFormat is a wav audio format value for integer PCM.
	pcmFormat = 1
)

// ErrUnsupportedBitDepth is returned when unsupported bit depth is used.
var ErrUnsupportedBitDepth = fmt.Errorf("only 16, 24 and 32 bit depth is supported: %w", format.ErrUnsupportedFormat)

// Codec implements format.Codec for wav files.
type Codec struct{}

// Name returns codec name.
func (Codec) Name() string {
	return "wav"
}

// Sniff checks RIFF/WAVE header.
func (Codec) Sniff(header []byte) bool {
	return len(header) >= 12 &&
		bytes.Equal(header[0:4], []byte("RIFF")) &&
		bytes.Equal(header[8:12], []byte("WAVE"))
}

// Probe reads wav properties.
func (Codec) Probe(r io.ReadSeeker) (format.Properties, error) {
	decoder, err := validDecoder(r)
	if err != nil {
		return format.Properties{}, err
	}
	// frames are counted from the data chunk, riff size includes other chunks.
	if err := decoder.FwdToPCM(); err != nil {
		return format.Properties{}, err
	}
	if decoder.PCMChunk == nil {
		return format.Properties{}, errors.New("wav has no data chunk")
	}
	frameSize := int64(decoder.NumChans) * int64(decoder.BitDepth/8)
	return format.Properties{
		SampleRate:  int(decoder.SampleRate),
		NumChannels: int(decoder.NumChans),
		Frames:      decoder.PCMLen() / frameSize,
	}, nil
}

// Decode reads the whole wav file into memory.
func (Codec) Decode(r io.ReadSeeker) (*format.Decoded, error) {
	decoder, err := validDecoder(r)
	if err != nil {
		return nil, err
	}
	numChannels := int(decoder.NumChans)
	bitDepth := signal.BitDepth(decoder.BitDepth)
	ib := &audio.IntBuffer{
		Format:         decoder.Format(),
		Data:           make([]int, readFrames*numChannels),
		SourceBitDepth: int(decoder.BitDepth),
	}

	var samples signal.Float64
	for {
		read, err := decoder.PCMBuffer(ib)
		if err != nil {
			return nil, err
		}
		if read == 0 {
			break
		}
		// prune buffer to actual size
		b := signal.InterInt{Data: ib.Data[:read], NumChannels: numChannels, BitDepth: bitDepth}.AsFloat64()
		samples = samples.Append(b)
	}
	if samples == nil {
		samples = signal.EmptyFloat64(numChannels, 0)
	}
	return &format.Decoded{
		SampleRate: int(decoder.SampleRate),
		Samples:    samples,
	}, nil
}

func validDecoder(r io.ReadSeeker) (*wav.Decoder, error) {
	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() {
		return nil, errors.New("wav is not valid")
	}
	if decoder.WavAudioFormat != pcmFormat {
		return nil, fmt.Errorf("wav audio format %d: %w", decoder.WavAudioFormat, format.ErrUnsupportedFormat)
	}
	if !supported(signal.BitDepth(decoder.BitDepth)) {
		return nil, ErrUnsupportedBitDepth
	}
	if decoder.NumChans == 0 || decoder.SampleRate == 0 {
		return nil, errors.New("wav has no channels or sample rate")
	}
	return decoder, nil
}

func supported(bitDepth signal.BitDepth) bool {
	return bitDepth == signal.BitDepth16 || bitDepth == signal.BitDepth24 || bitDepth == signal.BitDepth32
}
