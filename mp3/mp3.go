// Package mp3 decodes mp3 files for the deck and encodes recorded mixes.
package mp3

import (
	"bytes"
	"encoding/binary"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"

	"github.com/pipelined/djdeck/format"
	"github.com/pipelined/djdeck/signal"
)

const (
	// decoder always provides 16 bit stereo.
	numChannels    = 2
	bytesPerFrame  = 4
	readFrames     = 4096
	frameSyncMask  = 0xE0
	id3HeaderBytes = 3
)

// Codec implements format.Codec for mp3 files.
type Codec struct{}

// Name returns codec name.
func (Codec) Name() string {
	return "mp3"
}

// Sniff checks ID3 tag or MPEG frame sync.
func (Codec) Sniff(header []byte) bool {
	if len(header) >= id3HeaderBytes && bytes.Equal(header[:id3HeaderBytes], []byte("ID3")) {
		return true
	}
	return len(header) >= 2 && header[0] == 0xFF && header[1]&frameSyncMask == frameSyncMask
}

// Probe reads mp3 properties. Decoder needs to scan frames to get the
// length, but no samples are kept.
func (Codec) Probe(r io.ReadSeeker) (format.Properties, error) {
	d, err := gomp3.NewDecoder(r)
	if err != nil {
		return format.Properties{}, err
	}
	return format.Properties{
		SampleRate:  d.SampleRate(),
		NumChannels: numChannels,
		Frames:      d.Length() / bytesPerFrame,
	}, nil
}

// Decode reads the whole mp3 file into memory.
func (Codec) Decode(r io.ReadSeeker) (*format.Decoded, error) {
	d, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, err
	}

	frames := int(d.Length() / bytesPerFrame)
	samples := signal.EmptyFloat64(numChannels, 0)
	for c := range samples {
		samples[c] = make([]float64, 0, frames)
	}
	ints := make([]int, readFrames*numChannels)
	buf := make([]byte, readFrames*bytesPerFrame)
	for {
		n, err := io.ReadFull(d, buf)
		// only whole frames are converted
		n -= n % bytesPerFrame
		if n > 0 {
			for i := 0; i < n/2; i++ {
				ints[i] = int(int16(binary.LittleEndian.Uint16(buf[2*i:])))
			}
			b := signal.InterInt{Data: ints[:n/2], NumChannels: numChannels, BitDepth: signal.BitDepth16}.AsFloat64()
			samples = samples.Append(b)
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	return &format.Decoded{
		SampleRate: d.SampleRate(),
		Samples:    samples,
	}, nil
}
