package mp3

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/viert/lame"

	"github.com/pipelined/djdeck/signal"
)

// Sink encodes audio to mp3.
type Sink struct {
	closer io.Closer
	wr     *lame.LameWriter
	ints   []int
	buf    []byte
}

// Create creates the file at path and returns a sink writing into it.
func Create(path string, sampleRate, numChannels, bitRate, quality int) (*Sink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	s := NewSink(f, sampleRate, numChannels, bitRate, quality)
	s.closer = f
	return s, nil
}

// NewSink returns a sink encoding into w. Closing the sink doesn't close w.
func NewSink(w io.Writer, sampleRate, numChannels, bitRate, quality int) *Sink {
	wr := lame.NewWriter(w)
	wr.Encoder.SetBitrate(bitRate)
	wr.Encoder.SetQuality(quality)
	wr.Encoder.SetNumChannels(numChannels)
	wr.Encoder.SetInSamplerate(sampleRate)
	// mono mode is derived from the number of channels.
	if numChannels > 1 {
		wr.Encoder.SetMode(lame.JOINT_STEREO)
	}
	wr.Encoder.SetVBR(lame.VBR_RH)
	wr.Encoder.InitParams()
	return &Sink{wr: wr}
}

// Write encodes the block as 16 bit little endian pcm.
func (s *Sink) Write(b signal.Float64) error {
	size := b.Size() * b.NumChannels()
	if cap(s.ints) < size {
		s.ints = make([]int, size)
		s.buf = make([]byte, size*2)
	}
	s.ints = s.ints[:size]
	b.PutInterInt(s.ints, signal.BitDepth16)
	buf := s.buf[:size*2]
	for i, v := range s.ints {
		binary.LittleEndian.PutUint16(buf[2*i:], uint16(int16(v)))
	}
	_, err := s.wr.Write(buf)
	return err
}

// Close flushes the encoder and closes the file if sink owns it.
func (s *Sink) Close() error {
	err := s.wr.Close()
	if err != nil {
		return err
	}
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}
