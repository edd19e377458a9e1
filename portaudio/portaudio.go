// Package portaudio plays the mix on the default output device.
package portaudio

import (
	"fmt"

	"github.com/gordonklaus/portaudio"

	"github.com/pipelined/djdeck/log"
	"github.com/pipelined/djdeck/mixer"
)

// NumChannels is a number of output channels.
const NumChannels = 2

// Source is prepared and pulled by the output.
type Source interface {
	Prepare(sampleRate, blockSize, numChannels int)
	Release()
	mixer.Source
}

// Output is a callback stream of the default output device.
type Output struct {
	logger     log.Logger
	source     Source
	stream     *portaudio.Stream
	sampleRate int
	blockSize  int
}

// Open initializes portaudio, prepares the source and opens the default
// output stream which pulls the source in its callback.
func Open(source Source, sampleRate, blockSize int, logger log.Logger) (*Output, error) {
	if logger == nil {
		logger = log.Discard()
	}
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("initialize portaudio: %w", err)
	}
	source.Prepare(sampleRate, blockSize, NumChannels)
	callback := mixer.NewCallback(source, blockSize, NumChannels)
	stream, err := portaudio.OpenDefaultStream(0, NumChannels, float64(sampleRate), blockSize, callback.Process)
	if err != nil {
		source.Release()
		portaudio.Terminate()
		return nil, fmt.Errorf("open default stream: %w", err)
	}
	logger.Info(fmt.Sprintf("portaudio: opened default output %d Hz, block %d", sampleRate, blockSize))
	return &Output{
		logger:     logger,
		source:     source,
		stream:     stream,
		sampleRate: sampleRate,
		blockSize:  blockSize,
	}, nil
}

// Start starts the stream.
func (o *Output) Start() error {
	return o.stream.Start()
}

// Stop stops the stream. Callback isn't called after Stop returns.
func (o *Output) Stop() error {
	return o.stream.Stop()
}

// Close closes the stream, releases the source and terminates portaudio.
func (o *Output) Close() error {
	err := o.stream.Close()
	o.source.Release()
	if terr := portaudio.Terminate(); err == nil {
		err = terr
	}
	o.logger.Info("portaudio: closed")
	return err
}
