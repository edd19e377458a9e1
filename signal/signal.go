// Package signal provides the block type shared by every stage of a deck
// chain. It allows to:
//	- convert interleaved int data to non-interleaved float blocks
//	- convert bit depth for int signals
//	- manipulate blocks in place without allocation
package signal

import (
	"math"
	"time"

	"github.com/cwbudde/algo-vecmath"
)

// Float64 is a non-interleaved float64 signal. First dimension is for
// channels, second for samples. Every channel has the same length.
type Float64 [][]float64

const (
	// BitDepth8 is 8 bit depth.
	BitDepth8 = BitDepth(8)
	// BitDepth16 is 16 bit depth.
	BitDepth16 = BitDepth(16)
	// BitDepth24 is 24 bit depth.
	BitDepth24 = BitDepth(24)
	// BitDepth32 is 32 bit depth.
	BitDepth32 = BitDepth(32)
)

// InterInt is an interleaved int signal.
type InterInt struct {
	Data        []int
	NumChannels int
	BitDepth
}

// BitDepth contains values required for int-to-float and backward conversion.
type BitDepth int

// divider is used when int to float conversion is done.
func (bitDepth BitDepth) divider() int {
	switch bitDepth {
	case BitDepth8:
		return math.MaxInt8
	case BitDepth16:
		return math.MaxInt16
	case BitDepth24:
		return 1<<23 - 1
	case BitDepth32:
		return math.MaxInt32
	default:
		return 1
	}
}

// multiplier is used when float to int conversion is done.
func (bitDepth BitDepth) multiplier() int {
	switch bitDepth {
	case BitDepth8:
		return math.MaxInt8 - 1
	case BitDepth16:
		return math.MaxInt16 - 1
	case BitDepth24:
		return 1<<23 - 2
	case BitDepth32:
		return math.MaxInt32 - 1
	default:
		return 1
	}
}

// DurationOf returns time duration of passed samples for this sample rate.
func DurationOf(sampleRate int, samples int64) time.Duration {
	return time.Duration(float64(samples) / float64(sampleRate) * float64(time.Second))
}

// AsFloat64 converts interleaved int signal to float64.
func (ints InterInt) AsFloat64() Float64 {
	if ints.Data == nil || ints.NumChannels == 0 {
		return nil
	}
	floats := make([][]float64, ints.NumChannels)
	bufSize := int(math.Ceil(float64(len(ints.Data)) / float64(ints.NumChannels)))

	// determine the divider for bit depth conversion
	divider := float64(ints.BitDepth.divider())

	for i := range floats {
		floats[i] = make([]float64, bufSize)
		pos := 0
		for j := i; j < len(ints.Data); j = j + ints.NumChannels {
			floats[i][pos] = float64(ints.Data[j]) / divider
			pos++
		}
	}
	return floats
}

// AsInterInt converts float64 signal to interleaved int. For known bit
// depths values are clipped to [-1, 1] before conversion.
func (floats Float64) AsInterInt(bitDepth BitDepth) []int {
	var numChannels int
	if numChannels = len(floats); numChannels == 0 {
		return nil
	}
	ints := make([]int, len(floats[0])*numChannels)
	floats.PutInterInt(ints, bitDepth)
	return ints
}

// PutInterInt writes float64 signal into preallocated interleaved ints.
// Returns the number of ints written.
func (floats Float64) PutInterInt(ints []int, bitDepth BitDepth) int {
	numChannels := len(floats)
	if numChannels == 0 {
		return 0
	}

	// determine the multiplier for bit depth conversion
	multiplier := float64(bitDepth.multiplier())

	n := 0
	for j := range floats {
		for i, v := range floats[j] {
			pos := i*numChannels + j
			if pos >= len(ints) {
				break
			}
			if multiplier != 1 {
				v = clip(v)
			}
			ints[pos] = int(v * multiplier)
			n++
		}
	}
	return n
}

func clip(v float64) float64 {
	switch {
	case v > 1:
		return 1
	case v < -1:
		return -1
	}
	return v
}

// EmptyFloat64 returns an empty buffer of specified dimensions.
func EmptyFloat64(numChannels int, bufferSize int) Float64 {
	result := make([][]float64, numChannels)
	for i := range result {
		result[i] = make([]float64, bufferSize)
	}
	return result
}

// NumChannels returns number of channels in this sample slice.
func (floats Float64) NumChannels() int {
	return len(floats)
}

// Size returns number of samples in single block in this sample slice.
func (floats Float64) Size() int {
	if floats.NumChannels() == 0 {
		return 0
	}
	return len(floats[0])
}

// Append buffers set to existing one one.
// New buffer is returned if floats is nil.
func (floats Float64) Append(source Float64) Float64 {
	if floats == nil {
		floats = make([][]float64, source.NumChannels())
		for i := range floats {
			floats[i] = make([]float64, 0, source.Size())
		}
	}
	for i := range source {
		floats[i] = append(floats[i], source[i]...)
	}
	return floats
}

// Slice creates a new copy of buffer from start position with defined length.
// If buffer doesn't have enough samples - shorten block is returned.
//
// if start >= buffer size, nil is returned
// if start + len >= buffer size, len is decreased till the end of slice
// if start < 0, nil is returned
func (floats Float64) Slice(start int, len int) Float64 {
	if floats == nil || start >= floats.Size() || start < 0 {
		return nil
	}
	end := start + len
	result := make([][]float64, floats.NumChannels())
	for i := range floats {
		if end > floats.Size() {
			end = floats.Size()
		}
		result[i] = append(result[i], floats[i][start:end]...)
	}
	return result
}

// View points every channel of view at floats[c][start:start+n]. View
// must have the same number of channels as floats. No data is copied and
// nothing is allocated.
func (floats Float64) View(view Float64, start, n int) Float64 {
	for i := range view {
		view[i] = floats[i][start : start+n]
	}
	return view
}

// Zero sets all samples to zero.
func (floats Float64) Zero() {
	for i := range floats {
		for j := range floats[i] {
			floats[i][j] = 0
		}
	}
}

// CopyFrom copies samples from source into floats. Only the overlapping
// channels and samples are copied. Returns number of samples copied per
// channel.
func (floats Float64) CopyFrom(source Float64) int {
	n := 0
	for i := 0; i < len(floats) && i < len(source); i++ {
		n = copy(floats[i], source[i])
	}
	return n
}

// Add accumulates source into floats sample-wise. Both must have the same
// shape.
func (floats Float64) Add(source Float64) {
	for i := range floats {
		vecmath.AddBlockInPlace(floats[i], source[i])
	}
}

// Scale multiplies every sample by gain.
func (floats Float64) Scale(gain float64) {
	for i := range floats {
		vecmath.ScaleBlockInPlace(floats[i], gain)
	}
}

// Peak returns maximum absolute sample value across all channels.
func (floats Float64) Peak() float64 {
	var peak float64
	for i := range floats {
		if p := vecmath.MaxAbs(floats[i]); p > peak {
			peak = p
		}
	}
	return peak
}
