// Package waveform builds track thumbnails: peaks of fixed number of
// buckets and their text rendering.
package waveform

import (
	"math"
	"strings"

	"github.com/pipelined/djdeck/signal"
)

// levels are sparkline runes from quiet to loud.
var levels = []rune("▁▂▃▄▅▆▇█")

// Peak is the sample range of a bucket across all channels.
type Peak struct {
	Min float64
	Max float64
}

// Amplitude returns max absolute value of the peak.
func (p Peak) Amplitude() float64 {
	return math.Max(math.Abs(p.Min), math.Abs(p.Max))
}

// Thumbnail splits samples into buckets of equal length and returns their
// peaks. If there are more buckets than samples, extra buckets are silent.
func Thumbnail(samples signal.Float64, buckets int) []Peak {
	size := samples.Size()
	if buckets <= 0 || size == 0 {
		return nil
	}
	peaks := make([]Peak, buckets)
	for i := range peaks {
		start := int(int64(i) * int64(size) / int64(buckets))
		end := int(int64(i+1) * int64(size) / int64(buckets))
		if start == end {
			continue
		}
		p := Peak{Min: math.Inf(1), Max: math.Inf(-1)}
		for c := range samples {
			for _, v := range samples[c][start:end] {
				if v < p.Min {
					p.Min = v
				}
				if v > p.Max {
					p.Max = v
				}
			}
		}
		peaks[i] = p
	}
	return peaks
}

// Render draws peaks as a sparkline of width runes. Position is a played
// fraction in [0, 1]: played part is returned separately, so it can be
// styled differently.
func Render(peaks []Peak, width int, position float64) (played, rest string) {
	if width <= 0 {
		return "", ""
	}
	if math.IsNaN(position) || position < 0 {
		position = 0
	} else if position > 1 {
		position = 1
	}
	cut := int(math.Round(position * float64(width)))

	var b strings.Builder
	for col := 0; col < width; col++ {
		if col == cut {
			played = b.String()
			b.Reset()
		}
		b.WriteRune(level(column(peaks, col, width)))
	}
	if cut == width {
		return b.String(), ""
	}
	return played, b.String()
}

// column returns loudest amplitude of peaks covered by the column.
func column(peaks []Peak, col, width int) float64 {
	if len(peaks) == 0 {
		return 0
	}
	start := col * len(peaks) / width
	end := (col + 1) * len(peaks) / width
	if end <= start {
		end = start + 1
	}
	var a float64
	for _, p := range peaks[start:end] {
		a = math.Max(a, p.Amplitude())
	}
	return a
}

func level(amplitude float64) rune {
	i := int(amplitude * float64(len(levels)))
	switch {
	case i < 0:
		i = 0
	case i >= len(levels):
		i = len(levels) - 1
	}
	return levels[i]
}
