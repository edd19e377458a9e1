// Package eq provides three band equalizer of a deck: bass low shelf, mid
// peak and treble high shelf. Every band is a biquad section processed in
// Direct Form II Transposed.
package eq

import (
	"math"
	"sync/atomic"

	"github.com/pipelined/djdeck/signal"
)

// Band is an equalizer band.
type Band int

const (
	// Bass is a low shelf band.
	Bass Band = iota
	// Mid is a peak band.
	Mid
	// Treble is a high shelf band.
	Treble
	numBands
)

// Gain limits in dB, inclusive.
const (
	MinGainDB = -24.0
	MaxGainDB = 24.0
)

type kind int

const (
	lowShelf kind = iota
	peak
	highShelf
)

// design is a fixed band shape.
type design struct {
	kind      kind
	frequency float64
	q         float64
}

var designs = [numBands]design{
	Bass:   {kind: lowShelf, frequency: 200, q: 0.707},
	Mid:    {kind: peak, frequency: 1000, q: 1},
	Treble: {kind: highShelf, frequency: 5000, q: 0.707},
}

func (b Band) String() string {
	switch b {
	case Bass:
		return "bass"
	case Mid:
		return "mid"
	case Treble:
		return "treble"
	}
	return "unknown"
}

// Frequency returns center frequency of the band.
func (b Band) Frequency() float64 {
	return designs[b].frequency
}

// Coefficients of a single biquad section normalized by a0:
//
//	y  = B0*x + d0
//	d0 = B1*x - A1*y + d1
//	d1 = B2*x - A2*y
type Coefficients struct {
	B0, B1, B2 float64
	A1, A2     float64
}

// LowShelf returns RBJ low shelf coefficients.
func LowShelf(sampleRate, frequency, q, gainDB float64) Coefficients {
	a, cosw, alpha := rbj(sampleRate, frequency, q, gainDB)
	sq := 2 * math.Sqrt(a) * alpha
	a0 := (a + 1) + (a-1)*cosw + sq
	return normalize(a0,
		a*((a+1)-(a-1)*cosw+sq),
		2*a*((a-1)-(a+1)*cosw),
		a*((a+1)-(a-1)*cosw-sq),
		-2*((a-1)+(a+1)*cosw),
		(a+1)+(a-1)*cosw-sq,
	)
}

// HighShelf returns RBJ high shelf coefficients.
func HighShelf(sampleRate, frequency, q, gainDB float64) Coefficients {
	a, cosw, alpha := rbj(sampleRate, frequency, q, gainDB)
	sq := 2 * math.Sqrt(a) * alpha
	a0 := (a + 1) - (a-1)*cosw + sq
	return normalize(a0,
		a*((a+1)+(a-1)*cosw+sq),
		-2*a*((a-1)+(a+1)*cosw),
		a*((a+1)+(a-1)*cosw-sq),
		2*((a-1)-(a+1)*cosw),
		(a+1)-(a-1)*cosw-sq,
	)
}

// Peak returns RBJ peaking coefficients.
func Peak(sampleRate, frequency, q, gainDB float64) Coefficients {
	a, cosw, alpha := rbj(sampleRate, frequency, q, gainDB)
	a0 := 1 + alpha/a
	return normalize(a0,
		1+alpha*a,
		-2*cosw,
		1-alpha*a,
		-2*cosw,
		1-alpha/a,
	)
}

func rbj(sampleRate, frequency, q, gainDB float64) (a, cosw, alpha float64) {
	a = math.Pow(10, gainDB/40)
	w0 := 2 * math.Pi * frequency / sampleRate
	cosw = math.Cos(w0)
	alpha = math.Sin(w0) / (2 * q)
	return
}

func normalize(a0, b0, b1, b2, a1, a2 float64) Coefficients {
	return Coefficients{
		B0: b0 / a0,
		B1: b1 / a0,
		B2: b2 / a0,
		A1: a1 / a0,
		A2: a2 / a0,
	}
}

// coefficients returns band coefficients for sample rate and gain.
func (d design) coefficients(sampleRate int, gainDB float64) Coefficients {
	switch d.kind {
	case lowShelf:
		return LowShelf(float64(sampleRate), d.frequency, d.q, gainDB)
	case highShelf:
		return HighShelf(float64(sampleRate), d.frequency, d.q, gainDB)
	default:
		return Peak(float64(sampleRate), d.frequency, d.q, gainDB)
	}
}

// snapshot is immutable set of band parameters.
type snapshot struct {
	sampleRate int
	gains      [numBands]float64
	coeffs     [numBands]Coefficients
}

// Stage is a three band equalizer. Gains are set from control thread,
// Process runs on audio thread.
type Stage struct {
	params atomic.Pointer[snapshot]
	// state[channel][band] holds d0, d1.
	state [][numBands][2]float64
}

// New returns equalizer with all bands at 0 dB.
func New() *Stage {
	s := &Stage{}
	s.params.Store(&snapshot{})
	return s
}

// Prepare recomputes coefficients for the sample rate and allocates filter
// state. Must not be called concurrently with Process.
func (s *Stage) Prepare(sampleRate, numChannels int) {
	old := s.params.Load()
	next := &snapshot{
		sampleRate: sampleRate,
		gains:      old.gains,
	}
	for b := range designs {
		next.coeffs[b] = designs[b].coefficients(sampleRate, next.gains[b])
	}
	s.params.Store(next)
	s.state = make([][numBands][2]float64, numChannels)
}

// SetBandGain sets gain of a single band. Values outside [-24, 24] dB and
// unknown bands are ignored. Only the band's coefficients are recomputed.
// The new set is published atomically and applied from the next block.
func (s *Stage) SetBandGain(band Band, db float64) bool {
	if band < 0 || band >= numBands || !(db >= MinGainDB && db <= MaxGainDB) {
		return false
	}
	old := s.params.Load()
	next := *old
	next.gains[band] = db
	if next.sampleRate > 0 {
		next.coeffs[band] = designs[band].coefficients(next.sampleRate, db)
	}
	s.params.Store(&next)
	return true
}

// BandGain returns current gain of the band in dB.
func (s *Stage) BandGain(band Band) float64 {
	if band < 0 || band >= numBands {
		return 0
	}
	return s.params.Load().gains[band]
}

// Coefficients returns current coefficients of the band.
func (s *Stage) Coefficients(band Band) Coefficients {
	if band < 0 || band >= numBands {
		return Coefficients{}
	}
	return s.params.Load().coeffs[band]
}

// Reset clears filter state.
func (s *Stage) Reset() {
	for c := range s.state {
		s.state[c] = [numBands][2]float64{}
	}
}

// Process filters the block in place. Every channel is filtered
// independently. Bands at exactly 0 dB are skipped.
func (s *Stage) Process(b signal.Float64) {
	p := s.params.Load()
	if p.sampleRate == 0 {
		return
	}
	for c := range b {
		if c >= len(s.state) {
			return
		}
		for band := range p.coeffs {
			if p.gains[band] == 0 {
				s.state[c][band] = [2]float64{}
				continue
			}
			k := &p.coeffs[band]
			d := &s.state[c][band]
			d0, d1 := d[0], d[1]
			for i, x := range b[c] {
				y := k.B0*x + d0
				d0 = k.B1*x - k.A1*y + d1
				d1 = k.B2*x - k.A2*y
				b[c][i] = y
			}
			d[0], d[1] = d0, d1
		}
	}
}
