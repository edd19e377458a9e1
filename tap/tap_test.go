package tap_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/pipelined/djdeck/internal/mock"
	"github.com/pipelined/djdeck/signal"
	"github.com/pipelined/djdeck/tap"
	"github.com/pipelined/djdeck/test"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestDropWhenFull(t *testing.T) {
	tp := tap.New(2, 2, 4)
	assert.True(t, tp.Push(test.Signal(2, 4, test.Constant(0.1))))
	assert.True(t, tp.Push(test.Signal(2, 4, test.Constant(0.2))))
	assert.False(t, tp.Push(test.Signal(2, 4, test.Constant(0.3))))
	assert.Equal(t, uint64(1), tp.Dropped())
	assert.Equal(t, 2, tp.Pending())

	var peaks []float64
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := tp.Run(ctx, func(f tap.Frame) error {
		peaks = append(peaks, f.Peak)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.1, 0.2}, peaks)
	assert.Equal(t, 0, tp.Pending())

	// slots are free again
	assert.True(t, tp.Push(test.Signal(2, 4, test.Constant(0.3))))
}

func TestCopy(t *testing.T) {
	tp := tap.New(1, 2, 4)
	block := test.Signal(2, 3, test.Ramp(-0.25))
	tp.Push(block)
	// producer reuses its block
	block.Zero()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := tp.Run(ctx, func(f tap.Frame) error {
		assert.Equal(t, signal.Float64{{0, -0.25, -0.5}, {0, -0.25, -0.5}}, f.Samples)
		assert.Equal(t, 0.5, f.Peak)
		return nil
	})
	require.NoError(t, err)

	// larger blocks are truncated
	tp.Push(test.Signal(2, 10, test.Constant(1)))
	err = tp.Run(ctx, func(f tap.Frame) error {
		assert.Equal(t, 4, f.Samples.Size())
		return nil
	})
	require.NoError(t, err)
}

func TestRun(t *testing.T) {
	const blocks = 100
	tp := tap.New(blocks, 1, 8)
	ctx, cancel := context.WithCancel(context.Background())

	var (
		wg    sync.WaitGroup
		count int
		err   error
	)
	received := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		err = tp.Run(ctx, func(tap.Frame) error {
			count++
			if count == blocks {
				close(received)
			}
			return nil
		})
	}()
	for i := 0; i < blocks; i++ {
		tp.Push(test.Signal(1, 8, test.Constant(0.5)))
	}
	<-received
	cancel()
	wg.Wait()
	require.NoError(t, err)
	assert.Equal(t, blocks, count)
	assert.Equal(t, uint64(0), tp.Dropped())
}

func TestHandlerError(t *testing.T) {
	tp := tap.New(4, 1, 8)
	tp.Push(test.Signal(1, 8, test.Constant(0.5)))
	errWrite := errors.New("write failed")
	err := tp.Run(context.Background(), func(tap.Frame) error {
		return errWrite
	})
	assert.Equal(t, errWrite, err)
}

func TestSinkAndMeter(t *testing.T) {
	tp := tap.New(4, 2, 8)
	tp.Push(test.Signal(2, 8, test.Constant(0.5)))
	tp.Push(test.Signal(2, 8, test.Constant(-0.75)))

	w := &mock.Writer{}
	sink := tap.Sink(w)
	var m tap.Meter
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := tp.Run(ctx, func(f tap.Frame) error {
		if err := sink(f); err != nil {
			return err
		}
		return m.Handle(f)
	})
	require.NoError(t, err)
	assert.Equal(t, 16, w.Buffer().Size())
	assert.Equal(t, 0.75, m.Peak())
}
