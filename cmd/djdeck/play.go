package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/pipelined/djdeck/internal/app"
	"github.com/pipelined/djdeck/internal/ui"
	"github.com/pipelined/djdeck/log"
	"github.com/pipelined/djdeck/portaudio"
)

type playCmd struct {
	SampleRate int    `help:"Device sample rate, overrides DJDECK_SAMPLE_RATE."`
	BlockSize  int    `help:"Frames per device callback, overrides DJDECK_BLOCK_SIZE."`
	Record     string `type:"path" help:"Record the mix into a .wav or .mp3 file."`
	Log        string `type:"path" help:"Write log into the file, the terminal belongs to the UI."`
}

func (cmd *playCmd) Run(g *Globals) error {
	cfg := g.config()
	if cmd.SampleRate > 0 {
		cfg.SampleRate = cmd.SampleRate
	}
	if cmd.BlockSize > 0 {
		cfg.BlockSize = cmd.BlockSize
	}

	logger := log.Discard()
	var logFile io.Closer
	if cmd.Log != "" {
		l, f, err := log.ToFile(cmd.Log)
		if err != nil {
			return fmt.Errorf("open log: %w", err)
		}
		logger, logFile = l, f
		defer logFile.Close()
	}

	cfg.NumChannels = portaudio.NumChannels
	engine, err := app.New(cfg, cmd.Record, logger)
	if err != nil {
		return err
	}
	out, err := portaudio.Open(engine.Mixer, cfg.SampleRate, cfg.BlockSize, logger)
	if err != nil {
		return err
	}
	defer out.Close()
	if err := out.Start(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return engine.Run(ctx)
	})
	model := ui.New(ctx, engine.Dispatcher, cfg.PollInterval, engine.Master, engine.Meters...)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, uiErr := program.Run()

	// no more blocks reach the taps once output is stopped.
	if err := out.Stop(); err != nil {
		logger.Warn(fmt.Sprintf("stop output: %v", err))
	}
	cancel()
	if err := group.Wait(); err != nil {
		return err
	}
	if uiErr != nil && !errors.Is(uiErr, tea.ErrProgramKilled) {
		return uiErr
	}
	return nil
}
