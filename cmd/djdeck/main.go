package main

import (
	"github.com/alecthomas/kong"

	"github.com/pipelined/djdeck/config"
	"github.com/pipelined/djdeck/log"
)

var version = "0.1.0"

// Globals are flags shared by every command.
type Globals struct {
	Debug   bool             `help:"Enable debug logging."`
	Library string           `type:"path" help:"Path to the library csv file."`
	Version kong.VersionFlag `short:"v" help:"Show version information."`
}

// config returns configuration with flag overrides applied.
func (g Globals) config() config.Config {
	if g.Debug {
		log.SetDebug(true)
	}
	cfg := config.Load()
	if g.Library != "" {
		cfg.LibraryPath = g.Library
	}
	return cfg
}

// CLI defines the command-line interface.
type CLI struct {
	Globals

	Play    playCmd    `cmd:"" default:"1" help:"Start the decks."`
	Probe   probeCmd   `cmd:"" help:"Print track properties and waveform."`
	Library libraryCmd `cmd:"" help:"Manage the track library."`
}

func main() {
	cli := CLI{}
	ctx := kong.Parse(&cli,
		kong.Name("djdeck"),
		kong.Description("Two deck player for the terminal"),
		kong.UsageOnError(),
		kong.Vars{"version": version},
	)
	ctx.FatalIfErrorf(ctx.Run(&cli.Globals))
}
