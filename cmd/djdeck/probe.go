package main

import (
	"fmt"
	"io"
	"os"

	"github.com/pipelined/djdeck/internal/app"
	"github.com/pipelined/djdeck/playlist"
	"github.com/pipelined/djdeck/track"
	"github.com/pipelined/djdeck/waveform"
)

type probeCmd struct {
	Width int      `default:"60" help:"Waveform width in columns."`
	Files []string `arg:"" name:"files" help:"Audio files to probe." type:"existingfile"`
}

func (cmd *probeCmd) Run(g *Globals) error {
	return probe(os.Stdout, cmd.Width, cmd.Files...)
}

// probe decodes every file and prints its properties and waveform.
func probe(w io.Writer, width int, paths ...string) error {
	src := track.New(app.NewRegistry())
	for _, path := range paths {
		info, err := src.Load(path)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\n", info.Title)
		fmt.Fprintf(w, "  path:     %s\n", info.Path)
		fmt.Fprintf(w, "  codec:    %s\n", info.Codec)
		fmt.Fprintf(w, "  rate:     %d Hz\n", info.SampleRate)
		fmt.Fprintf(w, "  channels: %d\n", info.NumChannels)
		fmt.Fprintf(w, "  length:   %s (%d frames)\n", playlist.FormatLength(info.LengthSeconds), info.Frames)
		_, wave := waveform.Render(waveform.Thumbnail(src.Samples(), width), width, 0)
		fmt.Fprintf(w, "  %s\n", wave)
	}
	return nil
}
