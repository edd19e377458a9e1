package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pipelined/djdeck/internal/app"
	"github.com/pipelined/djdeck/playlist"
)

type libraryCmd struct {
	List libraryListCmd `cmd:"" help:"Print library tracks."`
	Add  libraryAddCmd  `cmd:"" help:"Import files into the library."`
}

type libraryListCmd struct{}

func (cmd *libraryListCmd) Run(g *Globals) error {
	cfg := g.config()
	l := playlist.New(app.NewRegistry(), nil)
	if err := l.LoadFile(cfg.LibraryPath); err != nil {
		return err
	}
	list(os.Stdout, l)
	return nil
}

type libraryAddCmd struct {
	Files []string `arg:"" name:"files" help:"Audio files to import." type:"existingfile"`
}

func (cmd *libraryAddCmd) Run(g *Globals) error {
	cfg := g.config()
	l := playlist.New(app.NewRegistry(), nil)
	if err := l.LoadFile(cfg.LibraryPath); err != nil {
		return err
	}
	added, importErr := l.Import(context.Background(), cmd.Files...)
	if len(added) > 0 {
		if err := l.SaveFile(cfg.LibraryPath); err != nil {
			return err
		}
	}
	fmt.Fprintf(os.Stdout, "added %d tracks to %s\n", len(added), cfg.LibraryPath)
	return importErr
}

func list(w io.Writer, l *playlist.Library) {
	for i, t := range l.Tracks() {
		fmt.Fprintf(w, "%3d  %-40s %6s  %s\n", i+1, t.Title, t.Length, t.Path)
	}
}
