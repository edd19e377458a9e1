/*
Package djdeck is a two deck player for the terminal.

Concept

Every deck is a pull chain of stages:

    track.Source - decoded track in memory, position and seek;
    speed.Stage - playback speed by linear interpolation;
    eq.Stage - bass, mid and treble biquads;
    reverb.Stage - room simulation;
    gain.Stage - output level.

The mixer sums decks into the device block. The device callback pulls the
mixer, so the audio thread drives the whole graph. It never locks, never
allocates after Prepare and never does I/O. Parameters are published by the
control thread atomically and picked up at the next block.

Control

UI key presses become control.Command values executed by control.Dispatcher.
Setters ignore out of range values and report that with a false result and
a debug log line.

Taps

Decks and the mixer push copies of their output into tap.Tap queues. The
consumer goroutine feeds level meters and the recorder. A full queue drops
the block instead of blocking the audio thread.

Formats

WAV, AIFF and MP3 files are decoded by codecs of format.Registry. The mix is
recorded into WAV or MP3.
*/
package djdeck
