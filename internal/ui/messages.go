package ui

import (
	"time"

	"github.com/pipelined/djdeck/control"
)

// tickMsg triggers status poll.
type tickMsg time.Time

// resultMsg is sent when dispatched command completes.
type resultMsg struct {
	cmd control.Command
	err error
}
