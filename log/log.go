package log

import (
	"io"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
)

var debug bool

// Logger is a global interface for djdeck loggers.
type Logger interface {
	Debug(...interface{})
	Info(...interface{})
	Warn(...interface{})
}

func init() {
	var err error
	debug, err = strconv.ParseBool(os.Getenv("DJDECK_DEBUG"))
	if err != nil {
		debug = false
	}
}

// SetDebug overrides the debug flag read from DJDECK_DEBUG. It affects
// loggers created afterwards.
func SetDebug(v bool) {
	debug = v
}

// GetLogger returns a new logger instance.
func GetLogger() *logrus.Logger {
	l := logrus.New()
	if debug {
		l.SetLevel(logrus.DebugLevel)
	}
	return l
}

// Discard returns a logger which drops everything. It's used where the
// terminal belongs to the UI.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// ToFile returns a logger writing to the file at path. The file is
// truncated. Caller closes the returned closer.
func ToFile(path string) (*logrus.Logger, io.Closer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	l := GetLogger()
	l.SetOutput(f)
	return l, f, nil
}
