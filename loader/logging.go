package loader

import (
	"io"

	"github.com/rs/zerolog"
)

// log is the package logger, silent until SetLogger installs a real one.
var log = zerolog.New(io.Discard)

// SetLogger installs the logger used for load decisions.
func SetLogger(l zerolog.Logger) { log = l }
