package vm

import (
	"io"

	"github.com/rs/zerolog"
)

// logger is the package logger. It discards everything until the host
// installs a real one with SetLogger.
var logger = zerolog.New(io.Discard)

// SetLogger installs the logger used by the runtime for closure, merge and
// domain events.
func SetLogger(l zerolog.Logger) { logger = l }
