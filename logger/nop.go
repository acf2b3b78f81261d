package logger

import "github.com/rs/zerolog"

// NewNop returns a logger that discards everything. Useful in tests and as a
// fallback when the caller supplies no sink.
func NewNop() *ZeroLogger {
	l := zerolog.Nop()
	return &ZeroLogger{zlog: &l}
}
