package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// zerologAdapter implements Logger over a github.com/rs/zerolog.Logger.
type zerologAdapter struct {
	log zerolog.Logger
}

// NewZerolog wraps w (or os.Stderr if nil) in a zerolog-backed Logger.
// When w is a terminal, output is switched to zerolog's human-readable
// ConsoleWriter, colorized via go-isatty/go-colorable the same way the
// teacher's cobra CLI would want interactive output.
func NewZerolog(w io.Writer) Logger {
	if w == nil {
		w = os.Stderr
	}

	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		w = zerolog.ConsoleWriter{Out: f}
	}

	return &zerologAdapter{log: zerolog.New(w).With().Timestamp().Logger()}
}

func sprint(v ...any) string { return fmt.Sprint(v...) }

func (z *zerologAdapter) Panicln(v ...any)                 { z.log.Panic().Msg(sprint(v...)) }
func (z *zerologAdapter) Panicf(format string, v ...any)   { z.log.Panic().Msgf(format, v...) }
func (z *zerologAdapter) Fatalln(v ...any)                 { z.log.Fatal().Msg(sprint(v...)) }
func (z *zerologAdapter) Fatalf(format string, v ...any)   { z.log.Fatal().Msgf(format, v...) }
func (z *zerologAdapter) Errorln(v ...any)                 { z.log.Error().Msg(sprint(v...)) }
func (z *zerologAdapter) Errorf(format string, v ...any)   { z.log.Error().Msgf(format, v...) }
func (z *zerologAdapter) Warnln(v ...any)                  { z.log.Warn().Msg(sprint(v...)) }
func (z *zerologAdapter) Warnf(format string, v ...any)    { z.log.Warn().Msgf(format, v...) }
func (z *zerologAdapter) Infoln(v ...any)                  { z.log.Info().Msg(sprint(v...)) }
func (z *zerologAdapter) Infof(format string, v ...any)    { z.log.Info().Msgf(format, v...) }
func (z *zerologAdapter) Debugln(v ...any)                 { z.log.Debug().Msg(sprint(v...)) }
func (z *zerologAdapter) Debugf(format string, v ...any)   { z.log.Debug().Msgf(format, v...) }
func (z *zerologAdapter) Traceln(v ...any)                 { z.log.Trace().Msg(sprint(v...)) }
func (z *zerologAdapter) Tracf(format string, v ...any)    { z.log.Trace().Msgf(format, v...) }
