package logger

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/staticbackendhq/imgpaste/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Logger struct {
	*zerolog.Logger
}

var (
	logger Logger
	once   sync.Once
)

func newFileWriter(filename string) io.Writer {
	return &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    10,
		MaxBackups: 3,
	}
}

// consoleWriter is human readable except in prod where log shippers expect
// one JSON object per line. Either way it writes to stderr, stdout belongs
// to CLI output.
func consoleWriter(env string) io.Writer {
	if env == "prod" {
		return os.Stderr
	}
	return zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Stamp}
}

// Get returns the process-wide logger, building it from cfg on the first call.
func Get(cfg config.AppConfig) *Logger {
	once.Do(func() {
		writers := []io.Writer{consoleWriter(cfg.AppEnv)}

		if cfg.LogFilename != "" {
			writers = append(writers, newFileWriter(cfg.LogFilename))
		}

		if cfg.LogConsoleLevel != "" {
			level, err := zerolog.ParseLevel(cfg.LogConsoleLevel)
			if err != nil {
				panic(err)
			}

			zerolog.SetGlobalLevel(level)
		}

		if cfg.AppEnv == "dev" {
			zerolog.SetGlobalLevel(zerolog.TraceLevel)
		}

		zeroLogger := zerolog.New(io.MultiWriter(writers...)).With().Timestamp().Logger()

		logger = Logger{&zeroLogger}
	})

	return &logger
}

// Component returns a child logger tagging every entry with name.
func (l *Logger) Component(name string) *Logger {
	child := l.With().Str("component", name).Logger()
	return &Logger{&child}
}

// Nop returns a logger discarding everything, handy for tests.
func Nop() *Logger {
	l := zerolog.Nop()
	return &Logger{&l}
}
