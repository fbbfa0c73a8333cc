package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Config struct {
	Level string
	// File enables a rotating log file next to stderr output.
	File string
}

type Logger struct {
	l      *logrus.Logger
	closer io.Closer
}

func New(conf Config) (*Logger, error) {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true}) //nolint:exhaustruct

	level := logrus.InfoLevel

	if conf.Level != "" {
		parsed, err := logrus.ParseLevel(conf.Level)
		if err != nil {
			return nil, fmt.Errorf("parse log level %q: %w", conf.Level, err)
		}

		level = parsed
	}

	l.SetLevel(level)

	res := &Logger{l: l} //nolint:exhaustruct

	if conf.File != "" {
		//nolint:exhaustruct
		file := &lumberjack.Logger{
			Filename:   conf.File,
			MaxSize:    10, //nolint:gomnd
			MaxBackups: 3,  //nolint:gomnd
			MaxAge:     28, //nolint:gomnd
		}

		l.SetOutput(io.MultiWriter(os.Stderr, file))
		res.closer = file
	}

	return res, nil
}

// NewWriter logs everything to w. Used by tests and the CLI.
func NewWriter(w io.Writer) *Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true}) //nolint:exhaustruct

	return &Logger{l: l} //nolint:exhaustruct
}

func (l *Logger) LogErrorf(format string, v ...any) {
	l.l.Errorf(format, v...)
}

func (l *Logger) LogWarnf(format string, v ...any) {
	l.l.Warnf(format, v...)
}

func (l *Logger) LogInfo(format string, v ...any) {
	l.l.Infof(format, v...)
}

// With returns an entry carrying fields, for call sites that log structured context.
func (l *Logger) With(fields map[string]any) *logrus.Entry {
	return l.l.WithFields(fields)
}

// Writer pipes lines into the log at info level. The caller closes it to stop the reader goroutine.
func (l *Logger) Writer() io.WriteCloser {
	return l.l.Writer()
}

func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}

	return l.closer.Close()
}
