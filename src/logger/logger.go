package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

const timeFormat = "15:04:05"

var once sync.Once
var Log zerolog.Logger

// logFile is the open file sink, if any. Closed when Configure is called again.
var logFile *os.File

func consoleWriter(out io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: timeFormat,
	}
}

// shortCaller formats the caller as file:line without the directory.
func shortCaller(pc uintptr, file string, line int) string {
	if lastSlash := strings.LastIndexByte(file, '/'); lastSlash >= 0 {
		file = file[lastSlash+1:]
	}
	return fmt.Sprintf("%s:%d", file, line)
}

func configureLogger() {
	zerolog.CallerMarshalFunc = shortCaller
	Log = zerolog.New(consoleWriter(os.Stdout)).With().Timestamp().Caller().Logger()
}

// GetLogger returns the shared logger. Packages keep the pointer, so a later
// Configure is picked up everywhere.
func GetLogger() *zerolog.Logger {
	once.Do(configureLogger)
	return &Log
}

// Configure sets the global level and, if path is not empty, mirrors every
// line as JSON into that file.
func Configure(level zerolog.Level, path string) error {
	once.Do(configureLogger)

	var out io.Writer = consoleWriter(os.Stdout)
	var file *os.File
	if path != "" {
		var err error
		file, err = os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		out = zerolog.MultiLevelWriter(out, file)
	}

	Log = zerolog.New(out).With().Timestamp().Caller().Logger()
	zerolog.SetGlobalLevel(level)

	if logFile != nil {
		logFile.Close()
	}
	logFile = file
	return nil
}

// ParseLevel accepts zerolog level names; the empty string means info.
func ParseLevel(name string) (zerolog.Level, error) {
	if name == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(strings.ToLower(name))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("log level %q: %w", name, err)
	}
	return level, nil
}

// Silence disables all logging. Used by tests.
func Silence() {
	once.Do(configureLogger)
	zerolog.SetGlobalLevel(zerolog.Disabled)
}
