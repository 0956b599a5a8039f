package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	isDevelopment = false // human-readable console output and trace level

	logFile *os.File = nil

	once sync.Once

	base zerolog.Logger
)

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
}

// GetLogger returns the process-wide logger tagged with the given
// service name. The first call freezes the output configuration, so
// SetDevelopment and SetLogFile must run before any component asks
// for its logger.
func GetLogger(serviceName string) zerolog.Logger {
	once.Do(func() {
		if !isDevelopment {
			base = zerolog.New(os.Stderr).With().Timestamp().Logger()
			return
		}

		consoleWriter := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339,
			FormatLevel: func(i any) string {
				return strings.ToUpper(fmt.Sprintf("[%5s]", i))
			},
			FormatMessage: func(i any) string {
				return fmt.Sprintf("| %s |", i)
			},
			FormatCaller: func(i any) string {
				return filepath.Base(fmt.Sprintf("%s", i))
			},
			PartsExclude: []string{
				zerolog.TimestampFieldName,
			}}
		var w io.Writer = consoleWriter
		if logFile != nil {
			w = zerolog.MultiLevelWriter(consoleWriter, logFile)
		}
		base = zerolog.New(w).Level(zerolog.TraceLevel).With().Timestamp().Caller().Logger()
	})

	return base.With().Str("service", serviceName).Logger()
}

func SetDevelopment(value bool) {
	isDevelopment = value
}

func SetLogFile(file *os.File) {
	logFile = file
}
