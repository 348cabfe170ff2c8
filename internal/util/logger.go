package util

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

// SetupLogger builds the process logger. Logs go to logFilePath when set and
// to stderr otherwise, so they never mix with command output.
func SetupLogger(env string, logFilePath string) (*logrus.Entry, io.Closer, error) {
	log := logrus.New()

	var out io.Writer = os.Stderr
	var closer io.Closer = nopCloser{}
	if logFilePath != "" {
		logFile, err := os.OpenFile(logFilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, nil, err
		}
		out, closer = logFile, logFile
	}
	log.SetOutput(out)

	switch env {
	case EnvLocal:
		log.SetFormatter(&logrus.TextFormatter{
			ForceColors:   logFilePath == "" && isatty.IsTerminal(os.Stderr.Fd()),
			FullTimestamp: true,
		})
		log.SetLevel(logrus.DebugLevel)
	case EnvDev:
		log.SetFormatter(&logrus.TextFormatter{
			DisableColors: true,
			FullTimestamp: true,
		})
		log.SetLevel(logrus.InfoLevel)
	default:
		log.SetFormatter(&logrus.TextFormatter{
			DisableColors: true,
			FullTimestamp: true,
		})
		log.SetLevel(logrus.WarnLevel)
	}

	return logrus.NewEntry(log), closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
