package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger builds the process-wide logger. An unparsable level falls
// back to info, logType selects the "json" or "text" formatter.
func NewLogger(level, logType string) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)

	switch logType {
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return l
}
