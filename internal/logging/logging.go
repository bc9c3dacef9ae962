// Package logging builds the logrus logger shared by the binaries and services
package logging

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// Structured field names
const (
	FieldComponent  = "component"
	FieldGoalID     = "goal_id"
	FieldIterations = "iterations"
	FieldWorkers    = "workers"
	FieldDurationMs = "duration_ms"
	FieldConflicts  = "conflicts"
	FieldScenario   = "scenario"
	FieldProfile    = "profile"
	FieldError      = "error"
)

// Component names
const (
	ComponentIntelligence = "intelligence"
	ComponentMonteCarlo   = "montecarlo"
	ComponentRecommend    = "recommend"
	ComponentStorage      = "storage"
	ComponentHTTP         = "http"
	ComponentCLI          = "cli"
)

// New creates a logger writing to out. Unknown levels fall back to info;
// format "text" selects the text formatter, anything else JSON.
func New(level, format string, out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)

	if strings.EqualFold(format, "text") {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)
	return logger
}

// Component returns an entry tagged with the component name
func Component(log *logrus.Logger, name string) *logrus.Entry {
	return log.WithField(FieldComponent, name)
}

// OrDiscard returns log, or a logger that drops everything when log is nil
func OrDiscard(log *logrus.Logger) *logrus.Logger {
	if log != nil {
		return log
	}
	return New("panic", "json", io.Discard)
}
