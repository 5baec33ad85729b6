package observability

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// NewLogger builds the service logger. Development gets human readable
// text, everything else JSON.
func NewLogger(level string, development bool) (*logrus.Logger, error) {
	log := logrus.New()

	if development {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	if level != "" {
		parsed, err := logrus.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		log.SetLevel(parsed)
	}

	return log, nil
}
