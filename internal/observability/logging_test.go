package observability

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	log, err := NewLogger("debug", true)
	require.NoError(t, err)
	require.Equal(t, logrus.DebugLevel, log.GetLevel())
	require.IsType(t, &logrus.TextFormatter{}, log.Formatter)

	log, err = NewLogger("", false)
	require.NoError(t, err)
	require.Equal(t, logrus.InfoLevel, log.GetLevel())
	require.IsType(t, &logrus.JSONFormatter{}, log.Formatter)

	_, err = NewLogger("loud", false)
	require.Error(t, err)
}
