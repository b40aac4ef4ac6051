package logger_test

import (
	"testing"

	"github.com/katalvlaran/lvxrd/logger"
	"github.com/stretchr/testify/require"
)

func TestNewModes(t *testing.T) {
	for _, mode := range []string{"dev", "production"} {
		l, err := logger.New(mode)
		require.NoError(t, err)
		require.NotNil(t, l.SugaredLogger)
		l.With("mode", mode).Debug("logger ready")
	}
}

func TestOrNop(t *testing.T) {
	require.NotNil(t, logger.OrNop(nil).SugaredLogger)
	l := logger.Nop()
	require.Same(t, l, logger.OrNop(l))
}

func TestNewWithLevel(t *testing.T) {
	l, err := logger.NewWithLevel("production", "warn")
	require.NoError(t, err)
	require.False(t, l.SugaredLogger.Desugar().Core().Enabled(-1))

	_, err = logger.NewWithLevel("dev", "loud")
	require.Error(t, err)
}
