package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestOptions_Level(t *testing.T) {
	assert.Equal(t, zapcore.InfoLevel, Options{}.Level())
	assert.Equal(t, zapcore.DebugLevel, Options{Verbose: true}.Level())
	assert.Equal(t, zapcore.WarnLevel, Options{Quiet: true}.Level())
	assert.Equal(t, zapcore.DebugLevel, Options{Verbose: true, Quiet: true}.Level())
}

func TestNew(t *testing.T) {
	for _, opts := range []Options{{}, {Verbose: true}, {Quiet: true, Development: true}} {
		logger, err := New(opts)
		require.NoError(t, err)
		assert.True(t, logger.Core().Enabled(opts.Level()))
		if opts.Level() > zapcore.DebugLevel {
			assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
		}
	}
}

func TestOr(t *testing.T) {
	assert.NotNil(t, Or(nil))
	l := zap.NewExample()
	assert.Same(t, l, Or(l))
}
