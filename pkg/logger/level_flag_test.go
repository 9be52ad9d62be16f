package logger

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestStringToLevel(t *testing.T) {
	t.Parallel()

	level, err := StringToLevel("DEBUG", zapcore.InfoLevel)
	require.NoError(t, err)
	require.Equal(t, zapcore.DebugLevel, level)

	level, err = StringToLevel("3", zapcore.InfoLevel)
	require.NoError(t, err)
	require.Equal(t, zapcore.Level(-3), level)

	level, err = StringToLevel("0", zapcore.WarnLevel)
	require.Error(t, err)
	require.Equal(t, zapcore.WarnLevel, level)

	_, err = StringToLevel("chatty", zapcore.InfoLevel)
	require.Error(t, err)
}

func TestLevelFlagSetsConsoleLevel(t *testing.T) {
	t.Parallel()

	log := New("level-flag-test")
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	log.AddLevelFlag(fs)

	require.NoError(t, fs.Parse([]string{"-v=info"}))
	require.Equal(t, zapcore.InfoLevel, log.atomicLevel.Level())

	require.Error(t, fs.Parse([]string{"--verbosity=bogus"}))
}
