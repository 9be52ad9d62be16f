package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	s, err := LoadFrom(map[string]string{})
	require.NoError(t, err)
	require.Equal(t, Default(), s)
}

func TestLoadOverrides(t *testing.T) {
	t.Parallel()

	s, err := LoadFrom(map[string]string{
		"PJSDAP_DEFAULT_PORT":    "9333",
		"PJSDAP_DEFAULT_ADDRESS": "localhost",
		"PJSDAP_CONNECT_TIMEOUT": "2s",
		"PJSDAP_PAGE_PATH":       "/devtools/page/2",
	})
	require.NoError(t, err)
	require.Equal(t, 9333, s.DefaultPort)
	require.Equal(t, "localhost", s.DefaultAddress)
	require.Equal(t, 2*time.Second, s.ConnectTimeout)
	require.Equal(t, "/devtools/page/2", s.PagePath)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Parallel()

	_, err := LoadFrom(map[string]string{"PJSDAP_DEFAULT_PORT": "not-a-port"})
	require.Error(t, err)

	_, err = LoadFrom(map[string]string{"PJSDAP_DEFAULT_PORT": "70000"})
	require.ErrorContains(t, err, "out of range")

	_, err = LoadFrom(map[string]string{"PJSDAP_CONNECT_TIMEOUT": "0s"})
	require.ErrorContains(t, err, "connect timeout")
}
