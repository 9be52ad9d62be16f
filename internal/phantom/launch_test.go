package phantom

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iradul/vscode-phantomjs-debug/internal/config"
	"github.com/iradul/vscode-phantomjs-debug/pkg/testutil"
)

func TestParseLaunchArgsDefaults(t *testing.T) {
	t.Parallel()

	cwd := t.TempDir()
	raw := json.RawMessage(`{"runtimeExecutable":"/usr/bin/phantomjs","file":"src/app.js","cwd":` + quote(cwd) + `}`)

	args, err := ParseLaunchArgs(raw, config.Default())
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(cwd, "src", "app.js"), args.File)
	assert.Equal(t, 9222, args.Port)
	assert.Equal(t, "127.0.0.1", args.Address)
	assert.Equal(t, filepath.Join(cwd, "src"), args.WebRoot)
}

func TestParseLaunchArgsExplicitValues(t *testing.T) {
	t.Parallel()

	cwd := t.TempDir()
	raw, marshalErr := json.Marshal(map[string]any{
		"runtimeExecutable": "phantomjs",
		"file":              filepath.Join(cwd, "app.js"),
		"runtimeArgs":       []string{"--ignore-ssl-errors=true"},
		"port":              9333,
		"address":           "localhost",
		"webRoot":           "www",
		"cwd":               cwd,
		"env":               map[string]string{"DEBUG": "1"},
	})
	require.NoError(t, marshalErr)

	args, err := ParseLaunchArgs(raw, config.Default())
	require.NoError(t, err)

	assert.Equal(t, 9333, args.Port)
	assert.Equal(t, "localhost", args.Address)
	assert.Equal(t, filepath.Join(cwd, "www"), args.WebRoot)
	assert.Equal(t, []string{
		"--remote-debugger-port=9333",
		"--ignore-ssl-errors=true",
		filepath.Join(cwd, "app.js"),
	}, args.Argv())

	cmd := args.Command()
	assert.Equal(t, cwd, cmd.Dir)
	assert.Equal(t, append([]string{"phantomjs"}, args.Argv()...), cmd.Args)
	assert.Contains(t, cmd.Env, "DEBUG=1")
	assert.Nil(t, cmd.Stdin)
}

func TestParseLaunchArgsConfigurationErrors(t *testing.T) {
	t.Parallel()

	_, err := ParseLaunchArgs(json.RawMessage(`{"file":"app.js"}`), config.Default())
	require.ErrorIs(t, err, ErrMissingExecutable)
	assert.True(t, IsConfigurationError(err))

	_, err = ParseLaunchArgs(json.RawMessage(`{"runtimeExecutable":"phantomjs"}`), config.Default())
	require.ErrorIs(t, err, ErrMissingFile)
	assert.True(t, IsConfigurationError(err))

	_, err = ParseLaunchArgs(json.RawMessage(`{"runtimeExecutable":"phantomjs","file":"app.js","port":"abc"}`), config.Default())
	require.ErrorIs(t, err, ErrInvalidLaunchArgs)

	_, err = ParseLaunchArgs(json.RawMessage(`{"runtimeExecutable":"phantomjs","file":"app.js","port":70000}`), config.Default())
	require.ErrorIs(t, err, ErrInvalidLaunchArgs)

	_, err = ParseLaunchArgs(nil, config.Default())
	require.ErrorIs(t, err, ErrMissingExecutable)
}

func TestParseLaunchArgsEnvFile(t *testing.T) {
	t.Parallel()

	cwd := t.TempDir()
	testutil.WriteTree(t, cwd, map[string]string{
		"app.js":      "console.log('hi');",
		"config/.env": "# PhantomJS settings\nQT_QPA_PLATFORM=offscreen\nAPI_URL=http://localhost:8080\n",
	})

	raw, marshalErr := json.Marshal(map[string]any{
		"runtimeExecutable": "phantomjs",
		"file":              "app.js",
		"cwd":               cwd,
		"envFile":           "config/.env",
		"env":               map[string]string{"API_URL": "http://example.test"},
	})
	require.NoError(t, marshalErr)

	args, err := ParseLaunchArgs(raw, config.Default())
	require.NoError(t, err)

	expected := map[string]string{
		"QT_QPA_PLATFORM": "offscreen",
		"API_URL":         "http://example.test",
	}
	if diff := cmp.Diff(expected, args.Env); diff != "" {
		t.Errorf("unexpected environment (-want +got):\n%s", diff)
	}
	assert.Equal(t, filepath.Join(cwd, "config", ".env"), args.EnvFile)

	missing, marshalErr := json.Marshal(map[string]any{
		"runtimeExecutable": "phantomjs",
		"file":              "app.js",
		"cwd":               cwd,
		"envFile":           "nope.env",
	})
	require.NoError(t, marshalErr)

	_, err = ParseLaunchArgs(missing, config.Default())
	require.ErrorIs(t, err, ErrInvalidLaunchArgs)
	assert.True(t, IsConfigurationError(err))
}

func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
