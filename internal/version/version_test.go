package version

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTimeJSON(t *testing.T) {
	t.Parallel()

	ts := BuildTime{time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	data, err := json.Marshal(ts)
	require.NoError(t, err)
	assert.Equal(t, `"2024-03-01T12:00:00Z"`, string(data))

	var parsed BuildTime
	require.NoError(t, json.Unmarshal(data, &parsed))
	assert.True(t, ts.Equal(parsed.Time))

	data, err = json.Marshal(BuildTime{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
}

func TestVersionDefaults(t *testing.T) {
	t.Parallel()

	v := Version()
	assert.NotEmpty(t, v.Version)
	assert.NotEmpty(t, v.GoVersion)
	assert.Contains(t, v.Platform, "/")
}
