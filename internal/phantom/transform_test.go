package phantom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iradul/vscode-phantomjs-debug/internal/bridge"
)

func TestToTargetShiftsWrappedScripts(t *testing.T) {
	t.Parallel()

	in := []bridge.BreakpointLocation{
		{Line: 10, Column: 4, Condition: "x > 1"},
		{Line: 0, Column: 0},
	}

	wrapped := ToTarget(in, true, false)
	require.Len(t, wrapped, 2)
	assert.Equal(t, bridge.BreakpointLocation{Line: 11, Column: 4, Condition: "x > 1"}, wrapped[0])
	assert.Equal(t, bridge.BreakpointLocation{Line: 1, Column: 0}, wrapped[1])

	unwrapped := ToTarget(in, false, false)
	assert.Equal(t, in, unwrapped)

	assert.Equal(t, 10, in[0].Line, "input must not be modified")
}

func TestToTargetZeroesColumnsOfHigherLevelSources(t *testing.T) {
	t.Parallel()

	in := []bridge.BreakpointLocation{{Line: 5, Column: 12}}

	for _, isWrapped := range []bool{true, false} {
		out := ToTarget(in, isWrapped, true)
		require.Len(t, out, 1)
		assert.Equal(t, 0, out[0].Column)

		expectedLine := 5
		if isWrapped {
			expectedLine = 6
		}
		assert.Equal(t, expectedLine, out[0].Line, "column zeroing must not affect the line")
	}
}

func TestTransformRoundTrip(t *testing.T) {
	t.Parallel()

	for line := 0; line < 50; line++ {
		for _, isWrapped := range []bool{true, false} {
			target := ToTarget([]bridge.BreakpointLocation{{Line: line}}, isWrapped, false)
			back, err := FromTargetLine(target[0].Line, isWrapped)
			require.NoError(t, err)
			require.Equal(t, line, back)
		}
	}
}

func TestFromTargetLineAnomaly(t *testing.T) {
	t.Parallel()

	_, err := FromTargetLine(0, true)
	require.Error(t, err)
	assert.True(t, IsProtocolAnomaly(err))

	line, err := FromTargetLine(0, false)
	require.NoError(t, err)
	assert.Equal(t, 0, line)
}

func TestFromTargetResults(t *testing.T) {
	t.Parallel()

	in := []bridge.BreakpointResult{
		{Verified: true, BreakpointID: "a", Line: 11, Column: 3},
		{Verified: true, BreakpointID: "b", Line: 0},
		{Verified: false, Message: "not bound", Line: 0},
	}

	out := FromTarget(in, true)
	require.Len(t, out, 3)

	assert.True(t, out[0].Verified)
	assert.Equal(t, 10, out[0].Line)
	assert.Equal(t, 3, out[0].Column)

	assert.False(t, out[1].Verified, "a location on the wrapper line cannot be shown to the client")
	assert.NotEmpty(t, out[1].Message)

	assert.Equal(t, in[2], out[2], "unverified results are passed through")
	assert.Equal(t, 11, in[0].Line, "input must not be modified")
}

func TestIsHigherLevelSource(t *testing.T) {
	t.Parallel()

	assert.True(t, IsHigherLevelSource("/proj/src/app.ts"))
	assert.True(t, IsHigherLevelSource("/proj/src/view.TSX"))
	assert.True(t, IsHigherLevelSource("/proj/src/app.coffee"))
	assert.False(t, IsHigherLevelSource("/proj/src/app.js"))
	assert.False(t, IsHigherLevelSource(""))
}
