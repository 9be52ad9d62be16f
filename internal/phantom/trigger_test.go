package phantom

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iradul/vscode-phantomjs-debug/internal/bridge"
	"github.com/iradul/vscode-phantomjs-debug/pkg/testutil"
)

const initialURL = "phantomjs://code/app.js"

func TestTriggerFiresOnce(t *testing.T) {
	t.Parallel()

	s := newFakeSession()
	tc := NewTriggerController(initialURL, 0, testutil.NewLogForTesting(t.Name()))
	require.Equal(t, TriggerIdle, tc.State())

	assert.False(t, tc.OnScriptParsed(s, "phantomjs://platform/lib.js"))
	assert.Empty(t, s.Timers())

	require.True(t, tc.OnScriptParsed(s, initialURL))
	require.Equal(t, TriggerScheduled, tc.State())
	timers := s.Timers()
	require.Len(t, timers, 1)
	assert.Equal(t, DefaultTriggerDelay, timers[0].delay)
	assert.Empty(t, s.Evaluations(), "nothing runs before the delay elapses")

	// A second report of the initial script is ignored.
	assert.False(t, tc.OnScriptParsed(s, initialURL))
	require.Len(t, s.Timers(), 1)

	s.runTimers()
	require.Equal(t, TriggerFired, tc.State())
	assert.Equal(t, []string{RunExpression}, s.Evaluations())

	select {
	case <-tc.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("trigger did not complete")
	}

	assert.False(t, tc.OnScriptParsed(s, initialURL))
	s.runTimers()
	assert.Len(t, s.Evaluations(), 1)
}

func TestTriggerCompletesWhenEvaluationFails(t *testing.T) {
	t.Parallel()

	s := newFakeSession()
	s.evalResult = bridge.EvaluateResult{Err: errors.New("ReferenceError: __run is not defined")}
	tc := NewTriggerController(initialURL, 20*time.Millisecond, testutil.NewLogForTesting(t.Name()))

	require.True(t, tc.OnScriptParsed(s, initialURL))
	assert.Equal(t, 20*time.Millisecond, s.Timers()[0].delay)
	s.runTimers()

	select {
	case <-tc.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("trigger did not complete")
	}
	assert.Equal(t, TriggerFired, tc.State())
}

func TestTriggerCancelBeforeFiring(t *testing.T) {
	t.Parallel()

	s := newFakeSession()
	tc := NewTriggerController(initialURL, 0, testutil.NewLogForTesting(t.Name()))
	require.True(t, tc.OnScriptParsed(s, initialURL))

	tc.Cancel()
	assert.Equal(t, TriggerCancelled, tc.State())
	assert.True(t, s.Timers()[0].stopped)

	// A deferred call that was already on its way is a no-op.
	s.Timers()[0].f()
	assert.Empty(t, s.Evaluations())
}

func TestTriggerCancelWhileIdle(t *testing.T) {
	t.Parallel()

	s := newFakeSession()
	tc := NewTriggerController(initialURL, 0, testutil.NewLogForTesting(t.Name()))

	tc.Cancel()
	assert.Equal(t, TriggerCancelled, tc.State())
	assert.False(t, tc.OnScriptParsed(s, initialURL))
	assert.Empty(t, s.Timers())
}

func TestTriggerCancelAfterFiringIsNoop(t *testing.T) {
	t.Parallel()

	s := newFakeSession()
	tc := NewTriggerController(initialURL, 0, testutil.NewLogForTesting(t.Name()))
	require.True(t, tc.OnScriptParsed(s, initialURL))
	s.runTimers()

	tc.Cancel()
	assert.Equal(t, TriggerFired, tc.State())
}
