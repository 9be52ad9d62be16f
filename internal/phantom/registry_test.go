package phantom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScriptRegistryLookups(t *testing.T) {
	t.Parallel()

	r := NewScriptRegistry()
	r.RecordScript("phantomjs://platform/foo.js", "7", true)
	r.RecordScript("file:///proj/lib.js", "8", false)

	assert.True(t, r.IsWrappedByURL("phantomjs://platform/foo.js"))
	assert.True(t, r.IsWrappedByID("7"))
	assert.False(t, r.IsWrappedByURL("file:///proj/lib.js"))
	assert.False(t, r.IsWrappedByID("8"))

	assert.False(t, r.IsWrappedByURL("phantomjs://platform/unknown.js"))
	assert.False(t, r.IsWrappedByID("99"))
}

func TestScriptRegistryLastWriteWins(t *testing.T) {
	t.Parallel()

	r := NewScriptRegistry()
	r.RecordScript("phantomjs://code/app.js", "1", true)
	assert.True(t, r.IsWrappedByID("1"))

	r.RecordScript("phantomjs://code/app.js", "1", false)
	assert.False(t, r.IsWrappedByURL("phantomjs://code/app.js"))
	assert.False(t, r.IsWrappedByID("1"))
}

func TestScriptRegistrySharedURLKeepsEveryID(t *testing.T) {
	t.Parallel()

	// Two different packages' index.js files report the same URL with their own script IDs.
	r := NewScriptRegistry()
	r.RecordScript("phantomjs://platform/index.js", "7", true)
	r.RecordScript("phantomjs://platform/index.js", "9", true)

	assert.True(t, r.IsWrappedByID("7"))
	assert.True(t, r.IsWrappedByID("9"))
	assert.True(t, r.IsWrappedByURL("phantomjs://platform/index.js"))
}
